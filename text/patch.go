// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines Patch, a unified diff between a file's contents before
// and after an EditSet is applied.

package text

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// A Patch records the contents of a file before and after an EditSet is
// applied.  It can be output as a unified diff by invoking Write.
type Patch struct {
	before, after []string
}

// CreatePatch reads the original contents of a file from in and returns a
// Patch describing the effect of applying this EditSet to it.
func (e *EditSet) CreatePatch(in io.Reader) (*Patch, error) {
	original, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	edited, err := ApplyToReader(e, bytes.NewReader(original))
	if err != nil {
		return nil, err
	}
	return &Patch{
		before: difflib.SplitLines(string(original)),
		after:  difflib.SplitLines(string(edited)),
	}, nil
}

// IsEmpty reports whether the patch makes no changes.
func (p *Patch) IsEmpty() bool {
	if len(p.before) != len(p.after) {
		return false
	}
	for i := range p.before {
		if p.before[i] != p.after[i] {
			return false
		}
	}
	return true
}

// Write outputs this patch as a unified diff with three lines of context.
// Zero times are omitted from the file headers.
func (p *Patch) Write(origFile, newFile string, origTime, newTime time.Time, out io.Writer) error {
	if p.IsEmpty() {
		return nil
	}
	diff := difflib.UnifiedDiff{
		A:        p.before,
		B:        p.after,
		FromFile: origFile,
		ToFile:   newFile,
		FromDate: formatTime(origTime),
		ToDate:   formatTime(newTime),
		Context:  3,
	}
	if err := difflib.WriteUnifiedDiff(out, diff); err != nil {
		return fmt.Errorf("writing diff for %s: %w", origFile, err)
	}
	return nil
}

// String returns the patch as a unified diff between "a" and "b".
func (p *Patch) String() string {
	var buf bytes.Buffer
	p.Write("a", "b", time.Time{}, time.Time{}, &buf)
	return buf.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05.000000000 -0700")
}
