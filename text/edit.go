// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package text contains types for describing regions of a text file, text
// selections in an editor, and sets of edits that can be applied to (and
// diffed against) a file's contents.
package text

// This file defines Extents and EditSets, which are used to describe
// additions, deletions, and modifications to be made to a string or text file.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// -=-= Extent =-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-

// An Extent consists of two integers: a 0-based byte offset and a
// nonnegative length.  An Extent is used to specify a region of a string
// or file.  For example, given the string "ABCDEFG", the substring CDE could
// be specified by Extent{Offset: 2, Length: 3}.
type Extent struct {
	// Byte offset of the first character (0-based)
	Offset int `json:"offset"`
	// Length in bytes (nonnegative)
	Length int `json:"length"`
}

// OffsetPastEnd returns the offset of the first byte immediately beyond the
// end of this region.
func (o *Extent) OffsetPastEnd() int {
	return o.Offset + o.Length
}

// Intersect returns the overlapping region of two extents, or nil iff they do
// not overlap.  A length-zero overlap is returned only if the two extents are
// not adjacent.
func (o *Extent) Intersect(other *Extent) *Extent {
	start := max(o.Offset, other.Offset)
	end := min(o.OffsetPastEnd(), other.OffsetPastEnd())
	length := end - start
	if length < 0 {
		return nil
	}
	if length == 0 && o.IsAdjacentTo(other) {
		return nil
	}
	return &Extent{start, length}
}

// IsAdjacentTo returns true iff two extents describe regions immediately next
// to one another.  [a,b) is adjacent to [c,d) iff b == c or d == a, so a
// length-zero extent is adjacent to itself.
func (o *Extent) IsAdjacentTo(other *Extent) bool {
	return o.OffsetPastEnd() == other.Offset ||
		other.OffsetPastEnd() == o.Offset
}

// Contains reports whether other lies entirely within this extent.
func (o *Extent) Contains(other *Extent) bool {
	return o.Offset <= other.Offset && other.OffsetPastEnd() <= o.OffsetPastEnd()
}

func (o *Extent) String() string {
	return fmt.Sprintf("offset %d, length %d", o.Offset, o.Length)
}

// -=-= EditSet -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-

// An EditSet is a collection of changes to be made to a text file.  Each edit
// replaces 0 or more bytes at a given offset with a given string: bytes are
// inserted by using an extent with length 0, and deleted by using an empty
// replacement string.
//
// Edits are added via Add and applied via ApplyTo or one of the utility
// functions ApplyToString, ApplyToFile, or ApplyToReader.
type EditSet struct {
	edits []edit // sorted by offset, non-overlapping
}

type edit struct {
	Extent
	replacement string
}

// NewEditSet returns a new, empty EditSet.
func NewEditSet() *EditSet {
	return &EditSet{edits: []edit{}}
}

func (e *edit) overlaps(pos *Extent) bool {
	return e.Extent.Intersect(pos) != nil
}

func (e *edit) String() string {
	return "Replace " + e.Extent.String() +
		" with \"" + e.replacement + "\""
}

// Add inserts an edit into this EditSet, returning an error if the edit has a
// negative offset or overlaps an edit previously added to this EditSet.
func (e *EditSet) Add(pos Extent, replacement string) error {
	if pos.Offset < 0 {
		return fmt.Errorf("edit has negative offset (%d)", pos.Offset)
	}

	idx := len(e.edits)
	for i := len(e.edits) - 1; i >= 0; i-- {
		if e.edits[i].Offset >= pos.Offset {
			idx = i
		} else {
			break
		}
	}
	if idx > 0 && e.edits[idx-1].overlaps(&pos) {
		return fmt.Errorf("overlapping edit at offset %d", pos.Offset)
	}
	if idx < len(e.edits) && e.edits[idx].overlaps(&pos) {
		return fmt.Errorf("overlapping edit at offset %d", pos.Offset)
	}
	newEdit := edit{pos, replacement}
	e.edits = append(e.edits, newEdit)
	copy(e.edits[idx+1:], e.edits[idx:])
	e.edits[idx] = newEdit
	return nil
}

// Len returns the number of edits in this EditSet.
func (e *EditSet) Len() int {
	return len(e.edits)
}

// Iterate calls f for each edit in this EditSet, in order of increasing
// offset.  Iteration stops if f returns false.
func (e *EditSet) Iterate(f func(Extent, string) bool) {
	for _, edit := range e.edits {
		if !f(edit.Extent, edit.replacement) {
			return
		}
	}
}

// NewOffset maps an offset in the original input to the corresponding offset
// in the edited output.  An offset inside a replaced region maps to the start
// of its replacement; text inserted at an offset precedes it.
func (e *EditSet) NewOffset(offset int) int {
	adjust := 0
	for _, edit := range e.edits {
		switch {
		case edit.OffsetPastEnd() <= offset:
			adjust += len(edit.replacement) - edit.Length
		case edit.Offset < offset:
			return edit.Offset + adjust
		default:
			return offset + adjust
		}
	}
	return offset + adjust
}

// OldOffset is the inverse of NewOffset: it maps an offset in the edited
// output back to the original input.
func (e *EditSet) OldOffset(offset int) int {
	adjust := 0
	for _, edit := range e.edits {
		newStart := edit.Offset + adjust
		newEnd := newStart + len(edit.replacement)
		switch {
		case newEnd <= offset:
			adjust += len(edit.replacement) - edit.Length
		case newStart < offset:
			return edit.Offset
		default:
			return offset - adjust
		}
	}
	return offset - adjust
}

// SizeChange returns the total number of bytes that will be added (positive)
// or removed (negative) when this EditSet is applied.
func (e *EditSet) SizeChange() int64 {
	var total int64
	for _, edit := range e.edits {
		total += int64(len(edit.replacement) - edit.Length)
	}
	return total
}

// String returns a human-readable description of this EditSet (for debugging).
func (e *EditSet) String() string {
	var buffer bytes.Buffer
	for _, edit := range e.edits {
		buffer.WriteString(edit.String())
		buffer.WriteString("\n")
	}
	return buffer.String()
}

// ApplyTo reads from the given reader, applying the edits in this EditSet as
// it reads, and writes the output to the given writer.  It returns an error if
// there are edits with offsets beyond the end of the input or an I/O error
// occurs.
func (e *EditSet) ApplyTo(in io.Reader, out io.Writer) error {
	bufout := bufio.NewWriter(out)
	if err := e.applyTo(bufio.NewReader(in), bufout); err != nil {
		return err
	}
	return bufout.Flush()
}

// Same idea as the linear-time merge in merge sort.
func (e *EditSet) applyTo(in *bufio.Reader, out *bufio.Writer) error {
	offset := 0
	for _, edit := range e.edits {
		toCopy := int64(edit.Offset - offset)
		copied, err := io.CopyN(out, in, toCopy)
		offset += int(copied)
		if copied < toCopy {
			return fmt.Errorf("edit offset %d is beyond the end of the file (%d bytes)",
				edit.Offset, offset)
		} else if err != nil {
			return err
		}

		if _, err := out.WriteString(edit.replacement); err != nil {
			return err
		}

		toSkip := int64(edit.OffsetPastEnd() - offset)
		skipped, err := io.CopyN(io.Discard, in, toSkip)
		offset += int(skipped)
		if skipped < toSkip {
			return fmt.Errorf("edit offset %d is beyond the end of the file (%d bytes)",
				edit.Offset, offset)
		} else if err != nil {
			return err
		}
	}
	_, err := io.Copy(out, in)
	return err
}

// ApplyToFile reads bytes from a file, applying the edits in an EditSet and
// returning the result as a slice of bytes.
func ApplyToFile(es *EditSet, filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ApplyToReader(es, file)
}

// ApplyToString reads bytes from a string, applying the edits in an EditSet
// and returning the result as a string.
func ApplyToString(es *EditSet, s string) (string, error) {
	bs, err := ApplyToReader(es, strings.NewReader(s))
	return string(bs), err
}

// ApplyToReader reads bytes from an io.Reader, applying the edits in an
// EditSet and returning the result as a slice of bytes.
func ApplyToReader(es *EditSet, in io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	err := es.ApplyTo(in, &buf)
	return buf.Bytes(), err
}
