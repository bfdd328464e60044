// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package doc generates the snipdoctor user documentation (a Markdown
// manual, its HTML rendering, and a man page) from the command line flags
// and the registered refactorings.
package doc

import (
	"strings"

	"github.com/godoctor/snipdoctor/engine"
	"github.com/godoctor/snipdoctor/refactoring"
)

// An Option describes one command line flag.
type Option struct {
	Names      []string
	Usage      string
	TakesValue bool
}

// Flag returns the flag as it is typed, e.g. "--file value" or "--help, -h".
func (o Option) Flag() string {
	names := make([]string, len(o.Names))
	for i, name := range o.Names {
		if len(name) == 1 {
			names[i] = "-" + name
		} else {
			names[i] = "--" + name
		}
	}
	result := strings.Join(names, ", ")
	if o.TakesValue {
		result += " value"
	}
	return result
}

type refactoringDoc struct {
	Key         string
	Description *refactoring.Description
}

type content struct {
	Name         string
	Options      []Option
	Refactorings []refactoringDoc
}

func prepare(options []Option) *content {
	c := &content{Name: engine.Name, Options: options}
	for _, key := range engine.AllRefactoringNames() {
		desc := engine.GetRefactoring(key).Description()
		if !desc.Hidden {
			c.Refactorings = append(c.Refactorings, refactoringDoc{key, desc})
		}
	}
	return c
}
