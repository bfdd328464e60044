// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactoring

import (
	"go/token"
	"path/filepath"
	"testing"

	"github.com/godoctor/snipdoctor/text"
)

func TestEntry(t *testing.T) {
	e := Entry{Severity: Info, Message: "Message", Position: &text.Extent{}}
	assertEquals("Message", e.String(), t)
	e = Entry{Severity: Warning, Message: "Message", Position: &text.Extent{}}
	assertEquals("Warning: Message", e.String(), t)
	e = Entry{Severity: Error, Message: "Message", Position: &text.Extent{}}
	assertEquals("Error: Message", e.String(), t)

	e = Entry{Severity: Warning, Message: "Msg", Filename: "fn", Position: &text.Extent{Offset: 1, Length: 2}}
	assertEquals("Warning: fn, offset 1, length 2: Msg", e.String(), t)
}

func TestLog(t *testing.T) {
	var log *Log = NewLog()
	log.Info("Info")
	log.Warn("A warning")
	log.Error("An error")
	var expected string = "Info\nWarning: A warning\nError: An error\n"
	assertEquals(expected, log.String(), t)
}

func TestInitialEntries(t *testing.T) {
	log := NewLog()
	log.Error("initial")
	log.MarkInitial()
	log.Error("later")
	if !log.ContainsInitialErrors() {
		t.Fatalf("Expected initial errors")
	}

	log.ChangeInitialErrorsToWarnings()
	assertEquals("Warning: initial\nError: later\n", log.String(), t)
	if log.ContainsInitialErrors() {
		t.Fatalf("Initial errors should have been changed to warnings")
	}

	log.RemoveInitialEntries()
	assertEquals("Error: later\n", log.String(), t)
}

func TestAssociatePos(t *testing.T) {
	fset := token.NewFileSet()
	filename, _ := filepath.Abs("file.go")
	f := fset.AddFile(filename, -1, 100)
	f.SetLinesForContent(make([]byte, 100))

	log := NewLog()
	if log.ContainsPositions() {
		t.Fatalf("Empty log has no positions")
	}
	log.AssociatePos(fset, f.Pos(0), f.Pos(1)) // no entry: no effect
	log.Info("Found")
	log.AssociatePos(fset, f.Pos(10), f.Pos(15))
	assertEquals("file.go, offset 10, length 5: Found\n", log.String(), t)
	assertEquals(filename, log.Entries[0].Path(), t)
	if !log.ContainsPositions() {
		t.Fatalf("Expected positions")
	}
}

// assertEquals is a utility method for unit tests that marks a function as
// having failed if expected != actual
func assertEquals(expected string, actual string, t *testing.T) {
	if expected != actual {
		t.Fatalf("Expected: %s Actual: %s", expected, actual)
	}
}
