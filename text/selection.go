// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines types representing a selection in a text editor, i.e.,
// a range of text within a file.

package text

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// A Selection represents a range of text within a particular file.  It is
// used to represent a selection in a text editor.
type Selection interface {
	// Convert returns start and end positions corresponding to this
	// selection.  It returns an error if this selection corresponds to a
	// file that is not in the given FileSet, or if the selected region is
	// not in range.
	Convert(*token.FileSet) (token.Pos, token.Pos, error)
	// GetFilename returns the file containing this selection.  The
	// returned filename may be an absolute or relative path and is not
	// guaranteed to correspond to a valid file.
	GetFilename() string
	// String returns a human-readable representation of this Selection.
	String() string
}

// A LineColSelection is a Selection consisting of a filename, the line/column
// where the selected text begins, and the line/column immediately past the
// end of the selected text.  Line and column numbers are 1-based; columns
// count bytes.
type LineColSelection struct {
	Filename  string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (lc *LineColSelection) Convert(fset *token.FileSet) (token.Pos, token.Pos, error) {
	file := findFile(fset, lc.Filename)
	if file == nil {
		return 0, 0, fmt.Errorf("couldn't find file containing position")
	}

	startPos, err := lineColToPos(file, lc.StartLine, lc.StartCol)
	if err != nil {
		return 0, 0, err
	}

	endPos, err := lineColToPos(file, lc.EndLine, lc.EndCol)
	if err != nil {
		return 0, 0, err
	}
	if endPos < startPos {
		return 0, 0, fmt.Errorf("selection ends before it starts")
	}
	return startPos, endPos, nil
}

func (lc *LineColSelection) GetFilename() string {
	return lc.Filename
}

func (lc *LineColSelection) String() string {
	return fmt.Sprintf("%s: %d,%d:%d,%d", lc.Filename,
		lc.StartLine, lc.StartCol, lc.EndLine, lc.EndCol)
}

// An OffsetLengthSelection is a selection that consists of a filename, the
// byte offset where the selection begins, and its length in bytes.
type OffsetLengthSelection struct {
	Filename string
	Offset   int
	Length   int
}

func (ol *OffsetLengthSelection) Convert(fset *token.FileSet) (token.Pos, token.Pos, error) {
	file := findFile(fset, ol.Filename)
	if file == nil {
		return 0, 0, fmt.Errorf("couldn't find file containing position")
	}
	if ol.Offset < 0 || ol.Length < 0 || ol.Offset+ol.Length > file.Size() {
		return 0, 0, fmt.Errorf("invalid selection: offset %d, length %d (file size is %d)",
			ol.Offset, ol.Length, file.Size())
	}
	return file.Pos(ol.Offset), file.Pos(ol.Offset + ol.Length), nil
}

func (ol *OffsetLengthSelection) GetFilename() string {
	return ol.Filename
}

func (ol *OffsetLengthSelection) String() string {
	return fmt.Sprintf("%s: %d,%d", ol.Filename, ol.Offset, ol.Length)
}

// findFile returns the file corresponding to the given filename, or nil if no
// file can be found with that filename.
func findFile(fset *token.FileSet, filename string) *token.File {
	var file *token.File
	fset.Iterate(func(f *token.File) bool {
		if sameFile(filename, f.Name()) {
			file = f
			return false
		}
		return true
	})
	return file
}

// sameFile returns true if x and y denote the same file.  Files that exist
// only in memory (e.g., standard input) are compared by absolute path.
func sameFile(x, y string) bool {
	if filepath.Base(x) != filepath.Base(y) {
		return false
	}
	if ax, err := filepath.Abs(x); err == nil {
		if ay, err := filepath.Abs(y); err == nil && ax == ay {
			return true
		}
	}
	if xi, err := os.Stat(x); err == nil {
		if yi, err := os.Stat(y); err == nil {
			return os.SameFile(xi, yi)
		}
	}
	return false
}

// lineColToPos converts a line/column position to a token.Pos.  The first
// character in a file is considered to be at line 1, column 1.  The column
// may be one past the last character of the line.
func lineColToPos(file *token.File, line int, column int) (token.Pos, error) {
	if line < 1 || line > file.LineCount() || column < 1 {
		return token.NoPos, fmt.Errorf("invalid position: line %d, column %d", line, column)
	}
	start := file.Offset(file.LineStart(line))
	end := file.Size()
	if line < file.LineCount() {
		end = file.Offset(file.LineStart(line+1)) - 1
	}
	offset := start + column - 1
	if offset > end {
		return token.NoPos, fmt.Errorf("invalid position: line %d, column %d", line, column)
	}
	return file.Pos(offset), nil
}

// NewSelection parses a position string and returns a LineColSelection (for
// "line,col:line,col") or an OffsetLengthSelection (for "offset,length").
func NewSelection(filename string, pos string) (Selection, error) {
	absFilename, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("invalid filename")
	}

	if strings.Contains(pos, ":") {
		args := strings.Split(pos, ":")
		if len(args) != 2 {
			return nil, fmt.Errorf("invalid -pos")
		}

		sl, sc := parsePair(args[0])
		el, ec := parsePair(args[1])
		if sl < 1 || sc < 1 || el < 1 || ec < 1 {
			return nil, fmt.Errorf("invalid -pos line, col")
		}

		return &LineColSelection{Filename: absFilename, StartLine: sl, StartCol: sc,
			EndLine: el, EndCol: ec}, nil
	}

	offset, length := parsePair(pos)
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("invalid -pos offset, length")
	}
	return &OffsetLengthSelection{Filename: absFilename, Offset: offset, Length: length}, nil
}

// e.g. 302,6
func parsePair(s string) (int, int) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return -1, -1
	}
	a, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return -1, -1
	}
	b, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return -1, -1
	}
	return a, b
}
