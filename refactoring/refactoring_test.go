// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file provides tests for all refactorings.  The testdata directory is
// structured as such:
//
//	testdata/
//	    refactoring-name/
//	        001-test-name/
//	        002-test-name/
//
// To filter which refactorings are tested, run
//
//	go test -filter=something
//
// Then, only tests in directories containing "something" are run.  E.g.:
//
//	go test -filter=inline              # Only run inline tests
//	go test -filter=extractlocal/003    # Only run extractlocal test #3
//
// Refactorings are run on the files in each test directory; special comments
// in the .go files indicate what refactoring(s) to run and whether the
// refactorings are expected to succeed or fail.  Specifically, test files are
// annotated with markers of the form
//
//	//<<<<<name,startline,startcol,endline,endcol,arg1,arg2,...,argn,pass
//
// The name indicates the refactoring to run.  The next four fields specify a
// text selection on which to invoke the refactoring.  The arguments
// arg1,arg2,...,argn are passed as arguments to the refactoring (see
// Config.Args).  The last field is either "pass" or "fail", indicating whether
// the refactoring is expected to complete successfully or raise an error.  If
// the refactoring is expected to succeed and changes the file, the resulting
// file is compared against a .golden file with the same name in the same
// directory.
//
// Each test directory contains a go.mod file, so it is loaded as a module of
// its own, and the scope is guessed from the selected file just as it is for
// the command line tool.

package refactoring

import (
	"flag"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/godoctor/snipdoctor/filesystem"
	"github.com/godoctor/snipdoctor/text"
)

const (
	marker = "<<<<<"
	pass   = "pass"
	fail   = "fail"
)

var filterFlag = flag.String("filter", "",
	"Only tests from directories containing this substring will be run")

const directory = "testdata"

// testRefactorings maps the names used in markers to refactorings.
var testRefactorings = map[string]func() Refactoring{
	"null":         func() Refactoring { return new(Null) },
	"debug":        func() Refactoring { return new(Debug) },
	"dups":         func() Refactoring { return new(FindDuplicates) },
	"extractlocal": func() Refactoring { return new(ExtractLocal) },
	"inline":       func() Refactoring { return new(InlineLocal) },
}

func TestRefactorings(t *testing.T) {
	refactoringDirs, err := os.ReadDir(directory)
	failIfError(err, t)
	for _, refactoringDir := range refactoringDirs {
		if !refactoringDir.IsDir() {
			continue
		}
		testDirs, err := os.ReadDir(filepath.Join(directory, refactoringDir.Name()))
		failIfError(err, t)
		for _, testDir := range testDirs {
			dir := filepath.Join(directory, refactoringDir.Name(), testDir.Name())
			if !testDir.IsDir() || !strings.Contains(dir, *filterFlag) {
				continue
			}
			t.Run(refactoringDir.Name()+"/"+testDir.Name(), func(t *testing.T) {
				runAllTestsInDirectory(dir, t)
			})
		}
	}
}

// runAllTestsInDirectory runs the refactorings indicated by the markers in
// every Go file in the given directory and its subdirectories.
func runAllTestsInDirectory(directory string, t *testing.T) {
	markers := map[string][]string{}
	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".go") {
			markers[path] = extractMarkers(path, t)
		}
		return nil
	})
	failIfError(err, t)

	found := false
	for path, markersInFile := range markers {
		for _, m := range markersInFile {
			found = true
			runRefactoring(path, m, t)
		}
	}
	if !found {
		t.Fatalf("No %s markers found in any files in %s", marker, directory)
	}
}

func failIfError(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func runRefactoring(filename string, m string, t *testing.T) {
	refac, selection, remainder, passFail := splitMarker(filename, m, t)

	newRefactoring, ok := testRefactorings[refac]
	if !ok {
		t.Fatalf("There is no refactoring named %s (from marker %s)", refac, m)
	}
	r := newRefactoring()
	shouldPass := passFail == pass
	t.Logf("%s %s", r.Description().Name, selection)

	config := &Config{
		FileSystem: filesystem.NewLocalFileSystem(),
		Selection:  selection,
		Args:       InterpretArgs(remainder, r.Description().Params),
	}
	result := r.Run(config)
	if shouldPass && result.Log.ContainsErrors() {
		t.Log(result.Log)
		t.Fatalf("Refactoring produced unexpected errors")
	} else if !shouldPass && !result.Log.ContainsErrors() {
		t.Log(result.Log)
		t.Fatalf("Refactoring should have produced errors but didn't")
	}
	if !shouldPass {
		return
	}

	for filename, edits := range result.Edits {
		if edits.Len() == 0 {
			continue
		}
		output, err := text.ApplyToFile(edits, filename)
		failIfError(err, t)
		checkResult(filename, string(output), t)
	}
}

func checkResult(filename string, actualOutput string, t *testing.T) {
	bytes, err := os.ReadFile(filename + "lden")
	failIfError(err, t)
	expectedOutput := strings.ReplaceAll(string(bytes), "\r\n", "\n")
	actualOutput = strings.ReplaceAll(actualOutput, "\r\n", "\n")

	if actualOutput != expectedOutput {
		t.Logf(">>>>> Output does not match %slden", filename)
		t.Logf("EXPECTED OUTPUT\nvvvvvvvvvvvvvvv\n%s\n^^^^^^^^^^^^^^^", expectedOutput)
		t.Logf("ACTUAL OUTPUT\nvvvvvvvvvvvvv\n%s\n^^^^^^^^^^^^^", actualOutput)
		minLen := min(len(expectedOutput), len(actualOutput))
		for i := 0; i < minLen; i++ {
			if expectedOutput[i] != actualOutput[i] {
				t.Logf("Strings differ at index %d", i)
				t.Logf("Expected: [%s]", describe(expectedOutput[i:]))
				t.Logf("Actual: [%s]", describe(actualOutput[i:]))
				break
			}
		}
		t.Fatalf("Refactoring test failed - %s", filename)
	}
}

func describe(s string) string {
	if len(s) > 10 {
		s = s[:10]
	}
	return strings.NewReplacer("\n", "\\n", "\r", "\\r", "\t", "\\t").Replace(s)
}

func splitMarker(filename string, m string, t *testing.T) (refac string, selection text.Selection, remainder []string, result string) {
	filename, err := filepath.Abs(filename)
	failIfError(err, t)
	fields := strings.Split(m, ",")
	if len(fields) < 6 {
		t.Fatalf("Marker is invalid (must contain >= 6 fields): %s", m)
	}
	refac = fields[0]
	selection = &text.LineColSelection{
		Filename:  filename,
		StartLine: parseInt(fields[1], t),
		StartCol:  parseInt(fields[2], t),
		EndLine:   parseInt(fields[3], t),
		EndCol:    parseInt(fields[4], t),
	}
	remainder = fields[5 : len(fields)-1]
	result = fields[len(fields)-1]
	if result != pass && result != fail {
		t.Fatalf("Marker is invalid: last field must be %s or %s",
			pass, fail)
	}
	return
}

func parseInt(s string, t *testing.T) int {
	result, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		t.Fatalf("Marker is invalid: expecting integer, found %s", s)
	}
	return result
}

// extractMarkers extracts comments of the form //<<<<<a,b,c,d,e,f,g removing
// the leading <<<<< and trimming any spaces from the left and right ends
func extractMarkers(filename string, t *testing.T) []string {
	result := []string{}
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		t.Logf("Cannot extract markers from %s -- unable to parse", filename)
		t.Fatal(err)
	}
	for _, commentGroup := range f.Comments {
		for _, comment := range commentGroup.List {
			txt := comment.Text
			if idx := strings.Index(txt, marker); idx >= 0 {
				result = append(result, strings.TrimSpace(txt[idx+len(marker):]))
			}
		}
	}
	return result
}
