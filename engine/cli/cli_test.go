// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/godoctor/snipdoctor/engine/cli"
)

const (
	source = `package main

import "fmt"

func main() {
	a, b := 3, 4
	fmt.Println(a * b)
	fmt.Println(a*b + 1)
}
`
	pos = "--pos=7,14:7,19" // a * b

	extracted = `package main

import "fmt"

func main() {
	a, b := 3, 4
	prod := a * b
	fmt.Println(prod)
	fmt.Println(prod + 1)
}
`

	stdinDiff = `diff -u /dev/stdin /dev/stdout
--- /dev/stdin
+++ /dev/stdout
@@ -4,6 +4,7 @@
 
 func main() {
 	a, b := 3, 4
-	fmt.Println(a * b)
+	prod := a * b
+	fmt.Println(prod)
 	fmt.Println(a*b + 1)
 }
`
)

func runCLI(stdin string, args ...string) (exit int, stdout string, stderr string) {
	args = append([]string{"snipdoctor"}, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	exit = cli.Run(strings.NewReader(stdin), &stdoutBuf, &stderrBuf, args)
	return exit, stdoutBuf.String(), stderrBuf.String()
}

// writeModule writes a module containing main.go with the given contents and
// returns the path of main.go.
func writeModule(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/test\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(dir, "main.go")
	if err := os.WriteFile(filename, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestNoArgsNoInput(t *testing.T) {
	exit, stdout, stderr := runCLI("")
	if exit != 2 || stdout != "" ||
		!strings.Contains(stderr, "Usage: snipdoctor ") {
		t.Fatal("No args, no input expected usage string with exit 2")
	}
}

func TestHelp(t *testing.T) {
	for _, helpFlag := range []string{"-help", "--help", "-h", "help"} {
		exit, stdout, stderr := runCLI("", helpFlag)
		if exit != 2 || stdout != "" ||
			!strings.Contains(stderr, "Usage: snipdoctor ") {
			t.Fatalf("%s expected usage string with exit 2", helpFlag)
		}
	}
}

func TestInvalidFlag(t *testing.T) {
	exit, stdout, stderr := runCLI("", "-somethinginvalid")
	if exit != 1 || stdout != "" || stderr == "" {
		t.Fatal("Invalid flag expected exit 1")
	}

	exit, stdout, stderr = runCLI("", "--complete=thisshouldbeaboolean")
	if exit != 1 || stdout != "" || stderr == "" {
		t.Fatal("Invalid flag expected exit 1")
	}
}

func TestList(t *testing.T) {
	exit, stdout, stderr := runCLI("", "--list")
	if exit != 0 || stdout != "" || !strings.Contains(stderr, "extractlocal") {
		t.Fatalf("--list expected refactoring list with exit 0")
	}
	if strings.Contains(stderr, "null") {
		t.Fatalf("--list should not include hidden refactorings")
	}

	for _, flag := range []string{"-w", "--complete", "--mcp"} {
		exit, stdout, stderr = runCLI("", flag, "--list")
		if exit != 1 || stdout != "" || !strings.Contains(stderr,
			"--list flag cannot be used with") {
			t.Fatalf("--list should fail and exit 1 if used with %s", flag)
		}
	}
}

func TestInvalidCombos(t *testing.T) {
	invalid := [][]string{
		{"--complete", "-w"},
		{"--list", "-v"},
		{"--list", "somearg"},
		{"--mcp", "-v"},
		{"--mcp", "--pos=1,1:1,1"},
		{"--doc=man", "-w"},
		{"--doc=man", "somearg"},
	}
	for _, flags := range invalid {
		exit, stdout, stderr := runCLI("", flags...)
		if exit != 1 || stdout != "" || !strings.Contains(stderr, "cannot") {
			t.Fatalf("Expected failure and exit 1 if using %s",
				strings.Join(flags, " "))
		}
	}
}

func TestInvalidRefactoring(t *testing.T) {
	exit, stdout, stderr := runCLI("", "InvalidRefactoringName")
	if exit != 1 || stdout != "" ||
		!strings.Contains(stderr, "There is no refactoring named") {
		t.Fatal("Invalid refactoring expected exit 1")
	}

	_, _, stderr = runCLI("", "extractlokal")
	if !strings.Contains(stderr, `did you mean "extractlocal"?`) {
		t.Fatalf("Misspelled refactoring expected a suggestion, got %s", stderr)
	}
}

func TestRefactoringUsage(t *testing.T) {
	exit, stdout, stderr := runCLI("", "extractlocal")
	if exit != 2 || stdout != "" || !strings.Contains(stderr, "Usage:") {
		t.Fatal("\"snipdoctor extractlocal\" expected usage info with exit 2")
	}
}

func TestDoc(t *testing.T) {
	exit, stdout, _ := runCLI("", "--doc=man")
	if exit != 0 || !strings.Contains(stdout, ".TH snipdoctor 1") {
		t.Fatal("--doc=man expected a man page with exit 0")
	}
	exit, stdout, _ = runCLI("", "--doc=markdown")
	if exit != 0 || !strings.Contains(stdout, "| `--pos value` |") {
		t.Fatal("--doc=markdown expected the manual with exit 0")
	}
	exit, stdout, _ = runCLI("", "--doc=html")
	if exit != 0 || !strings.Contains(stdout, "<table>") {
		t.Fatal("--doc=html expected the HTML manual with exit 0")
	}
	exit, _, stderr := runCLI("", "--doc=pdf")
	if exit != 1 || !strings.Contains(stderr, "Unknown documentation format") {
		t.Fatal("--doc=pdf expected exit 1")
	}
}

func TestExtractDiff(t *testing.T) {
	filename := writeModule(t, source)
	exit, stdout, stderr := runCLI("", "--no-color", "--file="+filename, pos, "extractlocal", "prod", "true")
	if exit != 0 {
		t.Fatalf("Extract expected clean exit, got %d:\n%s", exit, stderr)
	}
	for _, line := range []string{"+\tprod := a * b\n", "-\tfmt.Println(a*b + 1)\n", "+\tfmt.Println(prod + 1)\n"} {
		if !strings.Contains(stdout, line) {
			t.Fatalf("Diff does not contain %q:\n%s", line, stdout)
		}
	}
}

func TestExtractComplete(t *testing.T) {
	filename := writeModule(t, source)
	exit, stdout, stderr := runCLI("", "--no-color", "--file="+filename, pos, "--complete", "extractlocal", "prod", "true")
	if exit != 0 {
		t.Fatalf("Extract expected clean exit, got %d:\n%s", exit, stderr)
	}
	if !strings.HasPrefix(stdout, "@@@@@ ") || !strings.HasSuffix(stdout, "@@@@@\n"+extracted) {
		t.Fatalf("Output did not match expected output:\n%s", stdout)
	}
}

func TestExtractWrite(t *testing.T) {
	filename := writeModule(t, source)
	exit, stdout, stderr := runCLI("", "--no-color", "--file="+filename, pos, "-w", "extractlocal", "prod", "true")
	if exit != 0 || stdout != "" {
		t.Fatalf("Extract -w expected clean exit and no output, got %d:\n%s", exit, stderr)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != extracted {
		t.Fatalf("File was not written as expected:\n%s", data)
	}
}

func TestStdin(t *testing.T) {
	t.Chdir(t.TempDir())

	exit, stdout, stderr := runCLI(source, "--no-color", pos, "extractlocal", "prod", "false")
	if exit != 0 {
		t.Fatalf("Extract from stdin expected clean exit, got %d:\n%s", exit, stderr)
	}
	if stdout != stdinDiff {
		t.Fatalf("Output did not match expected diff:\n%s", stdout)
	}

	exit, _, stderr = runCLI(source, pos, "-w", "extractlocal", "prod", "false")
	if exit != 1 || !strings.Contains(stderr, "-w flag cannot be used") {
		t.Fatal("-w with stdin expected exit 1")
	}
}

func TestInvalidPos(t *testing.T) {
	filename := writeModule(t, source)
	exit, stdout, stderr := runCLI("", "--file="+filename, "--pos=1000,", "extractlocal", "x", "false")
	if exit != 1 || stderr == "" {
		t.Fatal("Invalid position expected error exit 1")
	}
	if stdout != "" {
		t.Fatalf("Invalid --pos should not have output")
	}
}

func TestPosOutOfRange(t *testing.T) {
	filename := writeModule(t, source)
	exit, stdout, stderr := runCLI("", "--no-color", "--file="+filename, "--pos=1000,1:1000,1", "extractlocal", "x", "false")
	if exit != 3 || !strings.Contains(stderr, "error: ") {
		t.Fatalf("Position out of range expected exit 3, got %d:\n%s", exit, stderr)
	}
	if stdout != "" {
		t.Fatalf("Position out of range should not have output")
	}
}

func TestConfig(t *testing.T) {
	filename := writeModule(t, source)
	exit, _, stderr := runCLI("", "--config="+filepath.Join(t.TempDir(), "missing.toml"), "--file="+filename, pos, "extractlocal", "x", "false")
	if exit != 1 || stderr == "" {
		t.Fatal("Missing settings file expected exit 1")
	}

	settings := filepath.Join(filepath.Dir(filename), ".snipdoctor.toml")
	if err := os.WriteFile(settings, []byte("min_statements = \"many\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	exit, _, stderr = runCLI("", "--file="+filename, pos, "extractlocal", "x", "false")
	if exit != 1 || !strings.Contains(stderr, ".snipdoctor.toml") {
		t.Fatalf("Invalid settings file expected exit 1, got %d:\n%s", exit, stderr)
	}
}

func TestDuplicateLog(t *testing.T) {
	exit, stdout, stderr := runCLI("", "--no-color",
		"--file=../../refactoring/testdata/dups/001-statements/main.go",
		"--pos=6,2:9,3", "dups", "false")
	if exit != 0 || stdout != "" {
		t.Fatalf("dups expected clean exit and no output, got %d:\n%s", exit, stderr)
	}
	want := "main.go:14.2-17.3: Duplicate code found (renaming sum -> total, y -> x, ys -> xs)\n"
	if !strings.Contains(stderr, want) {
		t.Fatalf("Log does not contain %q:\n%s", want, stderr)
	}
}
