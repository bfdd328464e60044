// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The cli package provides a command-line interface for snipdoctor.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/godoctor/snipdoctor/config"
	"github.com/godoctor/snipdoctor/doc"
	"github.com/godoctor/snipdoctor/engine"
	"github.com/godoctor/snipdoctor/engine/protocol"
	"github.com/godoctor/snipdoctor/filesystem"
	"github.com/godoctor/snipdoctor/refactoring"
	"github.com/godoctor/snipdoctor/text"
)

// Exit codes
const (
	ExitOK      = 0 // success
	ExitInvalid = 1 // one or more command line arguments were invalid
	ExitHelp    = 2 // help/usage information was displayed
	ExitFailed  = 3 // the refactoring could not be completed
)

const useHelp = "Run 'snipdoctor --help' for more information.\n"

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Usage: "Filename containing an element to refactor (default: stdin)"},
		&cli.StringFlag{Name: "pos", Value: "1,1:1,1", Usage: "Position of a syntax element to refactor (line,col:line,col or offset,length)"},
		&cli.StringFlag{Name: "scope", Usage: "Package pattern(s), comma-separated (default: the selected file's package)"},
		&cli.StringFlag{Name: "config", Usage: "Settings file (default: nearest " + config.Filename + ")"},
		&cli.BoolFlag{Name: "complete", Usage: "Output entire modified source files instead of displaying a diff"},
		&cli.BoolFlag{Name: "w", Usage: "Modify source files on disk (write) instead of displaying a diff"},
		&cli.BoolFlag{Name: "v", Usage: "Verbose: list individual edits"},
		&cli.BoolFlag{Name: "list", Usage: "List all refactorings and exit"},
		&cli.StringFlag{Name: "doc", Usage: "Output documentation (man, markdown, or html) and exit"},
		&cli.BoolFlag{Name: "no-color", Usage: "Do not color the log"},
		&cli.BoolFlag{Name: "mcp", Usage: "Serve refactorings as Model Context Protocol tools on stdin/stdout"},
		&cli.BoolFlag{Name: "help", Aliases: []string{"h"}, Usage: "Show help and exit"},
	}
}

// options describes the command line flags for the documentation.
func options() []doc.Option {
	var result []doc.Option
	for _, f := range flags() {
		opt := doc.Option{Names: f.Names()}
		if df, ok := f.(cli.DocGenerationFlag); ok {
			opt.Usage = df.GetUsage()
			opt.TakesValue = df.TakesValue()
		}
		result = append(result, opt)
	}
	return result
}

// exitCode carries a process exit status out of the urfave/cli action.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// Run runs the snipdoctor command-line interface.  Typical usage is
//
//	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
//
// All arguments must be non-nil, and args[0] is required.
func Run(stdin io.Reader, stdout io.Writer, stderr io.Writer, args []string) int {
	d := &driver{stdin: stdin, stdout: stdout, stderr: stderr}
	app := &cli.App{
		Name:            engine.Name,
		Usage:           "find and refactor duplicated Go code",
		Flags:           flags(),
		HideHelp:        true,
		HideHelpCommand: true,
		Reader:          stdin,
		Writer:          stderr,
		ErrWriter:       stderr,
		Action:          d.action,
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			fmt.Fprintf(stderr, "Error: %s\n%s", err, useHelp)
			return exitCode(ExitInvalid)
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(args)
	var code exitCode
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &code):
		return int(code)
	default:
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return ExitInvalid
	}
}

type driver struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

func (d *driver) fail(format string, v ...interface{}) error {
	fmt.Fprintf(d.stderr, "Error: "+format+"\n", v...)
	return exitCode(ExitInvalid)
}

func (d *driver) action(c *cli.Context) error {
	args := c.Args().Slice()

	if c.Bool("help") {
		d.printHelp()
		return exitCode(ExitHelp)
	}

	if format := c.String("doc"); c.IsSet("doc") {
		if len(args) > 0 || c.NumFlags() != 1 {
			return d.fail("The --doc flag cannot be used with any other flags or arguments")
		}
		return d.printDoc(format)
	}

	if c.Bool("list") {
		if len(args) > 0 {
			return d.fail("The --list flag cannot be used with any arguments")
		}
		if c.Bool("v") || c.Bool("w") || c.Bool("complete") || c.Bool("mcp") {
			return d.fail("The --list flag cannot be used with the -v, -w, --complete, or --mcp flags")
		}
		d.printList()
		return nil
	}

	if c.Bool("mcp") {
		if len(args) > 0 || c.NumFlags() != 1 {
			return d.fail("The --mcp flag cannot be used with any other flags or arguments")
		}
		if err := protocol.Serve(context.Background(), d.stdin, d.stdout); err != nil {
			fmt.Fprintf(d.stderr, "Error: %s\n", err)
			return exitCode(ExitInvalid)
		}
		return nil
	}

	if c.Bool("w") && c.Bool("complete") {
		return d.fail("The -w and --complete flags cannot both be present")
	}

	if len(args) == 0 || args[0] == "" || args[0] == "help" {
		d.printHelp()
		return exitCode(ExitHelp)
	}

	refacName := args[0]
	refac := engine.GetRefactoring(refacName)
	if refac == nil {
		msg := fmt.Sprintf("There is no refactoring named %q", refacName)
		if closest := engine.ClosestRefactoringName(refacName); closest != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", closest)
		}
		fmt.Fprintln(d.stderr, msg)
		return exitCode(ExitInvalid)
	}
	args = args[1:]

	if c.NumFlags() == 0 && len(args) == 0 {
		fmt.Fprintf(d.stderr, "Usage: %s %s %s\n",
			engine.Name, refacName, refac.Description().Usage)
		return exitCode(ExitHelp)
	}

	return d.refactor(c, refac, args)
}

func (d *driver) refactor(c *cli.Context, refac refactoring.Refactoring, args []string) error {
	stdinPath := ""
	var fileName string
	var fileSystem filesystem.FileSystem
	if file := c.String("file"); file != "" && file != "-" {
		fileName = file
		fileSystem = filesystem.NewLocalFileSystem()
	} else {
		if c.Bool("w") {
			return d.fail("The -w flag cannot be used when source code is read from standard input")
		}
		var err error
		stdinPath, err = filesystem.FakeStdinPath()
		if err != nil {
			return d.fail("%s", err)
		}
		fileName = stdinPath
		data, err := io.ReadAll(d.stdin)
		if err != nil {
			return d.fail("%s", err)
		}
		fileSystem, err = filesystem.NewSingleEditedFileSystem(stdinPath, string(data))
		if err != nil {
			return d.fail("%s", err)
		}
	}

	selection, err := text.NewSelection(fileName, c.String("pos"))
	if err != nil {
		return d.fail("%s.", err)
	}

	settings, err := loadSettings(c.String("config"), filepath.Dir(selection.GetFilename()))
	if err != nil {
		return d.fail("%s", err)
	}

	var scope []string
	if s := c.String("scope"); s != "" {
		scope = strings.Split(s, ",")
	}

	result := refac.Run(&refactoring.Config{
		FileSystem: fileSystem,
		Scope:      scope,
		Selection:  selection,
		Args:       refactoring.InterpretArgs(args, refac.Description().Params),
		Verbose:    c.Bool("v"),
		Settings:   settings,
	})

	p := newLogPrinter(d.stderr, colorEnabled(c.Bool("no-color"), settings), fileSystem)
	p.print(result.Log)

	// Code given on standard input is the only code a refactoring may change
	if stdinPath != "" {
		for f, es := range result.Edits {
			if f != stdinPath && es.Len() > 0 {
				return d.fail("When source code is given on standard input, refactorings are prohibited from changing any other files.  This refactoring would require modifying %s.", f)
			}
		}
	}

	switch {
	case c.Bool("w"):
		err = writeToDisk(result, fileSystem)
	case c.Bool("complete"):
		err = writeFileContents(d.stdout, result.Edits, fileSystem)
	default:
		err = writeDiff(d.stdout, result.Edits, fileSystem)
	}
	if err != nil {
		return d.fail("%s.", err)
	}

	if result.Log.ContainsErrors() {
		return exitCode(ExitFailed)
	}
	return nil
}

// loadSettings reads the settings file at path, or else the nearest settings
// file at or above dir.
func loadSettings(path, dir string) (*config.Settings, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadNearest(dir)
}

func (d *driver) printHelp() {
	fmt.Fprintf(d.stderr, `Go duplicate code finder and refactoring tool (%s).
Usage: %s [<flag> ...] <refactoring> [<args> ...]

Each <flag> must be one of the following:
`, engine.Name, engine.Name)
	for _, opt := range options() {
		fmt.Fprintf(d.stderr, "    %-14s %s\n", opt.Flag(), opt.Usage)
	}
	fmt.Fprintln(d.stderr, `
The <refactoring> argument determines the refactoring to perform:`)
	for _, key := range engine.AllRefactoringNames() {
		r := engine.GetRefactoring(key)
		if !r.Description().Hidden {
			fmt.Fprintf(d.stderr, "    %-15s %s\n", key, r.Description().Synopsis)
		}
	}
	fmt.Fprintf(d.stderr, `
The <args> following the refactoring name vary depending on the refactoring.

To display usage information for a particular refactoring, such as inline, use:
    %% %s inline
`, engine.Name)
}

func (d *driver) printList() {
	fmt.Fprintf(d.stderr, "%-15s\t%-60s\t%s\n", "Refactoring", "Description", "Multifile?")
	fmt.Fprintln(d.stderr, strings.Repeat("-", 90))
	for _, key := range engine.AllRefactoringNames() {
		desc := engine.GetRefactoring(key).Description()
		if !desc.Hidden {
			fmt.Fprintf(d.stderr, "%-15s\t%-60s\t%v\n", key, desc.Synopsis, desc.Multifile)
		}
	}
}

func (d *driver) printDoc(format string) error {
	var err error
	switch format {
	case "man":
		err = doc.ManPage(d.stdout, options())
	case "markdown", "md":
		err = doc.Manual(d.stdout, options())
	case "html":
		err = doc.RenderHTML(d.stdout, options())
	default:
		return d.fail("Unknown documentation format %q (expected man, markdown, or html)", format)
	}
	if err != nil {
		return d.fail("%s", err)
	}
	return nil
}

// writeDiff outputs a multi-file unified diff describing this refactoring's
// changes.  It can be applied using GNU patch.
func writeDiff(out io.Writer, edits map[string]*text.EditSet, fs filesystem.FileSystem) error {
	for _, f := range sortedFiles(edits) {
		p, err := filesystem.CreatePatch(edits[f], fs, f)
		if err != nil {
			return err
		}
		if p.IsEmpty() {
			continue
		}
		inFile, outFile := displayNames(f)
		fmt.Fprintf(out, "diff -u %s %s\n", inFile, outFile)
		if err := p.Write(inFile, outFile, time.Time{}, time.Time{}, out); err != nil {
			return err
		}
	}
	return nil
}

// displayNames returns the names of a file before and after refactoring, as
// shown in patches: /dev/stdin and /dev/stdout for code read from standard
// input, and otherwise a path relative to the current directory.
func displayNames(f string) (string, string) {
	if stdinPath, _ := filesystem.FakeStdinPath(); f == stdinPath {
		return os.Stdin.Name(), os.Stdout.Name()
	}
	rel := relativePath(f)
	return rel, rel
}

// relativePath returns a relative path to fname, or fname if a relative path
// cannot be computed due to an error
func relativePath(fname string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, fname); err == nil {
			return rel
		}
	}
	return fname
}

// writeFileContents outputs the complete contents of each file affected by
// this refactoring.
func writeFileContents(out io.Writer, edits map[string]*text.EditSet, fs filesystem.FileSystem) error {
	for _, filename := range sortedFiles(edits) {
		data, err := filesystem.ApplyEdits(edits[filename], fs, filename)
		if err != nil {
			return err
		}

		name, _ := displayNames(filename)
		if _, err := fmt.Fprintf(out, "@@@@@ %s @@@@@ %d @@@@@\n", name, len(data)); err != nil {
			return err
		}
		n, err := out.Write(data)
		if n < len(data) && err == nil {
			err = io.ErrShortWrite
		}
		if err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Fprintln(out)
		}
	}
	return nil
}

// writeToDisk overwrites existing files with their refactored versions.
func writeToDisk(result *refactoring.Result, fs filesystem.FileSystem) error {
	for _, filename := range sortedFiles(result.Edits) {
		es := result.Edits[filename]
		if es.Len() == 0 {
			continue
		}
		data, err := filesystem.ApplyEdits(es, fs, filename)
		if err != nil {
			return err
		}
		if err := fs.WriteFile(filename, data); err != nil {
			return err
		}
	}
	return nil
}
