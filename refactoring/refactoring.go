// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the Refactoring interface, the RefactoringBase struct, and
// several methods common to refactorings based on RefactoringBase, including
// a base implementation of the Run method.

// Package refactoring contains all of the refactorings supported by
// snipdoctor, as well as types (such as refactoring.Log) used to interface
// with those refactorings.
package refactoring

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/godoctor/snipdoctor/analysis/loader"
	"github.com/godoctor/snipdoctor/config"
	"github.com/godoctor/snipdoctor/filesystem"
	"github.com/godoctor/snipdoctor/text"
)

// The maximum number of errors from the loader that will be reported
const maxInitialErrors = 10

// Description of a parameter for a refactoring.
//
// Some refactorings require additional input from the user besides a text
// selection.  For example, in an Extract Local Variable refactoring, the user
// selects an expression, but the refactoring tool must also elicit (1) a name
// for the new variable and (2) whether or not other occurrences of the
// expression should be replaced.  These two inputs are parameters to the
// refactoring.
type Parameter struct {
	// A brief label suitable for display next to an input field (e.g., a
	// text box or check box in a dialog box), e.g., "Name:" or "Replace
	// occurrences"
	Label string `json:"label"`
	// A longer (typically one sentence) description of the input
	// requested, suitable for display in a tooltip/hover tip.
	Prompt string `json:"prompt"`
	// The default value for this parameter.  The type of the parameter
	// (string or boolean) can be determined from the type of its default
	// value.
	DefaultValue interface{} `json:"default"`
}

// IsBoolean returns true iff this Parameter must be either true or false.
func (p *Parameter) IsBoolean() bool {
	switch p.DefaultValue.(type) {
	case bool:
		return true
	default:
		return false
	}
}

// Quality determines whether a refactoring is exposed to end users
type Quality int

const (
	// Refactoring should not be exposed to end users
	Development Quality = iota
	// Refactoring has not been extensively tested on large codes but is
	// stable enough for early adopters to try
	Testing
	// Refactoring can be safely used in a production environment
	Production
)

func (q Quality) String() string {
	switch q {
	case Development:
		return "development"
	case Testing:
		return "testing"
	default:
		return "production"
	}
}

// MarshalText encodes a Quality as its name.
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// Description provides information about a refactoring suitable for display in
// a user interface.
type Description struct {
	// A human-readable name for this refactoring, properly capitalized
	// (e.g., "Find Duplicates" or "Extract Local Variable") as it would
	// appear in a user interface.  Every refactoring should have a unique
	// name.
	Name string `json:"name"`
	// A brief, one-line description of this refactoring.
	Synopsis string `json:"synopsis"`
	// Usage information for command line drivers, e.g., "<new_name>".
	Usage string `json:"usage"`
	// Whether this refactoring can change files other than the one
	// containing the selection.
	Multifile bool `json:"multifile"`
	// Additional input required for this refactoring.  See Parameter.
	Params []Parameter `json:"params"`
	// Whether this refactoring is suitable for production use.
	Quality Quality `json:"quality"`
	// Whether this refactoring should be omitted from lists shown to end
	// users (e.g., because it is only used for testing).
	Hidden bool `json:"hidden"`
}

// A Config provides the initial configuration for a refactoring, including the
// file system and program on which it will operate, the initial text
// selection, and any refactoring-specific arguments.
//
// At a minimum, the FileSystem and Selection arguments must be set.
type Config struct {
	// The file system on which the refactoring will operate.
	FileSystem filesystem.FileSystem
	// A set of initial packages to load.  This slice will be passed as-is
	// to packages.Load, so it may contain package patterns or "file="
	// queries.  If it is nil, a scope is guessed from the selected file.
	Scope []string
	// The directory in which the Scope is interpreted.  If empty, it is
	// determined from the selected file.
	Dir string
	// The range of text on which to invoke the refactoring.
	Selection text.Selection
	// Refactoring-specific arguments.  To determine what arguments are
	// required for each refactoring, see Refactoring.Description().Params.
	// For example, for the Extract Local Variable refactoring, you must
	// specify a name for the new variable.  If the refactoring does not
	// require any arguments, this may be nil.
	Args []interface{}
	// If true, an exhaustive list of edits made by the refactoring will be
	// appended to the log.
	Verbose bool
	// User settings.  If nil, config.Default() is used.
	Settings *config.Settings
	// If non-nil, programs are loaded through (and retained in) this
	// cache.
	Cache *loader.Cache
}

// The Refactoring interface identifies methods common to all refactorings.
//
// The protocol for invoking a refactoring is:
//
//  1. If necessary, invoke the Description() method to obtain the name of
//     the refactoring and a list of arguments that must be provided to it.
//  2. Create a Config.  Refactorings are typically invoked from a text
//     editor; the Config provides the refactoring with the file that was
//     open in the text editor and the selected region/caret position.
//  3. Invoke Run, which returns a Result.
//  4. If Result.Log is not empty, display the log to the user.
//  5. If Result.Edits is non-nil, the edits may be applied to complete the
//     transformation.
type Refactoring interface {
	Description() *Description
	Run(*Config) *Result
}

type Result struct {
	// A list of informational messages, errors, and warnings to display to
	// the user.  If the Log.ContainsErrors() is true, the Edits may be
	// empty or incomplete, since it may not be possible to perform the
	// refactoring.
	Log *Log
	// Maps filenames to the text edits that should be applied to those
	// files.
	Edits map[string]*text.EditSet
}

// RefactoringBase implements the parts of a refactoring that are common to
// every refactoring: loading the program, locating the selection, and
// reporting the errors a transformation would introduce.
type RefactoringBase struct {
	// The loaded program
	Program *loader.Program
	// The package containing the selection
	Pkg *packages.Package
	// The file containing the selection
	File *ast.File
	// The contents of File, as read from the file system
	FileContents []byte
	// The start and end of the selection
	SelectionStart token.Pos
	SelectionEnd   token.Pos
	// The path from the node enclosing the selection to File, as returned
	// by astutil.PathEnclosingInterval
	PathEnclosingSelection []ast.Node
	// Whether the selection exactly covers PathEnclosingSelection[0]
	SelectionIsExact bool
	// The innermost node enclosing the selection
	SelectedNode ast.Node
	// The settings in effect
	Settings *config.Settings
	Result

	// the directory the program was loaded from
	dir string
}

// Run is the base implementation of a Run method.  Most refactorings should
// invoke this method before performing refactoring-specific work.  This
// method initializes the refactoring, clears the log, and configures all of
// the fields in the RefactoringBase struct.
func (r *RefactoringBase) Run(config *Config) *Result {
	r.Log = NewLog()
	r.Edits = map[string]*text.EditSet{}
	r.Settings = settingsOf(config)

	if config.FileSystem == nil {
		r.Log.Error("INTERNAL ERROR: null Config.FileSystem")
		return &r.Result
	}
	if config.Selection == nil {
		r.Log.Error("INTERNAL ERROR: null Config.Selection")
		return &r.Result
	}

	r.dir = config.Dir
	if config.Scope == nil {
		var msg string
		r.dir, config.Scope, msg = guessScope(config)
		r.Log.Info(msg)
	} else {
		r.Log.Infof("Scope is %s", strings.Join(config.Scope, " "))
	}

	var err error
	r.Program, err = load(config, r.dir, func(fset *token.FileSet, err error) {
		if len(r.Log.Entries) < maxInitialErrors {
			r.logLoadError(fset, err, "")
		}
	})

	r.Log.MarkInitial()
	if err != nil {
		r.Log.Error(err)
		return &r.Result
	} else if r.Program == nil {
		r.Log.Error("INTERNAL ERROR: Loader failed")
		return &r.Result
	}

	r.SelectionStart, r.SelectionEnd, err = config.Selection.Convert(r.Program.Fset)
	if err != nil {
		r.Log.Error(err)
		return &r.Result
	}

	r.Pkg, r.PathEnclosingSelection, r.SelectionIsExact = r.Program.PathEnclosingInterval(r.SelectionStart, r.SelectionEnd)
	if r.Pkg == nil || len(r.PathEnclosingSelection) < 1 {
		r.Log.Errorf("The selected file, %s, was not found in the "+
			"provided scope: %s",
			config.Selection.GetFilename(),
			config.Scope)
		// This can happen on files excluded by build constraints
		return &r.Result
	}
	r.SelectedNode = r.PathEnclosingSelection[0]
	r.File = r.PathEnclosingSelection[len(r.PathEnclosingSelection)-1].(*ast.File)

	filename := r.Filename(r.File)
	r.FileContents, err = config.FileSystem.ReadFile(filename)
	if err != nil {
		r.Log.Errorf("Unable to read %s", filename)
		return &r.Result
	}

	r.Edits = map[string]*text.EditSet{
		filename: text.NewEditSet(),
	}

	return &r.Result
}

func settingsOf(conf *Config) *config.Settings {
	if conf.Settings != nil {
		return conf.Settings
	}
	return config.Default()
}

// load loads config.Scope (from dir) with the file system's contents
// overlaid on the disk.  errorH receives every error found in the program,
// together with the file set positions refer to.
func load(config *Config, dir string, errorH func(*token.FileSet, error)) (*loader.Program, error) {
	overlay, err := config.FileSystem.Overlay()
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	conf := &packages.Config{
		Dir:     dir,
		Fset:    fset,
		Overlay: overlay,
	}
	var mu sync.Mutex
	var errs []error
	handler := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var prog *loader.Program
	if config.Cache != nil {
		prog, err = config.Cache.Load(conf, handler, config.Scope...)
	} else {
		prog, err = loader.Load(conf, handler, config.Scope...)
	}
	if err != nil {
		return nil, err
	}
	for _, err := range errs {
		errorH(prog.Fset, err)
	}
	return prog, nil
}

// logLoadError logs an error reported by the loader, associating it with its
// position when possible.
func (r *RefactoringBase) logLoadError(fset *token.FileSet, err error, prefix string) {
	var pkgErr packages.Error
	var typeErr types.Error
	switch {
	case errors.As(err, &typeErr):
		r.Log.Errorf("%s%s", prefix, typeErr.Msg)
		r.Log.AssociatePos(typeErr.Fset, typeErr.Pos, typeErr.Pos)
	case errors.As(err, &pkgErr):
		r.Log.Errorf("%s%s", prefix, pkgErr.Msg)
		if filename, offset, ok := errorPosition(fset, pkgErr.Pos); ok {
			r.Log.AssociateExtent(filename, text.Extent{Offset: offset})
		}
	default:
		r.Log.Errorf("%s%s", prefix, err)
	}
}

// errorPosition converts the "file:line:col" position of a packages.Error to
// a filename and byte offset.
func errorPosition(fset *token.FileSet, pos string) (filename string, offset int, ok bool) {
	parts := strings.Split(pos, ":")
	if len(parts) < 2 {
		return "", 0, false
	}
	col := 1
	if len(parts) >= 3 {
		if c, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			col = c
			parts = parts[:len(parts)-1]
		}
	}
	line, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", 0, false
	}
	filename = strings.Join(parts[:len(parts)-1], ":")

	var file *token.File
	fset.Iterate(func(f *token.File) bool {
		if sameFile(f.Name(), filename) {
			file = f
			return false
		}
		return true
	})
	if file == nil || line < 1 || line > file.LineCount() {
		return filename, 0, filename != ""
	}
	offset = file.Offset(file.LineStart(line)) + col - 1
	if offset > file.Size() {
		offset = file.Size()
	}
	return file.Name(), offset, true
}

func sameFile(x, y string) bool {
	if x == y {
		return true
	}
	ax, err1 := filepath.Abs(x)
	ay, err2 := filepath.Abs(y)
	return err1 == nil && err2 == nil && ax == ay
}

// guessScope makes a reasonable guess at the refactoring scope if the user
// does not provide an explicit scope.  It guesses as follows:
//  1. If the selected file is in a module, the package containing it is
//     loaded from the module root.
//  2. Otherwise (or for standard input), the file alone is loaded.
func guessScope(config *Config) (dir string, scope []string, msg string) {
	fname := config.Selection.GetFilename()
	absFilename, err := filepath.Abs(fname)
	if err != nil {
		absFilename = fname
	}
	fileScope := []string{"file=" + absFilename}
	dir = config.Dir
	if dir == "" {
		dir = filepath.Dir(absFilename)
	}

	if filepath.Base(fname) == filesystem.FakeStdinFilename {
		return dir, fileScope, "Defaulting to file scope for refactoring (provide an explicit scope to change this)"
	}

	fileMsg := fmt.Sprintf("Defaulting to file scope %s for refactoring (provide an explicit scope to change this)", fname)
	root, _, err := loader.ModuleRoot(filepath.Dir(absFilename))
	if err != nil {
		return dir, fileScope, fileMsg
	}
	pkg, err := loader.PackagePathFor(absFilename)
	if err != nil {
		return dir, fileScope, fileMsg
	}
	return root, []string{pkg},
		fmt.Sprintf("Defaulting to package scope %s for refactoring (provide an explicit scope to change this)", pkg)
}

// ValidateArgs determines whether the arguments supplied in the given Config
// match the parameters required by the given Description.  If they mismatch in
// either type or number, a fatal error is logged to the given Log, and the
// function returns false; otherwise, no error is logged, and the function
// returns true.
func ValidateArgs(config *Config, desc *Description, log *Log) bool {
	numArgsExpected := len(desc.Params)
	numArgsSupplied := len(config.Args)
	if numArgsSupplied != numArgsExpected {
		log.Errorf("This refactoring requires %d arguments, "+
			"but %d were supplied.", numArgsExpected,
			numArgsSupplied)
		return false
	}
	for i, arg := range config.Args {
		expected := reflect.TypeOf(desc.Params[i].DefaultValue)
		if reflect.TypeOf(arg) != expected {
			paramName := desc.Params[i].Label
			log.Errorf("%s must be a %s", paramName, expected)
			return false
		}
	}
	return true
}

// UpdateLog applies the edits in r.Edits and updates existing error messages
// in r.Log to reflect their locations in the resulting program.  If
// checkForErrors is true, and if the log does not contain any initial errors,
// the resulting program will be type checked, and any new errors introduced by
// the refactoring will be logged.
func (r *RefactoringBase) UpdateLog(config *Config, checkForErrors bool) {
	if len(r.Edits) == 0 {
		return
	}

	if r.Log.ContainsInitialErrors() {
		checkForErrors = false
	}

	for _, entry := range r.Log.Entries {
		if es, ok := r.Edits[entry.path]; ok && entry.Position != nil {
			entry.Position.Offset = es.NewOffset(entry.Position.Offset)
		}
	}

	if config.Verbose {
		r.describeEdits()
	}

	if !checkForErrors || config.FileSystem == nil || !r.hasEdits() {
		return
	}

	oldFS := config.FileSystem
	defer func() { config.FileSystem = oldFS }()
	config.FileSystem = &filesystem.EditedFileSystem{Base: oldFS, Edits: r.Edits}

	// the cache is keyed by overlay, so edited programs are never reused
	cache := config.Cache
	config.Cache = nil
	defer func() { config.Cache = cache }()

	errorCount := 0
	_, err := load(config, r.dir, func(fset *token.FileSet, err error) {
		if errorCount < maxInitialErrors {
			errorCount++
			r.logLoadError(fset, err, "Completing the transformation will introduce the following error: ")
		}
	})
	if err != nil {
		r.Log.Error(err)
	}
}

func (r *RefactoringBase) hasEdits() bool {
	for _, es := range r.Edits {
		if es.Len() > 0 {
			return true
		}
	}
	return false
}

func (r *RefactoringBase) describeEdits() {
	filenames := make([]string, 0, len(r.Edits))
	for filename := range r.Edits {
		filenames = append(filenames, filename)
	}
	slices.Sort(filenames)

	fileCount := len(filenames)
	for fileNum, filename := range filenames {
		firstEdit := true
		r.Edits[filename].Iterate(func(extent text.Extent, replace string) bool {
			newExtent := text.Extent{Offset: r.Edits[filename].NewOffset(extent.Offset)}
			if firstEdit && fileCount > 1 {
				r.Log.Infof("File %d of %d: %s",
					fileNum+1,
					fileCount,
					filepath.Base(filename))
				r.Log.AssociateExtent(filename, newExtent)
				firstEdit = false
			}
			r.Log.Info(describeEdit(extent, replace))
			r.Log.AssociateExtent(filename, newExtent)
			return true
		})
	}
}

// describeEdit returns a human-readable, one-line description of a text edit
func describeEdit(extent text.Extent, replacement string) string {
	if extent.Length == 0 {
		return fmt.Sprintf("| Insert \"%s\"", shorten(replacement))
	} else if replacement == "" {
		return fmt.Sprintf("| Delete %d byte(s)", extent.Length)
	} else {
		return fmt.Sprintf("| Replace %d byte(s) with \"%s\"",
			extent.Length, shorten(replacement))
	}
}

func shorten(s string) string {
	if len(s) < 23 {
		return s
	}
	return s[:23] + "..."
}

/* -=-=- Utility Methods -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

// InterpretArgs converts command line arguments to the types expected by the
// given parameters: "true" and "false" become booleans for boolean
// parameters, and everything else is left as a string.
func InterpretArgs(args []string, params []Parameter) []interface{} {
	result := []interface{}{}
	for i, opt := range args {
		if i < len(params) && params[i].IsBoolean() {
			switch opt {
			case "true":
				result = append(result, true)
			case "false":
				result = append(result, false)
			default:
				result = append(result, opt)
			}
		} else {
			result = append(result, opt)
		}
	}
	return result
}

// Filename returns the name of the file containing the given syntax tree.
func (r *RefactoringBase) Filename(file *ast.File) string {
	return r.Program.Filename(file)
}

// Extent returns the region of the selected file occupied by node.
func (r *RefactoringBase) Extent(node ast.Node) text.Extent {
	return r.extentOf(node.Pos(), node.End())
}

func (r *RefactoringBase) extentOf(start, end token.Pos) text.Extent {
	offset := r.Program.Fset.Position(start).Offset
	return text.Extent{Offset: offset, Length: int(end - start)}
}

// Text returns the source text of a node in the selected file.
func (r *RefactoringBase) Text(node ast.Node) string {
	ext := r.Extent(node)
	return string(r.FileContents[ext.Offset:ext.OffsetPastEnd()])
}

// Info returns the type information for the selected package.
func (r *RefactoringBase) Info() *types.Info {
	return r.Pkg.TypesInfo
}
