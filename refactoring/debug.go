// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines a "debug" refactoring, which is not really a refactoring
// at all.  It does not change any files (except for the fmt command); rather,
// it reports what the analyses see at the selection: the syntax tree, the
// loaded packages, what identifiers resolve to, which variables a snippet
// defines and uses, and where it is repeated.  Each report is logged as a
// single informational entry.

package refactoring

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/printer"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/godoctor/snipdoctor/analysis/dataflow"
	"github.com/godoctor/snipdoctor/analysis/names"
	"github.com/godoctor/snipdoctor/analysis/snippet"
)

const debugUsage = `Usage: debug <command>
where <command> is one of the following:

Information about the entire file:
    showast           Show the abstract syntax tree for the selected file
    showidentifiers   Show the object each identifier in the file refers to
    showpackages      List all packages loaded (due to --scope)

If anything is selected:
    fmt               Format the node enclosing the selection using go/printer

If an identifier is selected:
    showreferences    Show all references to the selected identifier

If statements or an expression are selected:
    showdefuse        Show the local variables the selection defines and uses
    showlive          Show the local variables live after the selection
    showmatches       Show the occurrences of the selection in the file`

// Debug reports internal information about the program at the selection.
type Debug struct {
	RefactoringBase
}

func (r *Debug) Description() *Description {
	return &Description{
		Name:      "Debug Refactoring",
		Synopsis:  "Provides assorted debugging outputs",
		Usage:     "<command>",
		Multifile: false,
		Params: []Parameter{{
			Label:        "Command",
			Prompt:       "Command",
			DefaultValue: "",
		}},
		Quality: Development,
		Hidden:  true,
	}
}

func (r *Debug) Run(config *Config) *Result {
	r.RefactoringBase.Run(config)

	r.Log.ChangeInitialErrorsToWarnings()
	if r.Log.ContainsErrors() {
		return &r.Result
	}

	if len(config.Args) == 0 {
		r.Log.Error(debugUsage)
		return &r.Result
	}
	if !ValidateArgs(config, r.Description(), r.Log) {
		return &r.Result
	}

	var out bytes.Buffer
	switch command := strings.ToLower(strings.TrimSpace(config.Args[0].(string))); command {
	case "fmt":
		r.fmt()
	case "showast":
		ast.Fprint(&out, r.Program.Fset, r.File, nil)
	case "showidentifiers":
		r.showIdentifiers(&out)
	case "showpackages":
		r.showPackages(&out)
	case "showreferences":
		r.showReferences(&out)
	case "showdefuse":
		r.showDefUse(&out)
	case "showlive":
		r.showLive(&out)
	case "showmatches":
		r.showMatches(&out)
	default:
		r.Log.Errorf("Unknown command %s\n%s", command, debugUsage)
	}
	if out.Len() > 0 {
		r.Log.Info(strings.TrimSuffix(out.String(), "\n"))
	}
	return &r.Result
}

// fmt replaces the smallest formattable node enclosing the selection with
// its formatting by go/printer.
func (r *Debug) fmt() {
	for _, node := range r.PathEnclosingSelection {
		if !canFormat(node) {
			continue
		}
		cnode := &printer.CommentedNode{Node: node, Comments: r.File.Comments}
		printConfig := &printer.Config{
			Mode:     printer.UseSpaces | printer.TabIndent,
			Tabwidth: 8,
		}
		var b bytes.Buffer
		if err := printConfig.Fprint(&b, r.Program.Fset, cnode); err != nil {
			r.Log.Error(err)
			return
		}

		extent := r.Extent(node)
		if _, ok := node.(*ast.File); ok {
			// The printed file includes end-of-file comments, which
			// lie beyond the extent of the node.
			extent.Offset, extent.Length = 0, len(r.FileContents)
		}
		r.Edits[r.Filename(r.File)].Add(extent, b.String())
		return
	}
}

func canFormat(node ast.Node) bool {
	switch node.(type) {
	case ast.Expr, ast.Stmt, ast.Spec, ast.Decl, *ast.File:
		return true
	default:
		return false
	}
}

func (r *Debug) showIdentifiers(out *bytes.Buffer) {
	fmt.Fprintf(out, "=====%s=====\n", relativeFilename(r.Filename(r.File)))
	ast.Inspect(r.File, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		fmt.Fprintf(out, "%s\t(Line %d)", id.Name, r.Program.Fset.Position(id.Pos()).Line)
		if obj := r.Info().ObjectOf(id); obj == nil {
			fmt.Fprintf(out, " does not reference an object\n")
		} else {
			fmt.Fprintf(out, " is a reference to %s (%s)\n",
				obj.Id(), r.Program.Fset.Position(obj.Pos()))
		}
		return true
	})
}

func (r *Debug) showPackages(out *bytes.Buffer) {
	cwd, _ := os.Getwd()
	fmt.Fprintf(out, "Working directory is %s\n\n", cwd)
	fmt.Fprintln(out, "Packages/files loaded:")

	paths := make([]string, 0, len(r.Program.AllPackages))
	for _, pkg := range r.Program.AllPackages {
		paths = append(paths, pkg.PkgPath)
	}
	slices.Sort(paths)
	for _, pkg := range r.Program.Initial {
		fmt.Fprintf(out, "\t%s\n", pkg.PkgPath)
		for _, file := range pkg.Syntax {
			fmt.Fprintf(out, "\t\t%s\n", r.Filename(file))
		}
	}
	fmt.Fprintf(out, "%d packages loaded in total: %s\n", len(paths), strings.Join(paths, " "))
}

func (r *Debug) showReferences(out *bytes.Buffer) {
	id, ok := r.SelectedNode.(*ast.Ident)
	if !ok || r.Info().ObjectOf(id) == nil {
		r.Log.Error("Please select an identifier for showreferences")
		r.Log.AssociatePos(r.Program.Fset, r.SelectionStart, r.SelectionEnd)
		return
	}
	obj := r.Info().ObjectOf(id)
	fmt.Fprintf(out, "References to %s:\n", id.Name)
	for _, ref := range names.FindOccurrences(obj, r.Info()) {
		ext := r.Extent(ref)
		fmt.Fprintf(out, "  %s: %s\n",
			relativeFilename(r.Program.Fset.Position(ref.Pos()).Filename),
			ext.String())
	}
	if names.IsLocal(obj) {
		fmt.Fprintf(out, "%s is a local variable\n", id.Name)
	}
}

// selectedSnippet returns the selected statements or expression, as Find Duplicates
// would search for them, or logs an error and returns nil.
func (r *Debug) selectedSnippet() []ast.Node {
	d := &FindDuplicates{RefactoringBase: r.RefactoringBase}
	if err := d.selectPattern(); err != nil {
		r.Log.Error(err)
		r.Log.AssociatePos(r.Program.Fset, r.SelectionStart, r.SelectionEnd)
		return nil
	}
	return d.pattern
}

func (r *Debug) showDefUse(out *bytes.Buffer) {
	nodes := r.selectedSnippet()
	if nodes == nil {
		return
	}
	def, use := dataflow.ReferencedVars(nodes, r.Info(), dataflow.NewIndex())
	fmt.Fprintf(out, "Defines: %s\n", def)
	fmt.Fprintf(out, "Uses: %s\n", use)
}

func (r *Debug) showLive(out *bytes.Buffer) {
	nodes := r.selectedSnippet()
	if nodes == nil {
		return
	}
	fn := enclosingFunc(r.PathEnclosingSelection)
	if fn == nil {
		r.Log.Error("Please select code inside a function for showlive")
		r.Log.AssociatePos(r.Program.Fset, r.SelectionStart, r.SelectionEnd)
		return
	}
	index := dataflow.NewIndex()
	start, end := nodes[0].Pos(), nodes[len(nodes)-1].End()
	def, _ := dataflow.ReferencedVars(nodes, r.Info(), index)
	live := dataflow.LiveAfter(fn, start, end, r.Info(), index)
	fmt.Fprintf(out, "Live after the selection: %s\n", live)
	fmt.Fprintf(out, "Defined in the selection and read after it: %s\n", def.Intersection(live))
}

func (r *Debug) showMatches(out *bytes.Buffer) {
	nodes := r.selectedSnippet()
	if nodes == nil {
		return
	}
	matches := snippet.Find(r.Info(), r.File, nodes)
	fmt.Fprintf(out, "%d occurrences in %s\n", len(matches), relativeFilename(r.Filename(r.File)))
	for _, m := range matches {
		ext := r.extentOf(m.Pos(), m.End())
		fmt.Fprintf(out, "  %s: %s\n", ext.String(), describeBindings(m))
	}
}

// describeBindings lists the renamings under which a match occurs, e.g.
// "y -> x", or "identical" if there are none.
func describeBindings(m *snippet.Match) string {
	var renamed []string
	for _, v := range m.Locals() {
		if id := m.MappedName(v); id != nil && id.Name != v.Name() {
			renamed = append(renamed, id.Name+" -> "+v.Name())
		}
	}
	if len(renamed) == 0 {
		return "identical"
	}
	return strings.Join(renamed, ", ")
}

func relativeFilename(filename string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, filename); err == nil {
			return rel
		}
	}
	return filename
}
