// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the Find Duplicates refactoring, which reports code that
// is structurally identical to the selected statements or expression, up to
// a consistent renaming of local variables.

package refactoring

import (
	"fmt"
	"go/ast"
	"go/types"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/ast/astutil"

	"github.com/godoctor/snipdoctor/analysis/dataflow"
	"github.com/godoctor/snipdoctor/analysis/snippet"
)

// FindDuplicates searches for duplicates of the selected code.  It logs each
// duplicate and makes no changes.
type FindDuplicates struct {
	RefactoringBase

	pattern []ast.Node
	// whether pattern is a statement sequence rather than an expression
	statements bool
	index      *dataflow.Index
	// variables defined in the pattern and used after it
	patternLive dataflow.VarSet
}

// A duplicate is a match of the pattern in one of the files searched.
type duplicate struct {
	file  *ast.File
	match *snippet.Match
}

func (r *FindDuplicates) Description() *Description {
	return &Description{
		Name:      "Find Duplicates",
		Synopsis:  "Finds code identical to the selection up to renaming of local variables",
		Usage:     "<search_package?>",
		Multifile: false,
		Params: []Parameter{{
			Label:        "Search Package",
			Prompt:       "Search every file in the package, not only the selected file",
			DefaultValue: false,
		}},
		Quality: Testing,
		Hidden:  false,
	}
}

func (r *FindDuplicates) Run(config *Config) *Result {
	r.RefactoringBase.Run(config)
	if r.Log.ContainsErrors() {
		return &r.Result
	}
	if !ValidateArgs(config, r.Description(), r.Log) {
		return &r.Result
	}
	searchPackage := config.Args[0].(bool)

	if err := r.selectPattern(); err != nil {
		r.Log.Error(err)
		r.Log.AssociatePos(r.Program.Fset, r.SelectionStart, r.SelectionEnd)
		return &r.Result
	}

	dups := r.search(r.filesToSearch(searchPackage))
	r.index = dataflow.NewIndex()
	r.patternLive = r.liveDefinitions(r.File, r.pattern)
	for _, d := range dups {
		r.report(d)
	}
	switch len(dups) {
	case 0:
		r.Log.Info("No duplicates found")
	case 1:
		r.Log.Info("Found 1 duplicate")
	default:
		r.Log.Infof("Found %d duplicates", len(dups))
	}
	return &r.Result
}

// selectPattern determines the nodes to search for from the selection: a
// sequence of complete statements from one statement list, or one
// expression.
func (r *FindDuplicates) selectPattern() error {
	start, end := r.SelectionStart, r.SelectionEnd
	switch n := r.SelectedNode.(type) {
	case *ast.BlockStmt:
		if start <= n.Lbrace && end >= n.End() {
			// A function body, or the body of an if or for, cannot be
			// replaced on its own.
			if len(r.PathEnclosingSelection) < 2 ||
				!slices.Contains(statementList(r.PathEnclosingSelection[1]), ast.Stmt(n)) {
				return errInvalidSelection("a body is not a statement; select the statements inside its braces")
			}
			return r.selectStatements([]ast.Stmt{n})
		}
		if start <= n.Lbrace || end > n.Rbrace {
			return errInvalidSelection("the selection must contain complete statements")
		}
		return r.selectStatementsIn(n.List)

	case *ast.CaseClause:
		if start <= n.Colon {
			return errInvalidSelection("select statements in the case clause, not the clause itself")
		}
		return r.selectStatementsIn(n.Body)

	case *ast.CommClause:
		if start <= n.Colon {
			return errInvalidSelection("select statements in the case clause, not the clause itself")
		}
		return r.selectStatementsIn(n.Body)

	case ast.Stmt:
		if !r.SelectionIsExact {
			return errInvalidSelection("the selection must contain complete statements")
		}
		return r.selectStatements([]ast.Stmt{n})

	case ast.Expr:
		return r.selectExpression(n)

	case *ast.File, ast.Decl, ast.Spec:
		return errInvalidSelection("declarations cannot be searched for duplicates; select statements or an expression")

	default:
		return errInvalidSelection("select one or more statements or an expression")
	}
}

// selectStatementsIn selects the statements of list lying within the
// selection.  A statement partially within the selection is an error.
func (r *FindDuplicates) selectStatementsIn(list []ast.Stmt) error {
	var selected []ast.Stmt
	for _, stmt := range list {
		inside := stmt.Pos() >= r.SelectionStart && stmt.End() <= r.SelectionEnd
		overlaps := stmt.Pos() < r.SelectionEnd && stmt.End() > r.SelectionStart
		switch {
		case inside:
			selected = append(selected, stmt)
		case overlaps:
			return errInvalidSelection("the selection must contain complete statements")
		}
	}
	if len(selected) == 0 {
		return errInvalidSelection("select one or more statements or an expression")
	}
	return r.selectStatements(selected)
}

func (r *FindDuplicates) selectStatements(stmts []ast.Stmt) error {
	if len(stmts) < r.Settings.MinStatements {
		return errInvalidSelection(fmt.Sprintf("at least %d statement(s) must be selected (see min_statements)",
			r.Settings.MinStatements))
	}
	r.statements = true
	r.pattern = make([]ast.Node, len(stmts))
	for i, stmt := range stmts {
		r.pattern[i] = stmt
	}
	return nil
}

func (r *FindDuplicates) selectExpression(e ast.Expr) error {
	if !r.SelectionIsExact {
		return errInvalidSelection("the selection must be a complete expression")
	}
	info := r.Info()
	if tv, ok := info.Types[e]; ok && tv.IsType() {
		return errInvalidSelection("types cannot be searched for duplicates; select an expression")
	}
	if id, ok := e.(*ast.Ident); ok && info.Defs[id] != nil {
		return errInvalidSelection("select an expression, not the name being declared")
	}
	if _, ok := e.(*ast.KeyValueExpr); ok {
		return errInvalidSelection("select the key or the value, not both")
	}
	r.pattern = []ast.Node{e}
	return nil
}

// filesToSearch returns the selected file, followed by the package's other
// files when searchPackage is set.  Excluded files are skipped, except for
// the selected file.
func (r *FindDuplicates) filesToSearch(searchPackage bool) []*ast.File {
	files := []*ast.File{r.File}
	if !searchPackage {
		return files
	}
	for _, f := range r.Pkg.Syntax {
		if f == r.File {
			continue
		}
		if filename := r.Filename(f); r.Settings.Excluded(filename) {
			r.Log.Infof("Skipping %s (excluded)", displayablePath(filename))
			continue
		}
		files = append(files, f)
	}
	return files
}

// search finds the pattern in each file, searching at most
// Settings.Parallelism() files at once.  Duplicates are returned in file
// order, then in the order they were found.
func (r *FindDuplicates) search(files []*ast.File) []duplicate {
	results := make([][]*snippet.Match, len(files))
	finder := &snippet.Finder{Info: r.Info()}

	var g errgroup.Group
	g.SetLimit(r.Settings.Parallelism())
	for i, file := range files {
		g.Go(func() error {
			results[i] = finder.Find(file, r.pattern)
			return nil
		})
	}
	g.Wait()

	var dups []duplicate
	for i, matches := range results {
		for _, m := range matches {
			dups = append(dups, duplicate{files[i], m})
		}
	}
	return dups
}

// report logs a duplicate, with the renaming that makes it identical to the
// pattern and a warning if it could not be replaced by a call to a function
// extracted from the pattern.
func (r *FindDuplicates) report(d duplicate) {
	var renames []string
	for _, pv := range d.match.Locals() {
		if id := d.match.MappedName(pv); id != nil && id.Name != pv.Name() {
			renames = append(renames, id.Name+" -> "+pv.Name())
		}
	}
	if len(renames) == 0 {
		r.Log.Info("Duplicate code found")
	} else {
		r.Log.Infof("Duplicate code found (renaming %s)", strings.Join(renames, ", "))
	}
	r.Log.AssociatePos(r.Program.Fset, d.match.Pos(), d.match.End())

	if !r.statements {
		return
	}
	mapped := func(v *types.Var) *types.Var {
		for _, pv := range d.match.Locals() {
			if d.match.MappedVar(pv) == v {
				return pv
			}
		}
		return nil
	}
	var escaping []string
	live := r.liveDefinitions(d.file, d.match.Nodes())
	for _, v := range live.Vars() {
		if pv := mapped(v); pv == nil || !r.patternLive.Contains(pv) {
			escaping = append(escaping, v.Name())
		}
	}
	if len(escaping) > 0 {
		r.Log.Warnf("The duplicate assigns %s, which is used after it; "+
			"it could not be replaced by a call to a function extracted "+
			"from the selection", strings.Join(escaping, ", "))
		r.Log.AssociatePos(r.Program.Fset, d.match.Pos(), d.match.End())
	}
}

// liveDefinitions returns the local variables defined in nodes whose values
// may be read after them, including on a later iteration of a loop.
func (r *FindDuplicates) liveDefinitions(file *ast.File, nodes []ast.Node) dataflow.VarSet {
	if len(nodes) == 0 {
		return r.index.NewSet()
	}
	start, end := nodes[0].Pos(), nodes[len(nodes)-1].End()
	path, _ := astutil.PathEnclosingInterval(file, start, end)
	fn := enclosingFunc(path)
	if fn == nil {
		return r.index.NewSet()
	}
	def, _ := dataflow.ReferencedVars(nodes, r.Info(), r.index)
	return def.Intersection(dataflow.LiveAfter(fn, start, end, r.Info(), r.index))
}

// enclosingFunc returns the innermost function declaration or literal on
// path, or nil.
func enclosingFunc(path []ast.Node) ast.Node {
	for _, n := range path {
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			return n
		}
	}
	return nil
}
