// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the Extract Local Variable refactoring, which assigns the
// selected expression to a new variable declared immediately before the
// statement containing it, and replaces the expression (and optionally its
// other occurrences) with the variable's name.

package refactoring

import (
	"go/ast"
	"go/token"
	"go/types"
	"slices"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/godoctor/snipdoctor/analysis/astmatch"
	"github.com/godoctor/snipdoctor/analysis/dataflow"
	"github.com/godoctor/snipdoctor/analysis/names"
	"github.com/godoctor/snipdoctor/text"
)

type ExtractLocal struct {
	RefactoringBase
	name       string
	replaceAll bool

	expr ast.Expr
	// path from expr to the file
	path []ast.Node
	// the statement before which the declaration is inserted, and the
	// block or clause listing it
	insertAt ast.Stmt
	block    ast.Node
}

func (r *ExtractLocal) Description() *Description {
	return &Description{
		Name:      "Extract Local Variable",
		Synopsis:  "Assigns an expression to a new local variable",
		Usage:     "<new_name> <replace_all?>",
		Multifile: false,
		Params: []Parameter{
			{
				Label:        "Name:",
				Prompt:       "Name for the new variable",
				DefaultValue: "",
			},
			{
				Label:        "Replace all occurrences",
				Prompt:       "Also replace identical expressions where the new variable is in scope",
				DefaultValue: false,
			},
		},
		Quality: Testing,
		Hidden:  false,
	}
}

func (r *ExtractLocal) Run(config *Config) *Result {
	r.RefactoringBase.Run(config)
	if r.Log.ContainsErrors() {
		return &r.Result
	}
	if !ValidateArgs(config, r.Description(), r.Log) {
		return &r.Result
	}
	r.name = config.Args[0].(string)
	r.replaceAll = config.Args[1].(bool)

	if !isIdentifierValid(r.name) || r.name == "_" {
		r.Log.Error(errInvalidArgs("the new name \"" + r.name + "\" is not a valid Go identifier"))
		return &r.Result
	}

	if err := r.checkSelection(); err != nil {
		r.Log.Error(err)
		r.Log.AssociatePos(r.Program.Fset, r.SelectionStart, r.SelectionEnd)
		return &r.Result
	}
	if !r.findInsertionPoint() || !r.checkFreeVars() || !r.checkConflicts() {
		return &r.Result
	}
	if r.evaluatedConditionally() {
		r.Log.Warn("The selected expression is evaluated conditionally; " +
			"the new variable will be assigned unconditionally")
		r.Log.AssociateNode(r.Program.Fset, r.expr)
	}

	occurrences := []ast.Expr{r.expr}
	if r.replaceAll {
		occurrences = r.findOccurrences()
	}
	r.addEdits(occurrences)
	r.UpdateLog(config, true)
	return &r.Result
}

func isIdentifierValid(name string) bool {
	return token.IsIdentifier(name)
}

// checkSelection determines whether the selection is an expression whose
// value can be assigned to a new variable.
func (r *ExtractLocal) checkSelection() error {
	e, ok := r.SelectedNode.(ast.Expr)
	if !ok || !r.SelectionIsExact {
		return errInvalidSelection("please select an expression to extract")
	}
	r.expr, r.path = e, r.PathEnclosingSelection
	parent := r.path[1]

	info := r.Info()
	if id, ok := e.(*ast.Ident); ok {
		if info.Defs[id] != nil {
			return errInvalidSelection("a name being declared cannot be extracted")
		}
		if sel, ok := parent.(*ast.SelectorExpr); ok && sel.Sel == id {
			return errInvalidSelection("select the entire selector expression")
		}
	}
	if _, ok := e.(*ast.KeyValueExpr); ok {
		return errInvalidSelection("select the key or the value, not both")
	}

	tv, ok := info.Types[e]
	switch {
	case !ok:
		return errInvalidSelection("the selected expression has no type information")
	case tv.IsType():
		return errInvalidSelection("a type cannot be extracted to a variable")
	case tv.IsBuiltin():
		return errInvalidSelection("a built-in function cannot be extracted to a variable")
	case tv.IsVoid():
		return errInvalidSelection("the selected expression has no value")
	case tv.IsNil():
		return errInvalidSelection("nil cannot be extracted to a variable")
	}
	if _, ok := tv.Type.(*types.Tuple); ok {
		return errInvalidSelection("an expression with multiple values cannot be extracted")
	}
	if names.IsLvalue(r.path) {
		return errInvalidSelection("the selected expression is assigned to or has its address taken")
	}

	switch parent := parent.(type) {
	case *ast.ExprStmt:
		return errInvalidSelection("select an expression within the statement, not the statement itself")
	case *ast.GoStmt, *ast.DeferStmt:
		return errInvalidSelection("the call of a go or defer statement cannot be extracted")
	case *ast.CaseClause:
		if slices.Contains(parent.List, e) {
			return errInvalidSelection("case expressions cannot be extracted")
		}
	}
	for i := 1; i < len(r.path); i++ {
		switch n := r.path[i].(type) {
		case *ast.ForStmt:
			if within(e, n.Cond) || within(e, n.Post) {
				return errInvalidSelection("the expression is evaluated on every iteration of the loop")
			}
		case *ast.GenDecl:
			if n.Tok == token.CONST {
				return errInvalidSelection("expressions in constant declarations cannot be extracted")
			}
		}
	}
	return nil
}

// within reports whether n lies inside outer.
func within(n, outer ast.Node) bool {
	return outer != nil && outer.Pos() <= n.Pos() && n.End() <= outer.End()
}

// findInsertionPoint finds the innermost statement that contains the
// selection and belongs to a statement list.
func (r *ExtractLocal) findInsertionPoint() bool {
	for i := 1; i+1 < len(r.path); i++ {
		stmt, ok := r.path[i].(ast.Stmt)
		if !ok {
			continue
		}
		switch stmt.(type) {
		case *ast.CaseClause, *ast.CommClause:
			r.Log.Error(errInvalidSelection("expressions in a case cannot be extracted"))
			r.Log.AssociateNode(r.Program.Fset, r.expr)
			return false
		}
		if list := statementList(r.path[i+1]); slices.Contains(list, stmt) {
			r.insertAt, r.block = stmt, r.path[i+1]
			return true
		}
	}
	r.Log.Error(errInvalidSelection("only expressions in a function body can be extracted"))
	r.Log.AssociateNode(r.Program.Fset, r.expr)
	return false
}

// statementList returns the statements listed by a block or a case clause,
// or nil.
func statementList(n ast.Node) []ast.Stmt {
	switch n := n.(type) {
	case *ast.BlockStmt:
		return n.List
	case *ast.CaseClause:
		return n.Body
	case *ast.CommClause:
		return n.Body
	}
	return nil
}

// checkFreeVars ensures every local variable the expression refers to is
// declared before the insertion point.
func (r *ExtractLocal) checkFreeVars() bool {
	for _, v := range r.freeVars() {
		if v.Pos() >= r.insertAt.Pos() {
			r.Log.Errorf("The expression refers to %s, which is not declared "+
				"before the statement containing the expression", v.Name())
			r.Log.AssociateNode(r.Program.Fset, r.expr)
			return false
		}
	}
	return true
}

// freeVars returns the local variables used in the expression and declared
// outside it, in order of first use.
func (r *ExtractLocal) freeVars() []*types.Var {
	var result []*types.Var
	ast.Inspect(r.expr, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		v, ok := r.Info().Uses[id].(*types.Var)
		if !ok || !names.IsLocal(v) || declaredIn(v, r.expr) || slices.Contains(result, v) {
			return true
		}
		result = append(result, v)
		return true
	})
	return result
}

// declaredIn reports whether obj is declared inside n.
func declaredIn(obj types.Object, n ast.Node) bool {
	return n.Pos() <= obj.Pos() && obj.Pos() < n.End()
}

// checkConflicts ensures the new name neither clashes with a declaration in
// the scope of the new variable nor captures a reference to an outer object.
func (r *ExtractLocal) checkConflicts() bool {
	scope := r.insertionScope()
	if scope == nil {
		r.Log.Error("INTERNAL ERROR: no scope for the new variable")
		return false
	}
	if obj := names.FindConflict(scope, r.name, r.Info()); obj != nil {
		r.Log.Errorf("The name %s is already used in this scope", r.name)
		if obj.Pos().IsValid() && obj.Pkg() == r.Pkg.Types {
			r.Log.AssociatePos(r.Program.Fset, obj.Pos(), obj.Pos()+token.Pos(len(obj.Name())))
		}
		return false
	}
	return true
}

// insertionScope returns the scope the new variable is declared in.  A
// function body has no scope of its own: its declarations belong to the
// function's scope.
func (r *ExtractLocal) insertionScope() *types.Scope {
	info := r.Info()
	if scope := info.Scopes[r.block]; scope != nil {
		return scope
	}
	switch fn := enclosingFunc(r.path).(type) {
	case *ast.FuncDecl:
		return info.Scopes[fn.Type]
	case *ast.FuncLit:
		return info.Scopes[fn.Type]
	}
	return nil
}

// evaluatedConditionally reports whether the statement containing the
// expression might complete without evaluating it: the expression is the
// second operand of && or ||, or part of an else-if.
func (r *ExtractLocal) evaluatedConditionally() bool {
	for i := 1; i < len(r.path) && r.path[i-1] != r.insertAt; i++ {
		child := r.path[i-1]
		switch n := r.path[i].(type) {
		case *ast.BinaryExpr:
			if (n.Op == token.LAND || n.Op == token.LOR) && n.Y == child {
				return true
			}
		case *ast.IfStmt:
			if n.Else == child {
				return true
			}
		}
	}
	return false
}

// findOccurrences returns the selected expression and every identical
// expression (referring to the same objects) that the new variable would be
// in scope for and could stand for.
func (r *ExtractLocal) findOccurrences() []ast.Expr {
	info := r.Info()
	finder := &astmatch.Finder{Matcher: astmatch.Matcher{
		Ident: func(x, y *ast.Ident) bool {
			return x.Name == y.Name && info.ObjectOf(x) == info.ObjectOf(y)
		},
	}}

	fn := enclosingFunc(r.path)
	start, end := r.insertAt.Pos(), r.block.End()
	var result []ast.Expr
	for _, n := range finder.FindMatchingNodes(fn, r.expr) {
		e, ok := n.(ast.Expr)
		switch {
		case !ok:
			continue
		case e == r.expr:
			result = append(result, e)
			continue
		case e.Pos() <= start || e.End() > end:
			continue
		}
		if !types.Identical(info.TypeOf(e), info.TypeOf(r.expr)) {
			continue
		}
		if path, _ := astutil.PathEnclosingInterval(r.File, e.Pos(), e.End()); r.canReplace(e, path) {
			result = append(result, e)
		}
	}

	if len(result) > 1 {
		if assigned := r.freeVarsAssignedAfterInsertion(); len(assigned) > 0 {
			r.Log.Infof("Only the selected occurrence was replaced, "+
				"since %s is assigned after the new variable is declared",
				strings.Join(assigned, ", "))
			r.Log.AssociateNode(r.Program.Fset, r.expr)
			return []ast.Expr{r.expr}
		}
		if containsCall(r.expr, info) {
			r.Log.Warnf("The expression contains a function call; it was "+
				"evaluated %d times but will be evaluated once", len(result))
			r.Log.AssociateNode(r.Program.Fset, r.expr)
		}
	}
	return result
}

// canReplace determines whether the occurrence e (with the given path) can
// be replaced by the new variable.
func (r *ExtractLocal) canReplace(e ast.Expr, path []ast.Node) bool {
	if len(path) < 2 || path[0] != e || names.IsLvalue(path) {
		return false
	}
	switch parent := path[1].(type) {
	case *ast.ExprStmt, *ast.GoStmt, *ast.DeferStmt:
		return false
	case *ast.SelectorExpr:
		if parent.Sel == e {
			return false
		}
	case *ast.CaseClause:
		if slices.Contains(parent.List, e) {
			return false
		}
	}
	for _, n := range path[1:] {
		if n == r.block {
			break
		}
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ForStmt:
			if within(e, n.Cond) || within(e, n.Post) {
				return false
			}
		}
	}
	return true
}

// freeVarsAssignedAfterInsertion returns the names of the expression's free
// variables assigned by the statements from the insertion point to the end
// of its block.
func (r *ExtractLocal) freeVarsAssignedAfterInsertion() []string {
	list := statementList(r.block)
	idx := slices.Index(list, r.insertAt)
	nodes := make([]ast.Node, 0, len(list)-idx)
	for _, stmt := range list[idx:] {
		nodes = append(nodes, stmt)
	}

	index := dataflow.NewIndex()
	def, _ := dataflow.ReferencedVars(nodes, r.Info(), index)
	var result []string
	for _, v := range r.freeVars() {
		if def.Contains(v) {
			result = append(result, v.Name())
		}
	}
	return result
}

// containsCall reports whether evaluating e might call a function or receive
// from a channel (conversions are not calls).
func containsCall(e ast.Expr, info *types.Info) bool {
	found := false
	ast.Inspect(e, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.CallExpr:
			if tv, ok := info.Types[n.Fun]; !ok || !tv.IsType() {
				found = true
			}
		case *ast.UnaryExpr:
			if n.Op == token.ARROW {
				found = true
			}
		case *ast.FuncLit:
			return false
		}
		return !found
	})
	return found
}

// addEdits replaces each occurrence with the new name and inserts the
// declaration before the insertion point.
func (r *ExtractLocal) addEdits(occurrences []ast.Expr) {
	edits := r.Edits[r.Filename(r.File)]
	for _, e := range occurrences {
		if err := edits.Add(r.Extent(e), r.name); err != nil {
			r.Log.Error(err)
			return
		}
	}

	// An insertion added after a replacement at the same offset precedes it.
	offset := r.Extent(r.insertAt).Offset
	decl := r.name + " := " + r.Text(r.expr) + r.separatorAt(offset)
	if err := edits.Add(text.Extent{Offset: offset, Length: 0}, decl); err != nil {
		r.Log.Error(err)
	}
}

// separatorAt returns the text that separates the new declaration from the
// statement at offset: a newline and that statement's indentation when the
// statement begins its line, or a semicolon otherwise.
func (r *ExtractLocal) separatorAt(offset int) string {
	lineStart := offset
	for lineStart > 0 && r.FileContents[lineStart-1] != '\n' {
		lineStart--
	}
	indent := string(r.FileContents[lineStart:offset])
	if strings.TrimLeft(indent, " \t") != "" {
		return "; "
	}
	return "\n" + indent
}
