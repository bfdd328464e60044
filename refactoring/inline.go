// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the Inline Local Variable refactoring, which replaces
// every use of a local variable with the expression that initializes it and
// removes the variable's declaration.

package refactoring

import (
	"go/ast"
	"go/token"
	"go/types"
	"slices"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/godoctor/snipdoctor/analysis/names"
	"github.com/godoctor/snipdoctor/text"
)

type InlineLocal struct {
	RefactoringBase
	v      *types.Var
	declID *ast.Ident
	// path from declID to the file
	declPath []ast.Node
	init     ast.Expr
	// the statement declaring the variable
	declStmt ast.Stmt
	uses     []*ast.Ident
}

func (r *InlineLocal) Description() *Description {
	return &Description{
		Name:      "Inline Local Variable",
		Synopsis:  "Replaces each use of a local variable with its initializer",
		Usage:     "",
		Multifile: false,
		Params:    nil,
		Quality:   Testing,
		Hidden:    false,
	}
}

func (r *InlineLocal) Run(config *Config) *Result {
	r.RefactoringBase.Run(config)
	if r.Log.ContainsErrors() {
		return &r.Result
	}
	if !ValidateArgs(config, r.Description(), r.Log) {
		return &r.Result
	}

	if err := r.findVariable(); err != nil {
		r.Log.Error(err)
		r.Log.AssociatePos(r.Program.Fset, r.SelectionStart, r.SelectionEnd)
		return &r.Result
	}
	if err := r.findDeclaration(); err != nil {
		r.Log.Error(err)
		r.Log.AssociateNode(r.Program.Fset, r.declID)
		return &r.Result
	}
	if len(r.uses) == 0 {
		r.Log.Errorf("%s is never used, so there is nothing to inline", r.v.Name())
		r.Log.AssociateNode(r.Program.Fset, r.declID)
		return &r.Result
	}
	if !r.checkUsesNotModified() || !r.checkInitializerUnchanged() || !r.checkNotShadowed() {
		return &r.Result
	}
	r.warnAboutEvaluation()

	r.replaceUses()
	r.removeDeclaration()
	r.UpdateLog(config, true)
	return &r.Result
}

// findVariable determines the local variable whose declaring identifier or
// use is selected.
func (r *InlineLocal) findVariable() error {
	id, ok := r.SelectedNode.(*ast.Ident)
	if !ok {
		return errInvalidSelection("please select a local variable (its declaration or a use)")
	}
	v, ok := r.Info().ObjectOf(id).(*types.Var)
	if !ok || !names.IsLocal(v) {
		return errInvalidSelection(id.Name + " is not a local variable")
	}
	r.v = v

	for _, occ := range names.FindOccurrences(v, r.Info()) {
		if r.Info().Defs[occ] == v {
			r.declID = occ
		} else {
			r.uses = append(r.uses, occ)
		}
	}
	if r.declID == nil {
		return errInvalidSelection("the variable of a type switch cannot be inlined")
	}
	return nil
}

// findDeclaration finds the statement and initializer declaring r.v.
func (r *InlineLocal) findDeclaration() error {
	r.declPath, _ = astutil.PathEnclosingInterval(r.File, r.declID.Pos(), r.declID.End())
	if len(r.declPath) < 3 {
		return errInvalidSelection("cannot find the declaration of " + r.v.Name())
	}

	switch decl := r.declPath[1].(type) {
	case *ast.AssignStmt:
		i := slices.Index(decl.Lhs, ast.Expr(r.declID))
		if len(decl.Lhs) != len(decl.Rhs) {
			return errInvalidSelection(r.v.Name() + " is initialized by an expression with multiple values")
		}
		r.init, r.declStmt = decl.Rhs[i], decl
		if _, ok := r.declPath[2].(*ast.CommClause); ok {
			return errInvalidSelection("the variable of a select case cannot be inlined")
		}

	case *ast.ValueSpec:
		i := slices.Index(decl.Names, r.declID)
		if len(decl.Values) == 0 {
			return errInvalidSelection(r.v.Name() + " has no initializer")
		}
		if len(decl.Values) != len(decl.Names) {
			return errInvalidSelection(r.v.Name() + " is initialized by an expression with multiple values")
		}
		if len(r.declPath) < 4 {
			return errInvalidSelection("cannot find the declaration of " + r.v.Name())
		}
		stmt, ok := r.declPath[3].(*ast.DeclStmt)
		if !ok {
			return errInvalidSelection("cannot find the declaration of " + r.v.Name())
		}
		r.init, r.declStmt = decl.Values[i], stmt

	case *ast.Field:
		return errInvalidSelection("parameters and results cannot be inlined")

	case *ast.RangeStmt:
		return errInvalidSelection("range variables cannot be inlined")

	default:
		return errInvalidSelection("only variables declared with an initializer can be inlined")
	}
	return nil
}

// checkUsesNotModified ensures no use of the variable assigns it, increments
// it, or takes its address.
func (r *InlineLocal) checkUsesNotModified() bool {
	for _, use := range r.uses {
		path, _ := astutil.PathEnclosingInterval(r.File, use.Pos(), use.End())
		if r.isModified(path) {
			r.Log.Errorf("%s is modified after it is declared, so it cannot be inlined", r.v.Name())
			r.Log.AssociateNode(r.Program.Fset, use)
			return false
		}
	}
	return true
}

// isModified reports whether the variable path[0] is written by the
// expression enclosing it: directly, through one of its fields or array
// elements, or by a pointer method called on it.
func (r *InlineLocal) isModified(path []ast.Node) bool {
	info := r.Info()
	i := 0
	for i+1 < len(path) {
		node := path[i]
		switch p := path[i+1].(type) {
		case *ast.ParenExpr:
			i++
			continue

		case *ast.SelectorExpr:
			sel := info.Selections[p]
			if p.X != node || sel == nil || isPointer(info.TypeOf(p.X)) {
				break
			}
			if sel.Kind() == types.FieldVal {
				i++
				continue
			}
			if fn, ok := sel.Obj().(*types.Func); ok && sel.Kind() == types.MethodVal {
				recv := fn.Type().(*types.Signature).Recv()
				if recv != nil && isPointer(recv.Type()) {
					return true
				}
			}

		case *ast.IndexExpr:
			if p.X == node && isArray(info.TypeOf(p.X)) {
				i++
				continue
			}

		case *ast.SliceExpr:
			if p.X == node && isArray(info.TypeOf(p.X)) {
				return true
			}
		}
		break
	}
	return names.IsLvalue(path[i:])
}

func isPointer(t types.Type) bool {
	if t == nil {
		return false
	}
	_, ok := t.Underlying().(*types.Pointer)
	return ok
}

func isArray(t types.Type) bool {
	if t == nil {
		return false
	}
	_, ok := t.Underlying().(*types.Array)
	return ok
}

// checkInitializerUnchanged ensures the local variables the initializer reads
// are not assigned after the declaration, so the initializer has the same
// value at each use.
func (r *InlineLocal) checkInitializerUnchanged() bool {
	for _, fv := range r.initializerVars() {
		for _, occ := range names.FindOccurrences(fv, r.Info()) {
			if occ.Pos() < r.declStmt.End() {
				continue
			}
			path, _ := astutil.PathEnclosingInterval(r.File, occ.Pos(), occ.End())
			if r.Info().Defs[occ] != nil || r.isModified(path) {
				r.Log.Errorf("%s cannot be inlined because %s, "+
					"which its initializer uses, is modified after "+
					"%s is declared", r.v.Name(), fv.Name(), r.v.Name())
				r.Log.AssociateNode(r.Program.Fset, occ)
				return false
			}
		}
	}
	return true
}

// initializerVars returns the local variables read by the initializer and
// declared outside it.
func (r *InlineLocal) initializerVars() []*types.Var {
	var result []*types.Var
	ast.Inspect(r.init, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			v, ok := r.Info().Uses[id].(*types.Var)
			if ok && names.IsLocal(v) && !declaredIn(v, r.init) && !slices.Contains(result, v) {
				result = append(result, v)
			}
		}
		return true
	})
	return result
}

// checkNotShadowed ensures each name in the initializer denotes the same
// object at every use of the variable.
func (r *InlineLocal) checkNotShadowed() bool {
	info := r.Info()
	var refs []*ast.Ident
	ast.Inspect(r.init, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			ast.Inspect(n.X, func(n ast.Node) bool {
				if id, ok := n.(*ast.Ident); ok {
					refs = append(refs, id)
				}
				return true
			})
			return false
		case *ast.KeyValueExpr:
			if v, ok := info.Uses[keyIdent(n)].(*types.Var); ok && v.IsField() {
				ast.Inspect(n.Value, func(n ast.Node) bool {
					if id, ok := n.(*ast.Ident); ok {
						refs = append(refs, id)
					}
					return true
				})
				return false
			}
		case *ast.Ident:
			refs = append(refs, n)
		}
		return true
	})

	for _, id := range refs {
		obj := info.Uses[id]
		if obj == nil || isMember(obj) || declaredIn(obj, r.init) {
			continue
		}
		for _, use := range r.uses {
			if names.LookupAt(r.Pkg.Types, id.Name, use.Pos()) != obj {
				r.Log.Errorf("%s cannot be inlined here because %s "+
					"refers to a different declaration at this point",
					r.v.Name(), id.Name)
				r.Log.AssociateNode(r.Program.Fset, use)
				return false
			}
		}
	}
	return true
}

func keyIdent(kv *ast.KeyValueExpr) *ast.Ident {
	id, _ := kv.Key.(*ast.Ident)
	return id
}

// isMember reports whether obj is a struct field or method, which are found
// through selectors or composite literal keys rather than scopes.
func isMember(obj types.Object) bool {
	switch obj := obj.(type) {
	case *types.Var:
		return obj.IsField()
	case *types.Func:
		return obj.Type().(*types.Signature).Recv() != nil
	}
	return false
}

// warnAboutEvaluation warns when inlining changes how many times a call in
// the initializer is made.
func (r *InlineLocal) warnAboutEvaluation() {
	if !containsCall(r.init, r.Info()) {
		return
	}
	if len(r.uses) > 1 {
		r.Log.Warnf("The initializer of %s contains a function call; it was "+
			"evaluated once but will be evaluated %d times", r.v.Name(), len(r.uses))
		r.Log.AssociateNode(r.Program.Fset, r.init)
		return
	}
	path, _ := astutil.PathEnclosingInterval(r.File, r.uses[0].Pos(), r.uses[0].End())
	for _, n := range path {
		if within(r.declStmt, n) {
			break
		}
		switch n.(type) {
		case *ast.ForStmt, *ast.RangeStmt, *ast.FuncLit:
			r.Log.Warnf("The initializer of %s contains a function call "+
				"and may be evaluated more than once", r.v.Name())
			r.Log.AssociateNode(r.Program.Fset, r.uses[0])
			return
		}
	}
}

/* -=-=- Edits -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

func (r *InlineLocal) addEdit(start, end token.Pos, replacement string) {
	edits := r.Edits[r.Filename(r.File)]
	if err := edits.Add(r.extentOf(start, end), replacement); err != nil {
		r.Log.Error(err)
	}
}

// replaceUses replaces each use of the variable with its initializer.
func (r *InlineLocal) replaceUses() {
	replacement, converted := r.initializerText()
	for _, use := range r.uses {
		path, _ := astutil.PathEnclosingInterval(r.File, use.Pos(), use.End())
		if r.needsParens(path, converted) {
			r.addEdit(use.Pos(), use.End(), "("+replacement+")")
		} else {
			r.addEdit(use.Pos(), use.End(), replacement)
		}
	}
}

// initializerText returns the text of the initializer, converted to the
// variable's type if the declaration names a type the initializer does not
// have on its own.
func (r *InlineLocal) initializerText() (replacement string, converted bool) {
	init := r.Text(r.init)
	spec, ok := r.declPath[1].(*ast.ValueSpec)
	if !ok || spec.Type == nil {
		return init, false
	}
	tv := r.Info().Types[r.init]
	if types.Identical(tv.Type, r.v.Type()) && !tv.IsNil() &&
		(tv.Value == nil || isConversion(r.init, r.Info())) {
		return init, false
	}

	typ := r.Text(spec.Type)
	switch spec.Type.(type) {
	case *ast.StarExpr, *ast.FuncType, *ast.ChanType:
		typ = "(" + typ + ")"
	}
	return typ + "(" + init + ")", true
}

func isConversion(e ast.Expr, info *types.Info) bool {
	call, ok := ast.Unparen(e).(*ast.CallExpr)
	if !ok {
		return false
	}
	tv, ok := info.Types[call.Fun]
	return ok && tv.IsType()
}

// needsParens reports whether the initializer must be parenthesized to
// replace the identifier path[0].
func (r *InlineLocal) needsParens(path []ast.Node, converted bool) bool {
	if len(path) < 2 {
		return false
	}
	if lit, ok := ast.Unparen(r.init).(*ast.CompositeLit); ok && inStatementHeader(path) {
		switch lit.Type.(type) {
		case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr:
			return true
		}
	}
	if converted || isPrimary(r.init) {
		return false
	}
	switch parent := path[1].(type) {
	case *ast.ParenExpr, *ast.KeyValueExpr, *ast.CompositeLit,
		*ast.ReturnStmt, *ast.AssignStmt, *ast.ValueSpec, *ast.SendStmt,
		*ast.SwitchStmt, *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt,
		*ast.CaseClause, *ast.ExprStmt:
		return false
	case *ast.CallExpr:
		return parent.Fun == path[0]
	case *ast.IndexExpr:
		return parent.X == path[0]
	case *ast.SliceExpr:
		return parent.X == path[0]
	}
	return true
}

// isPrimary reports whether e can be used as an operand anywhere without
// parentheses.
func isPrimary(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.BasicLit, *ast.CompositeLit, *ast.ParenExpr,
		*ast.CallExpr, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr,
		*ast.SliceExpr, *ast.TypeAssertExpr:
		return true
	}
	return false
}

// inStatementHeader reports whether path[0] lies in the header of an if,
// for, or switch statement, where an unparenthesized composite literal would
// be parsed as the statement's body.
func inStatementHeader(path []ast.Node) bool {
	for i := 1; i < len(path); i++ {
		switch n := path[i].(type) {
		case *ast.IfStmt:
			return path[i-1] != n.Body && path[i-1] != n.Else
		case *ast.ForStmt:
			return path[i-1] != n.Body
		case *ast.RangeStmt:
			return path[i-1] != n.Body
		case *ast.SwitchStmt:
			return path[i-1] != n.Body
		case *ast.TypeSwitchStmt:
			return path[i-1] != n.Body
		case *ast.BlockStmt, *ast.FuncLit, *ast.CompositeLit, *ast.CallExpr:
			return false
		}
	}
	return false
}

// removeDeclaration removes the variable (and its initializer) from its
// declaration, removing the declaration entirely if nothing else is
// declared by it.
func (r *InlineLocal) removeDeclaration() {
	switch decl := r.declPath[1].(type) {
	case *ast.AssignStmt:
		if len(decl.Lhs) == 1 {
			r.removeStatement(decl)
			return
		}
		i := slices.Index(decl.Lhs, ast.Expr(r.declID))
		lhs := textsWithout(&r.RefactoringBase, decl.Lhs, i)
		rhs := textsWithout(&r.RefactoringBase, decl.Rhs, i)
		tok := token.ASSIGN
		for j, e := range decl.Lhs {
			if id, ok := e.(*ast.Ident); ok && j != i && r.Info().Defs[id] != nil {
				tok = token.DEFINE
			}
		}
		r.addEdit(decl.Pos(), decl.End(),
			strings.Join(lhs, ", ")+" "+tok.String()+" "+strings.Join(rhs, ", "))

	case *ast.ValueSpec:
		gen := r.declPath[2].(*ast.GenDecl)
		if len(decl.Names) > 1 {
			i := slices.Index(decl.Names, r.declID)
			newSpec := strings.Join(textsWithout(&r.RefactoringBase, decl.Names, i), ", ")
			if decl.Type != nil {
				newSpec += " " + r.Text(decl.Type)
			}
			newSpec += " = " + strings.Join(textsWithout(&r.RefactoringBase, decl.Values, i), ", ")
			r.addEdit(decl.Names[0].Pos(), decl.Values[len(decl.Values)-1].End(), newSpec)
		} else if len(gen.Specs) > 1 {
			r.removeLine(decl.Pos(), decl.End())
		} else {
			r.removeStatement(r.declStmt)
		}
	}
}

// textsWithout returns the source text of each node except nodes[i].
func textsWithout[T ast.Node](r *RefactoringBase, nodes []T, i int) []string {
	var result []string
	for j, n := range nodes {
		if j != i {
			result = append(result, r.Text(n))
		}
	}
	return result
}

// removeStatement removes the declaring statement, which may be the
// initialization statement of an if, switch, or for statement.
func (r *InlineLocal) removeStatement(stmt ast.Stmt) {
	switch n := r.parentOf(stmt).(type) {
	case *ast.IfStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt:
		r.removeThroughSemicolon(stmt.Pos(), stmt.End())
	case *ast.ForStmt:
		// leave the semicolon: for ; cond; post {
		r.addEdit(n.Init.Pos(), n.Init.End(), "")
	default:
		r.removeLine(stmt.Pos(), stmt.End())
	}
}

// parentOf returns the node enclosing n on the declaration's path.
func (r *InlineLocal) parentOf(n ast.Node) ast.Node {
	for i := 0; i+1 < len(r.declPath); i++ {
		if r.declPath[i] == n {
			return r.declPath[i+1]
		}
	}
	return nil
}

// removeLine removes the text from start to end.  If nothing else is on the
// line, the whole line is removed; if a semicolon follows, it is removed
// too.
func (r *InlineLocal) removeLine(start, end token.Pos) {
	ext := r.extentOf(start, end)
	from, to := ext.Offset, ext.OffsetPastEnd()
	contents := r.FileContents

	lineStart := from
	for lineStart > 0 && (contents[lineStart-1] == ' ' || contents[lineStart-1] == '\t') {
		lineStart--
	}
	lineEnd := to
	for lineEnd < len(contents) && (contents[lineEnd] == ' ' || contents[lineEnd] == '\t' || contents[lineEnd] == '\r') {
		lineEnd++
	}
	if (lineStart == 0 || contents[lineStart-1] == '\n') && (lineEnd == len(contents) || contents[lineEnd] == '\n') {
		if lineEnd < len(contents) {
			lineEnd++
		}
		r.addExtentEdit(lineStart, lineEnd)
		return
	}
	if lineEnd < len(contents) && contents[lineEnd] == ';' {
		r.removeThroughSemicolon(start, end)
		return
	}
	r.addExtentEdit(from, to)
}

// removeThroughSemicolon removes the text from start to end, the semicolon
// following it, and any spaces after the semicolon.
func (r *InlineLocal) removeThroughSemicolon(start, end token.Pos) {
	ext := r.extentOf(start, end)
	to := ext.OffsetPastEnd()
	contents := r.FileContents
	for to < len(contents) && contents[to] != ';' {
		to++
	}
	if to < len(contents) {
		to++
	}
	for to < len(contents) && (contents[to] == ' ' || contents[to] == '\t') {
		to++
	}
	r.addExtentEdit(ext.Offset, to)
}

func (r *InlineLocal) addExtentEdit(from, to int) {
	edits := r.Edits[r.Filename(r.File)]
	if err := edits.Add(text.Extent{Offset: from, Length: to - from}, ""); err != nil {
		r.Log.Error(err)
	}
}
