// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package snippet finds the occurrences of a code snippet (a sequence of
// sibling statements, or a single expression) elsewhere in a syntax tree.
//
// An occurrence must have the same shape as the snippet.  Identifiers match
// when they denote the same object, or when both denote local variables of
// identical type that can be renamed into one another consistently: the
// first occurrence of a snippet variable binds it to the candidate's
// variable, and every later occurrence (in either direction) must agree with
// that binding.  Thus
//
//	x := len(a)
//	return x
//
// matches
//
//	y := len(a)
//	return y
//
// with y standing for x, but does not match "y := len(a); return z".
package snippet

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"maps"
	"slices"

	"github.com/godoctor/snipdoctor/analysis/astmatch"
	"github.com/godoctor/snipdoctor/analysis/names"
)

// A Match is one occurrence of a snippet.
type Match struct {
	nodes []ast.Node
	lhs   bool // the first node is the target of an assignment
	bindings
}

// Nodes returns the matched nodes, parallel to the snippet's nodes.
func (m *Match) Nodes() []ast.Node {
	return slices.Clone(m.nodes)
}

// Len returns the number of matched nodes.
func (m *Match) Len() int {
	return len(m.nodes)
}

// IsEmpty reports whether no nodes have been matched.
func (m *Match) IsEmpty() bool {
	return len(m.nodes) == 0
}

// Pos returns the position of the first matched node.
func (m *Match) Pos() token.Pos {
	if m.IsEmpty() {
		return token.NoPos
	}
	return m.nodes[0].Pos()
}

// End returns the end position of the last matched node.
func (m *Match) End() token.Pos {
	if m.IsEmpty() {
		return token.NoPos
	}
	return m.nodes[len(m.nodes)-1].End()
}

// Locals returns the snippet's local variables that were bound during
// matching, in the order they were first encountered.
func (m *Match) Locals() []*types.Var {
	return slices.Clone(m.order)
}

// MappedName returns the identifier in the occurrence that first stood for
// the snippet's local variable v, or nil if v was not bound.
func (m *Match) MappedName(v *types.Var) *ast.Ident {
	return m.idents[v]
}

// MappedVar returns the occurrence's variable that stands for the snippet's
// local variable v, or nil if v was not bound.
func (m *Match) MappedVar(v *types.Var) *types.Var {
	return m.vars[v]
}

func (m *Match) String() string {
	return fmt.Sprintf("match of %d node(s) at %d", len(m.nodes), m.Pos())
}

// bindings is the one-to-one correspondence between snippet variables and
// occurrence variables established by an attempt.
type bindings struct {
	order   []*types.Var
	idents  map[*types.Var]*ast.Ident
	vars    map[*types.Var]*types.Var // snippet -> occurrence
	reverse map[*types.Var]*types.Var // occurrence -> snippet
}

func newBindings() bindings {
	return bindings{
		idents:  map[*types.Var]*ast.Ident{},
		vars:    map[*types.Var]*types.Var{},
		reverse: map[*types.Var]*types.Var{},
	}
}

func (b bindings) clone() bindings {
	return bindings{
		order:   slices.Clone(b.order),
		idents:  maps.Clone(b.idents),
		vars:    maps.Clone(b.vars),
		reverse: maps.Clone(b.reverse),
	}
}

// bind records that snippet variable pv is represented by occurrence
// variable cv (first named by id).  It returns false if either variable is
// already bound to a different partner.
func (b *bindings) bind(pv, cv *types.Var, id *ast.Ident) bool {
	if bound, ok := b.vars[pv]; ok {
		return bound == cv
	}
	if _, ok := b.reverse[cv]; ok {
		return false
	}
	b.order = append(b.order, pv)
	b.idents[pv] = id
	b.vars[pv] = cv
	b.reverse[cv] = pv
	return true
}

// IsValidScope reports whether Find accepts n as its scope: a file, a
// function declaration, or a function literal.
func IsValidScope(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.File:
		return n != nil
	case *ast.FuncDecl:
		return n != nil
	case *ast.FuncLit:
		return n != nil
	}
	return false
}

// A Finder searches for occurrences of snippets.  Info must describe the
// syntax trees of both the snippet and the scope.
type Finder struct {
	Info *types.Info
}

// Find returns every occurrence of pattern within scope, in the order their
// first nodes are encountered in a pre-order traversal.  The pattern's own
// nodes are never searched.  Single-node occurrences that are the target of
// an assignment are omitted.
//
// Find panics if scope is not a valid scope (see IsValidScope) or if pattern
// is empty.
func (f *Finder) Find(scope ast.Node, pattern []ast.Node) []*Match {
	if !IsValidScope(scope) {
		panic(fmt.Sprintf("snippet: invalid scope %T", scope))
	}
	if len(pattern) == 0 {
		panic("snippet: empty pattern")
	}

	s := &search{
		info:      f.Info,
		pattern:   pattern,
		isPattern: make(map[ast.Node]bool, len(pattern)),
	}
	for _, n := range pattern {
		s.isPattern[n] = true
	}
	s.visit(scope, nil, s.fresh())

	result := make([]*Match, 0, len(s.results))
	for _, m := range s.results {
		if m.Len() == 1 && m.lhs {
			continue
		}
		result = append(result, m)
	}
	return result
}

// Find is shorthand for (&Finder{Info: info}).Find(scope, pattern).
func Find(info *types.Info, scope ast.Node, pattern []ast.Node) []*Match {
	f := Finder{Info: info}
	return f.Find(scope, pattern)
}

// search holds the inputs of one Find call and the occurrences found so far.
type search struct {
	info      *types.Info
	pattern   []ast.Node
	isPattern map[ast.Node]bool
	results   []*Match
}

// attempt is a partial occurrence.  Attempts are never modified once built;
// extending one yields a new attempt.
type attempt struct {
	Match
	parent ast.Node // parent of the matched nodes
}

func (s *search) fresh() *attempt {
	return &attempt{Match: Match{bindings: newBindings()}}
}

// visit examines node (whose parent is parent) given the attempt in progress
// before it, and returns the attempt in progress after node and its subtree.
func (s *search) visit(node, parent ast.Node, cur *attempt) *attempt {
	if s.isPattern[node] {
		return s.fresh()
	}
	if _, ok := node.(*ast.TypeSpec); ok {
		return s.fresh()
	}

	if next, ok := s.extend(cur, node, parent); ok {
		return next
	}
	if !cur.IsEmpty() {
		cur = s.fresh()
		if next, ok := s.extend(cur, node, parent); ok {
			return next
		}
	}

	for _, child := range children(node) {
		cur = s.visit(child, node, cur)
	}
	return cur
}

// extend tries to match node against the next pattern node.  On success it
// returns the extended attempt, or a fresh attempt if the extension completed
// an occurrence (which is recorded).
func (s *search) extend(cur *attempt, node, parent ast.Node) (*attempt, bool) {
	i := cur.Len()
	if i > 0 && parent != cur.parent {
		return nil, false
	}
	if len(s.pattern) > 1 && !inStatementList(parent, node) {
		return nil, false
	}

	b := cur.bindings.clone()
	m := astmatch.Matcher{Ident: func(x, y *ast.Ident) bool {
		return s.unify(&b, x, y)
	}}
	if !m.Match(s.pattern[i], node) {
		return nil, false
	}

	next := &attempt{
		Match: Match{
			nodes:    append(slices.Clone(cur.nodes), node),
			lhs:      cur.lhs,
			bindings: b,
		},
		parent: cur.parent,
	}
	if i == 0 {
		next.parent = parent
		next.lhs = isAssignTarget(parent, node)
	}

	if next.Len() == len(s.pattern) {
		s.results = append(s.results, &next.Match)
		return s.fresh(), true
	}
	return next, true
}

// unify reports whether snippet identifier x may stand for occurrence
// identifier y, binding local variables in b as needed.
func (s *search) unify(b *bindings, x, y *ast.Ident) bool {
	xdef, xdecl := s.info.Defs[x]
	ydef, ydecl := s.info.Defs[y]
	if xdecl != ydecl {
		return false
	}
	if xdecl && xdef == nil && ydef == nil {
		// Blank identifiers and type switch symbols declare no object.
		return true
	}
	if x.Name == "_" && y.Name == "_" {
		return true
	}

	xobj, yobj := s.info.ObjectOf(x), s.info.ObjectOf(y)
	if xobj == nil || yobj == nil {
		return false
	}

	xv, xlocal := localVar(xobj)
	yv, ylocal := localVar(yobj)
	if xlocal && ylocal && types.Identical(xv.Type(), yv.Type()) {
		return b.bind(xv, yv, y)
	}
	return xobj == yobj
}

func localVar(obj types.Object) (*types.Var, bool) {
	if !names.IsLocal(obj) {
		return nil, false
	}
	return obj.(*types.Var), true
}

// inStatementList reports whether node is one of the statements parent
// executes in sequence: an element of a block, or of the body of a case or
// select clause.  Case expressions and the communication of a select clause
// are not.
func inStatementList(parent, node ast.Node) bool {
	stmt, ok := node.(ast.Stmt)
	if !ok {
		return false
	}
	var list []ast.Stmt
	switch p := parent.(type) {
	case *ast.BlockStmt:
		list = p.List
	case *ast.CaseClause:
		list = p.Body
	case *ast.CommClause:
		list = p.Body
	}
	return slices.Contains(list, stmt)
}

// isAssignTarget reports whether node is written by its parent: an operand on
// the left of an assignment, the operand of ++ or --, or an iteration
// variable assigned (not declared) by a range clause.
func isAssignTarget(parent, node ast.Node) bool {
	switch p := parent.(type) {
	case *ast.AssignStmt:
		for _, lhs := range p.Lhs {
			if lhs == node {
				return true
			}
		}
	case *ast.IncDecStmt:
		return p.X == node
	case *ast.RangeStmt:
		return p.Tok == token.ASSIGN && (p.Key == node || p.Value == node)
	}
	return false
}

// children returns the immediate children of n in source order.
func children(n ast.Node) []ast.Node {
	var result []ast.Node
	ast.Inspect(n, func(c ast.Node) bool {
		if c == n {
			return true
		}
		if c != nil {
			result = append(result, c)
		}
		return false
	})
	return result
}
