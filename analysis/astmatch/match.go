// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package astmatch compares Go syntax trees structurally.
//
// Two nodes match when they have the same concrete type, their tokens and
// literals agree, and their children match pairwise.  Positions, comments and
// the deprecated ast.Object links are ignored.  Identifiers are compared by
// name unless the Matcher is given a hook that decides otherwise; the snippet
// finder uses that hook to unify local variables.
package astmatch

import (
	"fmt"
	"go/ast"
	"reflect"
)

// A Matcher compares syntax trees.  The zero Matcher compares identifiers by
// name.
type Matcher struct {
	// Ident, if non-nil, decides whether two identifiers match.  It is
	// called only for identifiers in corresponding positions.
	Ident func(x, y *ast.Ident) bool
}

// Match reports whether x and y are structurally equal using the zero
// Matcher.
func Match(x, y ast.Node) bool {
	var m Matcher
	return m.Match(x, y)
}

// Match reports whether x and y are structurally equal.  Two nil nodes match;
// a nil node never matches a non-nil one.
func (m *Matcher) Match(x, y ast.Node) bool {
	xnil, ynil := isNil(x), isNil(y)
	if xnil || ynil {
		return xnil == ynil
	}
	if reflect.TypeOf(x) != reflect.TypeOf(y) {
		return false
	}

	switch x := x.(type) {
	default:
		panic(fmt.Sprintf("unhandled AST node type: %T", x))

	case *ast.Package:
		return false

	case *ast.Comment, *ast.CommentGroup:
		return true

	case *ast.BadExpr, *ast.BadStmt, *ast.BadDecl:
		return false

	// -=-=- Expressions -=-=-

	case *ast.Ident:
		y := y.(*ast.Ident)
		if m.Ident != nil {
			return m.Ident(x, y)
		}
		return x.Name == y.Name

	case *ast.BasicLit:
		y := y.(*ast.BasicLit)
		return x.Kind == y.Kind && x.Value == y.Value

	case *ast.Ellipsis:
		y := y.(*ast.Ellipsis)
		return m.Match(x.Elt, y.Elt)

	case *ast.FuncLit:
		y := y.(*ast.FuncLit)
		return m.Match(x.Type, y.Type) && m.Match(x.Body, y.Body)

	case *ast.CompositeLit:
		y := y.(*ast.CompositeLit)
		return m.Match(x.Type, y.Type) && matchList(m, x.Elts, y.Elts)

	case *ast.ParenExpr:
		y := y.(*ast.ParenExpr)
		return m.Match(x.X, y.X)

	case *ast.SelectorExpr:
		y := y.(*ast.SelectorExpr)
		return m.Match(x.X, y.X) && m.Match(x.Sel, y.Sel)

	case *ast.IndexExpr:
		y := y.(*ast.IndexExpr)
		return m.Match(x.X, y.X) && m.Match(x.Index, y.Index)

	case *ast.IndexListExpr:
		y := y.(*ast.IndexListExpr)
		return m.Match(x.X, y.X) && matchList(m, x.Indices, y.Indices)

	case *ast.SliceExpr:
		y := y.(*ast.SliceExpr)
		return x.Slice3 == y.Slice3 &&
			m.Match(x.X, y.X) &&
			m.Match(x.Low, y.Low) &&
			m.Match(x.High, y.High) &&
			m.Match(x.Max, y.Max)

	case *ast.TypeAssertExpr:
		y := y.(*ast.TypeAssertExpr)
		return m.Match(x.X, y.X) && m.Match(x.Type, y.Type)

	case *ast.CallExpr:
		y := y.(*ast.CallExpr)
		return x.Ellipsis.IsValid() == y.Ellipsis.IsValid() &&
			m.Match(x.Fun, y.Fun) &&
			matchList(m, x.Args, y.Args)

	case *ast.StarExpr:
		y := y.(*ast.StarExpr)
		return m.Match(x.X, y.X)

	case *ast.UnaryExpr:
		y := y.(*ast.UnaryExpr)
		return x.Op == y.Op && m.Match(x.X, y.X)

	case *ast.BinaryExpr:
		y := y.(*ast.BinaryExpr)
		return x.Op == y.Op && m.Match(x.X, y.X) && m.Match(x.Y, y.Y)

	case *ast.KeyValueExpr:
		y := y.(*ast.KeyValueExpr)
		return m.Match(x.Key, y.Key) && m.Match(x.Value, y.Value)

	// -=-=- Types -=-=-

	case *ast.ArrayType:
		y := y.(*ast.ArrayType)
		return m.Match(x.Len, y.Len) && m.Match(x.Elt, y.Elt)

	case *ast.StructType:
		y := y.(*ast.StructType)
		return m.Match(x.Fields, y.Fields)

	case *ast.FuncType:
		y := y.(*ast.FuncType)
		return m.Match(x.TypeParams, y.TypeParams) &&
			m.Match(x.Params, y.Params) &&
			m.Match(x.Results, y.Results)

	case *ast.InterfaceType:
		y := y.(*ast.InterfaceType)
		return m.Match(x.Methods, y.Methods)

	case *ast.MapType:
		y := y.(*ast.MapType)
		return m.Match(x.Key, y.Key) && m.Match(x.Value, y.Value)

	case *ast.ChanType:
		y := y.(*ast.ChanType)
		return x.Dir == y.Dir && m.Match(x.Value, y.Value)

	case *ast.FieldList:
		y := y.(*ast.FieldList)
		return matchList(m, x.List, y.List)

	case *ast.Field:
		y := y.(*ast.Field)
		return matchList(m, x.Names, y.Names) &&
			m.Match(x.Type, y.Type) &&
			m.Match(x.Tag, y.Tag)

	// -=-=- Statements -=-=-

	case *ast.DeclStmt:
		y := y.(*ast.DeclStmt)
		return m.Match(x.Decl, y.Decl)

	case *ast.EmptyStmt:
		y := y.(*ast.EmptyStmt)
		return x.Implicit == y.Implicit

	case *ast.LabeledStmt:
		y := y.(*ast.LabeledStmt)
		return m.Match(x.Label, y.Label) && m.Match(x.Stmt, y.Stmt)

	case *ast.ExprStmt:
		y := y.(*ast.ExprStmt)
		return m.Match(x.X, y.X)

	case *ast.SendStmt:
		y := y.(*ast.SendStmt)
		return m.Match(x.Chan, y.Chan) && m.Match(x.Value, y.Value)

	case *ast.IncDecStmt:
		y := y.(*ast.IncDecStmt)
		return x.Tok == y.Tok && m.Match(x.X, y.X)

	case *ast.AssignStmt:
		y := y.(*ast.AssignStmt)
		return x.Tok == y.Tok &&
			matchList(m, x.Lhs, y.Lhs) &&
			matchList(m, x.Rhs, y.Rhs)

	case *ast.GoStmt:
		y := y.(*ast.GoStmt)
		return m.Match(x.Call, y.Call)

	case *ast.DeferStmt:
		y := y.(*ast.DeferStmt)
		return m.Match(x.Call, y.Call)

	case *ast.ReturnStmt:
		y := y.(*ast.ReturnStmt)
		return matchList(m, x.Results, y.Results)

	case *ast.BranchStmt:
		y := y.(*ast.BranchStmt)
		return x.Tok == y.Tok && m.Match(x.Label, y.Label)

	case *ast.BlockStmt:
		y := y.(*ast.BlockStmt)
		return matchList(m, x.List, y.List)

	case *ast.IfStmt:
		y := y.(*ast.IfStmt)
		return m.Match(x.Init, y.Init) &&
			m.Match(x.Cond, y.Cond) &&
			m.Match(x.Body, y.Body) &&
			m.Match(x.Else, y.Else)

	case *ast.CaseClause:
		y := y.(*ast.CaseClause)
		return (x.List == nil) == (y.List == nil) &&
			matchList(m, x.List, y.List) &&
			matchList(m, x.Body, y.Body)

	case *ast.SwitchStmt:
		y := y.(*ast.SwitchStmt)
		return m.Match(x.Init, y.Init) &&
			m.Match(x.Tag, y.Tag) &&
			m.Match(x.Body, y.Body)

	case *ast.TypeSwitchStmt:
		y := y.(*ast.TypeSwitchStmt)
		return m.Match(x.Init, y.Init) &&
			m.Match(x.Assign, y.Assign) &&
			m.Match(x.Body, y.Body)

	case *ast.CommClause:
		y := y.(*ast.CommClause)
		return m.Match(x.Comm, y.Comm) && matchList(m, x.Body, y.Body)

	case *ast.SelectStmt:
		y := y.(*ast.SelectStmt)
		return m.Match(x.Body, y.Body)

	case *ast.ForStmt:
		y := y.(*ast.ForStmt)
		return m.Match(x.Init, y.Init) &&
			m.Match(x.Cond, y.Cond) &&
			m.Match(x.Post, y.Post) &&
			m.Match(x.Body, y.Body)

	case *ast.RangeStmt:
		y := y.(*ast.RangeStmt)
		return x.Tok == y.Tok &&
			m.Match(x.Key, y.Key) &&
			m.Match(x.Value, y.Value) &&
			m.Match(x.X, y.X) &&
			m.Match(x.Body, y.Body)

	// -=-=- Specs and declarations -=-=-

	case *ast.ImportSpec:
		y := y.(*ast.ImportSpec)
		return m.Match(x.Name, y.Name) && m.Match(x.Path, y.Path)

	case *ast.ValueSpec:
		y := y.(*ast.ValueSpec)
		return matchList(m, x.Names, y.Names) &&
			m.Match(x.Type, y.Type) &&
			matchList(m, x.Values, y.Values)

	case *ast.TypeSpec:
		y := y.(*ast.TypeSpec)
		return x.Assign.IsValid() == y.Assign.IsValid() &&
			m.Match(x.Name, y.Name) &&
			m.Match(x.TypeParams, y.TypeParams) &&
			m.Match(x.Type, y.Type)

	case *ast.GenDecl:
		y := y.(*ast.GenDecl)
		return x.Tok == y.Tok && matchList(m, x.Specs, y.Specs)

	case *ast.FuncDecl:
		y := y.(*ast.FuncDecl)
		return m.Match(x.Recv, y.Recv) &&
			m.Match(x.Name, y.Name) &&
			m.Match(x.Type, y.Type) &&
			m.Match(x.Body, y.Body)

	case *ast.File:
		y := y.(*ast.File)
		return m.Match(x.Name, y.Name) && matchList(m, x.Decls, y.Decls)
	}
}

// matchList reports whether two node lists have equal length and match
// pairwise.
func matchList[T ast.Node](m *Matcher, xs, ys []T) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !m.Match(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// isNil reports whether n is nil or a typed nil pointer, as optional child
// fields (e.g. a missing *ast.BlockStmt) arrive through the ast.Node
// interface.
func isNil(n ast.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
