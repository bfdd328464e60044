// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataflow determines which local variables a span of code defines
// and uses.  The refactorings use it to decide whether a span can be replaced
// or moved without changing which values reach later code.
package dataflow

// This file contains the syntactic def/use analysis.  Sets of variables are
// in varset.go.

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/godoctor/snipdoctor/analysis/names"
)

// ReferencedVars returns the sets of local variables that are defined or
// used within the given nodes (based on syntax).  A variable is defined if it
// is declared or assigned; it is used if its value is read.  An operand of a
// compound assignment or of ++/-- is both.
func ReferencedVars(nodes []ast.Node, info *types.Info, index *Index) (def, use VarSet) {
	def, use = index.NewSet(), index.NewSet()
	for _, n := range nodes {
		refs(n, info, func(v *types.Var, _ ast.Node, isDef bool) {
			if isDef {
				def.Add(v)
			} else {
				use.Add(v)
			}
		})
	}
	return def, use
}

// UsedAfter returns the set of local variables whose values are read within
// scope at or after the given position.
func UsedAfter(scope ast.Node, pos token.Pos, info *types.Info, index *Index) VarSet {
	use := index.NewSet()
	refs(scope, info, func(v *types.Var, n ast.Node, isDef bool) {
		if !isDef && n.Pos() >= pos {
			use.Add(v)
		}
	})
	return use
}

// refs calls f for each definition and use of a local variable in n.  The
// node passed to f is the defining or using identifier, or the case clause
// declaring a type switch variable.
func refs(n ast.Node, info *types.Info, f func(v *types.Var, at ast.Node, isDef bool)) {
	writes := map[*ast.Ident]bool{} // identifiers that are written, not read
	ast.Inspect(n, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignStmt:
			for _, lhs := range n.Lhs {
				id, ok := ast.Unparen(lhs).(*ast.Ident)
				if !ok {
					continue // x[i] = ..., p.f = ...: uses of x and p
				}
				if n.Tok == token.ASSIGN || n.Tok == token.DEFINE {
					writes[id] = true
				}
				if v := localVar(info, id); v != nil {
					f(v, id, true)
				}
			}

		case *ast.IncDecStmt:
			if id, ok := ast.Unparen(n.X).(*ast.Ident); ok {
				if v := localVar(info, id); v != nil {
					f(v, id, true)
				}
			}

		case *ast.RangeStmt:
			for _, e := range []ast.Expr{n.Key, n.Value} {
				if id, ok := e.(*ast.Ident); ok {
					writes[id] = true
					if v := localVar(info, id); v != nil {
						f(v, id, true)
					}
				}
			}

		case *ast.CaseClause:
			// The variable of "switch v := x.(type)" is declared
			// implicitly once per clause.
			if v, ok := info.Implicits[n].(*types.Var); ok {
				f(v, n, true)
			}

		case *ast.Ident:
			v := localVar(info, n)
			if v == nil {
				break
			}
			if _, isDef := info.Defs[n]; isDef {
				f(v, n, true)
			} else if !writes[n] {
				f(v, n, false)
			}
		}
		return true
	})
}

func localVar(info *types.Info, id *ast.Ident) *types.Var {
	if v, ok := info.ObjectOf(id).(*types.Var); ok && names.IsLocal(v) {
		return v
	}
	return nil
}
