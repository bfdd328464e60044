// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package names

import (
	"go/ast"
	"go/token"
)

// IsLvalue reports whether the expression path[0] is written or has its
// address taken: it is the target of an assignment, the operand of ++ or --,
// the operand of &, or an iteration variable assigned by a range clause.
// path is the node's path to the root as returned by
// astutil.PathEnclosingInterval; enclosing parentheses are looked through.
func IsLvalue(path []ast.Node) bool {
	if len(path) == 0 {
		return false
	}
	node, i := path[0], 1
	for i < len(path) {
		if _, ok := path[i].(*ast.ParenExpr); !ok {
			break
		}
		node = path[i]
		i++
	}
	if i >= len(path) {
		return false
	}

	switch parent := path[i].(type) {
	case *ast.AssignStmt:
		for _, lhs := range parent.Lhs {
			if lhs == node {
				return true
			}
		}
	case *ast.IncDecStmt:
		return parent.X == node
	case *ast.UnaryExpr:
		return parent.Op == token.AND && parent.X == node
	case *ast.RangeStmt:
		return parent.Tok == token.ASSIGN && (parent.Key == node || parent.Value == node)
	}
	return false
}
