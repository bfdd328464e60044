// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataflow

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveSrc = `package p

func loop(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		print(v)
		v = i
		w := i
		print(w)
	}
	return 0
}

func straight(a int) int {
	b := a
	b = 2
	return b
}

func named(x int) (r int) {
	r = x
	if x > 0 {
		return
	}
	return 1
}

func closure() int {
	x := 0
	f := func() int { return x }
	x = 1
	return f()
}

func expr(a, b int) int {
	c := b*a + a
	return c
}

func fails(a int) int {
	a = 2
	panic(a)
}
`

func liveSetup(t *testing.T) (map[string]*ast.FuncDecl, *types.Info) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "live.go", liveSrc, 0)
	require.NoError(t, err)
	info := &types.Info{
		Defs:      map[*ast.Ident]types.Object{},
		Uses:      map[*ast.Ident]types.Object{},
		Implicits: map[ast.Node]types.Object{},
	}
	var conf types.Config
	_, err = conf.Check("p", fset, []*ast.File{file}, info)
	require.NoError(t, err)

	funcs := map[string]*ast.FuncDecl{}
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			funcs[fn.Name.Name] = fn
		}
	}
	return funcs, info
}

func liveAfterNode(fn *ast.FuncDecl, n ast.Node, info *types.Info) []string {
	return sortedNames(LiveAfter(fn, n.Pos(), n.End(), info, NewIndex()))
}

func TestLiveAfterLoopBackEdge(t *testing.T) {
	funcs, info := liveSetup(t)
	fn := funcs["loop"]
	body := fn.Body.List[1].(*ast.ForStmt).Body

	// v is read on the next iteration, before the end of the loop body.
	assign := body.List[1]
	assert.Equal(t, []string{"i", "n", "v"}, liveAfterNode(fn, assign, info))
	assert.NotContains(t, sortedNames(UsedAfter(fn, assign.End(), info, NewIndex())), "v")

	// Nothing is read once the loop is done.
	assert.Empty(t, liveAfterNode(fn, fn.Body.List[1], info))
}

func TestLiveAfterRedefinition(t *testing.T) {
	funcs, info := liveSetup(t)
	fn := funcs["straight"]

	assert.Empty(t, liveAfterNode(fn, fn.Body.List[0], info))
	assert.Equal(t, []string{"b"}, liveAfterNode(fn, fn.Body.List[1], info))
}

func TestLiveAfterNamedResults(t *testing.T) {
	funcs, info := liveSetup(t)
	fn := funcs["named"]

	assert.Contains(t, liveAfterNode(fn, fn.Body.List[0], info), "r")
}

func TestLiveAfterClosure(t *testing.T) {
	funcs, info := liveSetup(t)
	fn := funcs["closure"]

	assert.Contains(t, liveAfterNode(fn, fn.Body.List[2], info), "x")
}

func TestLiveAfterExpression(t *testing.T) {
	funcs, info := liveSetup(t)
	fn := funcs["expr"]
	sum := fn.Body.List[0].(*ast.AssignStmt).Rhs[0].(*ast.BinaryExpr)

	assert.Equal(t, []string{"a", "c"}, liveAfterNode(fn, sum.X, info))
}

func TestLiveAfterPanic(t *testing.T) {
	funcs, info := liveSetup(t)
	fn := funcs["fails"]

	assert.Equal(t, []string{"a"}, liveAfterNode(fn, fn.Body.List[0], info))
	assert.Empty(t, liveAfterNode(fn, fn.Body.List[1], info))
}
