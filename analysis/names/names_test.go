// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package names

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ast/astutil"
)

const src = `package p

var global int

type T struct{ f int }

func f(param int) (result int) {
	local := param + global
	var t T
	t.f = local
	for i := range 3 {
		local += i
	}
	switch v := any(t).(type) {
	case T:
		_ = v
	}
	{
		inner := 2
		_ = inner
	}
	p := &local
	_ = p
	return t.f
}
`

type testPkg struct {
	fset *token.FileSet
	file *ast.File
	pkg  *types.Package
	info *types.Info
}

func setup(t *testing.T) *testPkg {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", src, 0)
	require.NoError(t, err)
	info := &types.Info{
		Defs:      map[*ast.Ident]types.Object{},
		Uses:      map[*ast.Ident]types.Object{},
		Implicits: map[ast.Node]types.Object{},
		Scopes:    map[ast.Node]*types.Scope{},
	}
	var conf types.Config
	pkg, err := conf.Check("p", fset, []*ast.File{file}, info)
	require.NoError(t, err)
	return &testPkg{fset, file, pkg, info}
}

// lookup returns the object defined by the first identifier named name.
func (p *testPkg) lookup(t *testing.T, name string) types.Object {
	t.Helper()
	id := p.firstIdent(t, name)
	obj := p.info.Defs[id]
	require.NotNil(t, obj, name)
	return obj
}

func (p *testPkg) firstIdent(t *testing.T, name string) *ast.Ident {
	t.Helper()
	var result *ast.Ident
	ast.Inspect(p.file, func(n ast.Node) bool {
		if n == p.file.Name {
			return false
		}
		if id, ok := n.(*ast.Ident); ok && id.Name == name && result == nil {
			result = id
		}
		return result == nil
	})
	require.NotNil(t, result, name)
	return result
}

func (p *testPkg) lines(ids []*ast.Ident) []int {
	var result []int
	for _, id := range ids {
		result = append(result, p.fset.Position(id.Pos()).Line)
	}
	return result
}

func TestIsLocal(t *testing.T) {
	p := setup(t)
	for _, name := range []string{"param", "result", "local", "t", "i", "inner"} {
		assert.True(t, IsLocal(p.lookup(t, name)), name)
	}
	assert.False(t, IsLocal(p.lookup(t, "global")))
	assert.False(t, IsLocal(p.lookup(t, "T")))
	assert.False(t, IsLocal(p.pkg.Scope().Lookup("f")))

	field, _, _ := types.LookupFieldOrMethod(p.lookup(t, "T").Type(), false, p.pkg, "f")
	require.NotNil(t, field)
	assert.False(t, IsLocal(field))
	assert.False(t, IsLocal(nil))
}

func TestFindOccurrences(t *testing.T) {
	p := setup(t)
	assert.Equal(t, []int{8, 10, 12, 22}, p.lines(FindOccurrences(p.lookup(t, "local"), p.info)))
	assert.Equal(t, []int{3, 8}, p.lines(FindOccurrences(p.lookup(t, "global"), p.info)))
	assert.Equal(t, []int{7, 8}, p.lines(FindOccurrences(p.lookup(t, "param"), p.info)))
	assert.Empty(t, FindOccurrences(p.lookup(t, "result"), p.info)[1:])
}

func TestLookupAt(t *testing.T) {
	p := setup(t)
	inner := p.lookup(t, "inner")
	use := FindOccurrences(inner, p.info)[1]
	assert.Same(t, inner, LookupAt(p.pkg, "inner", use.Pos()))
	assert.Same(t, p.lookup(t, "local"), LookupAt(p.pkg, "local", use.Pos()))
	// not yet in scope at its own declaration, nor after its block
	assert.Nil(t, LookupAt(p.pkg, "inner", inner.Pos()))
	assert.Nil(t, LookupAt(p.pkg, "inner", p.lookup(t, "p").Pos()))
	assert.Same(t, p.lookup(t, "global"), LookupAt(p.pkg, "global", p.file.Pos()))
}

func TestFindConflict(t *testing.T) {
	p := setup(t)
	fn := p.file.Decls[2].(*ast.FuncDecl)
	scope := p.info.Scopes[fn.Type]
	require.NotNil(t, scope)

	assert.Same(t, p.lookup(t, "local"), FindConflict(scope, "local", p.info))
	assert.Same(t, p.lookup(t, "inner"), FindConflict(scope, "inner", p.info), "nested")
	assert.Same(t, p.lookup(t, "global"), FindConflict(scope, "global", p.info), "shadowed")
	assert.Nil(t, FindConflict(scope, "fresh", p.info))

	// the inner block's scope sees neither local nor inner as shadowed
	block := fn.Body.List[5].(*ast.BlockStmt)
	blockScope := p.info.Scopes[block]
	require.NotNil(t, blockScope)
	assert.Nil(t, FindConflict(blockScope, "local", p.info))
	assert.NotNil(t, FindConflict(blockScope, "inner", p.info))
}

func TestIsLvalue(t *testing.T) {
	p := setup(t)
	var writes, reads []int
	for _, id := range FindOccurrences(p.lookup(t, "local"), p.info) {
		path, _ := astutil.PathEnclosingInterval(p.file, id.Pos(), id.End())
		if IsLvalue(path) {
			writes = append(writes, p.fset.Position(id.Pos()).Line)
		} else {
			reads = append(reads, p.fset.Position(id.Pos()).Line)
		}
	}
	assert.Equal(t, []int{8, 12, 22}, writes)
	assert.Equal(t, []int{10}, reads)
	assert.False(t, IsLvalue(nil))
}
