// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package text

import (
	"bytes"
	"go/token"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatch(t *testing.T) {
	input := "a\nb\nc\nd\n"
	es := NewEditSet()
	require.NoError(t, es.Add(Extent{2, 1}, "B"))

	p, err := es.CreatePatch(strings.NewReader(input))
	require.NoError(t, err)
	assert.False(t, p.IsEmpty())

	var buf bytes.Buffer
	require.NoError(t, p.Write("x.go", "x.go", time.Time{}, time.Time{}, &buf))
	assert.Equal(t, `--- x.go
+++ x.go
@@ -1,4 +1,4 @@
 a
-b
+B
 c
 d
`, buf.String())
}

func TestEmptyPatch(t *testing.T) {
	p, err := NewEditSet().CreatePatch(strings.NewReader("abc\n"))
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	var buf bytes.Buffer
	require.NoError(t, p.Write("a", "b", time.Time{}, time.Time{}, &buf))
	assert.Empty(t, buf.String())
}

func TestSelections(t *testing.T) {
	src := "package main\n\nfunc main() {\n}\n"
	fset := token.NewFileSet()
	f := fset.AddFile("/tmp/zz_sel.go", -1, len(src))
	f.SetLinesForContent([]byte(src))

	lc := &LineColSelection{Filename: "/tmp/zz_sel.go",
		StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 5}
	start, end, err := lc.Convert(fset)
	require.NoError(t, err)
	assert.Equal(t, 14, f.Offset(start))
	assert.Equal(t, 18, f.Offset(end))

	lc.EndCol = 40
	_, _, err = lc.Convert(fset)
	assert.Error(t, err)

	ol := &OffsetLengthSelection{Filename: "/tmp/zz_sel.go", Offset: 14, Length: 4}
	start, end, err = ol.Convert(fset)
	require.NoError(t, err)
	assert.Equal(t, 14, f.Offset(start))
	assert.Equal(t, 18, f.Offset(end))

	missing := &OffsetLengthSelection{Filename: "/tmp/zz_other.go"}
	_, _, err = missing.Convert(fset)
	assert.Error(t, err)
}

func TestNewSelection(t *testing.T) {
	sel, err := NewSelection("/tmp/zz_sel.go", "3,1:3,5")
	require.NoError(t, err)
	assert.Equal(t, &LineColSelection{Filename: "/tmp/zz_sel.go",
		StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 5}, sel)

	sel, err = NewSelection("/tmp/zz_sel.go", "14,4")
	require.NoError(t, err)
	assert.Equal(t, &OffsetLengthSelection{Filename: "/tmp/zz_sel.go",
		Offset: 14, Length: 4}, sel)

	for _, bad := range []string{"", "1", "1,x", "0,1:1,1", "1,1:2", "1,1:1,1:1,1"} {
		_, err := NewSelection("/tmp/zz_sel.go", bad)
		assert.Error(t, err, bad)
	}
}
