// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "auto", s.Color)
	assert.Equal(t, 1, s.MinStatements)
	assert.Equal(t, runtime.GOMAXPROCS(0), s.Parallelism())
	assert.NoError(t, s.Validate())
	assert.False(t, s.Excluded("a.go"))
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`
exclude = ["**/*_test.go", "gen/**"]
max_parallel = 3
color = "never"
min_statements = 2
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*_test.go", "gen/**"}, s.Exclude)
	assert.Equal(t, 3, s.Parallelism())
	assert.Equal(t, "never", s.Color)
	assert.Equal(t, 2, s.MinStatements)

	// absent keys keep their defaults
	s, err = Parse([]byte(`color = "always"`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.MinStatements)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		`colour = "never"`,
		`color = "sometimes"`,
		`min_statements = 0`,
		`max_parallel = -1`,
		`exclude = ["[a-"]`,
		`color = `,
	} {
		_, err := Parse([]byte(src))
		assert.Error(t, err, src)
	}
	_, err := Parse([]byte(`colour = "never"`))
	assert.ErrorContains(t, err, "unknown setting")
}

func TestLoadNearest(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	s, err := LoadNearest(sub)
	require.NoError(t, err)
	assert.Equal(t, "", s.Dir)

	path := filepath.Join(root, Filename)
	require.NoError(t, os.WriteFile(path, []byte(`exclude = ["gen/**", "*_test.go"]`), 0644))
	found, err := Find(sub)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	s, err = LoadNearest(sub)
	require.NoError(t, err)
	assert.Equal(t, root, s.Dir)
	assert.True(t, s.Excluded(filepath.Join(root, "gen", "x", "y.go")))
	assert.True(t, s.Excluded(filepath.Join(root, "a", "p_test.go")))
	assert.False(t, s.Excluded(filepath.Join(root, "a", "p.go")))

	require.NoError(t, os.WriteFile(path, []byte(`bogus = 1`), 0644))
	_, err = LoadNearest(sub)
	assert.ErrorContains(t, err, Filename)
}
