// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protocol

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package main

import "fmt"

func main() {
	a, b := 3, 4
	fmt.Println(a * b)
	fmt.Println(a*b + 1)
}
`

const extracted = `package main

import "fmt"

func main() {
	a, b := 3, 4
	prod := a * b
	fmt.Println(prod)
	fmt.Println(prod + 1)
}
`

// connect returns a client session connected to a new server.
func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := NewServer().MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		cs.Close()
		ss.Wait()
	})
	return cs
}

// call invokes a tool and decodes its JSON reply into reply.  It returns
// whether the tool reported an error, and the text of its result.
func call(t *testing.T, cs *mcp.ClientSession, tool string, args map[string]any, reply any) (bool, string) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: tool, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	content, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	if !res.IsError && reply != nil {
		require.NoError(t, json.Unmarshal([]byte(content.Text), reply))
	}
	return res.IsError, content.Text
}

// writeModule writes a module containing main.go with the given contents and
// returns the path of main.go.
func writeModule(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/test\n\ngo 1.21\n"), 0o644))
	filename := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0o644))
	return filename
}

func TestAbout(t *testing.T) {
	cs := connect(t)
	var reply map[string]string
	isError, _ := call(t, cs, "about", nil, &reply)
	assert.False(t, isError)
	assert.Equal(t, "OK", reply["reply"])
	assert.Equal(t, aboutText, reply["text"])
}

func TestList(t *testing.T) {
	cs := connect(t)

	var reply struct {
		Reply           string           `json:"reply"`
		Transformations []transformation `json:"transformations"`
	}
	isError, _ := call(t, cs, "list", map[string]any{"quality": "in_development"}, &reply)
	require.False(t, isError)
	var names []string
	for _, tr := range reply.Transformations {
		names = append(names, tr.ShortName)
	}
	assert.Equal(t, []string{"dups", "extractlocal", "inline"}, names)

	isError, msg := call(t, cs, "list", map[string]any{"quality": "excellent"}, nil)
	assert.True(t, isError)
	assert.Contains(t, msg, "quality must be")
}

func TestParams(t *testing.T) {
	cs := connect(t)

	var reply struct {
		Params []param `json:"params"`
	}
	isError, _ := call(t, cs, "params", map[string]any{"transformation": "extractlocal"}, &reply)
	require.False(t, isError)
	require.Len(t, reply.Params, 2)
	assert.Equal(t, "string", reply.Params[0].Type)
	assert.Equal(t, "bool", reply.Params[1].Type)
	assert.Equal(t, false, reply.Params[1].Default)

	isError, msg := call(t, cs, "params", map[string]any{"transformation": "inlin"}, nil)
	assert.True(t, isError)
	assert.Contains(t, msg, `did you mean "inline"?`)
}

func TestXRunText(t *testing.T) {
	cs := connect(t)
	filename := writeModule(t, source)

	var reply xrunReply
	isError, msg := call(t, cs, "xrun", map[string]any{
		"transformation": "extractlocal",
		"textselection": map[string]any{
			"filename": filename, "startline": 7, "startcol": 14, "endline": 7, "endcol": 19,
		},
		"arguments": []any{"prod", "true"},
		"mode":      "text",
	}, &reply)
	require.False(t, isError, msg)
	for _, entry := range reply.Log {
		assert.NotEqual(t, "error", entry.Severity.String(), entry.Message)
	}
	require.Len(t, reply.Files, 1)
	assert.Equal(t, filename, reply.Files[0].Filename)
	assert.Equal(t, extracted, reply.Files[0].Content)

	// the file on disk is unchanged
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, source, string(data))
}

func TestXRunPatchWithContent(t *testing.T) {
	cs := connect(t)
	filename := writeModule(t, "package main\n")

	var reply xrunReply
	isError, msg := call(t, cs, "xrun", map[string]any{
		"transformation": "extractlocal",
		"textselection": map[string]any{
			"filename": filename, "startline": 7, "startcol": 14, "endline": 7, "endcol": 19,
		},
		"arguments": []any{"prod", false},
		"content":   source,
	}, &reply)
	require.False(t, isError, msg)
	require.Len(t, reply.Files, 1)
	assert.Contains(t, reply.Files[0].Patch, "+\tprod := a * b\n")
	assert.Contains(t, reply.Files[0].Patch, "+\tfmt.Println(prod)\n")
	assert.Contains(t, reply.Files[0].Patch, " \tfmt.Println(a*b + 1)\n")
}

func TestXRunErrors(t *testing.T) {
	cs := connect(t)
	filename := writeModule(t, source)

	isError, msg := call(t, cs, "xrun", map[string]any{
		"transformation": "extractlocal",
		"textselection":  map[string]any{"filename": filename, "offset": 10},
		"arguments":      []any{"prod", false},
	}, nil)
	assert.True(t, isError)
	assert.Contains(t, msg, "offset and length must be given together")

	// a refactoring error is a successful call whose log contains the error
	var reply xrunReply
	isError, msg = call(t, cs, "xrun", map[string]any{
		"transformation": "extractlocal",
		"textselection": map[string]any{
			"filename": filename, "startline": 7, "startcol": 14, "endline": 7, "endcol": 19,
		},
		"arguments": []any{"a", false},
	}, &reply)
	require.False(t, isError, msg)
	assert.Empty(t, reply.Files)
	found := false
	for _, entry := range reply.Log {
		if entry.Severity.String() == "error" {
			found = true
		}
	}
	assert.True(t, found, "expected an error in the log")
}
