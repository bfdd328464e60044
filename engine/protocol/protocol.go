// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package protocol serves the refactoring engine to text editors and other
// clients as a set of Model Context Protocol tools: about, list, params, and
// xrun.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/godoctor/snipdoctor/analysis/loader"
	"github.com/godoctor/snipdoctor/engine"
)

// Version is reported to clients when a session is initialized.
const Version = "0.1.0"

// The number of loaded programs kept between requests
const cachedPrograms = 8

// A Server answers tool calls.  Programs loaded by xrun are cached, so
// repeated refactorings of an unchanged package do not reload it.
type Server struct {
	server *mcp.Server
	cache  *loader.Cache
}

// NewServer returns a server with every tool registered.
func NewServer() *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    engine.Name,
			Version: Version,
		}, nil),
		cache: loader.NewCache(cachedPrograms),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server, e.g. to connect it to a transport
// other than standard input and output.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Serve serves the tools over in and out until the client disconnects or ctx
// is canceled.
func Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	var t mcp.Transport
	if in == io.Reader(os.Stdin) && out == io.Writer(os.Stdout) {
		t = &mcp.StdioTransport{}
	} else {
		t = &mcp.IOTransport{Reader: io.NopCloser(in), Writer: nopWriteCloser{out}}
	}
	return NewServer().server.Run(ctx, t)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "about",
		Description: "Describe this refactoring engine",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleAbout)

	s.server.AddTool(&mcp.Tool{
		Name:        "list",
		Description: "List the available refactorings",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"quality": {
					Type:        "string",
					Description: "Least quality of refactorings to list",
					Enum:        []any{"in_development", "in_testing", "production"},
				},
			},
		},
	}, s.handleList)

	s.server.AddTool(&mcp.Tool{
		Name:        "params",
		Description: "Describe the arguments a refactoring requires",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"transformation": {
					Type:        "string",
					Description: "Short name of the refactoring, as returned by list",
				},
			},
			Required: []string{"transformation"},
		},
	}, s.handleParams)

	s.server.AddTool(&mcp.Tool{
		Name:        "xrun",
		Description: "Run a refactoring on a text selection and return its log and the changes it makes",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"transformation": {
					Type:        "string",
					Description: "Short name of the refactoring, as returned by list",
				},
				"textselection": {
					Type:        "object",
					Description: "The selection: filename with either offset and length or startline, startcol, endline, and endcol (1-based, end exclusive)",
					Properties: map[string]*jsonschema.Schema{
						"filename":  {Type: "string"},
						"offset":    {Type: "integer"},
						"length":    {Type: "integer"},
						"startline": {Type: "integer"},
						"startcol":  {Type: "integer"},
						"endline":   {Type: "integer"},
						"endcol":    {Type: "integer"},
					},
					Required: []string{"filename"},
				},
				"arguments": {
					Type:        "array",
					Description: "Arguments of the refactoring, in the order given by params",
				},
				"scope": {
					Type:        "array",
					Description: "Package patterns to load (default: the selected file's package)",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"content": {
					Type:        "string",
					Description: "Unsaved contents of the selected file, used instead of the file on disk",
				},
				"mode": {
					Type:        "string",
					Description: "patch (default) returns unified diffs; text returns complete file contents",
					Enum:        []any{"patch", "text"},
				},
			},
			Required: []string{"transformation", "textselection"},
		},
	}, s.handleXRun)
}

// textResult returns v, encoded as JSON, as the result of a tool call.
func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding reply: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// errorResult reports a request the tool could not carry out.
func errorResult(format string, v ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, v...)}},
	}
}

// decode unmarshals a tool's arguments into params.
func decode(req *mcp.CallToolRequest, params any) error {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, params); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
