// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protocol

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/godoctor/snipdoctor/engine"
	"github.com/godoctor/snipdoctor/filesystem"
	"github.com/godoctor/snipdoctor/refactoring"
	"github.com/godoctor/snipdoctor/text"
)

const aboutText = engine.Name + " finds duplicated Go code and refactors it"

// -=-= About =-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-

func (s *Server) handleAbout(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(map[string]string{"reply": "OK", "text": aboutText, "version": Version})
}

// -=-= List =-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-

type listParams struct {
	Quality string `json:"quality"`
}

type transformation struct {
	ShortName string `json:"shortName"`
	Name      string `json:"name"`
	Synopsis  string `json:"synopsis"`
	Multifile bool   `json:"multifile"`
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params listParams
	if err := decode(req, &params); err != nil {
		return errorResult("%s", err), nil
	}
	var minQuality refactoring.Quality
	switch params.Quality {
	case "in_development":
		minQuality = refactoring.Development
	case "", "in_testing":
		minQuality = refactoring.Testing
	case "production":
		minQuality = refactoring.Production
	default:
		return errorResult("quality must be \"in_development\", \"in_testing\", or \"production\""), nil
	}

	transformations := []transformation{}
	for _, shortName := range engine.AllRefactoringNames() {
		desc := engine.GetRefactoring(shortName).Description()
		if desc.Hidden || desc.Quality < minQuality {
			continue
		}
		transformations = append(transformations, transformation{
			ShortName: shortName,
			Name:      desc.Name,
			Synopsis:  desc.Synopsis,
			Multifile: desc.Multifile,
		})
	}
	return textResult(map[string]any{"reply": "OK", "transformations": transformations})
}

// -=-= Params =-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-

type paramsParams struct {
	Transformation string `json:"transformation"`
}

type param struct {
	Label   string `json:"label"`
	Prompt  string `json:"prompt"`
	Type    string `json:"type"`
	Default any    `json:"default"`
}

func (s *Server) handleParams(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p paramsParams
	if err := decode(req, &p); err != nil {
		return errorResult("%s", err), nil
	}
	refac := engine.GetRefactoring(p.Transformation)
	if refac == nil {
		return errorResult("%s", unknownRefactoring(p.Transformation)), nil
	}
	params := []param{}
	for _, prm := range refac.Description().Params {
		params = append(params, param{
			Label:   prm.Label,
			Prompt:  prm.Prompt,
			Type:    reflect.TypeOf(prm.DefaultValue).String(),
			Default: prm.DefaultValue,
		})
	}
	return textResult(map[string]any{"reply": "OK", "params": params})
}

func unknownRefactoring(name string) string {
	msg := fmt.Sprintf("there is no refactoring named %q", name)
	if closest := engine.ClosestRefactoringName(name); closest != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", closest)
	}
	return msg
}

// -=-= XRun =-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-

type xrunParams struct {
	Transformation string          `json:"transformation"`
	TextSelection  selectionParams `json:"textselection"`
	Arguments      []any           `json:"arguments"`
	Scope          []string        `json:"scope"`
	Content        *string         `json:"content"`
	Mode           string          `json:"mode"`
}

// selectionParams is either an offset/length or a line/column selection.
type selectionParams struct {
	Filename  string `json:"filename"`
	Offset    *int   `json:"offset"`
	Length    *int   `json:"length"`
	StartLine int    `json:"startline"`
	StartCol  int    `json:"startcol"`
	EndLine   int    `json:"endline"`
	EndCol    int    `json:"endcol"`
}

type xrunReply struct {
	Reply       string               `json:"reply"`
	Description string               `json:"description"`
	Log         []*refactoring.Entry `json:"log"`
	Files       []fileChange         `json:"files"`
}

type fileChange struct {
	Filename string `json:"filename"`
	Patch    string `json:"patch,omitempty"`
	Content  string `json:"content,omitempty"`
}

func (s *Server) handleXRun(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p xrunParams
	if err := decode(req, &p); err != nil {
		return errorResult("%s", err), nil
	}
	refac := engine.GetRefactoring(p.Transformation)
	if refac == nil {
		return errorResult("%s", unknownRefactoring(p.Transformation)), nil
	}
	switch p.Mode {
	case "":
		p.Mode = "patch"
	case "patch", "text":
	default:
		return errorResult("mode must be \"patch\" or \"text\""), nil
	}
	selection, err := parseSelection(p.TextSelection)
	if err != nil {
		return errorResult("%s", err), nil
	}

	var fs filesystem.FileSystem = filesystem.NewLocalFileSystem()
	if p.Content != nil {
		fs, err = filesystem.NewSingleEditedFileSystem(selection.GetFilename(), *p.Content)
		if err != nil {
			return errorResult("%s", err), nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := refac.Run(&refactoring.Config{
		FileSystem: fs,
		Scope:      p.Scope,
		Selection:  selection,
		Args:       interpretArgs(p.Arguments, refac.Description().Params),
		Cache:      s.cache,
	})

	files, err := changes(result.Edits, fs, p.Mode)
	if err != nil {
		return errorResult("%s", err), nil
	}
	return textResult(&xrunReply{
		Reply:       "OK",
		Description: refac.Description().Name,
		Log:         result.Log.Entries,
		Files:       files,
	})
}

// parseSelection converts a selection given either as an offset and length
// or as start and end lines and columns.
func parseSelection(sel selectionParams) (text.Selection, error) {
	if sel.Filename == "" {
		return nil, fmt.Errorf("textselection: filename is required")
	}
	filename, err := filepath.Abs(sel.Filename)
	if err != nil {
		return nil, err
	}
	if sel.Offset != nil || sel.Length != nil {
		if sel.Offset == nil || sel.Length == nil {
			return nil, fmt.Errorf("textselection: offset and length must be given together")
		}
		return text.NewSelection(filename, fmt.Sprintf("%d,%d", *sel.Offset, *sel.Length))
	}
	return text.NewSelection(filename, fmt.Sprintf("%d,%d:%d,%d",
		sel.StartLine, sel.StartCol, sel.EndLine, sel.EndCol))
}

// interpretArgs converts JSON arguments to the types the parameters expect.
// Strings are interpreted as on the command line, so "true" is accepted for
// a boolean parameter.
func interpretArgs(args []any, params []refactoring.Parameter) []interface{} {
	result := make([]interface{}, len(args))
	for i, arg := range args {
		if s, ok := arg.(string); ok && i < len(params) {
			result[i] = refactoring.InterpretArgs([]string{s}, params[i:i+1])[0]
		} else {
			result[i] = arg
		}
	}
	return result
}

// changes describes the effect of the edits on each file that they change,
// as a patch or as the file's new contents.
func changes(edits map[string]*text.EditSet, fs filesystem.FileSystem, mode string) ([]fileChange, error) {
	filenames := make([]string, 0, len(edits))
	for f, es := range edits {
		if es.Len() > 0 {
			filenames = append(filenames, f)
		}
	}
	sort.Strings(filenames)

	result := []fileChange{}
	for _, f := range filenames {
		if mode == "text" {
			data, err := filesystem.ApplyEdits(edits[f], fs, f)
			if err != nil {
				return nil, err
			}
			result = append(result, fileChange{Filename: f, Content: string(data)})
			continue
		}
		p, err := filesystem.CreatePatch(edits[f], fs, f)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := p.Write(f, f, time.Time{}, time.Time{}, &buf); err != nil {
			return nil, err
		}
		result = append(result, fileChange{Filename: f, Patch: buf.String()})
	}
	return result, nil
}
