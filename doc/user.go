// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package doc

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/godoctor/snipdoctor/engine"
)

// Manual outputs the User's Guide in Markdown.
func Manual(out io.Writer, options []Option) error {
	tmpl := template.Must(template.New("userGuide").Parse(userGuide))
	if err := tmpl.Execute(out, prepare(options)); err != nil {
		return fmt.Errorf("generating manual: %w", err)
	}
	return nil
}

// RenderHTML outputs the User's Guide as a standalone HTML page.
func RenderHTML(out io.Writer, options []Option) error {
	var src bytes.Buffer
	if err := Manual(&src, options); err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering manual: %w", err)
	}
	_, err := fmt.Fprintf(out, htmlPage, html.EscapeString(engine.Name), body.String())
	return err
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>%s User's Guide</title>
  <style>
  body { font-family: Arial, sans-serif; max-width: 50em; margin: auto; }
  code, pre { background-color: #f0f0f0; }
  table { border-collapse: collapse; }
  td, th { border: 1px solid #c0c0c0; padding: 2px 6px; text-align: left; }
  </style>
</head>
<body>
%s</body>
</html>
`

const userGuide = `# {{.Name}} User's Guide

{{.Name}} finds code that duplicates a selected snippet and performs the small
refactorings used to remove duplication.  Two pieces of code are duplicates
when they have the same structure and refer to the same declarations, except
that local variables may be renamed consistently: {{.Name}} matches
` + "`total += x`" + ` with ` + "`sum += y`" + `, but not with ` + "`sum += sum`" + `.

## Usage

    {{.Name}} [<flag> ...] <refactoring> [<args> ...]

The selection is given by ` + "`--pos`" + `, either as
` + "`line,col:line,col`" + ` (1-based; the end is just past the last selected
character) or as ` + "`offset,length`" + `.  Without ` + "`--file`" + `, source
code is read from standard input.

By default, {{.Name}} prints a unified diff of the changes; ` + "`-w`" + `
writes them to disk and ` + "`--complete`" + ` prints every changed file.
Informational messages, warnings, and errors are printed to standard error.

## Flags

| Flag | Description |
|---|---|
{{range .Options}}| ` + "`{{.Flag}}`" + ` | {{.Usage}} |
{{end}}
## Refactorings
{{range .Refactorings}}
### {{.Description.Name}}

{{.Description.Synopsis}}.

    {{$.Name}} --file FILE --pos POS {{.Key}} {{.Description.Usage}}
{{with .Description.Params}}
{{range .}}* **{{.Label}}** (default ` + "`{{.DefaultValue}}`" + `): {{.Prompt}}
{{end}}{{end}}
Status: {{.Description.Quality}}.
{{end}}
## Settings

Settings are read from the nearest ` + "`.snipdoctor.toml`" + ` in the directory
of the selected file or one of its parents, or from the file named by
` + "`--config`" + `.

    # files never searched for duplicates (doublestar patterns)
    exclude = ["**/*_test.go", "internal/generated/**"]
    # number of files searched at once (0: one per CPU)
    max_parallel = 4
    # auto, always, or never
    color = "auto"
    # shortest statement sequence searched for duplicates
    min_statements = 1

## Editor integration

` + "`{{.Name}} --mcp`" + ` serves the refactorings as Model Context Protocol
tools on standard input and output: ` + "`list`" + ` describes every
refactoring, ` + "`params`" + ` describes one, and ` + "`xrun`" + ` runs one
and returns its log and changes.

## Exit status

| Status | Meaning |
|---|---|
| 0 | Success |
| 1 | One or more command line arguments were invalid |
| 2 | Help/usage information was displayed; no commands were executed |
| 3 | The refactoring could not be completed; the log describes why |
`
