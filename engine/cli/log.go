// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/godoctor/snipdoctor/config"
	"github.com/godoctor/snipdoctor/filesystem"
	"github.com/godoctor/snipdoctor/refactoring"
	"github.com/godoctor/snipdoctor/text"
)

// A logPrinter writes log entries in GNU style,
// 'file:line.col-line.col: severity: message', coloring them by severity.
type logPrinter struct {
	out   io.Writer
	fs    filesystem.FileSystem
	lines map[string][]int // line start offsets, by absolute path

	fileStyle    *color.Color
	warningStyle *color.Color
	errorStyle   *color.Color
}

func newLogPrinter(out io.Writer, colored bool, fs filesystem.FileSystem) *logPrinter {
	p := &logPrinter{
		out:          out,
		fs:           fs,
		lines:        map[string][]int{},
		fileStyle:    color.New(color.FgCyan, color.Bold),
		warningStyle: color.New(color.FgYellow, color.Bold),
		errorStyle:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.fileStyle, p.warningStyle, p.errorStyle} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// colorEnabled decides whether the log is colored: never with --no-color,
// otherwise as the settings say, where "auto" colors only terminals.
func colorEnabled(noColor bool, settings *config.Settings) bool {
	if noColor {
		return false
	}
	switch settings.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return !color.NoColor
	}
}

func (p *logPrinter) print(log *refactoring.Log) {
	for _, entry := range log.Entries {
		p.printEntry(entry)
	}
}

func (p *logPrinter) printEntry(entry *refactoring.Entry) {
	if entry.Filename != "" {
		p.fileStyle.Fprintf(p.out, "%s:%s: ", entry.Filename, p.position(entry))
	}
	switch entry.Severity {
	case refactoring.Warning:
		p.warningStyle.Fprint(p.out, "warning: ")
	case refactoring.Error:
		p.errorStyle.Fprint(p.out, "error: ")
	}
	fmt.Fprintln(p.out, entry.Message)
}

// position formats an entry's extent as line.col-line.col, or as an offset
// if the file cannot be read.
func (p *logPrinter) position(entry *refactoring.Entry) string {
	ext := entry.Position
	if ext == nil {
		return "1.1"
	}
	starts, ok := p.lines[entry.Path()]
	if !ok {
		data, err := p.fs.ReadFile(entry.Path())
		if err == nil {
			starts = lineStarts(data)
		}
		p.lines[entry.Path()] = starts
	}
	if starts == nil {
		return ext.String()
	}
	sl, sc := lineCol(starts, ext.Offset)
	el, ec := lineCol(starts, ext.OffsetPastEnd())
	return fmt.Sprintf("%d.%d-%d.%d", sl, sc, el, ec)
}

func lineStarts(data []byte) []int {
	starts := make([]int, 1, bytes.Count(data, []byte{'\n'})+1)
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineCol converts a byte offset to a 1-based line and column.
func lineCol(starts []int, offset int) (int, int) {
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return line + 1, offset - starts[line] + 1
}

func sortedFiles(edits map[string]*text.EditSet) []string {
	result := make([]string, 0, len(edits))
	for f := range edits {
		result = append(result, f)
	}
	sort.Strings(result)
	return result
}
