// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filesystem defines the FileSystem interface and two
// implementations.  A FileSystem supplies file contents to the loader (as a
// go/packages overlay) and is used by the drivers to commit refactorings'
// changes to disk.
package filesystem

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/godoctor/snipdoctor/text"
)

// The filename assigned to Go source code supplied on standard input.  It is
// assumed that a file with this name does not actually exist.
//
// go/packages requires source files to have a .go extension, so a more
// obvious name like "-" or os.Stdin.Name() does not work.
const FakeStdinFilename = "-.go"

// FakeStdinPath returns the absolute path of a (likely nonexistent) file in
// the current directory whose name is given by FakeStdinFilename.
func FakeStdinPath() (string, error) {
	result, err := filepath.Abs(FakeStdinFilename)
	if err != nil {
		return FakeStdinFilename, err
	}
	return result, nil
}

/* -=-=- File System Interface -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

// A FileSystem provides the ability to read and overwrite files.
type FileSystem interface {
	// ReadFile returns the contents of the file with the given path.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the contents of an existing file.
	WriteFile(path string, data []byte) error

	// Overlay returns the contents of every file whose contents differ
	// from (or do not exist on) the local disk, keyed by absolute path.
	// The result is suitable for packages.Config.Overlay.
	Overlay() (map[string][]byte, error)
}

/* -=-=- Local File System -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

// LocalFileSystem implements the FileSystem interface and provides access to
// the local file system by delegating to the os package.
type LocalFileSystem struct{}

func NewLocalFileSystem() *LocalFileSystem {
	return &LocalFileSystem{}
}

func (fs *LocalFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (fs *LocalFileSystem) WriteFile(path string, data []byte) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return os.WriteFile(path, data, fi.Mode().Perm())
}

func (fs *LocalFileSystem) Overlay() (map[string][]byte, error) {
	return nil, nil
}

/* -=-=- Edited File System -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

// EditedFileSystem implements the FileSystem interface and provides access to
// a hypothetical version of another file system after a set of edits has been
// applied.  Supplying its overlay to the loader analyzes a program after
// refactoring without changing the program on disk.
type EditedFileSystem struct {
	Base  FileSystem
	Edits map[string]*text.EditSet

	mu    sync.Mutex
	cache map[string][]byte
}

// NewEditedFileSystem returns a file system that applies the given edits on
// top of the local file system.
func NewEditedFileSystem(edits map[string]*text.EditSet) *EditedFileSystem {
	return &EditedFileSystem{Base: NewLocalFileSystem(), Edits: edits}
}

// NewSingleEditedFileSystem returns a file system in which the given file
// (typically FakeStdinPath) has the given contents.
func NewSingleEditedFileSystem(filename, contents string) (*EditedFileSystem, error) {
	size, err := sizeOf(filename)
	if err != nil {
		return nil, err
	}
	es := text.NewEditSet()
	if err := es.Add(text.Extent{Offset: 0, Length: size}, contents); err != nil {
		return nil, err
	}
	return NewEditedFileSystem(map[string]*text.EditSet{filename: es}), nil
}

// Layer returns a file system that applies further edits on top of this one.
func (fs *EditedFileSystem) Layer(edits map[string]*text.EditSet) *EditedFileSystem {
	return &EditedFileSystem{Base: fs, Edits: edits}
}

func sizeOf(filename string) (int, error) {
	stdin, err := FakeStdinPath()
	if err != nil {
		return 0, err
	}
	if filename == stdin {
		return 0, nil
	}
	fi, err := os.Stat(filename)
	if err != nil {
		return 0, err
	}
	return int(fi.Size()), nil
}

func (fs *EditedFileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if data, ok := fs.cache[path]; ok {
		return data, nil
	}

	editSet, ok := fs.Edits[path]
	if !ok {
		return fs.Base.ReadFile(path)
	}

	var original []byte
	stdin, err := FakeStdinPath()
	if err != nil {
		return nil, err
	}
	if path != stdin {
		original, err = fs.Base.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	data, err := text.ApplyToReader(editSet, bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("applying edits to %s: %w", path, err)
	}
	if fs.cache == nil {
		fs.cache = map[string][]byte{}
	}
	fs.cache[path] = data
	return data, nil
}

func (fs *EditedFileSystem) WriteFile(path string, data []byte) error {
	return fmt.Errorf("cannot write %s: edited file systems are read-only", path)
}

func (fs *EditedFileSystem) Overlay() (map[string][]byte, error) {
	result, err := fs.Base.Overlay()
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = map[string][]byte{}
	}
	for _, path := range fs.EditedFiles() {
		data, err := fs.ReadFile(path)
		if err != nil {
			return nil, err
		}
		result[path] = data
	}
	return result, nil
}

// EditedFiles returns the (sorted) paths of the files this file system edits.
func (fs *EditedFileSystem) EditedFiles() []string {
	result := make([]string, 0, len(fs.Edits))
	for path := range fs.Edits {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

/* -=-=- Utilities -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=- */

// ApplyEdits reads a file from the given file system and returns its contents
// after the given edits are applied.
func ApplyEdits(es *text.EditSet, fs FileSystem, filename string) ([]byte, error) {
	data, err := fs.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return text.ApplyToReader(es, bytes.NewReader(data))
}

// CreatePatch reads a file from the given file system and returns a Patch
// describing the effect of applying the given edits to it.
func CreatePatch(es *text.EditSet, fs FileSystem, filename string) (*text.Patch, error) {
	data, err := fs.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return es.CreatePatch(bytes.NewReader(data))
}
