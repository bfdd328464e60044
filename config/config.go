// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the optional settings file, .snipdoctor.toml, which
// adjusts how refactorings search and how the drivers report results.
//
// A settings file looks like this:
//
//	exclude = ["**/*_test.go", "internal/gen/**"]
//	max_parallel = 4
//	color = "never"
//	min_statements = 2
//
// Unknown keys are errors.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
)

// Filename is the name of the settings file.
const Filename = ".snipdoctor.toml"

// Settings holds user preferences.  The zero value is not meaningful; start
// from Default.
type Settings struct {
	// Exclude lists doublestar patterns, matched against slash-separated
	// paths relative to the directory containing the settings file (or
	// against base names), of files never searched for duplicates.
	Exclude []string `toml:"exclude"`

	// MaxParallel bounds the number of files searched concurrently.
	MaxParallel int `toml:"max_parallel"`

	// Color is "auto", "always", or "never".
	Color string `toml:"color"`

	// MinStatements is the least number of statements a selection must
	// contain to be searched for duplicates.  Expressions are always
	// searched.
	MinStatements int `toml:"min_statements"`

	// Dir is the directory the settings were loaded from, or "".
	Dir string `toml:"-"`
}

// Default returns the settings used when there is no settings file.
func Default() *Settings {
	return &Settings{
		MaxParallel:   runtime.GOMAXPROCS(0),
		Color:         "auto",
		MinStatements: 1,
	}
}

// Parse decodes settings from TOML, filling in defaults for absent keys.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown setting: %s", strict.String())
		}
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the settings file at path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// Find walks up from dir looking for a settings file and returns its path,
// or "" if there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, Filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadNearest loads the settings file nearest to dir, or returns Default()
// if there is none.
func LoadNearest(dir string) (*Settings, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate reports the first invalid setting.
func (s *Settings) Validate() error {
	switch s.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be \"auto\", \"always\", or \"never\", not %q", s.Color)
	}
	if s.MaxParallel < 0 {
		return fmt.Errorf("max_parallel must not be negative")
	}
	if s.MinStatements < 1 {
		return fmt.Errorf("min_statements must be at least 1")
	}
	for _, pattern := range s.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}

// Parallelism returns the number of files that may be searched at once.
func (s *Settings) Parallelism() int {
	if s.MaxParallel <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return s.MaxParallel
}

// Excluded reports whether the file at path matches an exclude pattern.
func (s *Settings) Excluded(path string) bool {
	if len(s.Exclude) == 0 {
		return false
	}
	names := []string{filepath.ToSlash(filepath.Base(path))}
	if s.Dir != "" {
		if rel, err := filepath.Rel(s.Dir, path); err == nil {
			names = append(names, filepath.ToSlash(rel))
		}
	} else {
		names = append(names, filepath.ToSlash(path))
	}
	for _, pattern := range s.Exclude {
		for _, name := range names {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		}
	}
	return false
}
