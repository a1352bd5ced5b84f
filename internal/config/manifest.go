// Package config reads the optional ember.toml project manifest: package
// name, entry file, and target pointer width/endianness overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ember/internal/layout"
)

// Manifest is a located and parsed ember.toml, plus the directory it was
// found in.
type Manifest struct {
	Path string
	Root string

	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Target  TargetConfig  `toml:"target"`
}

// PackageConfig names the package being compiled.
type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig names the entry point to compile. Entry is a fixture name
// (see internal/fixtures) rather than a source file path: this repo has
// no lexer/parser, so there is no .em file for [build].entry to point
// at yet, only a name a real frontend would eventually produce an
// ast.Program for.
type BuildConfig struct {
	Entry string `toml:"entry"`
}

// TargetConfig overrides the host layout.Target.
type TargetConfig struct {
	PointerWidth int    `toml:"pointer_width"` // 32 or 64; 0 means "use host"
	Endian       string `toml:"endian"`        // "little" or "big"; "" means "use host"
}

// Layout resolves TargetConfig against the host default, falling back to
// layout.Host64 for anything left unset.
func (t TargetConfig) Layout() (layout.Target, error) {
	target := layout.Host64
	switch t.PointerWidth {
	case 0:
	case 32:
		target.PointerSize = 4
	case 64:
		target.PointerSize = 8
	default:
		return layout.Target{}, fmt.Errorf("unsupported [target].pointer_width %d (must be 32 or 64)", t.PointerWidth)
	}
	switch strings.ToLower(strings.TrimSpace(t.Endian)) {
	case "":
	case "little":
		target.BigEndian = false
	case "big":
		target.BigEndian = true
	default:
		return layout.Target{}, fmt.Errorf("unsupported [target].endian %q (must be little or big)", t.Endian)
	}
	return target, nil
}

// Find walks up from startDir looking for ember.toml, the way a shell
// looks for .git: the first directory that has one wins.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "ember.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") || strings.TrimSpace(m.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("build") || strings.TrimSpace(m.Build.Entry) == "" {
		return nil, fmt.Errorf("%s: missing [build].entry", path)
	}
	m.Path = path
	m.Root = filepath.Dir(path)
	return &m, nil
}

// EntryPath returns [build].entry joined onto the manifest's directory.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Root, m.Build.Entry)
}

// FindAndLoad combines Find and Load; ok is false (with a nil error) when
// no manifest exists anywhere above startDir.
func FindAndLoad(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}
