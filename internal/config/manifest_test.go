package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"ember/internal/config"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "ember.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_RequiresPackageNameAndEntry(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[package]
name = ""
[build]
entry = "main.em"
`)
	if _, err := config.Load(filepath.Join(dir, "ember.toml")); err == nil {
		t.Fatalf("expected an error for a blank package name")
	}
}

func TestLoad_ResolvesEntryPathAndTarget(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[package]
name = "hello"
[build]
entry = "src/main.em"
[target]
pointer_width = 32
endian = "big"
`)
	m, err := config.Load(filepath.Join(dir, "ember.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Package.Name != "hello" {
		t.Errorf("Package.Name = %q, want hello", m.Package.Name)
	}
	want := filepath.Join(dir, "src", "main.em")
	if got := m.EntryPath(); got != want {
		t.Errorf("EntryPath() = %q, want %q", got, want)
	}
	target, err := m.Target.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if target.PointerSize != 4 || !target.BigEndian {
		t.Errorf("Layout() = %+v, want {4 true}", target)
	}
}

func TestFind_WalksUpToParentDirectory(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `[package]
name = "hello"
[build]
entry = "main.em"
`)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path, ok, err := config.Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find(%q) = %q, %v, %v", nested, path, ok, err)
	}
	if filepath.Dir(path) != root {
		t.Errorf("Find found %q, want under %q", path, root)
	}
}

func TestFind_NoManifestAnywhere(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := config.Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ok {
		t.Fatalf("Find unexpectedly reported a manifest")
	}
}
