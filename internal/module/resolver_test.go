package module

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("module main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveStdlibImport(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "project")
	stdlib := filepath.Join(tmp, "stdlib")
	writeFile(t, filepath.Join(stdlib, "list.mini"))

	r := NewResolver(root, stdlib, "")
	path, err := r.ResolveImport("std::list")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(stdlib, "list.mini") {
		t.Fatalf("unexpected resolved path: %s", path)
	}
}

func TestResolveCoreImport(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "project")
	builtin := filepath.Join(tmp, "builtin")
	writeFile(t, filepath.Join(builtin, "option.mini"))

	r := NewResolver(root, "", builtin)
	path, err := r.ResolveImport("core::option")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(builtin, "option.mini") {
		t.Fatalf("unexpected resolved path: %s", path)
	}
}

func TestResolvePlainImportUsesFirstSegment(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "project")
	writeFile(t, filepath.Join(root, "a.mini"))

	r := NewResolver(root, "", "")
	path, err := r.ResolveImport("a::b")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(root, "a.mini") {
		t.Fatalf("unexpected resolved path: %s", path)
	}
}

func TestResolveImportNotFound(t *testing.T) {
	tmp := t.TempDir()
	r := NewResolver(filepath.Join(tmp, "project"), "", "")
	if _, err := r.ResolveImport("missing::thing"); err == nil {
		t.Fatal("expected error for missing module")
	}
}
