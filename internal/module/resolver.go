// Package module implements the mini front-end's module tree builder:
// §6 file-layout resolution (`std::`/`core::`/plain import paths to
// `.mini` files) and the recursive loader that builds the full set of
// transitively imported modules, partitioning each one's top-level
// declarations into imports/funcs/types/globals.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver turns an import path (e.g. "std::list", "core::option",
// "a::b") into the filesystem path of the `.mini` file that defines it,
// following spec.md §6's three rules:
//
//	std::X  -> <root>/../stdlib/X.mini
//	core::X -> <root>/../builtin/X.mini
//	other   -> <root>/<first-segment>.mini
//
// root is the directory containing the entry module (conventionally
// named "main").
type Resolver struct {
	Root        string
	StdlibRoot  string // override; defaults to <root>/../stdlib
	BuiltinRoot string // override; defaults to <root>/../builtin
}

// NewResolver creates a Resolver rooted at root, with stdlib/builtin
// roots computed per §6 unless overridden by cfg values (empty strings
// fall back to the defaults).
func NewResolver(root, stdlibOverride, builtinOverride string) *Resolver {
	r := &Resolver{Root: root}
	if stdlibOverride != "" {
		r.StdlibRoot = stdlibOverride
	} else {
		r.StdlibRoot = filepath.Join(root, "..", "stdlib")
	}
	if builtinOverride != "" {
		r.BuiltinRoot = builtinOverride
	} else {
		r.BuiltinRoot = filepath.Join(root, "..", "builtin")
	}
	return r
}

// ResolveImport maps an import path to the `.mini` file that defines
// it, per §6.
func (r *Resolver) ResolveImport(importPath string) (string, error) {
	segments := strings.Split(importPath, "::")
	if len(segments) == 0 || segments[0] == "" {
		return "", fmt.Errorf("invalid import path %q", importPath)
	}

	var base string
	switch segments[0] {
	case "std":
		base = r.StdlibRoot
		segments = segments[1:]
	case "core":
		base = r.BuiltinRoot
		segments = segments[1:]
	default:
		base = r.Root
		segments = segments[:1]
	}

	if len(segments) == 0 {
		return "", fmt.Errorf("import path %q names no module", importPath)
	}

	path := filepath.Join(append([]string{base}, segments...)...) + ".mini"
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("module not found for import %q: %s", importPath, path)
	}
	return path, nil
}

// ModulePathForFile derives the `::`-separated module path a `.mini`
// file would declare, given its location relative to Root.
func (r *Resolver) ModulePathForFile(file string) (string, error) {
	if rel, err := filepath.Rel(r.StdlibRoot, file); err == nil && !strings.HasPrefix(rel, "..") {
		return "std::" + toModulePath(rel), nil
	}
	if rel, err := filepath.Rel(r.BuiltinRoot, file); err == nil && !strings.HasPrefix(rel, "..") {
		return "core::" + toModulePath(rel), nil
	}
	if rel, err := filepath.Rel(r.Root, file); err == nil && !strings.HasPrefix(rel, "..") {
		return toModulePath(rel), nil
	}
	return "", fmt.Errorf("file %s is not under any known root", file)
}

func toModulePath(rel string) string {
	rel = strings.TrimSuffix(rel, ".mini")
	rel = strings.ReplaceAll(rel, string(filepath.Separator), "::")
	return rel
}
