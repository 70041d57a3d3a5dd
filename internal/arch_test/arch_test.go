// Package arch_test checks structural rules over prism's internal packages.
package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// internalImport prefixes every import of an internal package.
const internalImport = "github.com/papapumpkin/prism/internal/"

// pkgSource is the parsed non-test source of one internal package.
type pkgSource struct {
	name  string
	fset  *token.FileSet
	files []*ast.File
}

// parseInternal parses every internal package next to this one. Tests run
// with the package directory as working directory, so siblings live in "..".
func parseInternal(t *testing.T) []pkgSource {
	t.Helper()
	entries, err := os.ReadDir("..")
	if err != nil {
		t.Fatalf("read internal dir: %v", err)
	}
	fset := token.NewFileSet()
	var pkgs []pkgSource
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		paths, err := filepath.Glob(filepath.Join("..", e.Name(), "*.go"))
		if err != nil {
			t.Fatalf("glob %s: %v", e.Name(), err)
		}
		src := pkgSource{name: e.Name(), fset: fset}
		for _, path := range paths {
			if strings.HasSuffix(path, "_test.go") {
				continue
			}
			f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			src.files = append(src.files, f)
		}
		if len(src.files) > 0 {
			pkgs = append(pkgs, src)
		}
	}
	if len(pkgs) == 0 {
		t.Fatal("no internal packages found")
	}
	return pkgs
}
