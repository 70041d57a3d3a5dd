package arch_test

import (
	"strconv"
	"strings"
	"testing"
)

// layers places each internal package in the dependency DAG. A package may
// import packages on its own layer or below.
var layers = map[string]int{
	// Values and leaf services.
	"config":    0,
	"menu":      0,
	"route":     0,
	"scene":     0,
	"settings":  0,
	"telemetry": 0,

	// Per-slot state built from scenes and routes.
	"progress": 1,
	"textlog":  1,

	// Persistence and unlock policy over progress records.
	"store":  2,
	"unlock": 2,

	"game": 3,

	"ui": 4,
}

func TestLayering(t *testing.T) {
	t.Parallel()
	found := make(map[string]bool)
	for _, p := range parseInternal(t) {
		found[p.name] = true
		own, ok := layers[p.name]
		if !ok {
			t.Errorf("internal/%s has no entry in layers", p.name)
			continue
		}
		for _, f := range p.files {
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				dep, ok := strings.CutPrefix(path, internalImport)
				if !ok {
					continue
				}
				dep, _, _ = strings.Cut(dep, "/")
				if layers[dep] > own {
					t.Errorf("%s: %s (layer %d) imports %s (layer %d)",
						p.fset.Position(imp.Pos()), p.name, own, dep, layers[dep])
				}
			}
		}
	}
	for name := range layers {
		if !found[name] {
			t.Errorf("layers lists %s, which is not an internal package", name)
		}
	}
}
