package arch_test

import (
	"go/ast"
	"strings"
	"testing"
)

// Exported identifiers need a doc comment that opens with their name. Members
// of a multi-spec const or var group may lean on the group's comment or an
// inline one instead.
func TestExportedDocs(t *testing.T) {
	t.Parallel()
	for _, p := range parseInternal(t) {
		for _, f := range p.files {
			for _, decl := range f.Decls {
				for _, id := range undocumented(decl) {
					t.Errorf("%s: %s.%s has no doc comment", p.fset.Position(id.Pos()), p.name, id.Name)
				}
			}
		}
	}
}

func undocumented(decl ast.Decl) []*ast.Ident {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		if !d.Name.IsExported() {
			return nil
		}
		if d.Recv != nil && !exportedType(d.Recv.List[0].Type) {
			return nil
		}
		if !docStarts(d.Doc, d.Name.Name) {
			return []*ast.Ident{d.Name}
		}
	case *ast.GenDecl:
		var missing []*ast.Ident
		grouped := len(d.Specs) > 1
		for _, spec := range d.Specs {
			switch s := spec.(type) {
			case *ast.TypeSpec:
				if s.Name.IsExported() && !docStarts(s.Doc, s.Name.Name) && !docStarts(d.Doc, s.Name.Name) {
					missing = append(missing, s.Name)
				}
			case *ast.ValueSpec:
				for _, n := range s.Names {
					switch {
					case !n.IsExported():
					case grouped && (d.Doc != nil || s.Doc != nil || s.Comment != nil):
					case docStarts(s.Doc, n.Name), docStarts(d.Doc, n.Name):
					default:
						missing = append(missing, n)
					}
				}
			}
		}
		return missing
	}
	return nil
}

func docStarts(g *ast.CommentGroup, name string) bool {
	return g != nil && strings.HasPrefix(strings.TrimSpace(g.Text()), name)
}

// exportedType reports whether a receiver's base type is exported.
func exportedType(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.IsExported()
	case *ast.StarExpr:
		return exportedType(e.X)
	case *ast.IndexExpr:
		return exportedType(e.X)
	case *ast.IndexListExpr:
		return exportedType(e.X)
	}
	return false
}
