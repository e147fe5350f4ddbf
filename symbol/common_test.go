package symbol

import (
	"strings"
	"testing"

	"github.com/uchchwhash/f77lint/ast"
	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/token"
)

func fileAt(file string, line, col int) token.Position {
	return token.Position{File: file, Line: line, Col: col}
}

func commonUnit(file, unitName, memberType string) *ast.ProgramUnit {
	kind := ast.KindProgram
	if unitName != "" && unitName != "MAIN" {
		kind = ast.KindSubroutine
	}
	return &ast.ProgramUnit{
		Kind: kind, Name: unitName, Start: fileAt(file, 1, 7),
		Body: []ast.Statement{
			&ast.TypeDecl{Type: memberType,
				Entities: []ast.DeclEntity{{Name: "X", NamePos: fileAt(file, 2, 15)}},
				Start:    fileAt(file, 2, 7)},
			&ast.Common{Blocks: []ast.CommonBlock{{
				Name:     "BLK",
				Entities: []ast.DeclEntity{{Name: "X", NamePos: fileAt(file, 3, 20)}},
				Start:    fileAt(file, 3, 7),
			}}, Start: fileAt(file, 3, 7)},
			&ast.End{Start: fileAt(file, 4, 7)},
		},
	}
}

func TestCommonConsistentLayouts(t *testing.T) {
	commons := NewCommonRegistry()
	an := &Analyzer{Commons: commons}
	an.Analyze([]*ast.ProgramUnit{commonUnit("a.f", "MAIN", "INTEGER")})
	an.Analyze([]*ast.ProgramUnit{commonUnit("b.f", "STEP", "INTEGER")})
	if ds := commons.Check(); len(ds) != 0 {
		t.Fatalf("matching layouts flagged: %v", ds)
	}
}

func TestCommonTypeConflict(t *testing.T) {
	commons := NewCommonRegistry()
	an := &Analyzer{Commons: commons}
	an.Analyze([]*ast.ProgramUnit{commonUnit("a.f", "MAIN", "INTEGER")})
	an.Analyze([]*ast.ProgramUnit{commonUnit("b.f", "STEP", "REAL")})

	ds := commons.Check()
	if len(ds) != 1 || ds[0].Code != diag.CodeCommonConflict || ds[0].Sev != diag.Warning {
		t.Fatalf("expected one COMMON-TYPE-CONFLICT warning, got %v", ds)
	}
	if ds[0].Pos.File != "b.f" {
		t.Fatalf("conflict reported in %s, want the later declaration", ds[0].Pos.File)
	}
	if !strings.Contains(ds[0].Msg, "REAL") || !strings.Contains(ds[0].Msg, "INTEGER") {
		t.Fatalf("message %q should name both types", ds[0].Msg)
	}
}

func TestCommonCanonicalOrderIndependent(t *testing.T) {
	// Registration order must not matter: the canonical layout is the
	// one declared first by source position, so recording b.f before
	// a.f still reports the conflict at b.f.
	commons := NewCommonRegistry()
	an := &Analyzer{Commons: commons}
	an.Analyze([]*ast.ProgramUnit{commonUnit("b.f", "STEP", "REAL")})
	an.Analyze([]*ast.ProgramUnit{commonUnit("a.f", "MAIN", "INTEGER")})

	ds := commons.Check()
	if len(ds) != 1 || ds[0].Pos.File != "b.f" {
		t.Fatalf("expected the conflict at b.f regardless of order, got %v", ds)
	}
	if !strings.Contains(ds[0].Msg, "is REAL here but INTEGER") {
		t.Fatalf("canonical direction flipped: %q", ds[0].Msg)
	}
}

func TestCommonBlankAndNamedDistinct(t *testing.T) {
	// Blank COMMON and /BLK/ are different blocks.
	unit := &ast.ProgramUnit{
		Kind: ast.KindProgram, Name: "MAIN", Start: fileAt("a.f", 1, 7),
		Body: []ast.Statement{
			&ast.Common{Blocks: []ast.CommonBlock{
				{Name: "", Entities: []ast.DeclEntity{{Name: "KOUNT", NamePos: fileAt("a.f", 2, 15)}},
					Start: fileAt("a.f", 2, 7)},
				{Name: "BLK", Entities: []ast.DeclEntity{{Name: "TOTAL", NamePos: fileAt("a.f", 2, 30)}},
					Start: fileAt("a.f", 2, 22)},
			}, Start: fileAt("a.f", 2, 7)},
			&ast.End{Start: fileAt("a.f", 3, 7)},
		},
	}
	commons := NewCommonRegistry()
	an := &Analyzer{Commons: commons}
	an.Analyze([]*ast.ProgramUnit{unit})
	if ds := commons.Check(); len(ds) != 0 {
		t.Fatalf("distinct blocks flagged: %v", ds)
	}
}
