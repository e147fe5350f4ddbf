package symbol

import (
	"testing"

	"github.com/uchchwhash/f77lint/token"
)

func TestDefaultImplicitRules(t *testing.T) {
	r := DefaultImplicitRules()
	tests := []struct {
		name string
		want string
	}{
		0: {"KOUNT", "INTEGER"},
		1: {"TOTAL", "REAL"},
		2: {"I", "INTEGER"},
		3: {"N", "INTEGER"},
		4: {"H", "REAL"},
		5: {"OMEGA", "REAL"},
	}
	for i, tt := range tests {
		if got := r.TypeFor(tt.name); got != tt.want {
			t.Errorf("%d: TypeFor(%q) = %q, want %q", i, tt.name, got, tt.want)
		}
	}
}

func TestImplicitRulesSetRange(t *testing.T) {
	r := DefaultImplicitRules()
	r.SetRange('A', 'C', "COMPLEX")
	if got := r.TypeFor("BETA"); got != "COMPLEX" {
		t.Fatalf("TypeFor(BETA) = %q after override", got)
	}
	if got := r.TypeFor("DELTA"); got != "REAL" {
		t.Fatalf("TypeFor(DELTA) = %q, override leaked", got)
	}
}

func TestImplicitNoneRules(t *testing.T) {
	r := DefaultImplicitRules()
	r.None = true
	if got := r.TypeFor("KOUNT"); got != "" {
		t.Fatalf("IMPLICIT NONE should yield no type, got %q", got)
	}
}

func TestTableInsertionOrder(t *testing.T) {
	tab := NewTable()
	p := token.Position{File: "test.f", Line: 1, Col: 7}
	for _, name := range []string{"C", "A", "B"} {
		tab.Define(name, p)
	}
	if tab.Define("A", p) != tab.Lookup("A") {
		t.Fatal("Define should return the existing symbol")
	}
	want := []string{"C", "A", "B"}
	all := tab.All()
	if len(all) != 3 {
		t.Fatalf("table size = %d", len(all))
	}
	for i, sym := range all {
		if sym.Name != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, sym.Name, want[i])
		}
	}
}

func TestIntrinsics(t *testing.T) {
	tests := []struct {
		name string
		typ  string
	}{
		0: {"SQRT", "REAL"},
		1: {"IABS", "INTEGER"},
		2: {"DSQRT", "DOUBLE PRECISION"},
		3: {"LGE", "LOGICAL"},
		4: {"CHAR", "CHARACTER"},
	}
	for i, tt := range tests {
		if !IsIntrinsic(tt.name) {
			t.Errorf("%d: IsIntrinsic(%q) = false", i, tt.name)
			continue
		}
		if got := IntrinsicType(tt.name); got != tt.typ {
			t.Errorf("%d: IntrinsicType(%q) = %q, want %q", i, tt.name, got, tt.typ)
		}
	}
	if IsIntrinsic("MYFUNC") {
		t.Fatal("MYFUNC is not an intrinsic")
	}
}
