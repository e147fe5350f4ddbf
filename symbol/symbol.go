// Package symbol implements the semantic analysis passes: statement
// label resolution, symbol table construction with Fortran 77 implicit
// typing, and cross-unit COMMON block layout checks. Findings are
// reported as diagnostics; analysis never aborts a unit early.
package symbol

import (
	"github.com/uchchwhash/f77lint/token"
)

// Flags
type Flags uint32

const (
	// FlagDeclared marks a name with an explicit type declaration.
	FlagDeclared Flags = 1 << iota
	// FlagDimension marks a name given array bounds by DIMENSION.
	FlagDimension
	// FlagDummy marks a dummy argument of the enclosing unit.
	FlagDummy
	// FlagCommon marks membership in a COMMON block.
	FlagCommon
	// FlagImplicit marks a type obtained from implicit rules.
	FlagImplicit
	// FlagUsed marks any reference after declaration processing.
	FlagUsed
)

func (f Flags) HasAny(bits Flags) bool { return f&bits != 0 }
func (f Flags) HasAll(bits Flags) bool { return f&bits == bits }

// SymbolKind classifies what a name refers to inside one unit.
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymParameter
	SymExternal
	SymIntrinsic
	SymUnit // the enclosing unit's own name
)

func (sk SymbolKind) String() string {
	switch sk {
	case SymVariable:
		return "Variable"
	case SymParameter:
		return "Parameter"
	case SymExternal:
		return "External"
	case SymIntrinsic:
		return "Intrinsic"
	case SymUnit:
		return "Unit"
	default:
		return "Unknown"
	}
}

// Symbol is one name in a unit's table. The scanner upper-cases all
// identifiers, so names compare directly.
type Symbol struct {
	Name     string
	Type     string // "INTEGER", "REAL", ...; empty when unknown
	Kind     SymbolKind
	Flags    Flags
	DeclPos  token.Position // explicit declaration site
	FirstPos token.Position // first appearance of any kind
}

// Table holds the symbols of one program unit. Iteration follows
// insertion order so diagnostics come out deterministically.
type Table struct {
	syms  map[string]*Symbol
	order []*Symbol
}

func NewTable() *Table {
	return &Table{syms: make(map[string]*Symbol)}
}

// Lookup returns the symbol for name, or nil.
func (t *Table) Lookup(name string) *Symbol {
	return t.syms[name]
}

// Define returns the symbol for name, creating it at pos if absent.
func (t *Table) Define(name string, pos token.Position) *Symbol {
	if sym, ok := t.syms[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name, FirstPos: pos}
	t.syms[name] = sym
	t.order = append(t.order, sym)
	return sym
}

// All returns the symbols in insertion order.
func (t *Table) All() []*Symbol {
	return t.order
}

// ImplicitRules is the per-unit implicit typing state: one type per
// initial letter, or none at all under IMPLICIT NONE.
type ImplicitRules struct {
	None    bool
	Letters [26]string
}

// DefaultImplicitRules returns the Fortran 77 default: names starting
// I-N are INTEGER, all others REAL.
func DefaultImplicitRules() ImplicitRules {
	var r ImplicitRules
	for ch := 'A'; ch <= 'Z'; ch++ {
		r.Letters[ch-'A'] = "REAL"
	}
	for ch := 'I'; ch <= 'N'; ch++ {
		r.Letters[ch-'A'] = "INTEGER"
	}
	return r
}

// SetRange overrides the type for an inclusive letter range.
func (r *ImplicitRules) SetRange(from, to byte, typ string) {
	if from < 'A' || to > 'Z' || from > to {
		return
	}
	for ch := from; ch <= to; ch++ {
		r.Letters[ch-'A'] = typ
	}
}

// TypeFor returns the implicit type for name, or empty when IMPLICIT
// NONE is active or the name does not start with a letter.
func (r *ImplicitRules) TypeFor(name string) string {
	if r.None || name == "" {
		return ""
	}
	ch := name[0]
	if ch < 'A' || ch > 'Z' {
		return ""
	}
	return r.Letters[ch-'A']
}
