package symbol

import (
	"github.com/uchchwhash/f77lint/ast"
	"github.com/uchchwhash/f77lint/diag"
)

// Analyzer runs the semantic passes over the units of one file. When
// Commons is set, COMMON block layouts are also checked against every
// other unit registered with the same registry.
type Analyzer struct {
	Strict  bool
	Commons *CommonRegistry
}

// Analyze runs label resolution then symbol resolution on each unit
// and returns the combined diagnostics.
func (a *Analyzer) Analyze(units []*ast.ProgramUnit) []diag.Diagnostic {
	var ds []diag.Diagnostic
	for _, unit := range units {
		ds = append(ds, checkLabels(unit)...)
		r := newResolver(unit, a.Strict)
		ds = append(ds, r.resolve()...)
		if a.Commons != nil {
			a.Commons.record(unit, r.table, r.rules)
		}
	}
	return ds
}
