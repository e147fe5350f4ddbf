package symbol

import (
	"github.com/uchchwhash/f77lint/ast"
	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/token"
)

// labelOcc is one occurrence of a statement label.
type labelOcc struct {
	label int
	pos   token.Position
}

// checkLabels is pass 1 over a unit: collect label definitions and
// references in source order, then report duplicates, references to
// labels that are never defined, and labels that are never referenced.
// Forward references are legal so nothing is reported mid-walk except
// duplicates, which are known the moment the second definition appears.
func checkLabels(unit *ast.ProgramUnit) []diag.Diagnostic {
	var (
		defs    []labelOcc
		refs    []labelOcc
		defined = make(map[int]token.Position)
		ds      []diag.Diagnostic
	)
	ref := func(n int, pos token.Position) {
		if n != 0 {
			refs = append(refs, labelOcc{label: n, pos: pos})
		}
	}

	ast.Inspect(unit, func(node ast.Node) bool {
		if st, ok := node.(ast.Statement); ok {
			if n := st.Lbl(); n != 0 {
				if first, dup := defined[n]; dup {
					ds = append(ds, diag.Errorf(diag.CodeLabelDup, st.Pos(),
						"label %d already defined at line %d", n, first.Line))
				} else {
					defined[n] = st.Pos()
					defs = append(defs, labelOcc{label: n, pos: st.Pos()})
				}
			}
		}
		switch st := node.(type) {
		case *ast.Goto:
			ref(st.Target, st.TargetPos)
		case *ast.ComputedGoto:
			for i := range st.Targets {
				ref(st.Targets[i], st.TargetPos[i])
			}
		case *ast.ArithmeticIf:
			for i := range st.Branches {
				ref(st.Branches[i], st.BranchPos[i])
			}
		case *ast.DoLoop:
			ref(st.EndLabel, st.EndLabelPos)
		case *ast.IO:
			ref(st.FormatLabel, st.FormatPos)
			for i := range st.RefLabels {
				ref(st.RefLabels[i], st.RefPos[i])
			}
		case *ast.AssignStmt:
			ref(st.Target, st.TargetPos)
		case *ast.CallStmt:
			for i := range st.AltReturns {
				ref(st.AltReturns[i], st.AltRetPos[i])
			}
		}
		return true
	})

	used := make(map[int]bool, len(refs))
	for _, r := range refs {
		used[r.label] = true
		if _, ok := defined[r.label]; !ok {
			ds = append(ds, diag.Errorf(diag.CodeLabelUndef, r.pos,
				"label %d is never defined", r.label))
		}
	}
	for _, d := range defs {
		if !used[d.label] {
			ds = append(ds, diag.Warningf(diag.CodeLabelUnused, d.pos,
				"label %d is never referenced", d.label))
		}
	}
	return ds
}
