package symbol

import (
	"github.com/uchchwhash/f77lint/ast"
	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/token"
)

// resolver is pass 2 over one unit. Declarations are swept first so
// the placement of specification statements never affects the result,
// then every name occurrence is resolved against the table.
type resolver struct {
	unit   *ast.ProgramUnit
	table  *Table
	rules  ImplicitRules
	strict bool
	ds     []diag.Diagnostic

	// names already reported undeclared, so IMPLICIT NONE flags each
	// name once, at its first use
	reported map[string]bool
}

func newResolver(unit *ast.ProgramUnit, strict bool) *resolver {
	return &resolver{
		unit:     unit,
		table:    NewTable(),
		rules:    DefaultImplicitRules(),
		strict:   strict,
		reported: make(map[string]bool),
	}
}

func (r *resolver) errorf(code string, pos token.Position, format string, args ...any) {
	r.ds = append(r.ds, diag.Errorf(code, pos, format, args...))
}

func (r *resolver) warnf(code string, pos token.Position, format string, args ...any) {
	r.ds = append(r.ds, diag.Warningf(code, pos, format, args...))
}

// resolve runs both sweeps and the unused-variable report.
func (r *resolver) resolve() []diag.Diagnostic {
	r.collectDeclarations()
	r.resolveUses()
	r.reportUnused()
	return r.ds
}

// declare records an explicitly declared name, resolving its type from
// the declaration or, when the declaration carries none, from the
// implicit rules.
func (r *resolver) declare(name string, typ string, pos token.Position, flags Flags) *Symbol {
	sym := r.table.Define(name, pos)
	if typ != "" && sym.Type == "" {
		sym.Type = typ
	}
	if flags.HasAny(FlagDeclared) && !sym.Flags.HasAny(FlagDeclared) {
		sym.DeclPos = pos
	}
	sym.Flags |= flags
	return sym
}

// collectDeclarations sweeps every specification statement of the
// unit: IMPLICIT first reshapes the letter rules, then the explicit
// declarations populate the table.
func (r *resolver) collectDeclarations() {
	// IMPLICIT statements apply to the whole unit regardless of where
	// the parser found them.
	ast.Inspect(r.unit, func(node ast.Node) bool {
		if st, ok := node.(*ast.Implicit); ok {
			if st.None {
				r.rules.None = true
				return true
			}
			for _, rule := range st.Rules {
				for _, lr := range rule.Ranges {
					r.rules.SetRange(lr.From, lr.To, rule.Type)
				}
			}
		}
		return true
	})

	// Dummy arguments exist before any declaration mentions them.
	for i, d := range r.unit.Dummies {
		sym := r.table.Define(d, r.unit.DummyPos[i])
		sym.Flags |= FlagDummy
		if sym.Type == "" {
			sym.Type = r.rules.TypeFor(d)
		}
	}

	// A FUNCTION's own name acts as its result variable and is never
	// flagged.
	if r.unit.Kind == ast.KindFunction && r.unit.Name != "" {
		sym := r.table.Define(r.unit.Name, r.unit.Start)
		sym.Kind = SymUnit
		sym.Flags |= FlagUsed
		if sym.Type == "" {
			sym.Type = r.unit.ResultType
		}
		if sym.Type == "" {
			sym.Type = r.rules.TypeFor(r.unit.Name)
		}
	}

	ast.Inspect(r.unit, func(node ast.Node) bool {
		switch st := node.(type) {
		case *ast.TypeDecl:
			for _, ent := range st.Entities {
				r.declare(ent.Name, st.Type, ent.NamePos, FlagDeclared)
			}
		case *ast.Dimension:
			for _, ent := range st.Entities {
				r.declare(ent.Name, r.rules.TypeFor(ent.Name), ent.NamePos, FlagDeclared|FlagDimension)
			}
		case *ast.Common:
			for _, blk := range st.Blocks {
				for _, ent := range blk.Entities {
					r.declare(ent.Name, "", ent.NamePos, FlagCommon)
				}
			}
		case *ast.Parameter:
			for _, def := range st.Defs {
				sym := r.declare(def.Name, r.rules.TypeFor(def.Name), def.NamePos, FlagDeclared)
				sym.Kind = SymParameter
			}
		case *ast.External:
			for i, name := range st.Names {
				sym := r.declare(name, "", st.NamePos[i], 0)
				sym.Kind = SymExternal
			}
		case *ast.Intrinsic:
			for i, name := range st.Names {
				sym := r.declare(name, IntrinsicType(name), st.NamePos[i], 0)
				sym.Kind = SymIntrinsic
			}
		case *ast.Entry:
			for _, d := range st.Dummies {
				sym := r.table.Define(d, st.Pos())
				sym.Flags |= FlagDummy
			}
		}
		return true
	})

	// COMMON members without an explicit type still have one.
	for _, sym := range r.table.All() {
		if sym.Type == "" && sym.Kind == SymVariable {
			if t := r.rules.TypeFor(sym.Name); t != "" && sym.Flags.HasAny(FlagDeclared|FlagCommon|FlagDummy) {
				sym.Type = t
				sym.Flags |= FlagImplicit
			}
		}
	}
}

// use resolves one name occurrence. Undeclared names are implicitly
// typed; under IMPLICIT NONE each undeclared name is an error at its
// first use.
func (r *resolver) use(name string, pos token.Position) *Symbol {
	sym := r.table.Lookup(name)
	if sym == nil {
		if IsIntrinsic(name) {
			sym = r.table.Define(name, pos)
			sym.Kind = SymIntrinsic
			sym.Type = IntrinsicType(name)
			sym.Flags |= FlagUsed
			return sym
		}
		sym = r.table.Define(name, pos)
		if t := r.rules.TypeFor(name); t != "" {
			sym.Type = t
			sym.Flags |= FlagImplicit
		} else if r.rules.None && !r.reported[name] {
			r.reported[name] = true
			r.errorf(diag.CodeVarUndeclared, pos,
				"%s is used but never declared under IMPLICIT NONE", name)
		}
	}
	sym.Flags |= FlagUsed
	return sym
}

// resolveUses walks every name occurrence in executable context.
func (r *resolver) resolveUses() {
	ast.Inspect(r.unit, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.TypeDecl, *ast.Dimension, *ast.Common, *ast.External,
			*ast.Intrinsic, *ast.Save, *ast.Implicit, *ast.Format:
			// Specification statements declare, they do not use.
			return false
		case *ast.Parameter:
			// The constant expressions are uses; the defined names are
			// not.
			for i := range n.Defs {
				r.resolveExpr(n.Defs[i].Value)
			}
			return false
		case *ast.Assignment:
			r.resolveExpr(n.Target)
			r.resolveExpr(n.Value)
			if r.strict {
				r.checkAssignment(n)
			}
			return false
		case *ast.DoLoop:
			r.use(n.Var, n.VarPos)
		case *ast.AssignStmt:
			r.use(n.Var, n.VarPos)
		case *ast.CallStmt:
			// The callee is a procedure, not a variable; only mark it
			// used when something declared it.
			if sym := r.table.Lookup(n.Name); sym != nil {
				sym.Flags |= FlagUsed
			}
			for _, a := range n.Args {
				r.resolveExpr(a)
			}
			return false
		case ast.Expression:
			r.resolveExpr(n)
			return false
		}
		return true
	})
}

// resolveExpr records every name occurrence inside an expression.
func (r *resolver) resolveExpr(e ast.Expression) {
	if e == nil {
		return
	}
	ast.Inspect(e, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Ident:
			if n.Name != "*" {
				r.use(n.Name, n.Start)
			}
		case *ast.FunctionCall:
			// Array element or function reference; either way the
			// name is used.
			r.use(n.Name, n.Start)
		case *ast.ArrayRef:
			r.use(n.Name, n.Start)
		case *ast.ImpliedDo:
			r.use(n.Var, n.VarPos)
		}
		return true
	})
}

// reportUnused flags explicitly declared variables that are never
// referenced. Dummy arguments and COMMON members are shared surface
// and stay silent.
func (r *resolver) reportUnused() {
	for _, sym := range r.table.All() {
		if sym.Kind != SymVariable {
			continue
		}
		if !sym.Flags.HasAll(FlagDeclared) || sym.Flags.HasAny(FlagUsed|FlagDummy|FlagCommon) {
			continue
		}
		r.warnf(diag.CodeVarUnused, sym.DeclPos,
			"%s is declared but never used", sym.Name)
	}
}

// typeClass buckets a type name for assignment compatibility:
// arithmetic types convert freely among themselves, CHARACTER and
// LOGICAL do not mix with anything else.
func typeClass(typ string) string {
	switch typ {
	case "INTEGER", "REAL", "DOUBLE PRECISION", "COMPLEX":
		return "arithmetic"
	case "CHARACTER", "LOGICAL":
		return typ
	default:
		return ""
	}
}

// checkAssignment reports incompatible assignment classes in strict
// mode.
func (r *resolver) checkAssignment(st *ast.Assignment) {
	lhs := typeClass(r.typeOf(st.Target))
	rhs := typeClass(r.typeOf(st.Value))
	if lhs == "" || rhs == "" || lhs == rhs {
		return
	}
	r.errorf(diag.CodeTypeMismatch, st.Start,
		"cannot assign %s expression to %s variable",
		r.typeOf(st.Value), r.typeOf(st.Target))
}

// typeOf infers the type of an expression from literals, the symbol
// table and the implicit rules. Empty means unknown; unknown never
// produces a mismatch.
func (r *resolver) typeOf(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.IntLit:
		return "INTEGER"
	case *ast.RealLit:
		return "REAL"
	case *ast.StringLit:
		return "CHARACTER"
	case *ast.LogicalLit:
		return "LOGICAL"
	case *ast.Paren:
		return r.typeOf(n.X)
	case *ast.Ident:
		return r.typeOfName(n.Name)
	case *ast.ArrayRef:
		return r.typeOfName(n.Name)
	case *ast.FunctionCall:
		if sym := r.table.Lookup(n.Name); sym != nil && sym.Type != "" {
			return sym.Type
		}
		if IsIntrinsic(n.Name) {
			return IntrinsicType(n.Name)
		}
		return r.rules.TypeFor(n.Name)
	case *ast.Unary:
		if n.Op == token.NOT {
			return "LOGICAL"
		}
		return r.typeOf(n.X)
	case *ast.Binary:
		switch {
		case n.Op.IsRelational():
			return "LOGICAL"
		case n.Op == token.NOT || n.Op == token.AND || n.Op == token.OR ||
			n.Op == token.EQV || n.Op == token.NEQV:
			return "LOGICAL"
		case n.Op == token.StringConcat:
			return "CHARACTER"
		default:
			return promote(r.typeOf(n.Left), r.typeOf(n.Right))
		}
	default:
		return ""
	}
}

func (r *resolver) typeOfName(name string) string {
	if sym := r.table.Lookup(name); sym != nil && sym.Type != "" {
		return sym.Type
	}
	return r.rules.TypeFor(name)
}

// promote returns the result type of an arithmetic operation, widening
// INTEGER < REAL < DOUBLE PRECISION < COMPLEX.
func promote(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	rank := func(t string) int {
		switch t {
		case "INTEGER":
			return 1
		case "REAL":
			return 2
		case "DOUBLE PRECISION":
			return 3
		case "COMPLEX":
			return 4
		default:
			return 0
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}
