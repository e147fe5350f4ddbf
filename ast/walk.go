package ast

// A Visitor's Visit method is invoked for each node encountered by
// Walk. If the result visitor w is not nil, Walk visits each of the
// children of node with the visitor w, followed by a call of
// w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

func walkStmts(v Visitor, stmts []Statement) {
	for _, s := range stmts {
		Walk(v, s)
	}
}

func walkExprs(v Visitor, exprs []Expression) {
	for _, e := range exprs {
		if e != nil {
			Walk(v, e)
		}
	}
}

func walkEntities(v Visitor, entities []DeclEntity) {
	for _, ent := range entities {
		walkExprs(v, ent.Dims)
		if ent.Length != nil {
			Walk(v, ent.Length)
		}
	}
}

// Walk traverses an AST in depth-first order: it starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w
// for each of the non-nil children of node, followed by a call of
// w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *ProgramUnit:
		walkStmts(v, n.Body)

	case *Assignment:
		Walk(v, n.Target)
		Walk(v, n.Value)

	case *ComputedGoto:
		Walk(v, n.Index)

	case *ArithmeticIf:
		Walk(v, n.Cond)

	case *LogicalIf:
		Walk(v, n.Cond)
		Walk(v, n.Body)

	case *BlockIf:
		Walk(v, n.Cond)
		walkStmts(v, n.Then)
		for i := range n.ElseIfs {
			Walk(v, n.ElseIfs[i].Cond)
			walkStmts(v, n.ElseIfs[i].Body)
		}
		walkStmts(v, n.Else)

	case *DoLoop:
		Walk(v, n.Init)
		Walk(v, n.Limit)
		if n.Step != nil {
			Walk(v, n.Step)
		}
		walkStmts(v, n.Body)

	case *CallStmt:
		walkExprs(v, n.Args)

	case *TypeDecl:
		if n.Length != nil {
			Walk(v, n.Length)
		}
		walkEntities(v, n.Entities)

	case *Dimension:
		walkEntities(v, n.Entities)

	case *Common:
		for i := range n.Blocks {
			walkEntities(v, n.Blocks[i].Entities)
		}

	case *Equivalence:
		for _, group := range n.Groups {
			walkExprs(v, group)
		}

	case *Parameter:
		for i := range n.Defs {
			Walk(v, n.Defs[i].Value)
		}

	case *Data:
		walkExprs(v, n.Names)

	case *IO:
		walkExprs(v, n.Control)
		walkExprs(v, n.Items)

	case *Binary:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *Unary:
		Walk(v, n.X)

	case *FunctionCall:
		walkExprs(v, n.Args)

	case *ArrayRef:
		walkExprs(v, n.Subs)

	case *Paren:
		Walk(v, n.X)

	case *RangeExpr:
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.To != nil {
			Walk(v, n.To)
		}

	case *ImpliedDo:
		walkExprs(v, n.Items)
		Walk(v, n.From)
		Walk(v, n.To)
		if n.Step != nil {
			Walk(v, n.Step)
		}

	case *Goto, *Continue, *Format, *Return, *Stop, *Pause, *End,
		*AssignStmt, *Implicit, *External, *Intrinsic, *Save, *Entry,
		*Bad, *Ident, *IntLit, *RealLit, *StringLit, *LogicalLit:
		// No children.
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if node != nil && f(node) {
		return f
	}
	return nil
}

// Inspect traverses the AST calling f for each node. If f returns
// false for a node, its children are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
