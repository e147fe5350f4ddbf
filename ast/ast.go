// Package ast declares the syntax tree produced by the grammar layer
// for fixed-form Fortran 77 program units.
package ast

import (
	"github.com/uchchwhash/f77lint/token"
)

type Node interface {
	Pos() token.Position
}

type Expression interface {
	Node
	expressionNode()
}

// Statement is one logical statement. Lbl returns its statement label
// (columns 1-5), or 0 when unlabeled.
type Statement interface {
	Node
	statementNode()
	Lbl() int
}

// UnitKind classifies a program unit header.
type UnitKind int

const (
	KindProgram UnitKind = iota
	KindSubroutine
	KindFunction
	KindBlockData
)

func (k UnitKind) String() string {
	switch k {
	case KindProgram:
		return "PROGRAM"
	case KindSubroutine:
		return "SUBROUTINE"
	case KindFunction:
		return "FUNCTION"
	case KindBlockData:
		return "BLOCK DATA"
	default:
		return "UNKNOWN"
	}
}

// ProgramUnit is one compilation unit: a PROGRAM, SUBROUTINE, FUNCTION
// or BLOCK DATA header through its matching END statement.
type ProgramUnit struct {
	Kind       UnitKind
	Name       string // empty for an unnamed main program
	ResultType string // declared type of a typed FUNCTION header
	Dummies    []string
	DummyPos   []token.Position
	Body       []Statement
	Start      token.Position
	EndPos     token.Position
}

func (u *ProgramUnit) Pos() token.Position { return u.Start }

// Bad is the placeholder for a statement the grammar could not parse.
// Error recovery resynchronized past it; analysis skips it.
type Bad struct {
	Label int
	Start token.Position
}

func (s *Bad) statementNode()      {}
func (s *Bad) Lbl() int            { return s.Label }
func (s *Bad) Pos() token.Position { return s.Start }

// Assignment is "target = expr" with a variable or array-element
// target.
type Assignment struct {
	Label  int
	Target Expression // *Ident or *ArrayRef
	Value  Expression
	Start  token.Position
}

func (s *Assignment) statementNode()      {}
func (s *Assignment) Lbl() int            { return s.Label }
func (s *Assignment) Pos() token.Position { return s.Start }

// Goto is an unconditional "GOTO label".
type Goto struct {
	Label     int
	Target    int
	TargetPos token.Position
	Start     token.Position
}

func (s *Goto) statementNode()      {}
func (s *Goto) Lbl() int            { return s.Label }
func (s *Goto) Pos() token.Position { return s.Start }

// ComputedGoto is "GOTO (l1, l2, ...), index".
type ComputedGoto struct {
	Label     int
	Targets   []int
	TargetPos []token.Position
	Index     Expression
	Start     token.Position
}

func (s *ComputedGoto) statementNode()      {}
func (s *ComputedGoto) Lbl() int            { return s.Label }
func (s *ComputedGoto) Pos() token.Position { return s.Start }

// ArithmeticIf is "IF (expr) l1, l2, l3" branching on sign.
type ArithmeticIf struct {
	Label     int
	Cond      Expression
	Branches  [3]int
	BranchPos [3]token.Position
	Start     token.Position
}

func (s *ArithmeticIf) statementNode()      {}
func (s *ArithmeticIf) Lbl() int            { return s.Label }
func (s *ArithmeticIf) Pos() token.Position { return s.Start }

// LogicalIf is the single-statement form "IF (expr) stmt".
type LogicalIf struct {
	Label int
	Cond  Expression
	Body  Statement
	Start token.Position
}

func (s *LogicalIf) statementNode()      {}
func (s *LogicalIf) Lbl() int            { return s.Label }
func (s *LogicalIf) Pos() token.Position { return s.Start }

// ElseIf is one ELSE IF (expr) THEN section of a block IF.
type ElseIf struct {
	Cond  Expression
	Body  []Statement
	Start token.Position
}

// BlockIf is "IF (expr) THEN ... [ELSE IF ...]... [ELSE ...] END IF".
type BlockIf struct {
	Label   int
	Cond    Expression
	Then    []Statement
	ElseIfs []ElseIf
	Else    []Statement
	Start   token.Position
}

func (s *BlockIf) statementNode()      {}
func (s *BlockIf) Lbl() int            { return s.Label }
func (s *BlockIf) Pos() token.Position { return s.Start }

// DoLoop is a DO statement. The classic form "DO 10 I=1,N" names its
// terminal statement by label and its body stays flat in the unit; the
// END DO form nests its body here and has EndLabel 0.
type DoLoop struct {
	Label       int
	Var         string
	VarPos      token.Position
	Init        Expression
	Limit       Expression
	Step        Expression // nil when omitted
	EndLabel    int
	EndLabelPos token.Position
	Body        []Statement // END DO form only
	Start       token.Position
}

func (s *DoLoop) statementNode()      {}
func (s *DoLoop) Lbl() int            { return s.Label }
func (s *DoLoop) Pos() token.Position { return s.Start }

type Continue struct {
	Label int
	Start token.Position
}

func (s *Continue) statementNode()      {}
func (s *Continue) Lbl() int            { return s.Label }
func (s *Continue) Pos() token.Position { return s.Start }

// Format is a FORMAT statement; the edit descriptor list is kept raw.
type Format struct {
	Label int
	Raw   string
	Start token.Position
}

func (s *Format) statementNode()      {}
func (s *Format) Lbl() int            { return s.Label }
func (s *Format) Pos() token.Position { return s.Start }

// CallStmt is "CALL name(args)". Alternate-return arguments such as
// *10 are recorded as label references, not expressions.
type CallStmt struct {
	Label      int
	Name       string
	NamePos    token.Position
	Args       []Expression
	AltReturns []int
	AltRetPos  []token.Position
	Start      token.Position
}

func (s *CallStmt) statementNode()      {}
func (s *CallStmt) Lbl() int            { return s.Label }
func (s *CallStmt) Pos() token.Position { return s.Start }

type Return struct {
	Label int
	Start token.Position
}

func (s *Return) statementNode()      {}
func (s *Return) Lbl() int            { return s.Label }
func (s *Return) Pos() token.Position { return s.Start }

type Stop struct {
	Label int
	Start token.Position
}

func (s *Stop) statementNode()      {}
func (s *Stop) Lbl() int            { return s.Label }
func (s *Stop) Pos() token.Position { return s.Start }

type Pause struct {
	Label int
	Start token.Position
}

func (s *Pause) statementNode()      {}
func (s *Pause) Lbl() int            { return s.Label }
func (s *Pause) Pos() token.Position { return s.Start }

// End terminates its program unit.
type End struct {
	Label int
	Start token.Position
}

func (s *End) statementNode()      {}
func (s *End) Lbl() int            { return s.Label }
func (s *End) Pos() token.Position { return s.Start }

// AssignStmt is the label assignment "ASSIGN 10 TO var".
type AssignStmt struct {
	Label     int
	Target    int
	TargetPos token.Position
	Var       string
	VarPos    token.Position
	Start     token.Position
}

func (s *AssignStmt) statementNode()      {}
func (s *AssignStmt) Lbl() int            { return s.Label }
func (s *AssignStmt) Pos() token.Position { return s.Start }

// DeclEntity is one declared name with optional array dimensions and
// CHARACTER length.
type DeclEntity struct {
	Name    string
	NamePos token.Position
	Dims    []Expression
	Length  Expression // CHARACTER name*n form
}

// TypeDecl is an explicit type declaration statement, e.g.
// "INTEGER KOUNT, M(10)" or "CHARACTER*8 NAME".
type TypeDecl struct {
	Label    int
	Type     string     // "INTEGER", "REAL", "DOUBLE PRECISION", ...
	Length   Expression // CHARACTER*n length applying to all entities
	Entities []DeclEntity
	Start    token.Position
}

func (s *TypeDecl) statementNode()      {}
func (s *TypeDecl) Lbl() int            { return s.Label }
func (s *TypeDecl) Pos() token.Position { return s.Start }

type Dimension struct {
	Label    int
	Entities []DeclEntity
	Start    token.Position
}

func (s *Dimension) statementNode()      {}
func (s *Dimension) Lbl() int            { return s.Label }
func (s *Dimension) Pos() token.Position { return s.Start }

// CommonBlock is one "/name/ list" group of a COMMON statement; Name
// is empty for blank COMMON.
type CommonBlock struct {
	Name     string
	Entities []DeclEntity
	Start    token.Position
}

type Common struct {
	Label  int
	Blocks []CommonBlock
	Start  token.Position
}

func (s *Common) statementNode()      {}
func (s *Common) Lbl() int            { return s.Label }
func (s *Common) Pos() token.Position { return s.Start }

// Equivalence is "EQUIVALENCE (a, b), (c(1), d)". Groups hold the
// equivalenced storage references.
type Equivalence struct {
	Label  int
	Groups [][]Expression
	Start  token.Position
}

func (s *Equivalence) statementNode()      {}
func (s *Equivalence) Lbl() int            { return s.Label }
func (s *Equivalence) Pos() token.Position { return s.Start }

// LetterRange is an initial-letter range such as A-H in an IMPLICIT
// statement. A single letter has From == To.
type LetterRange struct {
	From, To byte
}

// ImplicitRule maps letter ranges to a type.
type ImplicitRule struct {
	Type   string
	Ranges []LetterRange
}

// Implicit is "IMPLICIT NONE" or "IMPLICIT type (ranges), ...".
type Implicit struct {
	Label int
	None  bool
	Rules []ImplicitRule
	Start token.Position
}

func (s *Implicit) statementNode()      {}
func (s *Implicit) Lbl() int            { return s.Label }
func (s *Implicit) Pos() token.Position { return s.Start }

// ParamDef is one "name = constant-expr" of a PARAMETER statement.
type ParamDef struct {
	Name    string
	NamePos token.Position
	Value   Expression
}

type Parameter struct {
	Label int
	Defs  []ParamDef
	Start token.Position
}

func (s *Parameter) statementNode()      {}
func (s *Parameter) Lbl() int            { return s.Label }
func (s *Parameter) Pos() token.Position { return s.Start }

// External lists names declared as external procedures.
type External struct {
	Label   int
	Names   []string
	NamePos []token.Position
	Start   token.Position
}

func (s *External) statementNode()      {}
func (s *External) Lbl() int            { return s.Label }
func (s *External) Pos() token.Position { return s.Start }

// Intrinsic lists names declared as intrinsic procedures.
type Intrinsic struct {
	Label   int
	Names   []string
	NamePos []token.Position
	Start   token.Position
}

func (s *Intrinsic) statementNode()      {}
func (s *Intrinsic) Lbl() int            { return s.Label }
func (s *Intrinsic) Pos() token.Position { return s.Start }

type Save struct {
	Label int
	Names []string
	Start token.Position
}

func (s *Save) statementNode()      {}
func (s *Save) Lbl() int            { return s.Label }
func (s *Save) Pos() token.Position { return s.Start }

// Data is a DATA statement; only the initialized names are kept, the
// value lists are skipped.
type Data struct {
	Label int
	Names []Expression
	Start token.Position
}

func (s *Data) statementNode()      {}
func (s *Data) Lbl() int            { return s.Label }
func (s *Data) Pos() token.Position { return s.Start }

// Entry is an ENTRY statement inside a subprogram.
type Entry struct {
	Label   int
	Name    string
	Dummies []string
	Start   token.Position
}

func (s *Entry) statementNode()      {}
func (s *Entry) Lbl() int            { return s.Label }
func (s *Entry) Pos() token.Position { return s.Start }

// IO is a READ, WRITE, PRINT, OPEN, CLOSE, INQUIRE, BACKSPACE, REWIND
// or ENDFILE statement. FormatLabel is the referenced FORMAT label (0
// when none); Control holds the control-list value expressions and
// Items the data-transfer list.
type IO struct {
	Label       int
	Op          token.Token
	FormatLabel int
	FormatPos   token.Position
	// RefLabels are ERR= and END= branch targets.
	RefLabels []int
	RefPos    []token.Position
	Control   []Expression
	Items     []Expression
	Start     token.Position
}

func (s *IO) statementNode()      {}
func (s *IO) Lbl() int            { return s.Label }
func (s *IO) Pos() token.Position { return s.Start }

// Expressions.

// Ident is a variable (or bare procedure) reference.
type Ident struct {
	Name  string
	Start token.Position
}

func (e *Ident) expressionNode()     {}
func (e *Ident) Pos() token.Position { return e.Start }

type IntLit struct {
	Value int64
	Raw   string
	Start token.Position
}

func (e *IntLit) expressionNode()     {}
func (e *IntLit) Pos() token.Position { return e.Start }

type RealLit struct {
	Raw   string
	Start token.Position
}

func (e *RealLit) expressionNode()     {}
func (e *RealLit) Pos() token.Position { return e.Start }

type StringLit struct {
	Value string
	Start token.Position
}

func (e *StringLit) expressionNode()     {}
func (e *StringLit) Pos() token.Position { return e.Start }

type LogicalLit struct {
	Value bool
	Start token.Position
}

func (e *LogicalLit) expressionNode()     {}
func (e *LogicalLit) Pos() token.Position { return e.Start }

// Binary is a binary operation; its position is its left operand's.
type Binary struct {
	Op    token.Token
	Left  Expression
	Right Expression
}

func (e *Binary) expressionNode()     {}
func (e *Binary) Pos() token.Position { return e.Left.Pos() }

type Unary struct {
	Op    token.Token
	OpPos token.Position
	X     Expression
}

func (e *Unary) expressionNode()     {}
func (e *Unary) Pos() token.Position { return e.OpPos }

// FunctionCall is "name(args)" in expression position. Without
// declarations it may really be an array element; the analyzer treats
// both as a use of the name.
type FunctionCall struct {
	Name  string
	Args  []Expression
	Start token.Position
}

func (e *FunctionCall) expressionNode()     {}
func (e *FunctionCall) Pos() token.Position { return e.Start }

// ArrayRef is "name(subscripts)" in assignment-target position.
type ArrayRef struct {
	Name  string
	Subs  []Expression
	Start token.Position
}

func (e *ArrayRef) expressionNode()     {}
func (e *ArrayRef) Pos() token.Position { return e.Start }

type Paren struct {
	X     Expression
	Start token.Position
}

func (e *Paren) expressionNode()     {}
func (e *Paren) Pos() token.Position { return e.Start }

// RangeExpr is a substring or subscript range "from:to"; either bound
// may be nil.
type RangeExpr struct {
	From  Expression
	To    Expression
	Start token.Position
}

func (e *RangeExpr) expressionNode()     {}
func (e *RangeExpr) Pos() token.Position { return e.Start }

// ImpliedDo is an I/O or DATA list implied-DO loop
// "(items, var = from, to [, step])".
type ImpliedDo struct {
	Items  []Expression
	Var    string
	VarPos token.Position
	From   Expression
	To     Expression
	Step   Expression // nil when omitted
	Start  token.Position
}

func (e *ImpliedDo) expressionNode()     {}
func (e *ImpliedDo) Pos() token.Position { return e.Start }
