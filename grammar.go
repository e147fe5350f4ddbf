package f77lint

import (
	"strconv"

	"github.com/uchchwhash/f77lint/ast"
	"github.com/uchchwhash/f77lint/combinator"
	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/token"
)

// stmtKind classifies what the statement parser produced: a complete
// statement, a program unit header, or a structural marker the unit
// assembler folds into a block construct.
type stmtKind int

const (
	stmtPlain stmtKind = iota
	stmtHeader
	stmtIfThen
	stmtElseIf
	stmtElse
	stmtEndIf
	stmtDoBlock
	stmtEndDo
	stmtEnd
)

// unitHeader is a parsed PROGRAM, SUBROUTINE, FUNCTION or BLOCK DATA
// statement.
type unitHeader struct {
	kind       ast.UnitKind
	name       string
	resultType string
	dummies    []string
	dummyPos   []token.Position
	pos        token.Position
}

// labelRef is a statement label occurrence with its position. ok
// distinguishes an absent optional label from label zero.
type labelRef struct {
	val int
	pos token.Position
	ok  bool
}

// stmtResult is the outcome of parsing one logical statement.
type stmtResult struct {
	kind   stmtKind
	stmt   ast.Statement  // stmtPlain
	cond   ast.Expression // stmtIfThen, stmtElseIf
	do     *ast.DoLoop    // stmtDoBlock
	header *unitHeader    // stmtHeader
	label  labelRef       // columns 1-5 label, if any
	pos    token.Position
}

type (
	stmtP   = combinator.Parser[token.Tok, stmtResult]
	astStmt = combinator.Parser[token.Tok, ast.Statement]
)

// grammar bundles the parsers built once at package init.
type grammar struct {
	exprs     *exprGrammar
	statement stmtP
}

var gram = buildGrammar()

func plainStmt(s ast.Statement) stmtResult {
	return stmtResult{kind: stmtPlain, stmt: s, pos: s.Pos()}
}

// typeName is a parsed type specification such as INTEGER or
// CHARACTER*8.
type typeName struct {
	name   string
	length ast.Expression
	pos    token.Position
	ok     bool
}

func buildGrammar() *grammar {
	eg := buildExprGrammar()
	g := &grammar{exprs: eg}

	identTok := match(token.Identifier)
	comma := match(token.Comma)
	lparen := match(token.LParen)
	rparen := match(token.RParen)

	labelRefP := combinator.Map(match(token.IntLit), func(t token.Tok) labelRef {
		n, _ := strconv.Atoi(t.Lit)
		return labelRef{val: n, pos: t.Pos, ok: true}
	})
	colLabelP := combinator.Map(match(token.Label), func(t token.Tok) labelRef {
		n, _ := strconv.Atoi(t.Lit)
		return labelRef{val: n, pos: t.Pos, ok: true}
	})

	intLitExpr := combinator.Map(match(token.IntLit), func(t token.Tok) ast.Expression {
		v, _ := strconv.ParseInt(t.Lit, 10, 64)
		return &ast.IntLit{Value: v, Raw: t.Lit, Start: t.Pos}
	})

	// CHARACTER length: *n or *(expr) or *(*).
	lenSpecP := combinator.Choice(
		intLitExpr,
		combinator.Seq3(lparen,
			combinator.Choice(
				combinator.Map(match(token.Asterisk), func(token.Tok) ast.Expression { return nil }),
				eg.expr),
			rparen,
			func(_ token.Tok, e ast.Expression, _ token.Tok) ast.Expression { return e }),
	)

	typeSpecP := combinator.Choice(
		combinator.Seq2(match(token.DOUBLE), match(token.PRECISION),
			func(d, _ token.Tok) typeName {
				return typeName{name: "DOUBLE PRECISION", pos: d.Pos, ok: true}
			}),
		combinator.Seq2(match(token.CHARACTER),
			combinator.Optional(combinator.Attempt(combinator.Then(match(token.Asterisk), lenSpecP))),
			func(c token.Tok, length ast.Expression) typeName {
				return typeName{name: "CHARACTER", length: length, pos: c.Pos, ok: true}
			}),
		combinator.Map(
			combinator.Satisfy("type name", func(t token.Tok) bool {
				return t.Kind.IsTypeKeyword() && t.Kind != token.CHARACTER && t.Kind != token.DOUBLE
			}),
			func(t token.Tok) typeName {
				return typeName{name: t.Kind.String(), pos: t.Pos, ok: true}
			}),
	)

	// Declared entity: name, optional dimensions, optional *length.
	dimItemP := combinator.Choice(
		combinator.Map(match(token.Asterisk), func(t token.Tok) ast.Expression {
			return &ast.Ident{Name: "*", Start: t.Pos}
		}),
		eg.argItem,
	)
	dimsP := combinator.Seq3(lparen, combinator.SepBy1(dimItemP, comma), rparen,
		func(_ token.Tok, dims []ast.Expression, _ token.Tok) []ast.Expression { return dims })
	entityP := combinator.Seq3(identTok,
		combinator.Optional(combinator.Attempt(dimsP)),
		combinator.Optional(combinator.Attempt(combinator.Then(match(token.Asterisk), lenSpecP))),
		func(id token.Tok, dims []ast.Expression, length ast.Expression) ast.DeclEntity {
			return ast.DeclEntity{Name: id.Lit, NamePos: id.Pos, Dims: dims, Length: length}
		})
	entityListP := combinator.SepBy1(entityP, comma)

	typeDeclP := combinator.Seq2(typeSpecP, entityListP,
		func(ts typeName, ents []ast.DeclEntity) ast.Statement {
			return &ast.TypeDecl{Type: ts.name, Length: ts.length, Entities: ents, Start: ts.pos}
		})

	dimensionP := combinator.Seq2(match(token.DIMENSION), entityListP,
		func(k token.Tok, ents []ast.DeclEntity) ast.Statement {
			return &ast.Dimension{Entities: ents, Start: k.Pos}
		})

	// COMMON [/name/] list [[,] /name/ list]...
	type blockName struct {
		name string
		pos  token.Position
		ok   bool
	}
	blockNameP := combinator.Choice(
		combinator.Seq3(match(token.Slash), identTok, match(token.Slash),
			func(s token.Tok, id token.Tok, _ token.Tok) blockName {
				return blockName{name: id.Lit, pos: s.Pos, ok: true}
			}),
		combinator.Map(match(token.StringConcat), func(t token.Tok) blockName {
			return blockName{pos: t.Pos, ok: true}
		}),
	)
	commonGroup := func(bn blockName, ents []ast.DeclEntity) ast.CommonBlock {
		start := bn.pos
		if !bn.ok && len(ents) > 0 {
			start = ents[0].NamePos
		}
		return ast.CommonBlock{Name: bn.name, Entities: ents, Start: start}
	}
	firstGroupP := combinator.Seq2(combinator.Optional(combinator.Attempt(blockNameP)), entityListP, commonGroup)
	moreGroupsP := combinator.Many(combinator.Attempt(combinator.Seq2(
		combinator.Then(combinator.Optional(combinator.Attempt(comma)), blockNameP),
		entityListP, commonGroup)))
	commonP := combinator.Seq3(match(token.COMMON), firstGroupP, moreGroupsP,
		func(k token.Tok, first ast.CommonBlock, rest []ast.CommonBlock) ast.Statement {
			return &ast.Common{Blocks: append([]ast.CommonBlock{first}, rest...), Start: k.Pos}
		})

	equivGroupP := combinator.Seq3(lparen, combinator.SepBy1(eg.expr, comma), rparen,
		func(_ token.Tok, refs []ast.Expression, _ token.Tok) []ast.Expression { return refs })
	equivalenceP := combinator.Seq2(match(token.EQUIVALENCE), combinator.SepBy1(equivGroupP, comma),
		func(k token.Tok, groups [][]ast.Expression) ast.Statement {
			return &ast.Equivalence{Groups: groups, Start: k.Pos}
		})

	// IMPLICIT NONE or IMPLICIT type (letter-ranges), ...
	letterP := combinator.Satisfy("letter", func(t token.Tok) bool {
		return t.Kind == token.Identifier && len(t.Lit) == 1
	})
	letterRangeP := combinator.Seq2(letterP,
		combinator.Optional(combinator.Attempt(combinator.Then(match(token.Minus), letterP))),
		func(from, to token.Tok) ast.LetterRange {
			r := ast.LetterRange{From: from.Lit[0], To: from.Lit[0]}
			if to.Kind == token.Identifier {
				r.To = to.Lit[0]
			}
			return r
		})
	implicitRuleP := combinator.Seq2(typeSpecP,
		combinator.Seq3(lparen, combinator.SepBy1(letterRangeP, comma), rparen,
			func(_ token.Tok, rs []ast.LetterRange, _ token.Tok) []ast.LetterRange { return rs }),
		func(ts typeName, rs []ast.LetterRange) ast.ImplicitRule {
			return ast.ImplicitRule{Type: ts.name, Ranges: rs}
		})
	implicitTailP := combinator.Choice(
		combinator.Map(match(token.NONE), func(token.Tok) *ast.Implicit {
			return &ast.Implicit{None: true}
		}),
		combinator.Map(combinator.SepBy1(implicitRuleP, comma), func(rs []ast.ImplicitRule) *ast.Implicit {
			return &ast.Implicit{Rules: rs}
		}),
	)
	implicitP := combinator.Seq2(match(token.IMPLICIT), implicitTailP,
		func(k token.Tok, im *ast.Implicit) ast.Statement {
			im.Start = k.Pos
			return im
		})

	paramDefP := combinator.Seq3(identTok, match(token.Equals), eg.expr,
		func(id token.Tok, _ token.Tok, v ast.Expression) ast.ParamDef {
			return ast.ParamDef{Name: id.Lit, NamePos: id.Pos, Value: v}
		})
	parameterP := combinator.Seq2(match(token.PARAMETER),
		combinator.Seq3(lparen, combinator.SepBy1(paramDefP, comma), rparen,
			func(_ token.Tok, defs []ast.ParamDef, _ token.Tok) []ast.ParamDef { return defs }),
		func(k token.Tok, defs []ast.ParamDef) ast.Statement {
			return &ast.Parameter{Defs: defs, Start: k.Pos}
		})

	nameList := combinator.SepBy1(identTok, comma)
	externalP := combinator.Seq2(match(token.EXTERNAL), nameList,
		func(k token.Tok, ids []token.Tok) ast.Statement {
			st := &ast.External{Start: k.Pos}
			for _, id := range ids {
				st.Names = append(st.Names, id.Lit)
				st.NamePos = append(st.NamePos, id.Pos)
			}
			return st
		})
	intrinsicP := combinator.Seq2(match(token.INTRINSIC), nameList,
		func(k token.Tok, ids []token.Tok) ast.Statement {
			st := &ast.Intrinsic{Start: k.Pos}
			for _, id := range ids {
				st.Names = append(st.Names, id.Lit)
				st.NamePos = append(st.NamePos, id.Pos)
			}
			return st
		})

	saveItemP := combinator.Choice(
		combinator.Map(identTok, func(t token.Tok) string { return t.Lit }),
		combinator.Seq3(match(token.Slash), identTok, match(token.Slash),
			func(_ token.Tok, id token.Tok, _ token.Tok) string { return id.Lit }),
	)
	saveP := combinator.Seq2(match(token.SAVE),
		combinator.Optional(combinator.Attempt(combinator.SepBy1(saveItemP, comma))),
		func(k token.Tok, names []string) ast.Statement {
			return &ast.Save{Names: names, Start: k.Pos}
		})

	// DATA names /values/ [[,] names /values/]... The value lists are
	// constants only; they are skipped, not modeled.
	dataValP := combinator.Seq3(match(token.Slash),
		combinator.Many(combinator.Satisfy("data value", func(t token.Tok) bool {
			return t.Kind != token.Slash && t.Kind != token.EOS && t.Kind != token.EOF
		})),
		match(token.Slash),
		func(token.Tok, []token.Tok, token.Tok) struct{} { return struct{}{} })
	dataGroupP := combinator.Seq3(
		combinator.Optional(combinator.Attempt(comma)),
		combinator.SepBy1(eg.dataItem, comma),
		dataValP,
		func(_ token.Tok, names []ast.Expression, _ struct{}) []ast.Expression { return names })
	dataP := combinator.Seq2(match(token.DATA), combinator.Many1(combinator.Attempt(dataGroupP)),
		func(k token.Tok, groups [][]ast.Expression) ast.Statement {
			st := &ast.Data{Start: k.Pos}
			for _, g := range groups {
				st.Names = append(st.Names, g...)
			}
			return st
		})

	formatP := combinator.Seq2(match(token.FORMAT),
		combinator.Optional(combinator.Attempt(match(token.StringLit))),
		func(k token.Tok, raw token.Tok) ast.Statement {
			return &ast.Format{Raw: raw.Lit, Start: k.Pos}
		})

	// Unit headers.
	dummyItemP := combinator.Choice(identTok, match(token.Asterisk))
	dummyListP := combinator.Seq3(lparen, combinator.SepBy(dummyItemP, comma), rparen,
		func(_ token.Tok, ds []token.Tok, _ token.Tok) []token.Tok { return ds })
	addDummies := func(h *unitHeader, ds []token.Tok) {
		for _, d := range ds {
			if d.Kind != token.Identifier {
				continue // alternate-return asterisk
			}
			h.dummies = append(h.dummies, d.Lit)
			h.dummyPos = append(h.dummyPos, d.Pos)
		}
	}
	headerResult := func(h *unitHeader) stmtResult {
		return stmtResult{kind: stmtHeader, header: h, pos: h.pos}
	}

	programP := combinator.Seq2(match(token.PROGRAM), identTok,
		func(k, id token.Tok) stmtResult {
			return headerResult(&unitHeader{kind: ast.KindProgram, name: id.Lit, pos: k.Pos})
		})
	subroutineP := combinator.Seq3(match(token.SUBROUTINE), identTok,
		combinator.Optional(combinator.Attempt(dummyListP)),
		func(k, id token.Tok, ds []token.Tok) stmtResult {
			h := &unitHeader{kind: ast.KindSubroutine, name: id.Lit, pos: k.Pos}
			addDummies(h, ds)
			return headerResult(h)
		})
	functionP := combinator.Seq3(
		combinator.Optional(combinator.Attempt(typeSpecP)),
		combinator.Seq2(match(token.FUNCTION), identTok,
			func(f, id token.Tok) [2]token.Tok { return [2]token.Tok{f, id} }),
		combinator.Optional(combinator.Attempt(dummyListP)),
		func(ts typeName, fn [2]token.Tok, ds []token.Tok) stmtResult {
			pos := fn[0].Pos
			if ts.ok {
				pos = ts.pos
			}
			h := &unitHeader{kind: ast.KindFunction, name: fn[1].Lit, resultType: ts.name, pos: pos}
			addDummies(h, ds)
			return headerResult(h)
		})
	blockWordP := combinator.Satisfy("BLOCK", func(t token.Tok) bool {
		return t.Kind == token.Identifier && t.Lit == "BLOCK"
	})
	blockDataP := combinator.Seq3(blockWordP, match(token.DATA),
		combinator.Optional(combinator.Attempt(identTok)),
		func(b token.Tok, _ token.Tok, id token.Tok) stmtResult {
			return headerResult(&unitHeader{kind: ast.KindBlockData, name: id.Lit, pos: b.Pos})
		})

	// Executable statements that can also be a logical-IF body.
	gotoSimpleP := combinator.Seq2(match(token.GOTO), labelRefP,
		func(g token.Tok, l labelRef) ast.Statement {
			return &ast.Goto{Target: l.val, TargetPos: l.pos, Start: g.Pos}
		})
	labelListP := combinator.Seq3(lparen, combinator.SepBy1(labelRefP, comma), rparen,
		func(_ token.Tok, ls []labelRef, _ token.Tok) []labelRef { return ls })
	gotoComputedP := combinator.Seq3(match(token.GOTO), labelListP,
		combinator.Then(combinator.Optional(combinator.Attempt(comma)), eg.expr),
		func(g token.Tok, ls []labelRef, idx ast.Expression) ast.Statement {
			st := &ast.ComputedGoto{Index: idx, Start: g.Pos}
			for _, l := range ls {
				st.Targets = append(st.Targets, l.val)
				st.TargetPos = append(st.TargetPos, l.pos)
			}
			return st
		})
	gotoAssignedP := combinator.Seq3(match(token.GOTO), identTok,
		combinator.Optional(combinator.Attempt(combinator.Then(
			combinator.Optional(combinator.Attempt(comma)), labelListP))),
		func(g token.Tok, v token.Tok, ls []labelRef) ast.Statement {
			st := &ast.ComputedGoto{Index: &ast.Ident{Name: v.Lit, Start: v.Pos}, Start: g.Pos}
			for _, l := range ls {
				st.Targets = append(st.Targets, l.val)
				st.TargetPos = append(st.TargetPos, l.pos)
			}
			return st
		})
	gotoP := combinator.Choice(gotoSimpleP, gotoComputedP, gotoAssignedP)

	continueP := combinator.Map(match(token.CONTINUE), func(t token.Tok) ast.Statement {
		return &ast.Continue{Start: t.Pos}
	})
	returnP := combinator.Seq2(match(token.RETURN),
		combinator.Optional(combinator.Attempt(eg.expr)),
		func(k token.Tok, _ ast.Expression) ast.Statement {
			return &ast.Return{Start: k.Pos}
		})
	stopP := combinator.Seq2(match(token.STOP),
		combinator.Optional(combinator.Attempt(matchAny(token.IntLit, token.StringLit))),
		func(k token.Tok, _ token.Tok) ast.Statement {
			return &ast.Stop{Start: k.Pos}
		})
	pauseP := combinator.Seq2(match(token.PAUSE),
		combinator.Optional(combinator.Attempt(matchAny(token.IntLit, token.StringLit))),
		func(k token.Tok, _ token.Tok) ast.Statement {
			return &ast.Pause{Start: k.Pos}
		})

	type callArg struct {
		expr ast.Expression
		alt  labelRef
	}
	altRetP := combinator.Seq2(matchAny(token.Asterisk, token.Dollar), match(token.IntLit),
		func(_ token.Tok, t token.Tok) callArg {
			n, _ := strconv.Atoi(t.Lit)
			return callArg{alt: labelRef{val: n, pos: t.Pos, ok: true}}
		})
	callArgP := combinator.Choice(altRetP,
		combinator.Map(eg.expr, func(e ast.Expression) callArg { return callArg{expr: e} }))
	callArgsP := combinator.Seq3(lparen, combinator.SepBy(callArgP, comma), rparen,
		func(_ token.Tok, args []callArg, _ token.Tok) []callArg { return args })
	callP := combinator.Seq3(match(token.CALL), identTok,
		combinator.Optional(combinator.Attempt(callArgsP)),
		func(k token.Tok, id token.Tok, args []callArg) ast.Statement {
			st := &ast.CallStmt{Name: id.Lit, NamePos: id.Pos, Start: k.Pos}
			for _, a := range args {
				if a.alt.ok {
					st.AltReturns = append(st.AltReturns, a.alt.val)
					st.AltRetPos = append(st.AltRetPos, a.alt.pos)
				} else {
					st.Args = append(st.Args, a.expr)
				}
			}
			return st
		})

	// ASSIGN label TO var. ASSIGN is not a reserved word; it lexes as
	// an identifier.
	assignWordP := combinator.Satisfy("ASSIGN", func(t token.Tok) bool {
		return t.Kind == token.Identifier && t.Lit == "ASSIGN"
	})
	assignStmtP := combinator.Seq3(assignWordP,
		combinator.FollowedBy(labelRefP, match(token.TO)), identTok,
		func(k token.Tok, l labelRef, v token.Tok) ast.Statement {
			return &ast.AssignStmt{Target: l.val, TargetPos: l.pos, Var: v.Lit, VarPos: v.Pos, Start: k.Pos}
		})

	targetP := combinator.Seq2(identTok, combinator.Optional(combinator.Attempt(eg.args)),
		func(id token.Tok, a argsOpt) ast.Expression {
			if !a.present {
				return &ast.Ident{Name: id.Lit, Start: id.Pos}
			}
			return &ast.ArrayRef{Name: id.Lit, Subs: a.items, Start: id.Pos}
		})
	assignmentP := combinator.Seq3(targetP, match(token.Equals), eg.expr,
		func(t ast.Expression, _ token.Tok, v ast.Expression) ast.Statement {
			return &ast.Assignment{Target: t, Value: v, Start: t.Pos()}
		})

	// I/O statements. ctlItem is one control-list entry; an integer
	// literal value may be a FORMAT, ERR= or END= label reference.
	type ctlItem struct {
		key string
		val ast.Expression
		lab labelRef
		pos token.Position
	}
	ctlValP := combinator.Choice(
		combinator.Map(match(token.Asterisk), func(t token.Tok) ctlItem {
			return ctlItem{pos: t.Pos}
		}),
		combinator.Map(eg.expr, func(e ast.Expression) ctlItem {
			it := ctlItem{val: e, pos: e.Pos()}
			if n, ok := e.(*ast.IntLit); ok {
				it.lab = labelRef{val: int(n.Value), pos: n.Start, ok: true}
			}
			return it
		}),
	)
	// Control keys like END lex as keywords, not identifiers, so any
	// keyword is accepted as a key. The scanner keeps the spelling in
	// Lit for keywords.
	ioKeyP := combinator.Satisfy("control keyword", func(t token.Tok) bool {
		return t.Kind == token.Identifier || t.Kind.IsKeyword()
	})
	keyedP := combinator.Seq3(ioKeyP, match(token.Equals), ctlValP,
		func(k token.Tok, _ token.Tok, v ctlItem) ctlItem {
			v.key = k.Lit
			v.pos = k.Pos
			return v
		})
	ctlItemP := combinator.Choice(keyedP, ctlValP)
	ctlListP := combinator.Seq3(lparen, combinator.SepBy1(ctlItemP, comma), rparen,
		func(_ token.Tok, items []ctlItem, _ token.Tok) []ctlItem { return items })
	ioListP := combinator.SepBy1(eg.ioItem, comma)

	// PRINT is in the I/O keyword block but never takes a control
	// list; without a '(' it falls through to the short form below.
	ioParenP := combinator.Seq3(
		combinator.Satisfy("I/O statement", func(t token.Tok) bool { return t.Kind.IsIOKeyword() }),
		ctlListP,
		combinator.Optional(combinator.Attempt(ioListP)),
		func(op token.Tok, ctl []ctlItem, items []ast.Expression) ast.Statement {
			io := &ast.IO{Op: op.Kind, Items: items, Start: op.Pos}
			for i, it := range ctl {
				switch it.key {
				case "FMT":
					if it.lab.ok {
						io.FormatLabel, io.FormatPos = it.lab.val, it.lab.pos
						continue
					}
				case "ERR", "END":
					if it.lab.ok {
						io.RefLabels = append(io.RefLabels, it.lab.val)
						io.RefPos = append(io.RefPos, it.lab.pos)
						continue
					}
				case "":
					// Second positional item of READ/WRITE is the format.
					if i == 1 && it.lab.ok && (op.Kind == token.READ || op.Kind == token.WRITE) {
						io.FormatLabel, io.FormatPos = it.lab.val, it.lab.pos
						continue
					}
				}
				if it.val != nil {
					io.Control = append(io.Control, it.val)
				}
			}
			return io
		})
	type fmtSpec struct {
		lab  labelRef
		expr ast.Expression
	}
	fmtSpecP := combinator.Choice(
		combinator.Map(labelRefP, func(l labelRef) fmtSpec { return fmtSpec{lab: l} }),
		combinator.Map(match(token.Asterisk), func(token.Tok) fmtSpec { return fmtSpec{} }),
		combinator.Map(eg.expr, func(e ast.Expression) fmtSpec { return fmtSpec{expr: e} }),
	)
	ioShortP := combinator.Seq3(matchAny(token.PRINT, token.READ), fmtSpecP,
		combinator.Optional(combinator.Attempt(combinator.Then(comma, ioListP))),
		func(op token.Tok, f fmtSpec, items []ast.Expression) ast.Statement {
			io := &ast.IO{Op: op.Kind, Items: items, Start: op.Pos}
			if f.lab.ok {
				io.FormatLabel, io.FormatPos = f.lab.val, f.lab.pos
			} else if f.expr != nil {
				io.Control = append(io.Control, f.expr)
			}
			return io
		})
	ioUnitP := combinator.Seq2(matchAny(token.BACKSPACE, token.REWIND, token.ENDFILE), eg.expr,
		func(op token.Tok, unit ast.Expression) ast.Statement {
			return &ast.IO{Op: op.Kind, Control: []ast.Expression{unit}, Start: op.Pos}
		})
	ioP := combinator.Choice(ioParenP, ioShortP, ioUnitP)

	entryP := combinator.Seq3(match(token.ENTRY), identTok,
		combinator.Optional(combinator.Attempt(dummyListP)),
		func(k token.Tok, id token.Tok, ds []token.Tok) ast.Statement {
			st := &ast.Entry{Name: id.Lit, Start: k.Pos}
			for _, d := range ds {
				if d.Kind == token.Identifier {
					st.Dummies = append(st.Dummies, d.Lit)
				}
			}
			return st
		})

	simpleP := combinator.Choice(
		callP, gotoP, continueP, returnP, stopP, pauseP, ioP,
		assignStmtP, assignmentP,
	)

	// IF has three forms that share the parenthesized condition: block
	// IF (THEN), arithmetic IF (three labels) and logical IF (an
	// embedded statement).
	condP := combinator.Seq3(lparen, eg.expr, rparen,
		func(_ token.Tok, c ast.Expression, _ token.Tok) ast.Expression { return c })
	type ifTail struct {
		then  bool
		arith [3]labelRef
		body  ast.Statement
	}
	ifTailP := combinator.Choice(
		combinator.Map(match(token.THEN), func(token.Tok) ifTail { return ifTail{then: true} }),
		combinator.Seq3(labelRefP, combinator.Then(comma, labelRefP), combinator.Then(comma, labelRefP),
			func(a, b, c labelRef) ifTail { return ifTail{arith: [3]labelRef{a, b, c}} }),
		combinator.Map(simpleP, func(s ast.Statement) ifTail { return ifTail{body: s} }),
	)
	ifP := combinator.Seq3(match(token.IF), condP, ifTailP,
		func(k token.Tok, cond ast.Expression, tail ifTail) stmtResult {
			switch {
			case tail.then:
				return stmtResult{kind: stmtIfThen, cond: cond, pos: k.Pos}
			case tail.body != nil:
				return plainStmt(&ast.LogicalIf{Cond: cond, Body: tail.body, Start: k.Pos})
			default:
				st := &ast.ArithmeticIf{Cond: cond, Start: k.Pos}
				for i, l := range tail.arith {
					st.Branches[i] = l.val
					st.BranchPos[i] = l.pos
				}
				return plainStmt(st)
			}
		})

	elseifP := combinator.Seq3(match(token.ELSEIF), condP, match(token.THEN),
		func(k token.Tok, c ast.Expression, _ token.Tok) stmtResult {
			return stmtResult{kind: stmtElseIf, cond: c, pos: k.Pos}
		})
	elseP := combinator.Map(match(token.ELSE), func(t token.Tok) stmtResult {
		return stmtResult{kind: stmtElse, pos: t.Pos}
	})
	endifP := combinator.Map(match(token.ENDIF), func(t token.Tok) stmtResult {
		return stmtResult{kind: stmtEndIf, pos: t.Pos}
	})
	enddoP := combinator.Map(match(token.ENDDO), func(t token.Tok) stmtResult {
		return stmtResult{kind: stmtEndDo, pos: t.Pos}
	})
	endP := combinator.Map(match(token.END), func(t token.Tok) stmtResult {
		return stmtResult{kind: stmtEnd, pos: t.Pos}
	})

	// DO: "DO label [,] var = init, limit [, step]" keeps its body flat
	// and names its terminal statement; without the label the loop runs
	// to a matching END DO.
	doCtlP := combinator.Seq3(
		combinator.FollowedBy(identTok, match(token.Equals)),
		eg.expr,
		combinator.Seq2(combinator.Then(comma, eg.expr),
			combinator.Optional(combinator.Attempt(combinator.Then(comma, eg.expr))),
			func(limit, step ast.Expression) [2]ast.Expression {
				return [2]ast.Expression{limit, step}
			}),
		func(v token.Tok, init ast.Expression, ls [2]ast.Expression) *ast.DoLoop {
			return &ast.DoLoop{Var: v.Lit, VarPos: v.Pos, Init: init, Limit: ls[0], Step: ls[1]}
		})
	doP := combinator.Seq3(match(token.DO),
		combinator.FollowedBy(
			combinator.Optional(combinator.Attempt(labelRefP)),
			combinator.Optional(combinator.Attempt(comma))),
		doCtlP,
		func(k token.Tok, end labelRef, loop *ast.DoLoop) stmtResult {
			loop.Start = k.Pos
			if end.ok {
				loop.EndLabel = end.val
				loop.EndLabelPos = end.pos
				return plainStmt(loop)
			}
			return stmtResult{kind: stmtDoBlock, do: loop, pos: k.Pos}
		})

	wrap := func(p astStmt) stmtP {
		return combinator.Map(p, plainStmt)
	}

	bodyP := combinator.Choice(
		programP, subroutineP, functionP, blockDataP,
		ifP, elseifP, elseP, endifP, doP, enddoP, endP,
		wrap(formatP), wrap(implicitP), wrap(parameterP), wrap(dimensionP),
		wrap(commonP), wrap(equivalenceP), wrap(externalP), wrap(intrinsicP),
		wrap(saveP), wrap(dataP), wrap(entryP), wrap(typeDeclP),
		wrap(simpleP),
	)

	g.statement = combinator.Seq3(
		combinator.Optional(combinator.Attempt(colLabelP)),
		bodyP,
		match(token.EOS),
		func(lbl labelRef, res stmtResult, _ token.Tok) stmtResult {
			res.label = lbl
			if lbl.ok && res.kind == stmtPlain {
				setLabel(res.stmt, lbl.val)
			}
			return res
		})

	return g
}

// setLabel attaches a columns 1-5 statement label to a parsed
// statement.
func setLabel(s ast.Statement, n int) {
	switch st := s.(type) {
	case *ast.Assignment:
		st.Label = n
	case *ast.Goto:
		st.Label = n
	case *ast.ComputedGoto:
		st.Label = n
	case *ast.ArithmeticIf:
		st.Label = n
	case *ast.LogicalIf:
		st.Label = n
	case *ast.DoLoop:
		st.Label = n
	case *ast.Continue:
		st.Label = n
	case *ast.Format:
		st.Label = n
	case *ast.CallStmt:
		st.Label = n
	case *ast.Return:
		st.Label = n
	case *ast.Stop:
		st.Label = n
	case *ast.Pause:
		st.Label = n
	case *ast.End:
		st.Label = n
	case *ast.AssignStmt:
		st.Label = n
	case *ast.TypeDecl:
		st.Label = n
	case *ast.Dimension:
		st.Label = n
	case *ast.Common:
		st.Label = n
	case *ast.Equivalence:
		st.Label = n
	case *ast.Implicit:
		st.Label = n
	case *ast.Parameter:
		st.Label = n
	case *ast.External:
		st.Label = n
	case *ast.Intrinsic:
		st.Label = n
	case *ast.Save:
		st.Label = n
	case *ast.Data:
		st.Label = n
	case *ast.Entry:
		st.Label = n
	case *ast.IO:
		st.Label = n
	case *ast.Bad:
		st.Label = n
	}
}

// maxParseErrors bounds error recovery so a hopeless input does not
// produce a diagnostic per token.
const maxParseErrors = 50

// Parser assembles the token stream of one source file into program
// units. Statement-level parse failures are reported and recovery
// resynchronizes at the next end of statement.
type Parser struct {
	file  string
	toks  []token.Tok
	diags []diag.Diagnostic
	nerr  int
}

func NewParser(file string, toks []token.Tok) *Parser {
	return &Parser{file: file, toks: toks}
}

// openBlock is one unterminated block construct on the assembly stack.
type openBlock struct {
	blockIf *ast.BlockIf
	doLoop  *ast.DoLoop
	inElse  bool
}

// section returns the statement list an enclosed statement belongs to.
func (b *openBlock) section() *[]ast.Statement {
	if b.doLoop != nil {
		return &b.doLoop.Body
	}
	bi := b.blockIf
	switch {
	case b.inElse:
		return &bi.Else
	case len(bi.ElseIfs) > 0:
		return &bi.ElseIfs[len(bi.ElseIfs)-1].Body
	default:
		return &bi.Then
	}
}

// ParseFile parses the whole token stream and returns the program
// units along with the syntax diagnostics.
func (p *Parser) ParseFile() ([]*ast.ProgramUnit, []diag.Diagnostic) {
	st := combinator.NewState(p.toks)
	var (
		units []*ast.ProgramUnit
		cur   *ast.ProgramUnit
		stack []openBlock
	)

	appendStmt := func(s ast.Statement) {
		if cur == nil {
			// Statements before any header belong to an unnamed main
			// program.
			cur = &ast.ProgramUnit{Kind: ast.KindProgram, Start: s.Pos()}
		}
		if len(stack) > 0 {
			sec := stack[len(stack)-1].section()
			*sec = append(*sec, s)
		} else {
			cur.Body = append(cur.Body, s)
		}
	}
	closeUnit := func(endPos token.Position) {
		cur.EndPos = endPos
		units = append(units, cur)
		cur = nil
		stack = stack[:0]
	}
	errorf := func(pos token.Position, format string, args ...any) {
		p.diags = append(p.diags, diag.Errorf(diag.CodeParse, pos, format, args...))
	}

	for {
		t, ok := st.Peek()
		if !ok || t.Kind == token.EOF {
			break
		}
		if t.Kind == token.EOS {
			st = st.At(st.Offset() + 1)
			continue
		}

		r := gram.statement(st)
		if !r.Ok() {
			pos := p.posAt(r.Err.Off)
			errorf(pos, "%s", r.Err.Error())
			appendStmt(&ast.Bad{Start: pos})
			p.nerr++
			if p.nerr >= maxParseErrors {
				errorf(pos, "too many syntax errors; giving up on %s", p.file)
				st = st.At(len(p.toks))
				break
			}
			st = p.resync(st, r.Err.Off)
			continue
		}
		st = r.State
		res := r.Value

		// A labeled block boundary still defines its label.
		if res.label.ok && res.kind != stmtPlain && res.kind != stmtEnd &&
			res.kind != stmtIfThen && res.kind != stmtDoBlock && res.kind != stmtHeader {
			appendStmt(&ast.Continue{Label: res.label.val, Start: res.label.pos})
		}

		switch res.kind {
		case stmtPlain:
			appendStmt(res.stmt)

		case stmtHeader:
			if cur != nil {
				errorf(res.pos, "%s statement before END of enclosing unit", res.header.kind)
				closeUnit(res.pos)
			}
			cur = &ast.ProgramUnit{
				Kind:       res.header.kind,
				Name:       res.header.name,
				ResultType: res.header.resultType,
				Dummies:    res.header.dummies,
				DummyPos:   res.header.dummyPos,
				Start:      res.pos,
			}

		case stmtIfThen:
			bi := &ast.BlockIf{Label: res.label.val, Cond: res.cond, Start: res.pos}
			appendStmt(bi)
			stack = append(stack, openBlock{blockIf: bi})

		case stmtElseIf:
			if n := len(stack); n > 0 && stack[n-1].blockIf != nil && !stack[n-1].inElse {
				bi := stack[n-1].blockIf
				bi.ElseIfs = append(bi.ElseIfs, ast.ElseIf{Cond: res.cond, Start: res.pos})
			} else {
				errorf(res.pos, "ELSE IF without a matching block IF")
			}

		case stmtElse:
			if n := len(stack); n > 0 && stack[n-1].blockIf != nil && !stack[n-1].inElse {
				stack[n-1].inElse = true
			} else {
				errorf(res.pos, "ELSE without a matching block IF")
			}

		case stmtEndIf:
			if n := len(stack); n > 0 && stack[n-1].blockIf != nil {
				stack = stack[:n-1]
			} else {
				errorf(res.pos, "END IF without a matching block IF")
			}

		case stmtDoBlock:
			res.do.Label = res.label.val
			appendStmt(res.do)
			stack = append(stack, openBlock{doLoop: res.do})

		case stmtEndDo:
			if n := len(stack); n > 0 && stack[n-1].doLoop != nil {
				stack = stack[:n-1]
			} else {
				errorf(res.pos, "END DO without a matching DO")
			}

		case stmtEnd:
			if len(stack) > 0 {
				errorf(res.pos, "END inside an unterminated DO or IF construct")
				stack = stack[:0]
			}
			appendStmt(&ast.End{Label: res.label.val, Start: res.pos})
			closeUnit(res.pos)
		}
	}

	if cur != nil {
		pos := p.posAt(len(p.toks) - 1)
		errorf(pos, "missing END statement")
		closeUnit(pos)
	}
	return units, p.diags
}

// posAt maps a token offset to a source position, clamping past-the-end
// offsets onto the final token.
func (p *Parser) posAt(off int) token.Position {
	if len(p.toks) == 0 {
		return token.Position{File: p.file, Line: 1, Col: 1}
	}
	if off >= len(p.toks) {
		off = len(p.toks) - 1
	}
	if off < 0 {
		off = 0
	}
	return p.toks[off].Pos
}

// resync skips to just past the next end of statement so one malformed
// statement yields one diagnostic.
func (p *Parser) resync(st combinator.State[token.Tok], from int) combinator.State[token.Tok] {
	i := from
	if i < st.Offset() {
		i = st.Offset()
	}
	for i < len(p.toks) && p.toks[i].Kind != token.EOS && p.toks[i].Kind != token.EOF {
		i++
	}
	if i < len(p.toks) && p.toks[i].Kind == token.EOS {
		i++
	}
	return st.At(i)
}
