package f77lint

import (
	"strconv"
	"strings"

	"github.com/uchchwhash/f77lint/ast"
	"github.com/uchchwhash/f77lint/combinator"
	"github.com/uchchwhash/f77lint/token"
)

type (
	tokP  = combinator.Parser[token.Tok, token.Tok]
	exprP = combinator.Parser[token.Tok, ast.Expression]
)

// match consumes one token of the given kind.
func match(k token.Token) tokP {
	return combinator.Satisfy(k.String(), func(t token.Tok) bool { return t.Kind == k })
}

// matchAny consumes one token whose kind is any of kinds.
func matchAny(kinds ...token.Token) tokP {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	name := strings.Join(names, " or ")
	return combinator.Satisfy(name, func(t token.Tok) bool {
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	})
}

// argsOpt distinguishes an absent argument list from an empty one.
type argsOpt struct {
	present bool
	items   []ast.Expression
}

// exprGrammar holds the expression-level parsers shared by the
// statement grammar.
type exprGrammar struct {
	expr     exprP
	argItem  exprP // expression or subscript/substring range
	ioItem   exprP // expression or implied-DO
	dataItem exprP // name reference or implied-DO, no operators
	args     combinator.Parser[token.Tok, argsOpt]
	nameRef  exprP // identifier with optional subscript list
}

// opRight is one "operator, right operand" step of a left-associative
// chain.
type opRight struct {
	op    token.Tok
	right ast.Expression
}

// leftChain parses operand (op operand)* folding left-associatively.
func leftChain(operand exprP, ops ...token.Token) exprP {
	pair := combinator.Seq2(matchAny(ops...), operand, func(op token.Tok, r ast.Expression) opRight {
		return opRight{op: op, right: r}
	})
	return combinator.Seq2(operand, combinator.Many(combinator.Attempt(pair)),
		func(first ast.Expression, rest []opRight) ast.Expression {
			e := first
			for _, p := range rest {
				e = &ast.Binary{Op: p.op.Kind, Left: e, Right: p.right}
			}
			return e
		})
}

// buildExprGrammar constructs the Fortran 77 expression grammar.
// Binding from tightest to loosest: ** (right-associative), unary
// sign, * and /, binary + - and //, relational operators, .NOT.,
// .AND., .OR., .EQV. and .NEQV. Mutually recursive rules are tied
// together with Lazy so construction order does not matter.
func buildExprGrammar() *exprGrammar {
	g := &exprGrammar{}
	exprRef := combinator.Lazy(func() exprP { return g.expr })

	intLit := combinator.Map(match(token.IntLit), func(t token.Tok) ast.Expression {
		v, _ := strconv.ParseInt(t.Lit, 10, 64)
		return &ast.IntLit{Value: v, Raw: t.Lit, Start: t.Pos}
	})
	realLit := combinator.Map(match(token.RealLit), func(t token.Tok) ast.Expression {
		return &ast.RealLit{Raw: t.Lit, Start: t.Pos}
	})
	stringLit := combinator.Map(match(token.StringLit), func(t token.Tok) ast.Expression {
		return &ast.StringLit{Value: t.Lit, Start: t.Pos}
	})
	logicalLit := combinator.Map(matchAny(token.TRUE, token.FALSE), func(t token.Tok) ast.Expression {
		return &ast.LogicalLit{Value: t.Kind == token.TRUE, Start: t.Pos}
	})

	// Subscript or substring range: [expr] : [expr]
	rangeItem := combinator.Seq3(
		combinator.Optional(combinator.Attempt(exprRef)),
		match(token.Colon),
		combinator.Optional(combinator.Attempt(exprRef)),
		func(from ast.Expression, colon token.Tok, to ast.Expression) ast.Expression {
			start := colon.Pos
			if from != nil {
				start = from.Pos()
			}
			return &ast.RangeExpr{From: from, To: to, Start: start}
		})
	g.argItem = combinator.Label(combinator.Choice(rangeItem, exprRef), "expression")

	g.args = combinator.Map(
		combinator.Seq3(match(token.LParen),
			combinator.SepBy(g.lazyArgItem(), match(token.Comma)),
			match(token.RParen),
			func(_ token.Tok, items []ast.Expression, _ token.Tok) []ast.Expression {
				return items
			}),
		func(items []ast.Expression) argsOpt { return argsOpt{present: true, items: items} })

	identTok := match(token.Identifier)

	// name or name(args): a call in expression position, possibly an
	// array element; they are indistinguishable without declarations.
	g.nameRef = combinator.Seq2(identTok, combinator.Optional(combinator.Attempt(g.args)),
		func(id token.Tok, args argsOpt) ast.Expression {
			if !args.present {
				return &ast.Ident{Name: id.Lit, Start: id.Pos}
			}
			return &ast.FunctionCall{Name: id.Lit, Args: args.items, Start: id.Pos}
		})

	paren := combinator.Seq3(match(token.LParen), exprRef, match(token.RParen),
		func(lp token.Tok, x ast.Expression, _ token.Tok) ast.Expression {
			return &ast.Paren{X: x, Start: lp.Pos}
		})

	primary := combinator.Label(combinator.Choice(
		realLit, intLit, stringLit, logicalLit, g.nameRef, paren,
	), "expression")

	var power exprP
	powerRef := combinator.Lazy(func() exprP { return power })
	power = combinator.Seq2(primary,
		combinator.Optional(combinator.Attempt(combinator.Then(match(token.DoubleStar), powerRef))),
		func(base, exp ast.Expression) ast.Expression {
			if exp == nil {
				return base
			}
			return &ast.Binary{Op: token.DoubleStar, Left: base, Right: exp}
		})

	var unary exprP
	unaryRef := combinator.Lazy(func() exprP { return unary })
	unary = combinator.Choice(
		combinator.Seq2(matchAny(token.Plus, token.Minus), unaryRef,
			func(op token.Tok, x ast.Expression) ast.Expression {
				return &ast.Unary{Op: op.Kind, OpPos: op.Pos, X: x}
			}),
		power,
	)

	mul := leftChain(unary, token.Asterisk, token.Slash)
	add := leftChain(mul, token.Plus, token.Minus, token.StringConcat)

	// Relational operators do not associate: at most one comparison.
	rel := combinator.Seq2(add,
		combinator.Optional(combinator.Attempt(combinator.Seq2(
			matchAny(token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE),
			add,
			func(op token.Tok, r ast.Expression) opRight { return opRight{op: op, right: r} }))),
		func(l ast.Expression, p opRight) ast.Expression {
			if p.right == nil {
				return l
			}
			return &ast.Binary{Op: p.op.Kind, Left: l, Right: p.right}
		})

	var not exprP
	notRef := combinator.Lazy(func() exprP { return not })
	not = combinator.Choice(
		combinator.Seq2(match(token.NOT), notRef, func(op token.Tok, x ast.Expression) ast.Expression {
			return &ast.Unary{Op: token.NOT, OpPos: op.Pos, X: x}
		}),
		rel,
	)

	and := leftChain(not, token.AND)
	or := leftChain(and, token.OR)
	g.expr = leftChain(or, token.EQV, token.NEQV)

	// Implied-DO loop for I/O and DATA lists:
	// (items, var = from, to [, step])
	ioItemRef := combinator.Lazy(func() exprP { return g.ioItem })
	impliedDo := combinator.Seq3(
		match(token.LParen),
		combinator.Many1(combinator.Attempt(combinator.FollowedBy(ioItemRef, match(token.Comma)))),
		combinator.Seq3(
			combinator.Seq2(identTok, combinator.Then(match(token.Equals), exprRef),
				func(id token.Tok, from ast.Expression) opRight {
					return opRight{op: id, right: from}
				}),
			combinator.Then(match(token.Comma), exprRef),
			combinator.Seq2(combinator.Optional(combinator.Attempt(combinator.Then(match(token.Comma), exprRef))), match(token.RParen),
				func(step ast.Expression, _ token.Tok) ast.Expression { return step }),
			func(ctl opRight, to, step ast.Expression) *ast.ImpliedDo {
				return &ast.ImpliedDo{Var: ctl.op.Lit, VarPos: ctl.op.Pos, From: ctl.right, To: to, Step: step}
			}),
		func(lp token.Tok, items []ast.Expression, loop *ast.ImpliedDo) ast.Expression {
			loop.Items = items
			loop.Start = lp.Pos
			return loop
		})
	g.ioItem = combinator.Choice(impliedDo, exprRef)

	// DATA name lists must not parse operators: "A /1.0/" is the name A
	// followed by its value list, not a division.
	g.dataItem = combinator.Choice(impliedDo, g.nameRef)

	return g
}

// lazyArgItem defers to argItem, which is not yet assigned when args
// is built.
func (g *exprGrammar) lazyArgItem() exprP {
	return combinator.Lazy(func() exprP { return g.argItem })
}
