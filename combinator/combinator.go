// Package combinator provides generic parser combinator primitives:
// sequencing, ordered choice, repetition, mapping and error-position
// tracking over an arbitrary token type. A parser is a pure function
// from a State to a Result; failures record the furthest position
// reached across all attempted alternatives so top-level reporting can
// point at the most specific plausible failure location.
package combinator

import "strings"

// State is an immutable cursor into a token stream. Combinators return
// a new State on success and leave the one they were given untouched.
type State[T any] struct {
	toks    []T
	off     int
	deepest *deepestFailure
}

// deepestFailure is the shared furthest-failure accumulator for one
// parse. It is the only mutable structure threaded through States and
// is write-only: records never regress to an earlier offset.
type deepestFailure struct {
	off      int
	expected []string
}

// NewState returns a State positioned at the first token of toks.
func NewState[T any](toks []T) State[T] {
	return State[T]{toks: toks, deepest: &deepestFailure{off: -1}}
}

// Offset returns the index of the next token to be consumed.
func (s State[T]) Offset() int { return s.off }

// Done reports whether all input has been consumed.
func (s State[T]) Done() bool { return s.off >= len(s.toks) }

// Peek returns the next token without consuming it.
func (s State[T]) Peek() (t T, ok bool) {
	if s.Done() {
		return t, false
	}
	return s.toks[s.off], true
}

// At returns a copy of s positioned at token offset off. Error
// recovery uses it to resynchronize past a statement boundary after a
// failed parse.
func (s State[T]) At(off int) State[T] {
	if off > len(s.toks) {
		off = len(s.toks)
	}
	s.off = off
	return s
}

// Deepest returns the furthest failure recorded anywhere during the
// parse: the token offset reached and the names expected there.
// The offset is -1 if no failure has been recorded.
func (s State[T]) Deepest() (off int, expected []string) {
	return s.deepest.off, s.deepest.expected
}

// Failure describes a parse failure at a token offset.
type Failure struct {
	Off      int
	Expected []string
}

func (f *Failure) Error() string {
	if len(f.Expected) == 0 {
		return "parse failure"
	}
	return "expected " + strings.Join(f.Expected, " or ")
}

// Result is the outcome of applying a Parser: a value paired with the
// state after it on success, or a Failure on error. On failure State
// is wherever the parser stopped; callers that want the pre-parse
// position back must use Attempt.
type Result[T, V any] struct {
	Value V
	State State[T]
	Err   *Failure
}

// Ok reports whether the parse step succeeded.
func (r Result[T, V]) Ok() bool { return r.Err == nil }

// Parser is a pure function from a State to a Result.
type Parser[T, V any] func(State[T]) Result[T, V]

func fail[T, V any](s State[T], expected ...string) Result[T, V] {
	d := s.deepest
	switch {
	case s.off > d.off:
		d.off = s.off
		d.expected = append(d.expected[:0], expected...)
	case s.off == d.off:
		d.expected = append(d.expected, expected...)
	}
	return Result[T, V]{State: s, Err: &Failure{Off: s.off, Expected: expected}}
}

// Satisfy consumes a single token for which pred returns true. The
// name appears in failure messages.
func Satisfy[T any](name string, pred func(T) bool) Parser[T, T] {
	return func(s State[T]) Result[T, T] {
		t, ok := s.Peek()
		if !ok || !pred(t) {
			return fail[T, T](s, name)
		}
		next := s
		next.off++
		return Result[T, T]{Value: t, State: next}
	}
}

// Succeed consumes nothing and yields v.
func Succeed[T, V any](v V) Parser[T, V] {
	return func(s State[T]) Result[T, V] {
		return Result[T, V]{Value: v, State: s}
	}
}

// Map applies f to the value produced by p.
func Map[T, A, B any](p Parser[T, A], f func(A) B) Parser[T, B] {
	return func(s State[T]) Result[T, B] {
		r := p(s)
		if !r.Ok() {
			return Result[T, B]{State: r.State, Err: r.Err}
		}
		return Result[T, B]{Value: f(r.Value), State: r.State}
	}
}

// Seq2 runs pa then pb and combines their values. If pb fails its
// error is propagated as-is even though pa consumed input: there is no
// implicit backtracking past a successful sub-parse. Backtracking is
// the caller's responsibility via Attempt.
func Seq2[T, A, B, C any](pa Parser[T, A], pb Parser[T, B], combine func(A, B) C) Parser[T, C] {
	return func(s State[T]) Result[T, C] {
		ra := pa(s)
		if !ra.Ok() {
			return Result[T, C]{State: ra.State, Err: ra.Err}
		}
		rb := pb(ra.State)
		if !rb.Ok() {
			return Result[T, C]{State: rb.State, Err: rb.Err}
		}
		return Result[T, C]{Value: combine(ra.Value, rb.Value), State: rb.State}
	}
}

// Seq3 runs three parsers in order and combines their values.
func Seq3[T, A, B, C, D any](pa Parser[T, A], pb Parser[T, B], pc Parser[T, C], combine func(A, B, C) D) Parser[T, D] {
	first := Seq2(pa, pb, func(a A, b B) func(C) D {
		return func(c C) D { return combine(a, b, c) }
	})
	return Seq2(first, pc, func(f func(C) D, c C) D { return f(c) })
}

// Then runs pa then pb and keeps pb's value.
func Then[T, A, B any](pa Parser[T, A], pb Parser[T, B]) Parser[T, B] {
	return Seq2(pa, pb, func(_ A, b B) B { return b })
}

// FollowedBy runs pa then pb and keeps pa's value.
func FollowedBy[T, A, B any](pa Parser[T, A], pb Parser[T, B]) Parser[T, A] {
	return Seq2(pa, pb, func(a A, _ B) A { return a })
}

// Attempt wraps p so that on failure the input position is restored to
// the pre-attempt state, enabling safe ordered choice. The failure is
// still recorded in the furthest-failure accumulator.
func Attempt[T, V any](p Parser[T, V]) Parser[T, V] {
	return func(s State[T]) Result[T, V] {
		r := p(s)
		if !r.Ok() {
			r.State = s
		}
		return r
	}
}

// Choice tries the alternatives in order, each on an Attempt-wrapped
// basis, and returns the first success. When every alternative fails
// the returned error is the furthest-progressed one among them, not
// simply the last; ties merge their expectations.
func Choice[T, V any](ps ...Parser[T, V]) Parser[T, V] {
	return func(s State[T]) Result[T, V] {
		var best *Failure
		for _, p := range ps {
			r := Attempt(p)(s)
			if r.Ok() {
				return r
			}
			switch {
			case best == nil || r.Err.Off > best.Off:
				best = r.Err
			case r.Err.Off == best.Off:
				merged := make([]string, 0, len(best.Expected)+len(r.Err.Expected))
				merged = append(merged, best.Expected...)
				merged = append(merged, r.Err.Expected...)
				best = &Failure{Off: best.Off, Expected: merged}
			}
		}
		if best == nil {
			return fail[T, V](s, "empty choice")
		}
		return Result[T, V]{State: s, Err: best}
	}
}

// Many applies p zero or more times, greedily, collecting the values.
// Once an iteration succeeds it is never backtracked. An iteration
// that fails after consuming input propagates its error.
func Many[T, V any](p Parser[T, V]) Parser[T, []V] {
	return func(s State[T]) Result[T, []V] {
		var vals []V
		for {
			r := p(s)
			if !r.Ok() {
				if r.State.off != s.off {
					return Result[T, []V]{State: r.State, Err: r.Err}
				}
				return Result[T, []V]{Value: vals, State: s}
			}
			if r.State.off == s.off {
				// Zero-width success would repeat forever.
				return Result[T, []V]{Value: vals, State: s}
			}
			vals = append(vals, r.Value)
			s = r.State
		}
	}
}

// Many1 applies p one or more times.
func Many1[T, V any](p Parser[T, V]) Parser[T, []V] {
	return Seq2(p, Many(p), func(v V, vs []V) []V {
		return append([]V{v}, vs...)
	})
}

// Optional applies p and yields its value, or the zero value of V when
// p fails without consuming input.
func Optional[T, V any](p Parser[T, V]) Parser[T, V] {
	return func(s State[T]) Result[T, V] {
		r := p(s)
		if r.Ok() || r.State.off != s.off {
			return r
		}
		var zero V
		return Result[T, V]{Value: zero, State: s}
	}
}

// SepBy parses zero or more occurrences of p separated by sep.
func SepBy[T, V, S any](p Parser[T, V], sep Parser[T, S]) Parser[T, []V] {
	return func(s State[T]) Result[T, []V] {
		r := SepBy1(p, sep)(s)
		if !r.Ok() && r.State.off == s.off {
			return Result[T, []V]{State: s}
		}
		return r
	}
}

// SepBy1 parses one or more occurrences of p separated by sep.
func SepBy1[T, V, S any](p Parser[T, V], sep Parser[T, S]) Parser[T, []V] {
	rest := Many(Then(sep, p))
	return Seq2(p, rest, func(v V, vs []V) []V {
		return append([]V{v}, vs...)
	})
}

// Label overrides the expected-name p reports when it fails without
// consuming input, for more readable diagnostics.
func Label[T, V any](p Parser[T, V], name string) Parser[T, V] {
	return func(s State[T]) Result[T, V] {
		r := p(s)
		if !r.Ok() && r.State.off == s.off {
			r.Err = &Failure{Off: r.Err.Off, Expected: []string{name}}
		}
		return r
	}
}

// Lazy defers construction of a parser until its first use, resolving
// forward references between mutually recursive rules.
func Lazy[T, V any](build func() Parser[T, V]) Parser[T, V] {
	var p Parser[T, V]
	return func(s State[T]) Result[T, V] {
		if p == nil {
			p = build()
		}
		return p(s)
	}
}
