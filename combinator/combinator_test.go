package combinator

import (
	"reflect"
	"testing"
)

func char(c byte) Parser[byte, byte] {
	return Satisfy(string(c), func(b byte) bool { return b == c })
}

func TestSatisfy(t *testing.T) {
	p := char('a')

	r := p(NewState([]byte("abc")))
	if !r.Ok() || r.Value != 'a' || r.State.Offset() != 1 {
		t.Fatalf("expected to consume 'a', got %+v", r)
	}

	r = p(NewState([]byte("xbc")))
	if r.Ok() {
		t.Fatal("expected failure on 'x'")
	}
	if r.Err.Off != 0 || len(r.Err.Expected) != 1 || r.Err.Expected[0] != "a" {
		t.Fatalf("wrong failure: %+v", r.Err)
	}

	r = p(NewState[byte](nil))
	if r.Ok() {
		t.Fatal("expected failure on empty input")
	}
}

func TestSeq2NoImplicitBacktrack(t *testing.T) {
	p := Seq2(char('a'), char('b'), func(a, b byte) string { return string(a) + string(b) })

	r := p(NewState([]byte("ab")))
	if !r.Ok() || r.Value != "ab" {
		t.Fatalf("expected \"ab\", got %+v", r)
	}

	// When the second parser fails the state stays at the failure
	// point; the first parser's consumption is not undone.
	r = p(NewState([]byte("ax")))
	if r.Ok() {
		t.Fatal("expected failure")
	}
	if r.State.Offset() != 1 || r.Err.Off != 1 {
		t.Fatalf("expected failure at offset 1, got state=%d err=%d", r.State.Offset(), r.Err.Off)
	}
}

func TestAttemptRestoresPosition(t *testing.T) {
	p := Attempt(Seq2(char('a'), char('b'), func(a, b byte) byte { return b }))
	r := p(NewState([]byte("ax")))
	if r.Ok() {
		t.Fatal("expected failure")
	}
	if r.State.Offset() != 0 {
		t.Fatalf("Attempt should restore offset 0, got %d", r.State.Offset())
	}
	if r.Err.Off != 1 {
		t.Fatalf("failure position should survive Attempt, got %d", r.Err.Off)
	}
}

func TestChoiceFurthestFailure(t *testing.T) {
	ab := Seq2(char('a'), char('b'), func(a, b byte) byte { return b })
	ac := Seq2(char('a'), char('c'), func(a, c byte) byte { return c })
	p := Choice(ab, ac)

	r := p(NewState([]byte("ac")))
	if !r.Ok() || r.Value != 'c' {
		t.Fatalf("expected second alternative to match, got %+v", r)
	}

	// Both alternatives fail at offset 1, which is deeper than a
	// first-token mismatch would be; the error merges their
	// expectations.
	r = p(NewState([]byte("ax")))
	if r.Ok() {
		t.Fatal("expected failure")
	}
	if r.Err.Off != 1 {
		t.Fatalf("expected furthest failure at 1, got %d", r.Err.Off)
	}
	if want := []string{"b", "c"}; !reflect.DeepEqual(r.Err.Expected, want) {
		t.Fatalf("expected merged expectations %v, got %v", want, r.Err.Expected)
	}

	// The deeper alternative wins even when it is listed first.
	r = Choice(ab, char('z'))(NewState([]byte("ax")))
	if r.Err.Off != 1 || r.Err.Expected[0] != "b" {
		t.Fatalf("expected deepest alternative's error, got %+v", r.Err)
	}
}

func TestMany(t *testing.T) {
	p := Many(char('a'))

	r := p(NewState([]byte("aaab")))
	if !r.Ok() || len(r.Value) != 3 || r.State.Offset() != 3 {
		t.Fatalf("expected three 'a's, got %+v", r)
	}

	r = p(NewState([]byte("b")))
	if !r.Ok() || len(r.Value) != 0 {
		t.Fatalf("Many should succeed with zero matches, got %+v", r)
	}

	// An iteration that consumes input before failing propagates its
	// error instead of silently stopping.
	ab := Seq2(char('a'), char('b'), func(a, b byte) byte { return b })
	r2 := Many(ab)(NewState([]byte("ababax")))
	if r2.Ok() {
		t.Fatal("expected error from half-consumed iteration")
	}
	if r2.Err.Off != 5 {
		t.Fatalf("expected failure at offset 5, got %d", r2.Err.Off)
	}
}

func TestMany1RequiresOne(t *testing.T) {
	p := Many1(char('a'))
	if r := p(NewState([]byte("b"))); r.Ok() {
		t.Fatal("Many1 should fail with zero matches")
	}
	if r := p(NewState([]byte("aa"))); !r.Ok() || len(r.Value) != 2 {
		t.Fatal("Many1 should collect all matches")
	}
}

func TestOptional(t *testing.T) {
	p := Optional(char('a'))
	r := p(NewState([]byte("b")))
	if !r.Ok() || r.Value != 0 || r.State.Offset() != 0 {
		t.Fatalf("Optional should yield zero value without consuming, got %+v", r)
	}

	// A failure that consumed input is not optional.
	ab := Seq2(char('a'), char('b'), func(a, b byte) byte { return b })
	r = Optional(ab)(NewState([]byte("ax")))
	if r.Ok() {
		t.Fatal("Optional should propagate half-consumed failures")
	}
}

func TestSepBy(t *testing.T) {
	p := SepBy1(char('a'), char(','))
	tests := []struct {
		input string
		want  int
		off   int
	}{
		{"a", 1, 1},
		{"a,a,a", 3, 5},
		{"a,a,ab", 3, 5},
	}
	for i, tt := range tests {
		r := p(NewState([]byte(tt.input)))
		if !r.Ok() || len(r.Value) != tt.want || r.State.Offset() != tt.off {
			t.Errorf("%d: SepBy1(%q) = %+v, want %d items ending at %d", i, tt.input, r, tt.want, tt.off)
		}
	}

	// A separator followed by a missing element is an error, not a
	// silent stop.
	if r := p(NewState([]byte("a,b"))); r.Ok() {
		t.Fatal("expected failure after dangling separator")
	}

	if r := SepBy(char('a'), char(','))(NewState([]byte("b"))); !r.Ok() || len(r.Value) != 0 {
		t.Fatal("SepBy should succeed with zero elements")
	}
}

func TestLabelRenamesExpectation(t *testing.T) {
	p := Label(Choice(char('a'), char('b')), "letter")
	r := p(NewState([]byte("x")))
	if r.Ok() || len(r.Err.Expected) != 1 || r.Err.Expected[0] != "letter" {
		t.Fatalf("expected renamed expectation, got %+v", r.Err)
	}
}

func TestLazyRecursion(t *testing.T) {
	// nested ::= 'a' | '(' nested ')'
	var nested Parser[byte, int]
	nested = Choice(
		Map(char('a'), func(byte) int { return 0 }),
		Seq3(char('('), Lazy(func() Parser[byte, int] { return nested }), char(')'),
			func(_ byte, depth int, _ byte) int { return depth + 1 }),
	)
	tests := []struct {
		input string
		depth int
	}{
		{"a", 0},
		{"(a)", 1},
		{"(((a)))", 3},
	}
	for i, tt := range tests {
		r := nested(NewState([]byte(tt.input)))
		if !r.Ok() || r.Value != tt.depth {
			t.Errorf("%d: depth(%q) = %+v, want %d", i, tt.input, r, tt.depth)
		}
	}
}

func TestDeepestAccumulator(t *testing.T) {
	ab := Attempt(Seq2(char('a'), char('b'), func(a, b byte) byte { return b }))
	s := NewState([]byte("ax"))
	r := ab(s)
	if r.Ok() {
		t.Fatal("expected failure")
	}
	off, expected := s.Deepest()
	if off != 1 || len(expected) != 1 || expected[0] != "b" {
		t.Fatalf("deepest failure not recorded: off=%d expected=%v", off, expected)
	}
}

func TestAtClampsToEnd(t *testing.T) {
	s := NewState([]byte("ab"))
	if got := s.At(99).Offset(); got != 2 {
		t.Fatalf("At past end should clamp to len, got %d", got)
	}
	if got := s.At(1).Offset(); got != 1 {
		t.Fatalf("At(1) = %d", got)
	}
}
