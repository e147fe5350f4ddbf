package f77lint

import (
	"strings"
	"testing"

	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/token"
)

func scanSource(t *testing.T, src string) ([]token.Tok, []diag.Diagnostic) {
	t.Helper()
	var sc Scanner
	sc.Reset("test.f", strings.NewReader(src), 0)
	toks, ds, err := sc.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return toks, ds
}

func kindsOf(toks []token.Tok) []token.Token {
	ks := make([]token.Token, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func kindsEqual(a, b []token.Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScanTokenKinds(t *testing.T) {
	tests := []struct {
		src  string
		want []token.Token
	}{
		0: {"      X = 1",
			[]token.Token{token.Identifier, token.Equals, token.IntLit, token.EOS, token.EOF}},
		1: {"10    CONTINUE",
			[]token.Token{token.Label, token.CONTINUE, token.EOS, token.EOF}},
		2: {"      GO TO 10",
			[]token.Token{token.GOTO, token.IntLit, token.EOS, token.EOF}},
		3: {"      ELSE IF (X) THEN",
			[]token.Token{token.ELSEIF, token.LParen, token.Identifier, token.RParen, token.THEN, token.EOS, token.EOF}},
		4: {"      END IF",
			[]token.Token{token.ENDIF, token.EOS, token.EOF}},
		5: {"      L = 1.EQ.2",
			[]token.Token{token.Identifier, token.Equals, token.IntLit, token.EQ, token.IntLit, token.EOS, token.EOF}},
		6: {"      X = 1.5E-3",
			[]token.Token{token.Identifier, token.Equals, token.RealLit, token.EOS, token.EOF}},
		7: {"      X = .5",
			[]token.Token{token.Identifier, token.Equals, token.RealLit, token.EOS, token.EOF}},
		8: {"      L = .TRUE. .AND. B",
			[]token.Token{token.Identifier, token.Equals, token.TRUE, token.AND, token.Identifier, token.EOS, token.EOF}},
		9: {"      X = A ** 2 // B",
			[]token.Token{token.Identifier, token.Equals, token.Identifier, token.DoubleStar, token.IntLit, token.StringConcat, token.Identifier, token.EOS, token.EOF}},
		10: {"      X = 1 ! trailing note",
			[]token.Token{token.Identifier, token.Equals, token.IntLit, token.EOS, token.EOF}},
		11: {"C     a comment line\n      X = 1",
			[]token.Token{token.Identifier, token.Equals, token.IntLit, token.EOS, token.EOF}},
		12: {"100   FORMAT (1X, I5)",
			[]token.Token{token.Label, token.FORMAT, token.StringLit, token.EOS, token.EOF}},
		13: {"      CHARACTER*8 NAME",
			[]token.Token{token.CHARACTER, token.Asterisk, token.IntLit, token.Identifier, token.EOS, token.EOF}},
	}
	for i, tt := range tests {
		toks, ds := scanSource(t, tt.src)
		if len(ds) != 0 {
			t.Errorf("%d: unexpected diagnostics: %v", i, ds)
		}
		if got := kindsOf(toks); !kindsEqual(got, tt.want) {
			t.Errorf("%d: kinds = %v, want %v", i, got, tt.want)
		}
	}
}

func TestScanNormalizesCase(t *testing.T) {
	toks, _ := scanSource(t, "      total = kount + 1")
	if toks[0].Kind != token.Identifier || toks[0].Lit != "TOTAL" {
		t.Fatalf("expected upper-cased TOTAL, got %q", toks[0].Lit)
	}
	if toks[2].Lit != "KOUNT" {
		t.Fatalf("expected upper-cased KOUNT, got %q", toks[2].Lit)
	}
}

func TestScanStringEscapes(t *testing.T) {
	toks, ds := scanSource(t, "      S = 'IT''S'")
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	if toks[2].Kind != token.StringLit || toks[2].Lit != "IT'S" {
		t.Fatalf("expected doubled quote collapse, got %+v", toks[2])
	}
}

func TestScanContinuationMergesStatement(t *testing.T) {
	single, _ := scanSource(t, "      X = 1 + 2")
	cont, ds := scanSource(t, "      X = 1 +\n     &    2")
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	if !kindsEqual(kindsOf(single), kindsOf(cont)) {
		t.Fatalf("continued statement kinds = %v, want %v", kindsOf(cont), kindsOf(single))
	}

	// The continued token keeps its physical position.
	two := cont[len(cont)-3] // IntLit 2 before EOS, EOF
	if two.Kind != token.IntLit || two.Lit != "2" {
		t.Fatalf("expected IntLit 2, got %+v", two)
	}
	if two.Pos.Line != 2 || two.Pos.Col != 11 {
		t.Fatalf("expected position 2:11 on continuation line, got %v", two.Pos)
	}
}

func TestScanPositions(t *testing.T) {
	toks, _ := scanSource(t, "      X = 1")
	wantCols := []int{7, 9, 11}
	for i, col := range wantCols {
		if toks[i].Pos.Line != 1 || toks[i].Pos.Col != col {
			t.Errorf("token %d at %v, want 1:%d", i, toks[i].Pos, col)
		}
	}
}

func TestScanIgnoresColumnsPast72(t *testing.T) {
	body := "      X = 1"
	line := body + strings.Repeat(" ", 72-len(body)) + "SEQ00010"
	toks, ds := scanSource(t, line)
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	want := []token.Token{token.Identifier, token.Equals, token.IntLit, token.EOS, token.EOF}
	if got := kindsOf(toks); !kindsEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestScanDiagnostics(t *testing.T) {
	tests := []struct {
		src      string
		wantCode string
		wantLine int
	}{
		0: {"     &X = 1", diag.CodeLex, 1},       // continuation with nothing open
		1: {"0     CONTINUE", diag.CodeLex, 1},    // label 0 out of range
		2: {"      S = 'ABC", diag.CodeLex, 1},    // unterminated literal
		3: {"      X = .XY", diag.CodeLex, 1},     // malformed dot operator
		4: {"      X = 1 ? 2", diag.CodeLex, 1},   // stray character
		5: {"?2    Y = 1", diag.CodeLex, 1},       // junk in label field
	}
	for i, tt := range tests {
		_, ds := scanSource(t, tt.src)
		if len(ds) == 0 {
			t.Errorf("%d: expected a diagnostic", i)
			continue
		}
		if ds[0].Code != tt.wantCode || ds[0].Pos.Line != tt.wantLine {
			t.Errorf("%d: got %v, want %s at line %d", i, ds[0], tt.wantCode, tt.wantLine)
		}
	}
}

func TestScanContinuationRecovery(t *testing.T) {
	// The orphan continuation still contributes a parsable statement.
	toks, ds := scanSource(t, "     &X = 1")
	if len(ds) != 1 {
		t.Fatalf("expected one diagnostic, got %v", ds)
	}
	want := []token.Token{token.Identifier, token.Equals, token.IntLit, token.EOS, token.EOF}
	if got := kindsOf(toks); !kindsEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}
