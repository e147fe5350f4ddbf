package token

import "testing"

func TestClassification(t *testing.T) {
	tests := []struct {
		tok        Token
		keyword    bool
		typeKw     bool
		relational bool
		ioKw       bool
	}{
		0:  {INTEGER, true, true, false, false},
		1:  {CHARACTER, true, true, false, false},
		2:  {DOUBLE, true, true, false, false},
		3:  {PRECISION, true, false, false, false},
		4:  {READ, true, false, false, true},
		5:  {PRINT, true, false, false, true},
		6:  {ENDFILE, true, false, false, true},
		7:  {FORMAT, true, false, false, false},
		8:  {SAVE, true, false, false, false},
		9:  {EQ, false, false, true, false},
		10: {GE, false, false, true, false},
		11: {AND, false, false, false, false},
		12: {Plus, false, false, false, false},
		13: {Identifier, false, false, false, false},
		14: {EOS, false, false, false, false},
	}
	for i, tt := range tests {
		if got := tt.tok.IsKeyword(); got != tt.keyword {
			t.Errorf("%d: %s.IsKeyword() = %v, want %v", i, tt.tok, got, tt.keyword)
		}
		if got := tt.tok.IsTypeKeyword(); got != tt.typeKw {
			t.Errorf("%d: %s.IsTypeKeyword() = %v, want %v", i, tt.tok, got, tt.typeKw)
		}
		if got := tt.tok.IsRelational(); got != tt.relational {
			t.Errorf("%d: %s.IsRelational() = %v, want %v", i, tt.tok, got, tt.relational)
		}
		if got := tt.tok.IsIOKeyword(); got != tt.ioKw {
			t.Errorf("%d: %s.IsIOKeyword() = %v, want %v", i, tt.tok, got, tt.ioKw)
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		word string
		want Token
	}{
		0: {"INTEGER", INTEGER},
		1: {"GOTO", GOTO},
		2: {"GO TO", GOTO},
		3: {"END IF", ENDIF},
		4: {"ELSE IF", ELSEIF},
		5: {"END DO", ENDDO},
		6: {"KOUNT", Identifier},
		7: {"ENDDONE", Identifier},
	}
	for i, tt := range tests {
		if got := LookupKeyword(tt.word); got != tt.want {
			t.Errorf("%d: LookupKeyword(%q) = %s, want %s", i, tt.word, got, tt.want)
		}
	}
}

func TestLookupDotOperator(t *testing.T) {
	tests := []struct {
		ident string
		want  Token
	}{
		0: {"EQ", EQ},
		1: {"and", AND},
		2: {"TRUE", TRUE},
		3: {"NEQV", NEQV},
		4: {"XY", Illegal},
	}
	for i, tt := range tests {
		if got := LookupDotOperator(tt.ident); got != tt.want {
			t.Errorf("%d: LookupDotOperator(%q) = %s, want %s", i, tt.ident, got, tt.want)
		}
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		0: {GOTO, "GOTO"},
		1: {DoubleStar, "**"},
		2: {StringConcat, "//"},
		3: {EQ, ".EQ."},
		4: {Token(9999), "Token(9999)"},
	}
	for i, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("%d: String() = %q, want %q", i, got, tt.want)
		}
	}
}
