// Package token defines the lexical tokens of fixed-form Fortran 77
// and the source positions attached to them.
package token

import (
	"strconv"
	"strings"
)

type Token int

// List of all tokens recognized by the scanner. Tokens are grouped in
// blocks because classification predicates compare against block
// boundaries; when adding a token keep it inside the right block.
const (
	// Not to be used in code. Is to catch uninitialized tokens.
	Undefined Token = iota

	// ==================== KEYWORDS ====================

	// Type declaration keywords
	INTEGER
	REAL
	COMPLEX
	LOGICAL
	CHARACTER
	DOUBLE
	PRECISION

	// Program structure keywords
	PROGRAM
	SUBROUTINE
	FUNCTION
	END
	ENTRY

	// Control flow keywords
	IF
	THEN
	ELSE
	ELSEIF
	ENDIF
	DO
	ENDDO
	GOTO
	CONTINUE
	RETURN
	STOP
	PAUSE
	CALL
	TO

	// I/O keywords
	READ
	WRITE
	PRINT
	OPEN
	CLOSE
	INQUIRE
	BACKSPACE
	REWIND
	ENDFILE
	FORMAT

	// Specification keywords
	IMPLICIT
	NONE
	PARAMETER
	DIMENSION
	DATA
	EQUIVALENCE
	COMMON
	EXTERNAL
	INTRINSIC
	SAVE

	// ==================== OPERATORS ====================

	// Arithmetic operators
	Plus
	Minus
	Asterisk
	Slash
	DoubleStar

	// Assignment
	Equals

	// Relational operators
	EQ
	NE
	LT
	LE
	GT
	GE

	// Logical operators
	NOT
	AND
	OR
	EQV
	NEQV

	// String concatenation operator
	StringConcat

	// ==================== DELIMITERS ====================

	LParen
	RParen
	Comma
	Colon
	Dollar

	// ==================== LITERALS ====================

	TRUE
	FALSE
	Identifier
	IntLit
	RealLit
	StringLit

	// ==================== SPECIAL TOKENS ====================

	// Label is the 1-5 digit statement label from columns 1-5,
	// attached at the start of its logical statement.
	Label
	// EOS terminates every logical statement.
	EOS
	EOF
	Illegal
	numToks
)

var tokenNames = [numToks]string{
	Undefined: "<undefined>",

	INTEGER:   "INTEGER",
	REAL:      "REAL",
	COMPLEX:   "COMPLEX",
	LOGICAL:   "LOGICAL",
	CHARACTER: "CHARACTER",
	DOUBLE:    "DOUBLE",
	PRECISION: "PRECISION",

	PROGRAM:    "PROGRAM",
	SUBROUTINE: "SUBROUTINE",
	FUNCTION:   "FUNCTION",
	END:        "END",
	ENTRY:      "ENTRY",

	IF:       "IF",
	THEN:     "THEN",
	ELSE:     "ELSE",
	ELSEIF:   "ELSEIF",
	ENDIF:    "ENDIF",
	DO:       "DO",
	ENDDO:    "ENDDO",
	GOTO:     "GOTO",
	CONTINUE: "CONTINUE",
	RETURN:   "RETURN",
	STOP:     "STOP",
	PAUSE:    "PAUSE",
	CALL:     "CALL",
	TO:       "TO",

	READ:      "READ",
	WRITE:     "WRITE",
	PRINT:     "PRINT",
	OPEN:      "OPEN",
	CLOSE:     "CLOSE",
	INQUIRE:   "INQUIRE",
	BACKSPACE: "BACKSPACE",
	REWIND:    "REWIND",
	ENDFILE:   "ENDFILE",
	FORMAT:    "FORMAT",

	IMPLICIT:    "IMPLICIT",
	NONE:        "NONE",
	PARAMETER:   "PARAMETER",
	DIMENSION:   "DIMENSION",
	DATA:        "DATA",
	EQUIVALENCE: "EQUIVALENCE",
	COMMON:      "COMMON",
	EXTERNAL:    "EXTERNAL",
	INTRINSIC:   "INTRINSIC",
	SAVE:        "SAVE",

	Plus:       "+",
	Minus:      "-",
	Asterisk:   "*",
	Slash:      "/",
	DoubleStar: "**",

	Equals: "=",

	EQ: ".EQ.",
	NE: ".NE.",
	LT: ".LT.",
	LE: ".LE.",
	GT: ".GT.",
	GE: ".GE.",

	NOT:  ".NOT.",
	AND:  ".AND.",
	OR:   ".OR.",
	EQV:  ".EQV.",
	NEQV: ".NEQV.",

	StringConcat: "//",

	LParen: "(",
	RParen: ")",
	Comma:  ",",
	Colon:  ":",
	Dollar: "$",

	TRUE:  ".TRUE.",
	FALSE: ".FALSE.",

	Identifier: "<identifier>",
	IntLit:     "<integer>",
	RealLit:    "<real>",
	StringLit:  "<string>",

	Label:   "<label>",
	EOS:     "<end-of-statement>",
	EOF:     "<EOF>",
	Illegal: "<illegal>",
}

func (tok Token) String() string {
	if tok < 0 || tok >= numToks {
		return "Token(" + strconv.Itoa(int(tok)) + ")"
	}
	return tokenNames[tok]
}

// IsKeyword returns true if the token is a Fortran 77 keyword.
func (tok Token) IsKeyword() bool {
	return tok >= INTEGER && tok <= SAVE
}

// IsTypeKeyword returns true if the token begins a type specification.
// DOUBLE counts; the grammar pairs it with PRECISION.
func (tok Token) IsTypeKeyword() bool {
	return tok >= INTEGER && tok <= DOUBLE
}

// IsRelational returns true for .EQ. .NE. .LT. .LE. .GT. .GE.
func (tok Token) IsRelational() bool {
	return tok >= EQ && tok <= GE
}

// IsIOKeyword returns true for keywords that begin an I/O statement.
func (tok Token) IsIOKeyword() bool {
	return tok >= READ && tok <= ENDFILE
}

// LookupKeyword returns Identifier or the keyword token word
// represents. word must already be upper case; the scanner normalizes
// identifiers at tokenization so later stages never re-fold case.
func LookupKeyword(word string) Token {
	switch word {
	default:
		return Identifier
	case "INTEGER":
		return INTEGER
	case "REAL":
		return REAL
	case "COMPLEX":
		return COMPLEX
	case "LOGICAL":
		return LOGICAL
	case "CHARACTER":
		return CHARACTER
	case "DOUBLE":
		return DOUBLE
	case "PRECISION":
		return PRECISION
	case "PROGRAM":
		return PROGRAM
	case "SUBROUTINE":
		return SUBROUTINE
	case "FUNCTION":
		return FUNCTION
	case "END":
		return END
	case "ENTRY":
		return ENTRY
	case "IF":
		return IF
	case "THEN":
		return THEN
	case "ELSE":
		return ELSE
	case "ELSEIF", "ELSE IF":
		return ELSEIF
	case "ENDIF", "END IF":
		return ENDIF
	case "DO":
		return DO
	case "ENDDO", "END DO":
		return ENDDO
	case "GOTO", "GO TO":
		return GOTO
	case "CONTINUE":
		return CONTINUE
	case "RETURN":
		return RETURN
	case "STOP":
		return STOP
	case "PAUSE":
		return PAUSE
	case "CALL":
		return CALL
	case "TO":
		return TO
	case "READ":
		return READ
	case "WRITE":
		return WRITE
	case "PRINT":
		return PRINT
	case "OPEN":
		return OPEN
	case "CLOSE":
		return CLOSE
	case "INQUIRE":
		return INQUIRE
	case "BACKSPACE":
		return BACKSPACE
	case "REWIND":
		return REWIND
	case "ENDFILE":
		return ENDFILE
	case "FORMAT":
		return FORMAT
	case "IMPLICIT":
		return IMPLICIT
	case "NONE":
		return NONE
	case "PARAMETER":
		return PARAMETER
	case "DIMENSION":
		return DIMENSION
	case "DATA":
		return DATA
	case "EQUIVALENCE":
		return EQUIVALENCE
	case "COMMON":
		return COMMON
	case "EXTERNAL":
		return EXTERNAL
	case "INTRINSIC":
		return INTRINSIC
	case "SAVE":
		return SAVE
	}
}

// LookupDotOperator checks if the characters between dots match a
// logical operator or constant. Returns Illegal if no match found.
func LookupDotOperator(ident string) Token {
	switch strings.ToUpper(ident) {
	default:
		return Illegal
	case "TRUE":
		return TRUE
	case "FALSE":
		return FALSE
	case "EQ":
		return EQ
	case "NE":
		return NE
	case "LT":
		return LT
	case "LE":
		return LE
	case "GT":
		return GT
	case "GE":
		return GE
	case "AND":
		return AND
	case "OR":
		return OR
	case "NOT":
		return NOT
	case "EQV":
		return EQV
	case "NEQV":
		return NEQV
	}
}
