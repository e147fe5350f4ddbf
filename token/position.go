package token

import "strconv"

// Position is a source location: file name, 1-based line and column.
// Columns refer to the physical line, so positions on continuation
// lines point back at the continuing physical line.
type Position struct {
	File string
	Line int
	Col  int
}

// IsValid reports whether the position has a line number.
func (p Position) IsValid() bool { return p.Line > 0 }

// String returns the "file:line:col" representation of the position.
func (p Position) String() string {
	return string(p.AppendString(make([]byte, 0, len(p.File)+8)))
}

// AppendString appends the position representation to b.
func (p Position) AppendString(b []byte) []byte {
	b = append(b, p.File...)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(p.Line), 10)
	if p.Col > 0 {
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(p.Col), 10)
	}
	return b
}

// Tok is one lexical token: its kind, the (case-normalized) lexeme for
// identifiers, literals and labels, and where it starts.
type Tok struct {
	Kind Token
	Lit  string
	Pos  Position
}

// EndCol returns the column just past the token on its line.
func (t Tok) EndCol() int { return t.Pos.Col + len(t.Lit) }
