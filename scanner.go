package f77lint

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/token"
)

// DefaultMaxLineLength is the classic right boundary of the statement
// body. Columns beyond it (sequence numbers in old card decks) are
// ignored.
const DefaultMaxLineLength = 72

// Fixed-form column layout: label field is columns 1-5, column 6 is
// the continuation marker, the statement body starts at column 7.
const (
	labelFieldWidth = 5
	bodyStartCol    = 7
)

// Scanner converts raw fixed-form lines into a logical token stream,
// merging continuation lines and discarding comments. Identifiers and
// keywords are normalized to upper case at tokenization so later
// stages compare without re-folding.
type Scanner struct {
	file   string
	input  *bufio.Scanner
	maxCol int
	diags  []diag.Diagnostic

	// In-progress logical statement.
	stmt      []srcChar
	stmtLabel string
	labelPos  token.Position
	haveStmt  bool
	lastLine  int
}

// srcChar is one statement-body byte tagged with the physical line and
// column it came from, so tokens on continuation lines keep exact
// source positions.
type srcChar struct {
	ch   byte
	line int
	col  int
}

// Reset discards all state and begins a new scan of r. maxLineLength
// of 0 means DefaultMaxLineLength.
func (s *Scanner) Reset(filename string, r io.Reader, maxLineLength int) {
	if maxLineLength <= 0 {
		maxLineLength = DefaultMaxLineLength
	}
	*s = Scanner{
		file:   filename,
		input:  bufio.NewScanner(r),
		maxCol: maxLineLength,
		stmt:   s.stmt[:0],
		diags:  s.diags[:0],
	}
	s.input.Buffer(make([]byte, 0, 4096), 1<<20)
}

// Scan tokenizes the whole input, returning the logical token stream
// (Label tokens open labeled statements, EOS closes every statement,
// EOF closes the stream) and any scan-level diagnostics. The returned
// error reports reader failure only; malformed source never fails.
func (s *Scanner) Scan() ([]token.Tok, []diag.Diagnostic, error) {
	var toks []token.Tok
	lineNo := 0
	for s.input.Scan() {
		lineNo++
		line := s.input.Text()
		switch classifyLine(line) {
		case lineComment, lineBlank:
			continue
		case lineContinuation:
			if !s.haveStmt {
				s.diags = append(s.diags, diag.Errorf(diag.CodeLex,
					token.Position{File: s.file, Line: lineNo, Col: 6},
					"continuation line with no statement to continue"))
				// Recover by treating it as an initial line.
				toks = s.beginStatement(toks, line, lineNo)
				continue
			}
			s.appendBody(line, lineNo)
		case lineInitial:
			toks = s.beginStatement(toks, line, lineNo)
		}
	}
	if err := s.input.Err(); err != nil {
		return toks, s.diags, err
	}
	toks = s.flush(toks)
	toks = append(toks, token.Tok{Kind: token.EOF, Pos: token.Position{File: s.file, Line: lineNo + 1, Col: 1}})
	return toks, s.diags, nil
}

type lineClass int

const (
	lineBlank lineClass = iota
	lineComment
	lineInitial
	lineContinuation
)

// classifyLine applies the column-1 and column-6 rules: 'C', 'c', '*'
// or '!' in column 1 marks a comment line; a non-blank, non-zero
// column 6 marks a continuation.
func classifyLine(line string) lineClass {
	if strings.TrimSpace(line) == "" {
		return lineBlank
	}
	switch line[0] {
	case 'C', 'c', '*', '!':
		return lineComment
	}
	if len(line) > labelFieldWidth {
		if c := line[labelFieldWidth]; c != ' ' && c != '0' && c != '\t' {
			return lineContinuation
		}
	}
	return lineInitial
}

// beginStatement flushes any in-progress statement, then opens a new
// one from an initial line: label field from columns 1-5, body from
// column 7 on.
func (s *Scanner) beginStatement(toks []token.Tok, line string, lineNo int) []token.Tok {
	toks = s.flush(toks)
	s.haveStmt = true
	s.lastLine = lineNo
	s.stmtLabel, s.labelPos = s.scanLabelField(line, lineNo)
	s.appendBody(line, lineNo)
	return toks
}

// scanLabelField parses the optional 1-5 digit label from columns 1-5.
// Blanks may surround or intersperse the digits.
func (s *Scanner) scanLabelField(line string, lineNo int) (string, token.Position) {
	field := line
	if len(field) > labelFieldWidth {
		field = field[:labelFieldWidth]
	}
	var digits strings.Builder
	pos := token.Position{}
	for i := 0; i < len(field); i++ {
		c := field[i]
		switch {
		case c >= '0' && c <= '9':
			if pos.Line == 0 {
				pos = token.Position{File: s.file, Line: lineNo, Col: i + 1}
			}
			digits.WriteByte(c)
		case c == ' ' || c == '\t':
		default:
			s.diags = append(s.diags, diag.Errorf(diag.CodeLex,
				token.Position{File: s.file, Line: lineNo, Col: i + 1},
				"invalid character %q in label field", c))
			return "", token.Position{}
		}
	}
	return digits.String(), pos
}

// appendBody appends columns 7..maxCol of line to the statement
// buffer, keeping per-byte source positions.
func (s *Scanner) appendBody(line string, lineNo int) {
	if len(line) < bodyStartCol {
		return
	}
	end := len(line)
	if end > s.maxCol {
		end = s.maxCol
	}
	for i := bodyStartCol - 1; i < end; i++ {
		s.stmt = append(s.stmt, srcChar{ch: line[i], line: lineNo, col: i + 1})
	}
	s.lastLine = lineNo
}

// flush tokenizes the in-progress statement, if any, and resets the
// statement buffer.
func (s *Scanner) flush(toks []token.Tok) []token.Tok {
	if !s.haveStmt {
		return toks
	}
	toks = s.lexStatement(toks)
	s.stmt = s.stmt[:0]
	s.stmtLabel = ""
	s.haveStmt = false
	return toks
}

func (s *Scanner) pos(c srcChar) token.Position {
	return token.Position{File: s.file, Line: c.line, Col: c.col}
}

// lexStatement tokenizes one assembled logical statement and appends
// its tokens, terminated by EOS.
func (s *Scanner) lexStatement(toks []token.Tok) []token.Tok {
	if s.stmtLabel != "" {
		if v, err := strconv.Atoi(s.stmtLabel); err != nil || v < 1 || v > 99999 {
			s.diags = append(s.diags, diag.Errorf(diag.CodeLex, s.labelPos,
				"statement label %s out of range 1-99999", s.stmtLabel))
		} else {
			toks = append(toks, token.Tok{Kind: token.Label, Lit: s.stmtLabel, Pos: s.labelPos})
		}
	}

	buf := s.stmt
	i := 0
	first := true
	for i < len(buf) {
		c := buf[i]
		switch {
		case c.ch == ' ' || c.ch == '\t':
			i++
			continue
		case c.ch == '!':
			// Inline comment: discard to the end of this physical line.
			line := c.line
			for i < len(buf) && buf[i].line == line {
				i++
			}
			continue
		case isLetterByte(c.ch):
			var tok token.Tok
			tok, i = s.lexWord(buf, i)
			toks = append(toks, tok)
			// FORMAT edit descriptors (Hollerith and friends) do not
			// tokenize as expressions; keep the rest raw.
			if first && tok.Kind == token.FORMAT {
				toks, i = s.lexRawTail(toks, buf, i)
			}
			first = false
			continue
		case isDigitByte(c.ch):
			var tok token.Tok
			tok, i = s.lexNumber(buf, i)
			toks = append(toks, tok)
		case c.ch == '.':
			var tok token.Tok
			tok, i = s.lexDot(buf, i)
			toks = append(toks, tok)
		case c.ch == '\'' || c.ch == '"':
			var tok token.Tok
			tok, i = s.lexString(buf, i)
			toks = append(toks, tok)
		default:
			var tok token.Tok
			tok, i = s.lexOperator(buf, i)
			toks = append(toks, tok)
		}
		first = false
	}

	end := token.Position{File: s.file, Line: s.lastLine, Col: s.maxCol + 1}
	if n := len(buf); n > 0 {
		end = token.Position{File: s.file, Line: buf[n-1].line, Col: buf[n-1].col + 1}
	}
	return append(toks, token.Tok{Kind: token.EOS, Pos: end})
}

// lexWord reads an identifier or keyword. Two-word keyword spellings
// (GO TO, ELSE IF, END IF, END DO, BLOCK DATA is left to the grammar)
// merge to their one-word token.
func (s *Scanner) lexWord(buf []srcChar, i int) (token.Tok, int) {
	start := i
	for i < len(buf) && (isLetterByte(buf[i].ch) || isDigitByte(buf[i].ch) || buf[i].ch == '_') {
		i++
	}
	word := upperSlice(buf[start:i])
	kind := token.LookupKeyword(word)
	pos := s.pos(buf[start])

	if word == "GO" || kind == token.END || kind == token.ELSE {
		j := i
		for j < len(buf) && (buf[j].ch == ' ' || buf[j].ch == '\t') {
			j++
		}
		k := j
		for k < len(buf) && isLetterByte(buf[k].ch) {
			k++
		}
		if k > j {
			merged := token.LookupKeyword(word + " " + upperSlice(buf[j:k]))
			if merged != token.Identifier {
				return token.Tok{Kind: merged, Lit: merged.String(), Pos: pos}, k
			}
		}
	}

	return token.Tok{Kind: kind, Lit: word, Pos: pos}, i
}

// lexNumber reads an integer or real literal, including fixed and
// exponential decimal forms with E or D exponent letters.
func (s *Scanner) lexNumber(buf []srcChar, i int) (token.Tok, int) {
	start := i
	isReal := false
	for i < len(buf) && isDigitByte(buf[i].ch) {
		i++
	}
	// A '.' continues the number unless it starts a dot operator like
	// 1.EQ.2 or terminates as 1.E5 exponent form.
	if i < len(buf) && buf[i].ch == '.' {
		next, next2 := peekByte(buf, i+1), peekByte(buf, i+2)
		isOperatorDot := isLetterByte(next) &&
			!(isExponentByte(next) && (isDigitByte(next2) || next2 == '+' || next2 == '-'))
		if !isOperatorDot {
			isReal = true
			i++
			for i < len(buf) && isDigitByte(buf[i].ch) {
				i++
			}
		}
	}
	if i < len(buf) && isExponentByte(buf[i].ch) {
		next := peekByte(buf, i+1)
		if isDigitByte(next) || next == '+' || next == '-' {
			isReal = true
			i++
			if buf[i].ch == '+' || buf[i].ch == '-' {
				i++
			}
			if i >= len(buf) || !isDigitByte(buf[i].ch) {
				s.diags = append(s.diags, diag.Errorf(diag.CodeLex, s.pos(buf[start]),
					"invalid exponent in real literal"))
				return token.Tok{Kind: token.Illegal, Lit: upperSlice(buf[start:i]), Pos: s.pos(buf[start])}, i
			}
			for i < len(buf) && isDigitByte(buf[i].ch) {
				i++
			}
		}
	}
	lit := upperSlice(buf[start:i])
	kind := token.IntLit
	if isReal {
		kind = token.RealLit
	}
	return token.Tok{Kind: kind, Lit: lit, Pos: s.pos(buf[start])}, i
}

// lexDot reads either a real literal like .5 or a dot operator like
// .AND. or .TRUE.
func (s *Scanner) lexDot(buf []srcChar, i int) (token.Tok, int) {
	pos := s.pos(buf[i])
	next := peekByte(buf, i+1)
	if isDigitByte(next) {
		start := i
		i++
		for i < len(buf) && isDigitByte(buf[i].ch) {
			i++
		}
		if i < len(buf) && isExponentByte(buf[i].ch) {
			tok, end := s.lexNumber(buf, start)
			return tok, end
		}
		return token.Tok{Kind: token.RealLit, Lit: upperSlice(buf[start:i]), Pos: pos}, i
	}
	if !isLetterByte(next) {
		s.diags = append(s.diags, diag.Errorf(diag.CodeLex, pos, "unexpected character '.'"))
		return token.Tok{Kind: token.Illegal, Lit: ".", Pos: pos}, i + 1
	}
	j := i + 1
	for j < len(buf) && isLetterByte(buf[j].ch) {
		j++
	}
	word := upperSlice(buf[i+1 : j])
	kind := token.LookupDotOperator(word)
	if kind == token.Illegal || j >= len(buf) || buf[j].ch != '.' {
		s.diags = append(s.diags, diag.Errorf(diag.CodeLex, pos, "malformed dot operator .%s.", word))
		return token.Tok{Kind: token.Illegal, Lit: word, Pos: pos}, j
	}
	return token.Tok{Kind: kind, Lit: word, Pos: pos}, j + 1
}

// lexString reads a character literal delimited by matching quotes
// with doubled-quote escaping. An unterminated literal produces a
// diagnostic and a synthetic error token so parsing can continue.
func (s *Scanner) lexString(buf []srcChar, i int) (token.Tok, int) {
	quote := buf[i].ch
	pos := s.pos(buf[i])
	var val strings.Builder
	i++
	for i < len(buf) {
		c := buf[i].ch
		if c == quote {
			if peekByte(buf, i+1) == quote {
				val.WriteByte(quote)
				i += 2
				continue
			}
			return token.Tok{Kind: token.StringLit, Lit: val.String(), Pos: pos}, i + 1
		}
		val.WriteByte(c)
		i++
	}
	s.diags = append(s.diags, diag.Errorf(diag.CodeLex, pos, "unterminated character literal"))
	return token.Tok{Kind: token.Illegal, Lit: val.String(), Pos: pos}, i
}

func (s *Scanner) lexOperator(buf []srcChar, i int) (token.Tok, int) {
	pos := s.pos(buf[i])
	mk := func(kind token.Token, width int) (token.Tok, int) {
		return token.Tok{Kind: kind, Pos: pos}, i + width
	}
	switch buf[i].ch {
	case '=':
		return mk(token.Equals, 1)
	case '+':
		return mk(token.Plus, 1)
	case '-':
		return mk(token.Minus, 1)
	case '*':
		if peekByte(buf, i+1) == '*' {
			return mk(token.DoubleStar, 2)
		}
		return mk(token.Asterisk, 1)
	case '/':
		if peekByte(buf, i+1) == '/' {
			return mk(token.StringConcat, 2)
		}
		return mk(token.Slash, 1)
	case '(':
		return mk(token.LParen, 1)
	case ')':
		return mk(token.RParen, 1)
	case ',':
		return mk(token.Comma, 1)
	case ':':
		return mk(token.Colon, 1)
	case '$':
		return mk(token.Dollar, 1)
	}
	s.diags = append(s.diags, diag.Errorf(diag.CodeLex, pos, "unexpected character %q", buf[i].ch))
	return token.Tok{Kind: token.Illegal, Lit: string(buf[i].ch), Pos: pos}, i + 1
}

// lexRawTail captures the remainder of a statement as a single
// StringLit token without tokenizing it.
func (s *Scanner) lexRawTail(toks []token.Tok, buf []srcChar, i int) ([]token.Tok, int) {
	for i < len(buf) && (buf[i].ch == ' ' || buf[i].ch == '\t') {
		i++
	}
	if i >= len(buf) {
		return toks, i
	}
	var raw strings.Builder
	pos := s.pos(buf[i])
	for j := i; j < len(buf); j++ {
		raw.WriteByte(buf[j].ch)
	}
	toks = append(toks, token.Tok{Kind: token.StringLit, Lit: strings.TrimRight(raw.String(), " \t"), Pos: pos})
	return toks, len(buf)
}

func peekByte(buf []srcChar, i int) byte {
	if i >= len(buf) {
		return 0
	}
	return buf[i].ch
}

func upperSlice(chars []srcChar) string {
	b := make([]byte, len(chars))
	for i, c := range chars {
		ch := c.ch
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		b[i] = ch
	}
	return string(b)
}

func isLetterByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

func isExponentByte(c byte) bool {
	return c == 'E' || c == 'e' || c == 'D' || c == 'd'
}
