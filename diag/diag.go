// Package diag defines the diagnostic records produced by the scanner,
// the grammar and the semantic analyzer. The ordered diagnostic list
// is the only artifact the analysis pipeline exposes to reporting
// collaborators.
package diag

import (
	"fmt"
	"sort"

	"github.com/uchchwhash/f77lint/token"
)

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic codes. SYN-* come from the scanner and grammar, the rest
// from semantic analysis.
const (
	CodeLex            = "SYN-LEX"
	CodeParse          = "SYN-PARSE"
	CodeLabelDup       = "LBL-DUP"
	CodeLabelUndef     = "LBL-UNDEF"
	CodeLabelUnused    = "LBL-UNUSED"
	CodeVarUndeclared  = "VAR-UNDECL"
	CodeVarUnused      = "VAR-UNUSED"
	CodeTypeMismatch   = "TYPE-MISMATCH"
	CodeCommonConflict = "COMMON-TYPE-CONFLICT"
)

// Diagnostic is one finding: severity, stable code, human message and
// source location.
type Diagnostic struct {
	Sev  Severity
	Code string
	Msg  string
	Pos  token.Position
}

// String returns the "file:line:col: severity code message" form the
// CLI prints.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s %s", d.Pos.String(), d.Sev.String(), d.Code, d.Msg)
}

// Errorf constructs an ERROR diagnostic with a formatted message.
func Errorf(code string, pos token.Position, format string, args ...any) Diagnostic {
	return Diagnostic{Sev: Error, Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Warningf constructs a WARNING diagnostic with a formatted message.
func Warningf(code string, pos token.Position, format string, args ...any) Diagnostic {
	return Diagnostic{Sev: Warning, Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Sort orders diagnostics deterministically: by file, then line, then
// column, then code. Multi-file runs sort once after the merge so the
// output is independent of completion order.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Col != b.Pos.Col {
			return a.Pos.Col < b.Pos.Col
		}
		return a.Code < b.Code
	})
}

// Suppress removes diagnostics whose code appears in ignore. The input
// slice is reused.
func Suppress(ds []Diagnostic, ignore []string) []Diagnostic {
	if len(ignore) == 0 {
		return ds
	}
	ignored := make(map[string]bool, len(ignore))
	for _, code := range ignore {
		ignored[code] = true
	}
	kept := ds[:0]
	for _, d := range ds {
		if !ignored[d.Code] {
			kept = append(kept, d)
		}
	}
	return kept
}

// HasErrors reports whether any diagnostic has ERROR severity.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Sev == Error {
			return true
		}
	}
	return false
}
