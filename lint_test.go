package f77lint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/uchchwhash/f77lint/diag"
)

func lintString(t *testing.T, src string, opts Options) Result {
	t.Helper()
	res := LintSource("test.f", strings.NewReader(src), opts)
	if res.Err != nil {
		t.Fatalf("lint: %v", res.Err)
	}
	return res
}

func singleDiag(t *testing.T, res Result, code string, sev diag.Severity) diag.Diagnostic {
	t.Helper()
	if len(res.Diags) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", res.Diags)
	}
	d := res.Diags[0]
	if d.Code != code || d.Sev != sev {
		t.Fatalf("got %v, want %s %s", d, sev, code)
	}
	return d
}

func TestLintUndefinedLabel(t *testing.T) {
	res := lintString(t, `      PROGRAM T
      GOTO 99
      END`, Options{})
	d := singleDiag(t, res, diag.CodeLabelUndef, diag.Error)
	if d.Pos.Line != 2 {
		t.Fatalf("reported at line %d, want the GOTO", d.Pos.Line)
	}
}

func TestLintUnusedLabel(t *testing.T) {
	res := lintString(t, `      PROGRAM T
10    CONTINUE
      END`, Options{})
	d := singleDiag(t, res, diag.CodeLabelUnused, diag.Warning)
	if d.Pos.Line != 2 {
		t.Fatalf("reported at line %d, want the definition", d.Pos.Line)
	}
}

func TestLintImplicitNone(t *testing.T) {
	res := lintString(t, `      PROGRAM T
      IMPLICIT NONE
      X = 1
      END`, Options{})
	d := singleDiag(t, res, diag.CodeVarUndeclared, diag.Error)
	if d.Pos.Line != 3 || !strings.Contains(d.Msg, "X") {
		t.Fatalf("got %v, want X flagged at its first use", d)
	}

	// Without IMPLICIT NONE the same program is clean: X types to REAL
	// by the default letter rules.
	res = lintString(t, `      PROGRAM T
      X = 1
      END`, Options{})
	if len(res.Diags) != 0 {
		t.Fatalf("implicit typing flagged: %v", res.Diags)
	}
}

func TestLintImplicitLetterRules(t *testing.T) {
	res := lintString(t, `      KOUNT = KOUNT + 1
      TOTAL = TOTAL + 1.5
      END`, Options{StrictTypeCheck: true})
	if len(res.Diags) != 0 {
		t.Fatalf("default implicit typing flagged: %v", res.Diags)
	}
}

func TestLintContinuationClean(t *testing.T) {
	res := lintString(t, `      PROGRAM T
      X = 1 +
     &    2
      END`, Options{})
	if len(res.Diags) != 0 {
		t.Fatalf("continued statement flagged: %v", res.Diags)
	}
}

func TestLintStrictTypeCheck(t *testing.T) {
	src := `      PROGRAM T
      LOGICAL FLAG
      FLAG = 1
      FLAG = .TRUE.
      END`
	res := lintString(t, src, Options{StrictTypeCheck: true})
	d := singleDiag(t, res, diag.CodeTypeMismatch, diag.Error)
	if d.Pos.Line != 3 {
		t.Fatalf("mismatch at line %d, want 3", d.Pos.Line)
	}

	res = lintString(t, src, Options{})
	if len(res.Diags) != 0 {
		t.Fatalf("type check ran without strict mode: %v", res.Diags)
	}
}

func TestLintIgnoreCodes(t *testing.T) {
	src := `      PROGRAM T
10    CONTINUE
      INTEGER TEMP
      END`
	res := lintString(t, src, Options{})
	if len(res.Diags) != 2 {
		t.Fatalf("expected LBL-UNUSED and VAR-UNUSED, got %v", res.Diags)
	}
	res = lintString(t, src, Options{IgnoreCodes: []string{diag.CodeLabelUnused}})
	singleDiag(t, res, diag.CodeVarUnused, diag.Warning)
	res = lintString(t, src, Options{IgnoreCodes: []string{diag.CodeLabelUnused, diag.CodeVarUnused}})
	if len(res.Diags) != 0 {
		t.Fatalf("suppression incomplete: %v", res.Diags)
	}
}

func TestLintDiagnosticOrder(t *testing.T) {
	res := lintString(t, `      PROGRAM T
      GOTO 99
10    CONTINUE
      END`, Options{})
	if len(res.Diags) != 2 {
		t.Fatalf("expected two diagnostics, got %v", res.Diags)
	}
	if res.Diags[0].Pos.Line > res.Diags[1].Pos.Line {
		t.Fatalf("diagnostics out of order: %v", res.Diags)
	}
}

func TestLintCleanProgram(t *testing.T) {
	res := lintString(t, `      PROGRAM SUMS
      INTEGER I, N
      REAL A(10), TOTAL
      N = 10
      TOTAL = 0.0
      DO 10 I = 1, N
      A(I) = I
      TOTAL = TOTAL + A(I)
10    CONTINUE
      IF (TOTAL .GT. 0.0) THEN
        WRITE (6, 100) TOTAL
      END IF
100   FORMAT (F10.2)
      END`, Options{StrictTypeCheck: true})
	if len(res.Diags) != 0 {
		t.Fatalf("clean program flagged: %v", res.Diags)
	}
}

func TestLintFilesSharedCommon(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", "common_conflict.txt"))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	var files []string
	for _, f := range ar.Files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}

	ds, results := Lint(files, Options{})
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: %v", res.File, res.Err)
		}
		if res.Phase != PhaseDone {
			t.Fatalf("%s stopped at phase %s", res.File, res.Phase)
		}
	}
	if len(ds) != 1 || ds[0].Code != diag.CodeCommonConflict {
		t.Fatalf("expected one COMMON-TYPE-CONFLICT, got %v", ds)
	}
	// main.f sorts first so its layout is canonical; the conflict lands
	// in step.f.
	if !strings.HasSuffix(ds[0].Pos.File, "step.f") {
		t.Fatalf("conflict reported in %s, want step.f", ds[0].Pos.File)
	}
	if !strings.Contains(ds[0].Msg, "KOUNT") {
		t.Fatalf("message %q should name KOUNT", ds[0].Msg)
	}
}

func TestLintMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ok.f")
	if err := os.WriteFile(good, []byte("      X = 1\n      END\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, results := Lint([]string{filepath.Join(dir, "missing.f"), good}, Options{})
	if results[0].Err == nil || results[0].Phase != PhaseFailed {
		t.Fatalf("missing file should fail, got %+v", results[0])
	}
	if results[1].Err != nil || results[1].Phase != PhaseDone {
		t.Fatalf("good file should still lint, got %+v", results[1])
	}
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
}
