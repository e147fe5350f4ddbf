// Package f77lint statically checks fixed-form Fortran 77 sources:
// it scans the fixed-layout columns, parses statements with
// combinator-built grammar rules recovering at statement boundaries,
// and resolves labels, symbols and COMMON layouts into diagnostics.
package f77lint

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/uchchwhash/f77lint/diag"
	"github.com/uchchwhash/f77lint/symbol"
)

// Options configures a lint run. The zero value lints with defaults.
type Options struct {
	// StrictTypeCheck enables TYPE-MISMATCH reporting on assignments.
	StrictTypeCheck bool
	// IgnoreCodes suppresses diagnostics by code, e.g. "LBL-UNUSED".
	IgnoreCodes []string
	// MaxLineLength is the last significant column of a source line;
	// zero means the standard 72.
	MaxLineLength int
	// Jobs bounds how many files are linted concurrently; zero means
	// GOMAXPROCS.
	Jobs int
}

// Phase tracks a file through the pipeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseParsing
	PhaseAnalyzing
	PhaseReporting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhaseParsing:
		return "parsing"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseReporting:
		return "reporting"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome for one source file. Err reports an I/O or
// internal failure, never a lint finding; findings are Diags.
type Result struct {
	File  string
	Phase Phase
	Diags []diag.Diagnostic
	Err   error
}

// lintSource runs the Scan, Parse and Analyze stages on one source.
// COMMON observations land in commons for a later Check; everything
// else is returned directly.
func lintSource(filename string, src io.Reader, opts Options, commons *symbol.CommonRegistry) Result {
	res := Result{File: filename, Phase: PhaseScanning}

	maxLen := opts.MaxLineLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}
	var sc Scanner
	sc.Reset(filename, src, maxLen)
	toks, scanDiags, err := sc.Scan()
	if err != nil {
		res.Phase = PhaseFailed
		res.Err = fmt.Errorf("scan %s: %w", filename, err)
		return res
	}
	res.Diags = append(res.Diags, scanDiags...)

	res.Phase = PhaseParsing
	units, parseDiags := NewParser(filename, toks).ParseFile()
	res.Diags = append(res.Diags, parseDiags...)

	res.Phase = PhaseAnalyzing
	an := &symbol.Analyzer{Strict: opts.StrictTypeCheck, Commons: commons}
	res.Diags = append(res.Diags, an.Analyze(units)...)

	res.Phase = PhaseDone
	return res
}

// LintSource lints a single source given as a reader, checking COMMON
// layouts across the units of that source only.
func LintSource(filename string, src io.Reader, opts Options) Result {
	commons := symbol.NewCommonRegistry()
	res := lintSource(filename, src, opts, commons)
	if res.Err != nil {
		return res
	}
	res.Phase = PhaseReporting
	res.Diags = append(res.Diags, commons.Check()...)
	diag.Sort(res.Diags)
	res.Diags = diag.Suppress(res.Diags, opts.IgnoreCodes)
	res.Phase = PhaseDone
	return res
}

// LintFile lints one file from disk.
func LintFile(path string, opts Options) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{File: path, Phase: PhaseFailed, Err: err}
	}
	defer f.Close()
	return LintSource(path, f, opts)
}

// Lint runs every file through the pipeline on a bounded worker pool,
// checks COMMON layouts across all of them, and returns the merged
// diagnostics ordered by file, line, column and code along with the
// per-file results. A file that cannot be read is marked failed and
// the run continues.
func Lint(files []string, opts Options) ([]diag.Diagnostic, []Result) {
	commons := symbol.NewCommonRegistry()
	results := make([]Result, len(files))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				results[i] = Result{File: path, Phase: PhaseFailed, Err: err}
				return nil
			}
			defer f.Close()
			results[i] = lintSource(path, f, opts, commons)
			return nil
		})
	}
	_ = g.Wait() // workers report failures through results, never as errors

	var ds []diag.Diagnostic
	for _, r := range results {
		ds = append(ds, r.Diags...)
	}
	ds = append(ds, commons.Check()...)
	diag.Sort(ds)
	ds = diag.Suppress(ds, opts.IgnoreCodes)
	return ds, results
}
