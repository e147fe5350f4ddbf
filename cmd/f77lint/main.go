// f77lint checks fixed-form Fortran 77 sources and prints diagnostics
// in file:line:col order.
//
// Usage:
//
//	f77lint [flags] file.f [file2.f ...]
//
// Output format:
//
//	file.f:12:7: error LBL-UNDEF label 200 is never defined
//	file.f:3:15: warning VAR-UNUSED TEMP is declared but never used
//
// Exit status is 0 when no errors were found (warnings allowed), 1
// when at least one error-severity diagnostic was reported, and 2 on
// usage or read failures.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	f77lint "github.com/uchchwhash/f77lint"
	"github.com/uchchwhash/f77lint/diag"
)

var (
	flagStrict = flag.Bool("strict", false, "enable assignment type mismatch checks")
	flagIgnore = flag.String("ignore", "", "comma-separated diagnostic codes to suppress (e.g. LBL-UNUSED,VAR-UNUSED)")
	flagMaxLen = flag.Int("maxlen", 0, "last significant column of a source line (default 72)")
	flagJobs   = flag.Int("jobs", 0, "number of files checked concurrently (default GOMAXPROCS)")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: f77lint [flags] file.f [file2.f ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := f77lint.Options{
		StrictTypeCheck: *flagStrict,
		MaxLineLength:   *flagMaxLen,
		Jobs:            *flagJobs,
	}
	if *flagIgnore != "" {
		for _, code := range strings.Split(*flagIgnore, ",") {
			if code = strings.TrimSpace(code); code != "" {
				opts.IgnoreCodes = append(opts.IgnoreCodes, code)
			}
		}
	}

	diags, results := f77lint.Lint(flag.Args(), opts)

	failed := false
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "f77lint: %v\n", res.Err)
			failed = true
		}
	}
	for _, d := range diags {
		fmt.Println(d.String())
	}

	switch {
	case failed:
		os.Exit(2)
	case diag.HasErrors(diags):
		os.Exit(1)
	}
}
