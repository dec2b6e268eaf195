// Package driver runs a parse routine and reports the outcome, and hosts the
// pieces the command-line tools share: configuration, corpus runs and git
// corpus fetching.
package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/oyi-lang/phoron-asm/pkg/constpool"
	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/parser"
	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

// ParseFunc is a parse routine: it takes no arguments and returns non-zero
// when its input was accepted.
type ParseFunc func() int

const (
	passed = "PASSED"
	failed = "FAILED"
)

// Run calls parse once. Acceptance prints PASSED on stdout, rejection prints
// FAILED on stderr. The result is always 0, whatever the outcome.
func Run(parse ParseFunc, stdout, stderr io.Writer) int {
	if parse() != 0 {
		fmt.Fprintln(stdout, passed)
	} else {
		fmt.Fprintln(stderr, failed)
	}
	return 0
}

// SourceRoutine returns a ParseFunc that reads all of r, parses it as Phoron
// source labelled name and reports acceptance. Read and parse failures are
// logged at debug level on the logger carried by ctx and yield 0.
func SourceRoutine(ctx context.Context, name string, r io.Reader, opts parser.Options) ParseFunc {
	return func() int {
		if err := checkSource(ctx, name, r, opts); err != nil {
			return 0
		}
		return 1
	}
}

func checkSource(ctx context.Context, name string, r io.Reader, opts parser.Options) error {
	logger := ctxlog.FromContext(ctx)
	file, err := sourcefile.Read(name, r)
	if err != nil {
		logger.Debug("read source failed", "file", name, "error", err)
		return err
	}
	if _, err := Check(file, opts); err != nil {
		logger.Debug("source rejected", "file", name, "error", err)
		return err
	}
	logger.Debug("source accepted", "file", name)
	return nil
}

// Check parses file and builds its constant pool. The error is the parser's
// ErrorList, or the analyzer's error for a program that parsed cleanly.
func Check(file *sourcefile.File, opts parser.Options) (*constpool.Pool, error) {
	prog, err := parser.Parse(file, opts)
	if err != nil {
		return nil, err
	}
	return constpool.Analyze(prog)
}
