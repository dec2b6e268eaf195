// Command phoron-grammar parses Phoron source from standard input and
// reports PASSED on standard output or FAILED on standard error. It takes no
// arguments, reads no configuration and always exits 0.
package main

import (
	"context"
	"io"
	"os"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/driver"
	"github.com/oyi-lang/phoron-asm/pkg/parser"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(stdin io.Reader, stdout, stderr io.Writer) int {
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.Discard())
	return driver.Run(driver.SourceRoutine(ctx, "-", stdin, parser.Options{}), stdout, stderr)
}
