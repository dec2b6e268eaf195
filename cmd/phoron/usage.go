package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  phoron [global flags] lex <file.pho>")
	fmt.Fprintln(os.Stderr, "  phoron [global flags] parse <file.pho>")
	fmt.Fprintln(os.Stderr, "  phoron [global flags] check <file.pho>...")
	fmt.Fprintln(os.Stderr, "  phoron [global flags] constpool <file.pho>")
	fmt.Fprintln(os.Stderr, "  phoron [global flags] corpus [--git url [--rev r|--tag t|--branch b]] [--workers n] [--ext .pho,.j] [-v] [dir]")
	fmt.Fprintln(os.Stderr, "  phoron version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Global flags:")
	fmt.Fprintln(os.Stderr, "  --config path              config file (default: nearest phoron.yml, $PHORON_CONFIG)")
	fmt.Fprintln(os.Stderr, "  --color auto|always|never  colour diagnostics")
	fmt.Fprintln(os.Stderr, "  --log-level level          debug, info, warn or error")
	fmt.Fprintln(os.Stderr, "  --log-format text|json     log record format")
}
