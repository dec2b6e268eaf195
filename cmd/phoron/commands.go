package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/diagnostics"
	"github.com/oyi-lang/phoron-asm/pkg/driver"
	"github.com/oyi-lang/phoron-asm/pkg/lexer"
	"github.com/oyi-lang/phoron-asm/pkg/parser"
	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

const stdinName = "<stdin>"

// openSource loads path, or standard input when path is "-".
func openSource(path string) (*sourcefile.File, error) {
	if path == "-" {
		return sourcefile.Read(stdinName, os.Stdin)
	}
	return sourcefile.Open(path)
}

func singleFileArg(command string, args []string) (string, bool) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s expects exactly one file\n", command)
		return "", false
	}
	return args[0], true
}

func (env *commandEnv) emitter() *diagnostics.Emitter {
	return diagnostics.NewEmitter(os.Stderr, env.config.Color)
}

func runLex(env *commandEnv, args []string) int {
	path, ok := singleFileArg("lex", args)
	if !ok {
		return 1
	}
	file, err := openSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lex: %v\n", err)
		return 1
	}

	tokens, err := lexer.Tokenize(file.Src)
	for _, tok := range tokens {
		loc := file.Location(tok.Span.Low)
		fmt.Fprintf(os.Stdout, "%-9s %s @%d:%d\n", tok.Kind, tokenText(tok), loc.Line, loc.Column)
	}
	if err != nil {
		var lexErr *lexer.Error
		em := env.emitter()
		if errors.As(err, &lexErr) {
			em.Emit(file, diagnostics.Diagnostic{Message: lexErr.Message, Span: lexErr.Span})
			em.Summary(1)
		} else {
			fmt.Fprintf(os.Stderr, "lex: %v\n", err)
		}
		return 1
	}
	return 0
}

func tokenText(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.Directive:
		return "." + tok.Text
	case lexer.String:
		return strconv.Quote(tok.Text)
	}
	return tok.Text
}

func runParse(env *commandEnv, args []string) int {
	path, ok := singleFileArg("parse", args)
	if !ok {
		return 1
	}
	file, err := openSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse: %v\n", err)
		return 1
	}
	prog, err := parser.Parse(file, env.config.ParserOptions())
	if err != nil {
		env.emitter().EmitAll(file, err)
		return 1
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(prog); err != nil {
		fmt.Fprintf(os.Stderr, "parse: encode %s: %v\n", file.Name, err)
		return 1
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "parse: encode %s: %v\n", file.Name, err)
		return 1
	}
	return 0
}

func runCheck(env *commandEnv, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "check expects at least one file")
		return 1
	}
	logger := ctxlog.FromContext(env.ctx)
	em := env.emitter()
	failed := 0
	for _, path := range args {
		file, err := openSource(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			failed++
			continue
		}
		if _, err := driver.Check(file, env.config.ParserOptions()); err != nil {
			em.EmitAll(file, err)
			failed++
			continue
		}
		logger.Debug("check passed", "file", file.Name)
	}
	if failed > 0 {
		return 1
	}
	fmt.Fprintln(os.Stdout, "check: ok")
	return 0
}

func runConstPool(env *commandEnv, args []string) int {
	path, ok := singleFileArg("constpool", args)
	if !ok {
		return 1
	}
	file, err := openSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "constpool: %v\n", err)
		return 1
	}
	pool, err := driver.Check(file, env.config.ParserOptions())
	if err != nil {
		env.emitter().EmitAll(file, err)
		return 1
	}
	for _, slot := range pool.Slots() {
		fmt.Fprintf(os.Stdout, "%-6s %-18s %s\n", "#"+strconv.Itoa(int(slot.Index)), slot.Entry.Tag, pool.Value(slot.Entry))
	}
	return 0
}
