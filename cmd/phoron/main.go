// Command phoron is the developer front end for Phoron assembly: it lexes,
// parses, checks and dumps constant pools for source files, and runs whole
// corpora through the grammar.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/driver"
)

const cliToolVersion = "phoron 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	flags, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	}

	env, err := newCommandEnv(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch remaining[0] {
	case "lex":
		return runLex(env, remaining[1:])
	case "parse":
		return runParse(env, remaining[1:])
	case "check":
		return runCheck(env, remaining[1:])
	case "constpool":
		return runConstPool(env, remaining[1:])
	case "corpus":
		return runCorpus(env, remaining[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", remaining[0])
		printUsage()
		return 1
	}
}

// commandEnv is the resolved configuration every subcommand runs with.
type commandEnv struct {
	ctx    context.Context
	config *driver.Config
}

func newCommandEnv(flags globalFlags) (*commandEnv, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	cfg, err := driver.ResolveConfig(flags.configPath, wd)
	if err != nil {
		return nil, err
	}
	if flags.color != "" {
		cfg.Color = flags.color
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}
	return &commandEnv{
		ctx:    ctxlog.WithLogger(context.Background(), logger),
		config: cfg,
	}, nil
}
