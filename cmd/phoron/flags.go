package main

import (
	"fmt"
	"strings"

	"github.com/oyi-lang/phoron-asm/pkg/ctxlog"
	"github.com/oyi-lang/phoron-asm/pkg/diagnostics"
)

type globalFlags struct {
	configPath string
	color      diagnostics.ColorMode
	logLevel   string
	logFormat  string
}

// parseGlobalFlags pulls the global flags out of args in either the
// "--flag value" or "--flag=value" form. Everything after "--" is passed
// through untouched.
func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		name, value, inline := strings.Cut(arg, "=")
		if !isGlobalFlag(name) {
			remaining = append(remaining, arg)
			continue
		}
		if !inline {
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("%s expects a value", name)
			}
			value = args[i+1]
			i++
		}
		if err := flags.set(name, value); err != nil {
			return flags, nil, err
		}
	}
	return flags, remaining, nil
}

func isGlobalFlag(name string) bool {
	switch name {
	case "--config", "--color", "--log-level", "--log-format":
		return true
	}
	return false
}

func (f *globalFlags) set(name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s expects a value", name)
	}
	switch name {
	case "--config":
		f.configPath = value
	case "--color":
		mode, err := diagnostics.ParseColorMode(strings.ToLower(value))
		if err != nil {
			return err
		}
		f.color = mode
	case "--log-level":
		level := strings.ToLower(value)
		if _, err := ctxlog.ParseLevel(level); err != nil {
			return err
		}
		f.logLevel = level
	case "--log-format":
		format := strings.ToLower(value)
		if !ctxlog.ValidFormat(format) {
			return fmt.Errorf("unknown --log-format value '%s' (expected text or json)", value)
		}
		f.logFormat = format
	}
	return nil
}
