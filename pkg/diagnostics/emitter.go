// Package diagnostics renders parse errors against their source text.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/oyi-lang/phoron-asm/pkg/parser"
	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

// ColorMode selects when ANSI colours are written.
type ColorMode string

const (
	// ColorAuto defers to fatih/color, which checks for a terminal and NO_COLOR.
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a mode name. The empty string means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return ColorMode(s), nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// Diagnostic is one message anchored to a span of a file.
type Diagnostic struct {
	Message string
	Span    sourcefile.Span
	Help    string
}

// FromParseError converts a parser error, turning its suggestion into a help line.
func FromParseError(e *parser.ParseError) Diagnostic {
	d := Diagnostic{Message: e.Message, Span: e.Span}
	if e.Suggestion != "" {
		d.Help = fmt.Sprintf("did you mean `%s`?", e.Suggestion)
	}
	return d
}

type Emitter struct {
	out  io.Writer
	red  *color.Color
	blue *color.Color
	bold *color.Color
}

func NewEmitter(out io.Writer, mode ColorMode) *Emitter {
	e := &Emitter{
		out:  out,
		red:  color.New(color.FgRed, color.Bold),
		blue: color.New(color.FgBlue, color.Bold),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{e.red, e.blue, e.bold} {
		switch mode {
		case ColorAlways:
			c.EnableColor()
		case ColorNever:
			c.DisableColor()
		}
	}
	return e
}

// Emit writes d in the form
//
//	error: message
//	  --> file:line:col
//	   |
//	 n | source line
//	   |     ^^^
//	   = help: ...
func (e *Emitter) Emit(file *sourcefile.File, d Diagnostic) {
	loc := file.Location(d.Span.Low)
	fmt.Fprintf(e.out, "%s: %s\n", e.red.Sprint("error"), e.bold.Sprint(d.Message))

	lineNo := fmt.Sprint(loc.Line)
	pad := strings.Repeat(" ", len(lineNo))
	fmt.Fprintf(e.out, "%s%s %s\n", pad, e.blue.Sprint("-->"), loc)

	src := file.Line(loc.Line)
	fmt.Fprintf(e.out, "%s %s\n", pad, e.blue.Sprint("|"))
	fmt.Fprintf(e.out, "%s %s %s\n", e.blue.Sprint(lineNo), e.blue.Sprint("|"), src)
	fmt.Fprintf(e.out, "%s %s %s%s\n", pad, e.blue.Sprint("|"), caretIndent(src, loc.Column), e.red.Sprint(carets(src, loc.Column, d.Span)))
	if d.Help != "" {
		fmt.Fprintf(e.out, "%s %s %s: %s\n", pad, e.blue.Sprint("="), e.bold.Sprint("help"), d.Help)
	}
}

// caretIndent reproduces the line up to column with every character except
// tabs blanked, so carets line up under the source.
func caretIndent(line string, column int) string {
	var b strings.Builder
	col := 1
	for _, r := range line {
		if col >= column {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		col += utf8.RuneLen(r)
	}
	return b.String()
}

func carets(line string, column int, span sourcefile.Span) string {
	n := span.Len()
	// the span may run past this line; underline to its end at most
	if rest := len(line) - (column - 1); n > rest {
		n = rest
	}
	if start := column - 1; start >= 0 && start+n <= len(line) {
		n = utf8.RuneCountInString(line[start : start+n])
	}
	if n < 1 {
		n = 1
	}
	return strings.Repeat("^", n)
}

// EmitAll renders every error in err and a closing count, returning the
// number of errors written. Parse errors are shown with source context; any
// other error is printed on a single line.
func (e *Emitter) EmitAll(file *sourcefile.File, err error) int {
	if err == nil {
		return 0
	}
	var list parser.ErrorList
	var single *parser.ParseError
	n := 0
	switch {
	case errors.As(err, &list):
		for i, pe := range list {
			if i > 0 {
				fmt.Fprintln(e.out)
			}
			e.Emit(file, FromParseError(pe))
		}
		n = len(list)
	case errors.As(err, &single):
		e.Emit(file, FromParseError(single))
		n = 1
	default:
		fmt.Fprintf(e.out, "%s: %v\n", e.red.Sprint("error"), err)
		return 1
	}
	e.Summary(n)
	return n
}

// Summary prints the closing error count.
func (e *Emitter) Summary(n int) {
	if n == 0 {
		return
	}
	noun := "errors"
	if n == 1 {
		noun = "error"
	}
	fmt.Fprintf(e.out, "\n%s\n", e.red.Sprintf("%d %s", n, noun))
}
