package lexer

import (
	"fmt"

	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Directive
	Ident
	Int
	Float
	String
	LParen
	RParen
	Colon
	Assign
)

var kindNames = [...]string{
	EOF:       "EOF",
	Directive: "Directive",
	Ident:     "Ident",
	Int:       "Int",
	Float:     "Float",
	String:    "String",
	LParen:    "LParen",
	RParen:    "RParen",
	Colon:     "Colon",
	Assign:    "Assign",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexeme. Text holds the directive name without its dot, the
// word for identifiers, and the decoded value for strings. Numeric tokens
// carry their value in IntVal or FloatVal.
type Token struct {
	Kind     Kind
	Text     string
	IntVal   int64
	FloatVal float64
	Span     sourcefile.Span
	// NewlineBefore is set when at least one line break separates this token
	// from the previous one (or the start of input).
	NewlineBefore bool
}

// Is reports whether the token is an identifier spelled word.
func (t Token) Is(word string) bool {
	return t.Kind == Ident && t.Text == word
}

// IsDirective reports whether the token is the directive .name.
func (t Token) IsDirective(name string) bool {
	return t.Kind == Directive && t.Text == name
}

func (t Token) String() string {
	switch t.Kind {
	case EOF, LParen, RParen, Colon, Assign:
		return t.Kind.String()
	case Directive:
		return fmt.Sprintf("Directive(.%s)", t.Text)
	case Int:
		return fmt.Sprintf("Int(%d)", t.IntVal)
	case Float:
		return fmt.Sprintf("Float(%g)", t.FloatVal)
	case String:
		return fmt.Sprintf("String(%q)", t.Text)
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	}
}

// Describe renders the token for error messages.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Directive:
		return fmt.Sprintf("directive .%s", t.Text)
	case Ident:
		return fmt.Sprintf("%q", t.Text)
	case Int:
		return fmt.Sprintf("integer %d", t.IntVal)
	case Float:
		return fmt.Sprintf("number %g", t.FloatVal)
	case String:
		return "string literal"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Colon:
		return "':'"
	case Assign:
		return "'='"
	}
	return t.Kind.String()
}

// Directives lists every directive the lexer accepts.
var Directives = map[string]bool{
	"catch":      true,
	"class":      true,
	"end":        true,
	"field":      true,
	"implements": true,
	"interface":  true,
	"limit":      true,
	"line":       true,
	"method":     true,
	"source":     true,
	"super":      true,
	"throws":     true,
	"var":        true,
}
