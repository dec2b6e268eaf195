// Package lexer splits Phoron assembly source into tokens.
//
// The lexer is context free: mnemonics, keywords, access flags,
// labels, class names, and type descriptors all come out as Ident tokens and
// the parser decides what a word means from where it appears.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

// Error is a lexical error anchored to the offending source.
type Error struct {
	Message string
	Span    sourcefile.Span
}

func (e *Error) Error() string {
	return e.Message
}

// Lexer produces tokens from a source string. It is not safe for concurrent use.
type Lexer struct {
	src     string
	pos     int
	newline bool
}

// New returns a lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src, newline: true}
}

// Tokenize lexes the whole input, stopping at the first error. The EOF token
// is not included in the result.
func Tokenize(src string) ([]Token, error) {
	lx := New(src)
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return tokens, err
		}
		if tok.Kind == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Offset reports the current byte offset.
func (l *Lexer) Offset() sourcefile.Pos {
	return sourcefile.Pos(l.pos)
}

// SkipLine discards input up to and including the next line break.
func (l *Lexer) SkipLine() {
	idx := strings.IndexByte(l.src[l.pos:], '\n')
	if idx < 0 {
		l.pos = len(l.src)
		return
	}
	l.pos += idx + 1
	l.newline = true
}

// Next returns the next token. After an error the lexer has advanced past the
// offending input, so callers may keep lexing to recover.
func (l *Lexer) Next() (Token, error) {
	l.skipTrivia()
	newline := l.newline
	l.newline = false

	start := l.pos
	if start >= len(l.src) {
		return Token{Kind: EOF, Span: l.span(start, start), NewlineBefore: newline}, nil
	}

	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	tok.NewlineBefore = newline
	return tok, nil
}

func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == '\n':
			l.newline = true
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == ';':
			idx := strings.IndexByte(l.src[l.pos:], '\n')
			if idx < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += idx
			}
		default:
			return
		}
	}
}

func (l *Lexer) scan() (Token, error) {
	start := l.pos
	c := l.src[start]
	switch {
	case c == '(':
		l.pos++
		return l.punct(LParen, start), nil
	case c == ')':
		l.pos++
		return l.punct(RParen, start), nil
	case c == ':':
		l.pos++
		return l.punct(Colon, start), nil
	case c == '=':
		l.pos++
		return l.punct(Assign, start), nil
	case c == '"':
		return l.scanString()
	case c == '.':
		return l.scanDirective()
	case isDigit(c):
		return l.scanNumber()
	case (c == '-' || c == '+') && start+1 < len(l.src) && isDigit(l.src[start+1]):
		return l.scanNumber()
	}

	r, size := utf8.DecodeRuneInString(l.src[start:])
	if isWordStart(r) {
		return l.scanWord(), nil
	}
	l.pos += size
	return Token{}, l.errorf(start, l.pos, "invalid character %q", r)
}

func (l *Lexer) punct(kind Kind, start int) Token {
	return Token{Kind: kind, Text: l.src[start:l.pos], Span: l.span(start, l.pos)}
}

func (l *Lexer) scanWord() Token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isWordPart(r) {
			break
		}
		l.pos += size
	}
	return Token{Kind: Ident, Text: l.src[start:l.pos], Span: l.span(start, l.pos)}
}

func (l *Lexer) scanDirective() (Token, error) {
	start := l.pos
	l.pos++ // dot
	nameStart := l.pos
	for l.pos < len(l.src) && isASCIILetter(l.src[l.pos]) {
		l.pos++
	}
	name := l.src[nameStart:l.pos]
	if name == "" {
		return Token{}, l.errorf(start, l.pos, "invalid character '.'")
	}
	// a directive glued to further word characters is a malformed word
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isWordPart(r) {
			break
		}
		l.pos += size
	}
	if l.pos != nameStart+len(name) || !Directives[name] {
		return Token{}, l.errorf(start, l.pos, "unknown directive %s", l.src[start:l.pos])
	}
	return Token{Kind: Directive, Text: name, Span: l.span(start, l.pos)}, nil
}

func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}
	isFloat := false
	hex := false
	if l.pos+1 < len(l.src) && l.src[l.pos] == '0' && (l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
		hex = true
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
	} else {
		l.skipDigits()
		if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
			isFloat = true
			l.pos++
			l.skipDigits()
		}
		if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
			save := l.pos
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '-' || l.src[l.pos] == '+') {
				l.pos++
			}
			if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				isFloat = true
				l.skipDigits()
			} else {
				l.pos = save
			}
		}
	}

	// trailing word characters make the whole run malformed
	end := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isWordPart(r) || r == ';' {
			break
		}
		l.pos += size
	}
	text := l.src[start:l.pos]
	if l.pos != end {
		return Token{}, l.errorf(start, l.pos, "malformed number %q", text)
	}

	span := l.span(start, l.pos)
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, l.errorf(start, l.pos, "invalid floating point literal %q", text)
		}
		return Token{Kind: Float, Text: text, FloatVal: v, Span: span}, nil
	}

	var (
		v   int64
		err error
	)
	if hex {
		digits := text
		neg := false
		switch digits[0] {
		case '-':
			neg = true
			digits = digits[1:]
		case '+':
			digits = digits[1:]
		}
		var u uint64
		u, err = strconv.ParseUint(digits[2:], 16, 64)
		if err == nil && u > 1<<63-1 && !(neg && u == 1<<63) {
			err = strconv.ErrRange
		}
		v = int64(u)
		if neg {
			v = -v
		}
	} else {
		v, err = strconv.ParseInt(text, 10, 64)
	}
	if err != nil {
		return Token{}, l.errorf(start, l.pos, "integer literal %s out of range", text)
	}
	return Token{Kind: Int, Text: text, IntVal: v, Span: span}, nil
}

func (l *Lexer) skipDigits() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return Token{}, l.errorf(start, l.pos, "unterminated string literal")
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			b.WriteRune(r)
			l.pos += size
			continue
		}
		escStart := l.pos
		r, err := l.scanEscape()
		if err != nil {
			// skip the rest of the literal so lexing can resume after it
			for l.pos < len(l.src) && l.src[l.pos] != '"' && l.src[l.pos] != '\n' {
				l.pos++
			}
			if l.pos < len(l.src) && l.src[l.pos] == '"' {
				l.pos++
			}
			return Token{}, l.errorf(escStart, escStart+2, "%s", err.Error())
		}
		b.WriteRune(r)
	}
	return Token{Kind: String, Text: b.String(), Span: l.span(start, l.pos)}, nil
}

func (l *Lexer) scanEscape() (rune, error) {
	l.pos++ // backslash
	if l.pos >= len(l.src) {
		return 0, fmt.Errorf("unterminated escape sequence")
	}
	c := l.src[l.pos]
	l.pos++
	switch c {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	case 'u':
		hi, err := l.scanUnicodeUnit()
		if err != nil {
			return 0, err
		}
		if utf16.IsSurrogate(hi) && strings.HasPrefix(l.src[l.pos:], `\u`) {
			save := l.pos
			l.pos += 2
			lo, err := l.scanUnicodeUnit()
			if err == nil {
				if r := utf16.DecodeRune(hi, lo); r != unicode.ReplacementChar {
					return r, nil
				}
			}
			l.pos = save
		}
		return hi, nil
	}
	if c >= '0' && c <= '7' {
		// Java octal escapes: \0 through \377
		v := rune(c - '0')
		maxDigits := 2
		if c > '3' {
			maxDigits = 1
		}
		for i := 0; i < maxDigits && l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '7'; i++ {
			v = v*8 + rune(l.src[l.pos]-'0')
			l.pos++
		}
		return v, nil
	}
	return 0, fmt.Errorf("invalid escape sequence \\%c", c)
}

func (l *Lexer) scanUnicodeUnit() (rune, error) {
	if l.pos+4 > len(l.src) {
		return 0, fmt.Errorf("invalid unicode escape")
	}
	v, err := strconv.ParseUint(l.src[l.pos:l.pos+4], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid unicode escape")
	}
	l.pos += 4
	return rune(v), nil
}

func (l *Lexer) span(start, end int) sourcefile.Span {
	return sourcefile.Span{Low: sourcefile.Pos(start), High: sourcefile.Pos(end)}
}

func (l *Lexer) errorf(start, end int, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Span: l.span(start, end)}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$' || r == '<' || r == '['
}

func isWordPart(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '$', '/', '<', '>', '[', ';', '.', '-':
		return true
	}
	return false
}
