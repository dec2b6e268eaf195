// Package parser turns Phoron assembly source into an ast.Program.
//
// The parser is a hand-written recursive-descent parser over lexer tokens. It
// keeps going after errors: a bad statement costs the rest of its line, and
// .end method resynchronises at method level. Up to Options.MaxErrors errors
// are collected and returned together as an ErrorList.
package parser

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oyi-lang/phoron-asm/pkg/ast"
	"github.com/oyi-lang/phoron-asm/pkg/lexer"
	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

// DefaultMaxErrors bounds the errors collected when Options.MaxErrors is zero.
const DefaultMaxErrors = 10

// Options tunes error collection and suggestions for Parse.
type Options struct {
	// MaxErrors stops parsing once this many errors are collected.
	MaxErrors int
	// DisableSuggestions turns off "did you mean" hints for unknown mnemonics.
	DisableSuggestions bool
}

// bailout unwinds the parser once the error limit is reached.
type bailout struct{}

type parser struct {
	file *sourcefile.File
	lx   *lexer.Lexer
	opts Options

	tok  lexer.Token
	peek lexer.Token
	prev lexer.Token

	errs ErrorList
}

// Parse parses file. The returned program holds everything that could be
// recovered; the error, when non-nil, is an ErrorList sorted by position.
func Parse(file *sourcefile.File, opts Options) (prog *ast.Program, err error) {
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	p := &parser{file: file, lx: lexer.New(file.Src), opts: opts}
	prog = &ast.Program{}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
		sort.SliceStable(p.errs, func(i, j int) bool {
			return p.errs[i].Span.Low < p.errs[j].Span.Low
		})
		err = p.errs.Err()
	}()

	p.next()
	p.next()
	p.parseProgram(prog)
	return prog, nil
}

// ParseSource is Parse over an in-memory source labelled name.
func ParseSource(name, src string, opts Options) (*ast.Program, error) {
	return Parse(sourcefile.New(name, src), opts)
}

// next advances one token. A lexical error is recorded and the rest of its
// line dropped, so the parser only ever sees well-formed tokens.
func (p *parser) next() {
	p.prev = p.tok
	p.tok = p.peek
	for {
		tok, err := p.lx.Next()
		if err == nil {
			p.peek = tok
			return
		}
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			p.errorAt(lexErr.Span, "%s", lexErr.Message)
		} else {
			p.errorAt(sourcefile.Span{Low: p.lx.Offset(), High: p.lx.Offset()}, "%v", err)
		}
		p.lx.SkipLine()
	}
}

func (p *parser) errorAt(span sourcefile.Span, format string, args ...any) *ParseError {
	loc := p.file.Location(span.Low)
	// one error per line keeps cascades out of the report
	if n := len(p.errs); n > 0 && p.errs[n-1].Location.Line == loc.Line {
		return p.errs[n-1]
	}
	e := &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
		Location: loc,
	}
	p.errs = append(p.errs, e)
	if len(p.errs) >= p.opts.MaxErrors {
		panic(bailout{})
	}
	return e
}

// errorExpected reports a missing piece. When the current token already
// starts a new line the error points just past the previous token instead.
func (p *parser) errorExpected(what string) {
	if p.tok.NewlineBefore || p.tok.Kind == lexer.EOF {
		end := p.prev.Span.High
		p.errorAt(sourcefile.Span{Low: end, High: end}, "expected %s", what)
		return
	}
	p.errorAt(p.tok.Span, "expected %s, found %s", what, p.tok.Describe())
}

// skipLine drops the rest of the current line.
func (p *parser) skipLine() {
	for p.tok.Kind != lexer.EOF && !p.tok.NewlineBefore {
		p.next()
	}
}

// onLine reports whether the current token continues the current line.
func (p *parser) onLine() bool {
	return p.tok.Kind != lexer.EOF && !p.tok.NewlineBefore
}

func (p *parser) parseProgram(prog *ast.Program) {
	p.parseHeader(&prog.Header)

	fields := map[string]bool{}
	methods := map[string]bool{}
	for p.tok.Kind != lexer.EOF {
		switch {
		case p.tok.IsDirective("field"):
			if f := p.parseField(); f != nil {
				if fields[f.Name] {
					p.errorAt(f.Span, "field %s is already defined", f.Name)
				}
				fields[f.Name] = true
				prog.Fields = append(prog.Fields, f)
			}
		case p.tok.IsDirective("method"):
			if m := p.parseMethod(); m != nil {
				key := m.Name + m.Descriptor.String()
				if methods[key] {
					p.errorAt(m.Span, "method %s%s is already defined", m.Name, m.Descriptor)
				}
				methods[key] = true
				prog.Methods = append(prog.Methods, m)
			}
		default:
			p.errorAt(p.tok.Span, "expected .field or .method, found %s", p.tok.Describe())
			p.next()
			p.skipLine()
		}
	}
}

func (p *parser) parseHeader(h *ast.Header) {
	h.SourceFile = defaultSourceName(p.file.Name)
	start := p.tok.Span

	if p.tok.IsDirective("source") {
		p.next()
		switch {
		case p.onLine() && (p.tok.Kind == lexer.Ident || p.tok.Kind == lexer.String):
			h.SourceFile = p.tok.Text
			p.next()
		default:
			p.errorExpected("source file name")
			p.skipLine()
		}
	}

	switch {
	case p.tok.IsDirective("class"):
		h.Kind = ast.KindClass
		h.Access = ast.ClassAccess(ast.AccSuper)
	case p.tok.IsDirective("interface"):
		h.Kind = ast.KindInterface
		h.Access = ast.ClassAccess(ast.AccInterface | ast.AccAbstract)
	default:
		p.errorAt(p.tok.Span, "expected .class or .interface, found %s", p.tok.Describe())
		p.skipHeader()
		return
	}
	p.next()
	h.Access |= ast.ClassAccess(p.parseFlags(ast.ClassFlags))
	if name, ok := p.parseName("class name"); ok {
		h.Name = name
	} else {
		p.skipLine()
	}

	if p.tok.IsDirective("super") {
		p.next()
		if name, ok := p.parseName("super class name"); ok {
			h.Super = name
		} else {
			p.skipLine()
		}
	} else {
		p.errorExpected(".super")
	}

	for p.tok.IsDirective("implements") {
		p.next()
		if name, ok := p.parseName("interface name"); ok {
			h.Implements = append(h.Implements, name)
		} else {
			p.skipLine()
		}
	}
	h.Span = start.Merge(p.prev.Span)
}

// skipHeader advances to the first member definition.
func (p *parser) skipHeader() {
	for p.tok.Kind != lexer.EOF && !p.tok.IsDirective("field") && !p.tok.IsDirective("method") {
		p.next()
	}
}

func defaultSourceName(name string) string {
	if name == "" || name == "-" {
		return ""
	}
	return filepath.Base(name)
}

// parseFlags consumes access flag keywords. A keyword only counts as a flag
// when another word follows it on the line, so the member name itself is
// never swallowed.
func (p *parser) parseFlags(table []ast.Flag) uint16 {
	var bits uint16
	for p.onLine() && p.tok.Kind == lexer.Ident && p.peek.Kind == lexer.Ident && !p.peek.NewlineBefore {
		bit, ok := ast.LookupFlag(table, p.tok.Text)
		if !ok {
			break
		}
		if bits&bit != 0 {
			p.errorAt(p.tok.Span, "duplicate access flag %s", p.tok.Text)
		}
		bits |= bit
		p.next()
	}
	return bits
}

func (p *parser) parseName(what string) (string, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected(what)
		return "", false
	}
	name := p.tok.Text
	p.next()
	return name, true
}

func (p *parser) parseField() *ast.Field {
	start := p.tok.Span
	p.next()
	f := &ast.Field{Access: ast.FieldAccess(p.parseFlags(ast.FieldFlags))}

	name, ok := p.parseName("field name")
	if !ok {
		p.skipLine()
		return nil
	}
	f.Name = name

	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("field descriptor")
		p.skipLine()
		return nil
	}
	desc, err := ParseFieldDescriptor(p.tok.Text)
	if err != nil {
		p.errorAt(p.tok.Span, "invalid field descriptor: %v", err)
		p.next()
		p.skipLine()
		return nil
	}
	f.Descriptor = desc
	p.next()

	if p.onLine() && p.tok.Kind == lexer.Assign {
		p.next()
		init, ok := p.parseFieldInit(desc)
		if !ok {
			p.skipLine()
			return nil
		}
		f.Init = init
	}
	if p.onLine() {
		p.errorAt(p.tok.Span, "unexpected %s after field definition", p.tok.Describe())
		p.skipLine()
	}
	f.Span = start.Merge(p.prev.Span)
	return f
}

// parseFieldInit reads the constant after '=' and types it by the field's
// descriptor.
func (p *parser) parseFieldInit(desc ast.FieldDescriptor) (*ast.Constant, bool) {
	if !p.onLine() {
		p.errorExpected("initial value")
		return nil, false
	}
	tok := p.tok
	switch desc.Kind {
	case ast.ObjectDescriptor:
		if tok.Kind != lexer.String {
			p.errorAt(tok.Span, "field of type %s needs a string initial value, found %s", desc, tok.Describe())
			return nil, false
		}
		p.next()
		return &ast.Constant{Kind: ast.ConstString, Str: tok.Text}, true
	case ast.ArrayDescriptor:
		p.errorAt(tok.Span, "field of type %s cannot have an initial value", desc)
		return nil, false
	}

	switch desc.Base {
	case ast.Long:
		if tok.Kind != lexer.Int {
			p.errorAt(tok.Span, "field of type long needs an integer initial value, found %s", tok.Describe())
			return nil, false
		}
		p.next()
		return &ast.Constant{Kind: ast.ConstLong, Int: tok.IntVal}, true
	case ast.Double:
		v, ok := numericValue(tok)
		if !ok {
			p.errorAt(tok.Span, "field of type double needs a numeric initial value, found %s", tok.Describe())
			return nil, false
		}
		p.next()
		return &ast.Constant{Kind: ast.ConstDouble, Float: v}, true
	case ast.Float:
		v, ok := numericValue(tok)
		if !ok {
			p.errorAt(tok.Span, "field of type float needs a numeric initial value, found %s", tok.Describe())
			return nil, false
		}
		f, ok := toFloat32(v)
		if !ok {
			p.errorAt(tok.Span, "value %g overflows float", v)
			return nil, false
		}
		p.next()
		return &ast.Constant{Kind: ast.ConstFloat, Float: f}, true
	default:
		if tok.Kind != lexer.Int {
			p.errorAt(tok.Span, "field of type %s needs an integer initial value, found %s", desc.Base.Name(), tok.Describe())
			return nil, false
		}
		if tok.IntVal < math.MinInt32 || tok.IntVal > math.MaxInt32 {
			p.errorAt(tok.Span, "initial value %d does not fit in %s", tok.IntVal, desc.Base.Name())
			return nil, false
		}
		p.next()
		return &ast.Constant{Kind: ast.ConstInt, Int: tok.IntVal}, true
	}
}

func numericValue(tok lexer.Token) (float64, bool) {
	switch tok.Kind {
	case lexer.Int:
		return float64(tok.IntVal), true
	case lexer.Float:
		return tok.FloatVal, true
	}
	return 0, false
}

func toFloat32(v float64) (float64, bool) {
	f := float32(v)
	if math.IsInf(float64(f), 0) && !math.IsInf(v, 0) {
		return 0, false
	}
	return float64(f), true
}

func (p *parser) parseMethod() *ast.Method {
	start := p.tok.Span
	p.next()
	m := &ast.Method{Access: ast.MethodAccess(p.parseFlags(ast.MethodFlags))}

	ok := true
	if name, found := p.parseName("method name"); found {
		m.Name = name
		if desc, found := p.parseMethodDescriptor(); found {
			m.Descriptor = desc
		} else {
			ok = false
		}
	} else {
		ok = false
	}
	if !ok {
		p.skipLine()
	} else if p.onLine() {
		p.errorAt(p.tok.Span, "unexpected %s after method descriptor", p.tok.Describe())
		p.skipLine()
	}

	p.parseBody(m)
	m.Span = start.Merge(p.prev.Span)
	p.checkLabels(m)
	if !ok {
		return nil
	}
	return m
}

// parseMethodDescriptor reads '(' params ')' return from consecutive tokens.
func (p *parser) parseMethodDescriptor() (ast.MethodDescriptor, bool) {
	if !p.onLine() || p.tok.Kind != lexer.LParen {
		p.errorExpected("method descriptor")
		return ast.MethodDescriptor{}, false
	}
	start := p.tok.Span
	var b strings.Builder
	b.WriteByte('(')
	p.next()
	for p.onLine() && p.tok.Kind == lexer.Ident {
		b.WriteString(p.tok.Text)
		p.next()
	}
	if !p.onLine() || p.tok.Kind != lexer.RParen {
		p.errorExpected("')' in method descriptor")
		return ast.MethodDescriptor{}, false
	}
	b.WriteByte(')')
	p.next()
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("return type")
		return ast.MethodDescriptor{}, false
	}
	b.WriteString(p.tok.Text)
	span := start.Merge(p.tok.Span)
	p.next()

	desc, err := ParseMethodDescriptor(b.String())
	if err != nil {
		p.errorAt(span, "invalid method descriptor: %v", err)
		return ast.MethodDescriptor{}, false
	}
	return desc, true
}

func (p *parser) parseBody(m *ast.Method) {
	for {
		switch {
		case p.tok.Kind == lexer.EOF:
			p.errorAt(p.tok.Span, "missing .end method for %s", m.Name)
			return
		case p.tok.IsDirective("end"):
			p.next()
			if p.onLine() && p.tok.Is("method") {
				p.next()
			} else {
				p.errorExpected("method after .end")
			}
			p.skipTrailing()
			return
		case p.tok.NewlineBefore && (p.tok.IsDirective("method") || p.tok.IsDirective("field")):
			p.errorAt(p.tok.Span, "missing .end method for %s", m.Name)
			return
		}
		if stmt := p.parseStatement(); stmt != nil {
			m.Body = append(m.Body, stmt)
			p.skipTrailing()
		} else {
			p.skipLine()
		}
	}
}

// skipTrailing reports and drops anything left on a line after a complete
// statement. Labels may share a line with the statement they mark.
func (p *parser) skipTrailing() {
	if !p.onLine() {
		return
	}
	if p.prev.Kind == lexer.Colon {
		return
	}
	p.errorAt(p.tok.Span, "unexpected %s at end of statement", p.tok.Describe())
	p.skipLine()
}

func (p *parser) parseStatement() ast.Statement {
	switch p.tok.Kind {
	case lexer.Directive:
		return p.parseDirective()
	case lexer.Ident:
		if p.peek.Kind == lexer.Colon && !p.peek.NewlineBefore {
			label := &ast.Label{Name: p.tok.Text, Span: p.tok.Span.Merge(p.peek.Span)}
			p.next()
			p.next()
			return label
		}
		return p.parseInstruction()
	}
	p.errorAt(p.tok.Span, "expected instruction, label or directive, found %s", p.tok.Describe())
	p.next()
	return nil
}

func (p *parser) parseDirective() ast.Statement {
	start := p.tok.Span
	name := p.tok.Text
	p.next()
	d := &ast.Directive{}

	switch name {
	case "limit":
		switch {
		case p.onLine() && p.tok.Is("stack"):
			d.Kind = ast.DirLimitStack
		case p.onLine() && p.tok.Is("locals"):
			d.Kind = ast.DirLimitLocals
		default:
			p.errorExpected("stack or locals")
			return nil
		}
		p.next()
		v, ok := p.parseInt(string(d.Kind), 0, math.MaxUint16)
		if !ok {
			return nil
		}
		d.Value = uint16(v)
	case "throws":
		d.Kind = ast.DirThrows
		cls, ok := p.parseName("exception class name")
		if !ok {
			return nil
		}
		d.Class = cls
	case "line":
		d.Kind = ast.DirLine
		v, ok := p.parseInt("line number", 0, math.MaxUint16)
		if !ok {
			return nil
		}
		d.Value = uint16(v)
	case "var":
		d.Kind = ast.DirVar
		v, ok := p.parseInt("local variable index", 0, math.MaxUint16)
		if !ok || !p.expectWord("is") {
			return nil
		}
		d.Value = uint16(v)
		if d.Name, ok = p.parseName("variable name"); !ok {
			return nil
		}
		if !p.onLine() || p.tok.Kind != lexer.Ident {
			p.errorExpected("variable descriptor")
			return nil
		}
		desc, err := ParseFieldDescriptor(p.tok.Text)
		if err != nil {
			p.errorAt(p.tok.Span, "invalid variable descriptor: %v", err)
			return nil
		}
		d.Descriptor = desc
		p.next()
		if !p.expectWord("from") {
			return nil
		}
		if d.From, ok = p.parseLabelRef(); !ok || !p.expectWord("to") {
			return nil
		}
		if d.To, ok = p.parseLabelRef(); !ok {
			return nil
		}
	case "catch":
		d.Kind = ast.DirCatch
		cls, ok := p.parseName("exception class name")
		if !ok || !p.expectWord("from") {
			return nil
		}
		d.Class = cls
		if d.From, ok = p.parseLabelRef(); !ok || !p.expectWord("to") {
			return nil
		}
		if d.To, ok = p.parseLabelRef(); !ok || !p.expectWord("using") {
			return nil
		}
		if d.Handler, ok = p.parseLabelRef(); !ok {
			return nil
		}
	default:
		p.errorAt(start, "directive .%s is not allowed in a method body", name)
		return nil
	}
	d.Span = start.Merge(p.prev.Span)
	return d
}

func (p *parser) expectWord(word string) bool {
	if p.onLine() && p.tok.Is(word) {
		p.next()
		return true
	}
	p.errorExpected(fmt.Sprintf("%q", word))
	return false
}

// parseInt reads an integer operand and checks it against [min, max].
func (p *parser) parseInt(what string, min, max int64) (int64, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Int {
		p.errorExpected(what)
		return 0, false
	}
	v := p.tok.IntVal
	if v < min || v > max {
		p.errorAt(p.tok.Span, "%s %d out of range [%d, %d]", what, v, min, max)
		return 0, false
	}
	p.next()
	return v, true
}

func (p *parser) parseLabelRef() (ast.LabelRef, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("label")
		return ast.LabelRef{}, false
	}
	ref := ast.LabelRef{Name: p.tok.Text, Span: p.tok.Span}
	p.next()
	return ref, true
}

func (p *parser) parseInstruction() ast.Statement {
	start := p.tok.Span
	word := p.tok.Text
	op, ok := ast.LookupOpcode(word)
	if !ok {
		e := p.errorAt(start, "unknown instruction %q", word)
		if !p.opts.DisableSuggestions && e.Span == start {
			if s, found := Suggest(word); found {
				e.Suggestion = s
			}
		}
		p.next()
		return nil
	}
	p.next()

	operand, ok := p.parseOperand(op)
	if !ok {
		return nil
	}
	return &ast.Instruction{Opcode: op, Operand: operand, Span: start.Merge(p.prev.Span)}
}

func (p *parser) parseOperand(op *ast.Opcode) (ast.Operand, bool) {
	switch op.Shape {
	case ast.NoOperand:
		return nil, true
	case ast.LocalOperand:
		v, ok := p.parseInt("local variable index", 0, math.MaxUint8)
		if !ok {
			return nil, false
		}
		return &ast.LocalIndex{Index: uint16(v)}, true
	case ast.ByteOperand:
		v, ok := p.parseInt("byte value", math.MinInt8, math.MaxInt8)
		if !ok {
			return nil, false
		}
		return &ast.ByteValue{Value: int8(v)}, true
	case ast.ShortOperand:
		v, ok := p.parseInt("short value", math.MinInt16, math.MaxInt16)
		if !ok {
			return nil, false
		}
		return &ast.ShortValue{Value: int16(v)}, true
	case ast.LabelOperand:
		ref, ok := p.parseLabelRef()
		if !ok {
			return nil, false
		}
		return &ref, true
	case ast.ClassOperand:
		return p.parseClassOperand(op)
	case ast.FieldOperand:
		return p.parseFieldRef()
	case ast.MethodOperand, ast.InterfaceMethodOperand:
		return p.parseMethodRef(op.Shape == ast.InterfaceMethodOperand)
	case ast.ConstantOperand:
		return p.parseConstant(op, false)
	case ast.WideConstantOperand:
		return p.parseConstant(op, true)
	case ast.IincOperand:
		idx, ok := p.parseInt("local variable index", 0, math.MaxUint8)
		if !ok {
			return nil, false
		}
		delta, ok := p.parseInt("increment", math.MinInt8, math.MaxInt8)
		if !ok {
			return nil, false
		}
		return &ast.Increment{Index: uint16(idx), Delta: int16(delta)}, true
	case ast.NewArrayOperand:
		if !p.onLine() || p.tok.Kind != lexer.Ident {
			p.errorExpected("array element type")
			return nil, false
		}
		b, ok := ast.BaseTypeFromName(p.tok.Text)
		if !ok {
			p.errorAt(p.tok.Span, "newarray needs a primitive type, found %s", p.tok.Describe())
			return nil, false
		}
		p.next()
		return &ast.ArrayType{Elem: b}, true
	case ast.MultiArrayOperand:
		return p.parseMultiArray()
	case ast.TableSwitchOperand:
		return p.parseTableSwitch()
	case ast.LookupSwitchOperand:
		return p.parseLookupSwitch()
	case ast.WideOperand:
		return p.parseWide()
	}
	p.errorAt(p.prev.Span, "instruction %s is not supported", op.Mnemonic)
	return nil, false
}

func (p *parser) parseClassOperand(op *ast.Opcode) (ast.Operand, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("class name")
		return nil, false
	}
	tok := p.tok
	if op.Mnemonic == "new" {
		if !isBareClassName(tok.Text) {
			p.errorAt(tok.Span, "new needs a class name, found %s", tok.Describe())
			return nil, false
		}
		p.next()
		return &ast.ClassRef{Name: tok.Text}, true
	}
	desc, err := ParseFieldDescriptor(tok.Text)
	if err != nil {
		p.errorAt(tok.Span, "invalid type for %s: %v", op.Mnemonic, err)
		return nil, false
	}
	name, ok := desc.ClassEntryName()
	if !ok {
		p.errorAt(tok.Span, "%s needs a class or array type, found %s", op.Mnemonic, desc.Base.Name())
		return nil, false
	}
	p.next()
	return &ast.ClassRef{Name: name}, true
}

// splitMember splits java/lang/System/out into its class and member parts.
func splitMember(ref string) (string, string, bool) {
	i := strings.LastIndexByte(ref, '/')
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func (p *parser) parseFieldRef() (ast.Operand, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("field reference")
		return nil, false
	}
	class, name, ok := splitMember(p.tok.Text)
	if !ok {
		p.errorAt(p.tok.Span, "field reference %q must be class/name", p.tok.Text)
		return nil, false
	}
	p.next()
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("field descriptor")
		return nil, false
	}
	desc, err := ParseFieldDescriptor(p.tok.Text)
	if err != nil {
		p.errorAt(p.tok.Span, "invalid field descriptor: %v", err)
		return nil, false
	}
	p.next()
	return &ast.FieldRef{Class: class, Name: name, Descriptor: desc}, true
}

func (p *parser) parseMethodRef(iface bool) (ast.Operand, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("method reference")
		return nil, false
	}
	class, name, ok := splitMember(p.tok.Text)
	if !ok {
		p.errorAt(p.tok.Span, "method reference %q must be class/name", p.tok.Text)
		return nil, false
	}
	p.next()
	desc, ok := p.parseMethodDescriptor()
	if !ok {
		return nil, false
	}
	ref := &ast.MethodRef{Class: class, Name: name, Descriptor: desc, Interface: iface}
	if iface {
		count := int64(desc.ArgSlots() + 1)
		if p.onLine() && p.tok.Kind == lexer.Int {
			if count, ok = p.parseInt("argument count", 1, math.MaxUint8); !ok {
				return nil, false
			}
		}
		ref.Count = uint8(count)
	}
	return ref, true
}

func (p *parser) parseConstant(op *ast.Opcode, wide bool) (ast.Operand, bool) {
	if !p.onLine() {
		p.errorExpected("constant")
		return nil, false
	}
	tok := p.tok
	var c *ast.Constant
	switch {
	case tok.Kind == lexer.Int && wide:
		c = &ast.Constant{Kind: ast.ConstLong, Int: tok.IntVal}
	case tok.Kind == lexer.Float && wide:
		c = &ast.Constant{Kind: ast.ConstDouble, Float: tok.FloatVal}
	case tok.Kind == lexer.Int:
		if tok.IntVal < math.MinInt32 || tok.IntVal > math.MaxInt32 {
			p.errorAt(tok.Span, "%s integer %d out of range, use ldc2_w for long values", op.Mnemonic, tok.IntVal)
			return nil, false
		}
		c = &ast.Constant{Kind: ast.ConstInt, Int: tok.IntVal}
	case tok.Kind == lexer.Float:
		f, ok := toFloat32(tok.FloatVal)
		if !ok {
			p.errorAt(tok.Span, "%s value %g overflows float, use ldc2_w for double values", op.Mnemonic, tok.FloatVal)
			return nil, false
		}
		c = &ast.Constant{Kind: ast.ConstFloat, Float: f}
	case tok.Kind == lexer.String && !wide:
		c = &ast.Constant{Kind: ast.ConstString, Str: tok.Text}
	default:
		if wide {
			p.errorAt(tok.Span, "%s needs a long or double constant, found %s", op.Mnemonic, tok.Describe())
		} else {
			p.errorAt(tok.Span, "%s needs an int, float or string constant, found %s", op.Mnemonic, tok.Describe())
		}
		return nil, false
	}
	p.next()
	return c, true
}

func (p *parser) parseMultiArray() (ast.Operand, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("array type")
		return nil, false
	}
	tok := p.tok
	desc, err := ParseFieldDescriptor(tok.Text)
	if err != nil {
		p.errorAt(tok.Span, "invalid array type: %v", err)
		return nil, false
	}
	if desc.Kind != ast.ArrayDescriptor {
		p.errorAt(tok.Span, "multianewarray needs an array type, found %s", desc)
		return nil, false
	}
	p.next()
	dims, ok := p.parseInt("dimensions", 1, int64(desc.Dimensions()))
	if !ok {
		return nil, false
	}
	return &ast.MultiArray{Class: desc.String(), Dimensions: uint8(dims)}, true
}

// parseDefault reads the closing "default : label" of a switch.
func (p *parser) parseDefault() (ast.LabelRef, bool) {
	if p.tok.Kind != lexer.Ident || !p.tok.Is("default") {
		p.errorExpected("default")
		return ast.LabelRef{}, false
	}
	p.next()
	if p.tok.Kind != lexer.Colon {
		p.errorExpected("':' after default")
		return ast.LabelRef{}, false
	}
	p.next()
	if p.tok.Kind != lexer.Ident {
		p.errorExpected("default label")
		return ast.LabelRef{}, false
	}
	ref := ast.LabelRef{Name: p.tok.Text, Span: p.tok.Span}
	p.next()
	return ref, true
}

// Switch tables span several lines, so their targets are read without the
// one-line restriction used elsewhere.
func (p *parser) parseTableSwitch() (ast.Operand, bool) {
	low, ok := p.parseInt("tableswitch low", math.MinInt32, math.MaxInt32)
	if !ok {
		return nil, false
	}
	high, ok := p.parseInt("tableswitch high", math.MinInt32, math.MaxInt32)
	if !ok {
		return nil, false
	}
	if high < low {
		p.errorAt(p.prev.Span, "tableswitch high %d is below low %d", high, low)
		return nil, false
	}
	sw := &ast.TableSwitch{Low: int32(low), High: int32(high)}
	for p.tok.Kind == lexer.Ident && !p.tok.Is("default") && p.peek.Kind != lexer.Colon {
		sw.Targets = append(sw.Targets, ast.LabelRef{Name: p.tok.Text, Span: p.tok.Span})
		p.next()
	}
	if want := high - low + 1; int64(len(sw.Targets)) != want {
		p.errorAt(p.tok.Span, "tableswitch expects %d targets, found %d", want, len(sw.Targets))
		return nil, false
	}
	if sw.Default, ok = p.parseDefault(); !ok {
		return nil, false
	}
	return sw, true
}

func (p *parser) parseLookupSwitch() (ast.Operand, bool) {
	sw := &ast.LookupSwitch{}
	seen := map[int64]bool{}
	for p.tok.Kind == lexer.Int {
		key := p.tok
		if key.IntVal < math.MinInt32 || key.IntVal > math.MaxInt32 {
			p.errorAt(key.Span, "lookupswitch key %d out of range", key.IntVal)
			return nil, false
		}
		if seen[key.IntVal] {
			p.errorAt(key.Span, "duplicate lookupswitch key %d", key.IntVal)
			return nil, false
		}
		seen[key.IntVal] = true
		p.next()
		if p.tok.Kind != lexer.Colon {
			p.errorExpected("':' after lookupswitch key")
			return nil, false
		}
		p.next()
		if p.tok.Kind != lexer.Ident {
			p.errorExpected("label")
			return nil, false
		}
		sw.Pairs = append(sw.Pairs, ast.LookupPair{
			Key:    int32(key.IntVal),
			Target: ast.LabelRef{Name: p.tok.Text, Span: p.tok.Span},
		})
		p.next()
	}
	var ok bool
	if sw.Default, ok = p.parseDefault(); !ok {
		return nil, false
	}
	return sw, true
}

func (p *parser) parseWide() (ast.Operand, bool) {
	if !p.onLine() || p.tok.Kind != lexer.Ident {
		p.errorExpected("instruction after wide")
		return nil, false
	}
	inner, ok := ast.LookupOpcode(p.tok.Text)
	if !ok || !inner.Widenable() {
		p.errorAt(p.tok.Span, "wide cannot modify %s", p.tok.Describe())
		return nil, false
	}
	p.next()
	idx, ok := p.parseInt("local variable index", 0, math.MaxUint16)
	if !ok {
		return nil, false
	}
	if inner.Shape == ast.IincOperand {
		delta, ok := p.parseInt("increment", math.MinInt16, math.MaxInt16)
		if !ok {
			return nil, false
		}
		return &ast.Wide{Opcode: inner, Operand: &ast.Increment{Index: uint16(idx), Delta: int16(delta)}}, true
	}
	return &ast.Wide{Opcode: inner, Operand: &ast.LocalIndex{Index: uint16(idx)}}, true
}

// checkLabels reports duplicate label definitions and references to labels
// the method never defines.
func (p *parser) checkLabels(m *ast.Method) {
	defined := map[string]bool{}
	for _, stmt := range m.Body {
		label, ok := stmt.(*ast.Label)
		if !ok {
			continue
		}
		if defined[label.Name] {
			p.errorAt(label.Span, "label %s is already defined in %s", label.Name, m.Name)
		}
		defined[label.Name] = true
	}
	for _, ref := range m.LabelRefs() {
		if !defined[ref.Name] {
			p.errorAt(ref.Span, "undefined label %s in %s", ref.Name, m.Name)
		}
	}
}
