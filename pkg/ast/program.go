// Package ast holds the parsed form of a Phoron program: the class header,
// fields, methods and their bodies, plus the JVM tables (opcodes, type
// descriptors, access flags, attribute names) the parser and the constant
// pool analyzer share.
package ast

import "github.com/oyi-lang/phoron-asm/pkg/sourcefile"

type ClassKind string

const (
	KindClass     ClassKind = "class"
	KindInterface ClassKind = "interface"
)

type Program struct {
	Header  Header    `yaml:"header"`
	Fields  []*Field  `yaml:"fields,omitempty"`
	Methods []*Method `yaml:"methods,omitempty"`
}

type Header struct {
	SourceFile string          `yaml:"source"`
	Kind       ClassKind       `yaml:"kind"`
	Name       string          `yaml:"name"`
	Access     ClassAccess     `yaml:"access"`
	Super      string          `yaml:"super"`
	Implements []string        `yaml:"implements,omitempty"`
	Span       sourcefile.Span `yaml:"-"`
}

type Field struct {
	Name       string          `yaml:"name"`
	Access     FieldAccess     `yaml:"access"`
	Descriptor FieldDescriptor `yaml:"descriptor"`
	Init       *Constant       `yaml:"init,omitempty"`
	Span       sourcefile.Span `yaml:"-"`
}

type Method struct {
	Name       string           `yaml:"name"`
	Access     MethodAccess     `yaml:"access"`
	Descriptor MethodDescriptor `yaml:"descriptor"`
	Body       []Statement      `yaml:"body,omitempty"`
	Span       sourcefile.Span  `yaml:"-"`
}

// HasCode reports whether the body contains at least one instruction.
func (m *Method) HasCode() bool {
	for _, stmt := range m.Body {
		if _, ok := stmt.(*Instruction); ok {
			return true
		}
	}
	return false
}

// LabelRefs collects every label the body refers to, in source order.
func (m *Method) LabelRefs() []LabelRef {
	var refs []LabelRef
	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *Directive:
			switch s.Kind {
			case DirVar:
				refs = append(refs, s.From, s.To)
			case DirCatch:
				refs = append(refs, s.From, s.To, s.Handler)
			}
		case *Instruction:
			refs = append(refs, operandLabels(s.Operand)...)
		}
	}
	return refs
}

func operandLabels(op Operand) []LabelRef {
	switch o := op.(type) {
	case *LabelRef:
		return []LabelRef{*o}
	case *TableSwitch:
		return append(append([]LabelRef(nil), o.Targets...), o.Default)
	case *LookupSwitch:
		refs := make([]LabelRef, 0, len(o.Pairs)+1)
		for _, p := range o.Pairs {
			refs = append(refs, p.Target)
		}
		return append(refs, o.Default)
	}
	return nil
}

// Statement is one entry of a method body: *Label, *Directive or *Instruction.
type Statement interface {
	statementNode()
}

// StatementSpan returns the source span of stmt.
func StatementSpan(stmt Statement) sourcefile.Span {
	switch s := stmt.(type) {
	case *Label:
		return s.Span
	case *Directive:
		return s.Span
	case *Instruction:
		return s.Span
	}
	return sourcefile.Span{}
}

type Label struct {
	Name string          `yaml:"label"`
	Span sourcefile.Span `yaml:"-"`
}

func (*Label) statementNode() {}

type DirectiveKind string

const (
	DirLimitStack  DirectiveKind = "limit stack"
	DirLimitLocals DirectiveKind = "limit locals"
	DirThrows      DirectiveKind = "throws"
	DirLine        DirectiveKind = "line"
	DirVar         DirectiveKind = "var"
	DirCatch       DirectiveKind = "catch"
)

// Directive is a method body directive. Value holds the number for .limit and
// .line and the slot for .var; Class holds the exception class for .throws and
// .catch.
type Directive struct {
	Kind       DirectiveKind
	Value      uint16
	Class      string
	Name       string
	Descriptor FieldDescriptor
	From       LabelRef
	To         LabelRef
	Handler    LabelRef
	Span       sourcefile.Span
}

func (*Directive) statementNode() {}

// CatchesAll reports whether a .catch handles every exception type.
func (d *Directive) CatchesAll() bool {
	return d.Kind == DirCatch && d.Class == "all"
}

func (d *Directive) MarshalYAML() (any, error) {
	switch d.Kind {
	case DirThrows:
		return struct {
			Directive DirectiveKind `yaml:"directive"`
			Class     string        `yaml:"class"`
		}{d.Kind, d.Class}, nil
	case DirVar:
		return struct {
			Directive  DirectiveKind   `yaml:"directive"`
			Slot       uint16          `yaml:"slot"`
			Name       string          `yaml:"name"`
			Descriptor FieldDescriptor `yaml:"descriptor"`
			From       LabelRef        `yaml:"from"`
			To         LabelRef        `yaml:"to"`
		}{d.Kind, d.Value, d.Name, d.Descriptor, d.From, d.To}, nil
	case DirCatch:
		return struct {
			Directive DirectiveKind `yaml:"directive"`
			Class     string        `yaml:"class"`
			From      LabelRef      `yaml:"from"`
			To        LabelRef      `yaml:"to"`
			Using     LabelRef      `yaml:"using"`
		}{d.Kind, d.Class, d.From, d.To, d.Handler}, nil
	}
	return struct {
		Directive DirectiveKind `yaml:"directive"`
		Value     uint16        `yaml:"value"`
	}{d.Kind, d.Value}, nil
}

type Instruction struct {
	Opcode  *Opcode         `yaml:"op"`
	Operand Operand         `yaml:"operand,omitempty"`
	Span    sourcefile.Span `yaml:"-"`
}

func (*Instruction) statementNode() {}

// Operand is the argument of an instruction; its concrete type follows the
// opcode's Shape.
type Operand interface {
	operandNode()
}

type LocalIndex struct {
	Index uint16 `yaml:"local"`
}

type ByteValue struct {
	Value int8 `yaml:"value"`
}

type ShortValue struct {
	Value int16 `yaml:"value"`
}

// LabelRef names a branch target.
type LabelRef struct {
	Name string
	Span sourcefile.Span
}

func (r LabelRef) MarshalYAML() (any, error) {
	return r.Name, nil
}

// ClassRef is a class operand: an internal name or, for array classes, a
// descriptor.
type ClassRef struct {
	Name string `yaml:"class"`
}

type FieldRef struct {
	Class      string          `yaml:"class"`
	Name       string          `yaml:"name"`
	Descriptor FieldDescriptor `yaml:"descriptor"`
}

type MethodRef struct {
	Class      string           `yaml:"class"`
	Name       string           `yaml:"name"`
	Descriptor MethodDescriptor `yaml:"descriptor"`
	Interface  bool             `yaml:"interface,omitempty"`
	Count      uint8            `yaml:"count,omitempty"`
}

type ConstKind string

const (
	ConstInt    ConstKind = "int"
	ConstLong   ConstKind = "long"
	ConstFloat  ConstKind = "float"
	ConstDouble ConstKind = "double"
	ConstString ConstKind = "string"
)

// Constant is a literal for ldc, ldc_w, ldc2_w or a field initializer. Float
// values are stored already rounded to float32.
type Constant struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
}

// IsWide reports whether the constant occupies two pool slots.
func (c *Constant) IsWide() bool {
	return c.Kind == ConstLong || c.Kind == ConstDouble
}

func (c *Constant) MarshalYAML() (any, error) {
	var v any
	switch c.Kind {
	case ConstInt, ConstLong:
		v = c.Int
	case ConstFloat, ConstDouble:
		v = c.Float
	default:
		v = c.Str
	}
	return map[string]any{string(c.Kind): v}, nil
}

type Increment struct {
	Index uint16 `yaml:"local"`
	Delta int16  `yaml:"delta"`
}

type ArrayType struct {
	Elem BaseType `yaml:"type"`
}

type MultiArray struct {
	Class      string `yaml:"class"`
	Dimensions uint8  `yaml:"dimensions"`
}

type TableSwitch struct {
	Low     int32      `yaml:"low"`
	High    int32      `yaml:"high"`
	Targets []LabelRef `yaml:"targets"`
	Default LabelRef   `yaml:"default"`
}

type LookupPair struct {
	Key    int32    `yaml:"key"`
	Target LabelRef `yaml:"target"`
}

type LookupSwitch struct {
	Pairs   []LookupPair `yaml:"pairs"`
	Default LabelRef     `yaml:"default"`
}

// Wide extends a local-variable instruction (or iinc) to 16-bit operands.
type Wide struct {
	Opcode  *Opcode `yaml:"op"`
	Operand Operand `yaml:"operand"`
}

func (*LocalIndex) operandNode()   {}
func (*ByteValue) operandNode()    {}
func (*ShortValue) operandNode()   {}
func (*LabelRef) operandNode()     {}
func (*ClassRef) operandNode()     {}
func (*FieldRef) operandNode()     {}
func (*MethodRef) operandNode()    {}
func (*Constant) operandNode()     {}
func (*Increment) operandNode()    {}
func (*ArrayType) operandNode()    {}
func (*MultiArray) operandNode()   {}
func (*TableSwitch) operandNode()  {}
func (*LookupSwitch) operandNode() {}
func (*Wide) operandNode()         {}
