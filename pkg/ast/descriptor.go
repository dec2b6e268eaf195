package ast

import (
	"fmt"
	"strings"
)

// BaseType is a primitive JVM type, stored as its descriptor character.
type BaseType byte

const (
	Byte    BaseType = 'B'
	Char    BaseType = 'C'
	Double  BaseType = 'D'
	Float   BaseType = 'F'
	Int     BaseType = 'I'
	Long    BaseType = 'J'
	Short   BaseType = 'S'
	Boolean BaseType = 'Z'
)

var baseTypeNames = map[BaseType]string{
	Byte:    "byte",
	Char:    "char",
	Double:  "double",
	Float:   "float",
	Int:     "int",
	Long:    "long",
	Short:   "short",
	Boolean: "boolean",
}

// newarray atype codes (JVMS 6.5.newarray).
var arrayTypeCodes = map[BaseType]byte{
	Boolean: 4,
	Char:    5,
	Float:   6,
	Double:  7,
	Byte:    8,
	Short:   9,
	Int:     10,
	Long:    11,
}

// BaseTypeFromChar maps a descriptor character to its base type.
func BaseTypeFromChar(c byte) (BaseType, bool) {
	b := BaseType(c)
	_, ok := baseTypeNames[b]
	return b, ok
}

// BaseTypeFromName maps a Java keyword (int, boolean, ...) to its base type.
func BaseTypeFromName(name string) (BaseType, bool) {
	for b, n := range baseTypeNames {
		if n == name {
			return b, true
		}
	}
	return 0, false
}

func (b BaseType) String() string {
	return string(rune(b))
}

// Name returns the Java keyword for the type.
func (b BaseType) Name() string {
	return baseTypeNames[b]
}

// ArrayTypeCode returns the newarray operand for the type.
func (b BaseType) ArrayTypeCode() byte {
	return arrayTypeCodes[b]
}

// MarshalYAML renders the Java keyword.
func (b BaseType) MarshalYAML() (any, error) {
	if name, ok := baseTypeNames[b]; ok {
		return name, nil
	}
	return nil, fmt.Errorf("ast: invalid base type %q", rune(b))
}

type DescriptorKind int

const (
	BaseDescriptor DescriptorKind = iota
	ObjectDescriptor
	ArrayDescriptor
)

// FieldDescriptor is a JVM field type: a base type, an object type, or an
// array of another field type.
type FieldDescriptor struct {
	Kind      DescriptorKind
	Base      BaseType
	ClassName string
	Component *FieldDescriptor
}

func BaseDesc(b BaseType) FieldDescriptor {
	return FieldDescriptor{Kind: BaseDescriptor, Base: b}
}

func ObjectDesc(className string) FieldDescriptor {
	return FieldDescriptor{Kind: ObjectDescriptor, ClassName: className}
}

func ArrayDesc(component FieldDescriptor) FieldDescriptor {
	return FieldDescriptor{Kind: ArrayDescriptor, Component: &component}
}

func (d FieldDescriptor) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d FieldDescriptor) write(b *strings.Builder) {
	switch d.Kind {
	case BaseDescriptor:
		b.WriteByte(byte(d.Base))
	case ObjectDescriptor:
		b.WriteByte('L')
		b.WriteString(d.ClassName)
		b.WriteByte(';')
	case ArrayDescriptor:
		b.WriteByte('[')
		if d.Component != nil {
			d.Component.write(b)
		}
	}
}

// Dimensions counts the leading array brackets.
func (d FieldDescriptor) Dimensions() int {
	n := 0
	for cur := &d; cur.Kind == ArrayDescriptor && cur.Component != nil; cur = cur.Component {
		n++
	}
	return n
}

// IsWide reports whether a value of this type takes two slots (long, double).
func (d FieldDescriptor) IsWide() bool {
	return d.Kind == BaseDescriptor && (d.Base == Long || d.Base == Double)
}

// ClassEntryName is the name a CONSTANT_Class entry uses for this type: the
// internal name for object types and the full descriptor for arrays.
func (d FieldDescriptor) ClassEntryName() (string, bool) {
	switch d.Kind {
	case ObjectDescriptor:
		return d.ClassName, true
	case ArrayDescriptor:
		return d.String(), true
	}
	return "", false
}

func (d FieldDescriptor) MarshalYAML() (any, error) {
	return d.String(), nil
}

// MethodDescriptor is a parameter list plus return type. A nil Return means void.
type MethodDescriptor struct {
	Params []FieldDescriptor
	Return *FieldDescriptor
}

func (m MethodDescriptor) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range m.Params {
		p.write(&b)
	}
	b.WriteByte(')')
	if m.Return == nil {
		b.WriteByte('V')
	} else {
		m.Return.write(&b)
	}
	return b.String()
}

// IsVoid reports whether the method returns nothing.
func (m MethodDescriptor) IsVoid() bool {
	return m.Return == nil
}

// ArgSlots counts local variable slots taken by the parameters.
func (m MethodDescriptor) ArgSlots() int {
	n := 0
	for _, p := range m.Params {
		if p.IsWide() {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func (m MethodDescriptor) MarshalYAML() (any, error) {
	return m.String(), nil
}
