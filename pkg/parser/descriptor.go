package parser

import (
	"fmt"
	"strings"

	"github.com/oyi-lang/phoron-asm/pkg/ast"
)

// maxArrayDimensions is the JVM limit on array nesting.
const maxArrayDimensions = 255

type descriptorScanner struct {
	src string
	pos int
}

func (s *descriptorScanner) done() bool {
	return s.pos >= len(s.src)
}

func (s *descriptorScanner) field() (ast.FieldDescriptor, error) {
	dims := 0
	for !s.done() && s.src[s.pos] == '[' {
		dims++
		s.pos++
	}
	if dims > maxArrayDimensions {
		return ast.FieldDescriptor{}, fmt.Errorf("array type has %d dimensions, at most %d allowed", dims, maxArrayDimensions)
	}
	if s.done() {
		if dims > 0 {
			return ast.FieldDescriptor{}, fmt.Errorf("missing component type for array type")
		}
		return ast.FieldDescriptor{}, fmt.Errorf("empty type descriptor")
	}

	var desc ast.FieldDescriptor
	c := s.src[s.pos]
	if b, ok := ast.BaseTypeFromChar(c); ok {
		s.pos++
		desc = ast.BaseDesc(b)
	} else if c == 'L' {
		end := strings.IndexByte(s.src[s.pos:], ';')
		if end < 0 {
			return ast.FieldDescriptor{}, fmt.Errorf("missing ';' after class name in %q", s.src)
		}
		name := s.src[s.pos+1 : s.pos+end]
		if name == "" {
			return ast.FieldDescriptor{}, fmt.Errorf("empty class name in %q", s.src)
		}
		s.pos += end + 1
		desc = ast.ObjectDesc(name)
	} else {
		return ast.FieldDescriptor{}, fmt.Errorf("invalid type descriptor character %q in %q", c, s.src)
	}

	for i := 0; i < dims; i++ {
		desc = ast.ArrayDesc(desc)
	}
	return desc, nil
}

// ParseFieldDescriptor parses a JVM field descriptor such as I,
// Ljava/lang/String; or [[D. A bare internal class name (java/lang/String) is
// also accepted as an object type.
func ParseFieldDescriptor(src string) (ast.FieldDescriptor, error) {
	s := &descriptorScanner{src: src}
	desc, err := s.field()
	if err == nil && s.done() {
		return desc, nil
	}
	if isBareClassName(src) {
		return ast.ObjectDesc(src), nil
	}
	if err != nil {
		return ast.FieldDescriptor{}, err
	}
	return ast.FieldDescriptor{}, fmt.Errorf("unexpected %q after type descriptor %s", src[s.pos:], desc)
}

func isBareClassName(src string) bool {
	return src != "" && !strings.ContainsAny(src, ";[()") && !strings.HasSuffix(src, "/")
}

// ParseMethodParams parses the concatenated parameter descriptors found
// between the parentheses of a method descriptor.
func ParseMethodParams(src string) ([]ast.FieldDescriptor, error) {
	s := &descriptorScanner{src: src}
	var params []ast.FieldDescriptor
	for !s.done() {
		desc, err := s.field()
		if err != nil {
			return nil, err
		}
		params = append(params, desc)
	}
	return params, nil
}

// ParseReturnDescriptor parses V or a field descriptor. Void yields nil.
func ParseReturnDescriptor(src string) (*ast.FieldDescriptor, error) {
	if src == "V" {
		return nil, nil
	}
	s := &descriptorScanner{src: src}
	desc, err := s.field()
	if err != nil {
		return nil, err
	}
	if !s.done() {
		return nil, fmt.Errorf("unexpected %q after return type %s", src[s.pos:], desc)
	}
	return &desc, nil
}

// ParseMethodDescriptor parses a complete descriptor such as
// (ILjava/lang/String;)V.
func ParseMethodDescriptor(src string) (ast.MethodDescriptor, error) {
	if !strings.HasPrefix(src, "(") {
		return ast.MethodDescriptor{}, fmt.Errorf("method descriptor %q must start with '('", src)
	}
	closing := strings.IndexByte(src, ')')
	if closing < 0 {
		return ast.MethodDescriptor{}, fmt.Errorf("method descriptor %q is missing ')'", src)
	}
	params, err := ParseMethodParams(src[1:closing])
	if err != nil {
		return ast.MethodDescriptor{}, err
	}
	if closing+1 >= len(src) {
		return ast.MethodDescriptor{}, fmt.Errorf("method descriptor %q is missing a return type", src)
	}
	ret, err := ParseReturnDescriptor(src[closing+1:])
	if err != nil {
		return ast.MethodDescriptor{}, err
	}
	return ast.MethodDescriptor{Params: params, Return: ret}, nil
}
