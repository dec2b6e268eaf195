package constpool

import (
	"fmt"
	"math"

	"github.com/oyi-lang/phoron-asm/pkg/ast"
)

// Analyze builds the constant pool for prog. Entries are added in a fixed
// top-down order: source file, class header, fields, then methods statement
// by statement, so two runs over the same program yield identical indices.
func Analyze(prog *ast.Program) (*Pool, error) {
	a := &analyzer{pool: New()}
	if err := a.program(prog); err != nil {
		return nil, err
	}
	return a.pool, nil
}

type analyzer struct {
	pool *Pool
}

func (a *analyzer) program(prog *ast.Program) error {
	if err := a.header(&prog.Header); err != nil {
		return err
	}
	for _, f := range prog.Fields {
		if err := a.field(f); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	for _, m := range prog.Methods {
		if err := a.method(m); err != nil {
			return fmt.Errorf("method %s%s: %w", m.Name, m.Descriptor, err)
		}
	}
	return nil
}

// utf8s adds each string in order, stopping at the first failure.
func (a *analyzer) utf8s(values ...string) error {
	for _, v := range values {
		if _, err := a.pool.AddUtf8(v); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) header(h *ast.Header) error {
	if h.SourceFile != "" {
		if err := a.utf8s(ast.AttrSourceFile, h.SourceFile); err != nil {
			return err
		}
	}
	if _, err := a.pool.AddClass(h.Name); err != nil {
		return err
	}
	if _, err := a.pool.AddClass(h.Super); err != nil {
		return err
	}
	for _, iface := range h.Implements {
		if _, err := a.pool.AddClass(iface); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) field(f *ast.Field) error {
	if err := a.utf8s(f.Name, f.Descriptor.String()); err != nil {
		return err
	}
	if f.Init == nil {
		return nil
	}
	if _, err := a.pool.AddUtf8(ast.AttrConstantValue); err != nil {
		return err
	}
	return a.constant(f.Init)
}

func (a *analyzer) method(m *ast.Method) error {
	if err := a.utf8s(m.Name, m.Descriptor.String()); err != nil {
		return err
	}
	if m.HasCode() {
		if _, err := a.pool.AddUtf8(ast.AttrCode); err != nil {
			return err
		}
	}
	for _, stmt := range m.Body {
		var err error
		switch s := stmt.(type) {
		case *ast.Directive:
			err = a.directive(s)
		case *ast.Instruction:
			err = a.instruction(s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) directive(d *ast.Directive) error {
	switch d.Kind {
	case ast.DirThrows:
		if _, err := a.pool.AddUtf8(ast.AttrExceptions); err != nil {
			return err
		}
		_, err := a.pool.AddClass(d.Class)
		return err
	case ast.DirLine:
		_, err := a.pool.AddUtf8(ast.AttrLineNumberTable)
		return err
	case ast.DirVar:
		return a.utf8s(ast.AttrLocalVariableTable, d.Name, d.Descriptor.String())
	case ast.DirCatch:
		if d.CatchesAll() {
			return nil
		}
		_, err := a.pool.AddClass(d.Class)
		return err
	}
	return nil
}

func (a *analyzer) instruction(ins *ast.Instruction) error {
	var err error
	switch op := ins.Operand.(type) {
	case *ast.ClassRef:
		_, err = a.pool.AddClass(op.Name)
	case *ast.MultiArray:
		_, err = a.pool.AddClass(op.Class)
	case *ast.FieldRef:
		if !ins.Opcode.IsFieldAccess() {
			return fmt.Errorf("%s cannot take a field reference", ins.Opcode)
		}
		_, err = a.pool.AddFieldref(op.Class, op.Name, op.Descriptor.String())
	case *ast.MethodRef:
		if op.Interface {
			_, err = a.pool.AddInterfaceMethodref(op.Class, op.Name, op.Descriptor.String())
		} else {
			_, err = a.pool.AddMethodref(op.Class, op.Name, op.Descriptor.String())
		}
	case *ast.Constant:
		err = a.constant(op)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ins.Opcode, err)
	}
	return nil
}

func (a *analyzer) constant(c *ast.Constant) error {
	var err error
	switch c.Kind {
	case ast.ConstInt:
		_, err = a.pool.AddInteger(int32(c.Int))
	case ast.ConstLong:
		_, err = a.pool.AddLong(c.Int)
	case ast.ConstFloat:
		_, err = a.pool.AddFloat(float32(c.Float))
	case ast.ConstDouble:
		_, err = a.pool.AddDouble(c.Float)
	case ast.ConstString:
		_, err = a.pool.AddString(c.Str)
	default:
		err = fmt.Errorf("unknown constant kind %q", c.Kind)
	}
	return err
}

// Resolve returns the index an operand refers to in pool, for operands that
// reference the pool at all.
func Resolve(pool *Pool, operand ast.Operand) (uint16, bool) {
	switch op := operand.(type) {
	case *ast.ClassRef:
		return pool.Class(op.Name)
	case *ast.MultiArray:
		return pool.Class(op.Class)
	case *ast.FieldRef:
		return pool.Fieldref(op.Class, op.Name, op.Descriptor.String())
	case *ast.MethodRef:
		if op.Interface {
			return pool.InterfaceMethodref(op.Class, op.Name, op.Descriptor.String())
		}
		return pool.Methodref(op.Class, op.Name, op.Descriptor.String())
	case *ast.Constant:
		switch op.Kind {
		case ast.ConstInt:
			if op.Int < math.MinInt32 || op.Int > math.MaxInt32 {
				return 0, false
			}
			return pool.Integer(int32(op.Int))
		case ast.ConstLong:
			return pool.Long(op.Int)
		case ast.ConstFloat:
			return pool.Float(float32(op.Float))
		case ast.ConstDouble:
			return pool.Double(op.Float)
		case ast.ConstString:
			return pool.String(op.Str)
		}
	}
	return 0, false
}
