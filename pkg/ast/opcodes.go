package ast

import "fmt"

// Shape describes the operands an instruction takes in source form.
type Shape int

const (
	NoOperand Shape = iota
	LocalOperand
	ByteOperand
	ShortOperand
	LabelOperand
	ClassOperand
	FieldOperand
	MethodOperand
	InterfaceMethodOperand
	ConstantOperand
	WideConstantOperand
	IincOperand
	NewArrayOperand
	MultiArrayOperand
	TableSwitchOperand
	LookupSwitchOperand
	WideOperand
)

// Opcode is one JVM instruction definition.
type Opcode struct {
	Mnemonic string
	Code     byte
	Shape    Shape
}

func (o *Opcode) String() string {
	if o == nil {
		return "<nil>"
	}
	return o.Mnemonic
}

func (o *Opcode) MarshalYAML() (any, error) {
	return o.Mnemonic, nil
}

// IsFieldAccess reports whether the instruction reads or writes a field.
func (o *Opcode) IsFieldAccess() bool {
	return o.Shape == FieldOperand
}

// Widenable reports whether the instruction may follow wide.
func (o *Opcode) Widenable() bool {
	return o.Shape == LocalOperand || o.Shape == IincOperand
}

var opcodes = []*Opcode{
	{"nop", 0x00, NoOperand},
	{"aconst_null", 0x01, NoOperand},
	{"iconst_m1", 0x02, NoOperand},
	{"iconst_0", 0x03, NoOperand},
	{"iconst_1", 0x04, NoOperand},
	{"iconst_2", 0x05, NoOperand},
	{"iconst_3", 0x06, NoOperand},
	{"iconst_4", 0x07, NoOperand},
	{"iconst_5", 0x08, NoOperand},
	{"lconst_0", 0x09, NoOperand},
	{"lconst_1", 0x0a, NoOperand},
	{"fconst_0", 0x0b, NoOperand},
	{"fconst_1", 0x0c, NoOperand},
	{"fconst_2", 0x0d, NoOperand},
	{"dconst_0", 0x0e, NoOperand},
	{"dconst_1", 0x0f, NoOperand},
	{"bipush", 0x10, ByteOperand},
	{"sipush", 0x11, ShortOperand},
	{"ldc", 0x12, ConstantOperand},
	{"ldc_w", 0x13, ConstantOperand},
	{"ldc2_w", 0x14, WideConstantOperand},
	{"iload", 0x15, LocalOperand},
	{"lload", 0x16, LocalOperand},
	{"fload", 0x17, LocalOperand},
	{"dload", 0x18, LocalOperand},
	{"aload", 0x19, LocalOperand},
	{"iload_0", 0x1a, NoOperand},
	{"iload_1", 0x1b, NoOperand},
	{"iload_2", 0x1c, NoOperand},
	{"iload_3", 0x1d, NoOperand},
	{"lload_0", 0x1e, NoOperand},
	{"lload_1", 0x1f, NoOperand},
	{"lload_2", 0x20, NoOperand},
	{"lload_3", 0x21, NoOperand},
	{"fload_0", 0x22, NoOperand},
	{"fload_1", 0x23, NoOperand},
	{"fload_2", 0x24, NoOperand},
	{"fload_3", 0x25, NoOperand},
	{"dload_0", 0x26, NoOperand},
	{"dload_1", 0x27, NoOperand},
	{"dload_2", 0x28, NoOperand},
	{"dload_3", 0x29, NoOperand},
	{"aload_0", 0x2a, NoOperand},
	{"aload_1", 0x2b, NoOperand},
	{"aload_2", 0x2c, NoOperand},
	{"aload_3", 0x2d, NoOperand},
	{"iaload", 0x2e, NoOperand},
	{"laload", 0x2f, NoOperand},
	{"faload", 0x30, NoOperand},
	{"daload", 0x31, NoOperand},
	{"aaload", 0x32, NoOperand},
	{"baload", 0x33, NoOperand},
	{"caload", 0x34, NoOperand},
	{"saload", 0x35, NoOperand},
	{"istore", 0x36, LocalOperand},
	{"lstore", 0x37, LocalOperand},
	{"fstore", 0x38, LocalOperand},
	{"dstore", 0x39, LocalOperand},
	{"astore", 0x3a, LocalOperand},
	{"istore_0", 0x3b, NoOperand},
	{"istore_1", 0x3c, NoOperand},
	{"istore_2", 0x3d, NoOperand},
	{"istore_3", 0x3e, NoOperand},
	{"lstore_0", 0x3f, NoOperand},
	{"lstore_1", 0x40, NoOperand},
	{"lstore_2", 0x41, NoOperand},
	{"lstore_3", 0x42, NoOperand},
	{"fstore_0", 0x43, NoOperand},
	{"fstore_1", 0x44, NoOperand},
	{"fstore_2", 0x45, NoOperand},
	{"fstore_3", 0x46, NoOperand},
	{"dstore_0", 0x47, NoOperand},
	{"dstore_1", 0x48, NoOperand},
	{"dstore_2", 0x49, NoOperand},
	{"dstore_3", 0x4a, NoOperand},
	{"astore_0", 0x4b, NoOperand},
	{"astore_1", 0x4c, NoOperand},
	{"astore_2", 0x4d, NoOperand},
	{"astore_3", 0x4e, NoOperand},
	{"iastore", 0x4f, NoOperand},
	{"lastore", 0x50, NoOperand},
	{"fastore", 0x51, NoOperand},
	{"dastore", 0x52, NoOperand},
	{"aastore", 0x53, NoOperand},
	{"bastore", 0x54, NoOperand},
	{"castore", 0x55, NoOperand},
	{"sastore", 0x56, NoOperand},
	{"pop", 0x57, NoOperand},
	{"pop2", 0x58, NoOperand},
	{"dup", 0x59, NoOperand},
	{"dup_x1", 0x5a, NoOperand},
	{"dup_x2", 0x5b, NoOperand},
	{"dup2", 0x5c, NoOperand},
	{"dup2_x1", 0x5d, NoOperand},
	{"dup2_x2", 0x5e, NoOperand},
	{"swap", 0x5f, NoOperand},
	{"iadd", 0x60, NoOperand},
	{"ladd", 0x61, NoOperand},
	{"fadd", 0x62, NoOperand},
	{"dadd", 0x63, NoOperand},
	{"isub", 0x64, NoOperand},
	{"lsub", 0x65, NoOperand},
	{"fsub", 0x66, NoOperand},
	{"dsub", 0x67, NoOperand},
	{"imul", 0x68, NoOperand},
	{"lmul", 0x69, NoOperand},
	{"fmul", 0x6a, NoOperand},
	{"dmul", 0x6b, NoOperand},
	{"idiv", 0x6c, NoOperand},
	{"ldiv", 0x6d, NoOperand},
	{"fdiv", 0x6e, NoOperand},
	{"ddiv", 0x6f, NoOperand},
	{"irem", 0x70, NoOperand},
	{"lrem", 0x71, NoOperand},
	{"frem", 0x72, NoOperand},
	{"drem", 0x73, NoOperand},
	{"ineg", 0x74, NoOperand},
	{"lneg", 0x75, NoOperand},
	{"fneg", 0x76, NoOperand},
	{"dneg", 0x77, NoOperand},
	{"ishl", 0x78, NoOperand},
	{"lshl", 0x79, NoOperand},
	{"ishr", 0x7a, NoOperand},
	{"lshr", 0x7b, NoOperand},
	{"iushr", 0x7c, NoOperand},
	{"lushr", 0x7d, NoOperand},
	{"iand", 0x7e, NoOperand},
	{"land", 0x7f, NoOperand},
	{"ior", 0x80, NoOperand},
	{"lor", 0x81, NoOperand},
	{"ixor", 0x82, NoOperand},
	{"lxor", 0x83, NoOperand},
	{"iinc", 0x84, IincOperand},
	{"i2l", 0x85, NoOperand},
	{"i2f", 0x86, NoOperand},
	{"i2d", 0x87, NoOperand},
	{"l2i", 0x88, NoOperand},
	{"l2f", 0x89, NoOperand},
	{"l2d", 0x8a, NoOperand},
	{"f2i", 0x8b, NoOperand},
	{"f2l", 0x8c, NoOperand},
	{"f2d", 0x8d, NoOperand},
	{"d2i", 0x8e, NoOperand},
	{"d2l", 0x8f, NoOperand},
	{"d2f", 0x90, NoOperand},
	{"i2b", 0x91, NoOperand},
	{"i2c", 0x92, NoOperand},
	{"i2s", 0x93, NoOperand},
	{"lcmp", 0x94, NoOperand},
	{"fcmpl", 0x95, NoOperand},
	{"fcmpg", 0x96, NoOperand},
	{"dcmpl", 0x97, NoOperand},
	{"dcmpg", 0x98, NoOperand},
	{"ifeq", 0x99, LabelOperand},
	{"ifne", 0x9a, LabelOperand},
	{"iflt", 0x9b, LabelOperand},
	{"ifge", 0x9c, LabelOperand},
	{"ifgt", 0x9d, LabelOperand},
	{"ifle", 0x9e, LabelOperand},
	{"if_icmpeq", 0x9f, LabelOperand},
	{"if_icmpne", 0xa0, LabelOperand},
	{"if_icmplt", 0xa1, LabelOperand},
	{"if_icmpge", 0xa2, LabelOperand},
	{"if_icmpgt", 0xa3, LabelOperand},
	{"if_icmple", 0xa4, LabelOperand},
	{"if_acmpeq", 0xa5, LabelOperand},
	{"if_acmpne", 0xa6, LabelOperand},
	{"goto", 0xa7, LabelOperand},
	{"jsr", 0xa8, LabelOperand},
	{"ret", 0xa9, LocalOperand},
	{"tableswitch", 0xaa, TableSwitchOperand},
	{"lookupswitch", 0xab, LookupSwitchOperand},
	{"ireturn", 0xac, NoOperand},
	{"lreturn", 0xad, NoOperand},
	{"freturn", 0xae, NoOperand},
	{"dreturn", 0xaf, NoOperand},
	{"areturn", 0xb0, NoOperand},
	{"return", 0xb1, NoOperand},
	{"getstatic", 0xb2, FieldOperand},
	{"putstatic", 0xb3, FieldOperand},
	{"getfield", 0xb4, FieldOperand},
	{"putfield", 0xb5, FieldOperand},
	{"invokevirtual", 0xb6, MethodOperand},
	{"invokespecial", 0xb7, MethodOperand},
	{"invokestatic", 0xb8, MethodOperand},
	{"invokeinterface", 0xb9, InterfaceMethodOperand},
	{"new", 0xbb, ClassOperand},
	{"newarray", 0xbc, NewArrayOperand},
	{"anewarray", 0xbd, ClassOperand},
	{"arraylength", 0xbe, NoOperand},
	{"athrow", 0xbf, NoOperand},
	{"checkcast", 0xc0, ClassOperand},
	{"instanceof", 0xc1, ClassOperand},
	{"monitorenter", 0xc2, NoOperand},
	{"monitorexit", 0xc3, NoOperand},
	{"wide", 0xc4, WideOperand},
	{"multianewarray", 0xc5, MultiArrayOperand},
	{"ifnull", 0xc6, LabelOperand},
	{"ifnonnull", 0xc7, LabelOperand},
	{"goto_w", 0xc8, LabelOperand},
	{"jsr_w", 0xc9, LabelOperand},
}

var opcodesByMnemonic = func() map[string]*Opcode {
	m := make(map[string]*Opcode, len(opcodes))
	for _, op := range opcodes {
		m[op.Mnemonic] = op
	}
	return m
}()

// LookupOpcode finds an instruction by mnemonic.
func LookupOpcode(mnemonic string) (*Opcode, bool) {
	op, ok := opcodesByMnemonic[mnemonic]
	return op, ok
}

// MustOpcode is LookupOpcode for mnemonics known at compile time.
func MustOpcode(mnemonic string) *Opcode {
	op, ok := opcodesByMnemonic[mnemonic]
	if !ok {
		panic(fmt.Sprintf("ast: unknown opcode %q", mnemonic))
	}
	return op
}

// Opcodes returns every instruction in opcode order.
func Opcodes() []*Opcode {
	out := make([]*Opcode, len(opcodes))
	copy(out, opcodes)
	return out
}
