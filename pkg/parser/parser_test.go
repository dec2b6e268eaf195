package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/oyi-lang/phoron-asm/pkg/ast"
	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

var ignoreSpans = cmpopts.IgnoreTypes(sourcefile.Span{})

func parseFixture(t *testing.T, name string) *ast.Program {
	t.Helper()
	file, err := sourcefile.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	prog, err := Parse(file, Options{})
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return prog
}

func parseErrors(t *testing.T, src string) ErrorList {
	t.Helper()
	_, err := ParseSource("Bad.pho", src, Options{})
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %T", err)
	}
	return list
}

func op(mnemonic string) *ast.Opcode {
	return ast.MustOpcode(mnemonic)
}

func TestParseHelloWorld(t *testing.T) {
	prog := parseFixture(t, "HelloWorld.pho")

	stringArray := ast.ArrayDesc(ast.ObjectDesc("java/lang/String"))
	want := &ast.Program{
		Header: ast.Header{
			SourceFile: "HelloWorld.pho",
			Kind:       ast.KindClass,
			Name:       "HelloWorld",
			Access:     ast.ClassAccess(ast.AccPublic | ast.AccSuper),
			Super:      "java/lang/Object",
		},
		Methods: []*ast.Method{
			{
				Name:   "<init>",
				Access: ast.MethodAccess(ast.AccPublic),
				Body: []ast.Statement{
					&ast.Instruction{Opcode: op("aload_0")},
					&ast.Instruction{Opcode: op("invokespecial"), Operand: &ast.MethodRef{
						Class: "java/lang/Object",
						Name:  "<init>",
					}},
					&ast.Instruction{Opcode: op("return")},
				},
			},
			{
				Name:       "main",
				Access:     ast.MethodAccess(ast.AccPublic | ast.AccStatic),
				Descriptor: ast.MethodDescriptor{Params: []ast.FieldDescriptor{stringArray}},
				Body: []ast.Statement{
					&ast.Directive{Kind: ast.DirLimitStack, Value: 2},
					&ast.Directive{Kind: ast.DirLimitLocals, Value: 1},
					&ast.Instruction{Opcode: op("getstatic"), Operand: &ast.FieldRef{
						Class:      "java/lang/System",
						Name:       "out",
						Descriptor: ast.ObjectDesc("java/io/PrintStream"),
					}},
					&ast.Instruction{Opcode: op("ldc"), Operand: &ast.Constant{Kind: ast.ConstString, Str: "Hello, world"}},
					&ast.Instruction{Opcode: op("invokevirtual"), Operand: &ast.MethodRef{
						Class: "java/io/PrintStream",
						Name:  "println",
						Descriptor: ast.MethodDescriptor{
							Params: []ast.FieldDescriptor{ast.ObjectDesc("java/lang/String")},
						},
					}},
					&ast.Instruction{Opcode: op("return")},
				},
			},
		},
	}
	if diff := cmp.Diff(want, prog, ignoreSpans, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFieldsAndHeader(t *testing.T) {
	prog := parseFixture(t, "Fields.pho")

	h := prog.Header
	if h.SourceFile != "Fields.j" {
		t.Fatalf("source = %q", h.SourceFile)
	}
	if got := h.Access.Names(); strings.Join(got, " ") != "public final super" {
		t.Fatalf("class access = %v", got)
	}
	if len(h.Implements) != 1 || h.Implements[0] != "java/io/Serializable" {
		t.Fatalf("implements = %v", h.Implements)
	}

	want := []struct {
		name string
		desc string
		init *ast.Constant
	}{
		{"MAX", "I", &ast.Constant{Kind: ast.ConstInt, Int: 100}},
		{"RATIO", "F", &ast.Constant{Kind: ast.ConstFloat, Float: 1.5}},
		{"BIG", "J", &ast.Constant{Kind: ast.ConstLong, Int: 9000000000}},
		{"PI", "D", &ast.Constant{Kind: ast.ConstDouble, Float: 3.14159}},
		{"NAME", "Ljava/lang/String;", &ast.Constant{Kind: ast.ConstString, Str: "fields"}},
		{"counter", "J", nil},
		{"cache", "[[Ljava/lang/Object;", nil},
	}
	if len(prog.Fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(prog.Fields))
	}
	for i, w := range want {
		f := prog.Fields[i]
		if f.Name != w.name || f.Descriptor.String() != w.desc {
			t.Fatalf("field %d = %s %s, want %s %s", i, f.Name, f.Descriptor, w.name, w.desc)
		}
		if diff := cmp.Diff(w.init, f.Init); diff != "" {
			t.Fatalf("field %s init (-want +got):\n%s", w.name, diff)
		}
	}
	if got := prog.Fields[5].Access.Names(); strings.Join(got, " ") != "protected volatile" {
		t.Fatalf("counter access = %v", got)
	}
}

func TestParseLabelsDirectivesAndWide(t *testing.T) {
	prog := parseFixture(t, "Count.pho")
	m := prog.Methods[0]
	if m.Descriptor.String() != "(I)I" {
		t.Fatalf("descriptor = %s", m.Descriptor)
	}

	var kinds []string
	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *ast.Label:
			kinds = append(kinds, s.Name+":")
		case *ast.Directive:
			kinds = append(kinds, "."+string(s.Kind))
		case *ast.Instruction:
			kinds = append(kinds, s.Opcode.Mnemonic)
		}
	}
	want := []string{
		".limit stack", ".limit locals", ".throws", ".line",
		"iconst_0", "istore_1", "Loop:", "iload_1", "iload_0", "if_icmpge",
		"iinc", "wide", "goto", "Done:", ".var", "iload_1", "ireturn",
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("statements (-want +got):\n%s", diff)
	}

	wide := m.Body[11].(*ast.Instruction).Operand.(*ast.Wide)
	if wide.Opcode.Mnemonic != "iinc" {
		t.Fatalf("wide opcode = %s", wide.Opcode)
	}
	if diff := cmp.Diff(&ast.Increment{Index: 300, Delta: -1000}, wide.Operand); diff != "" {
		t.Fatalf("wide operand (-want +got):\n%s", diff)
	}

	v := m.Body[14].(*ast.Directive)
	if v.Value != 1 || v.Name != "i" || v.Descriptor.String() != "I" || v.From.Name != "Loop" || v.To.Name != "Done" {
		t.Fatalf("unexpected .var directive %+v", v)
	}
}

func TestParseSwitches(t *testing.T) {
	prog := parseFixture(t, "Switches.pho")
	body := prog.Methods[0].Body

	table := body[3].(*ast.Instruction).Operand.(*ast.TableSwitch)
	if table.Low != 0 || table.High != 2 || len(table.Targets) != 3 || table.Default.Name != "Other" {
		t.Fatalf("tableswitch = %+v", table)
	}
	if table.Targets[2].Name != "Two" {
		t.Fatalf("third target = %s", table.Targets[2].Name)
	}

	var lookup *ast.LookupSwitch
	for _, stmt := range body {
		if ins, ok := stmt.(*ast.Instruction); ok && ins.Opcode.Mnemonic == "lookupswitch" {
			lookup = ins.Operand.(*ast.LookupSwitch)
		}
	}
	if lookup == nil {
		t.Fatalf("lookupswitch not parsed")
	}
	want := &ast.LookupSwitch{
		Pairs: []ast.LookupPair{
			{Key: -1, Target: ast.LabelRef{Name: "Two"}},
			{Key: 10, Target: ast.LabelRef{Name: "Other"}},
		},
		Default: ast.LabelRef{Name: "Other"},
	}
	if diff := cmp.Diff(want, lookup, ignoreSpans); diff != "" {
		t.Fatalf("lookupswitch (-want +got):\n%s", diff)
	}
}

func TestParseOperandShapes(t *testing.T) {
	prog := parseFixture(t, "Catcher.pho")
	operands := map[string]ast.Operand{}
	var catches []*ast.Directive
	for _, stmt := range prog.Methods[0].Body {
		switch s := stmt.(type) {
		case *ast.Instruction:
			if s.Operand != nil {
				if _, seen := operands[s.Opcode.Mnemonic]; !seen {
					operands[s.Opcode.Mnemonic] = s.Operand
				}
			}
		case *ast.Directive:
			if s.Kind == ast.DirCatch {
				catches = append(catches, s)
			}
		}
	}

	cases := map[string]ast.Operand{
		"new":            &ast.ClassRef{Name: "java/lang/Object"},
		"checkcast":      &ast.ClassRef{Name: "[Ljava/lang/String;"},
		"instanceof":     &ast.ClassRef{Name: "java/lang/Runnable"},
		"ldc2_w":         &ast.Constant{Kind: ast.ConstLong, Int: 42},
		"newarray":       &ast.ArrayType{Elem: ast.Int},
		"multianewarray": &ast.MultiArray{Class: "[[I", Dimensions: 2},
		"bipush":         &ast.ByteValue{Value: -5},
		"sipush":         &ast.ShortValue{Value: 1000},
		"invokeinterface": &ast.MethodRef{
			Class:      "java/util/List",
			Name:       "size",
			Descriptor: ast.MethodDescriptor{Return: ptr(ast.BaseDesc(ast.Int))},
			Interface:  true,
			Count:      1,
		},
	}
	for mnemonic, want := range cases {
		if diff := cmp.Diff(want, operands[mnemonic], ignoreSpans, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("%s operand (-want +got):\n%s", mnemonic, diff)
		}
	}

	if len(catches) != 2 {
		t.Fatalf("expected 2 .catch directives, got %d", len(catches))
	}
	if catches[0].Class != "java/lang/ArithmeticException" || catches[0].Handler.Name != "Handler" {
		t.Fatalf("first catch = %+v", catches[0])
	}
	if !catches[1].CatchesAll() {
		t.Fatalf("second catch should catch all")
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestInterfaceHeaderFlags(t *testing.T) {
	prog, err := ParseSource("Shape.pho", ".interface public Shape\n.super java/lang/Object\n", Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prog.Header.Kind != ast.KindInterface {
		t.Fatalf("kind = %s", prog.Header.Kind)
	}
	want := ast.ClassAccess(ast.AccPublic | ast.AccInterface | ast.AccAbstract)
	if prog.Header.Access != want {
		t.Fatalf("access = %v, want %v", prog.Header.Access.Names(), want.Names())
	}
	if prog.Header.SourceFile != "Shape.pho" {
		t.Fatalf("default source = %q", prog.Header.SourceFile)
	}
}

func TestUnknownInstructionSuggestion(t *testing.T) {
	src := ".class public A\n.super java/lang/Object\n.method public f()V\n  ldcc \"x\"\n  return\n.end method\n"
	errs := parseErrors(t, src)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	e := errs[0]
	if e.Message != `unknown instruction "ldcc"` {
		t.Fatalf("message = %q", e.Message)
	}
	if e.Suggestion != "ldc" {
		t.Fatalf("suggestion = %q", e.Suggestion)
	}
	if e.Location.Line != 4 || e.Location.Column != 3 {
		t.Fatalf("location = %s", e.Location)
	}

	_, err := ParseSource("Bad.pho", src, Options{DisableSuggestions: true})
	var list ErrorList
	if !errors.As(err, &list) || list[0].Suggestion != "" {
		t.Fatalf("suggestions should be disabled, got %v", err)
	}
}

func TestErrorRecoveryContinuesAfterBadLines(t *testing.T) {
	src := `.class public A
.super java/lang/Object
.method public f()V
  bipush 300
  iload
  frobnicate
  goto Nowhere
  return
.end method
.method public g()V
  return
.end method
`
	prog, err := ParseSource("A.pho", src, Options{})
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %v", err)
	}
	var messages []string
	for _, e := range list {
		messages = append(messages, e.Message)
	}
	want := []string{
		"byte value 300 out of range [-128, 127]",
		"expected local variable index",
		`unknown instruction "frobnicate"`,
		"undefined label Nowhere in f",
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Fatalf("errors (-want +got):\n%s", diff)
	}
	if len(prog.Methods) != 2 || prog.Methods[1].Name != "g" {
		t.Fatalf("second method was not recovered")
	}
}

func TestParseErrorCases(t *testing.T) {
	header := ".class public A\n.super java/lang/Object\n"
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"missing class", ".super java/lang/Object\n", "expected .class or .interface, found directive .super"},
		{"missing super", ".class public A\n.method f()V\nreturn\n.end method\n", "expected .super"},
		{"missing end", header + ".method f()V\n  return\n", "missing .end method for f"},
		{"duplicate label", header + ".method f()V\nL:\nL:\n  return\n.end method\n", "label L is already defined in f"},
		{"ldc range", header + ".method f()V\n  ldc 3000000000\n.end method\n", "ldc integer 3000000000 out of range, use ldc2_w for long values"},
		{"ldc2_w string", header + ".method f()V\n  ldc2_w \"s\"\n.end method\n", "ldc2_w needs a long or double constant, found string literal"},
		{"bad field init", header + ".field x I = \"s\"\n", "field of type int needs an integer initial value, found string literal"},
		{"array init", header + ".field x [I = 1\n", "field of type [I cannot have an initial value"},
		{"bad descriptor", header + ".method f(Q)V\n.end method\n", `invalid method descriptor: invalid type descriptor character 'Q' in "Q"`},
		{"table count", header + ".method f()V\n  tableswitch 0 1\n  A\n  default : A\nA:\n  return\n.end method\n", "tableswitch expects 2 targets, found 1"},
		{"wide goto", header + ".method f()V\n  wide goto L\n.end method\n", `wide cannot modify "goto"`},
		{"newarray class", header + ".method f()V\n  newarray java/lang/String\n.end method\n", `newarray needs a primitive type, found "java/lang/String"`},
		{"checkcast base", header + ".method f()V\n  checkcast I\n.end method\n", "checkcast needs a class or array type, found int"},
		{"multianewarray dims", header + ".method f()V\n  multianewarray [[I 3\n.end method\n", "dimensions 3 out of range [1, 2]"},
		{"body directive", header + ".method f()V\n  .source X\n.end method\n", "directive .source is not allowed in a method body"},
		{"trailing", header + ".method f()V\n  return return\n.end method\n", `unexpected "return" at end of statement`},
		{"lex error", header + ".method f()V\n  ldc \"bad\\q\"\n.end method\n", `invalid escape sequence \q`},
		{"duplicate method", header + ".method f()V\n.end method\n.method f()V\n.end method\n", "method f()V is already defined"},
		{"duplicate flag", header + ".field static static x I\n", "duplicate access flag static"},
		{"interface count before descriptor", header + ".method f()V\n  invokeinterface java/util/List/size 1 ()I\n.end method\n", "expected method descriptor, found integer 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := parseErrors(t, tc.src)
			if errs[0].Message != tc.want {
				t.Fatalf("first error = %q, want %q (all: %v)", errs[0].Message, tc.want, errs)
			}
		})
	}
}

func TestMaxErrorsStopsParsing(t *testing.T) {
	var b strings.Builder
	b.WriteString(".class public A\n.super java/lang/Object\n.method f()V\n")
	for i := 0; i < 50; i++ {
		b.WriteString("  bogus\n")
	}
	b.WriteString(".end method\n")

	_, err := ParseSource("A.pho", b.String(), Options{MaxErrors: 3})
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("expected ErrorList, got %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(list))
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr != list[0] {
		t.Fatalf("errors.As should reach the first ParseError")
	}
}

func TestFixturesParseCleanly(t *testing.T) {
	entries, err := os.ReadDir("testdata")
	require.NoError(t, err)
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".pho" {
			continue
		}
		t.Run(entry.Name(), func(t *testing.T) {
			parseFixture(t, entry.Name())
		})
	}
}
