package parser

import (
	"strings"
	"testing"
)

func TestParseFieldDescriptor(t *testing.T) {
	cases := map[string]string{
		"I":                   "I",
		"Ljava/lang/String;":  "Ljava/lang/String;",
		"[[D":                 "[[D",
		"[Ljava/lang/Object;": "[Ljava/lang/Object;",
		"java/lang/Thread":    "Ljava/lang/Thread;",
		"Foo":                 "LFoo;",
	}
	for src, want := range cases {
		desc, err := ParseFieldDescriptor(src)
		if err != nil {
			t.Fatalf("ParseFieldDescriptor(%q): %v", src, err)
		}
		if got := desc.String(); got != want {
			t.Fatalf("ParseFieldDescriptor(%q) = %s, want %s", src, got, want)
		}
	}
}

func TestParseFieldDescriptorErrors(t *testing.T) {
	cases := map[string]string{
		"":                             "empty type descriptor",
		"[":                            "missing component type for array type",
		"[Ljava/lang/String":           "missing ';' after class name",
		"L;":                           "empty class name",
		"java/lang/":                   "",
		strings.Repeat("[", 256) + "I": "at most 255 allowed",
	}
	for src, fragment := range cases {
		_, err := ParseFieldDescriptor(src)
		if err == nil {
			t.Fatalf("ParseFieldDescriptor(%q) succeeded, want error", src)
		}
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("ParseFieldDescriptor(%q) error %q does not mention %q", src, err, fragment)
		}
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	desc, err := ParseMethodDescriptor("(IDLjava/lang/Thread;)Ljava/lang/Object;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(desc.Params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(desc.Params))
	}
	if desc.ArgSlots() != 4 {
		t.Fatalf("ArgSlots = %d, want 4", desc.ArgSlots())
	}
	if desc.Return == nil || desc.Return.String() != "Ljava/lang/Object;" {
		t.Fatalf("return = %v", desc.Return)
	}

	void, err := ParseMethodDescriptor("()V")
	if err != nil {
		t.Fatalf("parse ()V: %v", err)
	}
	if !void.IsVoid() || len(void.Params) != 0 {
		t.Fatalf("()V parsed as %s", void)
	}

	for _, bad := range []string{"I)V", "(I", "(I)", "(V)V", "()VV", "(Ljava/lang/String)V"} {
		if _, err := ParseMethodDescriptor(bad); err == nil {
			t.Fatalf("ParseMethodDescriptor(%q) succeeded, want error", bad)
		}
	}
}
