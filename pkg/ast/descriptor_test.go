package ast

import "testing"

func TestBaseTypeStrings(t *testing.T) {
	cases := map[BaseType]string{
		Byte:    "B",
		Char:    "C",
		Double:  "D",
		Float:   "F",
		Int:     "I",
		Long:    "J",
		Short:   "S",
		Boolean: "Z",
	}
	for b, want := range cases {
		if got := b.String(); got != want {
			t.Fatalf("%s.String() = %q, want %q", b.Name(), got, want)
		}
		back, ok := BaseTypeFromChar(want[0])
		if !ok || back != b {
			t.Fatalf("BaseTypeFromChar(%q) = %v, %v", want, back, ok)
		}
		named, ok := BaseTypeFromName(b.Name())
		if !ok || named != b {
			t.Fatalf("BaseTypeFromName(%q) = %v, %v", b.Name(), named, ok)
		}
	}
	if _, ok := BaseTypeFromChar('V'); ok {
		t.Fatalf("V is not a field base type")
	}
	if Int.ArrayTypeCode() != 10 || Boolean.ArrayTypeCode() != 4 {
		t.Fatalf("unexpected newarray codes")
	}
}

func TestFieldDescriptorStrings(t *testing.T) {
	cases := []struct {
		desc FieldDescriptor
		want string
		dims int
	}{
		{ArrayDesc(ArrayDesc(ArrayDesc(BaseDesc(Double)))), "[[[D", 3},
		{ObjectDesc("java/lang/Thread"), "Ljava/lang/Thread;", 0},
		{ArrayDesc(ObjectDesc("java/lang/String")), "[Ljava/lang/String;", 1},
		{BaseDesc(Long), "J", 0},
	}
	for _, tc := range cases {
		if got := tc.desc.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
		if got := tc.desc.Dimensions(); got != tc.dims {
			t.Fatalf("%s: Dimensions() = %d, want %d", tc.want, got, tc.dims)
		}
	}
}

func TestMethodDescriptorStrings(t *testing.T) {
	void := MethodDescriptor{}
	if got := void.String(); got != "()V" {
		t.Fatalf("void descriptor = %q", got)
	}
	if !void.IsVoid() {
		t.Fatalf("expected void return")
	}

	ret := ObjectDesc("java/lang/Object")
	desc := MethodDescriptor{
		Params: []FieldDescriptor{BaseDesc(Int), BaseDesc(Double), ObjectDesc("java/lang/Thread")},
		Return: &ret,
	}
	if got := desc.String(); got != "(IDLjava/lang/Thread;)Ljava/lang/Object;" {
		t.Fatalf("descriptor = %q", got)
	}
	if got := desc.ArgSlots(); got != 4 {
		t.Fatalf("ArgSlots() = %d, want 4", got)
	}
}

func TestClassEntryName(t *testing.T) {
	if name, ok := ObjectDesc("java/lang/String").ClassEntryName(); !ok || name != "java/lang/String" {
		t.Fatalf("object class entry = %q, %v", name, ok)
	}
	if name, ok := ArrayDesc(BaseDesc(Int)).ClassEntryName(); !ok || name != "[I" {
		t.Fatalf("array class entry = %q, %v", name, ok)
	}
	if _, ok := BaseDesc(Int).ClassEntryName(); ok {
		t.Fatalf("base types have no class entry")
	}
}
