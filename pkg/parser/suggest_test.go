package parser

import "testing"

func TestSuggest(t *testing.T) {
	cases := []struct {
		word string
		want string
	}{
		{"ldcc", "ldc"},
		{"LDC", "ldc"},
		{"ldx", "ldc"},
		// ldc and ldiv score the same; the later opcode wins
		{"ldax", "ldiv"},
		{"invokevirtul", "invokevirtual"},
		{"ldcxxxxxxc", ""},
	}
	for _, tc := range cases {
		got, ok := Suggest(tc.word)
		if ok != (tc.want != "") || got != tc.want {
			t.Fatalf("Suggest(%q) = %q, %v; want %q", tc.word, got, ok, tc.want)
		}
	}
}
