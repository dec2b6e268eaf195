package sourcefile

import "testing"

func TestLocationResolvesLineAndColumn(t *testing.T) {
	f := New("Demo.pho", ".class public Demo\n.super java/lang/Object\n\n  return\n")

	cases := []struct {
		pos  Pos
		line int
		col  int
	}{
		{0, 1, 1},
		{7, 1, 8},
		{18, 1, 19},
		{19, 2, 1},
		{26, 2, 8},
		{43, 3, 1},
		{46, 4, 3},
	}
	for _, tc := range cases {
		loc := f.Location(tc.pos)
		if loc.Line != tc.line || loc.Column != tc.col {
			t.Fatalf("Location(%d) = %d:%d, want %d:%d", tc.pos, loc.Line, loc.Column, tc.line, tc.col)
		}
		if loc.File != "Demo.pho" {
			t.Fatalf("Location(%d) file = %q", tc.pos, loc.File)
		}
	}
}

func TestLocationClampsOutOfRange(t *testing.T) {
	f := New("x", "ab\ncd")
	if loc := f.Location(-4); loc.Line != 1 || loc.Column != 1 {
		t.Fatalf("negative position resolved to %v", loc)
	}
	if loc := f.Location(100); loc.Line != 2 || loc.Column != 3 {
		t.Fatalf("past-end position resolved to %v", loc)
	}
}

func TestLineAndText(t *testing.T) {
	f := New("x", "first\r\nsecond\nthird")
	if got := f.Line(1); got != "first" {
		t.Fatalf("Line(1) = %q", got)
	}
	if got := f.Line(2); got != "second" {
		t.Fatalf("Line(2) = %q", got)
	}
	if got := f.Line(3); got != "third" {
		t.Fatalf("Line(3) = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("Line(4) = %q, want empty", got)
	}
	if got := f.Text(Span{Low: 7, High: 13}); got != "second" {
		t.Fatalf("Text = %q", got)
	}
	if f.LineCount() != 3 {
		t.Fatalf("LineCount = %d", f.LineCount())
	}
}

func TestSpanMerge(t *testing.T) {
	a := Span{Low: 4, High: 9}
	b := Span{Low: 2, High: 6}
	if got := a.Merge(b); got != (Span{Low: 2, High: 9}) {
		t.Fatalf("Merge = %+v", got)
	}
	if got := (Span{Low: 5, High: 3}).Len(); got != 0 {
		t.Fatalf("inverted span Len = %d", got)
	}
}
