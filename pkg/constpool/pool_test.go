package constpool

import (
	"errors"
	"fmt"
	"testing"
)

func TestAddDeduplicates(t *testing.T) {
	p := New()
	first, err := p.AddClass("java/lang/Object")
	if err != nil {
		t.Fatalf("AddClass: %v", err)
	}
	again, err := p.AddClass("java/lang/Object")
	if err != nil {
		t.Fatalf("AddClass: %v", err)
	}
	if first != again || first != 2 {
		t.Fatalf("class indices %d and %d, want 2", first, again)
	}
	if p.Len() != 2 || p.Count() != 3 {
		t.Fatalf("Len = %d Count = %d", p.Len(), p.Count())
	}
	if idx, ok := p.Utf8("java/lang/Object"); !ok || idx != 1 {
		t.Fatalf("Utf8 index = %d, %v", idx, ok)
	}
}

func TestWideEntriesTakeTwoSlots(t *testing.T) {
	p := New()
	long, _ := p.AddLong(1 << 40)
	utf8, _ := p.AddUtf8("after")
	double, _ := p.AddDouble(0.5)
	last, _ := p.AddInteger(-1)
	if long != 1 || utf8 != 3 || double != 4 || last != 6 {
		t.Fatalf("indices long=%d utf8=%d double=%d int=%d", long, utf8, double, last)
	}
	if p.Count() != 7 {
		t.Fatalf("Count = %d, want 7", p.Count())
	}
	if e, ok := p.Entry(6); !ok || p.Describe(e) != "Integer -1" {
		t.Fatalf("entry 6 = %+v", e)
	}
	if _, ok := p.Entry(2); ok {
		t.Fatalf("the second slot of a long must not hold an entry")
	}
}

func TestNumericLookupsUseBitPatterns(t *testing.T) {
	p := New()
	p.AddFloat(0)
	if _, ok := p.Float(float32(negZero())); ok {
		t.Fatalf("-0.0 must not match 0.0")
	}
	p.AddInteger(5)
	if _, ok := p.Long(5); ok {
		t.Fatalf("an Integer must not satisfy a Long lookup")
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestPoolIndexLimit(t *testing.T) {
	p := New()
	for i := 0; i < 65533; i++ {
		if _, err := p.AddUtf8(fmt.Sprint(i)); err != nil {
			t.Fatalf("AddUtf8(%d): %v", i, err)
		}
	}
	if _, err := p.AddLong(1); !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("long past the limit: got %v", err)
	}
	idx, err := p.AddUtf8("last")
	if err != nil || idx != 65534 {
		t.Fatalf("last slot = %d, %v", idx, err)
	}
	_, err = p.AddUtf8("one too many")
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
	if want := `constant pool index not available for Utf8 "one too many"`; err.Error() != want {
		t.Fatalf("message = %q, want %q", err, want)
	}
	if p.Count() != 65535 {
		t.Fatalf("Count = %d", p.Count())
	}
}
