// Package constpool models the JVM constant pool and builds one for a parsed
// Phoron program.
package constpool

import (
	"errors"
	"fmt"
	"math"
)

// Tag is the class-file tag byte of a constant pool entry.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
)

var tagNames = map[Tag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// ErrIndexUnavailable is returned when an entry no longer fits in the 16-bit
// index space.
var ErrIndexUnavailable = errors.New("constant pool index not available")

// Entry is one constant. Text holds Utf8 contents, Bits the raw value of
// numeric constants, and Index1/Index2 the referenced entries of Class,
// String, NameAndType and the member refs.
type Entry struct {
	Tag    Tag
	Text   string
	Bits   uint64
	Index1 uint16
	Index2 uint16
}

// Wide reports whether the entry takes two slots.
func (e Entry) Wide() bool {
	return e.Tag == TagLong || e.Tag == TagDouble
}

// Slot is an entry together with its index.
type Slot struct {
	Index uint16
	Entry Entry
}

// Pool assigns indices to entries in insertion order, starting at 1. Adding
// an entry that is already present returns its existing index.
type Pool struct {
	index   map[Entry]uint16
	entries []Slot
	next    int
}

func New() *Pool {
	return &Pool{index: map[Entry]uint16{}, next: 1}
}

// Count is the class-file constant_pool_count: the highest used index plus one.
func (p *Pool) Count() int {
	return p.next
}

// Len is the number of distinct entries.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Slots returns the entries in index order.
func (p *Pool) Slots() []Slot {
	return append([]Slot(nil), p.entries...)
}

// Lookup returns the index of e, if present.
func (p *Pool) Lookup(e Entry) (uint16, bool) {
	idx, ok := p.index[e]
	return idx, ok
}

// Entry returns the entry stored at idx.
func (p *Pool) Entry(idx uint16) (Entry, bool) {
	for _, s := range p.entries {
		if s.Index == idx {
			return s.Entry, true
		}
	}
	return Entry{}, false
}

// Add inserts e unless it is already present.
func (p *Pool) Add(e Entry) (uint16, error) {
	if idx, ok := p.index[e]; ok {
		return idx, nil
	}
	width := 1
	if e.Wide() {
		width = 2
	}
	if p.next+width > math.MaxUint16 {
		return 0, fmt.Errorf("%w for %s", ErrIndexUnavailable, p.Describe(e))
	}
	idx := uint16(p.next)
	p.index[e] = idx
	p.entries = append(p.entries, Slot{Index: idx, Entry: e})
	p.next += width
	return idx, nil
}

func (p *Pool) AddUtf8(s string) (uint16, error) {
	return p.Add(Entry{Tag: TagUtf8, Text: s})
}

func (p *Pool) AddInteger(v int32) (uint16, error) {
	return p.Add(Entry{Tag: TagInteger, Bits: uint64(uint32(v))})
}

func (p *Pool) AddFloat(v float32) (uint16, error) {
	return p.Add(Entry{Tag: TagFloat, Bits: uint64(math.Float32bits(v))})
}

func (p *Pool) AddLong(v int64) (uint16, error) {
	return p.Add(Entry{Tag: TagLong, Bits: uint64(v)})
}

func (p *Pool) AddDouble(v float64) (uint16, error) {
	return p.Add(Entry{Tag: TagDouble, Bits: math.Float64bits(v)})
}

// AddClass inserts the Utf8 name and the Class entry pointing at it.
func (p *Pool) AddClass(name string) (uint16, error) {
	return p.addRef(TagClass, name)
}

// AddString inserts the Utf8 contents and the String entry pointing at them.
func (p *Pool) AddString(s string) (uint16, error) {
	return p.addRef(TagString, s)
}

func (p *Pool) addRef(tag Tag, text string) (uint16, error) {
	utf8, err := p.AddUtf8(text)
	if err != nil {
		return 0, err
	}
	return p.Add(Entry{Tag: tag, Index1: utf8})
}

func (p *Pool) AddNameAndType(name, descriptor string) (uint16, error) {
	n, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	d, err := p.AddUtf8(descriptor)
	if err != nil {
		return 0, err
	}
	return p.Add(Entry{Tag: TagNameAndType, Index1: n, Index2: d})
}

func (p *Pool) AddFieldref(class, name, descriptor string) (uint16, error) {
	return p.addMember(TagFieldref, class, name, descriptor)
}

func (p *Pool) AddMethodref(class, name, descriptor string) (uint16, error) {
	return p.addMember(TagMethodref, class, name, descriptor)
}

func (p *Pool) AddInterfaceMethodref(class, name, descriptor string) (uint16, error) {
	return p.addMember(TagInterfaceMethodref, class, name, descriptor)
}

func (p *Pool) addMember(tag Tag, class, name, descriptor string) (uint16, error) {
	c, err := p.AddClass(class)
	if err != nil {
		return 0, err
	}
	nt, err := p.AddNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	return p.Add(Entry{Tag: tag, Index1: c, Index2: nt})
}

func (p *Pool) Utf8(s string) (uint16, bool) {
	return p.Lookup(Entry{Tag: TagUtf8, Text: s})
}

func (p *Pool) Integer(v int32) (uint16, bool) {
	return p.Lookup(Entry{Tag: TagInteger, Bits: uint64(uint32(v))})
}

func (p *Pool) Float(v float32) (uint16, bool) {
	return p.Lookup(Entry{Tag: TagFloat, Bits: uint64(math.Float32bits(v))})
}

func (p *Pool) Long(v int64) (uint16, bool) {
	return p.Lookup(Entry{Tag: TagLong, Bits: uint64(v)})
}

func (p *Pool) Double(v float64) (uint16, bool) {
	return p.Lookup(Entry{Tag: TagDouble, Bits: math.Float64bits(v)})
}

func (p *Pool) Class(name string) (uint16, bool) {
	return p.lookupRef(TagClass, name)
}

func (p *Pool) String(s string) (uint16, bool) {
	return p.lookupRef(TagString, s)
}

func (p *Pool) lookupRef(tag Tag, text string) (uint16, bool) {
	utf8, ok := p.Utf8(text)
	if !ok {
		return 0, false
	}
	return p.Lookup(Entry{Tag: tag, Index1: utf8})
}

func (p *Pool) NameAndType(name, descriptor string) (uint16, bool) {
	n, ok := p.Utf8(name)
	if !ok {
		return 0, false
	}
	d, ok := p.Utf8(descriptor)
	if !ok {
		return 0, false
	}
	return p.Lookup(Entry{Tag: TagNameAndType, Index1: n, Index2: d})
}

func (p *Pool) Fieldref(class, name, descriptor string) (uint16, bool) {
	return p.lookupMember(TagFieldref, class, name, descriptor)
}

func (p *Pool) Methodref(class, name, descriptor string) (uint16, bool) {
	return p.lookupMember(TagMethodref, class, name, descriptor)
}

func (p *Pool) InterfaceMethodref(class, name, descriptor string) (uint16, bool) {
	return p.lookupMember(TagInterfaceMethodref, class, name, descriptor)
}

func (p *Pool) lookupMember(tag Tag, class, name, descriptor string) (uint16, bool) {
	c, ok := p.Class(class)
	if !ok {
		return 0, false
	}
	nt, ok := p.NameAndType(name, descriptor)
	if !ok {
		return 0, false
	}
	return p.Lookup(Entry{Tag: tag, Index1: c, Index2: nt})
}

// Describe renders e with its references resolved, as in
// Methodref java/io/PrintStream.println:(Ljava/lang/String;)V.
func (p *Pool) Describe(e Entry) string {
	return fmt.Sprintf("%s %s", e.Tag, p.Value(e))
}

// Value renders the payload of e without its tag.
func (p *Pool) Value(e Entry) string {
	switch e.Tag {
	case TagUtf8:
		return fmt.Sprintf("%q", e.Text)
	case TagInteger:
		return fmt.Sprint(int32(uint32(e.Bits)))
	case TagFloat:
		return fmt.Sprint(math.Float32frombits(uint32(e.Bits)))
	case TagLong:
		return fmt.Sprint(int64(e.Bits))
	case TagDouble:
		return fmt.Sprint(math.Float64frombits(e.Bits))
	case TagClass:
		return p.text(e.Index1)
	case TagString:
		return fmt.Sprintf("%q", p.text(e.Index1))
	case TagNameAndType:
		return p.text(e.Index1) + ":" + p.text(e.Index2)
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		class, _ := p.Entry(e.Index1)
		nt, _ := p.Entry(e.Index2)
		return p.text(class.Index1) + "." + p.text(nt.Index1) + ":" + p.text(nt.Index2)
	}
	return "?"
}

func (p *Pool) text(idx uint16) string {
	e, ok := p.Entry(idx)
	if !ok {
		return fmt.Sprintf("#%d", idx)
	}
	if e.Tag == TagUtf8 {
		return e.Text
	}
	return p.Value(e)
}
