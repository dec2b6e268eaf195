// Package sourcefile models a Phoron source file and the byte spans the lexer,
// parser, and diagnostics use to point back into it.
package sourcefile

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Pos is an absolute byte offset from the beginning of the source.
type Pos int

// Span is the half-open region [Low, High) of the source.
type Span struct {
	Low  Pos
	High Pos
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	low, high := s.Low, s.High
	if other.Low < low {
		low = other.Low
	}
	if other.High > high {
		high = other.High
	}
	return Span{Low: low, High: high}
}

// Len reports the number of bytes covered by the span.
func (s Span) Len() int {
	if s.High < s.Low {
		return 0
	}
	return int(s.High - s.Low)
}

// Location is a human-facing position: 1-based line and column.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// File holds the raw source plus the offsets of each line start.
type File struct {
	Name       string
	Src        string
	lineStarts []Pos
}

// New builds a File from in-memory source.
func New(name, src string) *File {
	starts := []Pos{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, Pos(i+1))
		}
	}
	return &File{Name: name, Src: src, lineStarts: starts}
}

// Open reads the file at path.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sourcefile: read %s: %w", path, err)
	}
	return New(path, string(data)), nil
}

// Read consumes r entirely and labels the result with name.
func Read(name string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("sourcefile: read %s: %w", name, err)
	}
	return New(name, string(data)), nil
}

// LineCount reports the number of lines, counting a trailing partial line.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

// Location resolves pos to a line and column. Positions past the end clamp to
// the end of the source.
func (f *File) Location(pos Pos) Location {
	if pos < 0 {
		pos = 0
	}
	if int(pos) > len(f.Src) {
		pos = Pos(len(f.Src))
	}
	// index of the last line start <= pos
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > pos
	}) - 1
	return Location{
		File:   f.Name,
		Line:   line + 1,
		Column: int(pos-f.lineStarts[line]) + 1,
	}
}

// SpanLocation resolves the start of span.
func (f *File) SpanLocation(span Span) Location {
	return f.Location(span.Low)
}

// Text returns the source covered by span.
func (f *File) Text(span Span) string {
	low, high := int(span.Low), int(span.High)
	if low < 0 {
		low = 0
	}
	if high > len(f.Src) {
		high = len(f.Src)
	}
	if low >= high {
		return ""
	}
	return f.Src[low:high]
}

// Line returns the 1-based line n without its line terminator.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lineStarts) {
		return ""
	}
	start := int(f.lineStarts[n-1])
	end := len(f.Src)
	if n < len(f.lineStarts) {
		end = int(f.lineStarts[n]) - 1
	}
	return strings.TrimSuffix(f.Src[start:end], "\r")
}
