package parser

import (
	"fmt"

	"github.com/oyi-lang/phoron-asm/pkg/sourcefile"
)

// ParseError is a syntax or validation error at a source span.
type ParseError struct {
	Message  string
	Span     sourcefile.Span
	Location sourcefile.Location
	// Suggestion is a replacement word offered for unknown instructions.
	Suggestion string
}

func (e *ParseError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (did you mean %q?)", e.Location, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// ErrorList collects the errors of one parse in source order.
type ErrorList []*ParseError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns nil for an empty list and the list otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}
