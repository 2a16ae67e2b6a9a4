// Package diagnostics defines the error taxonomy shared by the parser,
// the schema registry, lowering, conversion and the virtual machine.
//
// Every error produced by the core is a *Error; callers match the kind with
// errors.Is against the Err* sentinels and recover the source span with
// errors.As.
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/funvibe/tot/internal/token"
)

type Kind int

const (
	KindSyntax Kind = iota
	KindUnresolvedType
	KindUnresolvedReference
	KindMissingRequiredField
	KindUnsupportedConversion
	KindScope
	KindHostCall
	KindInvalidProgram
)

var (
	ErrSyntax                = errors.New("syntax error")
	ErrUnresolvedType        = errors.New("unresolved type")
	ErrUnresolvedReference   = errors.New("unresolved reference")
	ErrMissingRequiredField  = errors.New("missing required field")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrScope                 = errors.New("scope error")
	ErrHostCall              = errors.New("host call error")
	ErrInvalidProgram        = errors.New("invalid program")
)

// Error codes
const (
	ErrP001 = "P001" // malformed source
	ErrT001 = "T001" // type path does not resolve
	ErrT002 = "T002" // name or path does not resolve
	ErrC001 = "C001" // required target field has no source counterpart
	ErrC002 = "C002" // no conversion rule for the type pair
	ErrR001 = "R001" // path traversal hit a non-container or bad index
	ErrR002 = "R002" // host behavior failed
	ErrR003 = "R003" // malformed instruction sequence
)

var kindInfo = map[Kind]struct {
	code     string
	sentinel error
}{
	KindSyntax:                {ErrP001, ErrSyntax},
	KindUnresolvedType:        {ErrT001, ErrUnresolvedType},
	KindUnresolvedReference:   {ErrT002, ErrUnresolvedReference},
	KindMissingRequiredField:  {ErrC001, ErrMissingRequiredField},
	KindUnsupportedConversion: {ErrC002, ErrUnsupportedConversion},
	KindScope:                 {ErrR001, ErrScope},
	KindHostCall:              {ErrR002, ErrHostCall},
	KindInvalidProgram:        {ErrR003, ErrInvalidProgram},
}

// Error is a located, classified failure.
type Error struct {
	Kind    Kind
	Code    string
	Span    token.Span // zero when the failure has no source location
	File    string
	Message string
	Err     error // underlying cause, if any
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Code:    kindInfo[kind].code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewAt creates an error of the given kind located at span.
func NewAt(kind Kind, span token.Span, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.Span = span
	return e
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.Err = cause
	return e
}

// WithSpan returns err located at span when it is a *Error without a location.
// Other errors are returned unchanged.
func WithSpan(err error, span token.Span) error {
	var de *Error
	if errors.As(err, &de) && de.Span == (token.Span{}) {
		cp := *de
		cp.Span = span
		return &cp
	}
	return err
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	loc := ""
	if e.File != "" {
		loc = e.File + ":"
	}
	if e.Span.Line > 0 {
		loc += e.Span.String() + ": "
	} else if loc != "" {
		loc += " "
	}
	return fmt.Sprintf("%serror[%s]: %s", loc, e.Code, msg)
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return kindInfo[e.Kind].sentinel == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err and whether err carries one.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
