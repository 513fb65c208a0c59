/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy for mockjson. Every failure the core can produce is returned
as a typed condition that callers match with errors.Is and render however they like.
The core never terminates the host process.
*/

package mockerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnknownType           = errors.New("unknown logical type")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrSchemaAnalysis        = errors.New("schema analysis failed")
	ErrFieldNotFound         = errors.New("field not found")
	ErrDuplicateField        = errors.New("duplicate field")
	ErrSynthesis             = errors.New("synthesis failed")
	ErrConfiguration         = errors.New("invalid configuration")
	ErrInvalidRequest        = errors.New("invalid request")
)

// Error carries a kind plus the context needed to render a useful message
type Error struct {
	Kind    error          // One of the Err* kinds above
	Op      string         // Operation that failed, e.g. "register" or "synthesize"
	Subject string         // Logical type, field name or path the failure is about
	Details map[string]any // Extra structured context
	Err     error          // Underlying cause, may be nil
}

// New creates an Error of the given kind
func New(kind error, op, subject string) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject}
}

// Wrap creates an Error of the given kind around a cause
func Wrap(kind error, op, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// With attaches a detail and returns the error for chaining
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("error")
	}
	if e.Subject != "" {
		fmt.Fprintf(&b, " %q", e.Subject)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UnknownType builds the factory lookup-miss condition, listing what is available
func UnknownType(logicalType string, available []string) *Error {
	sorted := append([]string(nil), available...)
	sort.Strings(sorted)
	e := New(ErrUnknownType, "create", logicalType)
	if len(sorted) > 0 {
		e.With("available", strings.Join(sorted, ", "))
	}
	return e
}

// KindOf returns the taxonomy kind of err, or nil if it has none
func KindOf(err error) error {
	for _, kind := range []error{
		ErrUnknownType,
		ErrDuplicateRegistration,
		ErrSchemaAnalysis,
		ErrFieldNotFound,
		ErrDuplicateField,
		ErrSynthesis,
		ErrConfiguration,
		ErrInvalidRequest,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
