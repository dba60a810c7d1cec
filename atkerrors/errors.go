// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package atkerrors implements an error type that defines standard,
// interpretable error codes for the conditions that sources, sinks, and
// the attack orchestrator can raise. Errors can be chained: thus
// attributing one error to another.
//
// It is adapted from the error-handling conventions of
// github.com/grailbio/base/errors, generalized for this module's closed
// taxonomy: System, Stopped, RecordInvalid, RecordNoMatch,
// RecordSizeInvalid, and FileInvalid, alongside the general-purpose
// kinds callers expect from any errors package.
package atkerrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/recordattack/log"
)

// Separator defines the separation string inserted between
// chained errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error. Kinds are semantically meaningful and
// may be interpreted by a caller, e.g. to decide which Stage an attack
// failed in.
type Kind int

const (
	// Other indicates an unknown error.
	Other Kind = iota
	// Canceled indicates a context cancellation.
	Canceled
	// Timeout indicates an operation timed out.
	Timeout
	// NotExist indicates a nonexistent resource.
	NotExist
	// Invalid indicates that the caller supplied invalid parameters.
	Invalid
	// System indicates that an underlying OS call failed (open, read,
	// write, seek, stat).
	System
	// Stopped indicates a status snapshot was taken after the attack
	// reached the stopped state.
	Stopped
	// RecordInvalid indicates a checker classified a record as "do not
	// count".
	RecordInvalid
	// RecordNoMatch indicates a checker classified a record as
	// "counted, kept, not the answer".
	RecordNoMatch
	// RecordSizeInvalid indicates a source encountered a record wider
	// than its configured slot, or a sink's declared record size
	// exceeds the file's.
	RecordSizeInvalid
	// FileInvalid indicates a record-file header's magic, order, or
	// description failed to match.
	FileInvalid

	maxKind
)

var kinds = map[Kind]string{
	Other:             "unknown error",
	Canceled:          "operation was canceled",
	Timeout:           "operation timed out",
	NotExist:          "resource does not exist",
	Invalid:           "invalid argument",
	System:            "system error",
	Stopped:           "attack has stopped",
	RecordInvalid:     "record invalid, not counted",
	RecordNoMatch:     "record tested, no match",
	RecordSizeInvalid: "record size invalid",
	FileInvalid:       "file header invalid",
}

// kindStdErrs maps some Kinds to the standard library's equivalent, for
// interoperability with errors.Is.
var kindStdErrs = map[Kind]error{
	Canceled: context.Canceled,
	NotExist: os.ErrNotExist,
	Invalid:  os.ErrInvalid,
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Error is the standard error type used throughout this module. It
// carries a Kind, an optional message, and an optional chained cause.
// Errors should be constructed with E, which interprets its arguments
// according to a set of rules.
type Error struct {
	// Kind is the error's type.
	Kind Kind
	// Message is an optional message associated with this error.
	Message string
	// Err is the error that caused this error, if any. The full chain
	// is printed by Error().
	Err error
}

// E constructs a new error from the provided arguments. It is a
// convenient way to construct, annotate, and wrap errors.
//
// Arguments are interpreted according to their types:
//
//   - Kind: sets the Error's kind
//   - string: sets the Error's message; multiple strings are
//     separated by a single space
//   - *Error: copies the error and sets it as the cause
//   - error: sets the cause
//
// If no Kind is supplied but an underlying error is, E attempts to
// infer one: os.ErrNotExist, context.Canceled, os.ErrInvalid, or (if
// the underlying error is itself an *Error) that error's Kind.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("atkerrors.E: no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			cp := *arg
			if len(args) == 1 {
				return &cp
			}
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("atkerrors.E: bad call (type %T) from %s:%d: %v", arg, file, line, arg)
			return &Error{Kind: Invalid, Message: fmt.Sprintf("unknown type %T, value %v in error call", arg, arg)}
		}
	}
	e.Message = msg.String()
	if e.Err == nil {
		return e
	}
	switch prev := e.Err.(type) {
	case *Error:
		if prev.Kind == e.Kind || e.Kind == Other {
			e.Kind = prev.Kind
			prev.Kind = Other
		}
	default:
		if e.Kind != Other {
			break
		}
		for kind := Kind(0); kind < maxKind; kind++ {
			if std := kindStdErrs[kind]; std != nil && errors.Is(e.Err, std) {
				e.Kind = kind
				break
			}
		}
	}
	return e
}

// Recover recovers any error into an *Error. If err is already an
// *Error it is returned unchanged; otherwise it is wrapped.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return E(err).(*Error)
}

// Error returns a human-readable string describing this error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		pad(b, ": ")
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err == nil {
		return
	}
	if err, ok := e.Err.(*Error); ok {
		pad(b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
}

// Unwrap returns e's cause, if any, or nil, so that the standard
// library's errors.Unwrap and errors.As work with *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is tells whether e.Kind corresponds to err, for interoperability with
// the standard library's errors.Is.
func (e *Error) Is(err error) bool {
	if err == nil {
		return false
	}
	return err == kindStdErrs[e.Kind]
}

// Is tells whether err's Kind is kind, except for the indeterminate
// kind Other, in which case the chain is traversed until a non-Other
// error is encountered.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return false
}

// New is synonymous with the standard library's errors.New, provided
// here so that callers need only import one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}
