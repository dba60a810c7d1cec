// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package log provides the leveled logging the attack engine uses for
// its own internal tracing. Output is implemented by an Outputter,
// which defaults to Go's standard log package; a caller embedding
// this engine can install its own Outputter with SetOutputter to fold
// this tracing into its own log stream instead.
//
// The engine never logs above Debug on its own initiative: Error is
// reserved for atkerrors.E's malformed-call diagnostic and for Panic
// (must's default failure function), and every
// progress line the feeder and workers emit about opening files,
// recording errors, and finding a match is at Debug. A caller sees
// silence unless it calls SetLevel(Debug).
package log

import "fmt"

// An Outputter provides a destination for leveled log output.
type Outputter interface {
	// Level returns the level at which the outputter is accepting
	// messages.
	Level() Level

	// Output writes the provided message to the outputter at the
	// provided calldepth and level. The message is dropped by
	// the outputter if it is not logging at the desired level.
	Output(calldepth int, level Level, s string) error
}

var out Outputter = gologOutputter{}

// SetOutputter provides a new outputter for use in the log package.
// SetOutputter should not be called concurrently with any log
// output, and is thus suitable to be called only upon program
// initialization. SetOutputter returns the old outputter.
func SetOutputter(newOut Outputter) Outputter {
	old := out
	out = newOut
	return old
}

// GetOutputter returns the current outputter used by the log package.
func GetOutputter() Outputter {
	return out
}

// At returns whether the logger is currently logging at the provided level.
func At(level Level) bool {
	return level <= out.Level()
}

// A Level is a log verbosity level. Increasing levels decrease in
// priority and (usually) increase in verbosity: if the outputter is
// logging at level L, then all messages with level M <= L are
// outputted.
type Level int

const (
	// Off never outputs messages.
	Off = Level(-3)
	// Error outputs error messages. Only atkerrors.E's malformed-call
	// diagnostic and Panic log at this level.
	Error = Level(-2)
	// Info is the standard logging level. Nothing in this module logs
	// at Info, so a caller that never touches SetLevel sees nothing.
	Info = Level(0)
	// Debug outputs the feeder's and workers' internal progress
	// tracing: input and output opens, errors recorded mid-run, end of
	// stream, final stop, and match discovery.
	Debug = Level(1)
)

// String returns the string representation of the level l.
func (l Level) String() string {
	switch l {
	case Off:
		return "off"
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		if l < 0 {
			panic("invalid log level")
		}
		return fmt.Sprintf("debug%d", l)
	}
}

// Printf formats a message in the manner of fmt.Sprintf and outputs
// it at level l to the current outputter, if the outputter is
// logging at l or below. attack and atkerrors are the only callers of
// Printf, always at Debug or Error.
func (l Level) Printf(format string, v ...interface{}) {
	if At(l) {
		out.Output(2, l, fmt.Sprintf(format, v...))
	}
}

// Panic formats a message in the manner of fmt.Sprint, outputs it at
// the Error level to the current outputter, and then panics. It is
// must's default failure function, so a violated assertion anywhere
// in this module surfaces through the same Outputter as ordinary
// tracing before it brings the program down.
func Panic(v ...interface{}) {
	s := fmt.Sprint(v...)
	out.Output(2, Error, s)
	panic(s)
}
