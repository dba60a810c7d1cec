// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package source implements the three record producers the engine
// draws candidates from: a mixed-radix brute-force enumerator, a
// reader of the framed record-file format, and a reader that expands a
// newline-delimited wordlist into fixed-width records.
package source

// Source is a read-only, sequential record producer. Implementations
// are safe for concurrent use: each exported method takes an internal
// mutex that serializes calls, matching the single-caller-at-a-time
// discipline the orchestrator relies on (the feeder holds the source
// across Open, NextBlock, and Close; workers call only FreeBlock).
//
// NextBlock returning a zero-length slice with a nil error signals
// end-of-stream; callers must not call FreeBlock on a nil block.
type Source interface {
	// Open prepares the source for reading and returns the exact
	// total number of records it will produce.
	Open() (totalRecords uint64, err error)

	// RecordSize returns the fixed byte width of one record. It is
	// meaningful only after Open has returned without error.
	RecordSize() int

	// BlockCapacity returns the number of records a freshly allocated
	// block holds when NextBlock is called with a nil buf. It is
	// meaningful only after Open has returned without error.
	BlockCapacity() int

	// NextBlock produces the next block of records. If buf is
	// non-nil, it is filled (and possibly reused across calls); if
	// buf is nil, a new buffer is allocated. The returned slice is a
	// prefix of the supplied or allocated buffer whose length is an
	// integral multiple of RecordSize.
	NextBlock(buf []byte) ([]byte, error)

	// FreeBlock returns a block obtained from NextBlock to the
	// source. Every block produced by NextBlock must be freed
	// exactly once.
	FreeBlock(buf []byte) error

	// Close releases any resources the source holds open.
	Close() error
}
