// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package sink implements the engine's one write-only record
// destination: a framed, fixed-record file compatible with
// source.RecordFileSource.
package sink

// Sink is a write-only, sequential record destination. Unlike
// source.Source, Sink has no FreeBlock method: a write-side "free
// block" operation is always a no-op at best, so it is left out of
// the interface entirely rather than kept as a method nobody is
// meant to call.
type Sink interface {
	// Open prepares the sink for writing, creating the backing file
	// if absent or validating header compatibility if it already
	// exists.
	Open() error

	// RecordSize returns the fixed byte width of one record. It is
	// meaningful only after Open has returned without error, and may
	// differ from the value the sink was configured with if Open
	// adopted a wider size from an existing file's header.
	RecordSize() int

	// NextBlock appends buf, whose length must be an integral
	// multiple of RecordSize. It loops over partial writes until
	// every byte is consumed or a bounded retry counter is
	// exhausted.
	NextBlock(buf []byte) error

	// Close releases any resources the sink holds open.
	Close() error
}
