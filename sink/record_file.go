// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package sink

import (
	"io"
	"os"
	"sync"

	"github.com/grailbio/recordattack/atkerrors"
	"github.com/grailbio/recordattack/recordfile"
)

// RecordFileSink writes a framed record file: a fresh header if the
// destination is absent, or an append to an existing file whose
// header is compatible.
type RecordFileSink struct {
	// Path is the file to create or append to.
	Path string
	// FileOrder is written into a fresh header, or compared against
	// an existing one.
	FileOrder uint32
	// Description is written into a fresh header, or compared against
	// an existing one.
	Description string
	// RecordSize is the width this sink writes its records at. If an
	// existing file's header declares a wider record size, the sink
	// adopts it; if the file's is narrower, Open fails with
	// atkerrors.RecordSizeInvalid.
	RecordSize int

	mu         sync.Mutex
	f          *os.File
	recordSize int
}

// Open implements Sink.
func (s *RecordFileSink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.Path)
	switch {
	case os.IsNotExist(statErr):
		f, err := os.Create(s.Path)
		if err != nil {
			return atkerrors.E(atkerrors.System, "record file sink: create", err)
		}
		if err := recordfile.Write(f, recordfile.Header{
			Description: s.Description,
			FileOrder:   s.FileOrder,
			RecordSize:  uint16(s.RecordSize),
		}); err != nil {
			f.Close()
			return err
		}
		s.f = f
		s.recordSize = s.RecordSize
		return nil
	case statErr != nil:
		return atkerrors.E(atkerrors.System, "record file sink: stat", statErr)
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR, 0)
	if err != nil {
		return atkerrors.E(atkerrors.System, "record file sink: open", err)
	}
	s.f = f

	h, err := recordfile.Read(s.f)
	if err != nil {
		s.f.Close()
		s.f = nil
		return err
	}
	if err := recordfile.Validate(h, s.FileOrder, s.Description); err != nil {
		s.f.Close()
		s.f = nil
		return err
	}
	if int(h.RecordSize) < s.RecordSize {
		s.f.Close()
		s.f = nil
		return atkerrors.E(atkerrors.RecordSizeInvalid, "record file sink: file record size smaller than sink's")
	}
	s.recordSize = int(h.RecordSize)

	if _, err := s.f.Seek(0, io.SeekEnd); err != nil {
		s.f.Close()
		s.f = nil
		return atkerrors.E(atkerrors.System, "record file sink: seek to end", err)
	}
	return nil
}

// RecordSize implements Sink.
func (s *RecordFileSink) RecordSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordSize
}

// NextBlock implements Sink. It loops until all of buf is consumed,
// deliberately: even a partial-size argument supplied during a
// worker's final flush is written in full, not truncated to whatever
// a single underlying write call accepts. A bounded retry counter
// guards the pathological case of a writer that never makes progress.
func (s *RecordFileSink) NextBlock(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	retries := 0
	for n < len(buf) {
		m, err := s.f.Write(buf[n:])
		if err != nil {
			return atkerrors.E(atkerrors.System, "record file sink: write", err)
		}
		n += m
		if m == 0 {
			retries++
			if retries >= len(buf) {
				return atkerrors.E(atkerrors.System, "record file sink: write made no progress")
			}
		}
	}
	return nil
}

// Close implements Sink.
func (s *RecordFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if err != nil {
		return atkerrors.E(atkerrors.System, "record file sink: close", err)
	}
	return nil
}
