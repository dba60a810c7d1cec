// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package source

import (
	"bufio"
	"os"
	"sync"

	"github.com/grailbio/recordattack/atkerrors"
)

// WordlistSource reads a newline-delimited text file as fixed-width,
// NUL-padded records. If RecordSize is left at zero, Open performs a
// full pre-scan to find the longest line and sets RecordSize to
// longest+1, reserving room for a NUL terminator.
type WordlistSource struct {
	// Path is the file to open.
	Path string
	// RecordSize is the fixed slot width; zero means "auto-size from
	// the file's longest line".
	RecordSize int
	// RecordsPerBlock is the number of records NextBlock packs into
	// a freshly allocated block when the caller passes a nil buf. It
	// defaults to DefaultRecordsPerBlock.
	RecordsPerBlock int

	mu         sync.Mutex
	f          *os.File
	scanner    *bufio.Scanner
	recordSize int
}

// Open implements Source.
func (s *WordlistSource) Open() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path)
	if err != nil {
		return 0, atkerrors.E(atkerrors.System, "wordlist source: open", err)
	}
	s.f = f

	longest := 0
	var total uint64
	scan := bufio.NewScanner(s.f)
	for scan.Scan() {
		line := scan.Text()
		if line == "" {
			continue
		}
		total++
		if len(line) > longest {
			longest = len(line)
		}
	}
	if err := scan.Err(); err != nil {
		s.f.Close()
		s.f = nil
		return 0, atkerrors.E(atkerrors.System, "wordlist source: pre-scan", err)
	}

	s.recordSize = s.RecordSize
	if s.recordSize == 0 {
		s.recordSize = longest + 1
	}
	if s.RecordsPerBlock == 0 {
		s.RecordsPerBlock = DefaultRecordsPerBlock
	}

	if _, err := s.f.Seek(0, 0); err != nil {
		s.f.Close()
		s.f = nil
		return 0, atkerrors.E(atkerrors.System, "wordlist source: rewind", err)
	}
	s.scanner = bufio.NewScanner(s.f)
	return total, nil
}

// RecordSize implements Source.
func (s *WordlistSource) RecordSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordSize
}

// BlockCapacity implements Source.
func (s *WordlistSource) BlockCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.RecordsPerBlock
}

// NextBlock implements Source. A line at or beyond RecordSize bytes
// (including its NUL terminator) fails with atkerrors.RecordSizeInvalid.
func (s *WordlistSource) NextBlock(buf []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordsPerBlock := s.RecordsPerBlock
	if buf == nil {
		buf = make([]byte, recordsPerBlock*s.recordSize)
	} else {
		recordsPerBlock = len(buf) / s.recordSize
	}

	n := 0
	for n < recordsPerBlock {
		line, ok := s.nextLine()
		if !ok {
			break
		}
		if len(line) >= s.recordSize {
			return nil, atkerrors.E(atkerrors.RecordSizeInvalid, "wordlist source: line exceeds record size")
		}
		slot := buf[n*s.recordSize : (n+1)*s.recordSize]
		for i := range slot {
			slot[i] = 0
		}
		copy(slot, line)
		n++
	}
	if n == 0 {
		return nil, nil
	}
	return buf[:n*s.recordSize], nil
}

// nextLine returns the next non-empty line, skipping blanks, or
// ok == false at end-of-file.
func (s *WordlistSource) nextLine() (string, bool) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			continue
		}
		return line, true
	}
	return "", false
}

// FreeBlock implements Source. WordlistSource allocates eagerly and
// has nothing to release.
func (s *WordlistSource) FreeBlock(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nil
}

// Close implements Source.
func (s *WordlistSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if err != nil {
		return atkerrors.E(atkerrors.System, "wordlist source: close", err)
	}
	return nil
}
