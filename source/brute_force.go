// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package source

import (
	"bytes"
	"sync"

	"github.com/grailbio/recordattack/atkerrors"
)

// DefaultRecordsPerBlock is the block size used when a source's
// RecordsPerBlock is left at zero.
const DefaultRecordsPerBlock = 256

// BruteForceSource enumerates, in alphabet order, every string of
// length len(Start)..len(End) that is >= Start and <= End. Open
// computes the total record count directly from the formula below; no
// enumeration is required to know how many records will be produced.
type BruteForceSource struct {
	// Alphabet is the ordered, distinct set of characters the
	// enumeration draws from. A character's rank is its index in
	// this slice.
	Alphabet []byte
	// Start is the first record emitted.
	Start []byte
	// End is the last record emitted.
	End []byte
	// RecordsPerBlock is the number of records NextBlock packs into
	// a freshly allocated block when the caller passes a nil buf. It
	// defaults to DefaultRecordsPerBlock.
	RecordsPerBlock int

	mu         sync.Mutex
	rank       map[byte]int
	recordSize int
	last       []byte
	started    bool
	exhausted  bool
}

// NewBruteForceSource validates its arguments and returns a ready
// BruteForceSource. It fails, per testable property 4, when
// len(start) > len(end), when any character of start or end is absent
// from alphabet, or when len(start) == len(end) and start sorts after
// end under alphabet order.
func NewBruteForceSource(alphabet, start, end []byte) (*BruteForceSource, error) {
	if len(start) > len(end) {
		return nil, atkerrors.E(atkerrors.Invalid, "brute force: len(start) > len(end)")
	}
	rank := make(map[byte]int, len(alphabet))
	for i, c := range alphabet {
		if _, ok := rank[c]; !ok {
			rank[c] = i
		}
	}
	for _, c := range start {
		if _, ok := rank[c]; !ok {
			return nil, atkerrors.E(atkerrors.Invalid, "brute force: start contains a character outside alphabet")
		}
	}
	for _, c := range end {
		if _, ok := rank[c]; !ok {
			return nil, atkerrors.E(atkerrors.Invalid, "brute force: end contains a character outside alphabet")
		}
	}
	if len(start) == len(end) {
		for i := range start {
			if rank[start[i]] != rank[end[i]] {
				if rank[start[i]] > rank[end[i]] {
					return nil, atkerrors.E(atkerrors.Invalid, "brute force: start sorts after end")
				}
				break
			}
		}
	}
	return &BruteForceSource{
		Alphabet: alphabet,
		Start:    start,
		End:      end,
		rank:     rank,
	}, nil
}

func (s *BruteForceSource) radix() uint64 {
	return uint64(len(s.Alphabet))
}

func pow(base, exp uint64) uint64 {
	result := uint64(1)
	for i := uint64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// totalRecords computes the exact record count without enumerating:
// start at one (the start record itself), add the records needed to reach
// the maximal string of len(start), add every string of intermediate
// lengths, then subtract the tail beyond end.
func (s *BruteForceSource) totalRecords() uint64 {
	r := s.radix()
	total := uint64(1)
	for i, c := range s.Start {
		remaining := r - 1 - uint64(s.rank[c])
		total += remaining * pow(r, uint64(len(s.Start)-1-i))
	}
	for l := len(s.Start) + 1; l <= len(s.End); l++ {
		total += pow(r, uint64(l))
	}
	for i, c := range s.End {
		remaining := r - 1 - uint64(s.rank[c])
		total -= remaining * pow(r, uint64(len(s.End)-1-i))
	}
	return total
}

// Open implements Source.
func (s *BruteForceSource) Open() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordSize = len(s.End) + 1
	if s.RecordsPerBlock == 0 {
		s.RecordsPerBlock = DefaultRecordsPerBlock
	}
	return s.totalRecords(), nil
}

// RecordSize implements Source.
func (s *BruteForceSource) RecordSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordSize
}

// BlockCapacity implements Source.
func (s *BruteForceSource) BlockCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.RecordsPerBlock
}

// successor advances last by one step under the alphabet order: scan
// from the right for the first non-maximal character; increment it
// and reset every position to its right, or, if every position is
// already maximal, grow the string by one character when room remains
// under len(end).
func (s *BruteForceSource) successor() ([]byte, bool) {
	maxRank := uint64(len(s.Alphabet)) - 1
	for i := len(s.last) - 1; i >= 0; i-- {
		if uint64(s.rank[s.last[i]]) != maxRank {
			next := make([]byte, len(s.last))
			copy(next, s.last)
			next[i] = s.Alphabet[s.rank[s.last[i]]+1]
			for j := i + 1; j < len(next); j++ {
				next[j] = s.Alphabet[0]
			}
			return next, true
		}
	}
	if len(s.last) < len(s.End) {
		next := make([]byte, len(s.last)+1)
		for j := range next {
			next[j] = s.Alphabet[0]
		}
		return next, true
	}
	return nil, false
}

// NextBlock implements Source.
func (s *BruteForceSource) NextBlock(buf []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exhausted {
		return nil, nil
	}
	recordsPerBlock := s.RecordsPerBlock
	if buf == nil {
		buf = make([]byte, recordsPerBlock*s.recordSize)
	} else {
		recordsPerBlock = len(buf) / s.recordSize
	}

	n := 0
	for n < recordsPerBlock {
		var record []byte
		switch {
		case !s.started:
			record = s.Start
			s.started = true
		case bytes.Equal(s.last, s.End):
			s.exhausted = true
		default:
			next, ok := s.successor()
			if !ok {
				s.exhausted = true
				break
			}
			record = next
		}
		if s.exhausted {
			break
		}
		slot := buf[n*s.recordSize : (n+1)*s.recordSize]
		for i := range slot {
			slot[i] = 0
		}
		copy(slot, record)
		s.last = record
		n++
	}
	if n == 0 {
		return nil, nil
	}
	return buf[:n*s.recordSize], nil
}

// FreeBlock implements Source. BruteForceSource allocates eagerly and
// has nothing to release; FreeBlock exists only so the source
// satisfies the Source interface and the ownership discipline that
// every produced block passes through exactly one free call.
func (s *BruteForceSource) FreeBlock(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nil
}

// Close implements Source. BruteForceSource holds no file handles.
func (s *BruteForceSource) Close() error {
	return nil
}
