// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package sink_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/recordattack/atkerrors"
	"github.com/grailbio/recordattack/sink"
	"github.com/grailbio/recordattack/source"
)

func writeRecord(t *testing.T, s *sink.RecordFileSink, word string) {
	t.Helper()
	slot := make([]byte, s.RecordSize())
	copy(slot, word)
	require.NoError(t, s.NextBlock(slot))
}

// TestRecordFileSinkRoundTrip is scenario E3 end to end: write through
// the sink, read back through the matching source.
func TestRecordFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	s := &sink.RecordFileSink{Path: path, FileOrder: 7, Description: "wordlist", RecordSize: 5}
	require.NoError(t, s.Open())
	assert.Equal(t, 5, s.RecordSize())

	for _, word := range []string{"cat", "lion", "ox"} {
		writeRecord(t, s, word)
	}
	require.NoError(t, s.Close())

	src := &source.RecordFileSource{Path: path, FileOrder: 7, Description: "wordlist"}
	total, err := src.Open()
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	block, err := src.NextBlock(nil)
	require.NoError(t, err)
	assert.Equal(t, "cat\x00\x00lion\x00ox\x00\x00\x00", string(block))
	require.NoError(t, src.Close())
}

func TestRecordFileSinkAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	first := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 4}
	require.NoError(t, first.Open())
	writeRecord(t, first, "aa")
	require.NoError(t, first.Close())

	second := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 4}
	require.NoError(t, second.Open())
	writeRecord(t, second, "bb")
	require.NoError(t, second.Close())

	src := &source.RecordFileSource{Path: path, FileOrder: 1, Description: "d"}
	total, err := src.Open()
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	block, err := src.NextBlock(nil)
	require.NoError(t, err)
	assert.Equal(t, "aa\x00\x00bb\x00\x00", string(block))
}

func TestRecordFileSinkRejectsIncompatibleHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	first := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 4}
	require.NoError(t, first.Open())
	require.NoError(t, first.Close())

	mismatch := &sink.RecordFileSink{Path: path, FileOrder: 2, Description: "d", RecordSize: 4}
	err := mismatch.Open()
	require.Error(t, err)
	assert.True(t, atkerrors.Is(atkerrors.FileInvalid, err))
}

func TestRecordFileSinkRejectsNarrowerRecordSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	first := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 4}
	require.NoError(t, first.Open())
	require.NoError(t, first.Close())

	wider := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 8}
	err := wider.Open()
	require.Error(t, err)
	assert.True(t, atkerrors.Is(atkerrors.RecordSizeInvalid, err))
}

func TestRecordFileSinkAdoptsWiderExistingRecordSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	first := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 8}
	require.NoError(t, first.Open())
	require.NoError(t, first.Close())

	narrower := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 4}
	require.NoError(t, narrower.Open())
	assert.Equal(t, 8, narrower.RecordSize())
}

func TestRecordFileSinkMissingDirectoryFails(t *testing.T) {
	s := &sink.RecordFileSink{Path: filepath.Join(t.TempDir(), "missing", "out.dat"), RecordSize: 4}
	err := s.Open()
	require.Error(t, err)
	assert.True(t, atkerrors.Is(atkerrors.System, err))
}

func TestRecordFileSinkWritesExpectedBytesOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dat")
	s := &sink.RecordFileSink{Path: path, FileOrder: 1, Description: "d", RecordSize: 4}
	require.NoError(t, s.Open())
	writeRecord(t, s, "hi")
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, raw, 268+4)
}
