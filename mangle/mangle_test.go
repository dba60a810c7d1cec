// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mangle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/recordattack/attack"
	"github.com/grailbio/recordattack/mangle"
)

func TestNewExpandsWordlistVerbatim(t *testing.T) {
	dir := t.TempDir()
	wordlistPath := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(wordlistPath, []byte("cat\nlion\nox\n"), 0o644))
	dictPath := filepath.Join(dir, "dict.dat")

	a, err := mangle.New(wordlistPath, dictPath, 5, 0, 2)
	require.NoError(t, err)

	done := make(chan struct{})
	a.Start()
	go func() {
		a.Wait()
		close(done)
	}()
	<-done

	raw, err := os.ReadFile(dictPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("cat\x00\x00lion\x00ox\x00\x00\x00"), raw[268:])
}

func TestCheckerCopiesRecordVerbatim(t *testing.T) {
	out := make([]byte, 4)
	result := mangle.Checker([]byte("abcd"), out)
	assert.Equal(t, []byte("abcd"), out)
	assert.Equal(t, attack.CheckNoMatch, result)
}
