// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package mangle provides a convenience for the common case of
// turning a wordlist into a record file verbatim: every word is
// copied through unchanged, so the resulting file can itself become a
// RecordFileSource input for a later attack. It is adapted from
// libmakedict.c's do_make_dict/make_dict_init pair, which wires a
// word-list source into a dictionary-file sink through exactly this
// checker.
package mangle

import (
	"github.com/grailbio/recordattack/attack"
	"github.com/grailbio/recordattack/sink"
	"github.com/grailbio/recordattack/source"
)

// Checker copies record into out unchanged and always reports
// CheckNoMatch, so every word a source produces is retained by
// whatever sink the caller pairs it with. This is do_make_dict's
// behavior: it has no notion of an "answer", only expansion.
func Checker(record []byte, out []byte) attack.CheckResult {
	copy(out, record)
	return attack.CheckNoMatch
}

// New builds an attack that reads wordlistPath and writes every word,
// unchanged, into a fresh or appended record file at dictPath tagged
// with fileOrder. It mirrors make_dict_init's wiring: a WordlistSource
// feeding a RecordFileSink through Checker.
//
// recordSize of zero asks for the same auto-sizing make_dict_init
// performs when its caller passes a zero rec_size: a throwaway source
// is opened and closed just to learn the resolved record width, which
// is then used for both the real source and the sink (a RecordFileSink
// cannot auto-size itself the way a WordlistSource can).
func New(wordlistPath, dictPath string, fileOrder uint32, recordSize int, workers int) (*attack.Attack, error) {
	if recordSize == 0 {
		probe := &source.WordlistSource{Path: wordlistPath}
		if _, err := probe.Open(); err != nil {
			return nil, err
		}
		recordSize = probe.RecordSize()
		if err := probe.Close(); err != nil {
			return nil, err
		}
	}

	src := &source.WordlistSource{Path: wordlistPath, RecordSize: recordSize}
	snk := &sink.RecordFileSink{Path: dictPath, FileOrder: fileOrder, RecordSize: recordSize}
	return attack.New(attack.Config{
		Source:  src,
		Sink:    snk,
		Workers: workers,
		Checker: Checker,
	}), nil
}
