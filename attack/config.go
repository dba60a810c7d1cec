// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package attack implements the orchestrator that wires a source, an
// optional sink, and a bounded worker pool into a cooperatively
// shut-down record-attack pipeline.
package attack

import (
	"github.com/grailbio/recordattack/sink"
	"github.com/grailbio/recordattack/source"
)

// MaxThreads is the upper bound on worker count a Config may request.
const MaxThreads = 4096

// CheckResult classifies a record as a checker examines it.
type CheckResult int

const (
	// CheckMatch means the record is the answer; the attack stops.
	CheckMatch CheckResult = iota
	// CheckInvalid means the record is skipped: not counted as
	// tested, never forwarded to the sink.
	CheckInvalid
	// CheckNoMatch means the record was tested and is not the
	// answer. If a sink is configured, out has been filled and its
	// bytes are forwarded.
	CheckNoMatch
)

// Checker classifies one record. record is read-only and owned by the
// engine; out, non-nil only when a sink is configured, is the worker's
// private staging slot for this record's derived artifact. Checkers
// must be pure with respect to engine state and safe to call
// concurrently from multiple workers.
type Checker func(record []byte, out []byte) CheckResult

// Callback is invoked exactly once per attack, after every worker has
// joined and both source and sink have been closed.
type Callback func(a *Attack)

// Stage identifies whether a recorded error originated from the input
// source or the output sink.
type Stage int

const (
	// StageInput marks an error raised by the source.
	StageInput Stage = iota
	// StageOutput marks an error raised by the sink.
	StageOutput
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "input"
	case StageOutput:
		return "output"
	default:
		return "unknown stage"
	}
}

// Config bundles an attack's immutable configuration. It is read-only
// once passed to New; the orchestrator never mutates it.
type Config struct {
	// Source is the record producer the feeder drains.
	Source source.Source
	// Sink is an optional record destination workers forward derived
	// artifacts to. Nil means no sink: CheckNoMatch results are
	// simply discarded.
	Sink sink.Sink
	// Workers is the worker pool size, clamped to [1, MaxThreads].
	Workers int
	// Checker classifies each record.
	Checker Checker
	// Callback, if non-nil, runs once after the workers have joined
	// and the source and sink are closed, just before the attack
	// reaches Stopped.
	Callback Callback
}

func (c Config) clampedWorkers() int {
	switch {
	case c.Workers < 1:
		return 1
	case c.Workers > MaxThreads:
		return MaxThreads
	default:
		return c.Workers
	}
}
