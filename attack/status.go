// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package attack

import "github.com/grailbio/recordattack/atkerrors"

// Status is a point-in-time snapshot of an attack's progress.
type Status struct {
	// RecordsTested is the number of records the checker has examined
	// so far. It is non-decreasing across successive snapshots.
	RecordsTested uint64
	// TotalRecords is the source's exact record count, known from the
	// moment Open succeeds.
	TotalRecords uint64
	// Stopped is true once the attack has fully shut down: all
	// workers and the feeder have exited, and the callback (if any)
	// has run.
	Stopped bool
}

// stageError attaches the pipeline stage a cause originated in, so
// the first-error-wins slot records both in one value.
type stageError struct {
	stage Stage
	err   error
}

func (e *stageError) Error() string { return e.stage.String() + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// Err returns the attack's terminal error and the stage it originated
// in, if any error has been recorded yet. The second return is only
// meaningful when ok is true.
func (a *Attack) Err() (err error, stage Stage, ok bool) {
	recorded := a.errOnce.Err()
	if recorded == nil {
		return nil, 0, false
	}
	se, isStaged := recorded.(*stageError)
	if !isStaged {
		return recorded, 0, true
	}
	return se.err, se.stage, true
}

func (a *Attack) recordError(stage Stage, err error) {
	if err == nil {
		return
	}
	a.errOnce.Set(&stageError{stage: stage, err: err})
}

// Snapshot implements the status-reporting half of the engine's
// public surface, mirroring check_attack. It returns a copy of the
// running counters and, if result is non-nil, up to len(result) bytes
// of the currently installed result (the return value n reports how
// many bytes were copied). Snapshot returns an atkerrors.Stopped error
// once the attack has reached Stopped, but the returned Status is
// always populated regardless.
func (a *Attack) Snapshot(result []byte) (Status, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := Status{
		RecordsTested: a.recordsTested,
		TotalRecords:  a.totalRecords,
		Stopped:       a.lifecycle == lifecycleStopped,
	}
	n := 0
	if result != nil && a.resultSet {
		n = copy(result, a.result)
	}
	if st.Stopped {
		return st, n, atkerrors.E(atkerrors.Stopped, "attack has stopped")
	}
	return st, n, nil
}

// RequestStop implements the engine's shutdown request, mirroring
// stop_attack: an idempotent, non-blocking transition from Active to
// Stopping. Its effect becomes visible at the pipeline's next guarded
// state read.
func (a *Attack) RequestStop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lifecycle == lifecycleActive {
		a.lifecycle = lifecycleStopping
	}
}
