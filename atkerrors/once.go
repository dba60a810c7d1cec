// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package atkerrors

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Once captures at most one error. Errors are safely set across
// multiple goroutines; only the first call to Set sticks.
//
// The attack orchestrator keeps one Once for its terminal error and
// reuses the same first-writer-wins pattern, with a different payload
// type, for the result a checker installs: whichever worker gets there
// first wins and every later attempt is silently dropped.
//
// A zero Once is ready to use.
type Once struct {
	mu  sync.Mutex
	err unsafe.Pointer // stores *error
}

// Err returns the first non-nil error passed to Set, or nil.
func (o *Once) Err() error {
	p := atomic.LoadPointer(&o.err)
	if p == nil {
		return nil
	}
	return *(*error)(p)
}

// Set sets this instance's error to err. Only the first non-nil error
// is retained; subsequent calls are ignored.
func (o *Once) Set(err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	if o.err == nil {
		atomic.StorePointer(&o.err, unsafe.Pointer(&err))
	}
	o.mu.Unlock()
}
