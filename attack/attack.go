// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package attack

import (
	"sync"

	"github.com/grailbio/recordattack/atkerrors"
	"github.com/grailbio/recordattack/log"
	"github.com/grailbio/recordattack/must"
	"github.com/grailbio/recordattack/syncqueue"
)

type lifecycle int

const (
	lifecycleActive lifecycle = iota
	lifecycleStopping
	lifecycleStopped
)

// Attack orchestrates one run of the pipeline: a single feeder goroutine
// drains cfg.Source into a bounded queue; cfg.Workers goroutines drain
// the queue, apply cfg.Checker, and forward derived artifacts to
// cfg.Sink. Construct with New, then Start; Snapshot and RequestStop
// are safe to call from any goroutine while the attack runs.
type Attack struct {
	cfg   Config
	queue *syncqueue.BlockQueue

	workers sync.WaitGroup
	done    chan struct{}

	mu            sync.Mutex
	lifecycle     lifecycle
	recordsTested uint64
	totalRecords  uint64
	result        []byte
	resultSet     bool
	errOnce       atkerrors.Once
}

// New constructs an Attack from cfg. Workers is clamped to
// [1, MaxThreads]; the queue capacity is the larger of
// syncqueue.DefaultCapacity and twice the worker count, so a full
// pool can never deadlock itself against the feeder.
func New(cfg Config) *Attack {
	must.True(cfg.Source != nil, "attack: Config.Source is required")
	must.True(cfg.Checker != nil, "attack: Config.Checker is required")
	cfg.Workers = cfg.clampedWorkers()

	capacity := syncqueue.DefaultCapacity
	if 2*cfg.Workers > capacity {
		capacity = 2 * cfg.Workers
	}
	return &Attack{
		cfg:   cfg,
		queue: syncqueue.New(capacity),
		done:  make(chan struct{}),
	}
}

// Start begins the attack asynchronously: it returns immediately, and
// the pipeline runs on its own goroutines until it stops on its own
// (source exhaustion or an error) or until RequestStop is called.
// Start must be called at most once.
func (a *Attack) Start() {
	go a.run()
}

// Wait blocks until the attack reaches Stopped and the callback, if
// any, has run.
func (a *Attack) Wait() {
	<-a.done
}

func (a *Attack) getLifecycle() lifecycle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lifecycle
}

func (a *Attack) setLifecycle(lc lifecycle) {
	a.mu.Lock()
	a.lifecycle = lc
	a.mu.Unlock()
}

func (a *Attack) setTotalRecords(n uint64) {
	a.mu.Lock()
	a.totalRecords = n
	a.mu.Unlock()
}

func (a *Attack) addTested(n uint64) {
	if n == 0 {
		return
	}
	a.mu.Lock()
	a.recordsTested += n
	a.mu.Unlock()
}

func (a *Attack) hasResult() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resultSet
}

// installResult implements the "first writer wins" rule: if a result
// is already installed, the argument is silently discarded.
func (a *Attack) installResult(record []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resultSet {
		return
	}
	a.result = record
	a.resultSet = true
}

// run is the feeder: it owns the input and output mutexes across
// open, drives the worker pool, and sequences shutdown exactly as
// described for the feeder thread: open input, open output, feed
// the queue until stopped or exhausted, stop the queue, join workers,
// drain, close, and invoke the callback.
func (a *Attack) run() {
	defer close(a.done)

	log.Debug.Printf("attack: feeder opening input")
	total, err := a.cfg.Source.Open()
	if err != nil {
		log.Debug.Printf("attack: input open failed: %v", err)
		a.recordError(StageInput, err)
		a.setLifecycle(lifecycleStopping)
	} else {
		a.setTotalRecords(total)
	}

	if a.cfg.Sink != nil {
		log.Debug.Printf("attack: feeder opening output")
		if err := a.cfg.Sink.Open(); err != nil {
			log.Debug.Printf("attack: output open failed: %v", err)
			a.recordError(StageOutput, err)
			a.setLifecycle(lifecycleStopping)
		}
	}

	a.workers.Add(a.cfg.Workers)
	for i := 0; i < a.cfg.Workers; i++ {
		go a.work()
	}

	for a.getLifecycle() == lifecycleActive {
		block, err := a.cfg.Source.NextBlock(nil)
		if err != nil {
			log.Debug.Printf("attack: feeder read failed: %v", err)
			a.recordError(StageInput, err)
			break
		}
		if len(block) == 0 {
			log.Debug.Printf("attack: feeder reached end of stream")
			break
		}
		if !a.queue.Push(block) {
			a.recordError(StageInput, a.cfg.Source.FreeBlock(block))
			break
		}
	}

	a.setLifecycle(lifecycleStopping)
	a.queue.Stop()

	if a.hasResult() {
		for _, block := range a.queue.Drain() {
			a.recordError(StageInput, a.cfg.Source.FreeBlock(block))
		}
	}

	a.workers.Wait()

	for _, block := range a.queue.Drain() {
		a.recordError(StageInput, a.cfg.Source.FreeBlock(block))
	}

	if err := a.cfg.Source.Close(); err != nil {
		a.recordError(StageInput, err)
	}
	if a.cfg.Sink != nil {
		if err := a.cfg.Sink.Close(); err != nil {
			a.recordError(StageOutput, err)
		}
	}
	a.queue.Close()

	if a.cfg.Callback != nil {
		a.cfg.Callback(a)
	}
	a.setLifecycle(lifecycleStopped)
	log.Debug.Printf("attack: stopped, records_tested=%d", a.recordsTested)
}
