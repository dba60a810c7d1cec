// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package syncqueue_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/recordattack/syncqueue"
)

func TestPushPopOrder(t *testing.T) {
	q := syncqueue.New(4)
	defer drainAndClose(t, q)

	for i := 0; i < 4; i++ {
		require.True(t, q.Push([]byte{byte(i)}))
	}
	for i := 0; i < 4; i++ {
		buf, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, []byte{byte(i)}, buf)
	}
}

func TestPushBlocksWhileFull(t *testing.T) {
	q := syncqueue.New(2)
	defer drainAndClose(t, q)

	require.True(t, q.Push([]byte{1}))
	require.True(t, q.Push([]byte{2}))

	pushed := make(chan bool, 1)
	go func() {
		pushed <- q.Push([]byte{3})
	}()

	select {
	case <-pushed:
		t.Fatal("Push returned while queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	buf, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, []byte{1}, buf)

	select {
	case ok := <-pushed:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Push never unblocked after Pop freed a slot")
	}
}

func TestStopOnEmptyQueueGoesDirectlyToStopped(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	q.Stop()
	assert.Equal(t, syncqueue.Stopped, q.State())
	q.Close()
}

func TestStopOnNonEmptyQueueDrainsThenStops(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	require.True(t, q.Push([]byte{1}))
	q.Stop()
	assert.Equal(t, syncqueue.Stopping, q.State())

	buf, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, []byte{1}, buf)
	assert.Equal(t, syncqueue.Stopped, q.State())

	_, ok = q.Pop()
	assert.False(t, ok)
	q.Close()
}

func TestStopIsIdempotent(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	q.Stop()
	q.Stop()
	assert.Equal(t, syncqueue.Stopped, q.State())
	q.Close()
}

func TestPushAfterStopReturnsFalse(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	q.Stop()
	assert.False(t, q.Push([]byte{1}))
	q.Close()
}

func TestPopUnblocksOnStopEvenWhenEmpty(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Stop()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop never unblocked after Stop")
	}
	q.Close()
}

func TestDrainReclaimsOutstandingBlocks(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	require.True(t, q.Push([]byte{1}))
	require.True(t, q.Push([]byte{2}))
	q.Stop()

	blocks := q.Drain()
	assert.Len(t, blocks, 2)
	assert.Equal(t, syncqueue.Stopped, q.State())
	q.Close()
}

func TestCloseRequiresStoppedAndEmpty(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	assert.Panics(t, func() { q.Close() })

	q.Stop()
	q.Close()
}

func TestPushZeroLengthBlockPanics(t *testing.T) {
	q := syncqueue.New(syncqueue.DefaultCapacity)
	assert.Panics(t, func() { q.Push(nil) })
	q.Stop()
	q.Close()
}

func TestConcurrentProducersAndConsumers(t *testing.T) {
	q := syncqueue.New(4)
	const n = 200

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push([]byte{byte(i)})
		}
		q.Stop()
	}()

	received := 0
	for {
		_, ok := q.Pop()
		if !ok {
			break
		}
		received++
	}
	wg.Wait()
	assert.Equal(t, n, received)
	q.Close()
}

func drainAndClose(t *testing.T, q *syncqueue.BlockQueue) {
	t.Helper()
	q.Stop()
	q.Drain()
	q.Close()
}
