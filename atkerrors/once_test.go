// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package atkerrors_test

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/grailbio/recordattack/atkerrors"
	"github.com/stretchr/testify/require"
)

func TestOnce(t *testing.T) {
	var o atkerrors.Once
	require.NoError(t, o.Err())

	o.Set(atkerrors.New("testerror"))
	require.EqualError(t, o.Err(), "testerror")
	o.Set(atkerrors.New("testerror2")) // ignored: first writer wins
	require.EqualError(t, o.Err(), "testerror")
	runtime.GC()
	require.EqualError(t, o.Err(), "testerror")
}

func TestOnceConcurrent(t *testing.T) {
	var o atkerrors.Once
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Set(fmt.Errorf("error %d", i))
		}()
	}
	wg.Wait()
	require.Error(t, o.Err())
}

func ExampleOnce() {
	var o atkerrors.Once
	fmt.Printf("Error: %v\n", o.Err())
	o.Set(atkerrors.New("test error 0"))
	fmt.Printf("Error: %v\n", o.Err())
	o.Set(atkerrors.New("test error 1"))
	fmt.Printf("Error: %v\n", o.Err())
	// Output:
	// Error: <nil>
	// Error: test error 0
	// Error: test error 0
}
