// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package atkerrors

import "fmt"

// CleanUp is defer-able syntactic sugar that calls cleanUp and folds
// any error it returns into *dst. Pass the caller's named return
// error. It folds a Close error into an already-in-flight error
// without discarding either.
//
//	func (r *reader) Close() (err error) {
//		defer atkerrors.CleanUp(r.f.Close, &err)
//		...
//	}
func CleanUp(cleanUp func() error, dst *error) {
	addErr(cleanUp(), dst)
}

func addErr(err2 error, dst *error) {
	if err2 == nil {
		return
	}
	if *dst == nil {
		*dst = err2
		return
	}
	*dst = E(*dst, fmt.Sprintf("second error in Close: %v", err2))
}
