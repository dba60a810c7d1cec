// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package atkerrors_test

import (
	"errors"
	"testing"

	"github.com/grailbio/recordattack/atkerrors"
	"github.com/stretchr/testify/assert"
)

func TestCleanUp(t *testing.T) {
	const (
		closeMsg  = "close failed"
		returnMsg = "return failed"
	)

	gotErr := func() (err error) {
		defer atkerrors.CleanUp(func() error { return nil }, &err)
		return nil
	}()
	assert.NoError(t, gotErr)

	gotErr = func() (err error) {
		defer atkerrors.CleanUp(func() error { return errors.New(closeMsg) }, &err)
		return nil
	}()
	assert.Equal(t, closeMsg, gotErr.Error())

	gotErr = func() (err error) {
		defer atkerrors.CleanUp(func() error { return nil }, &err)
		return errors.New(returnMsg)
	}()
	assert.Equal(t, returnMsg, gotErr.Error())

	gotErr = func() (err error) {
		defer atkerrors.CleanUp(func() error { return errors.New(closeMsg) }, &err)
		return errors.New(returnMsg)
	}()
	assert.Contains(t, gotErr.Error(), returnMsg)
	assert.Contains(t, gotErr.Error(), closeMsg)
}
