// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package log

import golog "log"

var golevel = Info

// SetLevel sets the level the default outputter logs at. A program
// embedding this engine calls SetLevel(Debug) early, before starting
// an Attack, to opt into its internal progress tracing; the default,
// Info, keeps that tracing silent.
func SetLevel(level Level) {
	golevel = level
}

type gologOutputter struct{}

func (gologOutputter) Level() Level { return golevel }

func (gologOutputter) Output(calldepth int, level Level, s string) error {
	if golevel < level {
		return nil
	}
	return golog.Output(calldepth+1, s)
}
