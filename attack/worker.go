// Copyright 2024 The recordattack Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package attack

import "github.com/grailbio/recordattack/log"

// work is one worker's loop. Each worker owns a private output
// staging buffer sized sink.RecordSize() x input.BlockCapacity(),
// forwarding it to the sink whenever it fills and flushing whatever
// remains on exit.
func (a *Attack) work() {
	defer a.workers.Done()

	recordSize := a.cfg.Source.RecordSize()
	var sinkRecordSize int
	var outBuf []byte
	outLen := 0
	if a.cfg.Sink != nil {
		sinkRecordSize = a.cfg.Sink.RecordSize()
		outBuf = make([]byte, sinkRecordSize*a.cfg.Source.BlockCapacity())
	}

	var result []byte
	matched := false

	for {
		block, ok := a.queue.Pop()
		if !ok {
			break
		}

		var tested uint64
		blockMatched := false
		sinkFailed := false
	records:
		for off := 0; off+recordSize <= len(block); off += recordSize {
			record := block[off : off+recordSize]
			var out []byte
			if a.cfg.Sink != nil {
				out = outBuf[outLen : outLen+sinkRecordSize]
			}

			switch a.cfg.Checker(record, out) {
			case CheckInvalid:
				continue records

			case CheckMatch:
				tested++
				if a.cfg.Sink != nil {
					outLen += sinkRecordSize
				}
				result = append([]byte(nil), record...)
				blockMatched = true
				matched = true

			case CheckNoMatch:
				tested++
				if a.cfg.Sink == nil {
					continue records
				}
				outLen += sinkRecordSize
			}

			if a.cfg.Sink != nil && outLen == len(outBuf) {
				if err := a.cfg.Sink.NextBlock(outBuf[:outLen]); err != nil {
					log.Debug.Printf("attack: worker sink write failed: %v", err)
					a.recordError(StageOutput, err)
					a.queue.Stop()
					outLen = 0
					sinkFailed = true
					break records
				}
				outLen = 0
			}
			if blockMatched {
				break records
			}
		}

		// The block was popped from the queue, so it must be freed
		// and tallied here regardless of how the records loop above
		// exited. A sink-write failure mid-block is not a reason to
		// leak the block back to the source.
		a.addTested(tested)
		if err := a.cfg.Source.FreeBlock(block); err != nil {
			log.Debug.Printf("attack: worker free_block failed: %v", err)
			a.recordError(StageInput, err)
			a.queue.Stop()
			break
		}
		if sinkFailed || blockMatched {
			break
		}
	}

	if a.cfg.Sink != nil && outLen > 0 {
		if err := a.cfg.Sink.NextBlock(outBuf[:outLen]); err != nil {
			a.recordError(StageOutput, err)
		}
	}
	if matched {
		log.Debug.Printf("attack: worker found a match")
		a.installResult(result)
		a.queue.Stop()
	}
}
