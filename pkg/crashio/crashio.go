// Copyright 2026 The CrashSafe Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package crashio implements buffered output to a file descriptor for use
// from a signal-handling context. All state is inline and fixed-size; the
// write path performs no allocation and takes no locks, so it remains
// usable on a thread that was interrupted mid-allocation or while holding
// runtime locks.
//
// A File is owned by a single logical writer; concurrent use is not
// supported. Once a write fails the sink should be considered degraded:
// stop appending and call Close for best-effort teardown.
package crashio

import (
	"golang.org/x/sys/unix"

	"crashsafe.dev/crashsafe/pkg/log"
)

// BufferSize is the capacity of a File's inline buffer. Appends smaller
// than the remaining space are batched in memory and hit the descriptor
// only on overflow, Flush or Close.
const BufferSize = 4096

// debugWriteFailure renders a failed crash-log write through the module
// logger. The level guard keeps this off the crash path unless debug
// logging was explicitly enabled; formatting is not async-signal-safe.
func debugWriteFailure(errno unix.Errno) {
	if log.IsLogging(log.Debug) {
		log.Debugf("error occurred writing to crash log: %v", errno)
	}
}
