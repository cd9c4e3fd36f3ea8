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

// Package taskmem reads byte ranges out of another task's address space
// without faulting the caller. Read failures come back as classified
// values, never as a raised fault: UnmappedError for ranges that are
// wholly or partly unmapped (a short read is never surfaced as success),
// ProtectionError for ranges that are mapped but access-restricted.
//
// Success paths perform no allocation and take no locks; converting a
// fault value into an error interface on a failure path may allocate.
package taskmem

import (
	"fmt"

	"crashsafe.dev/crashsafe/pkg/crasherr"
)

// Addr is an address in a task's address space.
type Addr uintptr

// AddLength returns addr + length and whether that sum did not overflow.
func (v Addr) AddLength(length uint64) (end Addr, ok bool) {
	end = v + Addr(length)
	ok = end >= v && length <= uint64(^Addr(0))
	return
}

// UnmappedError is returned when a read touches an address range that is
// wholly or partly unmapped. Addr is the first address that could not be
// read.
type UnmappedError struct {
	Addr Addr
}

// Error implements error.Error.
func (e UnmappedError) Error() string {
	return fmt.Sprintf("unmapped memory at %#x", uintptr(e.Addr))
}

// ProtectionError is returned when a read touches an address range that is
// mapped but cannot be read due to access restrictions.
type ProtectionError struct {
	Addr Addr
}

// Error implements error.Error.
func (e ProtectionError) Error() string {
	return fmt.Sprintf("protected memory at %#x", uintptr(e.Addr))
}

// Reader reads ranges of a task's memory. Implementations must copy
// either all of dst or classify the failure; a partial copy is reported as
// UnmappedError at the first uncopied address.
type Reader interface {
	// ReadAddr copies len(dst) bytes starting at addr in the target's
	// address space into dst.
	ReadAddr(addr Addr, dst []byte) error
}

// Task identifies a target process whose memory can be read. The handle
// does not pin the target; reads of an exited task fail with
// crasherr.ErrNotFound.
type Task struct {
	pid int
}

// NewTask returns a handle for the process identified by pid. The caller
// is responsible for having obtained pid legitimately; no validation
// happens here.
func NewTask(pid int) Task {
	return Task{pid: pid}
}

// PID returns the process ID this handle refers to.
func (t Task) PID() int {
	return t.pid
}

func init() {
	crasherr.AddErrorUnwrapper(func(err error) (*crasherr.Error, bool) {
		switch err.(type) {
		case UnmappedError:
			return crasherr.ErrInvalidArgument, true
		case ProtectionError:
			return crasherr.ErrAccessDenied, true
		default:
			return nil, false
		}
	})
}
