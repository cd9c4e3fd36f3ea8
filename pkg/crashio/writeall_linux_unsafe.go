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

//go:build linux
// +build linux

package crashio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// rawWrite invokes write(2) without entering the Go runtime's syscall
// bookkeeping. It is a variable so tests can model short writes and
// interruption without delivering real signals.
var rawWrite = func(fd int, p unsafe.Pointer, n uintptr) (uintptr, unix.Errno) {
	r, _, errno := unix.RawSyscall(unix.SYS_WRITE, uintptr(fd), uintptr(p), n)
	if errno != 0 {
		return 0, errno
	}
	return r, 0
}

// rawClose invokes close(2) without entering the Go runtime's syscall
// bookkeeping.
var rawClose = func(fd int) unix.Errno {
	_, _, errno := unix.RawSyscall(unix.SYS_CLOSE, uintptr(fd), 0, 0)
	return errno
}
