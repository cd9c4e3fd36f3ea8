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

//go:build darwin
// +build darwin

package crashio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Darwin does not expose stable raw syscall numbers; writes go through
// libSystem's write wrapper, which POSIX declares async-signal-safe.

// rawWrite invokes write(2). It is a variable so tests can model short
// writes and interruption without delivering real signals.
var rawWrite = func(fd int, p unsafe.Pointer, n uintptr) (uintptr, unix.Errno) {
	m, err := unix.Write(fd, unsafe.Slice((*byte)(p), int(n)))
	if err != nil {
		errno, ok := err.(unix.Errno)
		if !ok {
			errno = unix.EIO
		}
		return 0, errno
	}
	if m < 0 {
		m = 0
	}
	return uintptr(m), 0
}

// rawClose invokes close(2).
var rawClose = func(fd int) unix.Errno {
	if err := unix.Close(fd); err != nil {
		if errno, ok := err.(unix.Errno); ok {
			return errno
		}
		return unix.EIO
	}
	return 0
}
