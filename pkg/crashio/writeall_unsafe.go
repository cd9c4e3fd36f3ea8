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

package crashio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// WriteAll writes data to fd, looping until every byte is written. EINTR
// is retried transparently; any other failure, including a zero-length
// write with no errno, aborts immediately with (-1, errno). For the local
// file system a single underlying call is the expected case.
//
// On success it returns the byte count of the final underlying write and
// errno 0; the loop only exits successfully once nothing is left, so
// callers may treat any non-negative return as "all bytes written".
//
// WriteAll performs no allocation and takes no locks.
func WriteAll(fd int, data []byte) (int, unix.Errno) {
	left := uintptr(len(data))
	var written uintptr
	for left > 0 {
		p := unsafe.Pointer(&data[uintptr(len(data))-left])
		n, errno := rawWrite(fd, p, left)
		if errno == unix.EINTR {
			continue
		}
		if errno != 0 {
			return -1, errno
		}
		if n == 0 {
			// No progress and no errno. There is no reason to believe a
			// retry would advance, and a crash-time writer must not spin.
			return -1, unix.EIO
		}
		left -= n
		written = n
	}
	return int(written), 0
}
