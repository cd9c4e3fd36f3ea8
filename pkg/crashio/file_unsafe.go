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

	"crashsafe.dev/crashsafe/pkg/asyncsafe"
	"crashsafe.dev/crashsafe/pkg/crasherr"
)

// File is a bounded buffered sink over an already-open file descriptor.
// The descriptor is exclusively owned by the File from Init until Close;
// the File never opens or creates files itself.
//
// The zero value is not usable; call Init first. A File must not be reused
// after Close.
type File struct {
	// fd is the output file descriptor.
	fd int

	// limit is the maximum number of bytes that will ever be written, as a
	// safety measure against a run-away crash log writer filling the disk.
	// 0 means unlimited. Once the limit would be exceeded, whole appends
	// are dropped.
	limit uint64

	// written is the cumulative number of bytes accepted. Only maintained
	// when limit is non-zero.
	written uint64

	// buflen is the number of valid bytes in buf.
	buflen int

	// buf batches small appends so that report generation issues as few
	// write syscalls as possible.
	buf [BufferSize]byte
}

// Init associates f with the open, writable descriptor fd and resets all
// counters. limit caps the total bytes ever written; 0 disables the cap.
func (f *File) Init(fd int, limit uint64) {
	f.fd = fd
	f.limit = limit
	f.written = 0
	f.buflen = 0
}

// Write appends data to the sink. The output limit is enforced
// all-or-nothing: an append that would exceed it is rejected in full with
// no change to buffered or cumulative state. Data smaller than the
// remaining buffer space is batched without touching the descriptor; data
// larger than the whole buffer bypasses it after a flush.
func (f *File) Write(data []byte) *crasherr.Error {
	if f.limit != 0 {
		if f.written+uint64(len(data)) > f.limit {
			return crasherr.ErrLimitReached
		}
		f.written += uint64(len(data))
	}

	// Flush if this append would overflow the buffer.
	if f.buflen+len(data) > BufferSize {
		if _, errno := WriteAll(f.fd, f.buf[:f.buflen]); errno != 0 {
			debugWriteFailure(errno)
			return crasherr.ErrWriteFailed
		}
		f.buflen = 0
	}

	// Batch if it fits, including exactly filling the remaining space.
	if f.buflen+len(data) <= BufferSize {
		if len(data) > 0 {
			asyncsafe.Memcpy(unsafe.Pointer(&f.buf[f.buflen]), unsafe.Pointer(&data[0]), uintptr(len(data)))
			f.buflen += len(data)
		}
		return nil
	}

	// Larger than the whole buffer; write it through directly.
	if _, errno := WriteAll(f.fd, data); errno != 0 {
		debugWriteFailure(errno)
		return crasherr.ErrWriteFailed
	}
	return nil
}

// Flush writes any buffered bytes to the descriptor. With nothing
// buffered it is a no-op, so back-to-back flushes cost one write at most.
func (f *File) Flush() *crasherr.Error {
	if f.buflen == 0 {
		return nil
	}
	if _, errno := WriteAll(f.fd, f.buf[:f.buflen]); errno != 0 {
		debugWriteFailure(errno)
		return crasherr.ErrWriteFailed
	}
	f.buflen = 0
	return nil
}

// Close flushes buffered bytes and releases the descriptor. The release is
// attempted even if the flush fails, so teardown is always total; the
// first failure is the one reported.
func (f *File) Close() *crasherr.Error {
	err := f.Flush()
	if errno := rawClose(f.fd); errno != 0 && err == nil {
		err = crasherr.FromHost(errno)
	}
	f.fd = -1
	return err
}
