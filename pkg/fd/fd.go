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

// Package fd provides ownership types for host file descriptors, used by
// the non-signal surfaces of this module (procfs memory readers, tests).
// The crash path itself holds raw descriptors; see package crashio.
package fd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"crashsafe.dev/crashsafe/pkg/crashio"
)

// ReadWriter implements io.ReadWriter and io.ReaderAt for a host file
// descriptor. It does not take ownership of the descriptor.
type ReadWriter struct {
	// fd is accessed atomically so FD.Close/Release can swap it.
	fd atomic.Int64
}

var _ io.ReadWriter = (*ReadWriter)(nil)
var _ io.ReaderAt = (*ReadWriter)(nil)

// NewReadWriter creates a ReadWriter for fd.
func NewReadWriter(fd int) *ReadWriter {
	rw := &ReadWriter{}
	rw.fd.Store(int64(fd))
	return rw
}

func fixCount(n int, err error) (int, error) {
	if n < 0 {
		n = 0
	}
	return n, err
}

// Read implements io.Reader.
func (r *ReadWriter) Read(b []byte) (int, error) {
	for {
		c, err := fixCount(unix.Read(int(r.fd.Load()), b))
		if err == unix.EINTR {
			continue
		}
		if c == 0 && len(b) > 0 && err == nil {
			return 0, io.EOF
		}
		return c, err
	}
}

// ReadAt implements io.ReaderAt. Interrupted preads are retried; reads of
// procfs are routinely interrupted while the target is being inspected.
//
// ReadAt always returns a non-nil error when c < len(b).
func (r *ReadWriter) ReadAt(b []byte, off int64) (c int, err error) {
	for len(b) > 0 {
		var m int
		m, err = fixCount(unix.Pread(int(r.fd.Load()), b, off))
		if err == unix.EINTR {
			continue
		}
		if m == 0 && err == nil {
			return c, io.EOF
		}
		if err != nil {
			return c, err
		}
		c += m
		b = b[m:]
		off += int64(m)
	}
	return
}

// Write implements io.Writer through crashio.WriteAll, so this module has
// exactly one rendering of the "retry EINTR only" policy.
func (r *ReadWriter) Write(b []byte) (int, error) {
	if _, errno := crashio.WriteAll(int(r.fd.Load()), b); errno != 0 {
		return 0, errno
	}
	return len(b), nil
}

// FD owns a host file descriptor.
//
// It is similar to os.File, but provides a Release method that
// relinquishes ownership without closing, and does not pin the descriptor
// to an os.File's lifetime.
type FD struct {
	ReadWriter
}

// New creates a new FD.
//
// New takes ownership of fd.
func New(fd int) *FD {
	f := &FD{}
	if fd < 0 {
		f.fd.Store(-1)
		return f
	}
	f.fd.Store(int64(fd))
	runtime.SetFinalizer(f, (*FD).Close)
	return f
}

// NewFromFile creates a new FD from an os.File.
//
// This dups the underlying descriptor, so the FD and the os.File have
// independent lifetimes.
func NewFromFile(file *os.File) (*FD, error) {
	fd, err := unix.Dup(int(file.Fd()))
	// Technically, the runtime may call the finalizer on file as soon as
	// Fd() returns.
	runtime.KeepAlive(file)
	if err != nil {
		return nil, err
	}
	return New(fd), nil
}

// FD returns the raw host file descriptor.
func (f *FD) FD() int {
	return int(f.fd.Load())
}

// Release relinquishes ownership of the descriptor and returns it. The FD
// is left in an invalid state.
func (f *FD) Release() int {
	runtime.SetFinalizer(f, nil)
	return int(f.fd.Swap(-1))
}

// Close closes the descriptor. It is safe to call multiple times; calls
// after the first return an error.
func (f *FD) Close() error {
	runtime.SetFinalizer(f, nil)
	fd := f.fd.Swap(-1)
	if fd < 0 {
		return fmt.Errorf("fd has already been closed")
	}
	return unix.Close(int(fd))
}
