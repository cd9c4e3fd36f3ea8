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
	"bytes"
	"io"
	"os"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
)

// installFake replaces the write syscall seam for the duration of a test.
// The fake receives the bytes the kernel would have seen.
func installFake(t *testing.T, f func(fd int, p []byte) (int, unix.Errno)) {
	t.Helper()
	old := rawWrite
	rawWrite = func(fd int, p unsafe.Pointer, n uintptr) (uintptr, unix.Errno) {
		w, errno := f(fd, unsafe.Slice((*byte)(p), int(n)))
		return uintptr(w), errno
	}
	t.Cleanup(func() { rawWrite = old })
}

// installFakeClose replaces the close syscall seam, recording closed fds.
func installFakeClose(t *testing.T, closed *[]int) {
	t.Helper()
	old := rawClose
	rawClose = func(fd int) unix.Errno {
		*closed = append(*closed, fd)
		return 0
	}
	t.Cleanup(func() { rawClose = old })
}

func TestWriteAllSingleCall(t *testing.T) {
	var got []byte
	calls := 0
	installFake(t, func(fd int, p []byte) (int, unix.Errno) {
		calls++
		got = append(got, p...)
		return len(p), 0
	})
	data := []byte("crash report payload")
	n, errno := WriteAll(3, data)
	if errno != 0 || n != len(data) {
		t.Fatalf("WriteAll: got (%d, %v), want (%d, 0)", n, errno, len(data))
	}
	if calls != 1 {
		t.Errorf("underlying calls: got %d, want 1", calls)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("written bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAllShortWrites(t *testing.T) {
	// A descriptor that accepts at most k bytes per call must be driven
	// with exactly ceil(len/k) calls.
	const k = 3
	var got []byte
	calls := 0
	installFake(t, func(fd int, p []byte) (int, unix.Errno) {
		calls++
		if len(p) > k {
			p = p[:k]
		}
		got = append(got, p...)
		return len(p), 0
	})
	data := []byte("0123456789")
	n, errno := WriteAll(3, data)
	if errno != 0 {
		t.Fatalf("WriteAll failed: %v", errno)
	}
	// 10 bytes at 3 per call: 3+3+3+1.
	if want := 4; calls != want {
		t.Errorf("underlying calls: got %d, want %d", calls, want)
	}
	// The return value is the final call's count.
	if n != 1 {
		t.Errorf("final write count: got %d, want 1", n)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("written bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAllEINTR(t *testing.T) {
	// Interruption is retried transparently and counts no progress.
	var got []byte
	calls := 0
	installFake(t, func(fd int, p []byte) (int, unix.Errno) {
		calls++
		if calls <= 2 {
			return 0, unix.EINTR
		}
		got = append(got, p...)
		return len(p), 0
	})
	data := []byte("interrupted")
	n, errno := WriteAll(3, data)
	if errno != 0 || n != len(data) {
		t.Fatalf("WriteAll: got (%d, %v), want (%d, 0)", n, errno, len(data))
	}
	if calls != 3 {
		t.Errorf("underlying calls: got %d, want 3", calls)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("written bytes: got %q, want %q", got, data)
	}
}

func TestWriteAllHardFailure(t *testing.T) {
	// Any error other than EINTR aborts immediately, with no retry.
	calls := 0
	installFake(t, func(fd int, p []byte) (int, unix.Errno) {
		calls++
		if calls == 1 {
			return 4, 0
		}
		return 0, unix.EBADF
	})
	n, errno := WriteAll(3, []byte("0123456789"))
	if n != -1 || errno != unix.EBADF {
		t.Fatalf("WriteAll: got (%d, %v), want (-1, EBADF)", n, errno)
	}
	if calls != 2 {
		t.Errorf("underlying calls after failure: got %d, want 2", calls)
	}
}

func TestWriteAllZeroProgress(t *testing.T) {
	installFake(t, func(fd int, p []byte) (int, unix.Errno) {
		return 0, 0
	})
	if n, errno := WriteAll(3, []byte("x")); n != -1 || errno != unix.EIO {
		t.Errorf("zero-progress write: got (%d, %v), want (-1, EIO)", n, errno)
	}
}

func TestWriteAllEmpty(t *testing.T) {
	installFake(t, func(fd int, p []byte) (int, unix.Errno) {
		t.Fatalf("empty WriteAll issued a syscall of %d bytes", len(p))
		return 0, 0
	})
	if n, errno := WriteAll(3, nil); n != 0 || errno != 0 {
		t.Errorf("WriteAll(nil): got (%d, %v), want (0, 0)", n, errno)
	}
}

func TestWriteAllPipe(t *testing.T) {
	// End to end against a real descriptor, with a payload large enough
	// to force partial writes through the pipe buffer.
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()

	data := bytes.Repeat([]byte("abcdefgh"), 32*1024)
	done := make(chan []byte)
	go func() {
		all, _ := io.ReadAll(r)
		done <- all
	}()

	n, errno := WriteAll(int(w.Fd()), data)
	w.Close()
	if errno != 0 || n < 0 {
		t.Fatalf("WriteAll over pipe: got (%d, %v)", n, errno)
	}
	if got := <-done; !bytes.Equal(got, data) {
		t.Errorf("pipe received %d bytes, want %d", len(got), len(data))
	}
}
