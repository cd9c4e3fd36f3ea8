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

package taskmem

import (
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"

	"crashsafe.dev/crashsafe/pkg/crasherr"
	"crashsafe.dev/crashsafe/pkg/fd"
	"crashsafe.dev/crashsafe/pkg/log"
)

// ProcMem reads a task's memory through /proc/<pid>/mem. Unlike Task it
// holds a descriptor, so the kernel-side permission check happens once, at
// open time.
//
// OpenProcMem allocates and must not be called from a signal-handling
// context; open the reader before installing crash handlers. ReadAddr
// itself is pread(2) on an already-open descriptor.
type ProcMem struct {
	pid  int
	file *fd.FD
}

var _ Reader = (*ProcMem)(nil)

// OpenProcMem opens a procfs-backed reader for pid.
func OpenProcMem(pid int) (*ProcMem, error) {
	f, err := os.OpenFile(fmt.Sprintf("/proc/%d/mem", pid), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	file, err := fd.NewFromFile(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	log.Debugf("opened /proc/%d/mem for task memory reads", pid)
	return &ProcMem{pid: pid, file: file}, nil
}

// ReadAddr implements Reader.ReadAddr.
//
// procfs reports unreadable ranges as EIO; it cannot distinguish unmapped
// from access-restricted, so everything unreadable classifies as unmapped.
func (p *ProcMem) ReadAddr(addr Addr, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	if end, ok := addr.AddLength(uint64(len(dst))); !ok || uint64(end) > math.MaxInt64 {
		return UnmappedError{Addr: addr}
	}
	n, err := p.file.ReadAt(dst, int64(addr))
	if err == nil && n == len(dst) {
		return nil
	}
	switch err {
	case unix.EIO, unix.EFAULT, io.EOF, nil:
		return UnmappedError{Addr: addr + Addr(n)}
	case unix.EPERM, unix.EACCES:
		return ProtectionError{Addr: addr + Addr(n)}
	case unix.ESRCH:
		return crasherr.ErrNotFound
	}
	if errno, ok := err.(unix.Errno); ok {
		return crasherr.FromHost(errno)
	}
	return crasherr.ErrUnknown
}

// Close releases the descriptor.
func (p *ProcMem) Close() error {
	return p.file.Close()
}
