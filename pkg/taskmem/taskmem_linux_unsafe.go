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
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"crashsafe.dev/crashsafe/pkg/crasherr"
)

// vmRead invokes process_vm_readv(2) without entering the Go runtime's
// syscall bookkeeping. It is a variable so tests can exercise errno
// classification without a second process.
var vmRead = func(pid int, localIov, remoteIov *unix.Iovec) (uintptr, unix.Errno) {
	n, _, errno := unix.RawSyscall6(unix.SYS_PROCESS_VM_READV, uintptr(pid),
		uintptr(unsafe.Pointer(localIov)), 1,
		uintptr(unsafe.Pointer(remoteIov)), 1, 0)
	if errno != 0 {
		return 0, errno
	}
	return n, 0
}

// ReadAddr implements Reader.ReadAddr via process_vm_readv(2).
//
// Classification on Linux: EFAULT means unmapped, which includes ranges
// mapped PROT_NONE (the kernel does not distinguish them); EPERM and
// EACCES (ptrace access denial) mean protected; ESRCH means the task is
// gone and maps to crasherr.ErrNotFound. A short read is reported as
// UnmappedError at the first uncopied address, never as success.
func (t Task) ReadAddr(addr Addr, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	if _, ok := addr.AddLength(uint64(len(dst))); !ok {
		return UnmappedError{Addr: addr}
	}

	local := unix.Iovec{
		Base: &dst[0],
		Len:  uint64(len(dst)),
	}
	// The remote base is an address in the target's address space; it is
	// only ever interpreted by the kernel.
	remote := unix.Iovec{
		Base: (*byte)(unsafe.Pointer(uintptr(addr))),
		Len:  uint64(len(dst)),
	}
	n, errno := vmRead(t.pid, &local, &remote)
	runtime.KeepAlive(dst)

	switch errno {
	case 0:
	case unix.EFAULT:
		return UnmappedError{Addr: addr}
	case unix.EPERM, unix.EACCES:
		return ProtectionError{Addr: addr}
	case unix.ESRCH:
		return crasherr.ErrNotFound
	default:
		return crasherr.FromHost(errno)
	}
	if int(n) < len(dst) {
		return UnmappedError{Addr: addr + Addr(n)}
	}
	return nil
}
