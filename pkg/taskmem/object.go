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

package taskmem

import (
	"encoding/binary"
	"os"
)

var pageSize = Addr(os.Getpagesize())

// Object is a local snapshot of a range of a task's address space. All
// accessors take task-relative addresses and are bounds-checked against
// the snapshot; an access outside it yields UnmappedError rather than a
// local fault.
//
// The snapshot lives in a caller-owned buffer, so mapping allocates
// nothing.
type Object struct {
	base Addr
	data []byte
}

// MapObject snapshots length bytes at addr in the target into buf and
// returns an Object over them. buf must have room for length bytes.
//
// With requireFull set, any fault fails the mapping. Otherwise an
// unmapped tail truncates the mapping at the last fully-readable page
// boundary before the fault; other faults still fail.
func MapObject(r Reader, buf []byte, addr Addr, length int, requireFull bool) (Object, error) {
	if length < 0 || length > len(buf) {
		return Object{}, UnmappedError{Addr: addr}
	}
	if _, ok := addr.AddLength(uint64(length)); !ok {
		return Object{}, UnmappedError{Addr: addr}
	}
	n := length
	for {
		err := r.ReadAddr(addr, buf[:n])
		if err == nil {
			return Object{base: addr, data: buf[:n]}, nil
		}
		if requireFull {
			return Object{}, err
		}
		fault, ok := err.(UnmappedError)
		if !ok {
			return Object{}, err
		}
		end := fault.Addr &^ (pageSize - 1)
		if end <= addr {
			return Object{}, err
		}
		truncated := int(end - addr)
		if truncated >= n {
			return Object{}, err
		}
		n = truncated
	}
}

// BaseAddr returns the task-relative address the snapshot starts at.
func (m *Object) BaseAddr() Addr {
	return m.base
}

// Length returns the number of bytes mapped. It may be less than the
// requested length when MapObject was allowed to truncate.
func (m *Object) Length() int {
	return len(m.data)
}

// Contains returns whether [addr, addr+length) lies entirely inside the
// snapshot.
func (m *Object) Contains(addr Addr, length int) bool {
	if length < 0 || addr < m.base {
		return false
	}
	// Bound the offset before involving length, so a query address far
	// above the base cannot wrap the sum.
	off := uint64(addr - m.base)
	if off > uint64(len(m.data)) {
		return false
	}
	return uint64(length) <= uint64(len(m.data))-off
}

// Slice returns the local bytes backing [addr, addr+length). The slice
// aliases the snapshot buffer and stays valid for the Object's lifetime.
func (m *Object) Slice(addr Addr, length int) ([]byte, error) {
	if !m.Contains(addr, length) {
		return nil, UnmappedError{Addr: addr}
	}
	off := int(addr - m.base)
	return m.data[off : off+length], nil
}

// Uint8 reads one byte at addr.
func (m *Object) Uint8(addr Addr) (uint8, error) {
	b, err := m.Slice(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a little-endian 16-bit value at addr.
func (m *Object) Uint16(addr Addr) (uint16, error) {
	b, err := m.Slice(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian 32-bit value at addr.
func (m *Object) Uint32(addr Addr) (uint32, error) {
	b, err := m.Slice(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 reads a little-endian 64-bit value at addr.
func (m *Object) Uint64(addr Addr) (uint64, error) {
	b, err := m.Slice(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// CString reads the NUL-terminated string starting at addr. The returned
// bytes exclude the terminator and alias the snapshot buffer. A string
// that runs off the end of the snapshot yields UnmappedError at the first
// byte past it.
func (m *Object) CString(addr Addr) ([]byte, error) {
	if !m.Contains(addr, 0) {
		return nil, UnmappedError{Addr: addr}
	}
	start := int(addr - m.base)
	for i := start; i < len(m.data); i++ {
		if m.data[i] == 0 {
			return m.data[start:i], nil
		}
	}
	return nil, UnmappedError{Addr: m.base + Addr(len(m.data))}
}
