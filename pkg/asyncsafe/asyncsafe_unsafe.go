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

// Package asyncsafe provides intentionally naive memory and string
// primitives for use where the standard implementations' reentrancy is not
// guaranteed, e.g. on a thread that was interrupted mid-allocation or
// mid-lock-acquisition. Nothing here allocates, takes a lock, or calls into
// runtime machinery beyond raw loads and stores.
package asyncsafe

import (
	"unsafe"
)

// Memcpy copies exactly n bytes from src to dst, byte by byte, and returns
// src.
//
// The caller must guarantee that the regions do not overlap and that dst
// has capacity for n bytes; neither is checked. n == 0 touches no memory.
//
//go:nosplit
func Memcpy(dst, src unsafe.Pointer, n uintptr) unsafe.Pointer {
	for i := uintptr(0); i < n; i++ {
		*(*byte)(unsafe.Add(dst, i)) = *(*byte)(unsafe.Add(src, i))
	}
	return src
}

// Strncmp three-way compares the NUL-terminated byte sequences at s1 and
// s2, examining at most n bytes of each. It returns an integer less than,
// equal to, or greater than zero according to the unsigned value of the
// first differing byte.
//
// The bound is a hard window: exactly min(n, terminator offset + 1) bytes
// of each input are read. Sequences that agree over the full window,
// whether or not a terminator was seen, compare equal; n == 0 compares
// equal without dereferencing either pointer.
//
//go:nosplit
func Strncmp(s1, s2 *byte, n uintptr) int {
	p1 := unsafe.Pointer(s1)
	p2 := unsafe.Pointer(s2)
	for i := uintptr(0); i < n; i++ {
		c1 := *(*byte)(unsafe.Add(p1, i))
		c2 := *(*byte)(unsafe.Add(p2, i))
		if c1 != c2 {
			return int(c1) - int(c2)
		}
		if c1 == 0 {
			return 0
		}
	}
	return 0
}
