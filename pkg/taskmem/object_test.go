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
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sliceReader is a Reader over an in-memory "address space": data mapped
// at base, everything else unmapped.
type sliceReader struct {
	base Addr
	data []byte
}

func (r sliceReader) ReadAddr(addr Addr, dst []byte) error {
	end, ok := addr.AddLength(uint64(len(dst)))
	if !ok || addr < r.base {
		return UnmappedError{Addr: addr}
	}
	limit := r.base + Addr(len(r.data))
	if addr > limit {
		return UnmappedError{Addr: addr}
	}
	if end > limit {
		n := copy(dst, r.data[addr-r.base:])
		return UnmappedError{Addr: addr + Addr(n)}
	}
	copy(dst, r.data[addr-r.base:end-r.base])
	return nil
}

func TestMapObjectFull(t *testing.T) {
	src := []byte("mapped region contents")
	r := sliceReader{base: 0x10000, data: src}
	buf := make([]byte, len(src))

	obj, err := MapObject(r, buf, 0x10000, len(src), true)
	if err != nil {
		t.Fatalf("MapObject failed: %v", err)
	}
	if obj.BaseAddr() != 0x10000 || obj.Length() != len(src) {
		t.Errorf("mapping: base %#x length %d", uintptr(obj.BaseAddr()), obj.Length())
	}
	got, err := obj.Slice(0x10000, len(src))
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestMapObjectTruncates(t *testing.T) {
	// Two pages requested with only one and a half mapped: with
	// requireFull the fault propagates; without it the mapping shrinks to
	// a whole number of pages.
	page := os.Getpagesize()
	r := sliceReader{base: Addr(0x20000), data: bytes.Repeat([]byte{'m'}, page+page/2)}

	buf := make([]byte, 2*page)
	if _, err := MapObject(r, buf, 0x20000, 2*page, true); err == nil {
		t.Fatalf("requireFull mapping across hole succeeded")
	}

	obj, err := MapObject(r, buf, 0x20000, 2*page, false)
	if err != nil {
		t.Fatalf("truncating MapObject failed: %v", err)
	}
	if obj.Length() != page {
		t.Errorf("truncated length: got %d, want %d", obj.Length(), page)
	}
}

func TestMapObjectNothingReadable(t *testing.T) {
	r := sliceReader{base: 0x30000, data: []byte("x")}
	buf := make([]byte, 16)
	if _, err := MapObject(r, buf, 0x40000, 16, false); err == nil {
		t.Fatalf("MapObject of unmapped range succeeded")
	}
}

func TestMapObjectBufferTooSmall(t *testing.T) {
	r := sliceReader{base: 0x10000, data: make([]byte, 64)}
	if _, err := MapObject(r, make([]byte, 8), 0x10000, 64, true); err == nil {
		t.Fatalf("MapObject into undersized buffer succeeded")
	}
}

func TestObjectAccessors(t *testing.T) {
	data := make([]byte, 32)
	binary.LittleEndian.PutUint16(data[0:], 0xbeef)
	binary.LittleEndian.PutUint32(data[2:], 0xdeadbeef)
	binary.LittleEndian.PutUint64(data[6:], 0x0123456789abcdef)
	data[14] = 0x7f
	copy(data[15:], "symbol_name\x00")

	const base = Addr(0x5000)
	r := sliceReader{base: base, data: data}
	buf := make([]byte, len(data))
	obj, err := MapObject(r, buf, base, len(data), true)
	if err != nil {
		t.Fatalf("MapObject failed: %v", err)
	}

	if v, err := obj.Uint16(base); err != nil || v != 0xbeef {
		t.Errorf("Uint16: got (%#x, %v)", v, err)
	}
	if v, err := obj.Uint32(base + 2); err != nil || v != 0xdeadbeef {
		t.Errorf("Uint32: got (%#x, %v)", v, err)
	}
	if v, err := obj.Uint64(base + 6); err != nil || v != 0x0123456789abcdef {
		t.Errorf("Uint64: got (%#x, %v)", v, err)
	}
	if v, err := obj.Uint8(base + 14); err != nil || v != 0x7f {
		t.Errorf("Uint8: got (%#x, %v)", v, err)
	}
	if s, err := obj.CString(base + 15); err != nil || string(s) != "symbol_name" {
		t.Errorf("CString: got (%q, %v)", s, err)
	}

	// Bounds: one byte past the end is unmapped, not a local fault.
	if _, err := obj.Uint8(base + Addr(len(data))); err == nil {
		t.Errorf("Uint8 past end succeeded")
	}
	if _, err := obj.Uint64(base + Addr(len(data)) - 4); err == nil {
		t.Errorf("straddling Uint64 succeeded")
	}
	if obj.Contains(base-1, 1) {
		t.Errorf("Contains below base: got true")
	}
	if !obj.Contains(base, len(data)) {
		t.Errorf("Contains of whole mapping: got false")
	}
}

func TestObjectHugeAddress(t *testing.T) {
	// A query address within length of the address-space top, against a
	// low mapping base, must fail cleanly rather than wrap the bounds
	// arithmetic and fault locally.
	r := sliceReader{base: 0, data: make([]byte, 16)}
	obj, err := MapObject(r, make([]byte, 16), 0, 16, true)
	if err != nil {
		t.Fatalf("MapObject failed: %v", err)
	}
	huge := Addr(^uintptr(0))
	if obj.Contains(huge, 10) {
		t.Errorf("Contains(%#x, 10): got true", uintptr(huge))
	}
	if _, err := obj.Slice(huge, 10); err == nil {
		t.Errorf("Slice(%#x, 10) succeeded", uintptr(huge))
	}
	if _, err := obj.Uint64(huge-3); err == nil {
		t.Errorf("Uint64(%#x) succeeded", uintptr(huge-3))
	}
	if _, err := obj.CString(huge); err == nil {
		t.Errorf("CString(%#x) succeeded", uintptr(huge))
	}
}

func TestCStringUnterminated(t *testing.T) {
	r := sliceReader{base: 0x100, data: []byte("no terminator")}
	buf := make([]byte, 13)
	obj, err := MapObject(r, buf, 0x100, 13, true)
	if err != nil {
		t.Fatalf("MapObject failed: %v", err)
	}
	if _, err := obj.CString(0x100); err == nil {
		t.Errorf("CString without terminator succeeded")
	}
}
