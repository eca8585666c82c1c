// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
)

// Writer accumulates the canonical wire encoding of consensus objects. It
// mirrors the Reader's method set so encode/decode pairs are easy to
// cross-check by eye, the same style msgcfilter.go uses for BtcEncode and
// BtcDecode.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with cap pre-reserved.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated bytes. The returned slice aliases the
// Writer's internal buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteU8 appends an unsigned 8-bit integer.
func (w *Writer) WriteU8(v uint8) {
	w.WriteByte(v)
}

// WriteU16LE appends a little-endian unsigned 16-bit integer.
func (w *Writer) WriteU16LE(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU32LE appends a little-endian unsigned 32-bit integer.
func (w *Writer) WriteU32LE(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64LE appends a little-endian unsigned 64-bit integer.
func (w *Writer) WriteU64LE(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteBytes appends raw bytes verbatim, with no length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteCompactSize appends the canonical minimal CompactSize encoding of n.
func (w *Writer) WriteCompactSize(n uint64) {
	switch {
	case n < 0xfd:
		w.WriteU8(uint8(n))
	case n <= 0xffff:
		w.WriteByte(0xfd)
		w.WriteU16LE(uint16(n))
	case n <= 0xffffffff:
		w.WriteByte(0xfe)
		w.WriteU32LE(uint32(n))
	default:
		w.WriteByte(0xff)
		w.WriteU64LE(n)
	}
}

// WriteBoundedBytes appends a CompactSize length prefix followed by b.
func (w *Writer) WriteBoundedBytes(b []byte) {
	w.WriteCompactSize(uint64(len(b)))
	w.WriteBytes(b)
}

// CompactSizeLen returns the number of bytes the canonical CompactSize
// encoding of n occupies, without allocating.
func CompactSizeLen(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
