// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

// Kraken mixes two bit orders: table headers and LZ side streams are read
// most-significant bit first, Huffman and tANS payloads least-significant bit
// first. Both exist in a forward flavour and a backward flavour that walks the
// bytes from the end of the range towards its start.
//
// Reads past the end of a range yield zero bits. Decoders peek up to 32 bits
// ahead, so padding is normal near the end; whether a stream was consumed
// exactly is checked by the caller through bytesConsumed.

// byteStream is a byte range read either front to back or back to front.
type byteStream struct {
	data     []byte
	backward bool
}

// at returns the i-th byte in stream order, or 0 past the end of the range.
func (s *byteStream) at(i int) uint64 {
	if i < 0 || i >= len(s.data) {
		return 0
	}

	if s.backward {
		return uint64(s.data[len(s.data)-1-i])
	}

	return uint64(s.data[i])
}

// bitReader reads bits MSB-first.
type bitReader struct {
	byteStream
	pos int // bits consumed
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{byteStream: byteStream{data: data}}
}

func newBackwardBitReader(data []byte) *bitReader {
	return &bitReader{byteStream: byteStream{data: data, backward: true}}
}

// peek32 returns the next 32 bits without consuming them, first bit in bit 31.
func (r *bitReader) peek32() uint32 {
	idx := r.pos >> 3
	v := r.at(idx)<<32 | r.at(idx+1)<<24 | r.at(idx+2)<<16 | r.at(idx+3)<<8 | r.at(idx+4)

	return uint32(v >> (8 - uint(r.pos&7)))
}

// readBits consumes n bits (0..32) and returns them as an unsigned value.
func (r *bitReader) readBits(n int) uint32 {
	if n == 0 {
		return 0
	}

	v := r.peek32() >> (32 - uint(n))
	r.pos += n

	return v
}

func (r *bitReader) readBit() uint32 {
	return r.readBits(1)
}

func (r *bitReader) skip(n int) {
	r.pos += n
}

// bytesConsumed returns how many bytes were touched, counting a partially read byte.
func (r *bitReader) bytesConsumed() int {
	return (r.pos + 7) >> 3
}

// overrun reports whether more bits were consumed than the range holds.
func (r *bitReader) overrun() bool {
	return r.pos > len(r.data)*8
}

// lsbReader reads bits LSB-first.
type lsbReader struct {
	byteStream
	pos int // bits consumed
}

func newLSBReader(data []byte) *lsbReader {
	return &lsbReader{byteStream: byteStream{data: data}}
}

func newBackwardLSBReader(data []byte) *lsbReader {
	return &lsbReader{byteStream: byteStream{data: data, backward: true}}
}

// peek32 returns the next 32 bits without consuming them, first bit in bit 0.
func (r *lsbReader) peek32() uint32 {
	idx := r.pos >> 3
	v := r.at(idx) | r.at(idx+1)<<8 | r.at(idx+2)<<16 | r.at(idx+3)<<24 | r.at(idx+4)<<32

	return uint32(v >> uint(r.pos&7))
}

// readBits consumes n bits (0..32).
func (r *lsbReader) readBits(n int) uint32 {
	if n == 0 {
		return 0
	}

	v := r.peek32()
	r.pos += n
	if n == 32 {
		return v
	}

	return v & (1<<uint(n) - 1)
}

func (r *lsbReader) skip(n int) {
	r.pos += n
}

func (r *lsbReader) bytesConsumed() int {
	return (r.pos + 7) >> 3
}
