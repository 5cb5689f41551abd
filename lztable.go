// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import (
	"fmt"
	"math/bits"
)

// lzTable is the decoded stream set of one LZ chunk.
type lzTable struct {
	lits []byte
	cmds []byte
	offs []int // negated distances
	lens []int
}

// readLzTable decodes the literal, command, offset and length streams of an
// LZ chunk producing dstSize bytes. src starts after any raw prefix.
func readLzTable(src []byte, dstSize int, s *lzScratch) (*lzTable, error) {
	if src[0]&0x80 != 0 {
		if src[0]&0xC0 != 0x80 {
			return nil, fmt.Errorf("%w: reserved LZ table flag 0x%02x", ErrMalformedHeader, src[0])
		}

		return nil, fmt.Errorf("%w: LZ excess-bytes streams", ErrUnsupportedMethod)
	}

	t := &lzTable{}
	p := 0

	lits, n, err := decodeBytes(src[p:], dstSize, grow(&s.lits, dstSize), false)
	if err != nil {
		return nil, fmt.Errorf("literal stream: %w", err)
	}

	t.lits = lits
	p += n

	cmds, n, err := decodeBytes(src[p:], dstSize, grow(&s.cmds, dstSize), false)
	if err != nil {
		return nil, fmt.Errorf("command stream: %w", err)
	}

	t.cmds = cmds
	p += n

	if len(src)-p < 3 {
		return nil, entropyErr("LZ offset stream truncated")
	}

	scale := 0
	var offsPacked, offsLow []byte
	if src[p]&0x80 != 0 {
		scale = int(src[p]) - 127
		p++

		offsPacked, n, err = decodeBytes(src[p:], len(cmds), grow(&s.offsPacked, len(cmds)), false)
		if err != nil {
			return nil, fmt.Errorf("offset stream: %w", err)
		}

		p += n
		if scale != 1 {
			offsLow, n, err = decodeBytes(src[p:], len(offsPacked), grow(&s.offsLow, len(offsPacked)), false)
			if err != nil {
				return nil, fmt.Errorf("offset low-bits stream: %w", err)
			}

			if len(offsLow) != len(offsPacked) {
				return nil, entropyErr("offset low-bits stream holds %d of %d values", len(offsLow), len(offsPacked))
			}

			p += n
		}
	} else {
		offsPacked, n, err = decodeBytes(src[p:], len(cmds), grow(&s.offsPacked, len(cmds)), false)
		if err != nil {
			return nil, fmt.Errorf("offset stream: %w", err)
		}

		p += n
	}

	lensPacked, n, err := decodeBytes(src[p:], dstSize>>2, grow(&s.lensPacked, dstSize>>2), false)
	if err != nil {
		return nil, fmt.Errorf("length stream: %w", err)
	}

	p += n

	t.offs = grow(&s.offs, len(offsPacked))
	t.lens = grow(&s.lens, len(lensPacked))
	if err := unpackOffsets(src[p:], offsPacked, offsLow, scale, lensPacked, t.offs, t.lens); err != nil {
		return nil, err
	}

	return t, nil
}

// unpackOffsets expands packed offsets and lengths using the extra bits held
// in src: a forward and a backward MSB-first stream used alternately.
func unpackOffsets(src, offsPacked, offsLow []byte, scale int, lensPacked []byte, offs, lens []int) error {
	fwd := newBitReader(src)
	bwd := newBackwardBitReader(src)

	w := bwd.peek32()
	if w < 0x2000 {
		return entropyErr("long length count too wide")
	}

	n := bits.LeadingZeros32(w)
	bwd.skip(n)
	numLong := int(bwd.readBits(n+1)) - 1
	if numLong > maxLongLengths {
		return entropyErr("%d long lengths", numLong)
	}

	readers := [2]*bitReader{fwd, bwd}

	if scale == 0 {
		for i, v := range offsPacked {
			offs[i] = -readDistance(readers[i&1], v)
		}
	} else {
		for i, v := range offsPacked {
			nb := int(v >> 3)
			if nb > 26 {
				return entropyErr("offset code 0x%02x", v)
			}

			o := (8+int(v&7))<<uint(nb) | int(readers[i&1].readBits(nb))
			offs[i] = 8 - o
		}

		if scale != 1 {
			for i := range offs {
				offs[i] = scale*offs[i] - int(offsLow[i])
			}
		}
	}

	var long [maxLongLengths]int
	for i := range numLong {
		v, err := readLength(readers[i&1])
		if err != nil {
			return err
		}

		long[i] = v
	}

	if fwd.bytesConsumed()+bwd.bytesConsumed() != len(src) {
		return entropyErr("offset bit streams used %d+%d of %d bytes",
			fwd.bytesConsumed(), bwd.bytesConsumed(), len(src))
	}

	li := 0
	for i, v := range lensPacked {
		n := int(v)
		if n == 255 {
			if li >= numLong {
				return entropyErr("long length stream exhausted")
			}

			n = long[li] + 255
			li++
		}

		lens[i] = n + 3
	}

	if li != numLong {
		return entropyErr("%d long lengths unused", numLong-li)
	}

	return nil
}

// readDistance reads the extra bits of a classic offset code.
func readDistance(r *bitReader, v byte) int {
	if v < 0xF0 {
		n := int(v>>4) + 4
		d := int(1<<uint(n)|r.readBits(n)) << 4
		return d + int(v&0xF) - 248
	}

	n := int(v-0xF0) + 4
	d := int(1<<uint(n)|r.readBits(n)) << 12
	return 0x7EFF00 + d + int(r.readBits(12))
}

// readLength reads a long length: n zero bits then an (n+7)-bit value.
func readLength(r *bitReader) (int, error) {
	n := bits.LeadingZeros32(r.peek32())
	if n > 12 {
		return 0, entropyErr("long length prefix of %d bits", n)
	}

	r.skip(n)
	return int(r.readBits(n+7)) - 64, nil
}
