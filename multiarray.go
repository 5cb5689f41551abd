// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "encoding/binary"

const (
	multiArrayFlag    = 0x80
	multiArrayPacked  = 0x8000 // index and length tables share one nibble-packed block
	multiArraySizeBit = 0x3FFF
	maxIntervalLog2   = 16
)

// decodeRecursive decodes a type 5 block: either several entropy blocks laid
// end to end, or a multi-array block.
func decodeRecursive(src, out []byte) error {
	if len(src) < 6 {
		return entropyErr("recursive block too small")
	}

	n := int(src[0] & 0x7F)
	if n < 2 {
		return entropyErr("recursive block with %d parts", n)
	}

	if src[0]&multiArrayFlag != 0 {
		used, written, err := decodeMultiArray(src, out)
		if err != nil {
			return err
		}

		if written != len(out) || used != len(src) {
			return entropyErr("multi-array decoded %d of %d bytes, used %d of %d", written, len(out), used, len(src))
		}

		return nil
	}

	p, o := 1, 0
	for range n {
		part, used, err := decodeBytes(src[p:], len(out)-o, out[o:], true)
		if err != nil {
			return err
		}

		o += len(part)
		p += used
	}

	if o != len(out) || p != len(src) {
		return entropyErr("recursive block decoded %d of %d bytes, used %d of %d", o, len(out), p, len(src))
	}

	return nil
}

// decodeMultiArray decodes a set of entropy arrays and then rebuilds the output
// by concatenating intervals taken from them in the order given by an index
// table. Interval lengths come from a forward and a backward MSB-first stream.
func decodeMultiArray(src, out []byte) (used, written int, err error) {
	if len(src) < 4 {
		return 0, 0, entropyErr("multi-array block too small")
	}

	if src[0]&multiArrayFlag == 0 {
		return 0, 0, entropyErr("multi-array flag missing")
	}

	numArrays := int(src[0] & 0x3F)
	p := 1

	if numArrays == 0 {
		part, n, err := decodeBytes(src[p:], len(out), out, true)
		if err != nil {
			return 0, 0, err
		}

		return p + n, len(part), nil
	}

	arrays := make([][]byte, numArrays)
	total := 0
	for i := range arrays {
		a, n, err := decodeBytes(src[p:], len(out)-total, nil, false)
		if err != nil {
			return 0, 0, err
		}

		arrays[i] = a
		total += len(a)
		p += n
	}

	if len(src)-p < 3 {
		return 0, 0, entropyErr("multi-array index header truncated")
	}

	q := int(binary.LittleEndian.Uint16(src[p:]))
	p += 2

	numIndexes, err := entropyBlockSize(src[p:], total)
	if err != nil {
		return 0, 0, err
	}

	numLens := numIndexes - 1
	if numLens < 1 {
		return 0, 0, entropyErr("multi-array with %d indexes", numIndexes)
	}

	var indexes, lenLog2 []byte
	if q&multiArrayPacked != 0 {
		packed, n, err := decodeBytes(src[p:], numIndexes, nil, false)
		if err != nil {
			return 0, 0, err
		}

		if len(packed) != numIndexes {
			return 0, 0, entropyErr("multi-array packed table size %d", len(packed))
		}

		p += n
		indexes = make([]byte, numIndexes)
		lenLog2 = make([]byte, numIndexes)
		for i, v := range packed {
			lenLog2[i] = v >> 4
			indexes[i] = v & 0xF
		}

		numLens = numIndexes
	} else {
		var n int
		indexes, n, err = decodeBytes(src[p:], numIndexes, nil, false)
		if err != nil {
			return 0, 0, err
		}

		if len(indexes) != numIndexes {
			return 0, 0, entropyErr("multi-array index table size %d", len(indexes))
		}

		p += n

		lenLog2, n, err = decodeBytes(src[p:], numIndexes, nil, false)
		if err != nil {
			return 0, 0, err
		}

		if len(lenLog2) != numLens {
			return 0, 0, entropyErr("multi-array length table size %d", len(lenLog2))
		}

		p += n
		for _, v := range lenLog2 {
			if v > maxIntervalLog2 {
				return 0, 0, entropyErr("multi-array interval width %d", v)
			}
		}
	}

	varBitsLen := q & multiArraySizeBit
	if varBitsLen > len(src)-p {
		return 0, 0, entropyErr("multi-array length bits truncated")
	}

	region := src[p : p+varBitsLen]
	fwd := newBitReader(region)
	bwd := newBackwardBitReader(region)
	lens := make([]int, numLens)
	for i := range lens {
		r := fwd
		if i&1 != 0 {
			r = bwd
		}

		nb := int(lenLog2[i])
		lens[i] = 1<<uint(nb) | int(r.readBits(nb))
	}

	if fwd.bytesConsumed()+bwd.bytesConsumed() > varBitsLen {
		return 0, 0, entropyErr("multi-array length bits overrun")
	}

	p += varBitsLen

	if indexes[numIndexes-1] != 0 {
		return 0, 0, entropyErr("multi-array index table not terminated")
	}

	indi, leni, o := 0, 0, 0
	for {
		if indi >= numIndexes {
			return 0, 0, entropyErr("multi-array index table overrun")
		}

		ai := int(indexes[indi])
		indi++
		if ai == 0 {
			break
		}

		if ai > numArrays {
			return 0, 0, entropyErr("multi-array index %d of %d arrays", ai, numArrays)
		}

		if leni >= numLens {
			return 0, 0, entropyErr("multi-array length table overrun")
		}

		l := lens[leni]
		leni++

		a := arrays[ai-1]
		if l > len(a) || l > len(out)-o {
			return 0, 0, entropyErr("multi-array interval of %d bytes out of bounds", l)
		}

		copy(out[o:], a[:l])
		arrays[ai-1] = a[l:]
		o += l
	}

	// In the packed form the terminator carries a length nibble too.
	if q&multiArrayPacked != 0 {
		leni++
	}

	if indi != numIndexes || leni != numLens {
		return 0, 0, entropyErr("multi-array tables not fully consumed")
	}

	for i, a := range arrays {
		if len(a) != 0 {
			return 0, 0, entropyErr("multi-array array %d has %d bytes left", i, len(a))
		}
	}

	return p, o, nil
}
