// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "math/bits"

// symbolRange is a run of consecutive symbols sharing the table in order.
type symbolRange struct {
	first int
	count int
}

// readFluff reads the number of range boundary values that follow the code
// lengths of a "new" Huffman table.
func readFluff(br *bitReader, numSymbols int) int {
	if numSymbols == 256 {
		return 0
	}

	x := min(257-numSymbols, numSymbols) * 2
	y := bits.Len32(uint32(x - 1))
	v := br.peek32() >> (32 - uint(y))
	z := uint32(1)<<uint(y) - uint32(x)
	if v>>1 >= z {
		br.skip(y)
		return int(v - z)
	}

	br.skip(y - 1)
	return int(v >> 1)
}

// decodeGolombRiceLengths reads one unary-coded value per element of dst.
// Unlike the rest of the table, the unary run must end inside the block.
func decodeGolombRiceLengths(br *bitReader, dst []uint8) error {
	limit := len(br.data) * 8
	for i := range dst {
		count := 0
		for {
			if br.pos >= limit {
				return entropyErr("golomb-rice run past end of block")
			}

			w := br.peek32()
			if w == 0 {
				br.skip(32)
				count += 32
				continue
			}

			lz := bits.LeadingZeros32(w)
			br.skip(lz + 1)
			count += lz
			break
		}

		dst[i] = uint8(count)
	}

	return nil
}

// decodeGolombRiceBits appends k low bits to every value in dst.
func decodeGolombRiceBits(br *bitReader, dst []uint8, k int) error {
	if k == 0 {
		return nil
	}

	if br.pos+len(dst)*k > len(br.data)*8 {
		return entropyErr("golomb-rice low bits past end of block")
	}

	for i := range dst {
		dst[i] = dst[i]<<uint(k) | uint8(br.readBits(k))
	}

	return nil
}

// convertToRanges turns the fluff values into the symbol ranges the code
// lengths are assigned to. symlen holds the widths of each boundary value.
func convertToRanges(br *bitReader, numSymbols, fluff int, symlen []uint8) ([]symbolRange, error) {
	numRanges := fluff >> 1
	sym := 0
	if fluff&1 != 0 {
		v := int(symlen[0])
		symlen = symlen[1:]
		if v >= 8 {
			return nil, entropyErr("huffman range start width %d", v)
		}

		sym = int(br.readBits(v+1)) + 1<<uint(v+1) - 1
	}

	ranges := make([]symbolRange, 0, numRanges+1)
	used := 0
	for range numRanges {
		v := int(symlen[0])
		if v >= 9 {
			return nil, entropyErr("huffman range length width %d", v)
		}

		num := int(br.readBits(v)) + 1<<uint(v)

		v = int(symlen[1])
		if v >= 8 {
			return nil, entropyErr("huffman range gap width %d", v)
		}

		space := int(br.readBits(v+1)) + 1<<uint(v+1) - 1
		ranges = append(ranges, symbolRange{first: sym, count: num})
		used += num
		sym += num + space
		symlen = symlen[2:]
	}

	if sym >= 256 || used >= numSymbols || sym+numSymbols-used > 256 {
		return nil, entropyErr("huffman symbol ranges out of bounds")
	}

	return append(ranges, symbolRange{first: sym, count: numSymbols - used}), nil
}
