// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import (
	"encoding/binary"
	"math/bits"
)

const (
	huffMaxCodeLen = 11
	huffLUTBits    = 11
	huffLUTSize    = 1 << huffLUTBits
)

// huffTable collects symbols per code length in canonical order.
type huffTable struct {
	byLen   [huffMaxCodeLen + 1][]byte
	symbols int
	single  byte // the only symbol when symbols == 1
}

func (t *huffTable) add(codeLen int, sym byte) {
	t.byLen[codeLen] = append(t.byLen[codeLen], sym)
	t.symbols++
	t.single = sym
}

// huffLUT maps the next 11 stream bits (LSB-first) to a symbol and its code length.
type huffLUT struct {
	length [huffLUTSize]uint8
	symbol [huffLUTSize]uint8
}

// build fills the LUT from canonical code lengths. The code must be complete:
// a prefix set that does not cover all 2^11 table entries is rejected.
func (l *huffLUT) build(t *huffTable) error {
	var (
		fwdLen [huffLUTSize]uint8
		fwdSym [huffLUTSize]uint8
		pos    int
	)

	for n := 1; n <= huffMaxCodeLen; n++ {
		span := 1 << (huffLUTBits - n)
		for _, sym := range t.byLen[n] {
			if pos+span > huffLUTSize {
				return entropyErr("huffman code lengths oversubscribed")
			}

			for i := pos; i < pos+span; i++ {
				fwdLen[i] = uint8(n)
				fwdSym[i] = sym
			}

			pos += span
		}
	}

	if pos != huffLUTSize {
		return entropyErr("huffman code lengths incomplete (%d of %d)", pos, huffLUTSize)
	}

	// Codes are assigned MSB-first but streams are read LSB-first.
	for i := range huffLUTSize {
		j := bits.Reverse16(uint16(i)) >> (16 - huffLUTBits)
		l.length[i] = fwdLen[j]
		l.symbol[i] = fwdSym[j]
	}

	return nil
}

// readCodeLengths reads either table form from the start of a Huffman block.
func readCodeLengths(br *bitReader, t *huffTable) error {
	if br.readBit() == 0 {
		return readCodeLengthsOld(br, t)
	}

	if br.readBit() == 0 {
		return readCodeLengthsNew(br, t)
	}

	return entropyErr("unknown huffman table form")
}

func readCodeLengthsOld(br *bitReader, t *huffTable) error {
	if br.readBit() == 0 {
		// Sparse list of (symbol, length) pairs.
		count := int(br.readBits(8))
		switch count {
		case 0:
			return entropyErr("empty huffman table")
		case 1:
			t.add(1, byte(br.readBits(8)))
			return nil
		}

		lenBits := int(br.readBits(3))
		if lenBits > 4 {
			return entropyErr("huffman length width %d", lenBits)
		}

		for range count {
			sym := byte(br.readBits(8))
			codeLen := int(br.readBits(lenBits)) + 1
			if codeLen > huffMaxCodeLen {
				return entropyErr("huffman code length %d", codeLen)
			}

			t.add(codeLen, sym)
		}

		return nil
	}

	// Dense form: alternating runs of unused symbols and gamma-coded lengths
	// predicted from a running average.
	forcedBits := int(br.readBits(2))
	threshold := uint32(1) << (31 - (20 >> uint(forcedBits)))
	avgBitsX4 := 32
	sym := 0
	skipZeros := br.readBit() == 1

	for sym != 256 {
		if !skipZeros {
			w := br.peek32()
			if w&0xFF000000 == 0 {
				return entropyErr("huffman zero run too long")
			}

			lz := bits.LeadingZeros32(w)
			sym += int(br.readBits(2*(lz+1))) - 2 + 1
			if sym >= 256 {
				break
			}
		}

		skipZeros = false

		w := br.peek32()
		if w&0xFF000000 == 0 {
			return entropyErr("huffman symbol run too long")
		}

		lz := bits.LeadingZeros32(w)
		run := int(br.readBits(2*(lz+1))) - 1
		if sym+run > 256 {
			return entropyErr("huffman symbol run past 256")
		}

		for ; run > 0; run-- {
			w := br.peek32()
			if w < threshold {
				return entropyErr("huffman length code too long")
			}

			lz := bits.LeadingZeros32(w)
			v := int(br.readBits(lz+forcedBits+1)) + ((lz - 1) << uint(forcedBits))
			codeLen := (-(v & 1) ^ (v >> 1)) + (avgBitsX4+2)>>2
			if codeLen < 1 || codeLen > huffMaxCodeLen {
				return entropyErr("huffman code length %d", codeLen)
			}

			avgBitsX4 = codeLen + (3*avgBitsX4+2)>>2
			t.add(codeLen, byte(sym))
			sym++
		}
	}

	if sym != 256 || t.symbols < 2 {
		return entropyErr("huffman table covers %d symbols", sym)
	}

	return nil
}

func readCodeLengthsNew(br *bitReader, t *huffTable) error {
	forcedBits := int(br.readBits(2))
	numSymbols := int(br.readBits(8)) + 1
	fluff := readFluff(br, numSymbols)

	lens := make([]uint8, numSymbols+fluff)
	if err := decodeGolombRiceLengths(br, lens); err != nil {
		return err
	}

	if err := decodeGolombRiceBits(br, lens[:numSymbols], forcedBits); err != nil {
		return err
	}

	codeLens := make([]int, numSymbols)
	running := uint32(0x1e)
	for i := range numSymbols {
		v := uint32(lens[i])
		v = -(v & 1) ^ (v >> 1)
		codeLen := int(uint8(v + running>>2 + 1))
		if codeLen < 1 || codeLen > huffMaxCodeLen {
			return entropyErr("huffman code length %d", codeLen)
		}

		codeLens[i] = codeLen
		running += v
	}

	ranges, err := convertToRanges(br, numSymbols, fluff, lens[numSymbols:])
	if err != nil {
		return err
	}

	k := 0
	for _, r := range ranges {
		for sym := r.first; sym < r.first+r.count; sym++ {
			t.add(codeLens[k], byte(sym))
			k++
		}
	}

	return nil
}

// decodeHuffman decodes a Huffman block payload into out. The split form
// decodes each half of the output with its own set of three streams.
func decodeHuffman(src, out []byte, split bool) error {
	br := newBitReader(src)

	var t huffTable
	if err := readCodeLengths(br, &t); err != nil {
		return err
	}

	pos := br.bytesConsumed()
	if br.overrun() || pos > len(src) {
		return entropyErr("huffman table overruns block")
	}

	if t.symbols == 1 {
		if pos != len(src) {
			return entropyErr("single-symbol huffman block has %d trailing bytes", len(src)-pos)
		}

		for i := range out {
			out[i] = t.single
		}

		return nil
	}

	var lut huffLUT
	if err := lut.build(&t); err != nil {
		return err
	}

	if !split {
		if len(src)-pos < 3 {
			return entropyErr("huffman block truncated")
		}

		mid := int(binary.LittleEndian.Uint16(src[pos:]))
		return decodeHuffmanStreams(&lut, out, src[pos+2:], mid)
	}

	if len(src)-pos < 6 {
		return entropyErr("huffman block truncated")
	}

	half := (len(out) + 1) >> 1
	splitMid := int(src[pos]) | int(src[pos+1])<<8 | int(src[pos+2])<<16
	p := pos + 3
	if splitMid > len(src)-p {
		return entropyErr("huffman split %d past block end", splitMid)
	}

	mid := p + splitMid
	splitLeft := int(binary.LittleEndian.Uint16(src[p:]))
	p += 2
	if mid-p < splitLeft+2 || len(src)-mid < 3 {
		return entropyErr("huffman left half truncated")
	}

	splitRight := int(binary.LittleEndian.Uint16(src[mid:]))
	if len(src)-(mid+2) < splitRight+2 {
		return entropyErr("huffman right half truncated")
	}

	if err := decodeHuffmanStreams(&lut, out[:half], src[p:mid], splitLeft); err != nil {
		return err
	}

	return decodeHuffmanStreams(&lut, out[half:], src[mid+2:], splitRight)
}

// decodeHuffmanStreams decodes out from three interleaved streams: the first
// runs forward over data[:split], the second backward from the end of data and
// the third forward from split. Symbols rotate between the streams.
func decodeHuffmanStreams(lut *huffLUT, out, data []byte, split int) error {
	if split > len(data) {
		return entropyErr("huffman stream split %d past %d bytes", split, len(data))
	}

	streams := [3]*lsbReader{
		newLSBReader(data[:split]),
		newBackwardLSBReader(data[split:]),
		newLSBReader(data[split:]),
	}

	for i := range out {
		r := streams[i%3]
		k := r.peek32() & (huffLUTSize - 1)
		out[i] = lut.symbol[k]
		r.skip(int(lut.length[k]))
	}

	if streams[0].bytesConsumed() != split {
		return entropyErr("huffman first stream used %d of %d bytes", streams[0].bytesConsumed(), split)
	}

	if streams[1].bytesConsumed()+streams[2].bytesConsumed() != len(data)-split {
		return entropyErr("huffman middle streams do not meet")
	}

	return nil
}
