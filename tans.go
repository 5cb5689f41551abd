// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import (
	"math/bits"
	"slices"
)

// tansTable holds symbol weights: singles have weight 1, others carry
// sym<<16 | weight.
type tansTable struct {
	singles  []uint8
	weighted []uint32
}

// tansEntry is one decoder state: emit symbol, then read bitsX bits and add w.
type tansEntry struct {
	symbol uint8
	bitsX  uint8
	w      uint16
}

const tansStates = 5

// decodeTans decodes a tANS block payload into out.
func decodeTans(src, out []byte) error {
	if len(src) < 8 || len(out) < tansStates {
		return entropyErr("tans block too small (%d -> %d)", len(src), len(out))
	}

	br := newBitReader(src)
	if br.readBit() != 0 {
		return entropyErr("tans reserved bit set")
	}

	lBits := int(br.readBits(2)) + 8
	table, err := readTansTable(br, lBits)
	if err != nil {
		return err
	}

	pos := br.bytesConsumed()
	if br.overrun() || pos >= len(src) {
		return entropyErr("tans table overruns block")
	}

	lut := buildTansLUT(table, lBits)
	data := src[pos:]
	fwd := newLSBReader(data)
	bwd := newBackwardLSBReader(data)

	var states [tansStates]uint32
	states[0] = fwd.readBits(lBits)
	states[1] = bwd.readBits(lBits)
	states[2] = fwd.readBits(lBits)
	states[3] = bwd.readBits(lBits)
	states[4] = fwd.readBits(lBits)

	// Each pass advances all five states on the forward stream, then all five
	// on the backward stream.
	n := len(out) - tansStates
	i := 0
	for i < n {
		r := fwd
		if (i/tansStates)&1 != 0 {
			r = bwd
		}

		s := &states[i%tansStates]
		if *s >= uint32(len(lut)) {
			return entropyErr("tans state %d out of range", *s)
		}

		e := lut[*s]
		out[i] = e.symbol
		*s = r.readBits(int(e.bitsX)) + uint32(e.w)
		i++
	}

	if fwd.bytesConsumed()+bwd.bytesConsumed() != len(data) {
		return entropyErr("tans streams do not meet")
	}

	for k, s := range states {
		if s >= 256 {
			return entropyErr("tans final state %d does not hold a byte", s)
		}

		out[n+k] = byte(s)
	}

	return nil
}

// readTansTable reads symbol weights summing to 1<<lBits.
func readTansTable(br *bitReader, lBits int) (*tansTable, error) {
	total := 1 << uint(lBits)
	t := &tansTable{}
	var seen [256]bool

	if br.readBit() != 0 {
		// Golomb-coded weights for up to 256 symbols, given as ranges.
		q := int(br.readBits(3))
		numSymbols := int(br.readBits(8)) + 1
		if numSymbols < 2 {
			return nil, entropyErr("tans table with %d symbols", numSymbols)
		}

		fluff := readFluff(br, numSymbols)
		lens := make([]uint8, numSymbols+fluff)
		if err := decodeGolombRiceLengths(br, lens); err != nil {
			return nil, err
		}

		ranges, err := convertToRanges(br, numSymbols, fluff, lens[numSymbols:])
		if err != nil {
			return nil, err
		}

		// Weights are zigzag deltas around a running average while they stay
		// close to it, plain values otherwise.
		sum := 0
		average := 6
		li := 0
		for _, r := range ranges {
			for sym := r.first; sym < r.first+r.count; sym++ {
				nextra := q + int(lens[li])
				li++
				if nextra > 15 {
					return nil, entropyErr("tans weight width %d", nextra)
				}

				v := int(br.readBits(nextra)) + 1<<uint(nextra) - 1<<uint(q)
				avgDiv4 := average >> 2
				limit := 2 * avgDiv4
				if v <= limit {
					v = avgDiv4 + int(int32(-(uint32(v)&1)^(uint32(v)>>1)))
				}

				limit = min(limit, v)
				weight := v + 1
				average += limit - avgDiv4
				if weight < 1 || weight > total {
					return nil, entropyErr("tans weight %d", weight)
				}

				sum += weight
				if weight == 1 {
					t.singles = append(t.singles, uint8(sym))
				} else {
					t.weighted = append(t.weighted, uint32(sym)<<16|uint32(weight))
				}
			}
		}

		if sum != total {
			return nil, entropyErr("tans weights sum to %d, want %d", sum, total)
		}
	} else {
		// Sparse list of delta-coded weights; the last symbol takes the rest.
		count := int(br.readBits(3)) + 1
		deltaBits := int(br.readBits(bits.Len(uint(lBits))))
		if deltaBits == 0 || deltaBits > lBits {
			return nil, entropyErr("tans delta width %d", deltaBits)
		}

		weight, sum := 0, 0
		for range count {
			sym := int(br.readBits(8))
			if seen[sym] {
				return nil, entropyErr("tans symbol %d repeated", sym)
			}

			weight += int(br.readBits(deltaBits))
			if weight == 0 {
				return nil, entropyErr("tans zero weight")
			}

			seen[sym] = true
			if weight == 1 {
				t.singles = append(t.singles, uint8(sym))
			} else {
				t.weighted = append(t.weighted, uint32(sym)<<16|uint32(weight))
			}

			sum += weight
		}

		sym := int(br.readBits(8))
		if seen[sym] {
			return nil, entropyErr("tans symbol %d repeated", sym)
		}

		rest := total - sum
		if rest < weight || rest <= 1 {
			return nil, entropyErr("tans weights leave %d states", rest)
		}

		t.weighted = append(t.weighted, uint32(sym)<<16|uint32(rest))
	}

	if br.overrun() {
		return nil, entropyErr("tans table overruns block")
	}

	slices.Sort(t.singles)
	slices.Sort(t.weighted)

	return t, nil
}

// buildTansLUT spreads the weighted symbols over four interleaved regions and
// puts weight-1 symbols at the end of the table.
func buildTansLUT(t *tansTable, lBits int) []tansEntry {
	total := 1 << uint(lBits)
	lut := make([]tansEntry, total)

	slotsLeft := total - len(t.singles)
	sa := slotsLeft >> 2
	var pointers [4]int
	pointers[0] = 0
	sb := sa + b2i(slotsLeft&3 > 0)
	pointers[1] = sb
	sb += sa + b2i(slotsLeft&3 > 1)
	pointers[2] = sb
	sb += sa + b2i(slotsLeft&3 > 2)
	pointers[3] = sb

	for i, sym := range t.singles {
		lut[slotsLeft+i] = tansEntry{symbol: sym, bitsX: uint8(lBits)}
	}

	weightsSum := 0
	for _, packed := range t.weighted {
		sym := uint8(packed >> 16)
		weight := int(packed & 0xFFFF)

		if weight > 4 {
			symBits := bits.Len(uint(weight)) - 1
			z := lBits - symBits
			x := (1 << uint(symBits+1)) - weight
			e := tansEntry{
				symbol: sym,
				bitsX:  uint8(z),
				w:      uint16((total - 1) & (weight << uint(z))),
			}

			for j := range 4 {
				y := (weight + ((weightsSum - j - 1) & 3)) >> 2
				for range y {
					if x == 0 {
						// Switch to the states that read one bit less.
						e.bitsX--
						e.w = 0
						x = weight
					}

					lut[pointers[j]] = e
					pointers[j]++
					e.w += uint16(1 << e.bitsX)
					x--
				}
			}
		} else {
			mask := ((1 << uint(weight)) - 1) << uint(weightsSum&3)
			mask |= mask >> 4
			ww := weight
			for n := weight; n > 0; n-- {
				j := bits.TrailingZeros(uint(mask))
				mask &= mask - 1
				symBits := bits.Len(uint(ww)) - 1
				z := lBits - symBits
				lut[pointers[j]] = tansEntry{
					symbol: sym,
					bitsX:  uint8(z),
					w:      uint16((total - 1) & (ww << uint(z))),
				}
				pointers[j]++
				ww++
			}
		}

		weightsSum += weight
	}

	return lut
}

func b2i(b bool) int {
	if b {
		return 1
	}

	return 0
}
