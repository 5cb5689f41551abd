// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "fmt"

// Command byte layout.
const (
	cmdLitLenMask   = 0x03
	cmdLitLenLong   = 3 // literal length comes from the length stream
	cmdMatchShift   = 2
	cmdMatchMask    = 0x0F
	cmdMatchLong    = 15 // match length is 14 + next length stream value
	cmdOffsetShift  = 6
	cmdOffsetStream = 3 // offset comes from the offset stream
	minMatchLen     = 2
)

// decodeLzChunk decodes one LZ chunk of n bytes into dst[pos:pos+n]. dst[:pos]
// is the window of bytes already produced by this call.
func decodeLzChunk(src []byte, mode int, dst []byte, pos, n int, s *lzScratch) error {
	if mode != lzModeDelta && mode != lzModeRaw {
		return fmt.Errorf("%w: LZ mode %d", ErrUnsupportedMethod, mode)
	}

	if len(src) < minLzChunkInput {
		return entropyErr("LZ chunk of %d bytes", len(src))
	}

	start := pos
	if pos == 0 {
		if n < rawPrefixLen {
			return entropyErr("LZ chunk of %d bytes has no room for raw prefix", n)
		}

		copy(dst[:rawPrefixLen], src[:rawPrefixLen])
		src = src[rawPrefixLen:]
		start = rawPrefixLen
	}

	t, err := readLzTable(src, n, s)
	if err != nil {
		return err
	}

	return processLzRuns(t, mode, dst[:pos+n], start)
}

// processLzRuns executes the command stream of t, writing from dst[pos:] to
// the end of dst.
func processLzRuns(t *lzTable, mode int, dst []byte, pos int) error {
	end := len(dst)
	recent := [3]int{initialRecentOffset, initialRecentOffset, initialRecentOffset}
	lastDist := initialRecentOffset

	var li, oi, leni int
	nextLen := func() (int, error) {
		if leni >= len(t.lens) {
			return 0, entropyErr("length stream exhausted")
		}

		v := t.lens[leni]
		leni++
		return v, nil
	}

	for _, f := range t.cmds {
		litLen := int(f & cmdLitLenMask)
		if litLen == cmdLitLenLong {
			v, err := nextLen()
			if err != nil {
				return err
			}

			litLen = v
		}

		if litLen > len(t.lits)-li {
			return entropyErr("literal stream exhausted")
		}

		if err := emitLiterals(dst, pos, lastDist, t.lits[li:li+litLen], mode); err != nil {
			return err
		}

		pos += litLen
		li += litLen

		var dist int
		if idx := int(f >> cmdOffsetShift); idx == cmdOffsetStream {
			if oi >= len(t.offs) {
				return entropyErr("offset stream exhausted")
			}

			dist = -t.offs[oi]
			oi++
			recent = [3]int{dist, recent[0], recent[1]}
		} else {
			dist = recent[idx]
			copy(recent[1:idx+1], recent[:idx])
			recent[0] = dist
		}

		lastDist = dist

		matchLen := int(f>>cmdMatchShift) & cmdMatchMask
		if matchLen == cmdMatchLong {
			v, err := nextLen()
			if err != nil {
				return err
			}

			matchLen = 14 + v
		} else {
			matchLen += minMatchLen
		}

		if err := copyBackRef(dst, pos, dist, matchLen); err != nil {
			return err
		}

		pos += matchLen
	}

	if oi != len(t.offs) || leni != len(t.lens) {
		return entropyErr("LZ side streams not fully consumed (offsets %d/%d, lengths %d/%d)",
			oi, len(t.offs), leni, len(t.lens))
	}

	if end-pos != len(t.lits)-li {
		return entropyErr("%d trailing literals for %d remaining bytes", len(t.lits)-li, end-pos)
	}

	return emitLiterals(dst, pos, lastDist, t.lits[li:], mode)
}

func emitLiterals(dst []byte, pos, lastDist int, lits []byte, mode int) error {
	if len(lits) == 0 {
		return nil
	}

	if mode == lzModeRaw {
		if len(lits) > len(dst)-pos {
			return fmt.Errorf("%w: %d literals at %d, buffer holds %d", ErrOutputOverflow, len(lits), pos, len(dst))
		}

		copy(dst[pos:], lits)
		return nil
	}

	return addLiterals(dst, pos, lastDist, lits)
}
