package kraken

import (
	"bytes"
	"math/bits"
	"slices"
	"testing"

	"github.com/icza/bitio"
)

// Stream builder used by the tests. It emits the subset of the format needed
// to exercise the decoder: raw, memset and memcpy blocks, stored and
// entropy-only chunks, and LZ chunks whose sub-streams are stored blocks.

// msbWriter collects an MSB-first bit stream.
type msbWriter struct {
	buf bytes.Buffer
	w   *bitio.Writer
}

func newMSBWriter() *msbWriter {
	m := &msbWriter{}
	m.w = bitio.NewWriter(&m.buf)
	return m
}

func (m *msbWriter) write(tb testing.TB, v uint64, n int) {
	tb.Helper()

	if n == 0 {
		return
	}

	if err := m.w.WriteBits(v, uint8(n)); err != nil {
		tb.Fatalf("WriteBits: %v", err)
	}
}

func (m *msbWriter) bytes(tb testing.TB) []byte {
	tb.Helper()

	if err := m.w.Close(); err != nil {
		tb.Fatalf("bit writer Close: %v", err)
	}

	return m.buf.Bytes()
}

// lsbWriter collects an LSB-first bit stream.
type lsbWriter struct {
	out   []byte
	nbits int
}

func (l *lsbWriter) write(v uint32, n int) {
	for i := range n {
		if l.nbits%8 == 0 {
			l.out = append(l.out, 0)
		}

		if v>>uint(i)&1 != 0 {
			l.out[len(l.out)-1] |= 1 << uint(l.nbits%8)
		}

		l.nbits++
	}
}

func reversed(b []byte) []byte {
	out := slices.Clone(b)
	slices.Reverse(out)
	return out
}

// storedEntropy is a stored entropy block with the 3-byte header.
func storedEntropy(data []byte) []byte {
	n := len(data)
	return append([]byte{byte(n >> 16), byte(n >> 8), byte(n)}, data...)
}

// storedEntropyShort is a stored entropy block with the 2-byte header (n < 4096).
func storedEntropyShort(data []byte) []byte {
	n := len(data)
	return append([]byte{0x80 | byte(n>>8), byte(n)}, data...)
}

// entropyShort wraps a payload in a 3-byte header of the given type.
func entropyShort(typ int, payload []byte, dstSize int) []byte {
	v := 0x800000 | typ<<20 | (dstSize-len(payload)-1)<<10 | len(payload)
	return append([]byte{byte(v >> 16), byte(v >> 8), byte(v)}, payload...)
}

// entropyLong wraps a payload in a 5-byte header of the given type.
func entropyLong(typ int, payload []byte, dstSize int) []byte {
	d := dstSize - 1
	v := uint32(d&0x3FFF)<<18 | uint32(len(payload))
	hdr := []byte{byte(typ<<4 | (d>>14)&0xF), byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return append(hdr, payload...)
}

const (
	testBlockHeader   = 0x0C
	testDecoderKraken = byte(DecoderKraken)
)

func rawBlock(data []byte) []byte {
	return append([]byte{testBlockHeader | blockUncompressed, testDecoderKraken}, data...)
}

func memsetBlock(fill byte) []byte {
	return []byte{testBlockHeader, testDecoderKraken, 0x07, 0xFF, 0xFF, fill}
}

// quantumBlock is a compressed block whose quantum payload is the concatenation of parts.
func quantumBlock(parts ...[]byte) []byte {
	payload := bytes.Join(parts, nil)
	n := len(payload) - 1
	return append([]byte{testBlockHeader, testDecoderKraken, byte(n >> 16), byte(n >> 8), byte(n)}, payload...)
}

func storedChunk(data []byte) []byte {
	v := chunkCompressedFlag | len(data)
	return append([]byte{byte(v >> 16), byte(v >> 8), byte(v)}, data...)
}

func lzChunk(mode int, encoded []byte) []byte {
	v := chunkCompressedFlag | mode<<chunkModeShift | len(encoded)
	return append([]byte{byte(v >> 16), byte(v >> 8), byte(v)}, encoded...)
}

// lzToken is one command: a literal run followed by a match.
type lzToken struct {
	lits  int
	match int
	dist  int
}

// expandLZ runs tokens over a raw prefix with raw literals and returns the output.
func expandLZ(prefix, lits []byte, tokens []lzToken) []byte {
	out := slices.Clone(prefix)
	for _, tok := range tokens {
		out = append(out, lits[:tok.lits]...)
		lits = lits[tok.lits:]
		for range tok.match {
			out = append(out, out[len(out)-tok.dist])
		}
	}

	return append(out, lits...)
}

// lzEncoder turns tokens over a known plaintext into an LZ chunk payload.
type lzEncoder struct {
	mode  int
	scale int // 0 = classic offsets, otherwise scaled offsets with this factor
}

// encode produces the chunk payload for plain[start:end], where plain[:start]
// is output produced by earlier chunks. Trailing bytes after the last token
// become literals.
func (e lzEncoder) encode(tb testing.TB, plain []byte, start, end int, tokens []lzToken) []byte {
	tb.Helper()

	var (
		out        []byte
		lits       []byte
		cmds       []byte
		offsPacked []byte
		offsLow    []byte
		lensPacked []byte
		longLens   []int
		offDists   []int
	)

	pos := start
	if start == 0 {
		out = append(out, plain[:rawPrefixLen]...)
		pos = rawPrefixLen
	}

	recent := []int{initialRecentOffset, initialRecentOffset, initialRecentOffset}
	lastDist := initialRecentOffset

	addLen := func(v int) {
		if v >= 255 {
			lensPacked = append(lensPacked, 255)
			longLens = append(longLens, v-255)
			return
		}

		lensPacked = append(lensPacked, byte(v))
	}

	emitLits := func(n int) {
		for i := range n {
			b := plain[pos+i]
			if e.mode == lzModeDelta {
				b -= plain[pos+i-lastDist]
			}

			lits = append(lits, b)
		}

		pos += n
	}

	for _, tok := range tokens {
		var cmd byte
		if tok.lits >= 3 {
			cmd = cmdLitLenLong
			addLen(tok.lits - 3)
		} else {
			cmd = byte(tok.lits)
		}

		emitLits(tok.lits)

		idx := slices.Index(recent, tok.dist)
		if idx < 0 {
			idx = cmdOffsetStream
			offDists = append(offDists, tok.dist)
			recent = []int{tok.dist, recent[0], recent[1]}
		} else {
			recent = append([]int{tok.dist}, slices.Delete(slices.Clone(recent), idx, idx+1)...)
		}

		cmd |= byte(idx) << cmdOffsetShift
		lastDist = tok.dist

		if tok.match >= 17 {
			cmd |= cmdMatchLong << cmdMatchShift
			addLen(tok.match - 17)
		} else {
			cmd |= byte(tok.match-minMatchLen) << cmdMatchShift
		}

		cmds = append(cmds, cmd)

		for i := range tok.match {
			if plain[pos+i] != plain[pos+i-tok.dist] {
				tb.Fatalf("token %+v does not match plaintext at %d", tok, pos)
			}
		}

		pos += tok.match
	}

	emitLits(end - pos)

	// Side bit streams: long length count first on the backward stream, then
	// offset extra bits and long lengths alternating forward/backward.
	fwd, bwd := newMSBWriter(), newMSBWriter()
	writers := [2]*msbWriter{fwd, bwd}

	c := len(longLens) + 1
	k := bits.Len(uint(c))
	bwd.write(tb, 0, k-1)
	bwd.write(tb, uint64(c), k)

	for i, d := range offDists {
		w := writers[i&1]
		if e.scale == 0 {
			v, n, extra := classicOffsetCode(tb, d)
			offsPacked = append(offsPacked, v)
			w.write(tb, uint64(extra), n)
			if v >= 0xF0 {
				tb.Fatalf("distance %d needs the extended classic form", d)
			}

			continue
		}

		o := d/e.scale + 8
		offsLow = append(offsLow, byte(d%e.scale))
		nb := bits.Len(uint(o)) - 4
		offsPacked = append(offsPacked, byte(nb<<3|(o>>uint(nb)-8)))
		w.write(tb, uint64(o&(1<<uint(nb)-1)), nb)
	}

	for i, v := range longLens {
		w := writers[i&1]
		r := v + 64
		n := bits.Len(uint(r)) - 7
		w.write(tb, 0, n)
		w.write(tb, uint64(r), n+7)
	}

	out = append(out, storedEntropy(lits)...)
	out = append(out, storedEntropy(cmds)...)
	if e.scale != 0 {
		out = append(out, byte(e.scale+127))
		out = append(out, storedEntropy(offsPacked)...)
		if e.scale != 1 {
			out = append(out, storedEntropy(offsLow)...)
		}
	} else {
		out = append(out, storedEntropy(offsPacked)...)
	}

	out = append(out, storedEntropy(lensPacked)...)
	out = append(out, fwd.bytes(tb)...)
	out = append(out, reversed(bwd.bytes(tb))...)

	return out
}

// classicOffsetCode returns the packed code, extra bit count and extra bits
// of a classic (unscaled) distance of at least 8.
func classicOffsetCode(tb testing.TB, d int) (byte, int, int) {
	tb.Helper()

	if d < 8 {
		tb.Fatalf("classic distance %d below 8", d)
	}

	x := d + 248
	m := x >> 4
	n := bits.Len(uint(m)) - 1
	return byte((n-4)<<4 | x&0xF), n, m - 1<<uint(n)
}
