// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "fmt"

// ChunkMethod identifies how a piece of output is encoded.
type ChunkMethod uint8

const (
	// MethodRaw is an uncompressed block: payload bytes are the output.
	MethodRaw ChunkMethod = iota
	// MethodMemset is a quantum filled with one repeated byte.
	MethodMemset
	// MethodMemcpy is a stored quantum or chunk copied verbatim.
	MethodMemcpy
	// MethodEntropy is a chunk made of a single entropy-coded block.
	MethodEntropy
	// MethodLZ is a chunk of entropy-coded LZ streams.
	MethodLZ
	// MethodChunked is a quantum split into chunks; see BlockInfo.Chunks.
	MethodChunked
)

// String returns the method name.
func (m ChunkMethod) String() string {
	switch m {
	case MethodRaw:
		return "raw"
	case MethodMemset:
		return "memset"
	case MethodMemcpy:
		return "memcpy"
	case MethodEntropy:
		return "entropy"
	case MethodLZ:
		return "lz"
	case MethodChunked:
		return "chunked"
	default:
		return "unknown"
	}
}

// blockHeader is the 2-byte header found at every blockSize boundary of the output.
type blockHeader struct {
	decoder      DecoderType
	uncompressed bool
	restart      bool
	checksums    bool
}

const blockHeaderLen = 2

func parseBlockHeader(src []byte) (blockHeader, error) {
	if len(src) < blockHeaderLen {
		return blockHeader{}, fmt.Errorf("%w: block header truncated (%d bytes)", ErrMalformedHeader, len(src))
	}

	b0, b1 := src[0], src[1]
	if b0&blockMagicMask != blockMagic {
		return blockHeader{}, fmt.Errorf("%w: bad block magic 0x%02x", ErrMalformedHeader, b0)
	}

	if b0&blockReservedMask != 0 {
		return blockHeader{}, fmt.Errorf("%w: reserved block bits set (0x%02x)", ErrMalformedHeader, b0)
	}

	hdr := blockHeader{
		decoder:      DecoderType(b1 & blockDecoderMask),
		uncompressed: b0&blockUncompressed != 0,
		restart:      b0&blockRestart != 0,
		checksums:    b1&blockChecksumsFlag != 0,
	}
	if !hdr.decoder.known() {
		return blockHeader{}, fmt.Errorf("%w: unknown decoder type %d", ErrMalformedHeader, hdr.decoder)
	}

	return hdr, nil
}

// quantumHeader describes the payload of a compressed block.
type quantumHeader struct {
	compressedSize int // payload bytes following the header; 0 for memset
	memset         bool
	fill           byte
	checksum       uint32
}

// parseQuantumHeader returns the header and the number of bytes it occupies.
func parseQuantumHeader(src []byte, checksums bool) (quantumHeader, int, error) {
	if len(src) < 3 {
		return quantumHeader{}, 0, fmt.Errorf("%w: quantum header truncated", ErrMalformedHeader)
	}

	v := uint32(src[0])<<16 | uint32(src[1])<<8 | uint32(src[2])
	size := v & quantumSizeMask
	if size != quantumSizeMask {
		q := quantumHeader{compressedSize: int(size) + 1}
		if !checksums {
			return q, 3, nil
		}

		if len(src) < 6 {
			return quantumHeader{}, 0, fmt.Errorf("%w: quantum checksum truncated", ErrMalformedHeader)
		}

		q.checksum = uint32(src[3])<<16 | uint32(src[4])<<8 | uint32(src[5])
		return q, 6, nil
	}

	if v>>18 != quantumSpecialTag {
		return quantumHeader{}, 0, fmt.Errorf("%w: unknown special quantum 0x%06x", ErrMalformedHeader, v)
	}

	if len(src) < 4 {
		return quantumHeader{}, 0, fmt.Errorf("%w: memset quantum truncated", ErrMalformedHeader)
	}

	return quantumHeader{memset: true, fill: src[3], checksum: uint32(src[3])}, 4, nil
}

// chunkHeader describes one chunk of a compressed quantum.
type chunkHeader struct {
	method     ChunkMethod
	lzMode     int
	encodedLen int // payload bytes after the 3-byte header; unknown (0) for entropy-only chunks
	decodedLen int
}

const chunkHeaderLen = 3

// parseChunkHeader reads the header of a chunk that must decode to decodedLen bytes.
// Entropy-only chunks have no header of their own: their first bytes are the
// entropy block header, so nothing is consumed for them.
func parseChunkHeader(src []byte, decodedLen int) (chunkHeader, int, error) {
	if len(src) < 4 {
		return chunkHeader{}, 0, fmt.Errorf("%w: chunk header truncated", ErrMalformedHeader)
	}

	v := int(src[0])<<16 | int(src[1])<<8 | int(src[2])
	if v&chunkCompressedFlag == 0 {
		return chunkHeader{method: MethodEntropy, decodedLen: decodedLen}, 0, nil
	}

	ch := chunkHeader{
		encodedLen: v & chunkSizeMask,
		lzMode:     (v >> chunkModeShift) & chunkModeMask,
		decodedLen: decodedLen,
	}
	if ch.encodedLen > len(src)-chunkHeaderLen {
		return chunkHeader{}, 0, fmt.Errorf("%w: chunk encoded length %d exceeds remaining input %d",
			ErrMalformedHeader, ch.encodedLen, len(src)-chunkHeaderLen)
	}

	switch {
	case ch.encodedLen < decodedLen:
		ch.method = MethodLZ
	case ch.encodedLen > decodedLen:
		return chunkHeader{}, 0, fmt.Errorf("%w: chunk encoded length %d exceeds decoded length %d",
			ErrMalformedHeader, ch.encodedLen, decodedLen)
	case ch.lzMode != 0:
		return chunkHeader{}, 0, fmt.Errorf("%w: stored chunk with mode %d", ErrMalformedHeader, ch.lzMode)
	default:
		ch.method = MethodMemcpy
	}

	return ch, chunkHeaderLen, nil
}
