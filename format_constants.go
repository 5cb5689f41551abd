// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

// Kraken format constants: block/chunk geometry, header bits and decoder types.

// Output geometry.
const (
	blockSize = 0x40000 // output bytes covered by one block header
	chunkSize = 0x20000 // output bytes covered by one chunk inside a quantum
)

// Block header bits (first byte).
const (
	blockMagicMask     = 0x0F
	blockMagic         = 0x0C
	blockReservedMask  = 0x30
	blockUncompressed  = 0x40
	blockRestart       = 0x80
	blockChecksumsFlag = 0x80 // second byte
	blockDecoderMask   = 0x7F // second byte
)

// Quantum header fields.
const (
	quantumSizeMask   = 0x3FFFF
	quantumSpecialTag = 1 // top 6 bits of a special quantum: memset
)

// Chunk header fields.
const (
	chunkCompressedFlag = 0x800000
	chunkSizeMask       = 0x7FFFF
	chunkModeShift      = 19
	chunkModeMask       = 0xF
)

// DecoderType is the Oodle codec identifier carried in each block header.
type DecoderType uint8

// Oodle decoder types. Only Kraken is decoded by this package.
const (
	DecoderLZNA      DecoderType = 5
	DecoderKraken    DecoderType = 6
	DecoderMermaid   DecoderType = 10
	DecoderBitKnit   DecoderType = 11
	DecoderLeviathan DecoderType = 12
)

// String returns the codec name.
func (d DecoderType) String() string {
	switch d {
	case DecoderLZNA:
		return "lzna"
	case DecoderKraken:
		return "kraken"
	case DecoderMermaid:
		return "mermaid"
	case DecoderBitKnit:
		return "bitknit"
	case DecoderLeviathan:
		return "leviathan"
	default:
		return "unknown"
	}
}

// known reports whether d is a member of the Oodle family.
func (d DecoderType) known() bool {
	switch d {
	case DecoderLZNA, DecoderKraken, DecoderMermaid, DecoderBitKnit, DecoderLeviathan:
		return true
	}

	return false
}

// LZ literal modes carried in the chunk header.
const (
	lzModeDelta = 0 // literals are added to the byte at the last match offset
	lzModeRaw   = 1 // literals are copied verbatim
)

// Entropy block types (bits 4-6 of the first header byte).
const (
	entropyStored    = 0
	entropyTans      = 1
	entropyHuffman2  = 2
	entropyRLE       = 3
	entropyHuffman4  = 4
	entropyRecursive = 5
)

// LZ stream parameters.
const (
	initialRecentOffset = 8  // every recent-offset slot starts at distance 8
	rawPrefixLen        = 8  // first LZ chunk of a stream starts with 8 raw bytes
	minLzChunkInput     = 13 // smallest valid LZ chunk payload
	maxLongLengths      = 512
)
