// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "fmt"

// BlockInfo describes one block of a Kraken stream.
type BlockInfo struct {
	InputOffset    int         // offset of the block header in src
	OutputOffset   int         // offset of the block's first byte in the output
	DecodedSize    int         // output bytes covered by the block
	CompressedSize int         // payload bytes after the block and quantum headers
	Decoder        DecoderType // codec named in the block header
	Method         ChunkMethod // MethodRaw, MethodMemset, MethodMemcpy or MethodChunked
	Restart        bool        // decoder state is reset at this block
	HasChecksum    bool        // quantum carries a checksum
	Checksum       uint32      // 24-bit quantum checksum as stored (not verified)
	Chunks         []ChunkInfo // chunks of a Kraken MethodChunked quantum
}

// ChunkInfo describes one chunk of a compressed quantum.
type ChunkInfo struct {
	InputOffset  int // offset of the chunk in src
	OutputOffset int
	DecodedSize  int
	EncodedSize  int // bytes taken by the chunk, header included
	Method       ChunkMethod
	LZMode       int // 0 = delta literals, 1 = raw literals; LZ chunks only
}

// Inspect walks the block, quantum and chunk headers of a stream that decodes
// to outLen bytes without decoding any payload. Header errors are reported the
// same way DecompressInto reports them.
func Inspect(src []byte, outLen int) ([]BlockInfo, error) {
	if outLen < 0 {
		return nil, ErrOptionsRequired
	}

	var (
		blocks        []BlockInfo
		inPos, outPos int
	)

	for outPos < outLen {
		if inPos == len(src) {
			return nil, fmt.Errorf("%w: input ends after %d of %d output bytes", ErrLengthMismatch, outPos, outLen)
		}

		hdr, err := parseBlockHeader(src[inPos:])
		if err != nil {
			return nil, fmt.Errorf("block at input offset %d: %w", inPos, err)
		}

		info := BlockInfo{
			InputOffset:  inPos,
			OutputOffset: outPos,
			DecodedSize:  min(blockSize, outLen-outPos),
			Decoder:      hdr.decoder,
			Restart:      hdr.restart,
		}
		inPos += blockHeaderLen

		switch {
		case hdr.uncompressed:
			if len(src)-inPos < info.DecodedSize {
				return nil, fmt.Errorf("%w: uncompressed block needs %d bytes, %d left",
					ErrLengthMismatch, info.DecodedSize, len(src)-inPos)
			}

			info.Method = MethodRaw
			info.CompressedSize = info.DecodedSize

		default:
			q, n, err := parseQuantumHeader(src[inPos:], hdr.checksums)
			if err != nil {
				return nil, fmt.Errorf("quantum at input offset %d: %w", inPos, err)
			}

			inPos += n
			info.HasChecksum = hdr.checksums
			info.Checksum = q.checksum

			switch {
			case q.memset:
				info.Method = MethodMemset
			case q.compressedSize > len(src)-inPos:
				return nil, fmt.Errorf("%w: quantum of %d bytes, %d left", ErrMalformedHeader, q.compressedSize, len(src)-inPos)
			case q.compressedSize > info.DecodedSize:
				return nil, fmt.Errorf("%w: quantum of %d bytes for %d output bytes",
					ErrMalformedHeader, q.compressedSize, info.DecodedSize)
			case q.compressedSize == info.DecodedSize:
				info.Method = MethodMemcpy
				info.CompressedSize = q.compressedSize
			default:
				info.Method = MethodChunked
				info.CompressedSize = q.compressedSize
				if hdr.decoder == DecoderKraken {
					chunks, err := inspectChunks(src[:inPos+q.compressedSize], inPos, outPos, info.DecodedSize)
					if err != nil {
						return nil, fmt.Errorf("quantum at input offset %d: %w", inPos, err)
					}

					info.Chunks = chunks
				}
			}
		}

		inPos += info.CompressedSize
		outPos += info.DecodedSize
		blocks = append(blocks, info)
	}

	if inPos != len(src) {
		return nil, fmt.Errorf("%w: %d trailing input bytes", ErrLengthMismatch, len(src)-inPos)
	}

	return blocks, nil
}

// inspectChunks lists the chunks of the quantum occupying src[in:].
func inspectChunks(src []byte, in, pos, want int) ([]ChunkInfo, error) {
	var chunks []ChunkInfo
	end := pos + want

	for pos < end {
		n := min(chunkSize, end-pos)
		if in == len(src) {
			return nil, fmt.Errorf("%w: quantum payload ends %d bytes early", ErrLengthMismatch, end-pos)
		}

		ch, hdrLen, err := parseChunkHeader(src[in:], n)
		if err != nil {
			return nil, err
		}

		c := ChunkInfo{InputOffset: in, OutputOffset: pos, DecodedSize: n, Method: ch.method}
		switch ch.method {
		case MethodEntropy:
			h, err := parseEntropyHeader(src[in:], n)
			if err != nil {
				return nil, err
			}

			c.EncodedSize = h.hdrLen + h.srcSize
		case MethodLZ:
			c.LZMode = ch.lzMode
			c.EncodedSize = hdrLen + ch.encodedLen
		default:
			c.EncodedSize = hdrLen + ch.encodedLen
		}

		chunks = append(chunks, c)
		in += c.EncodedSize
		pos += n
	}

	if in != len(src) {
		return nil, fmt.Errorf("%w: quantum used %d of %d bytes", ErrMalformedHeader, in, len(src))
	}

	return chunks, nil
}
