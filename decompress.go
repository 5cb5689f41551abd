// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "fmt"

// Decompress decompresses Kraken data from src into a new buffer of length opts.OutLen.
// Returns ErrOptionsRequired if opts is nil or OutLen is negative.
func Decompress(src []byte, opts *DecompressOptions) ([]byte, error) {
	if opts == nil || opts.OutLen < 0 {
		return nil, ErrOptionsRequired
	}

	dst := make([]byte, opts.OutLen)
	n, err := DecompressInto(src, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// DecompressInto decompresses src into dst, which must be exactly the
// decompressed size. It returns len(dst) on success and (0, err) on failure;
// dst contents are unspecified after a failure.
func DecompressInto(src, dst []byte) (int, error) {
	s := acquireLzScratch()
	defer releaseLzScratch(s)

	return decompressCore(src, dst, s)
}

// decompressCore decodes block after block until dst is full. The whole of
// src must be consumed.
func decompressCore(src, dst []byte, s *lzScratch) (int, error) {
	var inPos, outPos int

	for outPos < len(dst) {
		if inPos == len(src) {
			return 0, fmt.Errorf("%w: input ends after %d of %d output bytes", ErrLengthMismatch, outPos, len(dst))
		}

		hdr, err := parseBlockHeader(src[inPos:])
		if err != nil {
			return 0, fmt.Errorf("block at input offset %d: %w", inPos, err)
		}

		inPos += blockHeaderLen
		want := min(blockSize, len(dst)-outPos)

		if hdr.uncompressed {
			if len(src)-inPos < want {
				return 0, fmt.Errorf("%w: uncompressed block needs %d bytes, %d left",
					ErrLengthMismatch, want, len(src)-inPos)
			}

			copy(dst[outPos:outPos+want], src[inPos:inPos+want])
			inPos += want
			outPos += want
			continue
		}

		if hdr.decoder != DecoderKraken {
			return 0, fmt.Errorf("%w: %s block at input offset %d", ErrUnsupportedMethod, hdr.decoder, inPos-blockHeaderLen)
		}

		q, n, err := parseQuantumHeader(src[inPos:], hdr.checksums)
		if err != nil {
			return 0, fmt.Errorf("quantum at input offset %d: %w", inPos, err)
		}

		inPos += n

		if q.memset {
			fill := dst[outPos : outPos+want]
			for i := range fill {
				fill[i] = q.fill
			}

			outPos += want
			continue
		}

		if q.compressedSize > len(src)-inPos {
			return 0, fmt.Errorf("%w: quantum of %d bytes, %d left", ErrMalformedHeader, q.compressedSize, len(src)-inPos)
		}

		if q.compressedSize > want {
			return 0, fmt.Errorf("%w: quantum of %d bytes for %d output bytes", ErrMalformedHeader, q.compressedSize, want)
		}

		payload := src[inPos : inPos+q.compressedSize]
		if q.compressedSize == want {
			copy(dst[outPos:outPos+want], payload)
		} else if err := decodeQuantum(payload, dst, outPos, want, s); err != nil {
			return 0, fmt.Errorf("quantum at input offset %d: %w", inPos, err)
		}

		inPos += q.compressedSize
		outPos += want
	}

	if inPos != len(src) {
		return 0, fmt.Errorf("%w: %d trailing input bytes", ErrLengthMismatch, len(src)-inPos)
	}

	return outPos, nil
}

// decodeQuantum decodes the chunks of one compressed quantum into
// dst[pos:pos+want].
func decodeQuantum(src, dst []byte, pos, want int, s *lzScratch) error {
	in := 0
	end := pos + want

	for pos < end {
		n := min(chunkSize, end-pos)
		if in == len(src) {
			return fmt.Errorf("%w: quantum payload ends %d bytes early", ErrLengthMismatch, end-pos)
		}

		ch, hdrLen, err := parseChunkHeader(src[in:], n)
		if err != nil {
			return err
		}

		in += hdrLen

		switch ch.method {
		case MethodEntropy:
			out, used, err := decodeBytes(src[in:], n, dst[pos:pos+n], true)
			if err != nil {
				return err
			}

			if len(out) != n {
				return fmt.Errorf("%w: entropy chunk decoded %d of %d bytes", ErrLengthMismatch, len(out), n)
			}

			in += used

		case MethodMemcpy:
			copy(dst[pos:pos+n], src[in:in+n])
			in += n

		case MethodLZ:
			if err := decodeLzChunk(src[in:in+ch.encodedLen], ch.lzMode, dst, pos, n, s); err != nil {
				return err
			}

			in += ch.encodedLen
		}

		pos += n
	}

	if in != len(src) {
		return fmt.Errorf("%w: quantum used %d of %d bytes", ErrMalformedHeader, in, len(src))
	}

	return nil
}
