// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "fmt"

// entropyHeader is the parsed header of an entropy block.
type entropyHeader struct {
	typ     int
	hdrLen  int
	srcSize int // payload bytes after the header
	dstSize int // decoded bytes
}

// parseEntropyHeader parses the header at the start of src and checks that
// the payload is present and the decoded size fits in capacity.
func parseEntropyHeader(src []byte, capacity int) (entropyHeader, error) {
	if len(src) < 2 {
		return entropyHeader{}, fmt.Errorf("%w: entropy header truncated", ErrEntropyDecode)
	}

	b0 := int(src[0])
	h := entropyHeader{typ: (b0 >> 4) & 7}

	switch {
	case h.typ == entropyStored:
		if b0 >= 0x80 {
			h.srcSize = (b0<<8 | int(src[1])) & 0xFFF
			h.hdrLen = 2
		} else {
			if len(src) < 3 {
				return entropyHeader{}, fmt.Errorf("%w: stored header truncated", ErrEntropyDecode)
			}

			h.srcSize = b0<<16 | int(src[1])<<8 | int(src[2])
			if h.srcSize&^0x3FFFF != 0 {
				return entropyHeader{}, fmt.Errorf("%w: reserved stored-size bits set", ErrEntropyDecode)
			}

			h.hdrLen = 3
		}

		h.dstSize = h.srcSize

	case h.typ > entropyRecursive:
		return entropyHeader{}, fmt.Errorf("%w: entropy block type %d", ErrUnsupportedMethod, h.typ)

	case b0 >= 0x80:
		if len(src) < 3 {
			return entropyHeader{}, fmt.Errorf("%w: short entropy header truncated", ErrEntropyDecode)
		}

		bits := b0<<16 | int(src[1])<<8 | int(src[2])
		h.srcSize = bits & 0x3FF
		h.dstSize = h.srcSize + (bits>>10)&0x3FF + 1
		h.hdrLen = 3

	default:
		if len(src) < 5 {
			return entropyHeader{}, fmt.Errorf("%w: long entropy header truncated", ErrEntropyDecode)
		}

		bits := int(src[1])<<24 | int(src[2])<<16 | int(src[3])<<8 | int(src[4])
		h.srcSize = bits & 0x3FFFF
		h.dstSize = ((bits>>18 | b0<<14) & 0x3FFFF) + 1
		if h.srcSize >= h.dstSize {
			return entropyHeader{}, fmt.Errorf("%w: long header source %d not below decoded %d",
				ErrEntropyDecode, h.srcSize, h.dstSize)
		}

		h.hdrLen = 5
	}

	if h.dstSize > capacity {
		return entropyHeader{}, fmt.Errorf("%w: entropy block decodes to %d bytes, room for %d",
			ErrOutputOverflow, h.dstSize, capacity)
	}

	if h.srcSize > len(src)-h.hdrLen {
		return entropyHeader{}, fmt.Errorf("%w: entropy block needs %d bytes, %d left",
			ErrEntropyDecode, h.srcSize, len(src)-h.hdrLen)
	}

	return h, nil
}

// entropyBlockSize returns the decoded size of the entropy block at src.
func entropyBlockSize(src []byte, capacity int) (int, error) {
	h, err := parseEntropyHeader(src, capacity)
	if err != nil {
		return 0, err
	}

	return h.dstSize, nil
}

// decodeBytes decodes the entropy block at the start of src, which may decode
// to at most capacity bytes. Decoded bytes go to buf (allocated when nil).
// Stored blocks are returned as a subslice of src unless forceCopy is set.
// It returns the decoded bytes and the number of src bytes consumed.
func decodeBytes(src []byte, capacity int, buf []byte, forceCopy bool) ([]byte, int, error) {
	h, err := parseEntropyHeader(src, capacity)
	if err != nil {
		return nil, 0, err
	}

	payload := src[h.hdrLen : h.hdrLen+h.srcSize]
	used := h.hdrLen + h.srcSize

	if h.typ == entropyStored && !forceCopy {
		return payload, used, nil
	}

	if buf == nil {
		buf = make([]byte, h.dstSize)
	} else if len(buf) < h.dstSize {
		return nil, 0, fmt.Errorf("%w: entropy block decodes to %d bytes, buffer holds %d",
			ErrOutputOverflow, h.dstSize, len(buf))
	}

	out := buf[:h.dstSize]

	switch h.typ {
	case entropyStored:
		copy(out, payload)
	case entropyTans:
		err = decodeTans(payload, out)
	case entropyHuffman2:
		err = decodeHuffman(payload, out, false)
	case entropyHuffman4:
		err = decodeHuffman(payload, out, true)
	case entropyRLE:
		err = decodeRLE(payload, out)
	case entropyRecursive:
		err = decodeRecursive(payload, out)
	}

	if err != nil {
		return nil, 0, err
	}

	return out, used, nil
}

// entropyErr wraps ErrEntropyDecode with a formatted message.
func entropyErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEntropyDecode, fmt.Sprintf(format, args...))
}
