// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package prs

import (
	"fmt"

	"github.com/woozymasta/kraken"
)

const (
	minLongCopyLen  = 10
	longOffsetBase  = 8192
	shortOffsetBase = 256
)

// Decompress decompresses src into a new buffer of at most outLen bytes.
// The result is shorter than outLen when the stream ends early.
func Decompress(src []byte, outLen int) ([]byte, error) {
	if outLen < 0 {
		return nil, kraken.ErrOptionsRequired
	}

	dst := make([]byte, outLen)
	n, err := DecompressInto(src, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// DecompressInto decompresses src into dst and returns the number of bytes
// written. Decoding stops when dst is full or at the end-of-stream marker.
func DecompressInto(src, dst []byte) (int, error) {
	d := decoder{src: src}
	out := 0

	for out < len(dst) {
		bit, err := d.controlBit()
		if err != nil {
			return 0, err
		}

		if bit {
			b, err := d.readByte()
			if err != nil {
				return 0, err
			}

			dst[out] = b
			out++
			continue
		}

		var dist, size int
		long, err := d.controlBit()
		if err != nil {
			return 0, err
		}

		if long {
			b0, err := d.readByte()
			if err != nil {
				return 0, err
			}

			b1, err := d.readByte()
			if err != nil {
				return 0, err
			}

			if b0 == 0 && b1 == 0 {
				return out, nil
			}

			dist = longOffsetBase - (int(b1)<<5 + int(b0)>>3)
			size = int(b0 & 7)
			if size == 0 {
				b, err := d.readByte()
				if err != nil {
					return 0, err
				}

				size = int(b) + minLongCopyLen
			} else {
				size += 2
			}
		} else {
			size = 2
			for _, add := range [2]int{2, 1} {
				bit, err := d.controlBit()
				if err != nil {
					return 0, err
				}

				if bit {
					size += add
				}
			}

			b, err := d.readByte()
			if err != nil {
				return 0, err
			}

			dist = shortOffsetBase - int(b)
		}

		if err := copyBackRef(dst, out, dist, size); err != nil {
			return 0, err
		}

		out += size
	}

	return out, nil
}

// decoder tracks the input position and the current control byte.
type decoder struct {
	src     []byte
	pos     int
	control byte
	counter int
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.src) {
		return 0, fmt.Errorf("%w: input ends at offset %d", kraken.ErrLengthMismatch, d.pos)
	}

	b := d.src[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) controlBit() (bool, error) {
	if d.counter == 0 {
		b, err := d.readByte()
		if err != nil {
			return false, err
		}

		d.control = b
		d.counter = 8
	}

	bit := d.control&1 != 0
	d.control >>= 1
	d.counter--
	return bit, nil
}

// copyBackRef copies size bytes from dist bytes back; overlapping copies repeat bytes.
func copyBackRef(dst []byte, pos, dist, size int) error {
	if dist <= 0 || dist > pos {
		return fmt.Errorf("%w: distance %d at position %d", kraken.ErrInvalidBackReference, dist, pos)
	}

	if size > len(dst)-pos {
		return fmt.Errorf("%w: copy of %d bytes at %d, buffer holds %d", kraken.ErrOutputOverflow, size, pos, len(dst))
	}

	for i := range size {
		dst[pos+i] = dst[pos-dist+i]
	}

	return nil
}
