// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "encoding/binary"

// maxRLEPrefix bounds the entropy-coded command prefix of an RLE block.
const maxRLEPrefix = blockSize

// decodeRLE decodes an RLE block: command bytes are consumed from the end of
// the payload, literal bytes from its start. A non-zero first byte means the
// leading commands are themselves an entropy block.
func decodeRLE(src, out []byte) error {
	if len(src) <= 1 {
		if len(src) != 1 {
			return entropyErr("empty rle block")
		}

		for i := range out {
			out[i] = src[0]
		}

		return nil
	}

	cmd := src[1:]
	if src[0] != 0 {
		prefix, used, err := decodeBytes(src, maxRLEPrefix, nil, false)
		if err != nil {
			return err
		}

		if used == 0 {
			return entropyErr("rle command prefix is empty")
		}

		cmd = make([]byte, len(prefix)+len(src)-used)
		copy(cmd, prefix)
		copy(cmd[len(prefix):], src[used:])
	}

	var (
		rleByte byte
		front   int
		back    = len(cmd)
		o       int
	)

	for front < back {
		var copyN, rleN int

		c := cmd[back-1]
		switch {
		case c == 0 || c >= 0x30:
			back--
			copyN = int(^c & 0xF)
			rleN = int(c >> 4)

		case c == 1:
			if back-1 <= front {
				return entropyErr("rle byte command without literal")
			}

			rleByte = cmd[front]
			front++
			back--
			continue

		default:
			if back-2 < front {
				return entropyErr("rle command truncated")
			}

			v := int(binary.LittleEndian.Uint16(cmd[back-2:]))
			back -= 2
			switch {
			case c >= 0x10:
				v -= 4096
				copyN = v & 0x3F
				rleN = v >> 6
			case c >= 9:
				rleN = (v - 0x8FF) * 128
			default:
				copyN = (v - 511) * 64
			}
		}

		if copyN > back-front {
			return entropyErr("rle literal run of %d past command bytes", copyN)
		}

		if copyN+rleN > len(out)-o {
			return entropyErr("rle output overflow")
		}

		copy(out[o:], cmd[front:front+copyN])
		o += copyN
		front += copyN

		for i := o; i < o+rleN; i++ {
			out[i] = rleByte
		}

		o += rleN
	}

	if front != back {
		return entropyErr("rle commands and literals overlap")
	}

	if o != len(out) {
		return entropyErr("rle decoded %d of %d bytes", o, len(out))
	}

	return nil
}
