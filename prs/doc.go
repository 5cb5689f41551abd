// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

/*
Package prs implements decompression of PRS, the LZ77 variant used by Sega
archives next to Kraken for groups that predate it.

The stream interleaves control bytes with data. Control bits are consumed
least-significant first; a new control byte is read from the stream whenever
the previous eight bits are used up:

	1        literal: copy the next byte
	0 1      long pointer: two bytes, 13-bit distance, 3-bit size (0 = size byte follows)
	0 0 s s  short pointer: size 2..5 from two control bits, one distance byte

A long pointer with both bytes zero ends the stream.

	out, err := prs.Decompress(compressed, expectedLen)

Errors wrap the kraken package sentinels, so errors.Is works the same for both codecs.
*/
package prs
