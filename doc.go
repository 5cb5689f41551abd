// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

/*
Package kraken implements decompression of Kraken, the LZ77 codec of the Oodle family.

A Kraken stream does not record its decompressed size; the caller supplies it.
Output is produced in 256 KiB blocks, each with a 2-byte header. A block is
stored raw, filled with one byte, copied verbatim, or split into 128 KiB chunks.
Chunks are either a single entropy-coded block or an LZ chunk whose literal,
command, offset and length streams are each entropy-coded with Huffman, tANS
or RLE coders. Matches reference any byte already written by the same call, so
the output buffer doubles as the sliding window.

Only the Kraken decoder type is decoded. Blocks from the other Oodle codecs
(Mermaid, Selkie, Leviathan, LZNA, BitKnit) fail with ErrUnsupportedMethod.
Quantum checksums are parsed but not verified.

# Decompress

OutLen is required (use DecompressOptions). From a byte slice:

	out, err := kraken.Decompress(compressed, kraken.DefaultDecompressOptions(expectedLen))

To reuse caller-managed output memory:

	dst := make([]byte, expectedLen)
	n, err := kraken.DecompressInto(compressed, dst)

From an io.Reader:

	out, err := kraken.DecompressFromReader(r, kraken.DefaultDecompressOptions(expectedLen))

The input must decode to exactly len(dst) bytes and be consumed entirely;
anything else fails with ErrLengthMismatch. All errors wrap one of the
package sentinels and can be matched with errors.Is.

# Inspect

Inspect reports the block and chunk layout of a stream without decoding it:

	blocks, err := kraken.Inspect(compressed, expectedLen)

Functions are safe for concurrent use; each call owns its buffers.
*/
package kraken
