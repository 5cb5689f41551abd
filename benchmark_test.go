// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import (
	"bytes"
	"testing"
)

type benchmarkStream struct {
	name  string
	src   []byte
	plain []byte
}

func benchmarkStreams(b *testing.B) []benchmarkStream {
	b.Helper()

	raw := patterned(blockSize+4096, 21)
	lzPlain := append([]byte("ABCDEFGH"), bytes.Repeat([]byte("kraken benchmark text "), 5000)...)
	lzPayload := lzEncoder{mode: lzModeRaw}.encode(b, lzPlain, 0, len(lzPlain), []lzToken{{lits: 22, match: len(lzPlain) - 40, dist: 22}})
	twoBlock, twoBlockPlain := twoBlockStream(b)

	return []benchmarkStream{
		{"raw-260k", append(rawBlock(raw[:blockSize]), rawBlock(raw[blockSize:])...), raw},
		{"memset-256k", memsetBlock(0x5A), bytes.Repeat([]byte{0x5A}, blockSize)},
		{"lz-text-110k", quantumBlock(lzChunk(lzModeRaw, lzPayload)), lzPlain},
		{"lz-two-block-261k", twoBlock, twoBlockPlain},
	}
}

func BenchmarkDecompress(b *testing.B) {
	for _, s := range benchmarkStreams(b) {
		opts := DefaultDecompressOptions(len(s.plain))
		out, err := Decompress(s.src, opts)
		if err != nil {
			b.Fatalf("setup Decompress failed for %s: %v", s.name, err)
		}

		if !bytes.Equal(out, s.plain) {
			b.Fatalf("setup Decompress mismatch for %s", s.name)
		}

		b.Run(s.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(s.plain)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, err := Decompress(s.src, opts)
				if err != nil {
					b.Fatalf("Decompress failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkDecompressInto(b *testing.B) {
	for _, s := range benchmarkStreams(b) {
		dst := make([]byte, len(s.plain))

		b.Run(s.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(s.plain)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := DecompressInto(s.src, dst); err != nil {
					b.Fatalf("DecompressInto failed: %v", err)
				}
			}
		})
	}
}
