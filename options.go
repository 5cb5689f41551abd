// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

// DecompressOptions configures decompression.
// OutLen is required (Kraken streams do not carry the total decoded size);
// MaxInputSize limits reads when using DecompressFromReader.
type DecompressOptions struct {
	// OutLen is the exact decompressed size.
	OutLen int
	// MaxInputSize limits how many bytes DecompressFromReader may read (0 = no limit).
	MaxInputSize int
}

// DefaultDecompressOptions returns options with the given output length and no input limit.
func DefaultDecompressOptions(outLen int) *DecompressOptions {
	return &DecompressOptions{OutLen: outLen}
}
