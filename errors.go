// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "errors"

// Sentinel errors for decompression. Decoders wrap them with context via
// fmt.Errorf, so callers should match with errors.Is.
var (
	// ErrMalformedHeader is returned when a block, quantum or chunk header is
	// truncated, has reserved bits set, or declares sizes outside the input.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrEntropyDecode is returned when an entropy-coded block is corrupt:
	// invalid code tables, exhausted or unconsumed bit streams, size mismatch.
	ErrEntropyDecode = errors.New("entropy decode error")
	// ErrInvalidBackReference is returned when a match points before the start of the output.
	ErrInvalidBackReference = errors.New("invalid back-reference")
	// ErrOutputOverflow is returned when the decoder would write past the output buffer.
	ErrOutputOverflow = errors.New("output overflow")
	// ErrLengthMismatch is returned when the stream does not decode to exactly len(dst) bytes.
	ErrLengthMismatch = errors.New("decoded length mismatch")
	// ErrUnsupportedMethod is returned for a recognised Oodle decoder type or
	// coding mode this package does not implement.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrOptionsRequired is returned when Decompress is called with nil options (OutLen is required).
	ErrOptionsRequired = errors.New("options required: OutLen must be set")
	// ErrInputTooLarge is returned when DecompressFromReader reads more than MaxInputSize bytes.
	ErrInputTooLarge = errors.New("input exceeds MaxInputSize")
)
