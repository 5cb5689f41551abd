// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "fmt"

// copyBackRef copies length bytes from dst[outputPos-dist:] to dst[outputPos:].
// When dist < length the regions overlap and bytes written by this copy are
// read again, so the copy runs forward one byte at a time; the built-in copy
// would move the original bytes instead of repeating them.
func copyBackRef(dst []byte, outputPos, dist, length int) error {
	mPos := outputPos - dist
	if dist <= 0 || mPos < 0 {
		return fmt.Errorf("%w: distance %d at position %d", ErrInvalidBackReference, dist, outputPos)
	}

	if length > len(dst)-outputPos {
		return fmt.Errorf("%w: match of %d bytes at %d, buffer holds %d", ErrOutputOverflow, length, outputPos, len(dst))
	}

	if dist >= length {
		copy(dst[outputPos:outputPos+length], dst[mPos:mPos+length])
		return nil
	}

	for i := range length {
		dst[outputPos+i] = dst[mPos+i]
	}

	return nil
}

// addLiterals writes lits[i] + dst[pos+i-dist] for each literal. The reference
// byte may itself be one of the bytes written here when dist < len(lits).
func addLiterals(dst []byte, pos, dist int, lits []byte) error {
	if dist <= 0 || pos-dist < 0 {
		return fmt.Errorf("%w: delta literal distance %d at position %d", ErrInvalidBackReference, dist, pos)
	}

	if len(lits) > len(dst)-pos {
		return fmt.Errorf("%w: %d literals at %d, buffer holds %d", ErrOutputOverflow, len(lits), pos, len(dst))
	}

	for i, b := range lits {
		dst[pos+i] = b + dst[pos+i-dist]
	}

	return nil
}
