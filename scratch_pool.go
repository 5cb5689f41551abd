// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kraken

package kraken

import "sync"

// lzScratch holds the working arrays of one LZ chunk. A value is owned by a
// single decompression call from acquire to release.
type lzScratch struct {
	lits       []byte
	cmds       []byte
	offsPacked []byte
	offsLow    []byte
	lensPacked []byte
	offs       []int
	lens       []int
}

// lzScratchPool is a pool of LZ working arrays.
var lzScratchPool = sync.Pool{
	New: func() any {
		return &lzScratch{}
	},
}

// acquireLzScratch acquires LZ working arrays from the pool.
func acquireLzScratch() *lzScratch {
	return lzScratchPool.Get().(*lzScratch)
}

// releaseLzScratch returns LZ working arrays to the pool.
func releaseLzScratch(s *lzScratch) {
	if s == nil {
		return
	}

	lzScratchPool.Put(s)
}

// grow returns (*buf)[:n], reallocating when the backing array is too small.
func grow[T any](buf *[]T, n int) []T {
	if cap(*buf) < n {
		*buf = make([]T, n)
	}

	return (*buf)[:n]
}
