package kraken

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestDecompressInto_ConcurrentCalls(t *testing.T) {
	type job struct {
		src   []byte
		plain []byte
	}

	twoBlock, twoBlockPlain := twoBlockStream(t)
	xyz := append([]byte("ABCDEFGH"), bytes.Repeat([]byte("xyz"), 400)...)
	xyzPayload := lzEncoder{mode: lzModeDelta, scale: 1}.encode(t, xyz, 0, len(xyz), []lzToken{{lits: 3, match: len(xyz) - 11, dist: 3}})

	jobs := []job{
		{twoBlock, twoBlockPlain},
		{quantumBlock(lzChunk(lzModeDelta, xyzPayload)), xyz},
		{memsetBlock(0x42), bytes.Repeat([]byte{0x42}, 70000)},
		{rawBlock([]byte("concurrent raw block")), []byte("concurrent raw block")},
		{multiArrayStream(), multiArrayPlain()},
	}

	g, ctx := errgroup.WithContext(context.Background())
	for w := range 8 {
		for i, j := range jobs {
			g.Go(func() error {
				for range 4 {
					if err := ctx.Err(); err != nil {
						return err
					}

					dst := make([]byte, len(j.plain))
					if _, err := DecompressInto(j.src, dst); err != nil {
						return fmt.Errorf("worker %d job %d: %w", w, i, err)
					}

					if !bytes.Equal(dst, j.plain) {
						return fmt.Errorf("worker %d job %d: decoded mismatch", w, i)
					}
				}

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

// multiArrayStream is a single-block stream whose only chunk is a multi-array
// entropy block. Entropy-only chunks need the long header.
func multiArrayStream() []byte {
	return quantumBlock(entropyLong(entropyRecursive, multiArrayPayload(false), 200))
}

func multiArrayPlain() []byte {
	out := append(bytes.Repeat([]byte("a"), 50), bytes.Repeat([]byte("b"), 100)...)
	return append(out, bytes.Repeat([]byte("a"), 50)...)
}
