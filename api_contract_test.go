package kraken

import (
	"bytes"
	"errors"
	"testing"
)

func TestAPIContract_DecompressRejectsTrailingBytes(t *testing.T) {
	src := bytes.Repeat([]byte("api-contract"), 64)

	payload := append(rawBlock(src), []byte("tail")...)
	_, err := Decompress(payload, DefaultDecompressOptions(len(src)))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch for trailing bytes, got %v", err)
	}
}

func TestAPIContract_DecompressNeverReturnsShorterThanOutLen(t *testing.T) {
	src := bytes.Repeat([]byte("short-output"), 32)

	_, err := Decompress(rawBlock(src), DefaultDecompressOptions(len(src)+256))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	out, err := Decompress(rawBlock(src), DefaultDecompressOptions(len(src)))
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	if len(out) != len(src) {
		t.Fatalf("decoded length mismatch: got=%d want=%d", len(out), len(src))
	}
}

func TestAPIContract_DecompressIntoReportsLength(t *testing.T) {
	data := []byte("krak")
	dst := make([]byte, len(data))

	n, err := DecompressInto([]byte{0x0C, 0x06, 0x00, 0x00, 0x03, 'k', 'r', 'a', 'k'}, dst)
	if err != nil {
		t.Fatalf("DecompressInto failed: %v", err)
	}

	if n != len(data) || !bytes.Equal(dst, data) {
		t.Fatalf("got (%d, %q), want (%d, %q)", n, dst, len(data), data)
	}
}

func TestAPIContract_DecompressCanonicalStream(t *testing.T) {
	// One LZ chunk: 8 raw bytes, then a single match of 56 at the initial
	// recent offset 8 with empty literal and offset streams.
	compressed := []byte{
		// Block header: Kraken, compressed.
		0x0C, 0x06,
		// Quantum of 26 bytes.
		0x00, 0x00, 0x19,
		// LZ chunk, raw literals, 23 bytes.
		0x88, 0x00, 0x17,
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H',
		// Literals, commands, offsets, lengths.
		0x00, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x3C,
		0x00, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x27,
		// No long lengths.
		0x80,
	}
	expected := bytes.Repeat([]byte("ABCDEFGH"), 8)

	out, err := Decompress(compressed, DefaultDecompressOptions(len(expected)))
	if err != nil {
		t.Fatalf("Decompress failed for canonical stream: %v", err)
	}

	if !bytes.Equal(out, expected) {
		t.Fatalf("canonical stream decoded data mismatch: %q", out)
	}
}
