package prs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/woozymasta/kraken"
)

func TestDecompress_ShortPointer(t *testing.T) {
	// literals a b c, short pointer (distance 3, size 5), end marker.
	src := []byte{0x67, 'a', 'b', 'c', 0xFD, 0x01, 0x00, 0x00}

	out, err := Decompress(src, 100)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	if got, want := string(out), "abcabcab"; got != want {
		t.Fatalf("unexpected output: got %q want %q", got, want)
	}
}

func TestDecompress_LongPointer(t *testing.T) {
	// literals a b c d, long pointer (distance 4, size byte 2 -> 12), end marker.
	src := []byte{0xAF, 'a', 'b', 'c', 'd', 0xE0, 0xFF, 0x02, 0x00, 0x00}

	out, err := Decompress(src, 16)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	if got, want := string(out), "abcdabcdabcdabcd"; got != want {
		t.Fatalf("unexpected output: got %q want %q", got, want)
	}
}

func TestDecompressInto_StopsWhenFull(t *testing.T) {
	src := []byte{0x67, 'a', 'b', 'c', 0xFD}
	dst := make([]byte, 8)

	n, err := DecompressInto(src, dst)
	if err != nil {
		t.Fatalf("DecompressInto failed: %v", err)
	}

	if n != len(dst) || !bytes.Equal(dst, []byte("abcabcab")) {
		t.Fatalf("unexpected output: n=%d dst=%q", n, dst)
	}
}

func TestDecompress_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		outLen int
		want   error
	}{
		{"pointer-before-start", []byte{0x00, 0xFF}, 4, kraken.ErrInvalidBackReference},
		{"truncated-literal", []byte{0x01}, 4, kraken.ErrLengthMismatch},
		{"truncated-control", nil, 1, kraken.ErrLengthMismatch},
		{"copy-past-end", []byte{0x67, 'a', 'b', 'c', 0xFD}, 6, kraken.ErrOutputOverflow},
		{"negative-length", nil, -1, kraken.ErrOptionsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.src, tt.outLen)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
