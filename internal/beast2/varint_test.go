package beast2

import (
	"bytes"
	"testing"
)

func TestUvarintBoundaries(t *testing.T) {
	cases := []struct {
		v    uint64
		size int
	}{
		{0, 1},
		{1, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{1<<32 - 1, 5},
		{1<<63 - 1, 9},
		{1<<64 - 1, 10},
	}
	for _, tc := range cases {
		buf := AppendUvarint(nil, tc.v)
		if len(buf) != tc.size {
			t.Errorf("uvarint(%d): %d bytes, want %d", tc.v, len(buf), tc.size)
		}
		got, n := ReadUvarint(buf)
		if n != len(buf) || got != tc.v {
			t.Errorf("uvarint(%d): read back %d (n=%d)", tc.v, got, n)
		}
	}
}

func TestUvarintTruncated(t *testing.T) {
	buf := AppendUvarint(nil, 16384)
	for cut := 0; cut < len(buf); cut++ {
		if _, n := ReadUvarint(buf[:cut]); n != 0 {
			t.Errorf("cut=%d: want n=0, got %d", cut, n)
		}
	}
	// A continuation byte with no terminator never completes.
	if _, n := ReadUvarint([]byte{0x80, 0x80, 0x80}); n != 0 {
		t.Errorf("unterminated: want n=0, got %d", n)
	}
}

func TestZigzagMapping(t *testing.T) {
	// The signed mapping interleaves onto the unsigned line.
	cases := []struct {
		s int64
		u uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
	}
	for _, tc := range cases {
		buf := AppendSvarint(nil, tc.s)
		u, n := ReadUvarint(buf)
		if n == 0 || u != tc.u {
			t.Errorf("zigzag(%d) = %d, want %d", tc.s, u, tc.u)
		}
	}
}

func TestSvarintExtremes(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1<<63 - 1, -1 << 63} {
		buf := AppendSvarint(nil, v)
		got, n := ReadSvarint(buf)
		if n != len(buf) || got != v {
			t.Errorf("svarint(%d): read back %d (n=%d)", v, got, n)
		}
	}
}

func TestUvarintLenientOverflow(t *testing.T) {
	// 11 bytes of payload: the bits past the 63rd are discarded rather
	// than rejected, so the read still terminates and reports how many
	// bytes it consumed.
	data := bytes.Repeat([]byte{0xff}, 10)
	data = append(data, 0x01)
	_, n := ReadUvarint(data)
	if n != len(data) {
		t.Errorf("lenient overflow: consumed %d bytes, want %d", n, len(data))
	}
}
