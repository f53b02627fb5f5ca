package bmp581

import "testing"

func TestTwosComplementBoundaries(t *testing.T) {
	cases := []struct {
		raw  uint32
		want int32
	}{
		{0x000000, 0},
		{0x000001, 1},
		{0x7FFFFF, 1<<23 - 1},
		{0x800000, -(1 << 23)},
		{0xFF0000, -65536},
		{0xFFFFFF, -1},
	}
	for _, c := range cases {
		if got := twosComplement(c.raw, 24); got != c.want {
			t.Errorf("twosComplement(%#06x, 24) = %d (want %d)", c.raw, got, c.want)
		}
	}
}

func TestTwosComplementRoundTrip(t *testing.T) {
	// Encode-then-decode must be the identity over the full signed range.
	// Stride keeps the sweep fast while still crossing both halves and the
	// sign boundary.
	const lo, hi = -(1 << 23), 1<<23 - 1
	for v := int32(lo); ; v += 4099 {
		raw := uint32(v) & 0xFFFFFF
		if got := twosComplement(raw, 24); got != v {
			t.Fatalf("round trip %d -> %#06x -> %d", v, raw, got)
		}
		if got := twosComplement(raw, 24); got < lo || got > hi {
			t.Fatalf("decoded value %d outside 24-bit signed range", got)
		}
		if v > hi-4099 {
			break
		}
	}
}

func TestFieldInsertExtract(t *testing.T) {
	// Writing one field must leave the surrounding bits untouched.
	b := byte(0b1010_1010)
	b = insertBits(b, 3, 3, 0b101)
	if got := extractBits(b, 3, 3); got != 0b101 {
		t.Fatalf("extract = %#03b (want 0b101)", got)
	}
	if b&^fieldMask(3, 3) != 0b1000_0010&^fieldMask(3, 3) {
		t.Fatalf("neighbouring bits disturbed: %#08b", b)
	}

	// Values wider than the field are masked, never smeared into neighbours.
	b = insertBits(0, 2, 5, 0xFF)
	if b != fieldMask(2, 5) {
		t.Fatalf("overwide insert = %#08b (want %#08b)", b, fieldMask(2, 5))
	}
}
