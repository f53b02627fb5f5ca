package bmp581

// Pure shift/mask and fixed-point helpers.

// twosComplement interprets the low bits of raw as an n-bit two's-complement
// value: if the sign bit (bit bits-1) is set the result is raw - 2^bits.
func twosComplement(raw uint32, bits uint) int32 {
	if raw&(1<<(bits-1)) != 0 {
		return int32(raw) - int32(1)<<bits
	}
	return int32(raw)
}

func fieldMask(shift, width uint8) uint8 {
	return (uint8(1)<<width - 1) << shift
}

func extractBits(b, shift, width uint8) uint8 {
	return (b >> shift) & (uint8(1)<<width - 1)
}

func insertBits(b, shift, width, val uint8) uint8 {
	m := fieldMask(shift, width)
	return (b &^ m) | (val << shift & m)
}
