package bmp581

// I2C 8-bit register operations. Multi-byte data registers read
// XLSB/LSB/MSB, i.e. little-endian value order.

func (d *Device) readByte(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeByte(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.bus.Tx(d.addr, d.w[:2], nil)
}

func (d *Device) readU24(reg byte) (uint32, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:3]); err != nil {
		return 0, err
	}
	return uint32(d.r[0]) | uint32(d.r[1])<<8 | uint32(d.r[2])<<16, nil
}

func (d *Device) readBits(reg byte, shift, width uint8) (uint8, error) {
	v, err := d.readByte(reg)
	if err != nil {
		return 0, err
	}
	return extractBits(v, shift, width), nil
}

// updateBits is the read-modify-write helper for sub-byte config fields.
// Callers validate val before this point, so a rejected value causes no
// bus traffic at all.
func (d *Device) updateBits(reg byte, shift, width, val uint8) error {
	cur, err := d.readByte(reg)
	if err != nil {
		return err
	}
	return d.writeByte(reg, insertBits(cur, shift, width, val))
}
