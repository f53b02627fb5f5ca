// Package bmp581 provides constants for register addresses and bitfields used
// in the operation of the BMP581 barometric pressure/temperature sensor.
package bmp581

const (
	// 7-bit I2C address (SDO high; 0x46 with SDO low).
	AddressDefault = 0x47

	// CHIP_ID value reported by a BMP581.
	DeviceID = 0x50

	// --- Register sub-addresses (8-bit registers) ---

	regChipID    = 0x01 // R
	regTempData  = 0x1D // R, 24-bit two's-complement, XLSB first
	regPressData = 0x20 // R, 24-bit two's-complement, XLSB first
	regOSRConfig = 0x36 // R/W
	regODRConfig = 0x37 // R/W

	// --- OSR_CONFIG fields (0x36) ---

	osrTempShift  = 0 // bits 2:0, temperature oversampling
	osrTempWidth  = 3
	osrPressShift = 3 // bits 5:3, pressure oversampling
	osrPressWidth = 3
	pressEnShift  = 6 // bit 6, pressure measurement enable
	pressEnWidth  = 1

	// --- ODR_CONFIG fields (0x37) ---

	pwrModeShift = 0 // bits 1:0, power mode
	pwrModeWidth = 2
	odrShift     = 2 // bits 6:2, output data rate code
	odrWidth     = 5
)
