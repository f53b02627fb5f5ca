// Package bmp581 provides a minimal TinyGo driver for the Bosch BMP581
// barometric pressure/temperature sensor.
//
// Design notes (datasheet references):
// • I2C register sub-addressing; config fields are sub-byte, masked in software.
// • Raw samples are 24-bit two's-complement, XLSB/LSB/MSB byte order.
// • Temperature LSB = 2^-16 °C; pressure LSB = 2^-6 Pa.
// • No data-ready handshake is modelled; reads return the latest data registers.
// • Setters validate before any bus traffic, so an out-of-range value never
//   results in a partial write.

package bmp581

import (
	"errors"

	"tinygo.org/x/drivers"

	"barocode-go/x/mathx"
)

// ---------------- Top level vars ----------------

var (
	// Sentinel errors (TinyGo-safe; no fmt)
	ErrDeviceNotFound = errors.New("bmp581: chip id mismatch")
	ErrInvalidConfig  = errors.New("bmp581: value out of range for field")
)

// ---------------- Types and configuration ----------------

type PowerMode uint8

const (
	Standby PowerMode = 0x00
	Normal  PowerMode = 0x01 // continuous conversion at the output data rate
	Forced  PowerMode = 0x02
	NonStop PowerMode = 0x03
)

var powerModeNames = [...]string{"STANDBY", "NORMAL", "FORCED", "NON_STOP"}

func (m PowerMode) String() string {
	if int(m) < len(powerModeNames) {
		return powerModeNames[m]
	}
	return "INVALID"
}

// Oversample selects the hardware oversampling factor; each step doubles it.
type Oversample uint8

const (
	OSR1 Oversample = iota
	OSR2
	OSR4
	OSR8
	OSR16
	OSR32
	OSR64
	OSR128
)

var oversampleNames = [...]string{"OSR1", "OSR2", "OSR4", "OSR8", "OSR16", "OSR32", "OSR64", "OSR128"}

func (o Oversample) String() string {
	if int(o) < len(oversampleNames) {
		return oversampleNames[o]
	}
	return "INVALID"
}

// Factor returns the averaging factor, e.g. 128 for OSR128.
func (o Oversample) Factor() int { return 1 << o }

type Config struct {
	// Address defaults to 0x47 if zero.
	Address uint16
	// SeaLevelPressure seeds the altitude reference in kPa.
	// Defaults to 101.325 (standard atmosphere) if zero.
	SeaLevelPressure float64
}

// Device wraps an I2C connection to a BMP581. The bus handle is borrowed;
// the caller owns its lifetime and serialises access to it.
type Device struct {
	bus  drivers.I2C
	addr uint16

	// Sea-level reference held in Pa; exposed in kPa.
	seaLevelPa float64

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [3]byte
}

// New creates a new BMP581 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not
// touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:        bus,
		addr:       AddressDefault,
		seaLevelPa: 101_325.0,
	}
}

// Configure probes the chip and applies this driver's power-on state:
// NORMAL power mode with the pressure measurement path enabled.
//
// ErrDeviceNotFound is returned when the CHIP_ID readback is not 0x50;
// no further registers are touched in that case and the Device must not
// be used. There is no retry.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.addr = cfg.Address
	}
	if cfg.SeaLevelPressure > 0 {
		d.seaLevelPa = cfg.SeaLevelPressure * 1000
	}

	id, err := d.readByte(regChipID)
	if err != nil {
		return err
	}
	if id != DeviceID {
		return ErrDeviceNotFound
	}

	if err := d.SetPressureEnabled(true); err != nil {
		return err
	}
	return d.SetPowerMode(Normal)
}

// ---------------- Configuration accessors ----------------

// PowerMode reads the current power mode. The field is exactly two bits, so
// the result is always one of the four defined modes.
func (d *Device) PowerMode() (PowerMode, error) {
	v, err := d.readBits(regODRConfig, pwrModeShift, pwrModeWidth)
	return PowerMode(v), err
}

func (d *Device) SetPowerMode(m PowerMode) error {
	if m > NonStop {
		return ErrInvalidConfig
	}
	return d.updateBits(regODRConfig, pwrModeShift, pwrModeWidth, uint8(m))
}

func (d *Device) PressureOversample() (Oversample, error) {
	v, err := d.readBits(regOSRConfig, osrPressShift, osrPressWidth)
	return Oversample(v), err
}

func (d *Device) SetPressureOversample(o Oversample) error {
	if o > OSR128 {
		return ErrInvalidConfig
	}
	return d.updateBits(regOSRConfig, osrPressShift, osrPressWidth, uint8(o))
}

func (d *Device) TemperatureOversample() (Oversample, error) {
	v, err := d.readBits(regOSRConfig, osrTempShift, osrTempWidth)
	return Oversample(v), err
}

func (d *Device) SetTemperatureOversample(o Oversample) error {
	if o > OSR128 {
		return ErrInvalidConfig
	}
	return d.updateBits(regOSRConfig, osrTempShift, osrTempWidth, uint8(o))
}

// OutputDataRate returns the raw 5-bit rate code (0..31). The mapping to a
// sampling frequency is datasheet-defined and intentionally left opaque.
func (d *Device) OutputDataRate() (uint8, error) {
	return d.readBits(regODRConfig, odrShift, odrWidth)
}

func (d *Device) SetOutputDataRate(code int) error {
	if !mathx.Between(code, 0, 31) {
		return ErrInvalidConfig
	}
	return d.updateBits(regODRConfig, odrShift, odrWidth, uint8(code))
}

// PressureEnabled reports whether the pressure measurement path is on. It is
// a plain read-write bit with no coupling to other fields.
func (d *Device) PressureEnabled() (bool, error) {
	v, err := d.readBits(regOSRConfig, pressEnShift, pressEnWidth)
	return v != 0, err
}

func (d *Device) SetPressureEnabled(on bool) error {
	var v uint8
	if on {
		v = 1
	}
	return d.updateBits(regOSRConfig, pressEnShift, pressEnWidth, v)
}

// ---------------- Measurements ----------------

// Temperature returns the temperature in °C. Each call performs a fresh bus
// transaction; nothing is cached.
func (d *Device) Temperature() (float64, error) {
	raw, err := d.readU24(regTempData)
	if err != nil {
		return 0, err
	}
	return float64(twosComplement(raw, 24)) / (1 << 16), nil
}

// Pressure returns the pressure in kPa. The sensor's native scale is
// 2^-6 Pa per LSB; the extra /1000 converts Pa to kPa.
func (d *Device) Pressure() (float64, error) {
	raw, err := d.readU24(regPressData)
	if err != nil {
		return 0, err
	}
	return float64(twosComplement(raw, 24)) / (1 << 6) / 1000.0, nil
}
