package bmp581

import "math"

// International barometric formula constants.
const (
	baroScaleM = 44330.0
	baroExp    = 5.255
)

// Altitude estimates altitude in metres above sea level from a live pressure
// reading and the stored sea-level reference.
func (d *Device) Altitude() (float64, error) {
	p, err := d.Pressure()
	if err != nil {
		return 0, err
	}
	return baroScaleM * (1.0 - math.Pow(p*1000/d.seaLevelPa, 1.0/baroExp)), nil
}

// SetAltitude calibrates the sea-level reference from a known current
// altitude in metres (e.g. from GPS), using the live pressure reading at the
// moment of the call.
func (d *Device) SetAltitude(metres float64) error {
	p, err := d.Pressure()
	if err != nil {
		return err
	}
	d.seaLevelPa = p * 1000 / math.Pow(1.0-metres/baroScaleM, baroExp)
	return nil
}

// SeaLevelPressure returns the stored reference in kPa.
func (d *Device) SeaLevelPressure() float64 { return d.seaLevelPa / 1000 }

// SetSeaLevelPressure sets the reference in kPa. The reference must be
// positive for the barometric formula to hold.
func (d *Device) SetSeaLevelPressure(kPa float64) error {
	if kPa <= 0 {
		return ErrInvalidConfig
	}
	d.seaLevelPa = kPa * 1000
	return nil
}
