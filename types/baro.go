package types

// ------------------------
// Barometric readings
// ------------------------

type BaroInfo struct {
	Sensor string `json:"sensor"` // "bmp581", ...
	Addr   uint16 `json:"addr"`   // I2C address
	Bus    string `json:"bus"`    // "i2c0", ...
}

type PressureValue struct {
	// Whole pascals (kPa x1000, e.g. 101325 => 101.325 kPa).
	Pa int32 `json:"pa"`
}

type TemperatureValue struct {
	// Tenths of °C (e.g. 231 => 23.1°C).
	DeciC int32 `json:"deci_c"`
}

type AltitudeValue struct {
	// Tenths of metres above the sea-level reference.
	DeciM int32 `json:"deci_m"`
}

// ---- Control payloads ----

type PowerModeSet struct {
	Mode uint8 `json:"mode"` // 0..3
}

type OversampleSet struct {
	Rate uint8 `json:"rate"` // 0..7, power-of-two factor
}

type DataRateSet struct {
	Rate int `json:"rate"` // 0..31, chip-defined code
}

type SeaLevelSet struct {
	KPa float64 `json:"kpa"`
}

type AltitudeCalibrate struct {
	Metres float64 `json:"metres"` // known altitude, e.g. from GPS
}
