// services/baro/adaptor_bmp581.go
package baro

import (
	"context"
	"math"
	"time"

	"tinygo.org/x/drivers"

	"barocode-go/drivers/bmp581"
	"barocode-go/errcode"
	"barocode-go/types"
)

// Control methods understood by the BMP581 adaptor.
const (
	MethodSetPowerMode      = "set_power_mode"
	MethodSetPressureOSR    = "set_pressure_oversample"
	MethodSetTemperatureOSR = "set_temperature_oversample"
	MethodSetOutputDataRate = "set_output_data_rate"
	MethodSetSeaLevel       = "set_sea_level"
	MethodCalibrateAltitude = "calibrate_altitude"
)

type bmp581Adaptor struct {
	id   string
	dev  *bmp581.Device
	info types.BaroInfo
}

// NewBMP581Adaptor probes and initialises a BMP581 on the given bus. The
// probe is the only fallible step: bmp581.ErrDeviceNotFound means nothing is
// listening at the address (or it is not a BMP581), and there is no retry.
func NewBMP581Adaptor(id string, i2c drivers.I2C, addr uint16) (Adaptor, error) {
	if addr == 0 {
		addr = bmp581.AddressDefault
	}
	dev := bmp581.New(i2c)
	if err := dev.Configure(bmp581.Config{Address: addr}); err != nil {
		return nil, err
	}
	return &bmp581Adaptor{
		id:   id,
		dev:  dev,
		info: types.BaroInfo{Sensor: "bmp581", Addr: addr},
	}, nil
}

func (a *bmp581Adaptor) ID() string { return a.id }

func (a *bmp581Adaptor) Capabilities() []CapInfo {
	mk := func(kind types.Kind, unit string, precision float64) CapInfo {
		return CapInfo{
			Kind: kind,
			Info: types.Info{
				SchemaVersion: 1,
				Driver:        "bmp581",
				Detail:        map[string]any{"unit": unit, "precision": precision, "addr": a.info.Addr},
			},
		}
	}
	return []CapInfo{
		mk(types.KindPressure, "Pa", 1),
		mk(types.KindTemperature, "C", 0.1),
		mk(types.KindAltitude, "m", 0.1),
	}
}

// Collect reads temperature, pressure and the derived altitude. Each value
// is a live register read; a transport failure aborts the whole batch.
func (a *bmp581Adaptor) Collect(ctx context.Context) (Sample, error) {
	temp, err := a.dev.Temperature()
	if err != nil {
		return nil, err
	}
	press, err := a.dev.Pressure()
	if err != nil {
		return nil, err
	}
	alt, err := a.dev.Altitude()
	if err != nil {
		return nil, err
	}

	ts := time.Now().UnixMilli()
	return Sample{
		{Kind: types.KindPressure, Payload: types.PressureValue{Pa: round32(press * 1000)}, TsMs: ts},
		{Kind: types.KindTemperature, Payload: types.TemperatureValue{DeciC: round32(temp * 10)}, TsMs: ts},
		{Kind: types.KindAltitude, Payload: types.AltitudeValue{DeciM: round32(alt * 10)}, TsMs: ts},
	}, nil
}

// Control dispatches configuration methods. Payload validation happens here
// and range validation in the driver; either way an invalid request never
// reaches the chip.
func (a *bmp581Adaptor) Control(method string, payload any) (any, error) {
	switch method {
	case MethodSetPowerMode:
		p, ok := payload.(types.PowerModeSet)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, mapDriverErr(a.dev.SetPowerMode(bmp581.PowerMode(p.Mode)))

	case MethodSetPressureOSR:
		p, ok := payload.(types.OversampleSet)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, mapDriverErr(a.dev.SetPressureOversample(bmp581.Oversample(p.Rate)))

	case MethodSetTemperatureOSR:
		p, ok := payload.(types.OversampleSet)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, mapDriverErr(a.dev.SetTemperatureOversample(bmp581.Oversample(p.Rate)))

	case MethodSetOutputDataRate:
		p, ok := payload.(types.DataRateSet)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, mapDriverErr(a.dev.SetOutputDataRate(p.Rate))

	case MethodSetSeaLevel:
		p, ok := payload.(types.SeaLevelSet)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, mapDriverErr(a.dev.SetSeaLevelPressure(p.KPa))

	case MethodCalibrateAltitude:
		p, ok := payload.(types.AltitudeCalibrate)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		if err := a.dev.SetAltitude(p.Metres); err != nil {
			return nil, mapDriverErr(err)
		}
		// Report the recomputed reference so callers can persist it.
		return types.SeaLevelSet{KPa: a.dev.SeaLevelPressure()}, nil

	default:
		return nil, ErrUnsupported
	}
}

// mapDriverErr classifies driver errors into bus-facing codes. Transport
// errors keep their cause attached.
func mapDriverErr(err error) error {
	switch err {
	case nil:
		return nil
	case bmp581.ErrInvalidConfig:
		return errcode.InvalidParams
	case bmp581.ErrDeviceNotFound:
		return errcode.DeviceNotFound
	default:
		return &errcode.E{C: errcode.Transport, Err: err}
	}
}

func round32(v float64) int32 { return int32(math.Round(v)) }
