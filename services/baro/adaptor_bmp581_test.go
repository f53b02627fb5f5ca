// services/baro/adaptor_bmp581_test.go
package baro

import (
	"context"
	"errors"
	"testing"

	"tinygo.org/x/drivers"

	"barocode-go/errcode"
	"barocode-go/types"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

// Scripted BMP581-like fake: register file plus 24-bit data registers.
type fakeI2C struct {
	chipID byte
	regs   map[byte]byte
	data   map[byte][3]byte
	writes int
	fail   bool // when set, every transaction errors
}

const (
	regChipID    = 0x01
	regTempData  = 0x1D
	regPressData = 0x20
	regOSRConfig = 0x36
	regODRConfig = 0x37
)

func newFakeBMP581() *fakeI2C {
	return &fakeI2C{
		chipID: 0x50,
		regs:   map[byte]byte{},
		data:   map[byte][3]byte{},
	}
}

func (f *fakeI2C) setData24(reg byte, raw uint32) {
	f.data[reg] = [3]byte{byte(raw), byte(raw >> 8), byte(raw >> 16)}
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.fail {
		return errors.New("i2c: nack")
	}
	if len(w) == 1 && len(r) > 0 {
		reg := w[0]
		switch {
		case reg == regChipID && len(r) == 1:
			r[0] = f.chipID
		case len(r) == 3:
			d := f.data[reg]
			copy(r, d[:])
		case len(r) == 1:
			r[0] = f.regs[reg]
		}
		return nil
	}
	if len(w) == 2 && len(r) == 0 {
		f.writes++
		f.regs[w[0]] = w[1]
		return nil
	}
	return errors.New("unexpected transaction shape")
}

func newTestAdaptor(t *testing.T) (Adaptor, *fakeI2C) {
	t.Helper()
	f := newFakeBMP581()
	// 24.0°C and 100 kPa.
	f.setData24(regTempData, 24<<16)
	f.setData24(regPressData, 100_000*64)

	ad, err := NewBMP581Adaptor("baro0", f, 0)
	if err != nil {
		t.Fatalf("new adaptor: %v", err)
	}
	return ad, f
}

func TestAdaptorProbeFailure(t *testing.T) {
	f := newFakeBMP581()
	f.chipID = 0x00

	if _, err := NewBMP581Adaptor("baro0", f, 0); err == nil {
		t.Fatal("expected probe failure for wrong chip id")
	}
	if f.writes != 0 {
		t.Fatalf("observed %d writes after failed probe (want 0)", f.writes)
	}
}

func TestAdaptorCollect(t *testing.T) {
	ad, _ := newTestAdaptor(t)

	sample, err := ad.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	got := map[types.Kind]any{}
	for _, rd := range sample {
		got[rd.Kind] = rd.Payload
	}

	if v, ok := got[types.KindTemperature].(types.TemperatureValue); !ok || v.DeciC != 240 {
		t.Fatalf("temperature payload = %#v (want 240 deci-°C)", got[types.KindTemperature])
	}
	if v, ok := got[types.KindPressure].(types.PressureValue); !ok || v.Pa != 100_000 {
		t.Fatalf("pressure payload = %#v (want 100000 Pa)", got[types.KindPressure])
	}
	// 100 kPa under a standard atmosphere is a bit over 100 m up.
	if v, ok := got[types.KindAltitude].(types.AltitudeValue); !ok || v.DeciM < 500 || v.DeciM > 3000 {
		t.Fatalf("altitude payload = %#v (want plausible deci-metres)", got[types.KindAltitude])
	}
}

func TestAdaptorControlValidation(t *testing.T) {
	ad, f := newTestAdaptor(t)
	writes := f.writes

	// Out-of-range values map to invalid_params and never reach the chip.
	if _, err := ad.Control(MethodSetOutputDataRate, types.DataRateSet{Rate: 40}); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("odr 40 error = %v (want invalid_params)", err)
	}
	if _, err := ad.Control(MethodSetPowerMode, types.PowerModeSet{Mode: 4}); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("power mode 4 error = %v (want invalid_params)", err)
	}
	if f.writes != writes {
		t.Fatal("rejected control reached the bus")
	}

	// Wrong payload shape maps to invalid_payload.
	if _, err := ad.Control(MethodSetPowerMode, "NORMAL"); errcode.Of(err) != errcode.InvalidPayload {
		t.Fatalf("payload error = %v (want invalid_payload)", err)
	}

	// Unknown method.
	if _, err := ad.Control("self_destruct", nil); err != ErrUnsupported {
		t.Fatalf("unknown method error = %v (want ErrUnsupported)", err)
	}
}

func TestAdaptorControlApplies(t *testing.T) {
	ad, f := newTestAdaptor(t)

	if _, err := ad.Control(MethodSetPowerMode, types.PowerModeSet{Mode: 2}); err != nil {
		t.Fatalf("set power mode: %v", err)
	}
	if got := f.regs[regODRConfig] & 0x03; got != 2 {
		t.Fatalf("power mode bits = %d (want FORCED)", got)
	}

	if _, err := ad.Control(MethodSetPressureOSR, types.OversampleSet{Rate: 7}); err != nil {
		t.Fatalf("set pressure oversample: %v", err)
	}
	if got := (f.regs[regOSRConfig] >> 3) & 0x07; got != 7 {
		t.Fatalf("pressure oversample bits = %d (want 7)", got)
	}
}

func TestAdaptorCalibrateAltitude(t *testing.T) {
	ad, _ := newTestAdaptor(t)

	// Claiming the current spot is at sea level pulls the reference down to
	// the live 100 kPa reading.
	res, err := ad.Control(MethodCalibrateAltitude, types.AltitudeCalibrate{Metres: 0})
	if err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	slp, ok := res.(types.SeaLevelSet)
	if !ok {
		t.Fatalf("calibrate result type: %T", res)
	}
	if slp.KPa < 99.999 || slp.KPa > 100.001 {
		t.Fatalf("recomputed reference = %v kPa (want ~100)", slp.KPa)
	}
}
