// cmd/baro-sim/main.go
//
// Host demo: runs the full stack against a simulated BMP581 so the service
// and bus wiring can be exercised without hardware.
package main

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"barocode-go/bus"
	"barocode-go/services/baro"
	"barocode-go/services/config"
	"barocode-go/services/heartbeat"
	"barocode-go/types"
)

// ---------- Configuration ----------

const (
	pollInterval = 500 * time.Millisecond
	runFor       = 10 * time.Second

	// Simulated site: ~366 m above sea level under a standard atmosphere.
	basePressurePa = 97_000.0
	baseTempC      = 21.5
)

// ---------- Simulated BMP581 ----------

// simBMP581 answers I2C transactions like a real BMP581: chip id probe,
// byte-wide config registers, 24-bit data registers. Pressure and
// temperature wander slowly so the output is not a flat line.
type simBMP581 struct {
	mu    sync.Mutex
	regs  map[byte]byte
	start time.Time
}

func newSimBMP581() *simBMP581 {
	return &simBMP581{
		regs:  map[byte]byte{},
		start: time.Now(),
	}
}

func (s *simBMP581) pressurePa() float64 {
	t := time.Since(s.start).Seconds()
	return basePressurePa + 40*math.Sin(t/3)
}

func (s *simBMP581) temperatureC() float64 {
	t := time.Since(s.start).Seconds()
	return baseTempC + 0.2*math.Sin(t/7)
}

func (s *simBMP581) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(w) == 1 && len(r) > 0 {
		switch reg := w[0]; {
		case reg == 0x01 && len(r) == 1: // chip id
			r[0] = 0x50
		case reg == 0x1D && len(r) == 3: // temperature, 2^-16 °C per count
			put24(r, uint32(int32(s.temperatureC()*65536)))
		case reg == 0x20 && len(r) == 3: // pressure, 2^-6 Pa per count
			put24(r, uint32(int32(s.pressurePa()*64)))
		case len(r) == 1:
			r[0] = s.regs[reg]
		}
		return nil
	}
	if len(w) == 2 && len(r) == 0 {
		s.regs[w[0]] = w[1]
		return nil
	}
	return fmt.Errorf("sim: unexpected transaction (w=%d r=%d)", len(w), len(r))
}

func put24(r []byte, raw uint32) {
	r[0] = byte(raw)
	r[1] = byte(raw >> 8)
	r[2] = byte(raw >> 16)
}

// ---------- Main ----------

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), runFor)
	defer cancel()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "pico")

	b := bus.NewBus(16)

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	ad, err := baro.NewBMP581Adaptor("baro0", newSimBMP581(), 0)
	if err != nil {
		fmt.Println("probe failed:", err)
		return
	}

	svc := baro.New(b, ad, baro.Config{PollInterval: pollInterval})
	svc.Start(ctx)

	conn := b.NewConnection("baro-sim")
	defer conn.Disconnect()
	values := conn.Subscribe(bus.T("baro", "baro0", "cap", "+", "value"))
	results := conn.Subscribe(bus.T("baro-sim", "reply"))
	beats := conn.Subscribe(bus.T("heartbeat", "beat"))

	// Calibrate after a couple of samples: tell the stack we are at 366 m and
	// watch the altitude output move to match.
	calibrate := time.After(2 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return

		case <-calibrate:
			conn.Publish(conn.NewMessage(baro.TControl("baro0"), baro.ControlReq{
				Method:  baro.MethodCalibrateAltitude,
				Payload: types.AltitudeCalibrate{Metres: 366},
				ReplyTo: bus.T("baro-sim", "reply"),
			}, false))

		case msg := <-beats.Channel():
			beat := msg.Payload.(map[string]any)
			fmt.Printf("heartbeat   seq %v up %v ms\n", beat["seq"], beat["uptime_ms"])

		case msg := <-results.Channel():
			res := msg.Payload.(baro.ControlRes)
			fmt.Printf("control %s -> %s (result %v)\n", res.Method, res.Code, res.Result)

		case msg := <-values.Channel():
			switch v := msg.Payload.(type) {
			case types.PressureValue:
				fmt.Printf("pressure    %8.3f kPa\n", float64(v.Pa)/1000)
			case types.TemperatureValue:
				fmt.Printf("temperature %8.1f °C\n", float64(v.DeciC)/10)
			case types.AltitudeValue:
				fmt.Printf("altitude    %8.1f m\n", float64(v.DeciM)/10)
			}
		}
	}
}
