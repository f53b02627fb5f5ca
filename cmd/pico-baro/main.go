//go:build rp2040

// cmd/pico-baro/main.go
//
// Pico firmware entry point: BMP581 on I2C0, readings forwarded off-board
// by the uplink service over UART0 and echoed on the USB console.
package main

import (
	"context"
	"io"
	"time"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"barocode-go/bus"
	"barocode-go/services/baro"
	"barocode-go/services/config"
	"barocode-go/services/heartbeat"
	"barocode-go/services/uplink"
	"barocode-go/types"
)

const (
	deviceID = "pico"
	i2cFreq  = 400_000

	pollInterval = time.Second
)

// tiny helpers (no fmt)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	sign := ""
	if i < 0 {
		sign = "-"
		i = -i
	}
	var buf [32]byte
	b := len(buf)
	for i > 0 {
		b--
		buf[b] = byte('0' + (i % 10))
		i /= 10
	}
	if sign != "" {
		b--
		buf[b] = '-'
	}
	return string(buf[b:])
}

// deci formats tenths-of-unit fixed point, e.g. 231 -> "23.1".
func deci(v int32) string {
	whole := itoa(int(v / 10))
	frac := int(v % 10)
	if frac < 0 {
		frac = -frac
	}
	return whole + "." + itoa(frac)
}

// uartLink adapts a configured uartx UART to the io.ReadWriteCloser the
// uplink expects. Close is a no-op: the UART peripheral stays up.
type uartLink struct {
	u *uartx.UART
}

func (l *uartLink) Read(p []byte) (int, error)  { return l.u.RecvSomeContext(context.Background(), p) }
func (l *uartLink) Write(p []byte) (int, error) { return l.u.Write(p) }
func (l *uartLink) Close() error                { return nil }

func dialUART(ctx context.Context, cfg uplink.UARTConfig) (io.ReadWriteCloser, error) {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: uint32(cfg.Baud),
		TX:       machine.Pin(cfg.TxPin),
		RX:       machine.Pin(cfg.RxPin),
	}); err != nil {
		return nil, err
	}
	return &uartLink{u: u}, nil
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		SDA:       machine.GPIO4,
		SCL:       machine.GPIO5,
		Frequency: i2cFreq,
	}); err != nil {
		println("i2c configure failed:", err.Error())
		return
	}

	ad, err := baro.NewBMP581Adaptor("baro0", i2c, 0)
	if err != nil {
		// Most likely no BMP581 at 0x47; nothing to do without the sensor.
		println("bmp581 probe failed:", err.Error())
		return
	}

	uplink.UARTDial = dialUART

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)

	b := bus.NewBus(8)
	svc := baro.New(b, ad, baro.Config{PollInterval: pollInterval})
	svc.Start(ctx)

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	go uplink.Start(ctx, b.NewConnection("uplink"))

	// Config goes out last so every consumer is already subscribed.
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	conn := b.NewConnection("pico-baro")
	values := conn.Subscribe(bus.T("baro", "baro0", "cap", "+", "value"))

	for msg := range values.Channel() {
		switch v := msg.Payload.(type) {
		case types.PressureValue:
			println("P " + itoa(int(v.Pa)) + " Pa")
		case types.TemperatureValue:
			println("T " + deci(v.DeciC) + " C")
		case types.AltitudeValue:
			println("A " + deci(v.DeciM) + " m")
		}
	}
}
