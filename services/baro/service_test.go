// services/baro/service_test.go
package baro

import (
	"context"
	"testing"
	"time"

	"barocode-go/bus"
	"barocode-go/errcode"
	"barocode-go/types"
)

func awaitMessage(t *testing.T, sub *bus.Subscription, timeout time.Duration) *bus.Message {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		return msg
	case <-time.After(timeout):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestServicePublishesRetainedReadings(t *testing.T) {
	ad, _ := newTestAdaptor(t)
	b := bus.NewBus(16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(b, ad, Config{PollInterval: 20 * time.Millisecond})
	svc.Start(ctx)

	conn := b.NewConnection("test")
	defer conn.Disconnect()
	sub := conn.Subscribe(bus.T("baro", "baro0", "cap", "+", "value"))

	seen := map[types.Kind]any{}
	deadline := time.After(time.Second)
	for len(seen) < 3 {
		select {
		case msg := <-sub.Channel():
			kind := types.Kind(msg.Topic.At(3))
			seen[kind] = msg.Payload
		case <-deadline:
			t.Fatalf("timed out with %d kinds seen: %v", len(seen), seen)
		}
	}

	if v, ok := seen[types.KindPressure].(types.PressureValue); !ok || v.Pa != 100_000 {
		t.Fatalf("pressure = %#v (want 100000 Pa)", seen[types.KindPressure])
	}
	if v, ok := seen[types.KindTemperature].(types.TemperatureValue); !ok || v.DeciC != 240 {
		t.Fatalf("temperature = %#v (want 240 deci-°C)", seen[types.KindTemperature])
	}

	// Readings are retained: a late subscriber gets them without waiting for
	// the next poll.
	late := conn.Subscribe(TCapValue("baro0", types.KindPressure))
	msg := awaitMessage(t, late, 100*time.Millisecond)
	if v, ok := msg.Payload.(types.PressureValue); !ok || v.Pa != 100_000 {
		t.Fatalf("retained pressure = %#v", msg.Payload)
	}
}

func TestServicePublishesCapInfoAndState(t *testing.T) {
	ad, _ := newTestAdaptor(t)
	b := bus.NewBus(16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(b, ad, Config{PollInterval: time.Hour}) // clamped to 1 minute; no tick during test
	svc.Start(ctx)

	conn := b.NewConnection("test")
	defer conn.Disconnect()

	info := awaitMessage(t, conn.Subscribe(TCapInfo("baro0", types.KindPressure)), 100*time.Millisecond)
	doc, ok := info.Payload.(types.Info)
	if !ok || doc.Driver != "bmp581" {
		t.Fatalf("cap info = %#v", info.Payload)
	}

	state := awaitMessage(t, conn.Subscribe(TState("baro0")), 100*time.Millisecond)
	st, ok := state.Payload.(types.ServiceState)
	if !ok || st.Level != "ready" {
		t.Fatalf("state = %#v", state.Payload)
	}

	status := awaitMessage(t, conn.Subscribe(TStatus("baro0")), time.Second)
	cs, ok := status.Payload.(types.CapabilityStatus)
	if !ok || cs.Link != types.LinkUp {
		t.Fatalf("status = %#v", status.Payload)
	}
}

func TestServiceControlRoundTrip(t *testing.T) {
	ad, f := newTestAdaptor(t)
	b := bus.NewBus(16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(b, ad, Config{PollInterval: time.Minute})
	svc.Start(ctx)

	conn := b.NewConnection("test")
	defer conn.Disconnect()
	reply := bus.T("test", "reply")
	sub := conn.Subscribe(reply)

	conn.Publish(conn.NewMessage(TControl("baro0"), ControlReq{
		Method:  MethodSetOutputDataRate,
		Payload: types.DataRateSet{Rate: 12},
		ReplyTo: reply,
	}, false))

	msg := awaitMessage(t, sub, time.Second)
	res, ok := msg.Payload.(ControlRes)
	if !ok || res.Code != errcode.OK {
		t.Fatalf("control result = %#v (want ok)", msg.Payload)
	}
	if got := (f.regs[regODRConfig] >> 2) & 0x1F; got != 12 {
		t.Fatalf("odr bits = %d (want 12)", got)
	}

	// Invalid value reports invalid_params on the reply topic.
	conn.Publish(conn.NewMessage(TControl("baro0"), ControlReq{
		Method:  MethodSetOutputDataRate,
		Payload: types.DataRateSet{Rate: 99},
		ReplyTo: reply,
	}, false))

	msg = awaitMessage(t, sub, time.Second)
	res, ok = msg.Payload.(ControlRes)
	if !ok || res.Code != errcode.InvalidParams {
		t.Fatalf("control result = %#v (want invalid_params)", msg.Payload)
	}

	// Unknown methods are reported, not dropped.
	conn.Publish(conn.NewMessage(TControl("baro0"), ControlReq{
		Method:  "reboot",
		ReplyTo: reply,
	}, false))

	msg = awaitMessage(t, sub, time.Second)
	res, ok = msg.Payload.(ControlRes)
	if !ok || res.Code != errcode.UnknownMethod {
		t.Fatalf("control result = %#v (want unknown_method)", msg.Payload)
	}
}

func TestServiceReportsCollectFailure(t *testing.T) {
	f := newFakeBMP581()
	f.setData24(regTempData, 0)
	f.setData24(regPressData, 101_325*64)

	ad, err := NewBMP581Adaptor("baro0", f, 0)
	if err != nil {
		t.Fatalf("new adaptor: %v", err)
	}

	b := bus.NewBus(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Break the transport after a successful probe.
	f.fail = true

	svc := New(b, ad, Config{PollInterval: 20 * time.Millisecond})
	svc.Start(ctx)

	conn := b.NewConnection("test")
	defer conn.Disconnect()
	status := awaitMessage(t, conn.Subscribe(TStatus("baro0")), time.Second)
	cs, ok := status.Payload.(types.CapabilityStatus)
	if !ok || cs.Link != types.LinkDown {
		t.Fatalf("status = %#v (want link down)", status.Payload)
	}
	if cs.Error != string(errcode.Transport) {
		t.Fatalf("status error = %q (want transport)", cs.Error)
	}
}
