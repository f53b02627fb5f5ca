// services/baro/service.go
package baro

import (
	"context"
	"time"

	"barocode-go/bus"
	"barocode-go/errcode"
	"barocode-go/types"
	"barocode-go/x/mathx"
)

// ControlReq is the payload accepted on the control topic.
type ControlReq struct {
	Method  string
	Payload any
	ReplyTo bus.Topic // optional; defaults to the service result topic
}

// ControlRes is published in response to every ControlReq.
type ControlRes struct {
	Method string
	Code   errcode.Code
	Result any
}

// Topic layout. Values and infos are retained so late subscribers see the
// last known reading immediately.
func TState(id string) bus.Topic  { return bus.T("baro", id, "state") }
func TStatus(id string) bus.Topic { return bus.T("baro", id, "status") }
func TCapInfo(id string, kind types.Kind) bus.Topic {
	return bus.T("baro", id, "cap", string(kind), "info")
}
func TCapValue(id string, kind types.Kind) bus.Topic {
	return bus.T("baro", id, "cap", string(kind), "value")
}
func TControl(id string) bus.Topic       { return bus.T("baro", id, "control", "req") }
func TControlResult(id string) bus.Topic { return bus.T("baro", id, "control", "res") }

type Config struct {
	// PollInterval between measurement batches. Default 1s, clamped to
	// 50ms..1min.
	PollInterval time.Duration
	// QueueLen for the control subscription. Default 8.
	QueueLen int
}

// Service periodically collects a measurement batch from its adaptor and
// publishes the readings as retained bus messages. It owns no goroutines
// until Start and stops with its context.
type Service struct {
	cfg  Config
	ad   Adaptor
	conn *bus.Connection
}

func New(b *bus.Bus, ad Adaptor, cfg Config) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	cfg.PollInterval = mathx.Clamp(cfg.PollInterval, 50*time.Millisecond, time.Minute)
	return &Service{
		cfg:  cfg,
		ad:   ad,
		conn: b.NewConnection("baro/" + ad.ID()),
	}
}

// Start publishes the retained capability documents and launches the poll
// loop. It returns immediately.
func (s *Service) Start(ctx context.Context) {
	id := s.ad.ID()
	for _, ci := range s.ad.Capabilities() {
		s.conn.Publish(s.conn.NewMessage(TCapInfo(id, ci.Kind), ci.Info, true))
	}
	s.setState("ready", string(errcode.OK))

	ctl := s.conn.Subscribe(TControl(id))
	go s.run(ctx, ctl)
}

func (s *Service) run(ctx context.Context, ctl *bus.Subscription) {
	tick := time.NewTicker(s.cfg.PollInterval)
	defer tick.Stop()
	defer s.conn.Disconnect()
	defer s.setState("stopped", string(errcode.OK))

	// First batch up front so subscribers don't wait a full interval.
	s.collectOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.collectOnce(ctx)
		case msg, ok := <-ctl.Channel():
			if !ok {
				return
			}
			req, okReq := msg.Payload.(ControlReq)
			if !okReq {
				s.reply(ControlReq{}, ControlRes{Code: errcode.InvalidPayload})
				continue
			}
			res, err := s.ad.Control(req.Method, req.Payload)
			code := errcode.Of(err)
			if err == ErrUnsupported {
				code = errcode.UnknownMethod
			}
			s.reply(req, ControlRes{Method: req.Method, Code: code, Result: res})
		}
	}
}

// collectOnce runs one measurement batch. A failed batch publishes a down
// status for this cycle and nothing else; the next tick starts fresh (no
// retry inside a cycle).
func (s *Service) collectOnce(ctx context.Context) {
	id := s.ad.ID()
	ts := time.Now().UnixMilli()

	sample, err := s.ad.Collect(ctx)
	if err != nil {
		s.conn.Publish(s.conn.NewMessage(TStatus(id), types.CapabilityStatus{
			Link:  types.LinkDown,
			TS:    ts,
			Error: string(errcode.Of(mapDriverErr(err))),
		}, true))
		return
	}

	for _, rd := range sample {
		s.conn.Publish(s.conn.NewMessage(TCapValue(id, rd.Kind), rd.Payload, true))
	}
	s.conn.Publish(s.conn.NewMessage(TStatus(id), types.CapabilityStatus{
		Link: types.LinkUp,
		TS:   ts,
	}, true))
}

func (s *Service) reply(req ControlReq, res ControlRes) {
	topic := req.ReplyTo
	if topic == nil {
		topic = TControlResult(s.ad.ID())
	}
	s.conn.Publish(s.conn.NewMessage(topic, res, false))
}

func (s *Service) setState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(TState(s.ad.ID()), types.ServiceState{
		Level:  level,
		Status: status,
		TS:     time.Now().UnixMilli(),
	}, true))
}
