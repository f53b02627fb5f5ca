// Package heartbeat publishes a periodic retained liveness beat so other
// services (and the uplink peer) can tell the node is running and for how
// long. The interval is adjustable at runtime via config/heartbeat.
package heartbeat

import (
	"context"
	"time"

	"barocode-go/bus"
)

var (
	topicConfigHeartbeat = bus.Topic{"config", "heartbeat"}
	topicBeat            = bus.Topic{"heartbeat", "beat"}
)

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	started := time.Now()
	var seq uint32

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	beat := func() {
		seq++
		conn.Publish(conn.NewMessage(topicBeat, map[string]any{
			"seq":       seq,
			"uptime_ms": time.Since(started).Milliseconds(),
		}, true))
	}

	beat() // first beat immediately so late subscribers see uptime at once

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			beat()
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"]; ok {
					if interval, ok := iv.(float64); ok && interval > 0 {
						tick.Reset(time.Duration(interval * float64(time.Second)))
					}
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
