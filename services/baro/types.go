// services/baro/types.go
package baro

import (
	"context"

	"barocode-go/types"
)

// Reading is one datum for one capability kind.
type Reading struct {
	Kind    types.Kind // e.g. "pressure", "temperature", "altitude"
	Payload any        // JSON-serialisable payload (fixed-point struct)
	TsMs    int64      // producer timestamp
}

// Sample is a batch of readings collected together.
type Sample []Reading

// CapInfo describes one capability's retained info document.
type CapInfo struct {
	Kind types.Kind
	Info types.Info
}

// Adaptor owns a concrete device/driver and exposes generic hooks.
// Adaptors must NOT touch the bus or spawn goroutines.
type Adaptor interface {
	ID() string
	// Static capability descriptions (published as retained).
	Capabilities() []CapInfo
	// Collect performs one synchronous measurement batch. The BMP581 free-runs
	// in NORMAL mode, so there is no trigger/collect split here.
	Collect(ctx context.Context) (Sample, error)
	// Control dispatches a driver-specific method. Unknown methods return
	// (nil, ErrUnsupported).
	Control(method string, payload any) (result any, err error)
}

// ErrUnsupported for adaptor Control pass-through.
var ErrUnsupported = errUnsupported{}

type errUnsupported struct{}

func (errUnsupported) Error() string { return "unsupported" }
