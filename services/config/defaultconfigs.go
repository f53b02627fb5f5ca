package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "baro": {
      "poll_interval_ms": 1000
  },
  "uplink": {
      "transport": {
          "type": "uart",
          "uart": {
              "baud": 115200,
              "rx_pin": 1,
              "tx_pin": 0
          }
      },
      "match": ["baro", "#"]
  },
  "heartbeat": {
      "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}
