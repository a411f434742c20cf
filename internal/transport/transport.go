// SPDX-License-Identifier: MIT

// Package transport publishes tuning readings to external consumers.
// Implementations must be safe for concurrent use and must never block
// the pipeline worker: slow consumers see dropped messages, not
// backpressure.
package transport

// Transport is a generic sink for processed readings.
type Transport interface {
	Send(data any) error
	Close() error
}

// Payload is the JSON shape published to WebSocket clients. Timestamp
// is nanoseconds since the Unix epoch.
type Payload struct {
	Note      string  `json:"note"`
	Freq      float64 `json:"freq"`
	Cents     float64 `json:"cents"`
	Status    string  `json:"status"`
	Level     float64 `json:"level"`
	Timestamp int64   `json:"timestamp_ns"`
}
