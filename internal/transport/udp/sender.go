// SPDX-License-Identifier: MIT

// Package udp streams tuning readings as compact binary packets over
// UDP, for visualizers and hardware displays that want a fixed-rate
// feed instead of a WebSocket subscription.
package udp

import (
	"fmt"
	"net"
	"sync"

	applog "tuner/internal/log"
)

// Sender transmits packets to a single UDP target.
type Sender struct {
	conn   *net.UDPConn
	mu     sync.Mutex // protects conn against concurrent Close
	closed bool
}

// NewSender dials the target address, e.g. "127.0.0.1:9090".
func NewSender(targetAddress string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("resolve UDP target %q: %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial UDP target %q: %w", targetAddress, err)
	}

	applog.Infof("udp: sending readings to %s", conn.RemoteAddr())
	return &Sender{conn: conn}, nil
}

// Send transmits one packet. Delivery is best-effort; errors are
// returned so the publisher can log them, but a lost packet is not
// fatal to the stream.
func (s *Sender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("udp sender is closed")
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying connection. Safe to call more than once.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close UDP connection: %w", err)
	}
	return nil
}
