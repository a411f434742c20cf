// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"
)

type staticSource struct {
	snap Snapshot
	ok   bool
}

func (s *staticSource) Snapshot() (Snapshot, bool) { return s.snap, s.ok }

func TestPublisherSendsPackets(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	source := &staticSource{
		snap: Snapshot{Cents: -3.5, Freq: 109.78, Level: 0.42, Status: 1},
		ok:   true,
	}
	pub, err := NewPublisher(5*time.Millisecond, sender, source)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	pub.Start()
	defer pub.Stop()

	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 25 {
		t.Fatalf("packet size = %d, want 25", n)
	}

	seq := binary.BigEndian.Uint32(buf[0:4])
	if seq == 0 {
		t.Error("sequence number should start at 1")
	}
	ts := int64(binary.BigEndian.Uint64(buf[4:12]))
	if ts <= 0 {
		t.Errorf("timestamp = %d, want positive", ts)
	}
	cents := float32FromBits(buf[12:16])
	if cents != -3.5 {
		t.Errorf("cents = %v, want -3.5", cents)
	}
	freq := float32FromBits(buf[16:20])
	if freq != 109.78 {
		t.Errorf("freq = %v, want 109.78", freq)
	}
	level := float32FromBits(buf[20:24])
	if level != 0.42 {
		t.Errorf("level = %v, want 0.42", level)
	}
	if buf[24] != 1 {
		t.Errorf("status = %d, want 1", buf[24])
	}
}

func TestPublisherSkipsEmptySource(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	pub, err := NewPublisher(time.Millisecond, sender, &staticSource{ok: false})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	pub.Start()
	time.Sleep(20 * time.Millisecond)
	pub.Stop()

	listener.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	buf := make([]byte, 64)
	if _, _, err := listener.ReadFromUDP(buf); err == nil {
		t.Error("packet sent despite empty source")
	}
}

func TestPublisherStopIdempotent(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	sender, err := NewSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	pub, err := NewPublisher(time.Millisecond, sender, &staticSource{ok: true})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	if err := pub.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
	pub.Start()
	if err := pub.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := pub.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func float32FromBits(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}
