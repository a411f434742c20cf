// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "tuner/internal/log"
)

// Snapshot is one point-in-time view of the tuning state, as packed
// into an outgoing packet.
type Snapshot struct {
	Cents  float32
	Freq   float32
	Level  float32
	Status uint8
}

// Source provides the latest snapshot on demand. The publisher pulls
// at its own cadence, decoupled from the analysis hop rate. ok=false
// means nothing has been published yet and no packet is sent.
type Source interface {
	Snapshot() (Snapshot, bool)
}

/*
Packet layout (BigEndian), 25 bytes:

|<-- 4 Bytes -->|<---- 8 Bytes ---->|<- 4 ->|<- 4 ->|<- 4 ->|<- 1 ->|
+---------------+-------------------+-------+-------+-------+-------+
|   Sequence    |     Timestamp     | Cents | Freq  | Level | Status|
|   (uint32)    |   (int64, ns)     | (f32) | (f32) | (f32) | (u8)  |
+---------------+-------------------+-------+-------+-------+-------+
*/

// Publisher periodically pulls a snapshot from its source, packs it
// and sends it via the Sender. Start and Stop manage the goroutine.
type Publisher struct {
	sender   *Sender
	source   Source
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // protects ticker and doneChan during Start/Stop

	sequenceNum  uint32
	packetBuffer *bytes.Buffer // reused across packets
}

// NewPublisher creates a publisher sending every interval. An invalid
// interval falls back to 33ms (~30Hz), plenty for a tuning display.
func NewPublisher(interval time.Duration, sender *Sender, source Source) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp publisher: source cannot be nil")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("udp publisher: invalid interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start launches the publishing goroutine. Calling Start while already
// running is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("udp publisher: Start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("udp publisher: started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine to exit and waits for it. Safe to call
// more than once.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("udp publisher: stopped")
	return nil
}

func (p *Publisher) buildAndSendPacket() {
	snap, ok := p.source.Snapshot()
	if !ok {
		return // nothing published yet
	}

	p.sequenceNum++
	timestamp := time.Now().UnixNano()

	p.packetBuffer.Reset()
	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, snap.Cents)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, snap.Freq)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, snap.Level)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, snap.Status)
	}
	if err != nil {
		applog.Errorf("udp publisher: packing packet: %v", err)
		return
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		applog.Debugf("udp publisher: packet %d not sent: %v", p.sequenceNum, err)
	}
}

// Close implements io.Closer by stopping the publisher.
func (p *Publisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*Publisher)(nil)
