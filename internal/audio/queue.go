// SPDX-License-Identifier: MIT

// Package audio owns real-time capture: the PortAudio input stream, the
// hand-off queue between the capture callback and the pipeline worker,
// level metering and optional WAV recording.
//
// The capture callback runs on a PortAudio thread and must never block
// or allocate. All buffers are pre-allocated at construction and cycle
// between a free list and a ready queue.
package audio

import (
	"sync/atomic"
)

// BlockQueue hands sample blocks from the capture callback to the
// pipeline worker. Capacity is fixed; when the worker falls behind,
// the oldest pending block is dropped so the queue always holds the
// most recent audio. Enqueue never blocks and never allocates.
//
// Single producer (the callback), single consumer (the worker).
type BlockQueue struct {
	ready   chan []float32
	free    chan []float32
	dropped atomic.Uint64
	closed  atomic.Bool
}

// NewBlockQueue pre-allocates depth buffers of blockSize samples each.
func NewBlockQueue(depth, blockSize int) *BlockQueue {
	q := &BlockQueue{
		ready: make(chan []float32, depth),
		free:  make(chan []float32, depth),
	}
	for range depth {
		q.free <- make([]float32, blockSize)
	}
	return q
}

// Enqueue copies samples into a pooled buffer and queues it. When no
// free buffer is available the oldest ready block is recycled in its
// place; that block is lost and counted in Dropped.
func (q *BlockQueue) Enqueue(samples []float32) {
	if q.closed.Load() || len(samples) == 0 {
		return
	}

	var buf []float32
	select {
	case buf = <-q.free:
	default:
		// Worker is behind: sacrifice the oldest pending block.
		select {
		case buf = <-q.ready:
			q.dropped.Add(1)
		default:
			// Consumer raced us to the last block; try free again.
			select {
			case buf = <-q.free:
			default:
				q.dropped.Add(1)
				return
			}
		}
	}

	n := copy(buf[:cap(buf)], samples)
	select {
	case q.ready <- buf[:n]:
	default:
		// Only possible if producers race, which the contract forbids.
		q.free <- buf[:cap(buf)]
		q.dropped.Add(1)
	}
}

// Dequeue blocks until a block is ready or the queue is closed. The
// returned buffer must be handed back via Recycle once processed.
func (q *BlockQueue) Dequeue() ([]float32, bool) {
	buf, ok := <-q.ready
	return buf, ok
}

// Recycle returns a buffer obtained from Dequeue to the free list.
func (q *BlockQueue) Recycle(buf []float32) {
	if buf == nil {
		return
	}
	select {
	case q.free <- buf[:cap(buf)]:
	default:
	}
}

// Dropped reports how many blocks have been discarded so far.
func (q *BlockQueue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close stops the queue. Must be called only after the producer has
// stopped. Pending blocks are still delivered; Dequeue returns
// ok=false once drained.
func (q *BlockQueue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.ready)
	}
}
