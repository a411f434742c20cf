// SPDX-License-Identifier: MIT
package audio

import "testing"

func TestQueueDeliversInOrder(t *testing.T) {
	q := NewBlockQueue(4, 2)

	q.Enqueue([]float32{1, 1})
	q.Enqueue([]float32{2, 2})
	q.Enqueue([]float32{3, 3})

	for want := float32(1); want <= 3; want++ {
		buf, ok := q.Dequeue()
		if !ok {
			t.Fatal("queue closed unexpectedly")
		}
		if buf[0] != want {
			t.Fatalf("dequeued %v, want %v", buf[0], want)
		}
		q.Recycle(buf)
	}
}

func TestQueueCopiesSamples(t *testing.T) {
	q := NewBlockQueue(2, 4)

	src := []float32{1, 2, 3, 4}
	q.Enqueue(src)
	src[0] = 99 // caller may reuse its buffer immediately

	buf, _ := q.Dequeue()
	if buf[0] != 1 {
		t.Errorf("queue aliased the caller's buffer: got %v", buf[0])
	}
	q.Recycle(buf)
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := NewBlockQueue(2, 1)

	q.Enqueue([]float32{1})
	q.Enqueue([]float32{2})
	q.Enqueue([]float32{3}) // displaces block 1

	if q.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", q.Dropped())
	}

	buf, _ := q.Dequeue()
	if buf[0] != 2 {
		t.Errorf("oldest surviving block = %v, want 2", buf[0])
	}
	q.Recycle(buf)

	buf, _ = q.Dequeue()
	if buf[0] != 3 {
		t.Errorf("newest block = %v, want 3", buf[0])
	}
	q.Recycle(buf)
}

func TestQueueShortBlockKeepsLength(t *testing.T) {
	q := NewBlockQueue(2, 8)

	q.Enqueue([]float32{1, 2, 3})
	buf, _ := q.Dequeue()
	if len(buf) != 3 {
		t.Errorf("len = %d, want 3", len(buf))
	}
	q.Recycle(buf)

	// The recycled buffer regains its full capacity.
	q.Enqueue(make([]float32, 8))
	buf, _ = q.Dequeue()
	if len(buf) != 8 {
		t.Errorf("len = %d, want 8", len(buf))
	}
	q.Recycle(buf)
}

func TestQueueCloseDrains(t *testing.T) {
	q := NewBlockQueue(4, 1)

	q.Enqueue([]float32{7})
	q.Close()

	buf, ok := q.Dequeue()
	if !ok || buf[0] != 7 {
		t.Fatalf("pending block lost on close: %v %v", buf, ok)
	}
	q.Recycle(buf)

	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue should report closed after draining")
	}

	q.Enqueue([]float32{8}) // must be a silent no-op
}

func TestQueueEnqueueAllocs(t *testing.T) {
	q := NewBlockQueue(8, 64)
	block := make([]float32, 64)

	// Keep the queue from filling so every Enqueue takes the fast path.
	allocs := testing.AllocsPerRun(100, func() {
		q.Enqueue(block)
		if buf, ok := q.Dequeue(); ok {
			q.Recycle(buf)
		}
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations, got %.1f", allocs)
	}
}
