package tsencap

import "sync"

// packetBufferPool recycles *Packet buffers so the late-packet queue below
// doesn't allocate on every enqueue/dequeue cycle, the same role
// go-astits' bytesPooler plays for its own temporary payload buffers.
var packetBufferPool = sync.Pool{
	New: func() interface{} { return new(Packet) },
}

// lateQueue is a bounded FIFO of owned packet copies awaiting
// encapsulation. Queued packets are deep copies: the caller of
// Encapsulator.ProcessPacket retains and may reuse its own buffer.
type lateQueue struct {
	items []*Packet
}

// len returns the number of queued packets.
func (q *lateQueue) len() int { return len(q.items) }

// push deep-copies src into a pooled buffer and appends it to the queue.
func (q *lateQueue) push(src *Packet) {
	dst := packetBufferPool.Get().(*Packet)
	*dst = *src
	q.items = append(q.items, dst)
}

// front returns the head of the queue, or nil if empty.
func (q *lateQueue) front() *Packet {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// popFront discards the head of the queue, returning its buffer to the pool.
func (q *lateQueue) popFront() {
	if len(q.items) == 0 {
		return
	}
	head := q.items[0]
	packetBufferPool.Put(head)
	q.items[0] = nil
	q.items = q.items[1:]
}

// reset empties the queue, returning all buffers to the pool.
func (q *lateQueue) reset() {
	for _, p := range q.items {
		if p != nil {
			packetBufferPool.Put(p)
		}
	}
	q.items = q.items[:0]
}
