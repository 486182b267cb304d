// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"iter"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// chanCore is the untyped monitor state of a channel: everything Select
// needs without knowing the element type. Chan[T] keeps the typed slot
// queue next to it and mirrors its length in qlen under mu.
type chanCore struct {
	serial   Serial
	capacity int

	mu      sync.Mutex
	readCV  *sync.Cond
	writeCV *sync.Cond

	// Threads parked in Recv/Send, plus Select registrations of the
	// matching direction. The counters drive the rendezvous rule: an
	// unbuffered push must be backed by a distinct pending reader.
	waitingReads  int
	waitingWrites int

	qlen int

	// Parked Select waiters by branch direction. Advisory: pokes ask
	// for a re-probe, they claim nothing.
	recvWaiters []*selectWaiter
	sendWaiters []*selectWaiter
}

// sendReady reports, with mu held, whether a send completes without
// waiting. ownRecv discounts the probing select's own receive
// registrations on this channel so a select never rendezvouses with
// itself.
func (c *chanCore) sendReady(ownRecv int) bool {
	if c.capacity == 0 {
		return c.waitingReads-ownRecv > c.qlen
	}
	return c.qlen < c.capacity
}

// recvReady reports, with mu held, whether a receive completes without
// waiting.
func (c *chanCore) recvReady() bool {
	return c.qlen > 0
}

// Chan is a blocking monitor channel carrying value-or-error slots in
// strict FIFO order. Capacity 0 is a rendezvous channel: no slot rests
// in the queue, a send completes only against a pending receive.
//
// A Chan is a pinned synchronization object: parked waiters hold the
// addresses of its monitor, so it must not be copied after first use.
// Alias it by pointer.
type Chan[T any] struct {
	core  chanCore
	slots []kont.Either[error, T]
}

// NewChan creates a channel with the given buffer capacity.
// Capacity 0 means rendezvous; negative capacity is fatal misuse.
func NewChan[T any](capacity int) *Chan[T] {
	if capacity < 0 {
		panic("rdv: negative channel capacity")
	}
	c := &Chan[T]{}
	c.core.serial = nextSerial()
	c.core.capacity = capacity
	c.core.readCV = sync.NewCond(&c.core.mu)
	c.core.writeCV = sync.NewCond(&c.core.mu)
	return c
}

// Cap returns the channel's buffer capacity.
func (c *Chan[T]) Cap() int {
	return c.core.capacity
}

// Len returns the number of slots currently queued.
func (c *Chan[T]) Len() int {
	c.core.mu.Lock()
	n := c.core.qlen
	c.core.mu.Unlock()
	return n
}

// pushLocked appends a slot and wakes one consumer: the monitor's read
// side plus every parked select with a receive branch here.
func (c *Chan[T]) pushLocked(slot kont.Either[error, T]) {
	c.slots = append(c.slots, slot)
	c.core.qlen++
	c.core.readCV.Signal()
	pokeAll(c.core.recvWaiters)
}

// popLocked removes the head slot and wakes one producer: the monitor's
// write side plus every parked select with a send branch here.
func (c *Chan[T]) popLocked() kont.Either[error, T] {
	slot := c.slots[0]
	n := copy(c.slots, c.slots[1:])
	var zero kont.Either[error, T]
	c.slots[n] = zero
	c.slots = c.slots[:n]
	c.core.qlen--
	c.core.writeCV.Signal()
	pokeAll(c.core.sendWaiters)
	return slot
}

func (c *Chan[T]) send(slot kont.Either[error, T]) {
	c.core.mu.Lock()
	c.core.waitingWrites++
	for !c.core.sendReady(0) {
		c.core.writeCV.Wait()
	}
	c.core.waitingWrites--
	c.pushLocked(slot)
	c.core.mu.Unlock()
}

// Send appends a value, blocking while the buffer is full, or, on a
// rendezvous channel, until a receive is pending. Slots are delivered
// in the exact order sends complete, regardless of sending goroutine.
func (c *Chan[T]) Send(v T) {
	c.send(kont.Right[error, T](v))
}

// SendErr appends an error slot under the same blocking protocol as
// Send. The receive that dequeues it observes err verbatim, exactly
// once. A nil error is fatal misuse.
func (c *Chan[T]) SendErr(err error) {
	if err == nil {
		panic("rdv: send nil error")
	}
	c.send(kont.Left[error, T](err))
}

// TrySend is the non-blocking Send: iox.ErrWouldBlock where Send would
// park.
func (c *Chan[T]) TrySend(v T) error {
	c.core.mu.Lock()
	if !c.core.sendReady(0) {
		c.core.mu.Unlock()
		return iox.ErrWouldBlock
	}
	c.pushLocked(kont.Right[error, T](v))
	c.core.mu.Unlock()
	return nil
}

// Recv removes the head slot, blocking while the queue is empty, and
// returns its value or its error. On a rendezvous channel the pending
// receive is what releases a blocked sender.
func (c *Chan[T]) Recv() (T, error) {
	c.core.mu.Lock()
	c.core.waitingReads++
	// A new pending reader can make the send side ready: release a
	// parked rendezvous sender and re-probe parked select senders.
	if c.core.capacity == 0 && c.core.waitingWrites > 0 {
		c.core.writeCV.Signal()
	}
	pokeAll(c.core.sendWaiters)
	for c.core.qlen == 0 {
		c.core.readCV.Wait()
	}
	c.core.waitingReads--
	slot := c.popLocked()
	c.core.mu.Unlock()
	return splitSlot(slot)
}

// TryRecv is the non-blocking Recv: iox.ErrWouldBlock when the queue is
// empty. A dequeued error slot is returned as is; distinguish the two
// with errors.Is(err, iox.ErrWouldBlock).
func (c *Chan[T]) TryRecv() (T, error) {
	c.core.mu.Lock()
	if !c.core.recvReady() {
		c.core.mu.Unlock()
		var zero T
		return zero, iox.ErrWouldBlock
	}
	slot := c.popLocked()
	c.core.mu.Unlock()
	return splitSlot(slot)
}

// All streams the channel as a lazy, unbounded sequence of Recv
// results. The sequence has no termination signal distinct from an
// error slot and is not restartable; the consumer ends it by breaking
// out of the range.
func (c *Chan[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := c.Recv()
			if !yield(v, err) {
				return
			}
		}
	}
}
