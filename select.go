// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"cmp"
	"slices"
	"sync"

	"code.hybscloud.com/kont"
)

// Case is one branch of a Select: a send or receive directed at a
// single channel. Cases are built with Chan.OnRecv, Chan.OnSend and
// Chan.OnSendFunc; a Case is a value and may be reused across Selects.
type Case struct {
	core *chanCore
	send bool

	// probe attempts the branch with the channel monitor held.
	// ownRecv is the number of receive registrations the running
	// Select holds on this same channel, discounted so a select never
	// rendezvouses with itself. On success it returns the continuation
	// to run once every lock is released.
	probe func(ownRecv int) (after func(), ok bool)
}

// OnRecv builds a receive branch: when chosen, the head slot is
// dequeued and fn observes its value or error on the selecting
// goroutine, outside the channel monitor.
func (c *Chan[T]) OnRecv(fn func(T, error)) Case {
	return Case{core: &c.core, probe: func(int) (func(), bool) {
		if !c.core.recvReady() {
			return nil, false
		}
		slot := c.popLocked()
		return func() { fn(splitSlot(slot)) }, true
	}}
}

// OnSend builds a send branch for a value. The value is captured when
// the Case is built.
func (c *Chan[T]) OnSend(v T) Case {
	return c.OnSendFunc(func() T { return v })
}

// OnSendFunc builds a send branch whose value is produced lazily, only
// if the branch is chosen. produce runs with the channel monitor held
// and must not operate on channels.
func (c *Chan[T]) OnSendFunc(produce func() T) Case {
	return Case{core: &c.core, send: true, probe: func(ownRecv int) (func(), bool) {
		if !c.core.sendReady(ownRecv) {
			return nil, false
		}
		c.pushLocked(kont.Right[error, T](produce()))
		return nil, true
	}}
}

// Select executes exactly one ready branch and returns its index.
// No two branches ever partially execute and no slot is consumed twice.
// If some branch is ready, Select completes without blocking; otherwise
// the calling goroutine registers as a pending waiter on every
// participating channel, in ascending serial order, and parks until a
// branch can be claimed.
//
// Tie-break: branches are probed in declaration order and the first
// ready one wins.
//
// A registered receive branch counts as a pending reader, so a
// rendezvous sender completes against a parked Select exactly as
// against a parked Recv. If that Select then claims a different branch
// the sent value stays queued for the next receive.
//
// An empty Select is fatal misuse.
func Select(cases ...Case) int {
	if len(cases) == 0 {
		panic("rdv: select with no cases")
	}
	// Fast path: a branch is ready right now.
	if idx, after := probeAll(cases, nil); idx >= 0 {
		if after != nil {
			after()
		}
		return idx
	}

	regs := gatherRegs(cases)
	w := newSelectWaiter()
	registerAll(regs, w)
	for {
		if idx, after := probeAll(cases, regs); idx >= 0 {
			unregisterAll(regs, w)
			if after != nil {
				after()
			}
			return idx
		}
		w.park()
	}
}

// probeAll tries each branch in declaration order, locking one monitor
// at a time. regs is nil on the unregistered fast path.
func probeAll(cases []Case, regs []selectReg) (int, func()) {
	for i, cs := range cases {
		own := 0
		if cs.send && regs != nil {
			own = ownRecvCount(regs, cs.core)
		}
		cs.core.mu.Lock()
		after, ok := cs.probe(own)
		cs.core.mu.Unlock()
		if ok {
			return i, after
		}
	}
	return -1, nil
}

// selectReg aggregates a Select's registrations on one channel.
type selectReg struct {
	core *chanCore
	recv int
	send int
}

// gatherRegs collapses the cases into one registration per distinct
// channel, ordered by serial: the total claim order over the monitors.
func gatherRegs(cases []Case) []selectReg {
	regs := make([]selectReg, 0, len(cases))
next:
	for _, cs := range cases {
		for i := range regs {
			if regs[i].core == cs.core {
				if cs.send {
					regs[i].send++
				} else {
					regs[i].recv++
				}
				continue next
			}
		}
		r := selectReg{core: cs.core}
		if cs.send {
			r.send = 1
		} else {
			r.recv = 1
		}
		regs = append(regs, r)
	}
	slices.SortFunc(regs, func(a, b selectReg) int {
		return cmp.Compare(a.core.serial, b.core.serial)
	})
	return regs
}

func ownRecvCount(regs []selectReg, core *chanCore) int {
	for i := range regs {
		if regs[i].core == core {
			return regs[i].recv
		}
	}
	return 0
}

// registerAll parks-to-be: counts the waiter into each channel's
// direction counters and waiter registries. A new pending receive can
// make a rendezvous send side ready, so the write side is woken the
// same way Recv wakes it on entry.
func registerAll(regs []selectReg, w *selectWaiter) {
	for _, r := range regs {
		c := r.core
		c.mu.Lock()
		if r.recv > 0 {
			c.waitingReads += r.recv
			if c.capacity == 0 {
				if c.waitingWrites > 0 {
					c.writeCV.Signal()
				}
				pokeAll(c.sendWaiters)
			}
			c.recvWaiters = append(c.recvWaiters, w)
		}
		if r.send > 0 {
			c.waitingWrites += r.send
			c.sendWaiters = append(c.sendWaiters, w)
		}
		c.mu.Unlock()
	}
}

// unregisterAll retracts every registration made by registerAll.
// Falling counter edges never make a predicate true, so no wakes.
func unregisterAll(regs []selectReg, w *selectWaiter) {
	for _, r := range regs {
		c := r.core
		c.mu.Lock()
		if r.recv > 0 {
			c.waitingReads -= r.recv
			c.recvWaiters = removeWaiter(c.recvWaiters, w)
		}
		if r.send > 0 {
			c.waitingWrites -= r.send
			c.sendWaiters = removeWaiter(c.sendWaiters, w)
		}
		c.mu.Unlock()
	}
}

func removeWaiter(list []*selectWaiter, w *selectWaiter) []*selectWaiter {
	for i, x := range list {
		if x == w {
			last := len(list) - 1
			list[i] = list[last]
			list[last] = nil
			return list[:last]
		}
	}
	return list
}

// selectWaiter is a parked Select. Pokes are advisory: they request a
// re-probe and claim nothing, so a stale poke is harmless and a lost
// branch just parks the waiter again.
type selectWaiter struct {
	mu    sync.Mutex
	cond  *sync.Cond
	poked bool
}

func newSelectWaiter() *selectWaiter {
	w := &selectWaiter{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// poke is called with some channel monitor held; the waiter mutex is
// always innermost, so the two never deadlock.
func (w *selectWaiter) poke() {
	w.mu.Lock()
	if !w.poked {
		w.poked = true
		w.cond.Signal()
	}
	w.mu.Unlock()
}

func (w *selectWaiter) park() {
	w.mu.Lock()
	for !w.poked {
		w.cond.Wait()
	}
	w.poked = false
	w.mu.Unlock()
}

func pokeAll(ws []*selectWaiter) {
	for _, w := range ws {
		w.poke()
	}
}
