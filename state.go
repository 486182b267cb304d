// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
)

// Shared-state tags. The tag is monotonic: it leaves stateEmpty at most
// once, and only for a terminal state.
const (
	stateEmpty uint32 = iota
	stateValue
	stateError
)

// sharedState is the one-shot slot a Promise/Future pair shares.
// Exactly one producer fulfills it; any number of consumers wait on it.
//
// The payload is a kont.Either: Left carries a rejection error, Right
// carries the value. The tag is stored after the payload write and
// loaded first on the lock-free fast path, so a reader that observes a
// terminal tag also observes the fully written payload.
type sharedState[T any] struct {
	tag  atomix.Uint32
	mu   sync.Mutex
	cond *sync.Cond

	storage kont.Either[error, T]

	// At most one continuation, cleared before it runs. Registering a
	// second one is fatal misuse by the orchestrating wrapper.
	cb func(kont.Either[error, T])
}

func newSharedState[T any]() *sharedState[T] {
	s := &sharedState[T]{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// fulfill moves the state machine to its terminal state. The second
// fulfillment attempt fails with ErrPromiseSatisfied and leaves the
// stored payload untouched.
//
// The continuation runs after the monitor is released, so a callback
// that itself touches the shared state cannot deadlock the fulfiller.
func (s *sharedState[T]) fulfill(payload kont.Either[error, T], tag uint32) error {
	s.mu.Lock()
	if s.tag.Load() != stateEmpty {
		s.mu.Unlock()
		return ErrPromiseSatisfied
	}
	s.storage = payload
	s.tag.Store(tag)
	// Terminal transition: every waiter's predicate just became true.
	s.cond.Broadcast()
	cb := s.cb
	s.cb = nil
	s.mu.Unlock()

	if cb != nil {
		cb(payload)
	}
	return nil
}

// wait blocks until the state is terminal. Already-resolved states
// return on the tag load alone, without taking the monitor.
func (s *sharedState[T]) wait() {
	if s.tag.Load() != stateEmpty {
		return
	}
	s.mu.Lock()
	for s.tag.Load() == stateEmpty {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// get waits for the terminal state and splits the payload. A stored
// rejection is returned with its original identity. Single retrieval
// is enforced by the Future wrapper, not here.
func (s *sharedState[T]) get() (T, error) {
	s.wait()
	s.mu.Lock()
	payload := s.storage
	s.mu.Unlock()
	return splitSlot(payload)
}

// onResolved registers the single continuation. An already-terminal
// state runs fn immediately on the calling goroutine; otherwise fn runs
// exactly once on the fulfilling goroutine, outside the monitor.
func (s *sharedState[T]) onResolved(fn func(kont.Either[error, T])) {
	s.mu.Lock()
	if s.tag.Load() != stateEmpty {
		payload := s.storage
		s.mu.Unlock()
		fn(payload)
		return
	}
	if s.cb != nil {
		s.mu.Unlock()
		panic("rdv: continuation already registered")
	}
	s.cb = fn
	s.mu.Unlock()
}

// ready is a non-blocking snapshot of the terminal flag.
func (s *sharedState[T]) ready() bool {
	return s.tag.Load() != stateEmpty
}

// splitSlot unpacks a value-or-error slot into Go result form.
func splitSlot[T any](slot kont.Either[error, T]) (T, error) {
	if err, ok := slot.GetLeft(); ok {
		var zero T
		return zero, err
	}
	v, _ := slot.GetRight()
	return v, nil
}
