// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Promise is the write-once producer role of a shared one-shot slot.
// Exactly one of Resolve and Reject succeeds over its lifetime.
type Promise[T any] struct {
	s *sharedState[T]
}

// Future is the consumer role of a shared one-shot slot. Any number of
// goroutines may Wait; the payload itself is retrievable at most once.
type Future[T any] struct {
	s *sharedState[T]

	// One-shot retrieval flag: the first Add(1) == 1 wins Get.
	retrieved atomix.Uint32
}

// New creates a connected Promise/Future pair over a single shared
// one-shot slot. The slot lives as long as either handle does.
func New[T any]() (*Promise[T], *Future[T]) {
	s := newSharedState[T]()
	return &Promise[T]{s: s}, &Future[T]{s: s}
}

// Resolve fulfills the promise with a value, waking every waiter and
// running a registered continuation on the calling goroutine.
// A second fulfillment attempt returns ErrPromiseSatisfied.
func (p *Promise[T]) Resolve(v T) error {
	return p.s.fulfill(kont.Right[error, T](v), stateValue)
}

// Reject fulfills the promise with an error. The error is forwarded
// verbatim to the first Get and to the registered continuation.
// A second fulfillment attempt returns ErrPromiseSatisfied.
// A nil error is fatal misuse.
func (p *Promise[T]) Reject(err error) error {
	if err == nil {
		panic("rdv: reject with nil error")
	}
	return p.s.fulfill(kont.Left[error, T](err), stateError)
}

// Wait blocks until the promise is fulfilled. Called on a fulfilled
// future it returns immediately, without taking the monitor.
func (f *Future[T]) Wait() {
	f.s.wait()
}

// Ready reports whether the promise has been fulfilled. Non-blocking.
func (f *Future[T]) Ready() bool {
	return f.s.ready()
}

// Get waits for fulfillment and consumes the payload: the value, or
// the rejection error with its original identity. A second Get returns
// ErrFutureRetrieved.
func (f *Future[T]) Get() (T, error) {
	if f.retrieved.Add(1) != 1 {
		var zero T
		return zero, ErrFutureRetrieved
	}
	return f.s.get()
}

// TryGet is the non-blocking Get. An unfulfilled future returns
// iox.ErrWouldBlock and does not consume the payload.
func (f *Future[T]) TryGet() (T, error) {
	if !f.s.ready() {
		var zero T
		return zero, iox.ErrWouldBlock
	}
	return f.Get()
}

// OnResolved registers the single continuation slot of the future.
// Registered before fulfillment, fn runs exactly once on the fulfilling
// goroutine, after the monitor is released; registered after, fn runs
// immediately on the calling goroutine. Registering a second
// continuation is fatal misuse. Continuation composition is layered
// above this primitive, not inside it.
func (f *Future[T]) OnResolved(fn func(kont.Either[error, T])) {
	f.s.onResolved(fn)
}
