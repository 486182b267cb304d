// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rdv provides one-shot promise/future handoff and blocking
// rendezvous channels with multiplexed select.
//
// Both primitives are monitors: a mutex guards all state, condition
// variables park and wake OS threads on direction-specific predicates.
// There is no scheduler and no suspension point: callers compose
// concurrency with plain goroutines.
//
// # Architecture
//
//   - Handoff: [New] creates a [Promise]/[Future] pair over a single
//     one-shot slot. The slot is a [code.hybscloud.com/kont.Either] of
//     error or value, published through an [code.hybscloud.com/atomix]
//     tag so resolved-state reads never take the lock.
//   - Transport: [NewChan] creates a bounded FIFO monitor channel.
//     Capacity 0 is a rendezvous: a send completes only once a matching
//     receive is present, and no value rests in the queue.
//   - Non-blocking: [Future.TryGet], [Chan.TrySend] and [Chan.TryRecv]
//     return [code.hybscloud.com/iox.ErrWouldBlock] where the blocking
//     variant would park.
//   - Multiplexing: [Select] executes exactly one ready branch out of a
//     set of [Case] values built with [Chan.OnRecv], [Chan.OnSend] and
//     [Chan.OnSendFunc].
//   - Errors: a channel carries error slots in FIFO order with values
//     ([Chan.SendErr]); a promise carries at most one rejection
//     ([Promise.Reject]). Stored errors are forwarded verbatim, exactly
//     once, never wrapped.
//
// # API Topologies
//
//   - Producer side: [Promise.Resolve], [Promise.Reject]; [Chan.Send],
//     [Chan.SendErr], [Chan.TrySend].
//   - Consumer side: [Future.Wait], [Future.Get], [Future.TryGet],
//     [Future.Ready], [Future.OnResolved]; [Chan.Recv], [Chan.TryRecv],
//     [Chan.All].
//   - Multiplexed: [Select] over any mix of send and receive branches
//     on any number of channels.
//
// # Example
//
//	p, f := rdv.New[int]()
//	go func() { p.Resolve(42) }()
//	v, err := f.Get() // 42, nil
//
//	ch := rdv.NewChan[int](0)
//	go func() { ch.Send(1) }()
//	rdv.Select(
//		ch.OnRecv(func(v int, err error) { use(v) }),
//	)
package rdv
