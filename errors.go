// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import "errors"

// Precondition violations of the one-shot state machines. Both are
// detected synchronously at the violating call and returned, never
// deferred or swallowed. Non-blocking operations signal backpressure
// with [code.hybscloud.com/iox.ErrWouldBlock] instead.
var (
	// ErrPromiseSatisfied reports a second Resolve or Reject on a
	// promise whose state is already terminal.
	ErrPromiseSatisfied = errors.New("rdv: promise already satisfied")

	// ErrFutureRetrieved reports a second Get on a future whose payload
	// has already been consumed.
	ErrFutureRetrieved = errors.New("rdv: future already retrieved")
)
