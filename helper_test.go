// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv_test

import (
	"testing"
	"time"

	"code.hybscloud.com/iox"
)

// eventually spins with adaptive backoff until cond holds.
// Used where the interesting state change happens on another goroutine
// and the test only needs convergence, not an ordering guarantee.
func eventually(tb testing.TB, cond func() bool) {
	tb.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var bo iox.Backoff
	for !cond() {
		if time.Now().After(deadline) {
			tb.Fatal("condition not reached")
		}
		bo.Wait()
	}
}

// assertBlocked fails if done closes within the grace window.
// A passing check is probabilistic evidence, not proof; the paired
// awaitDone after releasing the blocker is the real assertion.
func assertBlocked(tb testing.TB, done <-chan struct{}) {
	tb.Helper()
	select {
	case <-done:
		tb.Fatal("operation completed, want blocked")
	case <-time.After(30 * time.Millisecond):
	}
}

// awaitDone fails if done does not close promptly.
func awaitDone(tb testing.TB, done <-chan struct{}) {
	tb.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		tb.Fatal("operation did not complete")
	}
}
