// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/rdv"
)

func TestSelectReadyRecv(t *testing.T) {
	x := rdv.NewChan[int](1)
	y := rdv.NewChan[int](1)
	x.Send(42)

	var got int
	idx := rdv.Select(
		x.OnRecv(func(v int, err error) { got = v }),
		y.OnRecv(func(int, error) { t.Error("empty branch executed") }),
	)
	if idx != 0 {
		t.Fatalf("chose branch %d, want 0", idx)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	// The non-chosen channel is untouched.
	if _, err := y.TryRecv(); !errors.Is(err, iox.ErrWouldBlock) {
		t.Fatalf("y.TryRecv got %v, want ErrWouldBlock", err)
	}
}

func TestSelectTieBreakDeclarationOrder(t *testing.T) {
	x := rdv.NewChan[int](1)
	y := rdv.NewChan[int](1)
	x.Send(1)
	y.Send(2)

	idx := rdv.Select(
		y.OnRecv(func(int, error) {}),
		x.OnRecv(func(int, error) {}),
	)
	if idx != 0 {
		t.Fatalf("chose branch %d, want 0 (first declared ready branch)", idx)
	}
	// y was consumed, x was not.
	if v, err := x.TryRecv(); v != 1 || err != nil {
		t.Fatalf("x.TryRecv got (%d, %v), want (1, nil)", v, err)
	}
}

func TestSelectParkedRecvThenSend(t *testing.T) {
	x := rdv.NewChan[int](0)
	y := rdv.NewChan[int](0)
	got := make(chan int, 1)
	idxc := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		idx := rdv.Select(
			x.OnRecv(func(int, error) { t.Error("x branch executed") }),
			y.OnRecv(func(v int, err error) { got <- v }),
		)
		idxc <- idx
		close(done)
	}()
	assertBlocked(t, done)
	y.Send(33)
	awaitDone(t, done)
	if idx := <-idxc; idx != 1 {
		t.Fatalf("chose branch %d, want 1", idx)
	}
	if v := <-got; v != 33 {
		t.Fatalf("got %d, want 33", v)
	}
}

func TestSelectSendBufferSpace(t *testing.T) {
	x := rdv.NewChan[int](1)
	idx := rdv.Select(x.OnSend(5))
	if idx != 0 {
		t.Fatalf("chose branch %d, want 0", idx)
	}
	if v, err := x.TryRecv(); v != 5 || err != nil {
		t.Fatalf("got (%d, %v), want (5, nil)", v, err)
	}
}

func TestSelectSendRendezvousWaitingReader(t *testing.T) {
	x := rdv.NewChan[int](0)
	got := make(chan int)
	go func() {
		v, _ := x.Recv()
		got <- v
	}()
	// Blocks until the reader is pending, then completes the handoff.
	idx := rdv.Select(x.OnSend(9))
	if idx != 0 {
		t.Fatalf("chose branch %d, want 0", idx)
	}
	if v := <-got; v != 9 {
		t.Fatalf("got %d, want 9", v)
	}
}

func TestSelectSendParkedThenReader(t *testing.T) {
	x := rdv.NewChan[int](0)
	done := make(chan struct{})
	go func() {
		rdv.Select(x.OnSend(4))
		close(done)
	}()
	assertBlocked(t, done)
	v, err := x.Recv()
	if v != 4 || err != nil {
		t.Fatalf("got (%d, %v), want (4, nil)", v, err)
	}
	awaitDone(t, done)
}

func TestSelectLazyProducerNotCalledWhenOtherBranchChosen(t *testing.T) {
	x := rdv.NewChan[int](1)
	y := rdv.NewChan[int](1)
	x.Send(1)
	idx := rdv.Select(
		x.OnRecv(func(int, error) {}),
		y.OnSendFunc(func() int {
			t.Error("producer ran for a non-chosen branch")
			return 0
		}),
	)
	if idx != 0 {
		t.Fatalf("chose branch %d, want 0", idx)
	}
}

func TestSelectLazyProducerRunsOnce(t *testing.T) {
	x := rdv.NewChan[int](0)
	got := make(chan int)
	go func() {
		v, _ := x.Recv()
		got <- v
	}()
	calls := 0
	rdv.Select(x.OnSendFunc(func() int {
		calls++
		return 8
	}))
	if v := <-got; v != 8 {
		t.Fatalf("got %d, want 8", v)
	}
	if calls != 1 {
		t.Fatalf("producer ran %d times, want 1", calls)
	}
}

func TestSelectNoSelfRendezvous(t *testing.T) {
	x := rdv.NewChan[int](0)
	idxc := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		idx := rdv.Select(
			x.OnRecv(func(int, error) { t.Error("select received its own send") }),
			x.OnSend(6),
		)
		idxc <- idx
		close(done)
	}()
	// Send and receive on the same channel must not pair with each
	// other inside one select.
	assertBlocked(t, done)
	v, err := x.Recv()
	if v != 6 || err != nil {
		t.Fatalf("got (%d, %v), want (6, nil)", v, err)
	}
	awaitDone(t, done)
	if idx := <-idxc; idx != 1 {
		t.Fatalf("chose branch %d, want 1 (send)", idx)
	}
}

func TestSelectRecvErrorSlot(t *testing.T) {
	boom := errors.New("boom")
	x := rdv.NewChan[int](1)
	x.SendErr(boom)
	var seen error
	rdv.Select(x.OnRecv(func(_ int, err error) { seen = err }))
	if seen != boom {
		t.Fatalf("got %v, want the stored error with original identity", seen)
	}
}

func TestSelectTwoSelectsOneValue(t *testing.T) {
	x := rdv.NewChan[int](0)
	got := make(chan int, 2)
	done := make(chan struct{}, 2)
	for range 2 {
		go func() {
			rdv.Select(x.OnRecv(func(v int, err error) { got <- v }))
			done <- struct{}{}
		}()
	}
	x.Send(1)
	// Exactly one select consumes the value; the other stays parked.
	if v := <-got; v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
	awaitDone(t, done)
	assertBlocked(t, done)
	x.Send(2)
	awaitDone(t, done)
}

func TestSelectEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("empty Select did not panic")
		}
	}()
	rdv.Select()
}
