package controller

import (
	"testing"
	"time"
)

type sequencerHarness struct {
	queue   *ManualQueue
	closing ClosingFlag

	prepared  int
	closed    int
	finished  int
	closeGate chan struct{}
	closeDone chan struct{}
}

func newSequencerHarness() (*sequencerHarness, *Sequencer) {
	h := &sequencerHarness{
		queue:     &ManualQueue{},
		closeGate: make(chan struct{}),
		closeDone: make(chan struct{}, 4),
	}
	seq := NewSequencer(h.queue, &h.closing,
		func() { h.prepared++ },
		func() {
			<-h.closeGate
			h.closed++
			h.closeDone <- struct{}{}
		},
		func() { h.finished++ },
	)
	return h, seq
}

func (h *sequencerHarness) waitForClose(t *testing.T) {
	t.Helper()
	select {
	case <-h.closeDone:
	case <-time.After(2 * time.Second):
		t.Fatal("engine close never finished")
	}
	// The completion task lands on the queue from the background
	// goroutine; poll briefly for it.
	deadline := time.Now().Add(2 * time.Second)
	for h.queue.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("completion task never posted")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestShutdownSequence(t *testing.T) {
	h, seq := newSequencerHarness()

	seq.Begin()
	if seq.State() != StateSessionClosing {
		t.Fatalf("state = %v, want session-closing", seq.State())
	}
	if h.prepared != 1 {
		t.Fatalf("prepare ran %d times, want 1", h.prepared)
	}
	if !h.closing.IsSet() {
		t.Fatal("closing flag not raised")
	}
	if h.finished != 0 {
		t.Fatal("finish ran before the engine closed")
	}

	close(h.closeGate)
	h.waitForClose(t)
	h.queue.RunPending()

	if seq.State() != StateClosed {
		t.Fatalf("state = %v, want closed", seq.State())
	}
	if h.finished != 1 {
		t.Fatalf("finish ran %d times, want 1", h.finished)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	h, seq := newSequencerHarness()

	seq.Begin()
	seq.Begin()
	seq.Begin()

	if h.prepared != 1 {
		t.Fatalf("prepare ran %d times, want 1", h.prepared)
	}

	close(h.closeGate)
	h.waitForClose(t)
	h.queue.RunPending()

	if h.closed != 1 {
		t.Fatalf("engine closed %d times, want 1", h.closed)
	}
	if h.finished != 1 {
		t.Fatalf("finish ran %d times, want 1", h.finished)
	}
}

func TestQuitNowBypassesStateMachine(t *testing.T) {
	h, seq := newSequencerHarness()
	exited := make([]int, 0, 1)
	seq.SetExit(func(code int) { exited = append(exited, code) })

	seq.Begin()
	// Engine close still blocked on the gate; QuitNow must not wait.
	seq.QuitNow()

	if len(exited) != 1 || exited[0] != 0 {
		t.Fatalf("exit calls = %v, want [0]", exited)
	}
	if h.finished != 0 {
		t.Fatal("finish ran despite immediate exit")
	}
	close(h.closeGate)
}

func TestSignalEscalation(t *testing.T) {
	h, seq := newSequencerHarness()
	exits := 0
	seq.SetExit(func(code int) { exits++ })
	policy := NewSignalPolicy(h.queue, seq)

	policy.Handle("SIGTERM")
	if exits != 0 {
		t.Fatal("first signal exited immediately")
	}
	h.queue.RunPending()
	if seq.State() != StateSessionClosing {
		t.Fatalf("first signal did not start shutdown, state = %v", seq.State())
	}

	// Second signal while the blocking close is still in flight.
	policy.Handle("SIGTERM")
	if exits != 1 {
		t.Fatalf("second signal exited %d times, want 1", exits)
	}
	close(h.closeGate)
}
