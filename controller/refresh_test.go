package controller

import "testing"

func TestRequestSoonCoalesces(t *testing.T) {
	q := &ManualQueue{}
	var closing ClosingFlag
	refreshed := 0
	c := NewRefreshCoordinator(q, &closing, func() { refreshed++ })

	for i := 0; i < 10; i++ {
		c.RequestSoon()
	}
	if q.Len() != 1 {
		t.Fatalf("expected one queued refresh, got %d", q.Len())
	}

	q.RunPending()
	if refreshed != 1 {
		t.Fatalf("expected one refresh, got %d", refreshed)
	}
	if c.Pending() {
		t.Error("pending flag not cleared after refresh")
	}
}

func TestRequestSoonReschedulesAfterDrain(t *testing.T) {
	q := &ManualQueue{}
	var closing ClosingFlag
	refreshed := 0
	c := NewRefreshCoordinator(q, &closing, func() { refreshed++ })

	c.RequestSoon()
	q.RunPending()
	c.RequestSoon()
	q.RunPending()

	if refreshed != 2 {
		t.Fatalf("expected 2 refreshes, got %d", refreshed)
	}
}

func TestRefreshSuppressedWhileClosing(t *testing.T) {
	q := &ManualQueue{}
	var closing ClosingFlag
	refreshed := 0
	c := NewRefreshCoordinator(q, &closing, func() { refreshed++ })

	c.RequestSoon()
	closing.Set()
	q.RunPending()

	c.RequestNow()
	if refreshed != 0 {
		t.Fatalf("refresh ran during shutdown: %d", refreshed)
	}
}

func TestTickStopsWhenClosing(t *testing.T) {
	q := &ManualQueue{}
	var closing ClosingFlag
	refreshed := 0
	c := NewRefreshCoordinator(q, &closing, func() { refreshed++ })

	if !c.Tick() {
		t.Fatal("running timer should rearm")
	}
	if refreshed != 1 {
		t.Fatalf("expected tick to refresh, got %d", refreshed)
	}

	closing.Set()
	if c.Tick() {
		t.Fatal("timer should cancel once closing")
	}
	if refreshed != 1 {
		t.Fatalf("tick refreshed during shutdown: %d", refreshed)
	}
}
