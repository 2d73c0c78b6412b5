package controller

import "testing"

func TestManualQueueOrdering(t *testing.T) {
	q := &ManualQueue{}
	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}

	if q.Len() != 3 {
		t.Fatalf("expected 3 queued tasks, got %d", q.Len())
	}
	if ran := q.RunPending(); ran != 3 {
		t.Fatalf("expected 3 tasks run, got %d", ran)
	}
	for i, v := range got {
		if v != i+1 {
			t.Errorf("task %d ran out of order: got %d", i, v)
		}
	}
}

func TestManualQueueRunsNestedPosts(t *testing.T) {
	q := &ManualQueue{}
	inner := false
	q.Post(func() {
		q.Post(func() { inner = true })
	})

	if ran := q.RunPending(); ran != 2 {
		t.Fatalf("expected 2 tasks run, got %d", ran)
	}
	if !inner {
		t.Error("nested task did not run in the same drain")
	}
}

func TestClosingFlagLatches(t *testing.T) {
	var f ClosingFlag
	if f.IsSet() {
		t.Fatal("new flag must not be set")
	}
	f.Set()
	f.Set()
	if !f.IsSet() {
		t.Fatal("flag did not latch")
	}
}
