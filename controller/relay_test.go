package controller

import (
	"reflect"
	"sync"
	"testing"

	"github.com/rkost/transmission/session"
)

type stubModel struct {
	merged  []int
	removed []int
	trashed []int
}

func (m *stubModel) MergeAdded(id int) bool {
	m.merged = append(m.merged, id)
	return true
}

func (m *stubModel) RemoveFromModel(id int, deleteData bool) {
	if deleteData {
		m.trashed = append(m.trashed, id)
	} else {
		m.removed = append(m.removed, id)
	}
}

type stubSettings struct {
	values map[string]interface{}
}

func (s *stubSettings) All() map[string]interface{} {
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func TestDiffSettings(t *testing.T) {
	tests := []struct {
		name string
		old  map[string]interface{}
		new  map[string]interface{}
		want []string
	}{
		{
			name: "changed and added keys",
			old:  map[string]interface{}{"a": 1, "b": 2},
			new:  map[string]interface{}{"a": 1, "b": 3, "c": 4},
			want: []string{"b", "c"},
		},
		{
			name: "identical",
			old:  map[string]interface{}{"a": 1},
			new:  map[string]interface{}{"a": 1},
			want: nil,
		},
		{
			name: "removed key",
			old:  map[string]interface{}{"a": 1, "b": 2},
			new:  map[string]interface{}{"a": 1},
			want: []string{"b"},
		},
		{
			name: "same value different numeric type",
			old:  map[string]interface{}{"port": 51413},
			new:  map[string]interface{}{"port": int64(51413)},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffSettings(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DiffSettings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventMarshalsOntoQueue(t *testing.T) {
	q := &ManualQueue{}
	model := &stubModel{}
	relay := NewRelay(q, model, &stubSettings{values: map[string]interface{}{}})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if status := relay.Event(session.EventTorrentAdded, 42); status != session.ListenerKeep {
			t.Errorf("listener status = %v, want keep", status)
		}
	}()
	wg.Wait()

	if len(model.merged) != 0 {
		t.Fatal("model mutated before the UI queue ran")
	}

	q.RunPending()
	if !reflect.DeepEqual(model.merged, []int{42}) {
		t.Fatalf("merged = %v, want [42]", model.merged)
	}
}

func TestEventDispatch(t *testing.T) {
	q := &ManualQueue{}
	model := &stubModel{}
	relay := NewRelay(q, model, &stubSettings{values: map[string]interface{}{}})

	quit := 0
	relay.OnSessionClose(func() { quit++ })

	relay.Event(session.EventTorrentRemoving, 7)
	relay.Event(session.EventTorrentTrashing, 8)
	relay.Event(session.EventSessionClose, 0)
	relay.Event(session.EventTorrentChanged, 9)
	relay.Event(session.EventQueuePositionsChanged, 0)
	q.RunPending()

	if !reflect.DeepEqual(model.removed, []int{7}) {
		t.Errorf("removed = %v, want [7]", model.removed)
	}
	if !reflect.DeepEqual(model.trashed, []int{8}) {
		t.Errorf("trashed = %v, want [8]", model.trashed)
	}
	if quit != 1 {
		t.Errorf("session close relayed %d times, want 1", quit)
	}
}

func TestEventOrderPreserved(t *testing.T) {
	q := &ManualQueue{}
	model := &stubModel{}
	relay := NewRelay(q, model, &stubSettings{values: map[string]interface{}{}})

	relay.Event(session.EventTorrentAdded, 1)
	relay.Event(session.EventTorrentAdded, 2)
	relay.Event(session.EventTorrentRemoving, 1)
	q.RunPending()

	if !reflect.DeepEqual(model.merged, []int{1, 2}) {
		t.Errorf("merged = %v, want [1 2]", model.merged)
	}
	if !reflect.DeepEqual(model.removed, []int{1}) {
		t.Errorf("removed = %v, want [1]", model.removed)
	}
}

func TestSessionChangedNotifiesPerKey(t *testing.T) {
	q := &ManualQueue{}
	settings := &stubSettings{values: map[string]interface{}{"a": 1, "b": 2}}
	relay := NewRelay(q, &stubModel{}, settings)

	changes := make(map[string]interface{})
	relay.OnPrefChanged(func(key string, value interface{}) {
		changes[key] = value
	})

	settings.values["b"] = 3
	settings.values["c"] = 4
	relay.Event(session.EventSessionChanged, 0)
	q.RunPending()

	want := map[string]interface{}{"b": 3, "c": 4}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("changes = %v, want %v", changes, want)
	}

	// Snapshot advanced: replaying the same state emits nothing.
	changes = map[string]interface{}{}
	relay.Event(session.EventSessionChanged, 0)
	q.RunPending()
	if len(changes) != 0 {
		t.Errorf("unchanged settings emitted %v", changes)
	}
}

func TestUnknownEventKindPanics(t *testing.T) {
	q := &ManualQueue{}
	relay := NewRelay(q, &stubModel{}, &stubSettings{values: map[string]interface{}{}})

	relay.Event(session.EventKind(99), 0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown event kind")
		}
	}()
	q.RunPending()
}
