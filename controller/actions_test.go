package controller

import (
	"reflect"
	"testing"
)

type stubSource struct {
	counts SelectionCounts
	total  int
	active int
}

func (s *stubSource) SelectedCounts() SelectionCounts { return s.counts }
func (s *stubSource) TorrentCount() int               { return s.total }
func (s *stubSource) ActiveTorrentCount() int         { return s.active }

type recordingRegistry struct {
	sensitive map[string]bool
	toggled   map[string]bool
	activated []string
}

func newRecordingRegistry() *recordingRegistry {
	return &recordingRegistry{
		sensitive: make(map[string]bool),
		toggled:   make(map[string]bool),
	}
}

func (r *recordingRegistry) SetSensitive(name string, v bool) { r.sensitive[name] = v }
func (r *recordingRegistry) SetToggled(name string, v bool)   { r.toggled[name] = v }
func (r *recordingRegistry) Activate(name string)             { r.activated = append(r.activated, name) }

func TestRecomputeIsPure(t *testing.T) {
	src := &stubSource{
		counts: SelectionCounts{Total: 5, Queued: 2, Stopped: 3, CanAnnounce: false},
		total:  8,
		active: 4,
	}
	var closing ClosingFlag
	reg := newRecordingRegistry()
	sync := NewActionSync(&ManualQueue{}, &closing, src, reg)

	sync.Recompute()
	first := make(map[string]bool, len(reg.sensitive))
	for k, v := range reg.sensitive {
		first[k] = v
	}

	sync.Recompute()
	sync.Recompute()

	if !reflect.DeepEqual(first, reg.sensitive) {
		t.Errorf("repeated recompute changed the sensitivity vector:\nfirst: %v\nlast:  %v", first, reg.sensitive)
	}
}

func TestRecomputeSensitivityRules(t *testing.T) {
	tests := []struct {
		name   string
		src    stubSource
		expect map[string]bool
	}{
		{
			name: "no torrents",
			src:  stubSource{},
			expect: map[string]bool{
				ActionSelectAll:       false,
				ActionDeselectAll:     false,
				ActionPauseAll:        false,
				ActionStartAll:        false,
				ActionTorrentStop:     false,
				ActionTorrentStart:    false,
				ActionTorrentStartNow: false,
				ActionRemoveTorrent:   false,
				ActionOpenFolder:      false,
				ActionReannounce:      false,
			},
		},
		{
			name: "single running selected",
			src: stubSource{
				counts: SelectionCounts{Total: 1, CanAnnounce: true},
				total:  3,
				active: 3,
			},
			expect: map[string]bool{
				ActionSelectAll:       true,
				ActionPauseAll:        true,
				ActionStartAll:        false,
				ActionTorrentStop:     true,
				ActionTorrentStart:    false,
				ActionTorrentStartNow: false,
				ActionRemoveTorrent:   true,
				ActionOpenFolder:      true,
				ActionCopyMagnetLink:  true,
				ActionReannounce:      true,
			},
		},
		{
			name: "mixed selection",
			src: stubSource{
				counts: SelectionCounts{Total: 5, Queued: 2, Stopped: 3},
				total:  8,
				active: 4,
			},
			expect: map[string]bool{
				ActionTorrentStop:     true,
				ActionTorrentStart:    true,
				ActionTorrentStartNow: true,
				ActionStartAll:        true,
				ActionOpenFolder:      false,
				ActionCopyMagnetLink:  false,
				ActionReannounce:      false,
			},
		},
		{
			name: "all stopped selection",
			src: stubSource{
				counts: SelectionCounts{Total: 2, Stopped: 2},
				total:  2,
				active: 0,
			},
			expect: map[string]bool{
				ActionTorrentStop:  false,
				ActionTorrentStart: true,
				ActionPauseAll:     false,
				ActionStartAll:     true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var closing ClosingFlag
			reg := newRecordingRegistry()
			sync := NewActionSync(&ManualQueue{}, &closing, &tt.src, reg)
			sync.Recompute()

			for action, want := range tt.expect {
				got, ok := reg.sensitive[action]
				if !ok {
					t.Errorf("action %q never set", action)
					continue
				}
				if got != want {
					t.Errorf("action %q: got %v, want %v", action, got, want)
				}
			}
		})
	}
}

func TestRecomputeSoonCoalesces(t *testing.T) {
	q := &ManualQueue{}
	var closing ClosingFlag
	reg := newRecordingRegistry()
	src := &stubSource{total: 1}
	sync := NewActionSync(q, &closing, src, reg)

	sync.RecomputeSoon()
	sync.RecomputeSoon()
	sync.RecomputeSoon()
	if q.Len() != 1 {
		t.Fatalf("expected one queued recompute, got %d", q.Len())
	}
	q.RunPending()
	if len(reg.sensitive) == 0 {
		t.Error("deferred recompute never ran")
	}
}

func TestRecomputeFrozenWhileClosing(t *testing.T) {
	q := &ManualQueue{}
	var closing ClosingFlag
	reg := newRecordingRegistry()
	sync := NewActionSync(q, &closing, &stubSource{total: 1}, reg)

	closing.Set()
	sync.RecomputeSoon()
	sync.Recompute()
	q.RunPending()

	if len(reg.sensitive) != 0 {
		t.Errorf("sensitivity updated during shutdown: %v", reg.sensitive)
	}
}

func TestDispatcherRoutes(t *testing.T) {
	d := NewDispatcher()
	hits := 0
	d.Handle(ActionQuit, func() { hits++ })

	d.Dispatch(ActionQuit)
	if hits != 1 {
		t.Fatalf("expected handler to run once, ran %d times", hits)
	}
	if !d.Known(ActionQuit) || d.Known("no-such-action") {
		t.Error("Known reports wrong membership")
	}
}

func TestDispatcherPanicsOnUnknownAction(t *testing.T) {
	d := NewDispatcher()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered action")
		}
	}()
	d.Dispatch("no-such-action")
}
