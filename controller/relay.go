package controller

import (
	"fmt"
	"sort"

	"github.com/rkost/transmission/prefs"
	"github.com/rkost/transmission/session"
)

// RelayModel is the slice of the session facade the relay mutates:
// merging freshly added torrents into the display model and removing
// departing ones.
type RelayModel interface {
	MergeAdded(id int) bool
	RemoveFromModel(id int, deleteData bool)
}

// SettingsSource provides a full settings snapshot for diffing.
type SettingsSource interface {
	All() map[string]interface{}
}

// Relay marshals backend change callbacks onto the UI goroutine. The
// backend invokes Event from its own goroutines; Event only captures
// the event and posts a task, so it never races UI-owned state.
type Relay struct {
	queue    TaskQueue
	model    RelayModel
	settings SettingsSource

	snapshot map[string]interface{}

	// onPrefChanged receives each key whose serialized value changed,
	// with the new value, so handlers never read a stale snapshot.
	onPrefChanged  func(key string, value interface{})
	onSessionClose func()
}

func NewRelay(queue TaskQueue, model RelayModel, settings SettingsSource) *Relay {
	return &Relay{
		queue:    queue,
		model:    model,
		settings: settings,
		snapshot: settings.All(),
	}
}

// OnPrefChanged sets the per-key settings change callback.
func (r *Relay) OnPrefChanged(fn func(key string, value interface{})) {
	r.onPrefChanged = fn
}

// OnSessionClose sets the callback run when the backend announces it
// is shutting down.
func (r *Relay) OnSessionClose(fn func()) {
	r.onSessionClose = fn
}

// Event is the listener registered with the backend. Callable from any
// goroutine. Always keeps the subscription; teardown drops the whole
// session instead.
func (r *Relay) Event(kind session.EventKind, torrentID int) session.ListenerStatus {
	r.queue.Post(func() {
		r.dispatch(kind, torrentID)
	})
	return session.ListenerKeep
}

func (r *Relay) dispatch(kind session.EventKind, torrentID int) {
	switch kind {
	case session.EventSessionClose:
		if r.onSessionClose != nil {
			r.onSessionClose()
		}
	case session.EventTorrentAdded:
		r.model.MergeAdded(torrentID)
	case session.EventTorrentRemoving:
		r.model.RemoveFromModel(torrentID, false)
	case session.EventTorrentTrashing:
		r.model.RemoveFromModel(torrentID, true)
	case session.EventSessionChanged:
		r.relaySettingsChanges()
	case session.EventTorrentChanged,
		session.EventTorrentMoved,
		session.EventTorrentStarted,
		session.EventTorrentStopped,
		session.EventQueuePositionsChanged:
		// Per-torrent churn is picked up by the periodic refresh.
	default:
		panic(fmt.Sprintf("unexpected backend event %v", kind))
	}
}

// relaySettingsChanges diffs the current settings against the cached
// snapshot, notifies per changed key, then replaces the snapshot. The
// snapshot is taken before comparing so a concurrent external change
// between notify and update is not lost.
func (r *Relay) relaySettingsChanges() {
	current := r.settings.All()
	changed := DiffSettings(r.snapshot, current)
	for _, key := range changed {
		if r.onPrefChanged != nil {
			r.onPrefChanged(key, current[key])
		}
	}
	r.snapshot = current
}

// DiffSettings returns the keys whose serialized value differs between
// old and new, including keys present on only one side. Sorted for
// deterministic notification order.
func DiffSettings(old, new map[string]interface{}) []string {
	var changed []string
	for key, newVal := range new {
		oldVal, ok := old[key]
		if !ok || prefs.Serialize(oldVal) != prefs.Serialize(newVal) {
			changed = append(changed, key)
		}
	}
	for key := range old {
		if _, ok := new[key]; !ok {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}
