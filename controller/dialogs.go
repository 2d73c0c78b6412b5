package controller

import (
	"sort"
	"strconv"
	"strings"
)

// Dialog is the minimal surface the manager needs from a toolkit
// window: bring it to the front, or tear it down.
type Dialog interface {
	Present()
	Destroy()
}

// DetailDialogs keeps at most one detail dialog open per distinct
// selection set. Dialogs for different selections coexist. UI
// goroutine only; no locking needed.
type DetailDialogs struct {
	open map[string]Dialog

	// build constructs a dialog for the given torrent ids and must
	// call the provided closed callback exactly once when the user
	// dismisses it.
	build func(ids []int, closed func()) Dialog
}

func NewDetailDialogs(build func(ids []int, closed func()) Dialog) *DetailDialogs {
	return &DetailDialogs{
		open:  make(map[string]Dialog),
		build: build,
	}
}

// CanonicalKey maps a selection to its registry key. Order does not
// matter: [3 1 2] and [2 1 3] are the same selection.
func CanonicalKey(ids []int) string {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// ShowDetails presents the detail dialog for the given selection,
// reusing an existing instance when one is already open for the same
// set of torrents.
func (d *DetailDialogs) ShowDetails(ids []int) Dialog {
	key := CanonicalKey(ids)
	if dlg, ok := d.open[key]; ok {
		dlg.Present()
		return dlg
	}

	dlg := d.build(ids, func() {
		delete(d.open, key)
	})
	d.open[key] = dlg
	dlg.Present()
	return dlg
}

// OpenCount returns how many detail dialogs are currently open.
func (d *DetailDialogs) OpenCount() int {
	return len(d.open)
}

// CloseAll destroys every open detail dialog. Called during shutdown.
func (d *DetailDialogs) CloseAll() {
	for key, dlg := range d.open {
		delete(d.open, key)
		dlg.Destroy()
	}
}

// Singleton manages a dialog kind with at most one live instance, such
// as the preferences window or the message log. Construct-if-absent,
// reset-on-close, present-if-present.
type Singleton struct {
	build   func(closed func()) Dialog
	current Dialog
}

func NewSingleton(build func(closed func()) Dialog) *Singleton {
	return &Singleton{build: build}
}

// Show presents the instance, constructing it first if none is open.
func (s *Singleton) Show() Dialog {
	if s.current == nil {
		s.current = s.build(func() {
			s.current = nil
		})
	}
	s.current.Present()
	return s.current
}

// IsOpen reports whether an instance is live.
func (s *Singleton) IsOpen() bool {
	return s.current != nil
}

// Close destroys the live instance, if any.
func (s *Singleton) Close() {
	if s.current != nil {
		dlg := s.current
		s.current = nil
		dlg.Destroy()
	}
}
