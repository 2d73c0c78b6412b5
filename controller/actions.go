package controller

import "fmt"

// Action names registered with the toolkit. Menu and shortcut
// definitions refer to these strings.
const (
	ActionSelectAll       = "select-all"
	ActionDeselectAll     = "deselect-all"
	ActionPauseAll        = "pause-all-torrents"
	ActionStartAll        = "start-all-torrents"
	ActionTorrentStop     = "torrent-stop"
	ActionTorrentStart    = "torrent-start"
	ActionTorrentStartNow = "torrent-start-now"
	ActionTorrentVerify   = "torrent-verify"
	ActionRemoveTorrent   = "remove-torrent"
	ActionDeleteTorrent   = "delete-torrent"
	ActionRelocateTorrent = "relocate-torrent"
	ActionQueueMoveTop    = "queue-move-top"
	ActionQueueMoveUp     = "queue-move-up"
	ActionQueueMoveDown   = "queue-move-down"
	ActionQueueMoveBottom = "queue-move-bottom"
	ActionShowProperties  = "show-torrent-properties"
	ActionOpenFolder      = "open-torrent-folder"
	ActionCopyMagnetLink  = "copy-magnet-link-to-clipboard"
	ActionReannounce      = "torrent-reannounce"
	ActionOpenTorrent     = "open-torrent"
	ActionOpenURL         = "open-torrent-from-url"
	ActionShowPreferences = "show-preferences"
	ActionShowMessageLog  = "show-message-log"
	ActionShowAbout       = "show-about-dialog"
	ActionShowStats       = "show-stats"
	ActionToggleAltSpeed  = "toggle-alt-speed"
	ActionToggleMainWin   = "toggle-main-window"
	ActionShowMainWin     = "present-main-window"
	ActionQuit            = "quit"
)

// ActionRegistry abstracts the toolkit's named-action table.
type ActionRegistry interface {
	SetSensitive(name string, sensitive bool)
	SetToggled(name string, toggled bool)
	Activate(name string)
}

// SelectionCounts summarizes the current multi-selection for
// sensitivity derivation.
type SelectionCounts struct {
	Total       int
	Queued      int
	Stopped     int
	CanAnnounce bool
}

// SelectionSource reads selection and torrent-count state. The main
// window and session facade implement it; tests use a stub.
type SelectionSource interface {
	SelectedCounts() SelectionCounts
	TorrentCount() int
	ActiveTorrentCount() int
}

// ActionSync derives action sensitivity from the current selection and
// torrent counts. Recompute is a pure projection of those inputs; it
// writes the full sensitivity vector every time, no partial updates.
type ActionSync struct {
	queue    TaskQueue
	closing  *ClosingFlag
	source   SelectionSource
	registry ActionRegistry

	pending bool
}

func NewActionSync(queue TaskQueue, closing *ClosingFlag, source SelectionSource, registry ActionRegistry) *ActionSync {
	return &ActionSync{
		queue:    queue,
		closing:  closing,
		source:   source,
		registry: registry,
	}
}

// RecomputeSoon schedules a deferred Recompute, coalescing bursts of
// selection-changed and row-changed signals into one pass.
func (s *ActionSync) RecomputeSoon() {
	if s.pending || s.closing.IsSet() {
		return
	}
	s.pending = true
	s.queue.Post(func() {
		s.pending = false
		s.Recompute()
	})
}

// Recompute reads the selection and torrent counts once and sets every
// selection-dependent action's enabled flag. No-op during shutdown.
func (s *ActionSync) Recompute() {
	if s.closing.IsSet() {
		return
	}

	total := s.source.TorrentCount()
	active := s.source.ActiveTorrentCount()
	sel := s.source.SelectedCounts()
	hasSelection := sel.Total > 0

	s.registry.SetSensitive(ActionSelectAll, total != 0)
	s.registry.SetSensitive(ActionDeselectAll, total != 0)
	s.registry.SetSensitive(ActionPauseAll, active != 0)
	s.registry.SetSensitive(ActionStartAll, active != total)

	s.registry.SetSensitive(ActionTorrentStop, sel.Stopped < sel.Total)
	s.registry.SetSensitive(ActionTorrentStart, sel.Stopped > 0)
	s.registry.SetSensitive(ActionTorrentStartNow, sel.Stopped+sel.Queued > 0)
	s.registry.SetSensitive(ActionTorrentVerify, hasSelection)
	s.registry.SetSensitive(ActionRemoveTorrent, hasSelection)
	s.registry.SetSensitive(ActionDeleteTorrent, hasSelection)
	s.registry.SetSensitive(ActionRelocateTorrent, hasSelection)
	s.registry.SetSensitive(ActionQueueMoveTop, hasSelection)
	s.registry.SetSensitive(ActionQueueMoveUp, hasSelection)
	s.registry.SetSensitive(ActionQueueMoveDown, hasSelection)
	s.registry.SetSensitive(ActionQueueMoveBottom, hasSelection)
	s.registry.SetSensitive(ActionShowProperties, hasSelection)
	s.registry.SetSensitive(ActionOpenFolder, sel.Total == 1)
	s.registry.SetSensitive(ActionCopyMagnetLink, sel.Total == 1)
	s.registry.SetSensitive(ActionReannounce, sel.CanAnnounce)
}

// Pending reports whether a coalesced recompute is waiting.
func (s *ActionSync) Pending() bool {
	return s.pending
}

// Dispatcher routes activated action names to handlers. The table is
// closed: activating a name with no handler is a programming error in
// the menu definitions and panics.
type Dispatcher struct {
	handlers map[string]func()
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]func())}
}

// Handle registers the handler for an action name.
func (d *Dispatcher) Handle(name string, fn func()) {
	d.handlers[name] = fn
}

// Dispatch invokes the handler for name.
func (d *Dispatcher) Dispatch(name string) {
	fn, ok := d.handlers[name]
	if !ok {
		panic(fmt.Sprintf("unhandled action %q", name))
	}
	fn()
}

// Known reports whether name has a registered handler.
func (d *Dispatcher) Known(name string) bool {
	_, ok := d.handlers[name]
	return ok
}
