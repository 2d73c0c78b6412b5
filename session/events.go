package session

// EventKind identifies a backend change reported through the RPC
// listener callback.
type EventKind int

const (
	EventTorrentAdded EventKind = iota
	EventTorrentRemoving
	EventTorrentTrashing
	EventTorrentChanged
	EventTorrentMoved
	EventTorrentStarted
	EventTorrentStopped
	EventQueuePositionsChanged
	EventSessionChanged
	EventSessionClose
)

func (k EventKind) String() string {
	switch k {
	case EventTorrentAdded:
		return "torrent-added"
	case EventTorrentRemoving:
		return "torrent-removing"
	case EventTorrentTrashing:
		return "torrent-trashing"
	case EventTorrentChanged:
		return "torrent-changed"
	case EventTorrentMoved:
		return "torrent-moved"
	case EventTorrentStarted:
		return "torrent-started"
	case EventTorrentStopped:
		return "torrent-stopped"
	case EventQueuePositionsChanged:
		return "queue-positions-changed"
	case EventSessionChanged:
		return "session-changed"
	case EventSessionClose:
		return "session-close"
	default:
		return "unknown"
	}
}

// ListenerStatus is returned by the RPC listener to tell the backend
// whether to keep the subscription.
type ListenerStatus int

const (
	// ListenerKeep keeps the subscription alive.
	ListenerKeep ListenerStatus = iota
	// ListenerRemove drops the subscription after this event.
	ListenerRemove
)

// Listener receives backend change events. The backend may invoke it
// from any goroutine; implementations must not touch UI state directly.
type Listener func(kind EventKind, torrentID int) ListenerStatus
