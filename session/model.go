package session

import (
	"time"

	"github.com/anacrolix/torrent"
)

// Activity is a torrent's coarse state as shown in the torrent list.
type Activity int

const (
	ActivityStopped Activity = iota
	ActivityQueuedDownload
	ActivityQueuedSeed
	ActivityChecking
	ActivityDownloading
	ActivitySeeding
)

func (a Activity) String() string {
	switch a {
	case ActivityStopped:
		return "Stopped"
	case ActivityQueuedDownload:
		return "Queued"
	case ActivityQueuedSeed:
		return "Queued to seed"
	case ActivityChecking:
		return "Verifying"
	case ActivityDownloading:
		return "Downloading"
	case ActivitySeeding:
		return "Seeding"
	default:
		return "Unknown"
	}
}

// IsActive reports whether the torrent is exchanging or about to
// exchange data.
func (a Activity) IsActive() bool {
	return a != ActivityStopped
}

// IsQueued reports whether the torrent is waiting for a queue slot.
func (a Activity) IsQueued() bool {
	return a == ActivityQueuedDownload || a == ActivityQueuedSeed
}

// TorrentRow is one torrent as the UI sees it. The session owns and
// mutates rows; everyone else reads.
type TorrentRow struct {
	ID       int
	Name     string
	Activity Activity
	Handle   *torrent.Torrent

	TotalSize    int64
	Downloaded   int64
	Uploaded     int64
	Progress     float64
	DownloadRate int64
	UploadRate   int64
	PeerCount    int
	SeedCount    int

	QueuePosition int
	AddedAt       time.Time

	// Rate bookkeeping for Update.
	lastDownloaded int64
	lastUploaded   int64
	lastUpdate     time.Time

	lastAnnounce time.Time
	haveInfo     bool
}

// CanReannounce reports whether a manual tracker reannounce is allowed
// right now. Stopped torrents never announce, and announces are rate
// limited to spare trackers.
func (r *TorrentRow) CanReannounce(now time.Time, cooldown time.Duration) bool {
	if r.Activity == ActivityStopped || !r.haveInfo {
		return false
	}
	return now.Sub(r.lastAnnounce) >= cooldown
}

// CanReannounceNow is CanReannounce against the session's standard
// cooldown.
func (r *TorrentRow) CanReannounceNow() bool {
	return r.CanReannounce(time.Now(), reannounceCooldown)
}

// MagnetLink returns the torrent's magnet URI, or "" before metadata
// arrives.
func (r *TorrentRow) MagnetLink() string {
	if r.Handle == nil {
		return ""
	}
	mi := r.Handle.Metainfo()
	m, err := mi.MagnetV2()
	if err != nil {
		return ""
	}
	return m.String()
}
