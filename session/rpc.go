package session

import (
	"github.com/rkost/transmission/common"
)

// Exec runs one torrent method against a set of torrent ids,
// fire-and-forget. This is the single entry point the UI's menu
// handlers funnel through.
func (s *Session) Exec(method string, ids []int) error {
	switch method {
	case "torrent-start":
		for _, id := range ids {
			s.startTorrent(id, false)
		}
	case "torrent-start-now":
		for _, id := range ids {
			s.startTorrent(id, true)
		}
	case "torrent-stop":
		for _, id := range ids {
			s.stopTorrent(id)
		}
	case "torrent-verify":
		for _, id := range ids {
			s.verifyTorrent(id)
		}
	case "torrent-reannounce":
		for _, id := range ids {
			s.reannounceTorrent(id)
		}
	case "queue-move-top":
		for _, id := range ids {
			s.moveQueue(id, "top")
		}
	case "queue-move-up":
		for _, id := range ids {
			s.moveQueue(id, "up")
		}
	case "queue-move-down":
		for _, id := range ids {
			s.moveQueue(id, "down")
		}
	case "queue-move-bottom":
		for _, id := range ids {
			s.moveQueue(id, "bottom")
		}
	default:
		return common.WrapError(common.ErrUnknownMethod, method)
	}
	return nil
}

// StartAll resumes every stopped torrent.
func (s *Session) StartAll() {
	for _, row := range s.Model() {
		if row.Activity == ActivityStopped {
			s.startTorrent(row.ID, false)
		}
	}
}

// StopAll pauses every active torrent.
func (s *Session) StopAll() {
	for _, row := range s.Model() {
		if row.Activity.IsActive() {
			s.stopTorrent(row.ID)
		}
	}
}
