package session

import (
	"context"
	"time"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/prefs"
)

// startTorrent moves a torrent toward downloading or seeding. Without
// bypassQueue, it honors the download queue size and parks the torrent
// in a queued state when every slot is taken.
func (s *Session) startTorrent(id int, bypassQueue bool) {
	s.mu.Lock()
	row, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if row.Activity.IsActive() && !(bypassQueue && row.Activity.IsQueued()) {
		s.mu.Unlock()
		return
	}

	queueSize := s.store.GetInt(prefs.KeyDownloadQueueSize)
	downloading := 0
	for _, r := range s.rows {
		if r.Activity == ActivityDownloading || r.Activity == ActivityChecking {
			downloading++
		}
	}

	if !bypassQueue && queueSize > 0 && downloading >= queueSize {
		row.Activity = ActivityQueuedDownload
		row.Handle.DisallowDataDownload()
		s.mu.Unlock()
		s.notify(EventTorrentStarted, id)
		return
	}

	s.activateLocked(row)
	s.mu.Unlock()
	s.notify(EventTorrentStarted, id)
}

// activateLocked flips the engine handle into transfer mode. Caller
// holds s.mu.
func (s *Session) activateLocked(row *TorrentRow) {
	t := row.Handle
	t.SetMaxEstablishedConns(maxConnsPerTorrent)
	t.AllowDataDownload()
	t.AllowDataUpload()
	if row.haveInfo && t.BytesCompleted() >= t.Length() && t.Length() > 0 {
		row.Activity = ActivitySeeding
	} else {
		row.Activity = ActivityDownloading
		go func() {
			<-t.GotInfo()
			t.DownloadAll()
		}()
	}
}

// stopTorrent halts transfer without dropping the torrent.
func (s *Session) stopTorrent(id int) {
	s.mu.Lock()
	row, ok := s.byID[id]
	if !ok || row.Activity == ActivityStopped {
		s.mu.Unlock()
		return
	}
	row.Activity = ActivityStopped
	row.DownloadRate = 0
	row.UploadRate = 0
	t := row.Handle
	t.DisallowDataDownload()
	t.DisallowDataUpload()
	t.SetMaxEstablishedConns(0)
	s.mu.Unlock()

	s.notify(EventTorrentStopped, id)
	s.promoteQueued()
}

// promoteQueued fills freed download slots from the queue, in queue
// order.
func (s *Session) promoteQueued() {
	queueSize := s.store.GetInt(prefs.KeyDownloadQueueSize)

	s.mu.Lock()
	var promoted []int
	downloading := 0
	for _, r := range s.rows {
		if r.Activity == ActivityDownloading || r.Activity == ActivityChecking {
			downloading++
		}
	}
	for _, r := range s.rows {
		if queueSize > 0 && downloading >= queueSize {
			break
		}
		if r.Activity == ActivityQueuedDownload {
			s.activateLocked(r)
			downloading++
			promoted = append(promoted, r.ID)
		}
	}
	s.mu.Unlock()

	for _, id := range promoted {
		s.notify(EventTorrentStarted, id)
	}
}

// verifyTorrent rehashes a torrent's data on a background goroutine.
func (s *Session) verifyTorrent(id int) {
	s.mu.Lock()
	row, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	previous := row.Activity
	if previous == ActivityChecking {
		s.mu.Unlock()
		return
	}
	row.Activity = ActivityChecking
	t := row.Handle
	s.mu.Unlock()

	go func() {
		<-t.GotInfo()
		if err := t.VerifyDataContext(context.Background()); err != nil {
			common.LogWarn("Verify failed for %s: %v", t.Name(), err)
		}
		s.mu.Lock()
		if r, ok := s.byID[id]; ok && r.Activity == ActivityChecking {
			r.Activity = previous
		}
		s.mu.Unlock()
		s.notify(EventTorrentChanged, id)
	}()
}

// reannounceTorrent asks the torrent's trackers for fresh peers by
// re-registering its announce list, throttled by a per-torrent
// cooldown.
func (s *Session) reannounceTorrent(id int) {
	s.mu.Lock()
	row, ok := s.byID[id]
	if !ok || !row.CanReannounce(time.Now(), reannounceCooldown) {
		s.mu.Unlock()
		return
	}
	row.lastAnnounce = time.Now()
	t := row.Handle
	s.mu.Unlock()

	mi := t.Metainfo()
	if len(mi.AnnounceList) > 0 {
		t.AddTrackers(mi.AnnounceList)
	} else if mi.Announce != "" {
		t.AddTrackers([][]string{{mi.Announce}})
	}
	common.LogDebug("Reannounced %s", t.Name())
}

// moveQueue applies one queue reordering verb to a torrent.
func (s *Session) moveQueue(id int, verb string) {
	s.mu.Lock()
	row, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	switch verb {
	case "top":
		row.QueuePosition = -1
	case "up":
		row.QueuePosition -= 2
	case "down":
		row.QueuePosition += 2
	case "bottom":
		row.QueuePosition = len(s.rows)
	}
	s.renumberQueueLocked()
	s.mu.Unlock()

	s.notify(EventQueuePositionsChanged, id)
	s.promoteQueued()
}
