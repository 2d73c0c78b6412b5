package session

import (
	"golang.org/x/time/rate"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/prefs"
)

// ApplyPref pushes one changed preference into the running engine.
// Keys the engine cannot change at runtime are noted and picked up on
// the next start.
func (s *Session) ApplyPref(key string) {
	switch key {
	case prefs.KeySpeedLimitDown, prefs.KeySpeedLimitDownEnabled,
		prefs.KeySpeedLimitUp, prefs.KeySpeedLimitUpEnabled,
		prefs.KeyAltSpeedEnabled, prefs.KeyAltSpeedDown, prefs.KeyAltSpeedUp:
		s.applySpeedLimits()
	case prefs.KeyDownloadQueueSize:
		s.promoteQueued()
	case prefs.KeyDownloadDir:
		common.LogInfo("Download dir changed, applies to torrents added from now on")
	case prefs.KeyPeerPort, prefs.KeyPeerPortRandomOnStart,
		prefs.KeyPexEnabled, prefs.KeyDHTEnabled, prefs.KeyUTPEnabled:
		common.LogInfo("Preference %s takes effect on next start", key)
	case prefs.KeyRatioLimit, prefs.KeyRatioLimitEnabled:
		s.enforceRatioLimit()
	}
}

// applySpeedLimits reconfigures both limiters. The temporary limits
// override the per-direction ones while alt-speed is on.
func (s *Session) applySpeedLimits() {
	if s.store.GetFlag(prefs.KeyAltSpeedEnabled) {
		setLimit(s.dlLimiter, s.store.GetInt(prefs.KeyAltSpeedDown))
		setLimit(s.ulLimiter, s.store.GetInt(prefs.KeyAltSpeedUp))
		return
	}
	applyLimit(s.dlLimiter, s.store, prefs.KeySpeedLimitDownEnabled, prefs.KeySpeedLimitDown)
	applyLimit(s.ulLimiter, s.store, prefs.KeySpeedLimitUpEnabled, prefs.KeySpeedLimitUp)
}

func applyLimit(l *rate.Limiter, store *prefs.Store, enabledKey, kbpsKey string) {
	if !store.GetFlag(enabledKey) {
		l.SetLimit(rate.Inf)
		return
	}
	setLimit(l, store.GetInt(kbpsKey))
}

func setLimit(l *rate.Limiter, kbps int) {
	bps := kbps * 1024
	if bps <= 0 {
		l.SetLimit(rate.Inf)
		return
	}
	l.SetLimit(rate.Limit(bps))
	l.SetBurst(bps)
}

// enforceRatioLimit stops seeding torrents whose upload ratio has
// reached the configured limit.
func (s *Session) enforceRatioLimit() {
	if !s.store.GetFlag(prefs.KeyRatioLimitEnabled) {
		return
	}
	limit := s.store.GetDouble(prefs.KeyRatioLimit)
	if limit <= 0 {
		return
	}

	s.mu.Lock()
	var done []int
	for _, row := range s.rows {
		if row.Activity != ActivitySeeding || row.Downloaded <= 0 {
			continue
		}
		if float64(row.Uploaded)/float64(row.Downloaded) >= limit {
			done = append(done, row.ID)
		}
	}
	s.mu.Unlock()

	for _, id := range done {
		common.LogInfo("Seed ratio reached for torrent %d, stopping", id)
		s.stopTorrent(id)
	}
}
