package session

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/google/uuid"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/prefs"
)

// intake funnels every way a torrent enters the session: file chooser,
// drag and drop, magnet links, URLs, and the startup reload. Failures
// are batched per error code so a bulk drop produces one notification
// instead of one per file.
type intake struct {
	s *Session

	mu         sync.Mutex
	corrupt    []string
	duplicates []string
	flushTimer *time.Timer
}

func newIntake(s *Session) *intake {
	return &intake{s: s}
}

func (in *intake) reportError(code AddErrorCode, name string) {
	in.mu.Lock()
	switch code {
	case AddErrorCorrupt:
		in.corrupt = append(in.corrupt, name)
	case AddErrorDuplicate:
		in.duplicates = append(in.duplicates, name)
	}
	if in.flushTimer == nil {
		in.flushTimer = time.AfterFunc(common.IntakeFlushDelay, in.flush)
	}
	in.mu.Unlock()
}

func (in *intake) flush() {
	in.mu.Lock()
	corrupt := in.corrupt
	duplicates := in.duplicates
	in.corrupt = nil
	in.duplicates = nil
	in.flushTimer = nil
	in.mu.Unlock()

	if fn := in.s.onAddError; fn != nil {
		if len(corrupt) > 0 {
			fn(AddErrorCorrupt, strings.Join(corrupt, "\n"))
		}
		if len(duplicates) > 0 {
			fn(AddErrorDuplicate, strings.Join(duplicates, "\n"))
		}
	}
}

// AddPrompt is a deferred torrent add awaiting user confirmation in
// the options dialog. Exactly one of Commit or Discard must be called.
type AddPrompt struct {
	Name string
	Size int64

	s        *Session
	mi       *metainfo.MetaInfo
	origPath string
}

// Commit performs the add. With startNow, the torrent starts even if
// the start-added-torrents preference is off.
func (p *AddPrompt) Commit(startNow bool) error {
	return p.s.commitMetainfo(p.mi, p.origPath, startNow)
}

// Discard abandons the add, leaving the source file untouched.
func (p *AddPrompt) Discard() {
	common.LogDebug("Add of %s discarded", p.Name)
}

// AddFile adds a torrent from a .torrent file on disk. Honors the
// show-options-window preference by routing through the add prompt.
func (s *Session) AddFile(path string) error {
	if s.isClosed() {
		return common.ErrSessionClosed
	}
	mi, err := metainfo.LoadFromFile(path)
	if err != nil {
		s.intake.reportError(AddErrorCorrupt, filepath.Base(path))
		return common.WrapError(common.ErrCorruptTorrent, path)
	}

	hash := mi.HashInfoBytes()
	s.mu.Lock()
	_, dup := s.byHash[hash]
	s.mu.Unlock()
	if dup {
		s.intake.reportError(AddErrorDuplicate, filepath.Base(path))
		return common.WrapError(common.ErrDuplicateTorrent, path)
	}

	if s.store.GetFlag(prefs.KeyShowOptionsWindow) && s.onAddPrompt != nil {
		name := filepath.Base(path)
		var size int64
		if info, err := mi.UnmarshalInfo(); err == nil {
			name = info.Name
			size = info.TotalLength()
		}
		s.onAddPrompt(&AddPrompt{Name: name, Size: size, s: s, mi: mi, origPath: path})
		return nil
	}
	return s.commitMetainfo(mi, path, false)
}

// commitMetainfo registers a parsed torrent with the engine, stashes a
// copy of the metainfo for the next startup, and optionally trashes
// the source file.
func (s *Session) commitMetainfo(mi *metainfo.MetaInfo, origPath string, startNow bool) error {
	t, err := s.client.AddTorrent(mi)
	if err != nil {
		s.intake.reportError(AddErrorCorrupt, filepath.Base(origPath))
		return common.WrapError(common.ErrCorruptTorrent, origPath)
	}

	if err := s.stashTorrentFile(mi); err != nil {
		common.LogWarn("Failed to stash torrent file: %v", err)
	}

	startStopped := !startNow && !s.store.GetFlag(prefs.KeyStartAddedTorrents)
	id := s.register(t, startStopped)
	if startNow {
		s.startTorrent(id, true)
	}

	if origPath != "" && s.store.GetFlag(prefs.KeyTrashOriginalFiles) {
		if err := os.Remove(origPath); err != nil {
			common.LogWarn("Failed to trash %s: %v", origPath, err)
		}
	}
	return nil
}

// AddMagnet adds a torrent from a magnet URI.
func (s *Session) AddMagnet(uri string) error {
	if s.isClosed() {
		return common.ErrSessionClosed
	}
	t, err := s.client.AddMagnet(uri)
	if err != nil {
		s.intake.reportError(AddErrorCorrupt, uri)
		return common.WrapError(common.ErrCorruptTorrent, uri)
	}

	s.mu.Lock()
	_, dup := s.byHash[t.InfoHash()]
	s.mu.Unlock()
	if dup {
		s.intake.reportError(AddErrorDuplicate, t.Name())
		return common.WrapError(common.ErrDuplicateTorrent, uri)
	}

	startStopped := !s.store.GetFlag(prefs.KeyStartAddedTorrents)
	id := s.register(t, startStopped)

	// Stash the metainfo once the metadata exchange completes.
	go func() {
		<-t.GotInfo()
		mi := t.Metainfo()
		if err := s.stashTorrentFile(&mi); err != nil {
			common.LogWarn("Failed to stash torrent file: %v", err)
		}
		s.notify(EventTorrentChanged, id)
	}()
	return nil
}

// AddURL downloads a .torrent from an HTTP or HTTPS URL into a
// temporary file, then adds it like a local file.
func (s *Session) AddURL(rawURL string) error {
	if s.isClosed() {
		return common.ErrSessionClosed
	}
	if fn := s.onBusy; fn != nil {
		fn(true)
		defer fn(false)
	}

	client := &http.Client{Timeout: common.URLFetchTimeout}
	resp, err := client.Get(rawURL)
	if err != nil {
		s.intake.reportError(AddErrorCorrupt, rawURL)
		return common.WrapError(common.ErrCorruptTorrent, rawURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.intake.reportError(AddErrorCorrupt, rawURL)
		return common.WrapError(common.ErrCorruptTorrent, fmt.Sprintf("%s: %s", rawURL, resp.Status))
	}

	tmp := filepath.Join(os.TempDir(), uuid.NewString()+".torrent")
	f, err := os.Create(tmp)
	if err != nil {
		return common.WrapError(err, "failed to create temp file")
	}
	_, copyErr := io.Copy(f, resp.Body)
	f.Close()
	defer os.Remove(tmp)
	if copyErr != nil {
		s.intake.reportError(AddErrorCorrupt, rawURL)
		return common.WrapError(common.ErrCorruptTorrent, rawURL)
	}

	return s.AddFile(tmp)
}

// AddDropped handles a drag-and-drop payload: a list of file URIs,
// magnet links, or web URLs, one per line.
func (s *Session) AddDropped(uris []string) error {
	if fn := s.onBusy; fn != nil {
		fn(true)
		defer fn(false)
	}

	var firstErr error
	for _, raw := range uris {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var err error
		switch {
		case strings.HasPrefix(raw, "magnet:"):
			err = s.AddMagnet(raw)
		case strings.HasPrefix(raw, "file://"):
			if u, parseErr := url.Parse(raw); parseErr == nil {
				err = s.AddFile(u.Path)
			} else {
				err = common.WrapError(common.ErrUnsupportedDrop, raw)
			}
		case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
			err = s.AddURL(raw)
		case strings.HasSuffix(raw, ".torrent"):
			err = s.AddFile(raw)
		default:
			err = common.WrapError(common.ErrUnsupportedDrop, raw)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Load re-adds every torrent stashed in the torrents directory.
// Called once at startup, before the window shows.
func (s *Session) Load(startPaused bool) int {
	entries, err := os.ReadDir(s.torrentsDir)
	if err != nil {
		common.LogWarn("Failed to read torrents dir: %v", err)
		return 0
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".torrent") {
			continue
		}
		path := filepath.Join(s.torrentsDir, entry.Name())
		mi, err := metainfo.LoadFromFile(path)
		if err != nil {
			common.LogWarn("Skipping corrupt stashed torrent %s: %v", entry.Name(), err)
			continue
		}
		t, err := s.client.AddTorrent(mi)
		if err != nil {
			common.LogWarn("Failed to re-add %s: %v", entry.Name(), err)
			continue
		}
		s.register(t, startPaused)
		loaded++
	}
	common.LogInfo("Loaded %d stashed torrents", loaded)
	return loaded
}

func (s *Session) stashTorrentFile(mi *metainfo.MetaInfo) error {
	path := filepath.Join(s.torrentsDir, mi.HashInfoBytes().HexString()+".torrent")
	if common.FileExists(path) {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return mi.Write(f)
}

func (s *Session) forgetTorrentFile(hash metainfo.Hash) {
	path := filepath.Join(s.torrentsDir, hash.HexString()+".torrent")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		common.LogWarn("Failed to remove stashed torrent: %v", err)
	}
}
