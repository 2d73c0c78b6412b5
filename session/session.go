package session

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"golang.org/x/time/rate"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/prefs"
)

const (
	// Reannounce throttle, matching tracker min-interval etiquette.
	reannounceCooldown = 30 * time.Second

	maxConnsPerTorrent = 50
)

// AddErrorCode classifies a failed torrent add.
type AddErrorCode int

const (
	AddErrorCorrupt AddErrorCode = iota
	AddErrorDuplicate
)

// TransferRecorder accumulates session traffic totals. The stats store
// implements it.
type TransferRecorder interface {
	AddTraffic(downloaded, uploaded int64) error
}

// Session wraps the torrent engine behind the narrow surface the UI
// consumes: an ordered row model, add/remove/start/stop operations,
// and a change listener. All methods are safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	client *torrent.Client
	store  *prefs.Store

	rows   []*TorrentRow
	byID   map[int]*TorrentRow
	byHash map[metainfo.Hash]int
	nextID int

	listener Listener

	dlLimiter *rate.Limiter
	ulLimiter *rate.Limiter

	recorder TransferRecorder

	onBusy      func(busy bool)
	onAddError  func(code AddErrorCode, name string)
	onAddPrompt func(prompt *AddPrompt)

	intake *intake

	torrentsDir string
	closed      bool
}

// New starts a torrent engine configured from the preference store.
func New(store *prefs.Store) (*Session, error) {
	dataDir, err := common.GetDataDir()
	if err != nil {
		return nil, err
	}
	torrentsDir := filepath.Join(dataDir, common.TorrentsDirName)
	if err := common.EnsureDir(torrentsDir); err != nil {
		return nil, err
	}

	dlLimiter := rate.NewLimiter(rate.Inf, 0)
	ulLimiter := rate.NewLimiter(rate.Inf, 0)

	cfg := torrent.NewDefaultClientConfig()
	cfg.DataDir = store.GetString(prefs.KeyDownloadDir)
	cfg.Seed = true
	cfg.NoDHT = !store.GetFlag(prefs.KeyDHTEnabled)
	cfg.DisablePEX = !store.GetFlag(prefs.KeyPexEnabled)
	cfg.DisableUTP = !store.GetFlag(prefs.KeyUTPEnabled)
	cfg.DownloadRateLimiter = dlLimiter
	cfg.UploadRateLimiter = ulLimiter
	if store.GetFlag(prefs.KeyPeerPortRandomOnStart) {
		cfg.ListenPort = 0
	} else {
		cfg.ListenPort = store.GetInt(prefs.KeyPeerPort)
	}

	if err := common.EnsureDir(cfg.DataDir); err != nil {
		return nil, err
	}

	client, err := torrent.NewClient(cfg)
	if err != nil {
		return nil, common.WrapError(err, "failed to start torrent engine")
	}

	s := &Session{
		client:      client,
		store:       store,
		byID:        make(map[int]*TorrentRow),
		byHash:      make(map[metainfo.Hash]int),
		nextID:      1,
		dlLimiter:   dlLimiter,
		ulLimiter:   ulLimiter,
		torrentsDir: torrentsDir,
	}
	s.intake = newIntake(s)
	s.applySpeedLimits()
	common.LogInfo("Torrent engine started, data dir %s", cfg.DataDir)
	return s, nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SetListener registers the backend change callback. Events may be
// delivered from engine goroutines.
func (s *Session) SetListener(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// SetRecorder wires the cumulative transfer recorder.
func (s *Session) SetRecorder(r TransferRecorder) {
	s.mu.Lock()
	s.recorder = r
	s.mu.Unlock()
}

// OnBusy registers the busy-indicator callback.
func (s *Session) OnBusy(fn func(bool)) { s.onBusy = fn }

// OnAddError registers the add-failure callback. Errors are batched by
// the intake before reaching it.
func (s *Session) OnAddError(fn func(AddErrorCode, string)) { s.onAddError = fn }

// OnAddPrompt registers the callback shown when the show-options-window
// preference asks for per-torrent confirmation before adding.
func (s *Session) OnAddPrompt(fn func(*AddPrompt)) { s.onAddPrompt = fn }

// notify delivers one event to the listener, honoring a remove request.
func (s *Session) notify(kind EventKind, torrentID int) {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return
	}
	if l(kind, torrentID) == ListenerRemove {
		s.mu.Lock()
		s.listener = nil
		s.mu.Unlock()
	}
}

// TorrentCount returns the number of torrents in the model.
func (s *Session) TorrentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// ActiveTorrentCount returns the number of torrents not stopped.
func (s *Session) ActiveTorrentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.rows {
		if row.Activity.IsActive() {
			n++
		}
	}
	return n
}

// Model returns the rows in queue order. The slice is a snapshot; the
// row structs are shared and owned by the session.
func (s *Session) Model() []*TorrentRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*TorrentRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Find returns the row with the given id, or nil.
func (s *Session) Find(id int) *TorrentRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id]
}

// DataPath returns where a row's payload lives on disk.
func (s *Session) DataPath(row *TorrentRow) string {
	return filepath.Join(s.store.GetString(prefs.KeyDownloadDir), row.Name)
}

// Relocate moves a torrent's payload to a new directory. The torrent is
// stopped first; the engine picks up the new location on restart.
func (s *Session) Relocate(id int, dir string) error {
	s.mu.Lock()
	row, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return common.ErrTorrentNotFound
	}
	if !row.haveInfo {
		s.mu.Unlock()
		return common.WrapError(common.ErrNotReady, row.Name)
	}
	name := row.Name
	s.mu.Unlock()

	s.stopTorrent(id)

	oldPath := filepath.Join(s.store.GetString(prefs.KeyDownloadDir), name)
	newPath := filepath.Join(dir, name)
	if oldPath == newPath {
		return nil
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return common.WrapError(err, "failed to move torrent data")
	}
	common.LogInfo("Moved %s to %s, engine will use it after restart", name, dir)
	s.notify(EventTorrentMoved, id)
	return nil
}

// register adds a freshly created engine handle to the model and
// announces it. Returns the new row's id.
func (s *Session) register(t *torrent.Torrent, startStopped bool) int {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	row := &TorrentRow{
		ID:            id,
		Name:          t.Name(),
		Handle:        t,
		Activity:      ActivityStopped,
		QueuePosition: len(s.rows),
		AddedAt:       time.Now(),
		lastUpdate:    time.Now(),
	}
	s.rows = append(s.rows, row)
	s.byID[id] = row
	s.byHash[t.InfoHash()] = id
	s.mu.Unlock()

	go func() {
		<-t.GotInfo()
		s.mu.Lock()
		if r, ok := s.byID[id]; ok {
			r.haveInfo = true
			r.Name = t.Name()
			r.TotalSize = t.Length()
		}
		s.mu.Unlock()
	}()

	if !startStopped {
		s.startTorrent(id, false)
	}
	s.notify(EventTorrentAdded, id)
	return id
}

// Remove drops a torrent. With deleteData, the downloaded payload is
// deleted from disk as well.
func (s *Session) Remove(id int, deleteData bool) error {
	s.mu.Lock()
	row, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return common.ErrTorrentNotFound
	}
	dataPath := ""
	if deleteData && row.haveInfo {
		dataPath = filepath.Join(s.store.GetString(prefs.KeyDownloadDir), row.Name)
	}
	s.mu.Unlock()

	if deleteData {
		s.notify(EventTorrentTrashing, id)
	} else {
		s.notify(EventTorrentRemoving, id)
	}

	s.mu.Lock()
	delete(s.byID, id)
	delete(s.byHash, row.Handle.InfoHash())
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			break
		}
	}
	s.renumberQueueLocked()
	s.mu.Unlock()

	row.Handle.Drop()
	s.forgetTorrentFile(row.Handle.InfoHash())

	if dataPath != "" {
		go func() {
			if err := os.RemoveAll(dataPath); err != nil {
				common.LogWarn("Failed to delete data for %s: %v", row.Name, err)
			}
		}()
	}

	common.LogInfo("Removed torrent %s (delete data: %v)", row.Name, deleteData)
	s.promoteQueued()
	return nil
}

// Update refreshes every row's stats from the engine and feeds the
// traffic delta to the recorder. Called from the periodic UI refresh.
func (s *Session) Update() {
	now := time.Now()
	var deltaDown, deltaUp int64

	s.mu.Lock()
	for _, row := range s.rows {
		t := row.Handle
		stats := t.Stats()

		downloaded := stats.BytesReadData.Int64()
		uploaded := stats.BytesWrittenData.Int64()

		elapsed := now.Sub(row.lastUpdate).Seconds()
		if elapsed > 0 {
			row.DownloadRate = int64(float64(downloaded-row.lastDownloaded) / elapsed)
			row.UploadRate = int64(float64(uploaded-row.lastUploaded) / elapsed)
		}
		deltaDown += downloaded - row.lastDownloaded
		deltaUp += uploaded - row.lastUploaded
		row.lastDownloaded = downloaded
		row.lastUploaded = uploaded
		row.lastUpdate = now

		row.Downloaded = downloaded
		row.Uploaded = uploaded
		row.PeerCount = stats.TotalPeers
		row.SeedCount = stats.ConnectedSeeders

		if row.haveInfo {
			row.TotalSize = t.Length()
			if t.Length() > 0 {
				row.Progress = float64(t.BytesCompleted()) / float64(t.Length())
			}
			if row.Activity == ActivityDownloading && t.BytesCompleted() >= t.Length() {
				row.Activity = ActivitySeeding
			}
		}
	}
	recorder := s.recorder
	s.mu.Unlock()

	if recorder != nil && (deltaDown > 0 || deltaUp > 0) {
		if err := recorder.AddTraffic(deltaDown, deltaUp); err != nil {
			common.LogWarn("Failed to record transfer stats: %v", err)
		}
	}

	s.promoteQueued()
	s.enforceRatioLimit()
}

// CloseHandle owns the engine for the duration of the blocking close.
type CloseHandle struct {
	client *torrent.Client
}

// Wait blocks until the engine has flushed and stopped.
func (h *CloseHandle) Wait() {
	h.client.Close()
	<-h.client.Closed()
}

// Close detaches the engine from the session and returns a handle for
// blocking shutdown on a background goroutine. The session accepts no
// further operations.
func (s *Session) Close() *CloseHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.listener = nil
	s.rows = nil
	s.byID = make(map[int]*TorrentRow)
	s.byHash = make(map[metainfo.Hash]int)
	common.LogInfo("Session closing")
	return &CloseHandle{client: s.client}
}

func (s *Session) renumberQueueLocked() {
	sort.SliceStable(s.rows, func(i, j int) bool {
		return s.rows[i].QueuePosition < s.rows[j].QueuePosition
	})
	for i, row := range s.rows {
		row.QueuePosition = i
	}
}
