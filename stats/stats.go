// Package stats persists cumulative transfer totals across runs, shown
// in the statistics dialog and the CLI status command.
package stats

import (
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rkost/transmission/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	started_at     INTEGER NOT NULL,
	downloaded     INTEGER NOT NULL DEFAULT 0,
	uploaded       INTEGER NOT NULL DEFAULT 0,
	seconds_active INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS totals (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	downloaded     INTEGER NOT NULL DEFAULT 0,
	uploaded       INTEGER NOT NULL DEFAULT 0,
	seconds_active INTEGER NOT NULL DEFAULT 0,
	session_count  INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO totals (id) VALUES (1);
`

// Totals is one row of transfer accounting.
type Totals struct {
	Downloaded    int64
	Uploaded      int64
	SecondsActive int64
	SessionCount  int64
}

// Ratio returns upload/download, or 0 with nothing downloaded.
func (t Totals) Ratio() float64 {
	if t.Downloaded == 0 {
		return 0
	}
	return float64(t.Uploaded) / float64(t.Downloaded)
}

// Store records per-run and cumulative transfer stats in a sqlite
// database. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	runID   string
	started time.Time
}

// Open opens or creates the stats database at path and begins a new
// run.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "failed to open stats database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "failed to migrate stats database")
	}

	s := &Store{
		db:      db,
		runID:   uuid.NewString(),
		started: time.Now(),
	}
	if _, err := db.Exec(`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		s.runID, s.started.Unix()); err != nil {
		db.Close()
		return nil, common.WrapError(err, "failed to record run")
	}
	if _, err := db.Exec(`UPDATE totals SET session_count = session_count + 1 WHERE id = 1`); err != nil {
		db.Close()
		return nil, common.WrapError(err, "failed to bump session count")
	}
	common.LogDebug("Stats run %s started", s.runID)
	return s, nil
}

// ReadTotals reads the all-time totals without starting a run, so a
// one-shot status query does not inflate the session count. A missing
// database yields zero totals and is left uncreated.
func ReadTotals(path string) (Totals, error) {
	if !common.FileExists(path) {
		return Totals{}, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Totals{}, common.WrapError(err, "failed to open stats database")
	}
	defer db.Close()

	var t Totals
	err = db.QueryRow(
		`SELECT downloaded, uploaded, seconds_active, session_count FROM totals WHERE id = 1`).
		Scan(&t.Downloaded, &t.Uploaded, &t.SecondsActive, &t.SessionCount)
	if err == sql.ErrNoRows {
		return Totals{}, nil
	}
	if err != nil {
		return Totals{}, err
	}
	return t, nil
}

// AddTraffic credits transferred bytes to the current run and the
// cumulative totals. Implements the session's TransferRecorder.
func (s *Store) AddTraffic(downloaded, uploaded int64) error {
	if downloaded <= 0 && uploaded <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		`UPDATE runs SET downloaded = downloaded + ?, uploaded = uploaded + ? WHERE id = ?`,
		downloaded, uploaded, s.runID); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`UPDATE totals SET downloaded = downloaded + ?, uploaded = uploaded + ? WHERE id = 1`,
		downloaded, uploaded)
	return err
}

// Current returns this run's numbers.
func (s *Store) Current() (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	err := s.db.QueryRow(
		`SELECT downloaded, uploaded, seconds_active FROM runs WHERE id = ?`, s.runID).
		Scan(&t.Downloaded, &t.Uploaded, &t.SecondsActive)
	if err != nil {
		return Totals{}, err
	}
	t.SecondsActive = int64(time.Since(s.started).Seconds())
	t.SessionCount = 1
	return t, nil
}

// Cumulative returns the all-time totals, including the running
// session's uptime.
func (s *Store) Cumulative() (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	err := s.db.QueryRow(
		`SELECT downloaded, uploaded, seconds_active, session_count FROM totals WHERE id = 1`).
		Scan(&t.Downloaded, &t.Uploaded, &t.SecondsActive, &t.SessionCount)
	if err != nil {
		return Totals{}, err
	}
	t.SecondsActive += int64(time.Since(s.started).Seconds())
	return t, nil
}

// Close finalizes the run's active time and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := int64(time.Since(s.started).Seconds())
	if _, err := s.db.Exec(
		`UPDATE runs SET seconds_active = ? WHERE id = ?`, elapsed, s.runID); err != nil {
		common.LogWarn("Failed to finalize run stats: %v", err)
	}
	if _, err := s.db.Exec(
		`UPDATE totals SET seconds_active = seconds_active + ? WHERE id = 1`, elapsed); err != nil {
		common.LogWarn("Failed to finalize total stats: %v", err)
	}
	return s.db.Close()
}
