package stats

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddTrafficAccumulates(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddTraffic(1000, 500); err != nil {
		t.Fatalf("AddTraffic: %v", err)
	}
	if err := s.AddTraffic(2000, 1500); err != nil {
		t.Fatalf("AddTraffic: %v", err)
	}
	// Zero deltas are a no-op.
	if err := s.AddTraffic(0, 0); err != nil {
		t.Fatalf("AddTraffic(0,0): %v", err)
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Downloaded != 3000 || cur.Uploaded != 2000 {
		t.Errorf("current = %+v, want 3000 down / 2000 up", cur)
	}

	cum, err := s.Cumulative()
	if err != nil {
		t.Fatalf("Cumulative: %v", err)
	}
	if cum.Downloaded != 3000 || cum.Uploaded != 2000 {
		t.Errorf("cumulative = %+v, want 3000 down / 2000 up", cum)
	}
	if cum.SessionCount != 1 {
		t.Errorf("session count = %d, want 1", cum.SessionCount)
	}
}

func TestTotalsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.AddTraffic(4096, 1024); err != nil {
		t.Fatalf("AddTraffic: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	cum, err := s2.Cumulative()
	if err != nil {
		t.Fatalf("Cumulative: %v", err)
	}
	if cum.Downloaded != 4096 || cum.Uploaded != 1024 {
		t.Errorf("cumulative = %+v after reopen", cum)
	}
	if cum.SessionCount != 2 {
		t.Errorf("session count = %d, want 2", cum.SessionCount)
	}

	cur, err := s2.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Downloaded != 0 || cur.Uploaded != 0 {
		t.Errorf("new run inherited traffic: %+v", cur)
	}
}

func TestReadTotalsLeavesSessionCountAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.AddTraffic(2048, 512); err != nil {
		t.Fatalf("AddTraffic: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reading twice must not count as two more sessions.
	for i := 0; i < 2; i++ {
		got, err := ReadTotals(path)
		if err != nil {
			t.Fatalf("ReadTotals: %v", err)
		}
		if got.SessionCount != 1 {
			t.Errorf("read %d: session count = %d, want 1", i+1, got.SessionCount)
		}
		if got.Downloaded != 2048 || got.Uploaded != 512 {
			t.Errorf("read %d: totals = %+v", i+1, got)
		}
	}
}

func TestReadTotalsMissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")

	got, err := ReadTotals(path)
	if err != nil {
		t.Fatalf("ReadTotals: %v", err)
	}
	if got != (Totals{}) {
		t.Errorf("totals = %+v, want zero", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("read-only query created the database file")
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name   string
		totals Totals
		want   float64
	}{
		{"zero download", Totals{Uploaded: 100}, 0},
		{"even", Totals{Downloaded: 100, Uploaded: 100}, 1},
		{"half", Totals{Downloaded: 200, Uploaded: 100}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.totals.Ratio(); got != tt.want {
				t.Errorf("Ratio() = %v, want %v", got, tt.want)
			}
		})
	}
}
