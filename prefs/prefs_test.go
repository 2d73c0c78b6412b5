package prefs

import (
	"testing"
)

func TestStore_TypedAccessors(t *testing.T) {
	s := New()

	s.SetInt(KeyPeerPort, 12345)
	if got := s.GetInt(KeyPeerPort); got != 12345 {
		t.Errorf("GetInt() = %v, want 12345", got)
	}

	s.SetFlag(KeyDHTEnabled, false)
	if s.GetFlag(KeyDHTEnabled) {
		t.Error("GetFlag() should return false after SetFlag(false)")
	}

	s.SetString(KeyDownloadDir, "/srv/torrents")
	if got := s.GetString(KeyDownloadDir); got != "/srv/torrents" {
		t.Errorf("GetString() = %v, want /srv/torrents", got)
	}

	s.SetDouble(KeyRatioLimit, 1.5)
	if got := s.GetDouble(KeyRatioLimit); got != 1.5 {
		t.Errorf("GetDouble() = %v, want 1.5", got)
	}
}

func TestStore_NumericCoercion(t *testing.T) {
	// YAML decoding can hand back int64 or float64 for numeric keys.
	s := New()
	s.Replace(map[string]interface{}{
		"a": int64(7),
		"b": float64(9),
	})

	if got := s.GetInt("a"); got != 7 {
		t.Errorf("GetInt(int64) = %v, want 7", got)
	}
	if got := s.GetInt("b"); got != 9 {
		t.Errorf("GetInt(float64) = %v, want 9", got)
	}
	if got := s.GetDouble("a"); got != 7 {
		t.Errorf("GetDouble(int64) = %v, want 7", got)
	}
}

func TestStore_MissingKeys(t *testing.T) {
	s := New()

	if s.GetInt("no-such-key") != 0 {
		t.Error("GetInt of missing key should be 0")
	}
	if s.GetFlag("no-such-key") {
		t.Error("GetFlag of missing key should be false")
	}
	if s.GetString("no-such-key") != "" {
		t.Error("GetString of missing key should be empty")
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := New()

	var changed []string
	s.Subscribe(func(key string) {
		changed = append(changed, key)
	})

	s.SetInt(KeyPeerPort, 6881)
	s.SetFlag(KeyPexEnabled, false)

	if len(changed) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(changed))
	}
	if changed[0] != KeyPeerPort || changed[1] != KeyPexEnabled {
		t.Errorf("notifications = %v", changed)
	}
}

func TestStore_SetUnchangedDoesNotNotify(t *testing.T) {
	s := New()
	s.SetInt(KeyPeerPort, 6881)

	count := 0
	s.Subscribe(func(string) { count++ })

	s.SetInt(KeyPeerPort, 6881)
	if count != 0 {
		t.Errorf("setting an unchanged value notified %d times, want 0", count)
	}
}

func TestStore_AllIsSnapshot(t *testing.T) {
	s := New()
	s.SetInt(KeyPeerPort, 1111)

	snap := s.All()
	s.SetInt(KeyPeerPort, 2222)

	if got := snap[KeyPeerPort]; got != 1111 {
		t.Errorf("snapshot mutated: got %v, want 1111", got)
	}
}

func TestSerialize_DistinguishesValues(t *testing.T) {
	tests := []struct {
		name string
		a, b interface{}
		same bool
	}{
		{"equal ints", 5, 5, true},
		{"different ints", 5, 6, false},
		{"bool vs int", true, 1, false},
		{"equal strings", "x", "x", true},
		{"int vs int64 same value", 5, int64(5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Serialize(tt.a) == Serialize(tt.b); got != tt.same {
				t.Errorf("Serialize(%v)==Serialize(%v) = %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}
