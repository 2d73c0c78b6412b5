// Package prefs provides the preference store for the Transmission client.
// It is a typed key/value store persisted to a YAML file in the user's
// config directory, with change notification for interested components.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rkost/transmission/common"
)

// Store holds application settings as a flat key/value map.
// Typed accessors coerce stored values; setters notify subscribers.
//
// Subscribers are invoked synchronously on the calling goroutine, so all
// mutation must happen on the UI thread once the application is running.
type Store struct {
	mu          sync.RWMutex
	values      map[string]interface{}
	path        string
	subscribers []func(key string)
}

// Defaults returns the default settings map.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		KeyDownloadDir:           common.GetDefaultDownloadDir(),
		KeyIncompleteDir:         "",
		KeyIncompleteDirEnabled:  false,
		KeyStartAddedTorrents:    true,
		KeyShowOptionsWindow:     true,
		KeyTrashOriginalFiles:    false,
		KeySpeedLimitDown:        100,
		KeySpeedLimitDownEnabled: false,
		KeySpeedLimitUp:          100,
		KeySpeedLimitUpEnabled:   false,
		KeyAltSpeedEnabled:       false,
		KeyAltSpeedDown:          50,
		KeyAltSpeedUp:            50,
		KeyRatioLimit:            2.0,
		KeyRatioLimitEnabled:     false,
		KeyPeerPort:              51413,
		KeyPeerPortRandomOnStart: false,
		KeyPexEnabled:            true,
		KeyDHTEnabled:            true,
		KeyUTPEnabled:            true,
		KeyDownloadQueueSize:     5,
		KeySeedQueueSize:         10,
		KeyShowTrayIcon:          false,
		KeyShowNotifications:     true,
		KeyMainWindowWidth:       common.DefaultWindowWidth,
		KeyMainWindowHeight:      common.DefaultWindowHeight,
		KeyMainWindowX:           50,
		KeyMainWindowY:           50,
		KeyMainWindowIsMaximized: false,
		KeyUserHasGivenConsent:   false,
		KeyRPCEnabled:            false,
		KeyRPCUsername:           "",
	}
}

// New creates an in-memory store seeded with defaults.
// Use Load to read a persisted store instead.
func New() *Store {
	return &Store{values: Defaults()}
}

// Load reads the settings file from the config directory, filling any
// missing keys from the defaults. A missing file yields a default store
// that is persisted on first Save.
func Load() (*Store, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return nil, err
	}

	s := New()
	s.path = filepath.Join(configDir, common.SettingsFileName)

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, common.WrapError(err, common.ErrPrefsLoad.Error())
	}

	var loaded map[string]interface{}
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, common.WrapError(err, common.ErrPrefsLoad.Error())
	}

	for k, v := range loaded {
		s.values[k] = v
	}
	return s, nil
}

// Save persists the settings to disk.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	data, err := yaml.Marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		return common.WrapError(err, common.ErrPrefsSave.Error())
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return common.WrapError(err, common.ErrPrefsSave.Error())
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return common.WrapError(err, common.ErrPrefsSave.Error())
	}
	return nil
}

// Subscribe registers a callback invoked with the key of every change.
func (s *Store) Subscribe(fn func(key string)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify(key string) {
	s.mu.RLock()
	subs := make([]func(string), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(key)
	}
}

// All returns a snapshot copy of the full settings map.
// The copy is safe to hold across later mutations; it is the input
// to the RPC relay's serialized settings diff.
func (s *Store) All() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Replace swaps in a full settings map without notifying subscribers.
// Callers that want change events must Set keys individually.
func (s *Store) Replace(values map[string]interface{}) {
	s.mu.Lock()
	s.values = make(map[string]interface{}, len(values))
	for k, v := range values {
		s.values[k] = v
	}
	s.mu.Unlock()
}

// GetInt returns an integer preference, or 0 when absent.
func (s *Store) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch v := s.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetFlag returns a boolean preference, or false when absent.
func (s *Store) GetFlag(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, _ := s.values[key].(bool)
	return v
}

// GetString returns a string preference, or "" when absent.
func (s *Store) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, _ := s.values[key].(string)
	return v
}

// GetDouble returns a float preference, or 0 when absent.
func (s *Store) GetDouble(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch v := s.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// SetInt stores an integer preference and notifies subscribers.
func (s *Store) SetInt(key string, value int) {
	s.set(key, value)
}

// SetFlag stores a boolean preference and notifies subscribers.
func (s *Store) SetFlag(key string, value bool) {
	s.set(key, value)
}

// SetString stores a string preference and notifies subscribers.
func (s *Store) SetString(key, value string) {
	s.set(key, value)
}

// SetDouble stores a float preference and notifies subscribers.
func (s *Store) SetDouble(key string, value float64) {
	s.set(key, value)
}

func (s *Store) set(key string, value interface{}) {
	s.mu.Lock()
	old, had := s.values[key]
	s.values[key] = value
	s.mu.Unlock()

	if had && Serialize(old) == Serialize(value) {
		return
	}
	s.notify(key)
}

// Serialize renders a single preference value in its canonical text form.
// Two values are considered equal iff their serialized forms match; the
// relay's settings diff compares keys this way.
func Serialize(v interface{}) string {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
