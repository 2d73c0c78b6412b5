// Package common provides shared constants, types, and utilities
// used across the Transmission desktop client.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.github.rkost.transmission"
	// AppName is the display name of the application.
	AppName = "Transmission"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "transmission"
)

// File names used by the application.
const (
	SettingsFileName = "settings.yaml"
	StatsFileName    = "stats.db"
	LogFileName      = "transmission.log"
	// TorrentsDirName holds copies of added .torrent files for resume.
	TorrentsDirName = "torrents"
)

// Default timeouts and intervals.
const (
	// RefreshInterval is how often the main window re-pulls torrent stats.
	RefreshInterval = 2 * time.Second
	// IntakeFlushDelay is how long the session waits after the last add
	// before flushing batched add errors.
	IntakeFlushDelay = 500 * time.Millisecond
	// URLFetchTimeout bounds the download of a remote .torrent file.
	URLFetchTimeout = 30 * time.Second
)

// UI constants.
const (
	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 760
	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 520
	// DialogMargin is the standard margin for dialog content.
	DialogMargin = 24
)
