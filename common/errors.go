// Package common provides shared constants, types, and utilities
// used across the Transmission desktop client.
package common

import "errors"

// Sentinel errors for session and intake operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Session errors.
	ErrSessionClosed   = errors.New("session is closed")
	ErrTorrentNotFound = errors.New("torrent not found")
	ErrUnknownMethod   = errors.New("unknown rpc method")
	ErrNotReady        = errors.New("torrent metadata not yet available")

	// Intake errors.
	ErrCorruptTorrent   = errors.New("corrupt or unreadable torrent file")
	ErrDuplicateTorrent = errors.New("torrent already present")
	ErrUnsupportedDrop  = errors.New("dropped data is not a torrent or magnet")

	// Preference errors.
	ErrPrefsLoad = errors.New("failed to load settings")
	ErrPrefsSave = errors.New("failed to save settings")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
