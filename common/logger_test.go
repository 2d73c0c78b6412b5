package common

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppLogger_LogFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := &AppLogger{
		level:  LevelWarn,
		output: &buf,
	}
	logger.logger = newTestLogger(&buf)

	// Debug and Info should be filtered.
	logger.Debug("debug message")
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("Debug/Info messages should be filtered when level is Warn")
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "WARN") {
		t.Error("Warn message should be logged")
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(buf.String(), "ERROR") {
		t.Error("Error message should be logged")
	}
}

func TestAppLogger_LogFormatting(t *testing.T) {
	var buf bytes.Buffer

	logger := &AppLogger{
		level:  LevelDebug,
		output: &buf,
	}
	logger.logger = newTestLogger(&buf)

	logger.Info("Added %s", "ubuntu.iso.torrent")

	output := buf.String()

	if !strings.Contains(output, time.Now().Format("2006/01/02")) {
		t.Error("Log should contain date in YYYY/MM/DD format")
	}

	if !strings.Contains(output, "[INFO]") {
		t.Error("Log should contain level indicator")
	}

	if !strings.Contains(output, "Added ubuntu.iso.torrent") {
		t.Error("Log should contain formatted message")
	}
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.HasSuffix(dir, ConfigDirName) {
		t.Errorf("GetConfigDir() = %v, should end with %v", dir, ConfigDirName)
	}
}

func TestFileExists(t *testing.T) {
	tempFile, err := os.CreateTemp("", "test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tempFile.Name())
	tempFile.Close()

	if !FileExists(tempFile.Name()) {
		t.Error("FileExists() should return true for existing file")
	}

	if FileExists("/nonexistent/path/to/file") {
		t.Error("FileExists() should return false for non-existing file")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1500, "1.5 kB"},
		{2 * 1000 * 1000, "2.0 MB"},
		{3 * 1000 * 1000 * 1000, "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatBytes(tt.n); got != tt.expected {
				t.Errorf("FormatBytes(%d) = %v, want %v", tt.n, got, tt.expected)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	originalErr := ErrCorruptTorrent
	wrapped := WrapError(originalErr, "additional context")

	if wrapped == nil {
		t.Fatal("WrapError should return non-nil error")
	}

	if !strings.Contains(wrapped.Error(), "additional context") {
		t.Error("WrapError should include additional context")
	}

	if !strings.Contains(wrapped.Error(), originalErr.Error()) {
		t.Error("WrapError should include original error message")
	}

	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}
}

func TestLogRotation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "transmission-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	logFile := filepath.Join(tempDir, "test.log")

	largeContent := strings.Repeat("x", 1024*1024) // 1MB
	if err := os.WriteFile(logFile, []byte(largeContent), 0600); err != nil {
		t.Fatal(err)
	}

	logger := &AppLogger{
		level:       LevelInfo,
		maxFileSize: 512 * 1024,
		maxBackups:  2,
	}

	logger.rotateIfNeeded(logFile)

	info, err := os.Stat(logFile)
	if err == nil && info.Size() > 0 {
		t.Error("Original log file should be removed or empty after rotation")
	}

	matches, _ := filepath.Glob(filepath.Join(tempDir, "test.log.*"))
	if len(matches) == 0 {
		t.Error("Backup file should be created after rotation")
	}
}

func newTestLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(buf, "", 0)
}
