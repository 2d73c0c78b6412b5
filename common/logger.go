package common

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

const (
	defaultMaxFileSize = 5 * 1024 * 1024 // 5MB
	defaultMaxBackups  = 5
)

// AppLogger writes leveled, caller-tagged lines to stdout and
// optionally to a size-rotated file under the config directory.
type AppLogger struct {
	mu          sync.Mutex
	level       LogLevel
	logger      *log.Logger
	output      io.Writer
	logFile     *os.File
	filePath    string
	maxFileSize int64
	maxBackups  int
}

// LogConfig holds logger options passed from main.
type LogConfig struct {
	Level       LogLevel
	EnableFile  bool
	MaxFileSize int64 // in bytes, default 5MB
	MaxBackups  int   // rotated files kept, default 5
}

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

// GetLogger returns the process-wide logger. Before InitLogger runs it
// writes to stdout only, which keeps tests free of file setup.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = &AppLogger{
			level:       LevelInfo,
			output:      os.Stdout,
			logger:      log.New(os.Stdout, "", 0),
			maxFileSize: defaultMaxFileSize,
			maxBackups:  defaultMaxBackups,
		}
	})
	return defaultLogger
}

// InitLogger applies the configuration to the process-wide logger.
// Called once, early in main.
func InitLogger(config LogConfig) error {
	logger := GetLogger()
	logger.SetLevel(config.Level)

	if config.MaxFileSize > 0 {
		logger.maxFileSize = config.MaxFileSize
	}
	if config.MaxBackups > 0 {
		logger.maxBackups = config.MaxBackups
	}
	if config.EnableFile {
		return logger.EnableFileLogging()
	}
	return nil
}

// SetLevel sets the minimum level that gets written.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects all output, replacing any file writer.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.logger = log.New(w, "", 0)
}

// EnableFileLogging tees output into the log file, rotating first if
// the previous run left it over the size limit.
func (l *AppLogger) EnableFileLogging() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	logDir := filepath.Join(homeDir, ".config", ConfigDirName, "logs")

	// A symlinked log location could redirect writes anywhere.
	if isSymlink(logDir) {
		return fmt.Errorf("security error: log directory is a symlink")
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, LogFileName)
	if isSymlink(logPath) {
		return fmt.Errorf("security error: log file is a symlink")
	}

	l.rotateIfNeeded(logPath)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
	}
	l.logFile = file
	l.filePath = logPath
	l.output = io.MultiWriter(os.Stdout, file)
	l.logger = log.New(l.output, "", 0)
	return nil
}

// FilePath returns the current log file path, or "" when file logging
// is disabled. The message log window reads from here.
func (l *AppLogger) FilePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filePath
}

// Close flushes and closes the log file, if any.
func (l *AppLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	return err
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// rotateIfNeeded rotates the file at logPath once it reaches the size
// limit.
func (l *AppLogger) rotateIfNeeded(logPath string) {
	info, err := os.Stat(logPath)
	if err != nil || info.Size() < l.maxFileSize {
		return
	}

	l.mu.Lock()
	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
	l.mu.Unlock()

	stamp := time.Now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.%s.gz", logPath, stamp)
	if err := gzipFile(logPath, backupPath); err != nil {
		// Keep the history even when compression fails.
		os.Rename(logPath, strings.TrimSuffix(backupPath, ".gz"))
	} else {
		os.Remove(logPath)
	}

	l.pruneBackups(filepath.Dir(logPath))
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	defer zw.Close()

	_, err = io.Copy(zw, in)
	return err
}

// pruneBackups deletes the oldest rotated files beyond maxBackups.
func (l *AppLogger) pruneBackups(logDir string) {
	matches, err := filepath.Glob(filepath.Join(logDir, LogFileName+".*"))
	if err != nil || len(matches) <= l.maxBackups {
		return
	}

	sort.Slice(matches, func(i, j int) bool {
		a, _ := os.Stat(matches[i])
		b, _ := os.Stat(matches[j])
		if a == nil || b == nil {
			return false
		}
		return a.ModTime().Before(b.ModTime())
	})

	for _, path := range matches[:len(matches)-l.maxBackups] {
		os.Remove(path)
	}
}

// write emits one line: timestamp, level, caller file:line, message.
func (l *AppLogger) write(level LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	line := fmt.Sprintf("%s [%s] %s: %s",
		time.Now().Format("2006/01/02 15:04:05"), level, caller, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Println(line)
}

func (l *AppLogger) Debug(msg string, args ...interface{}) { l.write(LevelDebug, msg, args...) }
func (l *AppLogger) Info(msg string, args ...interface{})  { l.write(LevelInfo, msg, args...) }
func (l *AppLogger) Warn(msg string, args ...interface{})  { l.write(LevelWarn, msg, args...) }
func (l *AppLogger) Error(msg string, args ...interface{}) { l.write(LevelError, msg, args...) }

// Package-level shorthands for the default logger.

func LogDebug(msg string, args ...interface{}) { GetLogger().Debug(msg, args...) }
func LogInfo(msg string, args ...interface{})  { GetLogger().Info(msg, args...) }
func LogWarn(msg string, args ...interface{})  { GetLogger().Warn(msg, args...) }
func LogError(msg string, args ...interface{}) { GetLogger().Error(msg, args...) }

// CloseLogger closes the default logger's file on shutdown.
func CloseLogger() error {
	return GetLogger().Close()
}
