package controller

import (
	"os"

	"github.com/rkost/transmission/common"
)

// ShutdownState tracks teardown progress.
type ShutdownState int

const (
	StateRunning ShutdownState = iota
	StateClosing
	StateSessionClosing
	StateClosed
)

func (s ShutdownState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateSessionClosing:
		return "session-closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sequencer drives orderly shutdown. The UI triggers Begin on the UI
// goroutine; the blocking engine close runs on its own goroutine so
// the UI keeps redrawing the closing view and servicing QuitNow.
type Sequencer struct {
	queue   TaskQueue
	closing *ClosingFlag

	// prepare runs on the UI goroutine before the engine closes: stop
	// timers, swap in the closing view, persist geometry, clear the
	// torrent display.
	prepare func()
	// closeEngine blocks until the backend has flushed and stopped.
	// It runs on the background goroutine, which owns the session
	// handle exclusively for the duration.
	closeEngine func()
	// finish runs on the UI goroutine after closeEngine returns: tear
	// down windows, dialogs, and the tray icon, then release the
	// application hold so the process can exit.
	finish func()

	exit  func(code int)
	state ShutdownState
}

func NewSequencer(queue TaskQueue, closing *ClosingFlag, prepare, closeEngine, finish func()) *Sequencer {
	return &Sequencer{
		queue:       queue,
		closing:     closing,
		prepare:     prepare,
		closeEngine: closeEngine,
		finish:      finish,
		exit:        os.Exit,
		state:       StateRunning,
	}
}

// SetExit overrides the process-exit function. Tests use it to observe
// QuitNow without terminating the test binary.
func (s *Sequencer) SetExit(fn func(code int)) {
	s.exit = fn
}

// State returns the current shutdown state. UI goroutine only.
func (s *Sequencer) State() ShutdownState {
	return s.state
}

// Begin starts the teardown sequence. Repeated calls while a teardown
// is already underway are no-ops. UI goroutine only.
func (s *Sequencer) Begin() {
	if s.state != StateRunning {
		common.LogDebug("Shutdown already underway (%s)", s.state)
		return
	}
	s.state = StateClosing
	s.closing.Set()
	common.LogInfo("Shutdown started")

	s.prepare()

	s.state = StateSessionClosing
	go func() {
		s.closeEngine()
		s.queue.Post(s.complete)
	}()
}

func (s *Sequencer) complete() {
	s.state = StateClosed
	common.LogInfo("Shutdown complete")
	s.finish()
}

// QuitNow terminates the process immediately, racing any in-flight
// engine close. This is the closing view's escape hatch and the
// second-signal escalation path.
func (s *Sequencer) QuitNow() {
	common.LogWarn("Immediate exit requested")
	common.CloseLogger()
	s.exit(0)
}
