// Package controller contains the toolkit-independent core of the desktop
// shell: the refresh coordinator, selection/action sync, the RPC change
// relay, the shutdown sequencer, and the dialog registry.
//
// All components are written against small interfaces and an explicit task
// queue, so they can be driven from tests without a running GTK main loop.
// The ui package supplies the production implementations: a glib.IdleAdd
// backed queue, the GTK action group, and the real windows and dialogs.
//
// # Thread Safety
//
// Everything here runs on the UI goroutine, with two exceptions: the relay's
// Event method may be called from any goroutine (it only posts), and the
// sequencer runs the blocking session close on a dedicated goroutine and
// posts its completion back. The pending-refresh flags and dialog registry
// are owned by the UI goroutine and are deliberately unlocked.
package controller
