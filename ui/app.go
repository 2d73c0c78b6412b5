package ui

import (
	"path/filepath"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/controller"
	"github.com/rkost/transmission/prefs"
	"github.com/rkost/transmission/session"
	"github.com/rkost/transmission/stats"
)

// Options are the command line switches that shape startup.
type Options struct {
	Version        string
	StartPaused    bool
	StartMinimized bool
	InitialFiles   []string
}

// glibQueue posts controller tasks onto the GTK main loop.
type glibQueue struct{}

func (glibQueue) Post(task func()) {
	glib.IdleAdd(func() bool {
		task()
		return false
	})
}

// App owns the GTK application and wires the controller cores to the
// session, preference store, and widgets.
type App struct {
	app     *gtk.Application
	opts    Options
	store   *prefs.Store
	session *session.Session
	stats   *stats.Store

	queue   controller.TaskQueue
	closing controller.ClosingFlag

	refresher  *controller.RefreshCoordinator
	actionSync *controller.ActionSync
	relay      *controller.Relay
	sequencer  *controller.Sequencer
	dispatch   *controller.Dispatcher
	registry   *actionRegistry

	details     *controller.DetailDialogs
	preferences *controller.Singleton
	messageLog  *controller.Singleton
	statsDialog *controller.Singleton

	window *MainWindow
	tray   *TrayIcon

	announced   map[int]bool
	timerSource glib.SourceHandle
}

// NewApp builds the application. The heavyweight pieces (engine, stats
// database, window) come up in startup and activate handlers.
func NewApp(opts Options) *App {
	a := &App{
		app:   gtk.NewApplication(common.AppID, gio.ApplicationHandlesOpen),
		opts:  opts,
		queue: glibQueue{},
	}
	a.app.ConnectStartup(a.onStartup)
	a.app.ConnectActivate(a.onActivate)
	a.app.ConnectOpen(a.onOpen)
	return a
}

// Run enters the GTK main loop and returns the process exit code.
func (a *App) Run(args []string) int {
	return a.app.Run(args)
}

// Queue returns the UI task queue for cross-goroutine marshaling.
func (a *App) Queue() controller.TaskQueue { return a.queue }

// Sequencer returns the shutdown sequencer, wired after startup.
func (a *App) Sequencer() *controller.Sequencer { return a.sequencer }

func (a *App) onStartup() {
	var err error
	a.store, err = prefs.Load()
	if err != nil {
		common.LogWarn("Settings unreadable, using defaults: %v", err)
		a.store = prefs.New()
	}

	a.session, err = session.New(a.store)
	if err != nil {
		common.LogError("Cannot start torrent engine: %v", err)
		panic(err)
	}

	configDir, err := common.GetConfigDir()
	if err == nil {
		a.stats, err = stats.Open(filepath.Join(configDir, common.StatsFileName))
		if err != nil {
			common.LogWarn("Stats disabled: %v", err)
		}
	}
	if a.stats != nil {
		a.session.SetRecorder(a.stats)
	}

	a.registry = newActionRegistry(a.app)
	a.dispatch = controller.NewDispatcher()

	a.refresher = controller.NewRefreshCoordinator(a.queue, &a.closing, a.refreshNow)
	a.actionSync = controller.NewActionSync(a.queue, &a.closing, a, a.registry)
	a.relay = controller.NewRelay(a.queue, a, a.store)
	a.relay.OnPrefChanged(a.onPrefChanged)
	a.relay.OnSessionClose(func() { a.registry.Activate(controller.ActionQuit) })
	a.session.SetListener(a.relay.Event)

	a.sequencer = controller.NewSequencer(a.queue, &a.closing,
		a.prepareShutdown, a.closeEngine, a.finishShutdown)

	a.details = controller.NewDetailDialogs(a.buildDetailsDialog)
	a.preferences = controller.NewSingleton(a.buildPreferencesDialog)
	a.messageLog = controller.NewSingleton(a.buildMessageLogWindow)
	a.statsDialog = controller.NewSingleton(a.buildStatsDialog)

	a.installActions()

	a.session.OnBusy(func(busy bool) {
		a.queue.Post(func() {
			if a.window != nil {
				a.window.SetBusy(busy)
			}
		})
	})
	a.session.OnAddError(func(code session.AddErrorCode, names string) {
		a.queue.Post(func() { a.showAddError(code, names) })
	})
	a.session.OnAddPrompt(func(prompt *session.AddPrompt) {
		a.queue.Post(func() { a.showAddPrompt(prompt) })
	})

	// Settings edits made in this process go to the engine and disk
	// the same way relayed external changes do.
	a.store.Subscribe(func(key string) {
		a.onPrefChanged(key, nil)
		if err := a.store.Save(); err != nil {
			common.LogWarn("Failed to save settings: %v", err)
		}
	})

	a.session.Load(a.opts.StartPaused)
}

func (a *App) onActivate() {
	if a.window != nil {
		a.window.Present()
		return
	}
	LoadStyles()

	if !a.store.GetFlag(prefs.KeyUserHasGivenConsent) {
		a.showConsentDialog(func() {
			a.store.SetFlag(prefs.KeyUserHasGivenConsent, true)
			a.presentMainWindow()
		})
		return
	}
	a.presentMainWindow()
}

// onOpen handles .torrent files and magnet links passed on the command
// line or through the desktop environment.
func (a *App) onOpen(files []gio.Filer, _ string) {
	a.onActivate()
	for _, f := range files {
		uri := f.URI()
		if err := a.session.AddDropped([]string{uri}); err != nil {
			common.LogWarn("Could not open %s: %v", uri, err)
		}
	}
	a.refresher.RequestSoon()
}

func (a *App) presentMainWindow() {
	a.window = NewMainWindow(a)
	if a.opts.StartMinimized && a.store.GetFlag(prefs.KeyShowTrayIcon) {
		// Tray-only start; the window exists but stays hidden.
	} else {
		a.window.Present()
	}

	for _, path := range a.opts.InitialFiles {
		if err := a.session.AddDropped([]string{path}); err != nil {
			common.LogWarn("Could not add %s: %v", path, err)
		}
	}

	a.syncTray()

	a.timerSource = glib.TimeoutSecondsAdd(uint(common.RefreshInterval.Seconds()), a.refresher.Tick)
	a.refresher.RequestNow()
	a.app.Hold()
}

// refreshNow pulls fresh engine stats and redraws everything that
// shows them. The single place display data is read from the backend.
func (a *App) refreshNow() {
	a.session.Update()
	model := a.session.Model()
	a.announceCompletions(model)
	if a.window != nil {
		a.window.Refresh(model)
	}
	if a.tray != nil {
		a.tray.Refresh()
	}
	a.actionSync.Recompute()
}

// announceCompletions notifies once per torrent when its download
// finishes. The first pass only seeds the map so torrents restored
// already complete stay quiet.
func (a *App) announceCompletions(model []*session.TorrentRow) {
	first := a.announced == nil
	if first {
		a.announced = make(map[int]bool)
	}
	notify := a.store.GetFlag(prefs.KeyShowNotifications)
	for _, row := range model {
		done := row.TotalSize > 0 && row.Progress >= 1
		if done && !a.announced[row.ID] {
			a.announced[row.ID] = true
			if notify && !first {
				NotifyTorrentComplete(row.Name)
			}
		}
	}
}

// onPrefChanged reacts to one changed settings key, whether the change
// came from our own dialogs or was relayed from the backend.
func (a *App) onPrefChanged(key string, _ interface{}) {
	a.session.ApplyPref(key)

	switch key {
	case prefs.KeyShowTrayIcon:
		a.syncTray()
	case prefs.KeyAltSpeedEnabled:
		// Keep the menu checkmark in step when the flag changes from
		// outside the action, preferences reload included.
		a.registry.SetToggled(controller.ActionToggleAltSpeed,
			a.store.GetFlag(prefs.KeyAltSpeedEnabled))
	case prefs.KeyShowNotifications:
		// Read at notification time, nothing to apply.
	}
	a.refresher.RequestSoon()
}

func (a *App) syncTray() {
	want := a.store.GetFlag(prefs.KeyShowTrayIcon)
	switch {
	case want && a.tray == nil:
		a.tray = NewTrayIcon(a)
		go a.tray.Run()
	case !want && a.tray != nil:
		a.tray.Stop()
		a.tray = nil
	}
}

// SelectedCounts implements controller.SelectionSource from the main
// window's current selection.
func (a *App) SelectedCounts() controller.SelectionCounts {
	if a.window == nil {
		return controller.SelectionCounts{}
	}
	return a.window.SelectedCounts()
}

// TorrentCount implements controller.SelectionSource.
func (a *App) TorrentCount() int { return a.session.TorrentCount() }

// ActiveTorrentCount implements controller.SelectionSource.
func (a *App) ActiveTorrentCount() int { return a.session.ActiveTorrentCount() }

// MergeAdded implements controller.RelayModel.
func (a *App) MergeAdded(id int) bool {
	if a.session.Find(id) == nil {
		return false
	}
	a.refresher.RequestSoon()
	if a.store.GetFlag(prefs.KeyShowNotifications) {
		if row := a.session.Find(id); row != nil {
			NotifyTorrentAdded(row.Name)
		}
	}
	return true
}

// RemoveFromModel implements controller.RelayModel.
func (a *App) RemoveFromModel(id int, deleteData bool) {
	if err := a.session.Remove(id, deleteData); err != nil {
		common.LogDebug("Remove of %d skipped: %v", id, err)
	}
	a.refresher.RequestSoon()
}

// prepareShutdown runs on the UI goroutine when the quit begins.
func (a *App) prepareShutdown() {
	if a.timerSource != 0 {
		glib.SourceRemove(a.timerSource)
		a.timerSource = 0
	}
	a.details.CloseAll()
	a.preferences.Close()
	a.messageLog.Close()
	a.statsDialog.Close()

	if a.window != nil {
		a.window.SaveGeometry()
		a.window.ShowClosingView(a.sequencer.QuitNow)
	}
	if err := a.store.Save(); err != nil {
		common.LogWarn("Failed to save settings at exit: %v", err)
	}
}

// closeEngine runs on the background goroutine and blocks until the
// engine has flushed.
func (a *App) closeEngine() {
	if h := a.session.Close(); h != nil {
		h.Wait()
	}
}

// finishShutdown tears down the remaining UI state and releases the
// application hold.
func (a *App) finishShutdown() {
	if a.stats != nil {
		if err := a.stats.Close(); err != nil {
			common.LogWarn("Failed to close stats store: %v", err)
		}
	}
	if a.tray != nil {
		a.tray.Stop()
		a.tray = nil
	}
	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}
	a.app.Release()
}
