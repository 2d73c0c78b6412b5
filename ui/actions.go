package ui

import (
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/rkost/transmission/controller"
	"github.com/rkost/transmission/prefs"
)

// actionRegistry adapts gio's named actions to the controller's
// ActionRegistry interface.
type actionRegistry struct {
	app     *gtk.Application
	actions map[string]*gio.SimpleAction
}

func newActionRegistry(app *gtk.Application) *actionRegistry {
	return &actionRegistry{
		app:     app,
		actions: make(map[string]*gio.SimpleAction),
	}
}

func (r *actionRegistry) add(name string, onActivate func()) {
	act := gio.NewSimpleAction(name, nil)
	act.ConnectActivate(func(_ *glib.Variant) { onActivate() })
	r.app.AddAction(act)
	r.actions[name] = act
}

func (r *actionRegistry) addToggle(name string, initial bool, onToggle func(bool)) {
	act := gio.NewSimpleActionStateful(name, nil, glib.NewVariantBoolean(initial))
	act.ConnectActivate(func(_ *glib.Variant) {
		next := !act.State().Boolean()
		act.SetState(glib.NewVariantBoolean(next))
		onToggle(next)
	})
	r.app.AddAction(act)
	r.actions[name] = act
}

// SetSensitive implements controller.ActionRegistry.
func (r *actionRegistry) SetSensitive(name string, sensitive bool) {
	if act, ok := r.actions[name]; ok {
		act.SetEnabled(sensitive)
	}
}

// SetToggled implements controller.ActionRegistry.
func (r *actionRegistry) SetToggled(name string, toggled bool) {
	if act, ok := r.actions[name]; ok {
		act.SetState(glib.NewVariantBoolean(toggled))
	}
}

// Activate implements controller.ActionRegistry.
func (r *actionRegistry) Activate(name string) {
	if act, ok := r.actions[name]; ok {
		act.Activate(nil)
	}
}

// execSelected runs one backend method against the current selection.
func (a *App) execSelected(method string) func() {
	return func() {
		ids := a.window.SelectedIDs()
		if len(ids) == 0 {
			return
		}
		if err := a.session.Exec(method, ids); err != nil {
			panic(err)
		}
		a.refresher.RequestSoon()
	}
}

// installActions registers every named action with both the dispatcher
// and the toolkit, plus the keyboard accelerators.
func (a *App) installActions() {
	d := a.dispatch

	d.Handle(controller.ActionOpenTorrent, a.showOpenTorrentChooser)
	d.Handle(controller.ActionOpenURL, a.showOpenURLDialog)
	d.Handle(controller.ActionSelectAll, func() { a.window.SelectAll() })
	d.Handle(controller.ActionDeselectAll, func() { a.window.UnselectAll() })
	d.Handle(controller.ActionPauseAll, func() {
		a.session.StopAll()
		a.refresher.RequestSoon()
	})
	d.Handle(controller.ActionStartAll, func() {
		a.session.StartAll()
		a.refresher.RequestSoon()
	})

	d.Handle(controller.ActionTorrentStart, a.execSelected("torrent-start"))
	d.Handle(controller.ActionTorrentStartNow, a.execSelected("torrent-start-now"))
	d.Handle(controller.ActionTorrentStop, a.execSelected("torrent-stop"))
	d.Handle(controller.ActionTorrentVerify, a.execSelected("torrent-verify"))
	d.Handle(controller.ActionReannounce, a.execSelected("torrent-reannounce"))
	d.Handle(controller.ActionQueueMoveTop, a.execSelected("queue-move-top"))
	d.Handle(controller.ActionQueueMoveUp, a.execSelected("queue-move-up"))
	d.Handle(controller.ActionQueueMoveDown, a.execSelected("queue-move-down"))
	d.Handle(controller.ActionQueueMoveBottom, a.execSelected("queue-move-bottom"))

	d.Handle(controller.ActionRemoveTorrent, func() { a.confirmRemove(false) })
	d.Handle(controller.ActionDeleteTorrent, func() { a.confirmRemove(true) })
	d.Handle(controller.ActionRelocateTorrent, a.showRelocateChooser)
	d.Handle(controller.ActionOpenFolder, a.openTorrentFolder)
	d.Handle(controller.ActionCopyMagnetLink, a.copyMagnetLink)
	d.Handle(controller.ActionShowProperties, func() {
		ids := a.window.SelectedIDs()
		if len(ids) > 0 {
			a.details.ShowDetails(ids)
		}
	})

	d.Handle(controller.ActionShowPreferences, func() { a.preferences.Show() })
	d.Handle(controller.ActionShowMessageLog, func() { a.messageLog.Show() })
	d.Handle(controller.ActionShowStats, func() { a.statsDialog.Show() })
	d.Handle(controller.ActionShowAbout, a.showAboutDialog)
	d.Handle(controller.ActionShowMainWin, func() { a.window.Present() })
	d.Handle(controller.ActionToggleMainWin, func() { a.window.ToggleVisible() })
	d.Handle(controller.ActionQuit, a.sequencer.Begin)

	// Stateful: the temporary speed limit toggle drives a preference,
	// and the preference relay drives its checkmark back.
	a.registry.addToggle(controller.ActionToggleAltSpeed,
		a.store.GetFlag(prefs.KeyAltSpeedEnabled),
		func(on bool) { a.store.SetFlag(prefs.KeyAltSpeedEnabled, on) })

	for _, name := range []string{
		controller.ActionOpenTorrent,
		controller.ActionOpenURL,
		controller.ActionSelectAll,
		controller.ActionDeselectAll,
		controller.ActionPauseAll,
		controller.ActionStartAll,
		controller.ActionTorrentStart,
		controller.ActionTorrentStartNow,
		controller.ActionTorrentStop,
		controller.ActionTorrentVerify,
		controller.ActionReannounce,
		controller.ActionQueueMoveTop,
		controller.ActionQueueMoveUp,
		controller.ActionQueueMoveDown,
		controller.ActionQueueMoveBottom,
		controller.ActionRemoveTorrent,
		controller.ActionDeleteTorrent,
		controller.ActionRelocateTorrent,
		controller.ActionOpenFolder,
		controller.ActionCopyMagnetLink,
		controller.ActionShowProperties,
		controller.ActionShowPreferences,
		controller.ActionShowMessageLog,
		controller.ActionShowStats,
		controller.ActionShowAbout,
		controller.ActionShowMainWin,
		controller.ActionToggleMainWin,
		controller.ActionQuit,
	} {
		name := name
		a.registry.add(name, func() { a.dispatch.Dispatch(name) })
	}

	a.app.SetAccelsForAction("app."+controller.ActionOpenTorrent, []string{"<Control>o"})
	a.app.SetAccelsForAction("app."+controller.ActionOpenURL, []string{"<Control>u"})
	a.app.SetAccelsForAction("app."+controller.ActionSelectAll, []string{"<Control>a"})
	a.app.SetAccelsForAction("app."+controller.ActionDeselectAll, []string{"<Control><Shift>a"})
	a.app.SetAccelsForAction("app."+controller.ActionShowProperties, []string{"<Alt>Return"})
	a.app.SetAccelsForAction("app."+controller.ActionRemoveTorrent, []string{"Delete"})
	a.app.SetAccelsForAction("app."+controller.ActionDeleteTorrent, []string{"<Shift>Delete"})
	a.app.SetAccelsForAction("app."+controller.ActionShowPreferences, []string{"<Control>comma"})
	a.app.SetAccelsForAction("app."+controller.ActionQuit, []string{"<Control>q"})
}
