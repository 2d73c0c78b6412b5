package ui

import (
	"fmt"

	"fyne.io/systray"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/controller"
)

// Pre-generated icons for performance.
var (
	iconActive = GenerateActiveIcon()
	iconIdle   = GenerateIdleIcon()
)

// TrayIcon keeps a notification-area icon with a quick menu. Menu
// clicks arrive on systray goroutines and are marshaled onto the UI
// loop before touching anything.
type TrayIcon struct {
	app *App

	toggleItem *systray.MenuItem
	pauseItem  *systray.MenuItem
	startItem  *systray.MenuItem

	active bool
}

// NewTrayIcon creates the tray indicator. Call Run from a goroutine.
func NewTrayIcon(app *App) *TrayIcon {
	return &TrayIcon{app: app}
}

// Run starts the tray loop. Blocks until Stop.
func (t *TrayIcon) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop removes the icon and ends the tray loop.
func (t *TrayIcon) Stop() {
	systray.Quit()
}

func (t *TrayIcon) onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName)

	t.toggleItem = systray.AddMenuItem("Show Transmission", "Show or hide the main window")
	go t.forward(t.toggleItem, controller.ActionToggleMainWin)

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause All", "Pause every torrent")
	go t.forward(t.pauseItem, controller.ActionPauseAll)

	t.startItem = systray.AddMenuItem("Start All", "Resume every torrent")
	go t.forward(t.startItem, controller.ActionStartAll)

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close Transmission")
	go func() {
		for range quitItem.ClickedCh {
			t.app.queue.Post(t.app.sequencer.Begin)
		}
	}()
}

// forward relays every click of an item to a named application action
// on the UI loop.
func (t *TrayIcon) forward(item *systray.MenuItem, action string) {
	for range item.ClickedCh {
		t.app.queue.Post(func() {
			t.app.registry.Activate(action)
		})
	}
}

func (t *TrayIcon) onExit() {
	common.LogDebug("Tray icon stopped")
}

// Refresh updates the icon and tooltip from current transfer totals.
// Called on the UI loop each refresh pass.
func (t *TrayIcon) Refresh() {
	var down, up int64
	active := 0
	rows := t.app.session.Model()
	for _, row := range rows {
		down += row.DownloadRate
		up += row.UploadRate
		if row.Activity.IsActive() {
			active++
		}
	}

	moving := down > 0 || up > 0
	if moving != t.active {
		t.active = moving
		if moving {
			systray.SetIcon(iconActive)
		} else {
			systray.SetIcon(iconIdle)
		}
	}

	systray.SetTooltip(fmt.Sprintf("%s\n%d of %d torrents active\n↓ %s/s  ↑ %s/s",
		common.AppName, active, len(rows),
		common.FormatBytes(down), common.FormatBytes(up)))
}
