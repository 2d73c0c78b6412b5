package ui

import (
	"fmt"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/controller"
	"github.com/rkost/transmission/prefs"
	"github.com/rkost/transmission/session"
)

// torrentRowWidget is one torrent's widgets in the list.
type torrentRowWidget struct {
	row      *gtk.ListBoxRow
	id       int
	name     *gtk.Label
	status   *gtk.Label
	progress *gtk.ProgressBar
}

// MainWindow is the torrent list window.
type MainWindow struct {
	app  *App
	win  *gtk.ApplicationWindow
	list *gtk.ListBox

	spinner     *gtk.Spinner
	statusLabel *gtk.Label

	widgets map[int]*torrentRowWidget
	order   []int
}

// NewMainWindow builds the window, restoring the persisted geometry.
func NewMainWindow(a *App) *MainWindow {
	w := &MainWindow{
		app:     a,
		win:     gtk.NewApplicationWindow(a.app),
		widgets: make(map[int]*torrentRowWidget),
	}
	w.win.SetTitle(common.AppName)
	w.win.SetDefaultSize(
		a.store.GetInt(prefs.KeyMainWindowWidth),
		a.store.GetInt(prefs.KeyMainWindowHeight))
	if a.store.GetFlag(prefs.KeyMainWindowIsMaximized) {
		w.win.Maximize()
	}

	w.buildHeader()
	w.buildContent()
	w.installDropTarget()

	// Window close starts the orderly shutdown instead of destroying
	// the window outright. With the tray icon enabled it just hides.
	w.win.ConnectCloseRequest(func() bool {
		if a.store.GetFlag(prefs.KeyShowTrayIcon) && a.sequencer.State() == controller.StateRunning {
			w.win.SetVisible(false)
			return true
		}
		a.sequencer.Begin()
		return true
	})

	return w
}

func (w *MainWindow) buildHeader() {
	header := gtk.NewHeaderBar()

	open := gtk.NewButtonFromIconName("list-add-symbolic")
	open.SetTooltipText("Add torrent")
	open.SetActionName("app." + controller.ActionOpenTorrent)
	header.PackStart(open)

	start := gtk.NewButtonFromIconName("media-playback-start-symbolic")
	start.SetTooltipText("Start selected")
	start.SetActionName("app." + controller.ActionTorrentStart)
	header.PackStart(start)

	stop := gtk.NewButtonFromIconName("media-playback-pause-symbolic")
	stop.SetTooltipText("Pause selected")
	stop.SetActionName("app." + controller.ActionTorrentStop)
	header.PackStart(stop)

	menu := gio.NewMenu()

	fileSection := gio.NewMenu()
	fileSection.Append("Open Torrent File…", "app."+controller.ActionOpenTorrent)
	fileSection.Append("Open URL…", "app."+controller.ActionOpenURL)
	menu.AppendSection("", fileSection)

	torrentSection := gio.NewMenu()
	torrentSection.Append("Start All", "app."+controller.ActionStartAll)
	torrentSection.Append("Pause All", "app."+controller.ActionPauseAll)
	torrentSection.Append("Verify Selected", "app."+controller.ActionTorrentVerify)
	torrentSection.Append("Ask Tracker for More Peers", "app."+controller.ActionReannounce)
	torrentSection.Append("Set Location…", "app."+controller.ActionRelocateTorrent)
	torrentSection.Append("Remove Selected", "app."+controller.ActionRemoveTorrent)
	torrentSection.Append("Remove and Delete Data", "app."+controller.ActionDeleteTorrent)
	menu.AppendSection("", torrentSection)

	queueSection := gio.NewMenu()
	queueSection.Append("Move to Top", "app."+controller.ActionQueueMoveTop)
	queueSection.Append("Move Up", "app."+controller.ActionQueueMoveUp)
	queueSection.Append("Move Down", "app."+controller.ActionQueueMoveDown)
	queueSection.Append("Move to Bottom", "app."+controller.ActionQueueMoveBottom)
	menu.AppendSection("Queue", queueSection)

	appSection := gio.NewMenu()
	appSection.Append("Temporary Speed Limits", "app."+controller.ActionToggleAltSpeed)
	appSection.Append("Statistics", "app."+controller.ActionShowStats)
	appSection.Append("Message Log", "app."+controller.ActionShowMessageLog)
	appSection.Append("Preferences", "app."+controller.ActionShowPreferences)
	appSection.Append("About", "app."+controller.ActionShowAbout)
	appSection.Append("Quit", "app."+controller.ActionQuit)
	menu.AppendSection("", appSection)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetMenuModel(menu)
	header.PackEnd(menuButton)

	w.spinner = gtk.NewSpinner()
	header.PackEnd(w.spinner)

	w.win.SetTitlebar(header)
}

func (w *MainWindow) buildContent() {
	w.list = gtk.NewListBox()
	w.list.SetSelectionMode(gtk.SelectionMultiple)
	w.list.SetActivateOnSingleClick(false)
	w.list.ConnectSelectedRowsChanged(func() {
		w.app.actionSync.RecomputeSoon()
	})
	w.list.ConnectRowActivated(func(_ *gtk.ListBoxRow) {
		ids := w.SelectedIDs()
		if len(ids) > 0 {
			w.app.details.ShowDetails(ids)
		}
	})

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetVExpand(true)
	scrolled.SetChild(w.list)

	w.statusLabel = gtk.NewLabel("")
	w.statusLabel.SetXAlign(0)
	w.statusLabel.SetMarginStart(common.DialogMargin / 2)
	w.statusLabel.SetMarginTop(4)
	w.statusLabel.SetMarginBottom(4)

	box := gtk.NewBox(gtk.OrientationVertical, 0)
	box.Append(scrolled)
	box.Append(gtk.NewSeparator(gtk.OrientationHorizontal))
	box.Append(w.statusLabel)
	w.win.SetChild(box)
}

// installDropTarget accepts dropped torrent files, magnet links, and
// URLs.
func (w *MainWindow) installDropTarget() {
	target := gtk.NewDropTarget(glib.TypeString, gdk.ActionCopy)
	target.ConnectDrop(func(value *glib.Value, _, _ float64) bool {
		text := value.String()
		if text == "" {
			return false
		}
		go func() {
			if err := w.app.session.AddDropped(strings.Split(text, "\n")); err != nil {
				common.LogWarn("Drop rejected: %v", err)
			}
			w.app.queue.Post(w.app.refresher.RequestSoon)
		}()
		return true
	})
	w.win.AddController(target)
}

// Refresh redraws the list from the given model snapshot.
func (w *MainWindow) Refresh(rows []*session.TorrentRow) {
	if w.orderChanged(rows) {
		w.rebuild(rows)
	}

	var totalDown, totalUp int64
	for _, row := range rows {
		totalDown += row.DownloadRate
		totalUp += row.UploadRate
		wd, ok := w.widgets[row.ID]
		if !ok {
			continue
		}
		wd.name.SetText(row.Name)
		wd.status.SetText(statusLine(row))
		wd.progress.SetFraction(row.Progress)
	}

	w.statusLabel.SetText(fmt.Sprintf("%d torrents   ↓ %s/s   ↑ %s/s",
		len(rows), common.FormatBytes(totalDown), common.FormatBytes(totalUp)))
}

func statusLine(row *session.TorrentRow) string {
	switch row.Activity {
	case session.ActivityDownloading:
		return fmt.Sprintf("%s · %.1f%% of %s · ↓ %s/s from %d peers",
			row.Activity, row.Progress*100, common.FormatBytes(row.TotalSize),
			common.FormatBytes(row.DownloadRate), row.PeerCount)
	case session.ActivitySeeding:
		return fmt.Sprintf("%s · %s · ↑ %s/s to %d peers",
			row.Activity, common.FormatBytes(row.TotalSize),
			common.FormatBytes(row.UploadRate), row.PeerCount)
	default:
		return fmt.Sprintf("%s · %.1f%% of %s",
			row.Activity, row.Progress*100, common.FormatBytes(row.TotalSize))
	}
}

func (w *MainWindow) orderChanged(rows []*session.TorrentRow) bool {
	if len(rows) != len(w.order) {
		return true
	}
	for i, row := range rows {
		if w.order[i] != row.ID {
			return true
		}
	}
	return false
}

func (w *MainWindow) rebuild(rows []*session.TorrentRow) {
	for _, wd := range w.widgets {
		w.list.Remove(wd.row)
	}
	w.widgets = make(map[int]*torrentRowWidget, len(rows))
	w.order = w.order[:0]

	for _, row := range rows {
		name := gtk.NewLabel(row.Name)
		name.SetXAlign(0)
		name.AddCSSClass("heading")

		status := gtk.NewLabel("")
		status.SetXAlign(0)
		status.AddCSSClass("dim-label")

		progress := gtk.NewProgressBar()
		progress.SetFraction(row.Progress)

		box := gtk.NewBox(gtk.OrientationVertical, 4)
		box.SetMarginTop(6)
		box.SetMarginBottom(6)
		box.SetMarginStart(8)
		box.SetMarginEnd(8)
		box.Append(name)
		box.Append(progress)
		box.Append(status)

		lbRow := gtk.NewListBoxRow()
		lbRow.AddCSSClass("torrent-row")
		lbRow.SetChild(box)
		w.list.Append(lbRow)

		w.widgets[row.ID] = &torrentRowWidget{
			row: lbRow, id: row.ID,
			name: name, status: status, progress: progress,
		}
		w.order = append(w.order, row.ID)
	}
}

// SelectedIDs returns the ids of the selected torrents.
func (w *MainWindow) SelectedIDs() []int {
	var ids []int
	for _, row := range w.list.SelectedRows() {
		idx := row.Index()
		if idx >= 0 && idx < len(w.order) {
			ids = append(ids, w.order[idx])
		}
	}
	return ids
}

// SelectedCounts derives the selection summary for action sensitivity.
func (w *MainWindow) SelectedCounts() controller.SelectionCounts {
	var counts controller.SelectionCounts
	for _, id := range w.SelectedIDs() {
		row := w.app.session.Find(id)
		if row == nil {
			continue
		}
		counts.Total++
		if row.Activity == session.ActivityStopped {
			counts.Stopped++
		}
		if row.Activity.IsQueued() {
			counts.Queued++
		}
		if row.CanReannounceNow() {
			counts.CanAnnounce = true
		}
	}
	return counts
}

// SelectAll selects every torrent.
func (w *MainWindow) SelectAll() { w.list.SelectAll() }

// UnselectAll clears the selection.
func (w *MainWindow) UnselectAll() { w.list.UnselectAll() }

// SetBusy shows or hides the header spinner.
func (w *MainWindow) SetBusy(busy bool) {
	if busy {
		w.spinner.Start()
	} else {
		w.spinner.Stop()
	}
}

// SaveGeometry persists the window size and maximized flag.
func (w *MainWindow) SaveGeometry() {
	if !w.win.IsMaximized() {
		width, height := w.win.DefaultSize()
		w.app.store.SetInt(prefs.KeyMainWindowWidth, width)
		w.app.store.SetInt(prefs.KeyMainWindowHeight, height)
	}
	w.app.store.SetFlag(prefs.KeyMainWindowIsMaximized, w.win.IsMaximized())
}

// ShowClosingView swaps the window content for the shutdown
// placeholder with the immediate-exit escape hatch.
func (w *MainWindow) ShowClosingView(quitNow func()) {
	spinner := gtk.NewSpinner()
	spinner.Start()
	spinner.SetSizeRequest(32, 32)

	label := gtk.NewLabel("Closing connections and saving state…")
	label.AddCSSClass("title-2")

	quit := gtk.NewButtonWithLabel("Quit Now")
	quit.AddCSSClass("destructive-action")
	quit.SetHAlign(gtk.AlignCenter)
	quit.ConnectClicked(quitNow)

	box := gtk.NewBox(gtk.OrientationVertical, 12)
	box.SetVAlign(gtk.AlignCenter)
	box.SetMarginTop(common.DialogMargin)
	box.SetMarginBottom(common.DialogMargin)
	box.Append(spinner)
	box.Append(label)
	box.Append(quit)

	w.win.SetTitlebar(gtk.NewHeaderBar())
	w.win.SetChild(box)
	w.win.SetVisible(true)
}

// Present raises the window.
func (w *MainWindow) Present() { w.win.Present() }

// ToggleVisible hides or shows the window, for the tray icon.
func (w *MainWindow) ToggleVisible() {
	if w.win.IsVisible() {
		w.win.SetVisible(false)
	} else {
		w.win.Present()
	}
}

// Destroy tears the window down.
func (w *MainWindow) Destroy() { w.win.Destroy() }

// Native returns the underlying gtk window for dialog parenting.
func (w *MainWindow) Native() *gtk.Window { return &w.win.Window }
