package ui

import (
	"fmt"
	"time"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/controller"
	"github.com/rkost/transmission/session"
	"github.com/rkost/transmission/stats"
)

// dialogWindow builds an empty transient window in the house style.
func (a *App) dialogWindow(title string, closed func()) *gtk.Window {
	win := gtk.NewWindow()
	win.SetTitle(title)
	if a.window != nil {
		win.SetTransientFor(a.window.Native())
	}
	// Destroy fires for both WM close and the dialogs' own Close
	// buttons, so the singleton reset cannot be skipped.
	win.ConnectDestroy(func() {
		if closed != nil {
			closed()
		}
	})
	return win
}

func dialogBox(win *gtk.Window) *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 12)
	box.SetMarginTop(common.DialogMargin)
	box.SetMarginBottom(common.DialogMargin)
	box.SetMarginStart(common.DialogMargin)
	box.SetMarginEnd(common.DialogMargin)
	win.SetChild(box)
	return box
}

func (a *App) showOpenTorrentChooser() {
	chooser := gtk.NewFileChooserNative("Open Torrent",
		a.window.Native(), gtk.FileChooserActionOpen, "_Open", "_Cancel")

	filter := gtk.NewFileFilter()
	filter.SetName("Torrent files")
	filter.AddPattern("*.torrent")
	chooser.AddFilter(filter)

	chooser.ConnectResponse(func(response int) {
		if response != int(gtk.ResponseAccept) {
			return
		}
		file := chooser.File()
		if file == nil {
			return
		}
		path := file.Path()
		go func() {
			if err := a.session.AddFile(path); err != nil {
				common.LogWarn("Add failed: %v", err)
			}
			a.queue.Post(a.refresher.RequestSoon)
		}()
	})
	chooser.Show()
}

func (a *App) showOpenURLDialog() {
	win := a.dialogWindow("Open URL", nil)
	box := dialogBox(win)

	entry := gtk.NewEntry()
	entry.SetPlaceholderText("magnet: link or torrent URL")
	entry.SetWidthChars(50)

	add := gtk.NewButtonWithLabel("Add")
	add.AddCSSClass("suggested-action")
	add.ConnectClicked(func() {
		uri := entry.Text()
		win.Destroy()
		if uri == "" {
			return
		}
		go func() {
			if err := a.session.AddDropped([]string{uri}); err != nil {
				common.LogWarn("Add failed: %v", err)
			}
			a.queue.Post(a.refresher.RequestSoon)
		}()
	})
	entry.ConnectActivate(func() { add.Activate() })

	box.Append(gtk.NewLabel("Add torrent from a URL or magnet link:"))
	box.Append(entry)
	box.Append(add)
	win.Present()
}

// confirmRemove asks before removing the selected torrents, with the
// stronger warning when data deletion is requested.
func (a *App) confirmRemove(deleteData bool) {
	ids := a.window.SelectedIDs()
	if len(ids) == 0 {
		return
	}

	title := "Remove Torrent"
	body := fmt.Sprintf("Remove %d torrent(s) from the list?", len(ids))
	if deleteData {
		title = "Remove and Delete Data"
		body = fmt.Sprintf("Remove %d torrent(s) and delete their downloaded files?\nThis cannot be undone.", len(ids))
	}

	win := a.dialogWindow(title, nil)
	box := dialogBox(win)
	box.Append(gtk.NewLabel(body))

	buttons := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttons.SetHAlign(gtk.AlignEnd)

	cancel := gtk.NewButtonWithLabel("Cancel")
	cancel.ConnectClicked(win.Destroy)
	buttons.Append(cancel)

	remove := gtk.NewButtonWithLabel(title)
	remove.AddCSSClass("destructive-action")
	remove.ConnectClicked(func() {
		win.Destroy()
		for _, id := range ids {
			if err := a.session.Remove(id, deleteData); err != nil {
				common.LogWarn("Remove failed: %v", err)
			}
		}
		a.refresher.RequestSoon()
	})
	buttons.Append(remove)

	box.Append(buttons)
	win.Present()
}

func (a *App) showRelocateChooser() {
	ids := a.window.SelectedIDs()
	if len(ids) == 0 {
		return
	}

	chooser := gtk.NewFileChooserNative("Set Torrent Location",
		a.window.Native(), gtk.FileChooserActionSelectFolder, "_Apply", "_Cancel")
	chooser.ConnectResponse(func(response int) {
		if response != int(gtk.ResponseAccept) {
			return
		}
		file := chooser.File()
		if file == nil {
			return
		}
		dir := file.Path()
		for _, id := range ids {
			if err := a.session.Relocate(id, dir); err != nil {
				common.LogWarn("Relocate failed: %v", err)
			}
		}
		a.refresher.RequestSoon()
	})
	chooser.Show()
}

func (a *App) openTorrentFolder() {
	ids := a.window.SelectedIDs()
	if len(ids) != 1 {
		return
	}
	row := a.session.Find(ids[0])
	if row == nil {
		return
	}
	uri := "file://" + a.session.DataPath(row)
	gtk.ShowURI(a.window.Native(), uri, gdk.CURRENT_TIME)
}

func (a *App) copyMagnetLink() {
	ids := a.window.SelectedIDs()
	if len(ids) != 1 {
		return
	}
	row := a.session.Find(ids[0])
	if row == nil {
		return
	}
	if link := row.MagnetLink(); link != "" {
		a.window.Native().Clipboard().SetText(link)
	}
}

func (a *App) showAboutDialog() {
	about := gtk.NewAboutDialog()
	about.SetProgramName(common.AppName)
	about.SetVersion(a.opts.Version)
	about.SetComments("A fast and easy BitTorrent client")
	about.SetWebsite("https://transmissionbt.com/")
	about.SetLicenseType(gtk.LicenseGPL20)
	about.SetTransientFor(a.window.Native())
	about.Present()
}

// showConsentDialog asks the legal question once, before the first
// torrent is ever touched.
func (a *App) showConsentDialog(accepted func()) {
	win := gtk.NewWindow()
	win.SetTitle(common.AppName)
	win.SetApplication(a.app)
	box := dialogBox(win)

	label := gtk.NewLabel("Transmission is a file sharing program.\n\n" +
		"When you run a torrent, its data will be made available to others " +
		"by means of upload. Any content you share is your sole responsibility.")
	label.SetWrap(true)
	label.SetMaxWidthChars(60)
	box.Append(label)

	buttons := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttons.SetHAlign(gtk.AlignEnd)

	quit := gtk.NewButtonWithLabel("Quit")
	quit.ConnectClicked(func() {
		win.Destroy()
		a.sequencer.Begin()
	})
	buttons.Append(quit)

	agree := gtk.NewButtonWithLabel("I Agree")
	agree.AddCSSClass("suggested-action")
	agree.ConnectClicked(func() {
		win.Destroy()
		accepted()
	})
	buttons.Append(agree)

	box.Append(buttons)
	win.Present()
}

// showAddError reports one batch of failed adds.
func (a *App) showAddError(code session.AddErrorCode, names string) {
	title := "Couldn't Add Torrent"
	body := "These torrent files could not be parsed:"
	if code == session.AddErrorDuplicate {
		title = "Duplicate Torrent"
		body = "These torrents are already in your list:"
	}

	win := a.dialogWindow(title, nil)
	box := dialogBox(win)
	box.Append(gtk.NewLabel(body))

	list := gtk.NewLabel(names)
	list.SetXAlign(0)
	list.AddCSSClass("monospace")
	box.Append(list)

	ok := gtk.NewButtonWithLabel("Close")
	ok.SetHAlign(gtk.AlignEnd)
	ok.ConnectClicked(win.Destroy)
	box.Append(ok)
	win.Present()
}

// showAddPrompt shows the per-torrent options window before an add
// commits.
func (a *App) showAddPrompt(prompt *session.AddPrompt) {
	win := a.dialogWindow("Add Torrent", nil)
	box := dialogBox(win)

	box.Append(gtk.NewLabel(prompt.Name))
	if prompt.Size > 0 {
		size := gtk.NewLabel("Size: " + common.FormatBytes(prompt.Size))
		size.AddCSSClass("dim-label")
		box.Append(size)
	}

	start := gtk.NewCheckButtonWithLabel("Start when added")
	start.SetActive(true)
	box.Append(start)

	buttons := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttons.SetHAlign(gtk.AlignEnd)

	cancel := gtk.NewButtonWithLabel("Cancel")
	cancel.ConnectClicked(func() {
		win.Destroy()
		prompt.Discard()
	})
	buttons.Append(cancel)

	add := gtk.NewButtonWithLabel("Add")
	add.AddCSSClass("suggested-action")
	add.ConnectClicked(func() {
		startNow := start.Active()
		win.Destroy()
		go func() {
			if err := prompt.Commit(startNow); err != nil {
				common.LogWarn("Add failed: %v", err)
			}
			a.queue.Post(a.refresher.RequestSoon)
		}()
	})
	buttons.Append(add)

	box.Append(buttons)
	win.Present()
}

// buildDetailsDialog constructs the per-selection detail window.
func (a *App) buildDetailsDialog(ids []int, closed func()) controller.Dialog {
	title := "Torrent Properties"
	if len(ids) > 1 {
		title = fmt.Sprintf("Properties of %d Torrents", len(ids))
	}
	win := a.dialogWindow(title, closed)
	win.SetDefaultSize(480, 360)
	box := dialogBox(win)

	for _, id := range ids {
		row := a.session.Find(id)
		if row == nil {
			continue
		}
		name := gtk.NewLabel(row.Name)
		name.SetXAlign(0)
		name.AddCSSClass("heading")
		box.Append(name)

		info := gtk.NewLabel(fmt.Sprintf(
			"%s · %s · downloaded %s · uploaded %s · added %s",
			row.Activity, common.FormatBytes(row.TotalSize),
			common.FormatBytes(row.Downloaded), common.FormatBytes(row.Uploaded),
			row.AddedAt.Format("2006-01-02 15:04")))
		info.SetXAlign(0)
		info.SetWrap(true)
		info.AddCSSClass("dim-label")
		box.Append(info)

		box.Append(gtk.NewSeparator(gtk.OrientationHorizontal))
	}
	return win
}

// buildStatsDialog shows transfer totals for this run and all time.
func (a *App) buildStatsDialog(closed func()) controller.Dialog {
	win := a.dialogWindow("Statistics", closed)
	box := dialogBox(win)

	if a.stats != nil {
		if cur, err := a.stats.Current(); err == nil {
			box.Append(statsSection("Current Session", cur))
		}
		if cum, err := a.stats.Cumulative(); err == nil {
			box.Append(statsSection(fmt.Sprintf("Total (%d sessions)", cum.SessionCount), cum))
		}
	} else {
		box.Append(gtk.NewLabel("Statistics are unavailable."))
	}

	ok := gtk.NewButtonWithLabel("Close")
	ok.SetHAlign(gtk.AlignEnd)
	ok.ConnectClicked(win.Destroy)
	box.Append(ok)
	return win
}

func statsSection(heading string, t stats.Totals) *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 4)

	head := gtk.NewLabel(heading)
	head.SetXAlign(0)
	head.AddCSSClass("heading")
	box.Append(head)

	hours := time.Duration(t.SecondsActive) * time.Second
	body := gtk.NewLabel(fmt.Sprintf(
		"Downloaded: %s\nUploaded: %s\nRatio: %.2f\nActive: %s",
		common.FormatBytes(t.Downloaded), common.FormatBytes(t.Uploaded),
		t.Ratio(), hours.Round(time.Minute)))
	body.SetXAlign(0)
	box.Append(body)
	return box
}
