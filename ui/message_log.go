package ui

import (
	"os"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/controller"
)

// Cap the message log view so an old session's file does not stall the
// UI on open.
const messageLogMaxLines = 1000

// buildMessageLogWindow constructs the log viewer over the current log
// file.
func (a *App) buildMessageLogWindow(closed func()) controller.Dialog {
	win := a.dialogWindow("Message Log", closed)
	win.SetDefaultSize(640, 400)

	box := gtk.NewBox(gtk.OrientationVertical, 6)
	win.SetChild(box)

	view := gtk.NewTextView()
	view.SetEditable(false)
	view.SetCursorVisible(false)
	view.SetMonospace(true)
	view.SetLeftMargin(8)
	view.SetRightMargin(8)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetChild(view)
	box.Append(scrolled)

	reload := func() {
		view.Buffer().SetText(readLogTail())
	}
	reload()

	bar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	bar.SetHAlign(gtk.AlignEnd)
	bar.SetMarginBottom(12)
	bar.SetMarginEnd(12)

	refresh := gtk.NewButtonWithLabel("Refresh")
	refresh.ConnectClicked(reload)
	bar.Append(refresh)

	closeBtn := gtk.NewButtonWithLabel("Close")
	closeBtn.ConnectClicked(win.Destroy)
	bar.Append(closeBtn)

	box.Append(bar)
	return win
}

// readLogTail returns the last portion of the log file.
func readLogTail() string {
	path := common.GetLogger().FilePath()
	if path == "" {
		return "File logging is disabled for this run."
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "Could not read log file: " + err.Error()
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > messageLogMaxLines {
		lines = lines[len(lines)-messageLogMaxLines:]
	}
	return strings.Join(lines, "\n")
}
