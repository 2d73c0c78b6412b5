package ui

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"

	"github.com/rkost/transmission/controller"
	"github.com/rkost/transmission/prefs"
)

// preferencesWindow edits the settings store. Changes apply as the
// widgets are toggled; the session picks them up through the change
// relay.
type preferencesWindow struct {
	window *gtk.Window
	store  *prefs.Store
}

// buildPreferencesDialog constructs the settings window.
func (a *App) buildPreferencesDialog(closed func()) controller.Dialog {
	pw := &preferencesWindow{store: a.store}
	pw.build(a, closed)
	return pw.window
}

func (pw *preferencesWindow) build(a *App, closed func()) {
	pw.window = gtk.NewWindow()
	pw.window.SetTitle("Preferences")
	pw.window.SetTransientFor(a.window.Native())
	pw.window.SetDefaultSize(480, 560)
	pw.window.ConnectDestroy(closed)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(24)
	mainBox.SetMarginBottom(24)
	mainBox.SetMarginStart(24)
	mainBox.SetMarginEnd(24)

	adding := pw.section("Adding", "list-add-symbolic")
	addingCard := pw.card()
	addingCard.Append(pw.dirRow("Download to", prefs.KeyDownloadDir))
	addingCard.Append(pw.separator())
	addingCard.Append(pw.flagRow("Start Added Torrents",
		"Begin downloading as soon as a torrent is added",
		prefs.KeyStartAddedTorrents))
	addingCard.Append(pw.separator())
	addingCard.Append(pw.flagRow("Show Options Dialog",
		"Ask before each torrent is added", prefs.KeyShowOptionsWindow))
	addingCard.Append(pw.separator())
	addingCard.Append(pw.flagRow("Trash Original Files",
		"Move .torrent files to the trash after adding them",
		prefs.KeyTrashOriginalFiles))
	adding.Append(addingCard)
	mainBox.Append(adding)

	speed := pw.section("Speed Limits", "network-transmit-receive-symbolic")
	speedCard := pw.card()
	speedCard.Append(pw.limitRow("Download (kB/s)",
		prefs.KeySpeedLimitDownEnabled, prefs.KeySpeedLimitDown))
	speedCard.Append(pw.separator())
	speedCard.Append(pw.limitRow("Upload (kB/s)",
		prefs.KeySpeedLimitUpEnabled, prefs.KeySpeedLimitUp))
	speedCard.Append(pw.separator())
	speedCard.Append(pw.spinRow("Temporary download limit (kB/s)",
		"Applies while temporary speed limits are on", prefs.KeyAltSpeedDown, 1, 100000))
	speedCard.Append(pw.separator())
	speedCard.Append(pw.spinRow("Temporary upload limit (kB/s)",
		"Applies while temporary speed limits are on", prefs.KeyAltSpeedUp, 1, 100000))
	speedCard.Append(pw.separator())
	speedCard.Append(pw.ratioRow())
	speed.Append(speedCard)
	mainBox.Append(speed)

	network := pw.section("Network", "network-wired-symbolic")
	networkCard := pw.card()
	networkCard.Append(pw.spinRow("Peer Listening Port",
		"Applied the next time the engine starts",
		prefs.KeyPeerPort, 1024, 65535))
	networkCard.Append(pw.separator())
	networkCard.Append(pw.flagRow("Pick a Random Port on Start",
		"Ignore the fixed port and choose one at launch",
		prefs.KeyPeerPortRandomOnStart))
	networkCard.Append(pw.separator())
	networkCard.Append(pw.flagRow("Use PEX",
		"Exchange peer lists with connected peers", prefs.KeyPexEnabled))
	networkCard.Append(pw.separator())
	networkCard.Append(pw.flagRow("Use DHT",
		"Find peers through the distributed hash table", prefs.KeyDHTEnabled))
	networkCard.Append(pw.separator())
	networkCard.Append(pw.flagRow("Use µTP",
		"Congestion-friendly transport for peer connections",
		prefs.KeyUTPEnabled))
	network.Append(networkCard)
	mainBox.Append(network)

	queue := pw.section("Queue", "view-list-symbolic")
	queueCard := pw.card()
	queueCard.Append(pw.spinRow("Maximum Active Downloads",
		"Torrents beyond this limit wait in the queue",
		prefs.KeyDownloadQueueSize, 1, 100))
	queue.Append(queueCard)
	mainBox.Append(queue)

	desktop := pw.section("Desktop", "preferences-desktop-symbolic")
	desktopCard := pw.card()
	desktopCard.Append(pw.flagRow("Show Icon in Notification Area",
		"Keep a tray icon while the application runs",
		prefs.KeyShowTrayIcon))
	desktopCard.Append(pw.separator())
	desktopCard.Append(pw.flagRow("Show Notifications",
		"Announce newly added torrents on the desktop",
		prefs.KeyShowNotifications))
	desktop.Append(desktopCard)
	mainBox.Append(desktop)

	scrolled.SetChild(mainBox)
	pw.window.SetChild(scrolled)
}

func (pw *preferencesWindow) section(title, iconName string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)
	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	headerBox.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	headerBox.Append(label)

	section.Append(headerBox)
	return section
}

func (pw *preferencesWindow) card() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	return card
}

func (pw *preferencesWindow) separator() *gtk.Separator {
	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	sep.SetMarginStart(16)
	sep.SetMarginEnd(16)
	return sep
}

func (pw *preferencesWindow) row(title, description string, widget gtk.Widgetter) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(12)
	row.SetMarginBottom(12)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	textBox.Append(titleLabel)

	if description != "" {
		descLabel := gtk.NewLabel(description)
		descLabel.SetXAlign(0)
		descLabel.AddCSSClass("dim-label")
		descLabel.AddCSSClass("caption")
		descLabel.SetWrap(true)
		textBox.Append(descLabel)
	}

	row.Append(textBox)
	row.Append(widget)
	return row
}

// flagRow builds a switch bound to a boolean preference.
func (pw *preferencesWindow) flagRow(title, description, key string) *gtk.Box {
	sw := gtk.NewSwitch()
	sw.SetActive(pw.store.GetFlag(key))
	sw.SetVAlign(gtk.AlignCenter)
	sw.ConnectStateSet(func(state bool) bool {
		pw.store.SetFlag(key, state)
		return false
	})
	return pw.row(title, description, sw)
}

// spinRow builds a spin button bound to an integer preference.
func (pw *preferencesWindow) spinRow(title, description, key string, lo, hi float64) *gtk.Box {
	spin := gtk.NewSpinButtonWithRange(lo, hi, 1)
	spin.SetValue(float64(pw.store.GetInt(key)))
	spin.SetVAlign(gtk.AlignCenter)
	spin.ConnectValueChanged(func() {
		pw.store.SetInt(key, spin.ValueAsInt())
	})
	return pw.row(title, description, spin)
}

// limitRow pairs an enable switch with a rate spin button.
func (pw *preferencesWindow) limitRow(title, enabledKey, valueKey string) *gtk.Box {
	spin := gtk.NewSpinButtonWithRange(1, 1<<20, 5)
	spin.SetValue(float64(pw.store.GetInt(valueKey)))
	spin.SetVAlign(gtk.AlignCenter)
	spin.SetSensitive(pw.store.GetFlag(enabledKey))
	spin.ConnectValueChanged(func() {
		pw.store.SetInt(valueKey, spin.ValueAsInt())
	})

	sw := gtk.NewSwitch()
	sw.SetActive(pw.store.GetFlag(enabledKey))
	sw.SetVAlign(gtk.AlignCenter)
	sw.ConnectStateSet(func(state bool) bool {
		pw.store.SetFlag(enabledKey, state)
		spin.SetSensitive(state)
		return false
	})

	box := gtk.NewBox(gtk.OrientationHorizontal, 8)
	box.Append(sw)
	box.Append(spin)
	return pw.row(title, "", box)
}

// ratioRow binds the stop-seeding-at-ratio pair.
func (pw *preferencesWindow) ratioRow() *gtk.Box {
	spin := gtk.NewSpinButtonWithRange(0.1, 100, 0.1)
	spin.SetDigits(2)
	spin.SetValue(pw.store.GetDouble(prefs.KeyRatioLimit))
	spin.SetVAlign(gtk.AlignCenter)
	spin.SetSensitive(pw.store.GetFlag(prefs.KeyRatioLimitEnabled))
	spin.ConnectValueChanged(func() {
		pw.store.SetDouble(prefs.KeyRatioLimit, spin.Value())
	})

	sw := gtk.NewSwitch()
	sw.SetActive(pw.store.GetFlag(prefs.KeyRatioLimitEnabled))
	sw.SetVAlign(gtk.AlignCenter)
	sw.ConnectStateSet(func(state bool) bool {
		pw.store.SetFlag(prefs.KeyRatioLimitEnabled, state)
		spin.SetSensitive(state)
		return false
	})

	box := gtk.NewBox(gtk.OrientationHorizontal, 8)
	box.Append(sw)
	box.Append(spin)
	return pw.row("Stop Seeding at Ratio", "", box)
}

// dirRow shows the download directory with a change button.
func (pw *preferencesWindow) dirRow(title, key string) *gtk.Box {
	label := gtk.NewLabel(pw.store.GetString(key))
	label.SetEllipsize(pango.EllipsizeMiddle)
	label.SetMaxWidthChars(24)
	label.AddCSSClass("dim-label")

	button := gtk.NewButtonWithLabel("Change")
	button.SetVAlign(gtk.AlignCenter)
	button.ConnectClicked(func() {
		chooser := gtk.NewFileChooserNative("Select Download Directory",
			pw.window, gtk.FileChooserActionSelectFolder, "_Select", "_Cancel")
		chooser.ConnectResponse(func(response int) {
			if response != int(gtk.ResponseAccept) {
				return
			}
			if file := chooser.File(); file != nil {
				pw.store.SetString(key, file.Path())
				label.SetText(file.Path())
			}
		})
		chooser.Show()
	})

	box := gtk.NewBox(gtk.OrientationHorizontal, 8)
	box.Append(label)
	box.Append(button)
	return pw.row(title, "", box)
}
