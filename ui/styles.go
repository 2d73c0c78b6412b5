package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles for the torrent list; colors follow the system
// dark/light mode.
const appCSS = `
/* Torrent rows */
.torrent-row {
    border-radius: 8px;
    margin: 2px 8px;
    border: 1px solid alpha(currentColor, 0.1);
}

.torrent-row:hover {
    background-color: alpha(currentColor, 0.05);
}

.torrent-row:selected {
    border-color: alpha(#3584e4, 0.6);
}

.torrent-row progressbar progress {
    background-color: #3584e4;
}

/* Settings cards */
.card {
    border-radius: 12px;
    border: 1px solid alpha(currentColor, 0.15);
}

.monospace {
    font-family: monospace;
}
`

// LoadStyles installs the custom CSS for the application. Called once
// during startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}
