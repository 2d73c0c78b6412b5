// Package ui provides the GTK4 desktop shell: the main window with the
// torrent list, menus and named actions, the preferences and detail
// dialogs, the system tray icon, and desktop notifications.
//
// All widget state is owned by the GTK main loop's goroutine. Backend
// callbacks never touch it directly; they go through the controller
// package's task queue, which this package backs with glib idle
// callbacks.
package ui
