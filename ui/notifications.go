package ui

import (
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/rkost/transmission/common"
)

// Desktop notifications go over the org.freedesktop.Notifications bus
// interface. The session bus connection is shared and lazily made; a
// missing notification daemon downgrades to a log line.

const (
	notifyDest     = "org.freedesktop.Notifications"
	notifyPath     = "/org/freedesktop/Notifications"
	notifyMethod   = "org.freedesktop.Notifications.Notify"
	notifyExpireMs = int32(5000)
	notifyIconName = "transmission"
)

var (
	notifyOnce sync.Once
	notifyConn *dbus.Conn
)

func notifyBus() *dbus.Conn {
	notifyOnce.Do(func() {
		conn, err := dbus.SessionBus()
		if err != nil {
			common.LogDebug("Session bus unavailable, notifications disabled: %v", err)
			return
		}
		notifyConn = conn
	})
	return notifyConn
}

// sendNotification shows one desktop notification.
func sendNotification(summary, body string) {
	conn := notifyBus()
	if conn == nil {
		return
	}
	obj := conn.Object(notifyDest, notifyPath)
	call := obj.Call(notifyMethod, 0,
		common.AppName, uint32(0), notifyIconName, summary, body,
		[]string{}, map[string]dbus.Variant{}, notifyExpireMs)
	if call.Err != nil {
		common.LogDebug("Notification failed: %v", call.Err)
	}
}

// NotifyTorrentAdded announces a newly added torrent.
func NotifyTorrentAdded(name string) {
	sendNotification("Torrent Added", name)
}

// NotifyTorrentComplete announces a finished download.
func NotifyTorrentComplete(name string) {
	sendNotification("Download Complete", name)
}
