package prefs

// Preference keys. The session applies engine-backed keys to the live
// backend when notified of a change; the rest are consumed by the UI.
const (
	KeyDownloadDir           = "download-dir"
	KeyIncompleteDir         = "incomplete-dir"
	KeyIncompleteDirEnabled  = "incomplete-dir-enabled"
	KeyStartAddedTorrents    = "start-added-torrents"
	KeyShowOptionsWindow     = "show-options-window"
	KeyTrashOriginalFiles    = "trash-original-torrent-files"
	KeySpeedLimitDown        = "speed-limit-down"
	KeySpeedLimitDownEnabled = "speed-limit-down-enabled"
	KeySpeedLimitUp          = "speed-limit-up"
	KeySpeedLimitUpEnabled   = "speed-limit-up-enabled"
	KeyAltSpeedEnabled       = "alt-speed-enabled"
	KeyAltSpeedDown          = "alt-speed-down"
	KeyAltSpeedUp            = "alt-speed-up"
	KeyRatioLimit            = "ratio-limit"
	KeyRatioLimitEnabled     = "ratio-limit-enabled"
	KeyPeerPort              = "peer-port"
	KeyPeerPortRandomOnStart = "peer-port-random-on-start"
	KeyPexEnabled            = "pex-enabled"
	KeyDHTEnabled            = "dht-enabled"
	KeyUTPEnabled            = "utp-enabled"
	KeyDownloadQueueSize     = "download-queue-size"
	KeySeedQueueSize         = "seed-queue-size"
	KeyShowTrayIcon          = "show-notification-area-icon"
	KeyShowNotifications     = "show-notifications"
	KeyMainWindowWidth       = "main-window-width"
	KeyMainWindowHeight      = "main-window-height"
	KeyMainWindowX           = "main-window-x"
	KeyMainWindowY           = "main-window-y"
	KeyMainWindowIsMaximized = "main-window-is-maximized"
	KeyUserHasGivenConsent   = "user-has-given-informed-consent"
	KeyRPCEnabled            = "rpc-enabled"
	KeyRPCUsername           = "rpc-username"
)
