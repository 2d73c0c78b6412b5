// Package main provides the entry point for the Transmission desktop
// client, a GTK4-based BitTorrent application for Linux.
//
// Features:
//   - Torrent downloads over the BitTorrent protocol with DHT, PEX, and µTP
//   - Queue management with configurable active-download limits
//   - Per-session and cumulative transfer statistics
//   - Native GTK4 interface with notification-area integration
//   - Command-line interface for scripting and automation
//
// Usage:
//
//	transmission [options] [torrent files...]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rkost/transmission/cli"
	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/controller"
	"github.com/rkost/transmission/prefs"
	"github.com/rkost/transmission/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// GUI/General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	startPaused = flag.Bool("paused", false, "Start with all torrents paused")
	minimized   = flag.Bool("minimized", false, "Start minimized to the notification area")

	// CLI flags
	listTorrents = flag.Bool("list", false, "List torrents and exit")
	addSource    = flag.String("add", "", "Add a torrent file, magnet link, or URL")
	showStats    = flag.Bool("stats", false, "Show transfer statistics")
	setRPCUser   = flag.String("set-rpc-user", "", "Store RPC credentials for a username")
)

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Transmission v%s\n", appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	if *listTorrents || *addSource != "" || *showStats || *setRPCUser != "" {
		runCLI()
		return
	}

	common.LogInfo("Starting %s v%s", common.AppName, appVersion)
	app := ui.NewApp(ui.Options{
		Version:        appVersion,
		StartPaused:    *startPaused,
		StartMinimized: *minimized,
		InitialFiles:   flag.Args(),
	})

	watchSignals(app)

	// Flags are already consumed; GTK only sees the program name.
	exitCode := app.Run(os.Args[:1])
	if exitCode != 0 {
		common.LogWarn("Application exited with code %d", exitCode)
	}
	os.Exit(exitCode)
}

// runCLI handles command-line operations without starting the GUI.
func runCLI() {
	var cliErr error

	switch {
	case *setRPCUser != "":
		store, err := prefs.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cliErr = cli.SetRPCCredentials(store, *setRPCUser)
	case *showStats:
		cliErr = cli.Status()
	default:
		app, err := cli.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		switch {
		case *addSource != "":
			cliErr = app.Add(*addSource)
		case *listTorrents:
			cliErr = app.List()
		}
	}

	if cliErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
		os.Exit(1)
	}
}

// watchSignals installs the SIGINT/SIGTERM escalation: first signal
// shuts down gracefully, a second one exits immediately.
func watchSignals(app *ui.App) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		var policy *controller.SignalPolicy
		for sig := range sigChan {
			if app.Sequencer() == nil {
				// Startup has not finished, nothing to unwind.
				os.Exit(130)
			}
			if policy == nil {
				policy = controller.NewSignalPolicy(app.Queue(), app.Sequencer())
			}
			policy.Handle(sig.String())
		}
	}()
}
