// Package cli provides command-line access to the torrent session so
// torrents can be listed and added from the terminal without launching
// the GUI application.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rkost/transmission/common"
	"github.com/rkost/transmission/keyring"
	"github.com/rkost/transmission/prefs"
	"github.com/rkost/transmission/session"
	"github.com/rkost/transmission/stats"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	queuedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// CLI drives a headless session for terminal commands.
type CLI struct {
	store   *prefs.Store
	session *session.Session
}

// New loads preferences, starts the engine, and reloads the stashed
// torrents.
func New() (*CLI, error) {
	store, err := prefs.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	s, err := session.New(store)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s.Load(true)

	return &CLI{store: store, session: s}, nil
}

// Close shuts the engine down, blocking until it has flushed.
func (c *CLI) Close() {
	if h := c.session.Close(); h != nil {
		h.Wait()
	}
}

// List prints the torrent table.
func (c *CLI) List() error {
	rows := c.session.Model()
	if len(rows) == 0 {
		fmt.Println("No torrents.")
		fmt.Println("Add one with: transmission --add FILE_OR_MAGNET")
		return nil
	}

	c.session.Update()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("ID\tNAME\tSTATUS\tPROGRESS\tSIZE"))

	for _, row := range rows {
		name := row.Name
		if len(name) > 48 {
			name = name[:45] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f%%\t%s\n",
			row.ID, name, styleActivity(row.Activity),
			row.Progress*100, common.FormatBytes(row.TotalSize))
	}
	return w.Flush()
}

func styleActivity(a session.Activity) string {
	switch a {
	case session.ActivityStopped:
		return stoppedStyle.Render(a.String())
	case session.ActivityQueuedDownload, session.ActivityQueuedSeed:
		return queuedStyle.Render(a.String())
	default:
		return runningStyle.Render(a.String())
	}
}

// Add adds one torrent from a file path, magnet link, or URL, then
// waits briefly for metadata so magnets get stashed for the next run.
func (c *CLI) Add(source string) error {
	var err error
	switch {
	case strings.HasPrefix(source, "magnet:"):
		err = c.session.AddMagnet(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		err = c.session.AddURL(source)
	default:
		err = c.session.AddFile(source)
	}
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", filepath.Base(source), err)
	}

	fmt.Printf("Added %s\n", source)
	if strings.HasPrefix(source, "magnet:") {
		fmt.Println("Waiting for metadata...")
		deadline := time.Now().Add(common.URLFetchTimeout)
		for time.Now().Before(deadline) {
			rows := c.session.Model()
			if len(rows) > 0 && rows[len(rows)-1].TotalSize > 0 {
				fmt.Printf("✓ %s\n", rows[len(rows)-1].Name)
				return nil
			}
			time.Sleep(500 * time.Millisecond)
		}
		fmt.Println(errorStyle.Render("Metadata did not arrive in time; the torrent stays queued."))
	}
	return nil
}

// Status prints transfer totals for this run and all time. It reads
// the stats database directly and needs no running engine.
func Status() error {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return err
	}
	cum, err := stats.ReadTotals(filepath.Join(configDir, common.StatsFileName))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("ALL TIME\t"))
	fmt.Fprintf(w, "Downloaded\t%s\n", common.FormatBytes(cum.Downloaded))
	fmt.Fprintf(w, "Uploaded\t%s\n", common.FormatBytes(cum.Uploaded))
	fmt.Fprintf(w, "Ratio\t%.2f\n", cum.Ratio())
	fmt.Fprintf(w, "Sessions\t%d\n", cum.SessionCount)
	fmt.Fprintf(w, "Active\t%s\n", formatDuration(time.Duration(cum.SecondsActive)*time.Second))
	return w.Flush()
}

// SetRPCCredentials prompts for a password and stores it in the system
// keyring under the given username.
func SetRPCCredentials(store *prefs.Store, username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	fmt.Printf("Password for %s: ", username)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := keyring.Store(username, string(password)); err != nil {
		return err
	}

	store.SetString(prefs.KeyRPCUsername, username)
	store.SetFlag(prefs.KeyRPCEnabled, true)
	if err := store.Save(); err != nil {
		return err
	}

	fmt.Printf("✓ Credentials stored for %s\n", username)
	return nil
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`Transmission - Command Line Interface

Usage:
  transmission [OPTIONS] [TORRENT FILES...]

Options:
  --version             Show version and exit
  --verbose             Enable verbose logging
  --paused              Start with all torrents paused
  --minimized           Start minimized to the notification area
  --list                List torrents and exit
  --add SOURCE          Add a torrent file, magnet link, or URL
  --stats               Show transfer statistics
  --set-rpc-user NAME   Store RPC credentials for NAME
  --help                Show this help message

Examples:
  transmission ubuntu.torrent
  transmission --add "magnet:?xt=urn:btih:..."
  transmission --list
  transmission --stats

Run without options to launch the GUI.`)
}
