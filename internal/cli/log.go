// Package cli implements the jengatower command-line interface.
//
// This package provides commands for generating tower layouts from a
// country dataset, running the tower headless or in a window, serving it
// over HTTP and managing the result cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Print or export the block layout for a sort key
//   - simulate: Build a tower and let it settle without a window
//   - reconfigure: Animate a tower from one ordering to another, headless
//   - serve: Run the HTTP and WebSocket server
//   - view: Open the desktop viewer
//   - network: Render the country link network with Graphviz
//   - tui: Browse layouts in the terminal
//   - cache: Manage the result cache
//   - config: Write or print the configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Without it
// the level comes from the configuration's log.level.
//
// # Example
//
//	import "github.com/matzehuels/jengatower/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created,
// e.g. "Settled 42 blocks (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
