package cli

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		emit    log.Level
		wantLog bool
	}{
		{"info at info", log.InfoLevel, log.InfoLevel, true},
		{"debug at info", log.InfoLevel, log.DebugLevel, false},
		{"debug at debug", log.DebugLevel, log.DebugLevel, true},
		{"warn at error", log.ErrorLevel, log.WarnLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newLogger(&buf, tt.level).Log(tt.emit, "reconfigure", "key", "pagerank:asc")
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("wrote output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("building tower", "blocks", 12)

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).Match(buf.Bytes()) {
		t.Errorf("log line %q should start with an HH:MM:SS.ms timestamp", buf.String())
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("simulated 120 frames")

	if !regexp.MustCompile(`simulated 120 frames \(\d+(\.\d+)?m?s\)`).Match(buf.Bytes()) {
		t.Errorf("progress output = %q, want message with elapsed time", buf.String())
	}
}
