package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Loading dataset...")
	s.Start()
	s.Stop()

	if !strings.Contains(buf.String(), "Loading dataset...") {
		t.Errorf("spinner output = %q, want the message", buf.String())
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after an explicit Stop, want false")
	}
}

func TestSpinnerStopsWithParent(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			var buf bytes.Buffer
			s := newSpinnerTo(ctx, &buf, "Settling tower...")
			s.Start()

			select {
			case <-s.stopped:
			case <-time.After(time.Second):
				t.Fatal("spinner did not stop when its context ended")
			}
			if !s.Cancelled() {
				t.Error("Cancelled() = false, want true")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "Stopping...")
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newSpinner("never started").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() without Start() blocked")
	}
}

func TestSpinnerStopWithMessages(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "Loading links...")
	s.Start()
	s.StopWithSuccess("Loaded 42 countries")

	s = newSpinnerTo(context.Background(), &bytes.Buffer{}, "Loading links...")
	s.Start()
	s.StopWithError("Load failed")
}
