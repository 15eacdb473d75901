// Package logging builds the console's slog logger. The terminal owns
// stdout and stderr while the UI runs, so records go to a JSON file and to
// a StatusHandler the UI reads for its status line.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects the log sinks. All are optional.
type Options struct {
	// File receives JSON records. Empty disables file logging.
	File  string
	Level slog.Level

	// Status, when set, keeps the latest warning for the UI.
	Status *StatusHandler

	// Text receives human-readable records, for one-shot commands that do
	// not take over the terminal.
	Text io.Writer
}

// New builds a logger fanning out to every configured sink. The returned
// closer releases the log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	hopts := &slog.HandlerOptions{Level: opts.Level}
	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", opts.File, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, hopts))
		closer = f
	}
	if opts.Text != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Text, hopts))
	}
	if opts.Status != nil {
		handlers = append(handlers, opts.Status)
	}

	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler), closer, nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Entry is one status-worthy log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// String renders the entry for a one-line status bar.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s: %s", e.Time.Format("15:04:05"), e.Level, e.Message)
}

// StatusHandler remembers the most recent record at or above its level.
type StatusHandler struct {
	state *statusState
	attrs []slog.Attr
	group string
}

type statusState struct {
	mu    sync.Mutex
	min   slog.Level
	last  Entry
	valid bool
}

// NewStatusHandler keeps records at min or above.
func NewStatusHandler(min slog.Level) *StatusHandler {
	return &StatusHandler{state: &statusState{min: min}}
}

func (h *StatusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.state.min
}

func (h *StatusHandler) Handle(_ context.Context, r slog.Record) error {
	msg := r.Message
	if err := errorAttr(h.attrs, r); err != "" {
		msg += " (" + err + ")"
	}

	h.state.mu.Lock()
	h.state.last = Entry{Time: r.Time, Level: r.Level, Message: msg}
	h.state.valid = true
	h.state.mu.Unlock()
	return nil
}

func (h *StatusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *StatusHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.group = name
	return &next
}

// Latest returns the most recent entry, if any.
func (h *StatusHandler) Latest() (Entry, bool) {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.last, h.state.valid
}

// Clear forgets the latest entry.
func (h *StatusHandler) Clear() {
	h.state.mu.Lock()
	h.state.valid = false
	h.state.mu.Unlock()
}

// errorAttr finds an "error" attribute on the record or the handler.
func errorAttr(attrs []slog.Attr, r slog.Record) string {
	var found string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "error" {
			found = a.Value.String()
			return false
		}
		return true
	})
	if found != "" {
		return found
	}
	for _, a := range attrs {
		if a.Key == "error" {
			return a.Value.String()
		}
	}
	return ""
}
