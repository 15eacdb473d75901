package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nexus/internal/logbuf"
)

// logActivityMsg reports that a tail's buffer received events.
type logActivityMsg struct {
	tail *logTail
}

// logTail connects a log buffer to the event source for as long as its
// surface is mounted, and wakes the Update loop when events arrive.
type logTail struct {
	buf      *logbuf.Buffer
	activity chan struct{}
	stop     chan struct{}
	detach   func()
}

func attachTail(src logbuf.Source, buf *logbuf.Buffer) *logTail {
	t := &logTail{
		buf:      buf,
		activity: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	t.detach = buf.Attach(src, func() {
		select {
		case t.activity <- struct{}{}:
		default:
		}
	})
	return t
}

// wait blocks until the next event or until the tail closes.
func (t *logTail) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-t.activity:
			return logActivityMsg{tail: t}
		case <-t.stop:
			return nil
		}
	}
}

func (t *logTail) close() {
	t.detach()
	close(t.stop)
}
