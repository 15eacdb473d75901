package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nexus/internal/logbuf"
)

// liveLogModel is the Live Log tab: a newest-first tail of every
// dashboard:log event, attached to the relay while the tab is open.
type liveLogModel struct {
	events EventSource
	buf    *logbuf.Buffer
	tail   *logTail

	cursor int
	notice string
	width  int
	height int
}

func newLiveLogModel(events EventSource, capacity int) liveLogModel {
	if capacity <= 0 {
		capacity = logbuf.LiveLogCapacity
	}
	return liveLogModel{events: events, buf: logbuf.New(capacity)}
}

func (m liveLogModel) mount() (liveLogModel, tea.Cmd) {
	if m.tail != nil || m.events == nil {
		return m, nil
	}
	m.tail = attachTail(m.events, m.buf)
	return m, m.tail.wait()
}

func (m liveLogModel) unmount() liveLogModel {
	if m.tail != nil {
		m.tail.close()
		m.tail = nil
	}
	return m
}

func (m liveLogModel) Update(msg tea.Msg) (liveLogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case logActivityMsg:
		if m.tail == nil || msg.tail != m.tail {
			return m, nil
		}
		return m, m.tail.wait()

	case copyResultMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
		} else {
			m.notice = "copied"
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < m.buf.Len()-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g":
			m.cursor = 0
		case "c":
			events := m.buf.Snapshot()
			if m.cursor < len(events) {
				ev := events[m.cursor]
				text := fmt.Sprintf("%s (%s #%s): %s", ev.AuthorTag, ev.GuildName, ev.ChannelName, ev.Content)
				return m, func() tea.Msg {
					return copyResultMsg{err: clipboard.WriteAll(text)}
				}
			}
		}
	}
	return m, nil
}

func (m liveLogModel) View() string {
	var b strings.Builder
	events := m.buf.Snapshot()

	b.WriteString("\n  " + sectionHeaderStyle.Render("Marriage Live Logs"))
	b.WriteString(metaStyle.Render(fmt.Sprintf("  %d/%d", len(events), m.buf.Cap())))
	if m.notice != "" {
		b.WriteString("  " + dimStyle.Render(m.notice))
	}
	b.WriteString("\n\n")

	if len(events) == 0 {
		b.WriteString("  " + dimStyle.Render("Waiting for messages...") + "\n")
		return b.String()
	}
	rows := m.height - 4
	b.WriteString(renderEventList(events, clampCursor(m.cursor, len(events)), rows, m.width))
	return b.String()
}
