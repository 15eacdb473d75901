package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/nexus/pkg/domain"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace so a chat message fits
// a single log row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderEvent renders one live event as a single row:
// author · guild #channel  content
func renderEvent(ev domain.LiveEvent, width int) string {
	head := authorStyle.Render(ev.AuthorTag) + metaStyle.Render(" · ") +
		dimStyle.Render(ev.GuildName) + " " + metaStyle.Render("#"+ev.ChannelName)
	room := width - lipgloss.Width(head) - 4
	if room < 10 {
		room = 10
	}
	return head + "  " + normalStyle.Render(truncStr(oneLine(ev.Content), room))
}

// renderEventList renders a newest-first event list with an optional
// cursor, showing at most rows entries and keeping the cursor visible.
func renderEventList(events []domain.LiveEvent, cursor, rows, width int) string {
	if rows < 1 {
		rows = 1
	}
	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	end := min(start+rows, len(events))

	var b strings.Builder
	for i := start; i < end; i++ {
		line := renderEvent(events[i], width-3)
		if i == cursor {
			b.WriteString(" " + accentStyle.Render("▸") + " " + line + "\n")
		} else {
			b.WriteString("   " + line + "\n")
		}
	}
	if hidden := len(events) - end; hidden > 0 {
		b.WriteString(metaStyle.Render(fmt.Sprintf("   … %d older", hidden)) + "\n")
	}
	return b.String()
}

// clampCursor keeps a list cursor within [0, n).
func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
