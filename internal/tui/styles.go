package tui

import (
	"fmt"
	"math"
	"regexp"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/nexus/internal/relay"
	"github.com/naveenspark/nexus/internal/request"
)

// Shimmer animation for the NEXUS logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "NEXUS" as a slow wave of blue light,
// deep navy (#1e3a8a) to bright sky (#60a5fa).
func renderShimmerLogo(frame int) string {
	const text = "NEXUS"
	n := len(text)

	var out string
	t := float64(frame)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(30 + b*(96-30))
		g := clampByte(58 + b*(165-58))
		bl := clampByte(138 + b*(250-138))
		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		out += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i]))
		if i < n-1 {
			out += "  "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles: nexus neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa"))

	// Outcome styles
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15"))

	// Wedding accents (the dashboard's pink buttons)
	heartStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f472b6"))

	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c084fc")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8890a0")).
				Bold(true)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#60a5fa")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	mentionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1e1e2a")).
			Padding(0, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	cardValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)
)

// mentionRe matches the mention tokens the bot understands.
var mentionRe = regexp.MustCompile(`@everyone|<@&?\d*>`)

// highlightMentions colors mention tokens inside an otherwise plain message.
func highlightMentions(s string) string {
	return mentionRe.ReplaceAllStringFunc(s, func(tok string) string {
		return mentionStyle.Render(tok)
	})
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// relayBadge renders the push-channel status for the header.
func relayBadge(s relay.State) string {
	switch s {
	case relay.Connected:
		return successStyle.Render("● WS: CONNECTED")
	case relay.Connecting:
		return warnStyle.Render("● WS: CONNECTING")
	default:
		return metaStyle.Render("○ WS: IDLE")
	}
}

// renderRequest renders a request state as a one-line status. Idle and
// message-less successes render as "".
func renderRequest(s request.State, spin, loading string) string {
	switch s.Phase {
	case request.Loading:
		return accentStyle.Render(spin) + " " + dimStyle.Render(loading)
	case request.Success:
		if s.Message == "" {
			return ""
		}
		return successStyle.Render(s.Message)
	case request.Error:
		return rejectStyle.Render(s.Message)
	}
	return ""
}

// helpView renders the help overlay.
func helpView(version string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("N E X U S")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"nexus", "Open the operator console"},
		{"nexus reload", "Re-register the bot's slash commands"},
		{"nexus stats", "Print the bot's metrics once"},
		{"nexus version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"1-4", "Dashboard, Live Log, Wedding, Broadcast"},
		{"j/k", "move"},
		{"h/l", "change the focused choice (Wedding)"},
		{"enter", "edit the focused field"},
		{"r", "refresh the current surface"},
		{"x", "clear the status line"},
		{"h or ?", "help (? on Wedding)"},
		{"q", "quit"},
	}

	out := fmt.Sprintf("\n  %s  %s\n\n", title, metaStyle.Render(version))
	out += fmt.Sprintf("  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		out += fmt.Sprintf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", c.cmd)), descStyle.Render(c.desc))
	}
	out += fmt.Sprintf("\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		out += fmt.Sprintf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", k.key)), descStyle.Render(k.desc))
	}
	return out
}
