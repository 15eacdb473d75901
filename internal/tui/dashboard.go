package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/nexus/internal/browser"
	"github.com/naveenspark/nexus/internal/command"
	"github.com/naveenspark/nexus/internal/directory"
	"github.com/naveenspark/nexus/pkg/domain"
)

// defaultStatsInterval matches the web dashboard's 5s polling.
const defaultStatsInterval = 5 * time.Second

// iconSize is the CDN size requested for guild icons.
const iconSize = 64

// statsTickMsg fires when the next stats poll is due. gen ties it to one
// mount of the dashboard so polling stops after unmount.
type statsTickMsg struct{ gen int }

// statsLoadedMsg carries a /stats result.
type statsLoadedMsg struct {
	gen   int
	stats domain.Stats
	err   error
}

// dashboardModel is the Dashboard tab: bot metrics polled while mounted,
// the Sync Commands action, and the guild list.
type dashboardModel struct {
	stats    StatsSource
	dir      *directory.Directory
	cmds     *command.Commands
	interval time.Duration

	gen     int
	mounted bool

	entries  []domain.StatEntry
	loaded   bool
	statsErr string
	updated  time.Time

	cursor int
	notice string
	spin   string
	width  int
	height int
}

func newDashboardModel(d Deps) dashboardModel {
	interval := d.Options.StatsInterval
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return dashboardModel{
		stats:    d.Stats,
		dir:      d.Directory,
		cmds:     d.Commands,
		interval: interval,
	}
}

func (m dashboardModel) mount() (dashboardModel, tea.Cmd) {
	m.gen++
	m.mounted = true
	return m, tea.Batch(m.loadStats(), loadGuildsCmd(m.dir))
}

func (m dashboardModel) unmount() dashboardModel {
	m.gen++
	m.mounted = false
	return m
}

func (m dashboardModel) loadStats() tea.Cmd {
	src, gen := m.stats, m.gen
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		stats, err := src.Stats(context.Background())
		return statsLoadedMsg{gen: gen, stats: stats, err: err}
	}
}

func (m dashboardModel) statsTickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return statsTickMsg{gen: gen}
	})
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case statsLoadedMsg:
		if msg.gen != m.gen || !m.mounted {
			return m, nil
		}
		if msg.err != nil {
			m.statsErr = "stats unavailable"
		} else {
			m.entries = msg.stats.Entries()
			m.loaded = true
			m.statsErr = ""
			m.updated = time.Now()
		}
		return m, m.statsTickCmd()

	case statsTickMsg:
		if msg.gen != m.gen || !m.mounted {
			return m, nil
		}
		return m, m.loadStats()

	case guildsLoadedMsg:
		m.cursor = clampCursor(m.cursor, len(m.dir.Guilds()))

	case iconOpenedMsg:
		if msg.err != nil {
			m.notice = "Could not open browser: " + msg.err.Error()
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	guilds := m.dir.Guilds()
	switch msg.String() {
	case "s":
		m.notice = ""
		return m, reloadCommandsCmd(m.cmds)
	case "r":
		m.notice = ""
		return m, tea.Batch(m.loadStats(), loadGuildsCmd(m.dir))
	case "j", "down":
		if m.cursor < len(guilds)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "o":
		if m.cursor < len(guilds) {
			u := guilds[m.cursor].IconURL(iconSize)
			if u == "" {
				m.notice = guilds[m.cursor].Name + " has no icon."
				return m, nil
			}
			return m, func() tea.Msg {
				return iconOpenedMsg{err: browser.Open(u)}
			}
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString("\n  " + sectionHeaderStyle.Render("Activity Metrics"))
	if !m.updated.IsZero() {
		b.WriteString(metaStyle.Render("  updated " + m.updated.Format("15:04:05")))
	}
	if m.statsErr != "" {
		b.WriteString("  " + rejectStyle.Render(m.statsErr))
	}
	b.WriteString("\n")
	if !m.loaded {
		b.WriteString("  " + dimStyle.Render(m.spin+" Loading stats…") + "\n")
	} else {
		b.WriteString(m.renderCards() + "\n")
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("Quick Actions") + "\n")
	b.WriteString("  " + helpEntry("s", "Sync Commands"))
	if line := renderRequest(m.cmds.ReloadState(), m.spin, "Syncing…"); line != "" {
		b.WriteString("   " + line)
	}
	b.WriteString("\n")

	guilds := m.dir.Guilds()
	b.WriteString("\n  " + sectionHeaderStyle.Render("Guilds") + metaStyle.Render(fmt.Sprintf("  %d", len(guilds))))
	if line := renderRequest(m.dir.GuildsState(), m.spin, "Loading guilds…"); line != "" {
		b.WriteString("  " + line)
	}
	b.WriteString("\n")
	if len(guilds) == 0 {
		b.WriteString("  " + dimStyle.Render("No guilds yet.") + "\n")
	}
	for i, g := range guilds {
		b.WriteString(renderGuildRow(g, i == m.cursor, m.width))
	}

	if m.notice != "" {
		b.WriteString("\n  " + warnStyle.Render(m.notice) + "\n")
	}
	return b.String()
}

// renderCards lays the metrics out as cards, wrapping to the terminal width.
func (m dashboardModel) renderCards() string {
	if len(m.entries) == 0 {
		return "  " + dimStyle.Render("The bot reported no metrics.")
	}
	width := m.width
	if width <= 0 {
		width = 80
	}

	var rows []string
	var row []string
	rowWidth := 2
	for _, e := range m.entries {
		card := cardStyle.Render(cardTitleStyle.Render(e.Name) + "\n" + cardValueStyle.Render(truncStr(e.Value, 24)))
		w := lipgloss.Width(card)
		if len(row) > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 2
		}
		row = append(row, card)
		rowWidth += w
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))

	out := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.NewStyle().PaddingLeft(2).Render(out)
}

func renderGuildRow(g domain.Guild, selected bool, width int) string {
	name := normalStyle.Render(g.Name)
	prefix := "   "
	if selected {
		name = selectedStyle.Render(g.Name)
		prefix = " " + accentStyle.Render("▸") + " "
	}
	meta := metaStyle.Render(g.ID)
	if t, ok := g.CreatedAt(); ok {
		meta += metaStyle.Render(" · since " + t.Format("Jan 2006"))
	}
	if g.IconURL(iconSize) != "" {
		meta += dimStyle.Render(" · icon")
	}
	line := prefix + name + "  " + meta
	if width > 0 && lipgloss.Width(line) > width {
		line = prefix + name
	}
	return line + "\n"
}
