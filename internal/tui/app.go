package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/nexus/internal/command"
	"github.com/naveenspark/nexus/internal/directory"
	"github.com/naveenspark/nexus/internal/logging"
	"github.com/naveenspark/nexus/internal/relay"
	"github.com/naveenspark/nexus/internal/settings"
	"github.com/naveenspark/nexus/pkg/domain"
)

type view int

const (
	viewDashboard view = iota
	viewLive
	viewWedding
	viewBroadcast
)

// StatsSource fetches the bot's metrics.
type StatsSource interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

// EventSource is the push channel the log surfaces attach to.
type EventSource interface {
	Subscribe(onEvent func(domain.LiveEvent)) (unsubscribe func())
	State() relay.State
}

// Options tunes the console.
type Options struct {
	StatsInterval       time.Duration
	LiveLogCapacity     int
	CeremonyLogCapacity int
	GuildID             string // preselected on the Wedding tab
	Version             string
	APIURL              string
}

// Deps are the components the surfaces drive.
type Deps struct {
	Stats     StatsSource
	Directory *directory.Directory
	Settings  *settings.Store
	Commands  *command.Commands
	Events    EventSource
	Status    *logging.StatusHandler
	Options   Options
}

// App is the root Bubbletea model.
type App struct {
	events EventSource
	status *logging.StatusHandler
	opts   Options

	view      view
	dashboard dashboardModel
	live      liveLogModel
	wedding   weddingModel
	broadcast broadcastModel

	spinner  spinner.Model
	helpOpen bool
	initCmd  tea.Cmd
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates the console with the Dashboard mounted.
func NewApp(d Deps) App {
	if d.Status == nil {
		d.Status = logging.NewStatusHandler(slog.LevelWarn)
	}
	a := App{
		events:    d.Events,
		status:    d.Status,
		opts:      d.Options,
		dashboard: newDashboardModel(d),
		live:      newLiveLogModel(d.Events, d.Options.LiveLogCapacity),
		wedding:   newWeddingModel(d),
		broadcast: newBroadcastModel(d),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(accentStyle)),
	}
	a.dashboard, a.initCmd = a.dashboard.mount()
	a = a.pushSpin()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.initCmd, shimmerTickCmd(), a.spinner.Tick)
}

// switchTo unmounts the active surface and mounts v.
func (a App) switchTo(v view) (App, tea.Cmd) {
	if v == a.view {
		return a, nil
	}
	a = a.unmountActive()
	a.view = v
	var cmd tea.Cmd
	switch v {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.mount()
	case viewLive:
		a.live, cmd = a.live.mount()
	case viewWedding:
		a.wedding, cmd = a.wedding.mount()
	case viewBroadcast:
		a.broadcast, cmd = a.broadcast.mount()
	}
	return a, cmd
}

func (a App) unmountActive() App {
	switch a.view {
	case viewDashboard:
		a.dashboard = a.dashboard.unmount()
	case viewLive:
		a.live = a.live.unmount()
	case viewWedding:
		a.wedding = a.wedding.unmount()
	case viewBroadcast:
		a.broadcast = a.broadcast.unmount()
	}
	return a
}

// quit detaches every subscription before exiting.
func (a App) quit() (App, tea.Cmd) {
	a = a.unmountActive()
	return a, tea.Quit
}

func (a App) pushSpin() App {
	spin := a.spinner.View()
	a.dashboard.spin = spin
	a.wedding.spin = spin
	a.broadcast.spin = spin
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.live, _ = a.live.Update(bodyMsg)
		a.wedding, _ = a.wedding.Update(bodyMsg)
		a.broadcast, _ = a.broadcast.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a.pushSpin(), cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Everything else is a result or a notification; each surface decides
	// whether it is still interested.
	var cmds [4]tea.Cmd
	a.dashboard, cmds[0] = a.dashboard.Update(msg)
	a.live, cmds[1] = a.live.Update(msg)
	a.wedding, cmds[2] = a.wedding.Update(msg)
	a.broadcast, cmds[3] = a.broadcast.Update(msg)
	return a, tea.Batch(cmds[:]...)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "h", "esc", "?":
			a.helpOpen = false
		case "q":
			return a.quit()
		}
		return a, nil
	}

	if !a.isEditing() {
		switch msg.String() {
		case "h":
			// Wedding uses h/l to change choices.
			if a.view != viewWedding {
				a.helpOpen = true
				return a, nil
			}
		case "?":
			a.helpOpen = true
			return a, nil
		case "q":
			return a.quit()
		case "x":
			a.status.Clear()
			return a, nil
		case "1":
			return a.switchTo(viewDashboard)
		case "2":
			return a.switchTo(viewLive)
		case "3":
			return a.switchTo(viewWedding)
		case "4":
			return a.switchTo(viewBroadcast)
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewLive:
		a.live, cmd = a.live.Update(msg)
	case viewWedding:
		a.wedding, cmd = a.wedding.Update(msg)
	case viewBroadcast:
		a.broadcast, cmd = a.broadcast.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewWedding:
		return a.wedding.isEditing()
	case viewBroadcast:
		return a.broadcast.isEditing()
	}
	return false
}

func (a App) relayState() relay.State {
	if a.events == nil {
		return relay.Idle
	}
	return a.events.State()
}

func (a App) View() string {
	// Header: centered shimmer logo, connection badge below
	logo := renderShimmerLogo(a.frame)
	header := strings.Repeat(" ", max((a.width-lipgloss.Width(logo))/2, 0)) + logo

	sub := relayBadge(a.relayState())
	if a.opts.APIURL != "" {
		sub += metaStyle.Render(" · " + a.opts.APIURL)
	}
	header += "\n" + strings.Repeat(" ", max((a.width-lipgloss.Width(sub))/2, 0)) + sub

	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Dashboard", viewDashboard},
		{"2", "Live Log", viewLive},
		{"3", "Wedding", viewWedding},
		{"4", "Broadcast", viewBroadcast},
	}

	// Tab bar: equal-width columns spread across the terminal
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	tabsHelp := helpEntry("1-4", "tabs")
	switch a.view {
	case viewDashboard:
		body = a.dashboard.View()
		help = " " + tabsHelp + "  " + helpEntry("s", "sync") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("o", "icon") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case viewLive:
		body = a.live.View()
		help = " " + tabsHelp + "  " + helpEntry("j/k", "scroll") + "  " + helpEntry("g", "top") + "  " + helpEntry("c", "copy") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case viewWedding:
		body = a.wedding.View()
		if a.wedding.isEditing() {
			help = " " + helpEntry("enter", "apply") + "  " + helpEntry("esc", "cancel")
		} else {
			help = " " + tabsHelp + "  " + helpEntry("j/k", "field") + "  " + helpEntry("h/l", "choose") + "  " + helpEntry("enter", "edit") + "  " + helpEntry("s", "save") + "  " + helpEntry("w", "start") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
		}
	case viewBroadcast:
		body = a.broadcast.View()
		if a.broadcast.isEditing() {
			help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "send/insert") + "  " + helpEntry("ctrl+e", "@everyone") + "  " + helpEntry("esc", "channels")
		} else {
			help = " " + tabsHelp + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "pick") + "  " + helpEntry("i", "compose") + "  " + helpEntry("e", "@everyone") + "  " + helpEntry("s", "send") + "  " + helpEntry("r", "sync") + "  " + helpEntry("y", "copy") + "  " + helpEntry("q", "quit")
		}
	}

	if a.helpOpen {
		body = helpView(a.opts.Version)
		help = " " + helpEntry("esc", "close")
	}

	statusBar := ""
	if e, ok := a.status.Latest(); ok {
		style := warnStyle
		if e.Level >= slog.LevelError {
			style = rejectStyle
		}
		statusBar = " " + style.Render(truncStr(e.String(), max(a.width-12, 20))) + "  " + helpEntry("x", "clear")
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, statusBar, help)
}
