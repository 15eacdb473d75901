package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nexus/internal/command"
	"github.com/naveenspark/nexus/internal/directory"
	"github.com/naveenspark/nexus/internal/settings"
)

// Results of remote operations. The components keep the data and request
// state; these messages only tell the surfaces to react.

type guildsLoadedMsg struct{ err error }

type channelsLoadedMsg struct {
	err    error
	manual bool // operator pressed refresh
}

type membersLoadedMsg struct {
	guildID string
	err     error
}

type settingsLoadedMsg struct {
	guildID string
	err     error
}

type settingsSavedMsg struct{ err error }

type broadcastDoneMsg struct{ err error }

type ceremonyDoneMsg struct{ err error }

type reloadDoneMsg struct{ err error }

type copyResultMsg struct{ err error }

type iconOpenedMsg struct{ err error }

func loadGuildsCmd(d *directory.Directory) tea.Cmd {
	return func() tea.Msg {
		return guildsLoadedMsg{err: d.LoadGuilds(context.Background())}
	}
}

func loadChannelsCmd(d *directory.Directory, manual bool) tea.Cmd {
	return func() tea.Msg {
		return channelsLoadedMsg{err: d.LoadChannels(context.Background()), manual: manual}
	}
}

func loadMembersCmd(d *directory.Directory, guildID string) tea.Cmd {
	return func() tea.Msg {
		return membersLoadedMsg{guildID: guildID, err: d.LoadMembers(context.Background(), guildID)}
	}
}

func refreshSettingsCmd(s *settings.Store, guildID string) tea.Cmd {
	return func() tea.Msg {
		return settingsLoadedMsg{guildID: guildID, err: s.Refresh(context.Background(), guildID)}
	}
}

func saveSettingsCmd(s *settings.Store, guildID string) tea.Cmd {
	return func() tea.Msg {
		return settingsSavedMsg{err: s.Save(context.Background(), guildID)}
	}
}

func reloadCommandsCmd(c *command.Commands) tea.Cmd {
	return func() tea.Msg {
		return reloadDoneMsg{err: c.ReloadCommands(context.Background())}
	}
}
