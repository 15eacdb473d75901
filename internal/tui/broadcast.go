package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nexus/internal/command"
	"github.com/naveenspark/nexus/internal/directory"
	"github.com/naveenspark/nexus/pkg/domain"
)

const msgChannelsSynced = "Channels synced from bot."

type broadcastField int

const (
	bcFieldChannel broadcastField = iota
	bcFieldMessage
	bcFieldUser
	bcFieldRole
	bcFieldCount
)

// broadcastModel is the Broadcast tab: a grouped channel picker and a
// message composer with mention helpers.
type broadcastModel struct {
	dir  *directory.Directory
	cmds *command.Commands

	cursor    int
	channelID string
	focus     broadcastField

	message textinput.Model
	userID  textinput.Model
	roleID  textinput.Model

	notice string
	spin   string
	width  int
	height int
}

func newBroadcastModel(d Deps) broadcastModel {
	return broadcastModel{
		dir:     d.Directory,
		cmds:    d.Commands,
		message: newTextInput("Type your message…", maxInputLen),
		userID:  newTextInput("User ID", maxIDLen),
		roleID:  newTextInput("Role ID", maxIDLen),
	}
}

func (m broadcastModel) mount() (broadcastModel, tea.Cmd) {
	return m, loadChannelsCmd(m.dir, false)
}

func (m broadcastModel) unmount() broadcastModel {
	return m.focusField(bcFieldChannel)
}

func (m broadcastModel) isEditing() bool {
	return m.focus != bcFieldChannel
}

// focusField moves keyboard focus, blurring every input but the target.
func (m broadcastModel) focusField(f broadcastField) broadcastModel {
	m.focus = f
	m.message.Blur()
	m.userID.Blur()
	m.roleID.Blur()
	switch f {
	case bcFieldMessage:
		m.message.Focus()
	case bcFieldUser:
		m.userID.Focus()
	case bcFieldRole:
		m.roleID.Focus()
	}
	return m
}

func (m broadcastModel) send() tea.Cmd {
	c, channelID, message := m.cmds, m.channelID, m.message.Value()
	return func() tea.Msg {
		return broadcastDoneMsg{err: c.SendBroadcast(context.Background(), channelID, message)}
	}
}

// insert appends a mention token to the message. Blank ids are ignored.
func (m broadcastModel) insert(token string) broadcastModel {
	m.message.SetValue(domain.AppendToken(m.message.Value(), token))
	m.message.CursorEnd()
	return m
}

func (m broadcastModel) Update(msg tea.Msg) (broadcastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - 20; w > 20 {
			m.message.Width = w
		}

	case channelsLoadedMsg:
		m.cursor = clampCursor(m.cursor, len(m.dir.Channels()))
		if msg.manual && msg.err == nil {
			m.notice = msgChannelsSynced
		}

	case copyResultMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
		} else {
			m.notice = "copied"
		}

	case tea.KeyMsg:
		if m.focus != bcFieldChannel {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m broadcastModel) handleKey(msg tea.KeyMsg) (broadcastModel, tea.Cmd) {
	channels := m.flatChannels()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(channels)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", " ":
		if m.cursor < len(channels) {
			m.channelID = channels[m.cursor].ID
		}
	case "tab", "i":
		return m.focusField(bcFieldMessage), nil
	case "shift+tab":
		return m.focusField(bcFieldRole), nil
	case "e":
		m = m.insert(domain.MentionEveryone)
	case "s", "ctrl+s":
		m.notice = ""
		return m, m.send()
	case "r":
		m.notice = ""
		return m, loadChannelsCmd(m.dir, true)
	case "y":
		text := m.message.Value()
		if text == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			return copyResultMsg{err: clipboard.WriteAll(text)}
		}
	}
	return m, nil
}

func (m broadcastModel) handleInputKey(msg tea.KeyMsg) (broadcastModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.focusField(bcFieldChannel), nil
	case "tab":
		return m.focusField((m.focus + 1) % bcFieldCount), nil
	case "shift+tab":
		return m.focusField((m.focus + bcFieldCount - 1) % bcFieldCount), nil
	case "ctrl+s":
		m.notice = ""
		return m, m.send()
	case "ctrl+e":
		return m.insert(domain.MentionEveryone), nil
	case "enter":
		switch m.focus {
		case bcFieldMessage:
			m.notice = ""
			return m, m.send()
		case bcFieldUser:
			if id := strings.TrimSpace(m.userID.Value()); id != "" {
				m = m.insert(domain.MentionUser(id))
			}
			m.userID.SetValue("")
		case bcFieldRole:
			if id := strings.TrimSpace(m.roleID.Value()); id != "" {
				m = m.insert(domain.MentionRole(id))
			}
			m.roleID.SetValue("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case bcFieldMessage:
		m.message, cmd = m.message.Update(msg)
	case bcFieldUser:
		m.userID, cmd = m.userID.Update(msg)
	case bcFieldRole:
		m.roleID, cmd = m.roleID.Update(msg)
	}
	return m, cmd
}

// flatChannels returns channels in picker order: grouped by guild.
func (m broadcastModel) flatChannels() []domain.Channel {
	var out []domain.Channel
	for _, g := range m.dir.Groups() {
		out = append(out, g.Channels...)
	}
	return out
}

func (m broadcastModel) View() string {
	var b strings.Builder

	b.WriteString("\n  " + sectionHeaderStyle.Render("Broadcast"))
	if line := renderRequest(m.dir.ChannelsState(), m.spin, "Loading channels…"); line != "" {
		b.WriteString("  " + line)
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderChannels())

	b.WriteString("\n" + m.label(bcFieldMessage, "Message") + m.message.View() + "\n")
	b.WriteString(m.label(bcFieldUser, "Mention user") + m.userID.View() + "\n")
	b.WriteString(m.label(bcFieldRole, "Mention role") + m.roleID.View() + "\n")

	if text := m.message.Value(); text != "" {
		b.WriteString("\n  " + dimStyle.Render("Preview") + "\n")
		b.WriteString("  " + highlightMentions(truncStr(oneLine(text), max(m.width-4, 20))) + "\n")
	}

	b.WriteString("\n  ")
	if line := renderRequest(m.cmds.BroadcastState(), m.spin, "Sending..."); line != "" {
		b.WriteString(line + "  ")
	}
	if m.notice != "" {
		b.WriteString(successStyle.Render(m.notice))
	}
	b.WriteString("\n")
	return b.String()
}

// renderChannels lists channels grouped under their guild, keeping the
// cursor row visible.
func (m broadcastModel) renderChannels() string {
	channels := m.dir.Channels()
	selected := dimStyle.Render("Select a text channel")
	for _, ch := range channels {
		if ch.ID == m.channelID {
			selected = accentStyle.Render("#"+ch.Name) + metaStyle.Render(" · "+ch.GuildName)
		}
	}

	var b strings.Builder
	b.WriteString(m.label(bcFieldChannel, "Channel") + selected + "\n")
	if len(channels) == 0 {
		return b.String()
	}

	rows := max(m.height-16, 4)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}

	i := 0
	shown := 0
	for _, g := range m.dir.Groups() {
		header := false
		for _, ch := range g.Channels {
			idx := i
			i++
			if idx < start || shown >= rows {
				continue
			}
			if !header {
				b.WriteString("     " + metaStyle.Render(g.GuildName) + "\n")
				header = true
			}
			b.WriteString(m.renderChannelRow(ch, idx == m.cursor))
			shown++
		}
	}
	if hidden := len(channels) - start - shown; hidden > 0 {
		b.WriteString(metaStyle.Render(fmt.Sprintf("       … %d more", hidden)) + "\n")
	}
	return b.String()
}

func (m broadcastModel) renderChannelRow(ch domain.Channel, cursor bool) string {
	mark := "  "
	if ch.ID == m.channelID {
		mark = successStyle.Render("✓ ")
	}
	name := normalStyle.Render("#" + ch.Name)
	prefix := "       "
	if cursor && m.focus == bcFieldChannel {
		name = selectedStyle.Render("#" + ch.Name)
		prefix = "     " + accentStyle.Render("▸") + " "
	}
	return prefix + mark + name + "\n"
}

func (m broadcastModel) label(f broadcastField, text string) string {
	if m.focus == f {
		return " " + accentStyle.Render("▸") + " " + selectedStyle.Render(fmt.Sprintf("%-14s", text)) + " "
	}
	return "   " + dimStyle.Render(fmt.Sprintf("%-14s", text)) + " "
}
