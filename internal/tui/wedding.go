package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nexus/internal/command"
	"github.com/naveenspark/nexus/internal/directory"
	"github.com/naveenspark/nexus/internal/logbuf"
	"github.com/naveenspark/nexus/internal/settings"
	"github.com/naveenspark/nexus/pkg/domain"
)

type weddingField int

const (
	wedFieldGuild weddingField = iota
	wedFieldPartnerA
	wedFieldPartnerB
	wedFieldChannel
	wedFieldRole
	wedFieldLanguage
	wedFieldCount
)

var languageLabels = map[domain.Language]string{
	domain.LanguageEnglish:    "English",
	domain.LanguageIndonesian: "Indonesia",
}

// weddingModel is the Wedding tab: guild settings, the ceremony launcher,
// the marriage list and an embedded live log.
type weddingModel struct {
	dir    *directory.Directory
	store  *settings.Store
	cmds   *command.Commands
	events EventSource
	buf    *logbuf.Buffer
	tail   *logTail

	preselect string
	mounted   bool

	partnerA string
	partnerB string
	focus    weddingField
	editing  bool
	input    textinput.Model

	spin   string
	width  int
	height int
}

func newWeddingModel(d Deps) weddingModel {
	capacity := d.Options.CeremonyLogCapacity
	if capacity <= 0 {
		capacity = logbuf.CeremonyCapacity
	}
	return weddingModel{
		dir:       d.Directory,
		store:     d.Settings,
		cmds:      d.Commands,
		events:    d.Events,
		buf:       logbuf.New(capacity),
		preselect: d.Options.GuildID,
		input:     newTextInput("", maxIDLen),
	}
}

func (m weddingModel) mount() (weddingModel, tea.Cmd) {
	m.mounted = true
	cmds := []tea.Cmd{loadGuildsCmd(m.dir)}
	if m.tail == nil && m.events != nil {
		m.tail = attachTail(m.events, m.buf)
		cmds = append(cmds, m.tail.wait())
	}
	if m.dir.Selected() == "" && m.preselect != "" {
		var cmd tea.Cmd
		m, cmd = m.selectGuild(m.preselect)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m weddingModel) unmount() weddingModel {
	m.mounted = false
	m.editing = false
	m.input.Blur()
	if m.tail != nil {
		m.tail.close()
		m.tail = nil
	}
	return m
}

// selectGuild is the guild-selection trigger: it invalidates members and
// partners, then loads members and settings for the new guild.
func (m weddingModel) selectGuild(id string) (weddingModel, tea.Cmd) {
	m.dir.SelectGuild(id)
	m.partnerA, m.partnerB = "", ""
	if id == "" {
		return m, nil
	}
	return m, tea.Batch(loadMembersCmd(m.dir, id), refreshSettingsCmd(m.store, id))
}

// loaded returns the settings held for the selected guild. While another
// guild's settings are still held (a switch in flight or failed) it returns
// the zero value, so nothing from that guild leaks into this one.
func (m weddingModel) loaded() (domain.GuildSettings, bool) {
	selected := m.dir.Selected()
	if selected == "" || m.store.GuildID() != selected {
		return domain.GuildSettings{}, false
	}
	return m.store.Current(), true
}

func (m weddingModel) startCeremony() tea.Cmd {
	current, _ := m.loaded()
	req := command.CeremonyRequest{
		GuildID:   m.dir.Selected(),
		PartnerA:  m.partnerA,
		PartnerB:  m.partnerB,
		ChannelID: current.WeddingChannel,
		RoleID:    current.WeddingRole,
	}
	c := m.cmds
	return func() tea.Msg {
		return ceremonyDoneMsg{err: c.StartCeremony(context.Background(), req)}
	}
}

func (m weddingModel) Update(msg tea.Msg) (weddingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case guildsLoadedMsg:
		if !m.mounted || msg.err != nil || m.dir.Selected() != "" {
			return m, nil
		}
		guilds := m.dir.Guilds()
		if len(guilds) == 0 {
			return m, nil
		}
		pick := guilds[0].ID
		if _, ok := domain.FindGuild(guilds, m.preselect); ok {
			pick = m.preselect
		}
		return m.selectGuild(pick)

	case membersLoadedMsg:
		if errors.Is(msg.err, directory.ErrSuperseded) || msg.guildID != m.dir.Selected() {
			return m, nil
		}
		members := m.dir.Members()
		if !hasMember(members, m.partnerA) {
			m.partnerA = ""
		}
		if !hasMember(members, m.partnerB) {
			m.partnerB = ""
		}

	case logActivityMsg:
		if m.tail == nil || msg.tail != m.tail {
			return m, nil
		}
		return m, m.tail.wait()

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m weddingModel) handleEditKey(msg tea.KeyMsg) (weddingModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		switch m.focus {
		case wedFieldChannel:
			m.store.SetWeddingChannel(value)
		case wedFieldRole:
			m.store.SetWeddingRole(value)
		}
		m.editing = false
		m.input.Blur()
		return m, nil
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m weddingModel) handleKey(msg tea.KeyMsg) (weddingModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down", "tab":
		m.focus = (m.focus + 1) % wedFieldCount
	case "k", "up", "shift+tab":
		m.focus = (m.focus + wedFieldCount - 1) % wedFieldCount
	case "h", "left":
		return m.cycle(-1)
	case "l", "right":
		return m.cycle(1)
	case "enter":
		current, ok := m.loaded()
		if !ok && (m.focus == wedFieldChannel || m.focus == wedFieldRole) {
			return m, nil
		}
		switch m.focus {
		case wedFieldChannel:
			m.input.Placeholder = "Channel ID"
			m.input.SetValue(current.WeddingChannel)
		case wedFieldRole:
			m.input.Placeholder = "Role ID"
			m.input.SetValue(current.WeddingRole)
		default:
			return m.cycle(1)
		}
		m.input.CursorEnd()
		m.editing = true
		cmd := m.input.Focus()
		return m, cmd
	case "s":
		return m, saveSettingsCmd(m.store, m.dir.Selected())
	case "w":
		return m, m.startCeremony()
	case "r":
		return m, refreshSettingsCmd(m.store, m.dir.Selected())
	}
	return m, nil
}

// cycle moves the focused choice by delta.
func (m weddingModel) cycle(delta int) (weddingModel, tea.Cmd) {
	switch m.focus {
	case wedFieldGuild:
		guilds := m.dir.Guilds()
		ids := make([]string, len(guilds))
		for i, g := range guilds {
			ids[i] = g.ID
		}
		next := cycleID(ids, m.dir.Selected(), delta)
		if next == "" || next == m.dir.Selected() {
			return m, nil
		}
		return m.selectGuild(next)
	case wedFieldPartnerA:
		m.partnerA = cycleID(memberIDs(m.dir.Members()), m.partnerA, delta)
	case wedFieldPartnerB:
		m.partnerB = cycleID(memberIDs(m.dir.Members()), m.partnerB, delta)
	case wedFieldLanguage:
		if _, ok := m.loaded(); !ok {
			return m, nil
		}
		langs := make([]string, len(domain.Languages))
		for i, l := range domain.Languages {
			langs[i] = string(l)
		}
		current := string(m.store.Current().EffectiveLanguage())
		if next := cycleID(langs, current, delta); next != "" {
			_ = m.store.SetLanguage(domain.Language(next))
		}
	}
	return m, nil
}

// cycleID returns the id delta steps from current, wrapping around. An
// unknown current starts from the first (or last) id.
func cycleID(ids []string, current string, delta int) string {
	if len(ids) == 0 {
		return ""
	}
	i := slices.Index(ids, current)
	if i < 0 {
		if delta < 0 {
			return ids[len(ids)-1]
		}
		return ids[0]
	}
	n := len(ids)
	return ids[((i+delta)%n+n)%n]
}

func memberIDs(members []domain.Member) []string {
	ids := make([]string, len(members))
	for i, mem := range members {
		ids[i] = mem.ID
	}
	return ids
}

func hasMember(members []domain.Member, id string) bool {
	return slices.ContainsFunc(members, func(mem domain.Member) bool { return mem.ID == id })
}

func (m weddingModel) isEditing() bool {
	return m.editing
}

func (m weddingModel) View() string {
	var b strings.Builder
	selected := m.dir.Selected()

	b.WriteString("\n  " + heartStyle.Render("♥") + " " + sectionHeaderStyle.Render("Wedding Control"))
	if name := m.dir.GuildName(selected); name != "" {
		b.WriteString("  " + dimStyle.Render(name))
	}
	b.WriteString("\n")
	if status := m.statusLine(); status != "" {
		b.WriteString("  " + status + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.field(wedFieldGuild, "Server", m.choice(m.dir.GuildName(selected), "Choose server")))
	if selected == "" {
		b.WriteString("\n  " + dimStyle.Render("Choose a server and press Refresh.") + "\n")
		return b.String()
	}

	members := m.dir.Members()
	b.WriteString(m.field(wedFieldPartnerA, "Partner 1", m.choice(memberLabel(members, m.partnerA), "Select partner 1")))
	b.WriteString(m.field(wedFieldPartnerB, "Partner 2", m.choice(memberLabel(members, m.partnerB), "Select partner 2")))

	current, _ := m.loaded()
	b.WriteString(m.field(wedFieldChannel, "Wedding channel", m.textValue(wedFieldChannel, current.WeddingChannel, "Channel ID")))
	b.WriteString(m.field(wedFieldRole, "Wedding role", m.textValue(wedFieldRole, current.WeddingRole, "Role ID")))
	b.WriteString(m.field(wedFieldLanguage, "Language", m.choice(languageLabels[current.EffectiveLanguage()], "")))

	var marriages []domain.MarriagePair
	if _, ok := m.loaded(); ok {
		marriages = m.store.Marriages()
	}
	b.WriteString("\n  " + sectionHeaderStyle.Render("Married Couples") + metaStyle.Render(fmt.Sprintf("  %d pairs", len(marriages))) + "\n")
	if len(marriages) == 0 {
		b.WriteString("   " + dimStyle.Render("No couples yet.") + "\n")
	}
	for _, p := range marriages {
		b.WriteString("   " + normalStyle.Render(domain.MentionUser(p.PartnerA)) + heartStyle.Render("  ❤  ") + normalStyle.Render(domain.MentionUser(p.PartnerB)) + "\n")
	}

	events := m.buf.Snapshot()
	b.WriteString("\n  " + sectionHeaderStyle.Render("Wedding Live") + metaStyle.Render(fmt.Sprintf("  %d/%d", len(events), m.buf.Cap())) + "\n")
	if len(events) == 0 {
		b.WriteString("   " + dimStyle.Render("No wedding logs yet.") + "\n")
	} else {
		b.WriteString(renderEventList(events, -1, 5, m.width))
	}
	return b.String()
}

func (m weddingModel) statusLine() string {
	var parts []string
	for _, line := range []string{
		renderRequest(m.dir.GuildsState(), m.spin, "Loading guilds…"),
		renderRequest(m.store.LoadState(), m.spin, "Loading..."),
		renderRequest(m.dir.MembersState(), m.spin, "Loading members…"),
		renderRequest(m.store.SaveState(), m.spin, "Saving…"),
		renderRequest(m.cmds.CeremonyState(), m.spin, "Starting..."),
	} {
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "  ")
}

func (m weddingModel) field(f weddingField, label, value string) string {
	marker := "   "
	labelText := dimStyle.Render(fmt.Sprintf("%-16s", label))
	if m.focus == f {
		marker = " " + accentStyle.Render("▸") + " "
		labelText = selectedStyle.Render(fmt.Sprintf("%-16s", label))
	}
	return marker + labelText + " " + value + "\n"
}

func (m weddingModel) choice(value, placeholder string) string {
	if value == "" {
		return metaStyle.Render("◂ ") + inputPlaceholderStyle.Render(placeholder) + metaStyle.Render(" ▸")
	}
	return metaStyle.Render("◂ ") + normalStyle.Render(value) + metaStyle.Render(" ▸")
}

func (m weddingModel) textValue(f weddingField, value, placeholder string) string {
	if m.editing && m.focus == f {
		return m.input.View()
	}
	if value == "" {
		return inputPlaceholderStyle.Render(placeholder)
	}
	return normalStyle.Render(value)
}

func memberLabel(members []domain.Member, id string) string {
	if id == "" {
		return ""
	}
	for _, mem := range members {
		if mem.ID == id {
			return mem.Label()
		}
	}
	return id
}
