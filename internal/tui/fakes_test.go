package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/naveenspark/nexus/internal/command"
	"github.com/naveenspark/nexus/internal/directory"
	"github.com/naveenspark/nexus/internal/logging"
	"github.com/naveenspark/nexus/internal/relay"
	"github.com/naveenspark/nexus/internal/settings"
	"github.com/naveenspark/nexus/pkg/client"
	"github.com/naveenspark/nexus/pkg/domain"
)

// fakeBot is an in-memory bot backend implementing every component API.
type fakeBot struct {
	mu         sync.Mutex
	guilds     []domain.Guild
	channels   []domain.Channel
	members    map[string][]domain.Member
	settings   map[string]domain.GuildSettings
	marriages  map[string][]domain.MarriagePair
	stats      domain.Stats
	broadcasts []client.BroadcastRequest
	ceremonies []client.StartCeremonyRequest
	reloads    int
	statsCalls int

	settingsErr map[string]error
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		guilds: []domain.Guild{
			{ID: "175928847299117063", Name: "Chapel"},
			{ID: "275928847299117063", Name: "Garden"},
		},
		channels: []domain.Channel{
			{ID: "c1", Name: "general", GuildID: "175928847299117063", GuildName: "Chapel"},
			{ID: "c3", Name: "lobby", GuildID: "275928847299117063", GuildName: "Garden"},
			{ID: "c2", Name: "vows", GuildID: "175928847299117063", GuildName: "Chapel"},
		},
		members: map[string][]domain.Member{
			"175928847299117063": {
				{ID: "u1", Username: "alice", Tag: "alice#0001"},
				{ID: "u2", Username: "bob", Tag: "bob#0002"},
			},
			"275928847299117063": {
				{ID: "u3", Username: "carol", Tag: "carol#0003"},
			},
		},
		settings: map[string]domain.GuildSettings{
			"175928847299117063": {WeddingChannel: "c2", WeddingRole: "r1", Language: domain.LanguageEnglish},
		},
		marriages: map[string][]domain.MarriagePair{
			"175928847299117063": {{PartnerA: "u8", PartnerB: "u9"}},
		},
		stats: domain.Stats{"marriages": []byte("12"), "uptime": []byte(`"3h"`)},
	}
}

func (f *fakeBot) ListGuilds(context.Context) ([]domain.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Guild(nil), f.guilds...), nil
}

func (f *fakeBot) ListChannels(context.Context) ([]domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Channel(nil), f.channels...), nil
}

func (f *fakeBot) ListMembers(_ context.Context, guildID string) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Member(nil), f.members[guildID]...), nil
}

func (f *fakeBot) GetSettings(_ context.Context, guildID string) (domain.GuildSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.settingsErr[guildID]; err != nil {
		return domain.GuildSettings{}, err
	}
	return f.settings[guildID], nil
}

func (f *fakeBot) SaveSettings(_ context.Context, guildID string, s domain.GuildSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[guildID] = s
	return nil
}

func (f *fakeBot) ListMarriages(_ context.Context, guildID string) ([]domain.MarriagePair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.MarriagePair(nil), f.marriages[guildID]...), nil
}

func (f *fakeBot) SendBroadcast(_ context.Context, req client.BroadcastRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, req)
	return nil
}

func (f *fakeBot) StartCeremony(_ context.Context, req client.StartCeremonyRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ceremonies = append(f.ceremonies, req)
	return nil
}

func (f *fakeBot) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeBot) Stats(context.Context) (domain.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	return f.stats, nil
}

// fakeEvents is an EventSource driven by the test.
type fakeEvents struct {
	mu    sync.Mutex
	subs  map[uuid.UUID]func(domain.LiveEvent)
	state relay.State
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{subs: make(map[uuid.UUID]func(domain.LiveEvent)), state: relay.Connected}
}

func (e *fakeEvents) Subscribe(fn func(domain.LiveEvent)) func() {
	id := uuid.New()
	e.mu.Lock()
	e.subs[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

func (e *fakeEvents) State() relay.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *fakeEvents) subscribers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

func (e *fakeEvents) emit(ev domain.LiveEvent) {
	e.mu.Lock()
	subs := make([]func(domain.LiveEvent), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// newTestDeps wires real components to the fake backend. events may be nil.
func newTestDeps(bot *fakeBot, events EventSource) Deps {
	return Deps{
		Stats:     bot,
		Directory: directory.New(bot, nil),
		Settings:  settings.New(bot, nil),
		Commands:  command.New(bot, nil),
		Events:    events,
		Status:    logging.NewStatusHandler(0),
		Options:   Options{Version: "test", APIURL: "http://localhost:3001"},
	}
}

// runCmd executes cmd, flattening batches, and returns the non-nil
// messages. It must not be given commands that block on timers or events.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
