package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/nexus/internal/command"
)

func pumpBroadcast(t *testing.T, m broadcastModel, cmd tea.Cmd) broadcastModel {
	t.Helper()
	for _, msg := range runCmd(t, cmd) {
		var c tea.Cmd
		m, c = m.Update(msg)
		m = pumpBroadcast(t, m, c)
	}
	return m
}

func mountedBroadcast(t *testing.T, bot *fakeBot) broadcastModel {
	t.Helper()
	m := newBroadcastModel(newTestDeps(bot, nil))
	m, cmd := m.mount()
	return pumpBroadcast(t, m, cmd)
}

// typeKeys sends keys; input focus commands are not run.
func typeKeys(t *testing.T, m broadcastModel, keys ...string) broadcastModel {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = m.Update(keyMsg(k))
		if !m.isEditing() {
			m = pumpBroadcast(t, m, cmd)
		}
	}
	return m
}

func TestBroadcastChannelPickerFollowsGroups(t *testing.T) {
	bot := newFakeBot()
	m := mountedBroadcast(t, bot)

	// Picker order is grouped: general, vows (Chapel), then lobby (Garden).
	m = typeKeys(t, m, "j", "enter")
	if m.channelID != "c2" {
		t.Fatalf("channel = %q, want c2 (vows)", m.channelID)
	}
	m = typeKeys(t, m, "j", "enter")
	if m.channelID != "c3" {
		t.Fatalf("channel = %q, want c3 (lobby)", m.channelID)
	}

	view := m.View()
	for _, want := range []string{"Chapel", "Garden", "#general", "#vows", "#lobby"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBroadcastComposeAndSend(t *testing.T) {
	bot := newFakeBot()
	m := mountedBroadcast(t, bot)
	m = typeKeys(t, m, "enter") // general

	m = typeKeys(t, m, "e", "tab", " ", "h", "i", "tab", "4", "2", "enter", "tab", "7", "enter")
	if got, want := m.message.Value(), "@everyone hi <@42> <@&7>"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
	if m.userID.Value() != "" || m.roleID.Value() != "" {
		t.Error("id inputs should clear after insertion")
	}

	m = typeKeys(t, m, "esc", "s")
	if len(bot.broadcasts) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(bot.broadcasts))
	}
	got := bot.broadcasts[0]
	if got.ChannelID != "c1" || got.Message != "@everyone hi <@42> <@&7>" {
		t.Errorf("broadcast = %+v", got)
	}
	if msg := m.cmds.BroadcastState().Message; msg != command.MsgBroadcastSent {
		t.Errorf("status = %q, want %q", msg, command.MsgBroadcastSent)
	}
}

func TestBroadcastBlankMentionIgnored(t *testing.T) {
	bot := newFakeBot()
	m := mountedBroadcast(t, bot)

	m = typeKeys(t, m, "tab", "tab", " ", "enter")
	if got := m.message.Value(); got != "" {
		t.Errorf("message = %q, want empty", got)
	}
}

func TestBroadcastValidation(t *testing.T) {
	bot := newFakeBot()
	m := mountedBroadcast(t, bot)

	m = typeKeys(t, m, "s")
	if msg := m.cmds.BroadcastState().Message; msg != command.MsgNoChannel {
		t.Errorf("status = %q, want %q", msg, command.MsgNoChannel)
	}

	m = typeKeys(t, m, "enter", "s")
	if msg := m.cmds.BroadcastState().Message; msg != command.MsgNoMessage {
		t.Errorf("status = %q, want %q", msg, command.MsgNoMessage)
	}
	if len(bot.broadcasts) != 0 {
		t.Errorf("broadcasts = %d, want 0", len(bot.broadcasts))
	}
}

func TestBroadcastManualRefresh(t *testing.T) {
	bot := newFakeBot()
	m := mountedBroadcast(t, bot)
	if m.notice != "" {
		t.Fatalf("notice after mount = %q, want empty", m.notice)
	}

	m = typeKeys(t, m, "r")
	if m.notice != msgChannelsSynced {
		t.Errorf("notice = %q, want %q", m.notice, msgChannelsSynced)
	}
}

func TestBroadcastEditingCapturesKeys(t *testing.T) {
	bot := newFakeBot()
	m := mountedBroadcast(t, bot)

	m = typeKeys(t, m, "i", "s", "r")
	if got := m.message.Value(); got != "sr" {
		t.Errorf("message = %q, want typed text", got)
	}
	if len(bot.broadcasts) != 0 {
		t.Error("typing s in the composer must not send")
	}
	if !strings.Contains(m.View(), "sr") {
		t.Error("preview missing message")
	}
}
