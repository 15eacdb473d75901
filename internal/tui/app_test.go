package tui

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T) (App, *fakeBot, *fakeEvents) {
	t.Helper()
	bot := newFakeBot()
	events := newFakeEvents()
	a := NewApp(newTestDeps(bot, events))
	a.width = 100
	a.height = 40
	return a, bot, events
}

func update(a App, msg tea.Msg) (App, tea.Cmd) {
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"1", viewDashboard},
		{"2", viewLive},
		{"3", viewWedding},
		{"4", viewBroadcast},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			a, _, _ := newTestApp(t)
			a, _ = update(a, keyMsg(tc.key))
			if a.view != tc.wantView {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.wantView, a.view)
			}
		})
	}
}

func TestAppLogSurfacesAttachOnlyWhileMounted(t *testing.T) {
	a, _, events := newTestApp(t)
	if events.subscribers() != 0 {
		t.Fatalf("dashboard should not subscribe, got %d", events.subscribers())
	}

	a, _ = update(a, keyMsg("2"))
	if events.subscribers() != 1 {
		t.Fatalf("live tab: subscribers = %d, want 1", events.subscribers())
	}
	a, _ = update(a, keyMsg("3"))
	if events.subscribers() != 1 {
		t.Fatalf("wedding tab: subscribers = %d, want 1", events.subscribers())
	}
	a, _ = update(a, keyMsg("1"))
	if events.subscribers() != 0 {
		t.Fatalf("dashboard: subscribers = %d, want 0", events.subscribers())
	}
	if !a.dashboard.mounted || a.wedding.mounted {
		t.Error("mount flags out of sync with the active tab")
	}
}

func TestAppQuitDetaches(t *testing.T) {
	a, _, events := newTestApp(t)
	a, _ = update(a, keyMsg("2"))

	_, cmd := update(a, keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if events.subscribers() != 0 {
		t.Errorf("subscribers = %d after quit, want 0", events.subscribers())
	}
}

func TestAppEditingCapturesGlobalKeys(t *testing.T) {
	a, _, _ := newTestApp(t)
	a, _ = update(a, keyMsg("4"))
	a, _ = update(a, keyMsg("i"))
	a, _ = update(a, keyMsg("1"))
	a, _ = update(a, keyMsg("q"))

	if a.view != viewBroadcast {
		t.Fatalf("view = %d, want broadcast while composing", a.view)
	}
	if got := a.broadcast.message.Value(); got != "1q" {
		t.Errorf("message = %q, want %q", got, "1q")
	}

	_, cmd := update(a, keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should quit while editing")
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a, _, _ := newTestApp(t)
	a, _ = update(a, keyMsg("h"))
	if !a.helpOpen {
		t.Fatal("expected help open")
	}
	if !strings.Contains(a.View(), "N E X U S") {
		t.Error("help view missing title")
	}

	a, _ = update(a, keyMsg("2"))
	if a.view != viewDashboard {
		t.Error("help should capture tab keys")
	}
	a, _ = update(a, keyMsg("esc"))
	if a.helpOpen {
		t.Error("expected help closed after esc")
	}
}

func TestAppWeddingKeepsChoiceKeys(t *testing.T) {
	a, _, _ := newTestApp(t)
	a, _ = update(a, keyMsg("3"))
	if err := a.wedding.dir.LoadGuilds(context.Background()); err != nil {
		t.Fatal(err)
	}

	a, _ = update(a, keyMsg("h"))
	if a.helpOpen {
		t.Fatal("h opened help on the wedding tab")
	}
	if got := a.wedding.dir.Selected(); got != gardenID {
		t.Errorf("selected = %q, want %q after h", got, gardenID)
	}

	a, _ = update(a, keyMsg("?"))
	if !a.helpOpen {
		t.Error("? should open help on the wedding tab")
	}
	a, _ = update(a, keyMsg("?"))
	if a.helpOpen {
		t.Error("? should close help")
	}
}

func TestAppStatusLine(t *testing.T) {
	a, _, _ := newTestApp(t)
	slog.New(a.status).Warn("relay dial failed", "error", errTest)

	if !strings.Contains(a.View(), "relay dial failed (boom)") {
		t.Fatal("view missing status line")
	}
	a, _ = update(a, keyMsg("x"))
	if strings.Contains(a.View(), "relay dial failed") {
		t.Error("status line should clear on x")
	}
}

func TestAppHeader(t *testing.T) {
	a, _, _ := newTestApp(t)
	view := a.View()
	for _, want := range []string{"WS: CONNECTED", "http://localhost:3001", "Dashboard", "Live Log", "Wedding", "Broadcast"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppRoutesResultsToAllSurfaces(t *testing.T) {
	a, _, _ := newTestApp(t)
	a, _ = update(a, keyMsg("4"))
	a, _ = update(a, keyMsg("1"))

	// Results arriving after a tab switch still reach their surface.
	a, _ = update(a, channelsLoadedMsg{manual: true})
	if a.broadcast.notice != msgChannelsSynced {
		t.Errorf("broadcast notice = %q", a.broadcast.notice)
	}
}
