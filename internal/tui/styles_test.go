package tui

import (
	"strings"
	"testing"

	"github.com/naveenspark/nexus/internal/relay"
	"github.com/naveenspark/nexus/internal/request"
)

func TestRelayBadge(t *testing.T) {
	tests := []struct {
		state relay.State
		want  string
	}{
		{relay.Connected, "WS: CONNECTED"},
		{relay.Connecting, "WS: CONNECTING"},
		{relay.Idle, "WS: IDLE"},
	}
	for _, tc := range tests {
		t.Run(tc.state.String(), func(t *testing.T) {
			if got := relayBadge(tc.state); !strings.Contains(got, tc.want) {
				t.Errorf("relayBadge(%v) = %q, want to contain %q", tc.state, got, tc.want)
			}
		})
	}
}

func TestRenderRequest(t *testing.T) {
	tests := []struct {
		name  string
		state request.State
		want  string
	}{
		{"idle", request.State{}, ""},
		{"loading", request.State{Phase: request.Loading}, "Saving…"},
		{"silent success", request.State{Phase: request.Success}, ""},
		{"success", request.State{Phase: request.Success, Message: "Settings saved."}, "Settings saved."},
		{"error", request.State{Phase: request.Error, Message: "Failed to save settings."}, "Failed to save settings."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := renderRequest(tc.state, "*", "Saving…")
			if tc.want == "" {
				if got != "" {
					t.Errorf("renderRequest = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tc.want) {
				t.Errorf("renderRequest = %q, want to contain %q", got, tc.want)
			}
		})
	}
}

func TestHighlightMentionsKeepsText(t *testing.T) {
	in := "@everyone hi <@42> and <@&7>"
	if got := highlightMentions(in); !strings.Contains(got, "hi") || !strings.Contains(got, "<@42>") || !strings.Contains(got, "<@&7>") {
		t.Errorf("highlightMentions(%q) = %q", in, got)
	}
	if got := mentionRe.FindAllString(in, -1); len(got) != 3 {
		t.Errorf("tokens = %q, want 3", got)
	}
}

func TestShimmerLogoFrames(t *testing.T) {
	for frame := 0; frame < 40; frame += 7 {
		if got := renderShimmerLogo(frame); !strings.Contains(got, "N") {
			t.Errorf("frame %d rendered %q", frame, got)
		}
	}
}
