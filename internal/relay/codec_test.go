package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFrame(t *testing.T) {
	frame, err := eventFrame("identify", "dashboard")
	require.NoError(t, err)
	assert.Equal(t, `42["identify","dashboard"]`, string(frame))
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantName string
		wantArgs int
	}{
		{"plain", `["dashboard:log",{"content":"hi"}]`, "dashboard:log", 1},
		{"with ack id", `12["dashboard:log",{"content":"hi"}]`, "dashboard:log", 1},
		{"namespaced", `/admin,["stats",1,2]`, "stats", 2},
		{"no args", `["ping"]`, "ping", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, err := parseEvent(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestParseEventErrors(t *testing.T) {
	for _, payload := range []string{``, `[]`, `{"a":1}`, `[42]`, `/admin["x"]`} {
		_, _, err := parseEvent(payload)
		assert.Error(t, err, "payload %q", payload)
	}
}

func TestDecodePacket(t *testing.T) {
	p, err := decodePacket([]byte(`0{"sid":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, byte(engineOpen), p.kind)
	assert.Equal(t, `{"sid":"abc"}`, p.data)

	_, err = decodePacket(nil)
	assert.ErrorIs(t, err, errEmptyPacket)
}

func TestHandshakeDeadline(t *testing.T) {
	assert.Equal(t, 45*time.Second, handshake{PingInterval: 25000, PingTimeout: 20000}.deadline())
	assert.Equal(t, defaultPingDeadline, handshake{}.deadline())
}
