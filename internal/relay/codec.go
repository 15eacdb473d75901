package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine.IO v4 packet types (first byte of every websocket frame).
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
	engineNoop    = '6'
)

// Socket.IO v5 packet types (first byte of an Engine.IO message payload).
const (
	socketConnect      = '0'
	socketDisconnect   = '1'
	socketEvent        = '2'
	socketAck          = '3'
	socketConnectError = '4'
)

var errEmptyPacket = errors.New("empty packet")

// handshake is the Engine.IO open packet payload.
type handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"` // milliseconds
	PingTimeout  int    `json:"pingTimeout"`  // milliseconds
}

// deadline is how long the client waits for the next server ping.
func (h handshake) deadline() time.Duration {
	d := time.Duration(h.PingInterval+h.PingTimeout) * time.Millisecond
	if d <= 0 {
		return defaultPingDeadline
	}
	return d
}

const defaultPingDeadline = 45 * time.Second

// packet is a decoded Engine.IO frame.
type packet struct {
	kind byte
	data string
}

func decodePacket(frame []byte) (packet, error) {
	if len(frame) == 0 {
		return packet{}, errEmptyPacket
	}
	return packet{kind: frame[0], data: string(frame[1:])}, nil
}

// connectFrame joins the default namespace.
func connectFrame() []byte {
	return []byte{engineMessage, socketConnect}
}

// eventFrame encodes a Socket.IO event on the default namespace,
// e.g. 42["identify","dashboard"].
func eventFrame(name string, args ...any) ([]byte, error) {
	list := make([]any, 0, len(args)+1)
	list = append(list, name)
	list = append(list, args...)
	body, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", name, err)
	}
	return append([]byte{engineMessage, socketEvent}, body...), nil
}

// parseEvent decodes the payload of a Socket.IO EVENT packet (the bytes
// after the packet type). A namespace prefix ("/admin,") and an ack id
// are skipped.
func parseEvent(payload string) (name string, args []json.RawMessage, err error) {
	if strings.HasPrefix(payload, "/") {
		i := strings.IndexByte(payload, ',')
		if i < 0 {
			return "", nil, fmt.Errorf("event: malformed namespace in %q", payload)
		}
		payload = payload[i+1:]
	}
	payload = strings.TrimLeft(payload, "0123456789")

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return "", nil, fmt.Errorf("event: %w", err)
	}
	if len(raw) == 0 {
		return "", nil, errors.New("event: empty argument list")
	}
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return "", nil, fmt.Errorf("event name: %w", err)
	}
	return name, raw[1:], nil
}
