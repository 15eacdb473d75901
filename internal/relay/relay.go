// Package relay keeps a socket.io push channel open to the bot backend and
// fans its dashboard:log events out to subscribers.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/naveenspark/nexus/pkg/domain"
)

const (
	// Role is the identity announced after every connect.
	Role = "dashboard"

	eventIdentify = "identify"
	eventLog      = "dashboard:log"

	maxFrameSize = 1 << 20
	writeWait    = 10 * time.Second
)

// State is the connection status of a relay.
type State int32

const (
	Idle State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "idle"
	}
}

var (
	errServerClosed = errors.New("server closed the connection")
	errDisconnected = errors.New("namespace disconnected")
)

// Options configures a Relay. Only URL is required.
type Options struct {
	URL    string
	Logger *slog.Logger
	Dialer *websocket.Dialer
	// NewBackOff builds the reconnect policy for each connection loop.
	NewBackOff func() backoff.BackOff
}

// DefaultBackOff mirrors the socket.io client reconnection defaults.
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 5 * time.Second
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

type subscriber struct {
	id uuid.UUID
	fn func(domain.LiveEvent)
}

// Relay is one logical push-channel connection. The connection loop runs
// only while at least one subscriber is registered.
type Relay struct {
	url        string
	log        *slog.Logger
	dialer     *websocket.Dialer
	newBackOff func() backoff.BackOff

	state atomic.Int32

	mu     sync.Mutex
	subs   []subscriber
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an idle relay for opts.URL.
func New(opts Options) *Relay {
	r := &Relay{
		url:        opts.URL,
		log:        opts.Logger,
		dialer:     opts.Dialer,
		newBackOff: opts.NewBackOff,
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	r.log = r.log.With("component", "relay", "url", opts.URL)
	if r.dialer == nil {
		r.dialer = websocket.DefaultDialer
	}
	if r.newBackOff == nil {
		r.newBackOff = DefaultBackOff
	}
	return r
}

// URL returns the websocket endpoint.
func (r *Relay) URL() string { return r.url }

// State reports the current connection status.
func (r *Relay) State() State { return State(r.state.Load()) }

func (r *Relay) setState(s State) { r.state.Store(int32(s)) }

func (r *Relay) subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Subscribe registers onEvent for every dashboard:log event and starts the
// connection loop if this is the first subscriber. The returned function
// unsubscribes; calling it more than once is a no-op.
func (r *Relay) Subscribe(onEvent func(domain.LiveEvent)) (unsubscribe func()) {
	id := uuid.New()

	r.mu.Lock()
	r.subs = append(r.subs, subscriber{id: id, fn: onEvent})
	if r.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		r.cancel, r.done = cancel, done
		go r.run(ctx, done)
	}
	r.mu.Unlock()
	r.log.Debug("subscriber added", "subscriber", id)

	var once sync.Once
	return func() {
		once.Do(func() { r.unsubscribe(id) })
	}
}

func (r *Relay) unsubscribe(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = slices.DeleteFunc(r.subs, func(s subscriber) bool { return s.id == id })
	r.log.Debug("subscriber removed", "subscriber", id, "remaining", len(r.subs))
	if len(r.subs) == 0 && r.cancel != nil {
		r.cancel()
		r.cancel, r.done = nil, nil
	}
}

// Close drops every subscriber and waits for the connection loop to exit.
func (r *Relay) Close() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.subs = nil
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (r *Relay) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		// A fresh loop may already own the state.
		r.mu.Lock()
		if r.done == nil {
			r.setState(Idle)
		}
		r.mu.Unlock()
	}()

	b := r.newBackOff()
	for {
		r.setState(Connecting)
		err := r.session(ctx, b)
		if ctx.Err() != nil {
			r.log.Debug("connection loop stopped")
			return
		}
		r.setState(Connecting)

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			r.log.Error("giving up reconnecting", "error", err)
			r.mu.Lock()
			if r.done == done {
				r.cancel()
				r.cancel, r.done = nil, nil
			}
			r.mu.Unlock()
			return
		}
		r.log.Warn("relay disconnected", "error", err, "retry_in", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// session runs one websocket connection until it drops or ctx ends.
func (r *Relay) session(ctx context.Context, b backoff.BackOff) error {
	conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(defaultPingDeadline))

	hs := handshake{}
	identified := false
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		p, err := decodePacket(frame)
		if err != nil {
			continue
		}

		switch p.kind {
		case engineOpen:
			if err := json.Unmarshal([]byte(p.data), &hs); err != nil {
				return fmt.Errorf("handshake: %w", err)
			}
			conn.SetReadDeadline(time.Now().Add(hs.deadline()))
			if err := write(conn, connectFrame()); err != nil {
				return fmt.Errorf("connect: %w", err)
			}

		case enginePing:
			conn.SetReadDeadline(time.Now().Add(hs.deadline()))
			if err := write(conn, []byte{enginePong}); err != nil {
				return fmt.Errorf("pong: %w", err)
			}

		case engineClose:
			return errServerClosed

		case engineMessage:
			if p.data == "" {
				continue
			}
			switch p.data[0] {
			case socketConnect:
				if identified {
					continue
				}
				frame, err := eventFrame(eventIdentify, Role)
				if err != nil {
					return err
				}
				if err := write(conn, frame); err != nil {
					return fmt.Errorf("identify: %w", err)
				}
				identified = true
				b.Reset()
				r.setState(Connected)
				r.log.Info("relay connected", "sid", hs.SID)

			case socketConnectError:
				return fmt.Errorf("connect refused: %s", p.data[1:])

			case socketDisconnect:
				return errDisconnected

			case socketEvent:
				r.handleEvent(ctx, p.data[1:])
			}

		case engineNoop, enginePong:
		default:
			r.log.Debug("unknown packet", "type", string(p.kind))
		}
	}
}

func (r *Relay) handleEvent(ctx context.Context, payload string) {
	name, args, err := parseEvent(payload)
	if err != nil {
		r.log.Warn("malformed event", "error", err)
		return
	}
	if name != eventLog || len(args) == 0 {
		return
	}
	var ev domain.LiveEvent
	if err := json.Unmarshal(args[0], &ev); err != nil {
		r.log.Warn("malformed live event", "error", err)
		return
	}
	r.dispatch(ctx, ev)
}

func (r *Relay) dispatch(ctx context.Context, ev domain.LiveEvent) {
	r.mu.Lock()
	subs := slices.Clone(r.subs)
	r.mu.Unlock()

	for _, s := range subs {
		if ctx.Err() != nil {
			return
		}
		r.deliver(s, ev)
	}
}

func (r *Relay) deliver(s subscriber, ev domain.LiveEvent) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("subscriber panicked", "subscriber", s.id, "panic", p)
		}
	}()
	s.fn(ev)
}

func write(conn *websocket.Conn, frame []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, frame)
}
