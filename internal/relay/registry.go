package relay

import (
	"log/slog"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// Registry hands out one Relay per endpoint URL.
type Registry struct {
	log        *slog.Logger
	dialer     *websocket.Dialer
	newBackOff func() backoff.BackOff

	mu     sync.Mutex
	relays map[string]*Relay
}

// NewRegistry returns an empty registry. Relays it creates share opts
// except for the URL.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		log:        opts.Logger,
		dialer:     opts.Dialer,
		newBackOff: opts.NewBackOff,
		relays:     make(map[string]*Relay),
	}
}

// Relay returns the relay for url, creating it on first use. The relay
// does not connect until something subscribes.
func (g *Registry) Relay(url string) *Relay {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.relays[url]; ok {
		return r
	}
	r := New(Options{URL: url, Logger: g.log, Dialer: g.dialer, NewBackOff: g.newBackOff})
	g.relays[url] = r
	return r
}

// Close tears down every relay.
func (g *Registry) Close() {
	g.mu.Lock()
	relays := make([]*Relay, 0, len(g.relays))
	for _, r := range g.relays {
		relays = append(relays, r)
	}
	g.relays = make(map[string]*Relay)
	g.mu.Unlock()

	for _, r := range relays {
		r.Close()
	}
}
