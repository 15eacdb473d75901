// Package directory caches the guild, channel and member lists the console
// browses. Loads are fail-soft: an error leaves the previous list in place
// and surfaces a message through the load's request state.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/naveenspark/nexus/internal/request"
	"github.com/naveenspark/nexus/pkg/client"
	"github.com/naveenspark/nexus/pkg/domain"
)

// Operator-facing fallback messages.
const (
	MsgGuildsFailed   = "Failed to load guilds."
	MsgChannelsFailed = "Failed to load channels"
	MsgMembersFailed  = "Failed to load members."
	MsgNoGuild        = "Choose a server first."
)

// ErrSuperseded is returned by LoadMembers when the guild selection changed
// (or a newer load started) while the request was in flight. The response
// is discarded.
var ErrSuperseded = errors.New("directory: member load superseded")

// API is the subset of the bot client the directory needs.
type API interface {
	ListGuilds(ctx context.Context) ([]domain.Guild, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	ListMembers(ctx context.Context, guildID string) ([]domain.Member, error)
}

// Directory is safe for concurrent use.
type Directory struct {
	api API
	log *slog.Logger

	guildsReq   request.Tracker
	channelsReq request.Tracker
	membersReq  request.Tracker

	mu        sync.RWMutex
	guilds    []domain.Guild
	channels  []domain.Channel
	members   []domain.Member
	selected  string
	memberGen uint64
}

// New returns an empty directory backed by api.
func New(api API, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Directory{api: api, log: logger.With("component", "directory")}
}

// LoadGuilds replaces the cached guild list.
func (d *Directory) LoadGuilds(ctx context.Context) error {
	d.guildsReq.Begin()
	guilds, err := d.api.ListGuilds(ctx)
	if err != nil {
		d.log.Warn("load guilds failed", "error", err)
		d.guildsReq.Fail(client.Message(err, MsgGuildsFailed))
		return fmt.Errorf("directory.LoadGuilds: %w", err)
	}

	d.mu.Lock()
	d.guilds = guilds
	d.mu.Unlock()
	d.guildsReq.Succeed("")
	d.log.Debug("guilds loaded", "count", len(guilds))
	return nil
}

// LoadChannels replaces the cached broadcast channel list.
func (d *Directory) LoadChannels(ctx context.Context) error {
	d.channelsReq.Begin()
	channels, err := d.api.ListChannels(ctx)
	if err != nil {
		d.log.Warn("load channels failed", "error", err)
		d.channelsReq.Fail(client.Message(err, MsgChannelsFailed))
		return fmt.Errorf("directory.LoadChannels: %w", err)
	}

	d.mu.Lock()
	d.channels = channels
	d.mu.Unlock()
	d.channelsReq.Succeed("")
	d.log.Debug("channels loaded", "count", len(channels))
	return nil
}

// SelectGuild makes id the current guild and drops the member list. Any
// member load still in flight becomes stale.
func (d *Directory) SelectGuild(id string) {
	d.mu.Lock()
	d.selected = id
	d.members = nil
	d.memberGen++
	d.mu.Unlock()
	d.membersReq.Reset()
}

// Selected returns the current guild id, or "".
func (d *Directory) Selected() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected
}

// LoadMembers fetches the members of guildID, selecting it first if
// needed. The result is applied only if no newer selection or load has
// happened since; otherwise ErrSuperseded is returned.
func (d *Directory) LoadMembers(ctx context.Context, guildID string) error {
	if guildID == "" {
		verr := &request.ValidationError{Message: MsgNoGuild}
		d.membersReq.Reject(verr)
		return verr
	}

	d.mu.Lock()
	if d.selected != guildID {
		d.selected = guildID
		d.members = nil
	}
	d.memberGen++
	gen := d.memberGen
	d.mu.Unlock()

	seq := d.membersReq.Begin()
	members, err := d.api.ListMembers(ctx, guildID)

	d.mu.Lock()
	stale := gen != d.memberGen
	if !stale && err == nil {
		d.members = members
	}
	d.mu.Unlock()

	if stale {
		d.log.Debug("discarding stale member list", "guild", guildID)
		return ErrSuperseded
	}
	if err != nil {
		d.log.Warn("load members failed", "guild", guildID, "error", err)
		if d.membersReq.Latest(seq) {
			d.membersReq.Fail(client.Message(err, MsgMembersFailed))
		}
		return fmt.Errorf("directory.LoadMembers: %w", err)
	}
	if d.membersReq.Latest(seq) {
		d.membersReq.Succeed("")
	}
	d.log.Debug("members loaded", "guild", guildID, "count", len(members))
	return nil
}

// Guilds returns a copy of the cached guild list.
func (d *Directory) Guilds() []domain.Guild {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.guilds)
}

// GuildName resolves a cached guild's display name; unknown ids map to "".
func (d *Directory) GuildName(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if g, ok := domain.FindGuild(d.guilds, id); ok {
		return g.Name
	}
	return ""
}

// Channels returns a copy of the cached channel list.
func (d *Directory) Channels() []domain.Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.channels)
}

// Groups projects the cached channels by guild.
func (d *Directory) Groups() []domain.ChannelGroup {
	return domain.GroupChannels(d.Channels())
}

// Members returns a copy of the member list for the selected guild.
func (d *Directory) Members() []domain.Member {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.members)
}

func (d *Directory) GuildsState() request.State   { return d.guildsReq.State() }
func (d *Directory) ChannelsState() request.State { return d.channelsReq.State() }
func (d *Directory) MembersState() request.State  { return d.membersReq.State() }
