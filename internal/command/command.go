// Package command runs the console's remote actions: validate locally, send
// one request, and record exactly one terminal status.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/naveenspark/nexus/internal/request"
	"github.com/naveenspark/nexus/pkg/client"
)

// Operator-facing messages.
const (
	MsgNoChannel       = "Choose a channel first."
	MsgNoMessage       = "Type a message first."
	MsgBroadcastSent     = "Broadcast sent."
	MsgBroadcastRejected = "Broadcast failed"
	MsgBroadcastFailed   = "Failed to send broadcast"

	MsgCeremonyIncomplete = "Select server, both partners, and wedding channel."
	MsgCeremonyRequested  = "Wedding start requested."
	MsgCeremonyRejected   = "Failed to start wedding"
	MsgCeremonyFailed     = "Failed to start wedding."

	MsgReloaded     = "Commands synced!"
	MsgReloadFailed = "Failed to sync commands."
)

// API is the subset of the bot client the commands need.
type API interface {
	SendBroadcast(ctx context.Context, req client.BroadcastRequest) error
	StartCeremony(ctx context.Context, req client.StartCeremonyRequest) error
	Reload(ctx context.Context) error
}

// CeremonyRequest describes a wedding to start. ChannelID is the guild's
// configured wedding channel; RoleID may be empty.
type CeremonyRequest struct {
	GuildID   string
	PartnerA  string
	PartnerB  string
	ChannelID string
	RoleID    string
}

// Commands owns the request state of each action.
type Commands struct {
	api API
	log *slog.Logger

	broadcast request.Tracker
	ceremony  request.Tracker
	reload    request.Tracker
}

func New(api API, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Commands{api: api, log: logger.With("component", "command")}
}

// SendBroadcast posts message to channelID. Concurrent sends are allowed
// and the last one to resolve sets the status.
func (c *Commands) SendBroadcast(ctx context.Context, channelID, message string) error {
	switch {
	case strings.TrimSpace(channelID) == "":
		return c.reject(&c.broadcast, MsgNoChannel)
	case strings.TrimSpace(message) == "":
		return c.reject(&c.broadcast, MsgNoMessage)
	}

	c.broadcast.Begin()
	err := c.api.SendBroadcast(ctx, client.BroadcastRequest{ChannelID: channelID, Message: message})
	if err != nil {
		c.log.Warn("broadcast failed", "channel", channelID, "error", err)
		c.broadcast.Fail(failure(err, MsgBroadcastRejected, MsgBroadcastFailed))
		return fmt.Errorf("command.SendBroadcast: %w", err)
	}
	c.broadcast.Succeed(MsgBroadcastSent)
	c.log.Info("broadcast sent", "channel", channelID, "length", len(message))
	return nil
}

// StartCeremony asks the bot to run the wedding described by req.
func (c *Commands) StartCeremony(ctx context.Context, req CeremonyRequest) error {
	if req.GuildID == "" || req.PartnerA == "" || req.PartnerB == "" || req.ChannelID == "" {
		return c.reject(&c.ceremony, MsgCeremonyIncomplete)
	}

	c.ceremony.Begin()
	err := c.api.StartCeremony(ctx, client.StartCeremonyRequest{
		GuildID:    req.GuildID,
		Partner1ID: req.PartnerA,
		Partner2ID: req.PartnerB,
		ChannelID:  req.ChannelID,
		RoleID:     req.RoleID,
	})
	if err != nil {
		c.log.Warn("ceremony start failed", "guild", req.GuildID, "error", err)
		c.ceremony.Fail(failure(err, MsgCeremonyRejected, MsgCeremonyFailed))
		return fmt.Errorf("command.StartCeremony: %w", err)
	}
	c.ceremony.Succeed(MsgCeremonyRequested)
	c.log.Info("ceremony requested", "guild", req.GuildID, "channel", req.ChannelID)
	return nil
}

// ReloadCommands asks the bot to re-register its slash commands.
func (c *Commands) ReloadCommands(ctx context.Context) error {
	c.reload.Begin()
	if err := c.api.Reload(ctx); err != nil {
		c.log.Warn("reload failed", "error", err)
		c.reload.Fail(MsgReloadFailed)
		return fmt.Errorf("command.ReloadCommands: %w", err)
	}
	c.reload.Succeed(MsgReloaded)
	c.log.Info("commands reloaded")
	return nil
}

// failure picks the status text for a failed send: the service's own reason
// when it gave one, rejected when it answered ok=false without one, and
// transport when the request never got a usable answer.
func failure(err error, rejected, transport string) string {
	if client.IsRejected(err) {
		return client.Message(err, rejected)
	}
	return transport
}

func (c *Commands) reject(t *request.Tracker, msg string) error {
	verr := &request.ValidationError{Message: msg}
	t.Reject(verr)
	return verr
}

func (c *Commands) BroadcastState() request.State { return c.broadcast.State() }
func (c *Commands) CeremonyState() request.State  { return c.ceremony.State() }
func (c *Commands) ReloadState() request.State    { return c.reload.State() }
