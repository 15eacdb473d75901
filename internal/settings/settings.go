// Package settings holds the wedding configuration and marriage list of the
// guild being edited.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/nexus/internal/request"
	"github.com/naveenspark/nexus/pkg/client"
	"github.com/naveenspark/nexus/pkg/domain"
)

// Operator-facing messages.
const (
	MsgLoaded      = "Loaded wedding settings and marriages."
	MsgLoadFailed  = "Failed to load data."
	MsgNoGuild     = "Choose a server first."
	MsgNotLoaded   = "Settings for this server are not loaded yet."
	MsgSaved       = "Settings saved."
	MsgSaveFailed  = "Failed to save settings."
	MsgBadLanguage = "Unsupported language."
)

// ErrSuperseded is returned by Refresh when a newer refresh started while
// it was in flight. Its results are discarded.
var ErrSuperseded = errors.New("settings: refresh superseded")

// API is the subset of the bot client the store needs.
type API interface {
	GetSettings(ctx context.Context, guildID string) (domain.GuildSettings, error)
	SaveSettings(ctx context.Context, guildID string, s domain.GuildSettings) error
	ListMarriages(ctx context.Context, guildID string) ([]domain.MarriagePair, error)
}

// Store is the local source of truth for one guild's settings. Edits mutate
// it directly; Save pushes the whole object. The settings are always bound to
// the guild they were loaded from.
type Store struct {
	api API
	log *slog.Logger

	loadReq request.Tracker
	saveReq request.Tracker

	mu        sync.RWMutex
	guildID   string
	settings  domain.GuildSettings
	marriages []domain.MarriagePair
	gen       uint64
}

// New returns an empty store.
func New(api API, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{api: api, log: logger.With("component", "settings")}
}

// Refresh loads settings and marriages for guildID concurrently and applies
// both together. The store only moves to guildID once both loads succeed; on
// any failure the previous values stay in place, still bound to their guild.
func (s *Store) Refresh(ctx context.Context, guildID string) error {
	if guildID == "" {
		verr := &request.ValidationError{Message: MsgNoGuild}
		s.loadReq.Reject(verr)
		return verr
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	seq := s.loadReq.Begin()

	var (
		loaded    domain.GuildSettings
		marriages []domain.MarriagePair
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loaded, err = s.api.GetSettings(gctx, guildID)
		return err
	})
	g.Go(func() error {
		var err error
		marriages, err = s.api.ListMarriages(gctx, guildID)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	stale := gen != s.gen
	if !stale && err == nil {
		if loaded.Language == "" {
			loaded.Language = domain.LanguageEnglish
		}
		s.guildID = guildID
		s.settings = loaded
		s.marriages = marriages
	}
	s.mu.Unlock()

	switch {
	case stale:
		s.log.Debug("discarding stale refresh", "guild", guildID)
		return ErrSuperseded
	case err != nil:
		s.log.Warn("refresh failed", "guild", guildID, "error", err)
		if s.loadReq.Latest(seq) {
			s.loadReq.Fail(MsgLoadFailed)
		}
		return fmt.Errorf("settings.Refresh: %w", err)
	}
	if s.loadReq.Latest(seq) {
		s.loadReq.Succeed(MsgLoaded)
	}
	s.log.Debug("refreshed", "guild", guildID, "marriages", len(marriages))
	return nil
}

// Save sends the complete current settings to guildID. It refuses unless the
// settings held were loaded from guildID. The response body is ignored; the
// local object remains authoritative.
func (s *Store) Save(ctx context.Context, guildID string) error {
	s.mu.RLock()
	loadedID, current := s.guildID, s.settings
	s.mu.RUnlock()

	switch {
	case guildID == "":
		return s.rejectSave(MsgNoGuild)
	case guildID != loadedID:
		s.log.Debug("save refused", "guild", guildID, "loaded", loadedID)
		return s.rejectSave(MsgNotLoaded)
	}

	s.saveReq.Begin()
	if err := s.api.SaveSettings(ctx, guildID, current); err != nil {
		s.log.Warn("save failed", "guild", guildID, "error", err)
		s.saveReq.Fail(client.Message(err, MsgSaveFailed))
		return fmt.Errorf("settings.Save: %w", err)
	}
	s.saveReq.Succeed(MsgSaved)
	s.log.Info("settings saved", "guild", guildID)
	return nil
}

func (s *Store) rejectSave(msg string) error {
	verr := &request.ValidationError{Message: msg}
	s.saveReq.Reject(verr)
	return verr
}

func (s *Store) SetWeddingChannel(id string) {
	s.mu.Lock()
	s.settings.WeddingChannel = id
	s.mu.Unlock()
}

func (s *Store) SetWeddingRole(id string) {
	s.mu.Lock()
	s.settings.WeddingRole = id
	s.mu.Unlock()
}

// SetLanguage rejects anything other than the supported languages.
func (s *Store) SetLanguage(l domain.Language) error {
	if !domain.ValidLanguage(l) {
		return request.Invalid(MsgBadLanguage)
	}
	s.mu.Lock()
	s.settings.Language = l
	s.mu.Unlock()
	return nil
}

// GuildID returns the guild the held settings were loaded from, or "" before
// the first successful refresh.
func (s *Store) GuildID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guildID
}

// Current returns a copy of the settings.
func (s *Store) Current() domain.GuildSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Marriages returns a copy of the marriage list.
func (s *Store) Marriages() []domain.MarriagePair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.marriages)
}

func (s *Store) LoadState() request.State { return s.loadReq.State() }
func (s *Store) SaveState() request.State { return s.saveReq.State() }
