package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/naveenspark/nexus/pkg/domain"
)

// DefaultTimeout bounds every request made by a client built with New.
const DefaultTimeout = 30 * time.Second

// envelope is the success flag most bot endpoints wrap their payload in.
type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func (e envelope) err() error {
	if !e.OK {
		return &RejectedError{Message: e.Message}
	}
	return nil
}

// BroadcastRequest is the payload for sending a broadcast message.
type BroadcastRequest struct {
	ChannelID string `json:"channelId"`
	Message   string `json:"message"`
}

// StartCeremonyRequest is the payload for starting a wedding ceremony.
type StartCeremonyRequest struct {
	GuildID    string `json:"guildId"`
	Partner1ID string `json:"partner1Id"`
	Partner2ID string `json:"partner2Id"`
	ChannelID  string `json:"channelId"`
	RoleID     string `json:"roleId,omitempty"`
}

// Client is the bot service API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the service root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Broadcast ---

// ListChannels returns every text channel the bot can broadcast to.
func (c *Client) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	var resp struct {
		envelope
		Channels []domain.Channel `json:"channels"`
	}
	if err := c.get(ctx, "/broadcast/channels", &resp); err != nil {
		return nil, fmt.Errorf("client.ListChannels: %w", err)
	}
	if err := resp.err(); err != nil {
		return nil, fmt.Errorf("client.ListChannels: %w", err)
	}
	return resp.Channels, nil
}

// SendBroadcast posts a message to a channel.
func (c *Client) SendBroadcast(ctx context.Context, req BroadcastRequest) error {
	var resp envelope
	if err := c.post(ctx, "/broadcast/send", req, &resp); err != nil {
		return fmt.Errorf("client.SendBroadcast: %w", err)
	}
	if err := resp.err(); err != nil {
		return fmt.Errorf("client.SendBroadcast: %w", err)
	}
	return nil
}

// --- Wedding ---

// ListGuilds returns the guilds the bot has joined.
func (c *Client) ListGuilds(ctx context.Context) ([]domain.Guild, error) {
	var resp struct {
		envelope
		Guilds []domain.Guild `json:"guilds"`
	}
	if err := c.get(ctx, "/wedding/guilds", &resp); err != nil {
		return nil, fmt.Errorf("client.ListGuilds: %w", err)
	}
	if err := resp.err(); err != nil {
		return nil, fmt.Errorf("client.ListGuilds: %w", err)
	}
	return resp.Guilds, nil
}

// ListMembers returns the members of a guild.
func (c *Client) ListMembers(ctx context.Context, guildID string) ([]domain.Member, error) {
	var resp struct {
		envelope
		Members []domain.Member `json:"members"`
	}
	if err := c.get(ctx, "/wedding/members/"+url.PathEscape(guildID), &resp); err != nil {
		return nil, fmt.Errorf("client.ListMembers: %w", err)
	}
	if err := resp.err(); err != nil {
		return nil, fmt.Errorf("client.ListMembers: %w", err)
	}
	return resp.Members, nil
}

// GetSettings returns a guild's wedding settings. The endpoint has no ok
// wrapper; a null body yields zero settings.
func (c *Client) GetSettings(ctx context.Context, guildID string) (domain.GuildSettings, error) {
	var s *domain.GuildSettings
	if err := c.get(ctx, "/wedding/settings/"+url.PathEscape(guildID), &s); err != nil {
		return domain.GuildSettings{}, fmt.Errorf("client.GetSettings: %w", err)
	}
	if s == nil {
		return domain.GuildSettings{}, nil
	}
	return *s, nil
}

// SaveSettings stores a guild's complete wedding settings. The response
// body is ignored.
func (c *Client) SaveSettings(ctx context.Context, guildID string, s domain.GuildSettings) error {
	if err := c.post(ctx, "/wedding/settings/"+url.PathEscape(guildID), s, nil); err != nil {
		return fmt.Errorf("client.SaveSettings: %w", err)
	}
	return nil
}

// ListMarriages returns the married pairs of a guild.
func (c *Client) ListMarriages(ctx context.Context, guildID string) ([]domain.MarriagePair, error) {
	var pairs []domain.MarriagePair
	if err := c.get(ctx, "/wedding/list/"+url.PathEscape(guildID), &pairs); err != nil {
		return nil, fmt.Errorf("client.ListMarriages: %w", err)
	}
	return pairs, nil
}

// StartCeremony asks the bot to announce a wedding and apply the role.
func (c *Client) StartCeremony(ctx context.Context, req StartCeremonyRequest) error {
	var resp envelope
	if err := c.post(ctx, "/wedding/start", req, &resp); err != nil {
		return fmt.Errorf("client.StartCeremony: %w", err)
	}
	if err := resp.err(); err != nil {
		return fmt.Errorf("client.StartCeremony: %w", err)
	}
	return nil
}

// --- Admin ---

// Reload asks the bot to re-register its slash commands.
func (c *Client) Reload(ctx context.Context) error {
	var resp envelope
	if err := c.post(ctx, "/reload", nil, &resp); err != nil {
		return fmt.Errorf("client.Reload: %w", err)
	}
	if err := resp.err(); err != nil {
		return fmt.Errorf("client.Reload: %w", err)
	}
	return nil
}

// Stats returns the bot's current metrics.
func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	if err := c.get(ctx, "/stats", &stats); err != nil {
		return nil, fmt.Errorf("client.Stats: %w", err)
	}
	return stats, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}
