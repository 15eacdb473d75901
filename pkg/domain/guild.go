package domain

import (
	"fmt"
	"net/url"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Guild is a Discord server the bot is a member of.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// iconCDN is the base URL for guild icon assets.
const iconCDN = "https://cdn.discordapp.com/icons/"

// IconURL returns the CDN URL of the guild icon at the given pixel size,
// or "" when the guild has no icon.
func (g Guild) IconURL(size int) string {
	if g.Icon == "" || g.ID == "" {
		return ""
	}
	return fmt.Sprintf("%s%s/%s.png?size=%d", iconCDN, url.PathEscape(g.ID), url.PathEscape(g.Icon), size)
}

// CreatedAt derives the guild creation time from its snowflake ID.
// ok is false when the ID is not a snowflake.
func (g Guild) CreatedAt() (t time.Time, ok bool) {
	id, err := snowflake.Parse(g.ID)
	if err != nil || id == 0 {
		return time.Time{}, false
	}
	return id.Time(), true
}

// FindGuild returns the guild with the given ID from list.
func FindGuild(list []Guild, id string) (Guild, bool) {
	for _, g := range list {
		if g.ID == id {
			return g, true
		}
	}
	return Guild{}, false
}

// Channel is a text channel the bot can post broadcasts to.
type Channel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GuildID   string `json:"guildId"`
	GuildName string `json:"guildName"`
}

// ChannelGroup is the set of channels belonging to one guild.
type ChannelGroup struct {
	GuildID   string
	GuildName string
	Channels  []Channel
}

// GroupChannels groups channels by guild. Guilds keep the order in which
// they first appear; channels keep their input order within a group.
func GroupChannels(channels []Channel) []ChannelGroup {
	var groups []ChannelGroup
	index := make(map[string]int)
	for _, ch := range channels {
		i, ok := index[ch.GuildID]
		if !ok {
			i = len(groups)
			index[ch.GuildID] = i
			groups = append(groups, ChannelGroup{GuildID: ch.GuildID, GuildName: ch.GuildName})
		}
		groups[i].Channels = append(groups[i].Channels, ch)
	}
	return groups
}

// Member is a guild member, used only as a selectable reference.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Tag      string `json:"tag"`
}

// Label renders the member for pickers, e.g. "alice (alice#0001)".
func (m Member) Label() string {
	return fmt.Sprintf("%s (%s)", m.Username, m.Tag)
}
