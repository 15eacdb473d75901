package domain

// LiveEvent is a message observed by the bot and relayed to dashboards.
// Events carry no identity; two identical payloads are two events.
type LiveEvent struct {
	AuthorTag   string `json:"authorTag"`
	Content     string `json:"content"`
	GuildName   string `json:"guildName"`
	ChannelName string `json:"channelName"`
	GuildID     string `json:"guildId,omitempty"`
}
