package domain

// MentionEveryone pings every member of the channel.
const MentionEveryone = "@everyone"

// MentionUser returns the mention token for a user ID. The ID is not validated.
func MentionUser(id string) string {
	return "<@" + id + ">"
}

// MentionRole returns the mention token for a role ID. The ID is not validated.
func MentionRole(id string) string {
	return "<@&" + id + ">"
}

// AppendToken appends token to message, separated by a space.
// Tokens are never deduplicated.
func AppendToken(message, token string) string {
	if message == "" {
		return token
	}
	return message + " " + token
}
