package domain

import (
	"encoding/json"
	"sort"
	"strings"
)

// Stats is the metrics object served by the bot. Its shape is defined by
// the bot, so values are kept raw and rendered on demand.
type Stats map[string]json.RawMessage

// StatEntry is one rendered metric.
type StatEntry struct {
	Name  string
	Value string
}

// Entries returns the metrics sorted by name with values rendered as text.
// Strings are unquoted; other JSON values are shown verbatim.
func (s Stats) Entries() []StatEntry {
	entries := make([]StatEntry, 0, len(s))
	for name, raw := range s {
		var str string
		value := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &str) == nil {
			value = str
		}
		entries = append(entries, StatEntry{Name: name, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
