package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
// Discord caps a message at 2000 characters.
const maxInputLen = 2000

// maxIDLen bounds snowflake id inputs.
const maxIDLen = 32

// newTextInput builds the single-line input used by the wedding and
// broadcast forms.
func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "> "
	ti.PromptStyle = inputPromptStyle
	ti.PlaceholderStyle = inputPlaceholderStyle
	ti.TextStyle = normalStyle
	return ti
}
