package domain

import (
	"encoding/json"
	"fmt"
)

// Language is the locale the bot uses for ceremony announcements.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageIndonesian Language = "id"
)

// Languages lists the supported languages in picker order.
var Languages = []Language{LanguageEnglish, LanguageIndonesian}

// ValidLanguage returns true if l is a supported language.
func ValidLanguage(l Language) bool {
	return l == LanguageEnglish || l == LanguageIndonesian
}

// GuildSettings is the per-guild wedding configuration.
type GuildSettings struct {
	WeddingChannel string   `json:"weddingChannel,omitempty"`
	WeddingRole    string   `json:"weddingRole,omitempty"`
	Language       Language `json:"language"`
}

// EffectiveLanguage returns the configured language, defaulting to English.
func (s GuildSettings) EffectiveLanguage() Language {
	if s.Language == "" {
		return LanguageEnglish
	}
	return s.Language
}

// MarriagePair is an ordered pair of married member IDs.
type MarriagePair struct {
	PartnerA string
	PartnerB string
}

// MarshalJSON encodes the pair as a two-element array.
func (p MarriagePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.PartnerA, p.PartnerB})
}

// UnmarshalJSON decodes a two-element array.
func (p *MarriagePair) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("marriage pair: %w", err)
	}
	if len(ids) != 2 {
		return fmt.Errorf("marriage pair: want 2 ids, got %d", len(ids))
	}
	p.PartnerA, p.PartnerB = ids[0], ids[1]
	return nil
}
