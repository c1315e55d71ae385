package models

import (
	"strings"
	"time"
)

// Language is the response language requested for a case
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageHindi   Language = "Hindi"
	LanguageTelugu  Language = "Telugu"
	LanguageTamil   Language = "Tamil"
)

// Languages lists every supported language in display order
var Languages = []Language{LanguageEnglish, LanguageHindi, LanguageTelugu, LanguageTamil}

// ParseLanguage maps free-form input onto a supported language.
// Unknown or empty values fall back to English.
func ParseLanguage(s string) Language {
	for _, l := range Languages {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l
		}
	}
	return LanguageEnglish
}

// EvidenceUpdate represents one amendment to a case
type EvidenceUpdate struct {
	Timestamp    time.Time `json:"timestamp"`
	EvidenceText string    `json:"evidence_text"`
	ImpactText   string    `json:"impact_text"`
	Version      int       `json:"version"` // record version after this update
	Permalink    string    `json:"permalink"`
}

// CaseRecord represents one analyzed legal scenario and its amendments
type CaseRecord struct {
	CaseID          string           `json:"case_id"`
	CreatedAt       time.Time        `json:"created_at"`
	LastUpdatedAt   time.Time        `json:"last_updated_at"`
	ScenarioText    string           `json:"scenario_text"`
	Language        Language         `json:"language"`
	AnalysisText    string           `json:"analysis_text"`
	Version         int              `json:"version"`
	EvidenceUpdates []EvidenceUpdate `json:"evidence_updates"`

	// Permalinks issued when version 1 and the current version came into existence
	InitialPermalink string `json:"initial_permalink"`
	Permalink        string `json:"permalink"`
}

// Clone returns a deep copy safe to hand to callers outside the store
func (c *CaseRecord) Clone() *CaseRecord {
	if c == nil {
		return nil
	}
	cp := *c
	cp.EvidenceUpdates = make([]EvidenceUpdate, len(c.EvidenceUpdates))
	copy(cp.EvidenceUpdates, c.EvidenceUpdates)
	return &cp
}

// PermalinkFor returns the permalink recorded for the given version, or ""
// if the record never reached that version.
func (c *CaseRecord) PermalinkFor(version int) string {
	switch version {
	case c.Version:
		return c.Permalink
	case 1:
		return c.InitialPermalink
	}
	for _, u := range c.EvidenceUpdates {
		if u.Version == version {
			return u.Permalink
		}
	}
	return ""
}
