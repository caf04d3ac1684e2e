package models

import (
	"time"
)

// Status is the severity of a single rule verdict.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
)

// Severity orders statuses for display: OK < WARNING < ERROR.
func (s Status) Severity() int {
	switch s {
	case StatusOK:
		return 0
	case StatusWarning:
		return 1
	case StatusError:
		return 2
	}
	return -1
}

// String implements fmt.Stringer
func (s Status) String() string {
	return string(s)
}

// RuleResult is one heuristic verdict.
type RuleResult struct {
	Name    string `json:"name" yaml:"name"`
	Status  Status `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// Readability is the qualitative reading difficulty reported by enrichment.
type Readability string

const (
	ReadabilityEasy    Readability = "easy"
	ReadabilityMedium  Readability = "medium"
	ReadabilityHard    Readability = "hard"
	ReadabilityUnknown Readability = "unknown"
)

// ParseReadability maps free-form model output onto the closed set,
// falling back to ReadabilityUnknown.
func ParseReadability(s string) Readability {
	switch Readability(s) {
	case ReadabilityEasy, ReadabilityMedium, ReadabilityHard:
		return Readability(s)
	}
	return ReadabilityUnknown
}

// MaxRecommendations caps the enrichment recommendation list.
const MaxRecommendations = 5

// Enrichment is the optional LLM review of a page.
type Enrichment struct {
	Readability     Readability `json:"readability" yaml:"readability"`
	Recommendations []string    `json:"recommendations" yaml:"recommendations"`
	Raw             string      `json:"-" yaml:"-"`
}

// AuditResult aggregates everything produced for one audited URL.
type AuditResult struct {
	URL        string                 `json:"url" yaml:"url"`
	AuditedAt  time.Time              `json:"audited_at" yaml:"audited_at"`
	Fetch      FetchResult            `json:"fetch" yaml:"fetch"`
	Signals    Optional[PageSignals]  `json:"signals" yaml:"signals"`
	Rules      Optional[[]RuleResult] `json:"rules" yaml:"rules"`
	Enrichment Optional[Enrichment]   `json:"ai" yaml:"ai"`
}

// SignalSummary is the report-facing digest of PageSignals.
type SignalSummary struct {
	Title              string         `json:"title" yaml:"title"`
	TitleLength        int            `json:"title_length" yaml:"title_length"`
	HasMetaDescription bool           `json:"has_meta_description" yaml:"has_meta_description"`
	MetaDescriptionLen int            `json:"meta_description_length" yaml:"meta_description_length"`
	HasMetaKeywords    bool           `json:"has_meta_keywords" yaml:"has_meta_keywords"`
	HeadingCounts      map[string]int `json:"heading_counts" yaml:"heading_counts"`
	H1                 []string       `json:"h1" yaml:"h1"`
	WordCount          int            `json:"word_count" yaml:"word_count"`
	ReadingMinutes     int            `json:"reading_minutes" yaml:"reading_minutes"`
	ImagesTotal        int            `json:"images_total" yaml:"images_total"`
	ImagesWithoutAlt   int            `json:"images_without_alt" yaml:"images_without_alt"`
	FormsCount         int            `json:"forms_count" yaml:"forms_count"`
	ExternalLinks      int            `json:"external_links" yaml:"external_links"`
	ExternalNofollow   int            `json:"external_nofollow" yaml:"external_nofollow"`
	Analytics          []string       `json:"analytics" yaml:"analytics"`
	TopKeywords        []string       `json:"top_keywords" yaml:"top_keywords"`
}

// RuleCounts tallies rule results per status.
func (a *AuditResult) RuleCounts() map[Status]int {
	counts := map[Status]int{StatusOK: 0, StatusWarning: 0, StatusError: 0}
	rules, _ := a.Rules.Get()
	for _, r := range rules {
		counts[r.Status]++
	}
	return counts
}
