package models

import (
	"strings"
	"time"
)

// FetchResult is the outcome of downloading the audited page.
// Error is present if and only if HTML is absent; build values with
// FetchSucceeded or FetchFailed to keep that true.
type FetchResult struct {
	HTML          Optional[string] `json:"-" yaml:"-"`
	StatusCode    Optional[int]    `json:"status_code" yaml:"status_code"`
	FinalURL      Optional[string] `json:"final_url" yaml:"final_url"`
	SSLOK         bool             `json:"ssl_ok" yaml:"ssl_ok"`
	Error         Optional[string] `json:"error" yaml:"error"`
	ContentType   string           `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Duration      time.Duration    `json:"duration_ns" yaml:"duration_ns"`
	RobotsAllowed Optional[bool]   `json:"robots_allowed" yaml:"robots_allowed"`
}

// FetchSucceeded builds a FetchResult carrying markup.
func FetchSucceeded(html string, statusCode int, finalURL string, sslOK bool) FetchResult {
	return FetchResult{
		HTML:       Some(html),
		StatusCode: Some(statusCode),
		FinalURL:   Some(finalURL),
		SSLOK:      sslOK,
	}
}

// FetchFailed builds a FetchResult without markup. statusCode is present
// only when the server answered with an error status.
func FetchFailed(errMsg string, statusCode Optional[int], sslOK bool) FetchResult {
	if errMsg == "" {
		errMsg = "unknown error"
	}
	return FetchResult{
		StatusCode: statusCode,
		SSLOK:      sslOK,
		Error:      Some(errMsg),
	}
}

// Success reports whether markup was retrieved.
func (f FetchResult) Success() bool {
	return f.HTML.IsPresent() && !f.Error.IsPresent()
}

// Headings maps a heading level (1..3) to heading texts in document order.
type Headings map[int][]string

// Count returns how many headings of the given level were found.
func (h Headings) Count(level int) int {
	return len(h[level])
}

// PageSignals is the structured extraction of one page.
type PageSignals struct {
	Title            Optional[string] `json:"title" yaml:"title"`
	MetaDescription  Optional[string] `json:"meta_description" yaml:"meta_description"`
	MetaKeywords     Optional[string] `json:"meta_keywords" yaml:"meta_keywords"`
	Headings         Headings         `json:"headings" yaml:"headings"`
	ImagesTotal      int              `json:"images_total" yaml:"images_total"`
	ImagesWithoutAlt int              `json:"images_without_alt" yaml:"images_without_alt"`
	FormsCount       int              `json:"forms_count" yaml:"forms_count"`
	ExternalLinks    int              `json:"external_links" yaml:"external_links"`
	ExternalNofollow int              `json:"external_nofollow" yaml:"external_nofollow"`
	Analytics        []string         `json:"analytics" yaml:"analytics"`
	TextContent      string           `json:"-" yaml:"-"`
	MainContent      Optional[string] `json:"-" yaml:"-"`
}

// WordCount is the number of whitespace separated tokens of the visible text.
func (p PageSignals) WordCount() int {
	return len(strings.Fields(p.TextContent))
}
