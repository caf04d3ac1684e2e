package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

// Formats lists the supported output formats.
var Formats = []string{"json", "yaml", "html", "markdown"}

// Report is the document rendered for one audit.
type Report struct {
	URL         string                                `json:"url" yaml:"url"`
	GeneratedAt time.Time                             `json:"generated_at" yaml:"generated_at"`
	AuditedAt   time.Time                             `json:"audited_at" yaml:"audited_at"`
	Verdict     models.Status                         `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Counts      map[models.Status]int                 `json:"counts" yaml:"counts"`
	Fetch       models.FetchResult                    `json:"fetch" yaml:"fetch"`
	Summary     models.Optional[models.SignalSummary] `json:"summary" yaml:"summary"`
	Rules       models.Optional[[]models.RuleResult]  `json:"rules" yaml:"rules"`
	AI          models.Optional[models.Enrichment]    `json:"ai" yaml:"ai"`
}

// Reporter handles report generation in various formats
type Reporter struct {
	now func() time.Time
}

// New creates a new Reporter instance
func New() *Reporter {
	return &Reporter{now: time.Now}
}

// NewWithClock creates a Reporter stamping reports with now().
func NewWithClock(now func() time.Time) *Reporter {
	return &Reporter{now: now}
}

// Build assembles the report document for result. url is the address shown
// as the report subject; when empty the audited URL is used.
func (r *Reporter) Build(url string, result *models.AuditResult) *Report {
	if url == "" {
		url = result.URL
	}
	report := &Report{
		URL:         url,
		GeneratedAt: r.now().UTC(),
		AuditedAt:   result.AuditedAt,
		Counts:      result.RuleCounts(),
		Fetch:       result.Fetch,
		Summary:     result.Summary(),
		Rules:       result.Rules,
		AI:          result.Enrichment,
	}
	if rules, ok := result.Rules.Get(); ok {
		report.Verdict = worstStatus(rules)
	}
	return report
}

// GenerateReport renders result in the given format.
func (r *Reporter) GenerateReport(url string, result *models.AuditResult, format string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no audit result for %s", url)
	}
	report := r.Build(url, result)

	switch format {
	case "json":
		return r.generateJSON(report)
	case "yaml":
		return r.generateYAML(report)
	case "html":
		return r.generateHTML([]*Report{report})
	case "markdown":
		return r.generateMarkdown(report), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// GenerateBatchReport renders several audits as one document: a list for
// json and yaml, consecutive sections for html and markdown.
func (r *Reporter) GenerateBatchReport(results []*models.AuditResult, format string) (string, error) {
	reports := make([]*Report, 0, len(results))
	for _, res := range results {
		if res != nil {
			reports = append(reports, r.Build("", res))
		}
	}

	switch format {
	case "json":
		return r.generateJSON(reports)
	case "yaml":
		return r.generateYAML(reports)
	case "html":
		return r.generateHTML(reports)
	case "markdown":
		parts := make([]string, 0, len(reports))
		for _, rep := range reports {
			parts = append(parts, r.generateMarkdown(rep))
		}
		return strings.Join(parts, "\n---\n\n"), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// ContentType returns the MIME type served for format.
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json; charset=utf-8"
	case "yaml":
		return "application/yaml; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	case "markdown":
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func worstStatus(rules []models.RuleResult) models.Status {
	worst := models.StatusOK
	for _, rule := range rules {
		if rule.Status.Severity() > worst.Severity() {
			worst = rule.Status
		}
	}
	return worst
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

func (r *Reporter) generateYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return buf.String(), nil
}

// generateMarkdown creates a Markdown formatted report
func (r *Reporter) generateMarkdown(report *Report) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Landing Page Audit: %s\n\n", report.URL)
	fmt.Fprintf(&buf, "*Audited on %s*\n\n", report.AuditedAt.Format("January 2, 2006 15:04 MST"))

	fmt.Fprintf(&buf, "## Fetch\n\n")
	fmt.Fprintf(&buf, "- **SSL:** %t\n", report.Fetch.SSLOK)
	if code, ok := report.Fetch.StatusCode.Get(); ok {
		fmt.Fprintf(&buf, "- **Status code:** %d\n", code)
	}
	if final, ok := report.Fetch.FinalURL.Get(); ok {
		fmt.Fprintf(&buf, "- **Final URL:** %s\n", final)
	}
	if allowed, ok := report.Fetch.RobotsAllowed.Get(); ok {
		fmt.Fprintf(&buf, "- **Allowed by robots.txt:** %t\n", allowed)
	}
	if msg, ok := report.Fetch.Error.Get(); ok {
		fmt.Fprintf(&buf, "- **Error:** %s\n", msg)
	}
	fmt.Fprintf(&buf, "\n")

	if s, ok := report.Summary.Get(); ok {
		fmt.Fprintf(&buf, "## Summary\n\n")
		fmt.Fprintf(&buf, "| Signal | Value |\n")
		fmt.Fprintf(&buf, "|--------|-------|\n")
		fmt.Fprintf(&buf, "| Title | %s (%d chars) |\n", escapeCell(s.Title), s.TitleLength)
		fmt.Fprintf(&buf, "| Meta description | %t (%d chars) |\n", s.HasMetaDescription, s.MetaDescriptionLen)
		fmt.Fprintf(&buf, "| Headings H1/H2/H3 | %d / %d / %d |\n", s.HeadingCounts["h1"], s.HeadingCounts["h2"], s.HeadingCounts["h3"])
		fmt.Fprintf(&buf, "| Words | %d (~%d min read) |\n", s.WordCount, s.ReadingMinutes)
		fmt.Fprintf(&buf, "| Images without alt | %d / %d |\n", s.ImagesWithoutAlt, s.ImagesTotal)
		fmt.Fprintf(&buf, "| Forms | %d |\n", s.FormsCount)
		fmt.Fprintf(&buf, "| External links (nofollow) | %d (%d) |\n", s.ExternalLinks, s.ExternalNofollow)
		fmt.Fprintf(&buf, "| Analytics | %s |\n", escapeCell(strings.Join(s.Analytics, ", ")))
		if len(s.TopKeywords) > 0 {
			fmt.Fprintf(&buf, "| Top keywords | %s |\n", escapeCell(strings.Join(s.TopKeywords, ", ")))
		}
		fmt.Fprintf(&buf, "\n")
	}

	if rules, ok := report.Rules.Get(); ok {
		fmt.Fprintf(&buf, "## Checks\n\n")
		fmt.Fprintf(&buf, "**Verdict:** %s (OK %d, WARNING %d, ERROR %d)\n\n",
			report.Verdict,
			report.Counts[models.StatusOK],
			report.Counts[models.StatusWarning],
			report.Counts[models.StatusError])
		fmt.Fprintf(&buf, "| Check | Status | Message |\n")
		fmt.Fprintf(&buf, "|-------|--------|---------|\n")
		for _, rule := range rules {
			fmt.Fprintf(&buf, "| %s | %s | %s |\n", rule.Name, rule.Status, escapeCell(rule.Message))
		}
		fmt.Fprintf(&buf, "\n")
	}

	if ai, ok := report.AI.Get(); ok {
		fmt.Fprintf(&buf, "## AI Review\n\n")
		fmt.Fprintf(&buf, "**Readability:** %s\n\n", ai.Readability)
		for i, rec := range ai.Recommendations {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, rec)
		}
		if len(ai.Recommendations) > 0 {
			fmt.Fprintf(&buf, "\n")
		}
	}

	return buf.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
