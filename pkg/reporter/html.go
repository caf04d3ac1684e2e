package reporter

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Landing Page Audit{{if eq (len .) 1}} - {{(index . 0).URL}}{{end}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1000px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 1.5rem 2rem;
            border-radius: 10px;
            margin-bottom: 1.5rem;
        }
        .card {
            background: white;
            border-radius: 10px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #eee; }
        .status { font-weight: bold; padding: 0.2rem 0.6rem; border-radius: 4px; color: white; }
        .status.ok { background: #28a745; }
        .status.warning { background: #ffc107; color: #333; }
        .status.error { background: #dc3545; }
        .error-box { border-left: 4px solid #dc3545; padding: 1rem; background: #fff5f5; }
    </style>
</head>
<body>
{{range .}}
    <div class="header">
        <h1>Landing Page Audit</h1>
        <p><a href="{{.URL}}" style="color: white">{{.URL}}</a></p>
        <p>Audited {{.AuditedAt.Format "January 2, 2006 15:04 MST"}}{{if .Verdict}} | Verdict: <span class="status {{statusClass .Verdict}}">{{.Verdict}}</span>{{end}}</p>
    </div>

    <div class="card">
        <h2>Fetch</h2>
        <p>SSL: {{if .Fetch.SSLOK}}yes{{else}}no{{end}}{{with optInt .Fetch.StatusCode}} | HTTP {{.}}{{end}}{{with optStr .Fetch.FinalURL}} | Final URL: {{.}}{{end}}</p>
        {{with optStr .Fetch.Error}}<div class="error-box">{{.}}</div>{{end}}
    </div>

    {{with summary .Summary}}
    <div class="card">
        <h2>Summary</h2>
        <table>
            <tr><th>Title</th><td>{{.Title}} ({{.TitleLength}} chars)</td></tr>
            <tr><th>Meta description</th><td>{{if .HasMetaDescription}}present ({{.MetaDescriptionLen}} chars){{else}}missing{{end}}</td></tr>
            <tr><th>Headings H1/H2/H3</th><td>{{index .HeadingCounts "h1"}} / {{index .HeadingCounts "h2"}} / {{index .HeadingCounts "h3"}}</td></tr>
            <tr><th>Words</th><td>{{.WordCount}} (~{{.ReadingMinutes}} min read)</td></tr>
            <tr><th>Images without alt</th><td>{{.ImagesWithoutAlt}} / {{.ImagesTotal}}</td></tr>
            <tr><th>Forms</th><td>{{.FormsCount}}</td></tr>
            <tr><th>External links (nofollow)</th><td>{{.ExternalLinks}} ({{.ExternalNofollow}})</td></tr>
            <tr><th>Analytics</th><td>{{join .Analytics ", "}}</td></tr>
            {{if .TopKeywords}}<tr><th>Top keywords</th><td>{{join .TopKeywords ", "}}</td></tr>{{end}}
        </table>
    </div>
    {{end}}

    {{with rules .Rules}}
    <div class="card">
        <h2>Checks</h2>
        <table>
            <tr><th>Check</th><th>Status</th><th>Message</th></tr>
            {{range .}}
            <tr><td>{{.Name}}</td><td><span class="status {{statusClass .Status}}">{{.Status}}</span></td><td>{{.Message}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}

    {{with ai .AI}}
    <div class="card">
        <h2>AI Review</h2>
        <p>Readability: <strong>{{.Readability}}</strong></p>
        {{if .Recommendations}}
        <ol>
            {{range .Recommendations}}<li>{{.}}</li>{{end}}
        </ol>
        {{end}}
    </div>
    {{end}}
{{end}}
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"statusClass": func(s models.Status) string { return strings.ToLower(string(s)) },
	"join":        strings.Join,
	"optInt":      func(o models.Optional[int]) any { return optional(o) },
	"optStr":      func(o models.Optional[string]) any { return optional(o) },
	"summary":     func(o models.Optional[models.SignalSummary]) any { return optional(o) },
	"rules":       func(o models.Optional[[]models.RuleResult]) any { return optional(o) },
	"ai":          func(o models.Optional[models.Enrichment]) any { return optional(o) },
}).Parse(htmlTemplate))

// optional unwraps o for templates: absent becomes nil so {{with}} skips it.
func optional[T any](o models.Optional[T]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}

// generateHTML creates an HTML formatted report
func (r *Reporter) generateHTML(reports []*Report) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, reports); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
