package enricher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
	"github.com/MaksimSorokoumov/LP-screening/pkg/utils"
)

const maxPromptHeadings = 10

const systemPrompt = "You are an expert landing page optimization assistant. " +
	"Return JSON only. Keys: readability (easy/medium/hard), recommendations (list of 5 short strings)."

// userPrompt renders the page snapshot sent to the model.
func userPrompt(signals models.PageSignals, excerpt string) string {
	var headings []string
	for level := 1; level <= 3 && len(headings) < maxPromptHeadings; level++ {
		for _, h := range signals.Headings[level] {
			if len(headings) == maxPromptHeadings {
				break
			}
			headings = append(headings, fmt.Sprintf("H%d: %s", level, utils.CleanText(h)))
		}
	}

	var b strings.Builder
	b.WriteString("Landing page snapshot:\n")
	fmt.Fprintf(&b, "Title: %s\n", signals.Title.OrElse("N/A"))
	fmt.Fprintf(&b, "Meta description present: %t\n", signals.MetaDescription.IsPresent())
	fmt.Fprintf(&b, "Word count: %d\n", signals.WordCount())
	fmt.Fprintf(&b, "Headings: %s\n", strings.Join(headings, " | "))
	fmt.Fprintf(&b, "Forms: %d\n", signals.FormsCount)
	fmt.Fprintf(&b, "Images missing alt: %d/%d\n", signals.ImagesWithoutAlt, signals.ImagesTotal)
	if len(signals.Analytics) > 0 {
		fmt.Fprintf(&b, "Analytics: %s\n", strings.Join(signals.Analytics, ", "))
	}
	if excerpt != "" {
		fmt.Fprintf(&b, "Main content excerpt:\n%s\n", excerpt)
	}
	b.WriteString("Provide evaluation.")
	return b.String()
}

// parseAnswer turns the model output into an Enrichment. Answers that are not
// a JSON object fall back to readability "unknown" and the first non-empty
// lines as recommendations.
func parseAnswer(content string) models.Enrichment {
	content = strings.TrimSpace(content)
	result := models.Enrichment{Raw: content, Readability: models.ReadabilityUnknown}

	var data map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &data); err != nil {
		result.Recommendations = firstLines(content, models.MaxRecommendations)
		return result
	}

	if v, ok := data["readability"]; ok && v != nil {
		result.Readability = models.ParseReadability(strings.ToLower(strings.TrimSpace(fmt.Sprint(v))))
	}

	recs := []string{}
	if list, ok := data["recommendations"].([]any); ok {
		for _, item := range list {
			if len(recs) == models.MaxRecommendations {
				break
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				recs = append(recs, s)
			}
		}
	}
	result.Recommendations = recs
	return result
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func firstLines(s string, limit int) []string {
	lines := []string{}
	for _, line := range strings.Split(s, "\n") {
		if len(lines) == limit {
			break
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
