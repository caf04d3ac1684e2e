package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func ruleByName(t *testing.T, results []models.RuleResult, name string) models.RuleResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "rule not found", "%s", name)
	return models.RuleResult{}
}

func TestEvaluateAlwaysEightInCanonicalOrder(t *testing.T) {
	a := New()
	inputs := []struct {
		signals models.PageSignals
		fetch   models.FetchResult
	}{
		{models.PageSignals{}, models.FetchResult{}},
		{models.PageSignals{ImagesTotal: 3, ImagesWithoutAlt: 9}, models.FetchSucceeded("<html>", 200, "https://x", true)},
		{models.PageSignals{Title: models.Some("x"), Headings: models.Headings{1: {"a", "b"}}}, models.FetchFailed("", models.None[int](), false)},
	}

	for _, in := range inputs {
		results := a.Evaluate(in.signals, in.fetch)
		require.Len(t, results, 8)
		for i, r := range results {
			assert.Equal(t, RuleNames[i], r.Name)
			assert.NotEmpty(t, r.Message)
		}
	}
}

func TestCheckTitleBoundaries(t *testing.T) {
	a := New()
	tests := []struct {
		name   string
		title  models.Optional[string]
		status models.Status
	}{
		{"absent", models.None[string](), models.StatusError},
		{"19", models.Some(strings.Repeat("a", 19)), models.StatusWarning},
		{"20", models.Some(strings.Repeat("a", 20)), models.StatusOK},
		{"70", models.Some(strings.Repeat("a", 70)), models.StatusOK},
		{"71", models.Some(strings.Repeat("a", 71)), models.StatusWarning},
		{"20 cyrillic runes", models.Some(strings.Repeat("я", 20)), models.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := a.checkTitle(models.PageSignals{Title: tt.title})
			assert.Equal(t, tt.status, r.Status)
		})
	}

	r := a.checkTitle(models.PageSignals{Title: models.Some(strings.Repeat("a", 71))})
	assert.Contains(t, r.Message, "71")
}

func TestCheckTextLengthBoundaries(t *testing.T) {
	a := New()
	tests := []struct {
		count  int
		status models.Status
	}{
		{0, models.StatusWarning},
		{199, models.StatusWarning},
		{200, models.StatusOK},
		{2000, models.StatusOK},
		{2001, models.StatusWarning},
	}

	for _, tt := range tests {
		r := a.checkTextLength(models.PageSignals{TextContent: words(tt.count)})
		assert.Equal(t, tt.status, r.Status, "word count %d", tt.count)
		assert.NotEqual(t, models.StatusError, r.Status)
	}
}

func TestCheckAltTexts(t *testing.T) {
	a := New()
	tests := []struct {
		total, missing int
		status         models.Status
		message        string
	}{
		{0, 0, models.StatusWarning, "На странице нет изображений."},
		{4, 0, models.StatusOK, "Все изображения имеют alt-текст."},
		{4, 1, models.StatusWarning, "25% изображений без alt-текста."},
		{4, 2, models.StatusError, "50% изображений без alt-текста."},
		{4, 3, models.StatusError, "75% изображений без alt-текста."},
	}

	for _, tt := range tests {
		r := a.checkAltTexts(models.PageSignals{ImagesTotal: tt.total, ImagesWithoutAlt: tt.missing})
		assert.Equal(t, tt.status, r.Status, "%d/%d", tt.missing, tt.total)
		assert.Equal(t, tt.message, r.Message)
	}
}

func TestCheckMetaDescription(t *testing.T) {
	a := New()
	assert.Equal(t, models.StatusWarning, a.checkMetaDescription(models.PageSignals{}).Status)
	assert.Equal(t, models.StatusWarning, a.checkMetaDescription(models.PageSignals{MetaDescription: models.Some(strings.Repeat("d", 49))}).Status)
	assert.Equal(t, models.StatusOK, a.checkMetaDescription(models.PageSignals{MetaDescription: models.Some(strings.Repeat("d", 50))}).Status)
	assert.Equal(t, models.StatusOK, a.checkMetaDescription(models.PageSignals{MetaDescription: models.Some(strings.Repeat("d", 160))}).Status)
	assert.Equal(t, models.StatusWarning, a.checkMetaDescription(models.PageSignals{MetaDescription: models.Some(strings.Repeat("d", 161))}).Status)
}

func TestCheckH1(t *testing.T) {
	a := New()
	assert.Equal(t, models.StatusError, a.checkH1(models.PageSignals{}).Status)
	assert.Equal(t, models.StatusOK, a.checkH1(models.PageSignals{Headings: models.Headings{1: {"One"}}}).Status)

	r := a.checkH1(models.PageSignals{Headings: models.Headings{1: {"One", "Two", "Three"}}})
	assert.Equal(t, models.StatusWarning, r.Status)
	assert.Equal(t, "На странице 3 тегов H1 — рекомендуется один.", r.Message)
}

func TestCheckAnalytics(t *testing.T) {
	a := New()
	assert.Equal(t, models.StatusWarning, a.checkAnalytics(models.PageSignals{}).Status)

	r := a.checkAnalytics(models.PageSignals{Analytics: []string{"Google Tag Manager", "Yandex Metrika"}})
	assert.Equal(t, models.StatusOK, r.Status)
	assert.Equal(t, "Найдены скрипты: Google Tag Manager; Yandex Metrika", r.Message)
}

func TestEvaluateLandingScenario(t *testing.T) {
	signals := models.PageSignals{
		Title:           models.Some(strings.Repeat("t", 30)),
		MetaDescription: models.Some(strings.Repeat("m", 100)),
		Headings:        models.Headings{1: {"Welcome"}},
		ImagesTotal:     2,
		FormsCount:      1,
		TextContent:     words(300),
	}

	for _, sslOK := range []bool{true, false} {
		fetch := models.FetchSucceeded("<html></html>", 200, "https://example.com", sslOK)
		results := New().Evaluate(signals, fetch)

		want := map[string]models.Status{
			RuleH1:              models.StatusOK,
			RuleTitle:           models.StatusOK,
			RuleMetaDescription: models.StatusOK,
			RuleTextLength:      models.StatusOK,
			RuleAltTexts:        models.StatusOK,
			RuleForms:           models.StatusOK,
			RuleAnalytics:       models.StatusWarning,
		}
		if sslOK {
			want[RuleSSL] = models.StatusOK
		} else {
			want[RuleSSL] = models.StatusError
		}

		for name, status := range want {
			assert.Equal(t, status, ruleByName(t, results, name).Status, name)
		}
	}
}

func TestEnglishCatalog(t *testing.T) {
	a := NewWithConfig(&Config{Thresholds: DefaultThresholds(), Language: English})
	results := a.Evaluate(models.PageSignals{}, models.FetchResult{})

	assert.Equal(t, "The site does not use a valid SSL certificate.", results[0].Message)
	assert.Equal(t, "Title is missing.", results[1].Message)
	assert.Equal(t, RuleTextLength, results[4].Name)
	assert.Equal(t, "The text is too short (0 words). At least 200 is recommended.", results[4].Message)
}

func TestCatalogsComplete(t *testing.T) {
	ru, en := catalogs[Russian], catalogs[English]
	for _, c := range []catalog{ru, en} {
		assert.NotEmpty(t, c.sslOK)
		assert.NotEmpty(t, c.titleLengthf)
		assert.NotEmpty(t, c.altMissingf)
		assert.NotEmpty(t, c.analyticsSeparator)
	}
}

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage("en")
	require.NoError(t, err)
	assert.Equal(t, English, lang)

	_, err = ParseLanguage("fr")
	assert.Error(t, err)
}

func TestStatusSeverityOrdering(t *testing.T) {
	assert.Less(t, models.StatusOK.Severity(), models.StatusWarning.Severity())
	assert.Less(t, models.StatusWarning.Severity(), models.StatusError.Severity())
}
