package analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

// Rule names, in the order Evaluate reports them.
const (
	RuleSSL             = "SSL"
	RuleTitle           = "Title"
	RuleMetaDescription = "Meta description"
	RuleH1              = "H1"
	RuleTextLength      = "Text length"
	RuleAltTexts        = "Alt texts"
	RuleForms           = "Forms"
	RuleAnalytics       = "Analytics"
)

// RuleNames lists every rule in canonical order.
var RuleNames = []string{
	RuleSSL, RuleTitle, RuleMetaDescription, RuleH1,
	RuleTextLength, RuleAltTexts, RuleForms, RuleAnalytics,
}

// Thresholds are the inclusive bounds the rules accept as optimal.
type Thresholds struct {
	TitleMin, TitleMax int // runes
	MetaMin, MetaMax   int // runes
	WordsMin, WordsMax int
	// Share of images without alt, in percent, from which the verdict is ERROR.
	AltErrorPercent float64
}

// DefaultThresholds returns the standard landing page thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TitleMin:        20,
		TitleMax:        70,
		MetaMin:         50,
		MetaMax:         160,
		WordsMin:        200,
		WordsMax:        2000,
		AltErrorPercent: 50,
	}
}

// Analyzer evaluates page signals against the heuristic rule battery
type Analyzer struct {
	config *Config
	msgs   catalog
}

// Config holds analyzer configuration
type Config struct {
	Thresholds Thresholds
	Language   Language
}

// New creates an Analyzer with default thresholds and Russian messages
func New() *Analyzer {
	return NewWithConfig(&Config{
		Thresholds: DefaultThresholds(),
		Language:   Russian,
	})
}

// NewWithConfig creates an Analyzer with custom configuration. An unknown
// language falls back to Russian.
func NewWithConfig(config *Config) *Analyzer {
	msgs, ok := catalogs[config.Language]
	if !ok {
		msgs = catalogs[Russian]
	}
	cfg := *config
	return &Analyzer{config: &cfg, msgs: msgs}
}

// Evaluate runs every rule and returns exactly one result per rule in
// canonical order. Rules are independent of each other and treat missing
// data as zero or absent.
func (a *Analyzer) Evaluate(signals models.PageSignals, fetch models.FetchResult) []models.RuleResult {
	return []models.RuleResult{
		a.checkSSL(fetch),
		a.checkTitle(signals),
		a.checkMetaDescription(signals),
		a.checkH1(signals),
		a.checkTextLength(signals),
		a.checkAltTexts(signals),
		a.checkForms(signals),
		a.checkAnalytics(signals),
	}
}

func (a *Analyzer) checkSSL(fetch models.FetchResult) models.RuleResult {
	if fetch.SSLOK {
		return result(RuleSSL, models.StatusOK, a.msgs.sslOK)
	}
	return result(RuleSSL, models.StatusError, a.msgs.sslError)
}

func (a *Analyzer) checkTitle(signals models.PageSignals) models.RuleResult {
	title, ok := signals.Title.Get()
	if !ok {
		return result(RuleTitle, models.StatusError, a.msgs.titleNone)
	}

	t := a.config.Thresholds
	length := utf8.RuneCountInString(title)
	if inRange(length, t.TitleMin, t.TitleMax) {
		return result(RuleTitle, models.StatusOK, a.msgs.titleOK)
	}
	return result(RuleTitle, models.StatusWarning, fmt.Sprintf(a.msgs.titleLengthf, length, t.TitleMin, t.TitleMax))
}

func (a *Analyzer) checkMetaDescription(signals models.PageSignals) models.RuleResult {
	desc, ok := signals.MetaDescription.Get()
	if !ok {
		return result(RuleMetaDescription, models.StatusWarning, a.msgs.metaNone)
	}

	t := a.config.Thresholds
	if inRange(utf8.RuneCountInString(desc), t.MetaMin, t.MetaMax) {
		return result(RuleMetaDescription, models.StatusOK, a.msgs.metaOK)
	}
	return result(RuleMetaDescription, models.StatusWarning, a.msgs.metaLength)
}

func (a *Analyzer) checkH1(signals models.PageSignals) models.RuleResult {
	switch count := signals.Headings.Count(1); {
	case count == 0:
		return result(RuleH1, models.StatusError, a.msgs.h1None)
	case count == 1:
		return result(RuleH1, models.StatusOK, a.msgs.h1OK)
	default:
		return result(RuleH1, models.StatusWarning, fmt.Sprintf(a.msgs.h1Manyf, count))
	}
}

// checkTextLength never reports ERROR: text length alone is not disqualifying.
func (a *Analyzer) checkTextLength(signals models.PageSignals) models.RuleResult {
	t := a.config.Thresholds
	switch words := signals.WordCount(); {
	case words < t.WordsMin:
		return result(RuleTextLength, models.StatusWarning, fmt.Sprintf(a.msgs.textShortf, words, t.WordsMin))
	case words > t.WordsMax:
		return result(RuleTextLength, models.StatusWarning, fmt.Sprintf(a.msgs.textLongf, words, t.WordsMax))
	default:
		return result(RuleTextLength, models.StatusOK, a.msgs.textOK)
	}
}

func (a *Analyzer) checkAltTexts(signals models.PageSignals) models.RuleResult {
	if signals.ImagesTotal <= 0 {
		return result(RuleAltTexts, models.StatusWarning, a.msgs.altNoImages)
	}

	missing := signals.ImagesWithoutAlt
	if missing > signals.ImagesTotal {
		missing = signals.ImagesTotal
	}
	percent := float64(missing) / float64(signals.ImagesTotal) * 100

	switch {
	case percent <= 0:
		return result(RuleAltTexts, models.StatusOK, a.msgs.altAll)
	case percent < a.config.Thresholds.AltErrorPercent:
		return result(RuleAltTexts, models.StatusWarning, fmt.Sprintf(a.msgs.altMissingf, percent))
	default:
		return result(RuleAltTexts, models.StatusError, fmt.Sprintf(a.msgs.altMissingf, percent))
	}
}

func (a *Analyzer) checkForms(signals models.PageSignals) models.RuleResult {
	if signals.FormsCount > 0 {
		return result(RuleForms, models.StatusOK, a.msgs.formsOK)
	}
	return result(RuleForms, models.StatusWarning, a.msgs.formsNone)
}

func (a *Analyzer) checkAnalytics(signals models.PageSignals) models.RuleResult {
	if len(signals.Analytics) == 0 {
		return result(RuleAnalytics, models.StatusWarning, a.msgs.analyticsNone)
	}
	tools := strings.Join(signals.Analytics, a.msgs.analyticsSeparator)
	return result(RuleAnalytics, models.StatusOK, fmt.Sprintf(a.msgs.analyticsFoundf, tools))
}

func result(name string, status models.Status, message string) models.RuleResult {
	return models.RuleResult{Name: name, Status: status, Message: message}
}

func inRange(v, low, high int) bool {
	return low <= v && v <= high
}
