package extractor

import (
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/sirupsen/logrus"

	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
	"github.com/MaksimSorokoumov/LP-screening/pkg/utils"
)

// nonRenderedTags never contribute to visible text or headings.
var nonRenderedTags = []string{"script", "style", "noscript"}

// Extractor turns raw markup into PageSignals.
type Extractor struct {
	mainContent bool
	log         *logrus.Entry
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMainContent toggles the trafilatura main-content excerpt.
func WithMainContent(enabled bool) Option {
	return func(e *Extractor) { e.mainContent = enabled }
}

// WithLogger sets the logger used for debug output.
func WithLogger(entry *logrus.Entry) Option {
	return func(e *Extractor) { e.log = logging.Component(entry, "extractor") }
}

// New creates a new Extractor instance
func New(opts ...Option) *Extractor {
	e := &Extractor{
		mainContent: true,
		log:         logging.Component(nil, "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract derives all page signals from markup. pageURL is used to tell
// internal links from external ones; when it is absent every absolute link
// counts as external. Extract never fails: unusable markup yields zero and
// absent fields.
func (e *Extractor) Extract(markup string, pageURL models.Optional[string]) models.PageSignals {
	doc := Parse(markup)

	// Scripts are inspected before they are stripped below.
	signals := models.PageSignals{
		Analytics: detectAnalytics(doc),
	}

	doc.Strip(nonRenderedTags...)

	signals.Title = extractTitle(doc)
	signals.MetaDescription = extractMeta(doc, "description")
	signals.MetaKeywords = extractMeta(doc, "keywords")
	signals.Headings = extractHeadings(doc)
	signals.ImagesTotal, signals.ImagesWithoutAlt = countImages(doc)
	signals.FormsCount = len(doc.FindAll("form"))

	pageHost := ""
	if raw, ok := pageURL.Get(); ok {
		pageHost = utils.HostFromURL(raw)
	}
	signals.ExternalLinks, signals.ExternalNofollow = countExternalLinks(doc, pageHost)

	signals.TextContent = doc.VisibleText()

	if e.mainContent {
		signals.MainContent = e.extractMainContent(markup, pageURL)
	}

	e.log.WithFields(logrus.Fields{
		"words":     signals.WordCount(),
		"images":    signals.ImagesTotal,
		"analytics": len(signals.Analytics),
	}).Debug("Signals extracted")

	return signals
}

func extractTitle(doc Document) models.Optional[string] {
	el, ok := doc.First("title")
	if !ok {
		return models.None[string]()
	}
	return models.OptionalString(strings.TrimSpace(el.Text()))
}

// extractMeta returns the content of the first meta tag whose name matches
// (case-insensitively).
func extractMeta(doc Document, name string) models.Optional[string] {
	for _, meta := range doc.FindAll("meta") {
		if strings.EqualFold(strings.TrimSpace(meta.Attr("name").OrElse("")), name) {
			return models.OptionalString(strings.TrimSpace(meta.Attr("content").OrElse("")))
		}
	}
	return models.None[string]()
}

func extractHeadings(doc Document) models.Headings {
	headings := make(models.Headings)
	for level, tag := range []string{"h1", "h2", "h3"} {
		for _, h := range doc.FindAll(tag) {
			if text := strings.TrimSpace(h.Text()); text != "" {
				headings[level+1] = append(headings[level+1], text)
			}
		}
	}
	return headings
}

func countImages(doc Document) (total, withoutAlt int) {
	for _, img := range doc.FindAll("img") {
		total++
		if img.Attr("alt").OrElse("") == "" {
			withoutAlt++
		}
	}
	return total, withoutAlt
}

// countExternalLinks counts absolute links pointing outside pageHost and how
// many of those carry rel="nofollow".
func countExternalLinks(doc Document, pageHost string) (external, nofollow int) {
	for _, a := range doc.FindAll("a") {
		href, ok := a.Attr("href").Get()
		if !ok {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || u.Host == "" {
			continue
		}
		if isInternalHost(strings.ToLower(u.Hostname()), pageHost) {
			continue
		}
		external++
		if hasRelToken(a.Attr("rel").OrElse(""), "nofollow") {
			nofollow++
		}
	}
	return external, nofollow
}

// isInternalHost matches the page host itself and its subdomains. Sibling
// domains that merely share a suffix ("notexample.com") are external.
func isInternalHost(host, pageHost string) bool {
	if pageHost == "" {
		return false
	}
	return host == pageHost || strings.HasSuffix(host, "."+pageHost)
}

func hasRelToken(rel, token string) bool {
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// extractMainContent runs trafilatura over the original markup. Any failure,
// including a panic inside the library, yields an absent excerpt.
func (e *Extractor) extractMainContent(markup string, pageURL models.Optional[string]) (content models.Optional[string]) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Debug("Main content extraction panicked")
			content = models.None[string]()
		}
	}()

	if strings.TrimSpace(markup) == "" {
		return models.None[string]()
	}

	opts := trafilatura.Options{}
	if raw, ok := pageURL.Get(); ok {
		if u, err := url.Parse(raw); err == nil {
			opts.OriginalURL = u
		}
	}

	result, err := trafilatura.Extract(strings.NewReader(markup), opts)
	if err != nil || result == nil {
		if err != nil {
			e.log.WithError(err).Debug("Main content extraction failed")
		}
		return models.None[string]()
	}
	return models.OptionalString(strings.TrimSpace(result.ContentText))
}
