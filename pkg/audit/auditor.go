// Package audit runs the landing page audit pipeline: fetch, extract,
// evaluate, optionally enrich, assemble.
package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
	"github.com/MaksimSorokoumov/LP-screening/pkg/analyzer"
	"github.com/MaksimSorokoumov/LP-screening/pkg/extractor"
)

// Fetcher downloads the audited page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) models.FetchResult
}

// Enricher produces the optional LLM review.
type Enricher interface {
	Enrich(ctx context.Context, signals models.PageSignals) models.Optional[models.Enrichment]
}

// Stage names the pipeline position reached by an audit.
type Stage string

const (
	StageStart         Stage = "START"
	StageFetched       Stage = "FETCHED"
	StageFetchFailed   Stage = "FETCH_FAILED"
	StageExtracted     Stage = "EXTRACTED"
	StageEvaluated     Stage = "EVALUATED"
	StageEnriched      Stage = "ENRICHED"
	StageEnrichSkipped Stage = "ENRICH_SKIPPED"
	StageAssembled     Stage = "ASSEMBLED"
)

// Auditor wires the pipeline components together. It holds no per-audit
// state and is safe for concurrent use.
type Auditor struct {
	fetcher   Fetcher
	extractor *extractor.Extractor
	analyzer  *analyzer.Analyzer
	enricher  Enricher
	log       *logrus.Entry
	now       func() time.Time
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithEnricher enables enrichment. A nil enricher leaves it disabled.
func WithEnricher(e Enricher) Option {
	return func(a *Auditor) { a.enricher = e }
}

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(a *Auditor) { a.log = logging.Component(entry, "audit") }
}

// WithClock overrides the time source used for AuditedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) { a.now = now }
}

// New creates an Auditor.
func New(f Fetcher, ex *extractor.Extractor, an *analyzer.Analyzer, opts ...Option) *Auditor {
	a := &Auditor{
		fetcher:   f,
		extractor: ex,
		analyzer:  an,
		log:       logging.Component(nil, "audit"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.extractor == nil {
		a.extractor = extractor.New()
	}
	if a.analyzer == nil {
		a.analyzer = analyzer.New()
	}
	return a
}

// Run audits one URL. It always returns a result: failures are recorded in
// the result, never returned. A failed fetch is the only early exit.
func (a *Auditor) Run(ctx context.Context, rawURL string) *models.AuditResult {
	log := logging.FromContext(ctx, a.log).WithField("url", rawURL)
	start := time.Now()
	result := &models.AuditResult{URL: rawURL, AuditedAt: a.now().UTC()}

	stage := func(s Stage) { log.WithField("stage", s).Debug("Audit stage") }
	stage(StageStart)

	result.Fetch = a.fetcher.Fetch(ctx, rawURL)
	stage(StageFetched)

	markup, ok := result.Fetch.HTML.Get()
	if !ok || !result.Fetch.Success() {
		stage(StageFetchFailed)
		stage(StageAssembled)
		log.WithField("error", result.Fetch.Error.OrElse("")).Info("Audit finished without page content")
		return result
	}

	pageURL := result.Fetch.FinalURL
	if !pageURL.IsPresent() {
		pageURL = models.Some(rawURL)
	}
	signals := a.extractor.Extract(markup, pageURL)
	result.Signals = models.Some(signals)
	stage(StageExtracted)

	rules := a.analyzer.Evaluate(signals, result.Fetch)
	result.Rules = models.Some(rules)
	stage(StageEvaluated)

	if a.enricher != nil {
		result.Enrichment = a.enricher.Enrich(ctx, signals)
	}
	if result.Enrichment.IsPresent() {
		stage(StageEnriched)
	} else {
		stage(StageEnrichSkipped)
	}
	stage(StageAssembled)

	counts := result.RuleCounts()
	log.WithFields(logrus.Fields{
		"ok":       counts[models.StatusOK],
		"warnings": counts[models.StatusWarning],
		"errors":   counts[models.StatusError],
		"ai":       result.Enrichment.IsPresent(),
		"duration": time.Since(start).String(),
	}).Info("Audit finished")
	return result
}
