package audit

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

// BatchOptions bounds a multi-URL run.
type BatchOptions struct {
	Concurrency       int     // audits in flight at once
	RequestsPerSecond float64 // audit starts per second; <= 0 disables pacing
}

// RunBatch audits every URL independently and returns the results in input
// order. Audits never fail, so the only early stop is ctx being cancelled,
// in which case the remaining URLs are reported as failed fetches.
func (a *Auditor) RunBatch(ctx context.Context, urls []string, opts BatchOptions) []*models.AuditResult {
	results := make([]*models.AuditResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = int(math.Max(1, math.Ceil(opts.RequestsPerSecond)))
	}
	limiter := rate.NewLimiter(limit, burst)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				results[i] = a.cancelled(u, err)
				return nil
			}
			results[i] = a.Run(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	a.log.WithField("urls", len(urls)).Info("Batch finished")
	return results
}

func (a *Auditor) cancelled(rawURL string, err error) *models.AuditResult {
	return &models.AuditResult{
		URL:       rawURL,
		AuditedAt: a.now().UTC(),
		Fetch:     models.FetchFailed("Request error: "+err.Error(), models.None[int](), false),
	}
}
