package audit

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
	"github.com/MaksimSorokoumov/LP-screening/pkg/utils"
)

// Runner is anything that audits one URL.
type Runner interface {
	Run(ctx context.Context, rawURL string) *models.AuditResult
}

// Deduper collapses concurrent audits of the same normalized URL into one
// pipeline run. Nothing is kept once the run returns.
type Deduper struct {
	runner Runner
	group  singleflight.Group
}

// NewDeduper wraps runner.
func NewDeduper(runner Runner) *Deduper {
	return &Deduper{runner: runner}
}

// Run audits rawURL, sharing the result with callers that asked for the
// same normalized URL while it was in flight. shared reports whether the
// result came from another caller's run.
func (d *Deduper) Run(ctx context.Context, rawURL string) (*models.AuditResult, bool) {
	key := utils.NormalizeURL(rawURL)
	v, _, shared := d.group.Do(key, func() (interface{}, error) {
		// The shared run outlives any single caller's cancellation.
		return d.runner.Run(context.WithoutCancel(ctx), rawURL), nil
	})
	return v.(*models.AuditResult), shared
}
