package fetcher

import (
	"context"
	"time"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

// PageFetcher downloads a single page. Implementations report every failure
// inside the returned FetchResult and never return a Go error.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) models.FetchResult
}

// Options contains configuration for the fetcher
type Options struct {
	Timeout              time.Duration // Whole request including body
	UserAgent            string
	FollowRedirects      bool
	MaxRedirects         int   // Hops followed before giving up
	MaxBodyBytes         int64 // Larger bodies are truncated
	BlockPrivateNetworks bool  // Refuse to dial private and reserved addresses
	CheckRobotsTxt       bool  // Probe robots.txt after a successful fetch
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Timeout:         10 * time.Second,
		UserAgent:       defaultUserAgent,
		FollowRedirects: true,
		MaxRedirects:    10,
		MaxBodyBytes:    10 << 20,
	}
}

// OptionsFromConfig maps the fetcher config section onto Options, keeping
// defaults for unset values.
func OptionsFromConfig(cfg config.FetcherConfig) Options {
	opts := DefaultOptions()
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}
	opts.FollowRedirects = cfg.FollowRedirects
	if cfg.MaxRedirects > 0 {
		opts.MaxRedirects = cfg.MaxRedirects
	}
	if cfg.MaxBodyBytes > 0 {
		opts.MaxBodyBytes = cfg.MaxBodyBytes
	}
	opts.BlockPrivateNetworks = cfg.BlockPrivateNetworks
	opts.CheckRobotsTxt = cfg.CheckRobotsTxt
	return opts
}
