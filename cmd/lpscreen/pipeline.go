package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/pkg/analyzer"
	"github.com/MaksimSorokoumov/LP-screening/pkg/audit"
	"github.com/MaksimSorokoumov/LP-screening/pkg/enricher"
	"github.com/MaksimSorokoumov/LP-screening/pkg/extractor"
	"github.com/MaksimSorokoumov/LP-screening/pkg/fetcher"
)

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	closer io.Closer
}

func loadApp(configPath string, verbose bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, closer: closer}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

// buildAuditor wires fetcher, extractor, analyzer and, when an API key is
// configured and withAI is set, the enricher.
func buildAuditor(cfg *config.Config, log *logrus.Entry, withAI bool) (*audit.Auditor, error) {
	lang, err := analyzer.ParseLanguage(cfg.Rules.Language)
	if err != nil {
		return nil, err
	}

	f := fetcher.New(fetcher.OptionsFromConfig(cfg.Fetcher), log)
	ex := extractor.New(extractor.WithLogger(log))
	an := analyzer.NewWithConfig(&analyzer.Config{
		Thresholds: analyzer.DefaultThresholds(),
		Language:   lang,
	})

	opts := []audit.Option{audit.WithLogger(log)}
	if withAI {
		en, err := enricher.New(enricher.ConfigFromApp(cfg.APIs.OpenAI), log)
		switch {
		case errors.Is(err, enricher.ErrNotConfigured):
			log.Info("No OpenAI API key configured; AI review disabled")
		case err != nil:
			return nil, fmt.Errorf("failed to create enricher: %w", err)
		default:
			opts = append(opts, audit.WithEnricher(en))
		}
	}

	return audit.New(f, ex, an, opts...), nil
}

func (a *app) entry() *logrus.Entry {
	return logrus.NewEntry(a.log)
}
