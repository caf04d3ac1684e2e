package enricher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

// ErrNotConfigured is returned by New when no API key is available.
var ErrNotConfigured = errors.New("enrichment is not configured: missing API key")

// chatModel is the part of a langchaingo model the enricher needs.
type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Config holds enrichment settings.
type Config struct {
	APIKey           string
	Model            string
	BaseURL          string
	Timeout          time.Duration
	Temperature      float64
	MaxExcerptTokens int
}

// ConfigFromApp maps the apis.openai config section.
func ConfigFromApp(cfg config.OpenAIConfig) Config {
	return Config{
		APIKey:           cfg.APIKey,
		Model:            cfg.Model,
		BaseURL:          cfg.BaseURL,
		Timeout:          cfg.Timeout,
		Temperature:      cfg.Temperature,
		MaxExcerptTokens: cfg.MaxExcerptTokens,
	}
}

// Enricher asks a chat model for a readability grade and recommendations.
type Enricher struct {
	model  chatModel
	cfg    Config
	budget *tokenBudget
	log    *logrus.Entry
}

// New builds an Enricher backed by the OpenAI chat API.
func New(cfg Config, log *logrus.Entry) (*Enricher, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return NewWithModel(llm, cfg, log), nil
}

// NewWithModel builds an Enricher around an existing chat model.
func NewWithModel(model chatModel, cfg Config, log *logrus.Entry) *Enricher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Enricher{
		model:  model,
		cfg:    cfg,
		budget: newTokenBudget(),
		log:    logging.Component(log, "enricher"),
	}
}

// Enrich returns the model's review of the page, or absent when the model
// cannot be reached in time or answers with nothing usable.
func (e *Enricher) Enrich(ctx context.Context, signals models.PageSignals) models.Optional[models.Enrichment] {
	log := logging.FromContext(ctx, e.log)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	excerpt := e.budget.excerpt(signals.MainContent.OrElse(""), e.cfg.MaxExcerptTokens)
	prompt := userPrompt(signals, excerpt)
	log.WithField("prompt_tokens", e.budget.count(systemPrompt)+e.budget.count(prompt)).Debug("Requesting enrichment")

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	start := time.Now()
	resp, err := e.model.GenerateContent(ctx, messages, llms.WithTemperature(e.cfg.Temperature))
	if err != nil {
		log.WithError(err).Warn("Enrichment call failed")
		return models.None[models.Enrichment]()
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		log.Warn("Enrichment returned an empty answer")
		return models.None[models.Enrichment]()
	}

	result := parseAnswer(resp.Choices[0].Content)
	log.WithFields(logrus.Fields{
		"readability":     result.Readability,
		"recommendations": len(result.Recommendations),
		"duration":        time.Since(start).String(),
	}).Debug("Enrichment received")
	return models.Some(result)
}
