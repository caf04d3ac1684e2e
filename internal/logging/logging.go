// Package logging builds the logrus logger shared by all components and
// carries per-request fields through a context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
)

// New returns a logger configured from cfg. The returned closer releases the
// output file when output_path names one; it is a no-op otherwise.
func New(cfg config.LoggingConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	default:
		return nil, nil, fmt.Errorf("invalid logging.format %q", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	switch cfg.OutputPath {
	case "", "stdout":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
		closer = f
	}

	return log, closer, nil
}

// Discard returns an entry that drops everything; used by tests and as the
// fallback when a component is built without a logger.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// Component tags entry with the component name.
func Component(entry *logrus.Entry, name string) *logrus.Entry {
	if entry == nil {
		entry = Discard()
	}
	return entry.WithField("component", name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext adds the request ID of ctx to entry when one is set.
func FromContext(ctx context.Context, entry *logrus.Entry) *logrus.Entry {
	if id := RequestID(ctx); id != "" {
		return entry.WithField("request_id", id)
	}
	return entry
}
