package logging

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
)

func TestNew(t *testing.T) {
	log, closer, err := New(config.LoggingConfig{Level: "debug", Format: "json", OutputPath: "stderr"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestNewToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lpscreen.log")
	log, closer, err := New(config.LoggingConfig{Level: "info", Format: "text", OutputPath: path})
	require.NoError(t, err)

	log.Info("hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}

func TestNewRejectsBadValues(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)

	_, _, err = New(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	FromContext(ctx, Component(logrus.NewEntry(log), "audit")).Info("stage")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"component":"audit"`)

	assert.Empty(t, RequestID(context.Background()))
}
