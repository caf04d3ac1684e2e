package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
)

func TestBuildAuditor(t *testing.T) {
	cfg := config.Default()
	cfg.APIs.OpenAI.APIKey = ""

	a, err := buildAuditor(cfg, logging.Discard(), true)
	require.NoError(t, err)
	assert.NotNil(t, a)

	cfg.Rules.Language = "de"
	_, err = buildAuditor(cfg, logging.Discard(), false)
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"audit", "serve", "mcp", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestAuditCommand(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>CLI page</title></head><body><h1>One</h1></body></html>`))
	}))
	defer page.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"audit", page.URL, "--format", "markdown", "--no-ai"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "# Landing Page Audit: "+page.URL)
	assert.Contains(t, out.String(), "| H1 | OK |")
}

func TestAuditCommandRejectsBadURL(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"audit", "not a url", "--no-ai"})
	defer rootCmd.SetArgs(nil)

	assert.Error(t, rootCmd.ExecuteContext(context.Background()))
}

func TestReportFilename(t *testing.T) {
	tests := map[string]string{
		"https://acme.example/":              "acme.example",
		"http://acme.example:8080/a/b?q=1":   "acme.example_8080_a_b_q=1",
		"https://acme.example/pricing#plans": "acme.example_pricing#plans",
		"https://":                           "report",
	}
	for in, want := range tests {
		assert.Equal(t, want, reportFilename(in), in)
	}
}
