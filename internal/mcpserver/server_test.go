package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

type stubAuditor struct {
	calls []string
}

func (s *stubAuditor) Run(ctx context.Context, rawURL string) (*models.AuditResult, bool) {
	s.calls = append(s.calls, rawURL)
	return &models.AuditResult{
		URL:   rawURL,
		Fetch: models.FetchSucceeded("<html></html>", 200, rawURL, true),
		Rules: models.Some([]models.RuleResult{
			{Name: "SSL", Status: models.StatusOK, Message: "ok"},
		}),
	}, false
}

func callTool(t *testing.T, s *Server, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = toolAuditURL
	req.Params.Arguments = args
	result, err := s.handleAuditPage(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func newTestServer(t *testing.T, a Auditor) *Server {
	t.Helper()
	s, err := New(Config{Version: "test", Transport: "stdio"}, a, nil, logging.Discard())
	require.NoError(t, err)
	return s
}

func TestNewRequiresAuditor(t *testing.T) {
	_, err := New(Config{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestAuditPageJSON(t *testing.T) {
	a := &stubAuditor{}
	result := callTool(t, newTestServer(t, a), map[string]any{"url": "https://acme.example"})

	assert.False(t, result.IsError)
	assert.Equal(t, []string{"https://acme.example"}, a.calls)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	assert.Equal(t, "https://acme.example", decoded["url"])
	assert.Len(t, decoded["rules"], 1)
}

func TestAuditPageMarkdown(t *testing.T) {
	result := callTool(t, newTestServer(t, &stubAuditor{}), map[string]any{
		"url":    "https://acme.example",
		"format": "markdown",
	})

	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "# Landing Page Audit: https://acme.example")
}

func TestAuditPageRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing url", map[string]any{}, "url is required"},
		{"bad scheme", map[string]any{"url": "file:///etc/passwd"}, "unsupported url scheme"},
		{"bad format", map[string]any{"url": "https://acme.example", "format": "pdf"}, "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &stubAuditor{}
			result := callTool(t, newTestServer(t, a), tt.args)

			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
			assert.Empty(t, a.calls)
		})
	}
}

func TestRunUnknownTransport(t *testing.T) {
	s, err := New(Config{Transport: "carrier-pigeon"}, &stubAuditor{}, nil, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, s.Run(), "unknown transport")
}
