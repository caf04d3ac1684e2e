// Package mcpserver exposes the audit pipeline as an MCP tool.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/errs"
	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
	"github.com/MaksimSorokoumov/LP-screening/pkg/reporter"
)

const (
	serverName   = "lpscreen"
	toolAuditURL = "audit_page"
)

// Auditor runs one audit.
type Auditor interface {
	Run(ctx context.Context, rawURL string) (result *models.AuditResult, shared bool)
}

// Config holds MCP server settings.
type Config struct {
	Version   string
	Transport string // "stdio" or "sse"
	Port      int
}

// Server wraps the MCP server with the audit tool registered.
type Server struct {
	mcpServer *server.MCPServer
	cfg       Config
	auditor   Auditor
	reporter  *reporter.Reporter
	log       *logrus.Entry
}

// New creates the MCP server and registers its tools.
func New(cfg Config, auditor Auditor, rep *reporter.Reporter, log *logrus.Entry) (*Server, error) {
	if auditor == nil {
		return nil, fmt.Errorf("auditor is required")
	}
	if rep == nil {
		rep = reporter.New()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		mcpServer: server.NewMCPServer(serverName, cfg.Version, server.WithLogging()),
		cfg:       cfg,
		auditor:   auditor,
		reporter:  rep,
		log:       logging.Component(log, "mcp"),
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	auditTool := mcp.NewTool(toolAuditURL,
		mcp.WithDescription("Audit a landing page: fetch it, extract structural signals, run the heuristic checks and, when configured, an AI readability review"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL of the page to audit"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: json (default), yaml, html or markdown"),
		),
	)
	s.mcpServer.AddTool(auditTool, s.handleAuditPage)
	s.log.Debugf("Registered MCP tool %s", toolAuditURL)
}

// Run starts the MCP server with the configured transport.
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio", "":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		return server.NewSSEServer(s.mcpServer).Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

func (s *Server) handleAuditPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := errs.ValidateTargetURL(request.GetString("url", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := request.GetString("format", "json")
	if !config.IsReportFormat(format) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q (supported: json, yaml, html, markdown)", format)), nil
	}

	result, shared := s.auditor.Run(ctx, target)
	s.log.WithFields(logrus.Fields{
		"url":     target,
		"fetched": result.Fetch.Success(),
		"shared":  shared,
	}).Info("Audit served")

	if format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	body, err := s.reporter.GenerateReport(target, result, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
	}
	return mcp.NewToolResultText(body), nil
}
