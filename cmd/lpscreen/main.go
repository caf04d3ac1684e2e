package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/errs"
	"github.com/MaksimSorokoumov/LP-screening/internal/mcpserver"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
	"github.com/MaksimSorokoumov/LP-screening/internal/server"
	"github.com/MaksimSorokoumov/LP-screening/pkg/audit"
	"github.com/MaksimSorokoumov/LP-screening/pkg/reporter"
	"github.com/MaksimSorokoumov/LP-screening/pkg/utils"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "lpscreen",
	Short: "LP Screening - express landing page audit",
	Long: `LP Screening fetches a landing page, extracts its structural signals,
runs a battery of heuristic checks and, when an OpenAI key is configured,
asks a language model for a readability grade and recommendations.`,
	SilenceUsage: true,
}

var auditCmd = &cobra.Command{
	Use:   "audit [URL...]",
	Short: "Audit one or more landing pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		noAI, _ := cmd.Flags().GetBool("no-ai")
		if !config.IsReportFormat(format) {
			return fmt.Errorf("unsupported format: %s", format)
		}

		urls := make([]string, 0, len(args))
		for _, arg := range args {
			u, err := errs.ValidateTargetURL(arg)
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
			urls = append(urls, u)
		}

		batch := audit.BatchOptions{
			Concurrency:       a.cfg.Batch.Concurrency,
			RequestsPerSecond: a.cfg.Batch.RequestsPerSecond,
		}
		if cmd.Flags().Changed("concurrency") {
			batch.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		}
		if cmd.Flags().Changed("rps") {
			batch.RequestsPerSecond, _ = cmd.Flags().GetFloat64("rps")
		}

		log := a.entry()
		auditor, err := buildAuditor(a.cfg, log, !noAI)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var results []*models.AuditResult
		if len(urls) == 1 {
			results = []*models.AuditResult{auditor.Run(ctx, urls[0])}
		} else {
			results = auditor.RunBatch(ctx, urls, batch)
		}

		r := reporter.New()
		if outputDir != "" {
			return writeReports(cmd, r, results, format, outputDir)
		}

		var report string
		if len(results) == 1 {
			report, err = r.GenerateReport(urls[0], results[0], format)
		} else {
			report, err = r.GenerateBatchReport(results, format)
		}
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}

		if output != "" {
			if err := os.WriteFile(output, []byte(report), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", output)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

var reportExtensions = map[string]string{
	"json":     ".json",
	"yaml":     ".yaml",
	"html":     ".html",
	"markdown": ".md",
}

// writeReports stores one report per audited URL under dir.
func writeReports(cmd *cobra.Command, r *reporter.Reporter, results []*models.AuditResult, format, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, res := range results {
		report, err := r.GenerateReport("", res, format)
		if err != nil {
			return fmt.Errorf("report generation failed for %s: %w", res.URL, err)
		}
		path := filepath.Join(dir, reportFilename(res.URL)+reportExtensions[format])
		if err := os.WriteFile(path, []byte(report), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", path)
	}
	return nil
}

// reportFilename turns a URL into a file name: host and path, no scheme.
func reportFilename(rawURL string) string {
	name := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	name = utils.SanitizeFilename(strings.TrimSuffix(name, "/"))
	if name == "" {
		return "report"
	}
	return name
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if cmd.Flags().Changed("port") {
			a.cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		log := a.entry()
		auditor, err := buildAuditor(a.cfg, log, true)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(a.cfg.Server, audit.NewDeduper(auditor), reporter.New(), log)
		return srv.ListenAndServe(ctx)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the audit_page tool over the Model Context Protocol",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport == "stdio" && (a.cfg.Logging.OutputPath == "" || a.cfg.Logging.OutputPath == "stdout") {
			// stdout carries the protocol.
			a.log.SetOutput(os.Stderr)
		}

		log := a.entry()
		auditor, err := buildAuditor(a.cfg, log, true)
		if err != nil {
			return err
		}

		s, err := mcpserver.New(mcpserver.Config{
			Version:   version,
			Transport: transport,
			Port:      port,
		}, audit.NewDeduper(auditor), reporter.New(), log)
		if err != nil {
			return err
		}
		return s.Run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lpscreen %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	},
}

func appFromFlags(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return loadApp(configPath, verbose)
}

func init() {
	// Audit command flags
	auditCmd.Flags().String("format", "json", "Report format (json, yaml, html, markdown)")
	auditCmd.Flags().String("output", "", "Output file for the report")
	auditCmd.Flags().String("output-dir", "", "Directory receiving one report file per URL")
	auditCmd.Flags().Int("concurrency", 4, "Audits running at once when several URLs are given")
	auditCmd.Flags().Float64("rps", 2, "Audit starts per second when several URLs are given")
	auditCmd.Flags().Bool("no-ai", false, "Skip the AI review even when an API key is configured")

	// Serve command flags
	serveCmd.Flags().Int("port", 8000, "Port to listen on (overrides server.port)")

	// MCP command flags
	mcpCmd.Flags().String("transport", "stdio", "MCP transport (stdio, sse)")
	mcpCmd.Flags().Int("port", 8080, "Port for the SSE transport")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
