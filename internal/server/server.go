// Package server exposes the audit pipeline over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/errs"
	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
	"github.com/MaksimSorokoumov/LP-screening/pkg/reporter"
)

const (
	maxRequestBody  = 1 << 20
	shutdownTimeout = 10 * time.Second
	welcomeMessage  = "Welcome to the LP Screening API!"
)

// Auditor runs one audit; shared reports whether the result was produced
// for a concurrent caller.
type Auditor interface {
	Run(ctx context.Context, rawURL string) (result *models.AuditResult, shared bool)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// MessageResponse is the body of informational replies.
type MessageResponse struct {
	Message string `json:"message"`
}

type auditRequest struct {
	URL string `json:"url"`
}

// Server is the HTTP surface.
type Server struct {
	cfg      config.ServerConfig
	auditor  Auditor
	reporter *reporter.Reporter
	log      *logrus.Entry
	router   chi.Router
}

// New builds the router for auditor.
func New(cfg config.ServerConfig, auditor Auditor, rep *reporter.Reporter, log *logrus.Entry) *Server {
	if rep == nil {
		rep = reporter.New()
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "json"
	}
	s := &Server{
		cfg:      cfg,
		auditor:  auditor,
		reporter: rep,
		log:      logging.Component(log, "server"),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Post("/audit", s.handleAudit)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, http.StatusNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.renderJSON(w, http.StatusOK, MessageResponse{Message: welcomeMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.renderError(w, http.StatusBadRequest, `Invalid request body. Please send a JSON object with a "url" field.`)
		return
	}

	target, err := errs.ValidateTargetURL(req.URL)
	if err != nil {
		s.handleError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = s.cfg.DefaultFormat
	}
	if !config.IsReportFormat(format) {
		s.handleError(w, errs.Invalid("unsupported format %q", format))
		return
	}

	log := logging.FromContext(r.Context(), s.log).WithField("url", target)
	result, shared := s.auditor.Run(r.Context(), target)
	log.WithFields(logrus.Fields{
		"fetched": result.Fetch.Success(),
		"shared":  shared,
	}).Info("Audit served")

	if format == "json" {
		s.renderJSON(w, http.StatusOK, result)
		return
	}

	body, err := s.reporter.GenerateReport(target, result, format)
	if err != nil {
		log.WithError(err).Error("Failed to render report")
		s.renderError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", reporter.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		s.renderError(w, status, appErr.Message)
		return
	}
	s.renderError(w, status, "An unexpected error occurred.")
}

func (s *Server) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.log.WithError(err).Error("Failed to encode response")
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.renderJSON(w, status, ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}
