package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/tmy3-convert/internal/domain"
	"github.com/couchcryptid/tmy3-convert/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Converter runs a single file conversion.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputDir string) (pipeline.Report, error)
}

// convertRequest is the body accepted by POST /convert.
type convertRequest struct {
	Input     string `json:"input"`
	OutputDir string `json:"output_dir"`
}

// Server exposes conversion, health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /convert, /healthz, /readyz, and /metrics routes.
// Paths posted to /convert must stay within roots.
func NewServer(addr string, conv Converter, ready sharedobs.ReadinessChecker, roots Roots, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("POST /convert", s.handleConvert(conv, roots))
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleConvert(conv Converter, roots Roots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req convertRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Input == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input is required"})
			return
		}

		input, err := confine(roots.Input, req.Input)
		if err != nil {
			s.logger.Warn("rejected convert request", "input", req.Input, "error", err)
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "input " + err.Error()})
			return
		}
		var outputDir string
		if req.OutputDir != "" {
			if outputDir, err = confine(roots.Output, req.OutputDir); err != nil {
				s.logger.Warn("rejected convert request", "output_dir", req.OutputDir, "error", err)
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "output_dir " + err.Error()})
				return
			}
		}

		report, err := conv.Convert(r.Context(), input, outputDir)
		switch {
		case errors.Is(err, pipeline.ErrInputNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case err != nil:
			s.logger.Error("convert request failed", "input", req.Input, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, redact(report))
		}
	}
}

// redact drops source line content from skipped rows; clients get the line
// number and reason only.
func redact(report pipeline.Report) pipeline.Report {
	skipped := make([]domain.RowSkip, len(report.Skipped))
	for i, sk := range report.Skipped {
		sk.Content = ""
		skipped[i] = sk
	}
	report.Skipped = skipped
	return report
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
