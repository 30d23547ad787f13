// Package server exposes the extraction pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz         liveness check
//	GET  /version         build information
//	POST /v1/plans        resolve a root without extracting
//	POST /v1/extractions  run the pipeline and return the report
//
// Requests carry pipeline options as JSON. Unset fields fall back to the
// server defaults. A request destination must lie below the default
// destination when one is configured. Archive and manifest failures are part of a successful
// report; only invalid input, a missing root or cancellation produce an
// error status.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"

	"github.com/matzehuels/mavenbuild/pkg/buildinfo"
	"github.com/matzehuels/mavenbuild/pkg/errors"
	"github.com/matzehuels/mavenbuild/pkg/observability"
	"github.com/matzehuels/mavenbuild/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the extraction API.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
}

// New creates a server. defaults supplies the filesystem and the options
// used when a request leaves a field unset.
func New(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	if defaults.Fs == nil {
		defaults.Fs = afero.NewOsFs()
	}
	return &Server{runner: runner, defaults: defaults, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/version", s.version)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/plans", s.plan)
		r.Post("/extractions", s.extract)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.runner.Scan(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// decode reads pipeline options from the request body and fills unset
// fields from the server defaults.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var req pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}

	d := s.defaults
	if req.Destination == "" {
		req.Destination = d.Destination
	} else if d.Destination != "" {
		if err := errors.ValidateWithin(d.Destination, req.Destination); err != nil {
			return req, err
		}
	}
	if req.Workers == 0 {
		req.Workers = d.Workers
	}
	if req.BufferSize == 0 {
		req.BufferSize = d.BufferSize
	}
	if req.BundledGroupID == "" {
		req.BundledGroupID = d.BundledGroupID
	}
	if req.Newline == "" {
		req.Newline = d.Newline
	}
	req.Fs = d.Fs
	req.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))
	return req, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

// statusOf maps an error to an HTTP status and a public error code.
func statusOf(err error) (int, errors.Code) {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, errors.ErrCodeInternal
	}
	switch code := errors.GetCode(err); code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest, code
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound, code
	default:
		return http.StatusInternalServerError, errors.ErrCodeInternal
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

// observe reports requests to the HTTP hooks and logs them. It wraps
// middleware.Recoverer, so recovered panics are reported as 500 responses.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()

		defer func() {
			route := routePattern(r)
			hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
			s.logger.Debug("request",
				"method", r.Method,
				"route", route,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond),
				"request_id", middleware.GetReqID(r.Context()))
		}()

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
	})
}

// routePattern returns the matched chi pattern, or the raw path before
// routing has happened.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
