// Package server exposes the layout pipeline over HTTP.
//
// Endpoints:
//
//	GET /healthz                 liveness and version
//	GET /settings                effective settings for the query
//	GET /graph?format=json       laid out graph (json, text, dot, svg, png, pdf)
//	GET /graph/commits/{oid}     one commit with the branch owning it
//
// /graph and /graph/commits accept the query parameters model, remote, order,
// forward, max_count and refresh, which override the server's settings for
// that request. Every response carries an X-Request-ID header.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/gitlanes/pkg/buildinfo"
	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/gitgraph"
	"github.com/matzehuels/gitlanes/pkg/observability"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// DefaultRequestTimeout bounds a single request.
const DefaultRequestTimeout = 60 * time.Second

const requestIDHeader = "X-Request-ID"

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

// Server serves layouts of one repository.
type Server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
}

// New creates a server. base selects the repository and default settings.
func New(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, base: base, logger: logger}
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// CommitResponse is the body of /graph/commits/{oid}.
type CommitResponse struct {
	Commit gitgraph.Commit  `json:"commit"`
	Index  int              `json:"index"`
	Branch *gitgraph.Branch `json:"branch,omitempty"`
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/settings", s.handleSettings)
	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.handleGraph)
		r.Get("/commits/{oid}", s.handleCommit)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	def, err := applyQuery(s.base.Settings, r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := def.Compile(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts, err := s.options(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", strconv.Quote(result.Fingerprint))
	w.Header().Set("X-Cache", cacheStatus(result.CacheHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	src, err := pipeline.Open(opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Layout(r.Context(), src, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	oid := chi.URLParam(r, "oid")
	i, ok := result.Graph.Indices[oid]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "commit %s is not in the graph", oid))
		return
	}
	w.Header().Set("X-Cache", cacheStatus(result.CacheHit))
	writeJSON(w, http.StatusOK, CommitResponse{
		Commit: result.Graph.Commits[i],
		Index:  i,
		Branch: result.Graph.Owner(i),
	})
}

func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.base
	def, err := applyQuery(s.base.Settings, q)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts.Settings = def
	opts.Formats = []string{format}
	opts.Logger = loggerFrom(r.Context(), s.logger)
	if v := q.Get("refresh"); v != "" {
		if opts.Refresh, err = strconv.ParseBool(v); err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "refresh: %q is not a boolean", v)
		}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// applyQuery overrides def with the settings named in q.
func applyQuery(def settings.Def, q map[string][]string) (settings.Def, error) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	parseBool := func(k string, dst *bool) error {
		v := get(k)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", k, v)
		}
		*dst = b
		return nil
	}

	if v := get("model"); v != "" {
		def.Model = v
		def.Branches = nil
	}
	if v := get("order"); v != "" {
		def.BranchOrder = v
	}
	if err := parseBool("remote", &def.IncludeRemote); err != nil {
		return def, err
	}
	if err := parseBool("forward", &def.Forward); err != nil {
		return def, err
	}
	if v := get("max_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return def, errors.New(errors.ErrCodeInvalidInput, "max_count: %q is not an integer", v)
		}
		def.MaxCount = n
	}
	return def, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if r.Context().Err() == context.DeadlineExceeded {
		status = http.StatusGatewayTimeout
	}
	logger := loggerFrom(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	} else {
		logger.Debug("request rejected", "err", err)
	}
	writeJSON(w, status, ErrorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog attaches a request scoped logger and reports each request to the
// HTTP hooks.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestIDFrom(r.Context())
		logger := s.logger.With("request_id", id)
		ctx := context.WithValue(r.Context(), loggerKey, logger)

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, id, r.Method, r.URL.Path)
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, id, r.Method, r.URL.Path, status, time.Since(start))
		logger.Debug("served", "method", r.Method, "path", r.URL.Path, "status", status, "bytes", ww.BytesWritten())
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func loggerFrom(ctx context.Context, fallback *log.Logger) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return fallback
}
