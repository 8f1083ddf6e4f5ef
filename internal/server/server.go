// Package server exposes the extraction pipeline over HTTP.
//
// Routes:
//
//	GET  /health                  liveness probe
//	GET  /version                 build information
//	POST /v1/extract              image body in, map document out
//	POST /v1/inspect              image body in, statistics and warnings out
//
// /v1/extract and /v1/inspect accept the query parameters name, floor,
// policy and refresh; /v1/extract also accepts format (xml, json or dot).
// Every response carries an X-Request-ID header, taken from the request when
// present.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/pathgraph/pkg/buildinfo"
	"github.com/matzehuels/pathgraph/pkg/config"
	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/export"
	"github.com/matzehuels/pathgraph/pkg/extract"
	"github.com/matzehuels/pathgraph/pkg/observability"
	"github.com/matzehuels/pathgraph/pkg/pipeline"
)

// MaxUploadBytes bounds the size of an uploaded image.
const MaxUploadBytes = 32 << 20

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// Response headers describing the extracted graph.
const (
	HeaderNodes    = "X-Pathgraph-Nodes"
	HeaderEdges    = "X-Pathgraph-Edges"
	HeaderWarnings = "X-Pathgraph-Warnings"
	HeaderCache    = "X-Pathgraph-Cache"
)

// Server handles API requests with a shared runner.
type Server struct {
	runner *pipeline.Runner
	cfg    *config.Config
	logger *log.Logger
}

// New creates a server. A nil cfg uses the defaults.
func New(runner *pipeline.Runner, cfg *config.Config, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, cfg: cfg, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusOK, map[string]any{"ok": true, "service": "pathgraph"})
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusOK, map[string]string{
			"version": buildinfo.Version,
			"commit":  buildinfo.Commit,
			"built":   buildinfo.Date,
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/inspect", s.handleInspect)
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.DefaultFormat
		if len(s.cfg.Output.Formats) > 0 {
			format = s.cfg.Output.Formats[0]
		}
	}
	if err := export.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", export.ContentTypes[format])
	h.Set(HeaderNodes, strconv.Itoa(res.Stats.NodeCount))
	h.Set(HeaderEdges, strconv.Itoa(res.Stats.EdgeCount))
	h.Set(HeaderWarnings, strconv.Itoa(len(res.Report.Issues)))
	h.Set(HeaderCache, cacheStatus(res.CacheHit))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Artifacts[format]); err != nil {
		s.logWriteError(r, err)
	}
}

// inspectResponse is the body of /v1/inspect.
type inspectResponse struct {
	Name         string          `json:"name,omitempty"`
	Floor        int             `json:"floor"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Format       string          `json:"format"`
	Nodes        int             `json:"nodes"`
	Edges        int             `json:"edges"`
	Cached       bool            `json:"cached"`
	Issues       []extract.Issue `json:"issues"`
	Unrecognized int             `json:"unrecognized"`
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Extract(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	issues := res.Report.Issues
	if issues == nil {
		issues = []extract.Issue{}
	}
	s.writeJSON(w, r, http.StatusOK, inspectResponse{
		Name:         res.Graph.Name,
		Floor:        res.Graph.Floor,
		Width:        res.Stats.Width,
		Height:       res.Stats.Height,
		Format:       res.Format,
		Nodes:        res.Stats.NodeCount,
		Edges:        res.Stats.EdgeCount,
		Cached:       res.CacheHit,
		Issues:       issues,
		Unrecognized: res.Report.Unrecognized,
	})
}

// options builds pipeline options from the config and the query string.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()

	floor := 0
	if v := q.Get("floor"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return pipeline.Options{}, perrors.New(perrors.ErrCodeInvalidInput, "floor must be a non-negative integer, got %q", v)
		}
		floor = n
	}
	name := q.Get("name")
	if name != "" {
		if err := perrors.ValidateMapName(name); err != nil {
			return pipeline.Options{}, err
		}
	}

	opts := s.cfg.PipelineOptions(name, floor)
	if v := q.Get("policy"); v != "" {
		opts.Policy = v
	}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return pipeline.Options{}, perrors.New(perrors.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = refresh
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	return opts, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errTooLarge
		}
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "request body must contain an image")
	}
	return data, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Responses
// =============================================================================

var errTooLarge = perrors.New(perrors.ErrCodeInvalidInput, "image exceeds %d bytes", MaxUploadBytes)

type errorBody struct {
	Error struct {
		Code    perrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := perrors.HTTPStatus(err)
	if errors.Is(err, errTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, context.Canceled) {
		// The client went away; nobody reads the response.
		status = 499
	}

	var body errorBody
	body.Error.Code = perrors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = perrors.ErrCodeInternal
	}
	body.Error.Message = perrors.UserMessage(err)
	body.RequestID = RequestID(r.Context())

	if status >= 500 {
		s.logger.Error("request failed", "request_id", body.RequestID, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, r, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logWriteError(r, err)
	}
}

// logWriteError records a response body that did not reach the client. The
// status line is already sent, so there is nothing left to report to it.
func (s *Server) logWriteError(r *http.Request, err error) {
	s.logger.Debug("write response", "request_id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID returns the ID assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID assigns a request ID and reports the request to the HTTP hooks.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		w.Header().Set("Server", buildinfo.UserAgent())

		ctx := context.WithValue(r.Context(), requestIDKey, id)
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
	})
}
