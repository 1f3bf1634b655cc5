// Package server exposes a diagram session over HTTP.
//
// Routes:
//
//	GET    /healthz                 liveness and synchronizer status
//	GET    /metrics                 Prometheus metrics
//	GET    /api/snapshot            current snapshot as JSON
//	POST   /api/events              dispatch one event or an array of events
//	GET    /api/links               links as JSON
//	DELETE /api/links/{key}         remove a link
//	GET    /api/diagram.svg         static SVG of the editor view
//	GET    /api/export/{format}     Graphviz export (svg, png, pdf, dot)
//	POST   /api/reload              re-read the catalogs
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/entitydiagram/pkg/cache"
	"github.com/matzehuels/entitydiagram/pkg/catalog"
	"github.com/matzehuels/entitydiagram/pkg/change"
	"github.com/matzehuels/entitydiagram/pkg/editor"
	"github.com/matzehuels/entitydiagram/pkg/errors"
	"github.com/matzehuels/entitydiagram/pkg/observability"
	"github.com/matzehuels/entitydiagram/pkg/persist"
	"github.com/matzehuels/entitydiagram/pkg/render"
	"github.com/matzehuels/entitydiagram/pkg/session"
)

// maxEventBody bounds POST /api/events request bodies.
const maxEventBody = 1 << 20

// Server serves one session.
type Server struct {
	sess    *session.Session
	sync    *persist.Synchronizer
	source  catalog.Source
	metrics *Metrics
	logger  *log.Logger
	cache   cache.Cache
	keyer   cache.Keyer
}

// Option configures a [Server].
type Option func(*Server)

// WithSynchronizer reports the synchronizer's state on /healthz.
func WithSynchronizer(s *persist.Synchronizer) Option { return func(srv *Server) { srv.sync = s } }

// WithSource enables POST /api/reload.
func WithSource(src catalog.Source) Option { return func(srv *Server) { srv.source = src } }

// WithMetrics serves m on /metrics and records request metrics.
func WithMetrics(m *Metrics) Option { return func(srv *Server) { srv.metrics = m } }

// WithCache reuses rendered exports while the snapshot is unchanged.
func WithCache(c cache.Cache) Option { return func(srv *Server) { srv.cache = c } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(srv *Server) { srv.logger = l } }

// New creates a server for sess.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		sess:   sess,
		logger: log.New(io.Discard),
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/snapshot", s.handleSnapshot)
		api.Post("/events", s.handleEvents)
		api.Get("/links", s.handleLinks)
		api.Delete("/links/{key}", s.handleDeleteLink)
		api.Get("/diagram.svg", s.handleSVG)
		api.Get("/export/{format}", s.handleExport)
		api.Post("/reload", s.handleReload)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// =============================================================================
// Handlers
// =============================================================================

type healthResponse struct {
	Status    string     `json:"status"`
	Entities  int        `json:"entities"`
	Links     int        `json:"links"`
	Pending   bool       `json:"syncPending"`
	LastWrite *time.Time `json:"lastWrite,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Snapshot()
	resp := healthResponse{Status: "ok", Entities: len(snap.Entities), Links: len(snap.Links)}
	if s.sync != nil {
		st := s.sync.Status()
		resp.Pending = st.Pending
		if !st.LastWrite.IsZero() {
			resp.LastWrite = &st.LastWrite
		}
		if st.LastErr != nil {
			resp.Status = "degraded"
			resp.LastError = st.LastErr.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody+1))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(body) > maxEventBody {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "request body too large"))
		return
	}
	events, err := change.UnmarshalAll(body)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateEvents(events); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.DispatchAll(events...))
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot().Links)
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, ok := s.sess.Snapshot().FindLink(key); !ok {
		writeError(w, errors.New(errors.ErrCodeLinkNotFound, "link %q not found", key))
		return
	}
	s.sess.Dispatch(change.LinkRemoved{Key: key})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", render.FormatSVG.ContentType())
	_, _ = w.Write(render.SVG(editor.New(s.sess).View()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	opts := render.Options{
		Pinned:    r.URL.Query().Get("pinned") == "true",
		Inherited: r.URL.Query().Get("inherited") == "true",
	}

	ctx := r.Context()
	snap := s.sess.Snapshot()
	hash, err := cache.HashJSON(snap)
	if err != nil {
		writeError(w, err)
		return
	}
	key := s.keyer.RenderKey(hash, cache.RenderKeyOpts{
		Format: string(f),
		Layout: fmt.Sprintf("pinned=%t,inherited=%t", opts.Pinned, opts.Inherited),
	})
	etag := `"` + cache.Hash([]byte(key))[:32] + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, hit, _ := s.cache.Get(ctx, key)
	if hit {
		observability.Cache().OnCacheHit(ctx, "render")
	} else {
		observability.Cache().OnCacheMiss(ctx, "render")
		data, err = render.Export(ctx, snap, f, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.cache.Set(ctx, key, data, cache.RenderTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
	}
	w.Header().Set("Content-Type", f.ContentType())
	_, _ = w.Write(data)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "no catalog source configured"))
		return
	}
	snap, err := s.sess.Reload(r.Context(), s.source)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// validateEvents checks keys received from outside the process.
func validateEvents(events []change.Event) error {
	for _, e := range events {
		var keys []string
		switch ev := e.(type) {
		case change.NodePositionChanged:
			keys = []string{ev.Key}
		case change.LinkAdded:
			keys = []string{ev.Key, ev.From, ev.To}
		case change.LinkModified:
			keys = []string{ev.Key, ev.NewFrom, ev.NewTo}
		case change.LinkRemoved:
			keys = []string{ev.Key}
		case change.LinkTextChanged:
			keys = []string{ev.Key}
		}
		for _, k := range keys {
			if err := errors.ValidateKey(e.Type(), k); err != nil {
				return err
			}
		}
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidEvent, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidKey:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeEntityNotFound, errors.ErrCodeLinkNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout, errors.ErrCodeRateLimited:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// logRequests logs each request at debug level and records request metrics
// under the matched route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d.Round(time.Microsecond))
		if s.metrics != nil {
			s.metrics.observeRequest(r.Method, route, status, d)
		}
	})
}
