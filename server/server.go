// Package server exposes rendered posts over the /wp-blocks/v1 REST surface
// with a TTL response cache in front of the conversion pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wbc/block"
	"wbc/render"
	"wbc/source"
	"wbc/style"
)

const shutdownTimeout = 5 * time.Second

// Server wires the conversion pipeline to HTTP. The pipeline itself stays
// cache-free, all caching lives here.
type Server struct {
	addr    string
	content source.ContentSource
	conv    *render.Converter
	agg     *style.Aggregator
	theme   source.ThemeStyleProvider
	cache   *responseCache
	metrics *serverMetrics
	log     *zap.Logger
}

// New assembles a server. theme may be nil when no theme styles are
// configured, cacheTTL <= 0 disables response caching.
func New(addr string, content source.ContentSource, conv *render.Converter, agg *style.Aggregator, theme source.ThemeStyleProvider, cacheTTL time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		addr:    addr,
		content: content,
		conv:    conv,
		agg:     agg,
		theme:   theme,
		cache:   newResponseCache(cacheTTL),
		metrics: newServerMetrics(),
		log:     log.Named("server"),
	}
}

// Handler builds the route tree. Exposed separately from Run so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)

	r.Route("/wp-blocks/v1", func(r chi.Router) {
		r.Get("/content/{id}", s.handleContent)
		r.Delete("/content/{id}", s.handleInvalidate)
		r.Get("/block-types", s.handleBlockTypes)
		r.Get("/assets/{id}", s.handleAssets)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", zap.String("address", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if serr := srv.Shutdown(sctx); serr != nil {
		err = multierr.Append(err, fmt.Errorf("shutdown: %w", serr))
	}
	err = multierr.Append(err, <-errCh)
	return err
}

// apiError is the wire error shape.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// contentResponse is the /content/{id} payload.
type contentResponse struct {
	PostID       int                 `json:"post_id"`
	PostTitle    string              `json:"post_title"`
	Blocks       []*block.RenderNode `json:"blocks"`
	GlobalStyles globalStyles        `json:"global_styles"`
	Scripts      []*style.ScriptRef  `json:"scripts"`
}

type globalStyles struct {
	ThemeJSON    map[string]string `json:"theme_json"`
	CSSVariables map[string]string `json:"css_variables"`
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.postID(w, r)
	if !ok {
		return
	}

	body, status, err, hit := s.cache.Do("content/"+strconv.Itoa(id), func() ([]byte, int, error) {
		resp, _, err := s.renderPost(r.Context(), id)
		if err != nil {
			return nil, 0, err
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return nil, 0, err
		}
		return data, http.StatusOK, nil
	})
	s.finish(w, r, body, status, err, hit)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	id, ok := s.postID(w, r)
	if !ok {
		return
	}

	body, status, err, hit := s.cache.Do("assets/"+strconv.Itoa(id), func() ([]byte, int, error) {
		_, bundle, err := s.renderPost(r.Context(), id)
		if err != nil {
			return nil, 0, err
		}
		data, err := json.Marshal(bundle)
		if err != nil {
			return nil, 0, err
		}
		return data, http.StatusOK, nil
	})
	s.finish(w, r, body, status, err, hit)
}

// handleInvalidate drops the cached responses for one post so the next
// request renders fresh content, e.g. after the post was edited upstream.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.postID(w, r)
	if !ok {
		return
	}
	s.cache.Invalidate("content/" + strconv.Itoa(id))
	s.cache.Invalidate("assets/" + strconv.Itoa(id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBlockTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.conv.Registry().Types())
}

// renderPost runs the full pipeline for one post: fetch, convert, aggregate.
// Failures never yield a partial result.
func (s *Server) renderPost(ctx context.Context, id int) (*contentResponse, *style.AssetBundle, error) {
	post, err := s.content.PostByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	nodes, err := s.conv.WalkAll(ctx, post.Blocks)
	if err != nil {
		return nil, nil, fmt.Errorf("render post %d: %w", id, err)
	}
	s.metrics.rendersTotal.Inc()

	gctx := &style.GlobalStyleContext{}
	if s.theme != nil {
		if gctx, err = s.theme.GlobalStyles(ctx); err != nil {
			return nil, nil, fmt.Errorf("theme styles for post %d: %w", id, err)
		}
	}

	bundle, err := s.agg.Aggregate(ctx, nodes, gctx)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate assets for post %d: %w", id, err)
	}

	themeJSON := make(map[string]string, len(gctx.Variables))
	cssVars := make(map[string]string, len(gctx.Variables))
	for _, v := range gctx.Variables {
		themeJSON[v.Name] = v.Value
		cssVars["--"+v.Name] = v.Value
	}

	return &contentResponse{
		PostID:       post.ID,
		PostTitle:    post.Title,
		Blocks:       nodes,
		GlobalStyles: globalStyles{ThemeJSON: themeJSON, CSSVariables: cssVars},
		Scripts:      bundle.Scripts,
	}, bundle, nil
}

// postID extracts and validates the {id} route parameter. A non-numeric id
// is indistinguishable from an absent post for the client.
func (s *Server) postID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		s.writeJSON(w, http.StatusNotFound, apiError{Code: "post_not_found", Message: fmt.Sprintf("no post with id %q", raw)})
		return 0, false
	}
	return id, true
}

// finish maps a cache result or pipeline error onto the response.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, body []byte, status int, err error, hit bool) {
	if hit {
		s.metrics.cacheHits.Inc()
	} else {
		s.metrics.cacheMisses.Inc()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, source.ErrPostNotFound):
		s.writeJSON(w, http.StatusNotFound, apiError{Code: "post_not_found", Message: err.Error()})
	case errors.Is(err, source.ErrFetch):
		s.writeJSON(w, http.StatusBadGateway, apiError{Code: "fetch_error", Message: err.Error()})
	default:
		s.log.Error("Request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, apiError{Code: "render_error", Message: err.Error()})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("Unable to write response", zap.Error(err))
	}
}
