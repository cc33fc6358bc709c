// Package api exposes the query generator, summarizer and news client over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/metrics"
	"github.com/kitbuilder587/newsquery/internal/news"
	"github.com/kitbuilder587/newsquery/internal/service"
)

type Deps struct {
	Queries    service.QueryGenerator
	Summarizer service.Summarizer
	Briefing   service.Briefing
	News       news.Client
	Logger     *zap.Logger
	Metrics    *metrics.Metrics

	DefaultSentences int
}

type Server struct {
	queries    service.QueryGenerator
	summarizer service.Summarizer
	briefing   service.Briefing
	news       news.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics

	defaultSentences int
}

func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.DefaultSentences <= 0 {
		deps.DefaultSentences = domain.DefaultSummarySentences
	}

	return &Server{
		queries:          deps.Queries,
		summarizer:       deps.Summarizer,
		briefing:         deps.Briefing,
		news:             deps.News,
		logger:           deps.Logger,
		metrics:          deps.Metrics,
		defaultSentences: deps.DefaultSentences,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/summarize", s.handleSummarize)
		r.Get("/search", s.handleSearch)
		r.Get("/top-headlines", s.handleTopHeadlines)
		r.Get("/sources", s.handleSources)
		r.Get("/brief", s.handleBrief)
	})

	return r
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// completions can take a while
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server starting", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
