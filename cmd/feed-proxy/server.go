package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/feed"
	"github.com/Sternrassler/essential-feed/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const feedRequestTimeout = 30 * time.Second

// localFeed is the local side of the pipeline: a loader that also accepts
// saves and can be cleared.
type localFeed interface {
	feed.Loader
	feed.Cache
	Invalidate(ctx context.Context) error
}

type server struct {
	local      localFeed
	refreshing feed.Loader // remote load that saves into local
	serving    feed.Loader // refreshing, falling back to local
	logger     zerolog.Logger

	// Coalesces concurrent GET /feed requests into one upstream load
	loads singleflight.Group
}

func newServer(remote feed.Loader, local localFeed, logger zerolog.Logger) *server {
	refreshing := &feed.CachingLoader{
		Decoratee: remote,
		Cache:     local,
		Logger:    logger,
	}
	return &server{
		local:      local,
		refreshing: refreshing,
		serving: &feed.FallbackLoader{
			Primary:  refreshing,
			Fallback: local,
			Logger:   logger,
		},
		logger: logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/feed", s.handleFeed)
	r.Delete("/feed/cache", s.handleInvalidate)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) handleFeed(w http.ResponseWriter, r *http.Request) {
	v, err, shared := s.loads.Do("feed", func() (any, error) {
		// Detached so one caller going away does not fail the others
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), feedRequestTimeout)
		defer cancel()
		return s.serving.Load(ctx)
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Feed unavailable from remote and cache")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "feed unavailable"})
		return
	}

	items := v.([]feed.FeedItem)
	s.logger.Debug().Int("items", len(items)).Bool("shared", shared).Msg("Served feed")
	writeJSON(w, http.StatusOK, toResponse(items))
}

func (s *server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := s.local.Invalidate(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to invalidate feed cache")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache invalidation failed"})
		return
	}
	s.logger.Info().Msg("Feed cache invalidated")
	w.WriteHeader(http.StatusNoContent)
}

type itemResponse struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Image       string  `json:"image"`
}

type feedResponse struct {
	Items []itemResponse `json:"items"`
}

func toResponse(items []feed.FeedItem) feedResponse {
	out := feedResponse{Items: make([]itemResponse, len(items))}
	for i, item := range items {
		out.Items[i] = itemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Location:    item.Location,
			Image:       item.ImageURL.String(),
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
