// Package api loads the feed from a remote HTTP endpoint and maps every
// failure onto the two remote error kinds, ErrConnectivity and ErrInvalidData.
package api

import (
	"context"
	"net/url"

	"github.com/Sternrassler/essential-feed/pkg/feed"
	"github.com/Sternrassler/essential-feed/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// remoteLoadsTotal counts remote loads by result.
var remoteLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "feed_remote_loads_total",
	Help: "Total remote feed loads by result",
}, []string{"result"}) // "success", "connectivity", "invalid_data"

// HTTPClient performs a single HTTP GET. A non-nil error means no response
// was obtained; any obtained response is reported through body and status.
// Retries and timeouts are the client's own business.
type HTTPClient interface {
	Get(ctx context.Context, u *url.URL) (body []byte, statusCode int, err error)
}

// RemoteLoader loads feed items from a fixed URL.
type RemoteLoader struct {
	url    *url.URL
	client HTTPClient
	logger zerolog.Logger
}

// NewRemoteLoader creates a loader for the given URL. No request is issued
// until Load is called.
func NewRemoteLoader(u *url.URL, client HTTPClient) *RemoteLoader {
	if u == nil {
		panic("url cannot be nil")
	}
	if client == nil {
		panic("http client cannot be nil")
	}
	return &RemoteLoader{
		url:    u,
		client: client,
		logger: logging.NewLogger(logging.ComponentRemoteLoader),
	}
}

// Load issues one request per call, without coalescing concurrent calls.
// It returns ErrConnectivity when the client fails and ErrInvalidData when
// the response cannot be mapped.
func (l *RemoteLoader) Load(ctx context.Context) ([]feed.FeedItem, error) {
	body, status, err := l.client.Get(ctx, l.url)
	if err != nil {
		l.logger.Debug().Err(err).Str("url", l.url.String()).Msg("Feed request failed")
		remoteLoadsTotal.WithLabelValues("connectivity").Inc()
		return nil, ErrConnectivity
	}

	remote, err := MapFeedItems(body, status)
	if err != nil {
		l.logger.Debug().
			Err(err).
			Str("url", l.url.String()).
			Int("status", status).
			Msg("Feed payload rejected")
		remoteLoadsTotal.WithLabelValues("invalid_data").Inc()
		return nil, ErrInvalidData
	}

	remoteLoadsTotal.WithLabelValues("success").Inc()
	return toModels(remote), nil
}

func toModels(remote []RemoteFeedItem) []feed.FeedItem {
	items := make([]feed.FeedItem, len(remote))
	for i, r := range remote {
		items[i] = feed.FeedItem{
			ID:          r.ID,
			Description: r.Description,
			Location:    r.Location,
			ImageURL:    r.Image,
		}
	}
	return items
}
