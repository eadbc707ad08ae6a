// Package client provides the HTTP transport used to fetch the feed, with
// retry, structured logging, and Prometheus metrics.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for HTTP client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_http_requests_total",
		Help: "Total feed HTTP requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_http_request_duration_seconds",
		Help:    "Feed HTTP request duration in seconds, retries included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_http_errors_total",
		Help: "Total feed HTTP errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client performs GET requests against the feed endpoint.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Timeout for a single attempt
	Timeout time.Duration

	// Retry overrides the per-class retry schedule when MaxAttempts > 0.
	// MaxAttempts = 1 disables retries.
	Retry RetryConfig

	// Gate, when set, delays attempts while the server has asked for a
	// pause and is told about every response (see pkg/ratelimit).
	Gate Gate
}

// Gate delays requests while the server has asked for a pause.
type Gate interface {
	Wait(ctx context.Context) error
	UpdateFromResponse(ctx context.Context, status int, headers http.Header) error
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	if cfg.Retry.MaxAttempts < 0 {
		return nil, fmt.Errorf("max_attempts must be >= 0 (got %d)", cfg.Retry.MaxAttempts)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger(logging.ComponentHTTPClient),
	}, nil
}

// Get fetches u and returns the body and status code of the response.
// Network failures and 5xx/429 statuses are retried. Once attempts run out
// on a status, that last response is returned as is; only a request whose
// final attempt produced no response yields an error. A response from an
// earlier attempt is dropped when the final attempt fails on the network,
// so that case reports connectivity.
func (c *Client) Get(ctx context.Context, u *url.URL) ([]byte, int, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	var body []byte
	var status int

	err := retryWithBackoff(ctx, c.logger, c.retryConfig, func() (ErrorClass, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		if c.config.Gate != nil {
			if err := c.config.Gate.Wait(ctx); err != nil {
				return "", fmt.Errorf("%w: %v", ErrContextCancelled, err)
			}
		}

		c.logger.Debug().Str("url", u.String()).Msg("Executing feed request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("url", u.String()).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues("network_error").Inc()
			return ErrorClassNetwork, &RequestError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        err,
			}
		}
		if resp == nil {
			return "", ErrUnexpectedValues
		}
		defer resp.Body.Close()

		if c.config.Gate != nil {
			if err := c.config.Gate.UpdateFromResponse(ctx, resp.StatusCode, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to record rate limit state")
			}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues("network_error").Inc()
			return ErrorClassNetwork, &RequestError{
				ErrorClass: ErrorClassNetwork,
				Message:    "read response body",
				Err:        err,
			}
		}

		body, status = data, resp.StatusCode
		requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		errClass := c.classifyError(resp.StatusCode)
		if errClass == "" {
			return "", nil
		}

		errorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("url", u.String()).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Feed request error")

		if !shouldRetry(errClass) {
			// Final status, the caller decides what it means
			return "", nil
		}
		return errClass, &RequestError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	})

	if err != nil {
		var reqErr *RequestError
		if errors.Is(err, ErrRetryExhausted) && errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
			return body, status, nil
		}
		return nil, 0, err
	}

	return body, status, nil
}

// retryConfig picks the schedule for an error class.
func (c *Client) retryConfig(errorClass ErrorClass) RetryConfig {
	if c.config.Retry.MaxAttempts > 0 {
		return c.config.Retry
	}
	return RetryConfigForErrorClass(errorClass)
}

// classifyError categorizes an HTTP status for observability and retry.
// It returns "" for statuses below 400.
func (c *Client) classifyError(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
