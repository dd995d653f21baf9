package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/goliatone/go-listview/components/listview"
)

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	URL        string
	Token      string
	Headers    map[string]string
	HTTPClient *http.Client
	Breaker    *gobreaker.Settings
}

// HTTPSource fetches records from a remote JSON endpoint behind a circuit
// breaker. The endpoint may answer with a bare list or `{"records": [...]}`.
type HTTPSource struct {
	url     string
	token   string
	headers map[string]string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ listview.Source = (*HTTPSource)(nil)

// ErrRemote wraps non-2xx responses.
var ErrRemote = errors.New("sources: remote error")

// NewHTTPSource builds a source. Without Breaker settings the circuit opens
// after five consecutive failures and half-opens after thirty seconds.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("sources: url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	settings := gobreaker.Settings{
		Name:        cfg.URL,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	if cfg.Breaker != nil {
		settings = *cfg.Breaker
		if settings.Name == "" {
			settings.Name = cfg.URL
		}
	}
	return &HTTPSource{
		url:     cfg.URL,
		token:   cfg.Token,
		headers: cfg.Headers,
		client:  httpClient,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}, nil
}

// State reports the circuit breaker state.
func (s *HTTPSource) State() gobreaker.State {
	return s.breaker.State()
}

func (s *HTTPSource) Records(ctx context.Context) ([]listview.Record, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]listview.Record), nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]listview.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("sources: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sources: http request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sources: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d: %s", ErrRemote, resp.StatusCode, bytes.TrimSpace(body))
	}
	records, err := DecodeRecords(".json", body)
	if err != nil {
		return nil, fmt.Errorf("sources: decode response: %w", err)
	}
	return records, nil
}
