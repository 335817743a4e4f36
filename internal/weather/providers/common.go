package providers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// BreakerConfig controls the optional circuit breaker around provider calls.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive transport/5xx/429 failures that
	// open the breaker. Zero disables the breaker.
	MaxFailures int
	// OpenTimeout is how long an open breaker rejects calls before probing again.
	OpenTimeout time.Duration
}

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errMissingAPIKey = errors.New("weather provider api key is not configured")
)

// outcome is what a breaker-protected call hands back. Client errors (4xx other
// than 429) travel here rather than as the call's error so they do not count
// against the breaker: they describe the request, not the provider's health.
type outcome struct {
	body []byte
	err  error
}

func newCircuitBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		return nil
	}
	threshold := uint32(cfg.MaxFailures)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

// doRequest executes the request exactly once, through the circuit breaker
// when one is configured, and returns the body of a 2xx response.
func doRequest(client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) ([]byte, error) {
	if client == nil {
		return nil, weather.NewFailure(weather.ReasonConfig, errNoHTTPClient)
	}

	call := func() (interface{}, error) {
		return execute(client, req)
	}

	var (
		result interface{}
		err    error
	)
	if cb == nil {
		result, err = call()
	} else {
		result, err = cb.Execute(call)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, weather.NewFailure(weather.ReasonNetwork, fmt.Errorf("%w: %v", errCircuitOpen, err))
		}
	}
	if err != nil {
		return nil, err
	}

	out, ok := result.(*outcome)
	if !ok {
		return nil, weather.NewFailure(weather.ReasonNetwork, fmt.Errorf("unexpected result type from circuit breaker"))
	}
	return out.body, out.err
}

func execute(client *http.Client, req *http.Request) (*outcome, error) {
	resp, err := client.Do(req)
	if err != nil {
		// The request URL carries the API key; keep only the underlying cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, weather.NewFailure(weather.ReasonNetwork, fmt.Errorf("GET %s: %w", req.URL.Path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, weather.NewFailure(weather.ReasonNetwork, fmt.Errorf("reading %s: %w", req.URL.Path, err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, weather.NewFailure(weather.ReasonUpstreamStatus, statusError(resp.StatusCode, body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &outcome{err: weather.NewFailure(weather.ReasonUpstreamStatus, statusError(resp.StatusCode, body))}, nil
	}
	return &outcome{body: body}, nil
}

// statusError includes the provider's own error message when the body has one
// ({"error":{"code":1006,"message":"No matching location found."}}).
func statusError(code int, body []byte) error {
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return fmt.Errorf("%w: %d: %s", errUnexpected, code, msg)
	}
	return fmt.Errorf("%w: %d", errUnexpected, code)
}
