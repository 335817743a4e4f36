package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// DefaultBaseURL is the WeatherAPI.com v1 endpoint.
const DefaultBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, baseURL, apiKey string, breaker BreakerConfig) *WeatherAPIProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker("weatherapi", breaker),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Fetch performs one GET of <base>/<endpoint>?key=...&<params>.
func (p *WeatherAPIProvider) Fetch(ctx context.Context, endpoint weather.Endpoint, params url.Values) ([]byte, error) {
	if p.apiKey == "" {
		return nil, weather.NewFailure(weather.ReasonConfig, errMissingAPIKey)
	}

	values := url.Values{}
	for k, vs := range params {
		values[k] = append([]string(nil), vs...)
	}
	values.Set("key", p.apiKey)

	u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		// Do not wrap err: it would echo the URL and with it the key.
		return nil, weather.NewFailure(weather.ReasonConfig, fmt.Errorf("invalid provider base URL %q", p.baseURL))
	}

	return doRequest(p.client, p.circuit, req)
}
