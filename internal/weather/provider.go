package weather

import (
	"context"
	"net/url"
)

// Endpoint is a provider path relative to the provider base URL.
type Endpoint string

const (
	EndpointSearch   Endpoint = "search.json"
	EndpointCurrent  Endpoint = "current.json"
	EndpointForecast Endpoint = "forecast.json"
)

// Provider abstracts the upstream weather data source (WeatherAPI.com).
// Fetch performs exactly one GET of endpoint with params and returns the raw
// body. The provider adds its own credentials; errors should be *Failure
// values tagged with ReasonConfig, ReasonNetwork or ReasonUpstreamStatus.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, endpoint Endpoint, params url.Values) ([]byte, error)
}
