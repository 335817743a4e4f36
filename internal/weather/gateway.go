package weather

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// DefaultSearchLimit caps the number of city suggestions.
	DefaultSearchLimit = 5
	// MaxForecastDays is the provider's free-tier forecast horizon.
	MaxForecastDays = 7

	hourlyLimit = 24
	reportDays  = 3
)

var (
	errNoProvider  = errors.New("no weather provider configured")
	errEmptyBody   = errors.New("provider returned an empty body")
	errInvalidJSON = errors.New("provider returned invalid JSON")
	errEmptySearch = errors.New("search text is required")
)

// Gateway turns logical weather requests into provider calls and maps the
// provider's JSON into the views served to the frontend. It keeps no state
// between calls and is safe for concurrent use.
type Gateway struct {
	provider Provider
}

// NewGateway creates a Gateway backed by provider.
func NewGateway(provider Provider) *Gateway {
	return &Gateway{provider: provider}
}

// SearchCities returns up to limit "Name, Country" suggestions for text, in
// provider order. A non-positive limit means DefaultSearchLimit.
func (g *Gateway) SearchCities(ctx context.Context, text string, limit int) Result[[]string] {
	const op = "search cities"
	def := []string{}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if strings.TrimSpace(text) == "" {
		return fail(op, def, ReasonBadInput, errEmptySearch)
	}

	params := url.Values{}
	params.Set("q", text)

	return run(ctx, g, op, def, EndpointSearch, params, func(doc gjson.Result) ([]string, error) {
		return mapCities(doc, limit)
	})
}

// CurrentDetails returns the current-conditions summary. On failure every
// field is zero, which callers cannot tell apart from a genuine all-zero reading.
func (g *Gateway) CurrentDetails(ctx context.Context, q Query) Result[CurrentDetails] {
	const op = "current details"
	def := CurrentDetails{}

	if err := q.Validate(); err != nil {
		return fail(op, def, ReasonBadInput, err)
	}
	return run(ctx, g, op, def, EndpointCurrent, queryParams(q), mapDetails)
}

// Hourly returns up to 24 hourly points of the first forecast day, in order.
func (g *Gateway) Hourly(ctx context.Context, q Query) Result[[]HourlyPoint] {
	const op = "hourly forecast"
	def := []HourlyPoint{}

	if err := q.Validate(); err != nil {
		return fail(op, def, ReasonBadInput, err)
	}
	params := queryParams(q)
	params.Set("days", "1")

	return run(ctx, g, op, def, EndpointForecast, params, mapHourly)
}

// DailyForecast returns one point per forecast day with temperatures in unit.
// horizonDays is capped at MaxForecastDays; a non-positive value means the cap.
func (g *Gateway) DailyForecast(ctx context.Context, q Query, unit UnitSystem, horizonDays int) Result[[]DailyPoint] {
	const op = "daily forecast"
	def := []DailyPoint{}

	if err := q.Validate(); err != nil {
		return fail(op, def, ReasonBadInput, err)
	}
	days := clampDays(horizonDays)
	params := queryParams(q)
	params.Set("days", strconv.Itoa(days))

	return run(ctx, g, op, def, EndpointForecast, params, func(doc gjson.Result) ([]DailyPoint, error) {
		return mapDaily(doc, unit, days)
	})
}

// MapPoint resolves the location and its current temperature. On failure the
// value is nil, distinct from a point at (0, 0).
func (g *Gateway) MapPoint(ctx context.Context, q Query) Result[*MapPoint] {
	const op = "map point"
	var def *MapPoint

	if err := q.Validate(); err != nil {
		return fail(op, def, ReasonBadInput, err)
	}
	return run(ctx, g, op, def, EndpointCurrent, queryParams(q), mapMapPoint)
}

// CurrentAndForecast returns the composite current conditions plus a 3-day
// forecast in both unit systems.
func (g *Gateway) CurrentAndForecast(ctx context.Context, q Query) Result[*CurrentReport] {
	const op = "current and forecast"
	var def *CurrentReport

	if err := q.Validate(); err != nil {
		return fail(op, def, ReasonBadInput, err)
	}
	params := queryParams(q)
	params.Set("days", strconv.Itoa(reportDays))
	params.Set("aqi", "no")
	params.Set("alerts", "yes")

	return run(ctx, g, op, def, EndpointForecast, params, mapReport)
}

// DailyOutlook returns the 7-day daily outlook with values picked for unit.
func (g *Gateway) DailyOutlook(ctx context.Context, q Query, unit UnitSystem) Result[*Outlook] {
	const op = "daily outlook"
	var def *Outlook

	if err := q.Validate(); err != nil {
		return fail(op, def, ReasonBadInput, err)
	}
	params := queryParams(q)
	params.Set("days", strconv.Itoa(MaxForecastDays))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	return run(ctx, g, op, def, EndpointForecast, params, func(doc gjson.Result) (*Outlook, error) {
		return mapOutlook(doc, q, unit)
	})
}

// run is the pipeline every operation shares: one fetch, one mapping, and
// def with a tagged failure if either step fails.
func run[T any](
	ctx context.Context,
	g *Gateway,
	op string,
	def T,
	endpoint Endpoint,
	params url.Values,
	mapFn func(gjson.Result) (T, error),
) Result[T] {
	doc, err := g.fetch(ctx, endpoint, params)
	if err != nil {
		return fail(op, def, ReasonNetwork, err)
	}
	v, err := mapFn(doc)
	if err != nil {
		return fail(op, def, ReasonParse, err)
	}
	return succeed(v)
}

func (g *Gateway) fetch(ctx context.Context, endpoint Endpoint, params url.Values) (gjson.Result, error) {
	if g.provider == nil {
		return gjson.Result{}, NewFailure(ReasonConfig, errNoProvider)
	}

	body, err := g.provider.Fetch(ctx, endpoint, params)
	if err != nil {
		return gjson.Result{}, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return gjson.Result{}, NewFailure(ReasonEmptyResponse, errEmptyBody)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, NewFailure(ReasonParse, errInvalidJSON)
	}

	doc := gjson.ParseBytes(body)
	if doc.Type == gjson.Null {
		return gjson.Result{}, NewFailure(ReasonEmptyResponse, errEmptyBody)
	}
	return doc, nil
}

func queryParams(q Query) url.Values {
	params := url.Values{}
	params.Set("q", q.Param())
	return params
}

func clampDays(days int) int {
	if days <= 0 || days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}
