package weather

import (
	"errors"
	"strconv"
	"strings"

	"github.com/i474232898/weather-gateway/internal/common"
)

// Query identifies the location a request is about: either free text
// (a place name) or a latitude/longitude pair. Exactly one form is set.
type Query struct {
	Text string
	Lat  *float64
	Lon  *float64
}

var errEmptyQuery = errors.New("provide either city or lat & lon")

// TextQuery builds a Query from a free-text location.
func TextQuery(text string) Query {
	return Query{Text: text}
}

// CoordinateQuery builds a Query from a coordinate pair.
func CoordinateQuery(lat, lon float64) Query {
	return Query{Lat: &lat, Lon: &lon}
}

// HasText reports whether the free-text form is present and non-blank.
func (q Query) HasText() bool {
	return strings.TrimSpace(q.Text) != ""
}

// HasCoordinates reports whether both latitude and longitude are present.
func (q Query) HasCoordinates() bool {
	return q.Lat != nil && q.Lon != nil
}

// Validate rejects a query that carries neither form.
func (q Query) Validate() error {
	if !q.HasText() && !q.HasCoordinates() {
		return errEmptyQuery
	}
	return nil
}

// Param renders the query as the provider's "q" value. Text wins when both
// forms are present.
func (q Query) Param() string {
	if q.HasText() {
		return strings.TrimSpace(q.Text)
	}
	if q.HasCoordinates() {
		return formatFloat(*q.Lat) + "," + formatFloat(*q.Lon)
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// UnitSystem selects which of the provider's parallel unit fields are used.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// ParseUnitSystem maps "imperial" (any case) to Imperial and anything else,
// including the empty string, to Metric.
func ParseUnitSystem(s string) UnitSystem {
	if common.EqualFoldAny(s, string(Imperial)) {
		return Imperial
	}
	return Metric
}

// ParseTemperatureUnit maps the single-letter unit used by /api/forecast:
// exactly "F" is Imperial, anything else is Metric.
func ParseTemperatureUnit(s string) UnitSystem {
	if s == "F" {
		return Imperial
	}
	return Metric
}
