package weather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var errMissingField = errors.New("missing field")

// NormalizeIcon rewrites the provider's protocol-relative icon URLs
// ("//cdn.weatherapi.com/...") to https. Anything else passes through.
func NormalizeIcon(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

// ClockTime returns the "HH:MM" part of a "YYYY-MM-DD HH:MM" timestamp. The
// provider always sends that fixed layout, so this is a substring, not a parse.
func ClockTime(ts string) (string, bool) {
	if len(ts) < 16 {
		return "", false
	}
	return ts[11:16], true
}

// unitFields names the provider fields read for one unit system.
type unitFields struct {
	maxTemp      string
	minTemp      string
	avgTemp      string
	wind         string
	windFallback string
}

var fieldsByUnit = map[UnitSystem]unitFields{
	Metric: {
		maxTemp:      "maxtemp_c",
		minTemp:      "mintemp_c",
		avgTemp:      "avgtemp_c",
		wind:         "maxwind_kph",
		windFallback: "maxwind_mph",
	},
	Imperial: {
		maxTemp:      "maxtemp_f",
		minTemp:      "mintemp_f",
		avgTemp:      "avgtemp_f",
		wind:         "maxwind_mph",
		windFallback: "maxwind_kph",
	},
}

func fieldsFor(unit UnitSystem) unitFields {
	if f, ok := fieldsByUnit[unit]; ok {
		return f
	}
	return fieldsByUnit[Metric]
}

// require returns the node at path, failing when it is absent or null.
func require(node gjson.Result, path string) (gjson.Result, error) {
	r := node.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return r, fmt.Errorf("%w: %s", errMissingField, path)
	}
	return r, nil
}

// requireArray is require for array-valued paths.
func requireArray(node gjson.Result, path string) ([]gjson.Result, error) {
	r, err := require(node, path)
	if err != nil {
		return nil, err
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: %s is not an array", errMissingField, path)
	}
	return r.Array(), nil
}

// optFloat returns nil for absent or null values.
func optFloat(node gjson.Result, path string) *float64 {
	r := node.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	v := r.Float()
	return &v
}

func intOr(node gjson.Result, path string, def int64) int64 {
	r := node.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Int()
}

// passthrough returns the raw JSON value at path (nil when absent).
func passthrough(node gjson.Result, path string) any {
	return node.Get(path).Value()
}

func mapCities(doc gjson.Result, limit int) ([]string, error) {
	if !doc.IsArray() {
		return nil, errors.New("search response is not an array")
	}
	out := make([]string, 0, limit)
	for _, c := range doc.Array() {
		if len(out) >= limit {
			break
		}
		if !c.IsObject() {
			continue
		}
		out = append(out, c.Get("name").String()+", "+c.Get("country").String())
	}
	return out, nil
}

func mapDetails(doc gjson.Result) (CurrentDetails, error) {
	c, err := require(doc, "current")
	if err != nil {
		return CurrentDetails{}, err
	}
	return CurrentDetails{
		Temp:       c.Get("temp_c").Float(),
		FeelsLike:  c.Get("feelslike_c").Float(),
		Humidity:   int(c.Get("humidity").Int()),
		Wind:       c.Get("wind_kph").Float(),
		Pressure:   c.Get("pressure_mb").Float(),
		UV:         c.Get("uv").Float(),
		Visibility: c.Get("vis_km").Float(),
		Cloud:      int(c.Get("cloud").Int()),
	}, nil
}

func mapHourly(doc gjson.Result) ([]HourlyPoint, error) {
	days, err := requireArray(doc, "forecast.forecastday")
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, NewFailure(ReasonNotFound, errors.New("provider returned no forecast days"))
	}
	hours, err := requireArray(days[0], "hour")
	if err != nil {
		return nil, err
	}

	out := make([]HourlyPoint, 0, min(len(hours), hourlyLimit))
	for _, h := range hours {
		if len(out) == hourlyLimit {
			break
		}
		clock, ok := ClockTime(h.Get("time").String())
		if !ok {
			return nil, fmt.Errorf("malformed hour timestamp %q", h.Get("time").String())
		}
		cond, err := require(h, "condition")
		if err != nil {
			return nil, err
		}
		out = append(out, HourlyPoint{
			Time:      clock,
			Temp:      h.Get("temp_c").Float(),
			FeelsLike: h.Get("feelslike_c").Float(),
			Humidity:  int(h.Get("humidity").Int()),
			Wind:      h.Get("wind_kph").Float(),
			Rain:      h.Get("chance_of_rain").Float(),
			Condition: cond.Get("text").String(),
			Icon:      NormalizeIcon(cond.Get("icon").String()),
		})
	}
	return out, nil
}

func mapDaily(doc gjson.Result, unit UnitSystem, horizon int) ([]DailyPoint, error) {
	days, err := requireArray(doc, "forecast.forecastday")
	if err != nil {
		return nil, err
	}
	f := fieldsFor(unit)

	out := make([]DailyPoint, 0, min(len(days), horizon))
	for _, fd := range days {
		if len(out) == horizon {
			break
		}
		day, err := require(fd, "day")
		if err != nil {
			return nil, err
		}
		cond, err := require(day, "condition")
		if err != nil {
			return nil, err
		}
		out = append(out, DailyPoint{
			Date:      fd.Get("date").String(),
			Max:       day.Get(f.maxTemp).Float(),
			Min:       day.Get(f.minTemp).Float(),
			Condition: cond.Get("text").String(),
			Icon:      NormalizeIcon(cond.Get("icon").String()),
		})
	}
	return out, nil
}

func mapMapPoint(doc gjson.Result) (*MapPoint, error) {
	loc, err := require(doc, "location")
	if err != nil {
		return nil, err
	}
	cur, err := require(doc, "current")
	if err != nil {
		return nil, err
	}
	cond, err := require(cur, "condition")
	if err != nil {
		return nil, err
	}
	return &MapPoint{
		City:      loc.Get("name").String(),
		Lat:       loc.Get("lat").Float(),
		Lon:       loc.Get("lon").Float(),
		Temp:      cur.Get("temp_c").Float(),
		Condition: cond.Get("text").String(),
		Icon:      NormalizeIcon(cond.Get("icon").String()),
	}, nil
}

func mapReport(doc gjson.Result) (*CurrentReport, error) {
	if !doc.IsObject() {
		return nil, errors.New("forecast response is not an object")
	}
	loc := doc.Get("location")
	cur := doc.Get("current")

	r := &CurrentReport{
		City:    loc.Get("name").String(),
		Region:  loc.Get("region").String(),
		Country: loc.Get("country").String(),
		Lat:     loc.Get("lat").Float(),
		Lon:     loc.Get("lon").Float(),

		TempC:      optFloat(cur, "temp_c"),
		FeelsLikeC: optFloat(cur, "feelslike_c"),
		TempF:      optFloat(cur, "temp_f"),
		FeelsLikeF: optFloat(cur, "feelslike_f"),
		Humidity:   intOr(cur, "humidity", -1),
		PressureMb: intOr(cur, "pressure_mb", -1),
		WindKph:    optFloat(cur, "wind_kph"),
		WindDir:    cur.Get("wind_dir").String(),
		VisKm:      optFloat(cur, "vis_km"),
		UV:         optFloat(cur, "uv"),
		Condition:  cur.Get("condition.text").String(),
		Icon:       NormalizeIcon(cur.Get("condition.icon").String()),

		Forecast: []ReportDay{},
	}

	days := doc.Get("forecast.forecastday")
	if days.IsArray() {
		for _, fd := range days.Array() {
			day := fd.Get("day")
			r.Forecast = append(r.Forecast, ReportDay{
				Date:      fd.Get("date").String(),
				AvgTempC:  optFloat(day, "avgtemp_c"),
				MaxTempC:  optFloat(day, "maxtemp_c"),
				MinTempC:  optFloat(day, "mintemp_c"),
				AvgTempF:  optFloat(day, "avgtemp_f"),
				MaxTempF:  optFloat(day, "maxtemp_f"),
				MinTempF:  optFloat(day, "mintemp_f"),
				Condition: day.Get("condition.text").String(),
				Icon:      NormalizeIcon(day.Get("condition.icon").String()),
			})
		}
	}
	return r, nil
}

func mapOutlook(doc gjson.Result, q Query, unit UnitSystem) (*Outlook, error) {
	if !doc.IsObject() {
		return nil, errors.New("forecast response is not an object")
	}

	out := &Outlook{Daily: []OutlookDay{}}
	if loc := doc.Get("location"); loc.IsObject() {
		out.Lat = passthrough(loc, "lat")
		out.Lon = passthrough(loc, "lon")
		if tz := loc.Get("tz_id"); tz.Exists() {
			out.Timezone = tz.Value()
		} else {
			out.Timezone = passthrough(doc, "timezone")
		}
	} else if q.HasCoordinates() {
		out.Lat = *q.Lat
		out.Lon = *q.Lon
	}

	f := fieldsFor(unit)
	days := doc.Get("forecast.forecastday")
	if !days.IsArray() {
		return out, nil
	}
	for _, fd := range days.Array() {
		if !fd.IsObject() {
			continue
		}
		var d OutlookDay
		if epoch := fd.Get("date_epoch"); epoch.Type == gjson.Number {
			d.Dt = epoch.Int()
		} else {
			d.Dt = passthrough(fd, "date")
		}

		if day := fd.Get("day"); day.IsObject() {
			d.TempDay = passthrough(day, f.avgTemp)
			d.TempMin = passthrough(day, f.minTemp)
			d.TempMax = passthrough(day, f.maxTemp)
			// A missing wind field in the requested unit falls back to the
			// other unit's value.
			if day.Get(f.wind).Exists() {
				d.WindSpeed = passthrough(day, f.wind)
			} else {
				d.WindSpeed = passthrough(day, f.windFallback)
			}
			d.Humidity = passthrough(day, "avghumidity")

			if cond := day.Get("condition"); cond.IsObject() {
				if text := cond.Get("text"); text.Exists() && text.Type != gjson.Null {
					desc := text.String()
					d.WeatherDesc = &desc
				}
				icon := NormalizeIcon(cond.Get("icon").String())
				d.WeatherIcon = &icon
			}
		}
		out.Daily = append(out.Daily, d)
	}
	return out, nil
}
