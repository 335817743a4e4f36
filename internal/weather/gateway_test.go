package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

// fakeProvider returns a canned body or error and records the last call.
type fakeProvider struct {
	body  string
	err   error
	calls int

	endpoint Endpoint
	params   url.Values
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(ctx context.Context, endpoint Endpoint, params url.Values) ([]byte, error) {
	f.calls++
	f.endpoint = endpoint
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func hoursJSON(n int) string {
	hours := make([]string, 0, n)
	for i := 0; i < n; i++ {
		hours = append(hours, fmt.Sprintf(
			`{"time":"2024-05-01 %02d:00","temp_c":%d.5,"feelslike_c":%d,"humidity":60,"wind_kph":10.1,"chance_of_rain":%d,"condition":{"text":"Cloudy","icon":"//cdn/cloud.png"}}`,
			i, i, i, i*2))
	}
	return `{"forecast":{"forecastday":[{"date":"2024-05-01","hour":[` + strings.Join(hours, ",") + `]}]}}`
}

const divergentForecast = `{
	"location":{"name":"Lisbon","lat":38.72,"lon":-9.14,"tz_id":"Europe/Lisbon"},
	"forecast":{"forecastday":[
		{"date":"2024-05-01","date_epoch":1714521600,"day":{
			"maxtemp_c":30.0,"mintemp_c":18.0,"avgtemp_c":24.0,
			"maxtemp_f":86.0,"mintemp_f":64.4,"avgtemp_f":75.2,
			"maxwind_kph":20.2,"avghumidity":55,
			"condition":{"text":"Sunny","icon":"//x/sunny.png"}}},
		{"date":"2024-05-02","day":{
			"maxtemp_c":25.0,"mintemp_c":15.0,"avgtemp_c":20.0,
			"maxtemp_f":77.0,"mintemp_f":59.0,"avgtemp_f":68.0,
			"maxwind_kph":11.0,"maxwind_mph":6.8,"avghumidity":70,
			"condition":{"text":"Rain","icon":"https://x/rain.png"}}}
	]}
}`

func TestGateway_SearchCities(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		limit   int
		want    []string
		wantErr Reason
	}{
		{
			name:  "formats and preserves order",
			body:  `[{"name":"Mumbai","country":"India"},{"name":"Mumbra","country":"India"}]`,
			limit: 5,
			want:  []string{"Mumbai, India", "Mumbra, India"},
		},
		{
			name: "truncates to limit",
			body: `[{"name":"A","country":"X"},{"name":"B","country":"X"},{"name":"C","country":"X"},
				{"name":"D","country":"X"},{"name":"E","country":"X"},{"name":"F","country":"X"}]`,
			limit: 5,
			want:  []string{"A, X", "B, X", "C, X", "D, X", "E, X"},
		},
		{
			name:  "non-positive limit uses default",
			body:  `[{"name":"A","country":"X"},{"name":"B","country":"X"},{"name":"C","country":"X"},{"name":"D","country":"X"},{"name":"E","country":"X"},{"name":"F","country":"X"}]`,
			limit: 0,
			want:  []string{"A, X", "B, X", "C, X", "D, X", "E, X"},
		},
		{
			name:  "skips non-object entries",
			body:  `[1,{"name":"Oslo","country":"Norway"}]`,
			limit: 5,
			want:  []string{"Oslo, Norway"},
		},
		{
			name:    "object instead of array",
			body:    `{"error":{"message":"nope"}}`,
			limit:   5,
			want:    []string{},
			wantErr: ReasonParse,
		},
		{
			name:    "malformed json",
			body:    `[{"name":`,
			limit:   5,
			want:    []string{},
			wantErr: ReasonParse,
		},
		{
			name:    "null body",
			body:    `null`,
			limit:   5,
			want:    []string{},
			wantErr: ReasonEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{body: tt.body}
			res := NewGateway(p).SearchCities(context.Background(), "mum", tt.limit)

			if res.Reason() != tt.wantErr {
				t.Fatalf("reason = %q, want %q (err: %v)", res.Reason(), tt.wantErr, res.Err)
			}
			if res.Value == nil {
				t.Fatal("value must never be nil")
			}
			if strings.Join(res.Value, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %v, want %v", res.Value, tt.want)
			}
			if p.endpoint != EndpointSearch || p.params.Get("q") != "mum" {
				t.Errorf("unexpected provider call %s %v", p.endpoint, p.params)
			}
		})
	}
}

func TestGateway_SearchCitiesBlankTextSkipsProvider(t *testing.T) {
	p := &fakeProvider{body: `[]`}
	res := NewGateway(p).SearchCities(context.Background(), "   ", 5)
	if res.Reason() != ReasonBadInput {
		t.Fatalf("reason = %q, want %q", res.Reason(), ReasonBadInput)
	}
	if p.calls != 0 {
		t.Fatalf("provider called %d times, want 0", p.calls)
	}
	if len(res.Value) != 0 {
		t.Fatalf("expected empty list, got %v", res.Value)
	}
}

func TestGateway_ListOperationsFailSafe(t *testing.T) {
	failures := map[string]error{
		"network":  NewFailure(ReasonNetwork, errors.New("connection refused")),
		"status":   NewFailure(ReasonUpstreamStatus, errors.New("unexpected status code: 503")),
		"untagged": errors.New("boom"),
	}

	for name, err := range failures {
		t.Run(name, func(t *testing.T) {
			g := NewGateway(&fakeProvider{err: err})
			ctx := context.Background()
			q := TextQuery("Paris")

			if res := g.SearchCities(ctx, "Par", 5); res.OK() || len(res.Value) != 0 || res.Value == nil {
				t.Errorf("SearchCities: %+v", res)
			}
			if res := g.Hourly(ctx, q); res.OK() || len(res.Value) != 0 || res.Value == nil {
				t.Errorf("Hourly: %+v", res)
			}
			if res := g.DailyForecast(ctx, q, Metric, 7); res.OK() || len(res.Value) != 0 || res.Value == nil {
				t.Errorf("DailyForecast: %+v", res)
			}
			if res := g.CurrentDetails(ctx, q); res.OK() || res.Value != (CurrentDetails{}) {
				t.Errorf("CurrentDetails: %+v", res)
			}
			if res := g.MapPoint(ctx, q); res.OK() || res.Value != nil {
				t.Errorf("MapPoint: %+v", res)
			}
			if res := g.CurrentAndForecast(ctx, q); res.OK() || res.Value != nil {
				t.Errorf("CurrentAndForecast: %+v", res)
			}
			if res := g.DailyOutlook(ctx, q, Metric); res.OK() || res.Value != nil {
				t.Errorf("DailyOutlook: %+v", res)
			}
		})
	}
}

func TestGateway_FailureReasonIsPreserved(t *testing.T) {
	g := NewGateway(&fakeProvider{err: NewFailure(ReasonUpstreamStatus, errors.New("unexpected status code: 400"))})
	res := g.CurrentDetails(context.Background(), TextQuery("Nowhere"))
	if res.Reason() != ReasonUpstreamStatus {
		t.Fatalf("reason = %q, want %q", res.Reason(), ReasonUpstreamStatus)
	}
	if !strings.HasPrefix(res.Err.Error(), "current details: upstream_status") {
		t.Errorf("unexpected error text %q", res.Err.Error())
	}

	res = NewGateway(&fakeProvider{err: errors.New("boom")}).CurrentDetails(context.Background(), TextQuery("x"))
	if res.Reason() != ReasonNetwork {
		t.Fatalf("untagged error reason = %q, want %q", res.Reason(), ReasonNetwork)
	}
}

func TestGateway_NilProvider(t *testing.T) {
	res := NewGateway(nil).Hourly(context.Background(), TextQuery("Paris"))
	if res.Reason() != ReasonConfig {
		t.Fatalf("reason = %q, want %q", res.Reason(), ReasonConfig)
	}
}

func TestGateway_CurrentDetails(t *testing.T) {
	p := &fakeProvider{body: `{"current":{"temp_c":21.5,"feelslike_c":20.1,"humidity":64,"wind_kph":14.4,
		"pressure_mb":1012.0,"uv":5.0,"vis_km":10.0,"cloud":25}}`}
	res := NewGateway(p).CurrentDetails(context.Background(), TextQuery(" Madrid "))
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	want := CurrentDetails{Temp: 21.5, FeelsLike: 20.1, Humidity: 64, Wind: 14.4, Pressure: 1012, UV: 5, Visibility: 10, Cloud: 25}
	if res.Value != want {
		t.Fatalf("got %+v, want %+v", res.Value, want)
	}
	if p.endpoint != EndpointCurrent || p.params.Get("q") != "Madrid" {
		t.Errorf("unexpected provider call %s %v", p.endpoint, p.params)
	}
}

func TestGateway_CurrentDetailsMissingBlock(t *testing.T) {
	res := NewGateway(&fakeProvider{body: `{"location":{}}`}).CurrentDetails(context.Background(), TextQuery("x"))
	if res.Reason() != ReasonParse {
		t.Fatalf("reason = %q, want %q", res.Reason(), ReasonParse)
	}
	if res.Value != (CurrentDetails{}) {
		t.Fatalf("expected zero details, got %+v", res.Value)
	}
}

func TestGateway_QueryValidation(t *testing.T) {
	p := &fakeProvider{body: `{}`}
	g := NewGateway(p)
	ctx := context.Background()

	if res := g.CurrentDetails(ctx, Query{}); res.Reason() != ReasonBadInput {
		t.Errorf("CurrentDetails reason = %q", res.Reason())
	}
	if res := g.CurrentAndForecast(ctx, TextQuery("  ")); res.Reason() != ReasonBadInput {
		t.Errorf("CurrentAndForecast reason = %q", res.Reason())
	}
	lat := 1.0
	if res := g.DailyOutlook(ctx, Query{Lat: &lat}, Metric); res.Reason() != ReasonBadInput {
		t.Errorf("DailyOutlook reason = %q", res.Reason())
	}
	if p.calls != 0 {
		t.Fatalf("provider called %d times, want 0", p.calls)
	}
}

func TestGateway_Hourly(t *testing.T) {
	p := &fakeProvider{body: hoursJSON(24)}
	res := NewGateway(p).Hourly(context.Background(), TextQuery("Paris"))
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if len(res.Value) != 24 {
		t.Fatalf("got %d points, want 24", len(res.Value))
	}
	for i, h := range res.Value {
		if want := fmt.Sprintf("%02d:00", i); h.Time != want {
			t.Fatalf("point %d time = %q, want %q", i, h.Time, want)
		}
	}
	first := res.Value[0]
	if first.Icon != "https://cdn/cloud.png" || first.Condition != "Cloudy" || first.Humidity != 60 {
		t.Errorf("unexpected first point %+v", first)
	}
	if res.Value[3].Rain != 6 || res.Value[3].Temp != 3.5 {
		t.Errorf("unexpected point 3 %+v", res.Value[3])
	}
	if p.params.Get("days") != "1" || p.endpoint != EndpointForecast {
		t.Errorf("unexpected provider call %s %v", p.endpoint, p.params)
	}
}

func TestGateway_HourlyCapsAt24(t *testing.T) {
	res := NewGateway(&fakeProvider{body: hoursJSON(30)}).Hourly(context.Background(), TextQuery("Paris"))
	if len(res.Value) != 24 {
		t.Fatalf("got %d points, want 24", len(res.Value))
	}
}

func TestGateway_HourlyEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Reason
	}{
		{"empty forecast day array", `{"forecast":{"forecastday":[]}}`, ReasonNotFound},
		{"missing forecast", `{"current":{}}`, ReasonParse},
		{"short timestamp", `{"forecast":{"forecastday":[{"hour":[{"time":"10:00","condition":{}}]}]}}`, ReasonParse},
		{"missing condition", `{"forecast":{"forecastday":[{"hour":[{"time":"2024-05-01 10:00"}]}]}}`, ReasonParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewGateway(&fakeProvider{body: tt.body}).Hourly(context.Background(), TextQuery("Paris"))
			if res.Reason() != tt.want {
				t.Fatalf("reason = %q, want %q (err: %v)", res.Reason(), tt.want, res.Err)
			}
			if res.Value == nil || len(res.Value) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", res.Value)
			}
		})
	}
}

func TestGateway_DailyForecastScenario(t *testing.T) {
	body := `{"forecast":{"forecastday":[{"date":"2024-05-01","day":{"maxtemp_c":30.0,"mintemp_c":18.0,"condition":{"text":"Sunny","icon":"//x/sunny.png"}}}]}}`
	res := NewGateway(&fakeProvider{body: body}).DailyForecast(context.Background(), TextQuery("Lisbon"), Metric, 7)
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	want := []DailyPoint{{Date: "2024-05-01", Max: 30.0, Min: 18.0, Condition: "Sunny", Icon: "https://x/sunny.png"}}
	if len(res.Value) != 1 || res.Value[0] != want[0] {
		t.Fatalf("got %+v, want %+v", res.Value, want)
	}
}

func TestGateway_DailyForecastUnits(t *testing.T) {
	tests := []struct {
		unit    UnitSystem
		wantMax []float64
		wantMin []float64
	}{
		{Metric, []float64{30, 25}, []float64{18, 15}},
		{Imperial, []float64{86, 77}, []float64{64.4, 59}},
		{UnitSystem("kelvin"), []float64{30, 25}, []float64{18, 15}},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			res := NewGateway(&fakeProvider{body: divergentForecast}).DailyForecast(context.Background(), TextQuery("Lisbon"), tt.unit, 7)
			if !res.OK() {
				t.Fatalf("unexpected failure: %v", res.Err)
			}
			if len(res.Value) != 2 {
				t.Fatalf("got %d days, want 2", len(res.Value))
			}
			for i, d := range res.Value {
				if d.Max != tt.wantMax[i] || d.Min != tt.wantMin[i] {
					t.Errorf("day %d = %+v, want max %v min %v", i, d, tt.wantMax[i], tt.wantMin[i])
				}
			}
			if res.Value[1].Icon != "https://x/rain.png" {
				t.Errorf("absolute icon changed: %q", res.Value[1].Icon)
			}
		})
	}
}

func TestGateway_DailyForecastHorizon(t *testing.T) {
	tests := []struct {
		horizon  int
		wantDays string
		wantLen  int
	}{
		{horizon: 30, wantDays: "7", wantLen: 2},
		{horizon: 0, wantDays: "7", wantLen: 2},
		{horizon: 1, wantDays: "1", wantLen: 1},
	}

	for _, tt := range tests {
		p := &fakeProvider{body: divergentForecast}
		res := NewGateway(p).DailyForecast(context.Background(), TextQuery("Lisbon"), Metric, tt.horizon)
		if p.params.Get("days") != tt.wantDays {
			t.Errorf("horizon %d: days = %q, want %q", tt.horizon, p.params.Get("days"), tt.wantDays)
		}
		if len(res.Value) != tt.wantLen {
			t.Errorf("horizon %d: got %d days, want %d", tt.horizon, len(res.Value), tt.wantLen)
		}
	}
}

func TestGateway_DailyForecastMissingDayDefaults(t *testing.T) {
	body := `{"forecast":{"forecastday":[{"date":"2024-05-01"}]}}`
	res := NewGateway(&fakeProvider{body: body}).DailyForecast(context.Background(), TextQuery("x"), Metric, 7)
	if res.OK() || len(res.Value) != 0 {
		t.Fatalf("expected empty default, got %+v", res)
	}
}

func TestGateway_MapPoint(t *testing.T) {
	body := `{"location":{"name":"Tokyo","lat":35.69,"lon":139.69},"current":{"temp_c":18.0,"condition":{"text":"Clear","icon":"//cdn/clear.png"}}}`
	res := NewGateway(&fakeProvider{body: body}).MapPoint(context.Background(), TextQuery("Tokyo"))
	if !res.OK() || res.Value == nil {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	want := MapPoint{City: "Tokyo", Lat: 35.69, Lon: 139.69, Temp: 18, Condition: "Clear", Icon: "https://cdn/clear.png"}
	if *res.Value != want {
		t.Fatalf("got %+v, want %+v", *res.Value, want)
	}
}

func TestGateway_MapPointNotFoundIsNil(t *testing.T) {
	zero := `{"location":{"name":"Null Island","lat":0,"lon":0},"current":{"temp_c":0,"condition":{"text":"","icon":""}}}`
	res := NewGateway(&fakeProvider{body: zero}).MapPoint(context.Background(), TextQuery("0,0"))
	if !res.OK() || res.Value == nil {
		t.Fatalf("a genuine point at (0,0) must not be the sentinel: %+v", res)
	}

	for _, body := range []string{`null`, ``, `{"location":{"name":"x"}}`} {
		res := NewGateway(&fakeProvider{body: body}).MapPoint(context.Background(), TextQuery("x"))
		if res.OK() || res.Value != nil {
			t.Errorf("body %q: expected nil sentinel, got %+v", body, res)
		}
	}
}

func TestGateway_CurrentAndForecast(t *testing.T) {
	body := `{
		"location":{"name":"Berlin","region":"Berlin","country":"Germany","lat":52.52,"lon":13.4},
		"current":{"temp_c":12.0,"feelslike_c":10.5,"humidity":81,"pressure_mb":1013.7,"wind_kph":9.0,
			"wind_dir":"WSW","vis_km":10.0,"uv":1.0,"temp_f":53.6,"feelslike_f":50.9,
			"condition":{"text":"Overcast","icon":"//cdn/overcast.png"}},
		"forecast":{"forecastday":[{"date":"2024-05-01","day":{"avgtemp_c":11.0,"maxtemp_c":14.0,"mintemp_c":8.0,
			"avgtemp_f":51.8,"maxtemp_f":57.2,"mintemp_f":46.4,"condition":{"text":"Rain","icon":"//cdn/rain.png"}}}]}
	}`
	p := &fakeProvider{body: body}
	lat, lon := 52.52, 13.4
	res := NewGateway(p).CurrentAndForecast(context.Background(), Query{Lat: &lat, Lon: &lon})
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	r := res.Value
	if r.City != "Berlin" || r.Country != "Germany" || r.WindDir != "WSW" || r.Icon != "https://cdn/overcast.png" {
		t.Errorf("unexpected report %+v", r)
	}
	if r.PressureMb != 1013 || r.Humidity != 81 {
		t.Errorf("pressure/humidity = %d/%d", r.PressureMb, r.Humidity)
	}
	if r.TempF == nil || *r.TempF != 53.6 {
		t.Errorf("temp_f = %v", r.TempF)
	}
	if len(r.Forecast) != 1 || r.Forecast[0].Icon != "https://cdn/rain.png" || *r.Forecast[0].MinTempF != 46.4 {
		t.Errorf("unexpected forecast %+v", r.Forecast)
	}
	if p.params.Get("q") != "52.52,13.4" || p.params.Get("days") != "3" || p.params.Get("alerts") != "yes" || p.params.Get("aqi") != "no" {
		t.Errorf("unexpected params %v", p.params)
	}
}

func TestGateway_CurrentAndForecastMissingFields(t *testing.T) {
	res := NewGateway(&fakeProvider{body: `{"location":{"name":"X"}}`}).CurrentAndForecast(context.Background(), TextQuery("X"))
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	r := res.Value
	if r.TempC != nil || r.UV != nil || r.Humidity != -1 || r.PressureMb != -1 {
		t.Errorf("expected absent markers, got %+v", r)
	}
	if r.Forecast == nil || len(r.Forecast) != 0 {
		t.Errorf("expected empty forecast list, got %#v", r.Forecast)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"temp_c":null`) || !strings.Contains(string(out), `"forecast":[]`) {
		t.Errorf("unexpected json %s", out)
	}
}

func TestGateway_DailyOutlook(t *testing.T) {
	p := &fakeProvider{body: divergentForecast}
	res := NewGateway(p).DailyOutlook(context.Background(), TextQuery("Lisbon"), Imperial)
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	o := res.Value
	if o.Lat != 38.72 || o.Lon != -9.14 || o.Timezone != "Europe/Lisbon" {
		t.Errorf("unexpected header lat=%v lon=%v tz=%v", o.Lat, o.Lon, o.Timezone)
	}
	if len(o.Daily) != 2 {
		t.Fatalf("got %d days, want 2", len(o.Daily))
	}

	d0 := o.Daily[0]
	if d0.Dt != int64(1714521600) {
		t.Errorf("dt = %#v, want epoch", d0.Dt)
	}
	if d0.TempMax != 86.0 || d0.TempMin != 64.4 || d0.TempDay != 75.2 {
		t.Errorf("unexpected imperial temps %+v", d0)
	}
	// No maxwind_mph on day one: the kph value is substituted.
	if d0.WindSpeed != 20.2 {
		t.Errorf("wind fallback = %v, want 20.2", d0.WindSpeed)
	}
	if d0.WeatherIcon == nil || *d0.WeatherIcon != "https://x/sunny.png" || *d0.WeatherDesc != "Sunny" {
		t.Errorf("unexpected condition %+v", d0)
	}

	d1 := o.Daily[1]
	if d1.Dt != "2024-05-02" {
		t.Errorf("dt fallback = %#v, want date string", d1.Dt)
	}
	if d1.WindSpeed != 6.8 || d1.Humidity != 70.0 {
		t.Errorf("unexpected day two %+v", d1)
	}
	if p.params.Get("days") != "7" || p.params.Get("alerts") != "no" {
		t.Errorf("unexpected params %v", p.params)
	}
}

func TestGateway_DailyOutlookMetricAndCoordinates(t *testing.T) {
	body := `{"forecast":{"forecastday":[{"date":"2024-05-01","day":{"maxtemp_c":30,"maxwind_kph":12}}]}}`
	res := NewGateway(&fakeProvider{body: body}).DailyOutlook(context.Background(), CoordinateQuery(10.5, -20.25), Metric)
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	o := res.Value
	if o.Lat != 10.5 || o.Lon != -20.25 || o.Timezone != nil {
		t.Errorf("expected request coordinates, got lat=%v lon=%v tz=%v", o.Lat, o.Lon, o.Timezone)
	}
	d := o.Daily[0]
	if d.TempMax != 30.0 || d.WindSpeed != 12.0 || d.TempMin != nil {
		t.Errorf("unexpected day %+v", d)
	}
	if d.WeatherDesc != nil || d.WeatherIcon != nil {
		t.Errorf("condition fields must be absent without a condition object: %+v", d)
	}
}
