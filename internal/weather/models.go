package weather

// CurrentDetails is the current-conditions summary served by /api/details.
// All values are metric as the provider reports them.
type CurrentDetails struct {
	Temp       float64 `json:"temp"`
	FeelsLike  float64 `json:"feelsLike"`
	Humidity   int     `json:"humidity"`
	Wind       float64 `json:"wind"`
	Pressure   float64 `json:"pressure"`
	UV         float64 `json:"uv"`
	Visibility float64 `json:"visibility"`
	Cloud      int     `json:"cloud"`
}

// HourlyPoint is one hour of the current day's forecast.
type HourlyPoint struct {
	Time      string  `json:"time"` // HH:MM
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feelsLike"`
	Humidity  int     `json:"humidity"`
	Wind      float64 `json:"wind"`
	Rain      float64 `json:"rain"` // chance of rain, 0-100
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
}

// DailyPoint is one forecast day in the selected unit system.
type DailyPoint struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Max       float64 `json:"max"`
	Min       float64 `json:"min"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
}

// MapPoint places the current temperature of a resolved location on a map.
type MapPoint struct {
	City      string  `json:"city"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
}

// CurrentReport is the composite current + short forecast view served by /api/weather.
// Floating point fields are nil when the provider omitted them.
type CurrentReport struct {
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`

	TempC      *float64 `json:"temp_c"`
	FeelsLikeC *float64 `json:"feelslike_c"`
	TempF      *float64 `json:"temp_f"`
	FeelsLikeF *float64 `json:"feelslike_f"`
	Humidity   int64    `json:"humidity"`
	PressureMb int64    `json:"pressure_mb"`
	WindKph    *float64 `json:"wind_kph"`
	WindDir    string   `json:"wind_dir"`
	VisKm      *float64 `json:"vis_km"`
	UV         *float64 `json:"uv"`
	Condition  string   `json:"condition"`
	Icon       string   `json:"icon"`

	Forecast []ReportDay `json:"forecast"`
}

// ReportDay is one day of CurrentReport.Forecast, carrying both unit systems.
type ReportDay struct {
	Date     string   `json:"date"`
	AvgTempC *float64 `json:"avg_temp_c"`
	MaxTempC *float64 `json:"max_temp_c"`
	MinTempC *float64 `json:"min_temp_c"`
	AvgTempF *float64 `json:"avg_temp_f"`
	MaxTempF *float64 `json:"max_temp_f"`
	MinTempF *float64 `json:"min_temp_f"`

	Condition string `json:"condition"`
	Icon      string `json:"icon"`
}

// Outlook is the 7-day daily view served by /api/weather/forecast.
// Numeric values are passed through untyped, exactly as the provider sent them.
type Outlook struct {
	Lat      any          `json:"lat"`
	Lon      any          `json:"lon"`
	Timezone any          `json:"timezone"`
	Daily    []OutlookDay `json:"daily"`
}

// OutlookDay is one entry of Outlook.Daily. Dt is the day's epoch seconds, or the
// date string when the provider did not send an epoch.
type OutlookDay struct {
	Dt          any     `json:"dt"`
	TempDay     any     `json:"temp_day"`
	TempMin     any     `json:"temp_min"`
	TempMax     any     `json:"temp_max"`
	WindSpeed   any     `json:"wind_speed"`
	Humidity    any     `json:"humidity"`
	WeatherDesc *string `json:"weather_desc,omitempty"`
	WeatherIcon *string `json:"weather_icon,omitempty"`
}
