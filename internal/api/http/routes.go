package httpapi

import (
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// monthlyHorizonDays is what /api/monthly asks for; the gateway caps it at
// the provider's free-tier horizon.
const monthlyHorizonDays = 30

var validate = validator.New()

// Options configures route registration.
type Options struct {
	// CORSAllowedOrigin, when set, is the only origin allowed to call /api/weather*.
	CORSAllowedOrigin string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, gw *weather.Gateway, opts Options) {
	h := &handlers{gw: gw}

	api := app.Group("/api")

	// These endpoints never fail: they answer 200 with the operation's
	// default value whatever went wrong.
	api.Get("/cities", h.cities)
	api.Get("/details", h.details)
	api.Get("/hourly", h.hourly)
	api.Get("/forecast", h.forecast)
	api.Get("/monthly", h.monthly)
	api.Get("/map", h.mapPoint)

	var wx fiber.Router
	if opts.CORSAllowedOrigin != "" {
		wx = api.Group("/weather", cors.New(cors.Config{
			AllowOrigins: opts.CORSAllowedOrigin,
			AllowMethods: "GET,OPTIONS",
		}))
	} else {
		wx = api.Group("/weather")
	}

	wx.Get("", h.currentAndForecast)
	wx.Get("/forecast", h.outlook)
	wx.Get("/cities", h.cities)
}

type handlers struct {
	gw *weather.Gateway
}

func (h *handlers) cities(c *fiber.Ctx) error {
	res := h.gw.SearchCities(c.UserContext(), c.Query("q"), weather.DefaultSearchLimit)
	return c.JSON(res.Value)
}

func (h *handlers) details(c *fiber.Ctx) error {
	res := h.gw.CurrentDetails(c.UserContext(), weather.TextQuery(c.Query("city")))
	return c.JSON(res.Value)
}

func (h *handlers) hourly(c *fiber.Ctx) error {
	res := h.gw.Hourly(c.UserContext(), weather.TextQuery(c.Query("city")))
	return c.JSON(res.Value)
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	unit := weather.ParseTemperatureUnit(c.Query("unit", "C"))
	res := h.gw.DailyForecast(c.UserContext(), weather.TextQuery(c.Query("city")), unit, weather.MaxForecastDays)
	return c.JSON(res.Value)
}

func (h *handlers) monthly(c *fiber.Ctx) error {
	res := h.gw.DailyForecast(c.UserContext(), weather.TextQuery(c.Query("city")), weather.Metric, monthlyHorizonDays)
	return c.JSON(res.Value)
}

// mapPoint answers null when the location could not be resolved.
func (h *handlers) mapPoint(c *fiber.Ctx) error {
	res := h.gw.MapPoint(c.UserContext(), weather.TextQuery(c.Query("city")))
	return c.JSON(res.Value)
}

func (h *handlers) currentAndForecast(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid parameters",
			"message": err.Error(),
		})
	}

	res := h.gw.CurrentAndForecast(c.UserContext(), q)
	switch res.Reason() {
	case "":
		return c.JSON(res.Value)
	case weather.ReasonBadInput:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Missing parameters",
			"message": "Please provide either city or lat & lon",
		})
	default:
		log.Printf("ERROR: GET /api/weather: %v", res.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch weather",
			"details": res.Err.Error(),
		})
	}
}

func (h *handlers) outlook(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid parameters",
			"message": err.Error(),
		})
	}

	units := weather.ParseUnitSystem(c.Query("units", string(weather.Metric)))
	res := h.gw.DailyOutlook(c.UserContext(), q, units)
	if res.OK() {
		return c.JSON(res.Value)
	}

	if res.Reason() == weather.ReasonBadInput {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Provide city or lat+lon"})
	}

	log.Printf("ERROR: GET /api/weather/forecast: %v", res.Err)
	switch res.Reason() {
	case weather.ReasonConfig:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server missing weather provider API key"})
	case weather.ReasonEmptyResponse:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "No response from weather provider"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "Forecast fetch failed",
			"detail": res.Err.Error(),
		})
	}
}

// locationQuery holds the city-or-coordinates parameters of /api/weather*.
type locationQuery struct {
	City string
	Lat  string `validate:"omitempty,latitude"`
	Lon  string `validate:"omitempty,longitude"`
}

func parseLocationQuery(c *fiber.Ctx) (weather.Query, error) {
	lq := locationQuery{
		City: strings.TrimSpace(c.Query("city")),
		Lat:  strings.TrimSpace(c.Query("lat")),
		Lon:  strings.TrimSpace(c.Query("lon")),
	}
	if err := validate.Struct(lq); err != nil {
		return weather.Query{}, err
	}

	q := weather.Query{Text: lq.City}
	if lq.Lat != "" {
		lat, err := strconv.ParseFloat(lq.Lat, 64)
		if err != nil {
			return weather.Query{}, err
		}
		q.Lat = &lat
	}
	if lq.Lon != "" {
		lon, err := strconv.ParseFloat(lq.Lon, 64)
		if err != nil {
			return weather.Query{}, err
		}
		q.Lon = &lon
	}
	return q, nil
}
