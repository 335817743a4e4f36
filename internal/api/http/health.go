package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// ProbeHistory is the read side of the probe result store.
type ProbeHistory interface {
	Latest() (weather.ProbeResult, error)
	Range(from, to time.Time) ([]weather.ProbeResult, error)
}

// RegisterHealth adds /health. probes may be nil when the upstream probe is disabled.
func RegisterHealth(app *fiber.App, service string, probes ProbeHistory) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":   "ok",
			"service":  service,
			"upstream": nil,
		}
		if probes == nil {
			return c.JSON(body)
		}

		if latest, err := probes.Latest(); err == nil {
			body["upstream"] = latest
		}

		recent, _ := probes.Range(time.Time{}, time.Now().UTC())
		failures := 0
		for _, r := range recent {
			if !r.OK {
				failures++
			}
		}
		body["probes"] = fiber.Map{
			"total":    len(recent),
			"failures": failures,
		}
		return c.JSON(body)
	})
}
