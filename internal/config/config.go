package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-gateway/internal/common"
)

const defaultBaseURL = "https://api.weatherapi.com/v1"

// AppConfig is read once at startup and never modified afterwards.
type AppConfig struct {
	WeatherAPIKey     string
	WeatherAPIBaseURL string

	// CORSAllowedOrigin is the frontend origin allowed to call /api/weather*.
	// Empty disables the CORS middleware.
	CORSAllowedOrigin string

	Port string

	// HTTPTimeout bounds outbound provider calls (0 = transport default, no timeout).
	HTTPTimeout time.Duration

	// Upstream probe.
	ProbeInterval   time.Duration // 0 disables the probe
	ProbeQuery      string
	ProbeMaxHistory int           // max number of probe results kept (0 = unlimited)
	ProbeMaxAge     time.Duration // max age of probe results (0 = unlimited)

	// Optional circuit breaker around provider calls.
	BreakerMaxFailures int // 0 disables the breaker
	BreakerOpenTimeout time.Duration
}

// fileConfig mirrors AppConfig for the optional YAML file. Values are strings so
// the same parsing applies to file and environment.
type fileConfig struct {
	WeatherAPI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"weatherapi"`
	CORS struct {
		AllowedOrigin string `yaml:"allowed_origin"`
	} `yaml:"cors"`
	Server struct {
		Port        string `yaml:"port"`
		HTTPTimeout string `yaml:"http_timeout"`
	} `yaml:"server"`
	Probe struct {
		Interval   string `yaml:"interval"`
		Query      string `yaml:"query"`
		MaxHistory string `yaml:"max_history"`
		MaxAge     string `yaml:"max_age"`
	} `yaml:"probe"`
	Breaker struct {
		MaxFailures string `yaml:"max_failures"`
		OpenTimeout string `yaml:"open_timeout"`
	} `yaml:"breaker"`
}

// Load reads configuration from environment with sensible defaults. When
// WEATHER_CONFIG_FILE names a YAML file, its values sit between the
// environment (which wins) and the defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	var fc fileConfig
	if path := os.Getenv("WEATHER_CONFIG_FILE"); path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return nil, err
		}
		fc = loaded
	}

	cfg := &AppConfig{}
	var err error

	cfg.WeatherAPIKey = getenvDefault("WEATHERAPI_API_KEY", fc.WeatherAPI.APIKey)
	cfg.WeatherAPIBaseURL = strings.TrimRight(
		getenvDefault("WEATHERAPI_BASE_URL", common.FirstNonEmpty(fc.WeatherAPI.BaseURL, defaultBaseURL)), "/")
	cfg.CORSAllowedOrigin = getenvDefault("CORS_ALLOWED_ORIGIN", fc.CORS.AllowedOrigin)
	cfg.Port = getenvDefault("PORT", common.FirstNonEmpty(fc.Server.Port, "8080"))

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", common.FirstNonEmpty(fc.Server.HTTPTimeout, "0")); err != nil {
		return nil, err
	}

	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", common.FirstNonEmpty(fc.Probe.Interval, "15m")); err != nil {
		return nil, err
	}
	cfg.ProbeQuery = getenvDefault("PROBE_QUERY", common.FirstNonEmpty(fc.Probe.Query, "London"))
	// roughly 24h at 15-minute intervals
	if cfg.ProbeMaxHistory, err = getenvInt("PROBE_MAX_HISTORY", common.FirstNonEmpty(fc.Probe.MaxHistory, "96")); err != nil {
		return nil, err
	}
	if cfg.ProbeMaxAge, err = getenvDuration("PROBE_MAX_AGE", common.FirstNonEmpty(fc.Probe.MaxAge, "24h")); err != nil {
		return nil, err
	}

	if cfg.BreakerMaxFailures, err = getenvInt("BREAKER_MAX_FAILURES", common.FirstNonEmpty(fc.Breaker.MaxFailures, "0")); err != nil {
		return nil, err
	}
	if cfg.BreakerOpenTimeout, err = getenvDuration("BREAKER_OPEN_TIMEOUT", common.FirstNonEmpty(fc.Breaker.OpenTimeout, "1m")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func getenvInt(key, def string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(getenvDefault(key, def)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return n, nil
}
