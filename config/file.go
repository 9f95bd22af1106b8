package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileSettings struct {
	AccessCode    string            `yaml:"access_code"`
	BaseURLs      map[string]string `yaml:"base_urls"`
	HTTPTimeout   string            `yaml:"http_timeout"`
	RelayTimeout  string            `yaml:"relay_timeout"`
	FlushInterval string            `yaml:"flush_interval"`
	ForceRelay    *bool             `yaml:"force_relay"`
	RateLimit     float64           `yaml:"rate_limit"`
	RateBurst     int               `yaml:"rate_burst"`
	Telemetry     struct {
		ServiceName  string `yaml:"service_name"`
		OTLPEndpoint string `yaml:"otlp_endpoint"`
	} `yaml:"telemetry"`
}

// LoadFile reads a YAML configuration file and layers it over the defaults.
func LoadFile(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config file: %w", err)
	}
	var parsed fileSettings
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return Settings{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if parsed.AccessCode != "" {
		cfg.AccessCode = parsed.AccessCode
	}
	for name, url := range parsed.BaseURLs {
		if url == "" {
			continue
		}
		cfg.BaseURLs[Family(name)] = url
	}
	if dur, ok := parseDuration(parsed.HTTPTimeout); ok {
		cfg.HTTPTimeout = dur
	}
	if dur, ok := parseDuration(parsed.RelayTimeout); ok {
		cfg.RelayTimeout = dur
	}
	if dur, ok := parseDuration(parsed.FlushInterval); ok {
		cfg.FlushInterval = dur
	}
	if parsed.ForceRelay != nil {
		cfg.ForceRelay = *parsed.ForceRelay
	}
	if parsed.RateLimit > 0 {
		cfg.RateLimit = parsed.RateLimit
	}
	if parsed.RateBurst > 0 {
		cfg.RateBurst = parsed.RateBurst
	}
	if parsed.Telemetry.ServiceName != "" {
		cfg.Telemetry.ServiceName = parsed.Telemetry.ServiceName
	}
	if parsed.Telemetry.OTLPEndpoint != "" {
		cfg.Telemetry.OTLPEndpoint = parsed.Telemetry.OTLPEndpoint
	}
	return cfg, nil
}

func parseDuration(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	dur, err := time.ParseDuration(v)
	if err != nil || dur <= 0 {
		return 0, false
	}
	return dur, true
}
