// Package config centralises runtime configuration for the wsdot client.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Family identifies an upstream API service family.
type Family string

const (
	// FamilySchedule covers the WSF schedule API.
	FamilySchedule Family = "schedule"
	// FamilyTerminals covers the WSF terminals API.
	FamilyTerminals Family = "terminals"
	// FamilyVessels covers the WSF vessels API.
	FamilyVessels Family = "vessels"
	// FamilyFares covers the WSF fares API.
	FamilyFares Family = "fares"
	// FamilyTraveler covers the WSDOT traveler information API.
	FamilyTraveler Family = "traveler"
)

// Families lists every known service family in catalog order.
func Families() []Family {
	return []Family{FamilySchedule, FamilyTerminals, FamilyVessels, FamilyFares, FamilyTraveler}
}

// Settings contains the client configuration tree loaded from defaults and overrides.
type Settings struct {
	AccessCode    string
	BaseURLs      map[Family]string
	HTTPTimeout   time.Duration
	RelayTimeout  time.Duration
	FlushInterval time.Duration
	ForceRelay    bool
	RateLimit     float64
	RateBurst     int
	Telemetry     TelemetryConfig
}

// TelemetryConfig configures the OpenTelemetry metric exporter.
type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

// Default returns the default client configuration.
func Default() Settings {
	return Settings{
		AccessCode: "",
		BaseURLs: map[Family]string{
			FamilySchedule:  "https://www.wsdot.wa.gov/ferries/api/schedule/rest",
			FamilyTerminals: "https://www.wsdot.wa.gov/ferries/api/terminals/rest",
			FamilyVessels:   "https://www.wsdot.wa.gov/ferries/api/vessels/rest",
			FamilyFares:     "https://www.wsdot.wa.gov/ferries/api/fares/rest",
			FamilyTraveler:  "https://www.wsdot.wa.gov/Traffic/api",
		},
		HTTPTimeout:   10 * time.Second,
		RelayTimeout:  30 * time.Second,
		FlushInterval: 5 * time.Minute,
		ForceRelay:    false,
		RateLimit:     10,
		RateBurst:     20,
		Telemetry: TelemetryConfig{
			ServiceName:  "wsdot-client",
			OTLPEndpoint: "",
		},
	}
}

// FromEnv loads configuration values from environment variables, overriding defaults.
func FromEnv() Settings {
	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("WSDOT_ACCESS_CODE")); v != "" {
		cfg.AccessCode = v
	}
	for _, family := range Families() {
		key := "WSDOT_" + strings.ToUpper(string(family)) + "_BASE_URL"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.BaseURLs[family] = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("WSDOT_HTTP_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("WSDOT_FLUSH_INTERVAL")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.FlushInterval = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("WSDOT_FORCE_RELAY")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ForceRelay = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("WSDOT_OTLP_ENDPOINT")); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	return cfg
}

// Option mutates Settings when applied via Apply.
type Option func(*Settings)

// Apply applies the provided Option set to a copy of the base Settings.
func Apply(base Settings, opts ...Option) Settings {
	cfg := base.clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// BaseURL returns the configured base URL for the given family.
func (s Settings) BaseURL(family Family) (string, bool) {
	url, ok := s.BaseURLs[family]
	if !ok || strings.TrimSpace(url) == "" {
		return "", false
	}
	return strings.TrimRight(url, "/"), true
}

// WithAccessCode configures the upstream API access code.
func WithAccessCode(code string) Option {
	trimmed := strings.TrimSpace(code)
	return func(s *Settings) {
		if trimmed != "" {
			s.AccessCode = trimmed
		}
	}
}

// WithBaseURL overrides the base URL for the given family.
func WithBaseURL(family Family, baseURL string) Option {
	trimmed := strings.TrimSpace(baseURL)
	return func(s *Settings) {
		if trimmed == "" {
			return
		}
		if s.BaseURLs == nil {
			s.BaseURLs = make(map[Family]string)
		}
		s.BaseURLs[family] = trimmed
	}
}

// WithHTTPTimeout overrides the direct transport HTTP timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(s *Settings) {
		if timeout > 0 {
			s.HTTPTimeout = timeout
		}
	}
}

// WithRelayTimeout overrides the relay transport deadline.
func WithRelayTimeout(timeout time.Duration) Option {
	return func(s *Settings) {
		if timeout > 0 {
			s.RelayTimeout = timeout
		}
	}
}

// WithFlushInterval overrides how often cache flush probes are issued.
func WithFlushInterval(interval time.Duration) Option {
	return func(s *Settings) {
		if interval > 0 {
			s.FlushInterval = interval
		}
	}
}

// WithForceRelay forces the script-relay transport regardless of environment.
func WithForceRelay(force bool) Option {
	return func(s *Settings) {
		s.ForceRelay = force
	}
}

// WithRateLimit overrides the direct transport request rate and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Settings) {
		if perSecond > 0 {
			s.RateLimit = perSecond
		}
		if burst > 0 {
			s.RateBurst = burst
		}
	}
}

// WithTelemetry configures the metric exporter endpoint and service name.
func WithTelemetry(serviceName, otlpEndpoint string) Option {
	serviceName = strings.TrimSpace(serviceName)
	otlpEndpoint = strings.TrimSpace(otlpEndpoint)
	return func(s *Settings) {
		if serviceName != "" {
			s.Telemetry.ServiceName = serviceName
		}
		if otlpEndpoint != "" {
			s.Telemetry.OTLPEndpoint = otlpEndpoint
		}
	}
}

func (s Settings) clone() Settings {
	out := s
	out.BaseURLs = make(map[Family]string, len(s.BaseURLs))
	for k, v := range s.BaseURLs {
		out.BaseURLs[k] = v
	}
	return out
}
