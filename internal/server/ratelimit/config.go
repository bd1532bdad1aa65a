package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, "/"-terminated prefix, or pattern with "*" segments
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
// Malformed values fall back to their defaults.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	endpoints := DefaultEndpointConfigs()
	contactLimit := envOr("RATE_LIMIT_CONTACT_PER_HOUR", 0, strconv.Atoi)
	for i := range endpoints {
		if endpoints[i].Path == ContactPath && contactLimit > 0 {
			endpoints[i].Limit = contactLimit
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		IdleTimeout:     envOr("RATE_LIMIT_IDLE_TIMEOUT", time.Hour, time.ParseDuration),
		Whitelist:       ipSet(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       ipSet(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: endpoints,
	}
}

// ContactPath is the contact form endpoint, which carries the strictest limit.
const ContactPath = "/api/contact"

// DefaultEndpointConfigs returns the endpoint-specific limits.
// Reads not listed here fall under the global default; /health and /metrics are unlimited.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Writes that reach a mailbox or database
		{Path: ContactPath, Method: "POST", Limit: 5, Window: time.Hour, Burst: 2},

		// Reads that trigger an upstream fetch on a cache miss
		{Path: "/api/projects/*/preview", Method: "GET", Limit: 30, Window: time.Minute, Burst: 10},

		{Path: "/api/admin/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/admin/", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// envOr parses the variable key, or returns def when it is unset or malformed.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// ipSet splits a comma-separated address list.
func ipSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
