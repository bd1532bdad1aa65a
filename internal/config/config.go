// Package config provides configuration loading and validation for the portfolio API.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Blob storage providers
const (
	ProviderVercel = "vercel"
	ProviderGCS    = "gcs"
)

// BlobTokenEnv is the environment variable holding the Vercel Blob read/write token.
const BlobTokenEnv = "portfolio_v2_images_READ_WRITE_TOKEN"

// blobTokenPlaceholder is the value shipped in example env files.
const blobTokenPlaceholder = "your-blob-token-here"

// Defaults
const (
	DefaultPort               = 8080
	DefaultRevalidateInterval = 60 * time.Second
	DefaultImageCacheTTL      = 60 * time.Second
	DefaultBlobAPIURL         = "https://blob.vercel-storage.com"
	DefaultGitHubRepo         = "UsamaZuberi/portfolio-v2"
)

// Duration is a time.Duration that decodes from strings like "60s" in JSON and YAML files.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML accepts a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the service configuration.
// It can be loaded from a JSON or YAML file and overridden from the environment.
type Config struct {
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Data document
	DataURL            string   `json:"data_url,omitempty" yaml:"data_url,omitempty"`                       // Remote JSON document
	DataFile           string   `json:"data_file,omitempty" yaml:"data_file,omitempty"`                     // Local override of the bundled document
	RevalidateInterval Duration `json:"revalidate_interval,omitempty" yaml:"revalidate_interval,omitempty"` // Remote cache lifetime
	DisableFallback    *bool    `json:"disable_fallback,omitempty" yaml:"disable_fallback,omitempty"`       // Serve nothing instead of the local document

	// Image storage
	BlobProvider  string   `json:"blob_provider,omitempty" yaml:"blob_provider,omitempty"`
	BlobToken     string   `json:"blob_token,omitempty" yaml:"blob_token,omitempty"`
	BlobAPIURL    string   `json:"blob_api_url,omitempty" yaml:"blob_api_url,omitempty"`
	GCSBucket     string   `json:"gcs_bucket,omitempty" yaml:"gcs_bucket,omitempty"`
	GCSAPIKey     string   `json:"gcs_api_key,omitempty" yaml:"gcs_api_key,omitempty"`
	GCSEndpoint   string   `json:"gcs_endpoint,omitempty" yaml:"gcs_endpoint,omitempty"`
	ImageCacheTTL Duration `json:"image_cache_ttl,omitempty" yaml:"image_cache_ttl,omitempty"`

	// Backing services
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	// GitHub widget
	GitHubRepo  string `json:"github_repo,omitempty" yaml:"github_repo,omitempty"` // owner/name
	GitHubToken string `json:"github_token,omitempty" yaml:"github_token,omitempty"`

	// CORS: comma-separated origins, empty allows any
	CORSOrigins string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset variables leave fields empty.
func FromEnv() Config {
	cfg := Config{
		Port:            getEnvInt("PORT", 0),
		DataURL:         os.Getenv("PORTFOLIO_DATA_BLOB_URL"),
		DataFile:        os.Getenv("PORTFOLIO_DATA_FILE"),
		DisableFallback: envFallbackDisabled(),
		BlobProvider:    os.Getenv("BLOB_PROVIDER"),
		BlobToken:       os.Getenv(BlobTokenEnv),
		BlobAPIURL:      os.Getenv("BLOB_API_URL"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
		GCSAPIKey:       os.Getenv("GCS_API_KEY"),
		GCSEndpoint:     os.Getenv("GCS_ENDPOINT"),
		RedisURL:        os.Getenv("REDIS_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		GitHubRepo:      os.Getenv("GITHUB_REPO"),
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		CORSOrigins:     os.Getenv("CORS_ALLOWED_ORIGINS"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogFormat:       os.Getenv("LOG_FORMAT"),
	}
	cfg.RevalidateInterval = Duration(getEnvDuration("PORTFOLIO_DATA_REVALIDATE", 0))
	cfg.ImageCacheTTL = Duration(getEnvDuration("IMAGE_CACHE_TTL", 0))
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RevalidateInterval < 0 {
		return fmt.Errorf("config error: 'revalidate_interval' must be non-negative")
	}
	if c.ImageCacheTTL < 0 {
		return fmt.Errorf("config error: 'image_cache_ttl' must be non-negative")
	}

	switch c.BlobProvider {
	case "", ProviderVercel:
	case ProviderGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("config error: 'gcs_bucket' is required when blob_provider is %q", ProviderGCS)
		}
	default:
		return fmt.Errorf("config error: unknown blob_provider %q", c.BlobProvider)
	}

	if c.GitHubRepo != "" {
		parts := strings.Split(c.GitHubRepo, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("config error: 'github_repo' must be owner/name, got %q", c.GitHubRepo)
		}
	}

	if c.DataFile != "" {
		if _, err := os.Stat(c.DataFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: data file not found: %s", c.DataFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer environment values over file values and file values over built-ins.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DataURL == "" {
		result.DataURL = defaults.DataURL
	}
	if result.DataFile == "" {
		result.DataFile = defaults.DataFile
	}
	if result.BlobProvider == "" {
		result.BlobProvider = defaults.BlobProvider
	}
	if result.BlobToken == "" {
		result.BlobToken = defaults.BlobToken
	}
	if result.BlobAPIURL == "" {
		result.BlobAPIURL = defaults.BlobAPIURL
	}
	if result.GCSBucket == "" {
		result.GCSBucket = defaults.GCSBucket
	}
	if result.GCSAPIKey == "" {
		result.GCSAPIKey = defaults.GCSAPIKey
	}
	if result.GCSEndpoint == "" {
		result.GCSEndpoint = defaults.GCSEndpoint
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.GitHubRepo == "" {
		result.GitHubRepo = defaults.GitHubRepo
	}
	if result.GitHubToken == "" {
		result.GitHubToken = defaults.GitHubToken
	}
	if result.CORSOrigins == "" {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RevalidateInterval == 0 {
		result.RevalidateInterval = defaults.RevalidateInterval
	}
	if result.ImageCacheTTL == 0 {
		result.ImageCacheTTL = defaults.ImageCacheTTL
	}

	// Pointer bools: only an unset value takes the lower layer's
	if result.DisableFallback == nil {
		result.DisableFallback = defaults.DisableFallback
	}

	return result
}

// Builtin returns the built-in defaults.
func Builtin() Config {
	return Config{
		Port:               DefaultPort,
		RevalidateInterval: Duration(DefaultRevalidateInterval),
		ImageCacheTTL:      Duration(DefaultImageCacheTTL),
		BlobProvider:       ProviderVercel,
		BlobAPIURL:         DefaultBlobAPIURL,
		GitHubRepo:         DefaultGitHubRepo,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// Resolve layers environment over an optional config file over built-in defaults.
func Resolve(path string) (Config, error) {
	fileCfg := Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		fileCfg = *loaded
	}

	env := FromEnv()
	merged := fileCfg.MergeWithDefaults(Builtin())
	merged = env.MergeWithDefaults(merged)

	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// FallbackDisabled reports whether the local document must not stand in for the remote one.
func (c *Config) FallbackDisabled() bool {
	return c.DisableFallback != nil && *c.DisableFallback
}

// BlobConfigured reports whether image storage credentials are present for the selected provider.
func (c *Config) BlobConfigured() bool {
	switch c.BlobProvider {
	case ProviderGCS:
		return c.GCSBucket != ""
	default:
		return c.BlobToken != "" && c.BlobToken != blobTokenPlaceholder
	}
}

// GitHubOwnerRepo splits GitHubRepo into owner and name.
func (c *Config) GitHubOwnerRepo() (owner, repo string) {
	parts := strings.SplitN(c.GitHubRepo, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// AllowedOrigins splits CORSOrigins. A nil result allows any origin.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// envFallbackDisabled reads PORTFOLIO_DATA_FALLBACK. Unset or unparseable
// values return nil so lower layers keep theirs.
func envFallbackDisabled() *bool {
	value := os.Getenv("PORTFOLIO_DATA_FALLBACK")
	if value == "" {
		return nil
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	disabled := !enabled
	return &disabled
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
