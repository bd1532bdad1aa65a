package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"port": 9090,
		"data_url": "https://blob.example.com/portfolio.json",
		"revalidate_interval": "2m",
		"blob_provider": "gcs",
		"gcs_bucket": "portfolio-images",
		"image_cache_ttl": 30
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://blob.example.com/portfolio.json", cfg.DataURL)
	assert.Equal(t, 2*time.Minute, cfg.RevalidateInterval.Std())
	assert.Equal(t, ProviderGCS, cfg.BlobProvider)
	assert.Equal(t, "portfolio-images", cfg.GCSBucket)
	assert.Equal(t, 30*time.Second, cfg.ImageCacheTTL.Std())
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := `
port: 7000
data_url: https://blob.example.com/data.json
revalidate_interval: 45s
disable_fallback: true
redis_url: redis://localhost:6379/0
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.RevalidateInterval.Std())
	assert.True(t, cfg.FallbackDisabled())
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAMLDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("revalidate_interval: soon\n"), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "zero config", cfg: Config{}},
		{name: "port out of range", cfg: Config{Port: 70000}, wantErr: "'port'"},
		{name: "negative revalidate", cfg: Config{RevalidateInterval: Duration(-time.Second)}, wantErr: "revalidate_interval"},
		{name: "gcs without bucket", cfg: Config{BlobProvider: ProviderGCS}, wantErr: "gcs_bucket"},
		{name: "unknown provider", cfg: Config{BlobProvider: "s3"}, wantErr: "unknown blob_provider"},
		{name: "bad github repo", cfg: Config{GitHubRepo: "just-a-name"}, wantErr: "owner/name"},
		{name: "missing data file", cfg: Config{DataFile: "/nonexistent/data.json"}, wantErr: "data file not found"},
		{name: "valid gcs", cfg: Config{BlobProvider: ProviderGCS, GCSBucket: "b", GitHubRepo: "a/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		DataURL: "https://override.example.com/data.json",
	}

	merged := cfg.MergeWithDefaults(Builtin())

	assert.Equal(t, "https://override.example.com/data.json", merged.DataURL)
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Equal(t, DefaultRevalidateInterval, merged.RevalidateInterval.Std())
	assert.Equal(t, DefaultImageCacheTTL, merged.ImageCacheTTL.Std())
	assert.Equal(t, ProviderVercel, merged.BlobProvider)
	assert.Equal(t, DefaultBlobAPIURL, merged.BlobAPIURL)
	assert.Equal(t, DefaultGitHubRepo, merged.GitHubRepo)
	assert.False(t, merged.FallbackDisabled())
}

func TestMergeWithDefaults_DisableFallback(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name     string
		upper    *bool
		lower    *bool
		disabled bool
	}{
		{name: "both unset", disabled: false},
		{name: "lower only", lower: &on, disabled: true},
		{name: "upper enables over lower", upper: &off, lower: &on, disabled: false},
		{name: "upper disables over lower", upper: &on, lower: &off, disabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DisableFallback: tt.upper}
			merged := cfg.MergeWithDefaults(Config{DisableFallback: tt.lower})
			assert.Equal(t, tt.disabled, merged.FallbackDisabled())
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PORTFOLIO_DATA_BLOB_URL", "https://blob.example.com/p.json")
	t.Setenv("PORTFOLIO_DATA_REVALIDATE", "90s")
	t.Setenv("PORTFOLIO_DATA_FALLBACK", "false")
	t.Setenv(BlobTokenEnv, "vercel_blob_rw_token")
	t.Setenv("IMAGE_CACHE_TTL", "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://blob.example.com/p.json", cfg.DataURL)
	assert.Equal(t, 90*time.Second, cfg.RevalidateInterval.Std())
	require.NotNil(t, cfg.DisableFallback)
	assert.True(t, cfg.FallbackDisabled())
	assert.Equal(t, "vercel_blob_rw_token", cfg.BlobToken)
	assert.Equal(t, time.Duration(0), cfg.ImageCacheTTL.Std(), "invalid duration is ignored")
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	content := `{"port": 7000, "data_url": "https://file.example.com/data.json", "log_level": "debug"}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	t.Setenv("PORTFOLIO_DATA_BLOB_URL", "https://env.example.com/data.json")
	t.Setenv("PORT", "")

	cfg, err := Resolve(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "https://env.example.com/data.json", cfg.DataURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DefaultRevalidateInterval, cfg.RevalidateInterval.Std())
}

func TestFromEnv_FallbackUnset(t *testing.T) {
	t.Setenv("PORTFOLIO_DATA_FALLBACK", "")
	assert.Nil(t, FromEnv().DisableFallback)

	t.Setenv("PORTFOLIO_DATA_FALLBACK", "sometimes")
	assert.Nil(t, FromEnv().DisableFallback, "unparseable value is ignored")
}

func TestResolve_EnvReenablesFallback(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("disable_fallback: true\n"), 0644))

	t.Setenv("PORTFOLIO_DATA_FALLBACK", "")
	cfg, err := Resolve(tmpFile)
	require.NoError(t, err)
	assert.True(t, cfg.FallbackDisabled(), "file value holds without an env override")

	t.Setenv("PORTFOLIO_DATA_FALLBACK", "true")
	cfg, err = Resolve(tmpFile)
	require.NoError(t, err)
	assert.False(t, cfg.FallbackDisabled())
}

func TestBlobConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "no token", cfg: Config{}, want: false},
		{name: "placeholder token", cfg: Config{BlobToken: "your-blob-token-here"}, want: false},
		{name: "real token", cfg: Config{BlobToken: "vercel_blob_rw_abc"}, want: true},
		{name: "gcs bucket", cfg: Config{BlobProvider: ProviderGCS, GCSBucket: "images"}, want: true},
		{name: "gcs without bucket", cfg: Config{BlobProvider: ProviderGCS, BlobToken: "x"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.BlobConfigured())
		})
	}
}

func TestGitHubOwnerRepo(t *testing.T) {
	cfg := Config{GitHubRepo: "UsamaZuberi/portfolio-v2"}
	owner, repo := cfg.GitHubOwnerRepo()
	assert.Equal(t, "UsamaZuberi", owner)
	assert.Equal(t, "portfolio-v2", repo)

	cfg = Config{}
	owner, repo = cfg.GitHubOwnerRepo()
	assert.Empty(t, owner)
	assert.Empty(t, repo)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	cfg = Config{}
	assert.Nil(t, cfg.AllowedOrigins())
}
