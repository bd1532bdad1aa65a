package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/UsamaZuberi/portfolio-v2/internal/config"
	"github.com/joho/godotenv"
)

// TestMain runs before all tests and loads .env if available
func TestMain(m *testing.M) {
	_ = godotenv.Load()

	os.Exit(m.Run())
}

// isolateEnv clears the settings that would attach remote backends.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORTFOLIO_DATA_BLOB_URL", "PORTFOLIO_DATA_FILE", "BLOB_PROVIDER", config.BlobTokenEnv,
		"GCS_BUCKET", "GCS_API_KEY", "REDIS_URL", "DATABASE_URL", "JWT_SECRET", "JWT_EXPIRATION_HOURS",
	} {
		t.Setenv(key, "")
	}
}

// execute runs the root command in-process and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath, logLevel, logFormat, verbose = "", "error", "console", false
	listImagesSlug, listImagesJSON = "", false
	timelineFilter, timelineJSON = "all", false
	tokenSubject, tokenHours = "admin", 0
	servePort = 0
	validateSchemaPath = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}
