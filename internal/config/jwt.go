package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Admin token settings.
const (
	AdminIssuer           = "portfolio-api"
	DefaultTokenHours     = 24
	MinJWTSecretLength    = 16
	jwtSecretEnv          = "JWT_SECRET"
	jwtExpirationHoursEnv = "JWT_EXPIRATION_HOURS"
)

// JWTConfig signs and checks the bearer tokens of the /api/admin routes.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// TTL is the default token lifetime.
func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// JWTConfigured reports whether JWT_SECRET is set. Admin routes are only mounted when it is.
func JWTConfigured() bool {
	return strings.TrimSpace(os.Getenv(jwtSecretEnv)) != ""
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default 24).
func NewJWTConfig() (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret:          os.Getenv(jwtSecretEnv),
		ExpirationHours: DefaultTokenHours,
		Issuer:          AdminIssuer,
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%s is required but not set", jwtSecretEnv)
	}
	if len(cfg.Secret) < MinJWTSecretLength {
		return nil, fmt.Errorf("%s must be at least %d characters", jwtSecretEnv, MinJWTSecretLength)
	}

	if raw := os.Getenv(jwtExpirationHoursEnv); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", jwtExpirationHoursEnv, err)
		}
		if hours < 1 {
			return nil, fmt.Errorf("%s must be at least 1 hour, got: %d", jwtExpirationHoursEnv, hours)
		}
		cfg.ExpirationHours = hours
	}
	return cfg, nil
}
