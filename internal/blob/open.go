package blob

import (
	"context"

	"github.com/UsamaZuberi/portfolio-v2/internal/config"
	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
)

// Open returns the store selected by cfg, or nil when no credentials are configured.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if !cfg.BlobConfigured() {
		return nil, nil
	}
	switch cfg.BlobProvider {
	case config.ProviderGCS:
		store, err := NewGCSStore(ctx, GCSOptions{
			Bucket:   cfg.GCSBucket,
			APIKey:   cfg.GCSAPIKey,
			Endpoint: cfg.GCSEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return NewVercelStore(cfg.BlobAPIURL, cfg.BlobToken, fetch.DefaultOptions()), nil
	}
}
