package blob

import (
	"context"
	"fmt"
	"net/url"

	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// GCSPublicHost serves public objects of a Google Cloud Storage bucket.
const GCSPublicHost = "https://storage.googleapis.com"

// GCSStore lists objects of a public Google Cloud Storage bucket.
type GCSStore struct {
	bucket  string
	service *storage.Service
}

// GCSOptions configures a GCSStore.
type GCSOptions struct {
	Bucket string
	// APIKey authenticates the listing. Empty lists anonymously.
	APIKey string
	// Endpoint overrides the JSON API base, for emulators and tests.
	Endpoint string
}

// NewGCSStore creates a store for opts.Bucket.
func NewGCSStore(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	if opts.Bucket == "" {
		return nil, &Error{Provider: "gcs", Message: "bucket is required"}
	}

	clientOpts := make([]option.ClientOption, 0, 2)
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	} else {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := storage.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, &Error{Provider: "gcs", Message: "failed to create client", Cause: err}
	}
	return &GCSStore{bucket: opts.Bucket, service: svc}, nil
}

// Name implements Store.
func (s *GCSStore) Name() string { return "gcs" }

// List implements Store.
func (s *GCSStore) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	call := s.service.Objects.List(s.bucket).Fields("items(name)", "nextPageToken")
	err := call.Pages(ctx, func(page *storage.Objects) error {
		for _, item := range page.Items {
			objects = append(objects, Object{
				Pathname: item.Name,
				URL:      s.publicURL(item.Name),
			})
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Provider: s.Name(), Message: fmt.Sprintf("list bucket %s", s.bucket), Cause: err}
	}
	return objects, nil
}

func (s *GCSStore) publicURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", GCSPublicHost, s.bucket, (&url.URL{Path: name}).EscapedPath())
}
