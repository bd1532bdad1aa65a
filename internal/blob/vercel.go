package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
)

const (
	// DefaultVercelAPIURL is the Vercel Blob list endpoint.
	DefaultVercelAPIURL = "https://blob.vercel-storage.com"
	vercelPageLimit     = 1000
	// vercelMaxPages bounds pagination against a misbehaving cursor.
	vercelMaxPages = 100
)

// VercelStore lists blobs through the Vercel Blob REST API.
type VercelStore struct {
	apiURL  string
	token   string
	options *fetch.Options
}

type vercelListResponse struct {
	Blobs []struct {
		URL      string `json:"url"`
		Pathname string `json:"pathname"`
	} `json:"blobs"`
	Cursor  string `json:"cursor"`
	HasMore bool   `json:"hasMore"`
}

// NewVercelStore creates a store authenticated with a read-write token.
// An empty apiURL uses DefaultVercelAPIURL.
func NewVercelStore(apiURL, token string, opts *fetch.Options) *VercelStore {
	if apiURL == "" {
		apiURL = DefaultVercelAPIURL
	}
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &VercelStore{apiURL: apiURL, token: token, options: opts}
}

// Name implements Store.
func (s *VercelStore) Name() string { return "vercel" }

// List implements Store. It follows the cursor until hasMore is false.
func (s *VercelStore) List(ctx context.Context) ([]Object, error) {
	opts := *s.options
	opts.Headers = map[string]string{
		"Authorization": "Bearer " + s.token,
		"Accept":        "application/json",
	}

	var objects []Object
	cursor := ""
	for page := 0; page < vercelMaxPages; page++ {
		pageURL, err := s.pageURL(cursor)
		if err != nil {
			return nil, &Error{Provider: s.Name(), Message: "invalid API URL", Cause: err}
		}

		result, err := fetch.URL(ctx, pageURL, &opts)
		if err != nil {
			return nil, &Error{Provider: s.Name(), Message: "list request failed", Cause: err}
		}

		var resp vercelListResponse
		if err := json.Unmarshal(result.Body, &resp); err != nil {
			return nil, &Error{Provider: s.Name(), Message: "malformed list response", Cause: err}
		}
		for _, b := range resp.Blobs {
			objects = append(objects, Object{Pathname: b.Pathname, URL: b.URL})
		}

		if !resp.HasMore || resp.Cursor == "" {
			return objects, nil
		}
		cursor = resp.Cursor
	}
	return nil, &Error{Provider: s.Name(), Message: fmt.Sprintf("pagination exceeded %d pages", vercelMaxPages)}
}

func (s *VercelStore) pageURL(cursor string) (string, error) {
	u, err := url.Parse(s.apiURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(vercelPageLimit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
