package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"github.com/stretchr/testify/assert"
)

func TestClient_RepoStats(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/repos/UsamaZuberi/portfolio-v2", r.URL.Path)
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stargazers_count": 42, "forks_count": 7, "html_url": "https://github.com/UsamaZuberi/portfolio-v2"}`))
	}))
	defer server.Close()

	client := NewClient(Options{
		Owner:  "UsamaZuberi",
		Repo:   "portfolio-v2",
		APIURL: server.URL + "/",
		Token:  "gh-token",
	}, cache.NewMemoryCache(), nil)

	want := Stats{
		Owner:     "UsamaZuberi",
		Repo:      "portfolio-v2",
		Stars:     42,
		Forks:     7,
		URL:       "https://github.com/UsamaZuberi/portfolio-v2",
		Available: true,
	}
	assert.Equal(t, want, client.RepoStats(context.Background()))
	assert.Equal(t, want, client.RepoStats(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second call served from cache")
}

func TestClient_RepoStatsFailureYieldsZeros(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusForbidden, `{"message": "API rate limit exceeded"}`},
		{"malformed", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Options{Owner: "o", Repo: "r", APIURL: server.URL}, nil, nil)
			stats := client.RepoStats(context.Background())

			assert.False(t, stats.Available)
			assert.Zero(t, stats.Stars)
			assert.Zero(t, stats.Forks)
			assert.Equal(t, "https://github.com/o/r", stats.URL)

			client.RepoStats(context.Background())
			assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "failures are not cached")
		})
	}
}
