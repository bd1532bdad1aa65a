// Package github reads star and fork counts for the site's source repository.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
	"go.uber.org/zap"
)

// DefaultAPIURL is the GitHub REST API base.
const DefaultAPIURL = "https://api.github.com"

// DefaultTTL is how long repository stats are reused.
const DefaultTTL = 10 * time.Minute

// Stats is the repository summary shown by the source widget.
type Stats struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	Stars     int    `json:"stars"`
	Forks     int    `json:"forks"`
	URL       string `json:"url"`
	Available bool   `json:"available"`
}

type repoResponse struct {
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	HTMLURL         string `json:"html_url"`
}

// Client fetches repository stats with caching.
type Client struct {
	owner   string
	repo    string
	apiURL  string
	token   string
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	options *fetch.Options
}

// Options configures a Client.
type Options struct {
	Owner  string
	Repo   string
	APIURL string
	Token  string
	TTL    time.Duration
	Fetch  *fetch.Options
}

// NewClient creates a client for owner/repo.
func NewClient(opts Options, c cache.Cache, logger *zap.Logger) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Fetch == nil {
		opts.Fetch = fetch.DefaultOptions()
	}
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		owner:   opts.Owner,
		repo:    opts.Repo,
		apiURL:  strings.TrimSuffix(opts.APIURL, "/"),
		token:   opts.Token,
		cache:   c,
		ttl:     opts.TTL,
		logger:  logger,
		options: opts.Fetch,
	}
}

func (c *Client) cacheKey() string {
	return fmt.Sprintf("github:%s/%s", c.owner, c.repo)
}

func (c *Client) repoURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", c.owner, c.repo)
}

// RepoStats returns the repository stats. Failures yield zero counts with
// Available=false and are not cached.
func (c *Client) RepoStats(ctx context.Context) Stats {
	var cached Stats
	if ok, err := cache.GetJSON(ctx, c.cache, c.cacheKey(), &cached); err != nil {
		c.logger.Warn("github stats cache read failed", zap.Error(err))
	} else if ok {
		return cached
	}

	stats, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch GitHub repository stats",
			zap.String("repo", c.owner+"/"+c.repo),
			zap.Error(err),
		)
		return Stats{Owner: c.owner, Repo: c.repo, URL: c.repoURL()}
	}

	if err := cache.SetJSON(ctx, c.cache, c.cacheKey(), stats, c.ttl); err != nil {
		c.logger.Warn("github stats cache write failed", zap.Error(err))
	}
	return stats
}

func (c *Client) fetch(ctx context.Context) (Stats, error) {
	opts := *c.options
	opts.Headers = map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if c.token != "" {
		opts.Headers["Authorization"] = "Bearer " + c.token
	}

	result, err := fetch.URL(ctx, fmt.Sprintf("%s/repos/%s/%s", c.apiURL, c.owner, c.repo), &opts)
	if err != nil {
		return Stats{}, err
	}

	var resp repoResponse
	if err := json.Unmarshal(result.Body, &resp); err != nil {
		return Stats{}, fmt.Errorf("malformed repository response: %w", err)
	}

	url := resp.HTMLURL
	if url == "" {
		url = c.repoURL()
	}
	return Stats{
		Owner:     c.owner,
		Repo:      c.repo,
		Stars:     resp.StargazersCount,
		Forks:     resp.ForksCount,
		URL:       url,
		Available: true,
	}, nil
}
