package schedule

import (
	"net/http"
	"time"

	"github.com/okian/lolhub/internal/adapters/cache"
	"github.com/okian/lolhub/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAPIKey sets the x-api-key header value.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache caches each league schedule for ttl.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if cc != nil {
			c.cache = cc
		}
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for fetch warnings.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLeagueIDs replaces the league code to API id table.
func WithLeagueIDs(ids map[string]string) Option {
	return func(c *Client) {
		if len(ids) > 0 {
			c.leagueIDs = ids
		}
	}
}

// WithMaxPages bounds pagination.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}
