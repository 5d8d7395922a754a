package market

import (
	"net/http"
	"time"

	"github.com/okian/lolhub/internal/adapters/cache"
	"github.com/okian/lolhub/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the Gamma API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
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

// WithCache caches the odds table for ttl.
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

// WithTeamNames overlays market-to-esports team name mappings.
func WithTeamNames(names map[string]string) Option {
	return func(c *Client) {
		for k, v := range names {
			c.names[k] = v
		}
	}
}
