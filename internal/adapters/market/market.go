// Package market reads season-winner prices from the Polymarket Gamma API.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/lolhub/internal/adapters/cache"
	"github.com/okian/lolhub/pkg/logger"
	"github.com/okian/lolhub/pkg/metrics"
)

// Defaults for the public API.
const (
	DefaultBaseURL = "https://gamma-api.polymarket.com"
	DefaultTTL     = 5 * time.Minute
	defaultTimeout = 10 * time.Second
	metricsSource  = "market"
	userAgent      = "LoLHub/1.0"
)

// DefaultTeamNames maps Polymarket outcome titles onto esports names.
var DefaultTeamNames = map[string]string{
	"Gen.G Esports": "Gen.G",
	"Dplus":         "Dplus KIA",
	"Freecs":        "Kwangdong Freecs",
	"BRION":         "OKSavingsBank BRION",
	"JD Gaming":     "JDG Intel",
}

// leagueMarkets matches event titles to leagues, checked in order.
var leagueMarkets = []struct{ league, pattern string }{
	{"LCK", "lck"},
	{"LPL", "lpl"},
}

// Odds is one team's season-winner market.
type Odds struct {
	Team           string  `json:"team"`
	PolymarketName string  `json:"polymarket_name"`
	League         string  `json:"league"`
	Odds           float64 `json:"odds"`
	Change1W       float64 `json:"change_1w"`
	Change1Mo      float64 `json:"change_1mo"`
	Volume         float64 `json:"volume"`
	Liquidity      float64 `json:"liquidity"`
	BestBid        float64 `json:"best_bid"`
	BestAsk        float64 `json:"best_ask"`
	Spread         float64 `json:"spread"`
}

// Pair holds the markets for two teams. Either side may be nil.
type Pair struct {
	TeamA  *Odds  `json:"team_a"`
	TeamB  *Odds  `json:"team_b"`
	League string `json:"league"`
}

// Client fetches active League of Legends events.
type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	log     logger.Logger
	names   map[string]string
}

// New creates a market client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		cache:   cache.Noop{},
		ttl:     DefaultTTL,
		log:     logger.Nop(),
		names:   make(map[string]string, len(DefaultTeamNames)),
	}
	for k, v := range DefaultTeamNames {
		c.names[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllOdds returns odds keyed by esports team name. Failures yield an empty map.
func (c *Client) AllOdds(ctx context.Context) map[string]Odds {
	key := fmt.Sprintf(cache.KeyOdds, "all")
	odds, err := cache.Fetch(ctx, c.cache, key, c.ttl, c.fetch)
	if err != nil {
		metrics.RecordUpstreamError(metricsSource)
		c.log.Warn(ctx, "failed to fetch market odds", logger.Error(err))
		return map[string]Odds{}
	}
	return odds
}

// TeamOdds looks up both teams. ok is false when neither is quoted.
func (c *Client) TeamOdds(ctx context.Context, a, b string) (Pair, bool) {
	all := c.AllOdds(ctx)
	var p Pair
	if o, ok := all[a]; ok {
		p.TeamA = &o
	}
	if o, ok := all[b]; ok {
		p.TeamB = &o
	}
	switch {
	case p.TeamA != nil:
		p.League = p.TeamA.League
	case p.TeamB != nil:
		p.League = p.TeamB.League
	default:
		return Pair{}, false
	}
	return p, true
}

func (c *Client) fetch(ctx context.Context) (map[string]Odds, error) {
	q := url.Values{}
	q.Set("tag_slug", "league-of-legends")
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("limit", "50")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	res, err := c.http.Do(req)
	metrics.RecordUpstreamLatency(metricsSource, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market: unexpected status %d", res.StatusCode)
	}

	var events []gammaEvent
	if err := json.NewDecoder(res.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("market: decode: %w", err)
	}

	out := make(map[string]Odds)
	for _, ev := range events {
		league := eventLeague(ev.Title)
		if league == "" {
			continue
		}
		for _, m := range ev.Markets {
			name := m.GroupItemTitle
			if name == "" || name == "Other" || m.OutcomePrices == "" {
				continue
			}
			var prices []flexFloat
			if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err != nil || len(prices) == 0 {
				continue
			}
			yes := float64(prices[0])
			if yes <= 0 {
				continue
			}
			team := name
			if mapped, ok := c.names[name]; ok {
				team = mapped
			}
			out[team] = Odds{
				Team:           team,
				PolymarketName: name,
				League:         league,
				Odds:           yes,
				Change1W:       float64(m.OneWeekPriceChange),
				Change1Mo:      float64(m.OneMonthPriceChange),
				Volume:         float64(m.Volume),
				Liquidity:      float64(m.Liquidity),
				BestBid:        float64(m.BestBid),
				BestAsk:        float64(m.BestAsk),
				Spread:         float64(m.Spread),
			}
		}
	}
	return out, nil
}

func eventLeague(title string) string {
	t := strings.ToLower(title)
	for _, lm := range leagueMarkets {
		if strings.Contains(t, lm.pattern) {
			return lm.league
		}
	}
	return ""
}

type gammaEvent struct {
	Title   string        `json:"title"`
	Markets []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	GroupItemTitle      string    `json:"groupItemTitle"`
	OutcomePrices       string    `json:"outcomePrices"`
	OneWeekPriceChange  flexFloat `json:"oneWeekPriceChange"`
	OneMonthPriceChange flexFloat `json:"oneMonthPriceChange"`
	Volume              flexFloat `json:"volume"`
	Liquidity           flexFloat `json:"liquidity"`
	BestBid             flexFloat `json:"bestBid"`
	BestAsk             flexFloat `json:"bestAsk"`
	Spread              flexFloat `json:"spread"`
}

// flexFloat accepts numbers, numeric strings and null. Anything else is 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}
