// Package schedule fetches league fixtures from the LoL Esports API.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/okian/lolhub/internal/adapters/cache"
	"github.com/okian/lolhub/pkg/logger"
	"github.com/okian/lolhub/pkg/metrics"
)

// Defaults for the public API.
const (
	DefaultBaseURL  = "https://esports-api.lolesports.com/persisted/gw"
	DefaultTTL      = 30 * time.Minute
	DefaultMaxPages = 5
	defaultTimeout  = 10 * time.Second
	metricsSource   = "schedule"
)

// Event states reported by the API.
const (
	StateUnstarted  = "unstarted"
	StateInProgress = "inProgress"
	StateCompleted  = "completed"
)

// ErrUnknownLeague is returned for leagues with no API id.
var ErrUnknownLeague = errors.New("league has no schedule id")

// DefaultLeagueIDs maps league codes to lolesports ids.
var DefaultLeagueIDs = map[string]string{
	"LCS":   "98767991299243165",
	"LEC":   "98767991302996019",
	"LCK":   "98767991310872058",
	"LPL":   "98767991314006698",
	"CBLOL": "98767991332355509",
	"LJL":   "98767991349978712",
	"TCL":   "98767991343597634",
	"LFL":   "105266103462388553",
	"LCP":   "113476371197627891",
	"NLC":   "105266098308571975",
	"LIT":   "105266094998946936",
	"ROL":   "107407335299756365",
	"EBL":   "105266111679554379",
	"HLL":   "105266108767593290",
	"AL":    "109545772895506419",
	"LCKC":  "98767991335774713",
	"HW":    "105266106309666619",
	"CCWS":  "113673877956508505",
}

// Match is one scheduled series.
type Match struct {
	ID            string    `json:"match_id"`
	League        string    `json:"league"`
	Date          time.Time `json:"date"`
	Block         string    `json:"block"`
	State         string    `json:"state"`
	TeamA         string    `json:"team_a"`
	TeamB         string    `json:"team_b"`
	TeamACode     string    `json:"team_a_code"`
	TeamBCode     string    `json:"team_b_code"`
	TeamAWins     int       `json:"team_a_wins"`
	TeamBWins     int       `json:"team_b_wins"`
	StrategyType  string    `json:"strategy_type"`
	StrategyCount int       `json:"strategy_count"`
}

// Client talks to the getSchedule endpoint.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	cache     cache.Cache
	ttl       time.Duration
	log       logger.Logger
	leagueIDs map[string]string
	maxPages  int
}

// New creates a schedule client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		http:      &http.Client{Timeout: defaultTimeout},
		cache:     cache.Noop{},
		ttl:       DefaultTTL,
		log:       logger.Nop(),
		leagueIDs: DefaultLeagueIDs,
		maxPages:  DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Leagues returns the league codes with schedule support, sorted.
func (c *Client) Leagues() []string {
	out := make([]string, 0, len(c.leagueIDs))
	for k := range c.leagueIDs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Schedule returns every match of the league sorted by start time. Failures
// are logged and yield an empty result.
func (c *Client) Schedule(ctx context.Context, league string) []Match {
	key := fmt.Sprintf(cache.KeySchedule, league, "all")
	matches, err := cache.Fetch(ctx, c.cache, key, c.ttl, func(ctx context.Context) ([]Match, error) {
		return c.fetch(ctx, league)
	})
	if err != nil {
		if !errors.Is(err, ErrUnknownLeague) {
			metrics.RecordUpstreamError(metricsSource)
			c.log.Warn(ctx, "failed to fetch schedule data", logger.String("league", league), logger.Error(err))
		}
		return nil
	}
	return matches
}

// Upcoming returns unstarted and in-progress matches.
func (c *Client) Upcoming(ctx context.Context, league string) []Match {
	return filter(c.Schedule(ctx, league), func(m Match) bool {
		return m.State == StateUnstarted || m.State == StateInProgress
	})
}

// Completed returns finished matches.
func (c *Client) Completed(ctx context.Context, league string) []Match {
	return filter(c.Schedule(ctx, league), func(m Match) bool {
		return m.State == StateCompleted
	})
}

func filter(in []Match, keep func(Match) bool) []Match {
	out := make([]Match, 0, len(in))
	for _, m := range in {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (c *Client) fetch(ctx context.Context, league string) ([]Match, error) {
	id, ok := c.leagueIDs[league]
	if !ok {
		return nil, ErrUnknownLeague
	}

	var (
		out   []Match
		token string
	)
	for page := 0; page < c.maxPages; page++ {
		resp, err := c.page(ctx, id, token)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			c.log.Warn(ctx, "schedule pagination stopped early",
				logger.String("league", league), logger.Int("page", page), logger.Error(err))
			break
		}
		for _, ev := range resp.Data.Schedule.Events {
			if ev.Type != "match" {
				continue
			}
			out = append(out, ev.toMatch(league))
		}
		newer := resp.Data.Schedule.Pages.Newer
		if newer == "" || newer == token {
			break
		}
		token = newer
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.Before(b)
	})
	return out, nil
}

func (c *Client) page(ctx context.Context, leagueID, token string) (*scheduleResponse, error) {
	q := url.Values{}
	q.Set("hl", "en-US")
	q.Set("leagueId", leagueID)
	if token != "" {
		q.Set("pageToken", token)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getSchedule?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	metrics.RecordUpstreamLatency(metricsSource, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule: unexpected status %d", res.StatusCode)
	}

	var body scheduleResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("schedule: decode: %w", err)
	}
	return &body, nil
}

type scheduleResponse struct {
	Data struct {
		Schedule struct {
			Events []event `json:"events"`
			Pages  struct {
				Older string `json:"older"`
				Newer string `json:"newer"`
			} `json:"pages"`
		} `json:"schedule"`
	} `json:"data"`
}

type event struct {
	StartTime string `json:"startTime"`
	State     string `json:"state"`
	Type      string `json:"type"`
	BlockName string `json:"blockName"`
	Match     struct {
		ID    string `json:"id"`
		Teams []struct {
			Name   string `json:"name"`
			Code   string `json:"code"`
			Result *struct {
				GameWins int `json:"gameWins"`
			} `json:"result"`
		} `json:"teams"`
		Strategy struct {
			Type  string `json:"type"`
			Count int    `json:"count"`
		} `json:"strategy"`
	} `json:"match"`
}

func (e event) toMatch(league string) Match {
	m := Match{
		ID:            e.Match.ID,
		League:        league,
		Block:         e.BlockName,
		State:         e.State,
		TeamA:         "TBD",
		TeamB:         "TBD",
		StrategyType:  e.Match.Strategy.Type,
		StrategyCount: e.Match.Strategy.Count,
	}
	if m.StrategyCount == 0 {
		m.StrategyCount = 1
	}
	if t, err := time.Parse(time.RFC3339, e.StartTime); err == nil {
		m.Date = t.UTC()
	}
	teams := e.Match.Teams
	if len(teams) > 0 {
		m.TeamA, m.TeamACode = orTBD(teams[0].Name), teams[0].Code
	}
	if len(teams) > 1 {
		m.TeamB, m.TeamBCode = orTBD(teams[1].Name), teams[1].Code
	}
	if len(teams) >= 2 {
		if r := teams[0].Result; r != nil {
			m.TeamAWins = r.GameWins
		}
		if r := teams[1].Result; r != nil {
			m.TeamBWins = r.GameWins
		}
	}
	return m
}

func orTBD(name string) string {
	if name == "" {
		return "TBD"
	}
	return name
}
