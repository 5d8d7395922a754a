package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/lolhub/internal/domain/model"
)

const defaultTable = "match_rows"

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource reads match rows from a Postgres table with columns
// game_id, date, league, team_name, side, result, total_gold,
// game_length_seconds and a jsonb stats column.
type PostgresSource struct {
	db    Querier
	table string
	close func()
}

// NewPostgresSource wraps an existing querier.
func NewPostgresSource(db Querier, opts ...PostgresOption) *PostgresSource {
	s := &PostgresSource{db: db, table: defaultTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenPostgres connects a pool to url and returns a source that owns it.
func OpenPostgres(ctx context.Context, url string, opts ...PostgresOption) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrLoad, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrLoad, err)
	}
	s := NewPostgresSource(pool, opts...)
	s.close = pool.Close
	return s, nil
}

// Close releases the pool when the source owns one.
func (s *PostgresSource) Close() {
	if s.close != nil {
		s.close()
	}
}

// Load reads every row ordered by date then game id.
func (s *PostgresSource) Load(ctx context.Context) (model.Table, error) {
	q := fmt.Sprintf(`SELECT game_id, date, league, team_name, side, result,
		total_gold, game_length_seconds, stats
		FROM %s ORDER BY date, game_id`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrLoad, err)
	}
	defer rows.Close()

	var table model.Table
	for rows.Next() {
		var (
			r            model.MatchRow
			side         string
			result       int
			gold, length *float64
			stats        []byte
		)
		if err := rows.Scan(&r.GameID, &r.Date, &r.League, &r.Team, &side, &result, &gold, &length, &stats); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrLoad, err)
		}
		r.Side, _ = model.ParseSide(side)
		if result == 1 {
			r.Result = 1
		}
		r.Date = r.Date.UTC()
		r.TotalGold = orNaN(gold)
		r.GameLength = orNaN(length)
		r.Stats = decodeStats(stats)
		table = append(table, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrLoad, err)
	}
	if len(table) == 0 {
		return nil, ErrNoData
	}
	return table, nil
}

// Freshness returns the most recent game date in the table.
func (s *PostgresSource) Freshness(ctx context.Context) (time.Time, error) {
	q := fmt.Sprintf(`SELECT max(date) FROM %s`, pgx.Identifier{s.table}.Sanitize())
	var latest *time.Time
	if err := s.db.QueryRow(ctx, q).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("%w: freshness: %v", ErrLoad, err)
	}
	if latest == nil {
		return time.Time{}, ErrNoData
	}
	return latest.UTC(), nil
}

// decodeStats parses the jsonb stats object key by key. Nulls and
// non-numeric values are absent rather than zero.
func decodeStats(raw []byte) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	var out map[string]float64
	for k, v := range fields {
		var f *float64
		if err := json.Unmarshal(v, &f); err != nil || f == nil {
			continue
		}
		if out == nil {
			out = make(map[string]float64, len(fields))
		}
		out[k] = *f
	}
	return out
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
