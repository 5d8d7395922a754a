package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/lolhub/internal/domain/model"
)

// Canonical names of the required columns.
const (
	colGameID     = "game_id"
	colDate       = "date"
	colLeague     = "league"
	colTeam       = "team_name"
	colSide       = "side"
	colResult     = "result"
	colTotalGold  = "total_gold"
	colGameLength = "game_length_seconds"
	colPosition   = "position"
)

var requiredColumns = []string{colGameID, colDate, colLeague, colTeam, colSide, colResult}

// headerAliases maps Oracle's Elixir export headers onto canonical names.
var headerAliases = map[string]string{
	"gameid":        colGameID,
	"teamname":      colTeam,
	"totalgold":     colTotalGold,
	"gamelength":    colGameLength,
	"golddiffat10":  model.StatGoldDiffAt10,
	"golddiffat15":  model.StatGoldDiffAt15,
	"xpdiffat10":    model.StatXPDiffAt10,
	"csdiffat10":    model.StatCSDiffAt10,
	"firstblood":    model.StatFirstBlood,
	"firstdragon":   model.StatFirstDragon,
	"firstbaron":    model.StatFirstBaron,
	"firsttower":    model.StatFirstTower,
	"heralds":       model.StatHeralds,
	"void_grubs":    model.StatVoidGrubs,
	"team kpm":      model.StatTeamKillsPerMin,
	"dpm":           model.StatDamagePerMin,
	"vspm":          model.StatVisionScorePerMin,
	"wpm":           model.StatWardsPerMin,
	"wcpm":          model.StatWardsClearedPerMin,
	"earned gpm":    model.StatEarnedGoldPerMin,
	"gspd":          model.StatGoldSharePercentDiff,
	"earnedgoldpm":  model.StatEarnedGoldPerMin,
	"visionscorepm": model.StatVisionScorePerMin,
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CSVSource reads match rows from a CSV file on disk.
type CSVSource struct {
	path         string
	teamRowsOnly bool
	leagues      map[string]struct{}
}

// NewCSVSource creates a source backed by the file at path.
func NewCSVSource(path string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{path: path, teamRowsOnly: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and parses the whole file.
func (s *CSVSource) Load(ctx context.Context) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()

	table, err := s.parse(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, ErrNoData
	}
	return table, nil
}

// Freshness returns the file modification time.
func (s *CSVSource) Freshness(_ context.Context) (time.Time, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return fi.ModTime(), nil
}

// ParseCSV parses match rows from r using default options.
func ParseCSV(ctx context.Context, r io.Reader) (model.Table, error) {
	return NewCSVSource("").parse(ctx, r)
}

func (s *CSVSource) parse(ctx context.Context, r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("%w: header: %v", ErrLoad, err)
	}
	idx := indexHeader(header)
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, c)
		}
	}

	statIdx := make(map[string]int)
	for _, c := range model.StatColumns {
		if i, ok := idx[c]; ok {
			statIdx[c] = i
		}
	}
	posIdx, hasPos := idx[colPosition]

	var table model.Table
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("%w: line %d: %v", ErrLoad, line, err)
		}
		field := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if s.teamRowsOnly && hasPos && !strings.EqualFold(field(posIdx), "team") {
			continue
		}

		row, ok := buildRow(field, idx)
		if !ok {
			continue
		}
		if s.leagues != nil {
			if _, keep := s.leagues[row.League]; !keep {
				continue
			}
		}
		if len(statIdx) > 0 {
			row.Stats = make(map[string]float64, len(statIdx))
			for name, i := range statIdx {
				if v, ok := parseFloat(field(i)); ok {
					row.Stats[name] = v
				}
			}
		}
		table = append(table, row)
	}
	return table, nil
}

func buildRow(field func(int) string, idx map[string]int) (model.MatchRow, bool) {
	gameID := field(idx[colGameID])
	team := field(idx[colTeam])
	if gameID == "" || team == "" {
		return model.MatchRow{}, false
	}
	date, ok := parseDate(field(idx[colDate]))
	if !ok {
		return model.MatchRow{}, false
	}
	side, _ := model.ParseSide(field(idx[colSide]))

	row := model.MatchRow{
		GameID:     gameID,
		Date:       date,
		League:     field(idx[colLeague]),
		Team:       team,
		Side:       side,
		TotalGold:  math.NaN(),
		GameLength: math.NaN(),
	}
	if v, ok := parseFloat(field(idx[colResult])); ok && v == 1 {
		row.Result = 1
	}
	if i, ok := idx[colTotalGold]; ok {
		if v, ok := parseFloat(field(i)); ok {
			row.TotalGold = v
		}
	}
	if i, ok := idx[colGameLength]; ok {
		if v, ok := parseFloat(field(i)); ok {
			row.GameLength = v
		}
	}
	return row, true
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
