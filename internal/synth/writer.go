package synth

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/okian/lolhub/internal/domain/model"
)

const dateLayout = "2006-01-02 15:04:05"

var baseHeader = []string{
	"game_id", "date", "league", "team_name", "side", "result",
	"total_gold", "game_length_seconds",
}

// WriteCSV writes table with canonical headers followed by every known
// statistic column. Missing values are written as empty fields.
func WriteCSV(w io.Writer, table model.Table) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, baseHeader...), model.StatColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(header))
	for _, r := range table {
		rec[0] = r.GameID
		rec[1] = r.Date.UTC().Format(dateLayout)
		rec[2] = r.League
		rec[3] = r.Team
		rec[4] = string(r.Side)
		rec[5] = strconv.Itoa(r.Result)
		rec[6] = formatFloat(r.TotalGold)
		rec[7] = formatFloat(r.GameLength)
		for i, col := range model.StatColumns {
			v, ok := r.Stat(col)
			if !ok {
				rec[len(baseHeader)+i] = ""
				continue
			}
			rec[len(baseHeader)+i] = formatFloat(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s/%s: %w", r.GameID, r.Team, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
