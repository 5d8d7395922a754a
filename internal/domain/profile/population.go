package profile

import (
	"math"

	"github.com/okian/lolhub/internal/domain/model"
)

// Moments holds the cross-team mean and standard deviation of one column.
type Moments struct {
	Mean float64
	Std  float64
}

// Population holds per-column moments over per-team means. Every team counts
// once regardless of how many games it played.
type Population map[string]Moments

// ComputePopulation derives column moments from the table. Columns no team
// recorded are left out. A zero or undefined deviation is replaced by 1.
func ComputePopulation(table model.Table, columns []string) Population {
	pop := make(Population, len(columns))
	teams := table.Teams()
	byTeam := make(map[string]model.Table, len(teams))
	for _, r := range table {
		byTeam[r.Team] = append(byTeam[r.Team], r)
	}

	for _, col := range columns {
		means := make([]float64, 0, len(teams))
		for _, team := range teams {
			if m, ok := columnMean(byTeam[team], col); ok {
				means = append(means, m)
			}
		}
		if len(means) == 0 {
			continue
		}
		mean, std := meanStd(means)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		pop[col] = Moments{Mean: mean, Std: std}
	}
	return pop
}

// columnMean averages the present values of col. ok is false when none exist.
func columnMean(rows model.Table, col string) (float64, bool) {
	sum, n := 0.0, 0
	for _, r := range rows {
		if v, ok := r.Stat(col); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// meanStd returns the mean and sample standard deviation (n-1). A single
// value has an undefined deviation, reported as NaN.
func meanStd(xs []float64) (float64, float64) {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if len(xs) < 2 {
		return mean, math.NaN()
	}
	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}
