// Package repository loads the match-record table from its backing stores.
package repository

import (
	"context"
	"time"

	"github.com/okian/lolhub/internal/domain/model"
)

// Source provides read access to the match-record table.
type Source interface {
	// Load returns the full table. Rows that cannot be parsed are dropped.
	Load(ctx context.Context) (model.Table, error)

	// Freshness reports when the underlying data last changed.
	Freshness(ctx context.Context) (time.Time, error)
}
