package risk

import (
	"context"

	"riskfortress/src/model"
)

// DayTradeStore persists the rolling day-trade window. Implementations
// live in src/repository; tests use in-memory fakes.
type DayTradeStore interface {
	// Since returns all records with trade_date >= cutoff (inclusive).
	Since(ctx context.Context, cutoff string) ([]model.DayTradeRecord, error)
	Append(ctx context.Context, rec *model.DayTradeRecord) error
	// PruneBefore deletes records with trade_date < cutoff.
	PruneBefore(ctx context.Context, cutoff string) error
	// Clear wipes the window. Operator action after a fail-closed lockout.
	Clear(ctx context.Context) error
}

// BreakerStore persists the single circuit-breaker state row.
// Load returns (nil, nil) when no state has been written yet.
type BreakerStore interface {
	Load(ctx context.Context) (*model.BreakerState, error)
	Save(ctx context.Context, state *model.BreakerState) error
}
