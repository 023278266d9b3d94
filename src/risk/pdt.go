package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"riskfortress/src/model"
)

// WindowBusinessDays is the regulatory rolling window for pattern day
// trade counting.
const WindowBusinessDays = 5

// PDTGuard tracks day-trade usage in a rolling business-day window and
// refuses new day trades one slot before the regulatory limit. If its
// persisted state cannot be read it fails closed: every day trade is
// blocked until an operator clears the window.
type PDTGuard struct {
	store DayTradeStore
	cfg   Config
}

func NewPDTGuard(store DayTradeStore, cfg Config) *PDTGuard {
	return &PDTGuard{store: store, cfg: cfg}
}

func (g *PDTGuard) windowCutoff(today time.Time) string {
	return BusinessDaysAgo(today, WindowBusinessDays).Format(model.DateLayout)
}

// Count prunes expired records and returns the number of day trades
// still inside the window.
func (g *PDTGuard) Count(ctx context.Context, today time.Time) (int, error) {
	cutoff := g.windowCutoff(today)

	if err := g.store.PruneBefore(ctx, cutoff); err != nil {
		return 0, fmt.Errorf("%w: pruning day trades: %v", ErrStateCorruption, err)
	}
	records, err := g.store.Since(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: reading day trades: %v", ErrStateCorruption, err)
	}
	return len(records), nil
}

// CanDayTrade reports whether one more day trade is admissible today.
// The returned detail explains a refusal.
func (g *PDTGuard) CanDayTrade(ctx context.Context, today time.Time) (bool, string) {
	count, err := g.Count(ctx, today)
	if err != nil {
		// Unreadable state must block, not pass: treating the window as
		// empty here would risk a regulatory violation.
		logger.WithError(err).Warn("PDT state unreadable, failing closed")
		return false, "day-trade state unreadable, blocked until operator clears it"
	}

	if count >= g.cfg.DayTradeBlockAt() {
		detail := fmt.Sprintf("%d/%d day trades used, %d reserved for emergency exits",
			count, g.cfg.MaxDayTrades, g.cfg.ReservedDayTrades)
		logger.WithFields(logger.Fields{"count": count, "max": g.cfg.MaxDayTrades}).
			Warn("PDT block")
		return false, detail
	}

	return true, fmt.Sprintf("%d/%d day trades used", count, g.cfg.MaxDayTrades)
}

// RecordDayTrade appends a record for a same-day round trip executed by
// the caller.
func (g *PDTGuard) RecordDayTrade(ctx context.Context, symbol string, now time.Time) error {
	rec := &model.DayTradeRecord{
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		TradeDate: now.Format(model.DateLayout),
		Timestamp: now,
	}
	if err := g.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("recording day trade: %w", err)
	}

	count, err := g.Count(ctx, now)
	if err != nil {
		return nil
	}
	entry := logger.WithFields(logger.Fields{
		"symbol": rec.Symbol,
		"date":   rec.TradeDate,
		"count":  count,
		"max":    g.cfg.MaxDayTrades,
	})
	entry.Warn("day trade recorded")
	if count >= g.cfg.DayTradeBlockAt() {
		entry.Warn("day-trade budget exhausted, only the emergency slot remains")
	}
	return nil
}

// History returns the non-pruned records, newest last.
func (g *PDTGuard) History(ctx context.Context, today time.Time) ([]model.DayTradeRecord, error) {
	cutoff := g.windowCutoff(today)
	records, err := g.store.Since(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%w: reading day trades: %v", ErrStateCorruption, err)
	}
	return records, nil
}

// ClearState wipes the window. Operator escape hatch for the fail-closed
// lockout.
func (g *PDTGuard) ClearState(ctx context.Context) error {
	if err := g.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing day-trade state: %w", err)
	}
	logger.Warn("PDT window cleared by operator")
	return nil
}
