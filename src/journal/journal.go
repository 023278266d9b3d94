package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"riskfortress/src/model"
)

// Store is the persistence surface for journal entries.
type Store interface {
	Insert(ctx context.Context, entry *model.JournalEntry) error
	ForDate(ctx context.Context, date string) ([]model.JournalEntry, error)
	ExitsSince(ctx context.Context, cutoff string) ([]model.JournalEntry, error)
}

// DailySummary aggregates one trading day of journal activity.
type DailySummary struct {
	Date        string  `json:"date"`
	Entries     int     `json:"entries"`
	Exits       int     `json:"exits"`
	Skips       int     `json:"skips"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	RealizedPnL float64 `json:"realized_pnl"`
}

// Performance aggregates closed trades over a trailing window. These
// numbers feed position sizing when a candidate brings no statistics of
// its own.
type Performance struct {
	Days         int     `json:"days"`
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"`
	BestTrade    float64 `json:"best_trade"`
	WorstTrade   float64 `json:"worst_trade"`
	TotalPnL     float64 `json:"total_pnl"`
}

// Stats converts the trailing window into sizer statistics, or nil when
// the history cannot support a Kelly estimate.
func (p *Performance) Stats() *model.TradeStats {
	if p == nil || p.Trades == 0 || p.AvgWin <= 0 || p.AvgLoss <= 0 {
		return nil
	}
	return &model.TradeStats{WinRate: p.WinRate, AvgWin: p.AvgWin, AvgLoss: p.AvgLoss}
}

// Journal is the append-only audit trail of everything the gate and the
// conviction manager decide.
type Journal struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Journal {
	return &Journal{store: store, now: time.Now}
}

func (j *Journal) write(ctx context.Context, entry *model.JournalEntry) error {
	entry.EntryID = uuid.NewString()
	if entry.TradeDate == "" {
		entry.TradeDate = j.now().UTC().Format(model.DateLayout)
	}
	if err := j.store.Insert(ctx, entry); err != nil {
		return fmt.Errorf("writing journal entry: %w", err)
	}
	logger.WithFields(logger.Fields{
		"type":   entry.Type,
		"symbol": entry.Symbol,
	}).Debug("journal entry written")
	return nil
}

// RecordEntry journals an executed position open.
func (j *Journal) RecordEntry(ctx context.Context, symbol string, quantity, price float64, reason string) error {
	return j.write(ctx, &model.JournalEntry{
		Type:     model.JournalTypeEntry,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Reason:   reason,
	})
}

// RecordExit journals a close with its realized result.
func (j *Journal) RecordExit(ctx context.Context, symbol string, quantity, price, pnl float64, reason string) error {
	return j.write(ctx, &model.JournalEntry{
		Type:     model.JournalTypeExit,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		PnL:      &pnl,
		Reason:   reason,
	})
}

// RecordSkip journals a rejected or stood-aside candidate.
func (j *Journal) RecordSkip(ctx context.Context, symbol, reason string) error {
	return j.write(ctx, &model.JournalEntry{
		Type:   model.JournalTypeSkip,
		Symbol: symbol,
		Reason: reason,
	})
}

// ConvictionOpened records the lifecycle event for a new conviction.
func (j *Journal) ConvictionOpened(ctx context.Context, c model.Conviction) error {
	return j.write(ctx, &model.JournalEntry{
		Type:   model.JournalTypeConvictionOpened,
		Symbol: c.Symbol,
		Price:  c.EntryPrice,
		Reason: c.Thesis,
	})
}

// ConvictionExited records the lifecycle event for a triggered exit.
func (j *Journal) ConvictionExited(ctx context.Context, c model.Conviction) error {
	entry := &model.JournalEntry{
		Type:   model.JournalTypeConvictionExited,
		Symbol: c.Symbol,
		Reason: c.ExitReason,
	}
	if c.ExitPrice != nil {
		entry.Price = *c.ExitPrice
	}
	return j.write(ctx, entry)
}

// DailySummary aggregates the given calendar date (YYYY-MM-DD).
func (j *Journal) DailySummary(ctx context.Context, date string) (*DailySummary, error) {
	entries, err := j.store.ForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("loading journal for %s: %w", date, err)
	}

	summary := &DailySummary{Date: date}
	for _, e := range entries {
		switch e.Type {
		case model.JournalTypeEntry:
			summary.Entries++
		case model.JournalTypeExit:
			summary.Exits++
			if e.PnL != nil {
				summary.RealizedPnL += *e.PnL
				if *e.PnL > 0 {
					summary.Wins++
				} else {
					summary.Losses++
				}
			}
		case model.JournalTypeSkip:
			summary.Skips++
		}
	}
	return summary, nil
}

// Performance aggregates closed trades over the trailing days window.
func (j *Journal) Performance(ctx context.Context, days int) (*Performance, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := j.now().UTC().AddDate(0, 0, -days).Format(model.DateLayout)
	exits, err := j.store.ExitsSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("loading exits since %s: %w", cutoff, err)
	}

	perf := &Performance{Days: days}
	grossWin, grossLoss := 0.0, 0.0
	for _, e := range exits {
		if e.PnL == nil {
			continue
		}
		pnl := *e.PnL
		perf.Trades++
		perf.TotalPnL += pnl
		if pnl > 0 {
			perf.Wins++
			grossWin += pnl
		} else {
			perf.Losses++
			grossLoss += -pnl
		}
		if pnl > perf.BestTrade {
			perf.BestTrade = pnl
		}
		if pnl < perf.WorstTrade {
			perf.WorstTrade = pnl
		}
	}

	if perf.Trades > 0 {
		perf.WinRate = float64(perf.Wins) / float64(perf.Trades)
	}
	if perf.Wins > 0 {
		perf.AvgWin = grossWin / float64(perf.Wins)
	}
	if perf.Losses > 0 {
		perf.AvgLoss = grossLoss / float64(perf.Losses)
	}
	if grossLoss > 0 {
		perf.ProfitFactor = grossWin / grossLoss
	}
	return perf, nil
}
