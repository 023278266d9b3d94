package conviction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"riskfortress/src/model"
)

var (
	ErrNotFound     = errors.New("conviction: not found")
	ErrDuplicate    = errors.New("conviction: symbol already has an active conviction")
	ErrLimitReached = errors.New("conviction: max concurrent convictions reached")
	ErrInvalidInput = errors.New("conviction: invalid input")
)

// Store is the persistence surface the manager needs.
type Store interface {
	Active(ctx context.Context) ([]model.Conviction, error)
	ActiveBySymbol(ctx context.Context, symbol string) (*model.Conviction, error)
	All(ctx context.Context) ([]model.Conviction, error)
	Save(ctx context.Context, c *model.Conviction) error
	Delete(ctx context.Context, id uint) error
	AddEvent(ctx context.Context, ev *model.CatalystEvent) error
	EventsFor(ctx context.Context, convictionID uint) ([]model.CatalystEvent, error)
}

// Journal receives lifecycle events for the audit trail. A nil journal
// disables recording.
type Journal interface {
	ConvictionOpened(ctx context.Context, c model.Conviction) error
	ConvictionExited(ctx context.Context, c model.Conviction) error
}

// SetRequest declares a new conviction position.
type SetRequest struct {
	Symbol            string
	Thesis            string
	Catalyst          string
	EntryPrice        float64
	MaxPainPrice      float64
	StructuralSupport float64 // 0 = no support level
	CatalystDeadline  time.Time
	MaxPositionPct    float64
	SendItMode        bool
}

// ExitSignal instructs the caller to fully liquidate the symbol.
type ExitSignal struct {
	Symbol string           `json:"symbol"`
	Reason model.ExitReason `json:"reason"`
	Price  float64          `json:"price"`
	Detail string           `json:"detail"`
}

// Report is the live status view of one conviction.
type Report struct {
	Symbol           string  `json:"symbol"`
	UnrealizedPct    float64 `json:"unrealized_pct"`
	DistanceToPain   float64 `json:"distance_to_pain_pct"`
	DaysRemaining    int     `json:"days_remaining"`
	ConfirmingEvents int     `json:"confirming_events"`
	SendItMode       bool    `json:"send_it_mode"`
	Invalidated      bool    `json:"invalidated"`
}

// Manager owns the conviction lifecycle. Convictions exit on exactly
// four triggers, checked in priority order; price appreciation is never
// one of them.
type Manager struct {
	store   Store
	journal Journal
	maxOpen int
}

func NewManager(store Store, journal Journal, maxConvictions int) *Manager {
	if maxConvictions <= 0 {
		maxConvictions = 3
	}
	return &Manager{store: store, journal: journal, maxOpen: maxConvictions}
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Set opens a conviction. One active conviction per symbol; at most
// maxOpen concurrently. Thresholds are recorded exactly as given.
func (m *Manager) Set(ctx context.Context, req SetRequest) (*model.Conviction, error) {
	symbol := normalizeSymbol(req.Symbol)
	switch {
	case symbol == "":
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidInput)
	case req.EntryPrice <= 0:
		return nil, fmt.Errorf("%w: entry price must be positive", ErrInvalidInput)
	case req.MaxPainPrice <= 0:
		return nil, fmt.Errorf("%w: max pain price must be positive", ErrInvalidInput)
	case req.StructuralSupport < 0:
		return nil, fmt.Errorf("%w: structural support must not be negative", ErrInvalidInput)
	case req.CatalystDeadline.IsZero():
		return nil, fmt.Errorf("%w: catalyst deadline required", ErrInvalidInput)
	case req.MaxPositionPct <= 0 || req.MaxPositionPct > 1:
		return nil, fmt.Errorf("%w: max position pct must be in (0, 1]", ErrInvalidInput)
	}

	existing, err := m.store.ActiveBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("checking existing conviction: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, symbol)
	}

	active, err := m.store.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting active convictions: %w", err)
	}
	if len(active) >= m.maxOpen {
		return nil, fmt.Errorf("%w: %d open", ErrLimitReached, len(active))
	}

	c := &model.Conviction{
		Symbol:            symbol,
		Thesis:            req.Thesis,
		Catalyst:          req.Catalyst,
		EntryPrice:        req.EntryPrice,
		MaxPainPrice:      req.MaxPainPrice,
		StructuralSupport: req.StructuralSupport,
		CatalystDeadline:  req.CatalystDeadline,
		MaxPositionPct:    req.MaxPositionPct,
		SendItMode:        req.SendItMode,
		Status:            model.ConvictionStatusActive,
		SetAt:             time.Now().UTC(),
	}
	if err := m.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("saving conviction: %w", err)
	}

	logger.WithFields(logger.Fields{
		"symbol":   symbol,
		"max_pain": req.MaxPainPrice,
		"deadline": req.CatalystDeadline.Format(model.DateLayout),
		"send_it":  req.SendItMode,
	}).Info("conviction set")

	if m.journal != nil {
		if err := m.journal.ConvictionOpened(ctx, *c); err != nil {
			logger.WithError(err).Warn("failed to journal conviction open")
		}
	}
	return c, nil
}

// Active lists convictions still binding gate decisions.
func (m *Manager) Active(ctx context.Context) ([]model.Conviction, error) {
	return m.store.Active(ctx)
}

// List returns all convictions, exited included.
func (m *Manager) List(ctx context.Context) ([]model.Conviction, error) {
	return m.store.All(ctx)
}

// Get returns the active conviction for symbol, or nil when none.
func (m *Manager) Get(ctx context.Context, symbol string) (*model.Conviction, error) {
	return m.store.ActiveBySymbol(ctx, normalizeSymbol(symbol))
}

// Invalidate flags the thesis as dead. The exit itself fires on the
// next scan, so it lands in the journal with a price attached.
func (m *Manager) Invalidate(ctx context.Context, symbol string) error {
	c, err := m.store.ActiveBySymbol(ctx, normalizeSymbol(symbol))
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	c.Invalidated = true
	if err := m.store.Save(ctx, c); err != nil {
		return fmt.Errorf("saving conviction: %w", err)
	}
	logger.WithField("symbol", c.Symbol).Warn("conviction thesis invalidated by operator")
	return nil
}

// Remove deletes the conviction record outright, active or exited.
func (m *Manager) Remove(ctx context.Context, symbol string) error {
	symbol = normalizeSymbol(symbol)
	all, err := m.store.All(ctx)
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.Symbol == symbol {
			if err := m.store.Delete(ctx, c.ID); err != nil {
				return fmt.Errorf("deleting conviction: %w", err)
			}
			logger.WithField("symbol", symbol).Info("conviction removed")
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, symbol)
}

// RecordCatalystEvent attaches a news item to the active conviction. A
// confirming event keeps the deadline trigger from firing.
func (m *Manager) RecordCatalystEvent(ctx context.Context, symbol, event string, impact int, confirming bool) error {
	c, err := m.store.ActiveBySymbol(ctx, normalizeSymbol(symbol))
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	ev := &model.CatalystEvent{
		ConvictionID: c.ID,
		Event:        event,
		Impact:       impact,
		Confirming:   confirming,
	}
	if err := m.store.AddEvent(ctx, ev); err != nil {
		return fmt.Errorf("recording catalyst event: %w", err)
	}
	logger.WithFields(logger.Fields{
		"symbol":     c.Symbol,
		"impact":     impact,
		"confirming": confirming,
	}).Info("catalyst event recorded")
	return nil
}

// CheckExits evaluates every active conviction against current prices.
// Symbols without a price are skipped. Triggers, in priority order:
// price below max pain, price below structural support (when set), past
// deadline without a confirming catalyst, operator invalidation. Each
// fired signal marks the conviction exited and asks for full
// liquidation.
func (m *Manager) CheckExits(ctx context.Context, prices map[string]float64, today time.Time) ([]ExitSignal, error) {
	active, err := m.store.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading convictions: %w", err)
	}

	var signals []ExitSignal
	for i := range active {
		c := &active[i]
		price, ok := prices[c.Symbol]
		if !ok {
			continue
		}

		reason, detail := m.trigger(ctx, c, price, today)
		if reason == "" {
			continue
		}

		now := time.Now().UTC()
		c.Status = model.ConvictionStatusExited
		c.ExitReason = string(reason)
		c.ExitPrice = &price
		c.ExitedAt = &now
		if err := m.store.Save(ctx, c); err != nil {
			return signals, fmt.Errorf("saving conviction exit: %w", err)
		}

		logger.WithFields(logger.Fields{
			"symbol": c.Symbol,
			"reason": reason,
			"price":  price,
		}).Error("conviction exit triggered, full liquidation required")

		if m.journal != nil {
			if err := m.journal.ConvictionExited(ctx, *c); err != nil {
				logger.WithError(err).Warn("failed to journal conviction exit")
			}
		}
		signals = append(signals, ExitSignal{Symbol: c.Symbol, Reason: reason, Price: price, Detail: detail})
	}
	return signals, nil
}

func (m *Manager) trigger(ctx context.Context, c *model.Conviction, price float64, today time.Time) (model.ExitReason, string) {
	if price < c.MaxPainPrice {
		return model.ExitThesisDead,
			fmt.Sprintf("price %.2f below max pain %.2f", price, c.MaxPainPrice)
	}
	if c.StructuralSupport > 0 && price < c.StructuralSupport {
		return model.ExitMomentumDead,
			fmt.Sprintf("price %.2f below structural support %.2f", price, c.StructuralSupport)
	}
	if today.After(c.CatalystDeadline) && !m.hasConfirmingEvent(ctx, c.ID) {
		return model.ExitDeadlineExpired,
			fmt.Sprintf("deadline %s passed with no confirming catalyst", c.CatalystDeadline.Format(model.DateLayout))
	}
	if c.Invalidated {
		return model.ExitThesisInvalidated, "thesis invalidated by operator"
	}
	return "", ""
}

func (m *Manager) hasConfirmingEvent(ctx context.Context, convictionID uint) bool {
	events, err := m.store.EventsFor(ctx, convictionID)
	if err != nil {
		logger.WithError(err).Warn("could not load catalyst events, treating as none")
		return false
	}
	for _, ev := range events {
		if ev.Confirming {
			return true
		}
	}
	return false
}

// Status reports the live standing of one active conviction.
func (m *Manager) Status(ctx context.Context, symbol string, price float64, today time.Time) (*Report, error) {
	c, err := m.store.ActiveBySymbol(ctx, normalizeSymbol(symbol))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	events, err := m.store.EventsFor(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading catalyst events: %w", err)
	}
	confirming := 0
	for _, ev := range events {
		if ev.Confirming {
			confirming++
		}
	}

	report := &Report{
		Symbol:           c.Symbol,
		ConfirmingEvents: confirming,
		SendItMode:       c.SendItMode,
		Invalidated:      c.Invalidated,
	}
	if c.EntryPrice > 0 {
		report.UnrealizedPct = price/c.EntryPrice - 1
	}
	if price > 0 {
		report.DistanceToPain = (price - c.MaxPainPrice) / price
	}
	report.DaysRemaining = int(c.CatalystDeadline.Sub(today).Hours() / 24)
	return report, nil
}
