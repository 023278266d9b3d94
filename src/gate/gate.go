package gate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"riskfortress/src/conviction"
	"riskfortress/src/journal"
	"riskfortress/src/model"
	"riskfortress/src/risk"
)

// PerformanceReader supplies trailing trade statistics for candidates
// that bring none of their own.
type PerformanceReader interface {
	Performance(ctx context.Context, days int) (*journal.Performance, error)
}

// SnapshotSource delivers the current account view to the cycle runner.
// Fetching is the caller's business; the gate only consumes snapshots.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (model.PortfolioSnapshot, error)
}

// Status is the operational dashboard view of the gate.
type Status struct {
	Breaker           risk.BreakerStatus `json:"breaker"`
	DayTradesUsed     int                `json:"day_trades_used"`
	DayTradesBlockAt  int                `json:"day_trades_block_at"`
	CanDayTrade       bool               `json:"can_day_trade"`
	ActiveConvictions int                `json:"active_convictions"`
	AsOf              time.Time          `json:"as_of"`
}

// Gate is the single admission point for trade candidates. Every check
// that can veto a trade runs behind one mutex, in a fixed order, against
// state re-read per evaluation.
type Gate struct {
	mu sync.Mutex

	cfg     risk.Config
	pdt     *risk.PDTGuard
	breaker *risk.CircuitBreaker
	reserve *risk.CashReserveManager
	sizer   *risk.PositionSizer
	monitor *risk.PortfolioRiskMonitor
	convs   *conviction.Manager
	perf    PerformanceReader
}

// New wires the gate from its stores. The configuration is validated
// here once; an invalid configuration refuses to start.
func New(
	cfg risk.Config,
	dayTrades risk.DayTradeStore,
	breakerStore risk.BreakerStore,
	convs *conviction.Manager,
	perf PerformanceReader,
) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gate configuration: %w", err)
	}
	return &Gate{
		cfg:     cfg,
		pdt:     risk.NewPDTGuard(dayTrades, cfg),
		breaker: risk.NewCircuitBreaker(breakerStore, cfg),
		reserve: risk.NewCashReserveManager(cfg),
		sizer:   risk.NewPositionSizer(cfg),
		monitor: risk.NewPortfolioRiskMonitor(cfg),
		convs:   convs,
		perf:    perf,
	}, nil
}

func reject(symbol string, reason model.DecisionReason, detail string) model.RiskDecision {
	return model.RiskDecision{Symbol: symbol, Reason: reason, Detail: detail}
}

func validateCandidate(c model.TradeCandidate, snap model.PortfolioSnapshot) string {
	switch {
	case strings.TrimSpace(c.Symbol) == "":
		return "empty symbol"
	case c.EntryPrice <= 0:
		return "entry price must be positive"
	case c.StopPrice <= 0:
		return "stop price must be positive"
	case c.StopPrice == c.EntryPrice:
		return "stop price equals entry price"
	case snap.PortfolioValue <= 0:
		return "snapshot has no portfolio value"
	case snap.Cash < 0:
		return "snapshot has negative cash"
	}
	return ""
}

// Evaluate runs one candidate through the full admission chain:
// circuit breaker, day-trade limit, liquidation pressure, sizing, then
// portfolio caps. The first failed check wins; later checks never run.
func (g *Gate) Evaluate(ctx context.Context, candidate model.TradeCandidate, snap model.PortfolioSnapshot, today time.Time) model.RiskDecision {
	g.mu.Lock()
	defer g.mu.Unlock()

	symbol := strings.ToUpper(strings.TrimSpace(candidate.Symbol))
	if detail := validateCandidate(candidate, snap); detail != "" {
		logger.WithFields(logger.Fields{"symbol": candidate.Symbol, "detail": detail}).
			Warn("malformed candidate rejected")
		return reject(symbol, model.ReasonInvalidCandidate, detail)
	}

	status, err := g.breaker.Status(ctx, snap.PortfolioValue)
	if err != nil {
		logger.WithError(err).Warn("breaker state problem during evaluation")
	}
	if status.Halted {
		return reject(symbol, model.ReasonCircuitBreaker, status.Reason())
	}

	if candidate.IsDayTrade {
		if ok, detail := g.pdt.CanDayTrade(ctx, today); !ok {
			return reject(symbol, model.ReasonDayTradeLimit, detail)
		}
	}

	if toSell := g.reserve.NeedsLiquidation(snap.Cash, snap.PortfolioValue, snap.Positions); len(toSell) > 0 {
		return reject(symbol, model.ReasonLiquidationRequired,
			fmt.Sprintf("restore cash reserve first, sell: %s", strings.Join(toSell, ", ")))
	}

	var conv *model.Conviction
	if g.convs != nil {
		conv, err = g.convs.Get(ctx, symbol)
		if err != nil {
			logger.WithError(err).Warn("conviction lookup failed, sizing without override")
			conv = nil
		}
	}

	positionCap := g.cfg.MaxPositionPct
	if conv != nil && conv.Active() && conv.SendItMode {
		positionCap = conv.MaxPositionPct
	}

	stats := candidate.Stats
	if stats == nil && g.perf != nil {
		if perf, err := g.perf.Performance(ctx, 30); err == nil {
			stats = perf.Stats()
		} else {
			logger.WithError(err).Debug("no journal performance available for sizing")
		}
	}

	size := g.sizer.Size(risk.SizeRequest{
		EntryPrice:        candidate.EntryPrice,
		StopPrice:         candidate.StopPrice,
		PortfolioValue:    snap.PortfolioValue,
		DeployableCash:    g.reserve.DeployableCash(snap.Cash, snap.PortfolioValue),
		MaxPositionPct:    positionCap,
		CircuitMultiplier: status.SizeMultiplier,
		Stats:             stats,
	})
	if size.Quantity == 0 {
		return model.RiskDecision{
			Symbol:         symbol,
			Reason:         model.ReasonBelowMinimumSize,
			Detail:         size.Detail,
			SizeMultiplier: status.SizeMultiplier,
		}
	}

	adm := g.monitor.CanOpen(symbol, size.Notional, snap, conv)
	if !adm.Allowed {
		return model.RiskDecision{
			Symbol:         symbol,
			Reason:         adm.Reason,
			Detail:         adm.Detail,
			SizeMultiplier: status.SizeMultiplier,
		}
	}

	decision := model.RiskDecision{
		Symbol:           symbol,
		Approved:         true,
		Reason:           model.ReasonApproved,
		Detail:           size.Detail,
		AdjustedQuantity: size.Quantity,
		NotionalDollars:  size.Notional,
		StopLossPrice:    candidate.StopPrice,
		SizeMultiplier:   status.SizeMultiplier,
	}
	logger.WithFields(logger.Fields{
		"symbol":   symbol,
		"quantity": size.Quantity,
		"notional": size.Notional,
	}).Info("candidate approved")
	return decision
}

// StartOfDay resets the intraday baseline. Safe to call repeatedly.
func (g *Gate) StartOfDay(ctx context.Context, portfolioValue float64, today time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.breaker.StartOfDay(ctx, portfolioValue, today)
}

// ScanExits checks every active conviction against current prices and
// returns the liquidation instructions for any that triggered.
func (g *Gate) ScanExits(ctx context.Context, prices map[string]float64, today time.Time) ([]conviction.ExitSignal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.convs == nil {
		return nil, nil
	}
	return g.convs.CheckExits(ctx, prices, today)
}

// RecordTradeResult feeds a realized win or loss to the breaker streak.
func (g *Gate) RecordTradeResult(ctx context.Context, win bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.breaker.RecordTradeResult(ctx, win)
}

// RecordDayTrade counts an executed round trip against the rolling
// window.
func (g *Gate) RecordDayTrade(ctx context.Context, symbol string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pdt.RecordDayTrade(ctx, symbol, now)
}

// ClearDayTrades is the operator escape hatch after a corrupt window.
func (g *Gate) ClearDayTrades(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pdt.ClearState(ctx)
}

// Health produces the portfolio concentration report with drawdown
// context from the breaker's high-water mark.
func (g *Gate) Health(ctx context.Context, snap model.PortfolioSnapshot) (risk.HealthReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, err := g.breaker.Status(ctx, snap.PortfolioValue)
	report := g.monitor.Health(snap, status.HighWaterMark)
	return report, err
}

// Status summarizes breaker and day-trade standing for the dashboard.
func (g *Gate) Status(ctx context.Context, snap model.PortfolioSnapshot, today time.Time) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	breakerStatus, err := g.breaker.Status(ctx, snap.PortfolioValue)
	out := Status{
		Breaker:          breakerStatus,
		DayTradesBlockAt: g.cfg.DayTradeBlockAt(),
		AsOf:             time.Now().UTC(),
	}
	if err != nil {
		return out, err
	}

	used, countErr := g.pdt.Count(ctx, today)
	if countErr != nil {
		return out, countErr
	}
	out.DayTradesUsed = used
	out.CanDayTrade, _ = g.pdt.CanDayTrade(ctx, today)

	if g.convs != nil {
		active, convErr := g.convs.Active(ctx)
		if convErr != nil {
			return out, convErr
		}
		out.ActiveConvictions = len(active)
	}
	return out, nil
}
