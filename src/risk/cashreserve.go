package risk

import (
	"sort"

	logger "github.com/sirupsen/logrus"

	"riskfortress/src/model"
)

// CashReserveManager keeps a minimum cash fraction of the portfolio out
// of play and raises liquidation signals when reserves get critical.
type CashReserveManager struct {
	cfg Config
}

func NewCashReserveManager(cfg Config) *CashReserveManager {
	return &CashReserveManager{cfg: cfg}
}

// DeployableCash is the cash left for new positions after the reserve.
func (m *CashReserveManager) DeployableCash(cash, portfolioValue float64) float64 {
	if portfolioValue <= 0 {
		return 0
	}
	required := portfolioValue * m.cfg.ReserveFraction
	available := cash - required
	if available <= 0 {
		logger.WithFields(logger.Fields{"cash": cash, "required_reserve": required}).
			Warn("no cash deployable, reserve not met")
		return 0
	}
	return available
}

// NeedsLiquidation returns the symbols to sell, weakest unrealized
// return first, when cash has fallen below the critical fraction. The
// list is sized to restore the minimum reserve. Conviction positions are
// only ever selected when no other position remains.
func (m *CashReserveManager) NeedsLiquidation(cash, portfolioValue float64, positions []model.Position) []string {
	if portfolioValue <= 0 {
		return nil
	}
	if cash/portfolioValue >= m.cfg.CriticalFraction {
		return nil
	}

	cashNeeded := portfolioValue*m.cfg.ReserveFraction - cash
	logger.WithFields(logger.Fields{
		"cash_pct":    cash / portfolioValue,
		"cash_needed": cashNeeded,
	}).Warn("critical cash shortage")

	ranked := make([]model.Position, len(positions))
	copy(ranked, positions)
	sort.SliceStable(ranked, func(i, j int) bool {
		// Non-convictions always rank ahead of convictions, then by
		// weakest unrealized return.
		if ranked[i].IsConviction != ranked[j].IsConviction {
			return !ranked[i].IsConviction
		}
		return ranked[i].UnrealizedReturn() < ranked[j].UnrealizedReturn()
	})

	var toLiquidate []string
	accumulated := 0.0
	for _, pos := range ranked {
		if pos.IsConviction && anyNonConvictionLeft(ranked, toLiquidate) {
			continue
		}
		toLiquidate = append(toLiquidate, pos.Symbol)
		accumulated += pos.MarketValue()
		if accumulated >= cashNeeded {
			break
		}
	}

	if len(toLiquidate) > 0 {
		logger.WithFields(logger.Fields{"symbols": toLiquidate, "raises": accumulated}).
			Error("forced liquidation required to restore reserve")
	}
	return toLiquidate
}

// anyNonConvictionLeft reports whether an unselected non-conviction
// position is still available.
func anyNonConvictionLeft(ranked []model.Position, selected []string) bool {
	chosen := map[string]bool{}
	for _, s := range selected {
		chosen[s] = true
	}
	for _, p := range ranked {
		if !p.IsConviction && !chosen[p.Symbol] {
			return true
		}
	}
	return false
}
