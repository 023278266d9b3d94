package risk

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"riskfortress/src/model"
	"riskfortress/src/sectormap"
)

// HealthReport is the dashboard view of portfolio risk. HHI has no hard
// cap; it is reported as a diversification signal only.
type HealthReport struct {
	PortfolioValue    float64            `json:"portfolio_value"`
	Cash              float64            `json:"cash"`
	Weights           map[string]float64 `json:"weights"`
	SectorWeights     map[string]float64 `json:"sector_weights"`
	MaxPositionSymbol string             `json:"max_position_symbol,omitempty"`
	MaxPositionPct    float64            `json:"max_position_pct"`
	MaxSectorName     string             `json:"max_sector_name,omitempty"`
	MaxSectorPct      float64            `json:"max_sector_pct"`
	CashReservePct    float64            `json:"cash_reserve_pct"`
	PortfolioHeat     float64            `json:"portfolio_heat"`
	HHI               float64            `json:"concentration_hhi"`
	Drawdown          float64            `json:"drawdown_from_peak"`
	HighWaterMark     float64            `json:"high_water_mark"`
	Warnings          []string           `json:"warnings,omitempty"`
	Blocks            []string           `json:"blocks,omitempty"`
	Healthy           bool               `json:"healthy"`
}

// Admission is the pre-trade verdict for one candidate allocation.
type Admission struct {
	Allowed    bool
	Reason     model.DecisionReason
	Detail     string
	MaxAllowed float64 // largest notional that would have passed
}

// PortfolioRiskMonitor evaluates concentration and diversification
// health, and admissibility of a sized candidate against the hard caps.
type PortfolioRiskMonitor struct {
	cfg Config
}

func NewPortfolioRiskMonitor(cfg Config) *PortfolioRiskMonitor {
	return &PortfolioRiskMonitor{cfg: cfg}
}

func positionSector(p model.Position) string {
	if p.Sector != "" {
		return p.Sector
	}
	return sectormap.Sector(p.Symbol)
}

// Health computes the full concentration report. Pass the breaker's
// high-water mark for drawdown context, or 0 to skip it.
func (m *PortfolioRiskMonitor) Health(snap model.PortfolioSnapshot, highWaterMark float64) HealthReport {
	report := HealthReport{
		PortfolioValue: snap.PortfolioValue,
		Cash:           snap.Cash,
		Weights:        map[string]float64{},
		SectorWeights:  map[string]float64{},
		HighWaterMark:  highWaterMark,
	}
	if snap.PortfolioValue <= 0 {
		report.Warnings = append(report.Warnings, "invalid portfolio value")
		report.Blocks = append(report.Blocks, "halt trading, portfolio value unusable")
		return report
	}

	for _, pos := range snap.Positions {
		weight := pos.MarketValue() / snap.PortfolioValue
		report.Weights[pos.Symbol] = weight
		report.HHI += weight * weight

		sector := positionSector(pos)
		report.SectorWeights[sector] += weight

		// Conviction-flagged speculative holdings are exempt from the
		// position cap warning; their own cap applies at admission time.
		if weight > report.MaxPositionPct {
			report.MaxPositionPct = weight
			report.MaxPositionSymbol = pos.Symbol
		}
	}

	for sector, weight := range report.SectorWeights {
		if weight > report.MaxSectorPct {
			report.MaxSectorPct = weight
			report.MaxSectorName = sector
		}
	}

	report.CashReservePct = snap.Cash / snap.PortfolioValue
	report.PortfolioHeat = 1 - report.CashReservePct

	if report.MaxPositionPct > m.cfg.MaxPositionPct {
		exempt := false
		if pos := snap.PositionFor(report.MaxPositionSymbol); pos != nil && pos.IsConviction {
			exempt = true
		}
		if !exempt {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"concentration: %s is %.1f%% of portfolio (max %.0f%%)",
				report.MaxPositionSymbol, report.MaxPositionPct*100, m.cfg.MaxPositionPct*100))
		}
	}
	if report.MaxSectorPct > m.cfg.MaxSectorPct {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"sector: %s is %.1f%% of portfolio (max %.0f%%)",
			report.MaxSectorName, report.MaxSectorPct*100, m.cfg.MaxSectorPct*100))
		report.Blocks = append(report.Blocks, fmt.Sprintf("block new %s entries", report.MaxSectorName))
	}
	if report.CashReservePct < m.cfg.ReserveFraction {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"low cash: %.1f%% (need %.0f%% minimum)",
			report.CashReservePct*100, m.cfg.ReserveFraction*100))
	}
	if report.PortfolioHeat > m.cfg.MaxPortfolioHeat {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"high heat: %.1f%% deployed (max %.0f%%)",
			report.PortfolioHeat*100, m.cfg.MaxPortfolioHeat*100))
		report.Blocks = append(report.Blocks, "block all new entries until heat reduces")
	}
	if report.HHI > 0.25 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"high concentration: HHI %.3f", report.HHI))
	}
	if highWaterMark > 0 {
		report.Drawdown = (highWaterMark - snap.PortfolioValue) / highWaterMark
		if report.Drawdown > m.cfg.DrawdownReduceAt {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"drawdown: %.1f%% from peak %.2f", report.Drawdown*100, highWaterMark))
		}
	}

	report.Healthy = len(report.Blocks) == 0
	for _, w := range report.Warnings {
		logger.Warn("portfolio health: " + w)
	}
	return report
}

// CanOpen decides whether adding notional dollars of symbol keeps the
// portfolio inside the hard caps. An active conviction in send-it mode
// replaces the position and sector caps with its own MaxPositionPct;
// heat and cash-reserve checks always apply.
func (m *PortfolioRiskMonitor) CanOpen(
	symbol string,
	notional float64,
	snap model.PortfolioSnapshot,
	conv *model.Conviction,
) Admission {
	if snap.PortfolioValue <= 0 {
		return Admission{Reason: model.ReasonInvalidCandidate, Detail: "invalid portfolio value"}
	}

	override := conv != nil && conv.Active() && conv.SendItMode

	positionCap := m.cfg.MaxPositionPct
	if override {
		positionCap = conv.MaxPositionPct
	}

	existing := 0.0
	if pos := snap.PositionFor(symbol); pos != nil {
		existing = pos.MarketValue()
	}
	newPositionPct := (existing + notional) / snap.PortfolioValue
	if newPositionPct > positionCap {
		maxAllowed := snap.PortfolioValue*positionCap - existing
		if maxAllowed < 0 {
			maxAllowed = 0
		}
		return Admission{
			Reason: model.ReasonPositionLimit,
			Detail: fmt.Sprintf("%s would be %.1f%% of portfolio (cap %.0f%%)",
				symbol, newPositionPct*100, positionCap*100),
			MaxAllowed: maxAllowed,
		}
	}

	if !override {
		sector := sectormap.Sector(symbol)
		sectorValue := 0.0
		for _, pos := range snap.Positions {
			if positionSector(pos) == sector {
				sectorValue += pos.MarketValue()
			}
		}
		newSectorPct := (sectorValue + notional) / snap.PortfolioValue
		if newSectorPct > m.cfg.MaxSectorPct {
			maxAllowed := snap.PortfolioValue*m.cfg.MaxSectorPct - sectorValue
			if maxAllowed < 0 {
				maxAllowed = 0
			}
			return Admission{
				Reason: model.ReasonSectorLimit,
				Detail: fmt.Sprintf("sector %s would be %.1f%% of portfolio (cap %.0f%%)",
					sector, newSectorPct*100, m.cfg.MaxSectorPct*100),
				MaxAllowed: maxAllowed,
			}
		}
	}

	newCash := snap.Cash - notional
	newHeat := 1 - newCash/snap.PortfolioValue
	if newHeat > m.cfg.MaxPortfolioHeat {
		maxAllowed := snap.Cash - snap.PortfolioValue*(1-m.cfg.MaxPortfolioHeat)
		if maxAllowed < 0 {
			maxAllowed = 0
		}
		return Admission{
			Reason: model.ReasonHeatLimit,
			Detail: fmt.Sprintf("portfolio heat would reach %.1f%% (cap %.0f%%)",
				newHeat*100, m.cfg.MaxPortfolioHeat*100),
			MaxAllowed: maxAllowed,
		}
	}

	if newCash/snap.PortfolioValue < m.cfg.ReserveFraction {
		maxAllowed := snap.Cash - snap.PortfolioValue*m.cfg.ReserveFraction
		if maxAllowed < 0 {
			maxAllowed = 0
		}
		return Admission{
			Reason: model.ReasonCashReserve,
			Detail: fmt.Sprintf("cash would fall to %.1f%% (reserve %.0f%%)",
				newCash/snap.PortfolioValue*100, m.cfg.ReserveFraction*100),
			MaxAllowed: maxAllowed,
		}
	}

	return Admission{Allowed: true, Reason: model.ReasonApproved, Detail: "all risk checks passed", MaxAllowed: notional}
}
