package model

import "time"

// Position is a single open holding as reported by the account
// collaborator. The risk core only reads positions, it never mutates them.
type Position struct {
	Symbol       string  `json:"symbol"`
	Sector       string  `json:"sector,omitempty"`
	Quantity     float64 `json:"quantity"`
	EntryPrice   float64 `json:"entry_price"`
	CurrentPrice float64 `json:"current_price"`
	IsConviction bool    `json:"is_conviction"`
}

// MarketValue returns the current notional value of the position.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// UnrealizedReturn returns the fractional gain or loss since entry.
func (p Position) UnrealizedReturn() float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	return p.CurrentPrice/p.EntryPrice - 1
}

// PortfolioSnapshot is a point-in-time view of the account, rebuilt each
// cycle from already-fetched broker data. Snapshots are replaced, never
// mutated in place.
type PortfolioSnapshot struct {
	PortfolioValue float64    `json:"portfolio_value"`
	Cash           float64    `json:"cash"`
	Positions      []Position `json:"positions"`
	AsOf           time.Time  `json:"as_of"`
}

// PositionFor returns the open position for symbol, or nil.
func (s PortfolioSnapshot) PositionFor(symbol string) *Position {
	for i := range s.Positions {
		if s.Positions[i].Symbol == symbol {
			return &s.Positions[i]
		}
	}
	return nil
}

// Deployed returns the summed market value of all open positions.
func (s PortfolioSnapshot) Deployed() float64 {
	total := 0.0
	for _, p := range s.Positions {
		total += p.MarketValue()
	}
	return total
}
