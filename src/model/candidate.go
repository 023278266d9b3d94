package model

// TradeStats carries trailing performance statistics used for
// Kelly-bounded sizing. All three fields must be set for the stats to be
// usable; AvgLoss is an absolute (positive) dollar amount.
type TradeStats struct {
	WinRate float64 `json:"win_rate"`
	AvgWin  float64 `json:"avg_win"`
	AvgLoss float64 `json:"avg_loss"`
}

// Usable reports whether the stats can feed a Kelly estimate.
func (s TradeStats) Usable() bool {
	return s.WinRate > 0 && s.WinRate < 1 && s.AvgWin > 0 && s.AvgLoss > 0
}

// TradeCandidate is a proposed entry supplied by an upstream scanner.
// Candidates are validated at the gate boundary; missing fields are a
// rejection, never defaulted.
type TradeCandidate struct {
	Symbol     string      `json:"symbol"`
	EntryPrice float64     `json:"entry_price"`
	StopPrice  float64     `json:"stop_price"`
	IsDayTrade bool        `json:"is_day_trade"`
	Stats      *TradeStats `json:"stats,omitempty"`
}
