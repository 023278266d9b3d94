package model

// DecisionReason classifies the outcome of a gate evaluation. Rejections
// are normal data, not errors, and callers may log them however they like.
type DecisionReason string

const (
	ReasonApproved            DecisionReason = "approved"
	ReasonInvalidCandidate    DecisionReason = "invalid_candidate"
	ReasonCircuitBreaker      DecisionReason = "circuit_breaker_halted"
	ReasonDayTradeLimit       DecisionReason = "day_trade_limit"
	ReasonLiquidationRequired DecisionReason = "liquidation_required"
	ReasonBelowMinimumSize    DecisionReason = "below_minimum_size"
	ReasonPositionLimit       DecisionReason = "position_limit"
	ReasonSectorLimit         DecisionReason = "sector_limit"
	ReasonHeatLimit           DecisionReason = "heat_limit"
	ReasonCashReserve         DecisionReason = "cash_reserve"
)

// HardBlock reports whether the reason is a hard risk block as opposed to
// a soft "sized to nothing" outcome. Callers may treat the two
// differently for logging.
func (r DecisionReason) HardBlock() bool {
	switch r {
	case ReasonApproved, ReasonBelowMinimumSize:
		return false
	}
	return true
}

// RiskDecision is the immutable result of a single gate evaluation. The
// core never persists decisions; the caller's journal does.
type RiskDecision struct {
	Symbol           string         `json:"symbol"`
	Approved         bool           `json:"approved"`
	Reason           DecisionReason `json:"reason"`
	Detail           string         `json:"detail,omitempty"`
	AdjustedQuantity int64          `json:"adjusted_quantity"`
	NotionalDollars  float64        `json:"notional_dollars"`
	StopLossPrice    float64        `json:"stop_loss_price"`
	SizeMultiplier   float64        `json:"size_multiplier_applied"`
}
