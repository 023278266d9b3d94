package risk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every risk threshold in one validated struct. Values are
// caller-configurable, bounded, and checked once at construction; nothing
// re-parses them per call.
type Config struct {
	// sizing
	RiskFraction    float64 `envconfig:"RISK_FRACTION" default:"0.02"`
	MaxPositionPct  float64 `envconfig:"MAX_POSITION_PCT" default:"0.20"`
	MinTradeDollars float64 `envconfig:"MIN_TRADE_DOLLARS" default:"10"`

	// concentration
	MaxSectorPct     float64 `envconfig:"MAX_SECTOR_PCT" default:"0.30"`
	MaxPortfolioHeat float64 `envconfig:"MAX_PORTFOLIO_HEAT" default:"0.85"`

	// cash reserve
	ReserveFraction float64 `envconfig:"RESERVE_FRACTION" default:"0.10"`
	// CriticalFraction defaults to ReserveFraction/2 when left at zero.
	CriticalFraction float64 `envconfig:"CRITICAL_FRACTION" default:"0"`

	// pattern day trading
	MaxDayTrades      int `envconfig:"MAX_DAY_TRADES" default:"3"`
	ReservedDayTrades int `envconfig:"RESERVED_DAY_TRADES" default:"1"`

	// circuit breaker
	IntradayLossLimit    float64 `envconfig:"INTRADAY_LOSS_LIMIT" default:"0.03"`
	MaxConsecutiveLosses int     `envconfig:"MAX_CONSECUTIVE_LOSSES" default:"3"`
	DrawdownReduceAt     float64 `envconfig:"DRAWDOWN_REDUCE_AT" default:"0.10"`
	DrawdownMultiplier   float64 `envconfig:"DRAWDOWN_MULTIPLIER" default:"0.5"`

	// convictions
	MaxConvictions int `envconfig:"MAX_CONVICTIONS" default:"3"`
}

// DefaultConfig returns the stock thresholds, already normalized.
func DefaultConfig() Config {
	cfg := Config{
		RiskFraction:         0.02,
		MaxPositionPct:       0.20,
		MinTradeDollars:      10,
		MaxSectorPct:         0.30,
		MaxPortfolioHeat:     0.85,
		ReserveFraction:      0.10,
		MaxDayTrades:         3,
		ReservedDayTrades:    1,
		IntradayLossLimit:    0.03,
		MaxConsecutiveLosses: 3,
		DrawdownReduceAt:     0.10,
		DrawdownMultiplier:   0.5,
		MaxConvictions:       3,
	}
	cfg.normalize()
	return cfg
}

// LoadConfig reads thresholds from the environment and validates them.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.CriticalFraction == 0 {
		c.CriticalFraction = c.ReserveFraction / 2
	}
}

// Validate bounds every field and checks the thresholds are jointly
// feasible. Called once at startup; a failure is fatal.
func (c Config) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
	}

	if c.RiskFraction <= 0 || c.RiskFraction > 0.1 {
		return fail("risk_fraction %.4f outside (0, 0.1]", c.RiskFraction)
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fail("max_position_pct %.4f outside (0, 1]", c.MaxPositionPct)
	}
	if c.MinTradeDollars < 0 {
		return fail("min_trade_dollars %.2f negative", c.MinTradeDollars)
	}
	if c.MaxSectorPct <= 0 || c.MaxSectorPct > 1 {
		return fail("max_sector_pct %.4f outside (0, 1]", c.MaxSectorPct)
	}
	if c.MaxPortfolioHeat <= 0 || c.MaxPortfolioHeat > 1 {
		return fail("max_portfolio_heat %.4f outside (0, 1]", c.MaxPortfolioHeat)
	}
	if c.ReserveFraction < 0 || c.ReserveFraction > 0.5 {
		return fail("reserve_fraction %.4f outside [0, 0.5]", c.ReserveFraction)
	}
	if c.CriticalFraction < 0 || c.CriticalFraction > c.ReserveFraction {
		return fail("critical_fraction %.4f outside [0, reserve_fraction]", c.CriticalFraction)
	}
	// Maintaining the reserve and filling the heat cap must be jointly
	// possible, otherwise every candidate would bounce between the two.
	if c.MaxPortfolioHeat+c.ReserveFraction > 1 {
		return fail("max_portfolio_heat %.2f + reserve_fraction %.2f exceeds 1",
			c.MaxPortfolioHeat, c.ReserveFraction)
	}
	if c.MaxPositionPct > c.MaxPortfolioHeat {
		return fail("max_position_pct %.2f exceeds max_portfolio_heat %.2f",
			c.MaxPositionPct, c.MaxPortfolioHeat)
	}
	if c.MaxDayTrades < 1 {
		return fail("max_day_trades %d below 1", c.MaxDayTrades)
	}
	if c.ReservedDayTrades < 0 || c.ReservedDayTrades >= c.MaxDayTrades {
		return fail("reserved_day_trades %d outside [0, max_day_trades)", c.ReservedDayTrades)
	}
	if c.IntradayLossLimit <= 0 || c.IntradayLossLimit >= 1 {
		return fail("intraday_loss_limit %.4f outside (0, 1)", c.IntradayLossLimit)
	}
	if c.MaxConsecutiveLosses < 1 {
		return fail("max_consecutive_losses %d below 1", c.MaxConsecutiveLosses)
	}
	if c.DrawdownReduceAt <= 0 || c.DrawdownReduceAt >= 1 {
		return fail("drawdown_reduce_at %.4f outside (0, 1)", c.DrawdownReduceAt)
	}
	if c.DrawdownMultiplier <= 0 || c.DrawdownMultiplier > 1 {
		return fail("drawdown_multiplier %.4f outside (0, 1]", c.DrawdownMultiplier)
	}
	if c.MaxConvictions < 1 {
		return fail("max_convictions %d below 1", c.MaxConvictions)
	}
	return nil
}

// DayTradeBlockAt is the record count at which new day trades are
// refused. One slot below the regulatory limit stays reserved for an
// unplanned forced liquidation.
func (c Config) DayTradeBlockAt() int {
	return c.MaxDayTrades - c.ReservedDayTrades
}
