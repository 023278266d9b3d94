package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"riskfortress/src/model"
)

// BreakerStatus is the result of a circuit-breaker check. A halted
// status blocks all new entries; a reduced SizeMultiplier shrinks them
// without halting.
type BreakerStatus struct {
	Halted            bool     `json:"halted"`
	Reasons           []string `json:"reasons,omitempty"`
	SizeMultiplier    float64  `json:"size_multiplier"`
	ConsecutiveLosses int      `json:"consecutive_losses"`
	IntradayReturn    float64  `json:"intraday_return"`
	Drawdown          float64  `json:"drawdown_from_peak"`
	HighWaterMark     float64  `json:"high_water_mark"`
}

// Reason flattens the trigger list for logs and decisions.
func (s BreakerStatus) Reason() string {
	if len(s.Reasons) == 0 {
		return "all systems normal"
	}
	return strings.Join(s.Reasons, "; ")
}

// CircuitBreaker halts new entries on excessive intraday loss or losing
// streaks, and cuts position sizes after a major drawdown from the
// high-water mark.
type CircuitBreaker struct {
	store BreakerStore
	cfg   Config
}

func NewCircuitBreaker(store BreakerStore, cfg Config) *CircuitBreaker {
	return &CircuitBreaker{store: store, cfg: cfg}
}

// haltedStatus is the conservative default when state cannot be read.
func haltedStatus(detail string) BreakerStatus {
	return BreakerStatus{
		Halted:         true,
		Reasons:        []string{detail},
		SizeMultiplier: 0,
	}
}

// Status evaluates the breaker against the current portfolio value. The
// high-water mark is ratcheted up and persisted on every call. When the
// persisted state is unreadable the returned status is halted and the
// error is surfaced alongside it.
func (b *CircuitBreaker) Status(ctx context.Context, currentValue float64) (BreakerStatus, error) {
	state, err := b.store.Load(ctx)
	if err != nil {
		logger.WithError(err).Warn("circuit breaker state unreadable, treating as halted")
		return haltedStatus("breaker state unreadable, halted until operator intervenes"),
			fmt.Errorf("%w: loading breaker state: %v", ErrStateCorruption, err)
	}
	if state == nil {
		state = &model.BreakerState{ID: 1}
	}

	if currentValue > state.HighWaterMark {
		state.HighWaterMark = currentValue
	}

	status := BreakerStatus{
		SizeMultiplier:    1.0,
		ConsecutiveLosses: state.ConsecutiveLosses,
		HighWaterMark:     state.HighWaterMark,
	}

	if state.IntradayStartValue > 0 {
		status.IntradayReturn = currentValue/state.IntradayStartValue - 1
		if status.IntradayReturn <= -b.cfg.IntradayLossLimit {
			status.Halted = true
			msg := fmt.Sprintf("intraday loss %.2f%% at limit %.2f%%",
				status.IntradayReturn*100, b.cfg.IntradayLossLimit*100)
			status.Reasons = append(status.Reasons, msg)
			logger.WithField("intraday_return", status.IntradayReturn).Error("circuit breaker: " + msg)
		}
	}

	if state.ConsecutiveLosses >= b.cfg.MaxConsecutiveLosses {
		status.Halted = true
		msg := fmt.Sprintf("%d consecutive losses at limit %d",
			state.ConsecutiveLosses, b.cfg.MaxConsecutiveLosses)
		status.Reasons = append(status.Reasons, msg)
		logger.WithField("consecutive_losses", state.ConsecutiveLosses).Error("circuit breaker: " + msg)
	}

	if state.HighWaterMark > 0 {
		status.Drawdown = (state.HighWaterMark - currentValue) / state.HighWaterMark
		if status.Drawdown >= b.cfg.DrawdownReduceAt {
			status.SizeMultiplier = b.cfg.DrawdownMultiplier
			msg := fmt.Sprintf("%.1f%% below peak %.2f, sizing at %.0f%%",
				status.Drawdown*100, state.HighWaterMark, b.cfg.DrawdownMultiplier*100)
			status.Reasons = append(status.Reasons, msg)
			logger.WithField("drawdown", status.Drawdown).Warn("risk reduction: " + msg)
		}
	}

	// A halted breaker admits nothing, so it never advertises a usable
	// sizing multiplier.
	if status.Halted {
		status.SizeMultiplier = 0
	}

	if err := b.store.Save(ctx, state); err != nil {
		// Status stays usable; the ratcheted mark just was not persisted.
		logger.WithError(err).Warn("failed to persist breaker state")
		return status, fmt.Errorf("saving breaker state: %w", err)
	}
	return status, nil
}

// StartOfDay records the opening portfolio value and resets the losing
// streak. Idempotent: repeat calls on the same calendar date are no-ops.
func (b *CircuitBreaker) StartOfDay(ctx context.Context, currentValue float64, today time.Time) error {
	state, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading breaker state: %v", ErrStateCorruption, err)
	}
	if state == nil {
		state = &model.BreakerState{ID: 1}
	}

	date := today.Format(model.DateLayout)
	if state.LastResetDate == date {
		return nil
	}

	state.LastResetDate = date
	state.IntradayStartValue = currentValue
	state.ConsecutiveLosses = 0
	if currentValue > state.HighWaterMark {
		state.HighWaterMark = currentValue
	}
	if err := b.store.Save(ctx, state); err != nil {
		return fmt.Errorf("saving breaker state: %w", err)
	}

	logger.WithFields(logger.Fields{"date": date, "value": currentValue}).
		Info("trading day started, losing streak reset")
	return nil
}

// RecordTradeResult feeds one realized win or loss into the streak
// counter. A win resets the streak to zero.
func (b *CircuitBreaker) RecordTradeResult(ctx context.Context, win bool) error {
	state, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading breaker state: %v", ErrStateCorruption, err)
	}
	if state == nil {
		state = &model.BreakerState{ID: 1}
	}

	if win {
		if state.ConsecutiveLosses > 0 {
			logger.WithField("was", state.ConsecutiveLosses).Info("win, losing streak reset")
		}
		state.ConsecutiveLosses = 0
	} else {
		state.ConsecutiveLosses++
		logger.WithField("consecutive_losses", state.ConsecutiveLosses).Warn("loss recorded")
	}
	if err := b.store.Save(ctx, state); err != nil {
		return fmt.Errorf("saving breaker state: %w", err)
	}
	return nil
}
