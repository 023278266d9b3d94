package cycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"riskfortress/src/gate"
	"riskfortress/src/journal"
	"riskfortress/src/model"
)

// Runner drives the scheduled evaluation loop: refresh the snapshot,
// reset the day if needed, scan conviction exits, then push every
// pending candidate through the gate. It owns no scheduling policy
// beyond the tick interval.
type Runner struct {
	Gate    *gate.Gate
	Journal *journal.Journal
	Source  gate.SnapshotSource
	Config  *Config
}

func (r *Runner) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	interval := time.Duration(r.Config.IntervalSeconds) * time.Second
	logrus.WithField("interval", interval).Info("Starting evaluation cycle")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Evaluation cycle stopped")
			return nil
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	now := time.Now().UTC()

	snap, err := r.Source.Snapshot(ctx)
	if err != nil {
		logrus.WithError(err).Error("Snapshot unavailable, skipping cycle")
		return
	}

	if err := r.Gate.StartOfDay(ctx, snap.PortfolioValue, now); err != nil {
		logrus.WithError(err).Error("Failed to reset trading day")
		return
	}

	prices := make(map[string]float64, len(snap.Positions))
	for _, pos := range snap.Positions {
		prices[pos.Symbol] = pos.CurrentPrice
	}
	signals, err := r.Gate.ScanExits(ctx, prices, now)
	if err != nil {
		logrus.WithError(err).Error("Conviction exit scan failed")
	}
	for _, sig := range signals {
		logrus.WithFields(logrus.Fields{
			"symbol": sig.Symbol,
			"reason": sig.Reason,
			"price":  sig.Price,
		}).Error("LIQUIDATE FULL POSITION: conviction exit triggered")
	}

	candidates, err := loadCandidates(r.Config.CandidatesPath)
	if err != nil {
		logrus.WithError(err).Error("Failed to load candidates")
		return
	}

	for _, candidate := range candidates {
		decision := r.Gate.Evaluate(ctx, candidate, snap, now)
		fields := logrus.Fields{
			"symbol":   decision.Symbol,
			"reason":   decision.Reason,
			"detail":   decision.Detail,
			"quantity": decision.AdjustedQuantity,
		}
		switch {
		case decision.Approved:
			logrus.WithFields(fields).Info("Candidate approved for execution")
		case decision.Reason.HardBlock():
			logrus.WithFields(fields).Warn("Candidate rejected")
			r.journalSkip(ctx, decision)
		default:
			logrus.WithFields(fields).Info("Candidate stood aside")
			r.journalSkip(ctx, decision)
		}
	}
}

func (r *Runner) journalSkip(ctx context.Context, decision model.RiskDecision) {
	if r.Journal == nil {
		return
	}
	reason := string(decision.Reason)
	if decision.Detail != "" {
		reason += ": " + decision.Detail
	}
	if err := r.Journal.RecordSkip(ctx, decision.Symbol, reason); err != nil {
		logrus.WithError(err).Warn("Failed to journal skip")
	}
}
