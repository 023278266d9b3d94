package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"riskfortress/cmd/cycle"
	"riskfortress/src/conviction"
	"riskfortress/src/database"
	"riskfortress/src/gate"
	"riskfortress/src/journal"
	"riskfortress/src/model"
	"riskfortress/src/repository"
	"riskfortress/src/risk"
	"riskfortress/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "riskfortress"
	app.Usage = "Risk admission gate for a single-account trading process"

	app.Commands = []cli.Command{
		cycleCMD,
		serveCMD,
		convictionCMD,
		pdtCMD,
		statusCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// components wires every operator command from the shared database.
type components struct {
	gate        *gate.Gate
	convictions *conviction.Manager
	journal     *journal.Journal
}

func buildComponents() (*components, error) {
	if err := database.InitMainDB(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	cfg, err := risk.LoadConfig()
	if err != nil {
		return nil, err
	}

	jrnl := journal.New(repository.NewJournalRepository())
	convs := conviction.NewManager(repository.NewConvictionRepository(), jrnl, cfg.MaxConvictions)
	g, err := gate.New(cfg, repository.NewDayTradeRepository(), repository.NewBreakerRepository(), convs, jrnl)
	if err != nil {
		return nil, err
	}
	return &components{gate: g, convictions: convs, journal: jrnl}, nil
}

var (
	cycleCMD = cli.Command{
		Name:        "cycle",
		Usage:       "run the scheduled evaluation loop",
		Action:      cycleAction,
		Description: `Evaluate candidates and scan conviction exits on an interval`,
	}
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the dashboard server",
		Action:      serveAction,
		Description: `Serve the risk health and gate status endpoints`,
	}
	convictionCMD = cli.Command{
		Name:  "conviction",
		Usage: "manage conviction positions",
		Subcommands: []cli.Command{
			{
				Name:   "set",
				Usage:  "declare a new conviction",
				Action: convictionSetAction,
				Flags: []cli.Flag{
					cli.StringFlag{Name: "symbol", Usage: "ticker symbol (required)"},
					cli.StringFlag{Name: "thesis", Usage: "why this position exists"},
					cli.StringFlag{Name: "catalyst", Usage: "what is expected to happen"},
					cli.Float64Flag{Name: "entry", Usage: "entry price (required)"},
					cli.Float64Flag{Name: "max-pain", Usage: "exit-everything price (required)"},
					cli.Float64Flag{Name: "support", Usage: "structural support price, 0 to skip"},
					cli.StringFlag{Name: "deadline", Usage: "catalyst deadline YYYY-MM-DD (required)"},
					cli.Float64Flag{Name: "max-position", Usage: "position cap as a fraction", Value: 0.2},
					cli.BoolFlag{Name: "send-it", Usage: "replace the standard caps with this conviction's"},
				},
			},
			{
				Name:   "list",
				Usage:  "list all convictions",
				Action: convictionListAction,
			},
			{
				Name:   "event",
				Usage:  "record a catalyst event",
				Action: convictionEventAction,
				Flags: []cli.Flag{
					cli.StringFlag{Name: "symbol", Usage: "ticker symbol (required)"},
					cli.StringFlag{Name: "text", Usage: "what happened"},
					cli.IntFlag{Name: "impact", Usage: "impact score -100..100"},
					cli.BoolFlag{Name: "confirming", Usage: "the catalyst thesis was confirmed"},
				},
			},
			{
				Name:   "invalidate",
				Usage:  "flag a thesis as dead, exits on next scan",
				Action: convictionInvalidateAction,
				Flags:  []cli.Flag{cli.StringFlag{Name: "symbol"}},
			},
			{
				Name:   "remove",
				Usage:  "delete a conviction record outright",
				Action: convictionRemoveAction,
				Flags:  []cli.Flag{cli.StringFlag{Name: "symbol"}},
			},
		},
	}
	pdtCMD = cli.Command{
		Name:  "pdt",
		Usage: "inspect or reset the day-trade window",
		Subcommands: []cli.Command{
			{
				Name:   "status",
				Usage:  "show day trades used in the rolling window",
				Action: pdtStatusAction,
			},
			{
				Name:   "clear",
				Usage:  "wipe the window after a corrupt-state lockout",
				Action: pdtClearAction,
			},
		},
	}
	statusCMD = cli.Command{
		Name:        "status",
		Usage:       "print gate status against the current snapshot",
		Action:      statusAction,
		Description: `Breaker state, day-trade usage, and active convictions`,
	}
)

func cycleAction(_ *cli.Context) error {
	logrus.Info("Starting cycle CMD")

	comps, err := buildComponents()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	config := cycle.GetConfig()
	runner := &cycle.Runner{
		Gate:    comps.gate,
		Journal: comps.journal,
		Source:  cycle.NewFileSnapshotSource(config.SnapshotPath),
		Config:  config,
	}
	return runner.Start()
}

func serveAction(_ *cli.Context) error {
	logrus.Info("Starting serve CMD")

	comps, err := buildComponents()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	config := cycle.GetConfig()
	server.StartServer(server.GetConfig().Port, server.Deps{
		Gate:        comps.gate,
		Convictions: comps.convictions,
		Journal:     comps.journal,
		Snapshots:   cycle.NewFileSnapshotSource(config.SnapshotPath),
	})
	return nil
}

func convictionSetAction(c *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}

	deadline, err := time.Parse(model.DateLayout, c.String("deadline"))
	if err != nil {
		return fmt.Errorf("parsing --deadline: %w", err)
	}

	conv, err := comps.convictions.Set(context.Background(), conviction.SetRequest{
		Symbol:            c.String("symbol"),
		Thesis:            c.String("thesis"),
		Catalyst:          c.String("catalyst"),
		EntryPrice:        c.Float64("entry"),
		MaxPainPrice:      c.Float64("max-pain"),
		StructuralSupport: c.Float64("support"),
		CatalystDeadline:  deadline,
		MaxPositionPct:    c.Float64("max-position"),
		SendItMode:        c.Bool("send-it"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("conviction set: %s, max pain %.2f, deadline %s\n",
		conv.Symbol, conv.MaxPainPrice, conv.CatalystDeadline.Format(model.DateLayout))
	return nil
}

func convictionListAction(_ *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}

	convictions, err := comps.convictions.List(context.Background())
	if err != nil {
		return err
	}
	if len(convictions) == 0 {
		fmt.Println("no convictions")
		return nil
	}
	for _, conv := range convictions {
		line := fmt.Sprintf("%-6s %-7s entry %.2f, max pain %.2f, deadline %s",
			conv.Symbol, conv.Status, conv.EntryPrice, conv.MaxPainPrice,
			conv.CatalystDeadline.Format(model.DateLayout))
		if conv.SendItMode {
			line += fmt.Sprintf(", send-it cap %.0f%%", conv.MaxPositionPct*100)
		}
		if conv.ExitReason != "" {
			line += ", exited: " + conv.ExitReason
		}
		fmt.Println(line)
	}
	return nil
}

func convictionEventAction(c *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}
	return comps.convictions.RecordCatalystEvent(context.Background(),
		c.String("symbol"), c.String("text"), c.Int("impact"), c.Bool("confirming"))
}

func convictionInvalidateAction(c *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}
	if err := comps.convictions.Invalidate(context.Background(), c.String("symbol")); err != nil {
		return err
	}
	fmt.Println("thesis invalidated, exit fires on next scan")
	return nil
}

func convictionRemoveAction(c *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}
	return comps.convictions.Remove(context.Background(), c.String("symbol"))
}

func pdtStatusAction(_ *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}

	snap, err := cycle.NewFileSnapshotSource(cycle.GetConfig().SnapshotPath).Snapshot(context.Background())
	if err != nil {
		return err
	}
	status, err := comps.gate.Status(context.Background(), snap, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("day trades used: %d (blocks at %d), can day trade: %v\n",
		status.DayTradesUsed, status.DayTradesBlockAt, status.CanDayTrade)
	return nil
}

func pdtClearAction(_ *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}
	if err := comps.gate.ClearDayTrades(context.Background()); err != nil {
		return err
	}
	fmt.Println("day-trade window cleared")
	return nil
}

func statusAction(_ *cli.Context) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}

	snap, err := cycle.NewFileSnapshotSource(cycle.GetConfig().SnapshotPath).Snapshot(context.Background())
	if err != nil {
		return err
	}
	status, err := comps.gate.Status(context.Background(), snap, time.Now().UTC())
	if err != nil {
		logrus.WithError(err).Warn("status computed with state problems")
	}

	fmt.Printf("halted: %v (%s)\n", status.Breaker.Halted, status.Breaker.Reason())
	fmt.Printf("size multiplier: %.2f\n", status.Breaker.SizeMultiplier)
	fmt.Printf("consecutive losses: %d\n", status.Breaker.ConsecutiveLosses)
	fmt.Printf("high-water mark: %.2f\n", status.Breaker.HighWaterMark)
	fmt.Printf("day trades used: %d of %d\n", status.DayTradesUsed, status.DayTradesBlockAt)
	fmt.Printf("active convictions: %d\n", status.ActiveConvictions)
	return nil
}
