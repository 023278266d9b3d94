package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"riskfortress/cmd/cycle"
	"riskfortress/src/conviction"
	"riskfortress/src/database"
	"riskfortress/src/gate"
	"riskfortress/src/journal"
	"riskfortress/src/repository"
	"riskfortress/src/risk"
	"riskfortress/src/server"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	riskCfg, err := risk.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Invalid risk configuration")
	}

	jrnl := journal.New(repository.NewJournalRepository())
	convs := conviction.NewManager(repository.NewConvictionRepository(), jrnl, riskCfg.MaxConvictions)
	g, err := gate.New(riskCfg, repository.NewDayTradeRepository(), repository.NewBreakerRepository(), convs, jrnl)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build risk gate")
	}

	cycleCfg := cycle.GetConfig()
	deps := server.Deps{
		Gate:        g,
		Convictions: convs,
		Journal:     jrnl,
		Snapshots:   cycle.NewFileSnapshotSource(cycleCfg.SnapshotPath),
	}

	server.StartServer(server.GetConfig().Port, deps)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
