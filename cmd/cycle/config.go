package cycle

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	IntervalSeconds int    `envconfig:"CYCLE_INTERVAL_SECONDS" default:"60"`
	SnapshotPath    string `envconfig:"SNAPSHOT_PATH" default:"snapshot.json"`
	CandidatesPath  string `envconfig:"CANDIDATES_PATH" default:"candidates.json"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
