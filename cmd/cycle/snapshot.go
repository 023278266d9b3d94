package cycle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"riskfortress/src/model"
)

// FileSnapshotSource reads the account snapshot from a JSON file that an
// external fetcher keeps current. The risk core never talks to a broker.
type FileSnapshotSource struct {
	path string
}

func NewFileSnapshotSource(path string) *FileSnapshotSource {
	return &FileSnapshotSource{path: path}
}

func (s *FileSnapshotSource) Snapshot(_ context.Context) (model.PortfolioSnapshot, error) {
	var snap model.PortfolioSnapshot
	data, err := os.ReadFile(s.path)
	if err != nil {
		return snap, fmt.Errorf("reading snapshot %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parsing snapshot %s: %w", s.path, err)
	}
	return snap, nil
}

// loadCandidates reads the pending candidate list. A missing file means
// no candidates this cycle, not an error.
func loadCandidates(path string) ([]model.TradeCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading candidates %s: %w", path, err)
	}
	var candidates []model.TradeCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parsing candidates %s: %w", path, err)
	}
	return candidates, nil
}
