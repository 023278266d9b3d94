package risk

import (
	"context"
	"errors"

	"riskfortress/src/model"
)

var errStoreBroken = errors.New("store broken")

type memDayTradeStore struct {
	records []model.DayTradeRecord
	nextID  uint
	fail    bool
}

func (s *memDayTradeStore) Since(_ context.Context, cutoff string) ([]model.DayTradeRecord, error) {
	if s.fail {
		return nil, errStoreBroken
	}
	var out []model.DayTradeRecord
	for _, r := range s.records {
		if r.TradeDate >= cutoff {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memDayTradeStore) Append(_ context.Context, rec *model.DayTradeRecord) error {
	if s.fail {
		return errStoreBroken
	}
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, *rec)
	return nil
}

func (s *memDayTradeStore) PruneBefore(_ context.Context, cutoff string) error {
	if s.fail {
		return errStoreBroken
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if r.TradeDate >= cutoff {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *memDayTradeStore) Clear(_ context.Context) error {
	if s.fail {
		return errStoreBroken
	}
	s.records = nil
	return nil
}

type memBreakerStore struct {
	state    *model.BreakerState
	failLoad bool
	failSave bool
}

func (s *memBreakerStore) Load(_ context.Context) (*model.BreakerState, error) {
	if s.failLoad {
		return nil, errStoreBroken
	}
	if s.state == nil {
		return nil, nil
	}
	cp := *s.state
	return &cp, nil
}

func (s *memBreakerStore) Save(_ context.Context, state *model.BreakerState) error {
	if s.failSave {
		return errStoreBroken
	}
	cp := *state
	s.state = &cp
	return nil
}
