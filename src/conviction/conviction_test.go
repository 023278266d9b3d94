package conviction

import (
	"context"
	"errors"
	"testing"
	"time"

	"riskfortress/src/model"
)

type memStore struct {
	convictions []model.Conviction
	events      []model.CatalystEvent
	nextID      uint
}

func (s *memStore) Active(_ context.Context) ([]model.Conviction, error) {
	var out []model.Conviction
	for _, c := range s.convictions {
		if c.Status == model.ConvictionStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) ActiveBySymbol(_ context.Context, symbol string) (*model.Conviction, error) {
	for _, c := range s.convictions {
		if c.Symbol == symbol && c.Status == model.ConvictionStatusActive {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) All(_ context.Context) ([]model.Conviction, error) {
	out := make([]model.Conviction, len(s.convictions))
	copy(out, s.convictions)
	return out, nil
}

func (s *memStore) Save(_ context.Context, c *model.Conviction) error {
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
		s.convictions = append(s.convictions, *c)
		return nil
	}
	for i := range s.convictions {
		if s.convictions[i].ID == c.ID {
			s.convictions[i] = *c
			return nil
		}
	}
	return errors.New("not found")
}

func (s *memStore) Delete(_ context.Context, id uint) error {
	for i := range s.convictions {
		if s.convictions[i].ID == id {
			s.convictions = append(s.convictions[:i], s.convictions[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (s *memStore) AddEvent(_ context.Context, ev *model.CatalystEvent) error {
	s.nextID++
	ev.ID = s.nextID
	s.events = append(s.events, *ev)
	return nil
}

func (s *memStore) EventsFor(_ context.Context, convictionID uint) ([]model.CatalystEvent, error) {
	var out []model.CatalystEvent
	for _, ev := range s.events {
		if ev.ConvictionID == convictionID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type memJournal struct {
	opened []string
	exited []string
}

func (j *memJournal) ConvictionOpened(_ context.Context, c model.Conviction) error {
	j.opened = append(j.opened, c.Symbol)
	return nil
}

func (j *memJournal) ConvictionExited(_ context.Context, c model.Conviction) error {
	j.exited = append(j.exited, c.Symbol)
	return nil
}

var deadline = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func validRequest(symbol string) SetRequest {
	return SetRequest{
		Symbol:           symbol,
		Thesis:           "short squeeze setup",
		Catalyst:         "earnings",
		EntryPrice:       25,
		MaxPainPrice:     15,
		CatalystDeadline: deadline,
		MaxPositionPct:   0.5,
		SendItMode:       true,
	}
}

func TestSetValidatesAndJournals(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	journal := &memJournal{}
	m := NewManager(store, journal, 3)

	c, err := m.Set(ctx, validRequest(" gme "))
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if c.Symbol != "GME" || c.Status != model.ConvictionStatusActive {
		t.Fatalf("conviction malformed: %+v", c)
	}
	if len(journal.opened) != 1 || journal.opened[0] != "GME" {
		t.Fatalf("open not journaled: %v", journal.opened)
	}

	bad := []struct {
		name   string
		mutate func(*SetRequest)
	}{
		{"empty symbol", func(r *SetRequest) { r.Symbol = " " }},
		{"zero entry", func(r *SetRequest) { r.EntryPrice = 0 }},
		{"zero max pain", func(r *SetRequest) { r.MaxPainPrice = 0 }},
		{"negative support", func(r *SetRequest) { r.StructuralSupport = -1 }},
		{"no deadline", func(r *SetRequest) { r.CatalystDeadline = time.Time{} }},
		{"cap above one", func(r *SetRequest) { r.MaxPositionPct = 1.5 }},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest("AMC")
			tt.mutate(&req)
			if _, err := m.Set(ctx, req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSetEnforcesOnePerSymbolAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&memStore{}, nil, 2)

	if _, err := m.Set(ctx, validRequest("GME")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := m.Set(ctx, validRequest("GME")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := m.Set(ctx, validRequest("AMC")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := m.Set(ctx, validRequest("BB")); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestCheckExitsTriggerPriority(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*SetRequest)
		setup   func(m *Manager)
		price   float64
		today   time.Time
		want    model.ExitReason
		noExit  bool
	}{
		{
			name:  "below max pain is thesis dead",
			price: 14.99,
			today: today,
			want:  model.ExitThesisDead,
		},
		{
			name:   "at max pain exactly holds",
			price:  15,
			today:  today,
			noExit: true,
		},
		{
			name:   "below support is momentum dead",
			mutate: func(r *SetRequest) { r.StructuralSupport = 20 },
			price:  19,
			today:  today,
			want:   model.ExitMomentumDead,
		},
		{
			name:   "max pain outranks support",
			mutate: func(r *SetRequest) { r.StructuralSupport = 20 },
			price:  14,
			today:  today,
			want:   model.ExitThesisDead,
		},
		{
			name:  "past deadline without catalyst",
			price: 30,
			today: deadline.AddDate(0, 0, 1),
			want:  model.ExitDeadlineExpired,
		},
		{
			name: "confirming catalyst keeps deadline open",
			setup: func(m *Manager) {
				if err := m.RecordCatalystEvent(ctx, "GME", "filing confirmed", 80, true); err != nil {
					t.Fatalf("event: %v", err)
				}
			},
			price:  30,
			today:  deadline.AddDate(0, 0, 1),
			noExit: true,
		},
		{
			name: "operator invalidation",
			setup: func(m *Manager) {
				if err := m.Invalidate(ctx, "GME"); err != nil {
					t.Fatalf("invalidate: %v", err)
				}
			},
			price: 30,
			today: today,
			want:  model.ExitThesisInvalidated,
		},
		{
			name:   "price above everything holds",
			price:  100,
			today:  today,
			noExit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			journal := &memJournal{}
			m := NewManager(store, journal, 3)

			req := validRequest("GME")
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			if _, err := m.Set(ctx, req); err != nil {
				t.Fatalf("set: %v", err)
			}
			if tt.setup != nil {
				tt.setup(m)
			}

			signals, err := m.CheckExits(ctx, map[string]float64{"GME": tt.price}, tt.today)
			if err != nil {
				t.Fatalf("check exits: %v", err)
			}
			if tt.noExit {
				if len(signals) != 0 {
					t.Fatalf("expected no exit, got %+v", signals)
				}
				return
			}
			if len(signals) != 1 || signals[0].Reason != tt.want {
				t.Fatalf("signals = %+v, want one %s", signals, tt.want)
			}
			if signals[0].Price != tt.price {
				t.Fatalf("signal price = %v, want %v", signals[0].Price, tt.price)
			}
			if len(journal.exited) != 1 {
				t.Fatalf("exit not journaled: %v", journal.exited)
			}

			// Exited convictions no longer bind.
			if c, _ := m.Get(ctx, "GME"); c != nil {
				t.Fatal("exited conviction still reported active")
			}
		})
	}
}

func TestCheckExitsNeverTakesProfit(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&memStore{}, nil, 3)
	if _, err := m.Set(ctx, validRequest("GME")); err != nil {
		t.Fatalf("set: %v", err)
	}

	// 20x the entry price. Still no exit.
	signals, err := m.CheckExits(ctx, map[string]float64{"GME": 500},
		time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check exits: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("profit is never an exit trigger, got %+v", signals)
	}
}

func TestCheckExitsSkipsSymbolsWithoutPrices(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&memStore{}, nil, 3)
	if _, err := m.Set(ctx, validRequest("GME")); err != nil {
		t.Fatalf("set: %v", err)
	}

	signals, err := m.CheckExits(ctx, map[string]float64{"AMC": 1},
		time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check exits: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("no price means no evaluation, got %+v", signals)
	}
	if c, _ := m.Get(ctx, "GME"); c == nil {
		t.Fatal("conviction must stay active when unpriced")
	}
}

func TestInvertedThresholdsStillEvaluate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&memStore{}, nil, 3)

	// Max pain above entry: operator error, but recorded as given. The
	// trigger fires on what the thresholds imply.
	req := validRequest("GME")
	req.EntryPrice = 10
	req.MaxPainPrice = 40
	if _, err := m.Set(ctx, req); err != nil {
		t.Fatalf("set: %v", err)
	}

	signals, err := m.CheckExits(ctx, map[string]float64{"GME": 35},
		time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("check exits: %v", err)
	}
	if len(signals) != 1 || signals[0].Reason != model.ExitThesisDead {
		t.Fatalf("inverted thresholds must still fire, got %+v", signals)
	}
}

func TestRemoveAndStatus(t *testing.T) {
	ctx := context.Background()
	m := NewManager(&memStore{}, nil, 3)
	if _, err := m.Set(ctx, validRequest("GME")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.RecordCatalystEvent(ctx, "GME", "volume spike", 40, true); err != nil {
		t.Fatalf("event: %v", err)
	}

	report, err := m.Status(ctx, "GME", 30, time.Date(2025, time.May, 22, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if report.ConfirmingEvents != 1 {
		t.Fatalf("confirming events = %d, want 1", report.ConfirmingEvents)
	}
	if report.UnrealizedPct < 0.19 || report.UnrealizedPct > 0.21 {
		t.Fatalf("unrealized = %v, want ~0.20", report.UnrealizedPct)
	}
	if report.DaysRemaining != 10 {
		t.Fatalf("days remaining = %d, want 10", report.DaysRemaining)
	}

	if err := m.Remove(ctx, "GME"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.Remove(ctx, "GME"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
