package model

import "time"

const (
	ConvictionStatusActive = "active"
	ConvictionStatusExited = "exited"
)

// ExitReason names the trigger that ended a conviction. These four are
// the only ways out; there is deliberately no profit-target reason.
type ExitReason string

const (
	ExitThesisDead        ExitReason = "thesis_dead"
	ExitMomentumDead      ExitReason = "momentum_dead"
	ExitDeadlineExpired   ExitReason = "deadline_expired"
	ExitThesisInvalidated ExitReason = "thesis_invalidated"
)

// Conviction is an operator-declared, thesis-bound position. At most one
// active conviction exists per symbol. Thresholds are trusted as given;
// an inverted configuration still evaluates, it just fires on whatever
// the thresholds imply.
type Conviction struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Symbol   string `gorm:"size:12;not null;index" json:"symbol"`
	Thesis   string `gorm:"type:text" json:"thesis"`
	Catalyst string `gorm:"type:text" json:"catalyst"`

	EntryPrice        float64   `json:"entry_price"`
	MaxPainPrice      float64   `json:"max_pain_price"`
	StructuralSupport float64   `json:"structural_support"` // 0 = not set
	CatalystDeadline  time.Time `json:"catalyst_deadline"`

	MaxPositionPct float64 `json:"max_position_pct"` // 0..1, may be 1.0
	SendItMode     bool    `json:"send_it_mode"`

	Status      string     `gorm:"size:20;not null;default:active" json:"status"`
	Invalidated bool       `json:"invalidated"`
	ExitReason  string     `gorm:"size:30" json:"exit_reason,omitempty"`
	ExitPrice   *float64   `json:"exit_price,omitempty"`
	ExitedAt    *time.Time `json:"exited_at,omitempty"`

	SetAt     time.Time `json:"set_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// One-to-many: catalyst news recorded while the thesis is live.
	Events []CatalystEvent `gorm:"foreignKey:ConvictionID" json:"events,omitempty"`
}

func (Conviction) TableName() string {
	return "convictions"
}

// Active reports whether the conviction still binds gate decisions.
func (c Conviction) Active() bool {
	return c.Status == ConvictionStatusActive
}

// CatalystEvent is a caller-supplied news item tied to a conviction.
// A confirming event stops the deadline trigger from firing.
type CatalystEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ConvictionID uint      `gorm:"index;not null" json:"conviction_id"`
	Event        string    `gorm:"type:text" json:"event"`
	Impact       int       `json:"impact"` // -100..+100
	Confirming   bool      `json:"confirming"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CatalystEvent) TableName() string {
	return "catalyst_events"
}
