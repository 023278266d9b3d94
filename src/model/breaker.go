package model

import "time"

// BreakerState is the single persisted circuit-breaker row. The
// high-water mark only ever moves up; consecutive losses reset on any
// winning trade and on each new calendar day.
type BreakerState struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ConsecutiveLosses  int       `json:"consecutive_losses"`
	IntradayStartValue float64   `json:"intraday_start_value"`
	LastResetDate      string    `gorm:"size:10" json:"last_reset_date"`
	HighWaterMark      float64   `json:"high_water_mark"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (BreakerState) TableName() string {
	return "breaker_state"
}
