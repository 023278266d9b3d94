package model

import "time"

// DateLayout is the calendar-date format used for all persisted dates so
// state files stay human-inspectable and sortable.
const DateLayout = "2006-01-02"

// DayTradeRecord is one same-day round trip, kept for the rolling
// pattern-day-trade window. Records are append-only and pruned once the
// current date puts them outside the window.
type DayTradeRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"size:12;not null" json:"symbol"`
	TradeDate string    `gorm:"size:10;not null;index" json:"trade_date"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

func (DayTradeRecord) TableName() string {
	return "day_trades"
}
