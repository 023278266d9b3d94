package model

import "time"

const (
	JournalTypeEntry            = "entry"
	JournalTypeExit             = "exit"
	JournalTypeSkip             = "skip"
	JournalTypeConvictionOpened = "conviction_opened"
	JournalTypeConvictionExited = "conviction_exited"
)

// JournalEntry is one audit-trail record. The journal itself is a
// collaborator; the core writes conviction lifecycle events into it and
// reads aggregate history back for reporting and Kelly statistics.
type JournalEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EntryID   string    `gorm:"size:36;uniqueIndex" json:"entry_id"`
	Type      string    `gorm:"size:30;not null;index" json:"type"`
	Symbol    string    `gorm:"size:12;index" json:"symbol"`
	TradeDate string    `gorm:"size:10;index" json:"trade_date"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	PnL       *float64  `gorm:"column:pnl" json:"pnl,omitempty"`
	Reason    string    `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}
