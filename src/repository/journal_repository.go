package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskfortress/src/database"
	"riskfortress/src/model"
)

// JournalRepository handles persistence for the audit trail.
type JournalRepository struct {
	db *gorm.DB
}

// NewJournalRepository creates a new repository instance using the main read/write database.
func NewJournalRepository() *JournalRepository {
	logger.WithField("component", "JournalRepository").
		Info("Creating new JournalRepository with MainDB")

	return &JournalRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *JournalRepository) WithDB(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Insert appends one journal entry.
func (r *JournalRepository) Insert(ctx context.Context, entry *model.JournalEntry) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "JournalRepository",
		"op":     "Insert",
		"type":   entry.Type,
		"symbol": entry.Symbol,
	}).Debug("Inserting journal entry")

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "JournalRepository",
			"op":   "Insert",
		}).WithError(err).Error("Failed to insert journal entry")
		return err
	}
	return nil
}

// ForDate returns every entry on a calendar date (YYYY-MM-DD).
func (r *JournalRepository) ForDate(ctx context.Context, date string) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	err := r.db.WithContext(ctx).
		Where("trade_date = ?", date).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "JournalRepository",
			"op":   "ForDate",
			"date": date,
		}).WithError(err).Error("Failed to fetch journal entries")
		return nil, err
	}
	return entries, nil
}

// ExitsSince returns closed trades dated on or after cutoff.
func (r *JournalRepository) ExitsSince(ctx context.Context, cutoff string) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	err := r.db.WithContext(ctx).
		Where("type = ? AND trade_date >= ?", model.JournalTypeExit, cutoff).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "JournalRepository",
			"op":     "ExitsSince",
			"cutoff": cutoff,
		}).WithError(err).Error("Failed to fetch closed trades")
		return nil, err
	}
	return entries, nil
}
