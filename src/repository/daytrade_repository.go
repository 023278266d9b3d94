package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskfortress/src/database"
	"riskfortress/src/model"
)

// DayTradeRepository handles persistence for the rolling day-trade
// window.
type DayTradeRepository struct {
	db *gorm.DB
}

// NewDayTradeRepository creates a new repository instance using the main read/write database.
func NewDayTradeRepository() *DayTradeRepository {
	logger.WithField("component", "DayTradeRepository").
		Info("Creating new DayTradeRepository with MainDB")

	return &DayTradeRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *DayTradeRepository) WithDB(db *gorm.DB) *DayTradeRepository {
	return &DayTradeRepository{db: db}
}

// Since returns every day trade dated on or after cutoff (YYYY-MM-DD).
func (r *DayTradeRepository) Since(ctx context.Context, cutoff string) ([]model.DayTradeRecord, error) {
	logger.WithFields(map[string]interface{}{
		"repo":   "DayTradeRepository",
		"op":     "Since",
		"cutoff": cutoff,
	}).Debug("Fetching day trades in window")

	var records []model.DayTradeRecord
	err := r.db.WithContext(ctx).
		Where("trade_date >= ?", cutoff).
		Order("trade_date ASC, id ASC").
		Find(&records).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "DayTradeRepository",
			"op":   "Since",
		}).WithError(err).Error("Failed to fetch day trades")
		return nil, err
	}
	return records, nil
}

// Append inserts one executed day trade.
func (r *DayTradeRepository) Append(ctx context.Context, rec *model.DayTradeRecord) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "DayTradeRepository",
		"op":     "Append",
		"symbol": rec.Symbol,
		"date":   rec.TradeDate,
	}).Debug("Recording day trade")

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "DayTradeRepository",
			"op":   "Append",
		}).WithError(err).Error("Failed to record day trade")
		return err
	}
	return nil
}

// PruneBefore deletes records older than the cutoff date.
func (r *DayTradeRepository) PruneBefore(ctx context.Context, cutoff string) error {
	err := r.db.WithContext(ctx).
		Where("trade_date < ?", cutoff).
		Delete(&model.DayTradeRecord{}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "DayTradeRepository",
			"op":     "PruneBefore",
			"cutoff": cutoff,
		}).WithError(err).Error("Failed to prune day trades")
		return err
	}
	return nil
}

// Clear wipes the whole window. Operator escape hatch only.
func (r *DayTradeRepository) Clear(ctx context.Context) error {
	logger.WithFields(map[string]interface{}{
		"repo": "DayTradeRepository",
		"op":   "Clear",
	}).Warn("Clearing entire day-trade window")

	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.DayTradeRecord{}).Error
}
