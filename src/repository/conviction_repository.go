package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskfortress/src/database"
	"riskfortress/src/model"
)

// ConvictionRepository handles persistence for conviction positions and
// their catalyst events.
type ConvictionRepository struct {
	db *gorm.DB
}

// NewConvictionRepository creates a new repository instance using the main read/write database.
func NewConvictionRepository() *ConvictionRepository {
	logger.WithField("component", "ConvictionRepository").
		Info("Creating new ConvictionRepository with MainDB")

	return &ConvictionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *ConvictionRepository) WithDB(db *gorm.DB) *ConvictionRepository {
	return &ConvictionRepository{db: db}
}

// Active returns all convictions still in the active state.
func (r *ConvictionRepository) Active(ctx context.Context) ([]model.Conviction, error) {
	var convictions []model.Conviction
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ConvictionStatusActive).
		Order("id ASC").
		Find(&convictions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ConvictionRepository",
			"op":   "Active",
		}).WithError(err).Error("Failed to fetch active convictions")
		return nil, err
	}
	return convictions, nil
}

// ActiveBySymbol returns the active conviction for symbol, or nil.
func (r *ConvictionRepository) ActiveBySymbol(ctx context.Context, symbol string) (*model.Conviction, error) {
	var c model.Conviction
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND status = ?", symbol, model.ConvictionStatusActive).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "ConvictionRepository",
			"op":     "ActiveBySymbol",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch conviction by symbol")
		return nil, err
	}
	return &c, nil
}

// All returns every conviction, exited included, newest first.
func (r *ConvictionRepository) All(ctx context.Context) ([]model.Conviction, error) {
	var convictions []model.Conviction
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Find(&convictions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ConvictionRepository",
			"op":   "All",
		}).WithError(err).Error("Failed to fetch convictions")
		return nil, err
	}
	return convictions, nil
}

// Save creates or updates a conviction.
func (r *ConvictionRepository) Save(ctx context.Context, c *model.Conviction) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "ConvictionRepository",
		"op":     "Save",
		"symbol": c.Symbol,
		"status": c.Status,
	}).Debug("Saving conviction")

	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ConvictionRepository",
			"op":   "Save",
		}).WithError(err).Error("Failed to save conviction")
		return err
	}
	return nil
}

// Delete removes a conviction and its catalyst events.
func (r *ConvictionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conviction_id = ?", id).Delete(&model.CatalystEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conviction{}, id).Error
	})
}

// AddEvent inserts one catalyst event.
func (r *ConvictionRepository) AddEvent(ctx context.Context, ev *model.CatalystEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ConvictionRepository",
			"op":   "AddEvent",
		}).WithError(err).Error("Failed to record catalyst event")
		return err
	}
	return nil
}

// EventsFor returns all catalyst events for one conviction.
func (r *ConvictionRepository) EventsFor(ctx context.Context, convictionID uint) ([]model.CatalystEvent, error) {
	var events []model.CatalystEvent
	err := r.db.WithContext(ctx).
		Where("conviction_id = ?", convictionID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ConvictionRepository",
			"op":   "EventsFor",
			"id":   convictionID,
		}).WithError(err).Error("Failed to fetch catalyst events")
		return nil, err
	}
	return events, nil
}
