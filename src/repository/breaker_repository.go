package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskfortress/src/database"
	"riskfortress/src/model"
)

// BreakerRepository persists the single circuit-breaker state row.
type BreakerRepository struct {
	db *gorm.DB
}

// NewBreakerRepository creates a new repository instance using the main read/write database.
func NewBreakerRepository() *BreakerRepository {
	logger.WithField("component", "BreakerRepository").
		Info("Creating new BreakerRepository with MainDB")

	return &BreakerRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *BreakerRepository) WithDB(db *gorm.DB) *BreakerRepository {
	return &BreakerRepository{db: db}
}

// Load returns the breaker state, or nil when none has been written yet.
func (r *BreakerRepository) Load(ctx context.Context) (*model.BreakerState, error) {
	var state model.BreakerState
	err := r.db.WithContext(ctx).First(&state, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "BreakerRepository",
				"op":   "Load",
			}).Debug("No breaker state yet")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "BreakerRepository",
			"op":   "Load",
		}).WithError(err).Error("Failed to load breaker state")
		return nil, err
	}
	return &state, nil
}

// Save upserts the breaker state row.
func (r *BreakerRepository) Save(ctx context.Context, state *model.BreakerState) error {
	if state.ID == 0 {
		state.ID = 1
	}
	if err := r.db.WithContext(ctx).Save(state).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "BreakerRepository",
			"op":   "Save",
		}).WithError(err).Error("Failed to save breaker state")
		return err
	}
	return nil
}
