package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/models"
)

// FeatureFlagRepository reads feature flag rows.
type FeatureFlagRepository interface {
	ListEnabled(ctx context.Context) ([]models.FeatureFlag, error)
	Upsert(ctx context.Context, flag *models.FeatureFlag) error
}

type featureFlagRepository struct {
	db *gorm.DB
}

// NewFeatureFlagRepository constructs the feature flag repository.
func NewFeatureFlagRepository(db *gorm.DB) FeatureFlagRepository {
	return &featureFlagRepository{db: db}
}

func (r *featureFlagRepository) ListEnabled(ctx context.Context) ([]models.FeatureFlag, error) {
	var flags []models.FeatureFlag
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("key ASC").
		Find(&flags).Error
	if err != nil {
		return nil, err
	}

	return flags, nil
}

func (r *featureFlagRepository) Upsert(ctx context.Context, flag *models.FeatureFlag) error {
	return r.db.WithContext(ctx).Save(flag).Error
}
