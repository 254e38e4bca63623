package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cascadia-commons/portal-api/internal/models"
)

// ErrDuplicatePayment marks a webhook redelivery for an already stored event.
var ErrDuplicatePayment = errors.New("payment already recorded")

// PaymentRepository stores processor webhook deliveries.
type PaymentRepository interface {
	Create(ctx context.Context, record *models.PaymentRecord) error
	ListByMember(ctx context.Context, memberID uint) ([]models.PaymentRecord, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs the payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, record *models.PaymentRecord) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_ref"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrDuplicatePayment
	}

	return nil
}

func (r *paymentRepository) ListByMember(ctx context.Context, memberID uint) ([]models.PaymentRecord, error) {
	var records []models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("received_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
