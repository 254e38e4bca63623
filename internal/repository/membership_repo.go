package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/models"
)

// MembershipRepository provides access to billing records.
type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetActiveByMember(ctx context.Context, memberID uint) (models.Membership, error)
	RecordPayment(ctx context.Context, membershipID uint, amount float64) error
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository constructs the membership repository.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *membershipRepository) GetActiveByMember(ctx context.Context, memberID uint) (models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status = ?", memberID, models.MembershipStatusActive).
		Order("created_at DESC").
		First(&membership).Error
	if err != nil {
		return models.Membership{}, err
	}

	return membership, nil
}

// RecordPayment reduces the balance and activates the record. A waived
// membership keeps a zero balance regardless of the amount received.
func (r *membershipRepository) RecordPayment(ctx context.Context, membershipID uint, amount float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var membership models.Membership
		if err := tx.First(&membership, membershipID).Error; err != nil {
			return err
		}

		balance := membership.BalanceDue - amount
		if balance < 0 || membership.WaivedThroughVolunteering {
			balance = 0
		}

		return tx.Model(&models.Membership{}).
			Where("id = ?", membershipID).
			Updates(map[string]interface{}{
				"balance_due": balance,
				"status":      models.MembershipStatusActive,
			}).Error
	})
}
