package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/models"
)

// MemberFilter narrows member list queries.
type MemberFilter struct {
	Page     int
	PageSize int
	Role     string
	Search   string
}

// MemberRepository provides access to member profiles.
type MemberRepository interface {
	GetByID(ctx context.Context, id uint) (models.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]models.Member, int64, error)
	UpdateVolunteerTotal(ctx context.Context, memberID uint, total float64) error
	GrantWaiver(ctx context.Context, memberID uint, total float64, grantedAt time.Time) (bool, error)
	UpdateAvatar(ctx context.Context, memberID uint, url string) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository constructs a member repository.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return models.Member{}, err
	}

	return member, nil
}

func (r *memberRepository) List(ctx context.Context, filter MemberFilter) ([]models.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var members []models.Member
	if err := query.Order("created_at DESC").Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *memberRepository) UpdateVolunteerTotal(ctx context.Context, memberID uint, total float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", memberID).
		Update("total_volunteer_hours", total).Error
}

// GrantWaiver flips the fee-waived flag and propagates the waiver to the
// member's active membership record in a single transaction. The guard on
// membership_fee_waived makes the grant first-writer-wins: concurrent
// evaluations of the same member cannot both report a fresh grant, and a
// repeat call leaves waiver_granted_at untouched. Returns whether this call
// performed the grant. A member without an active membership record is still
// granted on the profile; no membership row is created.
func (r *memberRepository) GrantWaiver(ctx context.Context, memberID uint, total float64, grantedAt time.Time) (bool, error) {
	granted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Member{}).
			Where("id = ? AND membership_fee_waived = ?", memberID, false).
			Updates(map[string]interface{}{
				"membership_fee_waived": true,
				"waiver_granted_at":     grantedAt,
				"total_volunteer_hours": total,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Already waived; only refresh the cached total.
			return tx.Model(&models.Member{}).
				Where("id = ?", memberID).
				Update("total_volunteer_hours", total).Error
		}

		granted = true

		return tx.Model(&models.Membership{}).
			Where("member_id = ? AND status = ?", memberID, models.MembershipStatusActive).
			Updates(map[string]interface{}{
				"waived_through_volunteering": true,
				"waiver_volunteer_hours":      total,
				"balance_due":                 0,
			}).Error
	})
	if err != nil {
		return false, err
	}

	return granted, nil
}

func (r *memberRepository) UpdateAvatar(ctx context.Context, memberID uint, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", memberID).
		Update("avatar_url", url).Error
}
