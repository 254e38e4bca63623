package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/models"
)

// HourLogFilter narrows hour log list queries.
type HourLogFilter struct {
	Page     int
	PageSize int
	MemberID *uint
	Status   string
}

// ReviewUpdate carries the fields written by a review decision.
type ReviewUpdate struct {
	Status             string
	CountsTowardWaiver bool
	ReviewedBy         uint
	ReviewedAt         time.Time
	AdminNotes         string
	RejectionReason    string
}

// HourLogRepository persists volunteer hour submissions.
type HourLogRepository interface {
	Create(ctx context.Context, log *models.HourLog) error
	GetByID(ctx context.Context, id uint) (models.HourLog, error)
	List(ctx context.Context, filter HourLogFilter) ([]models.HourLog, int64, error)
	ApplyReview(ctx context.Context, id uint, update ReviewUpdate) (models.HourLog, error)
	SumApproved(ctx context.Context, memberID uint) (float64, error)
	CompleteAssignment(ctx context.Context, assignmentID uint, completedAt time.Time) error
}

type hourLogRepository struct {
	db *gorm.DB
}

// NewHourLogRepository constructs the hour log repository.
func NewHourLogRepository(db *gorm.DB) HourLogRepository {
	return &hourLogRepository{db: db}
}

func (r *hourLogRepository) Create(ctx context.Context, log *models.HourLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *hourLogRepository) GetByID(ctx context.Context, id uint) (models.HourLog, error) {
	var log models.HourLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		return models.HourLog{}, err
	}

	return log, nil
}

func (r *hourLogRepository) List(ctx context.Context, filter HourLogFilter) ([]models.HourLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HourLog{})

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var logs []models.HourLog
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// ApplyReview writes the review decision, guarded so a log can only move out
// of pending once. Returns gorm.ErrRecordNotFound when the row is missing or
// was already reviewed; callers distinguish the two by fetching first.
func (r *hourLogRepository) ApplyReview(ctx context.Context, id uint, update ReviewUpdate) (models.HourLog, error) {
	result := r.db.WithContext(ctx).
		Model(&models.HourLog{}).
		Where("id = ? AND status = ?", id, models.HourLogStatusPending).
		Updates(map[string]interface{}{
			"status":               update.Status,
			"counts_toward_waiver": update.CountsTowardWaiver,
			"reviewed_by":          update.ReviewedBy,
			"reviewed_at":          update.ReviewedAt,
			"admin_notes":          update.AdminNotes,
			"rejection_reason":     update.RejectionReason,
		})
	if result.Error != nil {
		return models.HourLog{}, result.Error
	}

	if result.RowsAffected == 0 {
		return models.HourLog{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// SumApproved aggregates approved hours for a member inside the store, so the
// total always reflects the latest review decisions.
func (r *hourLogRepository) SumApproved(ctx context.Context, memberID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.HourLog{}).
		Where("member_id = ? AND status = ?", memberID, models.HourLogStatusApproved).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *hourLogRepository) CompleteAssignment(ctx context.Context, assignmentID uint, completedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.VolunteerAssignment{}).
		Where("id = ?", assignmentID).
		Updates(map[string]interface{}{
			"status":       models.AssignmentStatusCompleted,
			"completed_at": completedAt,
		}).Error
}
