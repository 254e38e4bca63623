package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/models"
)

// EventFilter narrows event list queries.
type EventFilter struct {
	Page     int
	PageSize int
	Upcoming bool
}

// EventRepository persists events and registrations.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (models.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)
	CountRegistered(ctx context.Context, eventID uint) (int64, error)
	CreateRegistration(ctx context.Context, reg *models.EventRegistration) error
	GetRegistration(ctx context.Context, id uint) (models.EventRegistration, error)
	FindRegistration(ctx context.Context, eventID, memberID uint) (models.EventRegistration, error)
	CancelRegistration(ctx context.Context, id uint, cancelledAt time.Time) error
	PromoteOldestWaitlisted(ctx context.Context, eventID uint, promotedAt time.Time) (*models.EventRegistration, error)
	UpdateImage(ctx context.Context, eventID uint, url string) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetEvent(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return models.Event{}, err
	}

	return event, nil
}

func (r *eventRepository) ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})

	if filter.Upcoming {
		query = query.Where("starts_at >= ?", time.Now())
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

	var events []models.Event
	if err := query.Order("starts_at ASC").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *eventRepository) CountRegistered(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EventRegistration{}).
		Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusRegistered).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *eventRepository) CreateRegistration(ctx context.Context, reg *models.EventRegistration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *eventRepository) GetRegistration(ctx context.Context, id uint) (models.EventRegistration, error) {
	var reg models.EventRegistration
	if err := r.db.WithContext(ctx).First(&reg, id).Error; err != nil {
		return models.EventRegistration{}, err
	}

	return reg, nil
}

func (r *eventRepository) FindRegistration(ctx context.Context, eventID, memberID uint) (models.EventRegistration, error) {
	var reg models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND member_id = ? AND status IN ?", eventID, memberID,
			[]string{models.RegistrationStatusRegistered, models.RegistrationStatusWaitlisted}).
		First(&reg).Error
	if err != nil {
		return models.EventRegistration{}, err
	}

	return reg, nil
}

func (r *eventRepository) CancelRegistration(ctx context.Context, id uint, cancelledAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.EventRegistration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.RegistrationStatusCancelled,
			"cancelled_at": cancelledAt,
		}).Error
}

// PromoteOldestWaitlisted moves the earliest waitlisted registration for the
// event to registered. Returns nil when the waitlist is empty.
func (r *eventRepository) PromoteOldestWaitlisted(ctx context.Context, eventID uint, promotedAt time.Time) (*models.EventRegistration, error) {
	var promoted *models.EventRegistration

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.EventRegistration
		err := tx.Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusWaitlisted).
			Order("created_at ASC").
			First(&reg).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		err = tx.Model(&models.EventRegistration{}).
			Where("id = ?", reg.ID).
			Updates(map[string]interface{}{
				"status":      models.RegistrationStatusRegistered,
				"promoted_at": promotedAt,
			}).Error
		if err != nil {
			return err
		}

		reg.Status = models.RegistrationStatusRegistered
		reg.PromotedAt = &promotedAt
		promoted = &reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	return promoted, nil
}

func (r *eventRepository) UpdateImage(ctx context.Context, eventID uint, url string) error {
	result := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("image_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
