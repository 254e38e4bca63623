package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

var (
	// ErrEventNotFound indicates the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrAlreadyRegistered indicates the member already holds a spot or a
	// waitlist place for the event.
	ErrAlreadyRegistered = errors.New("already registered for event")
	// ErrRegistrationNotFound indicates no active registration to cancel.
	ErrRegistrationNotFound = errors.New("registration not found")
)

// EventService owns events, registrations and waitlist promotion.
type EventService interface {
	CreateEvent(ctx context.Context, payload dto.EventCreateRequest) (dto.EventResponse, error)
	ListEvents(ctx context.Context, page, pageSize int, upcoming bool) (dto.EventListResponse, error)
	Register(ctx context.Context, eventID, memberID uint) (dto.RegistrationResponse, error)
	CancelRegistration(ctx context.Context, eventID, memberID uint) (dto.CancellationResponse, error)
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEventService constructs the event service.
func NewEventService(repo repository.EventRepository, validate *validator.Validate, logger zerolog.Logger) EventService {
	return &eventService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "event_service").Logger(),
	}
}

func (s *eventService) CreateEvent(ctx context.Context, payload dto.EventCreateRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	event := models.Event{
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		Location:    strings.TrimSpace(payload.Location),
		Capacity:    payload.Capacity,
		StartsAt:    payload.StartsAt,
		EndsAt:      payload.EndsAt,
	}

	if err := s.repo.CreateEvent(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	return toEventResponse(event, 0), nil
}

func (s *eventService) ListEvents(ctx context.Context, page, pageSize int, upcoming bool) (dto.EventListResponse, error) {
	page = maxInt(page, 1)
	pageSize = clampPageSize(pageSize)

	events, total, err := s.repo.ListEvents(ctx, repository.EventFilter{Page: page, PageSize: pageSize, Upcoming: upcoming})
	if err != nil {
		return dto.EventListResponse{}, err
	}

	items := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		registered, err := s.repo.CountRegistered(ctx, event.ID)
		if err != nil {
			return dto.EventListResponse{}, err
		}
		items = append(items, toEventResponse(event, registered))
	}

	return dto.EventListResponse{
		Items:      items,
		Pagination: buildPagination(page, pageSize, total),
	}, nil
}

// Register places the member on the event. When the event is at capacity the
// registration is created waitlisted; promotion happens on cancellation in
// creation order.
func (s *eventService) Register(ctx context.Context, eventID, memberID uint) (dto.RegistrationResponse, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegistrationResponse{}, ErrEventNotFound
		}
		return dto.RegistrationResponse{}, err
	}

	if _, err := s.repo.FindRegistration(ctx, eventID, memberID); err == nil {
		return dto.RegistrationResponse{}, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RegistrationResponse{}, err
	}

	status := models.RegistrationStatusRegistered
	if event.Capacity > 0 {
		registered, err := s.repo.CountRegistered(ctx, eventID)
		if err != nil {
			return dto.RegistrationResponse{}, err
		}
		if registered >= int64(event.Capacity) {
			status = models.RegistrationStatusWaitlisted
		}
	}

	reg := models.EventRegistration{
		EventID:  eventID,
		MemberID: memberID,
		Status:   status,
	}

	if err := s.repo.CreateRegistration(ctx, &reg); err != nil {
		return dto.RegistrationResponse{}, err
	}

	s.logger.Info().Uint("event_id", eventID).Uint("member_id", memberID).Str("status", status).Msg("event registration created")

	return toRegistrationResponse(reg), nil
}

// CancelRegistration cancels the member's active registration and, when a
// confirmed spot was freed, promotes the oldest waitlisted registration.
func (s *eventService) CancelRegistration(ctx context.Context, eventID, memberID uint) (dto.CancellationResponse, error) {
	reg, err := s.repo.FindRegistration(ctx, eventID, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CancellationResponse{}, ErrRegistrationNotFound
		}
		return dto.CancellationResponse{}, err
	}

	now := time.Now()
	if err := s.repo.CancelRegistration(ctx, reg.ID, now); err != nil {
		return dto.CancellationResponse{}, err
	}

	cancelled := reg
	cancelled.Status = models.RegistrationStatusCancelled

	response := dto.CancellationResponse{Cancelled: toRegistrationResponse(cancelled)}

	// Only a confirmed spot frees capacity; cancelling a waitlist place
	// promotes nobody.
	if reg.Status == models.RegistrationStatusRegistered {
		promoted, err := s.repo.PromoteOldestWaitlisted(ctx, eventID, now)
		if err != nil {
			return dto.CancellationResponse{}, err
		}
		if promoted != nil {
			promotedResponse := toRegistrationResponse(*promoted)
			response.Promoted = &promotedResponse
			s.logger.Info().Uint("event_id", eventID).Uint("member_id", promoted.MemberID).Msg("waitlisted registration promoted")
		}
	}

	return response, nil
}

func toEventResponse(event models.Event, registered int64) dto.EventResponse {
	return dto.EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		ImageURL:    event.ImageURL,
		Capacity:    event.Capacity,
		Registered:  registered,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
	}
}

func toRegistrationResponse(reg models.EventRegistration) dto.RegistrationResponse {
	return dto.RegistrationResponse{
		ID:       reg.ID,
		EventID:  reg.EventID,
		MemberID: reg.MemberID,
		Status:   reg.Status,
	}
}
