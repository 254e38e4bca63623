package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

type eventRepoStub struct {
	events map[uint]*models.Event
	regs   map[uint]*models.EventRegistration
	nextID uint
}

func newEventRepoStub() *eventRepoStub {
	return &eventRepoStub{
		events: make(map[uint]*models.Event),
		regs:   make(map[uint]*models.EventRegistration),
	}
}

func (s *eventRepoStub) addEvent(event models.Event) uint {
	s.nextID++
	event.ID = s.nextID
	s.events[event.ID] = &event
	return event.ID
}

func (s *eventRepoStub) CreateEvent(_ context.Context, event *models.Event) error {
	s.nextID++
	event.ID = s.nextID
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *eventRepoStub) GetEvent(_ context.Context, id uint) (models.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return models.Event{}, gorm.ErrRecordNotFound
	}
	return *event, nil
}

func (s *eventRepoStub) ListEvents(_ context.Context, _ repository.EventFilter) ([]models.Event, int64, error) {
	var events []models.Event
	for _, event := range s.events {
		events = append(events, *event)
	}
	return events, int64(len(events)), nil
}

func (s *eventRepoStub) CountRegistered(_ context.Context, eventID uint) (int64, error) {
	var count int64
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.Status == models.RegistrationStatusRegistered {
			count++
		}
	}
	return count, nil
}

func (s *eventRepoStub) CreateRegistration(_ context.Context, reg *models.EventRegistration) error {
	s.nextID++
	reg.ID = s.nextID
	reg.CreatedAt = time.Now()
	copied := *reg
	s.regs[reg.ID] = &copied
	return nil
}

func (s *eventRepoStub) GetRegistration(_ context.Context, id uint) (models.EventRegistration, error) {
	reg, ok := s.regs[id]
	if !ok {
		return models.EventRegistration{}, gorm.ErrRecordNotFound
	}
	return *reg, nil
}

func (s *eventRepoStub) FindRegistration(_ context.Context, eventID, memberID uint) (models.EventRegistration, error) {
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.MemberID == memberID &&
			(reg.Status == models.RegistrationStatusRegistered || reg.Status == models.RegistrationStatusWaitlisted) {
			return *reg, nil
		}
	}
	return models.EventRegistration{}, gorm.ErrRecordNotFound
}

func (s *eventRepoStub) CancelRegistration(_ context.Context, id uint, cancelledAt time.Time) error {
	if reg, ok := s.regs[id]; ok {
		reg.Status = models.RegistrationStatusCancelled
		reg.CancelledAt = &cancelledAt
	}
	return nil
}

func (s *eventRepoStub) PromoteOldestWaitlisted(_ context.Context, eventID uint, promotedAt time.Time) (*models.EventRegistration, error) {
	var waitlisted []*models.EventRegistration
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.Status == models.RegistrationStatusWaitlisted {
			waitlisted = append(waitlisted, reg)
		}
	}
	if len(waitlisted) == 0 {
		return nil, nil
	}
	sort.Slice(waitlisted, func(i, j int) bool {
		return waitlisted[i].CreatedAt.Before(waitlisted[j].CreatedAt)
	})
	oldest := waitlisted[0]
	oldest.Status = models.RegistrationStatusRegistered
	oldest.PromotedAt = &promotedAt
	copied := *oldest
	return &copied, nil
}

func (s *eventRepoStub) UpdateImage(_ context.Context, eventID uint, url string) error {
	event, ok := s.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	event.ImageURL = url
	return nil
}

func newEventService(repo *eventRepoStub) EventService {
	return NewEventService(repo, validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func TestEventServiceRegisterUntilCapacityThenWaitlist(t *testing.T) {
	repo := newEventRepoStub()
	eventID := repo.addEvent(models.Event{Title: "Workshop", Capacity: 2, StartsAt: time.Now().Add(time.Hour)})
	svc := newEventService(repo)

	first, err := svc.Register(context.Background(), eventID, 1)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusRegistered, first.Status)

	second, err := svc.Register(context.Background(), eventID, 2)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusRegistered, second.Status)

	third, err := svc.Register(context.Background(), eventID, 3)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusWaitlisted, third.Status)

	_, err = svc.Register(context.Background(), eventID, 3)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestEventServiceCancelPromotesOldestWaitlisted(t *testing.T) {
	repo := newEventRepoStub()
	eventID := repo.addEvent(models.Event{Title: "Cleanup", Capacity: 1, StartsAt: time.Now().Add(time.Hour)})
	svc := newEventService(repo)

	_, err := svc.Register(context.Background(), eventID, 1)
	require.NoError(t, err)
	waitA, err := svc.Register(context.Background(), eventID, 2)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusWaitlisted, waitA.Status)
	waitB, err := svc.Register(context.Background(), eventID, 3)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusWaitlisted, waitB.Status)

	outcome, err := svc.CancelRegistration(context.Background(), eventID, 1)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationStatusCancelled, outcome.Cancelled.Status)
	require.NotNil(t, outcome.Promoted)
	require.Equal(t, uint(2), outcome.Promoted.MemberID, "oldest waitlisted member promoted first")
	require.Equal(t, models.RegistrationStatusRegistered, outcome.Promoted.Status)
}

func TestEventServiceCancelWaitlistedPromotesNobody(t *testing.T) {
	repo := newEventRepoStub()
	eventID := repo.addEvent(models.Event{Title: "Potluck", Capacity: 1, StartsAt: time.Now().Add(time.Hour)})
	svc := newEventService(repo)

	_, err := svc.Register(context.Background(), eventID, 1)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), eventID, 2)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), eventID, 3)
	require.NoError(t, err)

	outcome, err := svc.CancelRegistration(context.Background(), eventID, 3)
	require.NoError(t, err)
	require.Nil(t, outcome.Promoted, "cancelling a waitlist place frees no capacity")
}

func TestEventServiceCancelErrors(t *testing.T) {
	repo := newEventRepoStub()
	eventID := repo.addEvent(models.Event{Title: "Gala", Capacity: 0, StartsAt: time.Now().Add(time.Hour)})
	svc := newEventService(repo)

	_, err := svc.CancelRegistration(context.Background(), eventID, 42)
	require.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = svc.Register(context.Background(), 999, 1)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventServiceUnlimitedCapacity(t *testing.T) {
	repo := newEventRepoStub()
	eventID := repo.addEvent(models.Event{Title: "Open House", Capacity: 0, StartsAt: time.Now().Add(time.Hour)})
	svc := newEventService(repo)

	for member := uint(1); member <= 5; member++ {
		reg, err := svc.Register(context.Background(), eventID, member)
		require.NoError(t, err)
		require.Equal(t, models.RegistrationStatusRegistered, reg.Status)
	}
}

func TestEventServiceCreateValidation(t *testing.T) {
	svc := newEventService(newEventRepoStub())

	_, err := svc.CreateEvent(context.Background(), dto.EventCreateRequest{Title: "x"})
	require.Error(t, err)

	created, err := svc.CreateEvent(context.Background(), dto.EventCreateRequest{
		Title:    "Board Game Night",
		Capacity: 20,
		StartsAt: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "Board Game Night", created.Title)
}
