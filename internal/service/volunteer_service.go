package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/observability"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

// WaiverThresholdHours is the number of approved volunteer hours that waives
// the membership fee for the current term.
const WaiverThresholdHours = 30.0

var (
	// ErrHourLogNotFound indicates the referenced hour log does not exist.
	ErrHourLogNotFound = errors.New("hour log not found")
	// ErrHourLogAlreadyReviewed indicates the log already left pending state.
	ErrHourLogAlreadyReviewed = errors.New("hour log already reviewed")
	// ErrInvalidReviewAction indicates an action other than APPROVE or REJECT.
	ErrInvalidReviewAction = errors.New("invalid review action")
	// ErrMemberNotFound indicates the referenced member does not exist.
	ErrMemberNotFound = errors.New("member not found")
)

// Reviewer identifies the admin or board member performing a review.
type Reviewer struct {
	ID   uint
	Role string
}

// VolunteerService owns the hour-log lifecycle and the fee-waiver pipeline.
type VolunteerService interface {
	SubmitHours(ctx context.Context, memberID uint, payload dto.HourLogSubmitRequest) (dto.HourLogResponse, error)
	ListHours(ctx context.Context, memberID *uint, status string, page, pageSize int) (dto.HourLogListResponse, error)
	ReviewHourLog(ctx context.Context, hourLogID uint, reviewer Reviewer, payload dto.HourLogReviewRequest) (dto.ReviewOutcome, error)
	RecalculateWaiver(ctx context.Context, memberID uint) (dto.WaiverEvaluation, error)
}

type volunteerService struct {
	logs      repository.HourLogRepository
	members   repository.MemberRepository
	activity  ActivityRecorder
	notifier  Notifier
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewVolunteerService constructs the volunteer service.
func NewVolunteerService(
	logs repository.HourLogRepository,
	members repository.MemberRepository,
	activity ActivityRecorder,
	notifier Notifier,
	validate *validator.Validate,
	logger zerolog.Logger,
) VolunteerService {
	return &volunteerService{
		logs:      logs,
		members:   members,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "volunteer_service").Logger(),
	}
}

func (s *volunteerService) SubmitHours(ctx context.Context, memberID uint, payload dto.HourLogSubmitRequest) (dto.HourLogResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HourLogResponse{}, err
	}

	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HourLogResponse{}, ErrMemberNotFound
		}
		return dto.HourLogResponse{}, err
	}

	log := models.HourLog{
		MemberID:     memberID,
		AssignmentID: payload.AssignmentID,
		Hours:        payload.Hours,
		ActivityDate: payload.ActivityDate,
		Description:  strings.TrimSpace(payload.Description),
		Status:       models.HourLogStatusPending,
	}

	if err := s.logs.Create(ctx, &log); err != nil {
		return dto.HourLogResponse{}, err
	}

	s.logger.Info().Uint("member_id", memberID).Float64("hours", log.Hours).Msg("hour log submitted")

	return toHourLogResponse(log), nil
}

func (s *volunteerService) ListHours(ctx context.Context, memberID *uint, status string, page, pageSize int) (dto.HourLogListResponse, error) {
	page = maxInt(page, 1)
	pageSize = clampPageSize(pageSize)

	logs, total, err := s.logs.List(ctx, repository.HourLogFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: memberID,
		Status:   status,
	})
	if err != nil {
		return dto.HourLogListResponse{}, err
	}

	items := make([]dto.HourLogResponse, 0, len(logs))
	for _, log := range logs {
		items = append(items, toHourLogResponse(log))
	}

	return dto.HourLogListResponse{
		Items:      items,
		Pagination: buildPagination(page, pageSize, total),
	}, nil
}

// ReviewHourLog applies an admin decision to a pending log, then recomputes
// the owner's waiver state. The recompute runs for rejections too: a log that
// previously counted may have been re-submitted and the cached total must
// reflect the store.
func (s *volunteerService) ReviewHourLog(ctx context.Context, hourLogID uint, reviewer Reviewer, payload dto.HourLogReviewRequest) (dto.ReviewOutcome, error) {
	action := strings.ToUpper(strings.TrimSpace(payload.Action))
	if action != models.ReviewActionApprove && action != models.ReviewActionReject {
		return dto.ReviewOutcome{}, ErrInvalidReviewAction
	}

	log, err := s.logs.GetByID(ctx, hourLogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewOutcome{}, ErrHourLogNotFound
		}
		return dto.ReviewOutcome{}, err
	}

	if log.Status != models.HourLogStatusPending {
		return dto.ReviewOutcome{}, ErrHourLogAlreadyReviewed
	}

	now := time.Now()
	update := repository.ReviewUpdate{
		ReviewedBy: reviewer.ID,
		ReviewedAt: now,
	}

	if action == models.ReviewActionApprove {
		update.Status = models.HourLogStatusApproved
		update.CountsTowardWaiver = true
		update.AdminNotes = strings.TrimSpace(payload.AdminNotes)
	} else {
		update.Status = models.HourLogStatusRejected
		update.CountsTowardWaiver = false
		update.RejectionReason = strings.TrimSpace(payload.RejectionReason)
	}

	reviewed, err := s.logs.ApplyReview(ctx, hourLogID, update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewOutcome{}, ErrHourLogAlreadyReviewed
		}
		return dto.ReviewOutcome{}, err
	}

	observability.HourLogReviews().WithLabelValues(strings.ToLower(action)).Inc()

	if action == models.ReviewActionApprove && reviewed.AssignmentID != nil {
		if err := s.logs.CompleteAssignment(ctx, *reviewed.AssignmentID, now); err != nil {
			s.logger.Warn().Err(err).Uint("assignment_id", *reviewed.AssignmentID).Msg("failed to complete linked assignment")
		}
	}

	waiver, err := s.RecalculateWaiver(ctx, reviewed.MemberID)
	if err != nil {
		s.logger.Error().Err(err).Uint("member_id", reviewed.MemberID).Msg("waiver recalculation failed after review")
		return dto.ReviewOutcome{}, err
	}

	s.recordReview(ctx, reviewer, reviewed, action, waiver)
	s.notifier.HourLogReviewed(ctx, reviewed.MemberID, reviewed.ID, strings.ToLower(action))

	return dto.ReviewOutcome{
		Action:  action,
		HourLog: toHourLogResponse(reviewed),
		Waiver:  waiver,
	}, nil
}

// RecalculateWaiver aggregates the member's approved hours and applies the
// waiver-grant transition when the threshold is reached. The grant is one-way:
// a total that later drops below the threshold never revokes an earlier grant.
func (s *volunteerService) RecalculateWaiver(ctx context.Context, memberID uint) (dto.WaiverEvaluation, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WaiverEvaluation{}, ErrMemberNotFound
		}
		return dto.WaiverEvaluation{}, err
	}

	total, err := s.logs.SumApproved(ctx, memberID)
	if err != nil {
		return dto.WaiverEvaluation{}, err
	}

	evaluation := dto.WaiverEvaluation{
		MemberID:            memberID,
		TotalHours:          total,
		WaiverThreshold:     WaiverThresholdHours,
		IsEligibleForWaiver: total >= WaiverThresholdHours,
		HoursNeeded:         math.Max(0, WaiverThresholdHours-total),
	}

	if evaluation.IsEligibleForWaiver && !member.MembershipFeeWaived {
		granted, err := s.members.GrantWaiver(ctx, memberID, total, time.Now())
		if err != nil {
			return dto.WaiverEvaluation{}, err
		}
		evaluation.WaiverApplied = granted
		if granted {
			observability.WaiverGrants().Inc()
			s.logger.Info().Uint("member_id", memberID).Float64("total_hours", total).Msg("membership fee waiver granted")
			s.notifier.WaiverGranted(ctx, memberID, total)
			s.recordGrant(ctx, memberID, total)
		}
		return evaluation, nil
	}

	if err := s.members.UpdateVolunteerTotal(ctx, memberID, total); err != nil {
		return dto.WaiverEvaluation{}, err
	}

	return evaluation, nil
}

func (s *volunteerService) recordGrant(ctx context.Context, memberID uint, total float64) {
	if s.activity == nil {
		return
	}

	entityID := memberID
	entry := ActivityEntry{
		ActorRole:  "system",
		Action:     "waiver_granted",
		EntityType: "member",
		EntityID:   &entityID,
		Metadata: map[string]interface{}{
			"total_hours": total,
			"threshold":   WaiverThresholdHours,
		},
	}

	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record waiver grant activity")
	}
}

func (s *volunteerService) recordReview(ctx context.Context, reviewer Reviewer, log models.HourLog, action string, waiver dto.WaiverEvaluation) {
	if s.activity == nil {
		return
	}

	entityID := log.ID
	entry := ActivityEntry{
		ActorID:    reviewer.ID,
		ActorRole:  reviewer.Role,
		Action:     "hour_log_" + strings.ToLower(action),
		EntityType: "hour_log",
		EntityID:   &entityID,
		Metadata: map[string]interface{}{
			"member_id":      log.MemberID,
			"hours":          log.Hours,
			"total_hours":    waiver.TotalHours,
			"waiver_applied": waiver.WaiverApplied,
		},
	}

	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record review activity")
	}
}

func toHourLogResponse(log models.HourLog) dto.HourLogResponse {
	return dto.HourLogResponse{
		ID:                 log.ID,
		MemberID:           log.MemberID,
		AssignmentID:       log.AssignmentID,
		Hours:              log.Hours,
		ActivityDate:       log.ActivityDate,
		Description:        log.Description,
		Status:             log.Status,
		CountsTowardWaiver: log.CountsTowardWaiver,
		ReviewedBy:         log.ReviewedBy,
		ReviewedAt:         log.ReviewedAt,
		AdminNotes:         log.AdminNotes,
		RejectionReason:    log.RejectionReason,
		CreatedAt:          log.CreatedAt,
	}
}
