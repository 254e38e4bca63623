package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

// MembershipService exposes member profiles and application approval.
type MembershipService interface {
	GetProfile(ctx context.Context, memberID uint) (dto.MemberProfileResponse, error)
	ListMembers(ctx context.Context, page, pageSize int, role, search string) (dto.MemberListResponse, error)
	ApproveApplication(ctx context.Context, approver Reviewer, payload dto.ApplicationApproveRequest) (dto.MembershipResponse, error)
}

type membershipService struct {
	members     repository.MemberRepository
	memberships repository.MembershipRepository
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewMembershipService constructs the membership service.
func NewMembershipService(
	members repository.MemberRepository,
	memberships repository.MembershipRepository,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) MembershipService {
	return &membershipService{
		members:     members,
		memberships: memberships,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "membership_service").Logger(),
	}
}

func (s *membershipService) GetProfile(ctx context.Context, memberID uint) (dto.MemberProfileResponse, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MemberProfileResponse{}, ErrMemberNotFound
		}
		return dto.MemberProfileResponse{}, err
	}

	profile := toMemberProfile(member)

	membership, err := s.memberships.GetActiveByMember(ctx, memberID)
	if err == nil {
		response := toMembershipResponse(membership)
		profile.Membership = &response
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.MemberProfileResponse{}, err
	}

	return profile, nil
}

func (s *membershipService) ListMembers(ctx context.Context, page, pageSize int, role, search string) (dto.MemberListResponse, error) {
	page = maxInt(page, 1)
	pageSize = clampPageSize(pageSize)

	members, total, err := s.members.List(ctx, repository.MemberFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     role,
		Search:   search,
	})
	if err != nil {
		return dto.MemberListResponse{}, err
	}

	items := make([]dto.MemberProfileResponse, 0, len(members))
	for _, member := range members {
		items = append(items, toMemberProfile(member))
	}

	return dto.MemberListResponse{
		Items:      items,
		Pagination: buildPagination(page, pageSize, total),
	}, nil
}

// ApproveApplication creates the active billing record for the member's term.
// A member whose fee is already waived starts with a zero balance.
func (s *membershipService) ApproveApplication(ctx context.Context, approver Reviewer, payload dto.ApplicationApproveRequest) (dto.MembershipResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MembershipResponse{}, err
	}

	member, err := s.members.GetByID(ctx, payload.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MembershipResponse{}, ErrMemberNotFound
		}
		return dto.MembershipResponse{}, err
	}

	membership := models.Membership{
		MemberID:  member.ID,
		Tier:      payload.Tier,
		Status:    models.MembershipStatusActive,
		AmountDue: payload.AmountDue,
		TermStart: time.Now(),
	}

	if member.MembershipFeeWaived {
		membership.BalanceDue = 0
		membership.WaivedThroughVolunteering = true
		membership.WaiverVolunteerHours = member.TotalVolunteerHours
	} else {
		membership.BalanceDue = payload.AmountDue
	}

	if err := s.memberships.Create(ctx, &membership); err != nil {
		return dto.MembershipResponse{}, err
	}

	if s.activity != nil {
		entityID := membership.ID
		entry := ActivityEntry{
			ActorID:    approver.ID,
			ActorRole:  approver.Role,
			Action:     "application_approved",
			EntityType: "membership",
			EntityID:   &entityID,
			Metadata: map[string]interface{}{
				"member_id": member.ID,
				"tier":      membership.Tier,
				"waived":    membership.WaivedThroughVolunteering,
			},
		}
		if err := s.activity.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record approval activity")
		}
	}

	s.logger.Info().Uint("member_id", member.ID).Str("tier", membership.Tier).Msg("membership application approved")

	return toMembershipResponse(membership), nil
}

func toMemberProfile(member models.Member) dto.MemberProfileResponse {
	return dto.MemberProfileResponse{
		ID:                  member.ID,
		Name:                member.Name,
		Email:               member.Email,
		Role:                member.Role,
		AvatarURL:           member.AvatarURL,
		TotalVolunteerHours: member.TotalVolunteerHours,
		MembershipFeeWaived: member.MembershipFeeWaived,
		WaiverGrantedAt:     member.WaiverGrantedAt,
	}
}

func toMembershipResponse(membership models.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:                        membership.ID,
		MemberID:                  membership.MemberID,
		Tier:                      membership.Tier,
		Status:                    membership.Status,
		AmountDue:                 membership.AmountDue,
		BalanceDue:                membership.BalanceDue,
		WaivedThroughVolunteering: membership.WaivedThroughVolunteering,
		WaiverVolunteerHours:      membership.WaiverVolunteerHours,
		TermStart:                 membership.TermStart,
		TermEnd:                   membership.TermEnd,
	}
}
