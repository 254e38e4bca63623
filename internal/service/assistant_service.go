package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/repository"
	"github.com/cascadia-commons/portal-api/pkg/ai"
)

var ErrAssistantUnavailable = errors.New("assistant is not configured")

// AssistantService answers member questions about the portal, grounding the
// model with the member's role and volunteer waiver progress.
type AssistantService interface {
	Ask(ctx context.Context, memberID uint, payload dto.AssistantAskRequest) (dto.AssistantAnswerResponse, error)
}

type assistantService struct {
	assistant ai.Assistant
	members   repository.MemberRepository
	hourLogs  repository.HourLogRepository
	validator *validator.Validate
	model     string
	logger    zerolog.Logger
}

func NewAssistantService(
	assistant ai.Assistant,
	members repository.MemberRepository,
	hourLogs repository.HourLogRepository,
	validate *validator.Validate,
	model string,
	logger zerolog.Logger,
) AssistantService {
	return &assistantService{
		assistant: assistant,
		members:   members,
		hourLogs:  hourLogs,
		validator: validate,
		model:     model,
		logger:    logger.With().Str("component", "assistant_service").Logger(),
	}
}

func (s *assistantService) Ask(ctx context.Context, memberID uint, payload dto.AssistantAskRequest) (dto.AssistantAnswerResponse, error) {
	if s.assistant == nil {
		return dto.AssistantAnswerResponse{}, ErrAssistantUnavailable
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssistantAnswerResponse{}, err
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssistantAnswerResponse{}, ErrMemberNotFound
		}
		return dto.AssistantAnswerResponse{}, err
	}

	question := ai.Question{
		Text:          payload.Question,
		Topic:         payload.Topic,
		MemberName:    member.Name,
		MemberRole:    member.Role,
		WaiverSummary: s.waiverSummary(ctx, member.ID, member.MembershipFeeWaived),
	}

	answer, err := s.assistant.Ask(ctx, question)
	if err != nil {
		s.logger.Error().Err(err).Uint("member_id", memberID).Msg("assistant request failed")
		return dto.AssistantAnswerResponse{}, err
	}

	return dto.AssistantAnswerResponse{
		Answer:      answer.Text,
		Suggestions: answer.Suggestions,
		Model:       s.model,
	}, nil
}

// waiverSummary is best effort. A failed aggregate query degrades the prompt
// context instead of failing the question.
func (s *assistantService) waiverSummary(ctx context.Context, memberID uint, waived bool) string {
	total, err := s.hourLogs.SumApproved(ctx, memberID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("member_id", memberID).Msg("failed to load approved hours for prompt")
		return ""
	}
	if waived {
		return fmt.Sprintf("The member's membership fee is waived. They have %.1f approved volunteer hours.", total)
	}
	remaining := WaiverThresholdHours - total
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf(
		"The member has %.1f approved volunteer hours. %.1f more hours are needed for the %.0f hour fee waiver.",
		total, remaining, WaiverThresholdHours,
	)
}
