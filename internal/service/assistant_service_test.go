package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/pkg/ai"
)

type assistantStub struct {
	lastQuestion ai.Question
	answer       ai.Answer
	err          error
}

func (a *assistantStub) Ask(_ context.Context, question ai.Question) (ai.Answer, error) {
	a.lastQuestion = question
	return a.answer, a.err
}

func TestAssistantServiceAskBuildsWaiverContext(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1, Name: "Ana Silva", Role: models.RoleVolunteer})
	hourLogs := newHourLogRepoStub()
	hourLogs.add(models.HourLog{MemberID: 1, Hours: 12, Status: models.HourLogStatusApproved})

	assistant := &assistantStub{answer: ai.Answer{Text: "Log hours from your dashboard.", Suggestions: []string{"How do I log hours?"}}}
	svc := NewAssistantService(assistant, members, hourLogs, validator.New(validator.WithRequiredStructEnabled()), "gpt-4o-mini", testLogger())

	response, err := svc.Ask(context.Background(), 1, dto.AssistantAskRequest{Question: "How close am I to the fee waiver?"})
	require.NoError(t, err)
	require.Equal(t, "Log hours from your dashboard.", response.Answer)
	require.Equal(t, "gpt-4o-mini", response.Model)
	require.Equal(t, "Ana Silva", assistant.lastQuestion.MemberName)
	require.Equal(t, models.RoleVolunteer, assistant.lastQuestion.MemberRole)
	require.Contains(t, assistant.lastQuestion.WaiverSummary, "12.0 approved volunteer hours")
	require.Contains(t, assistant.lastQuestion.WaiverSummary, "18.0 more hours")
}

func TestAssistantServiceAskWaivedMemberContext(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1, Name: "Rei Tanaka", Role: models.RoleMember, MembershipFeeWaived: true})
	hourLogs := newHourLogRepoStub()
	hourLogs.add(models.HourLog{MemberID: 1, Hours: 34, Status: models.HourLogStatusApproved})

	assistant := &assistantStub{answer: ai.Answer{Text: "Your fee is already waived."}}
	svc := NewAssistantService(assistant, members, hourLogs, validator.New(validator.WithRequiredStructEnabled()), "gpt-4o-mini", testLogger())

	_, err := svc.Ask(context.Background(), 1, dto.AssistantAskRequest{Question: "Do I owe a membership fee this year?"})
	require.NoError(t, err)
	require.Contains(t, assistant.lastQuestion.WaiverSummary, "membership fee is waived")
}

func TestAssistantServiceAskErrors(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1, Name: "Ana Silva"})
	hourLogs := newHourLogRepoStub()
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewAssistantService(nil, members, hourLogs, validate, "gpt-4o-mini", testLogger())
	_, err := svc.Ask(context.Background(), 1, dto.AssistantAskRequest{Question: "hello there"})
	require.ErrorIs(t, err, ErrAssistantUnavailable)

	assistant := &assistantStub{err: errors.New("upstream timeout")}
	svc = NewAssistantService(assistant, members, hourLogs, validate, "gpt-4o-mini", testLogger())

	_, err = svc.Ask(context.Background(), 1, dto.AssistantAskRequest{Question: "hi"})
	require.Error(t, err, "questions below the minimum length are rejected")

	_, err = svc.Ask(context.Background(), 99, dto.AssistantAskRequest{Question: "hello there"})
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = svc.Ask(context.Background(), 1, dto.AssistantAskRequest{Question: "hello there"})
	require.EqualError(t, err, "upstream timeout")
}
