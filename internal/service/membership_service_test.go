package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
)

func newMembershipService(members *memberRepoStub, memberships *membershipRepoStub) (MembershipService, *activityStub) {
	activity := &activityStub{}
	svc := NewMembershipService(members, memberships, activity, validator.New(validator.WithRequiredStructEnabled()), testLogger())
	return svc, activity
}

func TestMembershipServiceApproveApplication(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1, Name: "Ana Silva"})
	memberships := newMembershipRepoStub()
	svc, activity := newMembershipService(members, memberships)

	response, err := svc.ApproveApplication(context.Background(), Reviewer{ID: 9, Role: models.RoleAdmin}, dto.ApplicationApproveRequest{
		MemberID:  1,
		Tier:      models.TierIndividual,
		AmountDue: 60,
	})
	require.NoError(t, err)
	require.Equal(t, models.MembershipStatusActive, response.Status)
	require.InDelta(t, 60.0, response.BalanceDue, 1e-9)
	require.False(t, response.WaivedThroughVolunteering)
	require.Len(t, activity.entries, 1)
	require.Equal(t, "application_approved", activity.entries[0].Action)
}

func TestMembershipServiceApproveApplicationForWaivedMember(t *testing.T) {
	granted := time.Now()
	members := newMemberRepoStub(models.Member{
		ID:                  1,
		Name:                "Rei Tanaka",
		MembershipFeeWaived: true,
		TotalVolunteerHours: 34,
		WaiverGrantedAt:     &granted,
	})
	memberships := newMembershipRepoStub()
	svc, _ := newMembershipService(members, memberships)

	response, err := svc.ApproveApplication(context.Background(), Reviewer{ID: 9, Role: models.RoleBoard}, dto.ApplicationApproveRequest{
		MemberID:  1,
		Tier:      models.TierHousehold,
		AmountDue: 90,
	})
	require.NoError(t, err)
	require.Zero(t, response.BalanceDue, "waived members owe nothing")
	require.True(t, response.WaivedThroughVolunteering)
	require.InDelta(t, 34.0, response.WaiverVolunteerHours, 1e-9)
}

func TestMembershipServiceApproveApplicationValidation(t *testing.T) {
	svc, _ := newMembershipService(newMemberRepoStub(), newMembershipRepoStub())

	_, err := svc.ApproveApplication(context.Background(), Reviewer{ID: 9}, dto.ApplicationApproveRequest{
		MemberID: 1,
		Tier:     "platinum",
	})
	require.Error(t, err)

	_, err = svc.ApproveApplication(context.Background(), Reviewer{ID: 9}, dto.ApplicationApproveRequest{
		MemberID: 42,
		Tier:     models.TierIndividual,
	})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMembershipServiceGetProfileIncludesActiveMembership(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1, Name: "Sam Okafor", TotalVolunteerHours: 12})
	memberships := newMembershipRepoStub(models.Membership{
		ID: 3, MemberID: 1, Status: models.MembershipStatusActive, BalanceDue: 45,
	})
	svc, _ := newMembershipService(members, memberships)

	profile, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Sam Okafor", profile.Name)
	require.NotNil(t, profile.Membership)
	require.InDelta(t, 45.0, profile.Membership.BalanceDue, 1e-9)
}

func TestMembershipServiceGetProfileWithoutMembership(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1, Name: "Iris Wolf"})
	svc, _ := newMembershipService(members, newMembershipRepoStub())

	profile, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, profile.Membership)

	_, err = svc.GetProfile(context.Background(), 99)
	require.ErrorIs(t, err, ErrMemberNotFound)
}
