package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

type announcementRepoStub struct {
	items []models.Announcement
}

func (a *announcementRepoStub) Create(_ context.Context, item *models.Announcement) error {
	item.ID = uint(len(a.items) + 1)
	a.items = append(a.items, *item)
	return nil
}

func (a *announcementRepoStub) ListActive(_ context.Context, _ repository.AnnouncementFilter) ([]models.Announcement, int64, error) {
	return a.items, int64(len(a.items)), nil
}

func TestAnnouncementServiceCachingAndSanitize(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	repo := &announcementRepoStub{items: []models.Announcement{{
		ID:       1,
		Title:    "Town Hall",
		Body:     "<script>alert('x')</script><p>Agenda attached</p>",
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   nil,
		IsPinned: false,
	}}}

	svc := NewAnnouncementService(repo, redisClient, time.Minute, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	resp, err := svc.ListActive(context.Background(), 1, 10)
	require.NoError(t, err)
	require.False(t, resp.CacheHit)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "Town Hall", resp.Items[0].Title)
	require.Equal(t, "<p>Agenda attached</p>", resp.Items[0].Body)

	repo.items = nil
	cached, err := svc.ListActive(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Len(t, cached.Items, 1)
}

func TestAnnouncementServicePinnedOrdering(t *testing.T) {
	repo := &announcementRepoStub{items: []models.Announcement{
		{ID: 1, Title: "Scheduled", Body: "ok", StartsAt: time.Now().Add(-time.Hour)},
		{ID: 2, Title: "Pinned", Body: "ok", StartsAt: time.Now().Add(-48 * time.Hour), IsPinned: true},
	}}

	svc := NewAnnouncementService(repo, nil, time.Minute, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	resp, err := svc.ListActive(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	require.Equal(t, "Pinned", resp.Items[0].Title)
}

func TestAnnouncementServiceCreateInvalidatesCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	repo := &announcementRepoStub{}
	svc := NewAnnouncementService(repo, redisClient, time.Minute, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	_, err = svc.ListActive(context.Background(), 1, 10)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), 9, dto.AnnouncementCreateRequest{
		Title:    "Annual Meeting",
		Body:     "<p>Join us</p>",
		StartsAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, "Annual Meeting", created.Title)

	resp, err := svc.ListActive(context.Background(), 1, 10)
	require.NoError(t, err)
	require.False(t, resp.CacheHit, "create must invalidate cached pages")
	require.Len(t, resp.Items, 1)
}

func TestAnnouncementServiceCreateValidation(t *testing.T) {
	svc := NewAnnouncementService(&announcementRepoStub{}, nil, time.Minute, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	_, err := svc.Create(context.Background(), 9, dto.AnnouncementCreateRequest{Title: "x"})
	require.Error(t, err)
}
