package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cascadia-commons/portal-api/internal/models"
)

type uploaderStub struct {
	names []string
	url   string
	err   error
}

func (u *uploaderStub) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	u.names = append(u.names, name)
	return u.url, u.err
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestUploadServiceUploadAvatar(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1, Name: "Ana Silva"})
	uploader := &uploaderStub{url: "https://cdn.example.org/avatars/ana.png"}
	svc := NewUploadService(uploader, members, newEventRepoStub(), 5, testLogger())

	response, err := svc.UploadAvatar(context.Background(), 1, "ana.png", pngBytes)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.org/avatars/ana.png", response.URL)
	require.Equal(t, "image/png", response.ContentType)
	require.Equal(t, int64(len(pngBytes)), response.Size)
	require.Equal(t, response.URL, members.members[1].AvatarURL)
}

func TestUploadServiceUploadEventImage(t *testing.T) {
	events := newEventRepoStub()
	eventID := events.addEvent(models.Event{Title: "Harvest Fair", StartsAt: time.Now().Add(24 * time.Hour)})
	uploader := &uploaderStub{url: "https://cdn.example.org/events/fair.png"}
	svc := NewUploadService(uploader, newMemberRepoStub(), events, 5, testLogger())

	response, err := svc.UploadEventImage(context.Background(), eventID, "fair.png", pngBytes)
	require.NoError(t, err)
	require.Equal(t, response.URL, events.events[eventID].ImageURL)

	_, err = svc.UploadEventImage(context.Background(), 99, "fair.png", pngBytes)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestUploadServiceRejectsNonImages(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1})
	svc := NewUploadService(&uploaderStub{}, members, newEventRepoStub(), 5, testLogger())

	_, err := svc.UploadAvatar(context.Background(), 1, "notes.txt", []byte("just some text"))
	require.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestUploadServiceEnforcesSizeLimit(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1})
	svc := NewUploadService(&uploaderStub{}, members, newEventRepoStub(), 1, testLogger())

	oversized := append([]byte{}, pngBytes...)
	oversized = append(oversized, make([]byte, 2*1024*1024)...)
	_, err := svc.UploadAvatar(context.Background(), 1, "huge.png", oversized)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadServiceWithoutStorageConfigured(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 1})
	svc := NewUploadService(nil, members, newEventRepoStub(), 5, testLogger())

	_, err := svc.UploadAvatar(context.Background(), 1, "ana.png", pngBytes)
	require.ErrorIs(t, err, ErrUploaderUnavailable)

	_, err = svc.UploadAvatar(context.Background(), 42, "ana.png", pngBytes)
	require.ErrorIs(t, err, ErrMemberNotFound)
}
