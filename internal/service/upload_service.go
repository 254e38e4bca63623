package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedFileType = errors.New("only image uploads are accepted")
	ErrUploaderUnavailable = errors.New("file storage is not configured")
)

// FileUploader stores a file and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// UploadService accepts member avatars and event images. File contents are
// sniffed rather than trusting the client's extension.
type UploadService interface {
	UploadAvatar(ctx context.Context, memberID uint, filename string, data []byte) (dto.UploadResponse, error)
	UploadEventImage(ctx context.Context, eventID uint, filename string, data []byte) (dto.UploadResponse, error)
}

type uploadService struct {
	uploader FileUploader
	members  repository.MemberRepository
	events   repository.EventRepository
	maxBytes int64
	logger   zerolog.Logger
}

func NewUploadService(
	uploader FileUploader,
	members repository.MemberRepository,
	events repository.EventRepository,
	maxSizeMB int,
	logger zerolog.Logger,
) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &uploadService{
		uploader: uploader,
		members:  members,
		events:   events,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
		logger:   logger.With().Str("component", "upload_service").Logger(),
	}
}

func (s *uploadService) UploadAvatar(ctx context.Context, memberID uint, filename string, data []byte) (dto.UploadResponse, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UploadResponse{}, ErrMemberNotFound
		}
		return dto.UploadResponse{}, err
	}

	response, err := s.store(ctx, fmt.Sprintf("avatar-%d-%s", memberID, filename), data)
	if err != nil {
		return dto.UploadResponse{}, err
	}

	if err := s.members.UpdateAvatar(ctx, memberID, response.URL); err != nil {
		return dto.UploadResponse{}, err
	}

	s.logger.Info().Uint("member_id", memberID).Str("url", response.URL).Msg("avatar updated")
	return response, nil
}

func (s *uploadService) UploadEventImage(ctx context.Context, eventID uint, filename string, data []byte) (dto.UploadResponse, error) {
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UploadResponse{}, ErrEventNotFound
		}
		return dto.UploadResponse{}, err
	}

	response, err := s.store(ctx, fmt.Sprintf("event-%d-%s", eventID, filename), data)
	if err != nil {
		return dto.UploadResponse{}, err
	}

	if err := s.events.UpdateImage(ctx, eventID, response.URL); err != nil {
		return dto.UploadResponse{}, err
	}

	s.logger.Info().Uint("event_id", eventID).Str("url", response.URL).Msg("event image updated")
	return response, nil
}

func (s *uploadService) store(ctx context.Context, name string, data []byte) (dto.UploadResponse, error) {
	if s.uploader == nil {
		return dto.UploadResponse{}, ErrUploaderUnavailable
	}
	if int64(len(data)) > s.maxBytes {
		return dto.UploadResponse{}, ErrFileTooLarge
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedImageTypes[detected.String()]; !ok {
		return dto.UploadResponse{}, ErrUnsupportedFileType
	}

	url, err := s.uploader.Upload(ctx, name, bytes.NewReader(data))
	if err != nil {
		return dto.UploadResponse{}, err
	}

	return dto.UploadResponse{
		URL:         url,
		ContentType: detected.String(),
		Size:        int64(len(data)),
	}, nil
}
