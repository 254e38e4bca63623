package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/dto"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/repository"
)

// UserConfigService resolves which portal features a role sees. Results are
// cached per role because flags change rarely and every client loads them on
// startup.
type UserConfigService interface {
	GetForRole(ctx context.Context, role string) (dto.UserConfigResponse, error)
	SetFlag(ctx context.Context, flag *models.FeatureFlag) error
}

type userConfigService struct {
	repo   repository.FeatureFlagRepository
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewUserConfigService(repo repository.FeatureFlagRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) UserConfigService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &userConfigService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "user_config_service").Logger(),
	}
}

func (s *userConfigService) GetForRole(ctx context.Context, role string) (dto.UserConfigResponse, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = models.RoleMember
	}

	cacheKey := ""
	if s.cache != nil {
		cacheKey = fmt.Sprintf("user_config:v1:%s", role)
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.UserConfigResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				return response, nil
			}
		}
	}

	flags, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return dto.UserConfigResponse{}, err
	}

	features := make(map[string]map[string]interface{})
	for _, flag := range flags {
		if !roleMatches(flag.Roles, role) {
			continue
		}
		payload := map[string]interface{}{}
		for key, value := range flag.Payload {
			payload[key] = value
		}
		features[flag.Key] = payload
	}

	response := dto.UserConfigResponse{Role: role, Features: features}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Str("role", role).Msg("failed to cache user config")
			}
		}
	}

	return response, nil
}

func (s *userConfigService) SetFlag(ctx context.Context, flag *models.FeatureFlag) error {
	flag.Key = strings.ToLower(strings.TrimSpace(flag.Key))
	if err := s.repo.Upsert(ctx, flag); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.FlushDB(ctx).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate user config cache")
		}
	}
	s.logger.Info().Str("key", flag.Key).Bool("enabled", flag.Enabled).Msg("feature flag updated")
	return nil
}

// roleMatches reports whether a flag's role list includes the role. An empty
// list applies to every role.
func roleMatches(roles, role string) bool {
	roles = strings.TrimSpace(roles)
	if roles == "" {
		return true
	}
	for _, candidate := range strings.Split(roles, ",") {
		if strings.EqualFold(strings.TrimSpace(candidate), role) {
			return true
		}
	}
	return false
}
