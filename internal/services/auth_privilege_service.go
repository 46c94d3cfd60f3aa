package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"makerspace/internal/entities"
	"makerspace/internal/repositories"

	"go.uber.org/zap"
)

// AuthPrivilegeServiceInterface resolves the current privilege of a token's
// subject. Privileges change at runtime, so tokens do not carry them.
type AuthPrivilegeServiceInterface interface {
	GetPrivilege(ctx context.Context, userID uint64) (entities.Privilege, error)
	InvalidatePrivilegeCache(ctx context.Context, userID uint64) error
}

type AuthPrivilegeService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cacheTTL  time.Duration
}

func NewAuthPrivilegeService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) AuthPrivilegeServiceInterface {
	return &AuthPrivilegeService{userRepo: userRepo, cacheRepo: cacheRepo, logger: logger, cacheTTL: cacheTTL}
}

func privilegeCacheKey(userID uint64) string {
	return fmt.Sprintf("auth:privilege:user:%d", userID)
}

func (s *AuthPrivilegeService) GetPrivilege(ctx context.Context, userID uint64) (entities.Privilege, error) {
	key := privilegeCacheKey(userID)

	cached, err := s.cacheRepo.Get(ctx, key)
	if err == nil {
		if p := entities.Privilege(cached); p.Valid() {
			return p, nil
		}
		s.logger.Warn("discarding malformed cached privilege", zap.String("key", key), zap.String("value", cached))
	} else if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("privilege cache unavailable", zap.Uint64("userID", userID), zap.Error(err))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	// Archived accounts keep their row but lose every capability.
	if user.Archived {
		return "", nil
	}

	if err := s.cacheRepo.Set(ctx, key, string(user.Privilege), s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache privilege", zap.Uint64("userID", userID), zap.Error(err))
	}
	return user.Privilege, nil
}

func (s *AuthPrivilegeService) InvalidatePrivilegeCache(ctx context.Context, userID uint64) error {
	if err := s.cacheRepo.Del(ctx, privilegeCacheKey(userID)); err != nil {
		s.logger.Error("failed to invalidate privilege cache", zap.Uint64("userID", userID), zap.Error(err))
		return err
	}
	return nil
}
