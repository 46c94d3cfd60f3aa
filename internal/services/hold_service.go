package services

import (
	"context"
	"fmt"
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/dto"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	apperrors "makerspace/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type HoldServiceInterface interface {
	PlaceHold(ctx context.Context, userID uint64, reason string) (*dto.HoldDTO, error)
	RemoveHold(ctx context.Context, holdID uint64) (*dto.HoldDTO, error)
	ListHolds(ctx context.Context, userID uint64) ([]dto.HoldDTO, error)
}

type HoldService struct {
	txManager repositories.TxManagerInterface
	holdRepo  repositories.HoldRepositoryInterface
	userRepo  repositories.UserRepositoryInterface
	audit     AuditLogServiceInterface
	logger    *zap.Logger
	now       func() time.Time
}

func NewHoldService(
	txManager repositories.TxManagerInterface,
	holdRepo repositories.HoldRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	audit AuditLogServiceInterface,
	logger *zap.Logger,
) HoldServiceInterface {
	return &HoldService{txManager: txManager, holdRepo: holdRepo, userRepo: userRepo, audit: audit, logger: logger, now: time.Now}
}

func (s *HoldService) PlaceHold(ctx context.Context, userID uint64, reason string) (*dto.HoldDTO, error) {
	if err := authz.Require(ctx, authz.HoldsManage); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	hold := &entities.Hold{UserID: user.ID, PlacedBy: actor.ID, Reason: reason}
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.holdRepo.WithTx(tx).Create(ctx, hold); err != nil {
			return fmt.Errorf("create hold: %w", err)
		}
		log, err = s.audit.WithTx(tx).CreateLog(ctx, "{user} placed a hold on {user}.", auditlog.CategoryAdmin, userRef(actor), userRef(user))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	s.logger.Info("hold placed", zap.Uint64("holdID", hold.ID), zap.Uint64("userID", user.ID))

	result := dto.NewHoldDTO(hold)
	return &result, nil
}

func (s *HoldService) RemoveHold(ctx context.Context, holdID uint64) (*dto.HoldDTO, error) {
	if err := authz.Require(ctx, authz.HoldsManage); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}

	var hold *entities.Hold
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.holdRepo.WithTx(tx)
		hold, err = repo.FindByID(ctx, holdID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		removed, err := repo.Remove(ctx, hold.ID, actor.ID, now)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("hold #%d is already removed: %w", hold.ID, apperrors.ErrInvalidState)
		}
		hold.RemovedBy = &actor.ID
		hold.RemoveDate = &now

		user, err := s.userRepo.WithTx(tx).FindByID(ctx, hold.UserID)
		if err != nil {
			return err
		}
		log, err = s.audit.WithTx(tx).CreateLog(ctx, "{user} removed a hold on {user}.", auditlog.CategoryAdmin, userRef(actor), userRef(user))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)

	result := dto.NewHoldDTO(hold)
	return &result, nil
}

func (s *HoldService) ListHolds(ctx context.Context, userID uint64) ([]dto.HoldDTO, error) {
	if err := authz.IsSelfOrAllowed(ctx, userID, authz.UsersViewOthers); err != nil {
		return nil, err
	}
	holds, err := s.holdRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.HoldDTO, 0, len(holds))
	for i := range holds {
		result = append(result, dto.NewHoldDTO(&holds[i]))
	}
	return result, nil
}
