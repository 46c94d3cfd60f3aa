package services

import (
	"context"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AccessCheckServiceInterface interface {
	List(ctx context.Context, approved *bool) ([]entities.AccessCheck, error)
	SetApproval(ctx context.Context, id uint64, approved bool) (*entities.AccessCheck, error)
	IsApproved(ctx context.Context, userID, equipmentID uint64) (bool, error)
}

type AccessCheckService struct {
	txManager       repositories.TxManagerInterface
	accessCheckRepo repositories.AccessCheckRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	audit           AuditLogServiceInterface
	logger          *zap.Logger
}

func NewAccessCheckService(
	txManager repositories.TxManagerInterface,
	accessCheckRepo repositories.AccessCheckRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	audit AuditLogServiceInterface,
	logger *zap.Logger,
) AccessCheckServiceInterface {
	return &AccessCheckService{
		txManager:       txManager,
		accessCheckRepo: accessCheckRepo,
		userRepo:        userRepo,
		equipmentRepo:   equipmentRepo,
		audit:           audit,
		logger:          logger,
	}
}

func (s *AccessCheckService) List(ctx context.Context, approved *bool) ([]entities.AccessCheck, error) {
	if err := authz.Require(ctx, authz.AccessChecksView); err != nil {
		return nil, err
	}
	return s.accessCheckRepo.List(ctx, approved)
}

func (s *AccessCheckService) SetApproval(ctx context.Context, id uint64, approved bool) (*entities.AccessCheck, error) {
	if err := authz.Require(ctx, authz.AccessChecksApprove); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}

	template := "{user} approved {user}'s access check for {equipment}."
	if !approved {
		template = "{user} revoked {user}'s access check for {equipment}."
	}

	var check *entities.AccessCheck
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		check, err = s.accessCheckRepo.WithTx(tx).SetApproval(ctx, id, approved)
		if err != nil {
			return err
		}
		user, err := s.userRepo.WithTx(tx).FindByID(ctx, check.UserID)
		if err != nil {
			return err
		}
		equipment, err := s.equipmentRepo.WithTx(tx).FindByID(ctx, check.EquipmentID)
		if err != nil {
			return err
		}
		log, err = s.audit.WithTx(tx).CreateLog(ctx, template, auditlog.CategoryAdmin, userRef(actor), userRef(user), equipmentRef(equipment))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	return check, nil
}

func (s *AccessCheckService) IsApproved(ctx context.Context, userID, equipmentID uint64) (bool, error) {
	if err := authz.IsSelfOrAllowed(ctx, userID, authz.AccessChecksView); err != nil {
		return false, err
	}
	return s.accessCheckRepo.IsApproved(ctx, userID, equipmentID)
}
