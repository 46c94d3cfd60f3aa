package services

import (
	"context"
	"fmt"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/dto"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	apperrors "makerspace/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserServiceInterface interface {
	GetUser(ctx context.Context, id uint64) (*dto.UserDTO, error)
	SetPrivilege(ctx context.Context, id uint64, privilege entities.Privilege) (*dto.UserDTO, error)
	SetArchived(ctx context.Context, id uint64, archived bool) (*dto.UserDTO, error)
}

type UserService struct {
	txManager  repositories.TxManagerInterface
	userRepo   repositories.UserRepositoryInterface
	privileges AuthPrivilegeServiceInterface
	audit      AuditLogServiceInterface
	logger     *zap.Logger
}

func NewUserService(
	txManager repositories.TxManagerInterface,
	userRepo repositories.UserRepositoryInterface,
	privileges AuthPrivilegeServiceInterface,
	audit AuditLogServiceInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{txManager: txManager, userRepo: userRepo, privileges: privileges, audit: audit, logger: logger}
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	if err := authz.IsSelfOrAllowed(ctx, id, authz.UsersViewOthers); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := dto.NewUserDTO(user)
	return &result, nil
}

func (s *UserService) SetPrivilege(ctx context.Context, id uint64, privilege entities.Privilege) (*dto.UserDTO, error) {
	if err := authz.Require(ctx, authz.UsersSetPrivilege); err != nil {
		return nil, err
	}
	if !privilege.Valid() {
		return nil, apperrors.NewInvalidInputError("unknown privilege %q", privilege)
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	if actor.ID == id {
		return nil, fmt.Errorf("users cannot change their own privilege: %w", apperrors.ErrForbidden)
	}

	var user *entities.User
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.userRepo.WithTx(tx)
		user, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.UpdatePrivilege(ctx, user.ID, privilege); err != nil {
			return err
		}
		user.Privilege = privilege
		template := fmt.Sprintf("{user} changed {user}'s privilege to %s.", privilege)
		log, err = s.audit.WithTx(tx).CreateLog(ctx, template, auditlog.CategoryAdmin, userRef(actor), userRef(user))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	// A stale cache entry only delays the change until its TTL expires.
	_ = s.privileges.InvalidatePrivilegeCache(ctx, user.ID)

	result := dto.NewUserDTO(user)
	return &result, nil
}

func (s *UserService) SetArchived(ctx context.Context, id uint64, archived bool) (*dto.UserDTO, error) {
	if err := authz.Require(ctx, authz.UsersArchive); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}

	template := "{user} archived {user}."
	if !archived {
		template = "{user} restored {user}."
	}

	var user *entities.User
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.userRepo.WithTx(tx)
		user, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.SetArchived(ctx, user.ID, archived); err != nil {
			return err
		}
		user.Archived = archived
		log, err = s.audit.WithTx(tx).CreateLog(ctx, template, auditlog.CategoryAdmin, userRef(actor), userRef(user))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	_ = s.privileges.InvalidatePrivilegeCache(ctx, user.ID)

	result := dto.NewUserDTO(user)
	return &result, nil
}
