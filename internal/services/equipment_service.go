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

type EquipmentServiceInterface interface {
	Get(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	List(ctx context.Context, archived bool) ([]dto.EquipmentDTO, error)
	SetArchived(ctx context.Context, id uint64, archived bool) (*dto.EquipmentDTO, error)
	SetModules(ctx context.Context, id uint64, moduleIDs []uint64) (*dto.EquipmentDTO, error)
}

type EquipmentService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	moduleRepo    repositories.TrainingModuleRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	audit         AuditLogServiceInterface
	logger        *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	moduleRepo repositories.TrainingModuleRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	audit AuditLogServiceInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		moduleRepo:    moduleRepo,
		userRepo:      userRepo,
		audit:         audit,
		logger:        logger,
	}
}

func (s *EquipmentService) toDTO(ctx context.Context, e *entities.Equipment) (*dto.EquipmentDTO, error) {
	moduleIDs, err := s.equipmentRepo.RequiredModuleIDs(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	result := dto.NewEquipmentDTO(e, moduleIDs)
	return &result, nil
}

func (s *EquipmentService) Get(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	equipment, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if equipment.Archived {
		if err := authz.Require(ctx, authz.EquipmentViewArchive); err != nil {
			return nil, err
		}
	}
	return s.toDTO(ctx, equipment)
}

func (s *EquipmentService) List(ctx context.Context, archived bool) ([]dto.EquipmentDTO, error) {
	if archived {
		if err := authz.Require(ctx, authz.EquipmentViewArchive); err != nil {
			return nil, err
		}
	}
	equipment, err := s.equipmentRepo.List(ctx, archived)
	if err != nil {
		return nil, err
	}
	result := make([]dto.EquipmentDTO, 0, len(equipment))
	for i := range equipment {
		item, err := s.toDTO(ctx, &equipment[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, nil
}

func (s *EquipmentService) SetArchived(ctx context.Context, id uint64, archived bool) (*dto.EquipmentDTO, error) {
	if err := authz.Require(ctx, authz.EquipmentArchive); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}

	template := "{user} archived the {equipment} equipment."
	if !archived {
		template = "{user} published the {equipment} equipment."
	}

	var equipment *entities.Equipment
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.equipmentRepo.WithTx(tx)
		equipment, err = repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if equipment.Archived == archived {
			return fmt.Errorf("equipment #%d archived=%t already: %w", equipment.ID, archived, apperrors.ErrInvalidState)
		}
		if err := repo.SetArchived(ctx, equipment.ID, archived); err != nil {
			return err
		}
		equipment.Archived = archived
		log, err = s.audit.WithTx(tx).CreateLog(ctx, template, auditlog.CategoryAdmin, userRef(actor), equipmentRef(equipment))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	return s.toDTO(ctx, equipment)
}

func (s *EquipmentService) SetModules(ctx context.Context, id uint64, moduleIDs []uint64) (*dto.EquipmentDTO, error) {
	if err := authz.Require(ctx, authz.EquipmentSetModules); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}

	unique := make([]uint64, 0, len(moduleIDs))
	seen := make(map[uint64]struct{}, len(moduleIDs))
	for _, moduleID := range moduleIDs {
		if _, ok := seen[moduleID]; !ok {
			seen[moduleID] = struct{}{}
			unique = append(unique, moduleID)
		}
	}
	modules, err := s.moduleRepo.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(modules) != len(unique) {
		return nil, fmt.Errorf("some training modules do not exist: %w", apperrors.ErrNotFound)
	}

	var equipment *entities.Equipment
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.equipmentRepo.WithTx(tx)
		equipment, err = repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.ReplaceModules(ctx, equipment.ID, unique); err != nil {
			return err
		}
		template := fmt.Sprintf("{user} set %d training modules for the {equipment} equipment.", len(unique))
		log, err = s.audit.WithTx(tx).CreateLog(ctx, template, auditlog.CategoryAdmin, userRef(actor), equipmentRef(equipment))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	return s.toDTO(ctx, equipment)
}
