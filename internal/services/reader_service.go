package services

import (
	"context"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/repositories"
	"makerspace/pkg/metrics"

	"go.uber.org/zap"
)

// SwipeResult is what a kiosk shows after a card swipe.
type SwipeResult struct {
	EquipmentID uint64 `json:"equipment_id"`
	Granted     bool   `json:"granted"`
	KnownCard   bool   `json:"known_card"`
	UserID      uint64 `json:"user_id,omitempty"`
	Name        string `json:"name,omitempty"`
}

type ReaderServiceInterface interface {
	// Swipe evaluates a completed card swipe at the equipment and records it.
	Swipe(ctx context.Context, equipmentID uint64, universityID string) (*SwipeResult, error)
	// CheckAccess is the same decision without recording a swipe.
	CheckAccess(ctx context.Context, equipmentID uint64, universityID string) (bool, error)
}

type ReaderService struct {
	eligibility   EligibilityServiceInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	audit         AuditLogServiceInterface
	logger        *zap.Logger
}

func NewReaderService(
	eligibility EligibilityServiceInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	audit AuditLogServiceInterface,
	logger *zap.Logger,
) ReaderServiceInterface {
	return &ReaderService{eligibility: eligibility, equipmentRepo: equipmentRepo, audit: audit, logger: logger}
}

func (s *ReaderService) CheckAccess(ctx context.Context, equipmentID uint64, universityID string) (bool, error) {
	if err := authz.Require(ctx, authz.EquipmentCheckAccess); err != nil {
		return false, err
	}
	return s.eligibility.HasAccess(ctx, universityID, equipmentID)
}

func (s *ReaderService) Swipe(ctx context.Context, equipmentID uint64, universityID string) (*SwipeResult, error) {
	if err := authz.Require(ctx, authz.ReadersOperate); err != nil {
		return nil, err
	}
	equipment, err := s.equipmentRepo.FindByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	user, granted, err := s.eligibility.Resolve(ctx, universityID, equipment.ID)
	if err != nil {
		return nil, err
	}
	result := &SwipeResult{EquipmentID: equipment.ID, Granted: granted}

	if user == nil {
		metrics.CardSwipes.WithLabelValues(metrics.Unknown).Inc()
		_, err = s.audit.CreateLog(ctx, "{error} Unrecognized card swiped at {equipment}.", auditlog.CategoryStatus,
			auditlog.Entity{Label: "unknown card"}, equipmentRef(equipment))
		return result, err
	}

	result.KnownCard = true
	result.UserID = user.ID
	result.Name = user.FullName()
	metrics.CardSwipes.WithLabelValues(metrics.Bool(granted)).Inc()

	template := "{user} swiped into {equipment}."
	if !granted {
		template = "{user} was denied access to {equipment}."
	}
	if _, err := s.audit.CreateLog(ctx, template, auditlog.CategoryStatus, userRef(user), equipmentRef(equipment)); err != nil {
		return nil, err
	}
	s.logger.Info("card swiped",
		zap.Uint64("userID", user.ID),
		zap.Uint64("equipmentID", equipment.ID),
		zap.Bool("granted", granted),
	)
	return result, nil
}
