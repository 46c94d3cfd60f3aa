package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	apperrors "makerspace/pkg/errors"
	"makerspace/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EligibilityServiceInterface interface {
	// HasAccess answers whether the holder of the university ID may operate the
	// equipment now. Unknown IDs are ineligible, not an error.
	HasAccess(ctx context.Context, universityID string, equipmentID uint64) (bool, error)
	// Resolve is HasAccess that also returns the card holder it decided for,
	// or nil when the card is unknown.
	Resolve(ctx context.Context, universityID string, equipmentID uint64) (*entities.User, bool, error)
	HasAccessForUser(ctx context.Context, userID, equipmentID uint64) (bool, error)
	// WithTx evaluates inside an existing transaction instead of opening a snapshot.
	WithTx(tx pgx.Tx) EligibilityServiceInterface
}

type EligibilityService struct {
	txManager     repositories.TxManagerInterface
	userRepo      repositories.UserRepositoryInterface
	holdRepo      repositories.HoldRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	subRepo       repositories.SubmissionRepositoryInterface
	logger        *zap.Logger
	now           func() time.Time
	tx            pgx.Tx
	bound         bool
}

func NewEligibilityService(
	txManager repositories.TxManagerInterface,
	userRepo repositories.UserRepositoryInterface,
	holdRepo repositories.HoldRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	subRepo repositories.SubmissionRepositoryInterface,
	logger *zap.Logger,
) EligibilityServiceInterface {
	return &EligibilityService{
		txManager:     txManager,
		userRepo:      userRepo,
		holdRepo:      holdRepo,
		equipmentRepo: equipmentRepo,
		subRepo:       subRepo,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *EligibilityService) WithTx(tx pgx.Tx) EligibilityServiceInterface {
	withTx := *s
	withTx.tx = tx
	withTx.bound = true
	return &withTx
}

// Evaluate is the access decision over one consistent view of the data:
// an active hold vetoes everything, and every required module needs an
// unexpired passing submission.
func Evaluate(hasActiveHold bool, requiredModules []uint64, passed []entities.ModuleSubmission, now time.Time) bool {
	if hasActiveHold {
		return false
	}
	valid := make(map[uint64]struct{}, len(passed))
	for i := range passed {
		if passed[i].Valid(now) {
			valid[passed[i].ModuleID] = struct{}{}
		}
	}
	for _, moduleID := range requiredModules {
		if _, ok := valid[moduleID]; !ok {
			return false
		}
	}
	return true
}

// snapshot runs fn with repositories that all read the same database state.
func (s *EligibilityService) snapshot(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if s.bound {
		return fn(s.tx)
	}
	return s.txManager.RunInSnapshot(ctx, fn)
}

func (s *EligibilityService) HasAccess(ctx context.Context, universityID string, equipmentID uint64) (bool, error) {
	_, granted, err := s.Resolve(ctx, universityID, equipmentID)
	return granted, err
}

func (s *EligibilityService) Resolve(ctx context.Context, universityID string, equipmentID uint64) (*entities.User, bool, error) {
	var holder *entities.User
	var granted bool
	err := s.snapshot(ctx, func(tx pgx.Tx) error {
		user, err := s.userRepo.WithTx(tx).FindByUniversityID(ctx, universityID)
		if errors.Is(err, apperrors.ErrNotFound) {
			holder, granted = nil, false
			return s.checkEquipment(ctx, tx, equipmentID)
		}
		if err != nil {
			return err
		}
		holder = user
		granted, err = s.evaluate(ctx, tx, user.ID, equipmentID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	metrics.EligibilityDecisions.WithLabelValues(metrics.Bool(granted)).Inc()
	return holder, granted, nil
}

func (s *EligibilityService) HasAccessForUser(ctx context.Context, userID, equipmentID uint64) (bool, error) {
	var granted bool
	err := s.snapshot(ctx, func(tx pgx.Tx) error {
		if _, err := s.userRepo.WithTx(tx).FindByID(ctx, userID); err != nil {
			return err
		}
		var err error
		granted, err = s.evaluate(ctx, tx, userID, equipmentID)
		return err
	})
	if err != nil {
		return false, err
	}
	metrics.EligibilityDecisions.WithLabelValues(metrics.Bool(granted)).Inc()
	return granted, nil
}

func (s *EligibilityService) checkEquipment(ctx context.Context, tx pgx.Tx, equipmentID uint64) error {
	_, err := s.equipmentRepo.WithTx(tx).FindByID(ctx, equipmentID)
	return err
}

func (s *EligibilityService) evaluate(ctx context.Context, tx pgx.Tx, userID, equipmentID uint64) (bool, error) {
	if err := s.checkEquipment(ctx, tx, equipmentID); err != nil {
		return false, err
	}

	held, err := s.holdRepo.WithTx(tx).HasActiveHolds(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("holds of user #%d: %w", userID, err)
	}
	if held {
		s.logger.Debug("access vetoed by hold", zap.Uint64("userID", userID), zap.Uint64("equipmentID", equipmentID))
		return false, nil
	}

	required, err := s.equipmentRepo.WithTx(tx).RequiredModuleIDs(ctx, equipmentID)
	if err != nil {
		return false, fmt.Errorf("modules of equipment #%d: %w", equipmentID, err)
	}
	if len(required) == 0 {
		return true, nil
	}

	passed, err := s.subRepo.WithTx(tx).FindPassedByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("submissions of user #%d: %w", userID, err)
	}
	return Evaluate(false, required, passed, s.now()), nil
}
