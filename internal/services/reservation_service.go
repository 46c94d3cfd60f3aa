package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/dto"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	apperrors "makerspace/pkg/errors"
	"makerspace/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReservationServiceInterface interface {
	Create(ctx context.Context, req dto.CreateReservationDTO) (*dto.ReservationDTO, error)
	// AddComment appends a comment and returns the newest comment of the reservation.
	AddComment(ctx context.Context, reservationID uint64, text string) (string, error)
	Confirm(ctx context.Context, reservationID uint64) (*dto.ReservationDTO, error)
	Cancel(ctx context.Context, reservationID uint64) (*dto.ReservationDTO, error)
	AssignLabbie(ctx context.Context, reservationID, labbieID uint64) (*dto.ReservationDTO, error)
	Get(ctx context.Context, reservationID uint64) (*dto.ReservationDTO, error)
	List(ctx context.Context, filter repositories.ReservationFilter) ([]dto.ReservationDTO, error)
	Events(ctx context.Context, reservationID uint64) ([]dto.ReservationEventDTO, error)
}

type ReservationService struct {
	txManager       repositories.TxManagerInterface
	reservationRepo repositories.ReservationRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	eligibility     EligibilityServiceInterface
	audit           AuditLogServiceInterface
	logger          *zap.Logger
	now             func() time.Time
}

func NewReservationService(
	txManager repositories.TxManagerInterface,
	reservationRepo repositories.ReservationRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	eligibility EligibilityServiceInterface,
	audit AuditLogServiceInterface,
	logger *zap.Logger,
) ReservationServiceInterface {
	return &ReservationService{
		txManager:       txManager,
		reservationRepo: reservationRepo,
		equipmentRepo:   equipmentRepo,
		userRepo:        userRepo,
		eligibility:     eligibility,
		audit:           audit,
		logger:          logger,
		now:             time.Now,
	}
}

// canSee lets makers read only the reservations they made or are the subject of.
func canSee(ctx context.Context, r *entities.Reservation) error {
	if err := authz.IsSelfOrAllowed(ctx, r.MakerID, authz.UsersViewOthers); err == nil {
		return nil
	}
	return authz.IsSelfOrAllowed(ctx, r.CreatorID, authz.UsersViewOthers)
}

func (s *ReservationService) Create(ctx context.Context, req dto.CreateReservationDTO) (*dto.ReservationDTO, error) {
	if err := authz.Require(ctx, authz.ReservationsCreate); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	makerID := req.MakerID
	if makerID == 0 {
		makerID = actor.ID
	}
	if err := authz.IsSelfOrAllowed(ctx, makerID, authz.ReservationsAssign); err != nil {
		return nil, err
	}
	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if !start.Before(end) {
		return nil, apperrors.NewInvalidInputError("reservation must start before it ends")
	}

	now := s.now().UTC()
	reservation := &entities.Reservation{
		CreatorID:   actor.ID,
		MakerID:     makerID,
		EquipmentID: req.EquipmentID,
		StartTime:   start,
		EndTime:     end,
		Status:      entities.ReservationPending,
	}
	var comment *string
	var log *entities.AuditLog

	// One repeatable read snapshot covers the eligibility reads and the overlap
	// check. Claiming the equipment row makes a concurrent booking of the same
	// machine fail to serialize, and the whole attempt is retried.
	err = s.txManager.RunInRepeatableRead(ctx, func(tx pgx.Tx) error {
		comment = nil
		equipment, err := s.equipmentRepo.WithTx(tx).ClaimForBooking(ctx, req.EquipmentID)
		if err != nil {
			return err
		}
		if equipment.Archived {
			return fmt.Errorf("equipment #%d is archived: %w", equipment.ID, apperrors.ErrInvalidState)
		}
		maker, err := s.userRepo.WithTx(tx).FindByID(ctx, makerID)
		if err != nil {
			return err
		}

		eligible, err := s.eligibility.WithTx(tx).HasAccessForUser(ctx, maker.ID, equipment.ID)
		if err != nil {
			return err
		}
		if !eligible {
			return apperrors.NewHttpError(http.StatusUnprocessableEntity, "maker is not eligible to use this equipment", apperrors.ErrInvalidState, nil)
		}

		overlapping, err := s.reservationRepo.WithTx(tx).CountOverlapping(ctx, equipment.ID, start, end)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return fmt.Errorf("equipment #%d is already reserved in that slot: %w", equipment.ID, apperrors.ErrConflict)
		}

		if err := s.reservationRepo.WithTx(tx).Create(ctx, reservation); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		if req.Comment.Valid && strings.TrimSpace(req.Comment.String) != "" {
			text := req.Comment.String
			if err := s.reservationRepo.WithTx(tx).AddEvent(ctx, &entities.ReservationEvent{
				ReservationID: reservation.ID,
				EventType:     entities.EventComment,
				UserID:        actor.ID,
				Payload:       text,
				DateTime:      now,
			}); err != nil {
				return err
			}
			comment = &text
		}

		log, err = s.audit.WithTx(tx).CreateLog(ctx,
			"{user} requested {reservation} of {equipment} for {user}.", auditlog.CategoryStatus,
			userRef(actor), reservationRef(reservation), equipmentRef(equipment), userRef(maker))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	s.logger.Info("reservation created", zap.Uint64("reservationID", reservation.ID), zap.Uint64("equipmentID", reservation.EquipmentID))

	result := dto.NewReservationDTO(reservation, comment)
	return &result, nil
}

func (s *ReservationService) AddComment(ctx context.Context, reservationID uint64, text string) (string, error) {
	if err := authz.Require(ctx, authz.ReservationsComment); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewInvalidInputError("comment must not be empty")
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return "", err
	}

	var latest string
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.reservationRepo.WithTx(tx)
		reservation, err := repo.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := canSee(ctx, reservation); err != nil {
			return err
		}
		if err := repo.AddEvent(ctx, &entities.ReservationEvent{
			ReservationID: reservation.ID,
			EventType:     entities.EventComment,
			UserID:        actor.ID,
			Payload:       text,
			DateTime:      s.now().UTC(),
		}); err != nil {
			return err
		}
		newest, err := repo.LatestComment(ctx, reservation.ID)
		if err != nil {
			return err
		}
		latest = newest.Payload
		return nil
	})
	if err != nil {
		return "", err
	}
	return latest, nil
}

func (s *ReservationService) Confirm(ctx context.Context, reservationID uint64) (*dto.ReservationDTO, error) {
	if err := authz.Require(ctx, authz.ReservationsConfirm); err != nil {
		return nil, err
	}
	return s.transition(ctx, reservationID, entities.ReservationConfirmed, "{user} confirmed {reservation}.")
}

func (s *ReservationService) Cancel(ctx context.Context, reservationID uint64) (*dto.ReservationDTO, error) {
	if err := authz.Require(ctx, authz.ReservationsCancel); err != nil {
		return nil, err
	}
	return s.transition(ctx, reservationID, entities.ReservationCancelled, "{user} cancelled {reservation}.")
}

// transition moves a PENDING reservation to a terminal status. The update is
// conditional on the current status, so of two concurrent callers only one wins.
func (s *ReservationService) transition(ctx context.Context, reservationID uint64, to entities.ReservationStatus, template string) (*dto.ReservationDTO, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}

	var reservation *entities.Reservation
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.reservationRepo.WithTx(tx)
		reservation, err = repo.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		ok, err := repo.TransitionStatus(ctx, reservation.ID, entities.ReservationPending, to, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("reservation #%d cannot become %s: %w", reservation.ID, to, apperrors.ErrInvalidState)
		}
		reservation.Status = to
		reservation.LastUpdated = now

		if err := repo.AddEvent(ctx, &entities.ReservationEvent{
			ReservationID: reservation.ID,
			EventType:     entities.EventStatusChange,
			UserID:        actor.ID,
			Payload:       string(to),
			DateTime:      now,
		}); err != nil {
			return err
		}
		log, err = s.audit.WithTx(tx).CreateLog(ctx, template, auditlog.CategoryStatus, userRef(actor), reservationRef(reservation))
		return err
	})
	if err != nil {
		outcome := metrics.Rejected
		if !errors.Is(err, apperrors.ErrInvalidState) {
			outcome = "error"
		}
		metrics.ReservationTransitions.WithLabelValues(string(to), outcome).Inc()
		return nil, err
	}
	metrics.ReservationTransitions.WithLabelValues(string(to), metrics.Applied).Inc()
	s.audit.Announce(ctx, log)
	s.logger.Info("reservation status changed",
		zap.Uint64("reservationID", reservation.ID),
		zap.String("status", string(to)),
		zap.Uint64("userID", actor.ID),
	)
	return s.withLatestComment(ctx, reservation)
}

func (s *ReservationService) AssignLabbie(ctx context.Context, reservationID, labbieID uint64) (*dto.ReservationDTO, error) {
	if err := authz.Require(ctx, authz.ReservationsAssign); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	labbie, err := s.userRepo.FindByID(ctx, labbieID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(labbie.Privilege, entities.PrivilegeMentor) {
		return nil, apperrors.NewInvalidInputError("user #%d cannot supervise reservations", labbieID)
	}

	var reservation *entities.Reservation
	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.reservationRepo.WithTx(tx)
		reservation, err = repo.FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status == entities.ReservationCancelled {
			return fmt.Errorf("reservation #%d is cancelled: %w", reservation.ID, apperrors.ErrInvalidState)
		}
		now := s.now().UTC()
		if err := repo.AssignLabbie(ctx, reservation.ID, labbie.ID, now); err != nil {
			return err
		}
		reservation.LabbieID = &labbie.ID
		reservation.LastUpdated = now
		if err := repo.AddEvent(ctx, &entities.ReservationEvent{
			ReservationID: reservation.ID,
			EventType:     entities.EventAssignment,
			UserID:        actor.ID,
			Payload:       strconv.FormatUint(labbie.ID, 10),
			DateTime:      now,
		}); err != nil {
			return err
		}
		log, err = s.audit.WithTx(tx).CreateLog(ctx, "{user} assigned {user} to {reservation}.",
			auditlog.CategoryStatus, userRef(actor), userRef(labbie), reservationRef(reservation))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)
	return s.withLatestComment(ctx, reservation)
}

func (s *ReservationService) withLatestComment(ctx context.Context, reservation *entities.Reservation) (*dto.ReservationDTO, error) {
	var latest *string
	comment, err := s.reservationRepo.LatestComment(ctx, reservation.ID)
	switch {
	case err == nil:
		latest = &comment.Payload
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	result := dto.NewReservationDTO(reservation, latest)
	return &result, nil
}

func (s *ReservationService) Get(ctx context.Context, reservationID uint64) (*dto.ReservationDTO, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := canSee(ctx, reservation); err != nil {
		return nil, err
	}
	return s.withLatestComment(ctx, reservation)
}

func (s *ReservationService) List(ctx context.Context, filter repositories.ReservationFilter) ([]dto.ReservationDTO, error) {
	privilege, ok := authz.PrivilegeFromContext(ctx)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	if !authz.Allowed(privilege, authz.UsersViewOthers) {
		userID, err := authz.UserIDFromContext(ctx)
		if err != nil {
			return nil, apperrors.ErrUnauthorized
		}
		filter.MakerID = userID
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ReservationDTO, 0, len(reservations))
	for i := range reservations {
		item, err := s.withLatestComment(ctx, &reservations[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, nil
}

func (s *ReservationService) Events(ctx context.Context, reservationID uint64) ([]dto.ReservationEventDTO, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := canSee(ctx, reservation); err != nil {
		return nil, err
	}
	events, err := s.reservationRepo.FindEvents(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ReservationEventDTO, 0, len(events))
	for i := range events {
		result = append(result, dto.NewReservationEventDTO(&events[i]))
	}
	return result, nil
}
