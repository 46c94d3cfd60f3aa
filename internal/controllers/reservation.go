package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"makerspace/internal/dto"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	"makerspace/internal/services"
	apperrors "makerspace/pkg/errors"
	"makerspace/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ReservationController struct {
	reservationService services.ReservationServiceInterface
	logger             *zap.Logger
}

func NewReservationController(reservationService services.ReservationServiceInterface, logger *zap.Logger) *ReservationController {
	return &ReservationController{reservationService: reservationService, logger: logger}
}

func (c *ReservationController) CreateReservation(ctx echo.Context) error {
	var req dto.CreateReservationDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "malformed request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.Create(ctx.Request().Context(), req)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "reservation requested", http.StatusCreated)
}

func (c *ReservationController) FindReservation(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "reservation found", http.StatusOK)
}

func (c *ReservationController) GetReservations(ctx echo.Context) error {
	filter, err := reservationFilterFrom(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	body := dto.PaginatedResponse[dto.ReservationDTO]{
		List:       res,
		Pagination: dto.Pagination{Limit: filter.Limit, Offset: filter.Offset},
	}
	return utils.SuccessResponse(ctx, body, "reservations listed", http.StatusOK)
}

// reservationFilterFrom reads ?status= ?equipment= ?maker= ?labbie= ?from= ?to=
// plus the usual limit/page pair.
func reservationFilterFrom(ctx echo.Context) (repositories.ReservationFilter, error) {
	q := ctx.QueryParams()
	var filter repositories.ReservationFilter
	filter.Limit, filter.Offset, _ = utils.ParsePaginationParams(q)

	switch status := entities.ReservationStatus(q.Get("status")); status {
	case "":
	case entities.ReservationPending, entities.ReservationConfirmed, entities.ReservationCancelled:
		filter.Status = status
	default:
		return filter, apperrors.NewInvalidInputError("unknown status %q", status)
	}

	ids := []struct {
		name string
		dst  *uint64
	}{
		{"equipment", &filter.EquipmentID},
		{"maker", &filter.MakerID},
		{"labbie", &filter.LabbieID},
	}
	for _, id := range ids {
		raw := q.Get(id.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewInvalidInputError("invalid %s", id.name)
		}
		*id.dst = v
	}

	if raw := q.Get("from"); raw != "" {
		from, err := utils.ParseTimeParam(raw, time.Time{})
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := utils.ParseTimeParam(raw, time.Time{})
		if err != nil {
			return filter, err
		}
		to = utils.EndOfDay(raw, to)
		filter.To = &to
	}
	return filter, nil
}

func (c *ReservationController) GetEvents(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.Events(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "reservation events listed", http.StatusOK)
}

func (c *ReservationController) AddComment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.AddCommentDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "malformed request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	latest, err := c.reservationService.AddComment(ctx.Request().Context(), id, req.Comment)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]string{"latest_comment": latest}, "comment added", http.StatusCreated)
}

func (c *ReservationController) Confirm(ctx echo.Context) error {
	return c.transition(ctx, c.reservationService.Confirm, "reservation confirmed")
}

func (c *ReservationController) Cancel(ctx echo.Context) error {
	return c.transition(ctx, c.reservationService.Cancel, "reservation cancelled")
}

func (c *ReservationController) transition(
	ctx echo.Context,
	apply func(ctx context.Context, id uint64) (*dto.ReservationDTO, error),
	message string,
) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := apply(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, message, http.StatusOK)
}

func (c *ReservationController) AssignLabbie(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.AssignLabbieDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "malformed request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.AssignLabbie(ctx.Request().Context(), id, req.LabbieID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "labbie assigned", http.StatusOK)
}
