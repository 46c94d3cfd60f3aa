package controllers

import (
	"net/http"
	"strconv"

	"makerspace/internal/dto"
	"makerspace/internal/services"
	apperrors "makerspace/pkg/errors"
	"makerspace/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	readerService    services.ReaderServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(
	equipmentService services.EquipmentServiceInterface,
	readerService services.ReaderServiceInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService: equipmentService,
		readerService:    readerService,
		logger:           logger,
	}
}

func (c *EquipmentController) GetEquipment(ctx echo.Context) error {
	archived := false
	if raw := ctx.QueryParam("archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid archived flag"), c.logger)
		}
		archived = v
	}

	res, err := c.equipmentService.List(ctx.Request().Context(), archived)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "equipment listed", http.StatusOK)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "equipment found", http.StatusOK)
}

// CheckAccess answers whether the card holder ?uid= may use the equipment.
func (c *EquipmentController) CheckAccess(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	uid := ctx.QueryParam("uid")
	if uid == "" {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("uid is required"), c.logger)
	}

	ok, err := c.readerService.CheckAccess(ctx.Request().Context(), id, uid)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.AccessDecisionDTO{EquipmentID: id, HasAccess: ok}, "access evaluated", http.StatusOK)
}

func (c *EquipmentController) Archive(ctx echo.Context) error {
	return c.setArchived(ctx, true)
}

func (c *EquipmentController) Publish(ctx echo.Context) error {
	return c.setArchived(ctx, false)
}

func (c *EquipmentController) setArchived(ctx echo.Context, archived bool) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.SetArchived(ctx.Request().Context(), id, archived)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "equipment updated", http.StatusOK)
}

func (c *EquipmentController) SetModules(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.SetEquipmentModulesDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "malformed request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.SetModules(ctx.Request().Context(), id, req.ModuleIDs)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "training modules updated", http.StatusOK)
}
