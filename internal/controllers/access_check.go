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

type AccessCheckController struct {
	accessCheckService services.AccessCheckServiceInterface
	logger             *zap.Logger
}

func NewAccessCheckController(accessCheckService services.AccessCheckServiceInterface, logger *zap.Logger) *AccessCheckController {
	return &AccessCheckController{accessCheckService: accessCheckService, logger: logger}
}

// GetAccessChecks lists checks; ?approved=true|false narrows by approval.
func (c *AccessCheckController) GetAccessChecks(ctx echo.Context) error {
	var approved *bool
	if raw := ctx.QueryParam("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid approved flag"), c.logger)
		}
		approved = &v
	}

	res, err := c.accessCheckService.List(ctx.Request().Context(), approved)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "access checks listed", http.StatusOK)
}

func (c *AccessCheckController) SetApproval(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.SetApprovalDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "malformed request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.accessCheckService.SetApproval(ctx.Request().Context(), id, *req.Approved)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "access check updated", http.StatusOK)
}

func (c *AccessCheckController) IsApproved(ctx echo.Context) error {
	userID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	equipmentID, err := utils.ParseIDParam(ctx, "equipmentID")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ok, err := c.accessCheckService.IsApproved(ctx.Request().Context(), userID, equipmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]bool{"approved": ok}, "approval evaluated", http.StatusOK)
}
