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

type TrainingController struct {
	trainingService services.TrainingServiceInterface
	logger          *zap.Logger
}

func NewTrainingController(trainingService services.TrainingServiceInterface, logger *zap.Logger) *TrainingController {
	return &TrainingController{trainingService: trainingService, logger: logger}
}

func (c *TrainingController) GetModules(ctx echo.Context) error {
	res, err := c.trainingService.ListModules(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "training modules listed", http.StatusOK)
}

func (c *TrainingController) FindModule(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.trainingService.GetModule(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "training module found", http.StatusOK)
}

func (c *TrainingController) Submit(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.SubmitModuleDTO
	if err := ctx.Bind(&req); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "malformed request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&req); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.trainingService.SubmitModule(ctx.Request().Context(), id, req.Answers)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "submission graded", http.StatusCreated)
}

// GetSubmissions lists a user's attempts, optionally narrowed by ?module=.
func (c *TrainingController) GetSubmissions(ctx echo.Context) error {
	userID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var moduleID uint64
	if raw := ctx.QueryParam("module"); raw != "" {
		if moduleID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid module"), c.logger)
		}
	}

	res, err := c.trainingService.Submissions(ctx.Request().Context(), userID, moduleID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "submissions listed", http.StatusOK)
}

func (c *TrainingController) GetAccessProgress(ctx echo.Context) error {
	userID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.trainingService.AccessProgress(ctx.Request().Context(), userID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "access progress", http.StatusOK)
}
