package controllers

import (
	"fmt"
	"net/http"
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/dto"
	"makerspace/internal/services"
	apperrors "makerspace/pkg/errors"
	"makerspace/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// defaultLogWindow is used when the request names no start date.
const defaultLogWindow = 7 * 24 * time.Hour

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AuditLogController struct {
	auditLogService services.AuditLogServiceInterface
	logger          *zap.Logger
	now             func() time.Time
}

func NewAuditLogController(auditLogService services.AuditLogServiceInterface, logger *zap.Logger) *AuditLogController {
	return &AuditLogController{auditLogService: auditLogService, logger: logger, now: time.Now}
}

func (c *AuditLogController) query(ctx echo.Context) (auditlog.Query, error) {
	var req dto.AuditLogQueryDTO
	if err := ctx.Bind(&req); err != nil {
		return auditlog.Query{}, apperrors.NewHttpError(http.StatusBadRequest, "malformed query", err, nil)
	}
	if err := ctx.Validate(&req); err != nil {
		return auditlog.Query{}, err
	}
	return auditQueryFrom(req, c.now())
}

// auditQueryFrom turns the query string into a log query. A missing stop date
// means now; a missing start date means one week before the stop date.
// Date-only stop bounds include the whole day.
func auditQueryFrom(req dto.AuditLogQueryDTO, now time.Time) (auditlog.Query, error) {
	stop, err := utils.ParseTimeParam(req.StopDate, now)
	if err != nil {
		return auditlog.Query{}, err
	}
	stop = utils.EndOfDay(req.StopDate, stop)

	start, err := utils.ParseTimeParam(req.StartDate, stop.Add(-defaultLogWindow))
	if err != nil {
		return auditlog.Query{}, err
	}

	return auditlog.Query{
		Start:      start,
		Stop:       stop,
		SearchText: req.SearchText,
		Filters: auditlog.Filters{
			Categories:    req.Categories,
			Uncategorized: req.Uncategorized,
			Errors:        auditlog.ErrorsMode(req.Errors),
		},
	}, nil
}

func (c *AuditLogController) GetLogs(ctx echo.Context) error {
	q, err := c.query(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.auditLogService.GetLogs(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "audit logs listed", http.StatusOK)
}

func (c *AuditLogController) Export(ctx echo.Context) error {
	q, err := c.query(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	buf, err := c.auditLogService.ExportXLSX(ctx.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filename := fmt.Sprintf("audit-log-%s_%s.xlsx", q.Start.Format(time.DateOnly), q.Stop.Format(time.DateOnly))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
