package routes

import (
	"makerspace/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runAccessCheckRouter(secureGroup *echo.Group, ctrl *controllers.AccessCheckController) {
	secureGroup.GET("/access-checks", ctrl.GetAccessChecks)
	secureGroup.PUT("/access-checks/:id/approval", ctrl.SetApproval)
}

func runAuditLogRouter(secureGroup *echo.Group, ctrl *controllers.AuditLogController) {
	secureGroup.GET("/audit-logs", ctrl.GetLogs)
	secureGroup.GET("/audit-logs/export", ctrl.Export)
}

func runReaderRouter(wsGroup *echo.Group, ctrl *controllers.ReaderController) {
	wsGroup.GET("/readers/:equipmentID", ctrl.ServeWs)
}
