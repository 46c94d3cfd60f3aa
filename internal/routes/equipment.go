package routes

import (
	"makerspace/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController) {
	group := secureGroup.Group("/equipment")
	group.GET("", ctrl.GetEquipment)
	group.GET("/:id", ctrl.FindEquipment)
	group.GET("/:id/access", ctrl.CheckAccess)
	group.PUT("/:id/archive", ctrl.Archive)
	group.PUT("/:id/publish", ctrl.Publish)
	group.PUT("/:id/modules", ctrl.SetModules)
}
