package routes

import (
	"makerspace/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runUserRouter(secureGroup *echo.Group, ctrl *controllers.UserController, accessChecks *controllers.AccessCheckController) {
	group := secureGroup.Group("/users/:id")
	group.GET("", ctrl.FindUser)
	group.PUT("/privilege", ctrl.SetPrivilege)
	group.PUT("/archive", ctrl.Archive)
	group.PUT("/restore", ctrl.Restore)
	group.POST("/holds", ctrl.PlaceHold)
	group.GET("/holds", ctrl.GetHolds)
	group.GET("/equipment/:equipmentID/approval", accessChecks.IsApproved)

	secureGroup.GET("/me", ctrl.Me)
	secureGroup.DELETE("/holds/:id", ctrl.RemoveHold)
}
