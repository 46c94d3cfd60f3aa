package routes

import (
	"makerspace/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runTrainingRouter(secureGroup *echo.Group, ctrl *controllers.TrainingController) {
	secureGroup.GET("/modules", ctrl.GetModules)
	secureGroup.GET("/modules/:id", ctrl.FindModule)
	secureGroup.POST("/modules/:id/submit", ctrl.Submit)
	secureGroup.GET("/users/:id/submissions", ctrl.GetSubmissions)
	secureGroup.GET("/users/:id/access-progress", ctrl.GetAccessProgress)
}
