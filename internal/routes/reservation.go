package routes

import (
	"makerspace/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runReservationRouter(secureGroup *echo.Group, ctrl *controllers.ReservationController) {
	group := secureGroup.Group("/reservations")
	group.POST("", ctrl.CreateReservation)
	group.GET("", ctrl.GetReservations)
	group.GET("/:id", ctrl.FindReservation)
	group.GET("/:id/events", ctrl.GetEvents)
	group.POST("/:id/comments", ctrl.AddComment)
	group.PUT("/:id/confirm", ctrl.Confirm)
	group.PUT("/:id/cancel", ctrl.Cancel)
	group.PUT("/:id/labbie", ctrl.AssignLabbie)
}
