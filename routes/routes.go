package routes

import (
	"delivery-service/controllers"
	"delivery-service/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RegisterDeliveryRoutes sets up all delivery-related routes.
func RegisterDeliveryRoutes(r *gin.Engine, dc *controllers.DeliveryController, rc *controllers.RoutingController) {
	deliveries := r.Group("/deliveries")
	deliveries.Use(middleware.AuthMiddleware())

	deliveries.POST("", dc.CreateDelivery)
	deliveries.GET("", dc.ListDeliveries)
	deliveries.GET("/:id", dc.GetDelivery)
	deliveries.GET("/:id/order", dc.GetDeliveryWithOrder)
	deliveries.PATCH("/:id", dc.UpdateDelivery)
	deliveries.DELETE("/:id", middleware.RequireRole(middleware.AdminRole), dc.DeleteDelivery)

	deliveries.POST("/order/:orderId/assign", dc.AssignDriver)

	deliveries.GET("/customer/:customerId", dc.ListByCustomer)
	deliveries.GET("/driver/:driverId", dc.ListByDriver)
	deliveries.GET("/restaurant/:restaurantId", dc.ListByRestaurant)

	drivers := r.Group("/drivers")
	drivers.Use(middleware.AuthMiddleware())
	drivers.POST("/:driverId/location", middleware.RequireRole(middleware.DriverRole, middleware.AdminRole), dc.PublishLocation)
	drivers.GET("/:driverId/location", dc.GetLatestLocation)

	// Routing passthrough is rate limited; it fronts a shared public OSRM
	// upstream.
	route := r.Group("/route")
	route.Use(middleware.RateLimitMiddleware(rate.Limit(10), 20))
	route.GET("/v1/driving/*coordinates", rc.GetRoute)
}
