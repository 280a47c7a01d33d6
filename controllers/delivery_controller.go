package controllers

import (
	"net/http"

	"delivery-service/models"
	"delivery-service/services"

	"github.com/gin-gonic/gin"
)

// DeliveryController handles HTTP requests for delivery operations.
type DeliveryController struct {
	deliveryService services.DeliveryService
	locationHub     *services.LocationHub
}

// NewDeliveryController creates a new DeliveryController. locationHub may
// be nil when the realtime location channel is disabled.
func NewDeliveryController(svc services.DeliveryService, hub *services.LocationHub) *DeliveryController {
	return &DeliveryController{deliveryService: svc, locationHub: hub}
}

type createDeliveryRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreateDelivery handles POST /deliveries
func (dc *DeliveryController) CreateDelivery(ctx *gin.Context) {
	var req createDeliveryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	delivery, svcErr := dc.deliveryService.CreateDeliveryForOrder(ctx.Request.Context(), req.OrderID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"delivery": delivery})
}

// ListDeliveries handles GET /deliveries
func (dc *DeliveryController) ListDeliveries(ctx *gin.Context) {
	deliveries, svcErr := dc.deliveryService.ListAllDeliveries(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}

// GetDelivery handles GET /deliveries/:id
func (dc *DeliveryController) GetDelivery(ctx *gin.Context) {
	delivery, svcErr := dc.deliveryService.GetDeliveryByID(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"delivery": delivery})
}

// GetDeliveryWithOrder handles GET /deliveries/:id/order
func (dc *DeliveryController) GetDeliveryWithOrder(ctx *gin.Context) {
	result, svcErr := dc.deliveryService.GetDeliveryWithOrderDetails(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// UpdateDelivery handles PATCH /deliveries/:id
func (dc *DeliveryController) UpdateDelivery(ctx *gin.Context) {
	var patch models.DeliveryPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	delivery, svcErr := dc.deliveryService.UpdateDelivery(ctx.Request.Context(), ctx.Param("id"), patch)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"delivery": delivery})
}

// DeleteDelivery handles DELETE /deliveries/:id
func (dc *DeliveryController) DeleteDelivery(ctx *gin.Context) {
	if svcErr := dc.deliveryService.DeleteDelivery(ctx.Request.Context(), ctx.Param("id")); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Delivery deleted"})
}

// AssignDriver handles POST /deliveries/order/:orderId/assign
func (dc *DeliveryController) AssignDriver(ctx *gin.Context) {
	var driver models.DriverAssignment
	if err := ctx.ShouldBindJSON(&driver); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	delivery, svcErr := dc.deliveryService.AssignDriver(ctx.Request.Context(), ctx.Param("orderId"), driver)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"delivery": delivery})
}

// ListByCustomer handles GET /deliveries/customer/:customerId
func (dc *DeliveryController) ListByCustomer(ctx *gin.Context) {
	deliveries, svcErr := dc.deliveryService.ListByCustomer(ctx.Request.Context(), ctx.Param("customerId"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}

// ListByDriver handles GET /deliveries/driver/:driverId
func (dc *DeliveryController) ListByDriver(ctx *gin.Context) {
	deliveries, svcErr := dc.deliveryService.ListByDriver(ctx.Request.Context(), ctx.Param("driverId"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}

// ListByRestaurant handles GET /deliveries/restaurant/:restaurantId
func (dc *DeliveryController) ListByRestaurant(ctx *gin.Context) {
	deliveries, svcErr := dc.deliveryService.ListByRestaurant(ctx.Request.Context(), ctx.Param("restaurantId"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}

// PublishLocation handles POST /drivers/:driverId/location
func (dc *DeliveryController) PublishLocation(ctx *gin.Context) {
	if dc.locationHub == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Location channel is not enabled"})
		return
	}

	var loc models.DriverLocation
	if err := ctx.ShouldBindJSON(&loc); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	loc.DriverID = ctx.Param("driverId")

	if err := dc.locationHub.Publish(ctx.Request.Context(), loc); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish location"})
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"message": "Location published"})
}

// GetLatestLocation handles GET /drivers/:driverId/location
func (dc *DeliveryController) GetLatestLocation(ctx *gin.Context) {
	if dc.locationHub == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Location channel is not enabled"})
		return
	}

	loc, ok := dc.locationHub.Latest(ctx.Request.Context(), ctx.Param("driverId"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "No known location for driver"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"location": loc})
}
