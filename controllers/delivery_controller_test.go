package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"delivery-service/controllers"
	"delivery-service/models"
	"delivery-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// ---- concrete mock implementing services.DeliveryService ----

type mockDeliverySvc struct {
	delivery   *models.Delivery
	withOrder  *models.DeliveryWithOrder
	deliveries []models.Delivery
	err        *services.ServiceError
	broadcasts []models.OrderEvent
}

func (m *mockDeliverySvc) CreateDeliveryForOrder(_ context.Context, _ string) (*models.Delivery, *services.ServiceError) {
	return m.delivery, m.err
}
func (m *mockDeliverySvc) AssignDriver(_ context.Context, _ string, _ models.DriverAssignment) (*models.Delivery, *services.ServiceError) {
	return m.delivery, m.err
}
func (m *mockDeliverySvc) UpdateDelivery(_ context.Context, _ string, _ models.DeliveryPatch) (*models.Delivery, *services.ServiceError) {
	return m.delivery, m.err
}
func (m *mockDeliverySvc) DeleteDelivery(_ context.Context, _ string) *services.ServiceError {
	return m.err
}
func (m *mockDeliverySvc) GetDeliveryByID(_ context.Context, _ string) (*models.Delivery, *services.ServiceError) {
	return m.delivery, m.err
}
func (m *mockDeliverySvc) GetDeliveryWithOrderDetails(_ context.Context, _ string) (*models.DeliveryWithOrder, *services.ServiceError) {
	return m.withOrder, m.err
}
func (m *mockDeliverySvc) ListAllDeliveries(_ context.Context) ([]models.Delivery, *services.ServiceError) {
	return m.deliveries, m.err
}
func (m *mockDeliverySvc) ListByCustomer(_ context.Context, _ string) ([]models.Delivery, *services.ServiceError) {
	return m.deliveries, m.err
}
func (m *mockDeliverySvc) ListByDriver(_ context.Context, _ string) ([]models.Delivery, *services.ServiceError) {
	return m.deliveries, m.err
}
func (m *mockDeliverySvc) ListByRestaurant(_ context.Context, _ string) ([]models.Delivery, *services.ServiceError) {
	return m.deliveries, m.err
}
func (m *mockDeliverySvc) BroadcastOrderRequest(_ context.Context, evt models.OrderEvent) {
	m.broadcasts = append(m.broadcasts, evt)
}

// ---- helpers ----

func setupRouter(svc services.DeliveryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := controllers.NewDeliveryController(svc, nil)

	r.POST("/deliveries", c.CreateDelivery)
	r.GET("/deliveries", c.ListDeliveries)
	r.GET("/deliveries/:id", c.GetDelivery)
	r.GET("/deliveries/:id/order", c.GetDeliveryWithOrder)
	r.PATCH("/deliveries/:id", c.UpdateDelivery)
	r.DELETE("/deliveries/:id", c.DeleteDelivery)
	r.POST("/deliveries/order/:orderId/assign", c.AssignDriver)
	r.GET("/deliveries/restaurant/:restaurantId", c.ListByRestaurant)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestCreateDelivery_Success(t *testing.T) {
	svc := &mockDeliverySvc{delivery: &models.Delivery{ID: "d1", OrderID: "O1", Status: models.DeliveryStatusPending}}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/deliveries", gin.H{"orderId": "O1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Delivery models.Delivery `json:"delivery"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "d1", resp.Delivery.ID)
}

func TestCreateDelivery_MissingOrderID(t *testing.T) {
	r := setupRouter(&mockDeliverySvc{})

	w := doJSON(r, http.MethodPost, "/deliveries", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDelivery_Duplicate(t *testing.T) {
	svc := &mockDeliverySvc{err: services.NewDuplicateDeliveryError("O1")}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/deliveries", gin.H{"orderId": "O1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestGetDelivery_NotFound(t *testing.T) {
	svc := &mockDeliverySvc{err: services.NewDeliveryNotFoundError("nope")}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/deliveries/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDelivery_SyntheticID(t *testing.T) {
	svc := &mockDeliverySvc{delivery: &models.Delivery{ID: "generated-O1", OrderID: "O1", Status: models.DeliveryStatusInProgress}}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/deliveries/generated-O1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "generated-O1")
}

func TestGetDeliveryWithOrder_OrphanedDelivery(t *testing.T) {
	svc := &mockDeliverySvc{err: services.NewAssociatedOrderNotFoundError("O1")}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/deliveries/d1/order", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "linked to delivery")
}

func TestUpdateDelivery_TerminalRejected(t *testing.T) {
	svc := &mockDeliverySvc{err: services.NewValidationError("delivery is DELIVERED; no further status changes allowed")}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPatch, "/deliveries/d1", gin.H{"status": "PENDING"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDelivery_Success(t *testing.T) {
	r := setupRouter(&mockDeliverySvc{})

	w := doJSON(r, http.MethodDelete, "/deliveries/d1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAssignDriver_Success(t *testing.T) {
	svc := &mockDeliverySvc{delivery: &models.Delivery{ID: "d1", OrderID: "O3", DriverID: "driver-9", Status: models.DeliveryStatusAccepted}}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/deliveries/order/O3/assign", gin.H{"driver_id": "driver-9"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ACCEPTED")
}

func TestAssignDriver_MissingDriverID(t *testing.T) {
	r := setupRouter(&mockDeliverySvc{})

	w := doJSON(r, http.MethodPost, "/deliveries/order/O3/assign", gin.H{"driver_name": "Ravi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignDriver_OrderMissing(t *testing.T) {
	svc := &mockDeliverySvc{err: services.NewOrderNotFoundError("O2")}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/deliveries/order/O2/assign", gin.H{"driver_id": "driver-9"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListByRestaurant(t *testing.T) {
	svc := &mockDeliverySvc{deliveries: []models.Delivery{
		{ID: "d1", OrderID: "O1"},
		{ID: "generated-O2", OrderID: "O2"},
	}}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/deliveries/restaurant/R1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Deliveries []models.Delivery `json:"deliveries"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Deliveries, 2)
}

func TestPublishLocation_HubDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := controllers.NewDeliveryController(&mockDeliverySvc{}, nil)
	r.POST("/drivers/:driverId/location", c.PublishLocation)

	w := doJSON(r, http.MethodPost, "/drivers/driver-9/location", gin.H{"lat": 12.9, "lng": 77.5})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
