package services_test

import (
	"testing"
	"time"

	"delivery-service/models"
	"delivery-service/services"

	"github.com/stretchr/testify/assert"
)

func TestMapOrderStatusToDeliveryStatus(t *testing.T) {
	cases := []struct {
		orderStatus string
		want        models.DeliveryStatus
	}{
		{"Out for Delivery", models.DeliveryStatusInProgress},
		{"out for delivery", models.DeliveryStatusInProgress},
		{"OUT FOR DELIVERY", models.DeliveryStatusInProgress},
		{"Delivered", models.DeliveryStatusDelivered},
		{"delivered", models.DeliveryStatusDelivered},
		{"Cancelled", models.DeliveryStatusCancelled},
		{"CANCELLED", models.DeliveryStatusCancelled},
		{"Pending Payment", models.DeliveryStatusPending},
		{"Preparing", models.DeliveryStatusPending},
		{"", models.DeliveryStatusPending},
		{"garbage-value", models.DeliveryStatusPending},
	}

	for _, tc := range cases {
		got := services.MapOrderStatusToDeliveryStatus(tc.orderStatus)
		assert.Equal(t, tc.want, got, "orderStatus=%q", tc.orderStatus)
		assert.True(t, got.Valid(), "mapper must always produce a valid state")
	}
}

func TestMapDeliveryStatusToOrderStatus(t *testing.T) {
	assert.Equal(t, "Out for Delivery", services.MapDeliveryStatusToOrderStatus(models.DeliveryStatusInProgress))
	assert.Equal(t, "Delivered", services.MapDeliveryStatusToOrderStatus(models.DeliveryStatusDelivered))
	assert.Equal(t, "Cancelled", services.MapDeliveryStatusToOrderStatus(models.DeliveryStatusCancelled))

	// PENDING and ACCEPTED both collapse to the same order-side string.
	assert.Equal(t, "Pending Delivery", services.MapDeliveryStatusToOrderStatus(models.DeliveryStatusPending))
	assert.Equal(t, "Pending Delivery", services.MapDeliveryStatusToOrderStatus(models.DeliveryStatusAccepted))
}

func TestSyntheticDeliveryID(t *testing.T) {
	id := services.SyntheticDeliveryID("order-42")
	assert.Equal(t, "generated-order-42", id)
	assert.True(t, services.IsSyntheticDeliveryID(id))
	assert.False(t, services.IsSyntheticDeliveryID("order-42"))

	orderID, ok := services.ExtractOrderID(id)
	assert.True(t, ok)
	assert.Equal(t, "order-42", orderID)

	_, ok = services.ExtractOrderID("some-uuid")
	assert.False(t, ok)
}

func TestSynthesizeDelivery(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(30 * time.Minute)
	order := &models.Order{
		OrderID:     "order-7",
		OrderStatus: "Out for Delivery",
		DriverDetails: &models.DriverDetails{
			DriverID:   "driver-1",
			DriverName: "Asha",
		},
		CreatedAt: created,
		UpdatedAt: updated,
	}

	d := services.SynthesizeDelivery(order)
	assert.Equal(t, "generated-order-7", d.ID)
	assert.Equal(t, "order-7", d.OrderID)
	assert.Equal(t, models.DeliveryStatusInProgress, d.Status)
	assert.Equal(t, "driver-1", d.DriverID)
	assert.Equal(t, created, d.CreatedAt)
	assert.Equal(t, updated, d.UpdatedAt)
}

func TestSynthesizeDeliveryWithoutDriver(t *testing.T) {
	order := &models.Order{OrderID: "order-8", OrderStatus: "Preparing"}

	d := services.SynthesizeDelivery(order)
	assert.Equal(t, models.DeliveryStatusPending, d.Status)
	assert.Empty(t, d.DriverID)
}

func TestDeliveryStatusLifecycle(t *testing.T) {
	assert.True(t, models.DeliveryStatusDelivered.Terminal())
	assert.True(t, models.DeliveryStatusCancelled.Terminal())
	assert.False(t, models.DeliveryStatusPending.Terminal())
	assert.False(t, models.DeliveryStatusAccepted.Terminal())
	assert.False(t, models.DeliveryStatusInProgress.Terminal())
}
