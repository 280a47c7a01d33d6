package services

import (
	"delivery-service/models"
)

// SynthesizeDelivery builds a delivery-shaped view from an order that has
// no delivery record yet. The view is a fresh value sharing nothing
// mutable with the order document; it exists only for the duration of a
// read and is never written back. Mutating a synthetic delivery goes
// through UpdateDelivery, which materializes a real record first.
func SynthesizeDelivery(order *models.Order) *models.Delivery {
	d := &models.Delivery{
		ID:        SyntheticDeliveryID(order.OrderID),
		OrderID:   order.OrderID,
		Status:    MapOrderStatusToDeliveryStatus(order.OrderStatus),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.DriverDetails != nil {
		d.DriverID = order.DriverDetails.DriverID
	}
	return d
}
