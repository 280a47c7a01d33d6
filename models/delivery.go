package models

import (
	"time"
)

// DeliveryStatus is the canonical delivery lifecycle state. Order documents
// carry a free-text status in a different vocabulary; the two never mix
// outside the status mapper.
type DeliveryStatus string

// Delivery lifecycle states.
const (
	DeliveryStatusPending    DeliveryStatus = "PENDING"
	DeliveryStatusAccepted   DeliveryStatus = "ACCEPTED"
	DeliveryStatusInProgress DeliveryStatus = "IN_PROGRESS"
	DeliveryStatusDelivered  DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled  DeliveryStatus = "CANCELLED"
)

// Valid reports whether s is one of the five canonical states.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusAccepted, DeliveryStatusInProgress,
		DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusCancelled
}

// Delivery is the first-class delivery record stored in the delivery DB.
// At most one should exist per order; that invariant is enforced by an
// existence check in the service layer, not by a unique index.
type Delivery struct {
	ID          string         `bson:"_id" json:"id"`
	OrderID     string         `bson:"orderId" json:"order_id"`
	DriverID    string         `bson:"driverId,omitempty" json:"driver_id,omitempty"`
	Status      DeliveryStatus `bson:"status" json:"status"`
	AcceptedAt  *time.Time     `bson:"acceptedAt,omitempty" json:"accepted_at,omitempty"`
	DeliveredAt *time.Time     `bson:"deliveredAt,omitempty" json:"delivered_at,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updated_at"`
}

// DeliveryPatch is a partial update applied to a delivery. Nil fields are
// left untouched.
type DeliveryPatch struct {
	DriverID    *string         `json:"driver_id,omitempty"`
	Status      *DeliveryStatus `json:"status,omitempty"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
}

// DriverAssignment is the payload for assigning a driver to an order.
type DriverAssignment struct {
	DriverID      string `json:"driver_id" binding:"required"`
	DriverName    string `json:"driver_name"`
	VehicleNumber string `json:"vehicle_number"`
}

// DeliveryWithOrder pairs a delivery with its backing order document.
type DeliveryWithOrder struct {
	Delivery *Delivery `json:"delivery"`
	Order    *Order    `json:"order"`
}
