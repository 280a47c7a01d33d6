package models

import "time"

// Notifier topics for delivery lifecycle changes.
const (
	TopicDeliveryCreated  = "delivery:created"
	TopicDeliveryAssigned = "delivery:assigned"
	TopicDeliveryUpdated  = "delivery:updated"
	TopicOrderRequest     = "order:request"
)

// DeliveryCreatedEvent is published when a delivery record is created.
type DeliveryCreatedEvent struct {
	EventType  string         `json:"event_type"`
	DeliveryID string         `json:"delivery_id"`
	OrderID    string         `json:"order_id"`
	Status     DeliveryStatus `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
}

// DeliveryAssignedEvent is published when a driver is assigned.
type DeliveryAssignedEvent struct {
	EventType  string         `json:"event_type"`
	DeliveryID string         `json:"delivery_id"`
	OrderID    string         `json:"order_id"`
	DriverID   string         `json:"driver_id"`
	Status     DeliveryStatus `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
}

// DeliveryUpdatedEvent is published on any other delivery status change.
type DeliveryUpdatedEvent struct {
	EventType  string         `json:"event_type"`
	DeliveryID string         `json:"delivery_id"`
	OrderID    string         `json:"order_id"`
	DriverID   string         `json:"driver_id,omitempty"`
	Status     DeliveryStatus `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
}

// OrderEvent is the message order-service publishes on its Kafka topic.
type OrderEvent struct {
	EventType    string    `json:"event_type"`
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID string    `json:"restaurant_id"`
	OrderStatus  string    `json:"order_status"`
	TotalAmount  float64   `json:"total_amount"`
	Timestamp    time.Time `json:"timestamp"`
}

// OrderEvent types this service reacts to.
const (
	OrderEventCreated       = "order_created"
	OrderEventStatusChanged = "order_status_changed"
)
