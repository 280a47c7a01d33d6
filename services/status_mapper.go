package services

import (
	"strings"

	"delivery-service/models"
)

// SyntheticIDPrefix marks delivery ids derived from an order rather than
// backed by a delivery record. The prefix is wire-visible: consumers must
// special-case it before treating the id as a real delivery key.
const SyntheticIDPrefix = "generated-"

// MapOrderStatusToDeliveryStatus translates the order DB's free-text
// status into the canonical delivery lifecycle state. Matching is
// case-insensitive; anything unrecognized (including empty) maps to
// PENDING. Total and deterministic.
func MapOrderStatusToDeliveryStatus(orderStatus string) models.DeliveryStatus {
	switch strings.ToLower(orderStatus) {
	case "out for delivery":
		return models.DeliveryStatusInProgress
	case "delivered":
		return models.DeliveryStatusDelivered
	case "cancelled":
		return models.DeliveryStatusCancelled
	default:
		return models.DeliveryStatusPending
	}
}

// MapDeliveryStatusToOrderStatus translates a canonical state back into
// the order DB's vocabulary for mirror writes. Not a true inverse of the
// forward mapping: every non-terminal, non-in-progress state normalizes to
// "Pending Delivery" regardless of what the order originally said.
func MapDeliveryStatusToOrderStatus(status models.DeliveryStatus) string {
	switch status {
	case models.DeliveryStatusInProgress:
		return "Out for Delivery"
	case models.DeliveryStatusDelivered:
		return "Delivered"
	case models.DeliveryStatusCancelled:
		return "Cancelled"
	default:
		return "Pending Delivery"
	}
}

// SyntheticDeliveryID derives the synthetic delivery id for an order.
func SyntheticDeliveryID(orderID string) string {
	return SyntheticIDPrefix + orderID
}

// IsSyntheticDeliveryID reports whether id carries the synthetic prefix.
func IsSyntheticDeliveryID(id string) bool {
	return strings.HasPrefix(id, SyntheticIDPrefix)
}

// ExtractOrderID returns the order id embedded in a synthetic delivery id.
// ok is false when id does not carry the prefix.
func ExtractOrderID(id string) (orderID string, ok bool) {
	if !IsSyntheticDeliveryID(id) {
		return "", false
	}
	return strings.TrimPrefix(id, SyntheticIDPrefix), true
}
