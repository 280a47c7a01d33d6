package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-service/models"
	"delivery-service/pkg/awsutil"
	"delivery-service/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DeliveryService is the reconciliation engine between the delivery DB and
// the externally-owned order DB. Every operation resolves whether it acts
// on a real or synthetic delivery, writes to whichever store is
// authoritative, and mirrors the resulting status into the other store.
// The delivery write always happens before the order mirror; cross-store
// consistency is best-effort and asymmetric.
type DeliveryService interface {
	CreateDeliveryForOrder(ctx context.Context, orderID string) (*models.Delivery, *ServiceError)
	AssignDriver(ctx context.Context, orderID string, driver models.DriverAssignment) (*models.Delivery, *ServiceError)
	UpdateDelivery(ctx context.Context, deliveryID string, patch models.DeliveryPatch) (*models.Delivery, *ServiceError)
	DeleteDelivery(ctx context.Context, deliveryID string) *ServiceError
	GetDeliveryByID(ctx context.Context, deliveryID string) (*models.Delivery, *ServiceError)
	GetDeliveryWithOrderDetails(ctx context.Context, deliveryID string) (*models.DeliveryWithOrder, *ServiceError)
	ListAllDeliveries(ctx context.Context) ([]models.Delivery, *ServiceError)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Delivery, *ServiceError)
	ListByDriver(ctx context.Context, driverID string) ([]models.Delivery, *ServiceError)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Delivery, *ServiceError)
	BroadcastOrderRequest(ctx context.Context, evt models.OrderEvent)
}

type deliveryServiceImpl struct {
	deliveries  repository.DeliveryRepository
	orders      repository.OrderRepository
	notifier    Notifier
	snsClient   awsutil.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

// NewDeliveryService creates a new DeliveryService. notifier is required;
// snsClient may be nil when cross-service eventing is disabled.
func NewDeliveryService(
	deliveries repository.DeliveryRepository,
	orders repository.OrderRepository,
	notifier Notifier,
	snsClient awsutil.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) DeliveryService {
	return &deliveryServiceImpl{
		deliveries:  deliveries,
		orders:      orders,
		notifier:    notifier,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// validateID rejects empty, whitespace and the literal "undefined"/"null"
// strings real upstream clients have been observed to send.
func validateID(raw, label string) (string, *ServiceError) {
	id := strings.TrimSpace(raw)
	if id == "" || id == "undefined" || id == "null" {
		return "", NewValidationError(fmt.Sprintf("invalid %s: %q", label, raw))
	}
	return id, nil
}

// CreateDeliveryForOrder creates a PENDING delivery for an existing order.
// The per-order uniqueness invariant is a check-then-create: two
// concurrent calls for the same order can both pass the check. Sequential
// duplicates are caught.
func (s *deliveryServiceImpl) CreateDeliveryForOrder(ctx context.Context, orderID string) (*models.Delivery, *ServiceError) {
	orderID, verr := validateID(orderID, "order id")
	if verr != nil {
		return nil, verr
	}

	if _, err := s.deliveries.FindByOrderID(ctx, orderID); err == nil {
		return nil, NewDuplicateDeliveryError(orderID)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, NewInternalError("failed to check existing delivery", err)
	}

	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewOrderNotFoundError(orderID)
		}
		return nil, NewInternalError("failed to load order", err)
	}

	now := time.Now().UTC()
	delivery := &models.Delivery{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    models.DeliveryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.deliveries.Create(ctx, delivery); err != nil {
		return nil, NewInternalError("failed to create delivery", err)
	}

	s.logger.Info("Delivery created",
		zap.String("delivery_id", delivery.ID),
		zap.String("order_id", orderID),
	)

	s.notify(ctx, models.TopicDeliveryCreated, models.DeliveryCreatedEvent{
		EventType:  "delivery_created",
		DeliveryID: delivery.ID,
		OrderID:    orderID,
		Status:     delivery.Status,
		Timestamp:  now,
	})

	return delivery, nil
}

// AssignDriver attaches a driver to the delivery for orderID, creating the
// delivery directly in ACCEPTED state when none exists yet (a delivery can
// be born already-accepted). The assignment is mirrored into the order's
// driverDetails and orderStatus. The two writes are not transactional: if
// the mirror fails after the delivery write, the delivery DB holds the
// newer truth.
func (s *deliveryServiceImpl) AssignDriver(ctx context.Context, orderID string, driver models.DriverAssignment) (*models.Delivery, *ServiceError) {
	orderID, verr := validateID(orderID, "order id")
	if verr != nil {
		return nil, verr
	}
	driverID, verr := validateID(driver.DriverID, "driver id")
	if verr != nil {
		return nil, verr
	}
	driver.DriverID = driverID

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewOrderNotFoundError(orderID)
		}
		return nil, NewAssignmentError("failed to load order", err)
	}

	now := time.Now().UTC()

	delivery, err := s.deliveries.FindByOrderID(ctx, orderID)
	switch {
	case err == nil:
		if delivery.Status.Terminal() {
			return nil, NewAssignmentError(
				fmt.Sprintf("delivery for order %s is already %s", orderID, delivery.Status), nil)
		}
		delivery.DriverID = driver.DriverID
		delivery.Status = models.DeliveryStatusAccepted
		delivery.AcceptedAt = &now
		if err := s.deliveries.Update(ctx, delivery); err != nil {
			return nil, NewAssignmentError("failed to update delivery", err)
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		delivery = &models.Delivery{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			DriverID:   driver.DriverID,
			Status:     models.DeliveryStatusAccepted,
			AcceptedAt: &now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.deliveries.Create(ctx, delivery); err != nil {
			return nil, NewAssignmentError("failed to create delivery", err)
		}
	default:
		return nil, NewAssignmentError("failed to look up delivery", err)
	}

	merged := mergeDriverDetails(order.DriverDetails, driver)
	if err := s.orders.SetStatusAndDriver(ctx, orderID, "Out for Delivery", merged); err != nil {
		return nil, NewAssignmentError("delivery updated but order mirror failed", err)
	}

	s.logger.Info("Driver assigned",
		zap.String("delivery_id", delivery.ID),
		zap.String("order_id", orderID),
		zap.String("driver_id", driver.DriverID),
	)

	s.notify(ctx, models.TopicDeliveryAssigned, models.DeliveryAssignedEvent{
		EventType:  "delivery_assigned",
		DeliveryID: delivery.ID,
		OrderID:    orderID,
		DriverID:   driver.DriverID,
		Status:     delivery.Status,
		Timestamp:  now,
	})

	return delivery, nil
}

// mergeDriverDetails overlays the new assignment onto whatever driver
// details the order already carries, keeping populated fields that the new
// assignment does not supersede with non-empty values.
func mergeDriverDetails(existing *models.DriverDetails, driver models.DriverAssignment) models.DriverDetails {
	merged := models.DriverDetails{}
	if existing != nil {
		merged = *existing
	}
	merged.DriverID = driver.DriverID
	if driver.DriverName != "" {
		merged.DriverName = driver.DriverName
	}
	if driver.VehicleNumber != "" {
		merged.VehicleNumber = driver.VehicleNumber
	}
	return merged
}

// UpdateDelivery applies a partial update. A synthetic id materializes a
// real delivery from the backing order with the patch applied over
// defaults; a real id patches the stored record. Either way the resulting
// status is mirrored into the order and the caller gets the canonical
// post-update delivery, never the raw synthetic shape.
func (s *deliveryServiceImpl) UpdateDelivery(ctx context.Context, deliveryID string, patch models.DeliveryPatch) (*models.Delivery, *ServiceError) {
	deliveryID, verr := validateID(deliveryID, "delivery id")
	if verr != nil {
		return nil, verr
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, NewValidationError(fmt.Sprintf("invalid delivery status %q", *patch.Status))
	}

	if orderID, ok := ExtractOrderID(deliveryID); ok {
		orderID, verr := validateID(orderID, "order id")
		if verr != nil {
			return nil, verr
		}
		// A real delivery may have been materialized since the caller read
		// the synthetic view; at most one real delivery exists per order,
		// so route the patch to it instead of creating a second one.
		if existing, err := s.deliveries.FindByOrderID(ctx, orderID); err == nil {
			return s.updateReal(ctx, existing, patch)
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewInternalError("failed to look up delivery", err)
		}
		return s.materialize(ctx, orderID, patch)
	}

	delivery, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewDeliveryNotFoundError(deliveryID)
		}
		return nil, NewInternalError("failed to look up delivery", err)
	}
	return s.updateReal(ctx, delivery, patch)
}

// materialize turns a synthetic delivery into a real record, defaults
// overlaid with the patch.
func (s *deliveryServiceImpl) materialize(ctx context.Context, orderID string, patch models.DeliveryPatch) (*models.Delivery, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewDeliveryNotFoundError(SyntheticDeliveryID(orderID))
		}
		return nil, NewInternalError("failed to load order", err)
	}

	now := time.Now().UTC()
	delivery := &models.Delivery{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    models.DeliveryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if order.DriverDetails != nil {
		delivery.DriverID = order.DriverDetails.DriverID
	}

	if verr := applyPatch(delivery, patch, now); verr != nil {
		return nil, verr
	}

	if err := s.deliveries.Create(ctx, delivery); err != nil {
		return nil, NewInternalError("failed to materialize delivery", err)
	}

	s.logger.Info("Synthetic delivery materialized",
		zap.String("delivery_id", delivery.ID),
		zap.String("order_id", orderID),
		zap.String("status", string(delivery.Status)),
	)

	s.mirrorStatus(ctx, delivery)
	s.notifyUpdated(ctx, delivery)
	return delivery, nil
}

func (s *deliveryServiceImpl) updateReal(ctx context.Context, delivery *models.Delivery, patch models.DeliveryPatch) (*models.Delivery, *ServiceError) {
	if verr := applyPatch(delivery, patch, time.Now().UTC()); verr != nil {
		return nil, verr
	}

	if err := s.deliveries.Update(ctx, delivery); err != nil {
		return nil, NewInternalError("failed to update delivery", err)
	}

	s.mirrorStatus(ctx, delivery)
	s.notifyUpdated(ctx, delivery)
	return delivery, nil
}

// applyPatch overlays patch onto delivery, enforcing the lifecycle
// invariants: no transition out of a terminal state, and no progress past
// ACCEPTED without a driver.
func applyPatch(delivery *models.Delivery, patch models.DeliveryPatch, now time.Time) *ServiceError {
	if patch.DriverID != nil {
		delivery.DriverID = *patch.DriverID
	}
	if patch.Status != nil && *patch.Status != delivery.Status {
		next := *patch.Status
		if delivery.Status.Terminal() {
			return NewValidationError(fmt.Sprintf(
				"delivery is %s; no further status changes allowed", delivery.Status))
		}
		if (next == models.DeliveryStatusInProgress || next == models.DeliveryStatusDelivered) &&
			delivery.DriverID == "" {
			return NewValidationError(fmt.Sprintf(
				"cannot move delivery to %s without an assigned driver", next))
		}
		delivery.Status = next
		switch next {
		case models.DeliveryStatusAccepted:
			if delivery.AcceptedAt == nil {
				t := now
				delivery.AcceptedAt = &t
			}
		case models.DeliveryStatusDelivered:
			if delivery.DeliveredAt == nil {
				t := now
				delivery.DeliveredAt = &t
			}
		}
	}
	if patch.AcceptedAt != nil {
		delivery.AcceptedAt = patch.AcceptedAt
	}
	if patch.DeliveredAt != nil {
		delivery.DeliveredAt = patch.DeliveredAt
	}
	delivery.UpdatedAt = now
	return nil
}

// mirrorStatus writes the delivery's status into the linked order using
// the inverse status mapping. A missing or failing order never fails the
// delivery operation; the delivery DB was written first and holds the
// newer truth.
func (s *deliveryServiceImpl) mirrorStatus(ctx context.Context, delivery *models.Delivery) {
	orderStatus := MapDeliveryStatusToOrderStatus(delivery.Status)
	if err := s.orders.SetStatus(ctx, delivery.OrderID, orderStatus); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("Order missing during status mirror, skipping",
				zap.String("order_id", delivery.OrderID))
			return
		}
		s.logger.Warn("Failed to mirror delivery status into order",
			zap.String("order_id", delivery.OrderID),
			zap.String("order_status", orderStatus),
			zap.Error(err))
	}
}

func (s *deliveryServiceImpl) notifyUpdated(ctx context.Context, delivery *models.Delivery) {
	s.notify(ctx, models.TopicDeliveryUpdated, models.DeliveryUpdatedEvent{
		EventType:  "delivery_updated",
		DeliveryID: delivery.ID,
		OrderID:    delivery.OrderID,
		DriverID:   delivery.DriverID,
		Status:     delivery.Status,
		Timestamp:  delivery.UpdatedAt,
	})
}

// DeleteDelivery removes a real delivery. Synthetic ids have nothing to
// delete; they disappear once the backing order no longer needs synthesis.
func (s *deliveryServiceImpl) DeleteDelivery(ctx context.Context, deliveryID string) *ServiceError {
	deliveryID, verr := validateID(deliveryID, "delivery id")
	if verr != nil {
		return verr
	}
	if IsSyntheticDeliveryID(deliveryID) {
		return NewDeliveryNotFoundError(deliveryID)
	}

	count, err := s.deliveries.DeleteByID(ctx, deliveryID)
	if err != nil {
		return NewInternalError("failed to delete delivery", err)
	}
	if count == 0 {
		return NewDeliveryNotFoundError(deliveryID)
	}

	s.logger.Info("Delivery deleted", zap.String("delivery_id", deliveryID))
	return nil
}

// GetDeliveryByID resolves a real delivery first, then falls back to
// synthesizing from the order when the id carries the synthetic prefix.
func (s *deliveryServiceImpl) GetDeliveryByID(ctx context.Context, deliveryID string) (*models.Delivery, *ServiceError) {
	delivery, _, serr := s.resolve(ctx, deliveryID)
	if serr != nil {
		return nil, serr
	}
	return delivery, nil
}

// GetDeliveryWithOrderDetails returns the delivery together with its
// backing order. A real delivery whose order has vanished is a
// referential-integrity violation between the two stores.
func (s *deliveryServiceImpl) GetDeliveryWithOrderDetails(ctx context.Context, deliveryID string) (*models.DeliveryWithOrder, *ServiceError) {
	delivery, order, serr := s.resolve(ctx, deliveryID)
	if serr != nil {
		return nil, serr
	}
	if order == nil {
		var err error
		order, err = s.orders.FindByID(ctx, delivery.OrderID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, NewAssociatedOrderNotFoundError(delivery.OrderID)
			}
			return nil, NewInternalError("failed to load order", err)
		}
	}
	return &models.DeliveryWithOrder{Delivery: delivery, Order: order}, nil
}

// resolve looks up deliveryID as a real delivery, then as a synthetic one.
// order is non-nil only when synthesis already loaded it.
func (s *deliveryServiceImpl) resolve(ctx context.Context, deliveryID string) (*models.Delivery, *models.Order, *ServiceError) {
	deliveryID, verr := validateID(deliveryID, "delivery id")
	if verr != nil {
		return nil, nil, verr
	}

	delivery, err := s.deliveries.FindByID(ctx, deliveryID)
	if err == nil {
		return delivery, nil, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, NewInternalError("failed to look up delivery", err)
	}

	orderID, ok := ExtractOrderID(deliveryID)
	if !ok {
		return nil, nil, NewDeliveryNotFoundError(deliveryID)
	}
	orderID, verr = validateID(orderID, "order id")
	if verr != nil {
		return nil, nil, verr
	}

	// The order may have grown a real delivery since the synthetic id was
	// handed out; prefer it.
	if real, err := s.deliveries.FindByOrderID(ctx, orderID); err == nil {
		return real, nil, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, NewInternalError("failed to look up delivery", err)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, NewDeliveryNotFoundError(deliveryID)
		}
		return nil, nil, NewInternalError("failed to load order", err)
	}
	return SynthesizeDelivery(order), order, nil
}

// ListAllDeliveries merges every real delivery with synthetic entries for
// orders that have none. Exactly one entry per order id; no ordering
// guarantee.
func (s *deliveryServiceImpl) ListAllDeliveries(ctx context.Context) ([]models.Delivery, *ServiceError) {
	real, err := s.deliveries.FindAll(ctx)
	if err != nil {
		return nil, NewInternalError("failed to list deliveries", err)
	}
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, NewInternalError("failed to list orders", err)
	}
	return mergeWithSynthetic(orders, real), nil
}

// ListByCustomer lists real and synthetic deliveries for a customer's
// orders.
func (s *deliveryServiceImpl) ListByCustomer(ctx context.Context, customerID string) ([]models.Delivery, *ServiceError) {
	customerID, verr := validateID(customerID, "customer id")
	if verr != nil {
		return nil, verr
	}
	orders, err := s.orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, NewInternalError("failed to list orders", err)
	}
	return s.mergeForOrders(ctx, orders, nil)
}

// ListByDriver lists deliveries for a driver, matching both the delivery
// DB's driverId and every known order-side field variant.
func (s *deliveryServiceImpl) ListByDriver(ctx context.Context, driverID string) ([]models.Delivery, *ServiceError) {
	driverID, verr := validateID(driverID, "driver id")
	if verr != nil {
		return nil, verr
	}
	orders, err := s.orders.FindByDriver(ctx, driverID)
	if err != nil {
		return nil, NewInternalError("failed to list orders", err)
	}
	byDriver, err := s.deliveries.FindByDriverID(ctx, driverID)
	if err != nil {
		return nil, NewInternalError("failed to list deliveries", err)
	}
	return s.mergeForOrders(ctx, orders, byDriver)
}

// ListByRestaurant lists deliveries for a restaurant's orders.
func (s *deliveryServiceImpl) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Delivery, *ServiceError) {
	restaurantID, verr := validateID(restaurantID, "restaurant id")
	if verr != nil {
		return nil, verr
	}
	orders, err := s.orders.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, NewInternalError("failed to list orders", err)
	}
	return s.mergeForOrders(ctx, orders, nil)
}

// mergeForOrders fetches the real deliveries backing orders, adds extra
// (already-fetched) real deliveries, and fills the gaps with synthetics.
func (s *deliveryServiceImpl) mergeForOrders(ctx context.Context, orders []models.Order, extra []models.Delivery) ([]models.Delivery, *ServiceError) {
	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.OrderID)
	}
	real, err := s.deliveries.FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, NewInternalError("failed to list deliveries", err)
	}
	return mergeWithSynthetic(orders, append(real, extra...)), nil
}

// mergeWithSynthetic de-duplicates by order id: a real delivery always
// suppresses the synthetic counterpart for the same order, and duplicate
// real rows (the known check-then-create race) collapse to the first seen.
func mergeWithSynthetic(orders []models.Order, real []models.Delivery) []models.Delivery {
	out := make([]models.Delivery, 0, len(orders)+len(real))
	seen := make(map[string]bool, len(real))
	for _, d := range real {
		if seen[d.OrderID] {
			continue
		}
		seen[d.OrderID] = true
		out = append(out, d)
	}
	for i := range orders {
		if seen[orders[i].OrderID] {
			continue
		}
		seen[orders[i].OrderID] = true
		out = append(out, *SynthesizeDelivery(&orders[i]))
	}
	return out
}

// BroadcastOrderRequest pushes a newly created order to available drivers
// through the realtime channel. Best-effort, like every notification.
func (s *deliveryServiceImpl) BroadcastOrderRequest(ctx context.Context, evt models.OrderEvent) {
	s.notify(ctx, models.TopicOrderRequest, evt)
}

// notify publishes to the realtime bus and, when configured, to SNS. Both
// are fire-and-forget: failures are logged and swallowed.
func (s *deliveryServiceImpl) notify(ctx context.Context, topic string, payload interface{}) {
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, topic, payload); err != nil {
			s.logger.Error("Failed to publish realtime event",
				zap.String("topic", topic), zap.Error(err))
		}
	}
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, b); err != nil {
		s.logger.Error("Failed to publish SNS event", zap.Error(err))
	}
}
