package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"delivery-service/models"
	"delivery-service/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// driverChannel returns the pub/sub channel carrying one driver's live
// position stream.
func driverChannel(driverID string) string {
	return fmt.Sprintf("driver:%s:location", driverID)
}

// LocationHub fans driver position updates through Redis pub/sub and keeps
// the last seen position per driver in memory. When a snapshot repository
// is configured, updates are also written through asynchronously so the
// last known position survives restarts.
type LocationHub struct {
	client    *redis.Client
	snapshots repository.LocationSnapshotRepository
	logger    *zap.Logger

	mu       sync.RWMutex
	lastSeen map[string]models.DriverLocation
	subs     map[string]*driverSubscription
	closed   bool
}

type driverSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func NewLocationHub(client *redis.Client, snapshots repository.LocationSnapshotRepository, logger *zap.Logger) *LocationHub {
	return &LocationHub{
		client:    client,
		snapshots: snapshots,
		logger:    logger,
		lastSeen:  make(map[string]models.DriverLocation),
		subs:      make(map[string]*driverSubscription),
	}
}

// Publish records an incoming position update and broadcasts it on the
// driver's channel. The in-memory cache is updated first so Latest never
// lags behind what was accepted, even when Redis is down.
func (h *LocationHub) Publish(ctx context.Context, loc models.DriverLocation) error {
	if loc.Timestamp.IsZero() {
		loc.Timestamp = time.Now().UTC()
	}

	h.mu.Lock()
	h.lastSeen[loc.DriverID] = loc
	h.mu.Unlock()

	if h.snapshots != nil {
		go h.writeSnapshot(loc)
	}

	b, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, driverChannel(loc.DriverID), b).Err()
}

func (h *LocationHub) writeSnapshot(loc models.DriverLocation) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap := &models.DriverLocationSnapshot{
		DriverID:   loc.DriverID,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		RecordedAt: loc.Timestamp,
	}
	if err := h.snapshots.Create(ctx, snap); err != nil {
		h.logger.Warn("Failed to persist location snapshot",
			zap.String("driver_id", loc.DriverID), zap.Error(err))
	}
}

// Subscribe starts consuming a driver's channel and delivering decoded
// updates to fn until Unsubscribe or Close. Subscribing twice for the
// same driver replaces the previous consumer.
func (h *LocationHub) Subscribe(ctx context.Context, driverID string, fn func(models.DriverLocation)) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return fmt.Errorf("location hub closed")
	}
	if prev, ok := h.subs[driverID]; ok {
		prev.cancel()
		prev.pubsub.Close()
		delete(h.subs, driverID)
	}

	pubsub := h.client.Subscribe(ctx, driverChannel(driverID))
	subCtx, cancel := context.WithCancel(ctx)
	h.subs[driverID] = &driverSubscription{pubsub: pubsub, cancel: cancel}
	h.mu.Unlock()

	go h.consume(subCtx, driverID, pubsub, fn)
	return nil
}

func (h *LocationHub) consume(ctx context.Context, driverID string, pubsub *redis.PubSub, fn func(models.DriverLocation)) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var loc models.DriverLocation
			if err := json.Unmarshal([]byte(msg.Payload), &loc); err != nil {
				h.logger.Warn("Dropping malformed location update",
					zap.String("driver_id", driverID), zap.Error(err))
				continue
			}
			h.mu.Lock()
			h.lastSeen[loc.DriverID] = loc
			h.mu.Unlock()
			fn(loc)
		}
	}
}

// Unsubscribe stops the consumer for a driver, if any.
func (h *LocationHub) Unsubscribe(driverID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[driverID]; ok {
		sub.cancel()
		sub.pubsub.Close()
		delete(h.subs, driverID)
	}
}

// Latest returns the driver's most recent known position, falling back to
// the persisted snapshot when this process has not seen an update yet.
func (h *LocationHub) Latest(ctx context.Context, driverID string) (models.DriverLocation, bool) {
	h.mu.RLock()
	loc, ok := h.lastSeen[driverID]
	h.mu.RUnlock()
	if ok {
		return loc, true
	}

	if h.snapshots == nil {
		return models.DriverLocation{}, false
	}
	snap, err := h.snapshots.LatestByDriver(ctx, driverID)
	if err != nil {
		return models.DriverLocation{}, false
	}
	return models.DriverLocation{
		DriverID:  snap.DriverID,
		Latitude:  snap.Latitude,
		Longitude: snap.Longitude,
		Timestamp: snap.RecordedAt,
	}, true
}

// Close tears down every live subscription.
func (h *LocationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, sub := range h.subs {
		sub.cancel()
		sub.pubsub.Close()
		delete(h.subs, id)
	}
}
