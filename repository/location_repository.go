package repository

import (
	"context"

	"delivery-service/models"

	"gorm.io/gorm"
)

// LocationSnapshotRepository persists driver position snapshots.
type LocationSnapshotRepository interface {
	Create(ctx context.Context, snap *models.DriverLocationSnapshot) error
	LatestByDriver(ctx context.Context, driverID string) (*models.DriverLocationSnapshot, error)
}

// GormLocationSnapshotRepository implements LocationSnapshotRepository
// using GORM.
type GormLocationSnapshotRepository struct {
	db *gorm.DB
}

// NewGormLocationSnapshotRepository creates a new GormLocationSnapshotRepository.
func NewGormLocationSnapshotRepository(db *gorm.DB) LocationSnapshotRepository {
	return &GormLocationSnapshotRepository{db: db}
}

func (r *GormLocationSnapshotRepository) Create(ctx context.Context, snap *models.DriverLocationSnapshot) error {
	return r.db.WithContext(ctx).Create(snap).Error
}

func (r *GormLocationSnapshotRepository) LatestByDriver(ctx context.Context, driverID string) (*models.DriverLocationSnapshot, error) {
	var snap models.DriverLocationSnapshot
	if err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("recorded_at DESC").
		First(&snap).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}
