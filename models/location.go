package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverLocation is a live driver position pushed through the location
// channel. It is never persisted as-is.
type DriverLocation struct {
	DriverID  string    `json:"driver_id"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// DriverLocationSnapshot is the best-effort Postgres record written behind
// the live channel for after-the-fact map display.
type DriverLocationSnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DriverID   string    `gorm:"type:varchar(128);not null;index" json:"driver_id"`
	Latitude   float64   `gorm:"not null" json:"latitude"`
	Longitude  float64   `gorm:"not null" json:"longitude"`
	RecordedAt time.Time `gorm:"not null;index" json:"recorded_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
