package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"delivery-service/models"
	"delivery-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestCreateSnapshot_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormLocationSnapshotRepository(gormDB)

	snap := &models.DriverLocationSnapshot{
		DriverID:   "driver-9",
		Latitude:   12.9716,
		Longitude:  77.5946,
		RecordedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "driver_location_snapshots"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), snap)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestByDriver_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormLocationSnapshotRepository(gormDB)

	id := uuid.New()
	recorded := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "driver_id", "latitude", "longitude", "recorded_at", "created_at"}).
		AddRow(id, "driver-9", 12.9716, 77.5946, recorded, recorded)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "driver_location_snapshots"`)).
		WillReturnRows(rows)

	snap, err := repo.LatestByDriver(context.Background(), "driver-9")
	assert.NoError(t, err)
	assert.Equal(t, "driver-9", snap.DriverID)
	assert.Equal(t, 12.9716, snap.Latitude)
}

func TestLatestByDriver_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormLocationSnapshotRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "driver_location_snapshots"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	snap, err := repo.LatestByDriver(context.Background(), "driver-9")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, snap)
}
