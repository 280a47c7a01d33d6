package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LocationDB is the Postgres connection used for driver location
// snapshots. It is optional: when Postgres is not configured the live
// location channel simply skips write-through.
var LocationDB *gorm.DB

// ConnectLocation opens the snapshot database.
func ConnectLocation(host, port, user, password, dbName, sslMode string) error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbName, port, sslMode)

	var err error
	LocationDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Println("Failed to connect to Postgres:", err)
		return err
	}

	log.Println("Connected to Postgres")
	return nil
}
