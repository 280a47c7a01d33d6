package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// DeliveryClient / DeliveryDB hold the connection to this service's
	// own database.
	DeliveryClient *mongo.Client
	DeliveryDB     *mongo.Database

	// OrderClient / OrderDB hold a separate connection to the database
	// owned by order-service. The two are independent deployments; no
	// transaction ever spans both.
	OrderClient *mongo.Client
	OrderDB     *mongo.Database
)

// ConnectDelivery connects to the delivery database.
func ConnectDelivery(mongoURL, dbName string) error {
	client, db, err := connect(mongoURL, dbName)
	if err != nil {
		return err
	}
	DeliveryClient = client
	DeliveryDB = db
	log.Println("Connected to delivery MongoDB")
	return nil
}

// ConnectOrder connects to the order-service database.
func ConnectOrder(mongoURL, dbName string) error {
	client, db, err := connect(mongoURL, dbName)
	if err != nil {
		return err
	}
	OrderClient = client
	OrderDB = db
	log.Println("Connected to order MongoDB")
	return nil
}

func connect(mongoURL, dbName string) (*mongo.Client, *mongo.Database, error) {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURL)

	client, err := mongo.Connect(timeoutCtx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, client.Database(dbName), nil
}

// Close disconnects both Mongo clients.
func Close() error {
	disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer disconnectCancel()

	for _, client := range []*mongo.Client{DeliveryClient, OrderClient} {
		if client == nil {
			continue
		}
		if err := client.Disconnect(disconnectCtx); err != nil {
			return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
		}
	}
	log.Println("Disconnected from MongoDB")
	return nil
}
