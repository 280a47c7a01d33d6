package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the delivery service.
type Config struct {
	Port string

	// Delivery DB, owned by this service.
	DeliveryMongoURL string
	DeliveryMongoDB  string

	// Order DB, owned by order-service. Read plus narrow status/driver
	// writes only.
	OrderMongoURL string
	OrderMongoDB  string

	RedisURL string

	// Optional Postgres for driver location snapshots.
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Order event intake.
	KafkaBrokers     []string
	KafkaOrdersTopic string
	KafkaGroupID     string

	DeliverySNSTopicARN string

	OSRMUpstreamURL string
}

// LocationEnabled reports whether the Postgres snapshot store is
// configured.
func (c *Config) LocationEnabled() bool {
	return c.PostgresHost != "" && c.PostgresUser != "" && c.PostgresDB != ""
}

// KafkaEnabled reports whether order event intake is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaOrdersTopic != ""
}

// LoadConfig reads configuration from the environment, with a local .env
// file as a development convenience.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8095"),
		DeliveryMongoURL: os.Getenv("DELIVERY_MONGO_URL"),
		DeliveryMongoDB:  getEnv("DELIVERY_MONGO_DB", "deliverydb"),
		OrderMongoURL:    os.Getenv("ORDER_MONGO_URL"),
		OrderMongoDB:     getEnv("ORDER_MONGO_DB", "orderdb"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),

		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		KafkaOrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "order-events"),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "delivery-service"),

		DeliverySNSTopicARN: os.Getenv("DELIVERY_SNS_TOPIC_ARN"),

		OSRMUpstreamURL: getEnv("OSRM_UPSTREAM_URL", "http://router.project-osrm.org"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.DeliveryMongoURL == "" || cfg.OrderMongoURL == "" {
		return nil, fmt.Errorf("DELIVERY_MONGO_URL and ORDER_MONGO_URL are required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
