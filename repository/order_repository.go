package repository

import (
	"context"
	"time"

	"delivery-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Field-name variants observed in the order DB for driver and restaurant
// references. Older documents predate the nested driverDetails shape, so
// lookups match every known variant in one $or. Kept here, in one place,
// rather than duplicated per query.
var (
	driverIDFields     = []string{"driverDetails.driverId", "driverId", "driver.id", "driver._id"}
	restaurantIDFields = []string{"restaurantId", "restaurant.id", "restaurant._id"}
)

// OrderRepository defines read/mirror access to the order-service DB.
// This service never creates or deletes orders; the only writes are the
// status and driverDetails mirrors.
type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	FindByDriver(ctx context.Context, driverID string) ([]models.Order, error)
	FindByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error)
	SetStatus(ctx context.Context, orderID, orderStatus string) error
	SetStatusAndDriver(ctx context.Context, orderID, orderStatus string, driver models.DriverDetails) error
}

// MongoOrderRepository implements OrderRepository on the order DB.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var o models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MongoOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"customerId": customerID})
}

func (r *MongoOrderRepository) FindByDriver(ctx context.Context, driverID string) ([]models.Order, error) {
	return r.find(ctx, orFilter(driverIDFields, driverID))
}

func (r *MongoOrderRepository) FindByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return r.find(ctx, orFilter(restaurantIDFields, restaurantID))
}

func (r *MongoOrderRepository) SetStatus(ctx context.Context, orderID, orderStatus string) error {
	update := bson.M{"$set": bson.M{
		"orderStatus": orderStatus,
		"updatedAt":   time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoOrderRepository) SetStatusAndDriver(ctx context.Context, orderID, orderStatus string, driver models.DriverDetails) error {
	update := bson.M{"$set": bson.M{
		"orderStatus":   orderStatus,
		"driverDetails": driver,
		"updatedAt":     time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// orFilter builds a $or filter matching id against each field variant.
func orFilter(fields []string, id string) bson.M {
	clauses := make([]bson.M, 0, len(fields))
	for _, f := range fields {
		clauses = append(clauses, bson.M{f: id})
	}
	return bson.M{"$or": clauses}
}
