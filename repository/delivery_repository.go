package repository

import (
	"context"
	"time"

	"delivery-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DeliveryRepository defines data-access operations for deliveries.
// Lookups return mongo.ErrNoDocuments on a miss; the service layer
// translates driver errors into the typed taxonomy.
type DeliveryRepository interface {
	Create(ctx context.Context, d *models.Delivery) error
	FindByID(ctx context.Context, id string) (*models.Delivery, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error)
	FindByDriverID(ctx context.Context, driverID string) ([]models.Delivery, error)
	FindByOrderIDs(ctx context.Context, orderIDs []string) ([]models.Delivery, error)
	FindAll(ctx context.Context) ([]models.Delivery, error)
	Update(ctx context.Context, d *models.Delivery) error
	DeleteByID(ctx context.Context, id string) (int64, error)
}

// MongoDeliveryRepository implements DeliveryRepository on the delivery DB.
type MongoDeliveryRepository struct {
	collection *mongo.Collection
}

// NewMongoDeliveryRepository creates a new MongoDeliveryRepository.
func NewMongoDeliveryRepository(db *mongo.Database) DeliveryRepository {
	return &MongoDeliveryRepository{collection: db.Collection("deliveries")}
}

func (r *MongoDeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	_, err := r.collection.InsertOne(ctx, d)
	return err
}

func (r *MongoDeliveryRepository) FindByID(ctx context.Context, id string) (*models.Delivery, error) {
	var d models.Delivery
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *MongoDeliveryRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error) {
	var d models.Delivery
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *MongoDeliveryRepository) FindByDriverID(ctx context.Context, driverID string) ([]models.Delivery, error) {
	return r.find(ctx, bson.M{"driverId": driverID})
}

func (r *MongoDeliveryRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) ([]models.Delivery, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"orderId": bson.M{"$in": orderIDs}})
}

func (r *MongoDeliveryRepository) FindAll(ctx context.Context) ([]models.Delivery, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoDeliveryRepository) Update(ctx context.Context, d *models.Delivery) error {
	d.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoDeliveryRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *MongoDeliveryRepository) find(ctx context.Context, filter bson.M) ([]models.Delivery, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var deliveries []models.Delivery
	if err = cursor.All(ctx, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}
