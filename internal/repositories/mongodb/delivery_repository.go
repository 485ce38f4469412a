package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure DeliveryRepository implements the interface
var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

// DeliveryRepository handles MongoDB operations for DeliveryAssignment
type DeliveryRepository struct {
	collection *mongo.Collection
}

// NewDeliveryRepository creates a new DeliveryRepository
func NewDeliveryRepository(db *mongo.Database) *DeliveryRepository {
	return &DeliveryRepository{
		collection: db.Collection("delivery_assignments"),
	}
}

// Create inserts a new delivery assignment
func (r *DeliveryRepository) Create(ctx context.Context, delivery *models.DeliveryAssignment) error {
	delivery.ID = primitive.NewObjectID()
	delivery.CreatedAt = time.Now()
	delivery.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, delivery)
	return err
}

// FindByID finds a delivery assignment by ID
func (r *DeliveryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DeliveryAssignment, error) {
	var delivery models.DeliveryAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&delivery)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &delivery, nil
}

// FindByClaim returns the non-cancelled assignment for a claim, or
// models.ErrNotFound when none exists
func (r *DeliveryRepository) FindByClaim(ctx context.Context, claimID primitive.ObjectID) (*models.DeliveryAssignment, error) {
	filter := bson.M{
		"claimId": claimID,
		"status":  bson.M{"$ne": models.DeliveryStatusCancelled},
	}
	var delivery models.DeliveryAssignment
	err := r.collection.FindOne(ctx, filter).Decode(&delivery)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &delivery, nil
}

// FindByVolunteer retrieves all assignments accepted by a volunteer
func (r *DeliveryRepository) FindByVolunteer(ctx context.Context, volunteerEmail string) ([]*models.DeliveryAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})
	return r.find(ctx, bson.M{"volunteerEmail": volunteerEmail}, opts)
}

// FindOpen retrieves assignments still in progress
func (r *DeliveryRepository) FindOpen(ctx context.Context) ([]*models.DeliveryAssignment, error) {
	filter := bson.M{
		"status": bson.M{"$in": []models.DeliveryStatus{models.DeliveryStatusAssigned, models.DeliveryStatusPickedUp}},
	}
	return r.find(ctx, filter, nil)
}

// UpdateIfStatus applies set/unset only when the assignment's current status
// is one of expected
func (r *DeliveryRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.DeliveryStatus, set bson.M, unset bson.M) error {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": expected},
	}
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = time.Now()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

func (r *DeliveryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.DeliveryAssignment, error) {
	var deliveries []*models.DeliveryAssignment
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &deliveries); err != nil {
		return nil, err
	}
	if deliveries == nil {
		deliveries = []*models.DeliveryAssignment{}
	}
	return deliveries, nil
}
