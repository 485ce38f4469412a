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

// Compile-time check to ensure ListingRepository implements the interface
var _ repositories.ListingRepository = (*ListingRepository)(nil)

// ListingRepository handles MongoDB operations for Listing
type ListingRepository struct {
	collection *mongo.Collection
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection("listings"),
	}
}

// Create inserts a new listing
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	listing.ID = primitive.NewObjectID()
	listing.Status = models.ListingStatusUnclaimed
	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, listing)
	return err
}

// FindByID finds a listing by ID
func (r *ListingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindAvailable retrieves listings open for claiming, newest first
func (r *ListingRepository) FindAvailable(ctx context.Context, farmerEligibleOnly bool) ([]*models.Listing, error) {
	filter := bson.M{"status": models.ListingStatusUnclaimed}
	if farmerEligibleOnly {
		filter["farmerEligible"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, filter, opts)
}

// FindByDonor retrieves all listings posted by a donor
func (r *ListingRepository) FindByDonor(ctx context.Context, donorEmail string) ([]*models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"donorEmail": donorEmail}, opts)
}

// FindByStatus retrieves listings by status
func (r *ListingRepository) FindByStatus(ctx context.Context, status models.ListingStatus) ([]*models.Listing, error) {
	return r.find(ctx, bson.M{"status": status}, nil)
}

// Update updates an existing listing
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	listing.UpdatedAt = time.Now()
	filter := bson.M{"_id": listing.ID}
	update := bson.M{"$set": listing}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// UpdateIfStatus applies set/unset only when the listing's current status is
// one of expected. The status check happens in the update filter, so under a
// transaction a concurrent transition makes this fail rather than overwrite.
func (r *ListingRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.ListingStatus, set bson.M, unset bson.M) error {
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

// Count gets the total number of listings
func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Listing, error) {
	var listings []*models.Listing
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &listings); err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	return listings, nil
}
