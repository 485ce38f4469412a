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

// Compile-time check to ensure ClaimRepository implements the interface
var _ repositories.ClaimRepository = (*ClaimRepository)(nil)

// ClaimRepository handles MongoDB operations for Claim
type ClaimRepository struct {
	collection *mongo.Collection
}

// NewClaimRepository creates a new ClaimRepository
func NewClaimRepository(db *mongo.Database) *ClaimRepository {
	return &ClaimRepository{
		collection: db.Collection("claims"),
	}
}

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	claim.ID = primitive.NewObjectID()
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, claim)
	return err
}

// FindByID finds a claim by ID
func (r *ClaimRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Claim, error) {
	var claim models.Claim
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&claim)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// FindByListing retrieves every claim ever made against a listing,
// including cancelled and rejected ones
func (r *ClaimRepository) FindByListing(ctx context.Context, listingID primitive.ObjectID) ([]*models.Claim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "claimedAt", Value: -1}})
	return r.find(ctx, bson.M{"listingId": listingID}, opts)
}

// FindActiveByListing returns the one claim currently holding the listing,
// or models.ErrNotFound when none does
func (r *ClaimRepository) FindActiveByListing(ctx context.Context, listingID primitive.ObjectID) (*models.Claim, error) {
	filter := bson.M{
		"listingId": listingID,
		"status":    bson.M{"$in": []models.ClaimStatus{models.ClaimStatusPending, models.ClaimStatusClaimed}},
	}
	var claim models.Claim
	err := r.collection.FindOne(ctx, filter).Decode(&claim)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// FindByClaimant retrieves all claims made by a recipient
func (r *ClaimRepository) FindByClaimant(ctx context.Context, claimantEmail string) ([]*models.Claim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "claimedAt", Value: -1}})
	return r.find(ctx, bson.M{"claimantEmail": claimantEmail}, opts)
}

// FindPendingVolunteer retrieves claims waiting for a volunteer to accept
func (r *ClaimRepository) FindPendingVolunteer(ctx context.Context) ([]*models.Claim, error) {
	filter := bson.M{
		"status":           models.ClaimStatusClaimed,
		"collectionMethod": models.CollectionMethodVolunteer,
		"deliveryId":       bson.M{"$exists": false},
	}
	return r.find(ctx, filter, nil)
}

// FindByStatus retrieves claims by status
func (r *ClaimRepository) FindByStatus(ctx context.Context, status models.ClaimStatus) ([]*models.Claim, error) {
	return r.find(ctx, bson.M{"status": status}, nil)
}

// UpdateIfStatus applies set/unset only when the claim's current status is
// one of expected
func (r *ClaimRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.ClaimStatus, set bson.M, unset bson.M) error {
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

// AssignVolunteer links a delivery assignment to a claim. The filter
// requires CLAIMED status, volunteer method, and no existing assignment, so
// a racing volunteer's write matches nothing instead of overwriting.
func (r *ClaimRepository) AssignVolunteer(ctx context.Context, claimID, deliveryID primitive.ObjectID, volunteerEmail string) error {
	filter := bson.M{
		"_id":              claimID,
		"status":           models.ClaimStatusClaimed,
		"collectionMethod": models.CollectionMethodVolunteer,
		"deliveryId":       bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"deliveryId":     deliveryID,
		"volunteerEmail": volunteerEmail,
		"updatedAt":      time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

func (r *ClaimRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Claim, error) {
	var claims []*models.Claim
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &claims); err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []*models.Claim{}
	}
	return claims, nil
}
