package repositories

import (
	"context"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs a function inside a single multi-document transaction. Every
// lifecycle transition goes through it so that a failed write leaves no
// partial state behind.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ListingRepository defines the interface for listing data operations
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	FindAvailable(ctx context.Context, farmerEligibleOnly bool) ([]*models.Listing, error)
	FindByDonor(ctx context.Context, donorEmail string) ([]*models.Listing, error)
	FindByStatus(ctx context.Context, status models.ListingStatus) ([]*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	// UpdateIfStatus applies set/unset only when the listing currently has
	// the expected status. Returns models.ErrInvalidTransition when the
	// status check fails at commit time.
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.ListingStatus, set bson.M, unset bson.M) error
	Count(ctx context.Context) (int64, error)
}

// ClaimRepository defines the interface for claim data operations
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Claim, error)
	FindByListing(ctx context.Context, listingID primitive.ObjectID) ([]*models.Claim, error)
	FindActiveByListing(ctx context.Context, listingID primitive.ObjectID) (*models.Claim, error)
	FindByClaimant(ctx context.Context, claimantEmail string) ([]*models.Claim, error)
	// FindPendingVolunteer returns claims waiting for a volunteer: method
	// is "volunteer" and no assignment exists yet.
	FindPendingVolunteer(ctx context.Context) ([]*models.Claim, error)
	FindByStatus(ctx context.Context, status models.ClaimStatus) ([]*models.Claim, error)
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.ClaimStatus, set bson.M, unset bson.M) error
	// AssignVolunteer links a delivery assignment to a claim, but only while
	// the claim is CLAIMED with method "volunteer" and no assignment yet.
	// Returns models.ErrInvalidTransition when another volunteer won the race.
	AssignVolunteer(ctx context.Context, claimID, deliveryID primitive.ObjectID, volunteerEmail string) error
}

// DeliveryRepository defines the interface for delivery-assignment data operations
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.DeliveryAssignment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DeliveryAssignment, error)
	FindByClaim(ctx context.Context, claimID primitive.ObjectID) (*models.DeliveryAssignment, error)
	FindByVolunteer(ctx context.Context, volunteerEmail string) ([]*models.DeliveryAssignment, error)
	FindOpen(ctx context.Context) ([]*models.DeliveryAssignment, error)
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.DeliveryStatus, set bson.M, unset bson.M) error
}

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error)
	FindRoomByParticipants(ctx context.Context, donorEmail, recipientEmail string, donationID primitive.ObjectID) (*models.ChatRoom, error)
	FindRoomsByUser(ctx context.Context, email string) ([]*models.ChatRoom, error)
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	MessagesSince(ctx context.Context, roomID primitive.ObjectID, since time.Time) ([]*models.ChatMessage, error)
	MarkRead(ctx context.Context, roomID primitive.ObjectID, readerEmail string) error
	// WatchMessages opens a change stream over new messages in a room. The
	// caller owns the stream and must close it when the view goes away.
	WatchMessages(ctx context.Context, roomID primitive.ObjectID) (*mongo.ChangeStream, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}
