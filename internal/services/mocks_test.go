package services

import (
	"context"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/pkg/functions"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// passthroughTx runs the transaction body directly; conditional-update
// failures inside it stand in for aborted transactions
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) FindAvailable(ctx context.Context, farmerEligibleOnly bool) ([]*models.Listing, error) {
	args := m.Called(ctx, farmerEligibleOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByDonor(ctx context.Context, donorEmail string) ([]*models.Listing, error) {
	args := m.Called(ctx, donorEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByStatus(ctx context.Context, status models.ListingStatus) ([]*models.Listing, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.ListingStatus, set bson.M, unset bson.M) error {
	args := m.Called(ctx, id, expected, set, unset)
	return args.Error(0)
}

func (m *MockListingRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	args := m.Called(ctx, claim)
	if args.Error(0) == nil {
		claim.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockClaimRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindByListing(ctx context.Context, listingID primitive.ObjectID) ([]*models.Claim, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindActiveByListing(ctx context.Context, listingID primitive.ObjectID) (*models.Claim, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindByClaimant(ctx context.Context, claimantEmail string) ([]*models.Claim, error) {
	args := m.Called(ctx, claimantEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindPendingVolunteer(ctx context.Context) ([]*models.Claim, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindByStatus(ctx context.Context, status models.ClaimStatus) ([]*models.Claim, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.ClaimStatus, set bson.M, unset bson.M) error {
	args := m.Called(ctx, id, expected, set, unset)
	return args.Error(0)
}

func (m *MockClaimRepository) AssignVolunteer(ctx context.Context, claimID, deliveryID primitive.ObjectID, volunteerEmail string) error {
	args := m.Called(ctx, claimID, deliveryID, volunteerEmail)
	return args.Error(0)
}

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Create(ctx context.Context, delivery *models.DeliveryAssignment) error {
	args := m.Called(ctx, delivery)
	if args.Error(0) == nil {
		delivery.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockDeliveryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DeliveryAssignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryAssignment), args.Error(1)
}

func (m *MockDeliveryRepository) FindByClaim(ctx context.Context, claimID primitive.ObjectID) (*models.DeliveryAssignment, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryAssignment), args.Error(1)
}

func (m *MockDeliveryRepository) FindByVolunteer(ctx context.Context, volunteerEmail string) ([]*models.DeliveryAssignment, error) {
	args := m.Called(ctx, volunteerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeliveryAssignment), args.Error(1)
}

func (m *MockDeliveryRepository) FindOpen(ctx context.Context) ([]*models.DeliveryAssignment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeliveryAssignment), args.Error(1)
}

func (m *MockDeliveryRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, expected []models.DeliveryStatus, set bson.M, unset bson.M) error {
	args := m.Called(ctx, id, expected, set, unset)
	return args.Error(0)
}

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	args := m.Called(ctx, room)
	if args.Error(0) == nil {
		room.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockChatRepository) FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockChatRepository) FindRoomByParticipants(ctx context.Context, donorEmail, recipientEmail string, donationID primitive.ObjectID) (*models.ChatRoom, error) {
	args := m.Called(ctx, donorEmail, recipientEmail, donationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockChatRepository) FindRoomsByUser(ctx context.Context, email string) ([]*models.ChatRoom, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatRoom), args.Error(1)
}

func (m *MockChatRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockChatRepository) MessagesSince(ctx context.Context, roomID primitive.ObjectID, since time.Time) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, roomID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) MarkRead(ctx context.Context, roomID primitive.ObjectID, readerEmail string) error {
	args := m.Called(ctx, roomID, readerEmail)
	return args.Error(0)
}

func (m *MockChatRepository) WatchMessages(ctx context.Context, roomID primitive.ObjectID) (*mongo.ChangeStream, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.ChangeStream), args.Error(1)
}

type MockFunctionsClient struct {
	mock.Mock
}

func (m *MockFunctionsClient) CreateChatRoom(token, donorEmail, recipientEmail, donationID string) (*functions.ChatRoomResult, error) {
	args := m.Called(token, donorEmail, recipientEmail, donationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*functions.ChatRoomResult), args.Error(1)
}

func (m *MockFunctionsClient) SendMessage(token, chatRoomID, message, senderName, senderRole string) (*functions.MessageResult, error) {
	args := m.Called(token, chatRoomID, message, senderName, senderRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*functions.MessageResult), args.Error(1)
}
