package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/pkg/functions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newChatFixture() (*ChatService, *MockChatRepository, *MockFunctionsClient) {
	chatRepo := new(MockChatRepository)
	fns := new(MockFunctionsClient)
	svc := NewChatService(chatRepo, fns, DefaultDedupeWindow, 0)
	return svc, chatRepo, fns
}

func chatRoom(roomID primitive.ObjectID) *models.ChatRoom {
	return &models.ChatRoom{
		ID:             roomID,
		DonorEmail:     "donor@x.org",
		RecipientEmail: "ngo@x.org",
		DonationID:     primitive.NewObjectID(),
	}
}

func TestEnsureRoom_ReturnsExisting(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	donationID := primitive.NewObjectID()
	existing := chatRoom(primitive.NewObjectID())

	chatRepo.On("FindRoomByParticipants", ctx, "donor@x.org", "ngo@x.org", donationID).Return(existing, nil)

	room, err := svc.EnsureRoom(ctx, "token", "donor@x.org", "ngo@x.org", donationID)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, room.ID)
	fns.AssertNotCalled(t, "CreateChatRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureRoom_CreatesOnFirstUse(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	donationID := primitive.NewObjectID()

	chatRepo.On("FindRoomByParticipants", ctx, "donor@x.org", "ngo@x.org", donationID).Return(nil, models.ErrNotFound)
	fns.On("CreateChatRoom", "token", "donor@x.org", "ngo@x.org", donationID.Hex()).
		Return(&functions.ChatRoomResult{RoomID: "remote-1"}, nil)
	chatRepo.On("CreateRoom", ctx, mock.Anything).Return(nil)

	room, err := svc.EnsureRoom(ctx, "token", "donor@x.org", "ngo@x.org", donationID)

	require.NoError(t, err)
	assert.Equal(t, donationID, room.DonationID)
	chatRepo.AssertExpectations(t)
}

func TestEnsureRoom_NetworkFailureIsTransient(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	donationID := primitive.NewObjectID()

	chatRepo.On("FindRoomByParticipants", ctx, "donor@x.org", "ngo@x.org", donationID).Return(nil, models.ErrNotFound)
	fns.On("CreateChatRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &functions.NetworkError{Err: errors.New("connection refused")})

	_, err := svc.EnsureRoom(ctx, "token", "donor@x.org", "ngo@x.org", donationID)

	assert.True(t, models.IsTransient(err))
	chatRepo.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestSend_ConfirmsWithServerTimestamp(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	roomID := primitive.NewObjectID()
	serverTS := time.Now().Add(2 * time.Second).UnixMilli()

	chatRepo.On("FindRoomByID", ctx, roomID).Return(chatRoom(roomID), nil)
	fns.On("SendMessage", "token", roomID.Hex(), "on my way", "Food Rescue", "ngo").
		Return(&functions.MessageResult{MessageID: "m1", Timestamp: serverTS}, nil)
	chatRepo.On("AppendMessage", ctx, mock.MatchedBy(func(msg *models.ChatMessage) bool {
		return int64(msg.Timestamp) == serverTS && msg.Sender == "ngo@x.org"
	})).Return(nil)

	sender := &models.User{Email: "ngo@x.org", Name: "Food Rescue", Role: models.RoleNGO}
	msg, err := svc.Send(ctx, "token", roomID, sender, "on my way")

	require.NoError(t, err)
	assert.Equal(t, models.OptimisticSent, msg.State)
	assert.NotEmpty(t, msg.LocalID)
	chatRepo.AssertExpectations(t)
}

func TestSend_NonParticipantForbidden(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	chatRepo.On("FindRoomByID", ctx, roomID).Return(chatRoom(roomID), nil)

	sender := &models.User{Email: "stranger@x.org", Role: models.RoleNGO}
	_, err := svc.Send(ctx, "token", roomID, sender, "hi")

	assert.ErrorIs(t, err, models.ErrForbidden)
	fns.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_NetworkFailureMarksFailed(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	roomID := primitive.NewObjectID()

	chatRepo.On("FindRoomByID", ctx, roomID).Return(chatRoom(roomID), nil)
	fns.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &functions.NetworkError{Err: errors.New("timeout")})

	sender := &models.User{Email: "ngo@x.org", Name: "Food Rescue", Role: models.RoleNGO}
	msg, err := svc.Send(ctx, "token", roomID, sender, "hi")

	assert.True(t, models.IsTransient(err))
	require.NotNil(t, msg)
	assert.Equal(t, models.OptimisticFailed, msg.State)
	require.NotNil(t, msg.FailedAt)
	chatRepo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
}

func TestHistory_MergesAndPrunes(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	roomID := primitive.NewObjectID()
	since := time.Now().Add(-time.Hour)

	// a send that failed at the functions layer stays visible as pending
	chatRepo.On("FindRoomByID", ctx, roomID).Return(chatRoom(roomID), nil)
	fns.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &functions.NetworkError{Err: errors.New("timeout")})
	sender := &models.User{Email: "ngo@x.org", Name: "Food Rescue", Role: models.RoleNGO}
	failed, _ := svc.Send(ctx, "token", roomID, sender, "stuck message")
	require.NotNil(t, failed)

	confirmed := []*models.ChatMessage{
		{
			ID:        primitive.NewObjectID(),
			RoomID:    roomID,
			Sender:    "donor@x.org",
			Text:      "pickup at 5",
			Timestamp: models.FlexTimeNow(),
		},
	}
	chatRepo.On("MessagesSince", ctx, roomID, since).Return(confirmed, nil)

	merged, err := svc.History(ctx, roomID, since)

	require.NoError(t, err)
	require.Len(t, merged, 2)
	texts := []string{merged[0].Text, merged[1].Text}
	assert.Contains(t, texts, "pickup at 5")
	assert.Contains(t, texts, "stuck message")
}

func TestHistory_SupersededPendingPrunedForGood(t *testing.T) {
	svc, chatRepo, fns := newChatFixture()
	ctx := context.Background()
	roomID := primitive.NewObjectID()
	since := time.Now().Add(-time.Hour)

	chatRepo.On("FindRoomByID", ctx, roomID).Return(chatRoom(roomID), nil)
	fns.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &functions.NetworkError{Err: errors.New("timeout")})
	sender := &models.User{Email: "ngo@x.org", Name: "Food Rescue", Role: models.RoleNGO}
	failed, _ := svc.Send(ctx, "token", roomID, sender, "on my way")
	require.NotNil(t, failed)

	// the message did land server-side; the subscription later delivers it
	confirmed := []*models.ChatMessage{
		{
			ID:        primitive.NewObjectID(),
			RoomID:    roomID,
			Sender:    "ngo@x.org",
			Text:      "on my way",
			Timestamp: failed.Timestamp + 1000,
		},
	}
	chatRepo.On("MessagesSince", ctx, roomID, since).Return(confirmed, nil)

	first, err := svc.History(ctx, roomID, since)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.False(t, first[0].Pending)

	// even with an empty confirmed window the pruned entry stays gone
	chatRepo.ExpectedCalls = nil
	chatRepo.On("MessagesSince", ctx, roomID, since).Return([]*models.ChatMessage{}, nil)

	second, err := svc.History(ctx, roomID, since)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestFailedMessageTTLRemoval(t *testing.T) {
	chatRepo := new(MockChatRepository)
	fns := new(MockFunctionsClient)
	svc := NewChatService(chatRepo, fns, DefaultDedupeWindow, 20*time.Millisecond)
	ctx := context.Background()
	roomID := primitive.NewObjectID()
	since := time.Now().Add(-time.Hour)

	chatRepo.On("FindRoomByID", ctx, roomID).Return(chatRoom(roomID), nil)
	fns.On("SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &functions.NetworkError{Err: errors.New("timeout")})
	chatRepo.On("MessagesSince", ctx, roomID, since).Return([]*models.ChatMessage{}, nil)

	sender := &models.User{Email: "ngo@x.org", Role: models.RoleNGO}
	_, _ = svc.Send(ctx, "token", roomID, sender, "hi")

	merged, err := svc.History(ctx, roomID, since)
	require.NoError(t, err)
	assert.Len(t, merged, 1)

	time.Sleep(50 * time.Millisecond)

	merged, err = svc.History(ctx, roomID, since)
	require.NoError(t, err)
	assert.Empty(t, merged)
}
