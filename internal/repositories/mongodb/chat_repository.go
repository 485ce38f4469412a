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

// Compile-time check to ensure ChatRepository implements the interface
var _ repositories.ChatRepository = (*ChatRepository)(nil)

// ChatRepository handles MongoDB operations for chat rooms and messages
type ChatRepository struct {
	rooms    *mongo.Collection
	messages *mongo.Collection
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{
		rooms:    db.Collection("chat_rooms"),
		messages: db.Collection("chat_messages"),
	}
}

// CreateRoom inserts a new chat room
func (r *ChatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	room.ID = primitive.NewObjectID()
	room.CreatedAt = time.Now()
	room.UpdatedAt = time.Now()
	_, err := r.rooms.InsertOne(ctx, room)
	return err
}

// FindRoomByID finds a chat room by ID
func (r *ChatRepository) FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// FindRoomByParticipants finds the room for a donor/recipient/donation triple
func (r *ChatRepository) FindRoomByParticipants(ctx context.Context, donorEmail, recipientEmail string, donationID primitive.ObjectID) (*models.ChatRoom, error) {
	filter := bson.M{
		"donorEmail":     donorEmail,
		"recipientEmail": recipientEmail,
		"donationId":     donationID,
	}
	var room models.ChatRoom
	err := r.rooms.FindOne(ctx, filter).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// FindRoomsByUser retrieves all rooms a user participates in
func (r *ChatRepository) FindRoomsByUser(ctx context.Context, email string) ([]*models.ChatRoom, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"donorEmail": email},
			{"recipientEmail": email},
		},
	}
	var rooms []*models.ChatRoom
	cursor, err := r.rooms.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*models.ChatRoom{}
	}
	return rooms, nil
}

// AppendMessage inserts a confirmed message and bumps the room's UpdatedAt
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = primitive.NewObjectID()
	if msg.Timestamp == 0 {
		msg.Timestamp = models.FlexTimeNow()
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return err
	}
	_, err := r.rooms.UpdateOne(ctx,
		bson.M{"_id": msg.RoomID},
		bson.M{"$set": bson.M{"updatedAt": time.Now()}})
	return err
}

// MessagesSince retrieves confirmed messages for a room from a point in
// time, ascending
func (r *ChatRepository) MessagesSince(ctx context.Context, roomID primitive.ObjectID, since time.Time) ([]*models.ChatMessage, error) {
	filter := bson.M{
		"roomId":    roomID,
		"timestamp": bson.M{"$gte": since.UnixMilli()},
	}
	var messages []*models.ChatMessage
	cursor, err := r.messages.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	return messages, nil
}

// MarkRead flags every message in a room not sent by the reader as read
func (r *ChatRepository) MarkRead(ctx context.Context, roomID primitive.ObjectID, readerEmail string) error {
	filter := bson.M{
		"roomId": roomID,
		"sender": bson.M{"$ne": readerEmail},
		"read":   false,
	}
	_, err := r.messages.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	return err
}

// WatchMessages opens a change stream over inserts into a room. Closing the
// stream (or cancelling ctx) tears the subscription down.
func (r *ChatRepository) WatchMessages(ctx context.Context, roomID primitive.ObjectID) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":          "insert",
			"fullDocument.roomId":    roomID,
		}}},
	}
	return r.messages.Watch(ctx, pipeline)
}
