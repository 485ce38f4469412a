package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/repositories"
	"github.com/mealbridge/foodshare-backend/pkg/functions"
	"github.com/mealbridge/foodshare-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FunctionsClient is the slice of the serverless functions layer the chat
// service uses
type FunctionsClient interface {
	CreateChatRoom(token, donorEmail, recipientEmail, donationID string) (*functions.ChatRoomResult, error)
	SendMessage(token, chatRoomID, message, senderName, senderRole string) (*functions.MessageResult, error)
}

// ChatService owns rooms, the optimistic-message ledger, and the merge of
// optimistic and confirmed messages into one view
type ChatService struct {
	chatRepo  repositories.ChatRepository
	functions FunctionsClient

	dedupeWindow     time.Duration
	failedMessageTTL time.Duration

	mu      sync.Mutex
	pending map[primitive.ObjectID][]*models.OptimisticMessage
}

// NewChatService creates a new ChatService. failedMessageTTL controls how
// long a failed optimistic message stays in the view before auto-removal;
// zero keeps it until the caller clears it.
func NewChatService(chatRepo repositories.ChatRepository, fns FunctionsClient, dedupeWindow, failedMessageTTL time.Duration) *ChatService {
	if dedupeWindow <= 0 {
		dedupeWindow = DefaultDedupeWindow
	}
	return &ChatService{
		chatRepo:         chatRepo,
		functions:        fns,
		dedupeWindow:     dedupeWindow,
		failedMessageTTL: failedMessageTTL,
		pending:          make(map[primitive.ObjectID][]*models.OptimisticMessage),
	}
}

// EnsureRoom returns the chat room for a donor/recipient/donation triple,
// creating it through the functions layer on first use
func (s *ChatService) EnsureRoom(ctx context.Context, token, donorEmail, recipientEmail string, donationID primitive.ObjectID) (*models.ChatRoom, error) {
	room, err := s.chatRepo.FindRoomByParticipants(ctx, donorEmail, recipientEmail, donationID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if _, err := s.functions.CreateChatRoom(token, donorEmail, recipientEmail, donationID.Hex()); err != nil {
		if functions.IsNetworkError(err) {
			return nil, models.Transient("createChatRoom", err)
		}
		return nil, err
	}

	room = &models.ChatRoom{
		DonorEmail:     donorEmail,
		RecipientEmail: recipientEmail,
		DonationID:     donationID,
	}
	if err := s.chatRepo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Send records an optimistic message, pushes it through the functions
// layer, and settles the optimistic entry to sent or failed. The optimistic
// message is returned immediately in its final state; on success the
// confirmed copy is also appended to the room with the server timestamp, so
// the next reconcile supersedes the optimistic entry.
func (s *ChatService) Send(ctx context.Context, token string, roomID primitive.ObjectID, sender *models.User, text string) (*models.OptimisticMessage, error) {
	room, err := s.chatRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.DonorEmail != sender.Email && room.RecipientEmail != sender.Email {
		return nil, models.ErrForbidden
	}

	msg := &models.OptimisticMessage{
		LocalID:    uuid.NewString(),
		Text:       text,
		Sender:     sender.Email,
		SenderName: sender.Name,
		SenderRole: string(sender.Role),
		Timestamp:  models.FlexTimeNow(),
		State:      models.OptimisticSending,
	}
	s.addPending(roomID, msg)

	result, err := s.functions.SendMessage(token, roomID.Hex(), text, sender.Name, string(sender.Role))
	if err != nil {
		s.markFailed(roomID, msg)
		if functions.IsNetworkError(err) {
			return msg, models.Transient("sendMessage", err)
		}
		return msg, err
	}

	confirmed := &models.ChatMessage{
		RoomID:     roomID,
		Text:       text,
		Sender:     sender.Email,
		SenderName: sender.Name,
		SenderRole: string(sender.Role),
		Timestamp:  models.FlexTime(result.Timestamp),
	}
	if err := s.chatRepo.AppendMessage(ctx, confirmed); err != nil {
		logger.Warn("chat: storing confirmed message failed", "roomId", roomID.Hex(), "error", err)
	}

	msg.State = models.OptimisticSent
	return msg, nil
}

// History returns the reconciled view of a room from a point in time:
// confirmed messages merged with the room's surviving optimistic messages.
// Superseded optimistic entries are pruned from the ledger as a side
// effect, so they cannot reappear in later calls.
func (s *ChatService) History(ctx context.Context, roomID primitive.ObjectID, since time.Time) ([]MergedMessage, error) {
	confirmed, err := s.chatRepo.MessagesSince(ctx, roomID, since)
	if err != nil {
		return nil, err
	}

	s.prunePending(roomID, confirmed)
	merged := Reconcile(confirmed, s.snapshotPending(roomID), s.dedupeWindow)
	return merged, nil
}

// Subscribe streams confirmed messages for a room until ctx is cancelled.
// The change stream is closed when the subscription ends, so a view that
// unmounts leaks nothing.
func (s *ChatService) Subscribe(ctx context.Context, roomID primitive.ObjectID) (<-chan *models.ChatMessage, error) {
	stream, err := s.chatRepo.WatchMessages(ctx, roomID)
	if err != nil {
		return nil, models.Transient("watchMessages", err)
	}

	out := make(chan *models.ChatMessage)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event struct {
				FullDocument models.ChatMessage `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				logger.Warn("chat: decoding stream event failed", "roomId", roomID.Hex(), "error", err)
				continue
			}
			msg := event.FullDocument
			select {
			case out <- &msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// MarkRead flags the other participant's messages as read
func (s *ChatService) MarkRead(ctx context.Context, roomID primitive.ObjectID, readerEmail string) error {
	return s.chatRepo.MarkRead(ctx, roomID, readerEmail)
}

// RoomsForUser lists a user's chat rooms, most recently active first
func (s *ChatService) RoomsForUser(ctx context.Context, email string) ([]*models.ChatRoom, error) {
	return s.chatRepo.FindRoomsByUser(ctx, email)
}

func (s *ChatService) addPending(roomID primitive.ObjectID, msg *models.OptimisticMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[roomID] = append(s.pending[roomID], msg)
}

func (s *ChatService) markFailed(roomID primitive.ObjectID, msg *models.OptimisticMessage) {
	s.mu.Lock()
	now := time.Now()
	msg.State = models.OptimisticFailed
	msg.FailedAt = &now
	s.mu.Unlock()

	if s.failedMessageTTL > 0 {
		time.AfterFunc(s.failedMessageTTL, func() {
			s.removePending(roomID, msg.LocalID)
		})
	}
}

func (s *ChatService) removePending(roomID primitive.ObjectID, localID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.pending[roomID]
	for i, p := range entries {
		if p.LocalID == localID {
			s.pending[roomID] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// prunePending drops ledger entries already superseded by a confirmed message
func (s *ChatService) prunePending(roomID primitive.ObjectID, confirmed []*models.ChatMessage) {
	tolMillis := s.dedupeWindow.Milliseconds()
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.pending[roomID]
	kept := entries[:0]
	for _, p := range entries {
		if !superseded(p, confirmed, tolMillis) {
			kept = append(kept, p)
		}
	}
	s.pending[roomID] = kept
}

func (s *ChatService) snapshotPending(roomID primitive.ObjectID) []*models.OptimisticMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.pending[roomID]
	out := make([]*models.OptimisticMessage, len(entries))
	copy(out, entries)
	return out
}
