package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRoom represents a conversation between a donor and a recipient about a
// specific donation
type ChatRoom struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DonorEmail     string             `bson:"donorEmail" json:"donorEmail"`
	RecipientEmail string             `bson:"recipientEmail" json:"recipientEmail"`
	DonationID     primitive.ObjectID `bson:"donationId" json:"donationId"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ChatMessage is a confirmed message from the subscription feed. Confirmed
// messages are authoritative and carry a server-assigned timestamp.
type ChatMessage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RoomID     primitive.ObjectID `bson:"roomId" json:"roomId"`
	Text       string             `bson:"text" json:"text"`
	Sender     string             `bson:"sender" json:"sender"`
	SenderName string             `bson:"senderName,omitempty" json:"senderName,omitempty"`
	SenderRole string             `bson:"senderRole,omitempty" json:"senderRole,omitempty"`
	Timestamp  FlexTime           `bson:"timestamp" json:"timestamp"`
	Read       bool               `bson:"read" json:"read"`
}

// OptimisticState tracks the delivery progress of a locally-originated message
type OptimisticState string

const (
	OptimisticSending OptimisticState = "sending"
	OptimisticSent    OptimisticState = "sent"
	OptimisticFailed  OptimisticState = "failed"
)

// OptimisticMessage is a locally-created message shown immediately, before
// server confirmation. Its timestamp is the client clock; it is superseded
// once a confirmed message with matching sender and text arrives within the
// dedupe tolerance window.
type OptimisticMessage struct {
	LocalID    string          `json:"localId"`
	Text       string          `json:"text"`
	Sender     string          `json:"sender"`
	SenderName string          `json:"senderName,omitempty"`
	SenderRole string          `json:"senderRole,omitempty"`
	Timestamp  FlexTime        `json:"timestamp"`
	State      OptimisticState `json:"state"`
	FailedAt   *time.Time      `json:"failedAt,omitempty"`
}
