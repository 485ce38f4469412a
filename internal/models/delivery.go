package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryStatus represents the status of a volunteer delivery assignment
type DeliveryStatus string

const (
	DeliveryStatusAssigned  DeliveryStatus = "ASSIGNED"
	DeliveryStatusPickedUp  DeliveryStatus = "PICKED_UP"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled DeliveryStatus = "CANCELLED"
)

// DeliveryAssignment represents a volunteer's undertaking to transport a
// claimed donation. It exists only while the owning claim's collection
// method is "volunteer".
type DeliveryAssignment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ClaimID        primitive.ObjectID `bson:"claimId" json:"claimId"`
	ListingID      primitive.ObjectID `bson:"listingId" json:"listingId"`
	VolunteerEmail string             `bson:"volunteerEmail" json:"volunteerEmail"`
	VolunteerName  string             `bson:"volunteerName,omitempty" json:"volunteerName,omitempty"`
	Status         DeliveryStatus     `bson:"status" json:"status"`
	AssignedAt     time.Time          `bson:"assignedAt" json:"assignedAt"`
	PickedUpAt     *time.Time         `bson:"pickedUpAt,omitempty" json:"pickedUpAt,omitempty"`
	DeliveredAt    *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
