package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimStatus represents the status of a claim against a listing
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "PENDING"
	ClaimStatusClaimed   ClaimStatus = "CLAIMED"
	ClaimStatusCollected ClaimStatus = "COLLECTED"
	ClaimStatusCancelled ClaimStatus = "CANCELLED"
	ClaimStatusRejected  ClaimStatus = "REJECTED"
)

// CollectionMethod is how a recipient intends to collect a claimed donation
type CollectionMethod string

const (
	CollectionMethodSelf      CollectionMethod = "self"
	CollectionMethodVolunteer CollectionMethod = "volunteer"
)

// ClaimantRole distinguishes the two recipient types. Farmers claim directly
// without admin approval; NGO claims start PENDING until an admin approves.
type ClaimantRole string

const (
	ClaimantRoleNGO    ClaimantRole = "ngo"
	ClaimantRoleFarmer ClaimantRole = "farmer"
)

// Claim represents a recipient's reservation against a Listing
type Claim struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	ListingID         primitive.ObjectID  `bson:"listingId" json:"listingId"`
	ClaimantEmail     string              `bson:"claimantEmail" json:"claimantEmail"`
	ClaimantName      string              `bson:"claimantName" json:"claimantName"`
	ClaimantRole      ClaimantRole        `bson:"claimantRole" json:"claimantRole"`
	ClaimantContact   string              `bson:"claimantContact,omitempty" json:"claimantContact,omitempty"`
	Status            ClaimStatus         `bson:"status" json:"status"`
	CollectionMethod  CollectionMethod    `bson:"collectionMethod,omitempty" json:"collectionMethod,omitempty"`
	DeliveryID        *primitive.ObjectID `bson:"deliveryId,omitempty" json:"deliveryId,omitempty"`
	VolunteerEmail    string              `bson:"volunteerEmail,omitempty" json:"volunteerEmail,omitempty"`
	ClaimedAt         time.Time           `bson:"claimedAt" json:"claimedAt"`
	CollectedAt       *time.Time          `bson:"collectedAt,omitempty" json:"collectedAt,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the claim still holds its listing
func (c *Claim) Active() bool {
	return c.Status == ClaimStatusPending || c.Status == ClaimStatusClaimed
}
