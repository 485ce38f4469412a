package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingStatus represents the status of a donation listing
type ListingStatus string

const (
	ListingStatusUnclaimed ListingStatus = "UNCLAIMED"
	ListingStatusPending   ListingStatus = "PENDING"
	ListingStatusClaimed   ListingStatus = "CLAIMED"
	ListingStatusInTransit ListingStatus = "IN_TRANSIT"
	ListingStatusCollected ListingStatus = "COLLECTED"
	ListingStatusCancelled ListingStatus = "CANCELLED"
)

// Listing represents a posted food donation
type Listing struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FoodType          string             `bson:"foodType" json:"foodType"`
	Category          string             `bson:"category" json:"category"` // e.g., "COOKED", "PACKAGED", "PRODUCE"
	Quantity          float64            `bson:"quantity" json:"quantity"`
	QuantityUnit      string             `bson:"quantityUnit" json:"quantityUnit"` // e.g., "kg", "servings"
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	ExpiryDate        time.Time          `bson:"expiryDate" json:"expiryDate"`
	CollectBy         time.Time          `bson:"collectBy" json:"collectBy"`
	PickupAddress     string             `bson:"pickupAddress" json:"pickupAddress"`
	ContactName       string             `bson:"contactName,omitempty" json:"contactName,omitempty"`
	ContactPhone      string             `bson:"contactPhone,omitempty" json:"contactPhone,omitempty"`
	FarmerEligible    bool               `bson:"farmerEligible" json:"farmerEligible"` // suitable for animal feed / farm use
	ImageURLs         []string           `bson:"imageUrls,omitempty" json:"imageUrls,omitempty"`
	DonorEmail        string             `bson:"donorEmail" json:"donorEmail"`
	DonorName         string             `bson:"donorName,omitempty" json:"donorName,omitempty"`
	Status            ListingStatus      `bson:"status" json:"status"`
	ClaimedBy         string             `bson:"claimedBy,omitempty" json:"claimedBy,omitempty"`
	ClaimedByContact  string             `bson:"claimedByContact,omitempty" json:"claimedByContact,omitempty"`
	ClaimedAt         *time.Time         `bson:"claimedAt,omitempty" json:"claimedAt,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
