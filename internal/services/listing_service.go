package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingService handles listing-related business logic outside the
// lifecycle transitions: creation and dashboard reads
type ListingService struct {
	listingRepo repositories.ListingRepository
	claimRepo   repositories.ClaimRepository
}

// NewListingService creates a new ListingService
func NewListingService(listingRepo repositories.ListingRepository, claimRepo repositories.ClaimRepository) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		claimRepo:   claimRepo,
	}
}

// CreateListing posts a new donation for a donor. The listing starts
// UNCLAIMED regardless of what the submission carried.
func (s *ListingService) CreateListing(ctx context.Context, listing *models.Listing, donor *models.User) error {
	if donor.Role != models.RoleDonor {
		return fmt.Errorf("role %q cannot post listings: %w", donor.Role, models.ErrForbidden)
	}
	if listing.CollectBy.IsZero() {
		return fmt.Errorf("collect-by deadline is required")
	}
	if listing.ExpiryDate.Before(time.Now()) {
		return fmt.Errorf("expiry date is in the past")
	}

	listing.DonorEmail = donor.Email
	listing.DonorName = donor.Name
	if listing.ContactName == "" {
		listing.ContactName = donor.Name
	}
	if listing.ContactPhone == "" {
		listing.ContactPhone = donor.Phone
	}
	return s.listingRepo.Create(ctx, listing)
}

// GetListingByID retrieves a listing by ID
func (s *ListingService) GetListingByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	return s.listingRepo.FindByID(ctx, id)
}

// GetAvailableListings retrieves claimable listings. Farmers only see
// listings flagged as suitable for farm use.
func (s *ListingService) GetAvailableListings(ctx context.Context, viewerRole models.Role) ([]*models.Listing, error) {
	return s.listingRepo.FindAvailable(ctx, viewerRole == models.RoleFarmer)
}

// GetListingsByDonor retrieves a donor's own listings
func (s *ListingService) GetListingsByDonor(ctx context.Context, donorEmail string) ([]*models.Listing, error) {
	return s.listingRepo.FindByDonor(ctx, donorEmail)
}

// GetClaimsForListing retrieves all claims ever made against a listing,
// including cancelled and rejected history
func (s *ListingService) GetClaimsForListing(ctx context.Context, listingID primitive.ObjectID) ([]*models.Claim, error) {
	return s.claimRepo.FindByListing(ctx, listingID)
}

// GetListingCount gets the total number of listings
func (s *ListingService) GetListingCount(ctx context.Context) (int64, error) {
	return s.listingRepo.Count(ctx)
}
