package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LifecycleService is the single mutation point for the claim/collection
// workflow. Each method corresponds to one lifecycle event, validates its
// preconditions against the current document state, and applies every field
// change of the event inside one transaction. A precondition that fails at
// commit time aborts the whole transition, so Listing, Claim, and
// DeliveryAssignment never diverge.
type LifecycleService struct {
	listingRepo  repositories.ListingRepository
	claimRepo    repositories.ClaimRepository
	deliveryRepo repositories.DeliveryRepository
	tx           repositories.TxRunner
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	listingRepo repositories.ListingRepository,
	claimRepo repositories.ClaimRepository,
	deliveryRepo repositories.DeliveryRepository,
	tx repositories.TxRunner,
) *LifecycleService {
	return &LifecycleService{
		listingRepo:  listingRepo,
		claimRepo:    claimRepo,
		deliveryRepo: deliveryRepo,
		tx:           tx,
	}
}

// ClaimListing creates a claim against an UNCLAIMED listing. NGO claims
// start PENDING and wait for admin approval; farmer claims go straight to
// CLAIMED. The status check runs in the update filter, so when two
// recipients race, exactly one wins and the other gets
// models.ErrListingUnavailable with no claim document created.
func (s *LifecycleService) ClaimListing(ctx context.Context, listingID primitive.ObjectID, claimant *models.User) (*models.Claim, error) {
	var role models.ClaimantRole
	switch claimant.Role {
	case models.RoleNGO:
		role = models.ClaimantRoleNGO
	case models.RoleFarmer:
		role = models.ClaimantRoleFarmer
	default:
		return nil, fmt.Errorf("role %q cannot claim listings: %w", claimant.Role, models.ErrForbidden)
	}

	var claim *models.Claim
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		listing, err := s.listingRepo.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if role == models.ClaimantRoleFarmer && !listing.FarmerEligible {
			return fmt.Errorf("listing is not marked for farm use: %w", models.ErrForbidden)
		}

		now := time.Now()
		listingStatus := models.ListingStatusPending
		claimStatus := models.ClaimStatusPending
		if role == models.ClaimantRoleFarmer {
			listingStatus = models.ListingStatusClaimed
			claimStatus = models.ClaimStatusClaimed
		}

		err = s.listingRepo.UpdateIfStatus(ctx, listingID,
			[]models.ListingStatus{models.ListingStatusUnclaimed},
			bson.M{
				"status":           listingStatus,
				"claimedBy":        claimant.Email,
				"claimedByContact": claimant.Phone,
				"claimedAt":        now,
			}, nil)
		if err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				return models.ErrListingUnavailable
			}
			return err
		}

		claim = &models.Claim{
			ListingID:       listingID,
			ClaimantEmail:   claimant.Email,
			ClaimantName:    claimant.Name,
			ClaimantRole:    role,
			ClaimantContact: claimant.Phone,
			Status:          claimStatus,
			ClaimedAt:       now,
		}
		return s.claimRepo.Create(ctx, claim)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// ApproveClaim moves a PENDING claim (and its listing) to CLAIMED
func (s *LifecycleService) ApproveClaim(ctx context.Context, claimID primitive.ObjectID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claim, err := s.claimRepo.FindByID(ctx, claimID)
		if err != nil {
			return err
		}
		err = s.claimRepo.UpdateIfStatus(ctx, claimID,
			[]models.ClaimStatus{models.ClaimStatusPending},
			bson.M{"status": models.ClaimStatusClaimed}, nil)
		if err != nil {
			return err
		}
		return s.listingRepo.UpdateIfStatus(ctx, claim.ListingID,
			[]models.ListingStatus{models.ListingStatusPending},
			bson.M{"status": models.ListingStatusClaimed}, nil)
	})
}

// RejectClaim marks a PENDING claim REJECTED and recycles the listing:
// status back to UNCLAIMED with the claim pointers cleared, so other
// recipients can claim it again.
func (s *LifecycleService) RejectClaim(ctx context.Context, claimID primitive.ObjectID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claim, err := s.claimRepo.FindByID(ctx, claimID)
		if err != nil {
			return err
		}
		err = s.claimRepo.UpdateIfStatus(ctx, claimID,
			[]models.ClaimStatus{models.ClaimStatusPending},
			bson.M{"status": models.ClaimStatusRejected}, nil)
		if err != nil {
			return err
		}
		return s.resetListing(ctx, claim.ListingID, []models.ListingStatus{models.ListingStatusPending})
	})
}

// SetCollectionMethod records how the recipient will collect. Only valid on
// a CLAIMED claim, and never once a volunteer assignment exists.
func (s *LifecycleService) SetCollectionMethod(ctx context.Context, claimID primitive.ObjectID, callerEmail string, method models.CollectionMethod) error {
	if method != models.CollectionMethodSelf && method != models.CollectionMethodVolunteer {
		return fmt.Errorf("unknown collection method %q: %w", method, models.ErrInvalidTransition)
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claim, err := s.claimRepo.FindByID(ctx, claimID)
		if err != nil {
			return err
		}
		if claim.ClaimantEmail != callerEmail {
			return models.ErrForbidden
		}
		if claim.DeliveryID != nil {
			return fmt.Errorf("volunteer already assigned: %w", models.ErrInvalidTransition)
		}
		return s.claimRepo.UpdateIfStatus(ctx, claimID,
			[]models.ClaimStatus{models.ClaimStatusClaimed},
			bson.M{"collectionMethod": method}, nil)
	})
}

// AcceptDelivery creates an ASSIGNED delivery assignment for a volunteer.
// The claim-side link is written with a no-assignment-yet condition, so of
// two volunteers accepting concurrently only the first commit wins.
func (s *LifecycleService) AcceptDelivery(ctx context.Context, claimID primitive.ObjectID, volunteer *models.User) (*models.DeliveryAssignment, error) {
	if volunteer.Role != models.RoleVolunteer {
		return nil, fmt.Errorf("role %q cannot accept deliveries: %w", volunteer.Role, models.ErrForbidden)
	}

	var delivery *models.DeliveryAssignment
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claim, err := s.claimRepo.FindByID(ctx, claimID)
		if err != nil {
			return err
		}
		if claim.Status != models.ClaimStatusClaimed || claim.CollectionMethod != models.CollectionMethodVolunteer {
			return fmt.Errorf("claim is not awaiting a volunteer: %w", models.ErrInvalidTransition)
		}

		delivery = &models.DeliveryAssignment{
			ClaimID:        claimID,
			ListingID:      claim.ListingID,
			VolunteerEmail: volunteer.Email,
			VolunteerName:  volunteer.Name,
			Status:         models.DeliveryStatusAssigned,
			AssignedAt:     time.Now(),
		}
		if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
			return err
		}
		return s.claimRepo.AssignVolunteer(ctx, claimID, delivery.ID, volunteer.Email)
	})
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

// ConfirmPickup moves an ASSIGNED delivery to PICKED_UP. Listing and claim
// are untouched.
func (s *LifecycleService) ConfirmPickup(ctx context.Context, deliveryID primitive.ObjectID, volunteerEmail string) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		delivery, err := s.deliveryRepo.FindByID(ctx, deliveryID)
		if err != nil {
			return err
		}
		if delivery.VolunteerEmail != volunteerEmail {
			return models.ErrForbidden
		}
		return s.deliveryRepo.UpdateIfStatus(ctx, deliveryID,
			[]models.DeliveryStatus{models.DeliveryStatusAssigned},
			bson.M{"status": models.DeliveryStatusPickedUp, "pickedUpAt": time.Now()}, nil)
	})
}

// CompleteDelivery moves a PICKED_UP delivery to DELIVERED and cascades
// COLLECTED to both the claim and the listing
func (s *LifecycleService) CompleteDelivery(ctx context.Context, deliveryID primitive.ObjectID, volunteerEmail string) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		delivery, err := s.deliveryRepo.FindByID(ctx, deliveryID)
		if err != nil {
			return err
		}
		if delivery.VolunteerEmail != volunteerEmail {
			return models.ErrForbidden
		}

		now := time.Now()
		err = s.deliveryRepo.UpdateIfStatus(ctx, deliveryID,
			[]models.DeliveryStatus{models.DeliveryStatusPickedUp},
			bson.M{"status": models.DeliveryStatusDelivered, "deliveredAt": now}, nil)
		if err != nil {
			return err
		}
		err = s.claimRepo.UpdateIfStatus(ctx, delivery.ClaimID,
			[]models.ClaimStatus{models.ClaimStatusClaimed},
			bson.M{"status": models.ClaimStatusCollected, "collectedAt": now}, nil)
		if err != nil {
			return err
		}
		return s.listingRepo.UpdateIfStatus(ctx, delivery.ListingID,
			[]models.ListingStatus{models.ListingStatusClaimed, models.ListingStatusInTransit},
			bson.M{"status": models.ListingStatusCollected}, nil)
	})
}

// ConfirmSelfCollection completes a self-collection claim: both the claim
// and the listing move to COLLECTED
func (s *LifecycleService) ConfirmSelfCollection(ctx context.Context, claimID primitive.ObjectID, callerEmail string) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claim, err := s.claimRepo.FindByID(ctx, claimID)
		if err != nil {
			return err
		}
		if claim.ClaimantEmail != callerEmail {
			return models.ErrForbidden
		}
		if claim.CollectionMethod != models.CollectionMethodSelf {
			return fmt.Errorf("collection method is not self: %w", models.ErrInvalidTransition)
		}

		now := time.Now()
		err = s.claimRepo.UpdateIfStatus(ctx, claimID,
			[]models.ClaimStatus{models.ClaimStatusClaimed},
			bson.M{"status": models.ClaimStatusCollected, "collectedAt": now}, nil)
		if err != nil {
			return err
		}
		return s.listingRepo.UpdateIfStatus(ctx, claim.ListingID,
			[]models.ListingStatus{models.ListingStatusClaimed},
			bson.M{"status": models.ListingStatusCollected}, nil)
	})
}

// CancelClaim abandons a PENDING or CLAIMED claim. The listing is recycled
// to UNCLAIMED with claim pointers cleared, and any open delivery
// assignment is cancelled with its volunteer fields cleared.
func (s *LifecycleService) CancelClaim(ctx context.Context, claimID primitive.ObjectID, callerEmail string) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claim, err := s.claimRepo.FindByID(ctx, claimID)
		if err != nil {
			return err
		}
		if claim.ClaimantEmail != callerEmail {
			return models.ErrForbidden
		}

		expectedListing := []models.ListingStatus{models.ListingStatusPending, models.ListingStatusClaimed}
		err = s.claimRepo.UpdateIfStatus(ctx, claimID,
			[]models.ClaimStatus{models.ClaimStatusPending, models.ClaimStatusClaimed},
			bson.M{"status": models.ClaimStatusCancelled},
			bson.M{"deliveryId": "", "volunteerEmail": ""})
		if err != nil {
			return err
		}
		if err := s.resetListing(ctx, claim.ListingID, expectedListing); err != nil {
			return err
		}

		if claim.DeliveryID != nil {
			return s.deliveryRepo.UpdateIfStatus(ctx, *claim.DeliveryID,
				[]models.DeliveryStatus{models.DeliveryStatusAssigned, models.DeliveryStatusPickedUp},
				bson.M{"status": models.DeliveryStatusCancelled}, nil)
		}
		return nil
	})
}

// CancelDelivery lets a volunteer back out of an ASSIGNED delivery. The
// claim reverts to waiting for a volunteer: status stays CLAIMED, the
// volunteer fields are cleared, the listing is untouched.
func (s *LifecycleService) CancelDelivery(ctx context.Context, deliveryID primitive.ObjectID, volunteerEmail string) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		delivery, err := s.deliveryRepo.FindByID(ctx, deliveryID)
		if err != nil {
			return err
		}
		if delivery.VolunteerEmail != volunteerEmail {
			return models.ErrForbidden
		}

		err = s.deliveryRepo.UpdateIfStatus(ctx, deliveryID,
			[]models.DeliveryStatus{models.DeliveryStatusAssigned},
			bson.M{"status": models.DeliveryStatusCancelled}, nil)
		if err != nil {
			return err
		}
		return s.claimRepo.UpdateIfStatus(ctx, delivery.ClaimID,
			[]models.ClaimStatus{models.ClaimStatusClaimed},
			nil,
			bson.M{"deliveryId": "", "volunteerEmail": ""})
	})
}

// CheckVolunteerTimeout reports whether a claim has waited for a volunteer
// past the timeout threshold. The caller (a dashboard poll) presents the
// forced choice; the server never transitions on its own.
func (s *LifecycleService) CheckVolunteerTimeout(ctx context.Context, claimID primitive.ObjectID, now time.Time) (bool, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return false, err
	}
	listing, err := s.listingRepo.FindByID(ctx, claim.ListingID)
	if err != nil {
		return false, err
	}
	return VolunteerAssignmentTimedOut(claim, listing.CollectBy, now), nil
}

// GetClaimByID retrieves a claim by ID
func (s *LifecycleService) GetClaimByID(ctx context.Context, id primitive.ObjectID) (*models.Claim, error) {
	return s.claimRepo.FindByID(ctx, id)
}

// GetClaimsByClaimant retrieves a recipient's claims, newest first
func (s *LifecycleService) GetClaimsByClaimant(ctx context.Context, claimantEmail string) ([]*models.Claim, error) {
	return s.claimRepo.FindByClaimant(ctx, claimantEmail)
}

// GetPendingClaims retrieves claims awaiting admin approval
func (s *LifecycleService) GetPendingClaims(ctx context.Context) ([]*models.Claim, error) {
	return s.claimRepo.FindByStatus(ctx, models.ClaimStatusPending)
}

// GetOpenDeliveries retrieves claims waiting for a volunteer to accept
func (s *LifecycleService) GetOpenDeliveries(ctx context.Context) ([]*models.Claim, error) {
	return s.claimRepo.FindPendingVolunteer(ctx)
}

// GetDeliveryByID retrieves a delivery assignment by ID
func (s *LifecycleService) GetDeliveryByID(ctx context.Context, id primitive.ObjectID) (*models.DeliveryAssignment, error) {
	return s.deliveryRepo.FindByID(ctx, id)
}

// GetDeliveriesByVolunteer retrieves a volunteer's assignments, newest first
func (s *LifecycleService) GetDeliveriesByVolunteer(ctx context.Context, volunteerEmail string) ([]*models.DeliveryAssignment, error) {
	return s.deliveryRepo.FindByVolunteer(ctx, volunteerEmail)
}

// resetListing returns a listing to UNCLAIMED and clears the denormalized
// claim pointers in the same write
func (s *LifecycleService) resetListing(ctx context.Context, listingID primitive.ObjectID, expected []models.ListingStatus) error {
	return s.listingRepo.UpdateIfStatus(ctx, listingID, expected,
		bson.M{"status": models.ListingStatusUnclaimed},
		bson.M{"claimedBy": "", "claimedByContact": "", "claimedAt": ""})
}
