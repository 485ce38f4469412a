package services

import (
	"context"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/repositories"
	"github.com/mealbridge/foodshare-backend/pkg/logger"
)

// VolunteerAssignmentTimedOut reports whether a claim has waited too long
// for a volunteer. The threshold is the midpoint between the claim time and
// the listing's collect-by deadline. Only CLAIMED claims with volunteer
// collection and no assignment can time out. Pure function of its inputs so
// any scheduler (UI poll, background watcher) can evaluate it.
func VolunteerAssignmentTimedOut(claim *models.Claim, collectBy time.Time, now time.Time) bool {
	if claim.Status != models.ClaimStatusClaimed {
		return false
	}
	if claim.CollectionMethod != models.CollectionMethodVolunteer {
		return false
	}
	if claim.DeliveryID != nil {
		return false
	}

	window := collectBy.Sub(claim.ClaimedAt)
	if window <= 0 {
		// deadline already passed when the claim was made
		return true
	}
	return now.Sub(claim.ClaimedAt) >= window/2
}

// TimeoutWatcher periodically re-evaluates pending volunteer claims against
// wall-clock time and invokes OnTimeout for each claim past its threshold.
// This is a soft guarantee: the forced choice (self-collect or cancel) is
// still the recipient's, made through the lifecycle service.
type TimeoutWatcher struct {
	claimRepo   repositories.ClaimRepository
	listingRepo repositories.ListingRepository
	interval    time.Duration
	// OnTimeout is called once per poll for every timed-out claim
	OnTimeout func(claim *models.Claim)
}

// NewTimeoutWatcher creates a new TimeoutWatcher
func NewTimeoutWatcher(claimRepo repositories.ClaimRepository, listingRepo repositories.ListingRepository, interval time.Duration) *TimeoutWatcher {
	return &TimeoutWatcher{
		claimRepo:   claimRepo,
		listingRepo: listingRepo,
		interval:    interval,
	}
}

// Run polls until ctx is cancelled
func (w *TimeoutWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *TimeoutWatcher) poll(ctx context.Context) {
	claims, err := w.claimRepo.FindPendingVolunteer(ctx)
	if err != nil {
		logger.Warn("timeout watcher: listing pending claims failed", "error", err)
		return
	}

	now := time.Now()
	for _, claim := range claims {
		listing, err := w.listingRepo.FindByID(ctx, claim.ListingID)
		if err != nil {
			logger.Warn("timeout watcher: listing lookup failed", "claimId", claim.ID.Hex(), "error", err)
			continue
		}
		if VolunteerAssignmentTimedOut(claim, listing.CollectBy, now) {
			logger.Info("volunteer assignment timed out",
				"claimId", claim.ID.Hex(),
				"claimant", claim.ClaimantEmail,
				"collectBy", listing.CollectBy)
			if w.OnTimeout != nil {
				w.OnTimeout(claim)
			}
		}
	}
}
