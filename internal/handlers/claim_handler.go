package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimHandler handles claim lifecycle HTTP requests. Every mutation goes
// through the lifecycle service; the handler only resolves identity and
// parses parameters.
type ClaimHandler struct {
	lifecycleService *services.LifecycleService
	userService      *services.UserService
}

// NewClaimHandler creates a new ClaimHandler
func NewClaimHandler(lifecycleService *services.LifecycleService, userService *services.UserService) *ClaimHandler {
	return &ClaimHandler{
		lifecycleService: lifecycleService,
		userService:      userService,
	}
}

// ClaimListing handles POST /listings/:id/claim
func (h *ClaimHandler) ClaimListing(c *gin.Context) {
	listingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	claimant, err := h.userService.GetUserByEmail(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	claim, err := h.lifecycleService.ClaimListing(c.Request.Context(), listingID, claimant)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// ApproveClaim handles POST /claims/:id/approve (admin only)
func (h *ClaimHandler) ApproveClaim(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.lifecycleService.ApproveClaim(c.Request.Context(), claimID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// RejectClaim handles POST /claims/:id/reject (admin only)
func (h *ClaimHandler) RejectClaim(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.lifecycleService.RejectClaim(c.Request.Context(), claimID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// SetCollectionMethod handles PUT /claims/:id/collection-method
func (h *ClaimHandler) SetCollectionMethod(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req struct {
		Method models.CollectionMethod `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.lifecycleService.SetCollectionMethod(c.Request.Context(), claimID, callerEmail(c), req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// ConfirmCollection handles POST /claims/:id/confirm-collection
func (h *ClaimHandler) ConfirmCollection(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	err = h.lifecycleService.ConfirmSelfCollection(c.Request.Context(), claimID, callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "collected"})
}

// CancelClaim handles POST /claims/:id/cancel
func (h *ClaimHandler) CancelClaim(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.lifecycleService.CancelClaim(c.Request.Context(), claimID, callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetMyClaims handles GET /claims/mine
func (h *ClaimHandler) GetMyClaims(c *gin.Context) {
	claims, err := h.lifecycleService.GetClaimsByClaimant(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// GetPendingClaims handles GET /claims/pending (admin only)
func (h *ClaimHandler) GetPendingClaims(c *gin.Context) {
	claims, err := h.lifecycleService.GetPendingClaims(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// GetClaimByID handles GET /claims/:id
func (h *ClaimHandler) GetClaimByID(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	claim, err := h.lifecycleService.GetClaimByID(c.Request.Context(), claimID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

// CheckTimeout handles GET /claims/:id/timeout, the dashboard poll that
// drives the forced choice when no volunteer has accepted in time
func (h *ClaimHandler) CheckTimeout(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	timedOut, err := h.lifecycleService.CheckVolunteerTimeout(c.Request.Context(), claimID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"timedOut": timedOut})
}
