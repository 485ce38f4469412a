package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	listingService *services.ListingService
	userService    *services.UserService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *services.ListingService, userService *services.UserService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		userService:    userService,
	}
}

// CreateListing handles POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donor, err := h.userService.GetUserByEmail(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.listingService.CreateListing(c.Request.Context(), &listing, donor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListingByID handles GET /listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	listing, err := h.listingService.GetListingByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetAvailableListings handles GET /listings/available
func (h *ListingHandler) GetAvailableListings(c *gin.Context) {
	listings, err := h.listingService.GetAvailableListings(c.Request.Context(), callerRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}

// GetMyListings handles GET /listings/mine
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	listings, err := h.listingService.GetListingsByDonor(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}

// GetListingClaims handles GET /listings/:id/claims
func (h *ListingHandler) GetListingClaims(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	claims, err := h.listingService.GetClaimsForListing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// GetListingCount handles GET /listings/count
func (h *ListingHandler) GetListingCount(c *gin.Context) {
	count, err := h.listingService.GetListingCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
