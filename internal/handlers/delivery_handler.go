package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealbridge/foodshare-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryHandler handles volunteer delivery HTTP requests
type DeliveryHandler struct {
	lifecycleService *services.LifecycleService
	userService      *services.UserService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(lifecycleService *services.LifecycleService, userService *services.UserService) *DeliveryHandler {
	return &DeliveryHandler{
		lifecycleService: lifecycleService,
		userService:      userService,
	}
}

// GetOpenDeliveries handles GET /deliveries/open, listing claims waiting for a
// volunteer to accept
func (h *DeliveryHandler) GetOpenDeliveries(c *gin.Context) {
	claims, err := h.lifecycleService.GetOpenDeliveries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// AcceptDelivery handles POST /claims/:id/accept-delivery
func (h *DeliveryHandler) AcceptDelivery(c *gin.Context) {
	claimID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	volunteer, err := h.userService.GetUserByEmail(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	delivery, err := h.lifecycleService.AcceptDelivery(c.Request.Context(), claimID, volunteer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, delivery)
}

// ConfirmPickup handles POST /deliveries/:id/pickup
func (h *DeliveryHandler) ConfirmPickup(c *gin.Context) {
	deliveryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.lifecycleService.ConfirmPickup(c.Request.Context(), deliveryID, callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "picked_up"})
}

// CompleteDelivery handles POST /deliveries/:id/complete
func (h *DeliveryHandler) CompleteDelivery(c *gin.Context) {
	deliveryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.lifecycleService.CompleteDelivery(c.Request.Context(), deliveryID, callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "delivered"})
}

// CancelDelivery handles POST /deliveries/:id/cancel
func (h *DeliveryHandler) CancelDelivery(c *gin.Context) {
	deliveryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.lifecycleService.CancelDelivery(c.Request.Context(), deliveryID, callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetMyDeliveries handles GET /deliveries/mine
func (h *DeliveryHandler) GetMyDeliveries(c *gin.Context) {
	deliveries, err := h.lifecycleService.GetDeliveriesByVolunteer(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, deliveries)
}
