package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealbridge/foodshare-backend/internal/services"
	"github.com/mealbridge/foodshare-backend/pkg/functions"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	functions   *functions.Client
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, fns *functions.Client) *UserHandler {
	return &UserHandler{
		userService: userService,
		functions:   fns,
	}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUserByEmail(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name         string `json:"name"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
		Organization string `json:"organization"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), callerEmail(c), req.Name, req.Phone, req.Address, req.Organization)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// LookupUser handles GET /users/lookup/:email. Cross-account profile data is
// resolved through the functions layer with the caller's token
func (h *UserHandler) LookupUser(c *gin.Context) {
	data, err := h.functions.GetUserData(bearerToken(c), c.Param("email"))
	if err != nil {
		if functions.IsNetworkError(err) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "transient": true})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetUserCount handles GET /users/count (admin only)
func (h *UserHandler) GetUserCount(c *gin.Context) {
	count, err := h.userService.GetUserCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
