package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealbridge/foodshare-backend/internal/models"
)

// respondError maps the service error taxonomy onto HTTP statuses: not
// found 404, forbidden 403, precondition/transition conflicts 409,
// transient collaborator failures 502, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrListingUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case models.IsTransient(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "transient": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// callerEmail returns the authenticated email set by the auth middleware
func callerEmail(c *gin.Context) string {
	email, _ := c.Get("userEmail")
	s, _ := email.(string)
	return s
}

// callerRole returns the authenticated role set by the auth middleware
func callerRole(c *gin.Context) models.Role {
	role, _ := c.Get("userRole")
	s, _ := role.(string)
	return models.Role(s)
}

// bearerToken returns the caller's raw token for pass-through calls to the
// functions layer
func bearerToken(c *gin.Context) string {
	token, _ := c.Get("bearerToken")
	s, _ := token.(string)
	return s
}
