package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mealbridge/foodshare-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	chatService *services.ChatService
	userService *services.UserService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *services.ChatService, userService *services.UserService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
	}
}

// CreateRoom handles POST /chat/rooms
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req struct {
		DonorEmail     string `json:"donorEmail" binding:"required,email"`
		RecipientEmail string `json:"recipientEmail" binding:"required,email"`
		DonationID     string `json:"donationId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donationID, err := primitive.ObjectIDFromHex(req.DonationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation ID format"})
		return
	}

	room, err := h.chatService.EnsureRoom(c.Request.Context(), bearerToken(c), req.DonorEmail, req.RecipientEmail, donationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// GetMyRooms handles GET /chat/rooms
func (h *ChatHandler) GetMyRooms(c *gin.Context) {
	rooms, err := h.chatService.RoomsForUser(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// SendMessage handles POST /chat/rooms/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sender, err := h.userService.GetUserByEmail(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), bearerToken(c), roomID, sender, req.Text)
	if err != nil {
		if msg == nil {
			respondError(c, err)
			return
		}
		// the optimistic message (now marked failed) still goes back so the
		// client can render it
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "message": msg})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetMessages handles GET /chat/rooms/:id/messages, the reconciled view
func (h *ChatHandler) GetMessages(c *gin.Context) {
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	since := time.Time{}
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since parameter, expected RFC3339"})
			return
		}
		since = parsed
	}

	messages, err := h.chatService.History(c.Request.Context(), roomID, since)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// StreamMessages handles GET /chat/rooms/:id/stream, server-sent events
// backed by the message subscription; closing the connection tears down
// the change stream
func (h *ChatHandler) StreamMessages(c *gin.Context) {
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	feed, err := h.chatService.Subscribe(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		msg, ok := <-feed
		if !ok {
			return false
		}
		c.SSEvent("message", msg)
		return true
	})
}

// MarkRead handles POST /chat/rooms/:id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	roomID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.chatService.MarkRead(c.Request.Context(), roomID, callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
