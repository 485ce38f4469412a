package functions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client calls the hosted serverless HTTP endpoints (user lookup and chat).
// Every call carries the caller's bearer token. When MockFunctions is set the
// client returns deterministic fake payloads instead of making HTTP requests.
type Client struct {
	BaseURL       string
	MockFunctions bool
	client        *http.Client
}

// NewClient creates a new serverless functions client
func NewClient(baseURL string, mockFunctions bool) *Client {
	return &Client{
		BaseURL:       baseURL,
		MockFunctions: mockFunctions,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// envelope is the standard response shape of every function endpoint
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// UserData is the cross-account profile returned by getUserData
type UserData struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// ChatRoomResult is returned by createChatRoom
type ChatRoomResult struct {
	RoomID string `json:"roomId"`
}

// MessageResult is returned by sendMessage
type MessageResult struct {
	MessageID string `json:"messageId"`
	Timestamp int64  `json:"timestamp"`
}

// GetUserData retrieves another account's profile by email
func (c *Client) GetUserData(token, userEmail string) (*UserData, error) {
	if c.MockFunctions {
		return &UserData{
			Email: userEmail,
			Name:  "Mock User",
			Role:  "ngo",
		}, nil
	}

	var out UserData
	err := c.post(token, "/getUserData", map[string]string{"userEmail": userEmail}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateChatRoom creates (or returns) the chat room between a donor and a
// recipient for one donation
func (c *Client) CreateChatRoom(token, donorEmail, recipientEmail, donationID string) (*ChatRoomResult, error) {
	if c.MockFunctions {
		return &ChatRoomResult{RoomID: uuid.NewString()}, nil
	}

	var out ChatRoomResult
	err := c.post(token, "/createChatRoom", map[string]string{
		"donorEmail":     donorEmail,
		"recipientEmail": recipientEmail,
		"donationId":     donationID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts a chat message to a room
func (c *Client) SendMessage(token, chatRoomID, message, senderName, senderRole string) (*MessageResult, error) {
	if c.MockFunctions {
		return &MessageResult{
			MessageID: uuid.NewString(),
			Timestamp: time.Now().UnixMilli(),
		}, nil
	}

	var out MessageResult
	err := c.post(token, "/sendMessage", map[string]string{
		"chatRoomId": chatRoomID,
		"message":    message,
		"senderName": senderName,
		"senderRole": senderRole,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NetworkError marks failures to reach the functions layer, as opposed to
// the endpoint itself rejecting the call
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "functions: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err was a transport-level failure
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func (c *Client) post(token, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &NetworkError{Err: err}
	}
	if !env.Success {
		if env.Error == "" {
			return fmt.Errorf("functions: %s returned status %d", path, resp.StatusCode)
		}
		return fmt.Errorf("functions: %s: %s", path, env.Error)
	}
	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
