package models

// RegisterRequest is the payload for user registration
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         Role   `json:"role" binding:"required"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Organization string `json:"organization"`
}

// LoginRequest is the payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token and the user profile
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
