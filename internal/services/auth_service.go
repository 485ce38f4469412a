package services

import (
	"context"
	"errors"
	"time"

	"github.com/mealbridge/foodshare-backend/internal/config"
	"github.com/mealbridge/foodshare-backend/internal/models"
	"github.com/mealbridge/foodshare-backend/internal/repositories"
	"github.com/mealbridge/foodshare-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any login failure; the caller
// never learns whether the email or the password was wrong
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles registration and login
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Register creates a new user with a hashed password
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, errors.New("user with this email already exists")
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	switch req.Role {
	case models.RoleDonor, models.RoleNGO, models.RoleFarmer, models.RoleVolunteer:
	default:
		// admins are provisioned out of band, never self-registered
		return nil, errors.New("invalid role")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		Password:     string(hashedPassword),
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
		Organization: req.Organization,
		LastActivity: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// Login verifies credentials and issues a JWT carrying the user's email and role
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, string(user.Role), s.cfg)
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return &models.LoginResponse{Token: token, User: user}, nil
}
