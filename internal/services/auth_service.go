package services

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// ErrInvalidCredentials is returned for any failed login, without saying which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type authService struct {
	adminRepo repositories.AdminUserRepository
	jwtSecret string
	tokenTTL  time.Duration
	clock     Clock
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(adminRepo repositories.AdminUserRepository, jwtSecret string, tokenTTL time.Duration, clock Clock) AuthService {
	return &authService{
		adminRepo: adminRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		clock:     clock,
	}
}

// Login checks an admin's password and issues a signed token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		slog.Warn("Admin login rejected", "email", req.Email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateJWT(admin.ID.Hex(), admin.Email, admin.Role, s.jwtSecret, s.tokenTTL, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, Admin: *admin}, nil
}

// HashPassword hashes a plain password for storage on an admin account.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
