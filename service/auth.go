package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"civicreport/database"
	"civicreport/models"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	db          *database.Database
	jwtSecret   []byte
	tokenExpiry time.Duration
}

// NewAuthService creates an auth service.
func NewAuthService(db *database.Database, jwtSecret string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		db:          db,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
	}
}

func validateRegister(req *models.RegisterRequest) error {
	v := &models.ValidationError{}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		v.Add("phoneNumber", "valid phone number required")
	}
	if len(req.Password) < 6 {
		v.Add("password", "password must be at least 6 characters")
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		v.Add("email", "valid email required")
	}
	return v.OrNil()
}

// Register creates a new citizen account. The password is one-way hashed
// before persistence.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	expires := time.Now().Add(24 * time.Hour)

	user := &models.User{
		PhoneNumber:         strings.TrimSpace(req.PhoneNumber),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Name:                strings.TrimSpace(req.Name),
		PasswordHash:        string(passwordHash),
		Role:                models.RoleCitizen,
		VerificationToken:   token,
		VerificationExpires: &expires,
	}

	id, err := s.db.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	created, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	signed, err := s.GenerateToken(created.ID, created.Role)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: signed, User: created}, nil
}

// Login verifies credentials and stamps the last login time.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	v := &models.ValidationError{}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		v.Add("phoneNumber", "valid phone number required")
	}
	if req.Password == "" {
		v.Add("password", "password is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByPhone(ctx, strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, models.ErrInvalidCredentials
	}

	if err := s.db.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	now := time.Now()
	user.LastLogin = &now

	signed, err := s.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: signed, User: user}, nil
}

// GetUser returns the account for a verified token subject.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.db.GetUserByID(ctx, id)
}

// GenerateToken signs an HS256 token carrying the caller identity and role.
func (s *AuthService) GenerateToken(userID int64, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(s.tokenExpiry).Unix(),
		"iat":     now.Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a bearer token and returns the caller's id and role.
func (s *AuthService) ValidateToken(tokenString string) (int64, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", errors.New("invalid user id in token")
	}
	role, ok := claims["role"].(string)
	if !ok || !models.IsValidRole(role) {
		return 0, "", errors.New("invalid role in token")
	}

	return int64(userID), role, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
