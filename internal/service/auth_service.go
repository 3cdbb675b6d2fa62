package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential backend. Users live in Postgres, not in
// the state document, so passwords are stored as bcrypt hashes only.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetUsers(ctx context.Context) ([]models.User, error)
}

// Claims carried in the session token.
type Claims struct {
	UserID int64
	Name   string
	Role   string
}

// AuthService handles login and operator administration.
type AuthService struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   util.GetLogger(),
	}
}

// Login verifies credentials and issues a signed bearer token. The
// email is matched case-insensitively.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		util.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		util.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return "", nil, ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Login rejected", zap.String("email", user.Email))
		return "", nil, ErrBadCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		util.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))
	return signed, user, nil
}

// ParseToken validates a bearer token and extracts the session claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadCredentials
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrBadCredentials
	}

	claims := &Claims{}
	if v, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = int64(v)
	}
	if v, ok := mapClaims["name"].(string); ok {
		claims.Name = v
	}
	if v, ok := mapClaims["role"].(string); ok {
		claims.Role = v
	}
	if !models.ValidRole(claims.Role) {
		return nil, ErrBadCredentials
	}

	return claims, nil
}

// CreateUser registers an operator account with a bcrypt-hashed
// password. Raw credentials are never persisted or logged.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))
	return user, nil
}

// ListUsers returns all operator accounts.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.GetUsers(ctx)
}
