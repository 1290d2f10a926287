package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"chat-service/internal/models"
	"chat-service/internal/storage"
)

const (
	accessTokenTTL  = 72 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserService owns accounts and the tokens that authenticate them.
type UserService struct {
	store  *storage.Store
	secret []byte
	logger zerolog.Logger
}

func NewUserService(store *storage.Store, secret string, logger zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		secret: []byte(secret),
		logger: logger,
	}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.store.CreateUser(ctx, req.Email, req.Username, string(hash))
}

// Login checks the credentials and issues a fresh token pair. The Username
// field may hold a username or an email.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.store.UserByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.tokenPair(user.ID, user.Username)
}

// Refresh exchanges a valid refresh token for a new token pair. The account
// must still exist.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.store.UserByID(ctx, int(id))
	if err != nil {
		return nil, err
	}

	return s.tokenPair(user.ID, user.Username)
}

func (s *UserService) Profile(ctx context.Context, userID int) (*models.User, error) {
	return s.store.UserByID(ctx, userID)
}

func (s *UserService) tokenPair(userID int, username string) (*models.AuthResponse, error) {
	access, err := s.GenerateJWT(userID, username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.GenerateRefreshToken(userID, username)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		UserID:       userID,
		Username:     username,
	}, nil
}

func (s *UserService) GenerateJWT(userID int, username string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(accessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *UserService) GenerateRefreshToken(userID int, username string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"typ":      "refresh",
		"exp":      time.Now().Add(refreshTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *UserService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ValidateRefreshToken accepts only tokens minted by GenerateRefreshToken.
func (s *UserService) ValidateRefreshToken(tokenString string) (jwt.MapClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
