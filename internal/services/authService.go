package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/akshat03/shopcart/internal/models"
	"github.com/akshat03/shopcart/internal/utils"
)

// TokenTTL is how long issued session tokens stay valid. There is no
// refresh flow; clients re-login after expiry.
const TokenTTL = 30 * 24 * time.Hour

type AuthService struct {
	Users     UserStore
	Denylist  TokenDenylist
	JWTSecret []byte
}

func NewAuthService(users UserStore, denylist TokenDenylist, jwtSecret string) *AuthService {
	return &AuthService{
		Users:     users,
		Denylist:  denylist,
		JWTSecret: []byte(jwtSecret),
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken issues a signed session token embedding the user's
// identity claims plus a jti used for revocation.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.JWTSecret)
}

// Signup registers a new user and returns it together with a session
// token. Email and name are normalized before storage; duplicate emails
// are rejected by the unique index.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = utils.NormalizeEmail(email)
	name = utils.NormalizeName(name)
	if email == "" || password == "" || name == "" {
		return nil, "", fmt.Errorf("email, password and name are required: %w", ErrValidation)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  hash,
		Name:      name,
		Role:      "user",
		Cart:      []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Users.Insert(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", fmt.Errorf("email already registered: %w", ErrDuplicate)
		}
		return nil, "", err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a user. Unknown email and wrong password produce
// the same error, so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = utils.NormalizeEmail(email)

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, "", err
	}

	if !VerifyPassword(password, user.Password) {
		return nil, "", fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout denylists the token's jti for the remainder of its validity.
// Tokens already past expiry need no entry.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.Denylist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.Denylist.Revoke(ctx, jti, ttl)
}

func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the display name and/or password. Email is
// immutable. Empty arguments leave the field unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, password string) (*models.User, error) {
	name = utils.NormalizeName(name)
	if name == "" && password == "" {
		return nil, fmt.Errorf("nothing to update: %w", ErrValidation)
	}

	hash := ""
	if password != "" {
		var err error
		hash, err = HashPassword(password)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Users.UpdateProfile(ctx, userID, name, hash); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin account on startup if it does
// not exist yet. A no-op when the credentials are not configured.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = utils.NormalizeEmail(email)

	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  hash,
		Name:      "Admin",
		Role:      "admin",
		Cart:      []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Insert(ctx, admin); err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}
