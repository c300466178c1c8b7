package services

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akshat03/shopcart/internal/models"
)

// Storage interfaces the services depend on. db.UserStore and
// db.ProductStore are the Mongo implementations; db.MemoryUserStore and
// db.MemoryProductStore satisfy them for tests.

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, passwordHash string) error

	IncCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, delta int) (bool, error)
	PushCartItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error)
	SetCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error)
	PullCartItem(ctx context.Context, userID, productID primitive.ObjectID) error
	ClearCart(ctx context.Context, userID primitive.ObjectID) error
}

type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, fields models.ProductUpdate, updatedBy string) (*models.Product, error)
	SetImageURL(ctx context.Context, id primitive.ObjectID, url string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TokenDenylist records revoked token ids until their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ImageStore persists uploaded product images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
}
