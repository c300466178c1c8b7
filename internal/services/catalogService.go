package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akshat03/shopcart/internal/models"
)

type CatalogService struct {
	Products ProductStore
	Images   ImageStore
}

func NewCatalogService(products ProductStore, images ImageStore) *CatalogService {
	return &CatalogService{Products: products, Images: images}
}

func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return s.Products.Find(ctx, filter)
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.Products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

// Create adds a new catalog entry. Name is required and price must not
// be negative; everything else is optional.
func (s *CatalogService) Create(ctx context.Context, product *models.Product, createdBy string) (*models.Product, error) {
	if product.Name == "" {
		return nil, fmt.Errorf("product name is required: %w", ErrValidation)
	}
	if product.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}

	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.UpdatedBy = createdBy

	if err := s.Products.Insert(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies a partial update of the whitelisted fields and stamps
// the updating admin.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, fields models.ProductUpdate, updatedBy string) (*models.Product, error) {
	if fields.Name == nil && fields.Price == nil && fields.Category == nil &&
		fields.Description == nil && fields.ImageURL == nil {
		return nil, fmt.Errorf("no fields to update: %w", ErrValidation)
	}
	if fields.Price != nil && *fields.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}

	product, err := s.Products.Update(ctx, id, fields, updatedBy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("product not found: %w", ErrNotFound)
		}
		return err
	}
	return nil
}

// UploadImage stores a product image and points the product's imageUrl
// at the stored object.
func (s *CatalogService) UploadImage(ctx context.Context, id primitive.ObjectID, filename string, reader io.Reader, size int64, contentType string) (*models.Product, error) {
	if s.Images == nil {
		return nil, errors.New("image storage is not configured")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s_%s", id.Hex(), filename)
	url, err := s.Images.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if err := s.Products.SetImageURL(ctx, id, url); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}
