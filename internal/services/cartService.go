package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akshat03/shopcart/internal/models"
)

type CartService struct {
	Users    UserStore
	Products ProductStore
}

func NewCartService(users UserStore, products ProductStore) *CartService {
	return &CartService{Users: users, Products: products}
}

// Get returns the user's cart joined against the current catalog.
// Entries whose product no longer exists are dropped from the view, not
// from the stored cart.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) ([]models.PopulatedCartItem, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(user.Cart))
	for _, item := range user.Cart {
		ids = append(ids, item.ProductID)
	}

	products, err := s.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	populated := []models.PopulatedCartItem{}
	for _, item := range user.Cart {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		populated = append(populated, models.PopulatedCartItem{CartItem: item, Product: product})
	}
	return populated, nil
}

// Add puts quantity of a product into the cart. If the product is
// already there its quantity is incremented, so the cart never holds
// two entries for one product. Returns the new cart count.
func (s *CartService) Add(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (int, error) {
	if quantity < 1 {
		return 0, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("product not found: %w", ErrNotFound)
		}
		return 0, err
	}

	item := models.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}

	// Increment if present, otherwise push a guarded new entry. A push
	// losing the race to a concurrent push matches nothing, so retry the
	// increment once.
	for attempt := 0; attempt < 2; attempt++ {
		matched, err := s.Users.IncCartQuantity(ctx, userID, productID, quantity)
		if err != nil {
			return 0, err
		}
		if matched {
			return s.count(ctx, userID)
		}

		matched, err = s.Users.PushCartItem(ctx, userID, item)
		if err != nil {
			return 0, err
		}
		if matched {
			return s.count(ctx, userID)
		}
	}

	// Neither update matched twice in a row: the user document is gone.
	if _, err := s.Users.FindByID(ctx, userID); errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return 0, errors.New("cart update conflict")
}

// Update overwrites the quantity of an existing cart entry.
func (s *CartService) Update(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (int, error) {
	if quantity < 1 {
		return 0, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	matched, err := s.Users.SetCartQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return 0, err
	}
	if !matched {
		return 0, fmt.Errorf("item not in cart: %w", ErrNotFound)
	}
	return s.count(ctx, userID)
}

// Remove drops a product from the cart. Removing an absent product is
// not an error.
func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (int, error) {
	if err := s.Users.PullCartItem(ctx, userID, productID); err != nil {
		return 0, err
	}
	return s.count(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return s.Users.ClearCart(ctx, userID)
}

// count sums the quantities in the stored cart.
func (s *CartService) count(ctx context.Context, userID primitive.ObjectID) (int, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, item := range user.Cart {
		total += item.Quantity
	}
	return total, nil
}
