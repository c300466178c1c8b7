package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akshat03/shopcart/internal/models"
)

// In-memory counterparts of UserStore and ProductStore. Mutations are
// serialized behind a mutex, which gives the same no-lost-update
// guarantee the Mongo stores get from single atomic updates. Backs the
// package-level tests; also usable as a throwaway store for local runs
// without a database.

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *MemoryUserStore) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return duplicateKeyError()
		}
	}

	clone := *user
	clone.Cart = append([]models.CartItem(nil), user.Cart...)
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			clone.Cart = append([]models.CartItem(nil), u.Cart...)
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *u
	clone.Cart = append([]models.CartItem(nil), u.Cart...)
	return &clone, nil
}

func (s *MemoryUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if name != "" {
		u.Name = name
	}
	if passwordHash != "" {
		u.Password = passwordHash
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) IncCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			u.Cart[i].Quantity += delta
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) PushCartItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.Cart {
		if u.Cart[i].ProductID == item.ProductID {
			return false, nil
		}
	}
	u.Cart = append(u.Cart, item)
	return true, nil
}

func (s *MemoryUserStore) SetCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			u.Cart[i].Quantity = quantity
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) PullCartItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	kept := u.Cart[:0]
	for _, item := range u.Cart {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	u.Cart = kept
	return nil
}

func (s *MemoryUserStore) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.Cart = []models.CartItem{}
	}
	return nil
}

type MemoryProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[primitive.ObjectID]*models.Product)}
}

func (s *MemoryProductStore) Insert(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (s *MemoryProductStore) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []models.Product{}
	for _, p := range s.products {
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.Category != "" && !containsFold(p.Category, filter.Category) {
			continue
		}
		if filter.Search != "" && !containsFold(p.Name, filter.Search) && !containsFold(p.Description, filter.Search) {
			continue
		}
		matched = append(matched, *p)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *MemoryProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *p
	return &clone, nil
}

func (s *MemoryProductStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var products []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (s *MemoryProductStore) Update(ctx context.Context, id primitive.ObjectID, fields models.ProductUpdate, updatedBy string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Price != nil {
		p.Price = *fields.Price
	}
	if fields.Category != nil {
		p.Category = *fields.Category
	}
	if fields.Description != nil {
		p.Description = *fields.Description
	}
	if fields.ImageURL != nil {
		p.ImageURL = *fields.ImageURL
	}
	p.UpdatedAt = time.Now()
	p.UpdatedBy = updatedBy

	clone := *p
	return &clone, nil
}

func (s *MemoryProductStore) SetImageURL(ctx context.Context, id primitive.ObjectID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.ImageURL = url
	p.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.products, id)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
