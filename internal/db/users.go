package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akshat03/shopcart/internal/models"
)

// UserStore persists users and their embedded carts. Cart mutations are
// single atomic updates on the user document, never read-modify-write,
// so concurrent requests for the same user cannot lose each other's
// changes.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(database *mongo.Database) *UserStore {
	return &UserStore{col: database.Collection(colUsers)}
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	_, err := s.col.InsertOne(ctx, user)
	return err
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile sets the given name and/or password hash. Empty strings
// leave the field unchanged.
func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, passwordHash string) error {
	set := bson.M{"updated_at": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if passwordHash != "" {
		set["password"] = passwordHash
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncCartQuantity adds delta to the quantity of an existing cart entry.
// Reports whether an entry for the product was present.
func (s *UserStore) IncCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, delta int) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID, "cart.product_id": productID},
		bson.M{"$inc": bson.M{"cart.$.quantity": delta}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PushCartItem appends a new cart entry. The filter excludes carts that
// already hold the product, so a concurrent push cannot create a
// duplicate entry.
func (s *UserStore) PushCartItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID, "cart.product_id": bson.M{"$ne": item.ProductID}},
		bson.M{"$push": bson.M{"cart": item}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetCartQuantity overwrites the quantity of an existing cart entry.
// Reports whether an entry for the product was present.
func (s *UserStore) SetCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID, "cart.product_id": productID},
		bson.M{"$set": bson.M{"cart.$.quantity": quantity}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *UserStore) PullCartItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"cart": bson.M{"product_id": productID}}},
	)
	return err
}

func (s *UserStore) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cart": []models.CartItem{}}},
	)
	return err
}
