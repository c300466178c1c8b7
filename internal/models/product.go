package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       int64              `bson:"price" json:"price"` // minor currency units
	Category    string             `bson:"category" json:"category"`
	ImageURL    string             `bson:"image_url" json:"imageUrl"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
	UpdatedBy   string             `bson:"updated_by,omitempty" json:"-"`
}

// ProductFilter narrows a catalog listing. Nil/empty fields are ignored.
type ProductFilter struct {
	MinPrice *int64
	MaxPrice *int64
	Category string
	Search   string
}

// ProductUpdate carries the whitelisted fields of a partial product
// update. Nil means "leave unchanged".
type ProductUpdate struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}
