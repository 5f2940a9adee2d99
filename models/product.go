package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ProductImage struct {
	URL string `bson:"url" json:"url"`
	Alt string `bson:"alt" json:"alt"`
}

type Product struct {
	ID bson.ObjectID `bson:"_id,omitempty" json:"id"`

	// PublicID is the human-readable identifier (P-...), distinct from _id.
	PublicID string `bson:"publicId" json:"publicId"`

	Name        string         `bson:"name" json:"name"`
	Slug        string         `bson:"slug,omitempty" json:"slug,omitempty"`
	Images      []ProductImage `bson:"images" json:"images"`
	Description string         `bson:"description" json:"description"`
	Price       float64        `bson:"price" json:"price"`
	SKU         string         `bson:"sku,omitempty" json:"sku,omitempty"`
	Stock       int            `bson:"stock" json:"stock"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
