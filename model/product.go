package model

import "time"

// Category is the storefront section a product is listed under.
type Category string

const (
	CategoryWomen Category = "women"
	CategoryMen   Category = "men"
	CategoryKids  Category = "kids"
)

// Product is a catalog entry. IDs are assigned as one more than the current
// maximum, so they stay small and human-readable in the admin panel.
type Product struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Category  Category  `json:"category"`
	NewPrice  float64   `json:"new_price"`
	OldPrice  float64   `json:"old_price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"date"`
}

// AddProductRequest defines the payload for adding a catalog entry.
// Prices are pointers so that a missing price is distinguishable from 0.
type AddProductRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Image    string   `json:"image" validate:"required"`
	Category string   `json:"category" validate:"required,oneof=women men kids"`
	NewPrice *float64 `json:"new_price" validate:"required"`
	OldPrice *float64 `json:"old_price" validate:"required"`
}

// RemoveProductRequest identifies the product to delete.
type RemoveProductRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// ProductQuery selects available products, newest first. A zero Limit
// returns every match.
type ProductQuery struct {
	Category Category
	Limit    int
	Offset   int
}
