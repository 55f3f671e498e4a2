package models

import (
	"github.com/shopspring/decimal"
)

// ProductSnapshot is the product as it looked when a guest put it in the cart.
// Guest carts keep the whole snapshot because there is no server lookup for them.
type ProductSnapshot struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Images []string        `json:"images,omitempty"`
	Brand  string          `json:"brand,omitempty"`
}
