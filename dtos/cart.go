package dtos

import (
	"storefront-bff/models"

	"github.com/shopspring/decimal"
)

// AddGuestItemRequest is the body of POST /api/guest/cart.
type AddGuestItemRequest struct {
	Product            GuestProduct      `json:"product" binding:"required"`
	Quantity           int               `json:"quantity" binding:"required,min=1,max=999"`
	SelectedAttributes map[string]string `json:"selected_attributes"`
}

// GuestProduct is the product snapshot a guest client sends along with an add.
type GuestProduct struct {
	ID     string          `json:"id" binding:"required"`
	Title  string          `json:"title" binding:"required"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Images []string        `json:"images"`
	Brand  string          `json:"brand"`
}

func (p GuestProduct) Snapshot() models.ProductSnapshot {
	return models.ProductSnapshot{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Stock:  p.Stock,
		Images: p.Images,
		Brand:  p.Brand,
	}
}

// AddServerItemRequest is the body of POST /api/cart.
type AddServerItemRequest struct {
	ProductID          string            `json:"product_id" binding:"required"`
	Quantity           int               `json:"quantity" binding:"required,min=1,max=999"`
	SelectedAttributes map[string]string `json:"selected_attributes"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999"`
}

type SetGiftWrapRequest struct {
	GiftWrap *bool `json:"gift_wrap" binding:"required"`
}

type LoginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
