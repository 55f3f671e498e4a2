package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"

	"storefront-bff/models"

	"github.com/shopspring/decimal"
)

// Envelope wraps every store API response body.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginData is the store API login payload. Older deployments send "token"
// instead of "accessToken".
type LoginData struct {
	User        json.RawMessage `json:"user"`
	AccessToken string          `json:"accessToken"`
	Token       string          `json:"token"`
}

func (d LoginData) BearerToken() string {
	if d.AccessToken != "" {
		return d.AccessToken
	}
	return d.Token
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type GiftWrapRequest struct {
	IsGiftWrap bool `json:"isGiftWrap"`
}

// UpstreamProduct is a populated product as the store API sends it.
type UpstreamProduct struct {
	ID     string          `json:"_id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Images []string        `json:"images"`
	Brand  string          `json:"brand"`
}

// ProductRef is a cart item's productId: either a bare id string or a populated product.
type ProductRef struct {
	ID      string
	Product *UpstreamProduct
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var p UpstreamProduct
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("productId is neither an id nor a product: %w", err)
	}
	r.ID = p.ID
	r.Product = &p
	return nil
}

type UpstreamCartItem struct {
	ID                 string            `json:"_id"`
	ProductID          ProductRef        `json:"productId"`
	Quantity           int               `json:"quantity"`
	SelectedAttributes map[string]string `json:"selectedAttributes"`
}

type UpstreamCart struct {
	Items      []UpstreamCartItem `json:"items"`
	IsGiftWrap bool               `json:"isGiftWrap"`
}

// ToModel converts the wire cart into a ServerCart keyed by product id.
func (c UpstreamCart) ToModel() *models.ServerCart {
	cart := &models.ServerCart{
		Items:    make([]models.ServerLineItem, 0, len(c.Items)),
		GiftWrap: c.IsGiftWrap,
	}
	for _, item := range c.Items {
		line := models.ServerLineItem{
			ID:                 item.ID,
			ProductID:          item.ProductID.ID,
			Quantity:           item.Quantity,
			SelectedAttributes: item.SelectedAttributes,
		}
		if p := item.ProductID.Product; p != nil {
			line.Product = &models.ProductSnapshot{
				ID:     p.ID,
				Title:  p.Title,
				Price:  p.Price,
				Stock:  p.Stock,
				Images: p.Images,
				Brand:  p.Brand,
			}
		}
		cart.Items = append(cart.Items, line)
	}
	return cart
}
