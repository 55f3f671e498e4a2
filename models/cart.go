package models

import (
	"maps"

	"github.com/shopspring/decimal"
)

// GuestLineItem is a line item held in a guest cart. ID is generated locally and
// is never a server cart item id.
type GuestLineItem struct {
	ID                 string            `json:"id"`
	Product            ProductSnapshot   `json:"product"`
	Quantity           int               `json:"quantity"`
	SelectedAttributes map[string]string `json:"selected_attributes,omitempty"`
}

// Matches reports whether the item is for the same product and attribute selection.
func (i GuestLineItem) Matches(productID string, attrs map[string]string) bool {
	return i.Product.ID == productID && maps.Equal(i.SelectedAttributes, attrs)
}

func (i GuestLineItem) UnitPrice() decimal.Decimal { return i.Product.Price }

func (i GuestLineItem) Units() int { return i.Quantity }

// GuestCart is the whole guest state: the items and the gift wrap flag.
type GuestCart struct {
	Items    []GuestLineItem `json:"items"`
	GiftWrap bool            `json:"gift_wrap"`
}

// IsEmpty is true when there is nothing worth merging into a server cart.
func (c GuestCart) IsEmpty() bool {
	return len(c.Items) == 0 && !c.GiftWrap
}

// ServerLineItem is a line item of the authenticated cart held by the store API.
// The product is referenced by id; Product is only set when the API populated it.
type ServerLineItem struct {
	ID                 string            `json:"id"`
	ProductID          string            `json:"product_id"`
	Product            *ProductSnapshot  `json:"product,omitempty"`
	Quantity           int               `json:"quantity"`
	SelectedAttributes map[string]string `json:"selected_attributes,omitempty"`
}

func (i ServerLineItem) UnitPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price
}

func (i ServerLineItem) Units() int { return i.Quantity }

type ServerCart struct {
	Items    []ServerLineItem `json:"items"`
	GiftWrap bool             `json:"gift_wrap"`
}

// Priced reports whether every line carries a product, so the cart can be totalled.
func (c ServerCart) Priced() bool {
	for _, item := range c.Items {
		if item.Product == nil {
			return false
		}
	}
	return true
}

// AddItemRequest is what gets sent to the store API to add a line to a server cart.
type AddItemRequest struct {
	ProductID          string            `json:"productId"`
	Quantity           int               `json:"quantity"`
	SelectedAttributes map[string]string `json:"selectedAttributes,omitempty"`
}
