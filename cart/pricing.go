package cart

import (
	"github.com/shopspring/decimal"
)

// PricedLine is anything that can be priced: guest and server line items alike.
type PricedLine interface {
	UnitPrice() decimal.Decimal
	Units() int
}

// Rules are the cart-level fees.
type Rules struct {
	// Shipping is free only when the subtotal is strictly above this amount.
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	GiftWrapFee           decimal.Decimal
}

var DefaultRules = Rules{
	FreeShippingThreshold: decimal.NewFromInt(1500),
	ShippingFee:           decimal.NewFromInt(135),
	GiftWrapFee:           decimal.NewFromInt(50),
}

type Summary struct {
	ItemCount    int             `json:"item_count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	FreeShipping bool            `json:"free_shipping"`
	GiftWrapFee  decimal.Decimal `json:"gift_wrap_fee"`
	Total        decimal.Decimal `json:"total"`
}

// Calculate prices items with DefaultRules.
func Calculate[L PricedLine](items []L, giftWrap bool) Summary {
	return PriceWith(DefaultRules, items, giftWrap)
}

// PriceWith is a pure function of its inputs; items are only read.
func PriceWith[L PricedLine](rules Rules, items []L, giftWrap bool) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice().Mul(decimal.NewFromInt(int64(item.Units()))))
		count += item.Units()
	}

	shipping := rules.ShippingFee
	free := subtotal.GreaterThan(rules.FreeShippingThreshold)
	if free {
		shipping = decimal.Zero
	}

	giftWrapFee := decimal.Zero
	if giftWrap {
		giftWrapFee = rules.GiftWrapFee
	}

	return Summary{
		ItemCount:    count,
		Subtotal:     subtotal,
		Shipping:     shipping,
		FreeShipping: free,
		GiftWrapFee:  giftWrapFee,
		Total:        subtotal.Add(shipping).Add(giftWrapFee),
	}
}
