package cart

import (
	"context"
	"fmt"

	"storefront-bff/models"
)

// fakeCartService records every call in order. A call fails when its 1-based
// position is in failOn.
type fakeCartService struct {
	calls  []string
	failOn map[int]error
	cart   models.ServerCart
}

func newFakeCartService() *fakeCartService {
	return &fakeCartService{failOn: map[int]error{}}
}

func (f *fakeCartService) record(ctx context.Context, call string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.calls = append(f.calls, call)
	return f.failOn[len(f.calls)]
}

func (f *fakeCartService) FetchCart(ctx context.Context) (*models.ServerCart, error) {
	if err := f.record(ctx, "fetch"); err != nil {
		return nil, err
	}
	out := f.cart
	return &out, nil
}

func (f *fakeCartService) AddItem(ctx context.Context, req models.AddItemRequest) (*models.ServerCart, error) {
	if err := f.record(ctx, fmt.Sprintf("add(%s,%d)", req.ProductID, req.Quantity)); err != nil {
		return nil, err
	}
	f.cart.Items = append(f.cart.Items, models.ServerLineItem{
		ID:                 fmt.Sprintf("srv-%d", len(f.cart.Items)+1),
		ProductID:          req.ProductID,
		Quantity:           req.Quantity,
		SelectedAttributes: req.SelectedAttributes,
	})
	out := f.cart
	return &out, nil
}

func (f *fakeCartService) SetGiftWrap(ctx context.Context, giftWrap bool) (*models.ServerCart, error) {
	if err := f.record(ctx, fmt.Sprintf("giftWrap(%t)", giftWrap)); err != nil {
		return nil, err
	}
	f.cart.GiftWrap = giftWrap
	out := f.cart
	return &out, nil
}
