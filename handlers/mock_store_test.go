package handlers

import (
	"context"
	"fmt"
	"sync"

	"storefront-bff/dtos"
	"storefront-bff/models"
	"storefront-bff/storeapi"
)

// mockStore is an in-memory store API. Any *Fn field overrides the default behaviour.
type mockStore struct {
	mu sync.Mutex

	LoginFn       func(email, password string) (*dtos.LoginData, error)
	FetchCartFn   func() (*models.ServerCart, error)
	AddItemFn     func(req models.AddItemRequest) (*models.ServerCart, error)
	UpdateItemFn  func(itemID string, quantity int) (*models.ServerCart, error)
	RemoveItemFn  func(itemID string) (*models.ServerCart, error)
	SetGiftWrapFn func(giftWrap bool) (*models.ServerCart, error)
	ClearCartFn   func() error

	Calls  []string
	Tokens []string
	cart   models.ServerCart
}

func newMockStore() *mockStore {
	return &mockStore{cart: models.ServerCart{Items: []models.ServerLineItem{}}}
}

func (m *mockStore) record(ctx context.Context, call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	m.Tokens = append(m.Tokens, storeapi.AccessToken(ctx))
}

func (m *mockStore) snapshot() *models.ServerCart {
	items := make([]models.ServerLineItem, len(m.cart.Items))
	copy(items, m.cart.Items)
	return &models.ServerCart{Items: items, GiftWrap: m.cart.GiftWrap}
}

func (m *mockStore) Login(ctx context.Context, email, password string) (*dtos.LoginData, error) {
	m.record(ctx, "login")
	if m.LoginFn != nil {
		return m.LoginFn(email, password)
	}
	return &dtos.LoginData{
		User:        []byte(fmt.Sprintf(`{"email":%q}`, email)),
		AccessToken: "upstream-token",
	}, nil
}

func (m *mockStore) FetchCart(ctx context.Context) (*models.ServerCart, error) {
	m.record(ctx, "fetch")
	if m.FetchCartFn != nil {
		return m.FetchCartFn()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

func (m *mockStore) AddItem(ctx context.Context, req models.AddItemRequest) (*models.ServerCart, error) {
	m.record(ctx, fmt.Sprintf("add(%s,%d)", req.ProductID, req.Quantity))
	if m.AddItemFn != nil {
		return m.AddItemFn(req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart.Items = append(m.cart.Items, models.ServerLineItem{
		ID:                 fmt.Sprintf("srv-%d", len(m.cart.Items)+1),
		ProductID:          req.ProductID,
		Quantity:           req.Quantity,
		SelectedAttributes: req.SelectedAttributes,
	})
	return m.snapshot(), nil
}

func (m *mockStore) UpdateItem(ctx context.Context, itemID string, quantity int) (*models.ServerCart, error) {
	m.record(ctx, fmt.Sprintf("update(%s,%d)", itemID, quantity))
	if m.UpdateItemFn != nil {
		return m.UpdateItemFn(itemID, quantity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cart.Items {
		if m.cart.Items[i].ID == itemID {
			m.cart.Items[i].Quantity = quantity
		}
	}
	return m.snapshot(), nil
}

func (m *mockStore) RemoveItem(ctx context.Context, itemID string) (*models.ServerCart, error) {
	m.record(ctx, "remove("+itemID+")")
	if m.RemoveItemFn != nil {
		return m.RemoveItemFn(itemID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.cart.Items[:0]
	for _, item := range m.cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	m.cart.Items = kept
	return m.snapshot(), nil
}

func (m *mockStore) SetGiftWrap(ctx context.Context, giftWrap bool) (*models.ServerCart, error) {
	m.record(ctx, fmt.Sprintf("giftWrap(%t)", giftWrap))
	if m.SetGiftWrapFn != nil {
		return m.SetGiftWrapFn(giftWrap)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart.GiftWrap = giftWrap
	return m.snapshot(), nil
}

func (m *mockStore) ClearCart(ctx context.Context) error {
	m.record(ctx, "clear")
	if m.ClearCartFn != nil {
		return m.ClearCartFn()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = models.ServerCart{Items: []models.ServerLineItem{}}
	return nil
}

func (m *mockStore) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}
