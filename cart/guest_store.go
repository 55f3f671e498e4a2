// Package cart holds the guest cart store, cart pricing, and the reconciler that
// folds a guest cart into the authenticated server cart after login.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"storefront-bff/models"
	"storefront-bff/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cartKey     = "cart"
	giftWrapKey = "isGiftWrap"
)

// MaxQuantity caps a single line's quantity, including the sum after coalescing.
const MaxQuantity = 999

var (
	// ErrInvalidQuantity is returned when a quantity below 1 reaches the store.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrQuantityTooLarge is returned when a line would exceed MaxQuantity.
	ErrQuantityTooLarge = fmt.Errorf("quantity must be at most %d", MaxQuantity)
)

// GuestStore keeps one visitor's cart in a key-value store. It has no network
// dependency of its own beyond the storage backend and expects a single writer.
type GuestStore struct {
	kv          storage.KeyValueStore
	cartKey     string
	giftWrapKey string
	newID       func() string
	logger      *zap.Logger
}

type GuestStoreOption func(*GuestStore)

// WithNamespace scopes both keys, e.g. to one guest session.
func WithNamespace(ns string) GuestStoreOption {
	return func(s *GuestStore) {
		if ns == "" {
			return
		}
		s.cartKey = ns + ":" + cartKey
		s.giftWrapKey = ns + ":" + giftWrapKey
	}
}

func WithIDGenerator(fn func() string) GuestStoreOption {
	return func(s *GuestStore) { s.newID = fn }
}

func WithStoreLogger(logger *zap.Logger) GuestStoreOption {
	return func(s *GuestStore) { s.logger = logger }
}

func NewGuestStore(kv storage.KeyValueStore, opts ...GuestStoreOption) *GuestStore {
	s := &GuestStore{
		kv:          kv,
		cartKey:     cartKey,
		giftWrapKey: giftWrapKey,
		newID:       newGuestItemID,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newGuestItemID never collides with server ids, which carry no "guest-" prefix.
func newGuestItemID() string {
	return "guest-" + uuid.NewString()
}

// Load reads the persisted guest cart. Missing or unreadable state is treated as
// an empty cart without gift wrap, never as an error.
func (s *GuestStore) Load(ctx context.Context) models.GuestCart {
	return models.GuestCart{
		Items:    s.loadItems(ctx),
		GiftWrap: s.loadGiftWrap(ctx),
	}
}

func (s *GuestStore) loadItems(ctx context.Context) []models.GuestLineItem {
	raw, err := s.kv.Get(ctx, s.cartKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("guest cart unreadable, using empty cart", zap.String("key", s.cartKey), zap.Error(err))
		}
		return []models.GuestLineItem{}
	}

	var items []models.GuestLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("guest cart corrupt, using empty cart", zap.String("key", s.cartKey), zap.Error(err))
		return []models.GuestLineItem{}
	}
	if items == nil {
		items = []models.GuestLineItem{}
	}
	return items
}

func (s *GuestStore) loadGiftWrap(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, s.giftWrapKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("gift wrap flag unreadable, using false", zap.String("key", s.giftWrapKey), zap.Error(err))
		}
		return false
	}

	var giftWrap bool
	if err := json.Unmarshal([]byte(raw), &giftWrap); err != nil {
		s.logger.Warn("gift wrap flag corrupt, using false", zap.String("key", s.giftWrapKey), zap.Error(err))
		return false
	}
	return giftWrap
}

// AddItem adds quantity of product with the given attribute selection. A line with the
// same product id and an equal attribute mapping absorbs the quantity instead of a new line.
func (s *GuestStore) AddItem(ctx context.Context, product models.ProductSnapshot, quantity int, attrs map[string]string) (models.GuestCart, error) {
	if err := checkQuantity(quantity); err != nil {
		return models.GuestCart{}, err
	}

	cart := s.Load(ctx)
	merged := false
	for i := range cart.Items {
		if cart.Items[i].Matches(product.ID, attrs) {
			if cart.Items[i].Quantity > MaxQuantity-quantity {
				return models.GuestCart{}, ErrQuantityTooLarge
			}
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.GuestLineItem{
			ID:                 s.newID(),
			Product:            product,
			Quantity:           quantity,
			SelectedAttributes: maps.Clone(attrs),
		})
	}

	if err := s.saveItems(ctx, cart.Items); err != nil {
		return models.GuestCart{}, err
	}
	return cart, nil
}

// RemoveItem deletes the line with itemID. Removing an unknown id is not an error.
func (s *GuestStore) RemoveItem(ctx context.Context, itemID string) (models.GuestCart, error) {
	cart := s.Load(ctx)

	kept := make([]models.GuestLineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if err := s.saveItems(ctx, cart.Items); err != nil {
		return models.GuestCart{}, err
	}
	return cart, nil
}

// SetQuantity overwrites the quantity of the line with itemID. Unknown ids are a no-op.
func (s *GuestStore) SetQuantity(ctx context.Context, itemID string, quantity int) (models.GuestCart, error) {
	if err := checkQuantity(quantity); err != nil {
		return models.GuestCart{}, err
	}

	cart := s.Load(ctx)
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			if err := s.saveItems(ctx, cart.Items); err != nil {
				return models.GuestCart{}, err
			}
			break
		}
	}
	return cart, nil
}

func (s *GuestStore) SetGiftWrap(ctx context.Context, giftWrap bool) (models.GuestCart, error) {
	cart := s.Load(ctx)
	cart.GiftWrap = giftWrap

	raw, err := json.Marshal(giftWrap)
	if err != nil {
		return models.GuestCart{}, fmt.Errorf("failed to encode gift wrap flag: %w", err)
	}
	if err := s.kv.Set(ctx, s.giftWrapKey, string(raw)); err != nil {
		return models.GuestCart{}, fmt.Errorf("failed to save gift wrap flag: %w", err)
	}
	s.refresh(ctx, s.cartKey)
	return cart, nil
}

// Clear removes both keys, so a later Load finds no prior state at all.
func (s *GuestStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.cartKey); err != nil {
		return fmt.Errorf("failed to remove guest cart: %w", err)
	}
	if err := s.kv.Remove(ctx, s.giftWrapKey); err != nil {
		return fmt.Errorf("failed to remove gift wrap flag: %w", err)
	}
	return nil
}

func (s *GuestStore) saveItems(ctx context.Context, items []models.GuestLineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.cartKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	s.refresh(ctx, s.giftWrapKey)
	return nil
}

// refresh rewrites key with its current value so both keys of a guest cart age
// together in backends that expire entries. A missing key stays missing.
func (s *GuestStore) refresh(ctx context.Context, key string) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.logger.Warn("failed to refresh guest state", zap.String("key", key), zap.Error(err))
	}
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return ErrQuantityTooLarge
	}
	return nil
}
