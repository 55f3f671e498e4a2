package handlers

import (
	"context"
	"errors"
	"net/http"

	"storefront-bff/cart"
	"storefront-bff/dtos"
	"storefront-bff/models"
	"storefront-bff/storage"
	"storefront-bff/storeapi"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// StoreAPI is the remote store API as the handlers use it. *storeapi.Client satisfies it.
type StoreAPI interface {
	cart.CartService
	Login(ctx context.Context, email, password string) (*dtos.LoginData, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (*models.ServerCart, error)
	RemoveItem(ctx context.Context, itemID string) (*models.ServerCart, error)
	ClearCart(ctx context.Context) error
}

var _ StoreAPI = (*storeapi.Client)(nil)

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// guestStoreFor returns the cart store scoped to the request's guest session.
func guestStoreFor(c *gin.Context, kv storage.KeyValueStore, logger *zap.Logger) (*cart.GuestStore, bool) {
	value, exists := c.Get("guest_id")
	if !exists {
		return nil, false
	}
	guestID, ok := value.(uuid.UUID)
	if !ok || guestID == uuid.Nil {
		return nil, false
	}
	return cart.NewGuestStore(kv,
		cart.WithNamespace("guest:"+guestID.String()),
		cart.WithStoreLogger(logger.With(zap.String("guest_id", guestID.String()))),
	), true
}

// upstreamContext carries the caller's bearer token to the store API.
func upstreamContext(c *gin.Context, token string) context.Context {
	return storeapi.WithAccessToken(c.Request.Context(), token)
}

// respondUpstreamError passes store API 4xx answers through and maps everything
// else to a gateway error.
func respondUpstreamError(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *storeapi.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		c.JSON(apiErr.StatusCode, gin.H{"error": msg})
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store API temporarily unavailable"})
	default:
		logger.Error("store API call failed", zap.Error(err), zap.String("route", c.FullPath()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Store API request failed"})
	}
}

func serverCartResponse(sc *models.ServerCart) gin.H {
	items := []models.ServerLineItem{}
	giftWrap := false
	if sc != nil {
		if sc.Items != nil {
			items = sc.Items
		}
		giftWrap = sc.GiftWrap
	}
	// a line referenced only by product id has no price here, so no summary is offered
	if !(models.ServerCart{Items: items}).Priced() {
		return gin.H{
			"items":     items,
			"gift_wrap": giftWrap,
			"priced":    false,
			"summary":   nil,
		}
	}
	return gin.H{
		"items":     items,
		"gift_wrap": giftWrap,
		"priced":    true,
		"summary":   cart.Calculate(items, giftWrap),
	}
}

func guestCartResponse(gc models.GuestCart) gin.H {
	return gin.H{
		"items":     gc.Items,
		"gift_wrap": gc.GiftWrap,
		"priced":    true,
		"summary":   cart.Calculate(gc.Items, gc.GiftWrap),
	}
}
