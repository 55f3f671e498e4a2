package handlers

import (
	"errors"
	"net/http"

	"storefront-bff/cart"
	"storefront-bff/dtos"
	"storefront-bff/storage"
	"storefront-bff/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GuestCartHandler serves the cart of a visitor who has not logged in yet.
// Every route runs behind the guest session middleware.
type GuestCartHandler struct {
	KV     storage.KeyValueStore
	Logger *zap.Logger
}

func (h *GuestCartHandler) store(c *gin.Context) (*cart.GuestStore, bool) {
	store, ok := guestStoreFor(c, h.KV, loggerOrNop(h.Logger))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid guest session required"})
	}
	return store, ok
}

func (h *GuestCartHandler) GetCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, guestCartResponse(store.Load(c.Request.Context())))
}

func (h *GuestCartHandler) AddItem(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var req dtos.AddGuestItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if err := utils.ValidateAttributes(req.SelectedAttributes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Product.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	guest, err := store.AddItem(c.Request.Context(), req.Product.Snapshot(), req.Quantity, req.SelectedAttributes)
	if err != nil {
		h.writeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, guestCartResponse(guest))
}

func (h *GuestCartHandler) UpdateItem(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var req dtos.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	guest, err := store.SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		h.writeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, guestCartResponse(guest))
}

func (h *GuestCartHandler) RemoveItem(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	guest, err := store.RemoveItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, guestCartResponse(guest))
}

func (h *GuestCartHandler) SetGiftWrap(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var req dtos.SetGiftWrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	guest, err := store.SetGiftWrap(c.Request.Context(), *req.GiftWrap)
	if err != nil {
		h.writeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, guestCartResponse(guest))
}

func (h *GuestCartHandler) ClearCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	if err := store.Clear(c.Request.Context()); err != nil {
		h.writeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, guestCartResponse(store.Load(c.Request.Context())))
}

func (h *GuestCartHandler) writeFailed(c *gin.Context, err error) {
	if errors.Is(err, cart.ErrInvalidQuantity) || errors.Is(err, cart.ErrQuantityTooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loggerOrNop(h.Logger).Error("guest cart write failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
}
