package handlers

import (
	"errors"
	"net/http"

	"storefront-bff/cart"
	"storefront-bff/dtos"
	"storefront-bff/models"
	"storefront-bff/storage"
	"storefront-bff/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartHandler serves the authenticated cart held by the store API.
type CartHandler struct {
	Store  StoreAPI
	KV     storage.KeyValueStore
	Logger *zap.Logger
}

func (h *CartHandler) GetCart(c *gin.Context) {
	sc, err := h.Store.FetchCart(upstreamContext(c, c.GetString("access_token")))
	if err != nil {
		respondUpstreamError(c, loggerOrNop(h.Logger), err)
		return
	}

	c.JSON(http.StatusOK, serverCartResponse(sc))
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req dtos.AddServerItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if err := utils.ValidateAttributes(req.SelectedAttributes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sc, err := h.Store.AddItem(upstreamContext(c, c.GetString("access_token")), models.AddItemRequest{
		ProductID:          req.ProductID,
		Quantity:           req.Quantity,
		SelectedAttributes: req.SelectedAttributes,
	})
	if err != nil {
		respondUpstreamError(c, loggerOrNop(h.Logger), err)
		return
	}

	c.JSON(http.StatusOK, serverCartResponse(sc))
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req dtos.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	sc, err := h.Store.UpdateItem(upstreamContext(c, c.GetString("access_token")), c.Param("id"), req.Quantity)
	if err != nil {
		respondUpstreamError(c, loggerOrNop(h.Logger), err)
		return
	}

	c.JSON(http.StatusOK, serverCartResponse(sc))
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sc, err := h.Store.RemoveItem(upstreamContext(c, c.GetString("access_token")), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, loggerOrNop(h.Logger), err)
		return
	}

	c.JSON(http.StatusOK, serverCartResponse(sc))
}

func (h *CartHandler) SetGiftWrap(c *gin.Context) {
	var req dtos.SetGiftWrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	sc, err := h.Store.SetGiftWrap(upstreamContext(c, c.GetString("access_token")), *req.GiftWrap)
	if err != nil {
		respondUpstreamError(c, loggerOrNop(h.Logger), err)
		return
	}

	c.JSON(http.StatusOK, serverCartResponse(sc))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.Store.ClearCart(upstreamContext(c, c.GetString("access_token"))); err != nil {
		respondUpstreamError(c, loggerOrNop(h.Logger), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// Reconcile retries merging the caller's guest cart into their server cart, for
// when the merge at login failed and the guest cart was kept.
func (h *CartHandler) Reconcile(c *gin.Context) {
	logger := loggerOrNop(h.Logger)
	guest, ok := guestStoreFor(c, h.KV, logger)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid guest session required"})
		return
	}

	sc, err := cart.NewReconciler(guest, h.Store, logger).
		Reconcile(upstreamContext(c, c.GetString("access_token")))
	if err != nil {
		var mergeErr *cart.MergeError
		if errors.As(err, &mergeErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":       "Failed to merge guest cart",
				"merge_error": mergeErr.Error(),
				"step":        mergeErr.Step,
				"total_steps": mergeErr.Total,
			})
			return
		}
		respondUpstreamError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, serverCartResponse(sc))
}
