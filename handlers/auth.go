package handlers

import (
	"encoding/json"
	"net/http"

	"storefront-bff/cart"
	"storefront-bff/dtos"
	"storefront-bff/models"
	"storefront-bff/storage"
	"storefront-bff/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Store  StoreAPI
	KV     storage.KeyValueStore
	Logger *zap.Logger
}

// Login signs the user in with the store API and folds their guest cart, if any,
// into the server cart. A failed merge never fails the login: the guest cart is
// kept and the reason is returned in merge_error so the client can retry.
func (h *AuthHandler) Login(c *gin.Context) {
	logger := loggerOrNop(h.Logger)

	var req dtos.LoginBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	data, err := h.Store.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUpstreamError(c, logger, err)
		return
	}
	token := data.BearerToken()
	ctx := upstreamContext(c, token)

	var (
		sc       *models.ServerCart
		mergeErr any
	)
	if guest, ok := guestStoreFor(c, h.KV, logger); ok {
		sc, err = cart.NewReconciler(guest, h.Store, logger).Reconcile(ctx)
		if err != nil {
			logger.Warn("guest cart not merged at login", zap.Error(err))
			mergeErr = err.Error()
		}
	}
	if sc == nil {
		if sc, err = h.Store.FetchCart(ctx); err != nil {
			logger.Warn("server cart unavailable after login", zap.Error(err))
			sc = nil
		}
	}

	user := data.User
	if len(user) == 0 {
		user = json.RawMessage("null")
	}

	body := gin.H{
		"user":        user,
		"token":       token,
		"cart":        nil,
		"summary":     nil,
		"merge_error": mergeErr,
	}
	// an unknown cart is reported as null rather than as an empty one
	if sc != nil {
		resp := serverCartResponse(sc)
		body["cart"] = gin.H{"items": resp["items"], "gift_wrap": resp["gift_wrap"], "priced": resp["priced"]}
		body["summary"] = resp["summary"]
	}
	c.JSON(http.StatusOK, body)
}
