package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"storefront-bff/middleware"
	"storefront-bff/storage"
	"storefront-bff/storeapi"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("GUEST_TOKEN_SECRET", "test-secret-for-routes")
}

// fakeUpstream is a minimal store API holding one user's cart.
type fakeUpstream struct {
	mu       sync.Mutex
	items    []gin.H
	giftWrap bool
}

func (f *fakeUpstream) cart() gin.H {
	return gin.H{"data": gin.H{"items": f.items, "isGiftWrap": f.giftWrap}, "message": "ok"}
}

func (f *fakeUpstream) handler() http.Handler {
	r := gin.New()
	r.POST("/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"user": gin.H{"name": "Shopper"}, "accessToken": "upstream-token"}})
	})

	authed := r.Group("")
	authed.Use(func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer upstream-token" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		c.Next()
	})
	authed.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, f.cart())
	})
	authed.POST("/cart", func(c *gin.Context) {
		var req struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		c.ShouldBindJSON(&req)
		f.items = append(f.items, gin.H{
			"_id":       "srv-" + req.ProductID,
			"productId": gin.H{"_id": req.ProductID, "title": req.ProductID, "price": 100},
			"quantity":  req.Quantity,
		})
		c.JSON(http.StatusOK, f.cart())
	})
	authed.PATCH("/cart/gift-wrap", func(c *gin.Context) {
		var req struct {
			IsGiftWrap bool `json:"isGiftWrap"`
		}
		c.ShouldBindJSON(&req)
		f.giftWrap = req.IsGiftWrap
		c.JSON(http.StatusOK, f.cart())
	})
	return r
}

func setupRouter(t *testing.T) (*gin.Engine, *fakeUpstream) {
	upstream := &fakeUpstream{}
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	r := gin.New()
	SetupRoutes(r, Deps{
		Store:        storeapi.NewClient(srv.URL, storeapi.WithTimeout(2*time.Second)),
		KV:           storage.NewMemoryStore(),
		LoginLimiter: middleware.NewRateLimiter(3, time.Minute),
	})
	return r, upstream
}

func doJSON(r *gin.Engine, method, url string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGuestCartRouteIssuesSession(t *testing.T) {
	r, _ := setupRouter(t)
	w := doJSON(r, "GET", "/api/guest/cart", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.GuestTokenHeader) == "" {
		t.Fatal("expected guest token header")
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/cart", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReconcileRouteRequiresGuestSession(t *testing.T) {
	r, _ := setupRouter(t)
	w := doJSON(r, "POST", "/api/cart/reconcile", nil, map[string]string{"Authorization": "Bearer upstream-token"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRouteIsRateLimited(t *testing.T) {
	r, _ := setupRouter(t)
	body := map[string]string{"email": "shopper@test.com", "password": "secret"}

	for i := 0; i < 3; i++ {
		if w := doJSON(r, "POST", "/api/auth/login", body, nil); w.Code != http.StatusOK {
			t.Fatalf("login %d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}
	if w := doJSON(r, "POST", "/api/auth/login", body, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestGuestCheckoutFlow(t *testing.T) {
	r, upstream := setupRouter(t)

	// browse as a guest
	w := doJSON(r, "POST", "/api/guest/cart", map[string]interface{}{
		"product":  map[string]interface{}{"id": "p1", "title": "Lamp", "price": 100},
		"quantity": 2,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	guestToken := w.Header().Get(middleware.GuestTokenHeader)
	guestHeader := map[string]string{middleware.GuestTokenHeader: guestToken}

	if w := doJSON(r, "PATCH", "/api/guest/cart/gift-wrap", map[string]interface{}{"gift_wrap": true}, guestHeader); w.Code != http.StatusOK {
		t.Fatalf("gift wrap: expected 200, got %d", w.Code)
	}

	// log in, merging the guest cart
	w = doJSON(r, "POST", "/api/auth/login", map[string]string{"email": "shopper@test.com", "password": "secret"}, guestHeader)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["merge_error"] != nil {
		t.Fatalf("expected clean merge, got %v", resp["merge_error"])
	}

	upstream.mu.Lock()
	if len(upstream.items) != 1 || upstream.items[0]["quantity"] != 2 || !upstream.giftWrap {
		t.Errorf("expected upstream cart with 2 x p1 and gift wrap, got %v gift=%v", upstream.items, upstream.giftWrap)
	}
	upstream.mu.Unlock()

	// the guest cart is gone
	w = doJSON(r, "GET", "/api/guest/cart", nil, guestHeader)
	json.Unmarshal(w.Body.Bytes(), &resp)
	if items, _ := resp["items"].([]interface{}); len(items) != 0 {
		t.Errorf("expected empty guest cart after merge, got %v", resp["items"])
	}

	// the server cart is priced
	w = doJSON(r, "GET", "/api/cart", nil, map[string]string{"Authorization": "Bearer upstream-token"})
	if w.Code != http.StatusOK {
		t.Fatalf("cart: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	summary, _ := resp["summary"].(map[string]interface{})
	if summary["total"] != "385" {
		t.Errorf("expected total 385 (200 + 135 + 50), got %v", summary["total"])
	}
}
