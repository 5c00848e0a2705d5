package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/app/repository"
	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/internal/catalog"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	"github.com/ikkim/shopgenie-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.Options{
		Catalog: catalog.Default(),
		Gateway: service.NewPersistenceGateway(repository.NewMemorySnapshotRepository()),
	})
	e.Load(context.Background())
	t.Cleanup(func() { e.Close(context.Background()) })
	return e
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	return router
}

func setupCartControllerTest(t *testing.T) (*gin.Engine, *engine.Engine) {
	e := setupTestEngine(t)
	ctrl := NewCartController(e)

	router := newTestRouter()
	router.GET("/cart", ctrl.GetCart)
	router.POST("/cart", ctrl.AddToCart)
	router.DELETE("/cart", ctrl.ClearCart)
	router.POST("/cart/checkout", ctrl.Checkout)
	router.PATCH("/cart/items/:id", ctrl.UpdateCartItem)
	router.DELETE("/cart/items/:id", ctrl.RemoveFromCart)
	return router, e
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestCartController_AddToCart(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	body := AddToCartRequest{
		ProductID:       "3",
		SelectedOptions: map[string]string{"Color": "Blue", "Size": "XL"},
		Quantity:        2,
	}
	w, resp := doJSON(t, router, http.MethodPost, "/cart", body)

	require.Equal(t, http.StatusCreated, w.Code)
	item := resp["cart_item"].(map[string]interface{})
	assert.Equal(t, "3|Color=Blue&Size=XL", item["cart_item_id"])
	assert.Equal(t, "31.99", item["price"])
	assert.Equal(t, float64(2), item["quantity"])

	totals := resp["totals"].(map[string]interface{})
	assert.Equal(t, "63.98", totals["subtotal"])
	assert.Equal(t, "15", totals["shipping"])
	assert.Equal(t, "78.98", totals["total"])
}

func TestCartController_AddToCartRejectsBadInput(t *testing.T) {
	router, e := setupCartControllerTest(t)

	tests := []struct {
		name string
		body interface{}
		code int
		err  string
	}{
		{"missing product", map[string]interface{}{"quantity": 1}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT"},
		{"quantity too large", map[string]interface{}{"product_id": "1", "quantity": math.MaxInt64}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT"},
		{"negative quantity", map[string]interface{}{"product_id": "1", "quantity": -2}, http.StatusBadRequest, "VALIDATION_INVALID_INPUT"},
		{"unknown product", AddToCartRequest{ProductID: "999"}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"invalid option", AddToCartRequest{ProductID: "3", SelectedOptions: map[string]string{"Size": "XXXL"}}, http.StatusBadRequest, "PRODUCT_INVALID_OPTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, router, http.MethodPost, "/cart", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.err, resp["error"])
		})
	}
	assert.Empty(t, e.State().Cart)
}

func TestCartController_UpdateAndRemove(t *testing.T) {
	router, e := setupCartControllerTest(t)
	_, err := e.AddToCart(context.Background(), "3", map[string]string{"Color": "Blue", "Size": "XL"}, 1)
	require.NoError(t, err)
	path := "/cart/items/" + url.PathEscape("3|Color=Blue&Size=XL")

	w, resp := doJSON(t, router, http.MethodPatch, path, UpdateCartRequest{Delta: 2})
	require.Equal(t, http.StatusOK, w.Code)
	items := resp["cart_items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(3), items[0].(map[string]interface{})["quantity"])

	// Quantity never drops below one.
	w, _ = doJSON(t, router, http.MethodPatch, path, UpdateCartRequest{Delta: -10})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.State().Cart[0].Quantity)

	w, resp = doJSON(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["count"])

	// Removing an unknown line is not an error.
	w, _ = doJSON(t, router, http.MethodDelete, "/cart/items/nope", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartController_UpdateRequiresDelta(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	for _, body := range []map[string]interface{}{
		{},
		{"delta": math.MaxInt64},
		{"delta": math.MinInt64},
	} {
		w, resp := doJSON(t, router, http.MethodPatch, "/cart/items/1", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "VALIDATION_INVALID_INPUT", resp["error"])
	}
}

func TestCartController_RepeatedLargeAddsSaturate(t *testing.T) {
	router, e := setupCartControllerTest(t)

	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, router, http.MethodPost, "/cart", AddToCartRequest{ProductID: "1", Quantity: 999})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	state := e.State()
	require.Len(t, state.Cart, 1)
	assert.Equal(t, service.MaxLineQuantity, state.Cart[0].Quantity)
	assert.True(t, state.Totals.Total.IsPositive())
}

func TestCartController_Checkout(t *testing.T) {
	router, e := setupCartControllerTest(t)

	w, resp := doJSON(t, router, http.MethodPost, "/cart/checkout", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CART_EMPTY", resp["error"])

	_, err := e.AddToCart(context.Background(), "1", nil, 1)
	require.NoError(t, err)

	w, resp = doJSON(t, router, http.MethodPost, "/cart/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	receipt := resp["receipt"].(map[string]interface{})
	assert.Len(t, receipt["lines"], 1)
	assert.Equal(t, "299.99", receipt["totals"].(map[string]interface{})["total"])
	assert.Empty(t, e.State().Cart)
}

func TestCartController_ClearCart(t *testing.T) {
	router, e := setupCartControllerTest(t)
	_, err := e.AddToCart(context.Background(), "1", nil, 1)
	require.NoError(t, err)

	w, resp := doJSON(t, router, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["count"])
	assert.Equal(t, "0", resp["totals"].(map[string]interface{})["shipping"])
}
