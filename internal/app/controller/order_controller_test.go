package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderController(t *testing.T) {
	e := setupTestEngine(t)
	ctrl := NewOrderController(e)
	router := newTestRouter()
	router.GET("/orders", ctrl.ListOrders)
	router.GET("/orders/:id", ctrl.GetOrder)
	router.POST("/orders/:id/reorder", ctrl.Reorder)

	w, resp := doJSON(t, router, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["count"])

	w, resp = doJSON(t, router, http.MethodGet, "/orders/ORD-7782", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Delivered", resp["status"])

	w, resp = doJSON(t, router, http.MethodPost, "/orders/ORD-7782/reorder", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["added"])
	assert.Len(t, e.State().Cart, 2)

	// Reordering again merges into the existing lines.
	doJSON(t, router, http.MethodPost, "/orders/ORD-7782/reorder", nil)
	assert.Len(t, e.State().Cart, 2)

	w, resp = doJSON(t, router, http.MethodPost, "/orders/ORD-0000/reorder", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", resp["error"])

	w, _ = doJSON(t, router, http.MethodGet, "/orders/ORD-0000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
