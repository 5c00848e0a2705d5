package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	info := ParseError(fmt.Errorf("%w: 42", engine.ErrProductNotFound))
	assert.Equal(t, http.StatusNotFound, info.Status)
	assert.Equal(t, ProductNotFound, info.Code)

	info = ParseError(service.ErrConversationBusy)
	assert.Equal(t, http.StatusConflict, info.Status)
	assert.Equal(t, AssistantBusy, info.Code)

	info = ParseError(context.Canceled)
	assert.Equal(t, CheckoutCancelled, info.Code)

	info = ParseError(errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, info.Status)
	assert.NotContains(t, info.Message, "10.0.0.1")
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, engine.ErrEmptyCart)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"CART_EMPTY","message":"Your cart is empty"}`, w.Body.String())
}
