package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/internal/engine"
)

// ErrorInfo is the response an error translates to.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

var knownErrors = []struct {
	target error
	info   ErrorInfo
}{
	{engine.ErrProductNotFound, ErrorInfo{http.StatusNotFound, ProductNotFound, "Product not found"}},
	{engine.ErrInvalidOption, ErrorInfo{http.StatusBadRequest, ProductInvalidOption, "That option is not available for this product"}},
	{engine.ErrOrderNotFound, ErrorInfo{http.StatusNotFound, OrderNotFound, "Order not found"}},
	{engine.ErrEmptyCart, ErrorInfo{http.StatusConflict, CartEmpty, "Your cart is empty"}},
	{engine.ErrEngineClosed, ErrorInfo{http.StatusServiceUnavailable, InternalUnavailable, "The shop is shutting down"}},
	{service.ErrNotSignedIn, ErrorInfo{http.StatusConflict, SessionNotSignedIn, "Sign in to update your profile"}},
	{service.ErrConversationNotFound, ErrorInfo{http.StatusNotFound, AssistantConversationNotFound, "Conversation not found"}},
	{service.ErrConversationBusy, ErrorInfo{http.StatusConflict, AssistantBusy, "Please wait for the current reply"}},
	{service.ErrEmptyQuery, ErrorInfo{http.StatusBadRequest, AssistantEmptyQuery, "Type a message first"}},
	{context.Canceled, ErrorInfo{http.StatusRequestTimeout, CheckoutCancelled, "The request was cancelled"}},
	{context.DeadlineExceeded, ErrorInfo{http.StatusGatewayTimeout, CheckoutCancelled, "The request timed out"}},
}

// ParseError translates an error into a client-safe status, code and message.
// Unknown errors become a generic internal error so details never leak.
func ParseError(err error) ErrorInfo {
	for _, known := range knownErrors {
		if errors.Is(err, known.target) {
			return known.info
		}
	}
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again later",
	}
}
