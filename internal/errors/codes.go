package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationRequired     = "VALIDATION_REQUIRED"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	ResourceConflict = "RESOURCE_CONFLICT"

	// ==================== Catalog (PRODUCT_) ====================
	ProductNotFound      = "PRODUCT_NOT_FOUND"
	ProductInvalidOption = "PRODUCT_INVALID_OPTION"

	// ==================== Cart and checkout (CART_) ====================
	CartEmpty         = "CART_EMPTY"
	CheckoutCancelled = "CHECKOUT_CANCELLED"
	OrderNotFound     = "ORDER_NOT_FOUND"

	// ==================== Session (SESSION_) ====================
	SessionNotSignedIn = "SESSION_NOT_SIGNED_IN"

	// ==================== Assistant (ASSISTANT_) ====================
	AssistantConversationNotFound = "ASSISTANT_CONVERSATION_NOT_FOUND"
	AssistantBusy                 = "ASSISTANT_BUSY"
	AssistantEmptyQuery           = "ASSISTANT_EMPTY_QUERY"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalUnavailable = "INTERNAL_UNAVAILABLE"
)
