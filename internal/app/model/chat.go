package model

import "time"

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of a shopping assistant conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a read-only view of an assistant thread.
type Conversation struct {
	ID       string        `json:"id"`
	Messages []ChatMessage `json:"messages"`
	Pending  bool          `json:"pending"`
}

// ProductInsight is the outcome of an insight lookup for one product.
type ProductInsight struct {
	ProductID string `json:"product_id"`
	HTML      string `json:"html"`
}
