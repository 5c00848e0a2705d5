package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
)

// WelcomeMessage opens every conversation.
const WelcomeMessage = "Hi! I'm ShopGenie. Looking for a specific gift or need a recommendation?"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationBusy     = errors.New("conversation is waiting for a reply")
	ErrEmptyQuery           = errors.New("message text is required")
)

// AssistantService keeps shopping assistant conversations in memory. A
// conversation accepts one message at a time: while a reply is pending further
// messages are refused.
type AssistantService interface {
	Create() model.Conversation
	Get(id string) (model.Conversation, error)
	Send(ctx context.Context, id, text string) (model.Conversation, error)
}

type conversation struct {
	messages []model.ChatMessage
	pending  bool
}

type assistantService struct {
	advice AdviceService
	now    func() time.Time

	mu            sync.Mutex
	conversations map[string]*conversation
}

func NewAssistantService(advice AdviceService) AssistantService {
	return &assistantService{
		advice:        advice,
		now:           time.Now,
		conversations: make(map[string]*conversation),
	}
}

func (s *assistantService) newMessage(role model.ChatRole, text string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
}

func (s *assistantService) Create() model.Conversation {
	id := uuid.NewString()
	c := &conversation{
		messages: []model.ChatMessage{s.newMessage(model.ChatRoleModel, WelcomeMessage)},
	}

	s.mu.Lock()
	s.conversations[id] = c
	s.mu.Unlock()

	logger.Debug("Conversation started", map[string]interface{}{
		"conversation_id": id,
	})
	return c.view(id)
}

func (s *assistantService) Get(id string) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return model.Conversation{}, ErrConversationNotFound
	}
	return c.view(id), nil
}

// Send records the user's message, asks the advice service with the prior
// turns as "role: text" lines and appends the reply. The advice service never
// fails, so once the message is accepted a reply always follows.
func (s *assistantService) Send(ctx context.Context, id, text string) (model.Conversation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Conversation{}, ErrEmptyQuery
	}

	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return model.Conversation{}, ErrConversationNotFound
	}
	if c.pending {
		s.mu.Unlock()
		logger.Warn("Message refused while a reply is pending", map[string]interface{}{
			"conversation_id": id,
		})
		return model.Conversation{}, ErrConversationBusy
	}
	history := make([]string, len(c.messages))
	for i, m := range c.messages {
		history[i] = string(m.Role) + ": " + m.Text
	}
	c.messages = append(c.messages, s.newMessage(model.ChatRoleUser, text))
	c.pending = true
	s.mu.Unlock()

	reply := s.advice.GetAdvice(ctx, text, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	c.messages = append(c.messages, s.newMessage(model.ChatRoleModel, reply))
	c.pending = false
	return c.view(id), nil
}

func (c *conversation) view(id string) model.Conversation {
	return model.Conversation{
		ID:       id,
		Messages: append([]model.ChatMessage(nil), c.messages...),
		Pending:  c.pending,
	}
}
