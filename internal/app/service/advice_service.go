package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ikkim/shopgenie-backend/config"
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
)

// Fallback texts shown instead of an error.
const (
	AdviceUnavailable      = "AI Service is currently unavailable (Missing API Key)."
	AdviceFailed           = "I'm having trouble connecting to the brain. Please try again later."
	AdviceEmpty            = "I couldn't find an answer for that right now."
	InsightUnavailable     = "AI Insights unavailable."
	InsightFailed          = "Insights currently unavailable."
	InsightEmpty           = "Could not generate insights."
	assistantName          = "ShopGenie"
	maxAdviceErrorBodySize = 1 << 10
)

// AdviceService talks to the text generation collaborator. Both calls always
// return something displayable.
type AdviceService interface {
	GetAdvice(ctx context.Context, query string, history []string) string
	GetInsight(ctx context.Context, name, description string) string
}

type adviceService struct {
	config   config.AdviceConfig
	products []model.Product
	client   *http.Client
}

// NewAdviceService targets an OpenAI-compatible chat completions endpoint.
// products is the catalog summary put in front of every advice prompt.
func NewAdviceService(cfg config.AdviceConfig, products []model.Product) AdviceService {
	return &adviceService{
		config:   cfg,
		products: products,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type chatCompletionRequest struct {
	Model    string              `json:"model"`
	Messages []chatCompletionMsg `json:"messages"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (s *adviceService) GetAdvice(ctx context.Context, query string, history []string) string {
	if s.config.APIKey == "" {
		return AdviceUnavailable
	}

	answer, err := s.complete(ctx, s.buildAdvicePrompt(query, history))
	if err != nil {
		logger.Error("Advice request failed", err, map[string]interface{}{
			"model": s.config.Model,
		})
		return AdviceFailed
	}
	if answer == "" {
		return AdviceEmpty
	}
	return answer
}

func (s *adviceService) GetInsight(ctx context.Context, name, description string) string {
	if s.config.APIKey == "" {
		return InsightUnavailable
	}

	answer, err := s.complete(ctx, buildInsightPrompt(name, description))
	if err != nil {
		logger.Error("Insight request failed", err, map[string]interface{}{
			"product": name,
		})
		return InsightFailed
	}
	answer = SanitizeInsight(answer)
	if answer == "" {
		return InsightEmpty
	}
	return answer
}

func (s *adviceService) buildAdvicePrompt(query string, history []string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are %s, a helpful and enthusiastic shopping assistant.\n\n", assistantName))

	prompt.WriteString("Our Product Catalog:\n")
	for _, p := range s.products {
		prompt.WriteString(fmt.Sprintf("%s ($%s) - %s\n", p.Name, p.Price.StringFixed(2), p.Category))
	}

	prompt.WriteString("\nUser Chat History:\n")
	for _, line := range history {
		prompt.WriteString(line)
		prompt.WriteString("\n")
	}

	prompt.WriteString(fmt.Sprintf("\nCurrent User Query: %q\n\n", query))
	prompt.WriteString("Task: Provide a helpful, concise response. If the user asks for recommendations, " +
		"suggest specific products from our catalog.\n")
	prompt.WriteString("Be friendly and professional. Keep it under 300 characters if possible.")

	return prompt.String()
}

func buildInsightPrompt(name, description string) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Product: %s\n", name))
	prompt.WriteString(fmt.Sprintf("Description: %s\n\n", description))
	prompt.WriteString("Write a short, catchy \"Why you'll love this\" summary (max 2 sentences) " +
		"and 3 quick bullet points of potential use cases.\n")
	prompt.WriteString("Format the output as HTML (without <html> tags, just <p> and <ul>).")
	return prompt.String()
}

func (s *adviceService) complete(ctx context.Context, prompt string) (string, error) {
	reqData := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatCompletionMsg{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("advice endpoint returned %d: %s", resp.StatusCode, truncate(body, maxAdviceErrorBodySize))
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("advice endpoint error: %s", completion.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advice endpoint returned %d", resp.StatusCode)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
