package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/shopgenie-backend/config"
	"github.com/ikkim/shopgenie-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdviceTest(t *testing.T, handler http.HandlerFunc) AdviceService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.AdviceConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: server.URL + "/v1/",
		Timeout: 2 * time.Second,
	}
	return NewAdviceService(cfg, catalog.Default().List())
}

func replyWith(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}
}

func TestAdviceService_GetAdvice(t *testing.T) {
	var got chatCompletionRequest
	advice := setupAdviceTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		replyWith("  Try the Smart Fitness Watch!  ")(w, r)
	})

	answer := advice.GetAdvice(context.Background(), "gift for a runner", []string{"model: " + WelcomeMessage})
	assert.Equal(t, "Try the Smart Fitness Watch!", answer)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "test-model", got.Model)
	prompt := got.Messages[0].Content
	assert.Contains(t, prompt, "You are ShopGenie")
	assert.Contains(t, prompt, "($29.99) - Fashion")
	assert.Contains(t, prompt, "model: "+WelcomeMessage)
	assert.Contains(t, prompt, `Current User Query: "gift for a runner"`)
}

func TestAdviceService_Fallbacks(t *testing.T) {
	advice := NewAdviceService(config.AdviceConfig{}, nil)
	assert.Equal(t, AdviceUnavailable, advice.GetAdvice(context.Background(), "hi", nil))
	assert.Equal(t, InsightUnavailable, advice.GetInsight(context.Background(), "Watch", "A watch"))

	failing := setupAdviceTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota","type":"rate_limit"}}`))
	})
	assert.Equal(t, AdviceFailed, failing.GetAdvice(context.Background(), "hi", nil))
	assert.Equal(t, InsightFailed, failing.GetInsight(context.Background(), "Watch", "A watch"))

	empty := setupAdviceTest(t, replyWith(""))
	assert.Equal(t, AdviceEmpty, empty.GetAdvice(context.Background(), "hi", nil))
	assert.Equal(t, InsightEmpty, empty.GetInsight(context.Background(), "Watch", "A watch"))

	garbage := setupAdviceTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})
	assert.Equal(t, AdviceFailed, garbage.GetAdvice(context.Background(), "hi", nil))
}

func TestAdviceService_GetInsightSanitizes(t *testing.T) {
	var prompt string
	advice := setupAdviceTest(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Messages[0].Content
		replyWith(`<p onclick="x()">Love it.</p><ul><li>Gym</li></ul><img src="y">`)(w, r)
	})

	html := advice.GetInsight(context.Background(), "Running Shoes", "Light and fast")
	assert.Equal(t, "<p>Love it.</p><ul><li>Gym</li></ul>", html)
	assert.True(t, strings.HasPrefix(prompt, "Product: Running Shoes\nDescription: Light and fast"))
}

func TestAdviceService_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	advice := setupAdviceTest(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, InsightFailed, advice.GetInsight(ctx, "Watch", "A watch"))
}
