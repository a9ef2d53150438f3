package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenRouterClient(t *testing.T, handler http.HandlerFunc) *OpenRouterClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewOpenRouterClient("sk-or-test", "meta-llama/llama-3-70b-instruct")
	require.NoError(t, err)
	orc := client.(*OpenRouterClient)
	orc.baseURL = srv.URL
	return orc
}

func TestOpenRouterClient_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenRouterClient("", "some-model")
	assert.Error(t, err)

	_, err = NewOpenRouterClient("   ", "some-model")
	assert.Error(t, err)
}

func TestOpenRouterClient_Complete(t *testing.T) {
	var gotReq openRouterChatRequest
	var gotAuth string

	client := newTestOpenRouterClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "relayed reply"}},
			},
			"usage": map[string]int{"total_tokens": 21},
		})
	})

	resp, err := client.Complete(context.Background(), &CompletionRequest{
		Prompt:       "hello",
		SystemPrompt: "be brief",
	})
	require.NoError(t, err)
	assert.Equal(t, "relayed reply", resp.Content)
	assert.Equal(t, 21, resp.TokensUsed)

	assert.Equal(t, "Bearer sk-or-test", gotAuth)
	assert.Equal(t, "meta-llama/llama-3-70b-instruct", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "be brief", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
}

func TestOpenRouterClient_NoSystemPrompt(t *testing.T) {
	var gotReq openRouterChatRequest
	client := newTestOpenRouterClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "hi"}},
			},
		})
	})

	_, err := client.Complete(context.Background(), &CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestOpenRouterClient_ErrorStatus(t *testing.T) {
	client := newTestOpenRouterClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid key"}`, http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), &CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestOpenRouterClient_EmptyChoices(t *testing.T) {
	client := newTestOpenRouterClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{},
			"usage":   map[string]int{"total_tokens": 3},
		})
	})

	resp, err := client.Complete(context.Background(), &CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
	assert.Equal(t, 3, resp.TokensUsed)
}
