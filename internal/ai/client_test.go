package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newFakeOpenAI(t *testing.T, status int, body string, requests chan<- chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if requests != nil {
			requests <- req
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Complete(t *testing.T) {
	requests := make(chan chatRequest, 1)
	srv := newFakeOpenAI(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "# Playbook"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
	}`, requests)
	client := ai.NewClient("test-key", srv.URL, "gpt-test", testhelpers.NewLogger(io.Discard))

	got, err := client.Complete(context.Background(), "system prompt", "user prompt", 4000)
	require.NoError(t, err)
	require.Equal(t, "# Playbook", got)

	req := <-requests
	require.Equal(t, "gpt-test", req.Model)
	require.Equal(t, 4000, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	require.Equal(t, "system", req.Messages[0].Role)
	require.Equal(t, "system prompt", req.Messages[0].Content)
	require.Equal(t, "user", req.Messages[1].Role)
	require.Equal(t, "user prompt", req.Messages[1].Content)
}

func TestClient_CompleteFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error": {"message": "boom", "type": "server_error"}}`,
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"id": "chatcmpl-2", "choices": []}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newFakeOpenAI(t, tt.status, tt.body, nil)
			client := ai.NewClient("test-key", srv.URL, "gpt-test", testhelpers.NewLogger(io.Discard))
			_, err := client.Complete(context.Background(), "system", "user", 100)
			require.Error(t, err)
			require.True(t, errors.Is(err, ai.ErrExternalService), "expected external service error, got %v", err)
		})
	}
}
