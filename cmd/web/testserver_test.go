package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/myrjola/huntdesk/internal/e2etest"
	"github.com/myrjola/huntdesk/internal/hunting"
	"github.com/stretchr/testify/require"
)

const huntCompletion = "Here are the accounts:\n```json\n" + `{
  "huntResult": {"summary": "Two QSR chains worth pursuing", "totalAccounts": 2},
  "accounts": [
    {
      "name": "QSR Inc.",
      "markets": ["US"],
      "segment": "Burger",
      "score": 88,
      "currentStep": 3,
      "rationale": "Large footprint",
      "ideas": [{"title": "Combo upsell", "description": "Bundle drinks with meals"}],
      "stage": "Qualified",
      "steps": [{"step": 1, "name": "Define opportunity", "note": "Big chain"}]
    },
    {"name": "QSR Global", "score": 150, "currentStep": 0}
  ]
}` + "\n```"

const playbookCompletion = `# QSR Playbook

## Executive Summary

Focus on QSR Inc. first.

| Account | Score |
|---|---|
| QSR Inc. | 88 |
`

// fakeOpenAI answers chat completions like the OpenAI API. Hunts get huntCompletion and playbooks get
// playbookCompletion. A non-zero failStatus makes every request fail.
type fakeOpenAI struct {
	server     *httptest.Server
	failStatus int
	requests   atomic.Int32
}

func newFakeOpenAI(t *testing.T, failStatus int) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{server: nil, failStatus: failStatus, requests: atomic.Int32{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if f.failStatus != 0 {
			w.WriteHeader(f.failStatus)
			_, _ = io.WriteString(w, `{"error": {"message": "unavailable", "type": "server_error"}}`)
			return
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		content := playbookCompletion
		if req.Messages[0].Content == hunting.SystemPrompt {
			content = huntCompletion
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

// startTestServer runs the web server against a fresh in-memory database and the given fake.
func startTestServer(t *testing.T, openAI *fakeOpenAI) *e2etest.Client {
	t.Helper()
	env := map[string]string{
		"HUNTDESK_ADDR":       "localhost:0",
		"HUNTDESK_SQLITE_URL": ":memory:",
		"HUNTDESK_PPROF_ADDR": "",
		"OPENAI_API_KEY":      "test-key",
		"OPENAI_BASE_URL":     openAI.server.URL,
	}
	lookupEnv := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, lookupEnv, run)
	require.NoError(t, err)
	return server.Client()
}
