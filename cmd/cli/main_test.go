package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/hunting"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/validation"
	"github.com/stretchr/testify/require"
)

const (
	huntCompletion = "```json\n" +
		`{"huntResult": {"summary": "One chain"}, "accounts": [{"name": "QSR Inc.", "score": 70}]}` +
		"\n```"
	playbookCompletion = "# QSR Playbook\n\nCall QSR Inc. first.\n"
)

func newFakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		content := playbookCompletion
		if req.Messages[0].Content == hunting.SystemPrompt {
			content = huntCompletion
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-cli",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the CLI with args against the database file in dir and returns the standard output.
func execute(t *testing.T, openAIURL, dir string, args ...string) (string, error) {
	t.Helper()
	env := map[string]string{
		"HUNTDESK_SQLITE_URL": filepath.Join(dir, "cli.sqlite"),
		"OPENAI_API_KEY":      "test-key",
		"OPENAI_BASE_URL":     openAIURL,
	}
	lookupEnv := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout bytes.Buffer
	c := newCLI(lookupEnv, io.Discard)
	c.root.SetOut(&stdout)
	c.root.SetErr(io.Discard)
	c.root.SetArgs(args)
	err := c.execute(ctx)
	return stdout.String(), err
}

func TestCLI(t *testing.T) {
	openAI := newFakeOpenAI(t)
	dir := t.TempDir()

	out, err := execute(t, openAI.URL, dir,
		"hunt", "--sub-channel", "QSR", "--market", "US", "--market", "UK", "--brand", "Pepsi", "--max-accounts", "3")
	require.NoError(t, err)
	var hunt models.Hunt
	require.NoError(t, json.Unmarshal([]byte(out), &hunt))
	require.Equal(t, "QSR", hunt.SubChannel)
	require.Equal(t, []string{"US", "UK"}, hunt.Markets)
	require.Equal(t, 3, hunt.MaxAccounts)
	require.Equal(t, "One chain", hunt.HuntResult.Summary)
	require.Len(t, hunt.Accounts, 1)

	out, err = execute(t, openAI.URL, dir, "hunts", "--sub-channel", "QSR")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], hunt.ID)
	require.Contains(t, lines[1], "One chain")

	out, err = execute(t, openAI.URL, dir, "playbook", "QSR")
	require.NoError(t, err)
	require.Equal(t, playbookCompletion+"\n", out)

	out, err = execute(t, openAI.URL, dir, "playbook", "QSR", "--stored", "--html")
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "QSR Playbook", doc.Find("h1#qsr-playbook").Text())
}

func TestCLI_Errors(t *testing.T) {
	openAI := newFakeOpenAI(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "hunt without parameters", args: []string{"hunt"}},
		{name: "limit out of range", args: []string{"hunts", "--limit", "0"}},
		{name: "playbook without hunts", args: []string{"playbook", "Cinema"}},
		{name: "missing sub-channel argument", args: []string{"playbook"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, openAI.URL, t.TempDir(), tt.args...)
			require.Error(t, err)
		})
	}

	_, err := execute(t, openAI.URL, t.TempDir(), "hunt")
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
}
