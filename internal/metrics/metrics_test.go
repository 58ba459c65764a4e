package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	err error
}

func (s stubCompleter) Complete(context.Context, string, string, int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "ok", nil
}

func TestMetrics_Completer(t *testing.T) {
	m := metrics.New()
	ok := m.Completer(stubCompleter{err: nil}, metrics.OperationHunt)
	failing := m.Completer(stubCompleter{err: errors.New("boom")}, metrics.OperationPlaybook)

	for range 3 {
		got, err := ok.Complete(context.Background(), "system", "user", 10)
		require.NoError(t, err)
		require.Equal(t, "ok", got)
	}
	_, err := failing.Complete(context.Background(), "system", "user", 10)
	require.Error(t, err)

	require.InDelta(t, 0, testutil.ToFloat64(m.CompletionFailures(metrics.OperationHunt)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.CompletionFailures(metrics.OperationPlaybook)), 0)
	n, err := testutil.GatherAndCount(m.Registry(), "huntdesk_completion_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.HuntsCreated.Inc()
	m.HuntsCreated.Inc()
	m.PlaybooksGenerated.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "huntdesk_hunts_created_total 2")
	require.Contains(t, string(body), "huntdesk_playbooks_generated_total 1")
	require.Contains(t, string(body), "go_goroutines")
}
