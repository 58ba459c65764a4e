package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/myrjola/huntdesk/internal/e2etest"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/logging"
	"github.com/myrjola/huntdesk/internal/models"
)

// smokeSubChannel keeps smoke test data apart from real hunts.
const smokeSubChannel = "Smoke Test"

// TestHuntToPlaybook runs a small hunt, generates the playbook of its sub-channel and deletes the hunt again.
func TestHuntToPlaybook(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute) //nolint:mnd // two completions
	defer cancel()

	var health struct {
		Status string `json:"status"`
	}
	if err := client.DoJSON(ctx, http.MethodGet, "/health", nil, http.StatusOK, &health); err != nil {
		return errors.Wrap(err, "health check")
	}
	if health.Status != "ok" {
		return errors.New("unhealthy", slog.String("status", health.Status))
	}

	var hunt models.Hunt
	if err := client.DoJSON(ctx, http.MethodPost, "/api/hunts", map[string]any{
		"subChannel":  smokeSubChannel,
		"markets":     []string{"US"},
		"focusBrands": []string{"Pepsi"},
		"maxAccounts": 1,
	}, http.StatusCreated, &hunt); err != nil {
		return errors.Wrap(err, "create hunt")
	}
	defer func() {
		_ = client.DoJSON(context.WithoutCancel(ctx), http.MethodDelete, "/api/hunts/"+hunt.ID, nil,
			http.StatusOK, nil)
	}()

	var pb models.Playbook
	if err := client.DoJSON(ctx, http.MethodPost, "/api/playbooks/"+url.PathEscape(smokeSubChannel), nil,
		http.StatusCreated, &pb); err != nil {
		return errors.Wrap(err, "generate playbook", slog.String("hunt_id", hunt.ID))
	}
	if pb.ContentMD == "" {
		return errors.New("empty playbook", slog.String("playbook_id", pb.ID))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		baseURL  = "https://" + hostname
		client   = e2etest.NewClient(baseURL)
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", baseURL))

	if err := TestHuntToPlaybook(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing hunt to playbook flow", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
