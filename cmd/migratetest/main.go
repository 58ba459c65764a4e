package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/repositories"
	"github.com/myrjola/huntdesk/internal/sqlite"
	"github.com/myrjola/huntdesk/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("HUNTDESK_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "HUNTDESK_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// Read every stored hunt and playbook through the repositories so that a schema change that breaks decoding
	// fails here and not in production.
	hunts := repositories.NewHuntRepository(db, logger)
	var count int
	if count, err = hunts.Count(ctx, ""); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error fetching hunt count", errors.SlogError(err))
		os.Exit(1)
	}
	if count == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no hunts found, something is likely wrong")
		os.Exit(1)
	}
	if _, err = hunts.List(ctx, repositories.HuntFilter{SubChannel: "", Limit: count, Offset: 0}); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error decoding hunts", errors.SlogError(err))
		os.Exit(1)
	}
	var playbookCount int
	if playbookCount, err = countPlaybooks(ctx, repositories.NewPlaybookRepository(db, logger)); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error decoding playbooks", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "record counts",
		slog.Int("hunts", count), slog.Int("playbooks", playbookCount))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		os.Exit(1)
	}
	os.Exit(0)
}

func countPlaybooks(ctx context.Context, playbooks *repositories.PlaybookRepository) (int, error) {
	all, err := playbooks.List(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list playbooks")
	}
	return len(all), nil
}
