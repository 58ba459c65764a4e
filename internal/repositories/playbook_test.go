package repositories_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/repositories"
	"github.com/myrjola/huntdesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestPlaybookRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewPlaybookRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := repo.Upsert(ctx, "QSR", "# v1", created)
	require.NoError(t, err)
	require.Equal(t, 1, first.Version)
	require.Equal(t, "# v1", first.ContentMD)
	require.True(t, created.Equal(first.CreatedAt))
	require.True(t, created.Equal(first.UpdatedAt))

	updated := created.Add(time.Hour)
	second, err := repo.Upsert(ctx, "QSR", "# v2", updated)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 2, second.Version)
	require.Equal(t, "# v2", second.ContentMD)
	require.True(t, created.Equal(second.CreatedAt))
	require.True(t, updated.Equal(second.UpdatedAt))

	got, err := repo.Get(ctx, "QSR")
	require.NoError(t, err)
	require.Equal(t, second, got)

	_, err = repo.Get(ctx, "Convenience")
	require.True(t, errors.Is(err, repositories.ErrNotFound), "expected not found, got %v", err)
}

func TestPlaybookRepository_UpsertConcurrently(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewPlaybookRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Upsert(ctx, "QSR", fmt.Sprintf("# %d", i), time.Now())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.Get(ctx, "QSR")
	require.NoError(t, err)
	require.Equal(t, n, got.Version)
}

func TestPlaybookRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewPlaybookRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	playbooks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, playbooks)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = repo.Upsert(ctx, "QSR", "# QSR", base)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "Convenience", "# Convenience", base.Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "QSR", "# QSR again", base.Add(2*time.Hour))
	require.NoError(t, err)

	playbooks, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, playbooks, 2)
	require.Equal(t, "QSR", playbooks[0].SubChannel)
	require.Equal(t, 2, playbooks[0].Version)
	require.Equal(t, "Convenience", playbooks[1].SubChannel)
}
