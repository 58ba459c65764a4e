package repositories_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/repositories"
	"github.com/myrjola/huntdesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newHunt(subChannel string, createdAt time.Time) *models.Hunt {
	steps := make([]models.Step, models.StepCount)
	for i, name := range models.StepNames() {
		steps[i] = models.Step{Step: i + 1, Name: name, Note: models.PendingNote}
	}
	accounts := []models.Account{
		{
			Name:        "Burger Hut",
			Markets:     []string{"US"},
			Segment:     "Burgers",
			Score:       80,
			CurrentStep: 2,
			Rationale:   "Large footprint",
			Ideas:       []models.Idea{{Title: "Combo", Description: "Meal deal"}},
			Stage:       "Prospect",
			Steps:       steps,
		},
	}
	return &models.Hunt{
		ID:          "",
		SubChannel:  subChannel,
		Markets:     []string{"US", "UK"},
		FocusBrands: []string{"Pepsi"},
		MaxAccounts: 5,
		Accounts:    accounts,
		HuntResult:  models.HuntResult{Summary: "One lead", TotalAccounts: len(accounts)},
		CreatedAt:   createdAt,
	}
}

func TestHuntRepository_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewHuntRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	hunt := newHunt("QSR", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, hunt))
	require.NotEmpty(t, hunt.ID)

	got, err := repo.Get(ctx, hunt.ID)
	require.NoError(t, err)
	require.Equal(t, hunt, got)

	require.NoError(t, repo.Delete(ctx, hunt.ID))

	_, err = repo.Get(ctx, hunt.ID)
	require.True(t, errors.Is(err, repositories.ErrNotFound), "expected not found, got %v", err)
	err = repo.Delete(ctx, hunt.ID)
	require.True(t, errors.Is(err, repositories.ErrNotFound), "expected not found, got %v", err)
}

func TestHuntRepository_CreateWithoutAccounts(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewHuntRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	hunt := newHunt("QSR", time.Now())
	hunt.Accounts = nil
	hunt.HuntResult.TotalAccounts = 0
	require.NoError(t, repo.Create(ctx, hunt))

	got, err := repo.Get(ctx, hunt.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Accounts)
	require.Empty(t, got.Accounts)
}

func TestHuntRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewHuntRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 12 {
		subChannel := "QSR"
		if i%3 == 0 {
			subChannel = "Convenience"
		}
		require.NoError(t, repo.Create(ctx, newHunt(subChannel, base.Add(time.Duration(i)*time.Hour))))
	}

	tests := []struct {
		name        string
		filter      repositories.HuntFilter
		wantHours   []int
		wantCount   int
		countFilter string
	}{
		{
			name:        "all newest first",
			filter:      repositories.HuntFilter{SubChannel: "", Limit: 3, Offset: 0},
			wantHours:   []int{11, 10, 9},
			wantCount:   12,
			countFilter: "",
		},
		{
			name:        "offset",
			filter:      repositories.HuntFilter{SubChannel: "", Limit: 2, Offset: 10},
			wantHours:   []int{1, 0},
			wantCount:   12,
			countFilter: "",
		},
		{
			name:        "by sub-channel",
			filter:      repositories.HuntFilter{SubChannel: "Convenience", Limit: 20, Offset: 0},
			wantHours:   []int{9, 6, 3, 0},
			wantCount:   4,
			countFilter: "Convenience",
		},
		{
			name:        "unknown sub-channel",
			filter:      repositories.HuntFilter{SubChannel: "Cafe", Limit: 20, Offset: 0},
			wantHours:   []int{},
			wantCount:   0,
			countFilter: "Cafe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hunts, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			gotHours := make([]int, len(hunts))
			for i, h := range hunts {
				gotHours[i] = int(h.CreatedAt.Sub(base).Hours())
			}
			require.Equal(t, tt.wantHours, gotHours)

			n, err := repo.Count(ctx, tt.countFilter)
			require.NoError(t, err)
			require.Equal(t, tt.wantCount, n)
		})
	}
}

func TestHuntRepository_ListRecentBySubChannel(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewHuntRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 12 {
		hunt := newHunt("QSR", base.Add(time.Duration(i)*time.Minute))
		hunt.HuntResult.Summary = fmt.Sprintf("hunt %d", i)
		require.NoError(t, repo.Create(ctx, hunt))
	}

	hunts, err := repo.ListRecentBySubChannel(ctx, "QSR", 10)
	require.NoError(t, err)
	require.Len(t, hunts, 10)
	require.Equal(t, "hunt 11", hunts[0].HuntResult.Summary)
	require.Equal(t, "hunt 2", hunts[9].HuntResult.Summary)
}
