package playbook_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/playbook"
	"github.com/myrjola/huntdesk/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// memoryStore keeps hunts and playbooks in memory.
type memoryStore struct {
	mu        sync.Mutex
	hunts     []models.Hunt
	playbooks map[string]*models.Playbook
	lastLimit int
}

func newMemoryStore(hunts ...models.Hunt) *memoryStore {
	return &memoryStore{hunts: hunts, playbooks: make(map[string]*models.Playbook), lastLimit: 0} //nolint:exhaustruct // mutex
}

func (s *memoryStore) ListRecentBySubChannel(_ context.Context, subChannel string, limit int) ([]models.Hunt, error) {
	s.lastLimit = limit
	var out []models.Hunt
	for _, h := range s.hunts {
		if h.SubChannel == subChannel && len(out) < limit {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memoryStore) Upsert(_ context.Context, subChannel, contentMD string, now time.Time) (*models.Playbook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playbooks[subChannel]
	if !ok {
		p = &models.Playbook{ID: subChannel, SubChannel: subChannel, Version: 0, CreatedAt: now} //nolint:exhaustruct // filled below
		s.playbooks[subChannel] = p
	}
	p.Version++
	p.ContentMD = contentMD
	p.UpdatedAt = now
	copied := *p
	return &copied, nil
}

type sequenceCompleter struct {
	responses []string
	err       error
	users     []string
}

func (c *sequenceCompleter) Complete(_ context.Context, system, user string, maxTokens int) (string, error) {
	if system != playbook.SystemPrompt || maxTokens != playbook.MaxOutputTokens {
		return "", errors.New("unexpected completion request")
	}
	c.users = append(c.users, user)
	if c.err != nil {
		return "", c.err
	}
	response := c.responses[0]
	c.responses = c.responses[1:]
	return response, nil
}

func qsrHunt(created time.Time, scores ...int) models.Hunt {
	accounts := make([]models.Account, len(scores))
	for i, score := range scores {
		accounts[i] = models.Account{
			Name:        "Account " + string(rune('A'+i)),
			Markets:     []string{"US"},
			Segment:     "Burgers",
			Score:       score,
			CurrentStep: 1,
			Rationale:   "Big",
			Ideas:       []models.Idea{{Title: "Combo", Description: ""}, {Title: "Fountain", Description: ""}},
			Stage:       "Prospect",
			Steps:       nil,
		}
	}
	return models.Hunt{
		ID:          "hunt",
		SubChannel:  "QSR",
		Markets:     []string{"US", "UK"},
		FocusBrands: []string{"Pepsi"},
		MaxAccounts: 10,
		Accounts:    accounts,
		HuntResult:  models.HuntResult{Summary: "", TotalAccounts: len(accounts)},
		CreatedAt:   created,
	}
}

func TestGenerator_GeneratePlaybookVersions(t *testing.T) {
	store := newMemoryStore(qsrHunt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 40, 90))
	completer := &sequenceCompleter{responses: []string{"# Playbook v1", "# Playbook v2"}} //nolint:exhaustruct // no error
	g := playbook.NewGenerator(store, store, completer, testhelpers.NewLogger(io.Discard))

	got, err := g.GeneratePlaybook(context.Background(), "QSR")
	require.NoError(t, err)
	require.Equal(t, "# Playbook v1", got)
	require.Equal(t, 1, store.playbooks["QSR"].Version)
	require.Equal(t, playbook.RecentHunts, store.lastLimit)

	got, err = g.GeneratePlaybook(context.Background(), "QSR")
	require.NoError(t, err)
	require.Equal(t, "# Playbook v2", got)
	require.Len(t, store.playbooks, 1)
	require.Equal(t, 2, store.playbooks["QSR"].Version)
	require.Equal(t, "# Playbook v2", store.playbooks["QSR"].ContentMD)

	require.Contains(t, completer.users[0], "Generate a comprehensive playbook for the QSR sub-channel")
	require.Contains(t, completer.users[0], "Hunt from 2024-03-01:")
}

func TestGenerator_GenerateReturnsStoredRecord(t *testing.T) {
	store := newMemoryStore(qsrHunt(time.Now(), 70))
	completer := &sequenceCompleter{responses: []string{"# One", "# Two"}} //nolint:exhaustruct // no error
	g := playbook.NewGenerator(store, store, completer, testhelpers.NewLogger(io.Discard))

	first, err := g.Generate(context.Background(), "QSR")
	require.NoError(t, err)
	require.Equal(t, 1, first.Version)
	require.Equal(t, "# One", first.ContentMD)

	second, err := g.Generate(context.Background(), "QSR")
	require.NoError(t, err)
	require.Equal(t, 2, second.Version)
	require.Equal(t, "# Two", second.ContentMD)
	require.Equal(t, 1, first.Version, "earlier results are not affected by later generations")
}

func TestGenerator_GeneratePlaybookFailures(t *testing.T) {
	otherHunt := qsrHunt(time.Now(), 50)
	convenienceHunt := qsrHunt(time.Now(), 50)
	convenienceHunt.SubChannel = "Convenience"

	tests := []struct {
		name      string
		hunts     []models.Hunt
		completer *sequenceCompleter
		wantErr   error
	}{
		{
			name:      "no hunts",
			hunts:     []models.Hunt{otherHunt},
			completer: &sequenceCompleter{responses: []string{"# unused"}, err: nil, users: nil},
			wantErr:   playbook.ErrNoHunts,
		},
		{
			name:      "completion fails",
			hunts:     []models.Hunt{otherHunt, convenienceHunt},
			completer: &sequenceCompleter{responses: nil, err: errors.Wrap(ai.ErrExternalService, "boom"), users: nil},
			wantErr:   ai.ErrExternalService,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newMemoryStore(tt.hunts...)
			g := playbook.NewGenerator(store, store, tt.completer, testhelpers.NewLogger(io.Discard))

			_, err := g.GeneratePlaybook(context.Background(), "Convenience")
			require.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			require.Empty(t, store.playbooks)
		})
	}
}

func TestTopAccounts(t *testing.T) {
	accounts := qsrHunt(time.Now(), 10, 80, 50, 80, 95, 20, 70).Accounts

	top := playbook.TopAccounts(accounts, 5)

	names := make([]string, len(top))
	for i, a := range top {
		names[i] = a.Name
	}
	require.Equal(t, []string{"Account E", "Account B", "Account D", "Account G", "Account C"}, names)
	require.Equal(t, "Account A", accounts[0].Name, "input must not be reordered")
	require.Len(t, playbook.TopAccounts(accounts[:2], 5), 2)
}

func TestSummarizeHunt(t *testing.T) {
	hunt := qsrHunt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 40, 90)

	got := playbook.SummarizeHunt(hunt)

	require.Equal(t, `Hunt from 2024-03-01:
Markets: US, UK
Focus Brands: Pepsi

Top Accounts:
- Account B (Score: 90/100)
  Markets: US
  Segment: Burgers
  Stage: Prospect
  Rationale: Big
  Ideas: Combo, Fountain
  Current Step: 1/10
- Account A (Score: 40/100)
  Markets: US
  Segment: Burgers
  Stage: Prospect
  Rationale: Big
  Ideas: Combo, Fountain
  Current Step: 1/10
`, got)
}

func TestBuildUserPrompt(t *testing.T) {
	got := playbook.BuildUserPrompt("QSR", []string{"first", "second"})
	require.True(t, strings.HasPrefix(got, "Generate a comprehensive playbook for the QSR sub-channel"))
	require.Contains(t, got, "first\n---\nsecond")
}
