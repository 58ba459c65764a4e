// Package playbook synthesizes a versioned playbook for a sub-channel from its most recent hunts.
package playbook

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
)

const (
	// MaxOutputTokens is the completion budget of a playbook.
	MaxOutputTokens = 4000
	// RecentHunts is the number of hunts a playbook is synthesized from.
	RecentHunts = 10
	// TopAccountsPerHunt is the number of accounts summarized per hunt.
	TopAccountsPerHunt = 5

	huntSeparator = "\n---\n"
)

// ErrNoHunts is returned when a playbook is requested for a sub-channel without hunts.
var ErrNoHunts = errors.NewSentinel("no hunts found for sub-channel")

// SystemPrompt describes the structure of the playbook.
const SystemPrompt = `You are an expert business development strategist creating comprehensive playbooks for PepsiCo's AFH (Away From Home) division.

Your task is to synthesize hunting results into a structured, actionable playbook using the 10-step hunting model.

The playbook should include:
1. Executive Summary
2. Market Overview
3. Top Opportunities (ranked by score)
4. For each opportunity, detailed guidance on all 10 steps
5. Key Insights & Patterns
6. Recommended Next Steps
7. Resource Requirements

Format the playbook as professional markdown with clear sections, bullet points, and tables where appropriate.`

// HuntLister loads the newest hunts of a sub-channel first.
type HuntLister interface {
	ListRecentBySubChannel(ctx context.Context, subChannel string, limit int) ([]models.Hunt, error)
}

// Upserter stores the playbook of a sub-channel, creating it at version 1 or bumping the version of the existing one.
type Upserter interface {
	Upsert(ctx context.Context, subChannel string, contentMD string, now time.Time) (*models.Playbook, error)
}

// Generator orchestrates playbook generation.
type Generator struct {
	hunts     HuntLister
	playbooks Upserter
	completer ai.Completer
	logger    *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(hunts HuntLister, playbooks Upserter, completer ai.Completer, logger *slog.Logger) *Generator {
	return &Generator{
		hunts:     hunts,
		playbooks: playbooks,
		completer: completer,
		logger:    logger.With("source", "playbook.Generator"),
	}
}

// GeneratePlaybook synthesizes and stores the playbook of subChannel and returns its markdown content.
//
// Nothing is stored when there are no hunts or when the completion fails.
func (g *Generator) GeneratePlaybook(ctx context.Context, subChannel string) (string, error) {
	playbook, err := g.Generate(ctx, subChannel)
	if err != nil {
		return "", err
	}
	return playbook.ContentMD, nil
}

// Generate is like [Generator.GeneratePlaybook] but returns the record written by this call, so that a concurrent
// regeneration cannot change what the caller sees.
func (g *Generator) Generate(ctx context.Context, subChannel string) (*models.Playbook, error) {
	attr := slog.String("sub_channel", subChannel)
	hunts, err := g.hunts.ListRecentBySubChannel(ctx, subChannel, RecentHunts)
	if err != nil {
		return nil, errors.Wrap(err, "list recent hunts", attr)
	}
	if len(hunts) == 0 {
		return nil, errors.Wrap(ErrNoHunts, "generate playbook", attr)
	}

	summaries := make([]string, len(hunts))
	for i, hunt := range hunts {
		summaries[i] = SummarizeHunt(hunt)
	}

	g.logger.LogAttrs(ctx, slog.LevelInfo, "generating playbook", attr, slog.Int("hunts", len(hunts)))
	content, err := g.completer.Complete(ctx, SystemPrompt, BuildUserPrompt(subChannel, summaries), MaxOutputTokens)
	if err != nil {
		return nil, errors.Wrap(err, "complete playbook", attr)
	}

	playbook, err := g.playbooks.Upsert(ctx, subChannel, content, time.Now())
	if err != nil {
		return nil, errors.Wrap(err, "upsert playbook", attr)
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "stored playbook", attr, slog.Int("version", playbook.Version))
	return playbook, nil
}

// TopAccounts returns up to n accounts with the highest score. Ties keep their input order and accounts is not
// modified.
func TopAccounts(accounts []models.Account, n int) []models.Account {
	sorted := slices.Clone(accounts)
	slices.SortStableFunc(sorted, func(a, b models.Account) int {
		return b.Score - a.Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SummarizeHunt renders the top accounts of hunt as prompt text.
func SummarizeHunt(hunt models.Hunt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hunt from %s:\n", hunt.CreatedAt.Format(time.DateOnly))
	fmt.Fprintf(&b, "Markets: %s\n", strings.Join(hunt.Markets, ", "))
	fmt.Fprintf(&b, "Focus Brands: %s\n\n", strings.Join(hunt.FocusBrands, ", "))
	b.WriteString("Top Accounts:\n")
	for _, a := range TopAccounts(hunt.Accounts, TopAccountsPerHunt) {
		titles := make([]string, len(a.Ideas))
		for i, idea := range a.Ideas {
			titles[i] = idea.Title
		}
		fmt.Fprintf(&b, "- %s (Score: %d/100)\n", a.Name, a.Score)
		fmt.Fprintf(&b, "  Markets: %s\n", strings.Join(a.Markets, ", "))
		fmt.Fprintf(&b, "  Segment: %s\n", a.Segment)
		fmt.Fprintf(&b, "  Stage: %s\n", a.Stage)
		fmt.Fprintf(&b, "  Rationale: %s\n", a.Rationale)
		fmt.Fprintf(&b, "  Ideas: %s\n", strings.Join(titles, ", "))
		fmt.Fprintf(&b, "  Current Step: %d/%d\n", a.CurrentStep, models.StepCount)
	}
	return b.String()
}

// BuildUserPrompt asks for the playbook of subChannel based on the hunt summaries.
func BuildUserPrompt(subChannel string, summaries []string) string {
	return fmt.Sprintf(`Generate a comprehensive playbook for the %s sub-channel based on these hunting results:

%s

Please create a professional, actionable playbook in markdown format.`, subChannel, strings.Join(summaries, huntSeparator))
}
