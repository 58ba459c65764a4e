// Package hunting runs the 10-step hunting model: discovery across markets, one completion and lenient parsing of
// the model's answer into validated accounts.
package hunting

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/myrjola/huntdesk/internal/discovery"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
)

// Hunter orchestrates hunts.
type Hunter struct {
	discoverer  discovery.Discoverer
	completer   ai.Completer
	concurrency int
	logger      *slog.Logger
}

// NewHunter creates a Hunter. At most concurrency markets are scanned at once.
func NewHunter(d discovery.Discoverer, c ai.Completer, concurrency int, logger *slog.Logger) *Hunter {
	return &Hunter{
		discoverer:  d,
		completer:   c,
		concurrency: concurrency,
		logger:      logger.With("source", "hunting.Hunter"),
	}
}

// RunHunt scans the markets of params for candidates and asks the model to score them.
//
// A failing completion or an unparsable answer aborts the hunt. Coercion of the parsed accounts never fails.
func (h *Hunter) RunHunt(ctx context.Context, params models.HuntParams) (*Result, error) {
	start := time.Now()
	attrs := []slog.Attr{slog.String("sub_channel", params.SubChannel), slog.Any("markets", params.Markets)}
	h.logger.LogAttrs(ctx, slog.LevelInfo, "scanning universe", attrs...)

	results := discovery.AcrossMarkets(ctx, h.discoverer, params.SubChannel, params.Markets, h.concurrency)
	candidates := CandidateList(results, params.Markets, params.MaxAccounts)
	h.logger.LogAttrs(ctx, slog.LevelDebug, "collected candidates", slog.Int("count", len(candidates)))

	text, err := h.completer.Complete(ctx, SystemPrompt, BuildUserPrompt(params, candidates), MaxOutputTokens)
	if err != nil {
		return nil, errors.Wrap(err, "complete hunt", attrs...)
	}

	result, err := ParseResponse(text)
	if err != nil {
		return nil, errors.Wrap(err, "parse hunt", attrs...)
	}

	h.logger.LogAttrs(ctx, slog.LevelInfo, "hunt completed",
		slog.Int("accounts", result.HuntResult.TotalAccounts),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}
