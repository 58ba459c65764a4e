package hunting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
)

const (
	defaultName    = "Unknown"
	defaultSegment = "Unknown"
	defaultSummary = "Hunt completed"
	minScore       = 0
	maxScore       = 100
	minStep        = 1
)

var jsonFence = regexp.MustCompile("(?s)```json\n?(.*?)\n?```")

// Result is the validated outcome of a hunt.
type Result struct {
	HuntResult models.HuntResult
	Accounts   []models.Account
}

// RawAccount is an account object as emitted by the model. No field is trusted.
type RawAccount map[string]any

// ExtractJSON returns the contents of the first fenced json code block in text, or text itself if there is none.
func ExtractJSON(text string) string {
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// ParseResponse parses the model's answer into a [Result].
//
// The answer is either an object with huntResult and accounts or a bare array of accounts. Unparsable answers are
// reported as [ai.ErrExternalService] with the raw text attached.
func ParseResponse(text string) (*Result, error) {
	payload, err := decode(ExtractJSON(text))
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %w", ai.ErrExternalService, err), "parse hunt response",
			slog.String("response", text))
	}

	var (
		rawAccounts []any
		summary     string
	)
	switch v := payload.(type) {
	case []any:
		rawAccounts = v
	case map[string]any:
		rawAccounts, _ = v["accounts"].([]any)
		if huntResult, ok := v["huntResult"].(map[string]any); ok {
			summary = stringOr(huntResult["summary"], "")
		}
	default:
		return nil, errors.Wrap(ai.ErrExternalService, "hunt response is not an object",
			slog.String("response", text))
	}
	if summary == "" {
		summary = defaultSummary
	}

	accounts := make([]models.Account, 0, len(rawAccounts))
	for _, raw := range rawAccounts {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		accounts = append(accounts, CoerceAccount(obj))
	}
	return &Result{
		HuntResult: models.HuntResult{Summary: summary, TotalAccounts: len(accounts)},
		Accounts:   accounts,
	}, nil
}

func decode(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(s))))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after json value")
	}
	return v, nil
}

// CoerceAccount fills in defaults and clamps the numeric fields of raw into a valid account.
func CoerceAccount(raw RawAccount) models.Account {
	return models.Account{
		Name:        stringOr(raw["name"], defaultName),
		Markets:     stringList(raw["markets"]),
		Segment:     stringOr(raw["segment"], defaultSegment),
		Score:       clampedInt(raw["score"], minScore, minScore, maxScore),
		CurrentStep: clampedInt(raw["currentStep"], minStep, minStep, models.StepCount),
		Rationale:   stringOr(raw["rationale"], ""),
		Ideas:       ideas(raw["ideas"]),
		Stage:       stringOr(raw["stage"], models.DefaultStage),
		Steps:       BuildSteps(raw["steps"]),
	}
}

// BuildSteps returns exactly one step per methodology step in canonical order. Only the notes are taken from raw;
// a step without a note is pending.
func BuildSteps(raw any) []models.Step {
	provided, _ := raw.([]any)
	names := models.StepNames()
	steps := make([]models.Step, len(names))
	for i, name := range names {
		steps[i] = models.Step{Step: i + 1, Name: name, Note: providedNote(provided, i+1)}
	}
	return steps
}

func providedNote(provided []any, step int) string {
	for _, p := range provided {
		obj, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if n, ok := number(obj["step"]); ok && n == float64(step) {
			return stringOr(obj["note"], models.PendingNote)
		}
	}
	return models.PendingNote
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringList(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ideas(v any) []models.Idea {
	list, _ := v.([]any)
	out := make([]models.Idea, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.Idea{
			Title:       stringOr(obj["title"], ""),
			Description: stringOr(obj["description"], ""),
		})
	}
	return out
}

// number accepts JSON numbers and numeric strings.
func number(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case json.Number:
		f, err = n.Float64()
	case float64:
		f = n
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampedInt(v any, fallback, lo, hi int) int {
	f, ok := number(v)
	if !ok {
		f = float64(fallback)
	}
	return int(max(float64(lo), min(float64(hi), math.Round(f))))
}
