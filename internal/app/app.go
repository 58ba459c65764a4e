// Package app wires the database, the collaborators and the orchestrators into the services shared by the web
// server and the CLI.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/myrjola/huntdesk/internal/config"
	"github.com/myrjola/huntdesk/internal/discovery"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/hunting"
	"github.com/myrjola/huntdesk/internal/logging"
	"github.com/myrjola/huntdesk/internal/metrics"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/playbook"
	"github.com/myrjola/huntdesk/internal/repositories"
	"github.com/myrjola/huntdesk/internal/sqlite"
	"github.com/myrjola/huntdesk/internal/validation"
)

// Services bundles everything a request handler or a CLI command needs.
type Services struct {
	DB        *sqlite.Database
	Hunts     *repositories.HuntRepository
	Playbooks *repositories.PlaybookRepository
	Metrics   *metrics.Metrics
	hunter    *hunting.Hunter
	generator *playbook.Generator
	logger    *slog.Logger
}

// New connects to the database and builds the services from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}

	var discoverer discovery.Discoverer = discovery.Stub{}
	if cfg.Crawl4AIURL != "" {
		discoverer = discovery.NewCrawl4AI(cfg.Crawl4AIURL, logger)
	}
	client := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger)

	return NewServices(db, discoverer, client, cfg.DiscoveryConcurrency, logger), nil
}

// NewServices builds the services on top of an open database and the given collaborators.
func NewServices(
	db *sqlite.Database,
	discoverer discovery.Discoverer,
	completer ai.Completer,
	discoveryConcurrency int,
	logger *slog.Logger,
) *Services {
	m := metrics.New()
	hunts := repositories.NewHuntRepository(db, logger)
	playbooks := repositories.NewPlaybookRepository(db, logger)
	return &Services{
		DB:        db,
		Hunts:     hunts,
		Playbooks: playbooks,
		Metrics:   m,
		hunter: hunting.NewHunter(discoverer, m.Completer(completer, metrics.OperationHunt),
			discoveryConcurrency, logger),
		generator: playbook.NewGenerator(hunts, playbooks, m.Completer(completer, metrics.OperationPlaybook), logger),
		logger:    logger.With("source", "app.Services"),
	}
}

// CreateHunt validates in, runs the hunt and stores it.
func (s *Services) CreateHunt(ctx context.Context, in validation.HuntInput) (*models.Hunt, error) {
	params, err := validation.ParseHuntParams(in)
	if err != nil {
		return nil, errors.Wrap(err, "validate hunt")
	}
	ctx = logging.WithAttrs(ctx, slog.String("sub_channel", params.SubChannel))

	result, err := s.hunter.RunHunt(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "run hunt")
	}

	hunt := &models.Hunt{
		ID:          "",
		SubChannel:  params.SubChannel,
		Markets:     params.Markets,
		FocusBrands: params.FocusBrands,
		MaxAccounts: params.MaxAccounts,
		Accounts:    result.Accounts,
		HuntResult:  result.HuntResult,
		CreatedAt:   time.Now().UTC(),
	}
	if err = s.Hunts.Create(ctx, hunt); err != nil {
		return nil, errors.Wrap(err, "store hunt")
	}
	s.Metrics.HuntsCreated.Inc()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "created hunt", slog.String("hunt_id", hunt.ID))
	return hunt, nil
}

// GeneratePlaybook validates subChannel, synthesizes its playbook and returns the record written by this call.
func (s *Services) GeneratePlaybook(ctx context.Context, subChannel string) (*models.Playbook, error) {
	subChannel, err := validation.ParsePlaybookParams(subChannel)
	if err != nil {
		return nil, errors.Wrap(err, "validate playbook request")
	}
	ctx = logging.WithAttrs(ctx, slog.String("sub_channel", subChannel))

	stored, err := s.generator.Generate(ctx, subChannel)
	if err != nil {
		return nil, errors.Wrap(err, "generate playbook")
	}
	s.Metrics.PlaybooksGenerated.Inc()
	return stored, nil
}

// Close releases the database.
func (s *Services) Close() error {
	return s.DB.Close()
}
