package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/sqlite"
)

type PlaybookRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewPlaybookRepository(db *sqlite.Database, logger *slog.Logger) *PlaybookRepository {
	return &PlaybookRepository{
		db:     db,
		logger: logger.With("source", "PlaybookRepository"),
	}
}

type playbookRow struct {
	ID         string `db:"id"`
	SubChannel string `db:"sub_channel"`
	Version    int    `db:"version"`
	ContentMD  string `db:"content_md"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

const playbookColumns = `id, sub_channel, version, content_md, created_at, updated_at`

func (row playbookRow) toModel() (models.Playbook, error) {
	var (
		playbook = models.Playbook{ //nolint:exhaustruct // decoded below
			ID:         row.ID,
			SubChannel: row.SubChannel,
			Version:    row.Version,
			ContentMD:  row.ContentMD,
		}
		err error
	)
	if playbook.CreatedAt, err = sqlite.ParseTime(row.CreatedAt); err != nil {
		return playbook, errors.Wrap(err, "decode created_at", slog.String("id", row.ID))
	}
	if playbook.UpdatedAt, err = sqlite.ParseTime(row.UpdatedAt); err != nil {
		return playbook, errors.Wrap(err, "decode updated_at", slog.String("id", row.ID))
	}
	return playbook, nil
}

// Get returns the playbook of subChannel or [ErrNotFound].
func (r *PlaybookRepository) Get(ctx context.Context, subChannel string) (*models.Playbook, error) {
	var row playbookRow
	stmt := `SELECT ` + playbookColumns + ` FROM playbooks WHERE sub_channel = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &row, stmt, subChannel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "playbook not found", slog.String("sub_channel", subChannel))
		}
		return nil, errors.Wrap(err, "select playbook", slog.String("sub_channel", subChannel))
	}
	playbook, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &playbook, nil
}

// List returns every playbook, most recently updated first.
func (r *PlaybookRepository) List(ctx context.Context) ([]models.Playbook, error) {
	var rows []playbookRow
	stmt := `SELECT ` + playbookColumns + ` FROM playbooks ORDER BY updated_at DESC, sub_channel`
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "select playbooks")
	}
	playbooks := make([]models.Playbook, len(rows))
	for i, row := range rows {
		playbook, err := row.toModel()
		if err != nil {
			return nil, err
		}
		playbooks[i] = playbook
	}
	return playbooks, nil
}

// Upsert creates the playbook of subChannel at version 1 or replaces the content of the existing playbook and bumps
// its version by one. The version is incremented in the same statement so concurrent upserts never lose an update.
func (r *PlaybookRepository) Upsert(
	ctx context.Context,
	subChannel string,
	contentMD string,
	now time.Time,
) (*models.Playbook, error) {
	id, err := newID()
	if err != nil {
		return nil, errors.Wrap(err, "new playbook id")
	}
	stmt := `INSERT INTO playbooks (` + playbookColumns + `)
VALUES (@id, @sub_channel, 1, @content_md, @now, @now)
ON CONFLICT (sub_channel) DO UPDATE SET version    = version + 1,
                                        content_md = excluded.content_md,
                                        updated_at = excluded.updated_at
RETURNING ` + playbookColumns
	var row playbookRow
	if err = r.db.ReadWrite.GetContext(ctx, &row, stmt,
		sql.Named("id", id),
		sql.Named("sub_channel", subChannel),
		sql.Named("content_md", contentMD),
		sql.Named("now", sqlite.FormatTime(now)),
	); err != nil {
		return nil, errors.Wrap(err, "upsert playbook", slog.String("sub_channel", subChannel))
	}
	playbook, err := row.toModel()
	if err != nil {
		return nil, err
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "upserted playbook",
		slog.String("sub_channel", subChannel), slog.Int("version", playbook.Version))
	return &playbook, nil
}
