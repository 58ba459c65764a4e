package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/sqlite"
)

// HuntFilter selects a page of hunts, newest first. An empty SubChannel matches every hunt.
type HuntFilter struct {
	SubChannel string
	Limit      int
	Offset     int
}

type HuntRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewHuntRepository(db *sqlite.Database, logger *slog.Logger) *HuntRepository {
	return &HuntRepository{
		db:     db,
		logger: logger.With("source", "HuntRepository"),
	}
}

type huntRow struct {
	ID            string `db:"id"`
	SubChannel    string `db:"sub_channel"`
	Markets       string `db:"markets"`
	FocusBrands   string `db:"focus_brands"`
	MaxAccounts   int    `db:"max_accounts"`
	Accounts      string `db:"accounts"`
	Summary       string `db:"summary"`
	TotalAccounts int    `db:"total_accounts"`
	CreatedAt     string `db:"created_at"`
}

const huntColumns = `id, sub_channel, markets, focus_brands, max_accounts, accounts, summary, total_accounts, created_at`

func (row huntRow) toModel() (models.Hunt, error) {
	var (
		hunt = models.Hunt{ //nolint:exhaustruct // decoded below
			ID:          row.ID,
			SubChannel:  row.SubChannel,
			MaxAccounts: row.MaxAccounts,
			HuntResult:  models.HuntResult{Summary: row.Summary, TotalAccounts: row.TotalAccounts},
		}
		err error
	)
	if hunt.Markets, err = unmarshalList[string](row.Markets); err != nil {
		return hunt, errors.Wrap(err, "decode markets", slog.String("id", row.ID))
	}
	if hunt.FocusBrands, err = unmarshalList[string](row.FocusBrands); err != nil {
		return hunt, errors.Wrap(err, "decode focus brands", slog.String("id", row.ID))
	}
	if hunt.Accounts, err = unmarshalList[models.Account](row.Accounts); err != nil {
		return hunt, errors.Wrap(err, "decode accounts", slog.String("id", row.ID))
	}
	if hunt.CreatedAt, err = sqlite.ParseTime(row.CreatedAt); err != nil {
		return hunt, errors.Wrap(err, "decode created_at", slog.String("id", row.ID))
	}
	return hunt, nil
}

// Create stores hunt together with its accounts and assigns its ID.
func (r *HuntRepository) Create(ctx context.Context, hunt *models.Hunt) error {
	var (
		row = huntRow{ //nolint:exhaustruct // encoded below
			SubChannel:    hunt.SubChannel,
			MaxAccounts:   hunt.MaxAccounts,
			Summary:       hunt.HuntResult.Summary,
			TotalAccounts: hunt.HuntResult.TotalAccounts,
			CreatedAt:     sqlite.FormatTime(hunt.CreatedAt),
		}
		err error
	)
	if row.ID, err = newID(); err != nil {
		return errors.Wrap(err, "new hunt id")
	}
	if row.Markets, err = marshalList(hunt.Markets); err != nil {
		return errors.Wrap(err, "encode markets")
	}
	if row.FocusBrands, err = marshalList(hunt.FocusBrands); err != nil {
		return errors.Wrap(err, "encode focus brands")
	}
	if row.Accounts, err = marshalList(hunt.Accounts); err != nil {
		return errors.Wrap(err, "encode accounts")
	}

	stmt := `INSERT INTO hunts (` + huntColumns + `)
VALUES (:id, :sub_channel, :markets, :focus_brands, :max_accounts, :accounts, :summary, :total_accounts, :created_at)`
	if _, err = r.db.ReadWrite.NamedExecContext(ctx, stmt, row); err != nil {
		return errors.Wrap(err, "insert hunt", slog.String("sub_channel", hunt.SubChannel))
	}
	hunt.ID = row.ID
	return nil
}

// Get returns the hunt with id or [ErrNotFound].
func (r *HuntRepository) Get(ctx context.Context, id string) (*models.Hunt, error) {
	var row huntRow
	stmt := `SELECT ` + huntColumns + ` FROM hunts WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "hunt not found", slog.String("id", id))
		}
		return nil, errors.Wrap(err, "select hunt", slog.String("id", id))
	}
	hunt, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &hunt, nil
}

// Delete removes the hunt with id and its accounts or returns [ErrNotFound].
func (r *HuntRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM hunts WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete hunt", slog.String("id", id))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, "hunt not found", slog.String("id", id))
	}
	return nil
}

// List returns a page of hunts, newest first.
func (r *HuntRepository) List(ctx context.Context, filter HuntFilter) ([]models.Hunt, error) {
	var rows []huntRow
	stmt := `SELECT ` + huntColumns + ` FROM hunts
WHERE @sub_channel = '' OR sub_channel = @sub_channel
ORDER BY created_at DESC, id DESC
LIMIT @limit OFFSET @offset`
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, stmt,
		sql.Named("sub_channel", filter.SubChannel),
		sql.Named("limit", filter.Limit),
		sql.Named("offset", filter.Offset),
	); err != nil {
		return nil, errors.Wrap(err, "select hunts", slog.String("sub_channel", filter.SubChannel))
	}
	hunts := make([]models.Hunt, len(rows))
	for i, row := range rows {
		hunt, err := row.toModel()
		if err != nil {
			return nil, err
		}
		hunts[i] = hunt
	}
	return hunts, nil
}

// Count returns the number of hunts of subChannel, or of every hunt when subChannel is empty.
func (r *HuntRepository) Count(ctx context.Context, subChannel string) (int, error) {
	var n int
	stmt := `SELECT COUNT(*) FROM hunts WHERE @sub_channel = '' OR sub_channel = @sub_channel`
	if err := r.db.ReadOnly.GetContext(ctx, &n, stmt, sql.Named("sub_channel", subChannel)); err != nil {
		return 0, errors.Wrap(err, "count hunts", slog.String("sub_channel", subChannel))
	}
	return n, nil
}

// ListRecentBySubChannel returns at most limit hunts of subChannel, newest first.
func (r *HuntRepository) ListRecentBySubChannel(ctx context.Context, subChannel string, limit int) ([]models.Hunt, error) {
	return r.List(ctx, HuntFilter{SubChannel: subChannel, Limit: limit, Offset: 0})
}
