package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/random"
)

// migrateTo ensures that the db schema matches the target schema.
//
// We employ a very simple declarative schema migration that:
//
// 1. Deletes deleted tables,
// 2. Creates new tables,
// 3. Migrates changed tables using 12-step schema migration https://www.sqlite.org/lang_altertable.html#otheralter,
// 4. Drops and recreates indexes and triggers whose definition changed.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	// The pragmas and the attached database are connection scoped so everything runs on one dedicated connection.
	var conn *sqlx.Conn
	if conn, err = db.ReadWrite.Connx(ctx); err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "release connection"))
		}
	}()

	// 12-step schema migration starts here. See https://www.sqlite.org/lang_altertable.html#otheralter.

	// Step 1: Disable foreign key validation temporarily.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	// Step 12: Re-enable foreign key validation.
	defer func() {
		if _, fkErr := conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "re-enable foreign key validation"))
		}
	}()

	// Create schema against a temporary database so that we know what has changed. A database cannot be attached
	// inside a transaction so this happens before step 2.
	var (
		randomID     string
		dbNameLength uint = 20
	)
	if randomID, err = random.Letters(dbNameLength); err != nil {
		return errors.Wrap(err, "generate random ID")
	}
	schemaTargetDataSourceName := fmt.Sprintf("file:%s?mode=memory&cache=shared", randomID)
	var schemaTargetDatabase *sqlx.DB
	if schemaTargetDatabase, err = sqlx.Open("sqlite3", schemaTargetDataSourceName); err != nil {
		return errors.Wrap(err, "open schema target database")
	}
	defer func() {
		if closeErr := schemaTargetDatabase.Close(); closeErr != nil {
			closeErr = errors.Wrap(closeErr, "close schema target database")
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				errors.SlogError(closeErr))
		}
	}()
	if _, err = schemaTargetDatabase.ExecContext(ctx, schemaDefinition); err != nil {
		return errors.Wrap(err, "migrate schema target database")
	}
	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", schemaTargetDataSourceName); err != nil {
		return errors.Wrap(err, "attach schema target database")
	}
	defer func() {
		if _, detachErr := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE schemaTarget"); detachErr != nil {
			err = errors.Join(err, errors.Wrap(detachErr, "detach schema target database"))
		}
	}()

	// Step 2: Start transaction.
	var tx *sqlx.Tx
	if tx, err = conn.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
				errors.SlogError(rollbackErr))
		}
	}()

	// Step 3-7 migrate tables.
	if err = db.migrateTables(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate tables")
	}

	// Step 8: Recreate indexes and triggers associated with table if needed.
	if err = db.migrateObjects(ctx, tx); err != nil {
		return errors.Wrap(err, "migrate indexes and triggers")
	}

	// Step 9: Recreate views associated with table. We have no views.

	// Step 10: Check foreign key constraints.
	var violations []foreignKeyViolation
	if err = tx.SelectContext(ctx, &violations, "PRAGMA foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations after migration",
			slog.String("table", violations[0].Table), slog.Int("count", len(violations)))
	}

	// Step 11: Commit transaction from step 2.
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	// Step 12: is in defer above.

	return nil
}

type foreignKeyViolation struct {
	Table  string        `db:"table"`
	RowID  sql.NullInt64 `db:"rowid"`
	Parent string        `db:"parent"`
	FKID   sql.NullInt64 `db:"fkid"`
}

// migrateTables ensures table schema is synchronized between databases.
func (db *Database) migrateTables(ctx context.Context, tx *sqlx.Tx) error {
	// Step 3: Remember schema (also includes trivial creation and deletion of tables).
	var err error

	// Drop deleted tables.
	var deletedTables []string
	if err = tx.SelectContext(ctx, &deletedTables, `SELECT current.name AS deleted_table
FROM sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target ON current.name=target.name AND current.type=target.type
WHERE current.type = 'table' AND target.type IS NULL AND current.name NOT LIKE 'sqlite_%';`); err != nil {
		return errors.Wrap(err, "query deleted tables")
	}
	for _, table := range deletedTables {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s;", quoteIdentifier(table))); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", table))
		}
	}

	// Create new tables.
	var newTableSQLs []string
	if err = tx.SelectContext(ctx, &newTableSQLs, `SELECT target.sql AS sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN sqlite_schema AS current ON current.name=target.name AND current.type=target.type
WHERE target.type = 'table' AND current.type IS NULL AND target.name NOT LIKE 'sqlite_%';`); err != nil {
		return errors.Wrap(err, "query new table SQLs")
	}
	for _, newTableSQL := range newTableSQLs {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", newTableSQL))
		if _, err = tx.ExecContext(ctx, newTableSQL); err != nil {
			return errors.Wrap(err, "create table")
		}
	}

	// Identify tables with changed schema and continue the 12-step schema migration with them.
	var changedTables []changedTable
	if err = tx.SelectContext(ctx, &changedTables, `SELECT
    current.name AS name,
    current.sql AS current_sql,
    target.sql AS new_sql
FROM sqlite_schema AS current
         JOIN schemaTarget.sqlite_schema AS target ON current.name=target.name AND current.type=target.type
WHERE current.type = 'table' AND current.name NOT LIKE 'sqlite_%' AND current.sql <> target.sql;`); err != nil {
		return errors.Wrap(err, "query changed tables")
	}

	for _, table := range changedTables {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
			slog.String("table", table.Name),
			slog.String("current_sql", table.CurrentSQL),
			slog.String("new_sql", table.NewSQL))

		// Step 4: Create tables according to new schema on temporary names.
		tempName := table.Name + "_migration_temp"
		tempNameSQL := strings.Replace(table.NewSQL, table.Name, tempName, 1)
		if _, err = tx.ExecContext(ctx, tempNameSQL); err != nil {
			return errors.Wrap(err, "create new table to temporary name", slog.String("query", tempNameSQL))
		}

		// Step 5: Copy common columns between tables.
		var commonColumns []string
		// We wrap the column names in with double quotes to handle column names that are SQLite keywords.
		if err = tx.SelectContext(ctx, &commonColumns, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS current
JOIN PRAGMA_TABLE_INFO(:table_name, 'schemaTarget') AS target ON target.name = current.name;`,
			sql.Named("table_name", table.Name)); err != nil {
			return errors.Wrap(err, "query common columns")
		}
		common := strings.Join(commonColumns, ", ")
		copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;", //nolint: gosec // we trust the query.
			quoteIdentifier(tempName), common, common, quoteIdentifier(table.Name))
		db.logger.LogAttrs(ctx, slog.LevelInfo, "copying data", slog.String("query", copySQL))
		if _, err = tx.ExecContext(ctx, copySQL); err != nil {
			return errors.Wrap(err, "copy data")
		}

		// Step 6: Drop the old table.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s;", quoteIdentifier(table.Name))); err != nil {
			return errors.Wrap(err, "drop old table")
		}

		// Step 7: Rename new table to old table's name.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s;",
			quoteIdentifier(tempName), quoteIdentifier(table.Name))); err != nil {
			return errors.Wrap(err, "rename new table")
		}
	}
	return nil
}

// migrateObjects drops indexes and triggers that are missing from or differ in the target schema and creates the
// target's indexes and triggers that do not exist yet. Automatic indexes have no SQL and are left alone.
func (db *Database) migrateObjects(ctx context.Context, tx *sqlx.Tx) error {
	var (
		stale []schemaObject
		err   error
	)
	if err = tx.SelectContext(ctx, &stale, `SELECT current.type AS type, current.name AS name, current.sql AS sql
FROM sqlite_schema AS current
LEFT JOIN schemaTarget.sqlite_schema AS target
    ON current.name = target.name AND current.type = target.type AND current.sql = target.sql
WHERE current.type IN ('index', 'trigger') AND current.sql IS NOT NULL AND target.name IS NULL;`); err != nil {
		return errors.Wrap(err, "query stale objects")
	}
	for _, object := range stale {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping "+object.Type, slog.String("name", object.Name))
		dropSQL := fmt.Sprintf("DROP %s IF EXISTS %s;", strings.ToUpper(object.Type), quoteIdentifier(object.Name))
		if _, err = tx.ExecContext(ctx, dropSQL); err != nil {
			return errors.Wrap(err, "drop object", slog.String("name", object.Name))
		}
	}

	var missing []schemaObject
	if err = tx.SelectContext(ctx, &missing, `SELECT target.type AS type, target.name AS name, target.sql AS sql
FROM schemaTarget.sqlite_schema AS target
LEFT JOIN sqlite_schema AS current
    ON current.name = target.name AND current.type = target.type AND current.sql = target.sql
WHERE target.type IN ('index', 'trigger') AND target.sql IS NOT NULL AND current.name IS NULL;`); err != nil {
		return errors.Wrap(err, "query missing objects")
	}
	for _, object := range missing {
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating "+object.Type, slog.String("query", object.SQL))
		if _, err = tx.ExecContext(ctx, object.SQL); err != nil {
			return errors.Wrap(err, "create object", slog.String("name", object.Name))
		}
	}
	return nil
}

type changedTable struct {
	Name       string `db:"name"`
	CurrentSQL string `db:"current_sql"`
	NewSQL     string `db:"new_sql"`
}

type schemaObject struct {
	Type string `db:"type"`
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
