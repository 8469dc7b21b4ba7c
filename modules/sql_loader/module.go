// Package sql_loader provides blocks that write tables into SQL databases:
// SQLiteLoader and PostgresLoader.
package sql_loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/tabular"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var text = valuetype.Of(valuetype.Text)

// Register registers SQLiteLoader and PostgresLoader.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBlock(&meta.BlockType{
		Name:   "SQLiteLoader",
		Input:  iotype.Table,
		Output: iotype.Nothing,
		Properties: meta.Properties{
			"file": {Type: text, Validate: notEmpty,
				Docs: meta.Docs{Description: "Path of the database file; it is created if missing."}},
			"table": {Type: text, Validate: notEmpty,
				Docs: meta.Docs{Description: "Name of the table to write."}},
			"drop_table": {Type: valuetype.Of(valuetype.Boolean), Default: meta.Default(cty.True),
				Docs: meta.Docs{Description: "Whether an existing table of that name is dropped first."}},
		},
		Docs: meta.Docs{Description: "Writes a table into a SQLite database."},
	}, func() registry.Executor { return &loader{target: sqliteTarget{}} })

	r.RegisterBlock(&meta.BlockType{
		Name:   "PostgresLoader",
		Input:  iotype.Table,
		Output: iotype.Nothing,
		Properties: meta.Properties{
			"host":     {Type: text, Docs: meta.Docs{Description: "Database host."}},
			"port":     {Type: valuetype.Of(valuetype.Integer), Validate: validPort, Docs: meta.Docs{Description: "Database port."}},
			"username": {Type: text, Docs: meta.Docs{Description: "User to connect as."}},
			"password": {Type: text, Docs: meta.Docs{Description: "Password of the user."}},
			"database": {Type: text, Docs: meta.Docs{Description: "Database to connect to."}},
			"table": {Type: text, Validate: notEmpty,
				Docs: meta.Docs{Description: "Name of the table to write."}},
			"ssl_mode": {Type: text, Default: meta.Default(cty.StringVal("disable")),
				Docs: meta.Docs{Description: "libpq sslmode, e.g. disable, require or verify-full."}},
		},
		Docs: meta.Docs{Description: "Writes a table into a PostgreSQL database, replacing a table of the same name."},
	}, func() registry.Executor { return &loader{target: postgresTarget{}} })
}

// write replaces or extends table in db with the rows of t. Every statement
// runs in one transaction.
func write(ctx context.Context, logger *slog.Logger, db *sql.DB, d *tabular.Dialect, table string, t *tabular.Table, drop bool) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var stmts []string
	if drop {
		logger.Debug("Dropping previous table if it exists.", "table", table)
		stmts = append(stmts, d.DropTableStatement(table))
	}
	stmts = append(stmts, t.CreateTableStatement(d, table))
	if insert := t.InsertValuesStatement(d, table); insert != "" {
		stmts = append(stmts, insert)
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	logger.Debug("Inserted rows.", "table", table, "rows", t.NumRows())
	return tx.Commit()
}

func notEmpty(v cty.Value) error {
	if v.AsString() == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

func validPort(v cty.Value) error {
	if n, _ := v.AsBigFloat().Int64(); n < 1 || n > 65535 {
		return fmt.Errorf("port %d is out of range", n)
	}
	return nil
}
