package sql_loader

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/tabular"
)

// target knows how to reach one kind of database.
type target interface {
	dialect() *tabular.Dialect
	driver() string
	dsn(ec *execution.Context) string
	describe(ec *execution.Context) string
	dropTable(ec *execution.Context) bool
}

type loader struct {
	target target
}

func (*loader) InputKind() iotype.Kind  { return iotype.Table }
func (*loader) OutputKind() iotype.Kind { return iotype.Nothing }

func (l *loader) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	t := in.(*tabular.Table)
	table := ec.Text("table")
	logger := ec.Logger().With("database", l.target.describe(ec), "table", table)

	db, err := sql.Open(l.target.driver(), l.target.dsn(ec))
	if err != nil {
		return nil, ec.Errorf("could not open %s database: %v", l.target.dialect().Name, err)
	}
	defer db.Close()

	logger.Debug("Connecting to database.")
	if err := db.PingContext(ec.Ctx()); err != nil {
		return nil, ec.Errorf("could not connect to %s database %s: %v", l.target.dialect().Name, l.target.describe(ec), err)
	}
	if err := write(ec.Ctx(), logger, db, l.target.dialect(), table, t, l.target.dropTable(ec)); err != nil {
		return nil, ec.PropertyErrorf("table", "could not write to %s database: %v", l.target.dialect().Name, err)
	}
	logger.Info("Table loaded.", "rows", t.NumRows())
	return iotype.None, nil
}

type sqliteTarget struct{}

func (sqliteTarget) dialect() *tabular.Dialect             { return tabular.SQLite }
func (sqliteTarget) driver() string                        { return "sqlite3" }
func (sqliteTarget) dsn(ec *execution.Context) string      { return ec.Text("file") }
func (sqliteTarget) describe(ec *execution.Context) string { return ec.Text("file") }
func (sqliteTarget) dropTable(ec *execution.Context) bool  { return ec.Bool("drop_table") }

type postgresTarget struct{}

func (postgresTarget) dialect() *tabular.Dialect { return tabular.Postgres }
func (postgresTarget) driver() string            { return "postgres" }

func (postgresTarget) dsn(ec *execution.Context) string {
	return conninfo(map[string]string{
		"host":     ec.Text("host"),
		"port":     strconv.Itoa(ec.Integer("port")),
		"user":     ec.Text("username"),
		"password": ec.Text("password"),
		"dbname":   ec.Text("database"),
		"sslmode":  ec.Text("ssl_mode"),
	})
}

func (postgresTarget) describe(ec *execution.Context) string {
	return fmt.Sprintf("%s:%d/%s", ec.Text("host"), ec.Integer("port"), ec.Text("database"))
}

func (postgresTarget) dropTable(*execution.Context) bool { return true }

// conninfo renders libpq key/value connection parameters, quoting every
// value.
func conninfo(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	quote := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s='%s'", k, quote.Replace(params[k])))
	}
	return strings.Join(parts, " ")
}
