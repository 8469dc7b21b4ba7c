package tabular

import (
	"fmt"
	"strings"

	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Dialect captures how one SQL database spells types and literals.
type Dialect struct {
	Name  string
	types map[valuetype.Primitive]string
	True  string
	False string
}

var (
	// Postgres renders statements for PostgreSQL.
	Postgres = &Dialect{
		Name: "postgres",
		types: map[valuetype.Primitive]string{
			valuetype.Text:    "text",
			valuetype.Integer: "integer",
			valuetype.Decimal: "real",
			valuetype.Boolean: "boolean",
		},
		True:  "true",
		False: "false",
	}

	// SQLite renders statements for SQLite, which stores booleans as 0 and 1.
	SQLite = &Dialect{
		Name: "sqlite",
		types: map[valuetype.Primitive]string{
			valuetype.Text:    "TEXT",
			valuetype.Integer: "INTEGER",
			valuetype.Decimal: "REAL",
			valuetype.Boolean: "INTEGER",
		},
		True:  "1",
		False: "0",
	}
)

const nullLiteral = "NULL"

// QuoteIdentifier quotes a table or column name.
func (d *Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString renders a string literal.
func (d *Dialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// TypeName returns the column type used for p.
func (d *Dialect) TypeName(p valuetype.Primitive) string {
	name, ok := d.types[p]
	if !ok {
		panic(fmt.Sprintf("%s has no column type for %s", d.Name, p))
	}
	return name
}

// Literal renders v as a value of a column of type p.
func (d *Dialect) Literal(p valuetype.Primitive, v cty.Value) string {
	if v.IsNull() {
		return nullLiteral
	}
	switch p {
	case valuetype.Integer, valuetype.Decimal:
		return v.AsBigFloat().Text('f', -1)
	case valuetype.Boolean:
		if v.True() {
			return d.True
		}
		return d.False
	}
	return d.QuoteString(v.AsString())
}

// DropTableStatement removes a table if it exists.
func (d *Dialect) DropTableStatement(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.QuoteIdentifier(table))
}

// CreateTableStatement creates a table matching t's schema.
func (t *Table) CreateTableStatement(d *Dialect, table string) string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = d.QuoteIdentifier(c.Name) + " " + d.TypeName(c.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", d.QuoteIdentifier(table), strings.Join(defs, ","))
}

// InsertValuesStatement inserts every row of t, one row literal per row in
// column order. A table without rows renders an empty string, as SQL has no
// empty VALUES list.
func (t *Table) InsertValuesStatement(d *Dialect, table string) string {
	if len(t.rows) == 0 {
		return ""
	}
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = d.QuoteIdentifier(c.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", d.QuoteIdentifier(table), strings.Join(names, ","))
	for i, row := range t.rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(d.Literal(t.columns[j].Type, v))
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String()
}
