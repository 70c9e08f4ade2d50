// Package schema renders PostgreSQL DDL for cleaned tables.
//
// Column types follow core.FieldType:
//
//	FieldText      -> text
//	FieldInteger   -> integer
//	FieldNumeric   -> numeric(14,2)
//	FieldFloat     -> double precision
//	FieldTimestamp -> timestamp
//
// Identifiers are always quoted; "order" is a reserved word.
package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/olistclean/internal/core"
)

// DefaultSchema is the schema cleaned tables are created in.
const DefaultSchema = "olist"

var sqlTypes = map[core.FieldType]string{
	core.FieldText:      "text",
	core.FieldInteger:   "integer",
	core.FieldNumeric:   fmt.Sprintf("numeric(%d,%d)", core.MoneyPrecision, core.MoneyPlaces),
	core.FieldFloat:     "double precision",
	core.FieldTimestamp: "timestamp",
}

// SQLType returns the column type for t. Unknown types map to text.
func SQLType(t core.FieldType) string {
	if s, ok := sqlTypes[t]; ok {
		return s
	}
	return "text"
}

// QuoteIdentifier quotes a PostgreSQL identifier.
func QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QualifiedName returns schema.table, both quoted.
func QualifiedName(schemaName, table string) string {
	if schemaName == "" {
		return QuoteIdentifier(table)
	}
	return pgx.Identifier{schemaName, table}.Sanitize()
}

// CreateSchema returns the statement creating schemaName if absent.
func CreateSchema(schemaName string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + QuoteIdentifier(schemaName)
}

// CreateTable returns the statement creating a table if absent. Columns are
// nullable and carry no constraints: identifiers are loose references
// validated by the pipeline, not the database.
func CreateTable(schemaName, table string, cols []core.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%s %s", QuoteIdentifier(c.Name), SQLType(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		QualifiedName(schemaName, table), strings.Join(defs, ",\n\t"))
}

// Truncate returns the statement emptying a table.
func Truncate(schemaName, table string) string {
	return "TRUNCATE TABLE " + QualifiedName(schemaName, table)
}

// DropTable returns the statement dropping a table if present.
func DropTable(schemaName, table string) string {
	return "DROP TABLE IF EXISTS " + QualifiedName(schemaName, table)
}

// CreateAll returns CREATE statements for the schema and every table
// definition's output, in registry order.
func CreateAll(schemaName string, defs []core.TableDefinition) []string {
	stmts := make([]string, 0, len(defs)+1)
	stmts = append(stmts, CreateSchema(schemaName))
	for _, def := range defs {
		stmts = append(stmts, CreateTable(schemaName, def.Info.Output, def.Info.Columns))
	}
	return stmts
}
