package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"reelsync/internal/catalog"
	"reelsync/internal/logging"
)

// column pairs a catalog table column with its DDL type. Order matters: it is
// the insert/update column order.
type column struct {
	name string
	ddl  string
}

// catalogColumns enumerates the persisted shape of a catalog record.
// imdb_id carries the uniqueness constraint; it is the reconciliation key.
var catalogColumns = []column{
	{"id", "bigint PRIMARY KEY"},
	{"imdb_id", "varchar(60) UNIQUE NOT NULL"},
	{"name", "varchar(255) NOT NULL"},
	{"description", "text NOT NULL"},
	{"genre", "varchar(255) NOT NULL"},
	{"rating", "varchar(10) NOT NULL"},
	{"duration", "varchar(10) NOT NULL"},
	{"release_date", "date NOT NULL"},
	{"status", "varchar(20) NOT NULL"},
	{"score", "double precision NOT NULL"},
	{"vote_count", "integer NOT NULL"},
	{"popularity", "double precision NOT NULL"},
	{"budget", "varchar(32) NOT NULL"},
	{"revenue", "varchar(32) NOT NULL"},
	{"language", "varchar(10) NOT NULL"},
	{"logo", "varchar(255) NOT NULL"},
	{"poster", "varchar(255) NOT NULL"},
	{"banner", "varchar(255) NOT NULL"},
	{"trailer", "varchar(255) NOT NULL"},
}

type tableRef struct {
	schema string
	table  string
}

func (t tableRef) qualified() string {
	return pgx.Identifier{t.schema, t.table}.Sanitize()
}

// EnsureSchema creates the schema and table if absent, then adds any missing
// column. Existing data is never migrated or dropped.
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	for _, stmt := range g.table.schemaStatements() {
		if _, err := g.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	g.logger.Info("catalog schema ensured", logging.String("table", g.table.qualified()))
	return nil
}

func (t tableRef) schemaStatements() []string {
	statements := make([]string, 0, len(catalogColumns)+2)
	statements = append(statements,
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{t.schema}.Sanitize()),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ()", t.qualified()),
	)
	for _, col := range catalogColumns {
		statements = append(statements, fmt.Sprintf(
			"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
			t.qualified(), pgx.Identifier{col.name}.Sanitize(), col.ddl))
	}
	return statements
}

func (t tableRef) columnNames() []string {
	names := make([]string, len(catalogColumns))
	for i, col := range catalogColumns {
		names[i] = pgx.Identifier{col.name}.Sanitize()
	}
	return names
}

func (t tableRef) existsSQL() string {
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE imdb_id = $1)", t.qualified())
}

func (t tableRef) insertSQL() string {
	names := t.columnNames()
	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.qualified(), strings.Join(names, ", "), strings.Join(placeholders, ", "))
}

func (t tableRef) updateSQL() string {
	names := t.columnNames()
	assignments := make([]string, len(names))
	keyIndex := 0
	for i, col := range catalogColumns {
		assignments[i] = fmt.Sprintf("%s = $%d", names[i], i+1)
		if col.name == "imdb_id" {
			keyIndex = i + 1
		}
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE imdb_id = $%d",
		t.qualified(), strings.Join(assignments, ", "), keyIndex)
}

func (t tableRef) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE imdb_id = $1", t.qualified())
}

// recordArgs flattens a record into positional args matching catalogColumns.
func recordArgs(r catalog.Record) []any {
	return []any{
		r.TMDBID, r.IMDBID, r.Title, r.Synopsis, r.Genres, string(r.Rating),
		r.Duration, r.ReleaseDate, r.Status, r.Score, r.VoteCount, r.Popularity,
		r.Budget, r.Revenue, r.Language, r.LogoURL, r.PosterURL, r.BannerURL,
		r.TrailerURL,
	}
}
