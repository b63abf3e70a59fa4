package repositories

import (
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aora/backend/internal/backend"
)

// Tables holds the sanitised, schema-qualified table names derived from the backend config.
type Tables struct {
	Schema   string
	Accounts string
	Sessions string
	Users    string
	Videos   string

	// Migrations records applied migration versions.
	Migrations string
}

// NewTables maps the database id to a schema and the collection ids to tables within it.
func NewTables(cfg backend.Config) Tables {
	return Tables{
		Schema:   pgx.Identifier{cfg.DatabaseID}.Sanitize(),
		Accounts: pgx.Identifier{cfg.DatabaseID, "accounts"}.Sanitize(),
		Sessions: pgx.Identifier{cfg.DatabaseID, "sessions"}.Sanitize(),
		Users:    pgx.Identifier{cfg.DatabaseID, cfg.UserCollectionID}.Sanitize(),
		Videos:   pgx.Identifier{cfg.DatabaseID, cfg.VideoCollectionID}.Sanitize(),

		Migrations: pgx.Identifier{cfg.DatabaseID, "schema_migrations"}.Sanitize(),
	}
}

// Render substitutes the {{schema}}, {{accounts}}, {{sessions}}, {{users}} and
// {{videos}} placeholders of a migration or seed script.
func (t Tables) Render(script string) string {
	return strings.NewReplacer(
		"{{schema}}", t.Schema,
		"{{accounts}}", t.Accounts,
		"{{sessions}}", t.Sessions,
		"{{users}}", t.Users,
		"{{videos}}", t.Videos,
	).Replace(script)
}
