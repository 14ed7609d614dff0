package storage

import (
	"database/sql"
	"fmt"

	"petbot/internal/storage/migrations"

	"github.com/rs/zerolog/log"
	migrate "github.com/rubenv/sql-migrate"
)

const migrationTable = "schema_migrations"

// applyMigrations runs the embedded migrations that are not recorded yet
func applyMigrations(db *sql.DB) error {
	set := migrate.MigrationSet{TableName: migrationTable}
	source := &migrate.EmbedFileSystemMigrationSource{FileSystem: migrations.FS, Root: "."}
	n, err := set.Exec(db, "sqlite3", source, migrate.Up)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if n > 0 {
		log.Info().Msg(fmt.Sprintf("Applied %d migrations", n))
	}
	return nil
}
