package migration

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catbox/internal/logging"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "sql/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"sql/00001_create_users.sql", "sql/00002_create_files.sql"}, files)

	users, err := fs.ReadFile(migrations, "sql/00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(users), "-- +goose Up")
	assert.Contains(t, string(users), "UNIQUE (username)")

	filesSQL, err := fs.ReadFile(migrations, "sql/00002_create_files.sql")
	require.NoError(t, err)
	assert.Contains(t, string(filesSQL), "UNIQUE (stored_name)")
	assert.Contains(t, string(filesSQL), "REFERENCES users (id)")
}

func TestUp(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		var gotDir string
		gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			gotDir = dir
			return nil
		}

		err := Up(context.Background(), nil, logging.NewJSON(&buf, time.UTC, slog.LevelInfo), "db-host")

		assert.NoError(t, err)
		assert.Equal(t, migrationsDir, gotDir)
		assert.Contains(t, buf.String(), "db_migration_success")
		assert.Contains(t, buf.String(), `"db_host":"db-host"`)
	})

	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			return errors.New("relation already exists")
		}

		err := Up(context.Background(), nil, logging.NewJSON(&buf, time.UTC, slog.LevelInfo), "db-host")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "run migrations: relation already exists")
		assert.Contains(t, buf.String(), "db_migration_failed")
	})
}
