package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"catbox/internal/logging"
)

const migrationsDir = "sql"

//go:embed sql/*.sql
var migrations embed.FS

// gooseUp is swapped in tests.
var gooseUp = goose.UpContext

// Up applies every pending migration embedded in the binary.
// It is safe to call on every start; applied versions are tracked by goose.
func Up(ctx context.Context, db *sql.DB, log logging.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{ctx: ctx, log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	log.Info(ctx, "db_migration_start")

	if err := gooseUp(ctx, db, migrationsDir); err != nil {
		log.Error(ctx, "db_migration_failed",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info(ctx, "db_migration_success", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// gooseLogger routes goose's printf-style output into the structured logger.
type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info(g.ctx, "db_migration_step", "detail", fmt.Sprintf(format, v...))
}

// Fatalf must not exit the process; Up reports the failure through its error.
func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Error(g.ctx, "db_migration_fatal", "detail", fmt.Sprintf(format, v...))
}
