package db

import (
	"context"
	"database/sql"
	"fmt"

	"bookreview/internal/logger"
	"bookreview/internal/repository/db/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// gooseLogger adapts the application logger to goose.Logger.
type gooseLogger struct {
	log *logger.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }

// Migrate applies the embedded migrations for the handle's dialect.
func Migrate(ctx context.Context, db *sqlx.DB, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	dialect := DialectOf(db)

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{log: log})

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "postgres"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set goose dialect %s: %w", gooseDialect, err)
	}
	if err := gooseUpContext(ctx, db.DB, string(dialect)); err != nil {
		return fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	return nil
}
