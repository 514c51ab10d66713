package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/client/migrations"
	"github.com/dmitrijs2005/gophsocial/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite database at dsn and
// brings its schema up to date. Missing parent directories are created and a
// leading "~/" is expanded. The pool is limited to one connection:
// the credential slot has a single writer and SQLite serialises writes anyway.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn, err := filex.EnsureParentDir(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
