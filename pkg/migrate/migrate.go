package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir  = "pkg/migrate/migrations"
	embeddedDir = "migrations"
	dialect     = "postgres"
)

//go:embed migrations/*.sql
var embedded embed.FS

var runnableCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"redo":    true,
}

// prepare points goose at the embedded migrations when dir is DefaultDir so
// deployed binaries do not depend on the source tree, and at the local
// filesystem otherwise.
func prepare(dir string) (string, error) {
	if dir == "" || dir == DefaultDir {
		goose.SetBaseFS(embedded)
		dir = embeddedDir
	} else {
		goose.SetBaseFS(nil)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	return dir, nil
}

// Run executes a goose command against db.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if !runnableCommands[command] {
		return fmt.Errorf("unsupported goose command %q", command)
	}
	path, err := prepare(dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, path, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	path, err := prepare(dir)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, path, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, path, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

// Embedded exposes the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, embeddedDir)
	if err != nil {
		panic(err)
	}
	return sub
}
