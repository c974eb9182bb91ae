// Package sqlitetest opens throwaway sqlite databases carrying the full schema.
package sqlitetest

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/migrate"
)

// Open returns a db.Client on a temp-file sqlite database. WAL mode and a busy
// timeout let concurrent transactions in a test serialize instead of failing.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on",
		filepath.Join(t.TempDir(), "atacado.db"))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.New(log.New(io.Discard, "", log.LstdFlags), gormlogger.Config{LogLevel: gormlogger.Silent}),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.ApplySQLiteSchema(context.Background(), sqlDB); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db.FromGorm(conn)
}
