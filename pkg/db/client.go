package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/atacado-backend/pkg/config"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

const defaultPingTimeout = 3 * time.Second

// Client owns the process-wide GORM pool. Services receive *gorm.DB handles
// through WithTx rather than holding the client.
type Client struct {
	conn *gorm.DB
}

// Pinger is the readiness surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the pool described by cfg and verifies it answers a ping.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	conn, err := gorm.Open(dialectorFor(cfg), &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQueryThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	client := &Client{conn: conn}
	if err := client.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"db_driver":      conn.Dialector.Name(),
			"max_open_conns": cfg.MaxOpenConns,
			"slow_query_ms":  cfg.SlowQueryThreshold.Milliseconds(),
		}), "database connection established")
	}
	return client, nil
}

// FromGorm wraps an already-open connection. Tests use it with sqlite.
func FromGorm(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

// Postgres runs in simple-protocol mode so PgBouncer in transaction pooling
// mode can sit in front of it.
func dialectorFor(cfg config.DBConfig) gorm.Dialector {
	if cfg.IsSQLite() {
		return sqlite.Open(cfg.DSN)
	}
	return postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	})
}

func (c *Client) IsSQLite() bool {
	return c.conn.Dialector.Name() == "sqlite"
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping checks the pool. Calls without a deadline are bounded by defaultPingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPingTimeout)
		defer cancel()
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in one transaction. A returned error or a panic rolls back;
// the panic is re-raised after rollback.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
