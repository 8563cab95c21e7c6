package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/opschat/icinga-chatops/internal/infrastructure/config"
)

// DB wraps a MySQL database connection with pooling configured from the
// storage config.
type DB struct {
	*sql.DB
}

// NewDB opens a MySQL connection and verifies it.
func NewDB(cfg *config.MySQLConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mysql config is required")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&timeout=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.Charset, cfg.Timeout,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_log (
			id VARCHAR(36) PRIMARY KEY,
			action INT NOT NULL,
			object_type INT NOT NULL,
			object_count INT NOT NULL,
			author VARCHAR(255) NOT NULL,
			comment TEXT NOT NULL,
			filter_expr TEXT NOT NULL,
			start_time DATETIME(6) NULL,
			end_time DATETIME(6) NULL,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_audit_log_created_at (created_at DESC)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`)
	if err != nil {
		return fmt.Errorf("creating audit_log table: %w", err)
	}
	return nil
}

// Ping checks connectivity to the database.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
