package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"clubroster/internal/config"
)

// Open connects to the configured backing store. sqlite DSNs are plain
// file paths; postgres and mysql DSNs are passed through to the driver.
func Open(cfg config.Config) (*sql.DB, error) {
	driver := cfg.DBDriver
	dsn := cfg.DBDSN
	switch driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dsn)
	case "postgres":
		driver = "pgx"
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	conn.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	return conn, nil
}

// OpenSQLite opens a standalone sqlite database, mainly for tests.
func OpenSQLite(path string) (*sql.DB, error) {
	return Open(config.Config{
		DBDriver:          "sqlite",
		DBDSN:             path,
		DBMaxOpenConns:    1,
		DBMaxIdleConns:    1,
		DBConnMaxLifetime: time.Minute,
	})
}
