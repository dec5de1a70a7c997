package db

import (
	"academy-api/config"
	"academy-api/logger"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Connect opens the configured database, applies pool settings and pings it.
func Connect() (*sql.DB, Dialect, error) {
	cfg := config.AppConfig.Database

	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	connStr, safeConnStr := dataSource(dialect)
	logger.Log.WithFields(logrus.Fields{
		"driver":     dialect,
		"connection": safeConnStr,
	}).Info("Attempting to connect to the database")

	db, err := sql.Open(string(dialect), connStr)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}

	if dialect == SQLite {
		// a single writer avoids "database is locked" under concurrent requests
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, dialect, nil
}

func dataSource(dialect Dialect) (string, string) {
	cfg := config.AppConfig.Database

	switch dialect {
	case MySQL:
		if cfg.DSN != "" {
			return cfg.DSN, "(dsn from configuration)"
		}
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.MultiStatements = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		dsn := mc.FormatDSN()
		mc.Passwd = "****"
		return dsn, mc.FormatDSN()
	case Postgres:
		if cfg.DSN != "" {
			return cfg.DSN, "(dsn from configuration)"
		}
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		safeConnStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Name)
		return connStr, safeConnStr
	default:
		dsn := SQLiteDSN(cfg.DSN)
		return dsn, dsn
	}
}

// SQLiteDSN turns a file path into a DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}
