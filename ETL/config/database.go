package config

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Порты по умолчанию, если DB_PORT не задан
const (
	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432
)

// DefaultPort возвращает стандартный порт драйвера
func DefaultPort(driver string) int {
	if driver == "postgres" {
		return DefaultPostgresPort
	}
	return DefaultMySQLPort
}

// DSN формирует строку подключения для драйвера. Учетные данные экранируются,
// поэтому пароль может содержать любые символы.
func (c DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:     "/" + c.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	default:
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		cfg.DBName = c.Name
		cfg.ParseTime = true
		return cfg.FormatDSN()
	}
}

// ConnectDatabase открывает подключение к целевой БД и проверяет его
func ConnectDatabase(ctx context.Context, c DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", c.Driver, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s at %s: %w", c.Driver, c.Host, err)
	}
	return db, nil
}
