package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
}

func NewSQLConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    5432,
		SSLMode: "disable",
	}
}

func (c *Config) WithCredentials(username, password string) *Config {
	c.Username = username
	c.Password = password
	return c
}

func (c *Config) WithHost(host string, port int) *Config {
	c.Host = host
	c.Port = port
	return c
}

func (c *Config) WithDatabase(database string) *Config {
	c.Database = database
	return c
}

func (c *Config) WithSSLMode(mode string) *Config {
	c.SSLMode = mode
	return c
}

func (c *Config) BuildDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

func (c *Config) Connect(ctx context.Context) (*sql.DB, error) {
	return Open(ctx, c.BuildDSN())
}

// Open connects with the pool settings used by every postgres store.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
