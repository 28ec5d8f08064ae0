package mongo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	URI      string
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Options  map[string]string
}

func NewMongoConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    27017,
		Options: make(map[string]string),
	}
}

// WithURI takes precedence over host, port and credentials.
func (c *Config) WithURI(uri string) *Config {
	c.URI = uri
	return c
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

func (c *Config) WithOption(key, value string) *Config {
	c.Options[key] = value
	return c
}

// BuildURI escapes credentials and emits options sorted by key.
func (c *Config) BuildURI() string {
	if c.URI != "" {
		return c.URI
	}

	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%d", c.Host, c.Port)}
	if c.Username != "" && c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}

	if len(c.Options) > 0 {
		query := url.Values{}
		for key, value := range c.Options {
			query.Set(key, value)
		}
		// the driver wants a slash between the hosts and the options
		u.Path = "/"
		u.RawQuery = query.Encode()
	}

	return u.String()
}

func (c *Config) Connect(ctx context.Context) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.BuildURI()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(c.Database), nil
}
