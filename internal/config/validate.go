package config

import "fmt"

func (c *Config) validate() error {
	switch c.Runtime {
	case "http", "lambda":
	default:
		return fmt.Errorf("unknown RUNTIME %q, expected http or lambda", c.Runtime)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendMongo, BackendDynamoDB, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.Store.Backend == BackendMongo && c.Mongo.URI == "" && c.Mongo.Host == "" {
		return fmt.Errorf("MONGO_URI or MONGO_HOST must be set for the mongo backend")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL must not be empty")
	}
	return nil
}
