package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

type Config struct {
	Env          string
	Port         int
	Runtime      string
	TemplatePath string
	CORS         CORS
	Upstream     Upstream
	Store        Store
	Mongo        Mongo
	AWS          AWS
	DynamoDB     DynamoDB
	Postgres     Postgres
	S3           S3
	Zipkin       Zipkin
}

type CORS struct {
	// AllowedOrigins empty means every origin is reflected back.
	AllowedOrigins []string
}

type Upstream struct {
	BaseURL string
	Timeout time.Duration
}

type Store struct {
	Backend string
}

// Mongo.URI, when set, wins over the host, port and credential fields.
type Mongo struct {
	URI        string
	Host       string
	Port       int
	User       string
	Password   string
	AuthSource string
	Database   string
}

type AWS struct {
	Region      string
	EndpointURL string
}

type DynamoDB struct {
	Table             string
	SkipTableCreation bool
}

type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	DB       string
	SSLMode  string
}

type S3 struct {
	Bucket        string
	PublicBaseURL string
}

type Zipkin struct {
	Address     string
	ServiceName string
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}
	return cfg
}

// Load reads every key from v, falling back to environment variables and defaults.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env:          v.GetString("env"),
		Port:         v.GetInt("port"),
		Runtime:      strings.ToLower(v.GetString("runtime")),
		TemplatePath: v.GetString("template_path"),
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		},
		Upstream: Upstream{
			BaseURL: strings.TrimRight(v.GetString("upstream_base_url"), "/"),
			Timeout: v.GetDuration("upstream_timeout"),
		},
		Store: Store{
			Backend: strings.ToLower(v.GetString("store_backend")),
		},
		Mongo: Mongo{
			URI:        v.GetString("mongo_uri"),
			Host:       v.GetString("mongo_host"),
			Port:       v.GetInt("mongo_port"),
			User:       v.GetString("mongo_user"),
			Password:   v.GetString("mongo_password"),
			AuthSource: v.GetString("mongo_auth_source"),
			Database:   v.GetString("mongo_database"),
		},
		AWS: AWS{
			Region:      v.GetString("aws_region"),
			EndpointURL: v.GetString("aws_endpoint_url"),
		},
		DynamoDB: DynamoDB{
			Table:             v.GetString("dynamodb_table"),
			SkipTableCreation: v.GetBool("dynamodb_skip_table_creation"),
		},
		Postgres: Postgres{
			Host:     v.GetString("postgres_host"),
			Port:     v.GetInt("postgres_port"),
			User:     v.GetString("postgres_user"),
			Password: v.GetString("postgres_password"),
			DB:       v.GetString("postgres_db"),
			SSLMode:  v.GetString("postgres_sslmode"),
		},
		S3: S3{
			Bucket:        v.GetString("s3_bucket"),
			PublicBaseURL: strings.TrimRight(v.GetString("s3_public_base_url"), "/"),
		},
		Zipkin: Zipkin{
			Address:     v.GetString("zipkin_address"),
			ServiceName: v.GetString("zipkin_service_name"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("port", 3001)
	v.SetDefault("runtime", "http")
	v.SetDefault("template_path", "assets/newPost.txt")
	v.SetDefault("cors_allowed_origins", "")

	v.SetDefault("upstream_base_url", "https://lite-tech-api.litebox.ai")
	v.SetDefault("upstream_timeout", 10*time.Second)

	v.SetDefault("store_backend", BackendMemory)

	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_host", "localhost")
	v.SetDefault("mongo_port", 27017)
	v.SetDefault("mongo_user", "")
	v.SetDefault("mongo_password", "")
	v.SetDefault("mongo_auth_source", "")
	v.SetDefault("mongo_database", "postgateway")

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_endpoint_url", "")

	v.SetDefault("dynamodb_table", "related_posts")
	v.SetDefault("dynamodb_skip_table_creation", false)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "postgres")
	v.SetDefault("postgres_db", "postgateway")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_public_base_url", "https://s3.amazonaws.com")

	v.SetDefault("zipkin_address", "")
	v.SetDefault("zipkin_service_name", "postgateway")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
