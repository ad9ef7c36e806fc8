package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultServiceName    = "ar-furniture"
	defaultServerPort     = 5000
	defaultAssetFolder    = "ar-furniture"
	defaultMaxUploadBytes = 50 << 20
	defaultSearchIndex    = "products"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret []byte

	CORSOrigins []string

	Storage        StorageConfig
	MaxUploadBytes int64

	KafkaBrokers []string

	Elastic ElasticConfig
}

// StorageConfig describes the S3-compatible bucket that holds product assets.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
	Folder    string
}

type ElasticConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	port := EnvIntDefault("SERVER_PORT", 0)
	if port == 0 {
		port = EnvIntDefault("PORT", defaultServerPort)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", defaultServiceName),
		ServerPort:  port,
		LogLevel:    os.Getenv("LOG_LEVEL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "*")),

		Storage: StorageConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			UseSSL:    EnvBoolDefault("MINIO_USE_SSL", false),
			PublicURL: os.Getenv("ASSET_PUBLIC_URL"),
			Folder:    EnvDefault("ASSET_FOLDER", defaultAssetFolder),
		},
		MaxUploadBytes: int64(EnvIntDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		Elastic: ElasticConfig{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    EnvDefault("ES_INDEX", defaultSearchIndex),
		},
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
