package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	EmbedModel   string
	Port         string

	// Crawl defaults used when a request leaves them unset.
	ChunkSize     int
	MaxDepth      int
	MaxConcurrent int
	BatchSize     int
	FetchTimeout  time.Duration
	NumWorkers    int
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "crawlexa-docs"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		Port:         getEnv("PORT", "8080"),

		ChunkSize:     getEnvInt("CHUNK_SIZE", 1000),
		MaxDepth:      getEnvInt("MAX_DEPTH", 3),
		MaxConcurrent: getEnvInt("MAX_CONCURRENT", 10),
		BatchSize:     getEnvInt("BATCH_SIZE", 100),
		FetchTimeout:  time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		NumWorkers:    getEnvInt("NUM_WORKERS", 2),
	}

	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("%s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
