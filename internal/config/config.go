package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress string
	JWTSecret     string
	JWTExpiration time.Duration

	// StoreBackend is "memory" or "mongo".
	StoreBackend string
	// DataDir, when set, persists the memory backend and the agent list.
	DataDir  string
	MongoURI string
	MongoDB  string

	MaxImageBytes    int
	BatchConcurrency int
	CORSOrigins      []string
}

// Load reads the environment, after applying a .env file if one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		glog.V(1).Info("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		ServerAddress:    getEnv("SERVER_ADDRESS", ":8080"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:    getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
		StoreBackend:     getEnv("STORE_BACKEND", "memory"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		MongoURI:         getEnv("MONGO_URI", ""),
		MongoDB:          getEnv("MONGO_DB", "cryptichearts"),
		MaxImageBytes:    getEnvAsInt("MAX_IMAGE_BYTES", 10*1024),
		BatchConcurrency: getEnvAsInt("BATCH_CONCURRENCY", 8),
		CORSOrigins:      getEnvAsList("CORS_ORIGINS", []string{"*"}),
	}
	if cfg.JWTSecret == "your-secret-key-change-in-production" {
		glog.Warning("JWT_SECRET is not set; using the development default")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
