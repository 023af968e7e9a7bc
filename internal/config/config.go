package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env           string
	ServerPort    string
	DBDriver      string
	DatabaseDSN   string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	JWTSecret     string
	TokenTTL      time.Duration
	CookieName    string
	BcryptCost    int
	CORSOrigins   []string
	AuthRateLimit float64
	AuthRateBurst int
	SwaggerHost   string
	ResetDB       bool
	SeedUsersPath string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	return &Config{
		Env:           getEnv("APP_ENV", "development"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 15*time.Minute),
		CookieName:    getEnv("COOKIE_NAME", "token"),
		BcryptCost:    getEnvInt("BCRYPT_COST", 10),
		CORSOrigins:   getEnvList("CORS_ORIGINS"),
		AuthRateLimit: getEnvFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst: getEnvInt("AUTH_RATE_BURST", 10),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
		ResetDB:       os.Getenv("RESET_DB") == "true",
		SeedUsersPath: getEnv("SEED_USERS_PATH", "config/users.yaml"),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
