package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database. DatabaseURL wins over the individual DB_* settings.
	DatabaseURL string
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	// Redis is optional; an empty address disables session revocation and
	// login throttling.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Login protection
	LoginRateLimit   float64
	LoginRateBurst   float64
	MaxLoginAttempts int
	LockoutDuration  time.Duration

	// MetricsAPIKey guards /metrics; empty leaves it open.
	MetricsAPIKey string
}

var appConfig *Config

// defaults lists every supported key with its fallback value.
var defaults = map[string]any{
	"ENV":                "development",
	"PORT":               "8080",
	"DATABASE_URL":       "",
	"DB_DRIVER":          "sqlite",
	"DB_HOST":            "localhost",
	"DB_PORT":            "5432",
	"DB_USER":            "moneyrats",
	"DB_PASSWORD":        "moneyrats",
	"DB_NAME":            "moneyrats",
	"DB_SSLMODE":         "disable",
	"SESSION_SECRET":     "fallback-secret-key-for-dev-only",
	"SESSION_TTL":        "24h",
	"COOKIE_SECURE":      false,
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"LOGIN_RATE_LIMIT":   0.2,
	"LOGIN_RATE_BURST":   5.0,
	"MAX_LOGIN_ATTEMPTS": 5,
	"LOCKOUT_DURATION":   "15m",
	"METRICS_API_KEY":    "",
}

// Load loads configuration from the environment, after merging an optional
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	config := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetString("PORT"),

		DatabaseURL: v.GetString("DATABASE_URL"),
		DBDriver:    v.GetString("DB_DRIVER"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),

		SessionSecret: v.GetString("SESSION_SECRET"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		LoginRateLimit:   v.GetFloat64("LOGIN_RATE_LIMIT"),
		LoginRateBurst:   v.GetFloat64("LOGIN_RATE_BURST"),
		MaxLoginAttempts: v.GetInt("MAX_LOGIN_ATTEMPTS"),

		MetricsAPIKey: v.GetString("METRICS_API_KEY"),
	}

	config.SessionTTL = parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour, "SESSION_TTL")
	config.LockoutDuration = parseDuration(v.GetString("LOCKOUT_DURATION"), 15*time.Minute, "LOCKOUT_DURATION")

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func parseDuration(raw string, fallback time.Duration, key string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}
