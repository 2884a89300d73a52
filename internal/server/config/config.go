package config

import (
	"log"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// DevSecret signs tokens when dev mode is explicitly enabled and no
// secret is configured. Never a silent production fallback: Load fails
// on an empty secret unless RECIPEFINDER_DEV_MODE=true.
const DevSecret = "dev-secret-change"

type Config struct {
	HTTPAddr      string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	DevMode       bool

	ProviderBaseURL   string
	ProviderAppID     string
	ProviderAppKey    string
	ProviderTimeout   time.Duration
	ProviderRateLimit float64 // requests per second
	ProviderBurst     int
}

func Load(logger *log.Logger) (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:          getEnv("RECIPEFINDER_HTTP_ADDR", ":8080"),
		MongoURI:          getEnv("RECIPEFINDER_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("RECIPEFINDER_MONGO_DB", "recipefinder"),
		JWTSecret:         getEnv("RECIPEFINDER_JWT_SECRET", ""),
		DevMode:           getEnv("RECIPEFINDER_DEV_MODE", "") == "true",
		ProviderBaseURL:   getEnv("RECIPEFINDER_PROVIDER_URL", "https://api.edamam.com"),
		ProviderAppID:     getEnv("EDAMAM_APP_ID", ""),
		ProviderAppKey:    getEnv("EDAMAM_APP_KEY", ""),
		ProviderTimeout:   getDuration("RECIPEFINDER_PROVIDER_TIMEOUT", 5*time.Second),
		ProviderRateLimit: getFloat("RECIPEFINDER_PROVIDER_RATE", 5),
		ProviderBurst:     getInt("RECIPEFINDER_PROVIDER_BURST", 10),
	}
	if cfg.JWTSecret == "" && cfg.DevMode {
		cfg.JWTSecret = DevSecret
		logger.Println("WARNING: dev mode enabled, signing tokens with the built-in development secret")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.MongoURI, validation.Required),
		validation.Field(&c.MongoDatabase, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required.Error("set RECIPEFINDER_JWT_SECRET or enable RECIPEFINDER_DEV_MODE")),
		validation.Field(&c.ProviderBaseURL, validation.Required),
		validation.Field(&c.ProviderTimeout, validation.Min(time.Second)),
	)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
