package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	Storage        string        `mapstructure:"STORAGE"`
	MongoURI       string        `mapstructure:"MONGO_URI"`
	MongoDatabase  string        `mapstructure:"MONGO_DATABASE"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTExpiryHours int           `mapstructure:"JWT_EXPIRY_HOURS"`
	AMQPURL        string        `mapstructure:"AMQP_URL"`
	EventsQueue    string        `mapstructure:"EVENTS_QUEUE"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	JobsEnabled    bool          `mapstructure:"JOBS_ENABLED"`
	ExpirySchedule string        `mapstructure:"EXPIRY_SCHEDULE"`
	ChatbotAPIKey  string        `mapstructure:"CHATBOT_API_KEY"`
	SeedAdminEmail string        `mapstructure:"SEED_ADMIN_EMAIL"`
	SeedAdminPass  string        `mapstructure:"SEED_ADMIN_PASSWORD"`
}

var keys = []string{
	"PORT", "ENV", "STORAGE", "MONGO_URI", "MONGO_DATABASE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"JWT_SECRET", "JWT_EXPIRY_HOURS", "AMQP_URL", "EVENTS_QUEUE",
	"CORS_ORIGINS", "JOBS_ENABLED", "EXPIRY_SCHEDULE", "CHATBOT_API_KEY",
	"SEED_ADMIN_EMAIL", "SEED_ADMIN_PASSWORD",
}

/*
* Load .env when present, the process environment wins over it
* Apply defaults and unmarshal into Config
* Validate what the server cannot start without
 */
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORAGE", StorageMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "hospital_management")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("EVENTS_QUEUE", "appointment-events")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("EXPIRY_SCHEDULE", "5 0 * * *")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@hospital.com")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.IsDev() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTSecret = "development-secret"
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}
	switch c.Storage {
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORAGE=mongo")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.JWTExpiryHours <= 0 {
		c.JWTExpiryHours = 24
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
