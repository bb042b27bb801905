package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL        string `yaml:"ttl"`
		SeedSample bool   `yaml:"seed_sample"`
	} `yaml:"quiz"`
	Grading struct {
		// StrictFinalize defaults to true when unset.
		StrictFinalize *bool `yaml:"strict_finalize"`
	} `yaml:"grading"`
	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies .env and environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	_ = godotenv.Load()
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports settings that would leave the service unable to start.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("store driver %q needs redis.addr", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("store driver %q needs postgres.url", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

// StrictFinalize reports whether the finalize write is guarded on status.
func (c Config) StrictFinalize() bool {
	return c.Grading.StrictFinalize == nil || *c.Grading.StrictFinalize
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"PORT":              &cfg.Server.Port,
		"QUIZ_JWT_SECRET":   &cfg.Auth.JWTSecret,
		"QUIZ_STORE_DRIVER": &cfg.Store.Driver,
		"QUIZ_POSTGRES_URL": &cfg.Postgres.URL,
		"QUIZ_REDIS_ADDR":   &cfg.Redis.Addr,
		"QUIZ_NATS_URL":     &cfg.NATS.URL,
		"QUIZ_LOG_LEVEL":    &cfg.Log.Level,
	}
	for key, target := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*target = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		switch {
		case cfg.Postgres.URL != "":
			cfg.Store.Driver = DriverPostgres
		case cfg.Redis.Addr != "":
			cfg.Store.Driver = DriverRedis
		default:
			cfg.Store.Driver = DriverMemory
		}
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "quiz-attempt-service"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "quiz.events"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
