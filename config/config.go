package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// Config is read from the environment (optionally seeded from .env) and,
// when CONFIG_FILE is set, from a YAML file with env overrides.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Retry    RetryConfig    `yaml:"retry"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8080"`
	Env  string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
}

type DatabaseConfig struct {
	Driver         string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	DSN            string `yaml:"dsn" env:"DB_DSN"`
	Host           string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DB_USER" env-default:"myuser"`
	Password       string `yaml:"-" env:"DB_PASSWORD"`
	Name           string `yaml:"name" env:"DB_NAME" env-default:"cms_db"`
	SSLMode        string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns   int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns   int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MigrationsPath string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH" env-default:"migrations"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"false"`
}

type JWTConfig struct {
	Secret     string        `yaml:"-" env:"JWT_SECRET"`
	Expiration time.Duration `yaml:"expiration" env:"JWT_EXPIRATION" env-default:"24h"`
}

// AdminConfig seeds the first ADMIN account at startup when Email is set.
type AdminConfig struct {
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Name     string `yaml:"name" env:"ADMIN_NAME" env-default:"Administrator"`
	Password string `yaml:"-" env:"ADMIN_PASSWORD"`
}

type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries" env:"RETRY_MAX_RETRIES" env-default:"3"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"RETRY_INITIAL_DELAY" env-default:"100ms"`
}

// DSNString returns DSN if set, otherwise a postgres keyword DSN built from the parts.
func (d DatabaseConfig) DSNString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func (c *Config) IsLocal() bool {
	return c.Server.Env == "local" || c.Server.Env == "test"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{}
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Admin.Email != "" && len(c.Admin.Password) < 6 {
		return errors.New("ADMIN_PASSWORD must be at least 6 characters when ADMIN_EMAIL is set")
	}
	if c.JWT.Secret == "" {
		if !c.IsLocal() {
			return errors.New("JWT_SECRET is not set")
		}
		c.JWT.Secret = defaultJWTSecret
	}
	return nil
}
