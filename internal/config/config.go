package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	DSN         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type TelegramConfig struct {
	BotToken      string `yaml:"bot_token"`
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type ReminderConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Window   time.Duration `yaml:"window"`
	Batch    int           `yaml:"batch"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ValidationConfig struct {
	PasswordPolicy string `yaml:"password_policy"` // basic|strict
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Redis      RedisConfig      `yaml:"redis"`
	Email      EmailConfig      `yaml:"email"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Reminders  ReminderConfig   `yaml:"reminders"`
	Log        LogConfig        `yaml:"log"`
	Validation ValidationConfig `yaml:"validation"`
	Files      struct {
		FontPath string `yaml:"font_path"`
	} `yaml:"files"`
}

// LoadConfig reads TASKDECK_CONFIG (default config/config.yaml) and panics on
// failure; use Load when the caller wants the error.
func LoadConfig() *Config {
	path := os.Getenv("TASKDECK_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := Load(path)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

// Load decodes the YAML file at path, overlays .env and environment values and
// fills defaults. A missing file is not an error: env + defaults are used.
func Load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"TASKDECK_DB_URL":           &cfg.Database.DSN,
		"TASKDECK_JWT_SECRET":       &cfg.Auth.JWTSecret,
		"TASKDECK_REDIS_ADDR":       &cfg.Redis.Addr,
		"TASKDECK_REDIS_PASSWORD":   &cfg.Redis.Password,
		"TASKDECK_SMTP_HOST":        &cfg.Email.SMTPHost,
		"TASKDECK_SMTP_USER":        &cfg.Email.SMTPUser,
		"TASKDECK_SMTP_PASSWORD":    &cfg.Email.SMTPPassword,
		"TASKDECK_TELEGRAM_TOKEN":   &cfg.Telegram.BotToken,
		"TASKDECK_TELEGRAM_WEBHOOK": &cfg.Telegram.WebhookURL,
		"TASKDECK_TELEGRAM_SECRET":  &cfg.Telegram.WebhookSecret,
		"TASKDECK_LOG_FILE":         &cfg.Log.File,
		"TASKDECK_PASSWORD_POLICY":  &cfg.Validation.PasswordPolicy,
		"TASKDECK_FONT_PATH":        &cfg.Files.FontPath,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv("TASKDECK_REMINDERS"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TASKDECK_REMINDERS %q: %w", v, err)
		}
		cfg.Reminders.Enabled = enabled
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Reminders.Interval == 0 {
		cfg.Reminders.Interval = time.Minute
	}
	if cfg.Reminders.Window == 0 {
		cfg.Reminders.Window = time.Hour
	}
	if cfg.Reminders.Batch == 0 {
		cfg.Reminders.Batch = 100
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 30
	}
}
