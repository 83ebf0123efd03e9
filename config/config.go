package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration. Values come from an optional yaml file,
// then environment variables override them.
type Config struct {
	Env     string `yaml:"env"`
	Port    string `yaml:"port"`
	Debug   bool   `yaml:"debug"`
	Version string `yaml:"version"`
	SiteUrl string `yaml:"site_url"`

	Database DatabaseConfig `yaml:"database"`
	Content  ContentConfig  `yaml:"content"`
	Chat     ChatConfig     `yaml:"chat"`
	Email    EmailConfig    `yaml:"email"`
	Security SecurityConfig `yaml:"security"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres, sqlite
	Url    string `yaml:"url"`
}

type ContentConfig struct {
	ProfilePath string `yaml:"profile_path"`
}

type ChatConfig struct {
	Provider      string `yaml:"provider"` // openai, gemini
	Model         string `yaml:"model"`
	OpenAIKey     string `yaml:"openai_api_key"`
	OpenAIBaseUrl string `yaml:"openai_base_url"`
	GeminiKey     string `yaml:"gemini_api_key"`
	MaxTokens     int    `yaml:"max_tokens"`
	HistoryBudget int    `yaml:"history_budget_tokens"`
	Timeout       string `yaml:"timeout"`
}

func (c ChatConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type EmailConfig struct {
	From       string `yaml:"from"`
	NotifyTo   string `yaml:"notify_to"`
	AdminEmail string `yaml:"admin_email"`
}

type SecurityConfig struct {
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	WriteRPS           float64  `yaml:"write_rps"`
	WriteBurst         int      `yaml:"write_burst"`
	AutoBlockThreshold int      `yaml:"auto_block_threshold"`
	AutoBlockDuration  string   `yaml:"auto_block_duration"`
	TrustedProxies     []string `yaml:"trusted_proxies"`
	VisitorHashKey     string   `yaml:"visitor_hash_key"` // hex, 32 bytes
	MaxTrackedIPs      int      `yaml:"max_tracked_ips"`
}

func (s SecurityConfig) AutoBlockDurationValue() time.Duration {
	d, err := time.ParseDuration(s.AutoBlockDuration)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// VisitorKey decodes the visitor hash key. Validate has already checked it.
func (s SecurityConfig) VisitorKey() []byte {
	key, _ := hex.DecodeString(s.VisitorHashKey)
	return key
}

func Default() *Config {
	return &Config{
		Env:     "development",
		Port:    "8080",
		Version: "development",
		SiteUrl: "http://localhost:8080",
		Database: DatabaseConfig{
			Driver: "sqlite",
			Url:    "portfolio.db",
		},
		Content: ContentConfig{
			ProfilePath: "content/profile.yaml",
		},
		Chat: ChatConfig{
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			MaxTokens:     600,
			HistoryBudget: 3000,
			Timeout:       "30s",
		},
		Email: EmailConfig{
			From: "hello@localhost",
		},
		Security: SecurityConfig{
			RateLimitRPS:       10,
			RateLimitBurst:     30,
			WriteRPS:           0.1,
			WriteBurst:         5,
			AutoBlockThreshold: 20,
			AutoBlockDuration:  "1h",
			MaxTrackedIPs:      10000,
		},
	}
}

// Load reads the yaml file at path (a missing file is fine) and applies env overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Env, "GOENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.Version, "APP_VERSION")
	setString(&cfg.SiteUrl, "SITE_URL")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Content.ProfilePath, "CONTENT_PATH")
	setString(&cfg.Chat.Provider, "CHAT_PROVIDER")
	setString(&cfg.Chat.Model, "CHAT_MODEL")
	setString(&cfg.Chat.OpenAIKey, "OPENAI_API_KEY")
	setString(&cfg.Chat.OpenAIBaseUrl, "OPENAI_BASE_URL")
	setString(&cfg.Chat.GeminiKey, "GEMINI_API_KEY")
	setString(&cfg.Email.From, "EMAIL_FROM")
	setString(&cfg.Email.NotifyTo, "CONTACT_NOTIFY_EMAIL")
	setString(&cfg.Email.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.Security.VisitorHashKey, "VISITOR_HASH_KEY")

	// DATABASE_URL, or the DB_HOST family, implies postgres unless DB_DRIVER says otherwise
	if dbUrl := databaseUrlFromEnv(); dbUrl != "" {
		cfg.Database.Url = dbUrl
		if os.Getenv("DB_DRIVER") == "" {
			cfg.Database.Driver = "postgres"
		}
	}

	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Security.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.RateLimitBurst = n
		}
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.Security.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Security.TrustedProxies = append(cfg.Security.TrustedProxies, p)
			}
		}
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case "development", "production", "test":
	default:
		errs = append(errs, fmt.Errorf("env must be development, production or test, got %q", c.Env))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}
	switch c.Chat.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("chat.provider must be openai or gemini, got %q", c.Chat.Provider))
	}
	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("security rate limits must be positive"))
	}
	if c.Security.WriteRPS <= 0 || c.Security.WriteBurst <= 0 {
		errs = append(errs, errors.New("security write rate limits must be positive"))
	}
	if c.Security.VisitorHashKey != "" {
		key, err := hex.DecodeString(c.Security.VisitorHashKey)
		if err != nil || len(key) != 32 {
			errs = append(errs, errors.New("security.visitor_hash_key must be 32 bytes of hex"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func databaseUrlFromEnv() string {
	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl != "" {
		return dbUrl
	}

	if os.Getenv("DB_HOST") != "" &&
		os.Getenv("DB_PORT") != "" &&
		os.Getenv("DB_USER") != "" &&
		os.Getenv("DB_PASSWORD") != "" &&
		os.Getenv("DB_NAME") != "" {
		encodedPassword := url.QueryEscape(os.Getenv("DB_PASSWORD"))

		dbUrl = "postgres://" + os.Getenv("DB_USER") + ":" + encodedPassword + "@" + os.Getenv("DB_HOST") + ":" + os.Getenv("DB_PORT") + "/" + os.Getenv("DB_NAME")
	}

	return dbUrl
}
