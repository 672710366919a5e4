// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type BotConfig struct {
	Token            string          `yaml:"token"`
	OperatorUsername string          `yaml:"operator_username"`
	Workers          int             `yaml:"workers"` // polling workers
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
	File     string `yaml:"file"`     // append-only copy served by /logs
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres dsn
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HHConfig struct {
	UserAgent          string        `yaml:"user_agent"`
	Timeout            time.Duration `yaml:"timeout"`
	ExcludedExperience string        `yaml:"excluded_experience"`
	Workers            int           `yaml:"workers"` // parallel vacancy detail requests
}

type SchedulerConfig struct {
	NotifyCron string `yaml:"notify_cron"`
	ReportLogs bool   `yaml:"report_logs"`
}

type StorageConfig struct {
	SnapshotDir    string `yaml:"snapshot_dir"`
	LocationsFile  string `yaml:"locations_file"`
	Template       string `yaml:"template"`
	TitleFont      string `yaml:"title_font"`
	BodyFont       string `yaml:"body_font"`
	SavedImagesDir string `yaml:"saved_images_dir"`
}

type PositionConfig struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Config struct {
	Bot       BotConfig        `yaml:"bot"`
	Log       LogConfig        `yaml:"log"`
	Admin     AdminConfig      `yaml:"admin"`
	Database  DatabaseConfig   `yaml:"database"`
	Redis     RedisConfig      `yaml:"redis"`
	HH        HHConfig         `yaml:"hh"`
	Scheduler SchedulerConfig  `yaml:"scheduler"`
	Storage   StorageConfig    `yaml:"storage"`
	Positions []PositionConfig `yaml:"positions"`

	Runtime RuntimeConfig `yaml:"-"`
}

// DefaultPositions is used when the config file lists no positions.
var DefaultPositions = []PositionConfig{
	{Label: "Python Web", URL: "https://api.hh.ru/vacancies?text=python+django&search_field=name&experience=noExperience&order_by=publication_time&per_page=50"},
	{Label: "Data Analyst", URL: "https://api.hh.ru/vacancies?text=data+analyst&search_field=name&experience=noExperience&order_by=publication_time&per_page=50"},
	{Label: "QA", URL: "https://api.hh.ru/vacancies?text=qa&search_field=name&experience=noExperience&order_by=publication_time&per_page=50"},
	{Label: "Java", URL: "https://api.hh.ru/vacancies?text=java&search_field=name&experience=noExperience&order_by=publication_time&per_page=50"},
	{Label: "JavaScript", URL: "https://api.hh.ru/vacancies?text=javascript&search_field=name&experience=noExperience&order_by=publication_time&per_page=50"},
}

// Load reads an optional .env next to the process, then the YAML file at path.
// ${VAR} references inside the YAML are expanded from the environment.
func Load(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(b))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.Token == "" {
		c.Bot.Token = os.Getenv("BOT_TOKEN")
	}
	if c.Bot.OperatorUsername == "" {
		c.Bot.OperatorUsername = "s_tee"
	}
	c.Bot.OperatorUsername = strings.TrimPrefix(c.Bot.OperatorUsername, "@")
	if c.Bot.Workers <= 0 {
		c.Bot.Workers = 4
	}
	if c.Bot.RateLimit.Limit <= 0 {
		c.Bot.RateLimit.Limit = 20
	}
	if c.Bot.RateLimit.Window <= 0 {
		c.Bot.RateLimit.Window = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.File == "" {
		c.Log.File = "logs.txt"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "instance/database.db"
	}
	if c.HH.UserAgent == "" {
		c.HH.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64)"
	}
	if c.HH.Timeout <= 0 {
		c.HH.Timeout = 30 * time.Second
	}
	if c.HH.ExcludedExperience == "" {
		c.HH.ExcludedExperience = "between3And6"
	}
	if c.HH.Workers <= 0 {
		c.HH.Workers = 4
	}
	if c.Scheduler.NotifyCron == "" {
		c.Scheduler.NotifyCron = "@every 1h"
	}
	if c.Storage.SnapshotDir == "" {
		c.Storage.SnapshotDir = "vacancies_json"
	}
	if c.Storage.LocationsFile == "" {
		c.Storage.LocationsFile = "vacancies_json/locations.json"
	}
	if c.Storage.Template == "" {
		c.Storage.Template = "media/1.jpg"
	}
	if c.Storage.TitleFont == "" {
		c.Storage.TitleFont = "media/vacancy_font.ttf"
	}
	if c.Storage.BodyFont == "" {
		c.Storage.BodyFont = "media/company_font.ttf"
	}
	if c.Storage.SavedImagesDir == "" {
		c.Storage.SavedImagesDir = "media/saved_images"
	}
	if len(c.Positions) == 0 {
		c.Positions = append([]PositionConfig(nil), DefaultPositions...)
	}
}

func (c *Config) validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required")
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("admin.port %d is out of range", c.Admin.Port)
	}
	if c.Admin.Port > 0 && c.Admin.APIKey == "" {
		return errors.New("admin.api_key is required when admin.port is set")
	}
	for i, p := range c.Positions {
		if strings.TrimSpace(p.Label) == "" || strings.TrimSpace(p.URL) == "" {
			return fmt.Errorf("positions[%d]: label and url are required", i)
		}
	}
	return nil
}
