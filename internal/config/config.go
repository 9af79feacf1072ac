package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"SKYE_DB_PATH"`
}

// StorageConfig describes the B2 bucket videos are uploaded to.
type StorageConfig struct {
	APIURL        string `yaml:"api_url"`
	KeyID         string `yaml:"key_id" env:"B2_KEY_ID"`
	AppKey        string `yaml:"app_key" env:"B2_APP_KEY"`
	BucketID      string `yaml:"bucket_id" env:"B2_BUCKET_ID"`
	BucketName    string `yaml:"bucket_name" env:"B2_BUCKET_NAME"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type ViewerConfig struct {
	APIURL        string        `yaml:"api_url" env:"SKYE_API_URL"`
	HeroInterval  time.Duration `yaml:"hero_interval"`
	PlayerCommand string        `yaml:"player_command" env:"SKYE_PLAYER"`
	Offline       OfflineConfig `yaml:"offline"`
}

type OfflineConfig struct {
	Version  string   `yaml:"version"`
	Capacity int      `yaml:"capacity"`
	MaxSize  int64    `yaml:"max_size"` // bytes
	Precache []string `yaml:"precache"`
}

type AdminConfig struct {
	APIURL string `yaml:"api_url" env:"SKYE_API_URL"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty"`
	File   string `yaml:"file"`
}

// ConfigError lists every required key that has no value.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           6540,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "data/content.db",
		},
		Storage: StorageConfig{
			APIURL:        "https://api.backblazeb2.com",
			PublicBaseURL: "https://f005.backblazeb2.com/file",
		},
		Viewer: ViewerConfig{
			APIURL:        "http://localhost:6540",
			HeroInterval:  7 * time.Second,
			PlayerCommand: "mpv",
			Offline: OfflineConfig{
				Version:  "skye-v1",
				Capacity: 256,
				MaxSize:  64 * 1024 * 1024, // 64 MB
			},
		},
		Admin: AdminConfig{
			APIURL: "http://localhost:6540",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies a .env
// file and environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	c := config.New()
	c.AddFeeder(feeder.Env{})
	c.AddStruct(cfg)
	if err := c.Feed(); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}

	return cfg, nil
}

// ValidateServer checks the settings skyeserver refuses to start without.
func (c *Config) ValidateServer() error {
	var missing []string
	if c.Database.Path == "" {
		missing = append(missing, "database.path")
	}
	if c.Storage.KeyID == "" {
		missing = append(missing, "storage.key_id (B2_KEY_ID)")
	}
	if c.Storage.AppKey == "" {
		missing = append(missing, "storage.app_key (B2_APP_KEY)")
	}
	if c.Storage.BucketID == "" {
		missing = append(missing, "storage.bucket_id (B2_BUCKET_ID)")
	}
	if c.Storage.BucketName == "" {
		missing = append(missing, "storage.bucket_name (B2_BUCKET_NAME)")
	}
	if c.Storage.APIURL == "" {
		missing = append(missing, "storage.api_url")
	}
	if c.Storage.PublicBaseURL == "" {
		missing = append(missing, "storage.public_base_url")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// Addr is the listen address of the API server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
