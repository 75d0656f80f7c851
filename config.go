package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
)

const ConfigFileName = "service_conf.json"

var ServiceConfig = DefaultConfig()

type Config struct {
	AdminSecret string         `json:"admin_secret"`
	Server      ServerConfig   `json:"server"`
	Database    DatabaseConfig `json:"database"`
	Redis       RedisConfig    `json:"redis"`
	External    ExternalConfig `json:"external"`
	Logging     LoggingConfig  `json:"logging"`
}

type ServerConfig struct {
	Listen       string `json:"listen"`
	Prefork      bool   `json:"prefork"`
	AllowOrigins string `json:"allow_origins"`
}

// DatabaseConfig selects the storage backend. Driver is "postgres" or
// "sqlite"; for sqlite only Path is used. A non-empty Dsn wins over the
// individual postgres fields.
type DatabaseConfig struct {
	Driver             string `json:"driver"`
	Dsn                string `json:"dsn"`
	Path               string `json:"path"`
	Host               string `json:"host"`
	Port               int    `json:"port"`
	User               string `json:"username"`
	Password           string `json:"password"`
	Database           string `json:"database"`
	MaxIdleConnections int    `json:"max_idle_connections"`
	MaxOpenConnections int    `json:"max_open_connections"`
}

// RedisConfig backs the explanation search index. An empty Host disables it.
type RedisConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type ExternalConfig struct {
	XkcdBaseUrl    string `json:"xkcd_base_url"`
	VisionBaseUrl  string `json:"vision_base_url"`
	VisionApiKey   string `json:"vision_api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Listen:       ":3002",
			AllowOrigins: "*",
		},
		Database: DatabaseConfig{
			Driver:             "postgres",
			Path:               "comics.db",
			Host:               "localhost",
			Port:               5432,
			User:               "postgres",
			Database:           "comics",
			MaxIdleConnections: 5,
			MaxOpenConnections: 20,
		},
		Redis: RedisConfig{
			Port: 6379,
		},
		External: ExternalConfig{
			XkcdBaseUrl:    "https://xkcd.com",
			VisionBaseUrl:  "https://api.openai.com/v4/images",
			TimeoutSeconds: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads the config file at path into ServiceConfig and applies
// environment overrides. If the file does not exist a default one is written
// and created is true; the caller is expected to stop so it can be edited.
func LoadConfig(path string) (created bool, err error) {
	cfg := DefaultConfig()

	open, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, writeDefaultConfig(path)
	}
	if err != nil {
		return false, fmt.Errorf("failed to open config: %w", err)
	}
	defer open.Close()

	data, err := io.ReadAll(open)
	if err != nil {
		return false, fmt.Errorf("failed to read config: %w", err)
	}

	if err = sonic.Unmarshal(data, &cfg); err != nil {
		return false, fmt.Errorf("failed to unmarshal json data: %w", err)
	}

	// A missing .env is fine.
	_ = godotenv.Load()
	applyEnvOverrides(&cfg)

	ServiceConfig = cfg
	return false, nil
}

func writeDefaultConfig(path string) error {
	defaultData, err := sonic.ConfigStd.MarshalIndent(DefaultConfig(), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal json data: %w", err)
	}

	if err = os.WriteFile(path, defaultData, 0660); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("LISTEN_ADDR", &cfg.Server.Listen)
	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DB_DSN", &cfg.Database.Dsn)
	setString("DB_PATH", &cfg.Database.Path)
	setString("XKCD_BASE_URL", &cfg.External.XkcdBaseUrl)
	setString("VISION_BASE_URL", &cfg.External.VisionBaseUrl)
	setString("VISION_API_KEY", &cfg.External.VisionApiKey)
	setString("ADMIN_SECRET", &cfg.AdminSecret)
	setString("LOG_LEVEL", &cfg.Logging.Level)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("LOG_FILE", &cfg.Logging.File)

	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = port
		}
	}
}
