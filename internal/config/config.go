package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/adpulse.log"`
}

// DataConfig describes where the marketing CSV exports live and which
// channel files to load. Channel files are resolved as <Dir>/<Channel>.csv.
type DataConfig struct {
	Dir          string   `yaml:"dir" envconfig:"DIR" default:"data"`
	Channels     []string `yaml:"channels" envconfig:"CHANNELS" default:"Google,Facebook,TikTok"`
	BusinessFile string   `yaml:"business_file" envconfig:"BUSINESS_FILE" default:"business.csv"`
}

// Load loads configuration from environment variables and an optional
// YAML config file. Environment variables take precedence.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("DASH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// merge overlays the YAML file config under the env config. envconfig
// fills default tags for every unset variable before the file is read,
// so a file value wins unless its DASH_* variable was set explicitly.
func merge(fileCfg, envCfg Config) Config {
	if fileCfg.Server.Port != 0 && !envSet("DASH_SERVER_PORT") {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if fileCfg.Server.ReadTimeout != 0 && !envSet("DASH_SERVER_READ_TIMEOUT") {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if fileCfg.Server.WriteTimeout != 0 && !envSet("DASH_SERVER_WRITE_TIMEOUT") {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if fileCfg.Data.Dir != "" && !envSet("DASH_DATA_DIR") {
		envCfg.Data.Dir = fileCfg.Data.Dir
	}
	if len(fileCfg.Data.Channels) > 0 && !envSet("DASH_DATA_CHANNELS") {
		envCfg.Data.Channels = fileCfg.Data.Channels
	}
	if fileCfg.Data.BusinessFile != "" && !envSet("DASH_DATA_BUSINESS_FILE") {
		envCfg.Data.BusinessFile = fileCfg.Data.BusinessFile
	}
	return envCfg
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// ChannelPath returns the CSV path for a channel name.
func (c *Config) ChannelPath(channel string) string {
	return filepath.Join(c.Data.Dir, channel+".csv")
}

// BusinessPath returns the path of the business outcomes CSV.
func (c *Config) BusinessPath() string {
	if filepath.IsAbs(c.Data.BusinessFile) {
		return c.Data.BusinessFile
	}
	return filepath.Join(c.Data.Dir, c.Data.BusinessFile)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if len(c.Data.Channels) == 0 {
		return fmt.Errorf("at least one channel must be configured")
	}
	for _, ch := range c.Data.Channels {
		if strings.TrimSpace(ch) == "" {
			return fmt.Errorf("channel names must be non-empty")
		}
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/adpulse.log"
	}

	return nil
}

// findConfigFile returns the path to the config file, if one exists
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/adpulse.log",
		},
		Data: DataConfig{
			Dir:          "data",
			Channels:     []string{"Google", "Facebook", "TikTok"},
			BusinessFile: "business.csv",
		},
	}
}
