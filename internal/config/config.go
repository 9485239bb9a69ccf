package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Rules   RulesConfig   `yaml:"rules" envconfig:"RULES"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/costlens.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR" default:"data/exports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// RulesConfig contains the business rules applied during ingestion and
// analytics. Defaults mirror the layout of the source cost reports.
type RulesConfig struct {
	SheetName             string   `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"Sheet1"`
	HeaderScanLimit       int      `yaml:"header_scan_limit" envconfig:"HEADER_SCAN_LIMIT" default:"20"`
	OpeningBalance        int64    `yaml:"opening_balance" envconfig:"OPENING_BALANCE" default:"0"`
	VendorNormalizePairs  []string `yaml:"vendor_normalize_pairs" envconfig:"VENDOR_NORMALIZE_PAIRS"`
	UnspecifiedVendorName string   `yaml:"unspecified_vendor_name" envconfig:"UNSPECIFIED_VENDOR_NAME" default:"unspecified"`
}

// Load loads configuration from .env, environment variables and an optional
// YAML config file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("COSTLENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("COSTLENS_CONFIG"); p != "" {
		return p
	}
	return "costlens.yml"
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Server.RateLimitRPS == 0 {
		envCfg.Server.RateLimitRPS = fileCfg.Server.RateLimitRPS
	}
	if envCfg.Logging.Level == "" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if envCfg.Logging.Format == "" {
		envCfg.Logging.Format = fileCfg.Logging.Format
	}
	if envCfg.Rules.SheetName == "" {
		envCfg.Rules.SheetName = fileCfg.Rules.SheetName
	}
	if envCfg.Rules.OpeningBalance == 0 {
		envCfg.Rules.OpeningBalance = fileCfg.Rules.OpeningBalance
	}
	if len(envCfg.Rules.VendorNormalizePairs) == 0 {
		envCfg.Rules.VendorNormalizePairs = fileCfg.Rules.VendorNormalizePairs
	}
	return envCfg
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	if len(c.Rules.VendorNormalizePairs)%2 != 0 {
		return fmt.Errorf("vendor_normalize_pairs must hold from/to pairs, got %d entries", len(c.Rules.VendorNormalizePairs))
	}
	return nil
}

// VendorPatterns returns the vendor normalization replacements as old/new
// pairs. When nothing is configured, the defaults for Japanese corporate
// suffixes are used.
func (c *RulesConfig) VendorPatterns() []string {
	if len(c.VendorNormalizePairs) > 0 {
		return c.VendorNormalizePairs
	}
	return DefaultVendorPatterns
}

// DefaultVendorPatterns strips the common Japanese corporate designations
// so that 株式会社ABC and (株)ABC fold to the same vendor bucket.
var DefaultVendorPatterns = []string{
	"（株）", "",
	"(株)", "",
	"株式会社", "",
	"有限会社", "",
	"(有)", "",
	"　", " ",
}
