package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "DASH"

// Source modes
const (
	SourceModeExport   = "export"
	SourceModeSheets   = "sheets"
	SourceModeWorkbook = "workbook"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`

	// RulesFile points at a YAML file with subsidiary rules and header aliases
	RulesFile string `yaml:"rules_file" envconfig:"RULES_FILE"`
	// Timezone used for day/week/month boundaries ("Local" or an IANA name)
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains inbound request protection settings
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	// AllowedOrigins lists CORS origins; empty allows any origin
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SourceConfig describes where the three datasets come from and how long they stay cached
type SourceConfig struct {
	Mode       string `yaml:"mode" envconfig:"MODE"`
	DocumentID string `yaml:"document_id" envconfig:"DOCUMENT_ID"`
	BaseURL    string `yaml:"base_url" envconfig:"BASE_URL"`

	// Export tab identifiers (gid). When empty the sheet name is used instead.
	OrdersGID  string `yaml:"orders_gid" envconfig:"ORDERS_GID"`
	PayoutsGID string `yaml:"payouts_gid" envconfig:"PAYOUTS_GID"`
	StaffGID   string `yaml:"staff_gid" envconfig:"STAFF_GID"`

	OrdersSheet  string `yaml:"orders_sheet" envconfig:"ORDERS_SHEET"`
	PayoutsSheet string `yaml:"payouts_sheet" envconfig:"PAYOUTS_SHEET"`
	StaffSheet   string `yaml:"staff_sheet" envconfig:"STAFF_SHEET"`

	CacheTTL     time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
	RateLimitRPS float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateBurst    int           `yaml:"rate_burst" envconfig:"RATE_BURST"`

	// Sheets API credentials; one of them is needed in sheets mode
	APIKey          string `yaml:"api_key" envconfig:"API_KEY"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`

	// WorkbookPath is an .xlsx file or a directory of <dataset>.csv files
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`

	// RefreshSchedule is a cron spec for background refreshes; empty disables it
	RefreshSchedule string `yaml:"refresh_schedule" envconfig:"REFRESH_SCHEDULE"`
}

// TelemetryConfig controls OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, the YAML file at path (or the first
// file found in the usual locations when path is empty) and DASH_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", path), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes soft settings.
// Hard failures are returned as CONFIG errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	c.Source.Mode = strings.ToLower(strings.TrimSpace(c.Source.Mode))
	switch c.Source.Mode {
	case SourceModeExport, SourceModeSheets:
		if strings.TrimSpace(c.Source.DocumentID) == "" {
			return apperrors.NewConfigError("source document id is required", nil).
				WithContext("mode", c.Source.Mode)
		}
	case SourceModeWorkbook:
		if strings.TrimSpace(c.Source.WorkbookPath) == "" {
			return apperrors.NewConfigError("workbook path is required in workbook mode", nil)
		}
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown source mode: %q", c.Source.Mode), nil)
	}

	if c.Source.CacheTTL <= 0 {
		return apperrors.NewConfigError("cache ttl must be positive", nil)
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 30 * time.Second
	}
	if c.Source.FetchTimeout < 0 {
		return apperrors.NewConfigError("fetch timeout cannot be negative", nil)
	}

	if _, err := c.Location(); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("invalid timezone %q", c.Timezone), err)
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}

	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
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

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Source: SourceConfig{
			Mode:         SourceModeExport,
			BaseURL:      "https://docs.google.com/spreadsheets/d",
			OrdersSheet:  "Orders",
			PayoutsSheet: "Payouts",
			StaffSheet:   "Staff",
			CacheTTL:     5 * time.Minute,
			FetchTimeout: 15 * time.Second,
			RateLimitRPS: 2,
			RateBurst:    3,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "kintsugi-dashboard",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Timezone: "Local",
	}
}
