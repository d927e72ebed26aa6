package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"ssactivewear-mcp/internal/ssapi"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	AccountNumber string
	APIKey        string
	Region        string
	BaseURL       string
	Timeout       time.Duration

	PreferredWarehouses []string
	Debug               bool

	KafkaBroker string
	EventsTopic string
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:            envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout:     envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		CORSOrigins:         envList("CORS_ALLOW_ORIGINS"),
		AccountNumber:       os.Getenv("SS_ACCOUNT_NUMBER"),
		APIKey:              os.Getenv("SS_API_KEY"),
		Region:              strings.ToUpper(envOrDefault("SS_REGION", "US")),
		BaseURL:             os.Getenv("SS_BASE_URL"),
		Timeout:             envDuration("SS_TIMEOUT_SECONDS", ssapi.DefaultTimeout),
		PreferredWarehouses: envList("SS_PREFERRED_WAREHOUSES"),
		Debug:               os.Getenv("DEBUG") == "true",
		KafkaBroker:         os.Getenv("KAFKA_BROKER"),
		EventsTopic:         envOrDefault("EVENTS_TOPIC", "ssactivewear.operations"),
	}
}

// Load reads an optional .env file into the process environment, builds the
// Config from the environment and then applies an optional YAML file on top.
// A missing envFile is ignored; a missing yamlFile is an error.
func Load(envFile, yamlFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	cfg := FromEnv()
	if yamlFile == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(yamlFile)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := cfg.applyYAML(data); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", yamlFile, err)
	}
	return cfg, nil
}

// fileConfig is the YAML overlay; unset keys keep the environment value.
type fileConfig struct {
	HTTPAddr            string   `yaml:"http_addr"`
	AccountNumber       string   `yaml:"account_number"`
	APIKey              string   `yaml:"api_key"`
	Region              string   `yaml:"region"`
	BaseURL             string   `yaml:"base_url"`
	Timeout             string   `yaml:"timeout"`
	PreferredWarehouses []string `yaml:"preferred_warehouses"`
	Debug               *bool    `yaml:"debug"`
	KafkaBroker         string   `yaml:"kafka_broker"`
	EventsTopic         string   `yaml:"events_topic"`
}

func (c *Config) applyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	setIf(&c.HTTPAddr, fc.HTTPAddr)
	setIf(&c.AccountNumber, fc.AccountNumber)
	setIf(&c.APIKey, fc.APIKey)
	setIf(&c.Region, strings.ToUpper(fc.Region))
	setIf(&c.BaseURL, fc.BaseURL)
	setIf(&c.KafkaBroker, fc.KafkaBroker)
	setIf(&c.EventsTopic, fc.EventsTopic)
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if len(fc.PreferredWarehouses) > 0 {
		c.PreferredWarehouses = fc.PreferredWarehouses
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
	return nil
}

// Missing lists the required credential variables that are unset.
func (c Config) Missing() []string {
	var missing []string
	if c.AccountNumber == "" {
		missing = append(missing, "SS_ACCOUNT_NUMBER")
	}
	if c.APIKey == "" {
		missing = append(missing, "SS_API_KEY")
	}
	return missing
}

// APIOptions returns the vendor client options for this configuration.
func (c Config) APIOptions() ssapi.Options {
	base := c.BaseURL
	if base == "" {
		base = ssapi.BaseURLForRegion(c.Region)
	}
	return ssapi.Options{
		BaseURL:       base,
		AccountNumber: c.AccountNumber,
		APIKey:        c.APIKey,
		Timeout:       c.Timeout,
		Debug:         c.Debug,
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Report logs the effective configuration without secrets. Missing
// credentials are a warning, not a startup failure.
func (c Config) Report(logger *zap.Logger) {
	if missing := c.Missing(); len(missing) > 0 {
		logger.Warn("missing required environment variables", zap.Strings("missing", missing))
	}
	logger.Info("S&S Activewear configuration",
		zap.String("account_number", setOrMissing(c.AccountNumber)),
		zap.String("api_key", setOrMissing(c.APIKey)),
		zap.String("region", c.Region),
		zap.String("base_url", c.APIOptions().BaseURL),
		zap.Duration("timeout", c.Timeout),
		zap.Strings("preferred_warehouses", c.PreferredWarehouses),
		zap.Bool("debug", c.Debug),
		zap.Bool("events", c.KafkaBroker != ""))
}

func setOrMissing(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}

// NewLogger builds the process logger. Output goes to stderr so stdout stays
// free for protocol traffic.
func NewLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
