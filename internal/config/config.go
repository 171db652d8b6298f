package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store types
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
	StoreMongo  = "mongo"
)

// Config holds application configuration
type Config struct {
	// Server
	ServerPort         int      `yaml:"server_port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Storage
	StoreType  string `yaml:"store_type"`
	SQLitePath string `yaml:"sqlite_path"`
	BoltPath   string `yaml:"bolt_path"`

	// MongoDB
	MongoURI        string `yaml:"mongo_uri"`
	MongoDB         string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	// InfluxDB capacity ledger
	CapacityLedger bool   `yaml:"capacity_ledger"`
	InfluxURL      string `yaml:"influx_url"`
	InfluxToken    string `yaml:"influx_token"`
	InfluxDatabase string `yaml:"influx_database"`

	// Business rules
	EnforceBulkUniqueness bool `yaml:"enforce_bulk_uniqueness"`

	// Logging
	LogLevel      string `yaml:"log_level"`
	LogDir        string `yaml:"log_directory"`
	LogFileMaxAge int    `yaml:"log_file_max_age"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		ServerPort:         8080,
		CORSAllowedOrigins: []string{"*"},
		StoreType:          StoreSQLite,
		SQLitePath:         "./batteries.db",
		BoltPath:           "./batteries.bolt",
		MongoURI:           "mongodb://localhost:27017",
		MongoDB:            "powerplant",
		MongoCollection:    "batteries",
		InfluxURL:          "",
		InfluxDatabase:     "powerplant",
		LogLevel:           "INFO",
		LogFileMaxAge:      2,
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and
// then from environment variables, which take precedence
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerPort = getEnvInt("SERVER_PORT", cfg.ServerPort)
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)

	cfg.StoreType = strings.ToLower(getEnv("STORE_TYPE", cfg.StoreType))
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.BoltPath = getEnv("BOLT_PATH", cfg.BoltPath)

	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DATABASE", cfg.MongoDB)
	cfg.MongoCollection = getEnv("MONGO_COLLECTION", cfg.MongoCollection)

	cfg.CapacityLedger = getEnvBool("CAPACITY_LEDGER", cfg.CapacityLedger)
	cfg.InfluxURL = getEnv("INFLUXDB_URL", cfg.InfluxURL)
	cfg.InfluxToken = getEnv("INFLUXDB_TOKEN", cfg.InfluxToken)
	cfg.InfluxDatabase = getEnv("INFLUXDB_DATABASE", cfg.InfluxDatabase)

	cfg.EnforceBulkUniqueness = getEnvBool("ENFORCE_BULK_UNIQUENESS", cfg.EnforceBulkUniqueness)

	cfg.LogLevel = strings.ToUpper(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogDir = getEnv("LOG_DIRECTORY", cfg.LogDir)
	cfg.LogFileMaxAge = getEnvInt("LOG_FILE_MAX_AGE", cfg.LogFileMaxAge)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.StoreType {
	case StoreMemory, StoreSQLite, StoreBolt, StoreMongo:
	default:
		return fmt.Errorf("invalid STORE_TYPE: %s (use 'memory', 'sqlite', 'bolt' or 'mongo')", c.StoreType)
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d (must be 1-65535)", c.ServerPort)
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.LogLevel)
	}

	if c.CapacityLedger && c.InfluxURL == "" {
		return fmt.Errorf("CAPACITY_LEDGER requires INFLUXDB_URL")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
