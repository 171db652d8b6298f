package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		file          string
		expectedError string
		validate      func(t *testing.T, cfg *Config)
	}{
		{
			name: "Defaults",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, StoreSQLite, cfg.StoreType)
				assert.False(t, cfg.EnforceBulkUniqueness)
				assert.False(t, cfg.CapacityLedger)
				assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
			},
		},
		{
			name: "Environment Overrides",
			env: map[string]string{
				"SERVER_PORT":             "9090",
				"STORE_TYPE":              "BOLT",
				"BOLT_PATH":               "/tmp/x.bolt",
				"ENFORCE_BULK_UNIQUENESS": "true",
				"CORS_ALLOWED_ORIGINS":    "http://a.example, http://b.example",
				"LOG_LEVEL":               "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.ServerPort)
				assert.Equal(t, StoreBolt, cfg.StoreType)
				assert.Equal(t, "/tmp/x.bolt", cfg.BoltPath)
				assert.True(t, cfg.EnforceBulkUniqueness)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
				assert.Equal(t, "DEBUG", cfg.LogLevel)
			},
		},
		{
			name: "YAML File With Env Precedence",
			file: "server_port: 7000\nstore_type: memory\nmongo_database: grid\n",
			env:  map[string]string{"SERVER_PORT": "7001"},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7001, cfg.ServerPort)
				assert.Equal(t, StoreMemory, cfg.StoreType)
				assert.Equal(t, "grid", cfg.MongoDB)
			},
		},
		{
			name:          "Unknown Store",
			env:           map[string]string{"STORE_TYPE": "postgres"},
			expectedError: "invalid STORE_TYPE",
		},
		{
			name:          "Ledger Without Influx",
			env:           map[string]string{"CAPACITY_LEDGER": "true"},
			expectedError: "CAPACITY_LEDGER requires INFLUXDB_URL",
		},
		{
			name:          "Bad Port",
			env:           map[string]string{"SERVER_PORT": "70000"},
			expectedError: "invalid SERVER_PORT",
		},
		{
			name:          "Bad Log Level",
			env:           map[string]string{"LOG_LEVEL": "loud"},
			expectedError: "invalid LOG_LEVEL",
		},
	}

	keys := []string{
		"CONFIG_FILE", "SERVER_PORT", "STORE_TYPE", "BOLT_PATH", "ENFORCE_BULK_UNIQUENESS",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "CAPACITY_LEDGER", "INFLUXDB_URL",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0600))
				t.Setenv("CONFIG_FILE", path)
			}

			cfg, err := Load()
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "(not set)", MaskToken(""))
	assert.Equal(t, "***", MaskToken("short"))
	assert.Equal(t, "abcd...wxyz", MaskToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestInitDatabase_Memory(t *testing.T) {
	db, err := InitDatabase(context.Background(), &Config{StoreType: StoreMemory})
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, db.GetType())
	assert.NoError(t, db.Close())
}

func TestHelloReply_SupportsTransactions(t *testing.T) {
	tests := []struct {
		name     string
		reply    helloReply
		expected bool
	}{
		{name: "Standalone", reply: helloReply{}, expected: false},
		{name: "Replica Set", reply: helloReply{SetName: "rs0"}, expected: true},
		{name: "Mongos", reply: helloReply{Msg: "isdbgrid"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reply.supportsTransactions())
		})
	}
}
