package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"AGRI_SERVER_PORT", "AGRI_SERVER_READ_TIMEOUT", "AGRI_SERVER_WRITE_TIMEOUT",
	"AGRI_SECURITY_ALLOWED_ORIGINS", "AGRI_SECURITY_ENABLE_CORS",
	"AGRI_LOGGING_LEVEL", "AGRI_LOGGING_OUTPUT", "AGRI_LOGGING_FORMAT",
	"AGRI_PATHS_DATASET_FILE", "AGRI_PATHS_BASE_DIR", "AGRI_PATHS_REPORTS_DIR",
	"AGRI_SNAPSHOT_SCHEDULE", "AGRI_SNAPSHOT_FORMAT",
}

// clearEnv unsets every config variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		if val, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, val) })
		}
	}
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "data/agri_environmental_indicators.csv", cfg.Paths.DatasetFile)
				assert.Empty(t, cfg.Snapshot.Schedule)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"AGRI_SERVER_PORT":        "9090",
				"AGRI_LOGGING_LEVEL":      "debug",
				"AGRI_PATHS_DATASET_FILE": "/srv/data.xlsx",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "/srv/data.xlsx", cfg.Paths.DatasetFile)
			},
		},
		{
			name: "yaml file under env",
			env:  map[string]string{"AGRI_SERVER_PORT": "7000"},
			yaml: "server:\n  port: 9999\nlogging:\n  level: warn\npaths:\n  dataset_file: from-file.csv\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7000, cfg.Server.Port, "env must win over file")
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "from-file.csv", cfg.Paths.DatasetFile)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"AGRI_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid snapshot schedule",
			env:     map[string]string{"AGRI_SNAPSHOT_SCHEDULE": "every tuesday"},
			wantErr: true,
		},
		{
			name: "valid snapshot schedule",
			env:  map[string]string{"AGRI_SNAPSHOT_SCHEDULE": "0 * * * *"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0 * * * *", cfg.Snapshot.Schedule)
			},
		},
		{
			name:    "invalid logging output",
			env:     map[string]string{"AGRI_LOGGING_OUTPUT": "syslog"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [port",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			file := ""
			if tt.yaml != "" {
				file = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(file, []byte(tt.yaml), 0644))
			}

			cfg, err := LoadFrom(file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.DatasetFile = "/abs/data.csv"

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "reports"), paths.ReportsDir)
	assert.Equal(t, "/abs/data.csv", paths.DatasetFile)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.ReportsDir)
	assert.DirExists(t, paths.LogsDir)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "kpis.csv"), paths.GetReportPath("kpis.csv"))
	assert.True(t, FileExists(paths.ReportsDir))
	assert.False(t, FileExists(filepath.Join(base, "missing")))
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.validate())
}
