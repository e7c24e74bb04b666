package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "otlp with endpoint", mutate: func(c *Config) { c.TraceExporter, c.OTLPEndpoint = "otlp", "localhost:4317" }},
		{name: "ui url", mutate: func(c *Config) { c.UIURL = "http://localhost:5000" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "LogLevel"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LogFormat"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "Workers"},
		{name: "port out of range", mutate: func(c *Config) { c.HealthcheckPort = 70000 }, wantErr: "HealthcheckPort"},
		{name: "otlp without endpoint", mutate: func(c *Config) { c.TraceExporter = "otlp" }, wantErr: "OTLPEndpoint"},
		{name: "unknown metric exporter", mutate: func(c *Config) { c.MetricExporter = "statsd" }, wantErr: "MetricExporter"},
		{name: "ui url without scheme", mutate: func(c *Config) { c.UIURL = "not a url" }, wantErr: "UIURL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			got, err := NewConfig(cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(cfg, *got))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neurogrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nworkers: 8\nui_url: http://ui:5000\n"), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, LoadFile(path, &cfg))

	want := DefaultConfig()
	want.LogLevel = "debug"
	want.Workers = 8
	want.UIURL = "http://ui:5000"
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers: [1, 2]\n"), 0o644))

	cfg := DefaultConfig()
	assert.ErrorContains(t, LoadFile(filepath.Join(dir, "missing.yaml"), &cfg), "failed to read config file")
	assert.ErrorContains(t, LoadFile(bad, &cfg), "failed to parse config file")
}
