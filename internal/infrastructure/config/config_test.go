package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/taskgrid/internal/domain/entities"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultChain, cfg.Offsets.Chain)
	assert.Equal(t, "vi", cfg.Offsets.Locale)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
	assert.True(t, cfg.App.IsDevelopment())
	assert.False(t, cfg.App.IsProduction())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
app:
  environment: production
offsets:
  chain: [start_date, end_date, deadline]
  locale: en
  timezone: Asia/Ho_Chi_Minh
client:
  base_url: http://grid.internal:9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"start_date", "end_date", "deadline"}, cfg.Offsets.Chain)
	assert.Equal(t, "en", cfg.Offsets.Locale)
	assert.Equal(t, "http://grid.internal:9000", cfg.Client.BaseURL)
	assert.True(t, cfg.App.IsProduction())

	loc, err := cfg.Offsets.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", loc.String())
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"duplicate chain field", "offsets:\n  chain: [start_date, start_date]\n"},
		{"empty chain field", "offsets:\n  chain: [start_date, \"\"]\n"},
		{"chain field without a column", "offsets:\n  chain: [start_date, reminder, deadline]\n"},
		{"unknown timezone", "offsets:\n  timezone: Mars/Olympus\n"},
		{"jwt without secret", "jwt:\n  enabled: true\n"},
		{"port out of range", "server:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, Name: "taskgrid", User: "grid", Password: "pw", SSLMode: "disable"}
	dsn := db.GetDSN()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "dbname=taskgrid")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestLoad_ChainMustMatchTaskColumns(t *testing.T) {
	_, err := Load(writeFile(t, "offsets:\n  chain: [start_date, reminder]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"reminder"`)

	for _, field := range DefaultChain {
		assert.True(t, entities.IsDateTimeColumn(field), field)
	}
}
