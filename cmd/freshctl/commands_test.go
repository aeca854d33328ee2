package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: test
source:
  type: csv
  monthly_path: data/monthly.csv
  records_path: data/records.csv
kafka:
  enabled: true
  brokers: ["localhost:9092"]
  topic: market-records
clickhouse:
  host: localhost
`)
	cfg, err := loadConfig(path, "xlsx", 42)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", cfg.Source.Type)
	assert.Equal(t, uint64(42), cfg.Forecast.Seed)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadConfigRejectsUnknownSource(t *testing.T) {
	path := writeConfig(t, `
environment: test
source:
  type: csv
  monthly_path: a.csv
  records_path: b.csv
`)
	_, err := loadConfig(path, "parquet", 0)
	assert.Error(t, err)
}

func TestValidateRequestUsesAPIBounds(t *testing.T) {
	cmd := forecastCmd
	cmd.SetContext(t.Context())

	assert.NoError(t, validateRequest(cmd, &models.ForecastRequest{Commodity: "Wheat"}))
	err := validateRequest(cmd, &models.ForecastRequest{Commodity: "Wheat", Horizon: 1000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon must be at most 240")
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]string{"supplyTrend": "stable"}))
	assert.Equal(t, "{\n  \"supplyTrend\": \"stable\"\n}\n", buf.String())
}
