package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
capture:
  interface: eth0
  capture_type: afpacket
  snap_len: 1500
  filter: "ip"
processor:
  capacity: 5000
  geo_timeout: 3s
geo:
  enabled: true
  endpoint: http://localhost:8088/search
alerts:
  rules:
    - name: large-tcp
      protocol: tcp
      min_size: 1000
      message: Large TCP packet detected
api:
  enabled: true
  listen: 0.0.0.0:9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "eth0", cfg.Capture.Interface)
	assert.Equal(t, "afpacket", cfg.Capture.CaptureType)
	assert.Equal(t, 1500, cfg.Capture.SnapLen)
	assert.Equal(t, 5000, cfg.Processor.Capacity)
	assert.Equal(t, "3s", cfg.Processor.GeoTimeout.String())
	assert.True(t, cfg.Geo.Enabled)
	require.Len(t, cfg.Alerts.Rules, 1)
	assert.Equal(t, "large-tcp", cfg.Alerts.Rules[0].Name)
	assert.Equal(t, 1000, cfg.Alerts.Rules[0].MinSize)
	assert.Equal(t, "0.0.0.0:9000", cfg.API.Listen)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
capture:
  interface: lo
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.API.Listen)
	assert.False(t, cfg.Geo.Enabled)
	assert.Empty(t, cfg.Alerts.Rules)
}

func TestLoadRejectsMissingInterface(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture.interface")
}

func TestLoadRejectsInvalidRule(t *testing.T) {
	path := writeConfig(t, `
capture:
  interface: lo
alerts:
  rules:
    - name: broken
      protocol: tcp
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts.rules[0]")
}

func TestLoadRejectsIncompleteKafkaSink(t *testing.T) {
	path := writeConfig(t, `
capture:
  interface: lo
alerts:
  kafka:
    enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts.kafka")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
