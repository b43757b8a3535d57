package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"wlan0mon"}, cfg.Interfaces)
	assert.Equal(t, "wlan0mon", cfg.InjectInterface)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 9000, cfg.GRPCPort)
	assert.True(t, cfg.AutoNuke)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 4*time.Millisecond, cfg.DeauthInterval)
	assert.Equal(t, 6, cfg.HistoryCapacity)
	assert.Equal(t, 5*time.Minute, cfg.EvictInterval)
	assert.Equal(t, 30*time.Minute, cfg.Retention)
	assert.False(t, cfg.HasLocation())
	assert.Equal(t, "wguard.db", filepath.Base(cfg.DBPath))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeYAML(t, `
interfaces: [wlan1mon, wlan2mon]
addr: ":7000"
grpc: 9100
history: 8
deauth_interval: 10ms
auto_nuke: false
lat: 40.5
lng: -3.7
sensor_id: yaml-sensor
`)
	t.Setenv("WGUARD_ADDR", ":7500")
	t.Setenv("WGUARD_HISTORY", "9")
	t.Setenv("WGUARD_SENSOR_ID", "env-sensor")

	cfg, err := Load([]string{"-config", path, "-addr", ":9999", "-debug"})
	require.NoError(t, err)

	// YAML over defaults.
	assert.Equal(t, []string{"wlan1mon", "wlan2mon"}, cfg.Interfaces)
	assert.Equal(t, "wlan1mon", cfg.InjectInterface)
	assert.Equal(t, 9100, cfg.GRPCPort)
	assert.Equal(t, 10*time.Millisecond, cfg.DeauthInterval)
	assert.False(t, cfg.AutoNuke)
	require.True(t, cfg.HasLocation())
	assert.InDelta(t, 40.5, *cfg.Latitude, 1e-9)

	// Env over YAML.
	assert.Equal(t, 9, cfg.HistoryCapacity)
	assert.Equal(t, "env-sensor", cfg.SensorID)

	// Flags over env.
	assert.Equal(t, ":9999", cfg.Addr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, path, cfg.ConfigPath)
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := writeYAML(t, "addr: \":6000\"\n")
	t.Setenv("WGUARD_CONFIG", path)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Addr)
}

func TestLoad_InterfaceFlags(t *testing.T) {
	cfg, err := Load([]string{"-i", "wlan3mon, wlan4mon", "-inject", "wlan9"})
	require.NoError(t, err)
	assert.Equal(t, []string{"wlan3mon", "wlan4mon"}, cfg.Interfaces)
	assert.Equal(t, "wlan9", cfg.InjectInterface)
}

func TestLoad_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("WGUARD_HISTORY", "lots")
	t.Setenv("WGUARD_DEBUG", "maybe")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.HistoryCapacity)
	assert.False(t, cfg.Debug)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"missing file", []string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}},
		{"bad history", []string{"-history", "1"}},
		{"bad interface", []string{"-i", "wlan0;rm"}},
		{"only latitude", []string{"-lat", "10"}},
		{"bad latitude", []string{"-lat", "north"}},
		{"hash without user", []string{"-auth-hash", "$2a$10$abc"}},
		{"zero interval", []string{"-deauth-interval", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeYAML(t, "history: [not, a, number]\n")
	_, err := Load([]string{"-config", path})
	assert.Error(t, err)
}

func TestLoad_Help(t *testing.T) {
	_, err := Load([]string{"-h"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestValidate_InterfaceError(t *testing.T) {
	cfg := Defaults()
	cfg.Interfaces = []string{"bad name!"}
	err := cfg.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidInterfaceName)
}
