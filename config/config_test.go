package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "lot-a"
  topic_prefix: "smart_parking_2026/parking"
sim:
  spots: ["P01", "P02", "P03"]
  threshold_cm: 40
  debounce_n: 3
  tick_seconds: 0.5
  seed: 42
metrics:
  prometheus_enabled: true
  prometheus_port: ":9200"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	require.Equal(t, "lot-a", cfg.MQTT.ClientID)
	require.Equal(t, "smart_parking_2026/parking", cfg.MQTT.TopicPrefix)
	require.Equal(t, []string{"P01", "P02", "P03"}, cfg.Sim.Spots)
	require.Equal(t, 40.0, cfg.Sim.ThresholdCm)
	require.Equal(t, 3, cfg.Sim.DebounceN)
	require.Equal(t, 0.5, cfg.Sim.TickSeconds)
	require.Equal(t, uint64(42), cfg.Sim.Seed)
	require.True(t, cfg.Metrics.PrometheusEnabled)
	require.Equal(t, ":9200", cfg.Metrics.PrometheusPort)

	// Unset sections fall back to defaults.
	require.Equal(t, byte(1), cfg.Sim.QoS)
	require.Equal(t, 2.0, cfg.Sim.NoiseCm)
	require.Equal(t, 45.0, cfg.Sim.OccupiedDwellS.Min)
}

func TestLoadDefaultsOnly(t *testing.T) {
	path := writeConfig(t, "config.yaml", "mqtt:\n  client_id: sim\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sim.SpotIDs(), 20)
	require.Equal(t, 50.0, cfg.Sim.ThresholdCm)
	require.Equal(t, 4, cfg.Sim.DebounceN)
	require.NotEmpty(t, cfg.MQTT.Broker)
	require.Equal(t, ":9104", cfg.Metrics.PrometheusPort)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPOTSIM_SIM__THRESHOLD_CM", "60")
	path := writeConfig(t, "config.yaml", "sim:\n  threshold_cm: 40\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 60.0, cfg.Sim.ThresholdCm)
}

func TestLoadRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"bad debounce", "sim:\n  debounce_n: -1\n"},
		{"bad threshold", "sim:\n  threshold_cm: 5000\n"},
		{"bad tick", "sim:\n  tick_seconds: -2\n"},
		{"empty spot id", "sim:\n  spots: [\"\"]\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", c.data)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "broker = 1\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "unsupported config format")
}
